package exposure

import (
	"github.com/gogpu/gpucontext"

	"github.com/gogpu/exposure/internal/compute"
	"github.com/gogpu/exposure/internal/tiling"
)

// Device is a compute device the engine can run on. The built-in devices
// are selected by name; see [Devices].
type Device = compute.Device

// Option configures an Engine during creation.
//
// Example:
//
//	// Best available device
//	e, err := exposure.New()
//
//	// CPU only, smaller blocks
//	e, err := exposure.New(
//	    exposure.WithDeviceName("software"),
//	    exposure.WithMaxTextureSize(1024),
//	)
type Option func(*options)

type options struct {
	device      Device
	deviceName  string
	provider    gpucontext.DeviceProvider
	maxTexture  int
	overlap     int
	concurrency int
}

func defaultOptions() options {
	return options{
		maxTexture: tiling.DefaultMaxTextureSize,
		overlap:    tiling.DefaultOverlap,
	}
}

// WithDevice runs the engine on d. The engine calls d.Init but does not
// close d; the caller keeps ownership.
func WithDevice(d Device) Option {
	return func(o *options) {
		o.device = d
	}
}

// WithDeviceName selects a registered device by name ("wgpu" or
// "software") instead of the best available one.
func WithDeviceName(name string) Option {
	return func(o *options) {
		o.deviceName = name
	}
}

// WithDeviceProvider runs the wgpu device on a GPU device owned by the host
// application, for example a gogpu window. The provider's Device must be a
// *wgpu.Device.
func WithDeviceProvider(p gpucontext.DeviceProvider) Option {
	return func(o *options) {
		o.provider = p
	}
}

// WithMaxTextureSize sets the largest block edge used for tiling. The
// device's own limit still applies when it is smaller.
func WithMaxTextureSize(n int) Option {
	return func(o *options) {
		o.maxTexture = n
	}
}

// WithOverlap sets how many pixels neighboring blocks share.
func WithOverlap(n int) Option {
	return func(o *options) {
		o.overlap = n
	}
}

// WithConcurrency bounds how many blocks are processed at once. Zero uses
// GOMAXPROCS.
func WithConcurrency(n int) Option {
	return func(o *options) {
		o.concurrency = n
	}
}
