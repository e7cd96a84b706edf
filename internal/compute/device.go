// Package compute defines the device abstraction the exposure pipeline runs
// on, the kernel math shared by every device, and the registry that picks a
// device at startup.
//
// A Device executes the two data-parallel stages of the pipeline:
// histogram accumulation and per-pixel exposure correction. The wgpu device
// in internal/gpu runs them as compute shaders; the software device in
// internal/software runs the same math on a CPU worker pool.
package compute

import (
	"context"
	"errors"

	"github.com/gogpu/exposure/internal/image"
)

// Errors shared by all pipeline stages.
var (
	// ErrDeviceUnavailable is returned when no compute-capable device can be
	// initialized.
	ErrDeviceUnavailable = errors.New("compute: device unavailable")

	// ErrGPUOperationFailed is returned when a pipeline, submission, copy or
	// buffer mapping is rejected by the device.
	ErrGPUOperationFailed = errors.New("compute: gpu operation failed")

	// ErrAssertion is returned when an internal invariant is broken.
	ErrAssertion = errors.New("compute: assertion failed")

	// ErrNotInitialized is returned when a device is used before Init.
	ErrNotInitialized = errors.New("compute: device not initialized")
)

// Device names.
const (
	// DeviceWGPU is the WebGPU compute device.
	DeviceWGPU = "wgpu"

	// DeviceSoftware is the CPU device.
	DeviceSoftware = "software"
)

// Device runs the data-parallel pipeline stages.
//
// Implementations must be safe for concurrent use once Init has returned:
// the tiling coordinator issues blocks from several goroutines.
type Device interface {
	// Name returns the registry name of the device.
	Name() string

	// Init acquires device resources. It returns an error wrapping
	// ErrDeviceUnavailable when the device cannot be used on this machine.
	Init() error

	// Close releases everything Init acquired.
	Close() error

	// MaxTextureDimension returns the largest texture edge the device
	// accepts, or 0 when it has no limit.
	MaxTextureDimension() int

	// Histogram counts every texel of src, padding included. src must not
	// exceed MaxTextureDimension in either direction.
	Histogram(ctx context.Context, src *image.Raster) (Bins, error)

	// Expose applies the exposure kernel to every texel of src and returns a
	// new raster of the same size. src is never modified.
	Expose(ctx context.Context, src *image.Raster, u *Uniforms) (*image.Raster, error)
}
