//go:build !nogpu

package gpu

import (
	"fmt"
	"sync"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu"

	// Register every HAL backend available on this platform.
	_ "github.com/gogpu/wgpu/hal/allbackends"

	"github.com/gogpu/exposure/internal/cache"
	"github.com/gogpu/exposure/internal/compute"
)

func init() {
	compute.Register(compute.DeviceWGPU, func() compute.Device {
		return New()
	})
}

// Device runs the histogram and exposure kernels as wgpu compute shaders.
//
// All queue work is serialized under mu; Device is safe for concurrent use
// after Init.
type Device struct {
	mu sync.Mutex

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue
	info     gputypes.AdapterInfo
	maxDim   int

	histogram *kernel
	exposure  *kernel

	buffers *cache.Pool[wgpu.Buffer]

	ready    bool
	external bool // device and queue belong to a DeviceProvider

	log deviceLogger
}

var _ compute.Device = (*Device)(nil)

// New returns an uninitialized wgpu device.
func New() *Device {
	return &Device{buffers: newBufferPool()}
}

func newBufferPool() *cache.Pool[wgpu.Buffer] {
	return cache.NewPool(func(b *wgpu.Buffer) error { return b.Unmap() })
}

// Name returns compute.DeviceWGPU.
func (d *Device) Name() string { return compute.DeviceWGPU }

// Init creates the instance, picks an adapter, opens the device and builds
// both compute pipelines. A missing or placeholder adapter is reported as
// compute.ErrDeviceUnavailable. Init on a ready device is a no-op.
func (d *Device) Init() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.ready {
		return nil
	}
	if err := d.initGPU(); err != nil {
		d.releaseLocked()
		return err
	}
	d.ready = true
	return nil
}

func (d *Device) initGPU() error {
	instance, err := wgpu.CreateInstance(nil)
	if err != nil {
		return fmt.Errorf("%w: create instance: %w", compute.ErrDeviceUnavailable, err)
	}
	d.instance = instance

	adapter, err := instance.RequestAdapter(nil)
	if err != nil {
		return fmt.Errorf("%w: request adapter: %w", compute.ErrDeviceUnavailable, err)
	}
	d.adapter = adapter
	d.info = adapter.Info()
	if d.info.Backend == gputypes.BackendEmpty {
		return fmt.Errorf("%w: only the no-op backend is available", compute.ErrDeviceUnavailable)
	}

	device, err := adapter.RequestDevice(nil)
	if err != nil {
		return fmt.Errorf("%w: request device on %q: %w", compute.ErrDeviceUnavailable, d.info.Name, err)
	}
	d.device = device
	d.queue = device.Queue()
	d.maxDim = int(device.Limits().MaxTextureDimension2D)

	d.logger().Info("gpu: adapter selected",
		"name", d.info.Name,
		"vendor", d.info.Vendor,
		"type", d.info.DeviceType.String(),
		"max_texture", d.maxDim)

	return d.createKernels()
}

func (d *Device) createKernels() error {
	var err error
	if d.histogram, err = newKernel(d.device, compute.HistogramShader(), histogramBindings()); err != nil {
		return err
	}
	if d.exposure, err = newKernel(d.device, compute.ExposureShader(), exposureBindings()); err != nil {
		return err
	}
	return nil
}

// Close releases the pipelines and, unless they came from a
// DeviceProvider, the device, adapter and instance.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.releaseLocked()
	return nil
}

func (d *Device) releaseLocked() {
	d.histogram.release()
	d.exposure.release()
	d.histogram, d.exposure = nil, nil

	// Pooled buffers are reclaimed by the collector through their own
	// cleanups; a fresh pool keeps them from being handed to a new device.
	d.buffers = newBufferPool()

	if !d.external {
		if d.device != nil {
			d.device.Release()
		}
		if d.adapter != nil {
			d.adapter.Release()
		}
		if d.instance != nil {
			d.instance.Release()
		}
	}
	d.device, d.queue, d.adapter, d.instance = nil, nil, nil, nil
	d.ready = false
	d.external = false
	d.maxDim = 0
}

// MaxTextureDimension returns the device's MaxTextureDimension2D limit, or
// 0 before Init.
func (d *Device) MaxTextureDimension() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.maxDim
}

// Info returns the adapter description.
func (d *Device) Info() gputypes.AdapterInfo {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.info
}

// PoolStats reports the buffer pool counters.
func (d *Device) PoolStats() cache.Stats {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.buffers.Stats()
}

// gpuError wraps a wgpu failure with compute.ErrGPUOperationFailed.
func gpuError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", compute.ErrGPUOperationFailed, op, err)
}
