//go:build !nogpu

package gpu

import (
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu"

	"github.com/gogpu/exposure/internal/compute"
)

// NewFromProvider returns a ready device that runs on the provider's wgpu
// device and queue.
func NewFromProvider(p gpucontext.DeviceProvider) (*Device, error) {
	d := New()
	if err := d.SetDeviceProvider(p); err != nil {
		return nil, err
	}
	return d, nil
}

// SetDeviceProvider switches the device to a wgpu device owned by an
// external provider (for example a gogpu window). Resources created by a
// previous Init are released first. The provider's device is not released
// by Close.
func (d *Device) SetDeviceProvider(p gpucontext.DeviceProvider) error {
	if p == nil {
		return fmt.Errorf("%w: nil device provider", compute.ErrDeviceUnavailable)
	}
	dev, ok := p.Device().(*wgpu.Device)
	if !ok || dev == nil {
		return fmt.Errorf("%w: provider device is %T, not *wgpu.Device",
			compute.ErrDeviceUnavailable, p.Device())
	}
	queue, ok := p.Queue().(*wgpu.Queue)
	if !ok || queue == nil {
		queue = dev.Queue()
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.releaseLocked()
	d.device = dev
	d.queue = queue
	d.external = true
	d.maxDim = int(dev.Limits().MaxTextureDimension2D)

	info := p.AdapterInfo()
	d.info = gputypes.AdapterInfo{Name: info.Name, DeviceType: toDeviceType(info.Type)}

	if err := d.createKernels(); err != nil {
		d.releaseLocked()
		return fmt.Errorf("gpu: create pipelines on shared device: %w", err)
	}
	d.ready = true
	d.logger().Info("gpu: switched to shared device", "name", info.Name, "type", info.Type.String())
	return nil
}

// AdapterInfo describes the adapter in gpucontext terms.
func (d *Device) AdapterInfo() gpucontext.AdapterInfo {
	info := d.Info()
	return gpucontext.AdapterInfo{Name: info.Name, Type: toAdapterType(info.DeviceType)}
}

func toDeviceType(t gpucontext.AdapterType) gputypes.DeviceType {
	switch t {
	case gpucontext.AdapterTypeDiscrete:
		return gputypes.DeviceTypeDiscreteGPU
	case gpucontext.AdapterTypeIntegrated:
		return gputypes.DeviceTypeIntegratedGPU
	case gpucontext.AdapterTypeSoftware:
		return gputypes.DeviceTypeCPU
	default:
		return gputypes.DeviceTypeOther
	}
}

func toAdapterType(t gputypes.DeviceType) gpucontext.AdapterType {
	switch t {
	case gputypes.DeviceTypeDiscreteGPU:
		return gpucontext.AdapterTypeDiscrete
	case gputypes.DeviceTypeIntegratedGPU:
		return gpucontext.AdapterTypeIntegrated
	case gputypes.DeviceTypeCPU:
		return gpucontext.AdapterTypeSoftware
	default:
		return gpucontext.AdapterTypeUnknown
	}
}
