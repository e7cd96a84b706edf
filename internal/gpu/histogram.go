//go:build !nogpu

package gpu

import (
	"context"

	"github.com/gogpu/wgpu"

	"github.com/gogpu/exposure/internal/compute"
	"github.com/gogpu/exposure/internal/image"
)

// binsSize is the byte size of the 1024 u32 counters.
const binsSize = compute.HistogramSlots * 4

var zeroBins = make([]byte, binsSize)

// Histogram counts every texel of src on the GPU. src is uploaded as an
// rgba8unorm texture and read back through a mappable staging buffer.
func (d *Device) Histogram(ctx context.Context, src *image.Raster) (compute.Bins, error) {
	if err := ctx.Err(); err != nil {
		return compute.Bins{}, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkReady(src); err != nil {
		return compute.Bins{}, err
	}

	in, err := d.uploadTexture("histogram_src", src)
	if err != nil {
		return compute.Bins{}, err
	}
	defer in.release()

	counters, countersKey, err := d.acquireBuffer("histogram_bins", binsSize,
		wgpu.BufferUsageStorage|wgpu.BufferUsageCopySrc|wgpu.BufferUsageCopyDst)
	if err != nil {
		return compute.Bins{}, err
	}
	defer d.buffers.Put(countersKey, counters)

	if err := d.queue.WriteBuffer(counters, 0, zeroBins); err != nil {
		return compute.Bins{}, gpuError("clear histogram counters", err)
	}

	staging, stagingKey, err := d.acquireBuffer("histogram_readback", binsSize,
		wgpu.BufferUsageMapRead|wgpu.BufferUsageCopyDst)
	if err != nil {
		return compute.Bins{}, err
	}
	defer d.buffers.Put(stagingKey, staging)

	bg, err := d.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "histogram_bind_group",
		Layout: d.histogram.bindLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, TextureView: in.view},
			{Binding: 1, Buffer: counters, Size: binsSize},
		},
	})
	if err != nil {
		return compute.Bins{}, gpuError("create histogram bind group", err)
	}
	defer bg.Release()

	d.logger().Debug("gpu: histogram dispatch",
		"width", src.Width, "height", src.Height,
		"groups_x", compute.DispatchSize(src.Width), "groups_y", compute.DispatchSize(src.Height))

	err = d.submit("histogram", func(enc *wgpu.CommandEncoder) error {
		if err := d.histogram.dispatch(enc, bg, src.Width, src.Height); err != nil {
			return err
		}
		enc.CopyBufferToBuffer(counters, 0, staging, 0, binsSize)
		return nil
	})
	if err != nil {
		return compute.Bins{}, err
	}

	data, err := d.readBuffer(ctx, staging, binsSize)
	if err != nil {
		return compute.Bins{}, err
	}
	return compute.BinsFromBytes(data), nil
}
