//go:build !nogpu

package gpu

import (
	"context"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu"

	"github.com/gogpu/exposure/internal/cache"
	"github.com/gogpu/exposure/internal/compute"
	"github.com/gogpu/exposure/internal/image"
)

// texture is a 2D rgba8unorm texture with its default view.
type texture struct {
	tex  *wgpu.Texture
	view *wgpu.TextureView
}

func (t *texture) release() {
	if t.view != nil {
		t.view.Release()
	}
	if t.tex != nil {
		t.tex.Release()
	}
}

func extent(width, height int) wgpu.Extent3D {
	return wgpu.Extent3D{Width: uint32(width), Height: uint32(height), DepthOrArrayLayers: 1}
}

func (d *Device) createTexture(label string, width, height int, usage wgpu.TextureUsage) (*texture, error) {
	tex, err := d.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         label,
		Size:          extent(width, height),
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatRGBA8Unorm,
		Usage:         usage,
	})
	if err != nil {
		return nil, gpuError("create texture "+label, err)
	}
	view, err := d.device.CreateTextureView(tex, nil)
	if err != nil {
		tex.Release()
		return nil, gpuError("create view of "+label, err)
	}
	return &texture{tex: tex, view: view}, nil
}

// uploadTexture creates a sampled texture holding src. WriteTexture takes
// tightly packed rows.
func (d *Device) uploadTexture(label string, src *image.Raster) (*texture, error) {
	t, err := d.createTexture(label, src.Width, src.Height,
		wgpu.TextureUsageTextureBinding|wgpu.TextureUsageCopyDst)
	if err != nil {
		return nil, err
	}
	size := extent(src.Width, src.Height)
	err = d.queue.WriteTexture(
		&wgpu.ImageCopyTexture{Texture: t.tex, Aspect: gputypes.TextureAspectAll},
		src.Pix,
		&wgpu.ImageDataLayout{BytesPerRow: uint32(src.Stride()), RowsPerImage: uint32(src.Height)},
		&size,
	)
	if err != nil {
		t.release()
		return nil, gpuError("upload "+label, err)
	}
	d.logger().Debug("gpu: texture uploaded", "label", label, "width", src.Width, "height", src.Height)
	return t, nil
}

// acquireBuffer takes a buffer from the pool or creates one. Return it
// with d.buffers.Put(key, buf) once the call no longer needs it.
func (d *Device) acquireBuffer(label string, size uint64, usage wgpu.BufferUsage) (*wgpu.Buffer, cache.Key, error) {
	key := cache.Key{Size: size, Usage: uint64(usage), Label: label}
	buf, err := d.buffers.Acquire(key, func() (*wgpu.Buffer, error) {
		d.logger().Debug("gpu: allocating buffer", "label", label, "size", size)
		return d.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: label,
			Size:  size,
			Usage: usage,
		})
	})
	if err != nil {
		return nil, key, gpuError("acquire buffer "+key.String(), err)
	}
	return buf, key, nil
}

// submit records commands with record and submits them.
func (d *Device) submit(label string, record func(enc *wgpu.CommandEncoder) error) error {
	enc, err := d.device.CreateCommandEncoder(&wgpu.CommandEncoderDescriptor{Label: label})
	if err != nil {
		return gpuError("create command encoder", err)
	}
	if err := record(enc); err != nil {
		enc.DiscardEncoding()
		return err
	}
	cmd, err := enc.Finish()
	if err != nil {
		return gpuError("finish "+label+" commands", err)
	}
	if _, err := d.queue.Submit(cmd); err != nil {
		cmd.Release()
		return gpuError("submit "+label, err)
	}
	return nil
}

// readBuffer maps buf, copies its first size bytes and unmaps it. Map
// drives device polling until the preceding submission has completed.
func (d *Device) readBuffer(ctx context.Context, buf *wgpu.Buffer, size uint64) ([]byte, error) {
	if err := buf.Map(ctx, wgpu.MapModeRead, 0, size); err != nil {
		return nil, gpuError("map "+buf.Label(), err)
	}
	d.buffers.MarkMapped(buf)

	rng, err := buf.MappedRange(0, size)
	if err != nil {
		d.unmap(buf)
		return nil, gpuError("mapped range of "+buf.Label(), err)
	}
	data := rng.Bytes()
	if uint64(len(data)) < size {
		rng.Release()
		d.unmap(buf)
		return nil, fmt.Errorf("%w: %s mapped %d bytes, want %d",
			compute.ErrGPUOperationFailed, buf.Label(), len(data), size)
	}
	out := make([]byte, size)
	copy(out, data)
	rng.Release()

	d.unmap(buf)
	return out, nil
}

// unmap releases a host mapping. On failure the buffer stays marked mapped
// so the pool unmaps it before handing it out again.
func (d *Device) unmap(buf *wgpu.Buffer) {
	if err := buf.Unmap(); err != nil {
		d.logger().Warn("gpu: unmap failed", "buffer", buf.Label(), "err", err)
		return
	}
	d.buffers.MarkUnmapped(buf)
}

func (d *Device) checkReady(src *image.Raster) error {
	if !d.ready {
		return fmt.Errorf("gpu: %w", compute.ErrNotInitialized)
	}
	if err := src.Validate(); err != nil {
		return err
	}
	if src.Width > d.maxDim || src.Height > d.maxDim {
		return fmt.Errorf("%w: %dx%d texture exceeds device limit %d",
			compute.ErrAssertion, src.Width, src.Height, d.maxDim)
	}
	return nil
}
