//go:build !nogpu

package gpu

import (
	"context"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu"

	"github.com/gogpu/exposure/internal/compute"
	"github.com/gogpu/exposure/internal/image"
)

// Expose runs the exposure kernel over src and returns the corrected
// texels as a new raster.
//
// The kernel writes an rgba8unorm storage texture, which is copied into a
// staging buffer whose rows are padded to 256 bytes and unpacked row by
// row on the host.
func (d *Device) Expose(ctx context.Context, src *image.Raster, u *compute.Uniforms) (*image.Raster, error) {
	if u == nil {
		return nil, fmt.Errorf("%w: nil uniforms", compute.ErrAssertion)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkReady(src); err != nil {
		return nil, err
	}

	in, err := d.uploadTexture("exposure_src", src)
	if err != nil {
		return nil, err
	}
	defer in.release()

	out, err := d.createTexture("exposure_dst", src.Width, src.Height,
		wgpu.TextureUsageStorageBinding|wgpu.TextureUsageCopySrc)
	if err != nil {
		return nil, err
	}
	defer out.release()

	params, paramsKey, err := d.acquireBuffer("exposure_params", compute.UniformsSize,
		wgpu.BufferUsageStorage|wgpu.BufferUsageCopyDst)
	if err != nil {
		return nil, err
	}
	defer d.buffers.Put(paramsKey, params)

	if err := d.queue.WriteBuffer(params, 0, u.Bytes()); err != nil {
		return nil, gpuError("write exposure params", err)
	}

	bytesPerRow := image.AlignedRowBytes(src.Width)
	readSize := uint64(bytesPerRow * src.Height)
	staging, stagingKey, err := d.acquireBuffer("exposure_readback", readSize,
		wgpu.BufferUsageMapRead|wgpu.BufferUsageCopyDst)
	if err != nil {
		return nil, err
	}
	defer d.buffers.Put(stagingKey, staging)

	bg, err := d.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "exposure_bind_group",
		Layout: d.exposure.bindLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, TextureView: in.view},
			{Binding: 1, TextureView: out.view},
			{Binding: 2, Buffer: params, Size: compute.UniformsSize},
		},
	})
	if err != nil {
		return nil, gpuError("create exposure bind group", err)
	}
	defer bg.Release()

	d.logger().Debug("gpu: exposure dispatch",
		"width", src.Width, "height", src.Height,
		"bytes_per_row", bytesPerRow, "strength", u.Strength)

	err = d.submit("exposure", func(enc *wgpu.CommandEncoder) error {
		if err := d.exposure.dispatch(enc, bg, src.Width, src.Height); err != nil {
			return err
		}
		enc.CopyTextureToBuffer(out.tex, staging, []wgpu.BufferTextureCopy{{
			BufferLayout: wgpu.ImageDataLayout{
				BytesPerRow:  uint32(bytesPerRow),
				RowsPerImage: uint32(src.Height),
			},
			TextureBase: wgpu.ImageCopyTexture{Texture: out.tex, Aspect: gputypes.TextureAspectAll},
			Size:        extent(src.Width, src.Height),
		}})
		return nil
	})
	if err != nil {
		return nil, err
	}

	data, err := d.readBuffer(ctx, staging, readSize)
	if err != nil {
		return nil, err
	}
	return image.UnpackRows(src.Width, src.Height, bytesPerRow, data)
}
