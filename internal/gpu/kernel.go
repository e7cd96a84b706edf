//go:build !nogpu

package gpu

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu"

	"github.com/gogpu/exposure/internal/compute"
)

// kernel is one compute pipeline with its layouts.
type kernel struct {
	name       string
	module     *wgpu.ShaderModule
	bindLayout *wgpu.BindGroupLayout
	pipeLayout *wgpu.PipelineLayout
	pipeline   *wgpu.ComputePipeline
}

func newKernel(dev *wgpu.Device, s compute.Shader, entries []wgpu.BindGroupLayoutEntry) (*kernel, error) {
	k := &kernel{name: s.Name}
	ok := false
	defer func() {
		if !ok {
			k.release()
		}
	}()

	var err error
	k.module, err = dev.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: s.Name,
		WGSL:  s.WGSL,
	})
	if err != nil {
		return nil, gpuError("create "+s.Name+" shader module", err)
	}

	k.bindLayout, err = dev.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label:   s.Name + "_bind_layout",
		Entries: entries,
	})
	if err != nil {
		return nil, gpuError("create "+s.Name+" bind group layout", err)
	}

	k.pipeLayout, err = dev.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            s.Name + "_pipe_layout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{k.bindLayout},
	})
	if err != nil {
		return nil, gpuError("create "+s.Name+" pipeline layout", err)
	}

	k.pipeline, err = dev.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
		Label:      s.Name + "_pipeline",
		Layout:     k.pipeLayout,
		Module:     k.module,
		EntryPoint: s.EntryPoint,
	})
	if err != nil {
		return nil, gpuError("create "+s.Name+" compute pipeline", err)
	}

	ok = true
	return k, nil
}

func (k *kernel) release() {
	if k == nil {
		return
	}
	if k.pipeline != nil {
		k.pipeline.Release()
		k.pipeline = nil
	}
	if k.pipeLayout != nil {
		k.pipeLayout.Release()
		k.pipeLayout = nil
	}
	if k.bindLayout != nil {
		k.bindLayout.Release()
		k.bindLayout = nil
	}
	if k.module != nil {
		k.module.Release()
		k.module = nil
	}
}

// dispatch records one compute pass covering a width×height texture with
// 16×16 workgroups.
func (k *kernel) dispatch(enc *wgpu.CommandEncoder, bg *wgpu.BindGroup, width, height int) error {
	pass, err := enc.BeginComputePass(&wgpu.ComputePassDescriptor{Label: k.name})
	if err != nil {
		return gpuError("begin "+k.name+" pass", err)
	}
	pass.SetPipeline(k.pipeline)
	pass.SetBindGroup(0, bg, nil)
	pass.Dispatch(compute.DispatchSize(width), compute.DispatchSize(height), 1)
	if err := pass.End(); err != nil {
		return gpuError("end "+k.name+" pass", err)
	}
	return nil
}

func sampledTextureEntry(binding uint32) wgpu.BindGroupLayoutEntry {
	return wgpu.BindGroupLayoutEntry{
		Binding:    binding,
		Visibility: wgpu.ShaderStageCompute,
		Texture: &gputypes.TextureBindingLayout{
			SampleType:    gputypes.TextureSampleTypeFloat,
			ViewDimension: gputypes.TextureViewDimension2D,
		},
	}
}

func storageBufferEntry(binding uint32, kind gputypes.BufferBindingType) wgpu.BindGroupLayoutEntry {
	return wgpu.BindGroupLayoutEntry{
		Binding:    binding,
		Visibility: wgpu.ShaderStageCompute,
		Buffer:     &gputypes.BufferBindingLayout{Type: kind},
	}
}

// histogramBindings: @binding(0) source texture, @binding(1) counters.
func histogramBindings() []wgpu.BindGroupLayoutEntry {
	return []wgpu.BindGroupLayoutEntry{
		sampledTextureEntry(0),
		storageBufferEntry(1, gputypes.BufferBindingTypeStorage),
	}
}

// exposureBindings: @binding(0) source texture, @binding(1) output storage
// texture, @binding(2) parameters.
func exposureBindings() []wgpu.BindGroupLayoutEntry {
	return []wgpu.BindGroupLayoutEntry{
		sampledTextureEntry(0),
		{
			Binding:    1,
			Visibility: wgpu.ShaderStageCompute,
			StorageTexture: &gputypes.StorageTextureBindingLayout{
				Access:        gputypes.StorageTextureAccessWriteOnly,
				Format:        gputypes.TextureFormatRGBA8Unorm,
				ViewDimension: gputypes.TextureViewDimension2D,
			},
		},
		storageBufferEntry(2, gputypes.BufferBindingTypeReadOnlyStorage),
	}
}
