package compute

import (
	_ "embed"
	"fmt"

	"github.com/gogpu/naga"
)

//go:embed shaders/histogram.wgsl
var histogramShaderSource string

//go:embed shaders/exposure.wgsl
var exposureShaderSource string

// Shader is an embedded compute shader.
type Shader struct {
	Name       string
	EntryPoint string
	WGSL       string
}

// WorkgroupSize matches @workgroup_size in both shaders.
const WorkgroupSize = 16

// HistogramShader accumulates the four histograms.
func HistogramShader() Shader {
	return Shader{Name: "histogram", EntryPoint: "main", WGSL: histogramShaderSource}
}

// ExposureShader applies the exposure kernel.
func ExposureShader() Shader {
	return Shader{Name: "exposure", EntryPoint: "main", WGSL: exposureShaderSource}
}

// Shaders returns every embedded shader.
func Shaders() []Shader {
	return []Shader{HistogramShader(), ExposureShader()}
}

// Compile translates the shader to SPIR-V with naga. Devices that accept
// WGSL directly do not need this; it is used for offline validation.
func (s Shader) Compile() ([]byte, error) {
	if s.WGSL == "" {
		return nil, fmt.Errorf("compute: %s shader source is empty", s.Name)
	}
	spirv, err := naga.Compile(s.WGSL)
	if err != nil {
		return nil, fmt.Errorf("compute: compile %s shader: %w", s.Name, err)
	}
	return spirv, nil
}

// DispatchSize returns the workgroup count covering n texels.
func DispatchSize(n int) uint32 {
	return uint32((n + WorkgroupSize - 1) / WorkgroupSize)
}
