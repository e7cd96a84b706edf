// Package gpu implements the compute device on WebGPU through
// github.com/gogpu/wgpu.
//
// The device owns one wgpu instance, adapter, device and queue and two
// compute pipelines: the histogram kernel, which atomically accumulates the
// four 256-bin histograms into a 1024-slot storage buffer, and the exposure
// kernel, which writes corrected texels into an rgba8unorm storage texture.
// Each call follows the same cycle: upload, dispatch, copy into a mappable
// staging buffer, map, read, unmap. Staging and counter buffers are kept in
// a weak pool between calls so repeated blocks of the same size reuse them.
//
// Building with the nogpu tag leaves the package empty; the software device
// is then the only registered device.
package gpu
