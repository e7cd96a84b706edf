// Package exposure computes image histograms and applies automatic exposure
// correction on the GPU.
//
// # Overview
//
// An RGBA image is padded to the 16×16 compute workgroup size, its red,
// green, blue and brightness histograms are accumulated with atomic
// counters on the device, and a tone curve is estimated from the
// brightness histogram. The exposure kernel then pulls every pixel toward
// the brightness its rank in the cumulative distribution suggests, damped
// near black and white so highlights and shadows do not clip.
//
// # Quick Start
//
//	img, err := exposure.FromImage(decoded)
//	if err != nil {
//	    return err
//	}
//	out, err := exposure.AutoExposureCorrect(img, 1.0)
//	if err != nil {
//	    return err
//	}
//	png.Encode(w, out.ToNRGBA())
//
// # Devices
//
// Work runs on a compute device. The wgpu device is preferred; when no GPU
// adapter is present the engine falls back to the software device, which
// runs the same kernels on a CPU worker pool. Use [WithDeviceName] to pin a
// device or [WithDeviceProvider] to share a wgpu device owned by the host
// application.
//
// # Large Images
//
// Images wider or taller than the maximum texture size (2048 by default,
// capped by the device limit) are split into blocks that overlap by 64
// pixels. The histogram and tone curve are computed once for the whole
// image so every block is corrected with the same parameters; corrected
// blocks are merged in row-major order with later blocks covering the
// shared band.
//
// # Logging
//
// The package is silent by default. Call [SetLogger] to receive device
// selection, tiling and dispatch diagnostics through log/slog.
package exposure
