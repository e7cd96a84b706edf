package exposure

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gogpu/exposure/internal/compute"
	raster "github.com/gogpu/exposure/internal/image"
	"github.com/gogpu/exposure/internal/tiling"

	// Built-in devices register themselves in init.
	_ "github.com/gogpu/exposure/internal/gpu"
	_ "github.com/gogpu/exposure/internal/software"
)

// Engine computes histograms and exposure corrections on one device.
//
// An Engine is safe for concurrent use.
type Engine struct {
	device Device
	owned  bool
	coord  *tiling.Coordinator
	closed atomic.Bool
}

// New creates an engine. Without options it opens the best registered
// device, preferring the GPU and falling back to the software device.
func New(opts ...Option) (*Engine, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.overlap < 0 || o.maxTexture <= o.overlap {
		return nil, fmt.Errorf("%w: max texture size %d with overlap %d",
			ErrInvalidOption, o.maxTexture, o.overlap)
	}
	if o.concurrency < 0 {
		return nil, fmt.Errorf("%w: concurrency %d", ErrInvalidOption, o.concurrency)
	}

	dev, owned, err := openDevice(&o)
	if err != nil {
		return nil, err
	}
	propagateLogger(dev, Logger())

	e := &Engine{
		device: dev,
		owned:  owned,
		coord: &tiling.Coordinator{
			Device:      dev,
			MaxSize:     o.maxTexture,
			Overlap:     o.overlap,
			Concurrency: o.concurrency,
			Scratch:     raster.NewPool(max(o.concurrency, 4)),
			Logger:      Logger(),
		},
	}
	Logger().Info("exposure: engine ready",
		"device", dev.Name(),
		"block_size", e.coord.BlockSize(),
		"overlap", o.overlap)
	return e, nil
}

func openDevice(o *options) (Device, bool, error) {
	switch {
	case o.device != nil:
		if err := o.device.Init(); err != nil {
			return nil, false, err
		}
		return o.device, false, nil

	case o.provider != nil:
		d, err := openProvider(o.provider)
		if err != nil {
			return nil, false, err
		}
		return d, true, nil

	case o.deviceName != "":
		d, err := compute.Open(o.deviceName)
		if err != nil {
			return nil, false, err
		}
		return d, true, nil
	}

	d, err := compute.OpenBest(Logger())
	if err != nil {
		return nil, false, err
	}
	if d.Name() == compute.DeviceSoftware {
		Logger().Warn("exposure: no GPU device, using software device")
	}
	return d, true, nil
}

// DeviceName returns the name of the device the engine runs on.
func (e *Engine) DeviceName() string { return e.device.Name() }

// BlockSize returns the largest block edge used for tiled correction.
func (e *Engine) BlockSize() int { return e.coord.BlockSize() }

// Close releases the device if the engine opened it. Close is idempotent.
func (e *Engine) Close() error {
	if !e.closed.CompareAndSwap(false, true) {
		return nil
	}
	if e.owned {
		return e.device.Close()
	}
	return nil
}

// ComputeHistogram counts the red, green, blue and brightness values of
// every pixel of img. The image is padded to the workgroup size for the
// device pass and the padding is removed from the counts, so the brightness
// histogram always sums to Width*Height. img is not modified.
func (e *Engine) ComputeHistogram(ctx context.Context, img RawImage) (Histogram, error) {
	if e.closed.Load() {
		return Histogram{}, ErrClosed
	}
	src, err := img.raster()
	if err != nil {
		return Histogram{}, err
	}
	return e.histogram(ctx, src)
}

func (e *Engine) histogram(ctx context.Context, src *raster.Raster) (Histogram, error) {
	padded, err := raster.Pad(src, raster.WorkgroupSize)
	if err != nil {
		return Histogram{}, fmt.Errorf("%w: %w", ErrInvalidImageData, err)
	}
	Logger().Debug("exposure: histogram",
		"width", src.Width, "height", src.Height,
		"padded_width", padded.Width, "padded_height", padded.Height,
		"padding", padded.PaddedPixels)

	bins, err := e.coord.Histogram(ctx, padded.Raster)
	if err != nil {
		return Histogram{}, err
	}
	h, err := histogramFromBins(&bins, padded.PaddedPixels)
	if err != nil {
		return Histogram{}, err
	}
	if total, want := h.Total(), uint64(src.PixelCount()); total != want {
		return Histogram{}, fmt.Errorf("%w: histogram counted %d pixels, want %d",
			ErrAssertion, total, want)
	}
	return h, nil
}

// AutoExposureCorrect returns an exposure-corrected copy of img. strength
// is clamped to [0, 10]; 0 leaves every pixel unchanged and 1 is the
// nominal correction. The result has the dimensions of img and img is not
// modified.
func (e *Engine) AutoExposureCorrect(ctx context.Context, img RawImage, strength float64) (RawImage, error) {
	if e.closed.Load() {
		return RawImage{}, ErrClosed
	}
	src, err := img.raster()
	if err != nil {
		return RawImage{}, err
	}

	h, err := e.histogram(ctx, src)
	if err != nil {
		return RawImage{}, err
	}
	params := EstimateToneParams(h)
	Logger().Debug("exposure: tone params",
		"target_exposure", params.TargetExposure,
		"local_adjust", params.LocalAdjustFactor,
		"strength", clampStrength(strength))

	out, err := e.coord.Expose(ctx, src, params.uniforms(strength))
	if err != nil {
		return RawImage{}, err
	}
	if out.Width != img.Width || out.Height != img.Height {
		return RawImage{}, fmt.Errorf("%w: corrected image is %dx%d, want %dx%d",
			ErrAssertion, out.Width, out.Height, img.Width, img.Height)
	}
	return RawImage{Width: out.Width, Height: out.Height, Data: out.Pix}, nil
}

// Devices returns the names of the registered devices in preference order.
func Devices() []string { return compute.Available() }

var (
	defaultMu     sync.Mutex
	defaultEngine *Engine
)

// Default returns the process-wide engine used by the package-level
// functions, creating it on first use. A failed creation is not cached.
func Default() (*Engine, error) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultEngine != nil {
		return defaultEngine, nil
	}
	e, err := New()
	if err != nil {
		return nil, err
	}
	defaultEngine = e
	return e, nil
}

// ComputeHistogram runs Engine.ComputeHistogram on the default engine.
func ComputeHistogram(img RawImage) (Histogram, error) {
	e, err := Default()
	if err != nil {
		return Histogram{}, err
	}
	return e.ComputeHistogram(context.Background(), img)
}

// AutoExposureCorrect runs Engine.AutoExposureCorrect on the default
// engine.
func AutoExposureCorrect(img RawImage, strength float64) (RawImage, error) {
	e, err := Default()
	if err != nil {
		return RawImage{}, err
	}
	return e.AutoExposureCorrect(context.Background(), img, strength)
}
