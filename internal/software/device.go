// Package software implements the compute device on the CPU.
//
// Histogram accumulation follows the GPU model: every worker increments a
// shared 1024-slot counter array with atomic adds. Workers first reduce
// their own row band into private counters and then fold them into the
// shared array, which keeps the atomics off the per-pixel path.
package software

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gogpu/exposure/internal/compute"
	"github.com/gogpu/exposure/internal/image"
	"github.com/gogpu/exposure/internal/parallel"
)

func init() {
	compute.Register(compute.DeviceSoftware, func() compute.Device {
		return New(0)
	})
}

// Device is the CPU compute device.
type Device struct {
	mu      sync.RWMutex
	workers int
	pool    *parallel.WorkerPool
}

// New returns an uninitialized software device with the given worker
// count. Zero or negative means GOMAXPROCS.
func New(workers int) *Device {
	return &Device{workers: workers}
}

// Name returns compute.DeviceSoftware.
func (d *Device) Name() string { return compute.DeviceSoftware }

// Init starts the worker pool. It never reports the device unavailable.
func (d *Device) Init() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pool == nil {
		d.pool = parallel.NewWorkerPool(d.workers)
	}
	return nil
}

// Close stops the worker pool.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pool != nil {
		d.pool.Close()
		d.pool = nil
	}
	return nil
}

// MaxTextureDimension returns 0: the CPU has no texture limit.
func (d *Device) MaxTextureDimension() int { return 0 }

// Workers returns the number of pool workers, or 0 before Init.
func (d *Device) Workers() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.pool == nil {
		return 0
	}
	return d.pool.Workers()
}

// Histogram counts every pixel of src.
func (d *Device) Histogram(ctx context.Context, src *image.Raster) (compute.Bins, error) {
	if err := src.Validate(); err != nil {
		return compute.Bins{}, err
	}

	var shared [compute.HistogramSlots]atomic.Uint32
	err := d.run(ctx, src.Height, func(y0, y1 int) {
		var local compute.Bins
		for i := src.PixOffset(0, y0); i < src.PixOffset(0, y1); i += image.BytesPerPixel {
			local.CountPixel(src.Pix[i : i+image.BytesPerPixel])
		}
		for slot, n := range local {
			if n != 0 {
				shared[slot].Add(n)
			}
		}
	})
	if err != nil {
		return compute.Bins{}, err
	}

	var bins compute.Bins
	for i := range shared {
		bins[i] = shared[i].Load()
	}
	return bins, nil
}

// Expose applies the exposure kernel to a copy of src.
func (d *Device) Expose(ctx context.Context, src *image.Raster, u *compute.Uniforms) (*image.Raster, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}
	if u == nil {
		return nil, fmt.Errorf("%w: nil uniforms", compute.ErrAssertion)
	}

	dst, err := image.NewRaster(src.Width, src.Height)
	if err != nil {
		return nil, err
	}
	err = d.run(ctx, src.Height, func(y0, y1 int) {
		for i := src.PixOffset(0, y0); i < src.PixOffset(0, y1); i += image.BytesPerPixel {
			u.ExposePixel(dst.Pix[i:i+image.BytesPerPixel], src.Pix[i:i+image.BytesPerPixel])
		}
	})
	if err != nil {
		return nil, err
	}
	return dst, nil
}

// run executes fn over row bands on the pool, honoring ctx before and
// after the parallel section.
func (d *Device) run(ctx context.Context, height int, fn func(y0, y1 int)) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	d.mu.RLock()
	pool := d.pool
	d.mu.RUnlock()
	if pool == nil {
		return fmt.Errorf("software: %w", compute.ErrNotInitialized)
	}

	pool.ForEachBand(height, fn)
	return ctx.Err()
}
