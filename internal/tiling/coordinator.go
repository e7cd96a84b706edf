package tiling

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/gogpu/exposure/internal/compute"
	"github.com/gogpu/exposure/internal/image"
)

// Coordinator runs device stages over images of any size.
//
// A Coordinator is safe for concurrent use as long as its fields are not
// modified after the first call.
type Coordinator struct {
	Device compute.Device

	// MaxSize is the largest block edge. Zero uses DefaultMaxTextureSize;
	// it is further capped by the device's own texture limit.
	MaxSize int

	// Overlap is the number of pixels neighboring blocks share.
	Overlap int

	// Concurrency bounds how many blocks are in flight. Zero uses
	// GOMAXPROCS.
	Concurrency int

	// Scratch holds block input rasters between uses. Optional.
	Scratch *image.Pool

	Logger *slog.Logger
}

// BlockSize returns the effective block edge.
func (c *Coordinator) BlockSize() int {
	size := c.MaxSize
	if size <= 0 {
		size = DefaultMaxTextureSize
	}
	if limit := c.Device.MaxTextureDimension(); limit > 0 {
		size = min(size, limit)
	}
	return size
}

func (c *Coordinator) limit() int {
	if c.Concurrency > 0 {
		return c.Concurrency
	}
	return runtime.GOMAXPROCS(0)
}

func (c *Coordinator) log() *slog.Logger {
	if c.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return c.Logger
}

// Histogram accumulates the counters of every pixel of src. Images larger
// than the device texture limit are counted in disjoint chunks whose
// counters are summed.
func (c *Coordinator) Histogram(ctx context.Context, src *image.Raster) (compute.Bins, error) {
	limit := c.Device.MaxTextureDimension()
	if !NeedsTiling(src.Width, src.Height, limit) {
		return c.Device.Histogram(ctx, src)
	}

	chunks, err := Chunks(src.Width, src.Height, limit)
	if err != nil {
		return compute.Bins{}, err
	}
	c.log().Debug("tiling: histogram in chunks", "chunks", len(chunks), "limit", limit)

	partial := make([]compute.Bins, len(chunks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.limit())
	for i, ch := range chunks {
		g.Go(func() error {
			sub, err := src.SubRaster(ch.X, ch.Y, ch.Width, ch.Height)
			if err != nil {
				return err
			}
			bins, err := c.Device.Histogram(gctx, sub)
			if err != nil {
				return fmt.Errorf("histogram chunk %v: %w", ch, err)
			}
			partial[i] = bins
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return compute.Bins{}, err
	}

	var total compute.Bins
	for i := range partial {
		total.Add(&partial[i])
	}
	return total, nil
}

// Expose applies the exposure kernel to src and returns a new raster of the
// same size. Oversized images are split into overlapping blocks that all
// share u; blocks are processed concurrently and merged in row-major order
// with later blocks overwriting the shared band. If any block fails the
// whole call fails and no partial image is returned.
func (c *Coordinator) Expose(ctx context.Context, src *image.Raster, u *compute.Uniforms) (*image.Raster, error) {
	size := c.BlockSize()
	if !NeedsTiling(src.Width, src.Height, size) {
		return c.Device.Expose(ctx, src, u)
	}

	blocks, err := Partition(src.Width, src.Height, size, c.Overlap)
	if err != nil {
		return nil, err
	}
	c.log().Debug("tiling: exposure in blocks",
		"blocks", len(blocks), "size", size, "overlap", c.Overlap,
		"width", src.Width, "height", src.Height)

	results := make([]*image.Raster, len(blocks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.limit())
	for i, b := range blocks {
		g.Go(func() error {
			out, err := c.exposeBlock(gctx, src, b, u)
			if err != nil {
				return fmt.Errorf("block %v: %w", b, err)
			}
			results[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return merge(src.Width, src.Height, blocks, results)
}

func (c *Coordinator) exposeBlock(ctx context.Context, src *image.Raster, b Block, u *compute.Uniforms) (*image.Raster, error) {
	var in *image.Raster
	if c.Scratch != nil {
		in = c.Scratch.Get(b.Width, b.Height)
		defer c.Scratch.Put(in)
	} else {
		var err error
		if in, err = image.NewRaster(b.Width, b.Height); err != nil {
			return nil, err
		}
	}
	if in == nil {
		return nil, fmt.Errorf("%w: scratch raster %v", compute.ErrAssertion, b)
	}
	if err := src.Extract(in, b.X, b.Y); err != nil {
		return nil, err
	}
	return c.Device.Expose(ctx, in, u)
}

// merge composites block results onto a fresh canvas in block order.
func merge(width, height int, blocks []Block, results []*image.Raster) (*image.Raster, error) {
	dst, err := image.NewRaster(width, height)
	if err != nil {
		return nil, err
	}
	for i, b := range blocks {
		r := results[i]
		if r == nil || r.Width != b.Width || r.Height != b.Height {
			return nil, fmt.Errorf("%w: block %v produced %v", compute.ErrAssertion, b, describe(r))
		}
		dst.Blit(r, b.X, b.Y)
	}
	return dst, nil
}

func describe(r *image.Raster) string {
	if r == nil {
		return "no raster"
	}
	return fmt.Sprintf("%dx%d raster", r.Width, r.Height)
}
