// Package tiling splits images larger than the device texture limit into
// overlapping blocks, runs the exposure kernel on each block and merges
// the results back into one raster.
package tiling

import (
	"fmt"

	"github.com/gogpu/exposure/internal/compute"
)

// Defaults for block geometry.
const (
	DefaultMaxTextureSize = 2048
	DefaultOverlap        = 64
)

// Block is the placement of one tile inside the full image.
type Block struct {
	X, Y          int
	Width, Height int

	FirstX, LastX bool
	FirstY, LastY bool
}

func (b Block) String() string {
	return fmt.Sprintf("%dx%d@(%d,%d)", b.Width, b.Height, b.X, b.Y)
}

// NeedsTiling reports whether a width×height image exceeds maxSize in
// either direction.
func NeedsTiling(width, height, maxSize int) bool {
	return maxSize > 0 && (width > maxSize || height > maxSize)
}

// Partition covers a width×height image with blocks of at most maxSize
// pixels per side. Neighboring blocks share overlap pixels; blocks on the
// right and bottom edges are clipped to the image. Blocks are returned in
// row-major order, which is also the merge order.
func Partition(width, height, maxSize, overlap int) ([]Block, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: partition of %dx%d image", compute.ErrAssertion, width, height)
	}
	if overlap < 0 || maxSize <= overlap {
		return nil, fmt.Errorf("%w: block size %d with overlap %d", compute.ErrAssertion, maxSize, overlap)
	}

	step := maxSize - overlap
	nx := (width + step - 1) / step
	ny := (height + step - 1) / step

	blocks := make([]Block, 0, nx*ny)
	for by := range ny {
		for bx := range nx {
			left, top := bx*step, by*step
			b := Block{
				X:      left,
				Y:      top,
				Width:  min(left+maxSize, width) - left,
				Height: min(top+maxSize, height) - top,
				FirstX: bx == 0,
				LastX:  bx == nx-1,
				FirstY: by == 0,
				LastY:  by == ny-1,
			}
			if b.Width <= 0 || b.Height <= 0 {
				return nil, fmt.Errorf("%w: block (%d,%d) has extent %dx%d",
					compute.ErrAssertion, bx, by, b.Width, b.Height)
			}
			blocks = append(blocks, b)
		}
	}
	return blocks, nil
}

// Chunks covers a width×height image with disjoint rectangles of at most
// maxSize pixels per side, for stages such as histogram accumulation whose
// results simply add up.
func Chunks(width, height, maxSize int) ([]Block, error) {
	if maxSize <= 0 {
		maxSize = max(width, height)
	}
	return Partition(width, height, maxSize, 0)
}
