// Package image provides the RGBA8 raster buffers that move between the
// exposure pipeline stages: padding to workgroup alignment, block
// extraction, aligned row unpacking and block merging.
package image

import (
	"errors"
	"fmt"
)

// BytesPerPixel is the size of one RGBA8 texel.
const BytesPerPixel = 4

// Common errors for raster operations.
var (
	// ErrInvalidDimensions is returned when width or height is non-positive.
	ErrInvalidDimensions = errors.New("image: invalid dimensions")

	// ErrDataSize is returned when the pixel slice length does not equal
	// width*height*4.
	ErrDataSize = errors.New("image: data length does not match dimensions")

	// ErrOutOfBounds is returned when a region lies outside the raster.
	ErrOutOfBounds = errors.New("image: region out of bounds")
)

// Raster is a tightly packed RGBA8 pixel buffer. Rows are stored top to
// bottom with a stride of exactly Width*4 bytes.
//
// Raster values are treated as immutable once handed to a pipeline stage;
// every stage that changes pixels returns a new Raster.
type Raster struct {
	Width  int
	Height int
	Pix    []byte
}

// NewRaster allocates a zero-filled (transparent black) raster.
func NewRaster(width, height int) (*Raster, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	return &Raster{
		Width:  width,
		Height: height,
		Pix:    make([]byte, width*height*BytesPerPixel),
	}, nil
}

// WrapRaster validates pix against the dimensions and wraps it without
// copying.
func WrapRaster(width, height int, pix []byte) (*Raster, error) {
	r := &Raster{Width: width, Height: height, Pix: pix}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// Validate checks the raster invariants.
func (r *Raster) Validate() error {
	if r == nil || r.Width <= 0 || r.Height <= 0 {
		w, h := 0, 0
		if r != nil {
			w, h = r.Width, r.Height
		}
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, w, h)
	}
	if want := r.Width * r.Height * BytesPerPixel; len(r.Pix) != want {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrDataSize, len(r.Pix), want)
	}
	return nil
}

// Stride returns the number of bytes per row.
func (r *Raster) Stride() int { return r.Width * BytesPerPixel }

// PixelCount returns Width*Height.
func (r *Raster) PixelCount() int { return r.Width * r.Height }

// PixOffset returns the index of the first byte of pixel (x, y).
func (r *Raster) PixOffset(x, y int) int {
	return y*r.Stride() + x*BytesPerPixel
}

// Clone returns a deep copy of the raster.
func (r *Raster) Clone() *Raster {
	pix := make([]byte, len(r.Pix))
	copy(pix, r.Pix)
	return &Raster{Width: r.Width, Height: r.Height, Pix: pix}
}

// SubRaster copies the w×h region at (x, y) into a new raster.
func (r *Raster) SubRaster(x, y, w, h int) (*Raster, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, w, h)
	}
	dst := &Raster{Width: w, Height: h, Pix: make([]byte, w*h*BytesPerPixel)}
	if err := r.Extract(dst, x, y); err != nil {
		return nil, err
	}
	return dst, nil
}

// Extract fills dst with the region of r whose top-left corner is (x, y).
// The region must lie entirely inside r.
func (r *Raster) Extract(dst *Raster, x, y int) error {
	if err := dst.Validate(); err != nil {
		return err
	}
	if x < 0 || y < 0 || x+dst.Width > r.Width || y+dst.Height > r.Height {
		return fmt.Errorf("%w: %dx%d at (%d,%d) in %dx%d",
			ErrOutOfBounds, dst.Width, dst.Height, x, y, r.Width, r.Height)
	}
	r.copyRegion(dst, x, y)
	return nil
}

// copyRegion fills dst with the region of r starting at (x, y).
func (r *Raster) copyRegion(dst *Raster, x, y int) {
	rowBytes := dst.Stride()
	for row := range dst.Height {
		src := r.PixOffset(x, y+row)
		copy(dst.Pix[row*rowBytes:(row+1)*rowBytes], r.Pix[src:src+rowBytes])
	}
}

// Blit writes src into r with its top-left corner at (x, y). Pixels already
// present in the covered area are replaced, so overlapping blits resolve
// to the last writer. src is clipped to r's bounds.
func (r *Raster) Blit(src *Raster, x, y int) {
	x0, y0 := max(x, 0), max(y, 0)
	x1, y1 := min(x+src.Width, r.Width), min(y+src.Height, r.Height)
	if x0 >= x1 || y0 >= y1 {
		return
	}
	rowBytes := (x1 - x0) * BytesPerPixel
	for dy := y0; dy < y1; dy++ {
		s := src.PixOffset(x0-x, dy-y)
		d := r.PixOffset(x0, dy)
		copy(r.Pix[d:d+rowBytes], src.Pix[s:s+rowBytes])
	}
}
