package image

// WorkgroupSize is the edge length of one compute workgroup. Rasters
// uploaded for histogram accumulation are padded to multiples of it.
const WorkgroupSize = 16

// Padded is a raster rounded up to workgroup-aligned dimensions together
// with the geometry of the original image it was built from.
type Padded struct {
	*Raster

	// OrigWidth and OrigHeight are the dimensions before padding.
	OrigWidth  int
	OrigHeight int

	// PaddedPixels is the number of synthetic transparent-black pixels
	// added: Width*Height - OrigWidth*OrigHeight.
	PaddedPixels int
}

// AlignUp rounds n up to the next multiple of align.
func AlignUp(n, align int) int {
	return (n + align - 1) / align * align
}

// Pad returns r rounded up to multiples of align in both dimensions.
//
// When r is already aligned the original raster is returned as is, sharing
// its pixel slice, with PaddedPixels == 0. Otherwise a zero-filled raster is
// allocated and every source row is copied into it.
func Pad(r *Raster, align int) (*Padded, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	if align <= 1 {
		align = 1
	}

	pw, ph := AlignUp(r.Width, align), AlignUp(r.Height, align)
	if pw == r.Width && ph == r.Height {
		return &Padded{Raster: r, OrigWidth: r.Width, OrigHeight: r.Height}, nil
	}

	dst := &Raster{Width: pw, Height: ph, Pix: make([]byte, pw*ph*BytesPerPixel)}
	dst.Blit(r, 0, 0)

	return &Padded{
		Raster:       dst,
		OrigWidth:    r.Width,
		OrigHeight:   r.Height,
		PaddedPixels: pw*ph - r.Width*r.Height,
	}, nil
}

// Crop returns the original-size region of the padded raster. If no padding
// was added the underlying raster is returned without copying.
func (p *Padded) Crop() *Raster {
	if p.PaddedPixels == 0 {
		return p.Raster
	}
	dst := &Raster{
		Width:  p.OrigWidth,
		Height: p.OrigHeight,
		Pix:    make([]byte, p.OrigWidth*p.OrigHeight*BytesPerPixel),
	}
	p.copyRegion(dst, 0, 0)
	return dst
}
