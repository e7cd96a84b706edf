package image

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPad_AlignedIsNoop(t *testing.T) {
	for _, size := range [][2]int{{16, 16}, {32, 48}, {2048, 16}} {
		r, err := NewRaster(size[0], size[1])
		require.NoError(t, err)
		r.Pix[0] = 42

		p, err := Pad(r, WorkgroupSize)
		require.NoError(t, err)
		require.Zero(t, p.PaddedPixels)
		require.Same(t, r, p.Raster, "aligned raster must be returned unchanged")
		require.Same(t, r, p.Crop())
	}
}

func TestPad_Unaligned(t *testing.T) {
	r, err := NewRaster(17, 3)
	require.NoError(t, err)
	for i := range r.Pix {
		r.Pix[i] = 200
	}
	orig := r.Clone()

	p, err := Pad(r, WorkgroupSize)
	require.NoError(t, err)
	require.Equal(t, 32, p.Width)
	require.Equal(t, 16, p.Height)
	require.Equal(t, 32*16-17*3, p.PaddedPixels)
	require.Equal(t, orig.Pix, r.Pix, "input must not be mutated")

	for y := range p.Height {
		for x := range p.Width {
			v := p.Pix[p.PixOffset(x, y)]
			if x < 17 && y < 3 {
				require.EqualValues(t, 200, v, "pixel (%d,%d)", x, y)
			} else {
				require.Zero(t, v, "padding pixel (%d,%d)", x, y)
			}
		}
	}

	require.Equal(t, orig.Pix, p.Crop().Pix)
}

func TestPad_SinglePixel(t *testing.T) {
	r, err := WrapRaster(1, 1, []byte{1, 2, 3, 4})
	require.NoError(t, err)

	p, err := Pad(r, WorkgroupSize)
	require.NoError(t, err)
	require.Equal(t, 255, p.PaddedPixels)
	require.Equal(t, []byte{1, 2, 3, 4}, p.Crop().Pix)
}

func TestPad_Invalid(t *testing.T) {
	_, err := Pad(&Raster{Width: 0, Height: 4}, WorkgroupSize)
	require.ErrorIs(t, err, ErrInvalidDimensions)

	_, err = Pad(&Raster{Width: 2, Height: 2, Pix: make([]byte, 4)}, WorkgroupSize)
	require.ErrorIs(t, err, ErrDataSize)
}

func TestAlignUp(t *testing.T) {
	cases := map[[2]int]int{
		{0, 16}:    0,
		{1, 16}:    16,
		{16, 16}:   16,
		{17, 16}:   32,
		{4, 256}:   256,
		{512, 256}: 512,
	}
	for in, want := range cases {
		require.Equal(t, want, AlignUp(in[0], in[1]), "AlignUp(%d, %d)", in[0], in[1])
	}
}
