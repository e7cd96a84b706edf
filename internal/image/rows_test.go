package image

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAlignedRowBytes(t *testing.T) {
	require.Equal(t, 256, AlignedRowBytes(1))
	require.Equal(t, 256, AlignedRowBytes(64))
	require.Equal(t, 512, AlignedRowBytes(65))
	require.Equal(t, 8192, AlignedRowBytes(2048))
}

func TestUnpackRows(t *testing.T) {
	const w, h = 3, 2
	bpr := AlignedRowBytes(w)
	data := make([]byte, bpr*h)
	for y := range h {
		for i := range w * BytesPerPixel {
			data[y*bpr+i] = byte(y*100 + i)
		}
		// Row padding must not leak into the result.
		data[y*bpr+w*BytesPerPixel] = 0xEE
	}

	r, err := UnpackRows(w, h, bpr, data)
	require.NoError(t, err)
	require.Equal(t, w, r.Width)
	require.Equal(t, h, r.Height)
	for y := range h {
		for i := range w * BytesPerPixel {
			require.EqualValues(t, y*100+i, r.Pix[y*w*BytesPerPixel+i])
		}
	}
}

func TestUnpackRows_Tight(t *testing.T) {
	data := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	r, err := UnpackRows(1, 2, 4, data)
	require.NoError(t, err)
	require.Equal(t, data, r.Pix)
}

func TestUnpackRows_ShortData(t *testing.T) {
	_, err := UnpackRows(2, 2, 256, make([]byte, 256))
	require.ErrorIs(t, err, ErrDataSize)

	_, err = UnpackRows(2, 1, 4, make([]byte, 8))
	require.ErrorIs(t, err, ErrDataSize)
}
