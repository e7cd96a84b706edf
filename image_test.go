package exposure

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRawImage(t *testing.T) {
	img, err := NewRawImage(3, 2, nil)
	require.NoError(t, err)
	assert.Len(t, img.Data, 3*2*Channels)

	_, err = NewRawImage(3, 2, make([]byte, 5))
	require.ErrorIs(t, err, ErrInvalidImageData)

	_, err = NewRawImage(0, 2, nil)
	require.ErrorIs(t, err, ErrInvalidImageData)

	_, err = NewRawImage(-1, 2, make([]byte, 8))
	require.ErrorIs(t, err, ErrInvalidImageData)
}

func TestFromImage_NRGBASubImage(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	src.SetNRGBA(1, 1, color.NRGBA{R: 200, G: 100, B: 50, A: 0})
	src.SetNRGBA(2, 2, color.NRGBA{R: 1, G: 2, B: 3, A: 4})
	sub := src.SubImage(image.Rect(1, 1, 3, 3))

	img, err := FromImage(sub)
	require.NoError(t, err)
	assert.Equal(t, 2, img.Width)
	assert.Equal(t, 2, img.Height)
	// Color under zero alpha is kept.
	assert.Equal(t, []byte{200, 100, 50, 0}, img.Data[0:4])
	assert.Equal(t, []byte{1, 2, 3, 4}, img.Data[12:16])
}

func TestFromImage_Gray(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 2, 1))
	src.SetGray(0, 0, color.Gray{Y: 77})
	src.SetGray(1, 0, color.Gray{Y: 255})

	img, err := FromImage(src)
	require.NoError(t, err)
	assert.Equal(t, []byte{77, 77, 77, 255, 255, 255, 255, 255}, img.Data)
}

func TestFromImage_PremultipliedRGBA(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 1, 1))
	src.SetRGBA(0, 0, color.RGBA{R: 128, G: 64, B: 0, A: 128})

	img, err := FromImage(src)
	require.NoError(t, err)
	assert.InDelta(t, 255, int(img.Data[0]), 1)
	assert.InDelta(t, 127, int(img.Data[1]), 1)
	assert.Zero(t, img.Data[2])
	assert.EqualValues(t, 128, img.Data[3])
}

func TestFromImage_Invalid(t *testing.T) {
	_, err := FromImage(nil)
	require.ErrorIs(t, err, ErrInvalidImageData)

	_, err = FromImage(image.NewNRGBA(image.Rect(0, 0, 0, 5)))
	require.ErrorIs(t, err, ErrInvalidImageData)
}

func TestRawImage_ToNRGBAAndClone(t *testing.T) {
	img, err := NewRawImage(2, 1, []byte{1, 2, 3, 4, 5, 6, 7, 8})
	require.NoError(t, err)

	n := img.ToNRGBA()
	assert.Equal(t, image.Rect(0, 0, 2, 1), n.Bounds())
	assert.Equal(t, color.NRGBA{R: 5, G: 6, B: 7, A: 8}, n.NRGBAAt(1, 0))

	n.Pix[0] = 99
	c := img.Clone()
	c.Data[1] = 99
	assert.EqualValues(t, 1, img.Data[0])
	assert.EqualValues(t, 2, img.Data[1])
}
