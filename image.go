package exposure

import (
	"fmt"
	"image"

	"golang.org/x/image/draw"

	raster "github.com/gogpu/exposure/internal/image"
)

// Channels is the number of bytes per pixel of a RawImage.
const Channels = raster.BytesPerPixel

// RawImage is a non-premultiplied RGBA8 image. Rows are tightly packed top
// to bottom: len(Data) == Width*Height*Channels.
type RawImage struct {
	Width  int
	Height int
	Data   []byte
}

// NewRawImage returns a RawImage over data. A nil data allocates a
// transparent black image.
func NewRawImage(width, height int, data []byte) (RawImage, error) {
	if data == nil && width > 0 && height > 0 {
		data = make([]byte, width*height*Channels)
	}
	img := RawImage{Width: width, Height: height, Data: data}
	if err := img.Validate(); err != nil {
		return RawImage{}, err
	}
	return img, nil
}

// Validate reports whether the image invariants hold. The returned error
// wraps ErrInvalidImageData.
func (img RawImage) Validate() error {
	_, err := img.raster()
	return err
}

// raster wraps the image pixels without copying.
func (img RawImage) raster() (*raster.Raster, error) {
	r, err := raster.WrapRaster(img.Width, img.Height, img.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidImageData, err)
	}
	return r, nil
}

// FromImage converts any image.Image to a RawImage. *image.NRGBA sources
// are copied row by row so color under zero alpha survives; other types
// are drawn through x/image/draw.
func FromImage(src image.Image) (RawImage, error) {
	if src == nil {
		return RawImage{}, fmt.Errorf("%w: nil image", ErrInvalidImageData)
	}
	b := src.Bounds()
	if b.Empty() {
		return RawImage{}, fmt.Errorf("%w: empty bounds %v", ErrInvalidImageData, b)
	}

	w, h := b.Dx(), b.Dy()
	out := RawImage{Width: w, Height: h, Data: make([]byte, w*h*Channels)}
	rowBytes := w * Channels

	if n, ok := src.(*image.NRGBA); ok {
		for y := range h {
			start := n.PixOffset(b.Min.X, b.Min.Y+y)
			copy(out.Data[y*rowBytes:(y+1)*rowBytes], n.Pix[start:start+rowBytes])
		}
		return out, nil
	}

	dst := &image.NRGBA{Pix: out.Data, Stride: rowBytes, Rect: image.Rect(0, 0, w, h)}
	draw.Draw(dst, dst.Rect, src, b.Min, draw.Src)
	return out, nil
}

// ToNRGBA returns a copy of the image as *image.NRGBA.
func (img RawImage) ToNRGBA() *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, img.Width, img.Height))
	copy(dst.Pix, img.Data)
	return dst
}

// Clone returns a deep copy of the image.
func (img RawImage) Clone() RawImage {
	data := make([]byte, len(img.Data))
	copy(data, img.Data)
	return RawImage{Width: img.Width, Height: img.Height, Data: data}
}
