package image

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// I/O errors.
var (
	// ErrUnsupportedFormat is returned when the image format is not supported.
	ErrUnsupportedFormat = errors.New("image: unsupported format")

	// ErrEmptyData is returned when image data is empty.
	ErrEmptyData = errors.New("image: empty data")
)

// JPEGQuality is the quality used when saving JPEG files.
const JPEGQuality = 95

// Load decodes the image file at path. PNG, JPEG, BMP, TIFF and WebP are
// detected from the content, not the extension.
func Load(path string) (image.Image, string, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, "", fmt.Errorf("image: open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return Decode(bufio.NewReader(f))
}

// LoadBytes decodes an image held in memory.
func LoadBytes(data []byte) (image.Image, string, error) {
	if len(data) == 0 {
		return nil, "", ErrEmptyData
	}
	return Decode(bytes.NewReader(data))
}

// Decode decodes an image from r and returns the detected format name.
func Decode(r io.Reader) (image.Image, string, error) {
	img, format, err := image.Decode(r)
	if errors.Is(err, image.ErrFormat) {
		return nil, "", fmt.Errorf("%w: %w", ErrUnsupportedFormat, err)
	}
	if err != nil {
		return nil, "", fmt.Errorf("image: decode: %w", err)
	}
	return img, format, nil
}

// Encoder writes m to w in one file format.
type Encoder func(w io.Writer, m image.Image) error

// EncoderFor selects an encoder from the extension of path. A missing
// extension selects PNG.
func EncoderFor(path string) (Encoder, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".png", "":
		enc := png.Encoder{CompressionLevel: png.BestSpeed}
		return enc.Encode, nil
	case ".tif", ".tiff":
		return func(w io.Writer, m image.Image) error {
			return tiff.Encode(w, m, &tiff.Options{Compression: tiff.Deflate})
		}, nil
	case ".bmp":
		return bmp.Encode, nil
	case ".jpg", ".jpeg":
		return func(w io.Writer, m image.Image) error {
			return jpeg.Encode(w, m, &jpeg.Options{Quality: JPEGQuality})
		}, nil
	default:
		return nil, fmt.Errorf("%w: output extension %q", ErrUnsupportedFormat, ext)
	}
}

// Save encodes m to path in the format named by its extension.
func Save(path string, m image.Image) (err error) {
	encode, err := EncoderFor(path)
	if err != nil {
		return err
	}

	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("image: create file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("image: close file: %w", cerr)
		}
	}()

	w := bufio.NewWriter(f)
	if err := encode(w, m); err != nil {
		return fmt.Errorf("image: encode %s: %w", filepath.Base(path), err)
	}
	return w.Flush()
}
