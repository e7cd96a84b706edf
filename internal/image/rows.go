package image

import "fmt"

// CopyRowAlignment is the bytesPerRow alignment WebGPU requires for
// texture-to-buffer copies.
const CopyRowAlignment = 256

// AlignedRowBytes returns the padded bytesPerRow for a texture of the given
// width when copied into a buffer.
func AlignedRowBytes(width int) int {
	return AlignUp(width*BytesPerPixel, CopyRowAlignment)
}

// UnpackRows builds a tight raster from readback data laid out with
// bytesPerRow bytes per scanline.
func UnpackRows(width, height, bytesPerRow int, data []byte) (*Raster, error) {
	dst, err := NewRaster(width, height)
	if err != nil {
		return nil, err
	}
	rowBytes := dst.Stride()
	if bytesPerRow < rowBytes {
		return nil, fmt.Errorf("%w: bytesPerRow %d < %d", ErrDataSize, bytesPerRow, rowBytes)
	}
	if need := (height-1)*bytesPerRow + rowBytes; len(data) < need {
		return nil, fmt.Errorf("%w: readback has %d bytes, want %d", ErrDataSize, len(data), need)
	}

	if bytesPerRow == rowBytes {
		copy(dst.Pix, data[:len(dst.Pix)])
		return dst, nil
	}
	for y := range height {
		copy(dst.Pix[y*rowBytes:(y+1)*rowBytes], data[y*bytesPerRow:y*bytesPerRow+rowBytes])
	}
	return dst, nil
}
