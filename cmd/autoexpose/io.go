package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gogpu/exposure"
	raster "github.com/gogpu/exposure/internal/image"
)

// readImage decodes any registered format into a RawImage.
func readImage(path string) (exposure.RawImage, string, error) {
	src, format, err := raster.Load(path)
	if err != nil {
		return exposure.RawImage{}, "", err
	}
	img, err := exposure.FromImage(src)
	if err != nil {
		return exposure.RawImage{}, "", fmt.Errorf("convert %s: %w", path, err)
	}
	return img, format, nil
}

// defaultOutput derives the corrected file name from the input name.
func defaultOutput(in string) string {
	return strings.TrimSuffix(in, filepath.Ext(in)) + "-exposed.png"
}

func writeImage(path string, img exposure.RawImage) error {
	return raster.Save(path, img.ToNRGBA())
}
