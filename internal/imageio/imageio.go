// Package imageio converts between on-disk 2-D images and the flat
// float64 representation used by the pyramid pipeline. Intensities map to
// the [0, 1] range.
package imageio

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"imgpyramid/internal/models"
)

// LoadGray reads a JPEG or PNG file as a grayscale 2-D image. The first
// image dimension is the row (y) axis.
func LoadGray(path string) (*models.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	src, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	bounds := src.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	out := models.NewImage(models.NewMetadata([]int{height, width}))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, _, _, _ := src.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			// Convert 16-bit color to float64 (0-1 range)
			out.Data[y*width+x] = float64(r) / 65535.0
		}
	}
	return out, nil
}

// SaveGray writes a 2-D image as a grayscale file. Format is "jpeg" or
// "png"; values are clamped to [0, 1] before quantization.
func SaveGray(img *models.Image, path, format string) error {
	if img.Dims() != 2 {
		return fmt.Errorf("can only save 2-D images, got %d dimensions", img.Dims())
	}
	height := img.Meta.Extent[0]
	width := img.Meta.Extent[1]

	gray := image.NewGray16(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := img.Data[y*width+x]
			if v < 0 {
				v = 0
			} else if v > 1 {
				v = 1
			}
			gray.Set(x, y, color.Gray16{Y: uint16(v * 65535.0)})
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()

	switch strings.ToLower(format) {
	case "png":
		return png.Encode(file, gray)
	case "jpeg", "jpg", "":
		return jpeg.Encode(file, gray, &jpeg.Options{Quality: 90})
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}
