package debug

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"

	"github.com/Faultbox/meshview/internal/engine/picking"
)

// PickLegendSwatch is the edge length in pixels of one legend cell.
const PickLegendSwatch = 8

// PickLegend draws one swatch per ordinal in its pick colour, left to right on
// a background-coloured strip. Useful for checking a pick pass by eye.
func PickLegend(count int) (*image.RGBA, error) {
	if !picking.CanEncode(count) {
		return nil, fmt.Errorf("%w: %d", picking.ErrTooManySubMeshes, count)
	}

	width := count * PickLegendSwatch
	if width == 0 {
		width = PickLegendSwatch
	}
	img := image.NewRGBA(image.Rect(0, 0, width, PickLegendSwatch))
	for i := range img.Pix {
		img.Pix[i] = 255
	}

	for ord := 0; ord < count; ord++ {
		rgb, err := picking.EncodeRGB8(ord)
		if err != nil {
			return nil, err
		}
		c := color.RGBA{R: rgb[0], G: rgb[1], B: rgb[2], A: 255}
		for y := 0; y < PickLegendSwatch; y++ {
			for x := ord * PickLegendSwatch; x < (ord+1)*PickLegendSwatch; x++ {
				img.SetRGBA(x, y, c)
			}
		}
	}
	return img, nil
}

// WritePNG encodes img to path, creating parent directories.
func WritePNG(path string, img image.Image) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating output dir: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	defer file.Close()

	if err := png.Encode(file, img); err != nil {
		return fmt.Errorf("encoding PNG: %w", err)
	}
	return file.Close()
}
