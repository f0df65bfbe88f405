package imagegen

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"  // GIF payloads.
	_ "image/jpeg" // JPEG payloads.
	_ "image/png"  // PNG payloads.

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // WebP payloads.
)

// PlaceholderSize is the edge length of placeholder images.
const PlaceholderSize = 512

// FormatPlaceholder marks synthetic images.
const FormatPlaceholder = "placeholder"

// maxImageSide bounds the dimensions accepted from a payload header.
const maxImageSide = 8192

var placeholderColor = color.RGBA{R: 0xFF, G: 0xEB, B: 0x04, A: 0xFF}

var (
	errEmptyPayload  = errors.New("empty image payload")
	errImageTooLarge = errors.New("image dimensions too large")
)

// Image is one entry of a generation result.
type Image struct {
	Image       image.Image
	Format      string
	Data        []byte
	Placeholder bool
}

// Placeholder returns the synthetic image used for missing results: a solid
// yellow square, identical for every position in a result.
func Placeholder() Image {
	img := image.NewRGBA(image.Rect(0, 0, PlaceholderSize, PlaceholderSize))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: placeholderColor}, image.Point{}, draw.Src)
	return Image{Image: img, Format: FormatPlaceholder, Placeholder: true}
}

// Placeholders returns n placeholder images.
func Placeholders(n int) []Image {
	out := make([]Image, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, Placeholder())
	}
	return out
}

// DecodeImage materializes an encoded PNG, JPEG, GIF or WebP payload.
func DecodeImage(data []byte) (Image, error) {
	if len(data) == 0 {
		return Image{}, errEmptyPayload
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Image{}, fmt.Errorf("failed to read image header: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width > maxImageSide || cfg.Height > maxImageSide {
		return Image{}, fmt.Errorf("%w: %dx%d", errImageTooLarge, cfg.Width, cfg.Height)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return Image{}, fmt.Errorf("failed to decode %s image: %w", format, err)
	}
	return Image{Image: img, Format: format, Data: data}, nil
}
