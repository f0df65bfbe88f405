package tui

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/image/draw"
)

const halfBlock = "▀"

// RenderPreview draws img cols cells wide with half blocks, two pixel rows per
// terminal row.
func RenderPreview(img image.Image, cols int) string {
	if img == nil || cols <= 0 {
		return ""
	}
	b := img.Bounds()
	rows := cols * b.Dy() / b.Dx() / 2
	if rows < 1 {
		rows = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, cols, rows*2))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)

	var out strings.Builder
	for y := 0; y < rows*2; y += 2 {
		if y > 0 {
			out.WriteRune('\n')
		}
		for x := 0; x < cols; x++ {
			style := lipgloss.NewStyle().
				Foreground(hexColor(dst.RGBAAt(x, y))).
				Background(hexColor(dst.RGBAAt(x, y+1)))
			out.WriteString(style.Render(halfBlock))
		}
	}
	return out.String()
}

func hexColor(c color.RGBA) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B))
}
