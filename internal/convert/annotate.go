// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"strconv"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/pdiddy/layoutmd/internal/layout"
)

var (
	textColor = color.RGBA{R: 0, G: 64, B: 255, A: 255}
	cellColor = color.RGBA{R: 0, G: 160, B: 0, A: 255}
	spanColor = color.RGBA{R: 220, G: 0, B: 0, A: 255}
)

// annotate draws spans, regions, table cells and reading-order numbers over
// a copy of the page raster.
func annotate(img image.Image, regions []layout.Region, spans []pixelSpan) *image.RGBA {
	b := img.Bounds()
	canvas := image.NewRGBA(b)
	draw.Draw(canvas, b, img, b.Min, draw.Src)

	for _, s := range spans {
		outline(canvas, s.box, spanColor, 1)
	}

	for i, r := range regions {
		c := textColor
		if r.Kind == layout.KindTable && r.Grid != nil {
			c = cellColor
			for row := 0; row < r.Grid.NumRows(); row++ {
				for col := 0; col < r.Grid.NumCols(); col++ {
					outline(canvas, r.Grid.Cell(row, col), cellColor, 1)
				}
			}
		}
		outline(canvas, r.Box, c, 2)
		label(canvas, r.Box.Min.X+3, r.Box.Min.Y+13, strconv.Itoa(i+1), c)
	}
	return canvas
}

func outline(dst draw.Image, r image.Rectangle, c color.Color, width int) {
	u := image.NewUniform(c)
	edges := []image.Rectangle{
		image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+width),
		image.Rect(r.Min.X, r.Max.Y-width, r.Max.X, r.Max.Y),
		image.Rect(r.Min.X, r.Min.Y, r.Min.X+width, r.Max.Y),
		image.Rect(r.Max.X-width, r.Min.Y, r.Max.X, r.Max.Y),
	}
	for _, e := range edges {
		draw.Draw(dst, e.Intersect(dst.Bounds()), u, image.Point{}, draw.Over)
	}
}

func label(dst draw.Image, x, y int, s string, c color.Color) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

func writePNG(path string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating debug dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return f.Close()
}
