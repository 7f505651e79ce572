// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package layout

import (
	"image"
	"image/color"
)

// bitmap is a binary ink mask. px[y*w+x] is true for foreground pixels.
type bitmap struct {
	w, h int
	px   []bool
}

func newBitmap(w, h int) *bitmap {
	return &bitmap{w: w, h: h, px: make([]bool, w*h)}
}

// binarize marks every pixel darker than threshold as foreground.
func binarize(img image.Image, threshold uint8) *bitmap {
	b := img.Bounds()
	m := newBitmap(b.Dx(), b.Dy())

	switch src := img.(type) {
	case *image.Gray:
		for y := 0; y < m.h; y++ {
			off := src.PixOffset(b.Min.X, b.Min.Y+y)
			for x := 0; x < m.w; x++ {
				m.px[y*m.w+x] = src.Pix[off+x] < threshold
			}
		}
	case *image.RGBA:
		for y := 0; y < m.h; y++ {
			off := src.PixOffset(b.Min.X, b.Min.Y+y)
			for x := 0; x < m.w; x++ {
				p := src.Pix[off+4*x : off+4*x+3 : off+4*x+3]
				lum := (299*uint32(p[0]) + 587*uint32(p[1]) + 114*uint32(p[2])) / 1000
				m.px[y*m.w+x] = lum < uint32(threshold)
			}
		}
	default:
		for y := 0; y < m.h; y++ {
			for x := 0; x < m.w; x++ {
				g := color.GrayModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.Gray)
				m.px[y*m.w+x] = g.Y < threshold
			}
		}
	}
	return m
}

func (m *bitmap) at(x, y int) bool {
	return m.px[y*m.w+x]
}

func (m *bitmap) clone() *bitmap {
	c := newBitmap(m.w, m.h)
	copy(c.px, m.px)
	return c
}

// clear resets every pixel inside r to background.
func (m *bitmap) clear(r image.Rectangle) {
	r = r.Intersect(image.Rect(0, 0, m.w, m.h))
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			m.px[y*m.w+x] = false
		}
	}
}

// erase resets every pixel that is foreground in mask.
func (m *bitmap) erase(mask *bitmap) {
	for i, on := range mask.px {
		if on {
			m.px[i] = false
		}
	}
}

// dilate grows the foreground by a (2rx+1)×(2ry+1) rectangular kernel.
// The kernel is separable, so each pass is a sliding-window count.
func (m *bitmap) dilate(rx, ry int) *bitmap {
	out := m
	if rx > 0 {
		out = dilateRows(out, rx)
	}
	if ry > 0 {
		out = dilateCols(out, ry)
	}
	if out == m {
		out = m.clone()
	}
	return out
}

func dilateRows(m *bitmap, r int) *bitmap {
	out := newBitmap(m.w, m.h)
	for y := 0; y < m.h; y++ {
		row := m.px[y*m.w : (y+1)*m.w]
		count := 0
		for x := 0; x < r && x < m.w; x++ {
			if row[x] {
				count++
			}
		}
		for x := 0; x < m.w; x++ {
			if in := x + r; in < m.w && row[in] {
				count++
			}
			if outIdx := x - r - 1; outIdx >= 0 && row[outIdx] {
				count--
			}
			out.px[y*m.w+x] = count > 0
		}
	}
	return out
}

func dilateCols(m *bitmap, r int) *bitmap {
	out := newBitmap(m.w, m.h)
	for x := 0; x < m.w; x++ {
		count := 0
		for y := 0; y < r && y < m.h; y++ {
			if m.px[y*m.w+x] {
				count++
			}
		}
		for y := 0; y < m.h; y++ {
			if in := y + r; in < m.h && m.px[in*m.w+x] {
				count++
			}
			if outIdx := y - r - 1; outIdx >= 0 && m.px[outIdx*m.w+x] {
				count--
			}
			out.px[y*m.w+x] = count > 0
		}
	}
	return out
}

// components labels 8-connected components of grown and returns, for each
// component, the bounding box of the ink pixels it covers. Components that
// cover no ink are dropped. Results are in raster scan order of each
// component's first pixel.
func components(grown, ink *bitmap) []image.Rectangle {
	seen := make([]bool, len(grown.px))
	var boxes []image.Rectangle
	var stack []int

	for start, on := range grown.px {
		if !on || seen[start] {
			continue
		}
		seen[start] = true
		stack = append(stack[:0], start)

		minX, minY := grown.w, grown.h
		maxX, maxY := -1, -1

		for len(stack) > 0 {
			i := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			x, y := i%grown.w, i/grown.w

			if ink.px[i] {
				minX, minY = min(minX, x), min(minY, y)
				maxX, maxY = max(maxX, x), max(maxY, y)
			}

			for dy := -1; dy <= 1; dy++ {
				ny := y + dy
				if ny < 0 || ny >= grown.h {
					continue
				}
				for dx := -1; dx <= 1; dx++ {
					nx := x + dx
					if nx < 0 || nx >= grown.w {
						continue
					}
					j := ny*grown.w + nx
					if grown.px[j] && !seen[j] {
						seen[j] = true
						stack = append(stack, j)
					}
				}
			}
		}

		if maxX >= 0 {
			boxes = append(boxes, image.Rect(minX, minY, maxX+1, maxY+1))
		}
	}
	return boxes
}

// clusterPositions merges sorted positions closer than gap into their mean.
func clusterPositions(positions []int, gap int) []int {
	if len(positions) == 0 {
		return nil
	}
	var out []int
	sum, n, last := positions[0], 1, positions[0]
	for _, p := range positions[1:] {
		if p-last <= gap {
			sum += p
			n++
		} else {
			out = append(out, sum/n)
			sum, n = p, 1
		}
		last = p
	}
	return append(out, sum/n)
}
