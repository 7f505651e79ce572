// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"image"
	"math"
	"sort"
	"strings"

	"github.com/pdiddy/layoutmd/internal/layout"
	"github.com/pdiddy/layoutmd/internal/pdfdoc"
)

// ownerMargin lets spans whose centre sits just outside a region's ink box
// still belong to it.
const ownerMargin = 3

// pixelSpan is a text span scaled to raster pixels. size stays in points.
type pixelSpan struct {
	text string
	box  image.Rectangle
	size float64
}

func (s pixelSpan) center() image.Point {
	return image.Pt((s.box.Min.X+s.box.Max.X)/2, (s.box.Min.Y+s.box.Max.Y)/2)
}

func toPixels(spans []pdfdoc.Span, scale float64) []pixelSpan {
	out := make([]pixelSpan, 0, len(spans))
	for _, s := range spans {
		out = append(out, pixelSpan{
			text: s.Text,
			box: image.Rect(
				int(math.Floor(s.X*scale)),
				int(math.Floor(s.Y*scale)),
				int(math.Ceil((s.X+s.W)*scale)),
				int(math.Ceil((s.Y+s.H)*scale)),
			),
			size: s.FontSize,
		})
	}
	return out
}

// assignText gives each span to the region containing its centre and
// returns the filled regions in reading order. Spans outside every region
// become one text region per visual line.
func assignText(page int, detected []layout.Region, spans []pixelSpan) []layout.Region {
	buckets := make([][]pixelSpan, len(detected))
	var orphans []pixelSpan
	for _, s := range spans {
		i := owner(detected, s.center())
		if i < 0 {
			orphans = append(orphans, s)
			continue
		}
		buckets[i] = append(buckets[i], s)
	}

	out := make([]layout.Region, 0, len(detected))
	for i, r := range detected {
		r.Page = page
		if r.Kind == layout.KindTable && r.Grid != nil {
			r.Cells = fillCells(r.Grid, buckets[i])
		} else {
			r = fillText(r, buckets[i])
		}
		out = append(out, r)
	}

	for _, line := range groupLines(orphans) {
		box := line[0].box
		for _, s := range line[1:] {
			box = box.Union(s.box)
		}
		out = append(out, fillText(layout.Region{Page: page, Kind: layout.KindText, Box: box}, line))
	}

	layout.SortReadingOrder(out)
	return out
}

// owner returns the index of the region that should receive a span centred
// at p, or -1. Tables take precedence, then the first containing region.
func owner(regions []layout.Region, p image.Point) int {
	found := -1
	for i, r := range regions {
		if !p.In(r.Box.Inset(-ownerMargin)) {
			continue
		}
		if r.Kind == layout.KindTable {
			return i
		}
		if found < 0 {
			found = i
		}
	}
	return found
}

func fillText(r layout.Region, spans []pixelSpan) layout.Region {
	lines := groupLines(spans)
	parts := make([]string, 0, len(lines))
	for _, line := range lines {
		parts = append(parts, joinLine(line))
	}
	r.Text = strings.Join(parts, " ")
	r.Lines = len(lines)
	r.FontSize = 0
	for _, s := range spans {
		r.FontSize = max(r.FontSize, s.size)
	}
	return r
}

func fillCells(g *layout.Grid, spans []pixelSpan) [][]string {
	rows, cols := g.NumRows(), g.NumCols()
	buckets := make([][][]pixelSpan, rows)
	for r := range buckets {
		buckets[r] = make([][]pixelSpan, cols)
	}
	for _, s := range spans {
		c := s.center()
		r, col := band(g.Rows, c.Y), band(g.Cols, c.X)
		buckets[r][col] = append(buckets[r][col], s)
	}

	cells := make([][]string, rows)
	for r := range cells {
		cells[r] = make([]string, cols)
		for c := range cells[r] {
			var parts []string
			for _, line := range groupLines(buckets[r][c]) {
				parts = append(parts, joinLine(line))
			}
			cells[r][c] = strings.Join(parts, " ")
		}
	}
	return cells
}

// band returns the index of the interval between consecutive lines that
// contains v, clamped to the outer intervals.
func band(lines []int, v int) int {
	i := sort.SearchInts(lines, v+1) - 1
	return min(max(i, 0), len(lines)-2)
}

// groupLines clusters spans into visual lines, top to bottom, each line
// ordered left to right.
func groupLines(spans []pixelSpan) [][]pixelSpan {
	if len(spans) == 0 {
		return nil
	}
	sorted := append([]pixelSpan(nil), spans...)
	sort.SliceStable(sorted, func(i, j int) bool {
		ci, cj := sorted[i].center(), sorted[j].center()
		if ci.Y != cj.Y {
			return ci.Y < cj.Y
		}
		return ci.X < cj.X
	})

	var lines [][]pixelSpan
	var cur []pixelSpan
	lineY, tol := 0, 0
	for _, s := range sorted {
		c := s.center()
		if cur != nil && abs(c.Y-lineY) <= tol {
			cur = append(cur, s)
			continue
		}
		if cur != nil {
			lines = append(lines, cur)
		}
		cur = []pixelSpan{s}
		lineY, tol = c.Y, max(1, s.box.Dy()/2)
	}
	lines = append(lines, cur)

	for _, line := range lines {
		sort.SliceStable(line, func(i, j int) bool {
			return line[i].box.Min.X < line[j].box.Min.X
		})
	}
	return lines
}

func joinLine(line []pixelSpan) string {
	parts := make([]string, 0, len(line))
	for _, s := range line {
		if t := strings.TrimSpace(s.text); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

// medianFontSize returns the median span font size on a page, or 0.
func medianFontSize(spans []pdfdoc.Span) float64 {
	if len(spans) == 0 {
		return 0
	}
	sizes := make([]float64, len(spans))
	for i, s := range spans {
		sizes[i] = s.FontSize
	}
	sort.Float64s(sizes)
	mid := len(sizes) / 2
	if len(sizes)%2 == 0 {
		return (sizes[mid-1] + sizes[mid]) / 2
	}
	return sizes[mid]
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
