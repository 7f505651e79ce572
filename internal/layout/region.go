// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package layout

import (
	"image"
	"sort"
)

// Kind classifies a detected region.
type Kind int

const (
	KindText Kind = iota
	KindTable
)

func (k Kind) String() string {
	switch k {
	case KindTable:
		return "table"
	default:
		return "text"
	}
}

// Grid holds the ruling-line positions of a table. Rows and Cols are sorted
// pixel coordinates; a grid with n row lines has n-1 rows of cells.
type Grid struct {
	Rows []int
	Cols []int
}

// NumRows returns the number of cell rows.
func (g *Grid) NumRows() int {
	if g == nil || len(g.Rows) < 2 {
		return 0
	}
	return len(g.Rows) - 1
}

// NumCols returns the number of cell columns.
func (g *Grid) NumCols() int {
	if g == nil || len(g.Cols) < 2 {
		return 0
	}
	return len(g.Cols) - 1
}

// Cell returns the bounds of the cell at row r, column c.
func (g *Grid) Cell(r, c int) image.Rectangle {
	return image.Rect(g.Cols[c], g.Rows[r], g.Cols[c+1], g.Rows[r+1])
}

// Region is a rectangular content area on one page. Detectors fill Box,
// Kind and Grid; text assignment returns a copy with Text or Cells set.
type Region struct {
	Page int
	Box  image.Rectangle
	Kind Kind
	Grid *Grid

	// Text is the joined text of a KindText region.
	Text string
	// Lines is the number of visual text lines in a KindText region.
	Lines int
	// FontSize is the largest span font size inside the region, in points.
	FontSize float64

	// Cells is the rows × columns text of a KindTable region.
	Cells [][]string
}

// Area returns the pixel area of the region's bounding box.
func (r Region) Area() int {
	return area(r.Box)
}

// SortReadingOrder orders regions top-to-bottom, then left-to-right.
// Ties keep their input order.
func SortReadingOrder(regions []Region) {
	sort.SliceStable(regions, func(i, j int) bool {
		a, b := regions[i].Box.Min, regions[j].Box.Min
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return a.X < b.X
	})
}

func area(r image.Rectangle) int {
	if r.Empty() {
		return 0
	}
	return r.Dx() * r.Dy()
}

// IoU returns the intersection over union of two rectangles.
func IoU(a, b image.Rectangle) float64 {
	inter := area(a.Intersect(b))
	union := area(a) + area(b) - inter
	if union <= 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// Coverage returns the fraction of b's area that lies inside a.
func Coverage(a, b image.Rectangle) float64 {
	ab := area(b)
	if ab == 0 {
		return 0
	}
	return float64(area(a.Intersect(b))) / float64(ab)
}
