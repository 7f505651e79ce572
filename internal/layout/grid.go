// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package layout

import "image"

// GridDetector finds tables drawn with ruling lines. Horizontal and vertical
// ink runs at least MinLineRatio of the page dimension are treated as rules.
// A connected group of rules becomes a table region when its row and column
// lines enclose at least two cells. A single ruled box, such as a frame
// around a paragraph or a page border, is not a table.
type GridDetector struct {
	// Threshold is the luminance below which a pixel counts as ink (default 200).
	Threshold uint8

	// MinLineRatio is the shortest rule, as a fraction of page width for
	// horizontal rules and page height for vertical ones (default 0.05).
	MinLineRatio float64

	// ClusterGap merges rule positions this close together, so thick rules
	// count once. Default: max(3, width/200).
	ClusterGap int

	// MaxAreaRatio drops candidates larger than this fraction of the page
	// (default 0.95).
	MaxAreaRatio float64
}

// Detect implements RegionDetector.
func (d GridDetector) Detect(img image.Image) []Region {
	regions, _ := d.scan(binarize(img, d.threshold()))
	SortReadingOrder(regions)
	return regions
}

func (d GridDetector) threshold() uint8 {
	if d.Threshold == 0 {
		return defaultThreshold
	}
	return d.Threshold
}

// scan returns the table regions on ink together with the mask of every
// rule pixel found, tables or not. Callers erase the mask so frames and
// stray rules do not join text blocks.
func (d GridDetector) scan(ink *bitmap) ([]Region, *bitmap) {
	ratio := d.MinLineRatio
	if ratio <= 0 {
		ratio = 0.05
	}
	minH := max(10, int(float64(ink.w)*ratio))
	minV := max(10, int(float64(ink.h)*ratio))
	gap := d.ClusterGap
	if gap <= 0 {
		gap = max(3, ink.w/200)
	}
	maxArea := d.MaxAreaRatio
	if maxArea <= 0 {
		maxArea = 0.95
	}
	pageArea := float64(ink.w * ink.h)

	hRules := horizontalRuns(ink, minH)
	vRules := verticalRuns(ink, minV)

	rules := newBitmap(ink.w, ink.h)
	for i := range rules.px {
		rules.px[i] = hRules.px[i] || vRules.px[i]
	}

	var regions []Region
	for _, box := range components(rules.dilate(2, 2), rules) {
		if box.Dx() < minH || box.Dy() < minV || float64(area(box)) > pageArea*maxArea {
			continue
		}
		rows := clusterPositions(ruleRows(hRules, box), gap)
		cols := clusterPositions(ruleCols(vRules, box), gap)
		if len(rows) < 2 || len(cols) < 2 || (len(rows)-1)*(len(cols)-1) < 2 {
			continue
		}
		regions = append(regions, Region{
			Box:  box,
			Kind: KindTable,
			Grid: &Grid{Rows: rows, Cols: cols},
		})
	}
	return regions, rules
}

// horizontalRuns keeps only row runs of ink at least minLen long.
func horizontalRuns(ink *bitmap, minLen int) *bitmap {
	out := newBitmap(ink.w, ink.h)
	for y := 0; y < ink.h; y++ {
		start := -1
		for x := 0; x <= ink.w; x++ {
			on := x < ink.w && ink.at(x, y)
			switch {
			case on && start < 0:
				start = x
			case !on && start >= 0:
				if x-start >= minLen {
					for i := start; i < x; i++ {
						out.px[y*ink.w+i] = true
					}
				}
				start = -1
			}
		}
	}
	return out
}

// verticalRuns keeps only column runs of ink at least minLen long.
func verticalRuns(ink *bitmap, minLen int) *bitmap {
	out := newBitmap(ink.w, ink.h)
	for x := 0; x < ink.w; x++ {
		start := -1
		for y := 0; y <= ink.h; y++ {
			on := y < ink.h && ink.at(x, y)
			switch {
			case on && start < 0:
				start = y
			case !on && start >= 0:
				if y-start >= minLen {
					for i := start; i < y; i++ {
						out.px[i*ink.w+x] = true
					}
				}
				start = -1
			}
		}
	}
	return out
}

// ruleRows returns the y positions inside box whose horizontal rule pixels
// span at least half the box width.
func ruleRows(h *bitmap, box image.Rectangle) []int {
	var ys []int
	need := box.Dx() / 2
	for y := box.Min.Y; y < box.Max.Y; y++ {
		n := 0
		for x := box.Min.X; x < box.Max.X; x++ {
			if h.at(x, y) {
				n++
			}
		}
		if n >= need {
			ys = append(ys, y)
		}
	}
	return ys
}

// ruleCols returns the x positions inside box whose vertical rule pixels
// span at least half the box height.
func ruleCols(v *bitmap, box image.Rectangle) []int {
	var xs []int
	need := box.Dy() / 2
	for x := box.Min.X; x < box.Max.X; x++ {
		n := 0
		for y := box.Min.Y; y < box.Max.Y; y++ {
			if v.at(x, y) {
				n++
			}
		}
		if n >= need {
			xs = append(xs, x)
		}
	}
	return xs
}
