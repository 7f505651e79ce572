// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package layout

import (
	"image"
	"sort"
)

// RegionDetector finds content regions on a page raster. Implementations
// return regions in reading order with Page left at zero; callers stamp
// the page index.
type RegionDetector interface {
	Detect(img image.Image) []Region
}

// LayoutDetector runs table detection first, blanks the table areas and all
// other ruling lines, and finds text blocks in what remains.
type LayoutDetector struct {
	Tables GridDetector
	Blocks ContourDetector

	// IoUThreshold drops the smaller of two regions that overlap more than
	// this (default 0.6).
	IoUThreshold float64
}

// NewLayoutDetector returns a detector with default thresholds.
func NewLayoutDetector() *LayoutDetector {
	return &LayoutDetector{IoUThreshold: 0.6}
}

// Detect implements RegionDetector.
func (d *LayoutDetector) Detect(img image.Image) []Region {
	ink := binarize(img, d.Blocks.threshold())

	tables, rules := d.Tables.scan(ink)
	remaining := ink.clone()
	for _, t := range tables {
		remaining.clear(t.Box.Inset(-2))
	}
	remaining.erase(rules)
	blocks := d.Blocks.detect(remaining)

	regions := Suppress(append(tables, blocks...), d.IoUThreshold)
	SortReadingOrder(regions)
	return regions
}

// Suppress applies non-maximum suppression by area: tables are kept first,
// then larger regions. A region is dropped when its IoU with a kept region
// exceeds iou or when it lies mostly inside a kept region. The result
// preserves input order.
func Suppress(regions []Region, iou float64) []Region {
	if iou <= 0 {
		iou = 0.6
	}
	order := make([]int, len(regions))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		ra, rb := regions[order[a]], regions[order[b]]
		if ra.Kind != rb.Kind {
			return ra.Kind == KindTable
		}
		return ra.Area() > rb.Area()
	})

	keep := make([]bool, len(regions))
	var kept []image.Rectangle
	for _, i := range order {
		box := regions[i].Box
		drop := false
		for _, k := range kept {
			if IoU(k, box) > iou || Coverage(k, box) > 0.9 {
				drop = true
				break
			}
		}
		if !drop {
			keep[i] = true
			kept = append(kept, box)
		}
	}

	out := make([]Region, 0, len(kept))
	for i, r := range regions {
		if keep[i] {
			out = append(out, r)
		}
	}
	return out
}
