// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package layout

import "image"

const defaultThreshold = 200

// ContourDetector finds free-text blocks as connected components of
// dilated ink. Zero-valued fields take the defaults noted on each field.
type ContourDetector struct {
	// Threshold is the luminance below which a pixel counts as ink (default 200).
	Threshold uint8

	// DilateX and DilateY are the dilation kernel radii in pixels. Gaps up to
	// twice the radius are bridged. Defaults: width/120 and height/400.
	DilateX, DilateY int

	// MinAreaRatio drops components smaller than this fraction of the page
	// (default 0.0001).
	MinAreaRatio float64

	// MaxAreaRatio drops components larger than this fraction of the page,
	// such as full-page borders (default 0.95).
	MaxAreaRatio float64

	// MinSide drops components thinner than this many pixels in either
	// direction (default 3).
	MinSide int

	// MaxAspect drops components whose width/height or height/width exceeds
	// this ratio, which catches stray rules (default 120).
	MaxAspect float64
}

// Detect implements RegionDetector.
func (d ContourDetector) Detect(img image.Image) []Region {
	regions := d.detect(binarize(img, d.threshold()))
	SortReadingOrder(regions)
	return regions
}

func (d ContourDetector) threshold() uint8 {
	if d.Threshold == 0 {
		return defaultThreshold
	}
	return d.Threshold
}

func (d ContourDetector) detect(ink *bitmap) []Region {
	rx, ry := d.DilateX, d.DilateY
	if rx <= 0 {
		rx = max(1, ink.w/120)
	}
	if ry <= 0 {
		ry = max(1, ink.h/400)
	}

	var regions []Region
	for _, box := range components(ink.dilate(rx, ry), ink) {
		if d.keep(box, ink.w, ink.h) {
			regions = append(regions, Region{Box: box, Kind: KindText})
		}
	}
	return regions
}

func (d ContourDetector) keep(box image.Rectangle, w, h int) bool {
	minArea := d.MinAreaRatio
	if minArea <= 0 {
		minArea = 0.0001
	}
	maxArea := d.MaxAreaRatio
	if maxArea <= 0 {
		maxArea = 0.95
	}
	minSide := d.MinSide
	if minSide <= 0 {
		minSide = 3
	}
	maxAspect := d.MaxAspect
	if maxAspect <= 0 {
		maxAspect = 120
	}

	bw, bh := box.Dx(), box.Dy()
	if bw < minSide || bh < minSide {
		return false
	}
	page := float64(w * h)
	a := float64(bw * bh)
	if a < page*minArea || a > page*maxArea {
		return false
	}
	aspect := float64(bw) / float64(bh)
	if aspect < 1 {
		aspect = 1 / aspect
	}
	return aspect <= maxAspect
}
