// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package layout finds content regions on a rendered page raster.
//
// Detection works on a binarized copy of the page. Ruling lines are pulled
// out first (GridDetector) and become table regions with a row/column grid.
// The remaining ink is dilated and split into connected components
// (ContourDetector); each component's bounding box is a free-text block.
// Both detectors satisfy RegionDetector, and LayoutDetector composes them.
//
// Coordinates are raster pixels with the origin at the top-left corner.
package layout
