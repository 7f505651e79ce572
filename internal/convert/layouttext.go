// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"math"
	"sort"
	"strings"
	"unicode/utf8"
)

const (
	// layoutLineTolerance is how far apart, in points, span tops may be and
	// still share a line in layout output.
	layoutLineTolerance = 3

	// charWidthSample is how many spans the character width is averaged over.
	charWidthSample = 100
)

// renderLayout places spans on a monospace character grid inside a code
// fence, so columns that line up on the page line up in the output. The
// grid cell is the mean span width per rune and column 0 is the leftmost
// span on the page.
func renderLayout(spans []pixelSpan, lineTol int) string {
	sorted := make([]pixelSpan, 0, len(spans))
	for _, s := range spans {
		if strings.TrimSpace(s.text) != "" {
			sorted = append(sorted, s)
		}
	}
	if len(sorted) == 0 {
		return ""
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].box.Min, sorted[j].box.Min
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return a.X < b.X
	})

	charW := charWidth(sorted)
	left := sorted[0].box.Min.X
	for _, s := range sorted {
		left = min(left, s.box.Min.X)
	}

	var lines []string
	for _, line := range layoutLines(sorted, lineTol) {
		if text := layoutLine(line, left, charW); text != "" {
			lines = append(lines, text)
		}
	}
	if len(lines) == 0 {
		return ""
	}
	return "```\n" + strings.Join(lines, "\n") + "\n```"
}

func charWidth(spans []pixelSpan) float64 {
	width, runes := 0, 0
	for _, s := range spans[:min(len(spans), charWidthSample)] {
		width += s.box.Dx()
		runes += utf8.RuneCountInString(s.text)
	}
	if runes == 0 {
		return 1
	}
	return math.Max(float64(width)/float64(runes), 1)
}

// layoutLines groups spans sorted by top edge into lines whose tops lie
// within tol of the line's first span, each ordered left to right.
func layoutLines(spans []pixelSpan, tol int) [][]pixelSpan {
	var lines [][]pixelSpan
	top := 0
	for _, s := range spans {
		if len(lines) == 0 || s.box.Min.Y-top > tol {
			lines = append(lines, nil)
			top = s.box.Min.Y
		}
		lines[len(lines)-1] = append(lines[len(lines)-1], s)
	}
	for _, line := range lines {
		sort.SliceStable(line, func(i, j int) bool { return line[i].box.Min.X < line[j].box.Min.X })
	}
	return lines
}

func layoutLine(line []pixelSpan, left int, charW float64) string {
	var b strings.Builder
	col := 0
	for _, s := range line {
		want := int(math.Round(float64(s.box.Min.X-left) / charW))
		pad := want - col
		if col > 0 && pad < 1 {
			pad = 1
		}
		if pad > 0 {
			b.WriteString(strings.Repeat(" ", pad))
			col += pad
		}
		text := strings.TrimSpace(s.text)
		b.WriteString(text)
		col += utf8.RuneCountInString(text)
	}
	return strings.TrimRight(b.String(), " ")
}
