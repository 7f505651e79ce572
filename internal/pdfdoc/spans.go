// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pdfdoc

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

const (
	// ascent is the fraction of the font size above the baseline.
	ascent = 0.8
	// spaceGap is the horizontal gap, in font-size units, that inserts a space.
	spaceGap = 0.2
	// breakGap is the horizontal gap, in font-size units, that starts a new span.
	breakGap = 1.5
	// avgAdvance is the assumed glyph advance, in font-size units, for fonts
	// whose dictionaries carry no /Widths (the Standard 14 fonts).
	avgAdvance = 0.5
)

// buildSpans joins glyph runs from a content stream into spans. Glyphs are
// sorted by baseline (top first) then x; consecutive glyphs on one baseline
// join into a span unless the gap between them exceeds breakGap.
//
// Glyphs with no width come from fonts without metrics; the text reader
// leaves them all at the position of their show operator. Their width is
// estimated from the font size and they are laid end to end.
func buildSpans(glyphs []pdf.Text, pageHeight float64) []Span {
	glyphs = append([]pdf.Text(nil), glyphs...)
	sort.SliceStable(glyphs, func(i, j int) bool {
		if glyphs[i].Y != glyphs[j].Y {
			return glyphs[i].Y > glyphs[j].Y
		}
		return glyphs[i].X < glyphs[j].X
	})

	var spans []Span
	var cur *Span
	var b strings.Builder
	var baseline, end, lastX float64

	flush := func() {
		if cur == nil {
			return
		}
		cur.Text = strings.TrimSpace(b.String())
		if cur.Text != "" {
			spans = append(spans, *cur)
		}
		cur = nil
		b.Reset()
	}

	for _, g := range glyphs {
		// TJ arrays end with a synthetic newline glyph.
		if strings.Trim(g.S, "\r\n") == "" {
			continue
		}
		size := g.FontSize
		if size <= 0 {
			size = 10
		}

		x, w := g.X, g.W
		if w <= 0 {
			w = avgAdvance * size * float64(utf8.RuneCountInString(g.S))
			if cur != nil && abs(g.Y-baseline) <= size*0.3 && abs(g.X-lastX) < 1e-6 {
				x = end
			}
		}
		lastX = g.X

		if cur != nil {
			sameLine := abs(g.Y-baseline) <= size*0.3
			gap := x - end
			if !sameLine || gap > size*breakGap || gap < -size {
				flush()
			} else if gap > size*spaceGap && !strings.HasSuffix(b.String(), " ") {
				b.WriteByte(' ')
			}
		}

		if cur == nil {
			cur = &Span{
				X:        x,
				Y:        pageHeight - g.Y - size*ascent,
				H:        size,
				FontSize: size,
			}
			baseline = g.Y
		}

		b.WriteString(g.S)
		end = x + w
		cur.W = end - cur.X
		if size > cur.FontSize {
			cur.FontSize = size
			cur.H = size
		}
	}
	flush()

	return spans
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
