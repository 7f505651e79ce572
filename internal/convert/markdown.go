// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"strings"

	"github.com/pdiddy/layoutmd/internal/layout"
)

// Heading thresholds relative to the page's median span font size.
const (
	headingRatio    = 1.25
	topHeadingRatio = 1.6
)

// renderPage assembles Markdown for regions already in reading order.
// Regions without text contribute nothing.
func renderPage(regions []layout.Region, medianSize float64) string {
	var blocks []string
	for _, r := range regions {
		var block string
		switch r.Kind {
		case layout.KindTable:
			block = renderTable(r.Cells)
		default:
			if text := strings.TrimSpace(r.Text); text != "" {
				block = headingPrefix(r, medianSize) + text
			}
		}
		if block != "" {
			blocks = append(blocks, block)
		}
	}
	return strings.Join(blocks, "\n\n")
}

// headingPrefix marks single-line regions set noticeably larger than the
// page's body text.
func headingPrefix(r layout.Region, medianSize float64) string {
	if medianSize <= 0 || r.Lines != 1 {
		return ""
	}
	switch ratio := r.FontSize / medianSize; {
	case ratio >= topHeadingRatio:
		return "# "
	case ratio >= headingRatio:
		return "## "
	default:
		return ""
	}
}

// renderTable writes cells as a pipe table: the first row is the header.
// A table with no text at all renders as nothing.
func renderTable(cells [][]string) string {
	if len(cells) == 0 || allEmpty(cells) {
		return ""
	}

	var b strings.Builder
	for i, row := range cells {
		writeRow(&b, row)
		if i == 0 {
			sep := make([]string, len(row))
			for j := range sep {
				sep[j] = "---"
			}
			writeRow(&b, sep)
		}
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func writeRow(b *strings.Builder, row []string) {
	b.WriteString("|")
	for _, cell := range row {
		b.WriteString(" ")
		b.WriteString(escapeCell(cell))
		b.WriteString(" |")
	}
	b.WriteString("\n")
}

var cellEscaper = strings.NewReplacer("|", `\|`, "\r\n", " ", "\n", " ")

func escapeCell(s string) string {
	return cellEscaper.Replace(strings.TrimSpace(s))
}

func allEmpty(cells [][]string) bool {
	for _, row := range cells {
		for _, c := range row {
			if strings.TrimSpace(c) != "" {
				return false
			}
		}
	}
	return true
}
