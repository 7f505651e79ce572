// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pdfdoc

import (
	"os"
	"testing"

	"github.com/ledongthuc/pdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// glyphs lays out s one character per glyph, 6pt wide, starting at x on
// baseline y.
func glyphs(s string, x, y, size float64) []pdf.Text {
	var out []pdf.Text
	for _, r := range s {
		out = append(out, pdf.Text{Font: "Helvetica", FontSize: size, X: x, Y: y, W: 6, S: string(r)})
		x += 6
	}
	return out
}

// unmetered lays out s the way the text reader reports a font without
// /Widths: every glyph at x with zero width.
func unmetered(s string, x, y, size float64) []pdf.Text {
	var out []pdf.Text
	for _, r := range s {
		out = append(out, pdf.Text{Font: "Helvetica", FontSize: size, X: x, Y: y, S: string(r)})
	}
	return out
}

func TestBuildSpans(t *testing.T) {
	const pageHeight = 792

	tests := []struct {
		name  string
		in    []pdf.Text
		want  []string
		check func(t *testing.T, spans []Span)
	}{
		{
			name: "empty",
			in:   nil,
			want: nil,
		},
		{
			name: "one word",
			in:   glyphs("Invoice", 72, 700, 10),
			want: []string{"Invoice"},
			check: func(t *testing.T, spans []Span) {
				s := spans[0]
				assert.InDelta(t, 72, s.X, 1e-9)
				assert.InDelta(t, pageHeight-700-8, s.Y, 1e-9)
				assert.InDelta(t, 42, s.W, 1e-9)
				assert.InDelta(t, 10, s.H, 1e-9)
				assert.InDelta(t, 10, s.FontSize, 1e-9)
			},
		},
		{
			name: "gap inserts space",
			in:   append(glyphs("Bill", 72, 700, 10), glyphs("To", 72+24+4, 700, 10)...),
			want: []string{"Bill To"},
		},
		{
			name: "explicit space glyph kept once",
			in:   glyphs("Bill To", 72, 700, 10),
			want: []string{"Bill To"},
		},
		{
			name: "wide gap starts new span",
			in:   append(glyphs("Qty", 72, 700, 10), glyphs("Price", 300, 700, 10)...),
			want: []string{"Qty", "Price"},
		},
		{
			name: "lines ordered top first",
			in:   append(glyphs("second", 72, 680, 10), glyphs("first", 72, 700, 10)...),
			want: []string{"first", "second"},
		},
		{
			name: "unordered glyphs on one line sorted by x",
			in: []pdf.Text{
				{FontSize: 10, X: 78, Y: 700, W: 6, S: "b"},
				{FontSize: 10, X: 72, Y: 700, W: 6, S: "a"},
			},
			want: []string{"ab"},
		},
		{
			name: "zero font size defaults",
			in:   []pdf.Text{{X: 10, Y: 100, W: 6, S: "x"}},
			want: []string{"x"},
			check: func(t *testing.T, spans []Span) {
				assert.InDelta(t, 10, spans[0].FontSize, 1e-9)
			},
		},
		{
			name: "zero-width glyphs laid end to end",
			in:   unmetered("Hello World", 72, 700, 20),
			want: []string{"Hello World"},
			check: func(t *testing.T, spans []Span) {
				s := spans[0]
				assert.InDelta(t, 72, s.X, 1e-9)
				assert.InDelta(t, 0.5*20*11, s.W, 1e-9)
				assert.InDelta(t, 20, s.H, 1e-9)
			},
		},
		{
			name: "zero-width runs at separate positions stay apart",
			in:   append(unmetered("Qty", 72, 700, 10), unmetered("Price", 300, 700, 10)...),
			want: []string{"Qty", "Price"},
			check: func(t *testing.T, spans []Span) {
				assert.InDelta(t, 15, spans[0].W, 1e-9)
				assert.InDelta(t, 300, spans[1].X, 1e-9)
				assert.InDelta(t, 25, spans[1].W, 1e-9)
			},
		},
		{
			name: "newline glyphs from TJ skipped",
			in: append(glyphs("Total", 72, 700, 10),
				pdf.Text{FontSize: 10, X: 102, Y: 700, S: "\n"}),
			want: []string{"Total"},
			check: func(t *testing.T, spans []Span) {
				assert.InDelta(t, 30, spans[0].W, 1e-9)
			},
		},
		{
			name: "whitespace-only dropped",
			in:   glyphs("   ", 72, 700, 10),
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spans := buildSpans(tt.in, pageHeight)

			var got []string
			for _, s := range spans {
				got = append(got, s.Text)
			}
			assert.Equal(t, tt.want, got)

			if tt.check != nil {
				require.NotEmpty(t, spans)
				tt.check(t, spans)
			}
		})
	}
}

func TestBuildSpansKeepsInput(t *testing.T) {
	in := []pdf.Text{
		{FontSize: 10, X: 78, Y: 700, W: 6, S: "b"},
		{FontSize: 10, X: 72, Y: 700, W: 6, S: "a"},
	}
	buildSpans(in, 792)
	assert.Equal(t, "b", in[0].S)
}

func TestOpenUnreadable(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T) string
	}{
		{
			name: "missing file",
			setup: func(t *testing.T) string {
				return t.TempDir() + "/missing.pdf"
			},
		},
		{
			name: "not a pdf",
			setup: func(t *testing.T) string {
				p := t.TempDir() + "/notes.pdf"
				require.NoError(t, writeFile(p, "plain text, not a PDF"))
				return p
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Open(tt.setup(t))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrUnreadable)
		})
	}
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}
