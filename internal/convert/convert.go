// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert implements PDF-to-Markdown conversion. The default
// backend, LayoutConverter, detects content regions on each rendered page
// and fills them from the PDF's native text layer.
package convert

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/layoutmd/pkg/types"
)

// Converter transforms a PDF file into Markdown text.
type Converter interface {
	// Convert reads a PDF at pdfPath and returns the Markdown content.
	Convert(pdfPath string) (string, error)
}

// BatchResult holds the outcome of a batch conversion run.
type BatchResult struct {
	Converted int
	Skipped   int
	Failed    int
}

// Total returns the total number of documents processed.
func (r BatchResult) Total() int {
	return r.Converted + r.Skipped + r.Failed
}

// HasFailures reports whether any documents failed conversion.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// ConversionNone is a local alias for "skip" status (markdown already exists).
const ConversionNone = types.ConversionNone

// Stem returns the file name of path without its extension.
func Stem(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

// MarkdownPath returns where the Markdown for pdfPath is written: dir/<stem>.md,
// or next to the PDF when dir is empty.
func MarkdownPath(pdfPath, dir string) string {
	if dir == "" {
		dir = filepath.Dir(pdfPath)
	}
	return filepath.Join(dir, Stem(pdfPath)+".md")
}

// WriteMarkdown writes content to path with a trailing newline, creating the
// parent directory if needed.
func WriteMarkdown(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating markdown dir: %w", err)
	}
	if !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// ConvertDocument converts a single PDF to Markdown and writes the result
// under cfg.MarkdownDir. It records the output path and status on doc and
// returns the status. Existing output is skipped unless cfg.Force is set.
func ConvertDocument(c Converter, doc *types.Document, cfg types.ConversionConfig, w io.Writer) types.ConversionStatus {
	mdPath := MarkdownPath(doc.PDFPath, cfg.MarkdownDir)

	if !cfg.Force {
		if _, err := os.Stat(mdPath); err == nil {
			fmt.Fprintf(w, "skipped: %s (already exists)\n", doc.ID)
			doc.MarkdownPath = mdPath
			doc.ConversionStatus = ConversionNone
			return ConversionNone
		}
	}

	doc.ConversionStatus = types.ConversionFailed

	md, err := c.Convert(doc.PDFPath)
	if err != nil {
		fmt.Fprintf(w, "failed:  %s (%v)\n", doc.ID, err)
		return types.ConversionFailed
	}

	if err := WriteMarkdown(mdPath, md); err != nil {
		fmt.Fprintf(w, "failed:  %s (%v)\n", doc.ID, err)
		return types.ConversionFailed
	}

	doc.MarkdownPath = mdPath
	doc.ConversionStatus = types.ConversionDone
	fmt.Fprintf(w, "converted: %s\n", doc.ID)
	return types.ConversionDone
}

// ConvertBatch processes documents through the converter one at a time,
// printing per-file status to w and returning a summary.
func ConvertBatch(c Converter, docs []types.Document, cfg types.ConversionConfig, w io.Writer) BatchResult {
	var result BatchResult
	for i := range docs {
		switch ConvertDocument(c, &docs[i], cfg, w) {
		case types.ConversionDone:
			result.Converted++
		case ConversionNone:
			result.Skipped++
		case types.ConversionFailed:
			result.Failed++
		}
	}
	fmt.Fprintf(w, "\nBatch summary: %d converted, %d skipped, %d failed (total: %d)\n",
		result.Converted, result.Skipped, result.Failed, result.Total())
	return result
}

// ConvertPaths builds Document records from PDF paths and delegates to
// ConvertBatch. Each document's ID is its file stem.
func ConvertPaths(c Converter, pdfPaths []string, cfg types.ConversionConfig, w io.Writer) BatchResult {
	docs := make([]types.Document, len(pdfPaths))
	for i, p := range pdfPaths {
		docs[i] = types.Document{
			ID:      Stem(p),
			PDFPath: p,
		}
	}
	return ConvertBatch(c, docs, cfg, w)
}
