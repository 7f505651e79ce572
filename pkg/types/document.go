// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// ConversionStatus indicates the state of PDF-to-Markdown conversion for a document.
type ConversionStatus string

const (
	ConversionNone   ConversionStatus = "none"
	ConversionDone   ConversionStatus = "converted"
	ConversionFailed ConversionStatus = "failed"
)

// Document identifies one input PDF.
type Document struct {
	// ID is the file stem (e.g. "invoice-0042").
	ID string `json:"id" yaml:"id"`

	// PDFPath is the local filesystem path to the PDF.
	PDFPath string `json:"pdf_path" yaml:"pdf_path"`

	// MarkdownPath is set once the Markdown output has been written.
	MarkdownPath string `json:"markdown_path,omitempty" yaml:"markdown_path,omitempty"`

	ConversionStatus ConversionStatus `json:"conversion_status" yaml:"conversion_status"`
}
