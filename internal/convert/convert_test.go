// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pdiddy/layoutmd/pkg/types"
)

// fakeConverter implements Converter for testing. It returns canned Markdown
// or an error, depending on configuration.
type fakeConverter struct {
	output string
	err    error
	calls  int
}

func (f *fakeConverter) Convert(pdfPath string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.output, nil
}

// setupPDF creates a temporary PDF file and returns its path and the temp dir.
func setupPDF(t *testing.T) (pdfPath, tmpDir string) {
	t.Helper()
	tmpDir = t.TempDir()
	inDir := filepath.Join(tmpDir, "input")
	if err := os.MkdirAll(inDir, 0o755); err != nil {
		t.Fatal(err)
	}
	pdfPath = filepath.Join(inDir, "invoice-0042.pdf")
	if err := os.WriteFile(pdfPath, []byte("fake pdf"), 0o644); err != nil {
		t.Fatal(err)
	}
	return pdfPath, tmpDir
}

func TestConvertDocument(t *testing.T) {
	tests := []struct {
		name       string
		converter  *fakeConverter
		preCreate  bool // create output MD before running
		force      bool
		wantStatus types.ConversionStatus
		wantLog    string
		wantCalls  int
	}{
		{
			name:       "successful conversion",
			converter:  &fakeConverter{output: "# Invoice\n\nTotal due."},
			wantStatus: types.ConversionDone,
			wantLog:    "converted:",
			wantCalls:  1,
		},
		{
			name:       "skip existing markdown",
			converter:  &fakeConverter{output: "should not be called"},
			preCreate:  true,
			wantStatus: ConversionNone,
			wantLog:    "skipped:",
		},
		{
			name:       "force overwrites existing markdown",
			converter:  &fakeConverter{output: "# Fresh"},
			preCreate:  true,
			force:      true,
			wantStatus: types.ConversionDone,
			wantLog:    "converted:",
			wantCalls:  1,
		},
		{
			name:       "conversion failure",
			converter:  &fakeConverter{err: errors.New("unreadable PDF")},
			wantStatus: types.ConversionFailed,
			wantLog:    "failed:",
			wantCalls:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pdfPath, tmpDir := setupPDF(t)
			mdDir := filepath.Join(tmpDir, "markdown")

			if tt.preCreate {
				if err := os.MkdirAll(mdDir, 0o755); err != nil {
					t.Fatal(err)
				}
				if err := os.WriteFile(filepath.Join(mdDir, "invoice-0042.md"), []byte("existing"), 0o644); err != nil {
					t.Fatal(err)
				}
			}

			doc := types.Document{ID: "invoice-0042", PDFPath: pdfPath}
			cfg := types.ConversionConfig{MarkdownDir: mdDir, Force: tt.force}
			var log bytes.Buffer

			status := ConvertDocument(tt.converter, &doc, cfg, &log)

			if status != tt.wantStatus {
				t.Errorf("status = %q, want %q", status, tt.wantStatus)
			}
			if doc.ConversionStatus != tt.wantStatus {
				t.Errorf("doc status = %q, want %q", doc.ConversionStatus, tt.wantStatus)
			}
			if tt.converter.calls != tt.wantCalls {
				t.Errorf("converter calls = %d, want %d", tt.converter.calls, tt.wantCalls)
			}
			if !strings.Contains(log.String(), tt.wantLog) {
				t.Errorf("log output %q does not contain %q", log.String(), tt.wantLog)
			}
		})
	}
}

func TestConvertDocument_WritesMarkdown(t *testing.T) {
	pdfPath, _ := setupPDF(t)
	conv := &fakeConverter{output: "# Invoice\n\n| a | b |\n| --- | --- |"}
	doc := types.Document{ID: "invoice-0042", PDFPath: pdfPath}

	var log bytes.Buffer
	status := ConvertDocument(conv, &doc, types.ConversionConfig{}, &log)
	if status != types.ConversionDone {
		t.Fatalf("expected ConversionDone, got %q", status)
	}

	want := filepath.Join(filepath.Dir(pdfPath), "invoice-0042.md")
	if doc.MarkdownPath != want {
		t.Errorf("markdown path = %q, want %q", doc.MarkdownPath, want)
	}

	data, err := os.ReadFile(want)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if string(data) != conv.output+"\n" {
		t.Errorf("output = %q, want body plus trailing newline", string(data))
	}
}

func TestMarkdownPath(t *testing.T) {
	tests := []struct {
		pdf, dir, want string
	}{
		{"/data/in/bl-77.pdf", "", "/data/in/bl-77.md"},
		{"/data/in/bl-77.pdf", "/data/md", "/data/md/bl-77.md"},
		{"scan.v2.PDF", "out", "out/scan.v2.md"},
	}
	for _, tt := range tests {
		if got := MarkdownPath(tt.pdf, tt.dir); got != tt.want {
			t.Errorf("MarkdownPath(%q, %q) = %q, want %q", tt.pdf, tt.dir, got, tt.want)
		}
	}
}

func TestConvertBatch(t *testing.T) {
	tmpDir := t.TempDir()
	inDir := filepath.Join(tmpDir, "input")
	if err := os.MkdirAll(inDir, 0o755); err != nil {
		t.Fatal(err)
	}

	// Create 3 PDFs: one will succeed, one will be pre-existing, one will fail.
	for _, name := range []string{"a.pdf", "b.pdf", "c.pdf"} {
		if err := os.WriteFile(filepath.Join(inDir, name), []byte("pdf"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	// Pre-create output for "b" to trigger skip.
	mdDir := filepath.Join(tmpDir, "markdown")
	if err := os.MkdirAll(mdDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(mdDir, "b.md"), []byte("existing"), 0o644); err != nil {
		t.Fatal(err)
	}

	// Converter that fails for "c.pdf".
	conv := &selectiveConverter{
		outputs: map[string]string{
			filepath.Join(inDir, "a.pdf"): "# Document A",
			filepath.Join(inDir, "b.pdf"): "# Document B",
		},
		errors: map[string]error{
			filepath.Join(inDir, "c.pdf"): errors.New("bad pdf"),
		},
	}

	docs := []types.Document{
		{ID: "a", PDFPath: filepath.Join(inDir, "a.pdf")},
		{ID: "b", PDFPath: filepath.Join(inDir, "b.pdf")},
		{ID: "c", PDFPath: filepath.Join(inDir, "c.pdf")},
	}

	var log bytes.Buffer
	result := ConvertBatch(conv, docs, types.ConversionConfig{MarkdownDir: mdDir}, &log)

	if result.Converted != 1 {
		t.Errorf("converted = %d, want 1", result.Converted)
	}
	if result.Skipped != 1 {
		t.Errorf("skipped = %d, want 1", result.Skipped)
	}
	if result.Failed != 1 {
		t.Errorf("failed = %d, want 1", result.Failed)
	}
	if !result.HasFailures() {
		t.Error("HasFailures should be true")
	}
	if result.Total() != 3 {
		t.Errorf("total = %d, want 3", result.Total())
	}
	if docs[0].MarkdownPath == "" {
		t.Error("converted document should record its markdown path")
	}

	output := log.String()
	if !strings.Contains(output, "Batch summary: 1 converted, 1 skipped, 1 failed (total: 3)") {
		t.Errorf("batch output missing summary line: %q", output)
	}
}

func TestConvertPaths(t *testing.T) {
	tmpDir := t.TempDir()
	pdfPath := filepath.Join(tmpDir, "test.pdf")
	if err := os.WriteFile(pdfPath, []byte("pdf"), 0o644); err != nil {
		t.Fatal(err)
	}

	conv := &fakeConverter{output: "# Test"}
	mdDir := filepath.Join(tmpDir, "markdown")
	var log bytes.Buffer
	result := ConvertPaths(conv, []string{pdfPath}, types.ConversionConfig{MarkdownDir: mdDir}, &log)

	if result.Converted != 1 {
		t.Errorf("converted = %d, want 1", result.Converted)
	}

	mdPath := filepath.Join(mdDir, "test.md")
	if _, err := os.Stat(mdPath); err != nil {
		t.Errorf("expected output file at %s", mdPath)
	}
	if !strings.Contains(log.String(), "converted: test") {
		t.Errorf("log should name the document by stem: %q", log.String())
	}
}

// selectiveConverter returns different results per file path.
type selectiveConverter struct {
	outputs map[string]string
	errors  map[string]error
}

func (s *selectiveConverter) Convert(pdfPath string) (string, error) {
	if err, ok := s.errors[pdfPath]; ok {
		return "", err
	}
	if out, ok := s.outputs[pdfPath]; ok {
		return out, nil
	}
	return "", errors.New("unexpected path: " + pdfPath)
}
