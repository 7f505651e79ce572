// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs one document end to end: PDF to Markdown, Markdown
// to a model reply, reply to a JSON document, token usage to cost, and all
// of it into a result envelope on disk.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/layoutmd/internal/analyze"
	"github.com/pdiddy/layoutmd/internal/convert"
	"github.com/pdiddy/layoutmd/internal/pricing"
	"github.com/pdiddy/layoutmd/pkg/types"
)

// Config holds the settings the pipeline records and acts on.
type Config struct {
	// Model is the requested model name, used for pricing and meta.model.
	Model string

	// Provider is recorded in meta.provider. Empty means openai.
	Provider types.Provider

	// Prices is the price table used for cost. Nil means pricing.DefaultTable.
	Prices pricing.Table

	// SaveMarkdown writes <stem>.md to MarkdownDir, or next to the PDF when
	// MarkdownDir is empty.
	SaveMarkdown bool
	MarkdownDir  string
}

// Pipeline processes documents sequentially through a Converter and an Analyzer.
type Pipeline struct {
	converter convert.Converter
	analyzer  analyze.Analyzer
	cfg       Config
	logger    *slog.Logger
	now       func() time.Time
	newID     func() string
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the diagnostics logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// WithRunIDs replaces the UUID generator for source.run_id.
func WithRunIDs(newID func() string) Option {
	return func(p *Pipeline) { p.newID = newID }
}

// New creates a Pipeline.
func New(c convert.Converter, a analyze.Analyzer, cfg Config, opts ...Option) *Pipeline {
	if cfg.Prices == nil {
		cfg.Prices = pricing.DefaultTable()
	}
	if cfg.Provider == "" {
		cfg.Provider = types.ProviderOpenAI
	}
	p := &Pipeline{
		converter: c,
		analyzer:  a,
		cfg:       cfg,
		logger:    slog.Default(),
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process converts and analyzes one PDF. When outPath is non-empty the
// envelope is written there as JSON.
//
// Input and API failures return a nil envelope. A reply that is not a JSON
// object still yields an envelope, written like any other, together with
// an error wrapping analyze.ErrMalformedReply.
func (p *Pipeline) Process(ctx context.Context, pdfPath, outPath string) (*types.Envelope, error) {
	start := p.now()

	absPath, err := filepath.Abs(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", pdfPath, err)
	}

	md, err := p.converter.Convert(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("converting %s: %w", pdfPath, err)
	}

	var mdFile string
	if p.cfg.SaveMarkdown {
		mdFile = convert.MarkdownPath(pdfPath, p.cfg.MarkdownDir)
		if err := convert.WriteMarkdown(mdFile, md); err != nil {
			return nil, err
		}
		if abs, err := filepath.Abs(mdFile); err == nil {
			mdFile = abs
		}
	}
	p.logger.Debug("markdown ready", "pdf", pdfPath, "chars", len(md), "path", mdFile)

	llmStart := p.now()
	reply, err := p.analyzer.Analyze(ctx, md)
	if err != nil {
		return nil, fmt.Errorf("analyzing %s: %w", pdfPath, err)
	}
	llmSec := p.now().Sub(llmStart).Seconds()

	doc, parseErr := analyze.ParseReply(reply.Content)
	if parseErr != nil {
		p.logger.Warn("malformed model reply", "pdf", pdfPath, "error", parseErr)
	} else if flags := analyze.CheckConventions(doc); len(flags) > 0 {
		p.logger.Warn("reply does not follow expected shape", "pdf", pdfPath, "issues", len(flags))
		analyze.AddFlags(doc, flags)
	}

	meta := p.meta(reply, llmSec)

	end := p.now()
	env := &types.Envelope{
		ParsedDocument: doc,
		Meta:           meta,
		Source: types.Source{
			PDFFile:      absPath,
			ProcessedAt:  end.Format(time.RFC3339),
			TotalWallSec: pricing.Round(end.Sub(start).Seconds(), 2),
			RunID:        p.newID(),
			MarkdownFile: mdFile,
		},
	}

	if outPath != "" {
		if err := WriteEnvelope(outPath, env); err != nil {
			return env, err
		}
	}

	if parseErr != nil {
		return env, fmt.Errorf("%s: %w", pdfPath, parseErr)
	}
	return env, nil
}

// meta prices the call with the configured model, falling back to the
// model name the provider echoed.
func (p *Pipeline) meta(reply analyze.Reply, llmSec float64) types.Meta {
	meta := types.Meta{
		TokensUsed:        reply.PromptTokens + reply.CompletionTokens,
		InputTokens:       reply.PromptTokens,
		OutputTokens:      reply.CompletionTokens,
		ProcessingTimeSec: pricing.Round(llmSec, 2),
		Model:             p.cfg.Model,
		ResponseModel:     reply.Model,
		Provider:          string(p.cfg.Provider),
	}

	cost, ok := p.cfg.Prices.Cost(p.cfg.Model, reply.PromptTokens, reply.CompletionTokens)
	if ok {
		meta.CostUSD = cost
		return meta
	}

	if reply.Model != "" {
		if cost, ok := p.cfg.Prices.Cost(reply.Model, reply.PromptTokens, reply.CompletionTokens); ok {
			meta.CostUSD = cost
			meta.PricingWarning = fmt.Sprintf("no price for model %q; priced as response model %q", p.cfg.Model, reply.Model)
			p.logger.Warn("model priced by response model", "model", p.cfg.Model, "response_model", reply.Model)
			return meta
		}
	}

	meta.PricingWarning = fmt.Sprintf("no price for model %q; cost reported as 0", p.cfg.Model)
	p.logger.Warn("unknown model price", "model", p.cfg.Model, "response_model", reply.Model)
	return meta
}

// WriteEnvelope writes env to path as indented UTF-8 JSON without HTML
// escaping, creating the parent directory if needed.
func WriteEnvelope(path string, env *types.Envelope) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := encodeEnvelope(f, env); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

func encodeEnvelope(w io.Writer, env *types.Envelope) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(env)
}

// DefaultOutputPath returns <pdfdir>/<stem>_analysis_<YYYYMMDD_HHMMSS>.json.
func DefaultOutputPath(pdfPath string, t time.Time) string {
	name := fmt.Sprintf("%s_analysis_%s.json", convert.Stem(pdfPath), t.Format("20060102_150405"))
	return filepath.Join(filepath.Dir(pdfPath), name)
}

// BatchSummary holds counts from a batch run.
type BatchSummary struct {
	Processed int
	Flagged   int
	Failed    int
}

// Total returns the number of documents attempted.
func (s BatchSummary) Total() int {
	return s.Processed + s.Flagged + s.Failed
}

// HasFailures reports whether any document failed. Flagged documents still
// produced an envelope and do not count.
func (s BatchSummary) HasFailures() bool {
	return s.Failed > 0
}

// ProcessBatch runs each PDF in order, writing <stem>.json into outDir and a
// status line per document to w. A failure on one document never stops the
// batch.
func (p *Pipeline) ProcessBatch(ctx context.Context, pdfPaths []string, outDir string, w io.Writer) BatchSummary {
	var s BatchSummary
	for _, path := range pdfPaths {
		stem := convert.Stem(path)
		out := filepath.Join(outDir, stem+".json")

		env, err := p.Process(ctx, path, out)
		switch {
		case errors.Is(err, analyze.ErrMalformedReply):
			s.Flagged++
			fmt.Fprintf(w, "flagged: %s (malformed reply, see %s)\n", stem, out)
		case err != nil:
			s.Failed++
			fmt.Fprintf(w, "failed:  %s (%v)\n", stem, err)
		default:
			s.Processed++
			fmt.Fprintf(w, "processed: %s (%s, $%.6f)\n", stem, statusOf(env), env.Meta.CostUSD)
		}
	}
	fmt.Fprintf(w, "\nBatch summary: %d processed, %d flagged, %d failed (total: %d)\n",
		s.Processed, s.Flagged, s.Failed, s.Total())
	return s
}

func statusOf(env *types.Envelope) string {
	if status := analyze.OverallStatus(env.ParsedDocument); status != "" {
		return status
	}
	return "no status"
}
