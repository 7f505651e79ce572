// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/layoutmd/internal/analyze"
	"github.com/pdiddy/layoutmd/internal/convert"
	"github.com/pdiddy/layoutmd/internal/pipeline"
	"github.com/pdiddy/layoutmd/pkg/types"
)

// defaultBatchDir receives envelopes in batch mode when --output-dir is unset.
const defaultBatchDir = "output"

var convertCmd = &cobra.Command{
	Use:   "convert <pdf>...",
	Short: "Convert PDFs to Markdown and analyze them with an LLM",
	Long: `Convert renders each page, detects text blocks and ruled tables, and
writes <name>.md next to the PDF (or into --markdown-dir). Unless
--markdown-only is set, the Markdown is sent to the configured model and the
parsed reply is written to a JSON result envelope.

With one PDF the envelope defaults to <name>_analysis_<timestamp>.json next
to the PDF. With several PDFs each envelope is written to
--output-dir/<name>.json.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runConvert,
}

func init() {
	f := convertCmd.Flags()
	f.StringP("output", "o", "", "envelope path for a single PDF")
	f.String("output-dir", "", "envelope directory for batch runs (default \"output\")")
	f.StringP("model", "m", "", "model identifier (default "+analyze.DefaultModel+" for openai, "+analyze.DefaultAnthropicModel+" for anthropic)")
	f.String("provider", string(types.ProviderOpenAI), "analysis provider: openai or anthropic")
	f.String("prompt", "", "instruction prompt text (overrides the built-in trade-document prompt)")
	f.String("prompt-file", "", "instruction prompt file: plain text, or YAML {name, instruction}")
	f.Bool("markdown-only", false, "stop after writing Markdown; no LLM call")
	f.String("markdown-dir", "", "directory for <name>.md (default: next to the PDF)")
	f.Bool("debug-images", false, "write <name>_pageN_debug.png region overlays")
	f.String("debug-dir", "", "directory for debug overlays (default: next to the PDF)")
	f.Float64("dpi", convert.DefaultDPI, "page rendering resolution")
	f.String("format", string(types.FormatParagraphs), "Markdown form: paragraphs, or layout (monospace, keeps column positions)")
	f.Int("max-tokens", analyze.DefaultMaxTokens, "completion token cap")
	f.Duration("timeout", defaultTimeout, "HTTP timeout for the LLM request")
	f.Bool("force", false, "re-convert when Markdown already exists (with --markdown-only)")

	for key, flag := range map[string]string{
		"model":               "model",
		"provider":            "provider",
		"prompt":              "prompt",
		"prompt_file":         "prompt-file",
		"markdown_dir":        "markdown-dir",
		"layout.debug_images": "debug-images",
		"layout.debug_dir":    "debug-dir",
		"layout.dpi":          "dpi",
		"layout.format":       "format",
		"max_tokens":          "max-tokens",
		"timeout":             "timeout",
		"force":               "force",
	} {
		_ = viper.BindPFlag(key, f.Lookup(flag))
	}

	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	v := viper.GetViper()
	cfg, err := resolveConfig(v)
	if err != nil {
		return err
	}
	logger := slog.Default()

	conv := convert.NewLayoutConverter(cfg.Conversion.Layout, convert.WithLogger(logger))

	markdownOnly, _ := cmd.Flags().GetBool("markdown-only")
	if markdownOnly {
		result := convert.ConvertPaths(conv, args, cfg.Conversion, cmd.OutOrStdout())
		if result.HasFailures() {
			return fmt.Errorf("%d of %d documents failed conversion", result.Failed, result.Total())
		}
		return nil
	}

	prices, err := resolvePrices(v)
	if err != nil {
		return err
	}

	analyzer, err := analyze.New(cfg.AI)
	if err != nil {
		return err
	}

	p := pipeline.New(conv, analyzer, pipeline.Config{
		Model:        cfg.AI.Model,
		Provider:     cfg.AI.Provider,
		Prices:       prices,
		SaveMarkdown: true,
		MarkdownDir:  cfg.Conversion.MarkdownDir,
	}, pipeline.WithLogger(logger))

	output, _ := cmd.Flags().GetString("output")
	outputDir, _ := cmd.Flags().GetString("output-dir")

	if len(args) == 1 && outputDir == "" {
		if output == "" {
			output = pipeline.DefaultOutputPath(args[0], time.Now())
		}
		env, err := p.Process(cmd.Context(), args[0], output)
		if env != nil {
			fmt.Fprintln(cmd.OutOrStdout(), renderSummary(env, output))
		}
		return err
	}

	if output != "" {
		return fmt.Errorf("--output takes a single PDF; use --output-dir for %d PDFs", len(args))
	}
	if outputDir == "" {
		outputDir = defaultBatchDir
	}

	summary := p.ProcessBatch(cmd.Context(), args, outputDir, cmd.OutOrStdout())
	if summary.HasFailures() {
		return fmt.Errorf("%d of %d documents failed", summary.Failed, summary.Total())
	}
	return nil
}
