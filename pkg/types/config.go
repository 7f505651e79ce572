// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Provider identifies the hosted chat-completion API used for analysis.
type Provider string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
)

// MarkdownFormat selects how converted pages are written.
type MarkdownFormat string

const (
	// FormatParagraphs writes headings, paragraphs and pipe tables.
	FormatParagraphs MarkdownFormat = "paragraphs"
	// FormatLayout writes each page as a fenced monospace block that keeps
	// the text's horizontal positions.
	FormatLayout MarkdownFormat = "layout"
)

// LayoutConfig holds settings for page rendering and region detection.
type LayoutConfig struct {
	// DPI is the rendering resolution for page rasters (default 150).
	DPI float64 `json:"dpi" yaml:"dpi" mapstructure:"dpi"`

	// Format is the Markdown form: paragraphs (default) or layout.
	Format MarkdownFormat `json:"format,omitempty" yaml:"format,omitempty" mapstructure:"format"`

	// DebugImages enables writing <stem>_pageN_debug.png overlays.
	DebugImages bool `json:"debug_images" yaml:"debug_images" mapstructure:"debug_images"`

	// DebugDir is the directory for debug overlays. Empty means next to the PDF.
	DebugDir string `json:"debug_dir,omitempty" yaml:"debug_dir,omitempty" mapstructure:"debug_dir"`
}

// ConversionConfig holds settings for the conversion stage.
type ConversionConfig struct {
	Layout LayoutConfig `json:"layout" yaml:"layout" mapstructure:"layout"`

	// MarkdownDir is where <stem>.md files are written. Empty means next to the PDF.
	MarkdownDir string `json:"markdown_dir,omitempty" yaml:"markdown_dir,omitempty" mapstructure:"markdown_dir"`

	// Force re-converts documents whose Markdown output already exists.
	Force bool `json:"force" yaml:"force" mapstructure:"force"`
}

// AIConfig holds shared settings for the analysis call.
type AIConfig struct {
	// Provider selects the chat-completion API: openai or anthropic.
	Provider Provider `json:"provider" yaml:"provider" mapstructure:"provider"`

	// Model is the AI model identifier (e.g. "gpt-4o-mini").
	Model string `json:"model" yaml:"model" mapstructure:"model"`

	// APIKey is the authentication key for the AI API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// BaseURL overrides the API endpoint (tests, proxies).
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty" mapstructure:"base_url"`

	// MaxTokens caps the completion length (default 2048).
	MaxTokens int `json:"max_tokens" yaml:"max_tokens" mapstructure:"max_tokens"`

	// Timeout bounds the single blocking request. Zero means no client timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// Instruction is the system prompt sent ahead of the Markdown.
	Instruction string `json:"instruction,omitempty" yaml:"instruction,omitempty" mapstructure:"instruction"`
}

// PipelineConfig groups all stage configurations for the pipeline.
type PipelineConfig struct {
	Conversion ConversionConfig `json:"conversion" yaml:"conversion" mapstructure:"conversion"`
	AI         AIConfig         `json:"ai" yaml:"ai" mapstructure:"ai"`
}
