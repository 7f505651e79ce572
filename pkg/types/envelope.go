// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Validation statuses used in parsed_document.validation.overall_status.
const (
	StatusValid    = "VALID"
	StatusWarnings = "WARNINGS"
	StatusErrors   = "ERRORS"
)

// Flag severities used in parsed_document.validation.flags[].
const (
	SeverityError   = "ERROR"
	SeverityWarning = "WARNING"
	SeverityInfo    = "INFO"
)

// Envelope is the result of one pipeline run: the model's parsed JSON plus
// run metadata and source provenance. It is written once and never updated.
type Envelope struct {
	// ParsedDocument is the model's JSON object. Its shape is defined by the
	// instruction prompt; document_type and validation are conventional keys.
	ParsedDocument map[string]any `json:"parsed_document"`

	Meta   Meta   `json:"meta"`
	Source Source `json:"source"`
}

// Meta carries token counts, cost, timing, and the model used.
type Meta struct {
	TokensUsed        int     `json:"tokens_used"`
	InputTokens       int     `json:"input_tokens"`
	OutputTokens      int     `json:"output_tokens"`
	CostUSD           float64 `json:"cost_usd"`
	ProcessingTimeSec float64 `json:"processing_time_sec"`
	Model             string  `json:"model"`
	ResponseModel     string  `json:"response_model,omitempty"`
	Provider          string  `json:"provider,omitempty"`

	// PricingWarning is set when the model has no entry in the price table
	// and the cost was reported as zero.
	PricingWarning string `json:"pricing_warning,omitempty"`
}

// Source records where the envelope came from.
type Source struct {
	PDFFile      string  `json:"pdf_file"`
	ProcessedAt  string  `json:"processed_at"`
	TotalWallSec float64 `json:"total_wall_sec"`
	RunID        string  `json:"run_id,omitempty"`
	MarkdownFile string  `json:"markdown_file,omitempty"`
}

// Flag is one entry of parsed_document.validation.flags.
type Flag struct {
	Severity       string `json:"severity"`
	Field          string `json:"field"`
	Issue          string `json:"issue"`
	Recommendation string `json:"recommendation,omitempty"`
}

// Prompt is a named instruction prompt, loadable from a YAML file.
type Prompt struct {
	Name        string `json:"name" yaml:"name"`
	Instruction string `json:"instruction" yaml:"instruction"`
}
