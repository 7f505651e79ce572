// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package analyze sends converted Markdown to a hosted chat-completion model
// and turns its reply into a JSON document.
//
// Analyzer abstracts the provider so tests can supply a stub. Two backends
// exist: OpenAIAnalyzer (official SDK) and AnthropicAnalyzer (Messages API).
// Each makes exactly one blocking request per call; there are no retries.
package analyze

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/pdiddy/layoutmd/pkg/types"
)

// DefaultMaxTokens caps the completion length when none is configured.
const DefaultMaxTokens = 2048

// DefaultModel is the OpenAI model used when none is configured.
const DefaultModel = "gpt-4o"

// DefaultAnthropicModel is the Anthropic model used when none is configured.
const DefaultAnthropicModel = "claude-sonnet-4-5"

// DefaultModelFor returns the default model for provider.
func DefaultModelFor(provider types.Provider) string {
	if provider == types.ProviderAnthropic {
		return DefaultAnthropicModel
	}
	return DefaultModel
}

// ErrEmptyReply is returned when the provider answers without any text.
var ErrEmptyReply = errors.New("model returned no content")

// Analyzer requests a structured analysis of one Markdown document.
type Analyzer interface {
	Analyze(ctx context.Context, markdown string) (Reply, error)
}

// Reply is the raw model output plus usage reported by the provider.
type Reply struct {
	Content          string
	PromptTokens     int
	CompletionTokens int

	// Model is the model name echoed by the provider, which may carry a
	// dated snapshot suffix.
	Model string
}

// New returns the Analyzer for cfg.Provider. An empty provider means OpenAI.
func New(cfg types.AIConfig) (Analyzer, error) {
	switch cfg.Provider {
	case "", types.ProviderOpenAI:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("OpenAI API key not set (OPENAI_API_KEY or .secrets/openai-api-key)")
		}
		return NewOpenAIAnalyzer(cfg), nil
	case types.ProviderAnthropic:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("Anthropic API key not set (ANTHROPIC_API_KEY or .secrets/anthropic-api-key)")
		}
		return NewAnthropicAnalyzer(cfg), nil
	default:
		return nil, fmt.Errorf("unknown provider %q (want openai or anthropic)", cfg.Provider)
	}
}

// withDefaults fills zero-valued settings shared by both backends.
func withDefaults(cfg types.AIConfig) types.AIConfig {
	if cfg.Model == "" {
		cfg.Model = DefaultModelFor(cfg.Provider)
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if cfg.Instruction == "" {
		cfg.Instruction = DefaultInstruction
	}
	return cfg
}

func httpClient(cfg types.AIConfig) *http.Client {
	return &http.Client{Timeout: cfg.Timeout}
}
