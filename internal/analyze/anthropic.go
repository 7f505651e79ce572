// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analyze

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pdiddy/layoutmd/pkg/types"
)

// anthropicBaseURL is the default Messages API host.
const anthropicBaseURL = "https://api.anthropic.com"

// AnthropicAnalyzer calls the Anthropic Messages API. The API has no JSON
// mode, so the system prompt carries an explicit JSON-only instruction.
type AnthropicAnalyzer struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Instruction string
	BaseURL     string
	Client      *http.Client
}

// NewAnthropicAnalyzer creates an analyzer from cfg.
func NewAnthropicAnalyzer(cfg types.AIConfig) *AnthropicAnalyzer {
	cfg = withDefaults(cfg)
	base := cfg.BaseURL
	if base == "" {
		base = anthropicBaseURL
	}
	return &AnthropicAnalyzer{
		APIKey:      cfg.APIKey,
		Model:       cfg.Model,
		MaxTokens:   cfg.MaxTokens,
		Instruction: cfg.Instruction,
		BaseURL:     base,
		Client:      httpClient(cfg),
	}
}

// anthropicRequest is the request body for the Messages API.
type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	System      string             `json:"system"`
	Temperature float64            `json:"temperature"`
	Messages    []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// anthropicResponse is the response body from the Messages API.
type anthropicResponse struct {
	Model   string             `json:"model"`
	Content []anthropicContent `json:"content"`
	Usage   struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

type anthropicContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Analyze implements Analyzer.
func (a *AnthropicAnalyzer) Analyze(ctx context.Context, markdown string) (Reply, error) {
	system, err := renderSystemPrompt(a.Instruction)
	if err != nil {
		return Reply{}, fmt.Errorf("rendering prompt: %w", err)
	}

	bodyBytes, err := json.Marshal(anthropicRequest{
		Model:       a.Model,
		MaxTokens:   a.MaxTokens,
		System:      system,
		Temperature: 0,
		Messages: []anthropicMessage{
			{Role: "user", Content: markdown},
		},
	})
	if err != nil {
		return Reply{}, fmt.Errorf("marshaling request: %w", err)
	}

	url := strings.TrimSuffix(a.BaseURL, "/") + "/v1/messages"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return Reply{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", a.APIKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	client := a.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return Reply{}, fmt.Errorf("calling Anthropic API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return Reply{}, fmt.Errorf("Anthropic API returned %d: %s", resp.StatusCode, string(body))
	}

	var aResp anthropicResponse
	if err := json.NewDecoder(resp.Body).Decode(&aResp); err != nil {
		return Reply{}, fmt.Errorf("decoding Anthropic response: %w", err)
	}

	var text strings.Builder
	for _, block := range aResp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return Reply{}, ErrEmptyReply
	}

	return Reply{
		Content:          text.String(),
		PromptTokens:     aResp.Usage.InputTokens,
		CompletionTokens: aResp.Usage.OutputTokens,
		Model:            aResp.Model,
	}, nil
}
