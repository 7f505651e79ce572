// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analyze

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"

	"github.com/pdiddy/layoutmd/pkg/types"
)

// OpenAIAnalyzer calls the Chat Completions API in JSON-object mode. JSON
// mode rejects requests whose messages never mention JSON, so the system
// message always carries the JSON-only reply rule.
type OpenAIAnalyzer struct {
	model       string
	maxTokens   int
	instruction string
	client      openai.Client
}

// NewOpenAIAnalyzer creates an analyzer from cfg. SDK retries are disabled so
// each Analyze call is a single request.
func NewOpenAIAnalyzer(cfg types.AIConfig) *OpenAIAnalyzer {
	cfg = withDefaults(cfg)

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(httpClient(cfg)),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &OpenAIAnalyzer{
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		instruction: cfg.Instruction,
		client:      openai.NewClient(opts...),
	}
}

// Analyze implements Analyzer.
func (a *OpenAIAnalyzer) Analyze(ctx context.Context, markdown string) (Reply, error) {
	system, err := renderSystemPrompt(a.instruction)
	if err != nil {
		return Reply{}, fmt.Errorf("rendering prompt: %w", err)
	}

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(a.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(markdown),
		},
		Temperature:         openai.Float(0),
		MaxCompletionTokens: openai.Int(int64(a.maxTokens)),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
	}

	resp, err := a.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return Reply{}, mapOpenAIError(err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return Reply{}, ErrEmptyReply
	}

	return Reply{
		Content:          resp.Choices[0].Message.Content,
		PromptTokens:     int(resp.Usage.PromptTokens),
		CompletionTokens: int(resp.Usage.CompletionTokens),
		Model:            resp.Model,
	}, nil
}

func mapOpenAIError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			return fmt.Errorf("OpenAI API error (status %d): %s", apiErr.StatusCode, apiErr.Message)
		}
		return fmt.Errorf("OpenAI API error (status %d)", apiErr.StatusCode)
	}
	return fmt.Errorf("calling OpenAI API: %w", err)
}
