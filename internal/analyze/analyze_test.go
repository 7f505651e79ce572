// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analyze

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/layoutmd/pkg/types"
)

const chatCompletion = `{
  "id": "chatcmpl-1",
  "object": "chat.completion",
  "created": 1760000000,
  "model": "gpt-4o-mini-2024-07-18",
  "choices": [{
    "index": 0,
    "message": {"role": "assistant", "content": "{\"document_type\": \"Commercial Invoice\"}"},
    "finish_reason": "stop"
  }],
  "usage": {"prompt_tokens": 1000, "completion_tokens": 200, "total_tokens": 1200}
}`

func TestOpenAIAnalyzer(t *testing.T) {
	var body map[string]any
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"), r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		raw, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(raw, &body))
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, chatCompletion)
	}))
	defer server.Close()

	a := NewOpenAIAnalyzer(types.AIConfig{
		APIKey:      "sk-test",
		Model:       "gpt-4o-mini",
		BaseURL:     server.URL,
		Instruction: "Extract invoice fields.",
	})

	reply, err := a.Analyze(context.Background(), "# Invoice\n\nTotal: 10 USD")
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, `{"document_type": "Commercial Invoice"}`, reply.Content)
	assert.Equal(t, 1000, reply.PromptTokens)
	assert.Equal(t, 200, reply.CompletionTokens)
	assert.Equal(t, "gpt-4o-mini-2024-07-18", reply.Model)

	assert.Equal(t, "gpt-4o-mini", body["model"])
	assert.EqualValues(t, 0, body["temperature"])
	assert.EqualValues(t, DefaultMaxTokens, body["max_completion_tokens"])
	assert.Equal(t, map[string]any{"type": "json_object"}, body["response_format"])

	msgs, ok := body["messages"].([]any)
	require.True(t, ok)
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].(map[string]any)["role"])
	system, _ := msgs[0].(map[string]any)["content"].(string)
	assert.True(t, strings.HasPrefix(system, "Extract invoice fields."), system)
	assert.Contains(t, system, "JSON", "JSON mode requires the word JSON in the messages")
	assert.Equal(t, "user", msgs[1].(map[string]any)["role"])
	assert.Equal(t, "# Invoice\n\nTotal: 10 USD", msgs[1].(map[string]any)["content"])
}

func TestOpenAIAnalyzerErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
		isEmpty bool
	}{
		{
			name:    "unauthorized",
			status:  http.StatusUnauthorized,
			body:    `{"error": {"message": "Incorrect API key provided", "type": "invalid_request_error"}}`,
			wantErr: "status 401",
		},
		{
			name:    "server error is not retried",
			status:  http.StatusInternalServerError,
			body:    `{"error": {"message": "boom"}}`,
			wantErr: "status 500",
		},
		{
			name:    "no choices",
			status:  http.StatusOK,
			body:    `{"id": "x", "object": "chat.completion", "model": "gpt-4o", "choices": [], "usage": {}}`,
			isEmpty: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls++
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			}))
			defer server.Close()

			a := NewOpenAIAnalyzer(types.AIConfig{APIKey: "sk-test", BaseURL: server.URL})
			_, err := a.Analyze(context.Background(), "doc")
			require.Error(t, err)
			assert.Equal(t, 1, calls)
			if tt.isEmpty {
				assert.ErrorIs(t, err, ErrEmptyReply)
				return
			}
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestAnthropicAnalyzer(t *testing.T) {
	var req anthropicRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "ak-test", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{
			"model": "claude-sonnet-4-5-20250929",
			"content": [
				{"type": "text", "text": "{\"document_type\": "},
				{"type": "text", "text": "\"Bill of Lading\"}"}
			],
			"usage": {"input_tokens": 812, "output_tokens": 95}
		}`)
	}))
	defer server.Close()

	a := NewAnthropicAnalyzer(types.AIConfig{
		APIKey:    "ak-test",
		Model:     "claude-sonnet-4-5",
		BaseURL:   server.URL,
		MaxTokens: 1024,
	})

	reply, err := a.Analyze(context.Background(), "# B/L")
	require.NoError(t, err)

	assert.Equal(t, `{"document_type": "Bill of Lading"}`, reply.Content)
	assert.Equal(t, 812, reply.PromptTokens)
	assert.Equal(t, 95, reply.CompletionTokens)
	assert.Equal(t, "claude-sonnet-4-5-20250929", reply.Model)

	assert.Equal(t, "claude-sonnet-4-5", req.Model)
	assert.Equal(t, 1024, req.MaxTokens)
	assert.Equal(t, 0.0, req.Temperature)
	assert.True(t, strings.HasPrefix(req.System, "You are an expert trade-finance"))
	assert.Contains(t, req.System, "single JSON object")
	require.Len(t, req.Messages, 1)
	assert.Equal(t, "user", req.Messages[0].Role)
	assert.Equal(t, "# B/L", req.Messages[0].Content)
}

func TestAnthropicAnalyzerErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
		target  error
	}{
		{
			name:    "overloaded",
			status:  529,
			body:    `{"type": "error", "error": {"type": "overloaded_error"}}`,
			wantErr: "overloaded_error",
		},
		{
			name:   "no text blocks",
			status: http.StatusOK,
			body:   `{"model": "m", "content": [{"type": "tool_use"}], "usage": {}}`,
			target: ErrEmptyReply,
		},
		{
			name:    "invalid body",
			status:  http.StatusOK,
			body:    `not json`,
			wantErr: "decoding Anthropic response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			}))
			defer server.Close()

			a := NewAnthropicAnalyzer(types.AIConfig{APIKey: "k", BaseURL: server.URL})
			_, err := a.Analyze(context.Background(), "doc")
			require.Error(t, err)
			if tt.target != nil {
				assert.ErrorIs(t, err, tt.target)
			}
			if tt.wantErr != "" {
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     types.AIConfig
		want    any
		wantErr string
	}{
		{"default provider", types.AIConfig{APIKey: "k"}, &OpenAIAnalyzer{}, ""},
		{"openai", types.AIConfig{Provider: types.ProviderOpenAI, APIKey: "k"}, &OpenAIAnalyzer{}, ""},
		{"anthropic", types.AIConfig{Provider: types.ProviderAnthropic, APIKey: "k"}, &AnthropicAnalyzer{}, ""},
		{"openai without key", types.AIConfig{}, nil, "OPENAI_API_KEY"},
		{"anthropic without key", types.AIConfig{Provider: types.ProviderAnthropic}, nil, "ANTHROPIC_API_KEY"},
		{"unknown provider", types.AIConfig{Provider: "cohere", APIKey: "k"}, nil, "unknown provider"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := New(tt.cfg)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, a)
		})
	}
}

func TestNewDefaultModel(t *testing.T) {
	a, err := New(types.AIConfig{Provider: types.ProviderAnthropic, APIKey: "k"})
	require.NoError(t, err)
	require.IsType(t, &AnthropicAnalyzer{}, a)
	assert.Equal(t, DefaultAnthropicModel, a.(*AnthropicAnalyzer).Model)

	o, err := New(types.AIConfig{APIKey: "k"})
	require.NoError(t, err)
	require.IsType(t, &OpenAIAnalyzer{}, o)
	assert.Equal(t, DefaultModel, o.(*OpenAIAnalyzer).model)

	assert.Equal(t, DefaultModel, DefaultModelFor(""))
	assert.Equal(t, DefaultModel, DefaultModelFor(types.ProviderOpenAI))
	assert.Equal(t, DefaultAnthropicModel, DefaultModelFor(types.ProviderAnthropic))
}

func TestParseReply(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		wantType  any
		malformed bool
	}{
		{"plain object", `{"document_type": "Packing List"}`, "Packing List", false},
		{"json fence", "```json\n{\"document_type\": \"Air Waybill\"}\n```", "Air Waybill", false},
		{"bare fence", "```\n{\"document_type\": \"Bill of Entry\"}\n```", "Bill of Entry", false},
		{"prose around object", "Here is the result:\n{\"document_type\": \"Letter of Credit\"}\nThanks.", "Letter of Credit", false},
		{"null document type", `{"document_type": null}`, nil, false},
		{"array", `[{"document_type": "x"}]`, nil, true},
		{"truncated", `{"document_type": "Commercial Inv`, nil, true},
		{"empty", "", nil, true},
		{"prose only", "I could not read this document.", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := ParseReply(tt.content)
			require.NotNil(t, doc)

			if tt.malformed {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrMalformedReply)
				assert.Equal(t, tt.content, doc["raw_output"])
				assert.NotEmpty(t, doc["parse_error"])
				assert.Equal(t, types.StatusErrors, OverallStatus(doc))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, doc["document_type"])
		})
	}
}

func TestParseReplyKeepsNumbers(t *testing.T) {
	doc, err := ParseReply(`{"document_type": "Commercial Invoice", "financials": {"grand_total": 12345678901234567890}}`)
	require.NoError(t, err)

	out, err := json.Marshal(doc["financials"])
	require.NoError(t, err)
	assert.JSONEq(t, `{"grand_total": 12345678901234567890}`, string(out))
}

func TestCheckConventions(t *testing.T) {
	tests := []struct {
		name       string
		doc        string
		wantFields []string
	}{
		{
			name: "conforming",
			doc: `{"document_type": "Commercial Invoice", "validation": {"overall_status": "VALID",
				"flags": [{"severity": "INFO", "field": "dates.eta", "issue": "not stated"}]}}`,
		},
		{
			name:       "missing keys",
			doc:        `{"summary": "x"}`,
			wantFields: []string{"parsed_document"},
		},
		{
			name:       "bad status",
			doc:        `{"document_type": "B/L", "validation": {"overall_status": "OK"}}`,
			wantFields: []string{"validation.overall_status"},
		},
		{
			name: "bad flag severity",
			doc: `{"document_type": "B/L", "validation": {"overall_status": "WARNINGS",
				"flags": [{"severity": "CRITICAL", "issue": "x"}]}}`,
			wantFields: []string{"validation.flags.0.severity"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := ParseReply(tt.doc)
			require.NoError(t, err)

			flags := CheckConventions(doc)
			var fields []string
			for _, f := range flags {
				assert.Equal(t, types.SeverityWarning, f.Severity)
				fields = append(fields, f.Field)
			}
			assert.Equal(t, tt.wantFields, fields)
		})
	}
}

func TestAddFlags(t *testing.T) {
	flag := types.Flag{Severity: types.SeverityWarning, Field: "document_type", Issue: "missing"}

	tests := []struct {
		name       string
		doc        map[string]any
		wantStatus string
		wantFlags  int
	}{
		{"creates validation block", map[string]any{}, types.StatusWarnings, 1},
		{"replaces non-object validation", map[string]any{"validation": "n/a"}, types.StatusWarnings, 1},
		{"valid becomes warnings", map[string]any{"validation": map[string]any{"overall_status": "VALID"}}, types.StatusWarnings, 1},
		{
			"errors kept and flags appended",
			map[string]any{"validation": map[string]any{
				"overall_status": "ERRORS",
				"flags":          []any{map[string]any{"severity": "ERROR", "issue": "x"}},
			}},
			types.StatusErrors, 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			AddFlags(tt.doc, []types.Flag{flag})
			assert.Equal(t, tt.wantStatus, OverallStatus(tt.doc))
			flags := tt.doc["validation"].(map[string]any)["flags"].([]any)
			assert.Len(t, flags, tt.wantFlags)
		})
	}

	t.Run("no flags is a no-op", func(t *testing.T) {
		doc := map[string]any{}
		AddFlags(doc, nil)
		assert.Empty(t, doc)
	})
}

func TestFailureDocumentRoundTrip(t *testing.T) {
	doc := FailureDocument("oops", errors.New("invalid character 'o'"))
	assert.Empty(t, CheckConventions(withType(doc)))
}

// withType adds the document_type key a failure document lacks.
func withType(doc map[string]any) map[string]any {
	doc["document_type"] = nil
	return doc
}
