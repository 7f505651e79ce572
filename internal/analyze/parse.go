// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analyze

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/pdiddy/layoutmd/pkg/types"
)

// ErrMalformedReply is returned when the model's reply is not a JSON object.
var ErrMalformedReply = errors.New("malformed model reply")

// ParseReply decodes the model's reply into a JSON object. Surrounding code
// fences and prose around an object are tolerated. When no object can be decoded it returns
// a failure document together with an error wrapping ErrMalformedReply; the
// failure document carries the raw reply and an ERRORS validation block.
func ParseReply(content string) (map[string]any, error) {
	text := stripFences(content)

	doc, err := decodeObject(text)
	if err != nil && !json.Valid([]byte(text)) {
		if inner := objectSpan(text); inner != "" && inner != text {
			if d, innerErr := decodeObject(inner); innerErr == nil {
				return d, nil
			}
		}
	}
	if err != nil {
		return FailureDocument(content, err), fmt.Errorf("%w: %v", ErrMalformedReply, err)
	}
	return doc, nil
}

// FailureDocument builds the parsed_document recorded for an unparseable reply.
func FailureDocument(raw string, cause error) map[string]any {
	return map[string]any{
		"parse_error": cause.Error(),
		"raw_output":  raw,
		"validation": map[string]any{
			"overall_status": types.StatusErrors,
			"flags": []any{flagValue(types.Flag{
				Severity:       types.SeverityError,
				Field:          "parsed_document",
				Issue:          "model reply is not a valid JSON object: " + cause.Error(),
				Recommendation: "inspect raw_output and re-run the analysis",
			})},
		},
	}
}

func decodeObject(text string) (map[string]any, error) {
	if text == "" {
		return nil, errors.New("empty reply")
	}
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, errors.New("trailing data after JSON value")
	}
	doc, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("reply is a JSON %s, not an object", jsonKind(v))
	}
	return doc, nil
}

// stripFences removes a surrounding ``` or ```json fence.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// objectSpan returns the text from the first '{' to the last '}', or "".
func objectSpan(s string) string {
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end < start {
		return ""
	}
	return s[start : end+1]
}

func jsonKind(v any) string {
	switch v.(type) {
	case []any:
		return "array"
	case string:
		return "string"
	case json.Number:
		return "number"
	case bool:
		return "boolean"
	case nil:
		return "null"
	default:
		return "value"
	}
}

func flagValue(f types.Flag) map[string]any {
	m := map[string]any{
		"severity": f.Severity,
		"field":    f.Field,
		"issue":    f.Issue,
	}
	if f.Recommendation != "" {
		m["recommendation"] = f.Recommendation
	}
	return m
}
