// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analyze

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/pdiddy/layoutmd/pkg/types"
)

// conventionSchema describes the keys the pipeline reads from a reply. Any
// other keys are free-form and pass through untouched.
const conventionSchema = `{
  "type": "object",
  "required": ["document_type", "validation"],
  "properties": {
    "document_type": {"type": ["string", "null"]},
    "validation": {
      "type": "object",
      "required": ["overall_status"],
      "properties": {
        "overall_status": {"enum": ["VALID", "WARNINGS", "ERRORS"]},
        "flags": {
          "type": "array",
          "items": {
            "type": "object",
            "required": ["severity", "issue"],
            "properties": {
              "severity": {"enum": ["ERROR", "WARNING", "INFO"]},
              "field": {"type": ["string", "null"]},
              "issue": {"type": "string"},
              "recommendation": {"type": ["string", "null"]}
            }
          }
        }
      }
    }
  }
}`

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func conventions() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("conventions.json", strings.NewReader(conventionSchema)); err != nil {
			schemaErr = fmt.Errorf("loading convention schema: %w", err)
			return
		}
		schema, schemaErr = compiler.Compile("conventions.json")
	})
	return schema, schemaErr
}

// CheckConventions validates doc against the conventional reply shape and
// returns one WARNING flag per mismatch. A conforming document yields none.
func CheckConventions(doc map[string]any) []types.Flag {
	s, err := conventions()
	if err != nil {
		return []types.Flag{{
			Severity: types.SeverityWarning,
			Field:    "parsed_document",
			Issue:    err.Error(),
		}}
	}

	err = s.Validate(doc)
	if err == nil {
		return nil
	}

	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return []types.Flag{{
			Severity: types.SeverityWarning,
			Field:    "parsed_document",
			Issue:    err.Error(),
		}}
	}

	var flags []types.Flag
	for _, leaf := range leafErrors(verr) {
		flags = append(flags, types.Flag{
			Severity:       types.SeverityWarning,
			Field:          fieldName(leaf.InstanceLocation),
			Issue:          "reply does not follow the expected shape: " + leaf.Message,
			Recommendation: "check the instruction prompt's output schema",
		})
	}
	return flags
}

func leafErrors(e *jsonschema.ValidationError) []*jsonschema.ValidationError {
	if len(e.Causes) == 0 {
		return []*jsonschema.ValidationError{e}
	}
	var out []*jsonschema.ValidationError
	for _, c := range e.Causes {
		out = append(out, leafErrors(c)...)
	}
	return out
}

// fieldName turns a JSON pointer such as /validation/flags/0 into
// validation.flags.0.
func fieldName(pointer string) string {
	f := strings.ReplaceAll(strings.Trim(pointer, "/"), "/", ".")
	if f == "" {
		return "parsed_document"
	}
	return f
}

// AddFlags appends flags to doc's validation block, creating the block when
// it is missing or not an object. A VALID or unrecognised status becomes
// WARNINGS; ERRORS is kept.
func AddFlags(doc map[string]any, flags []types.Flag) {
	if len(flags) == 0 {
		return
	}

	validation, ok := doc["validation"].(map[string]any)
	if !ok {
		validation = map[string]any{}
		doc["validation"] = validation
	}

	existing, _ := validation["flags"].([]any)
	for _, f := range flags {
		existing = append(existing, flagValue(f))
	}
	validation["flags"] = existing

	if status, _ := validation["overall_status"].(string); status != types.StatusErrors {
		validation["overall_status"] = types.StatusWarnings
	}
}

// OverallStatus returns doc's validation.overall_status, or "".
func OverallStatus(doc map[string]any) string {
	validation, _ := doc["validation"].(map[string]any)
	status, _ := validation["overall_status"].(string)
	return status
}
