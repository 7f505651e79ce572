// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pricing computes the USD cost of a model call from token counts
// and an explicit price table.
package pricing

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

// tokensPerUnit is the token count prices are quoted for.
const tokensPerUnit = 1_000_000

// Price is the USD cost per one million tokens.
type Price struct {
	Input  float64 `json:"input" yaml:"input" mapstructure:"input"`
	Output float64 `json:"output" yaml:"output" mapstructure:"output"`
}

// Table maps model names to prices.
type Table map[string]Price

// DefaultTable returns the built-in prices for OpenAI chat models.
func DefaultTable() Table {
	return Table{
		"gpt-4o":       {Input: 2.50, Output: 10.00},
		"gpt-4o-mini":  {Input: 0.15, Output: 0.60},
		"gpt-4.1":      {Input: 2.00, Output: 8.00},
		"gpt-4.1-mini": {Input: 0.40, Output: 1.60},
		"gpt-4.1-nano": {Input: 0.10, Output: 0.40},
	}
}

// Merge returns a copy of t with overrides applied on top.
func (t Table) Merge(overrides Table) Table {
	out := make(Table, len(t)+len(overrides))
	for k, v := range t {
		out[k] = v
	}
	for k, v := range overrides {
		out[strings.ToLower(k)] = v
	}
	return out
}

// snapshotSuffix matches the date a provider appends to a model alias:
// -2024-07-18, -20250929 or -0613.
var snapshotSuffix = regexp.MustCompile(`^-(\d{4}-\d{2}-\d{2}|\d{8}|\d{4})$`)

// Lookup finds the price for model: an exact match first, then a table
// entry followed only by a snapshot date, so gpt-4o-mini-2024-07-18
// resolves to gpt-4o-mini while gpt-4o-audio-preview has no price.
func (t Table) Lookup(model string) (Price, bool) {
	model = strings.ToLower(strings.TrimSpace(model))
	if p, ok := t[model]; ok {
		return p, true
	}
	best, found := "", false
	for name := range t {
		rest, ok := strings.CutPrefix(model, name)
		if ok && snapshotSuffix.MatchString(rest) && len(name) > len(best) {
			best, found = name, true
		}
	}
	if !found {
		return Price{}, false
	}
	return t[best], true
}

// Cost returns the USD cost of a call rounded to 6 decimals. ok is false
// when the model has no price; the cost is then zero.
func (t Table) Cost(model string, promptTokens, completionTokens int) (cost float64, ok bool) {
	p, ok := t.Lookup(model)
	if !ok {
		return 0, false
	}
	raw := (float64(promptTokens)*p.Input + float64(completionTokens)*p.Output) / tokensPerUnit
	return Round(raw, 6), true
}

// Models returns the table's model names in sorted order.
func (t Table) Models() []string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Round rounds v to the given number of decimal places.
func Round(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
