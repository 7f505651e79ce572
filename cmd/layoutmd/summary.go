// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/pdiddy/layoutmd/internal/analyze"
	"github.com/pdiddy/layoutmd/pkg/types"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("160"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("220"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("160")).
			Padding(0, 1)
)

// renderSummary formats the single-document result box printed after a run.
func renderSummary(env *types.Envelope, outPath string) string {
	docType, _ := env.ParsedDocument["document_type"].(string)
	if docType == "" {
		docType = "unknown"
	}

	cost := fmt.Sprintf("$%.6f", env.Meta.CostUSD)
	if env.Meta.PricingWarning != "" {
		if env.Meta.CostUSD == 0 {
			cost = dimStyle.Render("N/A")
		} else {
			cost += " " + warnStyle.Render("(estimated)")
		}
	}

	lines := []string{
		titleStyle.Render("Analysis Complete"),
		fmt.Sprintf("%s %s  %s %s",
			dimStyle.Render("Type:"), docType,
			dimStyle.Render("Status:"), statusIndicator(analyze.OverallStatus(env.ParsedDocument)),
		),
		fmt.Sprintf("%s %s  %s %s",
			dimStyle.Render("Model:"), env.Meta.Model,
			dimStyle.Render("Cost:"), cost,
		),
		fmt.Sprintf("%s %s in %s %s out",
			dimStyle.Render("Tokens:"), formatNumber(env.Meta.InputTokens),
			dimStyle.Render("->"), formatNumber(env.Meta.OutputTokens),
		),
		fmt.Sprintf("%s %.2fs  %s %.2fs",
			dimStyle.Render("LLM:"), env.Meta.ProcessingTimeSec,
			dimStyle.Render("Wall:"), env.Source.TotalWallSec,
		),
	}
	if outPath != "" {
		lines = append(lines, fmt.Sprintf("%s %s", dimStyle.Render("Output:"), outPath))
	}
	return boxStyle.Render(strings.Join(lines, "\n"))
}

func statusIndicator(status string) string {
	switch status {
	case types.StatusValid:
		return successStyle.Render(status)
	case types.StatusWarnings:
		return warnStyle.Render(status)
	case "":
		return dimStyle.Render("none")
	default:
		return errorStyle.Render(status)
	}
}

// formatNumber inserts thousands separators.
func formatNumber(n int) string {
	if n < 0 {
		return "-" + formatNumber(-n)
	}
	s := strconv.Itoa(n)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
