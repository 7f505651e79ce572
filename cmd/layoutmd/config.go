// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/pdiddy/layoutmd/internal/analyze"
	"github.com/pdiddy/layoutmd/internal/convert"
	"github.com/pdiddy/layoutmd/internal/pricing"
	"github.com/pdiddy/layoutmd/internal/secrets"
	"github.com/pdiddy/layoutmd/pkg/types"
)

// defaultTimeout bounds the single LLM request.
const defaultTimeout = 60 * time.Second

func setDefaults(v *viper.Viper) {
	v.SetDefault("provider", string(types.ProviderOpenAI))
	v.SetDefault("max_tokens", analyze.DefaultMaxTokens)
	v.SetDefault("timeout", defaultTimeout)
	v.SetDefault("layout.dpi", convert.DefaultDPI)
	v.SetDefault("layout.format", string(types.FormatParagraphs))
}

// configureEnv maps environment variables onto v: LAYOUTMD_<KEY> with dots
// in nested keys written as underscores, plus the providers' own key
// variables.
func configureEnv(v *viper.Viper) {
	v.SetEnvPrefix("LAYOUTMD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, p := range secrets.Providers() {
		_ = v.BindEnv(apiKeySetting(p), secrets.EnvVar(p))
	}
}

// apiKeySetting is the config key holding provider's API key, for example
// openai_api_key.
func apiKeySetting(provider types.Provider) string {
	if provider == "" {
		provider = types.ProviderOpenAI
	}
	return string(provider) + "_api_key"
}

// resolveConfig builds the pipeline configuration from v. Flags bound to v
// take precedence over environment, config file and defaults.
func resolveConfig(v *viper.Viper) (types.PipelineConfig, error) {
	provider := types.Provider(strings.ToLower(v.GetString("provider")))
	model := v.GetString("model")
	if model == "" {
		model = analyze.DefaultModelFor(provider)
	}

	instruction := v.GetString("prompt")
	if instruction == "" {
		if path := v.GetString("prompt_file"); path != "" {
			p, err := analyze.LoadPrompt(path)
			if err != nil {
				return types.PipelineConfig{}, err
			}
			instruction = p.Instruction
		}
	}

	apiKey := loadedSecrets.APIKey(provider, v.GetString(apiKeySetting(provider)))

	dpi := v.GetFloat64("layout.dpi")
	if dpi <= 0 {
		return types.PipelineConfig{}, fmt.Errorf("layout.dpi must be positive, got %v", dpi)
	}

	format := types.MarkdownFormat(strings.ToLower(v.GetString("layout.format")))
	switch format {
	case types.FormatParagraphs, types.FormatLayout:
	default:
		return types.PipelineConfig{}, fmt.Errorf("layout.format must be paragraphs or layout, got %q", format)
	}

	return types.PipelineConfig{
		Conversion: types.ConversionConfig{
			Layout: types.LayoutConfig{
				DPI:         dpi,
				Format:      format,
				DebugImages: v.GetBool("layout.debug_images"),
				DebugDir:    v.GetString("layout.debug_dir"),
			},
			MarkdownDir: v.GetString("markdown_dir"),
			Force:       v.GetBool("force"),
		},
		AI: types.AIConfig{
			Provider:    provider,
			Model:       model,
			APIKey:      apiKey,
			BaseURL:     v.GetString("base_url"),
			MaxTokens:   v.GetInt("max_tokens"),
			Timeout:     v.GetDuration("timeout"),
			Instruction: instruction,
		},
	}, nil
}

// resolvePrices returns the default price table with any pricing.<model>
// entries from configuration applied on top.
func resolvePrices(v *viper.Viper) (pricing.Table, error) {
	var overrides pricing.Table
	if err := v.UnmarshalKey("pricing", &overrides); err != nil {
		return nil, fmt.Errorf("parsing pricing config: %w", err)
	}
	return pricing.DefaultTable().Merge(overrides), nil
}
