// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads provider API keys from a directory of plain-text
// files. Each file holds one secret: the filename is the key name and the
// trimmed contents are the value. The analysis providers read
// openai-api-key and anthropic-api-key; other files are kept but unused.
package secrets

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/layoutmd/pkg/types"
)

// Store maps secret names to values.
type Store map[string]string

// providerKeys names, per provider, the secret file and the environment
// variable that hold its API key.
var providerKeys = map[types.Provider]struct{ file, env string }{
	types.ProviderOpenAI:    {file: "openai-api-key", env: "OPENAI_API_KEY"},
	types.ProviderAnthropic: {file: "anthropic-api-key", env: "ANTHROPIC_API_KEY"},
}

// KeyFile returns the secret file name for provider's API key. An empty
// provider means OpenAI; unknown providers have none.
func KeyFile(provider types.Provider) string {
	return providerKeys[normalize(provider)].file
}

// EnvVar returns the environment variable conventionally holding
// provider's API key.
func EnvVar(provider types.Provider) string {
	return providerKeys[normalize(provider)].env
}

// Providers returns the providers with known key locations, sorted.
func Providers() []types.Provider {
	return []types.Provider{types.ProviderAnthropic, types.ProviderOpenAI}
}

func normalize(p types.Provider) types.Provider {
	if p == "" {
		return types.ProviderOpenAI
	}
	return types.Provider(strings.ToLower(string(p)))
}

// APIKey returns the API key for provider. A non-empty override (typically
// from the environment or config file) wins over the stored file.
func (s Store) APIKey(provider types.Provider, override string) string {
	if override != "" {
		return override
	}
	file := KeyFile(provider)
	if file == "" {
		return ""
	}
	return s[file]
}

// Names returns the loaded secret names, never their values.
func (s Store) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	return names
}

// Load reads all files in dir. A missing directory is not an error and
// yields an empty Store. Unreadable files are logged and skipped; empty
// files and dotfiles are ignored.
func Load(dir string) (Store, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return Store{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	store := make(Store)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			slog.Warn("secret not readable", "name", name, "error", err)
			continue
		}
		if value := strings.TrimSpace(string(data)); value != "" {
			store[name] = value
		}
	}
	return store, nil
}
