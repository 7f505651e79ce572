// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analyze

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/layoutmd/pkg/types"
)

func TestLoadPrompt(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		want    types.Prompt
		wantErr bool
	}{
		{
			name:    "yaml with name",
			file:    "customs.yaml",
			content: "name: customs\ninstruction: |\n  Classify the customs form.\n",
			want:    types.Prompt{Name: "customs", Instruction: "Classify the customs form."},
		},
		{
			name:    "yml without name",
			file:    "lc-check.yml",
			content: "instruction: Check the letter of credit.\n",
			want:    types.Prompt{Name: "lc-check", Instruction: "Check the letter of credit."},
		},
		{
			name:    "plain text",
			file:    "invoice.txt",
			content: "\nReturn invoice totals as JSON.\n",
			want:    types.Prompt{Name: "invoice", Instruction: "Return invoice totals as JSON."},
		},
		{
			name:    "yaml without instruction",
			file:    "empty.yaml",
			content: "name: nothing\n",
			wantErr: true,
		},
		{
			name:    "empty text",
			file:    "blank.txt",
			content: "  \n",
			wantErr: true,
		},
		{
			name:    "invalid yaml",
			file:    "broken.yaml",
			content: "name: [unterminated\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			got, err := LoadPrompt(path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadPromptMissing(t *testing.T) {
	_, err := LoadPrompt(filepath.Join(t.TempDir(), "nope.txt"))
	assert.Error(t, err)
}

func TestRenderSystemPrompt(t *testing.T) {
	got, err := renderSystemPrompt("Extract totals.")
	require.NoError(t, err)
	assert.Equal(t, "Extract totals.\n\nRespond with a single JSON object and nothing else. Do not wrap it in code fences.", got)
}
