// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package secrets

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T) string
		want  Secrets
	}{
		{
			name: "reads key files and trims whitespace",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, GeminiAPIKey, "  AIza-test  \n")
				writeFile(t, dir, "other-key", "v")
				return dir
			},
			want: Secrets{GeminiAPIKey: "AIza-test", "other-key": "v"},
		},
		{
			name: "returns empty set for nonexistent directory",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "does-not-exist")
			},
			want: Secrets{},
		},
		{
			name: "skips empty files, dotfiles, and directories",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, GeminiAPIKey, "valid")
				writeFile(t, dir, "empty", "")
				writeFile(t, dir, "blank", " \n\t ")
				writeFile(t, dir, ".gitkeep", "x")
				require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o755))
				return dir
			},
			want: Secrets{GeminiAPIKey: "valid"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var warn bytes.Buffer
			got, err := Load(tt.setup(t), &warn)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Empty(t, warn.String())
		})
	}
}

func TestLoad_NotADirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "file", "x")

	_, err := Load(filepath.Join(dir, "file"), &bytes.Buffer{})
	assert.ErrorContains(t, err, "reading secrets directory")
}

func TestResolve(t *testing.T) {
	s := Secrets{GeminiAPIKey: "from-file"}

	assert.Equal(t, "from-flag", s.Resolve(GeminiAPIKey, "from-flag"))
	assert.Equal(t, "from-file", s.Resolve(GeminiAPIKey, ""))
	assert.Empty(t, s.Resolve("missing", ""))
	assert.Empty(t, Secrets(nil).Resolve(GeminiAPIKey, ""))
}

func TestKeys_SortedNamesOnly(t *testing.T) {
	s := Secrets{"b": "2", "a": "1"}
	assert.Equal(t, []string{"a", "b"}, s.Keys())
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}
