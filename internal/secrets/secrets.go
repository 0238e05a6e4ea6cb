// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API keys from a directory of plain-text files. Each
// file is one secret: the filename is the key and the trimmed contents are
// the value.
//
// Supported key files: gemini-api-key.
package secrets

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// GeminiAPIKey is the file name holding the Generative Language API key.
const GeminiAPIKey = "gemini-api-key"

// Secrets maps key names to values.
type Secrets map[string]string

// Load reads all regular, non-hidden files in dir. A missing directory is
// not an error and yields an empty set. Unreadable files are reported to
// warn and skipped.
func Load(dir string, warn io.Writer) (Secrets, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return Secrets{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	s := Secrets{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(warn, "warning: could not read secret %s: %v\n", name, err)
			continue
		}
		if value := strings.TrimSpace(string(data)); value != "" {
			s[name] = value
		}
	}
	return s, nil
}

// Resolve returns explicit when it is set, otherwise the stored secret for
// key (empty if absent). Flags and config win over files.
func (s Secrets) Resolve(key, explicit string) string {
	if explicit != "" {
		return explicit
	}
	return s[key]
}

// Keys returns the loaded key names in sorted order. Values are never listed.
func (s Secrets) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
