// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets resolves the completion service credential.
//
// A credential comes from, in order: an explicit value (flag or dashboard
// form), the provider's environment variable, or a plain-text file in a
// secrets directory whose name is the key and whose trimmed contents are the
// value. Supported key files: openai-api-key, gemini-api-key.
package secrets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/manufacturer-finder/pkg/types"
)

// DefaultDir is the secrets directory read by the CLI.
const DefaultDir = ".secrets/"

// ErrMissingCredential is returned when no source supplies a credential.
var ErrMissingCredential = errors.New("API key not provided")

// EnvVar returns the environment variable holding the credential for p.
func EnvVar(p types.Provider) string {
	if p == types.ProviderGemini {
		return "GEMINI_API_KEY"
	}
	return "OPENAI_API_KEY"
}

// KeyFile returns the secrets file name holding the credential for p.
func KeyFile(p types.Provider) string {
	if p == types.ProviderGemini {
		return "gemini-api-key"
	}
	return "openai-api-key"
}

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory is not an error; Load returns an empty map.
// Unreadable files produce a warning on stderr but do not abort.
func Load(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not read secret %s: %v\n", entry.Name(), err)
			continue
		}

		if value := strings.TrimSpace(string(data)); value != "" {
			secrets[entry.Name()] = value
		}
	}

	return secrets, nil
}

// Resolve returns the credential for provider p. explicit wins, then the
// provider's environment variable, then the matching entry in files.
// Whitespace-only values count as absent.
func Resolve(p types.Provider, explicit string, files map[string]string) (string, error) {
	if v := strings.TrimSpace(explicit); v != "" {
		return v, nil
	}
	if v := strings.TrimSpace(os.Getenv(EnvVar(p))); v != "" {
		return v, nil
	}
	if v := files[KeyFile(p)]; v != "" {
		return v, nil
	}
	return "", fmt.Errorf("%w: set %s, add %s%s, or pass --api-key", ErrMissingCredential, EnvVar(p), DefaultDir, KeyFile(p))
}
