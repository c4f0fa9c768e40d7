// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package finder

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/pdiddy/manufacturer-finder/pkg/types"
)

// ErrEmptyResponse is returned when the service replies without text.
var ErrEmptyResponse = errors.New("empty response from completion service")

// Backend abstracts the completion service so tests can supply a mock.
// Each call handles one prompt and returns the raw reply text.
type Backend interface {
	Name() string
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// CompletionRequest is one prompt plus its generation parameters.
type CompletionRequest struct {
	System      string
	Prompt      string
	Temperature float64
	MaxTokens   int

	// JSON asks the service for machine-parseable JSON output.
	JSON bool
}

// NewBackend returns the backend for cfg.Provider. An empty provider
// selects OpenAI. client may be nil.
func NewBackend(ctx context.Context, cfg types.AIConfig, client *http.Client) (Backend, error) {
	switch cfg.Provider {
	case types.ProviderOpenAI, "":
		return NewOpenAIBackend(cfg, client)
	case types.ProviderGemini:
		return NewGeminiBackend(ctx, cfg, client)
	default:
		return nil, fmt.Errorf("unsupported provider %q: use openai or gemini", cfg.Provider)
	}
}
