// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package finder

import (
	"context"
	"fmt"
	"net/http"

	"google.golang.org/genai"

	"github.com/pdiddy/manufacturer-finder/pkg/types"
)

// DefaultGeminiModel is used when AIConfig.Model is empty and the provider is gemini.
const DefaultGeminiModel = "gemini-2.5-flash"

// GeminiBackend calls Google's Gemini API.
type GeminiBackend struct {
	client *genai.Client
	model  string
}

// NewGeminiBackend builds a Gemini backend. The credential is required.
func NewGeminiBackend(ctx context.Context, cfg types.AIConfig, client *http.Client) (*GeminiBackend, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key required")
	}
	model := cfg.Model
	if model == "" {
		model = DefaultGeminiModel
	}

	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: client,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	c, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	return &GeminiBackend{client: c, model: model}, nil
}

// Name implements Backend.
func (b *GeminiBackend) Name() string { return string(types.ProviderGemini) }

// Complete sends the prompt with the system instruction and returns the reply text.
func (b *GeminiBackend) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	gc := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(req.System, genai.RoleUser),
		Temperature:       genai.Ptr(float32(req.Temperature)),
		MaxOutputTokens:   int32(req.MaxTokens),
	}
	if req.JSON {
		gc.ResponseMIMEType = "application/json"
	}

	resp, err := b.client.Models.GenerateContent(ctx, b.model, genai.Text(req.Prompt), gc)
	if err != nil {
		return "", fmt.Errorf("gemini completion: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
