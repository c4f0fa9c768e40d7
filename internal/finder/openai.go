// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package finder

import (
	"context"
	"fmt"
	"net/http"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/pdiddy/manufacturer-finder/pkg/types"
)

// DefaultOpenAIModel is used when AIConfig.Model is empty.
const DefaultOpenAIModel = "gpt-4o-mini"

// OpenAIBackend calls the OpenAI chat completions API through langchaingo.
type OpenAIBackend struct {
	llm   *openai.LLM
	model string
}

// NewOpenAIBackend builds an OpenAI backend. The credential is required;
// it is never read from the environment here.
func NewOpenAIBackend(cfg types.AIConfig, client *http.Client) (*OpenAIBackend, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai API key required")
	}
	model := cfg.Model
	if model == "" {
		model = DefaultOpenAIModel
	}

	opts := []openai.Option{
		openai.WithToken(cfg.APIKey),
		openai.WithModel(model),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}
	if client != nil {
		opts = append(opts, openai.WithHTTPClient(client))
	}

	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("creating openai client: %w", err)
	}
	return &OpenAIBackend{llm: llm, model: model}, nil
}

// Name implements Backend.
func (b *OpenAIBackend) Name() string { return string(types.ProviderOpenAI) }

// Complete sends the system and user messages as one chat completion.
func (b *OpenAIBackend) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, req.System),
		llms.TextParts(llms.ChatMessageTypeHuman, req.Prompt),
	}

	callOpts := []llms.CallOption{
		llms.WithModel(b.model),
		llms.WithTemperature(req.Temperature),
		llms.WithMaxTokens(req.MaxTokens),
	}
	if req.JSON {
		callOpts = append(callOpts, llms.WithJSONMode())
	}

	resp, err := b.llm.GenerateContent(ctx, messages, callOpts...)
	if err != nil {
		return "", fmt.Errorf("openai completion: %w", err)
	}
	if resp == nil || len(resp.Choices) == 0 || resp.Choices[0].Content == "" {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Content, nil
}
