// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package finder asks a completion service for credible manufacturers of
// each part and reduces the structured reply to an AnalysisResult.
//
// Parts are analyzed one at a time in input order. Consecutive service
// calls are spaced by a fixed delay; failed calls are never retried.
package finder

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/pdiddy/manufacturer-finder/internal/logging"
	"github.com/pdiddy/manufacturer-finder/internal/metrics"
	"github.com/pdiddy/manufacturer-finder/pkg/types"
)

// Finder runs manufacturer analyses against a Backend. It keeps no
// per-part state; the limiter only spaces calls within a batch.
type Finder struct {
	backend Backend
	cfg     types.FinderConfig
	limiter *rate.Limiter
	logger  *zap.Logger
}

// New returns a Finder. Zero MaxManufacturers, CallTimeout and MaxTokens
// take their defaults; a zero Delay disables call spacing.
func New(backend Backend, cfg types.FinderConfig, logger *zap.Logger) (*Finder, error) {
	if backend == nil {
		return nil, fmt.Errorf("backend is required")
	}
	if cfg.Delay < 0 {
		return nil, fmt.Errorf("delay must not be negative, got %v", cfg.Delay)
	}

	def := types.DefaultFinderConfig()
	if cfg.MaxManufacturers <= 0 {
		cfg.MaxManufacturers = def.MaxManufacturers
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = def.CallTimeout
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = def.MaxTokens
	}

	limit := rate.Inf
	if cfg.Delay > 0 {
		limit = rate.Every(cfg.Delay)
	}

	return &Finder{
		backend: backend,
		cfg:     cfg,
		limiter: rate.NewLimiter(limit, 1),
		logger:  logging.OrNop(logger),
	}, nil
}

// Outcome is the per-part result of a batch run: either a decoded
// analysis or the error that prevented one. Result is always populated;
// on failure it holds the sentinel from FailureResult.
type Outcome struct {
	Request types.PartRequest
	Result  types.AnalysisResult
	Err     error
}

// OK reports whether the analysis succeeded.
func (o Outcome) OK() bool { return o.Err == nil }

// Part unwraps the outcome to an output row regardless of success.
func (o Outcome) Part() types.AnalyzedPart {
	return types.AnalyzedPart{Request: o.Request, Result: o.Result}
}

// Parts unwraps outcomes to output rows in order.
func Parts(outcomes []Outcome) []types.AnalyzedPart {
	parts := make([]types.AnalyzedPart, len(outcomes))
	for i, o := range outcomes {
		parts[i] = o.Part()
	}
	return parts
}

// ProgressFunc is called after each part with the number done, the batch
// size and the part's outcome.
type ProgressFunc func(done, total int, o Outcome)

// Analyze makes one service call for req and decodes the reply. maxResults
// <= 0 uses the configured maximum. The call is bounded by CallTimeout.
func (f *Finder) Analyze(ctx context.Context, req types.PartRequest, maxResults int) (types.AnalysisResult, error) {
	if maxResults <= 0 {
		maxResults = f.cfg.MaxManufacturers
	}

	prompt, err := renderPrompt(req, maxResults)
	if err != nil {
		return types.AnalysisResult{}, fmt.Errorf("rendering prompt: %w", err)
	}

	callCtx, cancel := context.WithTimeout(ctx, f.cfg.CallTimeout)
	defer cancel()

	start := time.Now()
	text, err := f.backend.Complete(callCtx, CompletionRequest{
		System:      systemPrompt,
		Prompt:      prompt,
		Temperature: f.cfg.Temperature,
		MaxTokens:   f.cfg.MaxTokens,
		JSON:        true,
	})
	metrics.RecordCompletion(f.backend.Name(), time.Since(start))
	if err != nil {
		return types.AnalysisResult{}, fmt.Errorf("querying %s: %w", f.backend.Name(), err)
	}

	resp, err := decodeResponse(text)
	if err != nil {
		return types.AnalysisResult{}, err
	}
	return summarize(resp, maxResults), nil
}

// AnalyzeSinglePart analyzes one part given by its fields.
func (f *Finder) AnalyzeSinglePart(ctx context.Context, partNumber, description string, quantity int) (types.AnalysisResult, error) {
	return f.Analyze(ctx, types.PartRequest{
		ID:          1,
		PartNumber:  partNumber,
		Description: description,
		Quantity:    types.NormalizeQuantity(quantity),
	}, 0)
}

// AnalyzeAll analyzes reqs sequentially and returns exactly one Outcome per
// request, in input order. A failure on one part, including a cancelled
// ctx, is recorded in its Outcome and never stops the loop. progress may
// be nil.
func (f *Finder) AnalyzeAll(ctx context.Context, reqs []types.PartRequest, maxResults int, progress ProgressFunc) []Outcome {
	outcomes := make([]Outcome, len(reqs))
	for i, req := range reqs {
		f.logger.Info("analyzing part",
			zap.Int("row", i+1),
			zap.Int("total", len(reqs)),
			zap.String("mpn", req.PartNumber),
		)

		var (
			res types.AnalysisResult
			err error
		)
		if err = f.limiter.Wait(ctx); err == nil {
			res, err = f.Analyze(ctx, req, maxResults)
		}
		if err != nil {
			f.logger.Error("analysis failed",
				zap.Int("id", req.ID),
				zap.String("mpn", req.PartNumber),
				zap.Error(err),
			)
			res = FailureResult(err)
		}
		metrics.RecordAnalysis(err)

		outcomes[i] = Outcome{Request: req, Result: res, Err: err}
		if progress != nil {
			progress(i+1, len(reqs), outcomes[i])
		}
	}
	return outcomes
}
