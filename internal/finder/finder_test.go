// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package finder

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/pdiddy/manufacturer-finder/pkg/types"
)

// mockBackend replays canned replies in call order and records requests.
type mockBackend struct {
	replies []string
	errs    []error
	calls   []CompletionRequest
	times   []time.Time
}

func (m *mockBackend) Name() string { return "mock" }

func (m *mockBackend) Complete(_ context.Context, req CompletionRequest) (string, error) {
	i := len(m.calls)
	m.calls = append(m.calls, req)
	m.times = append(m.times, time.Now())
	var err error
	if i < len(m.errs) {
		err = m.errs[i]
	}
	if err != nil {
		return "", err
	}
	if i < len(m.replies) {
		return m.replies[i], nil
	}
	return "", ErrEmptyResponse
}

const threeManufacturers = `{
  "manufacturers": [
    {"name": "Acme", "credibility_score": 90, "strengths": ["quality", "lead time"], "considerations": "MOQ 100"},
    {"name": "Globex", "credibility_score": 70, "strengths": ["price"], "considerations": "slow"},
    {"name": "Initech", "credibility_score": 50, "strengths": [], "considerations": ""}
  ],
  "overall_recommendation": "Use Acme",
  "additional_info": "Dual source if possible"
}`

func newTestFinder(t *testing.T, b Backend, cfg types.FinderConfig) *Finder {
	t.Helper()
	f, err := New(b, cfg, nil)
	require.NoError(t, err)
	return f
}

func testRequests(n int) []types.PartRequest {
	reqs := make([]types.PartRequest, n)
	for i := range reqs {
		reqs[i] = types.PartRequest{
			ID:          i + 1,
			PartNumber:  "MPN-" + string(rune('A'+i)),
			Description: "widget",
			Quantity:    1,
		}
	}
	return reqs
}

func TestNewDefaults(t *testing.T) {
	f := newTestFinder(t, &mockBackend{}, types.FinderConfig{})
	def := types.DefaultFinderConfig()
	assert.Equal(t, def.MaxManufacturers, f.cfg.MaxManufacturers)
	assert.Equal(t, def.CallTimeout, f.cfg.CallTimeout)
	assert.Equal(t, def.MaxTokens, f.cfg.MaxTokens)
}

func TestNewErrors(t *testing.T) {
	_, err := New(nil, types.FinderConfig{}, nil)
	assert.Error(t, err)

	_, err = New(&mockBackend{}, types.FinderConfig{Delay: -time.Second}, nil)
	assert.Error(t, err)
}

func TestAnalyzeSummarizesReply(t *testing.T) {
	b := &mockBackend{replies: []string{threeManufacturers}}
	f := newTestFinder(t, b, types.FinderConfig{Temperature: 0.7, MaxTokens: 1500})

	res, err := f.Analyze(context.Background(), types.PartRequest{
		ID: 1, PartNumber: "ABC-123", Description: "10k resistor", Quantity: 250,
	}, 5)
	require.NoError(t, err)

	assert.Equal(t, "Acme", res.TopManufacturer)
	assert.Equal(t, "Acme | Globex | Initech", res.AllManufacturers)
	assert.InDelta(t, 70.0, res.AvgCredibilityScore, 1e-9)
	assert.Equal(t, "Use Acme", res.Recommendation)
	assert.Equal(t, "Dual source if possible", res.AdditionalInfo)
	assert.Contains(t, res.DetailedAnalysis, "Acme (Score: 90)\nStrengths: quality, lead time\nNotes: MOQ 100")
	assert.Len(t, res.Candidates, 3)
	assert.False(t, res.Failed())

	require.Len(t, b.calls, 1)
	call := b.calls[0]
	assert.Equal(t, systemPrompt, call.System)
	assert.True(t, call.JSON)
	assert.Equal(t, 0.7, call.Temperature)
	assert.Equal(t, 1500, call.MaxTokens)
	assert.Contains(t, call.Prompt, "ABC-123")
	assert.Contains(t, call.Prompt, "10k resistor")
	assert.Contains(t, call.Prompt, "250")
	assert.Contains(t, call.Prompt, "Up to 5 credible manufacturers")
}

func TestAnalyzeTruncatesToMaxResults(t *testing.T) {
	b := &mockBackend{replies: []string{threeManufacturers}}
	f := newTestFinder(t, b, types.FinderConfig{})

	res, err := f.Analyze(context.Background(), testRequests(1)[0], 2)
	require.NoError(t, err)
	assert.Equal(t, "Acme | Globex", res.AllManufacturers)
	assert.InDelta(t, 80.0, res.AvgCredibilityScore, 1e-9)
	assert.Contains(t, b.calls[0].Prompt, "Up to 2 credible manufacturers")
}

func TestAnalyzeNoCandidates(t *testing.T) {
	b := &mockBackend{replies: []string{`{"manufacturers": [], "overall_recommendation": ""}`}}
	f := newTestFinder(t, b, types.FinderConfig{})

	res, err := f.Analyze(context.Background(), testRequests(1)[0], 5)
	require.NoError(t, err)
	assert.Equal(t, types.NotFoundManufacturer, res.TopManufacturer)
	assert.Equal(t, "", res.AllManufacturers)
	assert.Equal(t, 0.0, res.AvgCredibilityScore)
	assert.Equal(t, types.NoRecommendation, res.Recommendation)
	assert.Empty(t, res.DetailedAnalysis)
}

func TestAnalyzeErrors(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name    string
		backend *mockBackend
		target  error
	}{
		{name: "service error", backend: &mockBackend{errs: []error{boom}}, target: boom},
		{name: "empty reply", backend: &mockBackend{replies: []string{"  "}}, target: ErrEmptyResponse},
		{name: "prose reply", backend: &mockBackend{replies: []string{"Sure! Here are some manufacturers"}}},
		{name: "malformed JSON", backend: &mockBackend{replies: []string{`{"manufacturers": [`}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newTestFinder(t, tt.backend, types.FinderConfig{})
			_, err := f.Analyze(context.Background(), testRequests(1)[0], 5)
			require.Error(t, err)
			if tt.target != nil {
				assert.ErrorIs(t, err, tt.target)
			}
		})
	}
}

func TestAnalyzeSinglePart(t *testing.T) {
	b := &mockBackend{replies: []string{threeManufacturers}}
	f := newTestFinder(t, b, types.FinderConfig{MaxManufacturers: 3})

	res, err := f.AnalyzeSinglePart(context.Background(), "XYZ", "bolt", -4)
	require.NoError(t, err)
	assert.Equal(t, "Acme", res.TopManufacturer)
	assert.Contains(t, b.calls[0].Prompt, "Quantity Required: 1\n")
	assert.Contains(t, b.calls[0].Prompt, "Up to 3 credible manufacturers")
}

func TestAnalyzeSinglePartKeepsZeroQuantity(t *testing.T) {
	b := &mockBackend{replies: []string{threeManufacturers}}
	f := newTestFinder(t, b, types.FinderConfig{})

	_, err := f.AnalyzeSinglePart(context.Background(), "XYZ", "bolt", 0)
	require.NoError(t, err)
	assert.Contains(t, b.calls[0].Prompt, "Quantity Required: 0\n")
}

func TestAnalyzeAllAllFail(t *testing.T) {
	boom := errors.New("service unavailable")
	b := &mockBackend{errs: []error{boom, boom, boom}}
	f := newTestFinder(t, b, types.FinderConfig{})

	reqs := testRequests(3)
	outcomes := f.AnalyzeAll(context.Background(), reqs, 5, nil)

	require.Len(t, outcomes, 3)
	for i, o := range outcomes {
		assert.Equal(t, reqs[i], o.Request)
		assert.False(t, o.OK())
		assert.Equal(t, types.ErrorManufacturer, o.Result.TopManufacturer)
		assert.Equal(t, 0.0, o.Result.AvgCredibilityScore)
		assert.True(t, strings.HasPrefix(o.Result.Recommendation, "Error: "))
		assert.Contains(t, o.Result.Error, "service unavailable")
	}
}

func TestAnalyzeAllMixed(t *testing.T) {
	b := &mockBackend{
		replies: []string{threeManufacturers, "", threeManufacturers},
		errs:    []error{nil, errors.New("timeout"), nil},
	}
	f := newTestFinder(t, b, types.FinderConfig{})

	var progress []int
	outcomes := f.AnalyzeAll(context.Background(), testRequests(3), 5, func(done, total int, o Outcome) {
		assert.Equal(t, 3, total)
		progress = append(progress, done)
	})

	require.Len(t, outcomes, 3)
	assert.True(t, outcomes[0].OK())
	assert.False(t, outcomes[1].OK())
	assert.True(t, outcomes[2].OK())
	assert.Equal(t, []int{1, 2, 3}, progress)

	parts := Parts(outcomes)
	require.Len(t, parts, 3)
	assert.Equal(t, "MPN-B", parts[1].Request.PartNumber)
	assert.Equal(t, types.ErrorManufacturer, parts[1].Result.TopManufacturer)
	assert.Equal(t, "Acme", parts[2].Result.TopManufacturer)
}

func TestAnalyzeAllCancelled(t *testing.T) {
	b := &mockBackend{replies: []string{threeManufacturers, threeManufacturers}}
	f := newTestFinder(t, b, types.FinderConfig{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outcomes := f.AnalyzeAll(ctx, testRequests(2), 5, nil)
	require.Len(t, outcomes, 2)
	for _, o := range outcomes {
		assert.ErrorIs(t, o.Err, context.Canceled)
		assert.Equal(t, types.ErrorManufacturer, o.Result.TopManufacturer)
	}
	assert.Empty(t, b.calls)
}

func TestAnalyzeAllSpacesCalls(t *testing.T) {
	b := &mockBackend{replies: []string{threeManufacturers, threeManufacturers, threeManufacturers}}
	delay := 40 * time.Millisecond
	f := newTestFinder(t, b, types.FinderConfig{Delay: delay})

	f.AnalyzeAll(context.Background(), testRequests(3), 5, nil)

	require.Len(t, b.times, 3)
	for i := 1; i < len(b.times); i++ {
		gap := b.times[i].Sub(b.times[i-1])
		assert.GreaterOrEqual(t, gap, delay-5*time.Millisecond, "gap between call %d and %d", i, i+1)
	}
}

func TestAnalyzeAllEmpty(t *testing.T) {
	f := newTestFinder(t, &mockBackend{}, types.FinderConfig{})
	outcomes := f.AnalyzeAll(context.Background(), nil, 5, nil)
	assert.Empty(t, outcomes)
}

func TestAnalyzeAllLogsFailures(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	b := &mockBackend{errs: []error{errors.New("boom")}}
	f, err := New(b, types.FinderConfig{}, zap.New(core))
	require.NoError(t, err)

	f.AnalyzeAll(context.Background(), testRequests(1), 5, nil)

	failed := logs.FilterMessage("analysis failed").All()
	require.Len(t, failed, 1)
	assert.Equal(t, "MPN-A", failed[0].ContextMap()["mpn"])
	assert.Equal(t, 1, logs.FilterMessage("analyzing part").Len())
}
