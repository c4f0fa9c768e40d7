// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package finder

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/manufacturer-finder/pkg/types"
)

func TestScoreUnmarshal(t *testing.T) {
	tests := []struct {
		name    string
		json    string
		want    int
		wantErr bool
	}{
		{name: "integer", json: `{"name":"A","credibility_score":85}`, want: 85},
		{name: "float rounds", json: `{"name":"A","credibility_score":84.6}`, want: 85},
		{name: "numeric string", json: `{"name":"A","credibility_score":"72"}`, want: 72},
		{name: "clamped high", json: `{"name":"A","credibility_score":140}`, want: 100},
		{name: "clamped low", json: `{"name":"A","credibility_score":-3}`, want: 0},
		{name: "null", json: `{"name":"A","credibility_score":null}`, want: 0},
		{name: "absent", json: `{"name":"A"}`, want: 0},
		{name: "word", json: `{"name":"A","credibility_score":"high"}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := decodeResponse(`{"manufacturers":[` + tt.json + `]}`)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Len(t, resp.Manufacturers, 1)
			assert.Equal(t, tt.want, int(resp.Manufacturers[0].CredibilityScore))
		})
	}
}

func TestDecodeResponse(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantErr bool
	}{
		{name: "object", text: threeManufacturers},
		{name: "surrounding whitespace", text: "\n  {\"manufacturers\": []}\n"},
		{name: "empty", text: "", wantErr: true},
		{name: "array", text: `[{"name":"A"}]`, wantErr: true},
		{name: "fenced", text: "```json\n{}\n```", wantErr: true},
		{name: "trailing object", text: `{} {}`, wantErr: true},
		{name: "trailing brace", text: `{"manufacturers":[]}}`, wantErr: true},
		{name: "trailing bracket", text: `{"manufacturers":[]}]`, wantErr: true},
		{name: "wrong type", text: `{"manufacturers": "Acme"}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decodeResponse(tt.text)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSummarizeUnknownName(t *testing.T) {
	resp, err := decodeResponse(`{"manufacturers":[{"credibility_score":60}],"overall_recommendation":"ok"}`)
	require.NoError(t, err)

	res := summarize(resp, 5)
	assert.Equal(t, types.UnknownManufacturer, res.TopManufacturer)
	assert.Equal(t, types.UnknownManufacturer, res.AllManufacturers)
	assert.Equal(t, "Unknown (Score: 60)\nStrengths: \nNotes: ", res.DetailedAnalysis)
	require.Len(t, res.Candidates, 1)
	assert.NotNil(t, res.Candidates[0].Strengths)
}

func TestSummarizeRoundsAverage(t *testing.T) {
	resp, err := decodeResponse(`{"manufacturers":[
		{"name":"A","credibility_score":90},
		{"name":"B","credibility_score":85},
		{"name":"C","credibility_score":80}]}`)
	require.NoError(t, err)
	assert.Equal(t, 85.0, summarize(resp, 5).AvgCredibilityScore)

	resp, err = decodeResponse(`{"manufacturers":[
		{"name":"A","credibility_score":90},
		{"name":"B","credibility_score":91},
		{"name":"C","credibility_score":91}]}`)
	require.NoError(t, err)
	assert.Equal(t, 90.67, summarize(resp, 5).AvgCredibilityScore)
}

func TestSummarizeDetailedBlocks(t *testing.T) {
	resp, err := decodeResponse(`{"manufacturers":[
		{"name":"A","credibility_score":90,"strengths":["x","y"],"considerations":"n1"},
		{"name":"B","credibility_score":80,"strengths":["z"],"considerations":"n2"}]}`)
	require.NoError(t, err)

	want := "A (Score: 90)\nStrengths: x, y\nNotes: n1\n\nB (Score: 80)\nStrengths: z\nNotes: n2"
	assert.Equal(t, want, summarize(resp, 5).DetailedAnalysis)
}

func TestFailureResult(t *testing.T) {
	res := FailureResult(errors.New("rate limited"))
	assert.Equal(t, types.ErrorManufacturer, res.TopManufacturer)
	assert.Equal(t, 0.0, res.AvgCredibilityScore)
	assert.Equal(t, "Error: rate limited", res.Recommendation)
	assert.Equal(t, "rate limited", res.Error)
	assert.True(t, res.Failed())
}

func TestRenderPrompt(t *testing.T) {
	got, err := renderPrompt(types.PartRequest{PartNumber: "LM317T", Description: "regulator", Quantity: 12}, 4)
	require.NoError(t, err)
	assert.Contains(t, got, "Manufacturing Part Number (MPN): LM317T")
	assert.Contains(t, got, "Model/Product Description: regulator")
	assert.Contains(t, got, "Quantity Required: 12")
	assert.Contains(t, got, "Up to 4 credible manufacturers")
	assert.Contains(t, got, `"credibility_score"`)
}
