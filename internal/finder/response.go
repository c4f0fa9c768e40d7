// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package finder

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/pdiddy/manufacturer-finder/pkg/types"
)

// aiResponse is the JSON object the prompt asks the service to return.
type aiResponse struct {
	Manufacturers         []aiManufacturer `json:"manufacturers"`
	OverallRecommendation string           `json:"overall_recommendation"`
	AdditionalInfo        string           `json:"additional_info"`
}

// aiManufacturer is a single candidate as returned by the service.
type aiManufacturer struct {
	Name             string   `json:"name"`
	CredibilityScore score    `json:"credibility_score"`
	Strengths        []string `json:"strengths"`
	Considerations   string   `json:"considerations"`
}

// score accepts a JSON number or a numeric string, rounds it to an integer
// and clamps it to 0..100. null and absent values decode to 0.
type score int

func (s *score) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		*s = 0
		return nil
	}
	if unq, err := strconv.Unquote(raw); err == nil {
		raw = strings.TrimSpace(unq)
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("credibility_score %s is not a number", string(data))
	}
	*s = score(math.Max(0, math.Min(100, math.Round(f))))
	return nil
}

// decodeResponse strictly decodes the service reply. The reply must be a
// single JSON object; anything else is an error.
func decodeResponse(text string) (aiResponse, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return aiResponse{}, ErrEmptyResponse
	}
	if !strings.HasPrefix(trimmed, "{") {
		return aiResponse{}, fmt.Errorf("response is not a JSON object")
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(trimmed)))
	var resp aiResponse
	if err := dec.Decode(&resp); err != nil {
		return aiResponse{}, fmt.Errorf("parsing response JSON: %w", err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return aiResponse{}, fmt.Errorf("parsing response JSON: trailing data after object")
	}
	return resp, nil
}

// candidates converts decoded manufacturers into candidates in response
// order, keeping at most maxResults. Missing names become "Unknown".
func (r aiResponse) candidates(maxResults int) []types.ManufacturerCandidate {
	ms := r.Manufacturers
	if maxResults > 0 && len(ms) > maxResults {
		ms = ms[:maxResults]
	}
	out := make([]types.ManufacturerCandidate, 0, len(ms))
	for _, m := range ms {
		name := strings.TrimSpace(m.Name)
		if name == "" {
			name = types.UnknownManufacturer
		}
		strengths := m.Strengths
		if strengths == nil {
			strengths = []string{}
		}
		out = append(out, types.ManufacturerCandidate{
			Name:           name,
			Score:          int(m.CredibilityScore),
			Strengths:      strengths,
			Considerations: m.Considerations,
		})
	}
	return out
}

// summarize reduces a decoded reply to an AnalysisResult. Response order is
// taken as rank: the first candidate is the top manufacturer.
func summarize(r aiResponse, maxResults int) types.AnalysisResult {
	cands := r.candidates(maxResults)

	names := make([]string, len(cands))
	blocks := make([]string, len(cands))
	total := 0
	for i, c := range cands {
		names[i] = c.Name
		total += c.Score
		blocks[i] = fmt.Sprintf("%s (Score: %d)\nStrengths: %s\nNotes: %s",
			c.Name, c.Score, strings.Join(c.Strengths, ", "), c.Considerations)
	}

	top := types.NotFoundManufacturer
	avg := 0.0
	if len(cands) > 0 {
		top = cands[0].Name
		avg = round2(float64(total) / float64(len(cands)))
	}

	rec := strings.TrimSpace(r.OverallRecommendation)
	if rec == "" {
		rec = types.NoRecommendation
	}

	return types.AnalysisResult{
		TopManufacturer:     top,
		AllManufacturers:    strings.Join(names, " | "),
		AvgCredibilityScore: avg,
		Recommendation:      rec,
		DetailedAnalysis:    strings.Join(blocks, "\n\n"),
		AdditionalInfo:      r.AdditionalInfo,
		Candidates:          cands,
	}
}

// FailureResult is the sentinel result recorded for a part whose analysis failed.
func FailureResult(err error) types.AnalysisResult {
	return types.AnalysisResult{
		TopManufacturer:     types.ErrorManufacturer,
		AvgCredibilityScore: 0,
		Recommendation:      "Error: " + err.Error(),
		Error:               err.Error(),
	}
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
