// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/manufacturer-finder/pkg/types"
)

func part(id int, mpn, desc string, score float64, all string) types.AnalyzedPart {
	return types.AnalyzedPart{
		Request: types.PartRequest{ID: id, PartNumber: mpn, Description: desc, Quantity: 1},
		Result:  types.AnalysisResult{AvgCredibilityScore: score, AllManufacturers: all},
	}
}

func sampleParts() []types.AnalyzedPart {
	failed := part(4, "BAD-1", "mystery", 0, "")
	failed.Result.TopManufacturer = types.ErrorManufacturer
	failed.Result.Error = "timeout"
	return []types.AnalyzedPart{
		part(1, "LM317T", "Adjustable regulator", 92, "Texas Instruments | onsemi"),
		part(2, "NE555", "Timer IC", 81, "Texas Instruments | STMicro"),
		part(3, "M6-BOLT", "Hex bolt", 65, "Fastenal"),
		failed,
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(sampleParts())

	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 1, s.Failed)
	assert.Equal(t, 59.5, s.AverageScore)
	assert.Equal(t, 2, s.High)
	assert.Equal(t, 1, s.Medium)
	assert.Equal(t, 1, s.Low)

	counts := map[string]int{}
	for _, b := range s.Distribution {
		counts[b.Label] = b.Count
	}
	assert.Equal(t, map[string]int{"90-100": 1, "80-89": 1, "70-79": 0, "60-69": 1, "<60": 1}, counts)

	require.NotEmpty(t, s.TopManufacturers)
	assert.Equal(t, ManufacturerCount{Name: "Texas Instruments", Count: 2}, s.TopManufacturers[0])
	assert.Len(t, s.TopManufacturers, 4)

	require.NotNil(t, s.HighestRated)
	assert.Equal(t, "LM317T", s.HighestRated.PartNumber)
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	assert.Equal(t, 0, s.Total)
	assert.Equal(t, 0.0, s.AverageScore)
	assert.Nil(t, s.HighestRated)
	assert.Len(t, s.Distribution, len(bucketRanges))
}

func TestSummarizeDoesNotShareBuckets(t *testing.T) {
	Summarize(sampleParts())
	for _, b := range bucketRanges {
		assert.Zero(t, b.Count)
	}
}

func TestTopManufacturersLimit(t *testing.T) {
	counts := map[string]int{}
	for i := 0; i < 15; i++ {
		counts[string(rune('A'+i))] = i
	}
	top := topManufacturers(counts, topManufacturerLimit)
	require.Len(t, top, topManufacturerLimit)
	assert.Equal(t, "O", top[0].Name)
}

func TestWriteFormats(t *testing.T) {
	s := Summarize(sampleParts())

	t.Run("table", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Write(&buf, s, FormatTable))
		out := buf.String()
		assert.Contains(t, out, "ANALYSIS SUMMARY")
		assert.Contains(t, out, "Total items analyzed: 4")
		assert.Contains(t, out, "Average credibility score: 59.50")
		assert.Contains(t, out, "High credibility (>=80): 2 items")
		assert.Contains(t, out, "Medium credibility (60-79): 1 items")
		assert.Contains(t, out, "Low credibility (<60): 1 items")
	})

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Write(&buf, s, FormatYAML))
		var got Summary
		require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
		assert.Equal(t, s.Total, got.Total)
		assert.Equal(t, s.High, got.High)
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Write(&buf, s, FormatJSON))
		var got map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
		assert.Equal(t, 59.5, got["average_score"])
	})

	t.Run("unknown", func(t *testing.T) {
		err := Write(&bytes.Buffer{}, s, "csv")
		assert.ErrorContains(t, err, "unknown summary format")
	})
}

func TestFilter(t *testing.T) {
	parts := sampleParts()
	tests := []struct {
		name string
		q    Query
		want []int
	}{
		{name: "no filter", q: Query{}, want: []int{1, 2, 3, 4}},
		{name: "high band", q: Query{Band: types.BandHigh}, want: []int{1, 2}},
		{name: "medium band", q: Query{Band: types.BandMedium}, want: []int{3}},
		{name: "low band", q: Query{Band: types.BandLow}, want: []int{4}},
		{name: "search mpn", q: Query{Search: "ne5"}, want: []int{2}},
		{name: "search description", q: Query{Search: "  HEX "}, want: []int{3}},
		{name: "min score", q: Query{MinScore: 81}, want: []int{1, 2}},
		{name: "combined", q: Query{Band: types.BandHigh, Search: "regulator"}, want: []int{1}},
		{name: "no match", q: Query{Search: "zzz"}, want: []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filter(parts, tt.q)
			ids := make([]int, len(got))
			for i, p := range got {
				ids[i] = p.Request.ID
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestWriteTableListsManufacturers(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, Summarize(sampleParts()), ""))
	assert.True(t, strings.Contains(buf.String(), "Most frequent manufacturers:"))
}
