// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report aggregates analyzed parts into run summaries and renders
// them for the terminal and the dashboard.
package report

import (
	"cmp"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"slices"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/manufacturer-finder/pkg/types"
)

// Output formats accepted by Write.
const (
	FormatTable = "table"
	FormatYAML  = "yaml"
	FormatJSON  = "json"
)

const topManufacturerLimit = 10

// Summary is the aggregate view of one run. Averages and band counts cover
// every row, including failed ones at score 0.
type Summary struct {
	Total            int                 `json:"total" yaml:"total"`
	Failed           int                 `json:"failed" yaml:"failed"`
	AverageScore     float64             `json:"average_score" yaml:"average_score"`
	High             int                 `json:"high" yaml:"high"`
	Medium           int                 `json:"medium" yaml:"medium"`
	Low              int                 `json:"low" yaml:"low"`
	Distribution     []Bucket            `json:"distribution" yaml:"distribution"`
	TopManufacturers []ManufacturerCount `json:"top_manufacturers" yaml:"top_manufacturers"`
	HighestRated     *RatedPart          `json:"highest_rated,omitempty" yaml:"highest_rated,omitempty"`
}

// Bucket counts rows whose score falls in [Min, Max].
type Bucket struct {
	Label string `json:"label" yaml:"label"`
	Min   int    `json:"min" yaml:"min"`
	Max   int    `json:"max" yaml:"max"`
	Count int    `json:"count" yaml:"count"`
}

// ManufacturerCount is how often a manufacturer appears across all rows.
type ManufacturerCount struct {
	Name  string `json:"name" yaml:"name"`
	Count int    `json:"count" yaml:"count"`
}

// RatedPart identifies the row with the highest average score.
type RatedPart struct {
	ID         int     `json:"id" yaml:"id"`
	PartNumber string  `json:"mpn" yaml:"mpn"`
	Score      float64 `json:"score" yaml:"score"`
}

var bucketRanges = []Bucket{
	{Label: "90-100", Min: 90, Max: 100},
	{Label: "80-89", Min: 80, Max: 89},
	{Label: "70-79", Min: 70, Max: 79},
	{Label: "60-69", Min: 60, Max: 69},
	{Label: "<60", Min: 0, Max: 59},
}

// Summarize computes the run summary for parts.
func Summarize(parts []types.AnalyzedPart) Summary {
	s := Summary{
		Total:        len(parts),
		Distribution: slices.Clone(bucketRanges),
	}
	if len(parts) == 0 {
		return s
	}

	counts := make(map[string]int)
	total := 0.0
	for _, p := range parts {
		score := p.Result.AvgCredibilityScore
		total += score
		if p.Result.Failed() {
			s.Failed++
		}

		switch types.BandFor(score) {
		case types.BandHigh:
			s.High++
		case types.BandMedium:
			s.Medium++
		default:
			s.Low++
		}
		s.Distribution[bucketIndex(score)].Count++

		if s.HighestRated == nil || score > s.HighestRated.Score {
			s.HighestRated = &RatedPart{ID: p.Request.ID, PartNumber: p.Request.PartNumber, Score: score}
		}

		for _, name := range strings.Split(p.Result.AllManufacturers, "|") {
			if name = strings.TrimSpace(name); name != "" {
				counts[name]++
			}
		}
	}
	s.AverageScore = round2(total / float64(len(parts)))
	s.TopManufacturers = topManufacturers(counts, topManufacturerLimit)
	return s
}

func bucketIndex(score float64) int {
	switch {
	case score >= 90:
		return 0
	case score >= 80:
		return 1
	case score >= 70:
		return 2
	case score >= 60:
		return 3
	default:
		return 4
	}
}

// topManufacturers orders by count descending, then name, and keeps limit.
func topManufacturers(counts map[string]int, limit int) []ManufacturerCount {
	out := make([]ManufacturerCount, 0, len(counts))
	for name, n := range counts {
		out = append(out, ManufacturerCount{Name: name, Count: n})
	}
	slices.SortFunc(out, func(a, b ManufacturerCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Write renders s in the given format. An empty format means table.
func Write(w io.Writer, s Summary, format string) error {
	switch format {
	case FormatTable, "":
		return writeTable(w, s)
	case FormatYAML:
		data, err := yaml.Marshal(s)
		if err != nil {
			return fmt.Errorf("marshaling YAML: %w", err)
		}
		_, err = w.Write(data)
		return err
	case FormatJSON:
		data, err := json.MarshalIndent(s, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		_, err = fmt.Fprintf(w, "%s\n", data)
		return err
	default:
		return fmt.Errorf("unknown summary format %q: use table, yaml or json", format)
	}
}

func writeTable(w io.Writer, s Summary) error {
	rule := strings.Repeat("=", 60)
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "ANALYSIS SUMMARY")
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Total items analyzed: %d\n", s.Total)
	fmt.Fprintf(w, "Failed analyses: %d\n", s.Failed)
	fmt.Fprintf(w, "Average credibility score: %.2f\n", s.AverageScore)
	fmt.Fprintf(w, "High credibility (>=%g): %d items\n", types.HighBandMin, s.High)
	fmt.Fprintf(w, "Medium credibility (%g-%g): %d items\n", types.MediumBandMin, types.HighBandMin-1, s.Medium)
	fmt.Fprintf(w, "Low credibility (<%g): %d items\n", types.MediumBandMin, s.Low)

	if len(s.TopManufacturers) > 0 {
		fmt.Fprintln(w, "\nMost frequent manufacturers:")
		for _, m := range s.TopManufacturers {
			fmt.Fprintf(w, "  %-30s %d\n", m.Name, m.Count)
		}
	}
	_, err := fmt.Fprintln(w, rule)
	return err
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
