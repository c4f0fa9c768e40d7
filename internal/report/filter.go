// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"strings"

	"github.com/pdiddy/manufacturer-finder/pkg/types"
)

// Query narrows a result set. Zero fields match everything.
type Query struct {
	// Search matches the part number or description, case-insensitively.
	Search   string
	Band     types.Band
	MinScore float64
}

// Filter returns the parts matching q, in their original order.
func Filter(parts []types.AnalyzedPart, q Query) []types.AnalyzedPart {
	needle := strings.ToLower(strings.TrimSpace(q.Search))
	out := make([]types.AnalyzedPart, 0, len(parts))
	for _, p := range parts {
		score := p.Result.AvgCredibilityScore
		if q.Band != "" && types.BandFor(score) != q.Band {
			continue
		}
		if score < q.MinScore {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(p.Request.PartNumber), needle) &&
			!strings.Contains(strings.ToLower(p.Request.Description), needle) {
			continue
		}
		out = append(out, p)
	}
	return out
}
