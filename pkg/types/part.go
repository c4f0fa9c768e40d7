// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Sentinel values written into AnalysisResult fields.
const (
	// NotFoundManufacturer is the top manufacturer when the service returned no candidates.
	NotFoundManufacturer = "Not Found"

	// UnknownManufacturer replaces a candidate name missing from the response.
	UnknownManufacturer = "Unknown"

	// ErrorManufacturer marks a row whose analysis failed.
	ErrorManufacturer = "Error"

	// NoRecommendation is used when the response carries no overall recommendation.
	NoRecommendation = "No recommendation available"
)

// PartRequest is one input row from the source spreadsheet. It is created
// once by the loader and never modified afterwards.
type PartRequest struct {
	// ID is the 1-based sequence number assigned after row filtering.
	ID int `json:"id" yaml:"id"`

	// PartNumber is the manufacturer part number (MPN). Never empty.
	PartNumber string `json:"part_number" yaml:"part_number"`

	// Description is the model or product description. Never empty.
	Description string `json:"description" yaml:"description"`

	// Quantity is the requested quantity; 1 when absent, unparsable or
	// negative. Zero is kept.
	Quantity int `json:"quantity" yaml:"quantity"`
}

// DefaultQuantity replaces a missing, unparsable or negative quantity.
const DefaultQuantity = 1

// NormalizeQuantity maps negative quantities to DefaultQuantity and keeps
// everything else, including zero.
func NormalizeQuantity(q int) int {
	if q < 0 {
		return DefaultQuantity
	}
	return q
}

// ManufacturerCandidate is one manufacturer suggestion returned by the
// completion service for a part.
type ManufacturerCandidate struct {
	Name           string   `json:"name" yaml:"name"`
	Score          int      `json:"credibility_score" yaml:"credibility_score"`
	Strengths      []string `json:"strengths" yaml:"strengths"`
	Considerations string   `json:"considerations" yaml:"considerations"`
}

// AnalysisResult is the flat summary derived from a part's candidates.
type AnalysisResult struct {
	// TopManufacturer is the first-listed candidate, NotFoundManufacturer
	// when there are none, or ErrorManufacturer on failure.
	TopManufacturer string `json:"top_manufacturer" yaml:"top_manufacturer"`

	// AllManufacturers joins candidate names with " | " in response order.
	AllManufacturers string `json:"all_manufacturers" yaml:"all_manufacturers"`

	// AvgCredibilityScore is the mean candidate score rounded to 2 decimals.
	AvgCredibilityScore float64 `json:"avg_credibility_score" yaml:"avg_credibility_score"`

	Recommendation   string `json:"recommendation" yaml:"recommendation"`
	DetailedAnalysis string `json:"detailed_analysis" yaml:"detailed_analysis"`
	AdditionalInfo   string `json:"additional_info" yaml:"additional_info"`

	// Candidates holds the decoded candidates in response order.
	Candidates []ManufacturerCandidate `json:"candidates,omitempty" yaml:"candidates,omitempty"`

	// Error records the analysis failure message. Empty on success.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Failed reports whether the result is an error sentinel.
func (r AnalysisResult) Failed() bool {
	return r.Error != ""
}

// AnalyzedPart joins an input row with its analysis. It is the row model
// consumed by the exporter, the report and the dashboard.
type AnalyzedPart struct {
	Request PartRequest    `json:"request" yaml:"request"`
	Result  AnalysisResult `json:"result" yaml:"result"`
}

// Band classifies an average credibility score for display and summary counts.
type Band string

const (
	BandHigh   Band = "high"
	BandMedium Band = "medium"
	BandLow    Band = "low"
)

// Band thresholds on the 0-100 credibility scale.
const (
	HighBandMin   = 80.0
	MediumBandMin = 60.0
)

// BandFor returns the band for score: high >= 80, medium >= 60, low otherwise.
func BandFor(score float64) Band {
	switch {
	case score >= HighBandMin:
		return BandHigh
	case score >= MediumBandMin:
		return BandMedium
	default:
		return BandLow
	}
}

// ParseBand converts a user-supplied band name. The second result is false
// when s names no band.
func ParseBand(s string) (Band, bool) {
	switch Band(s) {
	case BandHigh, BandMedium, BandLow:
		return Band(s), true
	}
	return "", false
}
