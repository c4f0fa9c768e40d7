// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export writes analyzed parts to a styled two-sheet workbook: a
// full-detail sheet and a condensed summary sheet built from the same rows.
package export

import (
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/pdiddy/manufacturer-finder/internal/logging"
	"github.com/pdiddy/manufacturer-finder/pkg/types"
)

// Sheet names.
const (
	DetailSheet  = "Detailed Analysis"
	SummarySheet = "Summary"
)

// Column names shared by both sheets.
const (
	ColID               = "ID"
	ColMPN              = "MPN"
	ColDescription      = "Model_Description"
	ColQuantity         = "Quantity"
	ColTopManufacturer  = "Top_Manufacturer"
	ColAllManufacturers = "All_Manufacturers"
	ColAvgScore         = "Avg_Credibility_Score"
	ColRecommendation   = "Recommendation"
	ColDetailedAnalysis = "Detailed_Analysis"
	ColAdditionalInfo   = "Additional_Info"
)

const (
	filePrefix      = "manufacturer_analysis_"
	timestampLayout = "20060102_150405"
)

var detailColumns = []string{
	ColID, ColMPN, ColDescription, ColQuantity, ColTopManufacturer,
	ColAllManufacturers, ColAvgScore, ColRecommendation, ColDetailedAnalysis, ColAdditionalInfo,
}

var summaryColumns = []string{ColID, ColMPN, ColDescription, ColTopManufacturer, ColAvgScore}

// Exporter writes workbooks. now stamps default file names.
type Exporter struct {
	cfg    types.ExportConfig
	now    func() time.Time
	logger *zap.Logger
}

// New returns an Exporter.
func New(cfg types.ExportConfig, logger *zap.Logger) *Exporter {
	return &Exporter{cfg: cfg, now: time.Now, logger: logging.OrNop(logger)}
}

// DefaultPath returns the timestamped output path used when none is given.
func (e *Exporter) DefaultPath() string {
	name := filePrefix + e.now().Format(timestampLayout) + ".xlsx"
	if e.cfg.OutputDir == "" {
		return name
	}
	return filepath.Join(e.cfg.OutputDir, name)
}

// Export writes parts to outputPath, or to DefaultPath when outputPath is
// empty, and returns the path written. Write errors are returned as is; a
// partially written file is left in place.
func (e *Exporter) Export(parts []types.AnalyzedPart, outputPath string) (string, error) {
	if outputPath == "" {
		outputPath = e.DefaultPath()
	}
	e.logger.Info("exporting results", zap.String("path", outputPath), zap.Int("rows", len(parts)))

	f, err := build(parts)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := f.SaveAs(outputPath); err != nil {
		return "", fmt.Errorf("saving workbook %s: %w", outputPath, err)
	}
	return outputPath, nil
}

// Write streams the same workbook Export would save.
func (e *Exporter) Write(w io.Writer, parts []types.AnalyzedPart) error {
	f, err := build(parts)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func build(parts []types.AnalyzedPart) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", DetailSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("naming sheet: %w", err)
	}
	if _, err := f.NewSheet(SummarySheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("creating sheet: %w", err)
	}

	st, err := newStyles(f)
	if err != nil {
		f.Close()
		return nil, err
	}

	detail := make([][]any, len(parts))
	summary := make([][]any, len(parts))
	scores := make([]float64, len(parts))
	for i, p := range parts {
		detail[i] = detailRow(p)
		summary[i] = summaryRow(p)
		scores[i] = p.Result.AvgCredibilityScore
	}

	if err := writeSheet(f, st, DetailSheet, detailColumns, detail, scores); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeSheet(f, st, SummarySheet, summaryColumns, summary, scores); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

func detailRow(p types.AnalyzedPart) []any {
	return []any{
		p.Request.ID,
		p.Request.PartNumber,
		p.Request.Description,
		p.Request.Quantity,
		p.Result.TopManufacturer,
		p.Result.AllManufacturers,
		p.Result.AvgCredibilityScore,
		p.Result.Recommendation,
		p.Result.DetailedAnalysis,
		p.Result.AdditionalInfo,
	}
}

func summaryRow(p types.AnalyzedPart) []any {
	return []any{
		p.Request.ID,
		p.Request.PartNumber,
		p.Request.Description,
		p.Result.TopManufacturer,
		p.Result.AvgCredibilityScore,
	}
}

func writeSheet(f *excelize.File, st styles, sheet string, columns []string, rows [][]any, scores []float64) error {
	header := make([]any, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("writing %s header: %w", sheet, err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		r := row
		if err := f.SetSheetRow(sheet, cell, &r); err != nil {
			return fmt.Errorf("writing %s row %d: %w", sheet, i+2, err)
		}
	}

	return applyStyles(f, st, sheet, columns, scores)
}
