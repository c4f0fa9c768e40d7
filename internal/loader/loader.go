// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package loader reads part records from a spreadsheet into PartRequests.
// Column names are matched case-insensitively against a fixed vocabulary;
// no column order is required.
package loader

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/pdiddy/manufacturer-finder/internal/logging"
	"github.com/pdiddy/manufacturer-finder/internal/metrics"
	"github.com/pdiddy/manufacturer-finder/pkg/types"
)

var (
	// ErrNoSheets is returned for a workbook without worksheets.
	ErrNoSheets = errors.New("workbook has no worksheets")

	// ErrMissingColumns is returned when the part number or description
	// column cannot be identified, even after the positional fallback.
	ErrMissingColumns = errors.New("required columns not found")

	// ErrNoRows is returned when no row survives filtering.
	ErrNoRows = errors.New("no valid rows")
)

// Loader reads part spreadsheets. It holds no state between calls.
type Loader struct {
	cfg    types.LoaderConfig
	logger *zap.Logger
}

// New returns a Loader. A nil logger discards output.
func New(cfg types.LoaderConfig, logger *zap.Logger) *Loader {
	return &Loader{cfg: cfg, logger: logging.OrNop(logger)}
}

// Load opens the workbook at path and returns its valid part rows.
// Errors are fatal to a run: an unreadable file, missing required
// columns, or zero surviving rows.
func (l *Loader) Load(path string) ([]types.PartRequest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening spreadsheet %s: %w", path, err)
	}
	defer f.Close()

	l.logger.Info("loading spreadsheet", zap.String("path", path))
	parts, err := l.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return parts, nil
}

// Parse reads a workbook from r. It is the upload path for the dashboard.
func (l *Loader) Parse(r io.Reader) ([]types.PartRequest, error) {
	wb, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("reading workbook: %w", err)
	}
	defer wb.Close()

	sheet := l.cfg.Sheet
	if sheet == "" {
		sheets := wb.GetSheetList()
		if len(sheets) == 0 {
			return nil, ErrNoSheets
		}
		sheet = sheets[0]
	}

	rows, err := wb.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheet, err)
	}

	var headers []string
	if len(rows) > 0 {
		headers = rows[0]
		rows = rows[1:]
	}
	l.logger.Info("read sheet",
		zap.String("sheet", sheet),
		zap.Int("rows", len(rows)),
		zap.Strings("columns", headers),
	)

	m := mapColumns(headers)
	if !m.Complete() {
		return nil, fmt.Errorf("%w: missing %s in columns %q", ErrMissingColumns, strings.Join(m.Missing(), ", "), headers)
	}
	if m.Positional {
		l.logger.Warn("using positional column fallback", zap.Stringer("mapping", m))
	} else {
		l.logger.Info("mapped columns", zap.Stringer("mapping", m))
	}

	parts := buildParts(rows, m)
	dropped := len(rows) - len(parts)
	metrics.RecordLoad(len(parts), dropped)
	l.logger.Info("cleaned data", zap.Int("valid_rows", len(parts)), zap.Int("dropped", dropped))

	if err := Validate(parts); err != nil {
		return nil, err
	}
	return parts, nil
}

// Validate checks that parts is non-empty and that every row carries a
// part number and a description. It does not modify parts.
func Validate(parts []types.PartRequest) error {
	if len(parts) == 0 {
		return ErrNoRows
	}
	for _, p := range parts {
		if p.PartNumber == "" || p.Description == "" {
			return fmt.Errorf("row %d: %w", p.ID, ErrMissingColumns)
		}
	}
	return nil
}

// buildParts filters rows lacking a part number or description, coerces
// quantities and assigns IDs 1..n in post-filter order.
func buildParts(rows [][]string, m Mapping) []types.PartRequest {
	parts := make([]types.PartRequest, 0, len(rows))
	for _, row := range rows {
		pn := strings.TrimSpace(cell(row, m.PartNumber))
		desc := strings.TrimSpace(cell(row, m.Description))
		if pn == "" || desc == "" {
			continue
		}
		parts = append(parts, types.PartRequest{
			ID:          len(parts) + 1,
			PartNumber:  pn,
			Description: desc,
			Quantity:    coerceQuantity(cell(row, m.Quantity)),
		})
	}
	return parts
}

// cell returns row[idx], or "" when the column is unmapped or the row is short.
func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// coerceQuantity converts a raw cell to a quantity: blank or non-numeric
// values become 1, numeric values are truncated toward zero, and the result
// goes through types.NormalizeQuantity.
func coerceQuantity(raw string) int {
	s := strings.TrimSpace(raw)
	if s == "" {
		return types.DefaultQuantity
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f > math.MaxInt32 {
		return types.DefaultQuantity
	}
	return types.NormalizeQuantity(int(math.Trunc(f)))
}
