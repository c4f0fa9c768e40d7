// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"
)

// SummaryRow is one data row of the Summary sheet.
type SummaryRow struct {
	ID                  int
	PartNumber          string
	Description         string
	TopManufacturer     string
	AvgCredibilityScore float64
}

// ReadSummary re-reads the Summary sheet of a workbook written by Export.
func ReadSummary(path string) ([]SummaryRow, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	rows, err := f.GetRows(SummarySheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("reading %s sheet: %w", SummarySheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s sheet is empty", SummarySheet)
	}

	out := make([]SummaryRow, 0, len(rows)-1)
	for i, row := range rows[1:] {
		cell := func(j int) string {
			if j < len(row) {
				return row[j]
			}
			return ""
		}

		id, err := strconv.Atoi(cell(0))
		if err != nil {
			return nil, fmt.Errorf("row %d: parsing %s: %w", i+2, ColID, err)
		}
		score, err := strconv.ParseFloat(cell(4), 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: parsing %s: %w", i+2, ColAvgScore, err)
		}
		out = append(out, SummaryRow{
			ID:                  id,
			PartNumber:          cell(1),
			Description:         cell(2),
			TopManufacturer:     cell(3),
			AvgCredibilityScore: score,
		})
	}
	return out, nil
}
