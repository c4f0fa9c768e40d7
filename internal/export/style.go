// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/pdiddy/manufacturer-finder/pkg/types"
)

const (
	headerColor  = "366092"
	headerHeight = 30
	rowHeight    = 60
	defaultWidth = 15
	borderColor  = "000000"
	borderThin   = 1
)

var bandColors = map[types.Band]string{
	types.BandHigh:   "C6EFCE",
	types.BandMedium: "FFEB9C",
	types.BandLow:    "FFC7CE",
}

// columnWidths is keyed by column name; anything else gets defaultWidth.
var columnWidths = map[string]float64{
	ColID:               8,
	ColMPN:              20,
	ColDescription:      40,
	ColQuantity:         12,
	ColTopManufacturer:  25,
	ColAllManufacturers: 35,
	ColAvgScore:         18,
	ColRecommendation:   45,
	ColDetailedAnalysis: 50,
	ColAdditionalInfo:   35,
}

func widthFor(column string) float64 {
	if w, ok := columnWidths[column]; ok {
		return w
	}
	return defaultWidth
}

// styles holds the style IDs registered in one workbook.
type styles struct {
	header int
	band   map[types.Band]int
}

func thinBorders() []excelize.Border {
	sides := []string{"left", "right", "top", "bottom"}
	out := make([]excelize.Border, len(sides))
	for i, s := range sides {
		out[i] = excelize.Border{Type: s, Color: borderColor, Style: borderThin}
	}
	return out
}

func newStyles(f *excelize.File) (styles, error) {
	header, err := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{headerColor}, Pattern: 1},
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF", Size: 11},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
		Border:    thinBorders(),
	})
	if err != nil {
		return styles{}, fmt.Errorf("creating header style: %w", err)
	}

	st := styles{header: header, band: make(map[types.Band]int, len(bandColors))}
	for band, color := range bandColors {
		id, err := f.NewStyle(&excelize.Style{
			Fill:      excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
			Alignment: &excelize.Alignment{Vertical: "top", WrapText: true},
			Border:    thinBorders(),
		})
		if err != nil {
			return styles{}, fmt.Errorf("creating %s band style: %w", band, err)
		}
		st.band[band] = id
	}
	return st, nil
}

func applyStyles(f *excelize.File, st styles, sheet string, columns []string, scores []float64) error {
	last, err := excelize.ColumnNumberToName(len(columns))
	if err != nil {
		return err
	}

	if err := f.SetCellStyle(sheet, "A1", last+"1", st.header); err != nil {
		return fmt.Errorf("styling %s header: %w", sheet, err)
	}
	if err := f.SetRowHeight(sheet, 1, headerHeight); err != nil {
		return err
	}

	for i, s := range scores {
		row := i + 2
		style := st.band[types.BandFor(s)]
		if err := f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("%s%d", last, row), style); err != nil {
			return fmt.Errorf("styling %s row %d: %w", sheet, row, err)
		}
		if err := f.SetRowHeight(sheet, row, rowHeight); err != nil {
			return err
		}
	}

	for i, c := range columns {
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, name, name, widthFor(c)); err != nil {
			return fmt.Errorf("sizing %s column %s: %w", sheet, c, err)
		}
	}

	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}
