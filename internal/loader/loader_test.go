// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package loader

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/pdiddy/manufacturer-finder/pkg/types"
)

// writeWorkbook saves rows (header first) to a new workbook in a temp dir.
func writeWorkbook(t *testing.T, rows [][]any) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cellName, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow("Sheet1", cellName, &r))
	}
	path := filepath.Join(t.TempDir(), "parts.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestMapColumns(t *testing.T) {
	tests := []struct {
		name       string
		headers    []string
		want       [3]int
		positional bool
	}{
		{
			name:    "oracle export headers",
			headers: []string{"Oracle MPN", "description", "Qty On Hand"},
			want:    [3]int{0, 1, 2},
		},
		{
			name:    "any order and case",
			headers: []string{"QUANTITY", "  Model Description ", "Part Number"},
			want:    [3]int{2, 1, 0},
		},
		{
			name:    "first matching column wins",
			headers: []string{"MPN", "Alt MPN", "Product", "Model", "Amount", "Qty"},
			want:    [3]int{0, 2, 4},
		},
		{
			name:    "quantity optional",
			headers: []string{"part_number", "product name"},
			want:    [3]int{0, 1, unmapped},
		},
		{
			name:       "positional fallback when nothing matches",
			headers:    []string{"A", "B", "C", "D"},
			want:       [3]int{0, 1, 2},
			positional: true,
		},
		{
			name:       "keyword match keeps its column over the fallback",
			headers:    []string{"Notes", "Vendor", "MPN"},
			want:       [3]int{2, 0, 1},
			positional: true,
		},
		{
			name:       "fallback takes the first unclaimed column",
			headers:    []string{"Vendor", "MPN", "Notes"},
			want:       [3]int{1, 0, 2},
			positional: true,
		},
		{
			name:    "too few columns for the fallback",
			headers: []string{"A", "B"},
			want:    [3]int{unmapped, unmapped, unmapped},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := mapColumns(tt.headers)
			assert.Equal(t, tt.want, [3]int{m.PartNumber, m.Description, m.Quantity})
			assert.Equal(t, tt.positional, m.Positional)
		})
	}
}

func TestCoerceQuantity(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{"", 1},
		{"   ", 1},
		{"abc", 1},
		{"7.9", 7},
		{"7", 7},
		{" 12 ", 12},
		{"0", 0},
		{"-3", 1},
		{"NaN", 1},
		{"1e40", 1},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, coerceQuantity(tt.raw))
		})
	}
}

func TestLoad(t *testing.T) {
	path := writeWorkbook(t, [][]any{
		{"Oracle MPN", "description", "Qty On Hand"},
		{"ABC-123", "Servo motor 5HP", 7.9},
		{"", "no part number", 3},
		{"DEF-456", "", 3},
		{"GHI-789", "Hex bolt M8", "abc"},
		{"JKL-012", "Bearing 6204", nil},
		{"MNO-345", " Relay 24V ", 2},
	})

	parts, err := New(types.LoaderConfig{}, nil).Load(path)
	require.NoError(t, err)

	want := []types.PartRequest{
		{ID: 1, PartNumber: "ABC-123", Description: "Servo motor 5HP", Quantity: 7},
		{ID: 2, PartNumber: "GHI-789", Description: "Hex bolt M8", Quantity: 1},
		{ID: 3, PartNumber: "JKL-012", Description: "Bearing 6204", Quantity: 1},
		{ID: 4, PartNumber: "MNO-345", Description: "Relay 24V", Quantity: 2},
	}
	assert.Equal(t, want, parts)

	for i, p := range parts {
		assert.Equal(t, i+1, p.ID)
		assert.NotEmpty(t, p.PartNumber)
		assert.NotEmpty(t, p.Description)
	}
}

func TestLoad_StringQuantity(t *testing.T) {
	path := writeWorkbook(t, [][]any{
		{"MPN", "Model", "Qty"},
		{"A-1", "Widget", "7.9"},
	})
	parts, err := New(types.LoaderConfig{}, nil).Load(path)
	require.NoError(t, err)
	require.Len(t, parts, 1)
	assert.Equal(t, 7, parts[0].Quantity)
}

func TestLoad_NoQuantityColumn(t *testing.T) {
	path := writeWorkbook(t, [][]any{
		{"Part Number", "Description"},
		{"A-1", "Widget"},
	})
	parts, err := New(types.LoaderConfig{}, nil).Load(path)
	require.NoError(t, err)
	require.Len(t, parts, 1)
	assert.Equal(t, 1, parts[0].Quantity)
}

func TestLoad_PositionalFallback(t *testing.T) {
	path := writeWorkbook(t, [][]any{
		{"Col1", "Col2", "Col3"},
		{"X-1", "Gearbox", 4},
	})
	parts, err := New(types.LoaderConfig{}, nil).Load(path)
	require.NoError(t, err)
	assert.Equal(t, []types.PartRequest{{ID: 1, PartNumber: "X-1", Description: "Gearbox", Quantity: 4}}, parts)
}

func TestLoad_FallbackAroundKeywordColumn(t *testing.T) {
	path := writeWorkbook(t, [][]any{
		{"Vendor", "MPN", "Notes"},
		{"Acme Corp", "LM317T", "urgent"},
	})
	parts, err := New(types.LoaderConfig{}, nil).Load(path)
	require.NoError(t, err)
	assert.Equal(t, []types.PartRequest{{ID: 1, PartNumber: "LM317T", Description: "Acme Corp", Quantity: 1}}, parts)
}

func TestLoad_ZeroQuantityKept(t *testing.T) {
	path := writeWorkbook(t, [][]any{
		{"MPN", "Description", "Qty"},
		{"A-1", "Widget", 0},
		{"A-2", "Gadget", -2},
	})
	parts, err := New(types.LoaderConfig{}, nil).Load(path)
	require.NoError(t, err)
	require.Len(t, parts, 2)
	assert.Equal(t, 0, parts[0].Quantity)
	assert.Equal(t, 1, parts[1].Quantity)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := New(types.LoaderConfig{}, nil).Load(filepath.Join(t.TempDir(), "nope.xlsx"))
		require.Error(t, err)
	})

	t.Run("missing columns", func(t *testing.T) {
		path := writeWorkbook(t, [][]any{
			{"Vendor", "Notes"},
			{"acme", "n/a"},
		})
		_, err := New(types.LoaderConfig{}, nil).Load(path)
		require.ErrorIs(t, err, ErrMissingColumns)
	})

	t.Run("no surviving rows", func(t *testing.T) {
		path := writeWorkbook(t, [][]any{
			{"MPN", "Description", "Qty"},
			{"", "orphan", 1},
		})
		_, err := New(types.LoaderConfig{}, nil).Load(path)
		require.ErrorIs(t, err, ErrNoRows)
	})

	t.Run("unknown sheet", func(t *testing.T) {
		path := writeWorkbook(t, [][]any{{"MPN", "Description"}, {"A", "B"}})
		_, err := New(types.LoaderConfig{Sheet: "Parts"}, nil).Load(path)
		require.Error(t, err)
	})

	t.Run("not a workbook", func(t *testing.T) {
		_, err := New(types.LoaderConfig{}, nil).Parse(bytes.NewReader([]byte("plain text")))
		require.Error(t, err)
	})
}

func TestLoad_NamedSheet(t *testing.T) {
	f := excelize.NewFile()
	_, err := f.NewSheet("Parts")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("Parts", "A1", &[]any{"MPN", "Description", "Qty"}))
	require.NoError(t, f.SetSheetRow("Parts", "A2", &[]any{"P-9", "Valve", 3}))
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	require.NoError(t, f.Close())

	parts, err := New(types.LoaderConfig{Sheet: "Parts"}, nil).Parse(&buf)
	require.NoError(t, err)
	assert.Equal(t, []types.PartRequest{{ID: 1, PartNumber: "P-9", Description: "Valve", Quantity: 3}}, parts)
}

func TestValidate(t *testing.T) {
	assert.ErrorIs(t, Validate(nil), ErrNoRows)
	assert.ErrorIs(t, Validate([]types.PartRequest{{ID: 1, PartNumber: "A"}}), ErrMissingColumns)
	assert.NoError(t, Validate([]types.PartRequest{{ID: 1, PartNumber: "A", Description: "B", Quantity: 1}}))
}
