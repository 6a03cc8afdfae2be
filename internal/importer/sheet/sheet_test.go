package sheet_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/MrJamesThe3rd/facturas/internal/importer/ledger"
	"github.com/MrJamesThe3rd/facturas/internal/importer/sheet"
)

func workbook(t *testing.T, sheets map[string][][]any) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	first := true

	for name, rows := range sheets {
		if first {
			require.NoError(t, f.SetSheetName("Sheet1", name))

			first = false
		} else {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}

		for i, row := range rows {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow(name, cell, &row))
		}
	}

	var buf bytes.Buffer
	_, err := f.WriteTo(&buf)
	require.NoError(t, err)

	return buf.Bytes()
}

func TestParser_Parse(t *testing.T) {
	data := workbook(t, map[string][][]any{
		"Movimientos": {
			{"Consulta de movimientos"},
			{"Fecha operación", "Fecha valor", "Concepto", "Importe EUR"},
			{"03/02/2026", "03/02/2026", "Cliente", 1200.5},
			{46029, 46029, "Alquiler", -450},
			{"", "", "Total", ""},
		},
	})

	got, err := sheet.NewParser().Parse(bytes.NewReader(data))
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, int64(120050), got[0].AmountCents)
	assert.Equal(t, "2026-02-03", got[0].Date.Format("2006-01-02"))
	assert.Equal(t, int64(-45000), got[1].AmountCents)
	assert.Equal(t, "2026-01-07", got[1].Date.Format("2006-01-02"))
}

func TestParser_Errors(t *testing.T) {
	type testCase struct {
		name    string
		data    []byte
		wantErr error
	}

	tests := []testCase{
		{
			name:    "DisguisedHTML",
			data:    []byte("<!DOCTYPE html><html><body><table><tr><td>Fecha</td></tr></table></body></html>"),
			wantErr: sheet.ErrNotSpreadsheet,
		},
		{
			name:    "PlainCSV",
			data:    []byte("Fecha operación;Importe EUR\n01/01/2026;10,00\n"),
			wantErr: sheet.ErrNotSpreadsheet,
		},
		{
			name:    "NoHeader",
			data:    workbook(t, map[string][][]any{"Hoja": {{"a", "b"}, {1, 2}}}),
			wantErr: ledger.ErrNoHeader,
		},
		{
			name:    "NoMovements",
			data:    workbook(t, map[string][][]any{"Hoja": {{"Fecha valor", "Importe (EUR)"}}}),
			wantErr: ledger.ErrNoMovements,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := sheet.NewParser().Parse(bytes.NewReader(tt.data))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
