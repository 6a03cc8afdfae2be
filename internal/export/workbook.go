package export

import (
	"errors"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

var ErrNoSheets = errors.New("no sheets to write")

// WriteWorkbook serializes sheets as an xlsx workbook, one worksheet each, header first.
func WriteWorkbook(w io.Writer, sheets ...*Sheet) error {
	if len(sheets) == 0 {
		return ErrNoSheets
	}

	f := excelize.NewFile()
	defer f.Close()

	for i, sheet := range sheets {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), sheet.Name); err != nil {
				return fmt.Errorf("naming sheet %q: %w", sheet.Name, err)
			}
		} else if _, err := f.NewSheet(sheet.Name); err != nil {
			return fmt.Errorf("creating sheet %q: %w", sheet.Name, err)
		}

		if err := writeSheet(f, sheet); err != nil {
			return err
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}

	return nil
}

func writeSheet(f *excelize.File, sheet *Sheet) error {
	header := make([]any, len(sheet.Columns))
	for i, c := range sheet.Columns {
		header[i] = c.Title
	}

	if err := setRow(f, sheet.Name, 1, header); err != nil {
		return err
	}

	for i, r := range sheet.Rows {
		values := sheet.Values(r)

		cells := make([]any, len(values))
		for j, v := range values {
			cells[j] = v
		}

		if err := setRow(f, sheet.Name, i+2, cells); err != nil {
			return err
		}
	}

	return nil
}

func setRow(f *excelize.File, sheet string, row int, cells []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("locating row %d: %w", row, err)
	}

	if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("writing row %d of %q: %w", row, sheet, err)
	}

	return nil
}
