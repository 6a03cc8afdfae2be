// Package ledger turns the rows of a bank statement into dated, signed movements.
// It is shared by the spreadsheet and delimited text readers.
package ledger

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/MrJamesThe3rd/facturas/internal/money"
)

var (
	ErrNoHeader    = errors.New("no ledger header found: expected a date column (fecha operación/valor) and an amount column (importe eur)")
	ErrNoMovements = errors.New("no movements found")
)

// headerScanRows bounds how far down the header row may appear.
const headerScanRows = 10

// Movement is one statement line: positive amounts are money in, negative money out.
type Movement struct {
	Date        time.Time
	AmountCents int64
}

// Header locates the columns of interest. Indices are 0 based.
type Header struct {
	Row       int
	DateCol   int
	AmountCol int
}

// Parse detects the header and reads every row below it. Rows whose date or amount cannot be
// read are skipped, as are zero amounts.
func Parse(rows [][]string) ([]Movement, error) {
	h, ok := DetectHeader(rows)
	if !ok {
		return nil, ErrNoHeader
	}

	var movements []Movement

	for _, row := range rows[h.Row+1:] {
		date, ok := ParseDate(cellValue(row, h.DateCol))
		if !ok {
			continue
		}

		cents, err := money.ParseCents(cellValue(row, h.AmountCol))
		if err != nil || cents == 0 {
			continue
		}

		movements = append(movements, Movement{Date: date, AmountCents: cents})
	}

	if len(movements) == 0 {
		return nil, ErrNoMovements
	}

	return movements, nil
}

// DetectHeader looks in the first rows for a date column ("fecha" with "operaci" or "valor",
// operation date preferred) and an amount column ("importe" with "eur").
func DetectHeader(rows [][]string) (Header, bool) {
	for rowIdx, row := range rows {
		if rowIdx >= headerScanRows {
			break
		}

		opDate, valueDate, amount := -1, -1, -1

		for i, cell := range row {
			name := Normalize(cell)

			switch {
			case strings.Contains(name, "fecha") && strings.Contains(name, "operaci"):
				if opDate < 0 {
					opDate = i
				}
			case strings.Contains(name, "fecha") && strings.Contains(name, "valor"):
				if valueDate < 0 {
					valueDate = i
				}
			case strings.Contains(name, "importe") && strings.Contains(name, "eur"):
				if amount < 0 {
					amount = i
				}
			}
		}

		date := opDate
		if date < 0 {
			date = valueDate
		}

		if date >= 0 && amount >= 0 {
			return Header{Row: rowIdx, DateCol: date, AmountCol: amount}, true
		}
	}

	return Header{}, false
}

// Normalize lower cases s and strips diacritics: "Fecha Operación" -> "fecha operacion".
func Normalize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}

	return strings.ToLower(strings.TrimSpace(out))
}

var dateLayouts = []string{
	time.DateOnly,
	"02/01/2006",
	"02-01-2006",
	"02/01/06",
	"2006/01/02",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// ParseDate reads a statement date: an Excel serial number or one of the usual text layouts.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		if serial < 1 || serial > 2958465 {
			return time.Time{}, false
		}

		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, false
		}

		return t, true
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			if layout == "02/01/06" && t.Year() < 2000 {
				t = t.AddDate(100, 0, 0)
			}

			return t, true
		}
	}

	return time.Time{}, false
}

// MonthKey is the bucket a movement belongs to.
type MonthKey struct {
	Year  string
	Month string
}

func (k MonthKey) String() string {
	return k.Year + "-" + k.Month
}

// Totals are the money in and out of one month, both positive.
type Totals struct {
	IncomeCents  int64
	ExpenseCents int64
}

// SumByMonth adds positive amounts to income and the absolute value of negative amounts to
// expenses, per calendar month of the movement date.
func SumByMonth(movements []Movement) map[MonthKey]Totals {
	sums := make(map[MonthKey]Totals)

	for _, m := range movements {
		k := MonthKey{
			Year:  fmt.Sprintf("%04d", m.Date.Year()),
			Month: fmt.Sprintf("%02d", int(m.Date.Month())),
		}

		t := sums[k]
		if m.AmountCents > 0 {
			t.IncomeCents += m.AmountCents
		} else {
			t.ExpenseCents -= m.AmountCents
		}

		sums[k] = t
	}

	return sums
}

// cellValue safely gets a trimmed cell value from a row.
func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}
