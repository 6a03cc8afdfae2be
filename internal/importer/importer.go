package importer

import (
	"errors"
	"io"

	"github.com/MrJamesThe3rd/facturas/internal/importer/ledger"
	"github.com/MrJamesThe3rd/facturas/internal/importer/sheet"
)

type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

var (
	ErrUnknownFormat  = errors.New("unknown ledger format")
	ErrNoHeader       = ledger.ErrNoHeader
	ErrNoMovements    = ledger.ErrNoMovements
	ErrNotSpreadsheet = sheet.ErrNotSpreadsheet
)

type Importer interface {
	Parse(r io.Reader) ([]ledger.Movement, error)
}
