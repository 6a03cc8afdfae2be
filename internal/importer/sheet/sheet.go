// Package sheet reads bank statements exported as Excel workbooks.
package sheet

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/gabriel-vasile/mimetype"
	"github.com/xuri/excelize/v2"

	"github.com/MrJamesThe3rd/facturas/internal/importer/ledger"
)

var ErrNotSpreadsheet = errors.New("file is not a spreadsheet")

// sniffLen is how much of the file is checked for HTML disguised as a workbook.
const sniffLen = 1024

var htmlMarkers = [][]byte{
	[]byte("<html"),
	[]byte("<!doctype"),
	[]byte("<table"),
	[]byte("<head"),
	[]byte("<body"),
}

// Parser reads the first worksheet that carries a ledger header.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) Parse(r io.Reader) ([]ledger.Movement, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read workbook: %w", err)
	}

	if err := Sniff(data); err != nil {
		return nil, err
	}

	f, err := excelize.OpenReader(bytes.NewReader(data), excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotSpreadsheet, err)
	}
	defer f.Close()

	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", name, err)
		}

		movements, err := ledger.Parse(rows)
		if errors.Is(err, ledger.ErrNoHeader) {
			continue
		}

		return movements, err
	}

	return nil, ledger.ErrNoHeader
}

// Sniff rejects HTML (some banks export an HTML table with an .xls name) and anything that is
// not a zip based Office container.
func Sniff(data []byte) error {
	prefix := bytes.ToLower(data[:min(len(data), sniffLen)])
	for _, marker := range htmlMarkers {
		if bytes.Contains(prefix, marker) {
			return fmt.Errorf("%w: looks like HTML", ErrNotSpreadsheet)
		}
	}

	for mt := mimetype.Detect(data); mt != nil; mt = mt.Parent() {
		if mt.Is("application/zip") {
			return nil
		}
	}

	return fmt.Errorf("%w: not an xlsx container", ErrNotSpreadsheet)
}
