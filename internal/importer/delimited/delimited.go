// Package delimited reads bank statements exported as CSV or similar delimited text.
package delimited

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/MrJamesThe3rd/facturas/internal/encoding"
	"github.com/MrJamesThe3rd/facturas/internal/importer/ledger"
)

// sniffLines is how many lines are looked at to pick the separator.
const sniffLines = 10

// Parser reads delimited text in any of the encodings Spanish banks export.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) Parse(r io.Reader) ([]ledger.Movement, error) {
	utf8r, _, err := encoding.NewUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	data, err := io.ReadAll(utf8r)
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = Separator(data)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	return ledger.Parse(rows)
}

// Separator picks ';', tab or ',' by which occurs most in the first lines. Ties go to ';'
// because commas also show up as decimal separators.
func Separator(data []byte) rune {
	lines := bytes.SplitN(data, []byte("\n"), sniffLines+1)
	if len(lines) > sniffLines {
		lines = lines[:sniffLines]
	}

	best, bestCount := ';', -1

	for _, sep := range []rune{';', '\t', ','} {
		count := 0
		for _, line := range lines {
			count += bytes.Count(line, []byte(string(sep)))
		}

		if count > bestCount {
			best, bestCount = sep, count
		}
	}

	return best
}
