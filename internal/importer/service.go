package importer

import (
	"fmt"
	"io"
	"strings"

	"github.com/MrJamesThe3rd/facturas/internal/importer/delimited"
	"github.com/MrJamesThe3rd/facturas/internal/importer/ledger"
	"github.com/MrJamesThe3rd/facturas/internal/importer/sheet"
)

type Service struct {
	sheetImporter     Importer
	delimitedImporter Importer
}

func NewService() *Service {
	return &Service{
		sheetImporter:     sheet.NewParser(),
		delimitedImporter: delimited.NewParser(),
	}
}

// ParseFormat maps a user supplied format name; empty means xlsx.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatXLSX, "xls":
		return FormatXLSX, nil
	case FormatCSV, "txt":
		return FormatCSV, nil
	}

	return "", fmt.Errorf("%w: %s", ErrUnknownFormat, s)
}

func (s *Service) Import(format Format, r io.Reader) ([]ledger.Movement, error) {
	var importer Importer

	switch format {
	case FormatXLSX:
		importer = s.sheetImporter
	case FormatCSV:
		importer = s.delimitedImporter
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}

	return importer.Parse(r)
}
