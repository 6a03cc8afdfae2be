package invoice

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/MrJamesThe3rd/facturas/internal/money"
)

const legalNameExtra = "ÁÉÍÓÚÑÜáéíóúñü"

// Validate checks m field by field and returns the first failure as a *ValidationError.
// Messages are shown to the user as is and name the file by its display name.
func Validate(m Metadata) error {
	name := m.DisplayName
	if name == "" {
		name = "archivo"
	}

	fail := func(field, format string) error {
		return &ValidationError{Field: field, Reason: fmt.Sprintf(format, name), Name: name}
	}

	switch {
	case blank(m.InvoiceDate):
		return fail("invoiceDate", "Falta la fecha de factura en %q")
	case blank(m.InvoiceNumber):
		return fail("invoiceNumber", "Falta el nº de factura en %q")
	case blank(m.NIF):
		return fail("nif", "Falta el NIF en %q")
	case !validNIF(m.NIF):
		return fail("nif", "El NIF solo puede contener letras y numeros en %q")
	case blank(m.LegalName):
		return fail("legalName", "Falta la razon social en %q")
	case !validLegalName(m.LegalName):
		return fail("legalName", "La razon social solo puede contener letras en %q")
	case blank(m.BaseCategory):
		return fail("baseCategory", "Falta la categoria de base imponible en %q")
	case !IsCategory(strings.TrimSpace(m.BaseCategory)):
		return fail("baseCategory", "Categoria de base imponible desconocida en %q")
	case blank(m.BaseAmount):
		return fail("baseAmount", "Falta la base imponible en %q")
	case blank(m.VATRate):
		return fail("vatRate", "Falta el tipo de IVA en %q")
	case blank(m.TotalAmount):
		return fail("totalAmount", "Falta el importe total en %q")
	}

	a, err := ParseAmounts(m)
	if err != nil {
		return fail("amounts", "Formato numerico invalido en importes de %q")
	}

	if a.Base+a.Deductible+a.NonDeductible != a.Total {
		return fail("total", "La suma de base + IVA deducible + IVA no deducible debe igualar el total en %q")
	}

	return nil
}

// ParseAmounts parses the money fields of m. Blank VAT fields count as zero.
func ParseAmounts(m Metadata) (Amounts, error) {
	var (
		a   Amounts
		err error
	)

	if a.Base, err = money.ParseCents(m.BaseAmount); err != nil {
		return Amounts{}, fmt.Errorf("base amount: %w", err)
	}

	if a.Deductible, err = money.ParseCents(orZero(m.VATDeductible)); err != nil {
		return Amounts{}, fmt.Errorf("vat deductible: %w", err)
	}

	if a.NonDeductible, err = money.ParseCents(orZero(m.VATNonDeductible)); err != nil {
		return Amounts{}, fmt.Errorf("vat non deductible: %w", err)
	}

	if a.Total, err = money.ParseCents(m.TotalAmount); err != nil {
		return Amounts{}, fmt.Errorf("total amount: %w", err)
	}

	return a, nil
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func orZero(s string) string {
	if blank(s) {
		return "0"
	}

	return s
}

func validNIF(s string) bool {
	for _, r := range strings.TrimSpace(s) {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return false
		}
	}

	return true
}

func validLegalName(s string) bool {
	for _, r := range strings.TrimSpace(s) {
		ascii := r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z'
		if !ascii && !unicode.IsSpace(r) && !strings.ContainsRune(legalNameExtra, r) {
			return false
		}
	}

	return true
}
