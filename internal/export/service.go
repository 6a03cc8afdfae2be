package export

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/MrJamesThe3rd/facturas/internal/archive"
	"github.com/MrJamesThe3rd/facturas/internal/bucket"
	"github.com/MrJamesThe3rd/facturas/internal/income"
	"github.com/MrJamesThe3rd/facturas/internal/invoice"
	"github.com/MrJamesThe3rd/facturas/internal/money"
)

// TotalsLabel marks the synthetic row that sums the columns above it.
const TotalsLabel = "Totales"

const (
	keyDate          = "fecha"
	keyNumber        = "numero"
	keyNIF           = "nif"
	keyLegalName     = "razon_social"
	keyVATRate       = "tipo_iva"
	keyDeductible    = "iva_deducible"
	keyNonDeductible = "iva_no_deducible"
	keyTotal         = "total"
	keyFuel          = "combustible"

	keyMonth       = "mes"
	keyIncome      = "ingresos"
	keyExpenses    = "gastos"
	keyOther       = "otros_gastos"
	keyDiff        = "diferencia"
	keyBank        = "gastos_banco"
	keyUnreconcile = "sin_conciliar"

	keyInitial = "saldo_inicial"
	keyFinal   = "saldo_final"
)

type InvoiceLister interface {
	ListByYear(ctx context.Context, year string) ([]*invoice.Invoice, error)
}

type IncomeReader interface {
	YearSummary(ctx context.Context, year string) (*income.Summary, error)
}

type Archiver interface {
	BuildYear(ctx context.Context, year string, w io.Writer) (*archive.Result, error)
}

// Service projects invoices and income figures into sheets.
type Service struct {
	invoices InvoiceLister
	income   IncomeReader
	archives Archiver
}

// NewService creates a new export Service.
func NewService(invoices InvoiceLister, income IncomeReader, archives Archiver) *Service {
	return &Service{
		invoices: invoices,
		income:   income,
		archives: archives,
	}
}

func invoiceColumns() []Column {
	cols := []Column{
		{Key: keyDate, Title: "Fecha"},
		{Key: keyNumber, Title: "Nº factura"},
		{Key: keyNIF, Title: "NIF"},
		{Key: keyLegalName, Title: "Razón social"},
	}

	for _, c := range invoice.Categories {
		cols = append(cols, Column{Key: c, Title: c})
	}

	return append(cols,
		Column{Key: keyVATRate, Title: "Tipo IVA"},
		Column{Key: keyDeductible, Title: "IVA deducible"},
		Column{Key: keyNonDeductible, Title: "IVA no deducible"},
		Column{Key: keyTotal, Title: "Total"},
		Column{Key: keyFuel, Title: "Combustible"},
	)
}

// InvoiceSheet lists the invoices of a year by invoice date, each base amount under its
// category column, followed by a totals row.
func (s *Service) InvoiceSheet(ctx context.Context, year string) (*Sheet, error) {
	if !bucket.ValidYear(year) {
		return nil, fmt.Errorf("%w: year %q", income.ErrInvalidPeriod, year)
	}

	invoices, err := s.invoices.ListByYear(ctx, year)
	if err != nil {
		return nil, fmt.Errorf("listing invoices: %w", err)
	}

	sorted := slices.Clone(invoices)
	slices.SortStableFunc(sorted, func(a, b *invoice.Invoice) int {
		if c := a.InvoiceDate.Compare(b.InvoiceDate); c != 0 {
			return c
		}

		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}

		return bytes.Compare(a.ID[:], b.ID[:])
	})

	sheet := &Sheet{
		Name:    "Facturas " + year,
		Columns: invoiceColumns(),
		Rows:    make([]Row, 0, len(sorted)+1),
	}

	categoryTotals := make(map[string]int64, len(invoice.Categories))

	var deductible, nonDeductible, total int64

	for _, inv := range sorted {
		row := Row{
			keyDate:          formatDate(inv),
			keyNumber:        inv.InvoiceNumber,
			keyNIF:           inv.NIF,
			keyLegalName:     inv.LegalName,
			keyVATRate:       inv.VATRate,
			keyDeductible:    money.FormatCents(inv.VATDeductible),
			keyNonDeductible: money.FormatCents(inv.VATNonDeductible),
			keyTotal:         money.FormatCents(inv.TotalAmount),
		}

		if invoice.IsCategory(inv.BaseCategory) {
			row[inv.BaseCategory] = money.FormatCents(inv.BaseAmount)
			categoryTotals[inv.BaseCategory] += inv.BaseAmount
		}

		if inv.Fuel {
			row[keyFuel] = "Sí"
		}

		deductible += inv.VATDeductible
		nonDeductible += inv.VATNonDeductible
		total += inv.TotalAmount

		sheet.Rows = append(sheet.Rows, row)
	}

	totals := Row{
		keyDate:          TotalsLabel,
		keyDeductible:    money.FormatCents(deductible),
		keyNonDeductible: money.FormatCents(nonDeductible),
		keyTotal:         money.FormatCents(total),
	}

	for _, c := range invoice.Categories {
		totals[c] = money.FormatCents(categoryTotals[c])
	}

	sheet.Rows = append(sheet.Rows, totals)

	return sheet, nil
}

// IncomeSheets returns the month by month income sheet and the year balance sheet.
func (s *Service) IncomeSheets(ctx context.Context, year string) ([]*Sheet, error) {
	summary, err := s.income.YearSummary(ctx, year)
	if err != nil {
		return nil, fmt.Errorf("getting year summary: %w", err)
	}

	months := &Sheet{
		Name: "Ingresos",
		Columns: []Column{
			{Key: keyMonth, Title: "Mes"},
			{Key: keyIncome, Title: "Ingresos"},
			{Key: keyExpenses, Title: "Gastos"},
			{Key: keyOther, Title: "Otros gastos"},
			{Key: keyDiff, Title: "Diferencia"},
			{Key: keyBank, Title: "Gastos banco"},
			{Key: keyUnreconcile, Title: "Sin conciliar"},
		},
	}

	for _, key := range bucket.Months() {
		months.Rows = append(months.Rows, monthRow(bucket.MonthName(key), summary.Months[key]))
	}

	months.Rows = append(months.Rows, monthRow(TotalsLabel, summary.Totals))

	balance := &Sheet{
		Name: "Saldo",
		Columns: []Column{
			{Key: keyInitial, Title: "Saldo inicial"},
			{Key: keyFinal, Title: "Saldo final"},
			{Key: keyDiff, Title: "Diferencia"},
		},
		Rows: []Row{{
			keyInitial: money.FormatCents(summary.Balance.InitialCents),
			keyFinal:   money.FormatCents(summary.Balance.FinalCents),
			keyDiff:    money.FormatCents(summary.Balance.DiffCents),
		}},
	}

	return []*Sheet{months, balance}, nil
}

func monthRow(label string, m income.Month) Row {
	return Row{
		keyMonth:       label,
		keyIncome:      money.FormatCents(m.IncomeCents),
		keyExpenses:    money.FormatCents(m.ExpensesCents),
		keyOther:       money.FormatCents(m.OtherExpenseCents),
		keyDiff:        money.FormatCents(m.DiffCents),
		keyBank:        money.FormatCents(m.BankExpenseCents),
		keyUnreconcile: money.FormatCents(m.UnreconciledCents),
	}
}

// ExportYear writes the invoice workbook, the income workbook and the invoice archive of a
// year into outputDir and returns the written paths.
func (s *Service) ExportYear(ctx context.Context, year, outputDir string) ([]string, error) {
	invoiceSheet, err := s.InvoiceSheet(ctx, year)
	if err != nil {
		return nil, err
	}

	incomeSheets, err := s.IncomeSheets(ctx, year)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	files := []struct {
		name  string
		write func(io.Writer) error
	}{
		{
			name:  "facturas_" + year + ".xlsx",
			write: func(w io.Writer) error { return WriteWorkbook(w, invoiceSheet) },
		},
		{
			name:  "ingresos_" + year + ".xlsx",
			write: func(w io.Writer) error { return WriteWorkbook(w, incomeSheets...) },
		},
		{
			name: "facturas_" + year + ".zip",
			write: func(w io.Writer) error {
				_, err := s.archives.BuildYear(ctx, year, w)
				return err
			},
		},
	}

	paths := make([]string, 0, len(files))

	for _, file := range files {
		path := filepath.Join(outputDir, file.name)

		if err := writeFile(path, file.write); err != nil {
			return paths, err
		}

		paths = append(paths, path)
	}

	return paths, nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	defer f.Close()

	if err := write(f); err != nil {
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}

	return nil
}

func formatDate(inv *invoice.Invoice) string {
	if inv.InvoiceDate.IsZero() {
		return ""
	}

	return inv.InvoiceDate.Format("02/01/2006")
}
