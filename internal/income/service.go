package income

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/MrJamesThe3rd/facturas/internal/bucket"
	"github.com/MrJamesThe3rd/facturas/internal/importer"
	"github.com/MrJamesThe3rd/facturas/internal/importer/ledger"
	"github.com/MrJamesThe3rd/facturas/internal/invoice"
)

var ErrInvalidPeriod = errors.New("invalid period")

// DefaultOtherExpenseFloor is the minimum other expense of a month, in cents.
const DefaultOtherExpenseFloor int64 = 80000

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=income
type Repository interface {
	ListMonths(ctx context.Context, year string) ([]MonthRecord, error)
	UpsertMonth(ctx context.Context, year, month string, in MonthInput) error
	ApplyLedger(ctx context.Context, months []LedgerMonth) error
	GetBalance(ctx context.Context, year string) (*Balance, error)
	UpsertBalance(ctx context.Context, year string, in BalanceInput) (*Balance, error)
}

type InvoiceLister interface {
	ListByYear(ctx context.Context, year string) ([]*invoice.Invoice, error)
}

type LedgerImporter interface {
	Import(format importer.Format, r io.Reader) ([]ledger.Movement, error)
}

type Service struct {
	repo     Repository
	invoices InvoiceLister
	ledger   LedgerImporter
	floor    int64
}

func NewService(repo Repository, invoices InvoiceLister, ledger LedgerImporter, otherExpenseFloor int64) *Service {
	return &Service{
		repo:     repo,
		invoices: invoices,
		ledger:   ledger,
		floor:    otherExpenseFloor,
	}
}

// YearSummary merges the stored month figures with the invoice totals of the year.
func (s *Service) YearSummary(ctx context.Context, year string) (*Summary, error) {
	if !bucket.ValidYear(year) {
		return nil, fmt.Errorf("%w: year %q", ErrInvalidPeriod, year)
	}

	records, err := s.repo.ListMonths(ctx, year)
	if err != nil {
		return nil, fmt.Errorf("listing months: %w", err)
	}

	invoices, err := s.invoices.ListByYear(ctx, year)
	if err != nil {
		return nil, fmt.Errorf("listing invoices: %w", err)
	}

	balance, err := s.repo.GetBalance(ctx, year)
	if err != nil {
		return nil, fmt.Errorf("getting balance: %w", err)
	}

	expenses := make(map[string]int64)
	for _, inv := range invoices {
		expenses[inv.Month] += inv.TotalAmount
	}

	stored := make(map[string]MonthRecord, len(records))
	for _, r := range records {
		stored[r.Month] = r
	}

	summary := &Summary{
		Year:    year,
		Months:  make(map[string]Month, 12),
		Balance: *balance,
	}

	for _, key := range bucket.Months() {
		r := stored[key]

		m := Month{
			ExpensesCents:     expenses[key],
			IncomeCents:       valueOr(r.IncomeCents, 0),
			OtherExpenseCents: max(valueOr(r.OtherExpenseCents, s.floor), s.floor),
			BankExpenseCents:  valueOr(r.BankExpenseCents, 0),
		}
		m.DiffCents = m.IncomeCents - (m.ExpensesCents + m.OtherExpenseCents)
		m.UnreconciledCents = m.BankExpenseCents - m.ExpensesCents

		summary.Months[key] = m
		summary.Totals.add(m)
	}

	return summary, nil
}

// SaveMonth updates the supplied fields of a month and leaves the others as stored.
func (s *Service) SaveMonth(ctx context.Context, year, month string, in MonthInput) error {
	month, err := period(year, month)
	if err != nil {
		return err
	}

	if in.IncomeCents == nil && in.OtherExpenseCents == nil {
		return nil
	}

	if err := s.repo.UpsertMonth(ctx, year, month, in); err != nil {
		return fmt.Errorf("saving month: %w", err)
	}

	return nil
}

// SaveBalances updates the supplied balance fields and returns the merged balance with its
// difference recomputed.
func (s *Service) SaveBalances(ctx context.Context, year string, in BalanceInput) (*Balance, error) {
	if !bucket.ValidYear(year) {
		return nil, fmt.Errorf("%w: year %q", ErrInvalidPeriod, year)
	}

	if in.InitialCents == nil && in.FinalCents == nil {
		return s.repo.GetBalance(ctx, year)
	}

	b, err := s.repo.UpsertBalance(ctx, year, in)
	if err != nil {
		return nil, fmt.Errorf("saving balance: %w", err)
	}

	return b, nil
}

// ImportLedger reads a bank statement and overwrites the income and bank expense of every
// month it covers.
func (s *Service) ImportLedger(ctx context.Context, format importer.Format, r io.Reader) (*ImportResult, error) {
	movements, err := s.ledger.Import(format, r)
	if err != nil {
		return nil, fmt.Errorf("importing ledger: %w", err)
	}

	if len(movements) == 0 {
		return nil, importer.ErrNoMovements
	}

	sums := ledger.SumByMonth(movements)

	months := make([]LedgerMonth, 0, len(sums))
	for k, t := range sums {
		months = append(months, LedgerMonth{
			Year:             k.Year,
			Month:            k.Month,
			IncomeCents:      t.IncomeCents,
			BankExpenseCents: t.ExpenseCents,
		})
	}

	slices.SortFunc(months, func(a, b LedgerMonth) int {
		return strings.Compare(a.Year+a.Month, b.Year+b.Month)
	})

	if err := s.repo.ApplyLedger(ctx, months); err != nil {
		return nil, fmt.Errorf("applying ledger: %w", err)
	}

	return &ImportResult{MonthsUpdated: len(months), MovementsProcessed: len(movements)}, nil
}

// period validates year and month and returns the two digit month key.
func period(year, month string) (string, error) {
	if !bucket.ValidYear(year) {
		return "", fmt.Errorf("%w: year %q", ErrInvalidPeriod, year)
	}

	m, ok := bucket.NormalizeMonth(month)
	if !ok {
		return "", fmt.Errorf("%w: month %q", ErrInvalidPeriod, month)
	}

	return m, nil
}

func valueOr(v *int64, fallback int64) int64 {
	if v == nil {
		return fallback
	}

	return *v
}
