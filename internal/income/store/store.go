package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/MrJamesThe3rd/facturas/internal/income"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) ListMonths(ctx context.Context, year string) ([]income.MonthRecord, error) {
	query := `
		SELECT month, income_cents, other_expense_cents, bank_expense_cents
		FROM monthly_summaries
		WHERE year = $1
		ORDER BY month
	`

	rows, err := s.db.QueryContext(ctx, query, year)
	if err != nil {
		return nil, fmt.Errorf("querying monthly summaries: %w", err)
	}
	defer rows.Close()

	var records []income.MonthRecord

	for rows.Next() {
		var (
			r                      income.MonthRecord
			in, other, bankExpense sql.NullInt64
		)

		if err := rows.Scan(&r.Month, &in, &other, &bankExpense); err != nil {
			return nil, fmt.Errorf("scanning monthly summary: %w", err)
		}

		r.IncomeCents = nullable(in)
		r.OtherExpenseCents = nullable(other)
		r.BankExpenseCents = nullable(bankExpense)

		records = append(records, r)
	}

	return records, rows.Err()
}

// UpsertMonth only touches the columns whose input is non-nil, so concurrent saves of
// different fields of the same month both survive.
func (s *Store) UpsertMonth(ctx context.Context, year, month string, in income.MonthInput) error {
	query := `
		INSERT INTO monthly_summaries (year, month, income_cents, other_expense_cents)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (year, month) DO UPDATE SET
			income_cents = COALESCE($3, monthly_summaries.income_cents),
			other_expense_cents = COALESCE($4, monthly_summaries.other_expense_cents),
			updated_at = NOW()
	`

	if _, err := s.db.ExecContext(ctx, query, year, month, in.IncomeCents, in.OtherExpenseCents); err != nil {
		return fmt.Errorf("upserting monthly summary: %w", err)
	}

	return nil
}

// ApplyLedger overwrites income and bank expense of every month in one transaction.
func (s *Store) ApplyLedger(ctx context.Context, months []income.LedgerMonth) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO monthly_summaries (year, month, income_cents, bank_expense_cents)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (year, month) DO UPDATE SET
			income_cents = EXCLUDED.income_cents,
			bank_expense_cents = EXCLUDED.bank_expense_cents,
			updated_at = NOW()
	`

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("preparing ledger upsert: %w", err)
	}
	defer stmt.Close()

	for _, m := range months {
		if _, err := stmt.ExecContext(ctx, m.Year, m.Month, m.IncomeCents, m.BankExpenseCents); err != nil {
			return fmt.Errorf("upserting %s-%s: %w", m.Year, m.Month, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing ledger: %w", err)
	}

	return nil
}

// GetBalance returns a zero balance when the year has none stored.
func (s *Store) GetBalance(ctx context.Context, year string) (*income.Balance, error) {
	query := `
		SELECT initial_cents, final_cents, diff_cents
		FROM annual_summaries
		WHERE year = $1
	`

	var b income.Balance

	err := s.db.QueryRowContext(ctx, query, year).Scan(&b.InitialCents, &b.FinalCents, &b.DiffCents)
	if errors.Is(err, sql.ErrNoRows) {
		return &income.Balance{}, nil
	}

	if err != nil {
		return nil, fmt.Errorf("getting balance: %w", err)
	}

	return &b, nil
}

// UpsertBalance merges the supplied fields and recomputes the difference in the same
// statement.
func (s *Store) UpsertBalance(ctx context.Context, year string, in income.BalanceInput) (*income.Balance, error) {
	query := `
		INSERT INTO annual_summaries (year, initial_cents, final_cents, diff_cents)
		VALUES ($1, COALESCE($2::bigint, 0), COALESCE($3::bigint, 0), COALESCE($3::bigint, 0) - COALESCE($2::bigint, 0))
		ON CONFLICT (year) DO UPDATE SET
			initial_cents = COALESCE($2, annual_summaries.initial_cents),
			final_cents = COALESCE($3, annual_summaries.final_cents),
			diff_cents = COALESCE($3, annual_summaries.final_cents) - COALESCE($2, annual_summaries.initial_cents),
			updated_at = NOW()
		RETURNING initial_cents, final_cents, diff_cents
	`

	var b income.Balance

	if err := s.db.QueryRowContext(ctx, query, year, in.InitialCents, in.FinalCents).Scan(
		&b.InitialCents, &b.FinalCents, &b.DiffCents,
	); err != nil {
		return nil, fmt.Errorf("upserting balance: %w", err)
	}

	return &b, nil
}

func nullable(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}

	return &v.Int64
}
