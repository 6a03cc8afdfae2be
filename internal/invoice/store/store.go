package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/facturas/internal/invoice"
	"github.com/MrJamesThe3rd/facturas/internal/sealer"
)

// Store persists invoices in Postgres. Invoice date, number, NIF, legal name and amounts are
// sealed before they reach the database.
type Store struct {
	db     *sql.DB
	sealer *sealer.Sealer
	loc    *time.Location
}

// New returns a Store that reads invoice dates in loc. A nil loc means time.Local.
func New(db *sql.DB, s *sealer.Sealer, loc *time.Location) *Store {
	if loc == nil {
		loc = time.Local
	}

	return &Store{db: db, sealer: s, loc: loc}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// sealedFields mirrors the encrypted columns, in column order.
type sealedFields struct {
	InvoiceDate      string
	InvoiceNumber    string
	NIF              string
	LegalName        string
	BaseAmount       string
	VATDeductible    string
	VATNonDeductible string
	TotalAmount      string
}

const selectInvoiceColumns = `
	id, original_name, display_name, blob_ref, extension, content_type, size,
	invoice_date, invoice_number, nif, legal_name, base_category, base_amount, vat_rate,
	vat_deductible, vat_non_deductible, total_amount, fuel, year, month, created_at, updated_at
`

// scanInvoice reads a row in selectInvoiceColumns order and opens the sealed fields.
func (s *Store) scanInvoice(ctx context.Context, sc scanner) (*invoice.Invoice, error) {
	var (
		inv    invoice.Invoice
		sealed sealedFields
	)

	if err := sc.Scan(
		&inv.ID, &inv.OriginalName, &inv.DisplayName, &inv.BlobRef, &inv.Extension, &inv.ContentType, &inv.Size,
		&sealed.InvoiceDate, &sealed.InvoiceNumber, &sealed.NIF, &sealed.LegalName, &inv.BaseCategory,
		&sealed.BaseAmount, &inv.VATRate, &sealed.VATDeductible, &sealed.VATNonDeductible, &sealed.TotalAmount,
		&inv.Fuel, &inv.Year, &inv.Month, &inv.CreatedAt, &inv.UpdatedAt,
	); err != nil {
		return nil, err
	}

	s.open(ctx, &inv, sealed)

	return &inv, nil
}

// open fills inv from sealed. A field that fails to open is left empty and logged so one
// corrupted value never hides the rest of the invoice.
func (s *Store) open(ctx context.Context, inv *invoice.Invoice, sealed sealedFields) {
	warn := func(field string, err error) {
		slog.WarnContext(ctx, "failed to open sealed field", "id", inv.ID, "field", field, "error", err)
	}

	var err error

	if inv.InvoiceDate, err = s.sealer.OpenDate(sealed.InvoiceDate, s.loc); err != nil {
		warn("invoice_date", err)
	}

	for _, f := range []struct {
		name   string
		dst    *string
		sealed string
	}{
		{"invoice_number", &inv.InvoiceNumber, sealed.InvoiceNumber},
		{"nif", &inv.NIF, sealed.NIF},
		{"legal_name", &inv.LegalName, sealed.LegalName},
	} {
		if *f.dst, err = s.sealer.Open(f.sealed); err != nil {
			warn(f.name, err)
		}
	}

	for _, f := range []struct {
		name   string
		dst    *int64
		sealed string
	}{
		{"base_amount", &inv.BaseAmount, sealed.BaseAmount},
		{"vat_deductible", &inv.VATDeductible, sealed.VATDeductible},
		{"vat_non_deductible", &inv.VATNonDeductible, sealed.VATNonDeductible},
		{"total_amount", &inv.TotalAmount, sealed.TotalAmount},
	} {
		if *f.dst, err = s.sealer.OpenCents(f.sealed); err != nil {
			warn(f.name, err)
		}
	}
}

func (s *Store) seal(inv *invoice.Invoice) (sealedFields, error) {
	var (
		out sealedFields
		err error
	)

	if out.InvoiceDate, err = s.sealer.SealDate(inv.InvoiceDate); err != nil {
		return out, err
	}

	for _, f := range []struct {
		dst   *string
		plain string
	}{
		{&out.InvoiceNumber, inv.InvoiceNumber},
		{&out.NIF, inv.NIF},
		{&out.LegalName, inv.LegalName},
	} {
		if *f.dst, err = s.sealer.Seal(f.plain); err != nil {
			return out, err
		}
	}

	for _, f := range []struct {
		dst   *string
		cents int64
	}{
		{&out.BaseAmount, inv.BaseAmount},
		{&out.VATDeductible, inv.VATDeductible},
		{&out.VATNonDeductible, inv.VATNonDeductible},
		{&out.TotalAmount, inv.TotalAmount},
	} {
		if *f.dst, err = s.sealer.SealCents(f.cents); err != nil {
			return out, err
		}
	}

	return out, nil
}

func (s *Store) CreateInvoice(ctx context.Context, inv *invoice.Invoice) error {
	sealed, err := s.seal(inv)
	if err != nil {
		return fmt.Errorf("sealing invoice: %w", err)
	}

	query := `
		INSERT INTO invoices (
			original_name, display_name, blob_ref, extension, content_type, size,
			invoice_date, invoice_number, nif, legal_name, base_category, base_amount, vat_rate,
			vat_deductible, vat_non_deductible, total_amount, fuel, year, month, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, NOW())
		RETURNING id, created_at
	`

	err = s.db.QueryRowContext(ctx, query,
		inv.OriginalName, inv.DisplayName, inv.BlobRef, inv.Extension, inv.ContentType, inv.Size,
		sealed.InvoiceDate, sealed.InvoiceNumber, sealed.NIF, sealed.LegalName, inv.BaseCategory,
		sealed.BaseAmount, inv.VATRate, sealed.VATDeductible, sealed.VATNonDeductible, sealed.TotalAmount,
		inv.Fuel, inv.Year, inv.Month,
	).Scan(&inv.ID, &inv.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating invoice: %w", err)
	}

	return nil
}

func (s *Store) GetInvoice(ctx context.Context, id uuid.UUID) (*invoice.Invoice, error) {
	query := `SELECT ` + selectInvoiceColumns + ` FROM invoices WHERE id = $1`

	inv, err := s.scanInvoice(ctx, s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, invoice.ErrNotFound
		}

		return nil, fmt.Errorf("getting invoice: %w", err)
	}

	return inv, nil
}

// UpdateInvoice overwrites the editable columns. Blob reference and creation time never change.
func (s *Store) UpdateInvoice(ctx context.Context, inv *invoice.Invoice) error {
	sealed, err := s.seal(inv)
	if err != nil {
		return fmt.Errorf("sealing invoice: %w", err)
	}

	query := `
		UPDATE invoices
		SET display_name = $1, invoice_date = $2, invoice_number = $3, nif = $4, legal_name = $5,
			base_category = $6, base_amount = $7, vat_rate = $8, vat_deductible = $9,
			vat_non_deductible = $10, total_amount = $11, fuel = $12, year = $13, month = $14,
			updated_at = NOW()
		WHERE id = $15
		RETURNING updated_at
	`

	err = s.db.QueryRowContext(ctx, query,
		inv.DisplayName, sealed.InvoiceDate, sealed.InvoiceNumber, sealed.NIF, sealed.LegalName,
		inv.BaseCategory, sealed.BaseAmount, inv.VATRate, sealed.VATDeductible,
		sealed.VATNonDeductible, sealed.TotalAmount, inv.Fuel, inv.Year, inv.Month,
		inv.ID,
	).Scan(&inv.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return invoice.ErrNotFound
		}

		return fmt.Errorf("updating invoice: %w", err)
	}

	return nil
}

func (s *Store) DeleteInvoice(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM invoices WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting invoice: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting invoice: %w", err)
	}

	if n == 0 {
		return invoice.ErrNotFound
	}

	return nil
}

// ListInvoices returns matching invoices, newest upload first.
func (s *Store) ListInvoices(ctx context.Context, filter invoice.ListFilter) ([]*invoice.Invoice, error) {
	query := `SELECT ` + selectInvoiceColumns + ` FROM invoices WHERE 1=1`

	var args []any

	argIdx := 1

	if filter.Year != nil {
		query += fmt.Sprintf(" AND year = $%d", argIdx)

		args = append(args, *filter.Year)
		argIdx++
	}

	if filter.Month != nil {
		query += fmt.Sprintf(" AND month = $%d", argIdx)

		args = append(args, *filter.Month)
	}

	query += " ORDER BY created_at DESC, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing invoices: %w", err)
	}
	defer rows.Close()

	var invoices []*invoice.Invoice

	for rows.Next() {
		inv, err := s.scanInvoice(ctx, rows)
		if err != nil {
			return nil, fmt.Errorf("scanning invoice: %w", err)
		}

		invoices = append(invoices, inv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating invoice rows: %w", err)
	}

	return invoices, nil
}
