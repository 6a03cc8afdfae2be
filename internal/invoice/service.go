package invoice

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/MrJamesThe3rd/facturas/internal/blob"
	"github.com/MrJamesThe3rd/facturas/internal/bucket"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=invoice
type Repository interface {
	CreateInvoice(ctx context.Context, inv *Invoice) error
	GetInvoice(ctx context.Context, id uuid.UUID) (*Invoice, error)
	UpdateInvoice(ctx context.Context, inv *Invoice) error
	DeleteInvoice(ctx context.Context, id uuid.UUID) error
	ListInvoices(ctx context.Context, filter ListFilter) ([]*Invoice, error)
}

type BlobStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// TimestampExtractor returns the timestamp embedded in a file, if any.
type TimestampExtractor func(data []byte) (time.Time, bool)

type ListFilter struct {
	Year  *string
	Month *string
}

const deleteYearConcurrency = 4

type Service struct {
	repo      Repository
	blobs     BlobStore
	dateTaken TimestampExtractor
	now       func() time.Time
}

type Option func(*Service)

// WithClock replaces time.Now as the last resort invoice date.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService builds the invoice service. dateTaken may be nil.
func NewService(repo Repository, blobs BlobStore, dateTaken TimestampExtractor, opts ...Option) *Service {
	s := &Service{
		repo:      repo,
		blobs:     blobs,
		dateTaken: dateTaken,
		now:       time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// CreateBatch stores every upload with its metadata. All metadata is validated before anything
// is written; a storage failure stops the batch and the invoices created so far are returned
// alongside the error.
func (s *Service) CreateBatch(ctx context.Context, uploads []Upload) ([]Created, error) {
	if len(uploads) == 0 {
		return nil, nil
	}

	invoices := make([]*Invoice, len(uploads))

	for i, u := range uploads {
		inv, err := s.prepare(u)
		if err != nil {
			return nil, err
		}

		invoices[i] = inv
	}

	created := make([]Created, 0, len(invoices))

	for i, inv := range invoices {
		if err := s.store(ctx, inv, uploads[i].Data); err != nil {
			return created, fmt.Errorf("storing %q: %w", inv.DisplayName, err)
		}

		created = append(created, Created{
			ID:          inv.ID,
			DisplayName: inv.DisplayName,
			Year:        inv.Year,
			Month:       inv.Month,
		})
	}

	return created, nil
}

func (s *Service) Create(ctx context.Context, upload Upload) (*Created, error) {
	created, err := s.CreateBatch(ctx, []Upload{upload})
	if err != nil {
		return nil, err
	}

	return &created[0], nil
}

func (s *Service) prepare(u Upload) (*Invoice, error) {
	meta := u.Meta
	meta.DisplayName = DisplayName(meta.DisplayName, u.Filename)

	if err := Validate(meta); err != nil {
		return nil, err
	}

	amounts, err := ParseAmounts(meta)
	if err != nil {
		return nil, fmt.Errorf("parsing amounts: %w", err)
	}

	var lookup bucket.Lookup
	if s.dateTaken != nil {
		lookup = func() (time.Time, bool) { return s.dateTaken(u.Data) }
	}

	b := bucket.Resolve(meta.InvoiceDate, lookup, s.now())

	inv := &Invoice{
		OriginalName: u.Filename,
		Extension:    extension(u.Filename),
		ContentType:  mimetype.Detect(u.Data).String(),
		Size:         int64(len(u.Data)),
	}
	applyMetadata(inv, meta, amounts, b)

	return inv, nil
}

// store puts the blob first so a failed insert leaves at worst an unreferenced blob.
func (s *Service) store(ctx context.Context, inv *Invoice, data []byte) error {
	inv.BlobRef = blob.Key(inv.Year, inv.Month, blob.InvoiceFolder, inv.DisplayName)

	if err := s.blobs.Put(ctx, inv.BlobRef, data, inv.ContentType); err != nil {
		return fmt.Errorf("putting blob: %w", err)
	}

	if err := s.repo.CreateInvoice(ctx, inv); err != nil {
		if delErr := s.blobs.Delete(ctx, inv.BlobRef); delErr != nil {
			slog.WarnContext(ctx, "failed to remove orphan blob", "key", inv.BlobRef, "error", delErr)
		}

		return fmt.Errorf("creating invoice: %w", err)
	}

	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Invoice, error) {
	return s.repo.GetInvoice(ctx, id)
}

// Update replaces the editable fields of an invoice. The bucket follows the new invoice date,
// falling back to the stored one when the new date cannot be read. The blob stays where it is.
func (s *Service) Update(ctx context.Context, id uuid.UUID, meta Metadata) (*Invoice, error) {
	inv, err := s.repo.GetInvoice(ctx, id)
	if err != nil {
		return nil, err
	}

	if blank(meta.DisplayName) {
		meta.DisplayName = inv.DisplayName
	} else {
		meta.DisplayName = DisplayName(meta.DisplayName, inv.OriginalName)
	}

	if err := Validate(meta); err != nil {
		return nil, err
	}

	amounts, err := ParseAmounts(meta)
	if err != nil {
		return nil, fmt.Errorf("parsing amounts: %w", err)
	}

	previous := inv.InvoiceDate
	b := bucket.Resolve(meta.InvoiceDate, func() (time.Time, bool) {
		return previous, !previous.IsZero()
	}, s.now())

	applyMetadata(inv, meta, amounts, b)

	if err := s.repo.UpdateInvoice(ctx, inv); err != nil {
		return nil, fmt.Errorf("updating invoice: %w", err)
	}

	return inv, nil
}

// Delete removes the blob and then the record, returning the display name of the deleted
// invoice. A blob that is already gone does not block the delete.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) (string, error) {
	inv, err := s.repo.GetInvoice(ctx, id)
	if err != nil {
		return "", err
	}

	if err := s.remove(ctx, inv); err != nil {
		return "", err
	}

	return inv.DisplayName, nil
}

func (s *Service) remove(ctx context.Context, inv *Invoice) error {
	if err := s.blobs.Delete(ctx, inv.BlobRef); err != nil && !errors.Is(err, blob.ErrNotFound) {
		return fmt.Errorf("deleting blob: %w", err)
	}

	if err := s.repo.DeleteInvoice(ctx, inv.ID); err != nil {
		return fmt.Errorf("deleting invoice: %w", err)
	}

	return nil
}

// DeleteYear deletes every invoice of a year. Per invoice failures are logged and counted.
func (s *Service) DeleteYear(ctx context.Context, year string) (YearDeleteResult, error) {
	if !bucket.ValidYear(year) {
		return YearDeleteResult{}, &ValidationError{Field: "year", Reason: fmt.Sprintf("Año invalido %q", year), Name: year}
	}

	invoices, err := s.repo.ListInvoices(ctx, ListFilter{Year: &year})
	if err != nil {
		return YearDeleteResult{}, fmt.Errorf("listing invoices: %w", err)
	}

	var deleted, failed atomic.Int64

	var g errgroup.Group
	g.SetLimit(deleteYearConcurrency)

	for _, inv := range invoices {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				failed.Add(1)
				return nil
			}

			if err := s.remove(ctx, inv); err != nil {
				slog.WarnContext(ctx, "failed to delete invoice", "id", inv.ID, "year", year, "error", err)
				failed.Add(1)

				return nil
			}

			deleted.Add(1)

			return nil
		})
	}

	_ = g.Wait()

	return YearDeleteResult{Deleted: int(deleted.Load()), Failed: int(failed.Load())}, nil
}

// List returns the invoices as a year -> month -> newest first tree. Empty filters match all.
func (s *Service) List(ctx context.Context, year, month string) (Tree, error) {
	filter, err := listFilter(year, month)
	if err != nil {
		return nil, err
	}

	invoices, err := s.repo.ListInvoices(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listing invoices: %w", err)
	}

	slices.SortStableFunc(invoices, func(a, b *Invoice) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}

		return cmp.Compare(a.ID.String(), b.ID.String())
	})

	tree := Tree{}

	for _, inv := range invoices {
		months, ok := tree[inv.Year]
		if !ok {
			months = map[string][]ListEntry{}
			tree[inv.Year] = months
		}

		months[inv.Month] = append(months[inv.Month], ListEntry{ID: inv.ID, DisplayName: inv.DisplayName})
	}

	return tree, nil
}

func listFilter(year, month string) (ListFilter, error) {
	var filter ListFilter

	if year != "" {
		if !bucket.ValidYear(year) {
			return ListFilter{}, &ValidationError{Field: "year", Reason: fmt.Sprintf("Año invalido %q", year), Name: year}
		}

		filter.Year = &year
	}

	if month != "" {
		m, ok := bucket.NormalizeMonth(month)
		if !ok {
			return ListFilter{}, &ValidationError{Field: "month", Reason: fmt.Sprintf("Mes invalido %q", month), Name: month}
		}

		filter.Month = &m
	}

	return filter, nil
}

// ListByYear returns the full invoices of a year.
func (s *Service) ListByYear(ctx context.Context, year string) ([]*Invoice, error) {
	filter, err := listFilter(year, "")
	if err != nil {
		return nil, err
	}

	invoices, err := s.repo.ListInvoices(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listing invoices: %w", err)
	}

	return invoices, nil
}

// OpenBlob returns the invoice and a reader over its stored file. The caller closes the reader.
func (s *Service) OpenBlob(ctx context.Context, id uuid.UUID) (*Invoice, io.ReadCloser, error) {
	inv, err := s.repo.GetInvoice(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	rc, err := s.blobs.Get(ctx, inv.BlobRef)
	if err != nil {
		return nil, nil, fmt.Errorf("getting blob: %w", err)
	}

	return inv, rc, nil
}

func applyMetadata(inv *Invoice, meta Metadata, a Amounts, b bucket.Bucket) {
	inv.DisplayName = meta.DisplayName
	inv.InvoiceDate = b.Date
	inv.InvoiceNumber = strings.TrimSpace(meta.InvoiceNumber)
	inv.NIF = strings.TrimSpace(meta.NIF)
	inv.LegalName = strings.TrimSpace(meta.LegalName)
	inv.BaseCategory = strings.TrimSpace(meta.BaseCategory)
	inv.BaseAmount = a.Base
	inv.VATRate = strings.TrimSpace(meta.VATRate)
	inv.VATDeductible = a.Deductible
	inv.VATNonDeductible = a.NonDeductible
	inv.TotalAmount = a.Total
	inv.Fuel = meta.Fuel
	inv.Year = b.Year
	inv.Month = b.Month
}

var unsafeName = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// Sanitize replaces every character outside letters, digits, dot, underscore and hyphen.
func Sanitize(name string) string {
	return unsafeName.ReplaceAllString(name, "_")
}

// DisplayName derives the stored name from what the user typed, keeping the extension of the
// original file. An empty input falls back to the original file name.
func DisplayName(input, original string) string {
	ext := filepath.Ext(original)

	base := strings.TrimSpace(input)
	if base == "" {
		base = strings.TrimSuffix(filepath.Base(original), ext)
	}

	if ext != "" && strings.EqualFold(filepath.Ext(base), ext) {
		base = base[:len(base)-len(ext)]
	}

	if base == "" || base == "." {
		base = "archivo"
	}

	return Sanitize(base + ext)
}

func extension(filename string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
}
