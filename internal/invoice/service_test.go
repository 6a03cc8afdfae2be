package invoice_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/facturas/internal/blob"
	"github.com/MrJamesThe3rd/facturas/internal/invoice"
)

// memRepo is an in-memory Repository used where a scenario spans several calls.
type memRepo struct {
	mu       sync.Mutex
	invoices map[uuid.UUID]*invoice.Invoice
	clock    time.Time
}

func newMemRepo() *memRepo {
	return &memRepo{
		invoices: map[uuid.UUID]*invoice.Invoice{},
		clock:    time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (r *memRepo) CreateInvoice(_ context.Context, inv *invoice.Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.clock = r.clock.Add(time.Minute)
	inv.ID = uuid.New()
	inv.CreatedAt = r.clock

	cp := *inv
	r.invoices[inv.ID] = &cp

	return nil
}

func (r *memRepo) GetInvoice(_ context.Context, id uuid.UUID) (*invoice.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	inv, ok := r.invoices[id]
	if !ok {
		return nil, invoice.ErrNotFound
	}

	cp := *inv

	return &cp, nil
}

func (r *memRepo) UpdateInvoice(_ context.Context, inv *invoice.Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.invoices[inv.ID]; !ok {
		return invoice.ErrNotFound
	}

	cp := *inv
	r.invoices[inv.ID] = &cp

	return nil
}

func (r *memRepo) DeleteInvoice(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.invoices, id)

	return nil
}

func (r *memRepo) ListInvoices(_ context.Context, filter invoice.ListFilter) ([]*invoice.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*invoice.Invoice

	for _, inv := range r.invoices {
		if filter.Year != nil && inv.Year != *filter.Year {
			continue
		}

		if filter.Month != nil && inv.Month != *filter.Month {
			continue
		}

		cp := *inv
		out = append(out, &cp)
	}

	return out, nil
}

// memBlobs is an in-memory BlobStore whose deletes can be made to fail per key.
type memBlobs struct {
	mu      sync.Mutex
	objects map[string][]byte
	failDel map[string]bool
}

func newMemBlobs() *memBlobs {
	return &memBlobs{objects: map[string][]byte{}, failDel: map[string]bool{}}
}

func (b *memBlobs) Put(_ context.Context, key string, data []byte, _ string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.objects[key] = data

	return nil
}

func (b *memBlobs) Get(_ context.Context, key string) (io.ReadCloser, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	data, ok := b.objects[key]
	if !ok {
		return nil, blob.ErrNotFound
	}

	return io.NopCloser(strings.NewReader(string(data))), nil
}

func (b *memBlobs) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.failDel[key] {
		return errors.New("storage unavailable")
	}

	if _, ok := b.objects[key]; !ok {
		return blob.ErrNotFound
	}

	delete(b.objects, key)

	return nil
}

var fixedNow = time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)

func newService(repo invoice.Repository, blobs invoice.BlobStore, dateTaken invoice.TimestampExtractor) *invoice.Service {
	return invoice.NewService(repo, blobs, dateTaken, invoice.WithClock(func() time.Time { return fixedNow }))
}

func upload(name, date string) invoice.Upload {
	m := validMetadata()
	m.DisplayName = ""
	m.InvoiceDate = date

	return invoice.Upload{Data: []byte("%PDF-1.7 " + name), Filename: name, Meta: m}
}

func TestService_CreateAndGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo, blobs := newMemRepo(), newMemBlobs()
	svc := newService(repo, blobs, nil)

	meta := validMetadata()
	meta.InvoiceDate = "15/03/2026"
	meta.Fuel = true

	created, err := svc.Create(ctx, invoice.Upload{Data: []byte("%PDF-1.7"), Filename: "ticket.pdf", Meta: meta})
	require.NoError(t, err)
	assert.Equal(t, "2026", created.Year)
	assert.Equal(t, "03", created.Month)
	assert.Equal(t, "ticket.pdf", created.DisplayName)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)

	assert.Equal(t, "2026-03-15", got.InvoiceDate.Format(time.DateOnly))
	assert.Equal(t, meta.InvoiceNumber, got.InvoiceNumber)
	assert.Equal(t, meta.NIF, got.NIF)
	assert.Equal(t, meta.LegalName, got.LegalName)
	assert.Equal(t, meta.BaseCategory, got.BaseCategory)
	assert.Equal(t, meta.VATRate, got.VATRate)
	assert.Equal(t, int64(10000), got.BaseAmount)
	assert.Equal(t, int64(1000), got.VATDeductible)
	assert.Equal(t, int64(500), got.VATNonDeductible)
	assert.Equal(t, int64(11500), got.TotalAmount)
	assert.True(t, got.Fuel)
	assert.Equal(t, "pdf", got.Extension)
	assert.Equal(t, "application/pdf", got.ContentType)
	assert.True(t, strings.HasPrefix(got.BlobRef, "2026/03/facturas/"))
	assert.Contains(t, blobs.objects, got.BlobRef)
}

func TestService_CreateBatch_BucketFallbacks(t *testing.T) {
	ctx := context.Background()
	repo, blobs := newMemRepo(), newMemBlobs()

	exifDate := time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)
	svc := newService(repo, blobs, func(data []byte) (time.Time, bool) {
		if strings.Contains(string(data), "photo") {
			return exifDate, true
		}

		return time.Time{}, false
	})

	created, err := svc.CreateBatch(ctx, []invoice.Upload{
		upload("explicit.pdf", "2026-03-15"),
		upload("photo.jpg", "sin fecha"),
		upload("scan.pdf", "sin fecha"),
	})
	require.NoError(t, err)
	require.Len(t, created, 3)

	assert.Equal(t, [2]string{"2026", "03"}, [2]string{created[0].Year, created[0].Month})
	assert.Equal(t, [2]string{"2025", "07"}, [2]string{created[1].Year, created[1].Month})
	assert.Equal(t, [2]string{"2026", "10"}, [2]string{created[2].Year, created[2].Month})
}

func TestService_CreateBatch_ValidationRejectsWholeBatch(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// No expectations: nothing may be written.
	repo := invoice.NewMockRepository(ctrl)
	blobs := invoice.NewMockBlobStore(ctrl)
	svc := newService(repo, blobs, nil)

	bad := upload("second.pdf", "2026-03-15")
	bad.Meta.NIF = "B-1"

	_, err := svc.CreateBatch(context.Background(), []invoice.Upload{upload("first.pdf", "2026-03-15"), bad})

	var verr *invoice.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "nif", verr.Field)
	assert.Equal(t, "second.pdf", verr.Name)
}

func TestService_CreateBatch_StorageFailures(t *testing.T) {
	type testCase struct {
		name      string
		setupMock func(repo *invoice.MockRepository, blobs *invoice.MockBlobStore)
	}

	tests := []testCase{
		{
			name: "BlobPutFails",
			setupMock: func(_ *invoice.MockRepository, blobs *invoice.MockBlobStore) {
				blobs.EXPECT().Put(gomock.Any(), gomock.Any(), gomock.Any(), "application/pdf").Return(errors.New("s3 down"))
			},
		},
		{
			name: "InsertFailsRemovesBlob",
			setupMock: func(repo *invoice.MockRepository, blobs *invoice.MockBlobStore) {
				var key string

				blobs.EXPECT().Put(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, k string, _ []byte, _ string) error {
						key = k
						return nil
					})
				repo.EXPECT().CreateInvoice(gomock.Any(), gomock.Any()).Return(errors.New("db down"))
				blobs.EXPECT().Delete(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, k string) error {
						assert.Equal(t, key, k)
						return nil
					})
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := invoice.NewMockRepository(ctrl)
			blobs := invoice.NewMockBlobStore(ctrl)
			tt.setupMock(repo, blobs)

			svc := newService(repo, blobs, nil)
			created, err := svc.CreateBatch(context.Background(), []invoice.Upload{upload("a.pdf", "2026-03-15")})

			assert.Error(t, err)
			assert.Empty(t, created)
		})
	}
}

func TestService_Update(t *testing.T) {
	ctx := context.Background()
	repo, blobs := newMemRepo(), newMemBlobs()
	svc := newService(repo, blobs, nil)

	created, err := svc.Create(ctx, upload("ticket.pdf", "2026-03-15"))
	require.NoError(t, err)

	before, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)

	t.Run("NewDateMovesBucket", func(t *testing.T) {
		meta := validMetadata()
		meta.DisplayName = "luz abril"
		meta.InvoiceDate = "2026-04-02"

		got, err := svc.Update(ctx, created.ID, meta)
		require.NoError(t, err)

		assert.Equal(t, "04", got.Month)
		assert.Equal(t, "luz_abril.pdf", got.DisplayName)
		assert.Equal(t, before.BlobRef, got.BlobRef)
		assert.Equal(t, before.CreatedAt, got.CreatedAt)
		assert.Equal(t, before.ID, got.ID)
	})

	t.Run("UnreadableDateKeepsPrevious", func(t *testing.T) {
		meta := validMetadata()
		meta.DisplayName = ""
		meta.InvoiceDate = "pronto"

		got, err := svc.Update(ctx, created.ID, meta)
		require.NoError(t, err)

		assert.Equal(t, "2026-04-02", got.InvoiceDate.Format(time.DateOnly))
		assert.Equal(t, "luz_abril.pdf", got.DisplayName)
	})

	t.Run("Invalid", func(t *testing.T) {
		meta := validMetadata()
		meta.TotalAmount = "1"

		_, err := svc.Update(ctx, created.ID, meta)

		var verr *invoice.ValidationError
		assert.ErrorAs(t, err, &verr)
	})

	t.Run("NotFound", func(t *testing.T) {
		_, err := svc.Update(ctx, uuid.New(), validMetadata())
		assert.ErrorIs(t, err, invoice.ErrNotFound)
	})
}

func TestService_Delete(t *testing.T) {
	type testCase struct {
		name      string
		setupMock func(repo *invoice.MockRepository, blobs *invoice.MockBlobStore, inv *invoice.Invoice)
		wantName  string
		wantErr   error
		anyErr    bool
	}

	tests := []testCase{
		{
			name: "Success",
			setupMock: func(repo *invoice.MockRepository, blobs *invoice.MockBlobStore, inv *invoice.Invoice) {
				gomock.InOrder(
					repo.EXPECT().GetInvoice(gomock.Any(), inv.ID).Return(inv, nil),
					blobs.EXPECT().Delete(gomock.Any(), inv.BlobRef).Return(nil),
					repo.EXPECT().DeleteInvoice(gomock.Any(), inv.ID).Return(nil),
				)
			},
			wantName: "ticket.pdf",
		},
		{
			name: "MissingBlobTolerated",
			setupMock: func(repo *invoice.MockRepository, blobs *invoice.MockBlobStore, inv *invoice.Invoice) {
				repo.EXPECT().GetInvoice(gomock.Any(), inv.ID).Return(inv, nil)
				blobs.EXPECT().Delete(gomock.Any(), inv.BlobRef).Return(blob.ErrNotFound)
				repo.EXPECT().DeleteInvoice(gomock.Any(), inv.ID).Return(nil)
			},
			wantName: "ticket.pdf",
		},
		{
			name: "BlobFailureKeepsRecord",
			setupMock: func(repo *invoice.MockRepository, blobs *invoice.MockBlobStore, inv *invoice.Invoice) {
				repo.EXPECT().GetInvoice(gomock.Any(), inv.ID).Return(inv, nil)
				blobs.EXPECT().Delete(gomock.Any(), inv.BlobRef).Return(errors.New("timeout"))
			},
			anyErr: true,
		},
		{
			name: "NotFound",
			setupMock: func(repo *invoice.MockRepository, _ *invoice.MockBlobStore, inv *invoice.Invoice) {
				repo.EXPECT().GetInvoice(gomock.Any(), inv.ID).Return(nil, invoice.ErrNotFound)
			},
			wantErr: invoice.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := invoice.NewMockRepository(ctrl)
			blobs := invoice.NewMockBlobStore(ctrl)
			inv := &invoice.Invoice{ID: uuid.New(), DisplayName: "ticket.pdf", BlobRef: "2026/03/facturas/x-ticket.pdf"}
			tt.setupMock(repo, blobs, inv)

			name, err := newService(repo, blobs, nil).Delete(context.Background(), inv.ID)

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.anyErr:
				assert.Error(t, err)
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.wantName, name)
			}
		})
	}
}

func TestService_DeleteYear_PartialFailure(t *testing.T) {
	ctx := context.Background()
	repo, blobs := newMemRepo(), newMemBlobs()
	svc := newService(repo, blobs, nil)

	var ids []uuid.UUID

	for i := range 5 {
		c, err := svc.Create(ctx, upload("f"+string(rune('a'+i))+".pdf", "2025-0"+string(rune('1'+i))+"-10"))
		require.NoError(t, err)

		ids = append(ids, c.ID)
	}

	other, err := svc.Create(ctx, upload("other.pdf", "2026-01-10"))
	require.NoError(t, err)

	for _, id := range ids[:2] {
		inv, err := svc.Get(ctx, id)
		require.NoError(t, err)

		blobs.failDel[inv.BlobRef] = true
	}

	res, err := svc.DeleteYear(ctx, "2025")
	require.NoError(t, err)
	assert.Equal(t, invoice.YearDeleteResult{Deleted: 3, Failed: 2}, res)

	tree, err := svc.List(ctx, "2025", "")
	require.NoError(t, err)

	var remaining []uuid.UUID

	for _, entries := range tree["2025"] {
		for _, e := range entries {
			remaining = append(remaining, e.ID)
		}
	}

	assert.ElementsMatch(t, ids[:2], remaining)

	_, err = svc.Get(ctx, other.ID)
	assert.NoError(t, err)
}

func TestService_DeleteYear_InvalidYear(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := newService(invoice.NewMockRepository(ctrl), invoice.NewMockBlobStore(ctrl), nil)

	_, err := svc.DeleteYear(context.Background(), "25")

	var verr *invoice.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestService_List(t *testing.T) {
	older := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	newer := older.Add(time.Hour)

	a := &invoice.Invoice{ID: uuid.New(), DisplayName: "a.pdf", Year: "2026", Month: "03", CreatedAt: older}
	b := &invoice.Invoice{ID: uuid.New(), DisplayName: "b.pdf", Year: "2026", Month: "03", CreatedAt: newer}
	c := &invoice.Invoice{ID: uuid.New(), DisplayName: "c.pdf", Year: "2025", Month: "12", CreatedAt: older}

	type testCase struct {
		name      string
		year      string
		month     string
		setupMock func(m *invoice.MockRepository)
		want      invoice.Tree
		wantErr   bool
	}

	tests := []testCase{
		{
			name: "AllNewestFirst",
			setupMock: func(m *invoice.MockRepository) {
				m.EXPECT().ListInvoices(gomock.Any(), invoice.ListFilter{}).Return([]*invoice.Invoice{a, c, b}, nil)
			},
			want: invoice.Tree{
				"2026": {"03": {{ID: b.ID, DisplayName: "b.pdf"}, {ID: a.ID, DisplayName: "a.pdf"}}},
				"2025": {"12": {{ID: c.ID, DisplayName: "c.pdf"}}},
			},
		},
		{
			name:  "MonthIsNormalized",
			year:  "2026",
			month: "3",
			setupMock: func(m *invoice.MockRepository) {
				m.EXPECT().ListInvoices(gomock.Any(), invoice.ListFilter{Year: new("2026"), Month: new("03")}).Return(nil, nil)
			},
			want: invoice.Tree{},
		},
		{
			name:    "InvalidMonth",
			month:   "13",
			wantErr: true,
		},
		{
			name: "RepoError",
			setupMock: func(m *invoice.MockRepository) {
				m.EXPECT().ListInvoices(gomock.Any(), gomock.Any()).Return(nil, errors.New("db"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := invoice.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			got, err := newService(repo, invoice.NewMockBlobStore(ctrl), nil).List(context.Background(), tt.year, tt.month)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestService_OpenBlob(t *testing.T) {
	ctx := context.Background()
	repo, blobs := newMemRepo(), newMemBlobs()
	svc := newService(repo, blobs, nil)

	created, err := svc.Create(ctx, upload("ticket.pdf", "2026-03-15"))
	require.NoError(t, err)

	inv, rc, err := svc.OpenBlob(ctx, created.ID)
	require.NoError(t, err)

	defer rc.Close()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7 ticket.pdf", string(data))
	assert.Equal(t, "ticket.pdf", inv.DisplayName)

	_, _, err = svc.OpenBlob(ctx, uuid.New())
	assert.ErrorIs(t, err, invoice.ErrNotFound)
}
