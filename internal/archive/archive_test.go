package archive_test

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/facturas/internal/archive"
	"github.com/MrJamesThe3rd/facturas/internal/blob"
	"github.com/MrJamesThe3rd/facturas/internal/invoice"
)

type fakeLister []*invoice.Invoice

func (f fakeLister) ListByYear(context.Context, string) ([]*invoice.Invoice, error) {
	return f, nil
}

type fakeBlobs map[string]string

func (f fakeBlobs) Get(_ context.Context, key string) (io.ReadCloser, error) {
	data, ok := f[key]
	if !ok {
		return nil, blob.ErrNotFound
	}

	return io.NopCloser(strings.NewReader(data)), nil
}

func inv(month, name, ref string) *invoice.Invoice {
	return &invoice.Invoice{
		ID:          uuid.New(),
		DisplayName: name,
		BlobRef:     ref,
		Year:        "2026",
		Month:       month,
		CreatedAt:   time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}
}

func readZip(t *testing.T, data []byte) map[string]string {
	t.Helper()

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	out := make(map[string]string)

	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)

		body, err := io.ReadAll(rc)
		require.NoError(t, err)
		rc.Close()

		out[f.Name] = string(body)
	}

	return out
}

func TestBuilder_BuildYear(t *testing.T) {
	invoices := fakeLister{
		inv("01", "luz.pdf", "a"),
		inv("01", "luz.pdf", "b"),
		inv("01", "luz.pdf", "c"),
		inv("02", "luz.pdf", "d"),
		inv("03", "perdida.pdf", "missing"),
	}
	blobs := fakeBlobs{"a": "A", "b": "B", "c": "C", "d": "D"}

	var buf bytes.Buffer

	res, err := archive.NewBuilder(invoices, blobs).BuildYear(context.Background(), "2026", &buf)
	require.NoError(t, err)
	assert.Equal(t, &archive.Result{Added: 4, Skipped: 1}, res)

	assert.Equal(t, map[string]string{
		"01/luz.pdf":   "A",
		"01/luz_1.pdf": "B",
		"01/luz_2.pdf": "C",
		"02/luz.pdf":   "D",
	}, readZip(t, buf.Bytes()))
}

func TestBuilder_BuildYear_Empty(t *testing.T) {
	var buf bytes.Buffer

	res, err := archive.NewBuilder(fakeLister{}, fakeBlobs{}).BuildYear(context.Background(), "2026", &buf)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Added)
	assert.Empty(t, readZip(t, buf.Bytes()))
}

func TestBuilder_BuildYear_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer

	_, err := archive.NewBuilder(fakeLister{inv("01", "a.pdf", "a")}, fakeBlobs{"a": "A"}).BuildYear(ctx, "2026", &buf)
	assert.ErrorIs(t, err, context.Canceled)
}
