package local_test

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/facturas/internal/blob"
	"github.com/MrJamesThe3rd/facturas/internal/blob/local"
)

func TestStore_PutGetDelete(t *testing.T) {
	ctx := context.Background()

	s, err := local.New(t.TempDir())
	require.NoError(t, err)

	key := blob.Key("2026", "03", blob.InvoiceFolder, "ticket.pdf")
	require.NoError(t, s.Put(ctx, key, []byte("%PDF-1.4"), "application/pdf"))

	rc, err := s.Get(ctx, key)
	require.NoError(t, err)

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "%PDF-1.4", string(data))

	require.NoError(t, s.Delete(ctx, key))

	_, err = s.Get(ctx, key)
	assert.ErrorIs(t, err, blob.ErrNotFound)

	assert.ErrorIs(t, s.Delete(ctx, key), blob.ErrNotFound)
}

func TestStore_RejectsEscapingKeys(t *testing.T) {
	s, err := local.New(t.TempDir())
	require.NoError(t, err)

	for _, key := range []string{"../outside", "/etc/passwd", "..", ""} {
		assert.Error(t, s.Put(context.Background(), key, []byte("x"), ""), key)
	}
}

func TestKey(t *testing.T) {
	a := blob.Key("2026", "03", blob.InvoiceFolder, "a.pdf")
	b := blob.Key("2026", "03", blob.InvoiceFolder, "a.pdf")

	assert.Regexp(t, `^2026/03/facturas/[0-9A-Z]{26}-a\.pdf$`, a)
	assert.NotEqual(t, a, b)
}
