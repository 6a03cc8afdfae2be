// Package archive streams the invoice files of a year as a zip grouped by month.
package archive

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"

	"github.com/MrJamesThe3rd/facturas/internal/invoice"
)

type InvoiceLister interface {
	ListByYear(ctx context.Context, year string) ([]*invoice.Invoice, error)
}

type BlobReader interface {
	Get(ctx context.Context, key string) (io.ReadCloser, error)
}

type Result struct {
	Added   int
	Skipped int
}

type Builder struct {
	invoices InvoiceLister
	blobs    BlobReader
}

func NewBuilder(invoices InvoiceLister, blobs BlobReader) *Builder {
	return &Builder{invoices: invoices, blobs: blobs}
}

// BuildYear writes a zip of every invoice of year to w, each under MM/<display name>. An
// entry whose blob cannot be read is logged and skipped. Cancelling ctx stops the stream
// between entries and during a copy.
func (b *Builder) BuildYear(ctx context.Context, year string, w io.Writer) (*Result, error) {
	invoices, err := b.invoices.ListByYear(ctx, year)
	if err != nil {
		return nil, fmt.Errorf("listing invoices: %w", err)
	}

	zw := zip.NewWriter(w)
	names := make(map[string]int)
	res := &Result{}

	for _, inv := range invoices {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		name := entryName(names, inv)

		if err := b.add(ctx, zw, name, inv); err != nil {
			if ctx.Err() != nil {
				return res, ctx.Err()
			}

			slog.WarnContext(ctx, "skipping archive entry", "id", inv.ID, "name", name, "error", err)
			res.Skipped++

			continue
		}

		res.Added++
	}

	if err := zw.Close(); err != nil {
		return res, fmt.Errorf("closing archive: %w", err)
	}

	return res, nil
}

// add fetches the blob before creating the entry so an unreachable blob leaves no empty file.
func (b *Builder) add(ctx context.Context, zw *zip.Writer, name string, inv *invoice.Invoice) error {
	rc, err := b.blobs.Get(ctx, inv.BlobRef)
	if err != nil {
		return fmt.Errorf("getting blob: %w", err)
	}
	defer rc.Close()

	entry, err := zw.CreateHeader(&zip.FileHeader{
		Name:     name,
		Method:   zip.Deflate,
		Modified: inv.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("creating entry: %w", err)
	}

	if _, err := io.Copy(entry, &ctxReader{ctx: ctx, r: rc}); err != nil {
		return fmt.Errorf("copying blob: %w", err)
	}

	return nil
}

// entryName returns MM/<display name>, suffixing _1, _2... before the extension when the name
// is already taken in the archive.
func entryName(seen map[string]int, inv *invoice.Invoice) string {
	name := inv.DisplayName
	if name == "" {
		name = invoice.Sanitize(inv.OriginalName)
	}

	full := path.Join(inv.Month, name)

	n := seen[full]
	seen[full] = n + 1

	if n == 0 {
		return full
	}

	ext := path.Ext(name)
	base := strings.TrimSuffix(name, ext)

	for {
		candidate := path.Join(inv.Month, fmt.Sprintf("%s_%d%s", base, n, ext))
		if _, taken := seen[candidate]; !taken {
			seen[candidate] = 1
			return candidate
		}

		n++
	}
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}

	return c.r.Read(p)
}
