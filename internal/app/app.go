// Package app wires the services both binaries share from a loaded config.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/MrJamesThe3rd/facturas/internal/archive"
	"github.com/MrJamesThe3rd/facturas/internal/blob/local"
	"github.com/MrJamesThe3rd/facturas/internal/blob/s3"
	"github.com/MrJamesThe3rd/facturas/internal/config"
	"github.com/MrJamesThe3rd/facturas/internal/database"
	"github.com/MrJamesThe3rd/facturas/internal/exif"
	"github.com/MrJamesThe3rd/facturas/internal/export"
	"github.com/MrJamesThe3rd/facturas/internal/importer"
	"github.com/MrJamesThe3rd/facturas/internal/income"
	incomeStore "github.com/MrJamesThe3rd/facturas/internal/income/store"
	"github.com/MrJamesThe3rd/facturas/internal/invoice"
	invoiceStore "github.com/MrJamesThe3rd/facturas/internal/invoice/store"
	"github.com/MrJamesThe3rd/facturas/internal/sealer"
)

type App struct {
	DB *sql.DB

	Invoices *invoice.Service
	Income   *income.Service
	Importer *importer.Service
	Archives *archive.Builder
	Export   *export.Service
}

// New connects to the database, applies migrations and builds every service.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	s, err := sealer.NewFromBase64(cfg.Sealer.Key)
	if err != nil {
		return nil, fmt.Errorf("creating sealer: %w", err)
	}

	blobs, err := newBlobStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	db, err := database.Open(ctx, cfg.ConnectionString())
	if err != nil {
		return nil, err
	}

	loc := cfg.Location()
	now := func() time.Time { return time.Now().In(loc) }

	var (
		invoiceService  = invoice.NewService(invoiceStore.New(db, s, loc), blobs, exif.DateTaken, invoice.WithClock(now))
		importerService = importer.NewService()
		incomeService   = income.NewService(incomeStore.New(db), invoiceService, importerService, cfg.Income.OtherExpenseFloorCents)
		archiveBuilder  = archive.NewBuilder(invoiceService, blobs)
		exportService   = export.NewService(invoiceService, incomeService, archiveBuilder)
	)

	return &App{
		DB:       db,
		Invoices: invoiceService,
		Income:   incomeService,
		Importer: importerService,
		Archives: archiveBuilder,
		Export:   exportService,
	}, nil
}

func (a *App) Close() error {
	return a.DB.Close()
}

func newBlobStore(ctx context.Context, cfg *config.Config) (invoice.BlobStore, error) {
	switch cfg.Blob.Backend {
	case config.BlobBackendS3:
		store, err := s3.NewFromEnv(ctx, s3.Options{
			Region:    cfg.Blob.S3Region,
			Bucket:    cfg.Blob.S3Bucket,
			Prefix:    cfg.Blob.S3Prefix,
			Endpoint:  cfg.Blob.S3Endpoint,
			PathStyle: cfg.Blob.S3PathStyle,
		})
		if err != nil {
			return nil, fmt.Errorf("creating s3 blob store: %w", err)
		}

		return store, nil
	default:
		store, err := local.New(cfg.Blob.LocalDir)
		if err != nil {
			return nil, fmt.Errorf("creating local blob store: %w", err)
		}

		return store, nil
	}
}
