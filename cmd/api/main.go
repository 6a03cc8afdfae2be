package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/facturas/internal/app"
	"github.com/MrJamesThe3rd/facturas/internal/auth"
	"github.com/MrJamesThe3rd/facturas/internal/config"
	facturasHttp "github.com/MrJamesThe3rd/facturas/internal/http"
	exportHandler "github.com/MrJamesThe3rd/facturas/internal/http/export"
	incomeHandler "github.com/MrJamesThe3rd/facturas/internal/http/income"
	invoiceHandler "github.com/MrJamesThe3rd/facturas/internal/http/invoice"
	sessionHandler "github.com/MrJamesThe3rd/facturas/internal/http/session"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadAPI()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Level()})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		slog.Error("failed to start", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	authn := auth.New(cfg.Auth.User, cfg.Auth.PasswordHash, cfg.Auth.Secret, cfg.Auth.TTL)

	var (
		sessionH = sessionHandler.NewHandler(authn)
		invoiceH = invoiceHandler.NewHandler(a.Invoices, cfg.Server.MaxUpload)
		incomeH  = incomeHandler.NewHandler(a.Income)
		exportH  = exportHandler.NewHandler(a.Export, a.Archives)
	)

	router := facturasHttp.New(authn, cfg.Server.CORSOrigins, sessionH, invoiceH, incomeH, exportH)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: cfg.Server.Timeout,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("failed to shut down", "error", err)
		}
	}()

	slog.Info("starting server", "port", srv.Addr, "blob_backend", cfg.Blob.Backend)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
