package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/facturas/internal/archive"
	"github.com/MrJamesThe3rd/facturas/internal/bucket"
	"github.com/MrJamesThe3rd/facturas/internal/export"
	"github.com/MrJamesThe3rd/facturas/internal/http/respond"
	"github.com/MrJamesThe3rd/facturas/internal/income"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Handler struct {
	svc      *export.Service
	archives *archive.Builder
}

func NewHandler(svc *export.Service, archives *archive.Builder) *Handler {
	return &Handler{svc: svc, archives: archives}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/{year}/invoices.xlsx", h.invoices)
	r.Get("/{year}/income.xlsx", h.income)
	r.Get("/{year}/archive.zip", h.archive)
}

func (h *Handler) invoices(w http.ResponseWriter, r *http.Request) {
	year := chi.URLParam(r, "year")

	sheet, err := h.svc.InvoiceSheet(r.Context(), year)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	writeWorkbook(w, r, "facturas_"+year+".xlsx", sheet)
}

func (h *Handler) income(w http.ResponseWriter, r *http.Request) {
	year := chi.URLParam(r, "year")

	sheets, err := h.svc.IncomeSheets(r.Context(), year)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	writeWorkbook(w, r, "ingresos_"+year+".xlsx", sheets...)
}

// writeWorkbook serializes before any header is sent so a failure can still be answered with an error.
func writeWorkbook(w http.ResponseWriter, r *http.Request, filename string, sheets ...*export.Sheet) {
	var buf bytes.Buffer
	if err := export.WriteWorkbook(&buf, sheets...); err != nil {
		respond.Error(w, r, fmt.Errorf("writing workbook %s: %w", filename, err))
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if _, err := buf.WriteTo(w); err != nil {
		slog.ErrorContext(r.Context(), "failed to send workbook", "file", filename, "error", err)
	}
}

// archive streams the zip as it is built. Headers go out with the first byte; a failure before
// that is answered as an error, later ones can only be logged.
func (h *Handler) archive(w http.ResponseWriter, r *http.Request) {
	year := chi.URLParam(r, "year")
	if !bucket.ValidYear(year) {
		respond.Error(w, r, fmt.Errorf("%w: year %q", income.ErrInvalidPeriod, year))
		return
	}

	zw := &zipResponse{w: w, filename: "facturas_" + year + ".zip"}

	res, err := h.archives.BuildYear(r.Context(), year, zw)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			slog.InfoContext(r.Context(), "archive download aborted by client", "year", year)
			return
		}

		if !zw.started {
			respond.Error(w, r, err)
			return
		}

		slog.ErrorContext(r.Context(), "failed to build archive", "year", year, "error", err)

		return
	}

	slog.InfoContext(r.Context(), "archive built", "year", year, "added", res.Added, "skipped", res.Skipped)
}

// zipResponse sets the download headers on the first write.
type zipResponse struct {
	w        http.ResponseWriter
	filename string
	started  bool
}

func (z *zipResponse) Write(p []byte) (int, error) {
	if !z.started {
		z.started = true
		z.w.Header().Set("Content-Type", "application/zip")
		z.w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", z.filename))
	}

	return z.w.Write(p)
}
