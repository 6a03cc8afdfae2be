package invoice

import (
	"encoding/json"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/facturas/internal/http/respond"
	"github.com/MrJamesThe3rd/facturas/internal/invoice"
)

// multipartMemory is how much of an upload is held in memory before spilling to disk.
const multipartMemory = 32 << 20

type Handler struct {
	svc       *invoice.Service
	maxUpload int64
}

func NewHandler(svc *invoice.Service, maxUpload int64) *Handler {
	return &Handler{svc: svc, maxUpload: maxUpload}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Delete("/years/{year}", h.deleteYear)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
	r.Get("/{id}/file", h.file)
}

type metadataRequest struct {
	DisplayName      string `json:"display_name"`
	InvoiceDate      string `json:"invoice_date"`
	InvoiceNumber    string `json:"invoice_number"`
	NIF              string `json:"nif"`
	LegalName        string `json:"legal_name"`
	BaseCategory     string `json:"base_category"`
	BaseAmount       string `json:"base_amount"`
	VATRate          string `json:"vat_rate"`
	VATDeductible    string `json:"vat_deductible"`
	VATNonDeductible string `json:"vat_non_deductible"`
	TotalAmount      string `json:"total_amount"`
	Fuel             bool   `json:"fuel"`
}

func (m metadataRequest) toMetadata() invoice.Metadata {
	return invoice.Metadata{
		DisplayName:      m.DisplayName,
		InvoiceDate:      m.InvoiceDate,
		InvoiceNumber:    m.InvoiceNumber,
		NIF:              m.NIF,
		LegalName:        m.LegalName,
		BaseCategory:     m.BaseCategory,
		BaseAmount:       m.BaseAmount,
		VATRate:          m.VATRate,
		VATDeductible:    m.VATDeductible,
		VATNonDeductible: m.VATNonDeductible,
		TotalAmount:      m.TotalAmount,
		Fuel:             m.Fuel,
	}
}

// create takes a multipart form with the files under "files" and a "meta" JSON array holding
// one metadata object per file, in the same order.
func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	if h.maxUpload > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		respond.BadRequest(w, "failed to parse form: "+err.Error())
		return
	}

	files := slices.Concat(r.MultipartForm.File["files"], r.MultipartForm.File["files[]"])
	if len(files) == 0 {
		respond.BadRequest(w, "files field is required")
		return
	}

	var meta []metadataRequest
	if err := json.Unmarshal([]byte(r.FormValue("meta")), &meta); err != nil {
		respond.BadRequest(w, "invalid meta: "+err.Error())
		return
	}

	if len(meta) != len(files) {
		respond.BadRequest(w, "meta must hold one entry per file")
		return
	}

	uploads := make([]invoice.Upload, len(files))

	for i, fh := range files {
		data, err := readPart(fh)
		if err != nil {
			respond.BadRequest(w, "failed to read "+fh.Filename)
			return
		}

		uploads[i] = invoice.Upload{
			Data:     data,
			Filename: fh.Filename,
			Meta:     meta[i].toMetadata(),
		}
	}

	created, err := h.svc.CreateBatch(r.Context(), uploads)
	if err != nil {
		if len(created) > 0 {
			slog.WarnContext(r.Context(), "batch partially stored", "stored", len(created), "total", len(uploads))
		}

		respond.Error(w, r, err)

		return
	}

	respond.JSON(w, http.StatusCreated, toCreatedList(created))
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return io.ReadAll(f)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	tree, err := h.svc.List(r.Context(), r.URL.Query().Get("year"), r.URL.Query().Get("month"))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toTreeResponse(tree))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.BadRequest(w, "invalid id")
		return
	}

	inv, err := h.svc.Get(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(inv))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.BadRequest(w, "invalid id")
		return
	}

	var req metadataRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.BadRequest(w, err.Error())
		return
	}

	inv, err := h.svc.Update(r.Context(), id, req.toMetadata())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(inv))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.BadRequest(w, "invalid id")
		return
	}

	name, err := h.svc.Delete(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, map[string]string{"deleted": name})
}

func (h *Handler) deleteYear(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.DeleteYear(r.Context(), chi.URLParam(r, "year"))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, deleteYearResponse{Deleted: res.Deleted, Failed: res.Failed})
}

func (h *Handler) file(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.BadRequest(w, "invalid id")
		return
	}

	inv, rc, err := h.svc.OpenBlob(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	defer rc.Close()

	contentType := inv.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("inline", map[string]string{"filename": inv.DisplayName}))

	if _, err := io.Copy(w, rc); err != nil {
		slog.WarnContext(r.Context(), "failed to stream invoice file", "id", id, "error", err)
	}
}
