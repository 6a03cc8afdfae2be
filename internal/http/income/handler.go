package income

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/facturas/internal/http/respond"
	"github.com/MrJamesThe3rd/facturas/internal/importer"
	"github.com/MrJamesThe3rd/facturas/internal/income"
	"github.com/MrJamesThe3rd/facturas/internal/money"
)

type Handler struct {
	svc *income.Service
}

func NewHandler(svc *income.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/import", h.importLedger)
	r.Get("/{year}", h.summary)
	r.Put("/{year}/months/{month}", h.saveMonth)
	r.Put("/{year}/balance", h.saveBalance)
}

// Amounts are sent as typed by the user ("1.234,56") and parsed server side. Absent fields are
// left untouched.
type monthRequest struct {
	Income       *string `json:"income,omitempty"`
	OtherExpense *string `json:"other_expense,omitempty"`
}

type balanceRequest struct {
	Initial *string `json:"initial,omitempty"`
	Final   *string `json:"final,omitempty"`
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	s, err := h.svc.YearSummary(r.Context(), chi.URLParam(r, "year"))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toSummaryResponse(s))
}

func (h *Handler) saveMonth(w http.ResponseWriter, r *http.Request) {
	var req monthRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.BadRequest(w, err.Error())
		return
	}

	in := income.MonthInput{}

	var err error

	if in.IncomeCents, err = parseOptional("income", req.Income); err != nil {
		respond.Error(w, r, err)
		return
	}

	if in.OtherExpenseCents, err = parseOptional("other_expense", req.OtherExpense); err != nil {
		respond.Error(w, r, err)
		return
	}

	year, month := chi.URLParam(r, "year"), chi.URLParam(r, "month")

	if err := h.svc.SaveMonth(r.Context(), year, month, in); err != nil {
		respond.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) saveBalance(w http.ResponseWriter, r *http.Request) {
	var req balanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.BadRequest(w, err.Error())
		return
	}

	in := income.BalanceInput{}

	var err error

	if in.InitialCents, err = parseOptional("initial", req.Initial); err != nil {
		respond.Error(w, r, err)
		return
	}

	if in.FinalCents, err = parseOptional("final", req.Final); err != nil {
		respond.Error(w, r, err)
		return
	}

	b, err := h.svc.SaveBalances(r.Context(), chi.URLParam(r, "year"), in)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toBalanceResponse(*b))
}

func (h *Handler) importLedger(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		respond.BadRequest(w, "failed to parse form: "+err.Error())
		return
	}

	format, err := importer.ParseFormat(r.FormValue("format"))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		respond.BadRequest(w, "file field is required")
		return
	}
	defer file.Close()

	res, err := h.svc.ImportLedger(r.Context(), format, file)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, importResponse{
		MonthsUpdated:      res.MonthsUpdated,
		MovementsProcessed: res.MovementsProcessed,
	})
}

func parseOptional(field string, text *string) (*int64, error) {
	if text == nil {
		return nil, nil
	}

	cents, err := money.ParseCents(*text)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", field, err)
	}

	return &cents, nil
}
