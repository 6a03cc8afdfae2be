package invoice

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/facturas/internal/invoice"
	"github.com/MrJamesThe3rd/facturas/internal/money"
)

type invoiceResponse struct {
	ID               uuid.UUID  `json:"id"`
	OriginalName     string     `json:"original_name"`
	DisplayName      string     `json:"display_name"`
	Extension        string     `json:"extension"`
	ContentType      string     `json:"content_type"`
	Size             int64      `json:"size"`
	InvoiceDate      string     `json:"invoice_date"`
	InvoiceNumber    string     `json:"invoice_number"`
	NIF              string     `json:"nif"`
	LegalName        string     `json:"legal_name"`
	BaseCategory     string     `json:"base_category"`
	BaseAmount       string     `json:"base_amount"`
	VATRate          string     `json:"vat_rate"`
	VATDeductible    string     `json:"vat_deductible"`
	VATNonDeductible string     `json:"vat_non_deductible"`
	TotalAmount      string     `json:"total_amount"`
	Fuel             bool       `json:"fuel"`
	Year             string     `json:"year"`
	Month            string     `json:"month"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        *time.Time `json:"updated_at,omitempty"`
}

type createdResponse struct {
	ID          uuid.UUID `json:"id"`
	DisplayName string    `json:"display_name"`
	Year        string    `json:"year"`
	Month       string    `json:"month"`
}

type entryResponse struct {
	ID          uuid.UUID `json:"id"`
	DisplayName string    `json:"display_name"`
}

type deleteYearResponse struct {
	Deleted int `json:"deleted"`
	Failed  int `json:"failed"`
}

func toResponse(inv *invoice.Invoice) invoiceResponse {
	resp := invoiceResponse{
		ID:               inv.ID,
		OriginalName:     inv.OriginalName,
		DisplayName:      inv.DisplayName,
		Extension:        inv.Extension,
		ContentType:      inv.ContentType,
		Size:             inv.Size,
		InvoiceNumber:    inv.InvoiceNumber,
		NIF:              inv.NIF,
		LegalName:        inv.LegalName,
		BaseCategory:     inv.BaseCategory,
		BaseAmount:       money.FormatCents(inv.BaseAmount),
		VATRate:          inv.VATRate,
		VATDeductible:    money.FormatCents(inv.VATDeductible),
		VATNonDeductible: money.FormatCents(inv.VATNonDeductible),
		TotalAmount:      money.FormatCents(inv.TotalAmount),
		Fuel:             inv.Fuel,
		Year:             inv.Year,
		Month:            inv.Month,
		CreatedAt:        inv.CreatedAt,
		UpdatedAt:        inv.UpdatedAt,
	}

	if !inv.InvoiceDate.IsZero() {
		resp.InvoiceDate = inv.InvoiceDate.Format(time.DateOnly)
	}

	return resp
}

func toCreatedList(created []invoice.Created) []createdResponse {
	resp := make([]createdResponse, len(created))
	for i, c := range created {
		resp[i] = createdResponse{ID: c.ID, DisplayName: c.DisplayName, Year: c.Year, Month: c.Month}
	}

	return resp
}

func toTreeResponse(tree invoice.Tree) map[string]map[string][]entryResponse {
	resp := make(map[string]map[string][]entryResponse, len(tree))

	for year, months := range tree {
		resp[year] = make(map[string][]entryResponse, len(months))

		for month, entries := range months {
			list := make([]entryResponse, len(entries))
			for i, e := range entries {
				list[i] = entryResponse{ID: e.ID, DisplayName: e.DisplayName}
			}

			resp[year][month] = list
		}
	}

	return resp
}
