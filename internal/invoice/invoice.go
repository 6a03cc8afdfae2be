package invoice

import (
	"time"

	"github.com/google/uuid"
)

// Categories are the base tax categories an invoice can be booked under, in export column order.
var Categories = []string{
	"Compras",
	"Transportes y fletes",
	"Agentes mediadores",
	"Sueldos y salarios",
	"Seg. Social y autonomos",
	"Trabajos realizados por otras empresas",
	"Energía y agua de instalaciones",
	"Alquileres de locales",
	"Canon explotaciones",
	"Gastos financieros",
	"Primas seguros, bienes o productos",
	"Tributos no estatales",
	"Reparaciones y conservación",
	"Otros gastos",
}

// IsCategory reports whether c is one of Categories.
func IsCategory(c string) bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}

	return false
}

// Invoice is an uploaded invoice file and its fiscal metadata.
type Invoice struct {
	ID           uuid.UUID
	OriginalName string
	DisplayName  string
	BlobRef      string
	Extension    string
	ContentType  string
	Size         int64

	InvoiceDate      time.Time
	InvoiceNumber    string
	NIF              string
	LegalName        string
	BaseCategory     string
	BaseAmount       int64 // Amount in cents
	VATRate          string
	VATDeductible    int64 // Amount in cents
	VATNonDeductible int64 // Amount in cents
	TotalAmount      int64 // Amount in cents
	Fuel             bool

	Year  string
	Month string

	CreatedAt time.Time
	UpdatedAt *time.Time
}

// Metadata is the editable part of an invoice as typed by the user.
type Metadata struct {
	DisplayName      string
	InvoiceDate      string
	InvoiceNumber    string
	NIF              string
	LegalName        string
	BaseCategory     string
	BaseAmount       string
	VATRate          string
	VATDeductible    string
	VATNonDeductible string
	TotalAmount      string
	Fuel             bool
}

// Amounts are the money fields of Metadata once parsed.
type Amounts struct {
	Base          int64
	Deductible    int64
	NonDeductible int64
	Total         int64
}

// Upload is one file of a create batch.
type Upload struct {
	Data     []byte
	Filename string
	Meta     Metadata
}

// Created identifies a newly stored invoice and the bucket it landed in.
type Created struct {
	ID          uuid.UUID
	DisplayName string
	Year        string
	Month       string
}

type ListEntry struct {
	ID          uuid.UUID
	DisplayName string
}

// Tree groups invoices by year then month. Months and years without invoices are absent.
type Tree map[string]map[string][]ListEntry

type YearDeleteResult struct {
	Deleted int
	Failed  int
}
