package income

import (
	"github.com/MrJamesThe3rd/facturas/internal/income"
)

type monthResponse struct {
	ExpensesCents     int64 `json:"expenses_cents"`
	IncomeCents       int64 `json:"income_cents"`
	OtherExpenseCents int64 `json:"other_expense_cents"`
	BankExpenseCents  int64 `json:"bank_expense_cents"`
	DiffCents         int64 `json:"diff_cents"`
	UnreconciledCents int64 `json:"unreconciled_cents"`
}

type balanceResponse struct {
	InitialCents int64 `json:"initial_cents"`
	FinalCents   int64 `json:"final_cents"`
	DiffCents    int64 `json:"diff_cents"`
}

type summaryResponse struct {
	Year    string                   `json:"year"`
	Months  map[string]monthResponse `json:"months"`
	Totals  monthResponse            `json:"totals"`
	Balance balanceResponse          `json:"balance"`
}

type importResponse struct {
	MonthsUpdated      int `json:"months_updated"`
	MovementsProcessed int `json:"movements_processed"`
}

func toMonthResponse(m income.Month) monthResponse {
	return monthResponse{
		ExpensesCents:     m.ExpensesCents,
		IncomeCents:       m.IncomeCents,
		OtherExpenseCents: m.OtherExpenseCents,
		BankExpenseCents:  m.BankExpenseCents,
		DiffCents:         m.DiffCents,
		UnreconciledCents: m.UnreconciledCents,
	}
}

func toBalanceResponse(b income.Balance) balanceResponse {
	return balanceResponse{
		InitialCents: b.InitialCents,
		FinalCents:   b.FinalCents,
		DiffCents:    b.DiffCents,
	}
}

func toSummaryResponse(s *income.Summary) summaryResponse {
	months := make(map[string]monthResponse, len(s.Months))
	for k, m := range s.Months {
		months[k] = toMonthResponse(m)
	}

	return summaryResponse{
		Year:    s.Year,
		Months:  months,
		Totals:  toMonthResponse(s.Totals),
		Balance: toBalanceResponse(s.Balance),
	}
}
