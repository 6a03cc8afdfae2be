package income_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/facturas/internal/importer"
	"github.com/MrJamesThe3rd/facturas/internal/importer/ledger"
	"github.com/MrJamesThe3rd/facturas/internal/income"
	"github.com/MrJamesThe3rd/facturas/internal/invoice"
)

type mocks struct {
	repo     *income.MockRepository
	invoices *income.MockInvoiceLister
	ledger   *income.MockLedgerImporter
}

func newService(t *testing.T) (*income.Service, mocks) {
	t.Helper()

	ctrl := gomock.NewController(t)
	m := mocks{
		repo:     income.NewMockRepository(ctrl),
		invoices: income.NewMockInvoiceLister(ctrl),
		ledger:   income.NewMockLedgerImporter(ctrl),
	}

	return income.NewService(m.repo, m.invoices, m.ledger, income.DefaultOtherExpenseFloor), m
}

func TestService_YearSummary_EmptyYear(t *testing.T) {
	svc, m := newService(t)
	ctx := context.Background()

	m.repo.EXPECT().ListMonths(ctx, "2026").Return(nil, nil)
	m.invoices.EXPECT().ListByYear(ctx, "2026").Return(nil, nil)
	m.repo.EXPECT().GetBalance(ctx, "2026").Return(&income.Balance{}, nil)

	got, err := svc.YearSummary(ctx, "2026")
	require.NoError(t, err)

	require.Len(t, got.Months, 12)

	for key, month := range got.Months {
		assert.Equal(t, int64(0), month.IncomeCents, key)
		assert.Equal(t, int64(80000), month.OtherExpenseCents, key)
		assert.Equal(t, int64(-80000), month.DiffCents, key)
	}

	assert.Equal(t, int64(12*80000), got.Totals.OtherExpenseCents)
	assert.Equal(t, int64(-12*80000), got.Totals.DiffCents)
}

func TestService_YearSummary(t *testing.T) {
	svc, m := newService(t)
	ctx := context.Background()

	m.repo.EXPECT().ListMonths(ctx, "2026").Return([]income.MonthRecord{
		{Month: "01", IncomeCents: new(int64(500000)), OtherExpenseCents: new(int64(120000)), BankExpenseCents: new(int64(40000))},
		{Month: "02", IncomeCents: new(int64(100000)), OtherExpenseCents: new(int64(1000))},
	}, nil)
	m.invoices.EXPECT().ListByYear(ctx, "2026").Return([]*invoice.Invoice{
		{Month: "01", TotalAmount: 12100},
		{Month: "01", TotalAmount: 2000},
		{Month: "03", TotalAmount: 500},
	}, nil)
	m.repo.EXPECT().GetBalance(ctx, "2026").Return(&income.Balance{InitialCents: 100, FinalCents: 300, DiffCents: 200}, nil)

	got, err := svc.YearSummary(ctx, "2026")
	require.NoError(t, err)

	type testCase struct {
		month string
		want  income.Month
	}

	tests := []testCase{
		{
			month: "01",
			want: income.Month{
				ExpensesCents:     14100,
				IncomeCents:       500000,
				OtherExpenseCents: 120000,
				BankExpenseCents:  40000,
				DiffCents:         500000 - (14100 + 120000),
				UnreconciledCents: 40000 - 14100,
			},
		},
		{
			month: "02",
			want: income.Month{
				IncomeCents:       100000,
				OtherExpenseCents: 80000,
				DiffCents:         100000 - 80000,
			},
		},
		{
			month: "03",
			want: income.Month{
				ExpensesCents:     500,
				OtherExpenseCents: 80000,
				DiffCents:         -80500,
				UnreconciledCents: -500,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.month, func(t *testing.T) {
			assert.Equal(t, tt.want, got.Months[tt.month])
		})
	}

	assert.Equal(t, int64(14600), got.Totals.ExpensesCents)
	assert.Equal(t, int64(600000), got.Totals.IncomeCents)
	assert.Equal(t, income.Balance{InitialCents: 100, FinalCents: 300, DiffCents: 200}, got.Balance)
}

func TestService_YearSummary_InvalidYear(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.YearSummary(context.Background(), "26")
	assert.ErrorIs(t, err, income.ErrInvalidPeriod)
}

func TestService_SaveMonth(t *testing.T) {
	type testCase struct {
		name    string
		year    string
		month   string
		in      income.MonthInput
		setup   func(m mocks)
		wantErr error
	}

	ctx := context.Background()
	storeErr := errors.New("db down")

	tests := []testCase{
		{
			name:  "NormalizesMonth",
			year:  "2026",
			month: "3",
			in:    income.MonthInput{IncomeCents: new(int64(1000))},
			setup: func(m mocks) {
				m.repo.EXPECT().UpsertMonth(ctx, "2026", "03", income.MonthInput{IncomeCents: new(int64(1000))}).Return(nil)
			},
		},
		{
			name:    "InvalidMonth",
			year:    "2026",
			month:   "13",
			in:      income.MonthInput{IncomeCents: new(int64(1000))},
			wantErr: income.ErrInvalidPeriod,
		},
		{
			name:    "InvalidYear",
			year:    "abcd",
			month:   "01",
			wantErr: income.ErrInvalidPeriod,
		},
		{
			name:  "NothingToSave",
			year:  "2026",
			month: "01",
		},
		{
			name:  "StoreError",
			year:  "2026",
			month: "12",
			in:    income.MonthInput{OtherExpenseCents: new(int64(0))},
			setup: func(m mocks) {
				m.repo.EXPECT().UpsertMonth(ctx, "2026", "12", gomock.Any()).Return(storeErr)
			},
			wantErr: storeErr,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newService(t)
			if tt.setup != nil {
				tt.setup(m)
			}

			err := svc.SaveMonth(ctx, tt.year, tt.month, tt.in)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			assert.NoError(t, err)
		})
	}
}

func TestService_SaveBalances(t *testing.T) {
	svc, m := newService(t)
	ctx := context.Background()

	in := income.BalanceInput{FinalCents: new(int64(5000))}
	m.repo.EXPECT().UpsertBalance(ctx, "2026", in).Return(&income.Balance{InitialCents: 1000, FinalCents: 5000, DiffCents: 4000}, nil)

	got, err := svc.SaveBalances(ctx, "2026", in)
	require.NoError(t, err)
	assert.Equal(t, int64(4000), got.DiffCents)

	m.repo.EXPECT().GetBalance(ctx, "2026").Return(&income.Balance{InitialCents: 1000, FinalCents: 5000, DiffCents: 4000}, nil)

	got, err = svc.SaveBalances(ctx, "2026", income.BalanceInput{})
	require.NoError(t, err)
	assert.Equal(t, int64(1000), got.InitialCents)
}

func TestService_ImportLedger(t *testing.T) {
	svc, m := newService(t)
	ctx := context.Background()
	body := strings.NewReader("ignored")

	day := func(y int, mo time.Month, d int) time.Time {
		return time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
	}

	m.ledger.EXPECT().Import(importer.FormatCSV, body).Return([]ledger.Movement{
		{Date: day(2026, time.February, 3), AmountCents: 150000},
		{Date: day(2026, time.January, 15), AmountCents: 500000},
		{Date: day(2026, time.January, 31), AmountCents: -29400},
		{Date: day(2026, time.January, 20), AmountCents: -600},
	}, nil)

	m.repo.EXPECT().ApplyLedger(ctx, []income.LedgerMonth{
		{Year: "2026", Month: "01", IncomeCents: 500000, BankExpenseCents: 30000},
		{Year: "2026", Month: "02", IncomeCents: 150000},
	}).Return(nil)

	got, err := svc.ImportLedger(ctx, importer.FormatCSV, body)
	require.NoError(t, err)
	assert.Equal(t, &income.ImportResult{MonthsUpdated: 2, MovementsProcessed: 4}, got)
}

func TestService_ImportLedger_ParseError(t *testing.T) {
	svc, m := newService(t)
	body := strings.NewReader("")

	m.ledger.EXPECT().Import(importer.FormatXLSX, body).Return(nil, importer.ErrNoHeader)

	_, err := svc.ImportLedger(context.Background(), importer.FormatXLSX, body)
	assert.ErrorIs(t, err, importer.ErrNoHeader)
}
