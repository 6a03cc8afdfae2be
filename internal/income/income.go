package income

// Month is one row of the yearly income view. All amounts are in cents.
type Month struct {
	ExpensesCents     int64 // sum of invoice totals of the month
	IncomeCents       int64
	OtherExpenseCents int64
	BankExpenseCents  int64 // outflows from the last ledger import
	DiffCents         int64 // income - (expenses + other)
	UnreconciledCents int64 // bank - expenses
}

func (m *Month) add(o Month) {
	m.ExpensesCents += o.ExpensesCents
	m.IncomeCents += o.IncomeCents
	m.OtherExpenseCents += o.OtherExpenseCents
	m.BankExpenseCents += o.BankExpenseCents
	m.DiffCents += o.DiffCents
	m.UnreconciledCents += o.UnreconciledCents
}

// Balance is the opening and closing money of a year.
type Balance struct {
	InitialCents int64
	FinalCents   int64
	DiffCents    int64 // final - initial
}

// Summary is the income view of a year. Months always holds the keys "01" to "12".
type Summary struct {
	Year    string
	Months  map[string]Month
	Totals  Month
	Balance Balance
}

// MonthRecord is what is stored for a month. Nil fields were never set.
type MonthRecord struct {
	Month             string
	IncomeCents       *int64
	OtherExpenseCents *int64
	BankExpenseCents  *int64
}

// MonthInput is a partial update: nil fields are left untouched.
type MonthInput struct {
	IncomeCents       *int64
	OtherExpenseCents *int64
}

// BalanceInput is a partial update: nil fields are left untouched.
type BalanceInput struct {
	InitialCents *int64
	FinalCents   *int64
}

// LedgerMonth is what a ledger import writes for one month.
type LedgerMonth struct {
	Year             string
	Month            string
	IncomeCents      int64
	BankExpenseCents int64
}

type ImportResult struct {
	MonthsUpdated      int
	MovementsProcessed int
}
