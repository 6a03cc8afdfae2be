package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/facturas/internal/bucket"
	"github.com/MrJamesThe3rd/facturas/internal/export"
	"github.com/MrJamesThe3rd/facturas/internal/income"
	"github.com/MrJamesThe3rd/facturas/internal/money"
)

type incomeState int

const (
	incomeStateYear incomeState = iota
	incomeStateBrowse
	incomeStateEditMonth
	incomeStateEditBalance
)

type IncomeModel struct {
	CommonModel
	incomeService *income.Service

	state   incomeState
	picker  PeriodPicker
	table   table.Model
	summary *income.Summary
	form    *huh.Form
	year    string

	loading bool
	err     error
	status  string

	// Form bindings, as typed.
	first  *string
	second *string
}

func NewIncomeModel(svc *income.Service) IncomeModel {
	columns := []table.Column{
		{Title: "Mes", Width: 11},
		{Title: "Ingresos", Width: 11},
		{Title: "Gastos", Width: 11},
		{Title: "Otros gastos", Width: 12},
		{Title: "Diferencia", Width: 11},
		{Title: "Gastos banco", Width: 12},
		{Title: "Sin conciliar", Width: 13},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(14),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return IncomeModel{
		incomeService: svc,
		picker:        NewPeriodPicker(false),
		table:         t,
	}
}

func (m IncomeModel) Title() string { return "Ingresos" }

func (m IncomeModel) ShortHelp() string {
	switch m.state {
	case incomeStateBrowse:
		return "Esc: back | e: edit month | b: edit balance | r: refresh"
	case incomeStateEditMonth, incomeStateEditBalance:
		return "Navigate form | Esc: cancel"
	}

	return "Esc: back | Enter: confirm"
}

func (m IncomeModel) Init() tea.Cmd {
	return m.picker.Init()
}

func (m IncomeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case PeriodSelectedMsg:
		m.year = msg.Year
		m.state = incomeStateBrowse
		m.loading = true

		return m, m.loadCmd()

	case loadSummaryMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.err = nil
		m.summary = msg.summary
		m.refreshTable()

		return m, nil

	case incomeSaveMsg:
		m.status = ""
		if msg.err != nil {
			m.status = fmt.Sprintf("Error saving: %v", msg.err)
		}

		m.state = incomeStateBrowse
		m.form = nil
		m.table.Focus()

		return m, m.loadCmd()
	}

	switch m.state {
	case incomeStateYear:
		if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
			return m, Back
		}

		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)

		return m, cmd
	case incomeStateBrowse:
		return m.updateBrowse(msg)
	case incomeStateEditMonth, incomeStateEditBalance:
		return m.updateForm(msg)
	}

	return m, nil
}

func (m IncomeModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			m.state = incomeStateYear
			m.status = ""

			return m, nil
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "e":
			return m.enterMonthEdit()
		case "b":
			return m.enterBalanceEdit()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

// selectedMonth is the month key under the cursor, empty on the totals row.
func (m IncomeModel) selectedMonth() string {
	months := bucket.Months()

	idx := m.table.Cursor()
	if idx < 0 || idx >= len(months) {
		return ""
	}

	return months[idx]
}

func (m IncomeModel) enterMonthEdit() (tea.Model, tea.Cmd) {
	key := m.selectedMonth()
	if key == "" || m.summary == nil {
		return m, nil
	}

	month := m.summary.Months[key]
	m.first = new(FormatAmount(month.IncomeCents))
	m.second = new(FormatAmount(month.OtherExpenseCents))

	m.form = amountsForm(
		fmt.Sprintf("%s %s", bucket.MonthName(key), m.year),
		"Ingresos", m.first,
		"Otros gastos", m.second,
	)
	m.state = incomeStateEditMonth
	m.table.Blur()

	return m, m.form.Init()
}

func (m IncomeModel) enterBalanceEdit() (tea.Model, tea.Cmd) {
	if m.summary == nil {
		return m, nil
	}

	m.first = new(FormatAmount(m.summary.Balance.InitialCents))
	m.second = new(FormatAmount(m.summary.Balance.FinalCents))

	m.form = amountsForm(
		fmt.Sprintf("Saldo %s", m.year),
		"Saldo inicial", m.first,
		"Saldo final", m.second,
	)
	m.state = incomeStateEditBalance
	m.table.Blur()

	return m, m.form.Init()
}

func amountsForm(title, firstLabel string, first *string, secondLabel string, second *string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().Title(title),
			huh.NewInput().Title(firstLabel).Value(first).Validate(validAmount),
			huh.NewInput().Title(secondLabel).Value(second).Validate(validAmount),
		),
	).WithWidth(40).WithShowHelp(false)
}

func validAmount(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}

	_, err := money.ParseCents(s)

	return err
}

func (m IncomeModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = incomeStateBrowse
		m.form = nil
		m.table.Focus()

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	if m.state == incomeStateEditMonth {
		return m, m.saveMonthCmd(m.selectedMonth())
	}

	return m, m.saveBalanceCmd()
}

func (m IncomeModel) View() string {
	if m.state == incomeStateYear {
		return pageStyle.Render(m.picker.View())
	}

	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading summary...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render("Ingresos "+accentStyle.Render(m.year)),
		tableView,
		m.viewBalance(),
	)

	if m.form != nil {
		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(44).
			Render(m.form.View())

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content = faintStyle.Render(m.status) + "\n" + content
	}

	return pageStyle.Render(content)
}

func (m IncomeModel) viewBalance() string {
	if m.summary == nil {
		return ""
	}

	b := m.summary.Balance

	return lipgloss.NewStyle().PaddingTop(1).Render(fmt.Sprintf(
		"Saldo inicial: %s | Saldo final: %s | Diferencia: %s",
		FormatAmount(b.InitialCents),
		FormatAmount(b.FinalCents),
		accentStyle.Render(FormatAmount(b.DiffCents)),
	))
}

func (m *IncomeModel) refreshTable() {
	row := func(label string, month income.Month) table.Row {
		return table.Row{
			label,
			FormatAmount(month.IncomeCents),
			FormatAmount(month.ExpensesCents),
			FormatAmount(month.OtherExpenseCents),
			FormatAmount(month.DiffCents),
			FormatAmount(month.BankExpenseCents),
			FormatAmount(month.UnreconciledCents),
		}
	}

	rows := make([]table.Row, 0, 13)
	for _, key := range bucket.Months() {
		rows = append(rows, row(bucket.MonthName(key), m.summary.Months[key]))
	}

	rows = append(rows, row(export.TotalsLabel, m.summary.Totals))

	m.table.SetRows(rows)
}

// Messages

type loadSummaryMsg struct {
	summary *income.Summary
	err     error
}

type incomeSaveMsg struct {
	err error
}

func (m IncomeModel) loadCmd() tea.Cmd {
	year := m.year

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		summary, err := m.incomeService.YearSummary(ctx, year)

		return loadSummaryMsg{summary: summary, err: err}
	}
}

// typedCents reads an amount field. Blank means leave the stored value alone.
func typedCents(s string) (*int64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}

	cents, err := money.ParseCents(s)
	if err != nil {
		return nil, err
	}

	return &cents, nil
}

func (m IncomeModel) saveMonthCmd(month string) tea.Cmd {
	year, first, second := m.year, *m.first, *m.second

	return func() tea.Msg {
		incomeCents, err := typedCents(first)
		if err != nil {
			return incomeSaveMsg{err: err}
		}

		otherCents, err := typedCents(second)
		if err != nil {
			return incomeSaveMsg{err: err}
		}

		ctx, cancel := DbCtx()
		defer cancel()

		err = m.incomeService.SaveMonth(ctx, year, month, income.MonthInput{
			IncomeCents:       incomeCents,
			OtherExpenseCents: otherCents,
		})

		return incomeSaveMsg{err: err}
	}
}

func (m IncomeModel) saveBalanceCmd() tea.Cmd {
	year, first, second := m.year, *m.first, *m.second

	return func() tea.Msg {
		initial, err := typedCents(first)
		if err != nil {
			return incomeSaveMsg{err: err}
		}

		final, err := typedCents(second)
		if err != nil {
			return incomeSaveMsg{err: err}
		}

		ctx, cancel := DbCtx()
		defer cancel()

		_, err = m.incomeService.SaveBalances(ctx, year, income.BalanceInput{
			InitialCents: initial,
			FinalCents:   final,
		})

		return incomeSaveMsg{err: err}
	}
}
