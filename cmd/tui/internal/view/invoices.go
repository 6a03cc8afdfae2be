package view

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/facturas/internal/bucket"
	"github.com/MrJamesThe3rd/facturas/internal/invoice"
)

type invoicesState int

const (
	invoicesStatePeriod invoicesState = iota
	invoicesStateBrowse
	invoicesStateEdit
	invoicesStateConfirm
)

type InvoicesModel struct {
	CommonModel
	invoiceService *invoice.Service

	state    invoicesState
	picker   PeriodPicker
	table    table.Model
	invoices []*invoice.Invoice
	form     *huh.Form

	year  string
	month string

	loading bool
	err     error
	status  string

	// Form bindings live behind pointers so they survive the model being copied.
	meta       *invoice.Metadata
	confirmed  *bool
	deleteYear bool
}

func NewInvoicesModel(svc *invoice.Service) InvoicesModel {
	columns := []table.Column{
		{Title: "Fecha", Width: 10},
		{Title: "Número", Width: 12},
		{Title: "NIF", Width: 10},
		{Title: "Razón social", Width: 24},
		{Title: "Categoría", Width: 20},
		{Title: "Total", Width: 10},
		{Title: "Archivo", Width: 24},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
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

	return InvoicesModel{
		invoiceService: svc,
		picker:         NewPeriodPicker(true),
		table:          t,
	}
}

func (m InvoicesModel) Title() string { return "Facturas" }

func (m InvoicesModel) ShortHelp() string {
	switch m.state {
	case invoicesStateBrowse:
		return "Esc: back | e: edit | x: delete | D: delete year | r: refresh"
	case invoicesStateEdit, invoicesStateConfirm:
		return "Navigate form | Esc: cancel"
	}

	return "Esc: back | Enter: confirm"
}

func (m InvoicesModel) Init() tea.Cmd {
	return m.picker.Init()
}

func (m InvoicesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case PeriodSelectedMsg:
		m.year = msg.Year
		m.month = msg.Month
		m.state = invoicesStateBrowse
		m.loading = true

		return m, m.loadCmd()

	case loadInvoicesMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.err = nil
		m.invoices = msg.invoices
		m.refreshTable()

		return m, nil

	case invoiceActionMsg:
		m.status = msg.status
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
		}

		m.state = invoicesStateBrowse
		m.form = nil
		m.table.Focus()

		return m, m.loadCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil
	}

	switch m.state {
	case invoicesStatePeriod:
		if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
			return m, Back
		}

		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)

		return m, cmd
	case invoicesStateBrowse:
		return m.updateBrowse(msg)
	case invoicesStateEdit, invoicesStateConfirm:
		return m.updateForm(msg)
	}

	return m, nil
}

func (m InvoicesModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			m.state = invoicesStatePeriod
			m.status = ""

			return m, nil
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "e":
			return m.enterEditMode()
		case "x":
			return m.enterConfirmMode(false)
		case "D":
			return m.enterConfirmMode(true)
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m InvoicesModel) current() *invoice.Invoice {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.invoices) {
		return nil
	}

	return m.invoices[idx]
}

func (m InvoicesModel) enterEditMode() (tea.Model, tea.Cmd) {
	inv := m.current()
	if inv == nil {
		return m, nil
	}

	m.meta = &invoice.Metadata{
		DisplayName:      inv.DisplayName,
		InvoiceDate:      inv.InvoiceDate.Format(time.DateOnly),
		InvoiceNumber:    inv.InvoiceNumber,
		NIF:              inv.NIF,
		LegalName:        inv.LegalName,
		BaseCategory:     inv.BaseCategory,
		BaseAmount:       FormatAmount(inv.BaseAmount),
		VATRate:          inv.VATRate,
		VATDeductible:    FormatAmount(inv.VATDeductible),
		VATNonDeductible: FormatAmount(inv.VATNonDeductible),
		TotalAmount:      FormatAmount(inv.TotalAmount),
		Fuel:             inv.Fuel,
	}

	m.form = metadataForm(m.meta)
	m.state = invoicesStateEdit
	m.table.Blur()

	return m, m.form.Init()
}

func (m InvoicesModel) enterConfirmMode(wholeYear bool) (tea.Model, tea.Cmd) {
	title := fmt.Sprintf("¿Borrar todas las facturas de %s?", m.year)

	if !wholeYear {
		inv := m.current()
		if inv == nil {
			return m, nil
		}

		title = fmt.Sprintf("¿Borrar %s?", inv.DisplayName)
	}

	m.confirmed = new(bool)
	m.deleteYear = wholeYear
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Affirmative("Sí").
				Negative("No").
				Value(m.confirmed),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = invoicesStateConfirm
	m.table.Blur()

	return m, m.form.Init()
}

func (m InvoicesModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = invoicesStateBrowse
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

	if m.state == invoicesStateEdit {
		return m, m.saveCmd()
	}

	if !*m.confirmed {
		m.state = invoicesStateBrowse
		m.form = nil
		m.table.Focus()

		return m, nil
	}

	if m.deleteYear {
		return m, m.deleteYearCmd()
	}

	return m, m.deleteCmd()
}

// metadataForm binds a huh form to meta. Amounts are typed the Spanish way.
func metadataForm(meta *invoice.Metadata) *huh.Form {
	categories := make([]huh.Option[string], 0, len(invoice.Categories))
	for _, c := range invoice.Categories {
		categories = append(categories, huh.NewOption(c, c))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Key("display_name").Title("Nombre").Value(&meta.DisplayName),
			huh.NewInput().Key("invoice_date").Title("Fecha").Placeholder("YYYY-MM-DD").Value(&meta.InvoiceDate),
			huh.NewInput().Key("invoice_number").Title("Número").Value(&meta.InvoiceNumber),
			huh.NewInput().Key("nif").Title("NIF").Value(&meta.NIF),
			huh.NewInput().Key("legal_name").Title("Razón social").Value(&meta.LegalName),
		),
		huh.NewGroup(
			huh.NewSelect[string]().Key("base_category").Title("Categoría").Options(categories...).Value(&meta.BaseCategory),
			huh.NewInput().Key("base_amount").Title("Base").Value(&meta.BaseAmount),
			huh.NewInput().Key("vat_rate").Title("Tipo IVA").Placeholder("21%").Value(&meta.VATRate),
			huh.NewInput().Key("vat_deductible").Title("IVA deducible").Value(&meta.VATDeductible),
			huh.NewInput().Key("vat_non_deductible").Title("IVA no deducible").Value(&meta.VATNonDeductible),
			huh.NewInput().Key("total_amount").Title("Total").Value(&meta.TotalAmount),
			huh.NewConfirm().Key("fuel").Title("Combustible").Affirmative("Sí").Negative("No").Value(&meta.Fuel),
		),
	).WithWidth(45).WithShowHelp(false)
}

func (m InvoicesModel) View() string {
	if m.state == invoicesStatePeriod {
		return pageStyle.Render(m.picker.View())
	}

	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading invoices...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	period := m.year
	if m.month != "" {
		period = fmt.Sprintf("%s %s", bucket.MonthName(m.month), m.year)
	}

	header := fmt.Sprintf("Facturas: %s (%d)", accentStyle.Render(period), len(m.invoices))

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		tableView,
	)

	if m.form != nil {
		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(48).
			Render(m.form.View())

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content = faintStyle.Render(m.status) + "\n" + content
	}

	return pageStyle.Render(content)
}

func (m *InvoicesModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.invoices))
	for _, inv := range m.invoices {
		rows = append(rows, table.Row{
			FormatDate(inv.InvoiceDate),
			inv.InvoiceNumber,
			inv.NIF,
			inv.LegalName,
			inv.BaseCategory,
			FormatAmount(inv.TotalAmount),
			inv.DisplayName,
		})
	}

	m.table.SetRows(rows)
}

// Messages

type loadInvoicesMsg struct {
	invoices []*invoice.Invoice
	err      error
}

type invoiceActionMsg struct {
	status string
	err    error
}

func (m InvoicesModel) loadCmd() tea.Cmd {
	year, month := m.year, m.month

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		all, err := m.invoiceService.ListByYear(ctx, year)
		if err != nil {
			return loadInvoicesMsg{err: err}
		}

		if month == "" {
			return loadInvoicesMsg{invoices: all}
		}

		var invoices []*invoice.Invoice

		for _, inv := range all {
			if inv.Month == month {
				invoices = append(invoices, inv)
			}
		}

		return loadInvoicesMsg{invoices: invoices}
	}
}

func (m InvoicesModel) saveCmd() tea.Cmd {
	inv := m.current()
	if inv == nil {
		return nil
	}

	id, meta := inv.ID, *m.meta

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		updated, err := m.invoiceService.Update(ctx, id, meta)
		if err != nil {
			return invoiceActionMsg{err: err}
		}

		return invoiceActionMsg{status: fmt.Sprintf("Saved %s.", updated.DisplayName)}
	}
}

func (m InvoicesModel) deleteCmd() tea.Cmd {
	inv := m.current()
	if inv == nil {
		return nil
	}

	id := inv.ID

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		name, err := m.invoiceService.Delete(ctx, id)
		if err != nil {
			return invoiceActionMsg{err: err}
		}

		return invoiceActionMsg{status: fmt.Sprintf("Deleted %s.", name)}
	}
}

const deleteYearTimeout = 2 * time.Minute

func (m InvoicesModel) deleteYearCmd() tea.Cmd {
	year := m.year

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), deleteYearTimeout)
		defer cancel()

		res, err := m.invoiceService.DeleteYear(ctx, year)
		if err != nil {
			return invoiceActionMsg{err: err}
		}

		return invoiceActionMsg{status: fmt.Sprintf("Deleted %d invoices of %s, %d failed.", res.Deleted, year, res.Failed)}
	}
}
