package main

import (
	"context"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/facturas/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/facturas/internal/app"
	"github.com/MrJamesThe3rd/facturas/internal/config"
)

type model struct {
	app *app.App

	currentView View

	invoicesView view.InvoicesModel
	uploadView   view.UploadModel
	incomeView   view.IncomeModel
	ledgerView   view.LedgerModel
	exportView   view.ExportModel
}

type View int

const (
	ViewMenu     View = 0
	ViewInvoices View = 1
	ViewUpload   View = 2
	ViewIncome   View = 3
	ViewLedger   View = 4
	ViewExport   View = 5
)

func initialModel() model {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Log lines would tear the alt screen.
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))

	a, err := app.New(context.Background(), cfg)
	if err != nil {
		slog.New(slog.NewTextHandler(os.Stderr, nil)).Error("failed to start", "error", err)
		os.Exit(1)
	}

	return model{
		app:          a,
		currentView:  ViewMenu,
		invoicesView: view.NewInvoicesModel(a.Invoices),
		uploadView:   view.NewUploadModel(a.Invoices),
		incomeView:   view.NewIncomeModel(a.Income),
		ledgerView:   view.NewLedgerModel(a.Income),
		exportView:   view.NewExportModel(a.Export),
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.currentView == ViewMenu {
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewInvoices
				m.invoicesView = view.NewInvoicesModel(m.app.Invoices)

				return m, m.invoicesView.Init()
			case "2":
				m.currentView = ViewUpload
				m.uploadView = view.NewUploadModel(m.app.Invoices)

				return m, m.uploadView.Init()
			case "3":
				m.currentView = ViewIncome
				m.incomeView = view.NewIncomeModel(m.app.Income)

				return m, m.incomeView.Init()
			case "4":
				m.currentView = ViewLedger
				m.ledgerView = view.NewLedgerModel(m.app.Income)

				return m, m.ledgerView.Init()
			case "5":
				m.currentView = ViewExport
				m.exportView = view.NewExportModel(m.app.Export)

				return m, m.exportView.Init()
			}
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewInvoices:
		var newModel tea.Model
		newModel, cmd = m.invoicesView.Update(msg)
		m.invoicesView = newModel.(view.InvoicesModel)
	case ViewUpload:
		var newModel tea.Model
		newModel, cmd = m.uploadView.Update(msg)
		m.uploadView = newModel.(view.UploadModel)
	case ViewIncome:
		var newModel tea.Model
		newModel, cmd = m.incomeView.Update(msg)
		m.incomeView = newModel.(view.IncomeModel)
	case ViewLedger:
		var newModel tea.Model
		newModel, cmd = m.ledgerView.Update(msg)
		m.ledgerView = newModel.(view.LedgerModel)
	case ViewExport:
		var newModel tea.Model
		newModel, cmd = m.exportView.Update(msg)
		m.exportView = newModel.(view.ExportModel)
	}

	return m, cmd
}

func (m model) View() string {
	switch m.currentView {
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			"Facturas TUI\n\n" +
				"1. Browse Invoices\n" +
				"2. Upload Invoice\n" +
				"3. Income & Balance\n" +
				"4. Import Bank Ledger\n" +
				"5. Export Year\n\n" +
				"q. Quit",
		)
	case ViewInvoices:
		return m.invoicesView.View()
	case ViewUpload:
		return m.uploadView.View()
	case ViewIncome:
		return m.incomeView.View()
	case ViewLedger:
		return m.ledgerView.View()
	case ViewExport:
		return m.exportView.View()
	}

	return "Unknown View"
}

func main() {
	m := initialModel()
	defer m.app.Close()

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		slog.New(slog.NewTextHandler(os.Stderr, nil)).Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
