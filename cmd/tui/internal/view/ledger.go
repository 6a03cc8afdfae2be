package view

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/facturas/internal/importer"
	"github.com/MrJamesThe3rd/facturas/internal/income"
)

const importTimeout = 2 * time.Minute

type ledgerState int

const (
	ledgerStateFormatSelect ledgerState = iota
	ledgerStateFilePick
	ledgerStateImporting
	ledgerStateResult
)

type LedgerModel struct {
	CommonModel
	incomeService *income.Service

	state          ledgerState
	filePicker     filepicker.Model
	spinner        spinner.Model
	formatOptions  []importer.Format
	formatCursor   int
	selectedFormat importer.Format

	status string
	err    error
}

func NewLedgerModel(svc *income.Service) LedgerModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.ShowHidden = false
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.SetHeight(15)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = accentStyle

	return LedgerModel{
		incomeService: svc,
		filePicker:    fp,
		spinner:       s,
		formatOptions: []importer.Format{importer.FormatXLSX, importer.FormatCSV},
	}
}

func (m LedgerModel) Title() string { return "Importar movimientos" }

func (m LedgerModel) ShortHelp() string {
	if m.state == ledgerStateImporting {
		return "Importing..."
	}

	return "Esc: back | Enter: select"
}

func (m LedgerModel) Init() tea.Cmd {
	return nil
}

func (m LedgerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m.handleEsc()
		}

		if m.state == ledgerStateFormatSelect {
			return m.updateFormatSelect(msg)
		}

	case ledgerResultMsg:
		m.state = ledgerStateResult
		m.err = msg.err

		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
			return m, nil
		}

		m.status = fmt.Sprintf("Processed %d movements, updated %d months.", msg.result.MovementsProcessed, msg.result.MonthsUpdated)

		return m, nil

	case spinner.TickMsg:
		if m.state != ledgerStateImporting {
			return m, nil
		}

		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd
	}

	if m.state != ledgerStateFilePick {
		return m, nil
	}

	var cmd tea.Cmd
	m.filePicker, cmd = m.filePicker.Update(msg)

	if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
		m.state = ledgerStateImporting
		m.status = fmt.Sprintf("Importing from %s...", path)

		return m, tea.Batch(m.spinner.Tick, m.importCmd(path))
	}

	return m, cmd
}

func (m LedgerModel) handleEsc() (tea.Model, tea.Cmd) {
	switch m.state {
	case ledgerStateFilePick:
		m.state = ledgerStateFormatSelect
		return m, nil
	case ledgerStateResult:
		m.state = ledgerStateFormatSelect
		m.err = nil
		m.status = ""

		return m, nil
	case ledgerStateImporting:
		return m, nil
	}

	return m, Back
}

func (m LedgerModel) updateFormatSelect(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyUp:
		if m.formatCursor > 0 {
			m.formatCursor--
		}
	case tea.KeyDown:
		if m.formatCursor < len(m.formatOptions)-1 {
			m.formatCursor++
		}
	case tea.KeyEnter:
		m.selectedFormat = m.formatOptions[m.formatCursor]
		m.filePicker.AllowedTypes = []string{"." + string(m.selectedFormat)}
		m.state = ledgerStateFilePick

		return m, m.filePicker.Init()
	}

	return m, nil
}

func (m LedgerModel) View() string {
	switch m.state {
	case ledgerStateFormatSelect:
		s := "Select ledger format:\n\n"

		for i, format := range m.formatOptions {
			cursor := " "
			if i == m.formatCursor {
				cursor = ">"
			}

			s += fmt.Sprintf("%s %s\n", cursor, string(format))
		}

		return lipgloss.NewStyle().Padding(2).Render(s)
	case ledgerStateFilePick:
		return pageStyle.Render(fmt.Sprintf("Select file to import (%s):\n\n%s", m.selectedFormat, m.filePicker.View()))
	case ledgerStateImporting:
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("%s %s", m.spinner.View(), m.status))
	case ledgerStateResult:
		style := okStyle
		if m.err != nil {
			style = errorStyle
		}

		return lipgloss.NewStyle().Padding(2).Render(style.Render(m.status) + "\n\n(Esc to go back)")
	}

	return ""
}

type ledgerResultMsg struct {
	result *income.ImportResult
	err    error
}

func (m LedgerModel) importCmd(path string) tea.Cmd {
	format := m.selectedFormat

	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return ledgerResultMsg{err: err}
		}
		defer f.Close()

		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		result, err := m.incomeService.ImportLedger(ctx, format, f)

		return ledgerResultMsg{result: result, err: err}
	}
}
