package view

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/bubbles/filepicker"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/facturas/internal/bucket"
	"github.com/MrJamesThe3rd/facturas/internal/invoice"
)

type uploadState int

const (
	uploadStateFilePick uploadState = iota
	uploadStateMeta
	uploadStateSaving
	uploadStateResult
)

type UploadModel struct {
	CommonModel
	invoiceService *invoice.Service

	state      uploadState
	filePicker filepicker.Model
	form       *huh.Form
	path       string
	meta       *invoice.Metadata

	status string
	err    error
}

func NewUploadModel(svc *invoice.Service) UploadModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.AllowedTypes = []string{".pdf", ".PDF", ".jpg", ".jpeg", ".JPG", ".png", ".PNG"}
	fp.ShowHidden = false
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.SetHeight(15)

	return UploadModel{
		invoiceService: svc,
		filePicker:     fp,
	}
}

func (m UploadModel) Title() string { return "Subir factura" }

func (m UploadModel) ShortHelp() string {
	if m.state == uploadStateMeta {
		return "Navigate form | Esc: pick another file"
	}

	return "Esc: back | Enter: select"
}

func (m UploadModel) Init() tea.Cmd {
	return m.filePicker.Init()
}

func (m UploadModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m.handleEsc()
		}

	case uploadResultMsg:
		m.state = uploadStateResult
		m.err = msg.err

		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
			return m, nil
		}

		m.status = fmt.Sprintf("Saved %s in %s %s.", msg.created.DisplayName, bucket.MonthName(msg.created.Month), msg.created.Year)

		return m, nil
	}

	switch m.state {
	case uploadStateFilePick:
		var cmd tea.Cmd
		m.filePicker, cmd = m.filePicker.Update(msg)

		if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
			m.path = path
			m.meta = &invoice.Metadata{DisplayName: filepath.Base(path)}
			m.form = metadataForm(m.meta)
			m.state = uploadStateMeta

			return m, m.form.Init()
		}

		return m, cmd

	case uploadStateMeta:
		form, cmd := m.form.Update(msg)
		if f, ok := form.(*huh.Form); ok {
			m.form = f
		}

		if m.form.State != huh.StateCompleted {
			return m, cmd
		}

		m.state = uploadStateSaving
		m.status = fmt.Sprintf("Uploading %s...", filepath.Base(m.path))

		return m, m.uploadCmd(m.path, *m.meta)
	}

	return m, nil
}

func (m UploadModel) handleEsc() (tea.Model, tea.Cmd) {
	switch m.state {
	case uploadStateMeta, uploadStateResult:
		m.state = uploadStateFilePick
		m.form = nil
		m.err = nil
		m.status = ""

		return m, m.filePicker.Init()
	case uploadStateSaving:
		return m, nil
	}

	return m, Back
}

func (m UploadModel) View() string {
	switch m.state {
	case uploadStateFilePick:
		return pageStyle.Render(fmt.Sprintf("Select invoice file:\n\n%s", m.filePicker.View()))
	case uploadStateMeta:
		return pageStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
			accentStyle.Render(filepath.Base(m.path)),
			"",
			m.form.View(),
		))
	case uploadStateSaving:
		return lipgloss.NewStyle().Padding(2).Render(m.status)
	case uploadStateResult:
		style := okStyle
		if m.err != nil {
			style = errorStyle
		}

		return lipgloss.NewStyle().Padding(2).Render(style.Render(m.status) + "\n\n(Esc to upload another)")
	}

	return ""
}

type uploadResultMsg struct {
	created *invoice.Created
	err     error
}

func (m UploadModel) uploadCmd(path string, meta invoice.Metadata) tea.Cmd {
	return func() tea.Msg {
		data, err := os.ReadFile(path)
		if err != nil {
			return uploadResultMsg{err: err}
		}

		ctx, cancel := DbCtx()
		defer cancel()

		created, err := m.invoiceService.Create(ctx, invoice.Upload{
			Data:     data,
			Filename: filepath.Base(path),
			Meta:     meta,
		})

		return uploadResultMsg{created: created, err: err}
	}
}
