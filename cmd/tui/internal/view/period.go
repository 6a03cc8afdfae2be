package view

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/MrJamesThe3rd/facturas/internal/bucket"
)

// PeriodSelectedMsg is emitted when the user has entered a valid period.
// Month is empty when the picker was built without a month field or it was left blank.
type PeriodSelectedMsg struct {
	Year  string
	Month string
}

// PeriodPicker is a reusable component for entering a year and, optionally, a month.
type PeriodPicker struct {
	yearInput  textinput.Model
	monthInput textinput.Model
	withMonth  bool
	focusIndex int

	err error
}

// NewPeriodPicker creates a picker prefilled with the current year.
func NewPeriodPicker(withMonth bool) PeriodPicker {
	yi := textinput.New()
	yi.Placeholder = "YYYY"
	yi.CharLimit = 4
	yi.Width = 6
	yi.Prompt = "Año: "
	yi.SetValue(strconv.Itoa(time.Now().Year()))
	yi.Focus()

	mi := textinput.New()
	mi.Placeholder = "MM (vacío = todo el año)"
	mi.CharLimit = 2
	mi.Width = 26
	mi.Prompt = "Mes: "

	return PeriodPicker{
		yearInput:  yi,
		monthInput: mi,
		withMonth:  withMonth,
	}
}

func (m PeriodPicker) Init() tea.Cmd {
	return textinput.Blink
}

func (m PeriodPicker) Update(msg tea.Msg) (PeriodPicker, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "tab", "shift+tab":
			if !m.withMonth {
				return m, nil
			}

			m.focusIndex = (m.focusIndex + 1) % 2
			m.yearInput.Blur()
			m.monthInput.Blur()

			if m.focusIndex == 0 {
				m.yearInput.Focus()
				return m, textinput.Blink
			}

			m.monthInput.Focus()

			return m, textinput.Blink

		case "enter":
			sel, err := m.selected()
			if err != nil {
				m.err = err
				return m, nil
			}

			m.err = nil

			return m, func() tea.Msg { return sel }
		}
	}

	var cmds []tea.Cmd
	var c tea.Cmd

	m.yearInput, c = m.yearInput.Update(msg)
	cmds = append(cmds, c)

	if m.withMonth {
		m.monthInput, c = m.monthInput.Update(msg)
		cmds = append(cmds, c)
	}

	return m, tea.Batch(cmds...)
}

func (m PeriodPicker) selected() (PeriodSelectedMsg, error) {
	year := m.yearInput.Value()
	if !bucket.ValidYear(year) {
		return PeriodSelectedMsg{}, errors.New("invalid year (YYYY)")
	}

	if !m.withMonth || m.monthInput.Value() == "" {
		return PeriodSelectedMsg{Year: year}, nil
	}

	month, ok := bucket.NormalizeMonth(m.monthInput.Value())
	if !ok {
		return PeriodSelectedMsg{}, errors.New("invalid month (1-12)")
	}

	return PeriodSelectedMsg{Year: year, Month: month}, nil
}

func (m PeriodPicker) View() string {
	errStr := ""
	if m.err != nil {
		errStr = errorStyle.Render(fmt.Sprintf("\n\nError: %v", m.err))
	}

	if !m.withMonth {
		return fmt.Sprintf("Select year:\n\n%s\n\n(Enter to confirm, Esc to back)%s", m.yearInput.View(), errStr)
	}

	return fmt.Sprintf(
		"Select period:\n\n%s\n%s\n\n(Enter to confirm, Tab to switch, Esc to back)%s",
		m.yearInput.View(),
		m.monthInput.View(),
		errStr,
	)
}

