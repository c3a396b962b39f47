package view

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Timeframe is a predefined or custom date range.
type Timeframe int

const (
	TimeframeThisMonth Timeframe = iota
	TimeframeLastMonth
	TimeframeThisQuarter
	TimeframeThisYear
	TimeframeLastYear
	TimeframeAll
	TimeframeCustom
)

func (t Timeframe) String() string {
	switch t {
	case TimeframeThisMonth:
		return "This Month"
	case TimeframeLastMonth:
		return "Last Month"
	case TimeframeThisQuarter:
		return "This Quarter"
	case TimeframeThisYear:
		return "This Year"
	case TimeframeLastYear:
		return "Last Year"
	case TimeframeAll:
		return "All Time"
	case TimeframeCustom:
		return "Custom Range"
	}

	return "Unknown"
}

// Range returns the inclusive first and last day of t relative to now.
// TimeframeAll and TimeframeCustom have no fixed range and return zero times.
func (t Timeframe) Range(now time.Time) (time.Time, time.Time) {
	y, m, _ := now.Date()
	day := func(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

	switch t {
	case TimeframeThisMonth:
		return day(y, m, 1), day(y, m+1, 0)
	case TimeframeLastMonth:
		return day(y, m-1, 1), day(y, m, 0)
	case TimeframeThisQuarter:
		first := m - (m-1)%3
		return day(y, first, 1), day(y, first+3, 0)
	case TimeframeThisYear:
		return day(y, time.January, 1), day(y, time.December, 31)
	case TimeframeLastYear:
		return day(y-1, time.January, 1), day(y-1, time.December, 31)
	}

	return time.Time{}, time.Time{}
}

// TimeframeSelectedMsg is emitted once a range is chosen. Both bounds are nil for All Time.
type TimeframeSelectedMsg struct {
	Label string
	Start *time.Time
	End   *time.Time
}

type pickerState int

const (
	pickerStateSelect pickerState = iota
	pickerStateCustom
)

// TimeframePicker lets the user pick one of the predefined ranges or type a custom one.
type TimeframePicker struct {
	state    pickerState
	selected Timeframe

	startInput textinput.Model
	endInput   textinput.Model
	focusIndex int

	err error
}

func NewTimeframePicker(initial Timeframe) TimeframePicker {
	newInput := func(prompt string) textinput.Model {
		in := textinput.New()
		in.Placeholder = "YYYY-MM-DD"
		in.CharLimit = 10
		in.Width = 12
		in.Prompt = prompt

		return in
	}

	return TimeframePicker{
		selected:   initial,
		startInput: newInput("From: "),
		endInput:   newInput("To:   "),
	}
}

func (m TimeframePicker) Update(msg tea.Msg) (TimeframePicker, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if m.state == pickerStateSelect {
			return m.updateSelect(keyMsg)
		}

		return m.updateCustom(keyMsg)
	}

	return m, nil
}

func (m TimeframePicker) updateSelect(msg tea.KeyMsg) (TimeframePicker, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}
	case "down", "j":
		if m.selected < TimeframeCustom {
			m.selected++
		}
	case "enter":
		switch m.selected {
		case TimeframeCustom:
			m.state = pickerStateCustom
			m.focusIndex = 0
			m.startInput.Focus()

			return m, textinput.Blink
		case TimeframeAll:
			return m, selected(TimeframeAll.String(), nil, nil)
		}

		start, end := m.selected.Range(time.Now())

		return m, selected(m.selected.String(), &start, &end)
	}

	return m, nil
}

func (m TimeframePicker) updateCustom(msg tea.KeyMsg) (TimeframePicker, tea.Cmd) {
	switch msg.String() {
	case "tab", "shift+tab":
		m.focusIndex = 1 - m.focusIndex
		m.startInput.Blur()
		m.endInput.Blur()

		if m.focusIndex == 0 {
			m.startInput.Focus()
		} else {
			m.endInput.Focus()
		}

		return m, textinput.Blink

	case "enter":
		start, end, err := parseRange(m.startInput.Value(), m.endInput.Value())
		if err != nil {
			m.err = err
			return m, nil
		}

		m.err = nil
		label := fmt.Sprintf("%s to %s", FormatDate(start), FormatDate(end))

		return m, selected(label, &start, &end)

	case "esc":
		m.state = pickerStateSelect
		m.err = nil

		return m, nil
	}

	var cmd tea.Cmd
	if m.focusIndex == 0 {
		m.startInput, cmd = m.startInput.Update(msg)
	} else {
		m.endInput, cmd = m.endInput.Update(msg)
	}

	return m, cmd
}

func parseRange(from, to string) (time.Time, time.Time, error) {
	start, err := time.Parse(time.DateOnly, strings.TrimSpace(from))
	if err != nil {
		return time.Time{}, time.Time{}, errors.New("invalid start date (YYYY-MM-DD)")
	}

	end, err := time.Parse(time.DateOnly, strings.TrimSpace(to))
	if err != nil {
		return time.Time{}, time.Time{}, errors.New("invalid end date (YYYY-MM-DD)")
	}

	if end.Before(start) {
		return time.Time{}, time.Time{}, errors.New("end date is before start date")
	}

	return start, end, nil
}

func selected(label string, start, end *time.Time) tea.Cmd {
	return func() tea.Msg {
		return TimeframeSelectedMsg{Label: label, Start: start, End: end}
	}
}

func (m TimeframePicker) View() string {
	errStr := ""
	if m.err != nil {
		errStr = errorStyle.Render(fmt.Sprintf("\n\nError: %v", m.err))
	}

	if m.state == pickerStateCustom {
		return fmt.Sprintf(
			"Enter Custom Range:\n\n%s\n%s\n\n(Enter to confirm, Tab to switch, Esc to back)%s",
			m.startInput.View(),
			m.endInput.View(),
			errStr,
		)
	}

	var sb strings.Builder

	sb.WriteString("Select Timeframe:\n\n")

	for tf := TimeframeThisMonth; tf <= TimeframeCustom; tf++ {
		cursor := " "
		if m.selected == tf {
			cursor = ">"
		}

		fmt.Fprintf(&sb, "%s %s\n", cursor, tf)
	}

	sb.WriteString("\n(Enter to select, Esc to back)")

	return sb.String() + errStr
}

// IsSelecting reports whether the picker shows the predefined list rather than the custom inputs.
func (m TimeframePicker) IsSelecting() bool {
	return m.state == pickerStateSelect
}

func (m *TimeframePicker) Reset() {
	m.state = pickerStateSelect
	m.err = nil
	m.startInput.SetValue("")
	m.endInput.SetValue("")
}
