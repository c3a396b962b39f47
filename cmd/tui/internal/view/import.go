package view

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/getrich/internal/importer"
	"github.com/MrJamesThe3rd/getrich/internal/transaction"
)

const importTimeout = 2 * time.Minute

type importState int

const (
	importStateSourceSelect importState = iota
	importStateFilePick
	importStateImporting
	importStateConflicts
	importStateResult
)

type ImportModel struct {
	CommonModel
	txService     *transaction.Service
	importService *importer.Service

	state          importState
	filePicker     filepicker.Model
	selectedSource importer.Source
	sources        []importer.Source
	sourceCursor   int

	newParams    []transaction.CreateParams
	conflicts    []transaction.Conflict
	conflictList list.Model
	selected     map[int]bool

	status string
	err    error
}

func NewImportModel(txSvc *transaction.Service, impSvc *importer.Service) ImportModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.AllowedTypes = []string{".csv", ".CSV", ".txt"}
	fp.ShowHidden = false
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.SetHeight(15)

	return ImportModel{
		txService:     txSvc,
		importService: impSvc,
		filePicker:    fp,
		sources:       impSvc.Sources(),
		selected:      make(map[int]bool),
	}
}

func (m ImportModel) Title() string { return "Import Bank Statement" }

func (m ImportModel) ShortHelp() string {
	if m.state == importStateConflicts {
		return "Space: toggle | a: all | n: none | Enter: confirm | Esc: cancel"
	}

	return "Esc: back | Enter: select"
}

func (m ImportModel) Init() tea.Cmd {
	return m.filePicker.Init()
}

func (m ImportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m.handleEsc()
		}

		switch m.state {
		case importStateSourceSelect:
			return m.updateSourceSelect(msg)
		case importStateConflicts:
			return m.updateConflicts(msg)
		}

	case importResultMsg:
		if msg.err != nil {
			m.state = importStateResult
			m.err = msg.err
			m.status = fmt.Sprintf("Error: %v", msg.err)

			return m, expired(msg.err)
		}

		if len(msg.result.Conflicts) == 0 {
			m.state = importStateResult
			m.status = fmt.Sprintf("Imported %d transactions.", len(msg.result.Imported))

			return m, nil
		}

		m.newParams = msg.result.New
		m.conflicts = msg.result.Conflicts
		m.selected = make(map[int]bool)
		m.state = importStateConflicts

		items := make([]list.Item, len(m.conflicts))
		for i, c := range m.conflicts {
			items[i] = conflictItem{conflict: c, index: i}
		}

		m.conflictList = list.New(items, conflictDelegate{selected: m.selected}, 90, 20)
		m.conflictList.Title = fmt.Sprintf("%d possible duplicates, %d new entries", len(m.conflicts), len(m.newParams))
		m.conflictList.SetShowStatusBar(false)
		m.conflictList.SetFilteringEnabled(false)
		m.conflictList.SetShowHelp(false)

		return m, nil

	case confirmResultMsg:
		m.state = importStateResult
		if msg.err != nil {
			m.err = msg.err
			m.status = fmt.Sprintf("Error: %v", msg.err)

			return m, expired(msg.err)
		}

		m.status = fmt.Sprintf("Imported %d transactions.", msg.count)

		return m, nil
	}

	if m.state != importStateFilePick {
		return m, nil
	}

	var cmd tea.Cmd
	m.filePicker, cmd = m.filePicker.Update(msg)

	if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
		m.state = importStateImporting
		m.status = fmt.Sprintf("Importing from %s...", path)

		return m, m.importCmd(path)
	}

	return m, cmd
}

func (m ImportModel) handleEsc() (tea.Model, tea.Cmd) {
	switch m.state {
	case importStateFilePick:
		m.state = importStateSourceSelect
		return m, nil
	case importStateResult:
		m.state = importStateSourceSelect
		m.err = nil
		m.status = ""

		return m, nil
	case importStateConflicts:
		m.state = importStateSourceSelect
		m.conflicts = nil
		m.newParams = nil
		m.selected = make(map[int]bool)

		return m, nil
	}

	return m, Back
}

func (m ImportModel) updateSourceSelect(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyUp:
		if m.sourceCursor > 0 {
			m.sourceCursor--
		}
	case tea.KeyDown:
		if m.sourceCursor < len(m.sources)-1 {
			m.sourceCursor++
		}
	case tea.KeyEnter:
		if len(m.sources) == 0 {
			return m, nil
		}

		m.selectedSource = m.sources[m.sourceCursor]
		m.state = importStateFilePick

		return m, m.filePicker.Init()
	}

	return m, nil
}

func (m ImportModel) updateConflicts(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case " ":
		idx := m.conflictList.Index()
		m.selected[idx] = !m.selected[idx]

		return m, nil
	case "a":
		for i := range m.conflicts {
			m.selected[i] = true
		}

		return m, nil
	case "n":
		clear(m.selected)
		return m, nil
	case "enter":
		return m, m.confirmCmd()
	}

	var cmd tea.Cmd
	m.conflictList, cmd = m.conflictList.Update(msg)

	return m, cmd
}

func (m ImportModel) View() string {
	switch m.state {
	case importStateSourceSelect:
		return m.viewSourceSelect()
	case importStateFilePick:
		return m.viewFilePick()
	case importStateImporting:
		return lipgloss.NewStyle().Padding(2).Render(m.status)
	case importStateConflicts:
		return lipgloss.NewStyle().Padding(1).Render(
			m.conflictList.View() + "\n" + faintStyle.Render("Checked entries are imported even though they look like duplicates."),
		)
	case importStateResult:
		return m.viewResult()
	}

	return ""
}

func (m ImportModel) viewSourceSelect() string {
	s := "Select statement format:\n\n"

	for i, source := range m.sources {
		cursor := " "
		if i == m.sourceCursor {
			cursor = ">"
		}

		s += fmt.Sprintf("%s %s\n", cursor, string(source))
	}

	s += "\n" + faintStyle.Render("Categories learned from earlier edits are applied automatically.")

	return lipgloss.NewStyle().Padding(2).Render(s)
}

func (m ImportModel) viewFilePick() string {
	return lipgloss.NewStyle().Padding(1).Render(
		fmt.Sprintf("Select file to import (%s):\n\n%s", m.selectedSource, m.filePicker.View()),
	)
}

func (m ImportModel) viewResult() string {
	style := successStyle
	if m.err != nil {
		style = errorStyle
	}

	return lipgloss.NewStyle().Padding(2).Render(style.Render(m.status) + "\n\n(Esc to go back)")
}

// Messages

type importResultMsg struct {
	result *transaction.ImportResult
	err    error
}

type confirmResultMsg struct {
	count int
	err   error
}

func (m ImportModel) importCmd(path string) tea.Cmd {
	source := m.selectedSource
	impSvc := m.importService
	txSvc := m.txService

	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return importResultMsg{err: err}
		}
		defer f.Close()

		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		params, err := impSvc.Import(ctx, source, f)
		if err != nil {
			return importResultMsg{err: err}
		}

		result, err := txSvc.ImportBatch(ctx, params)
		if err != nil {
			return importResultMsg{err: err}
		}

		return importResultMsg{result: result}
	}
}

func (m ImportModel) confirmCmd() tea.Cmd {
	params := append([]transaction.CreateParams(nil), m.newParams...)

	for i, c := range m.conflicts {
		if m.selected[i] {
			params = append(params, c.Incoming)
		}
	}

	txSvc := m.txService

	return func() tea.Msg {
		if len(params) == 0 {
			return confirmResultMsg{}
		}

		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		txs, err := txSvc.CreateBatch(ctx, params)
		if err != nil {
			return confirmResultMsg{err: err}
		}

		return confirmResultMsg{count: len(txs)}
	}
}

// Conflict list item

type conflictItem struct {
	conflict transaction.Conflict
	index    int
}

func (i conflictItem) FilterValue() string { return i.conflict.Incoming.Description }

// Conflict list delegate

type conflictDelegate struct {
	selected map[int]bool
}

func (d conflictDelegate) Height() int                             { return 2 }
func (d conflictDelegate) Spacing() int                            { return 1 }
func (d conflictDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d conflictDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	item, ok := listItem.(conflictItem)
	if !ok {
		return
	}

	checkbox := "[ ]"
	if d.selected[item.index] {
		checkbox = "[x]"
	}

	cursor := "  "
	if index == m.Index() {
		cursor = accentStyle.Render("> ")
	}

	incoming := item.conflict.Incoming
	existing := item.conflict.Existing

	fmt.Fprintf(w, "%s%s %s  %s %12s  %s  [%s]\n",
		cursor, checkbox,
		FormatDate(incoming.Date),
		incoming.Type,
		FormatAmount(incoming.Amount),
		incoming.Description,
		incoming.Category,
	)

	fmt.Fprint(w, faintStyle.Render(fmt.Sprintf("      Existing: %s  %s %12s  %s  [%s]",
		FormatDate(existing.Date),
		existing.Type,
		FormatAmount(existing.Amount),
		existing.Description,
		existing.Category,
	)))
}
