package view

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/getrich/internal/backend"
)

// SettingsDeps is what the settings screen reads and changes.
type SettingsDeps struct {
	Connection     func() (backend.Config, bool)
	SaveConnection func(backend.Config) error
	ClearCache     func() error
	User           *backend.User
	AIEnabled      bool
}

const (
	actionConnection = "connection"
	actionClearCache = "clear-cache"
	actionBack       = "back"
)

type SettingsModel struct {
	CommonModel
	deps SettingsDeps

	menu    *huh.Form
	setup   *SetupModel
	status  string
	failure bool
}

type cacheClearedMsg struct {
	err error
}

func NewSettingsModel(deps SettingsDeps) SettingsModel {
	return SettingsModel{deps: deps, menu: buildSettingsMenu()}
}

func buildSettingsMenu() *huh.Form {
	var action string

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Key("action").
				Title("Actions").
				Options(
					huh.NewOption("Edit database connection", actionConnection),
					huh.NewOption("Clear local cache", actionClearCache),
					huh.NewOption("Back to menu", actionBack),
				).
				Value(&action),
		),
	).WithWidth(50).WithShowHelp(false)
}

func (m SettingsModel) Title() string { return "Settings" }

func (m SettingsModel) ShortHelp() string {
	if m.setup != nil {
		return "Esc: cancel | Enter: next"
	}

	return "Esc: back | Enter: select"
}

func (m SettingsModel) Init() tea.Cmd {
	return m.menu.Init()
}

func (m SettingsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if cleared, ok := msg.(cacheClearedMsg); ok {
		m.failure = cleared.err != nil
		m.status = "Local cache cleared."

		if cleared.err != nil {
			m.status = fmt.Sprintf("Error clearing cache: %v", cleared.err)
		}

		m.menu = buildSettingsMenu()

		return m, m.menu.Init()
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		if m.setup == nil {
			return m, Back
		}

		m.setup = nil
		m.menu = buildSettingsMenu()

		return m, m.menu.Init()
	}

	if m.setup != nil {
		next, cmd := m.setup.Update(msg)
		setup := next.(SetupModel)
		m.setup = &setup

		return m, cmd
	}

	form, cmd := m.menu.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.menu = f
	}

	if m.menu.State != huh.StateCompleted {
		return m, cmd
	}

	switch m.menu.GetString("action") {
	case actionConnection:
		current, _ := m.deps.Connection()
		setup := NewSetupModel(current, m.deps.SaveConnection)
		m.setup = &setup
		m.status = ""

		return m, setup.Init()

	case actionClearCache:
		clearCache := m.deps.ClearCache

		return m, func() tea.Msg { return cacheClearedMsg{err: clearCache()} }
	}

	return m, Back
}

func (m SettingsModel) View() string {
	if m.setup != nil {
		return m.setup.View()
	}

	cfg, _ := m.deps.Connection()

	database := errorStyle.Render("Offline")
	if backend.IsConfigured(cfg) {
		database = successStyle.Render("Active")
	}

	ai := faintStyle.Render("Disabled")
	if m.deps.AIEnabled {
		ai = successStyle.Render("Ready")
	}

	profile := faintStyle.Render("Not signed in")
	if u := m.deps.User; u != nil {
		profile = fmt.Sprintf("%s  %s", u.Email, faintStyle.Render("#"+shortID(u.ID.String())))
	}

	endpoint := cfg.URL
	if endpoint == "" {
		endpoint = "-"
	}

	panel := boxStyle.Width(60).Render(fmt.Sprintf(
		"Profile:   %s\nDatabase:  %s  %s\nAI:        %s",
		profile, database, faintStyle.Render(endpoint), ai,
	))

	lines := []string{accentStyle.Render("Settings"), "", panel, "", m.menu.View()}

	if m.status != "" {
		style := successStyle
		if m.failure {
			style = errorStyle
		}

		lines = append(lines, style.Render(m.status))
	}

	return lipgloss.NewStyle().Padding(1).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}

	return id[:8]
}
