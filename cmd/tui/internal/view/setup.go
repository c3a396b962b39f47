package view

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/getrich/internal/backend"
)

// ConnectionSavedMsg is emitted after the connection was stored and the backend handle rebuilt.
type ConnectionSavedMsg struct{}

type saveConnectionMsg struct {
	err error
}

// SetupModel asks for the backend URL and public key. It is the SETUP screen and
// the connection editor in Settings.
type SetupModel struct {
	CommonModel
	save func(backend.Config) error

	form    *huh.Form
	current backend.Config

	saving bool
	err    error
}

// NewSetupModel prefills the form with current. save persists the connection
// and rebuilds the backend handle.
func NewSetupModel(current backend.Config, save func(backend.Config) error) SetupModel {
	return SetupModel{
		save:    save,
		current: current,
		form:    buildSetupForm(current),
	}
}

func (m SetupModel) Title() string { return "Connect Database" }

func (m SetupModel) ShortHelp() string { return "Enter: next | Ctrl+C: quit" }

func (m SetupModel) Init() tea.Cmd {
	return m.form.Init()
}

func buildSetupForm(current backend.Config) *huh.Form {
	url, anonKey := current.URL, current.AnonKey

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("url").
				Title("Project URL").
				Placeholder("https://your-project.example.co").
				Value(&url).
				Validate(validateURL),

			huh.NewInput().
				Key("anon_key").
				Title("Anon public key").
				EchoMode(huh.EchoModePassword).
				Value(&anonKey).
				Validate(validateAnonKey),
		),
	).WithWidth(60).WithShowHelp(false)
}

func validateURL(s string) error {
	if !strings.HasPrefix(strings.TrimSpace(s), "https://") {
		return errors.New("must start with https://")
	}

	return nil
}

func validateAnonKey(s string) error {
	if len(strings.TrimSpace(s)) <= backend.MinAnonKeyLength {
		return fmt.Errorf("must be longer than %d characters", backend.MinAnonKeyLength)
	}

	return nil
}

func (m SetupModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case saveConnectionMsg:
		m.saving = false

		if msg.err != nil {
			m.err = msg.err
			m.form = buildSetupForm(m.current)

			return m, m.form.Init()
		}

		return m, func() tea.Msg { return ConnectionSavedMsg{} }
	}

	if m.saving {
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.saving = true
	m.err = nil
	m.current = backend.Config{URL: m.form.GetString("url"), AnonKey: m.form.GetString("anon_key")}

	return m, m.saveCmd()
}

func (m SetupModel) saveCmd() tea.Cmd {
	cfg := backend.Config{
		URL:     strings.TrimRight(strings.TrimSpace(m.form.GetString("url")), "/"),
		AnonKey: strings.TrimSpace(m.form.GetString("anon_key")),
	}
	save := m.save

	return func() tea.Msg {
		if !backend.IsConfigured(cfg) {
			return saveConnectionMsg{err: errors.New("configuration is incomplete")}
		}

		return saveConnectionMsg{err: save(cfg)}
	}
}

func (m SetupModel) View() string {
	header := accentStyle.Render("Connect your database")
	intro := faintStyle.Render("Enter the project URL and the anon public key of your backend.")

	body := m.form.View()
	if m.saving {
		body = "Saving connection..."
	}

	if m.err != nil {
		body += "\n" + errorStyle.Render(fmt.Sprintf("Error: %v", m.err))
	}

	return lipgloss.NewStyle().Padding(1, 2).Render(
		lipgloss.JoinVertical(lipgloss.Left, header, intro, "", body),
	)
}
