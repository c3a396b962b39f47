package view

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/getrich/internal/backend"
)

const minPasswordLength = 6

// SignedInMsg carries the session of a successful sign-in.
type SignedInMsg struct {
	Session *backend.Session
}

type authResultMsg struct {
	session *backend.Session
	err     error
}

// AuthModel is the AUTH screen: email and password with a sign in / sign up toggle.
type AuthModel struct {
	CommonModel
	provider backend.Provider

	form  *huh.Form
	email string

	signUp  bool
	pending bool
	notice  string
	err     error
}

func NewAuthModel(provider backend.Provider) AuthModel {
	return AuthModel{provider: provider, form: buildAuthForm("", false)}
}

func (m AuthModel) Title() string {
	if m.signUp {
		return "Create Account"
	}

	return "Sign In"
}

func (m AuthModel) ShortHelp() string {
	return "Enter: next | Ctrl+T: switch sign in / sign up | Ctrl+C: quit"
}

func (m AuthModel) Init() tea.Cmd {
	return m.form.Init()
}

func buildAuthForm(email string, signUp bool) *huh.Form {
	var password string

	submit := "Sign in"
	if signUp {
		submit = "Create account"
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("email").
				Title("Email").
				Value(&email).
				Validate(func(s string) error {
					if _, err := mail.ParseAddress(strings.TrimSpace(s)); err != nil {
						return errors.New("enter a valid email address")
					}
					return nil
				}),

			huh.NewInput().
				Key("password").
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&password).
				Validate(func(s string) error {
					if len(s) < minPasswordLength {
						return fmt.Errorf("at least %d characters", minPasswordLength)
					}
					return nil
				}),

			huh.NewConfirm().
				Key("submit").
				Title(submit + "?").
				Affirmative(submit).
				Negative("Back"),
		),
	).WithWidth(50).WithShowHelp(false)
}

func (m AuthModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case authResultMsg:
		m.pending = false

		switch {
		case msg.err != nil:
			m.err = msg.err
		case msg.session == nil:
			m.notice = "Check your email to confirm the account, then sign in."
			m.signUp = false
		default:
			return m, func() tea.Msg { return SignedInMsg{Session: msg.session} }
		}

		m.form = buildAuthForm(m.email, m.signUp)

		return m, m.form.Init()

	case tea.KeyMsg:
		if msg.String() == "ctrl+t" && !m.pending {
			m.signUp = !m.signUp
			m.err = nil
			m.notice = ""
			m.form = buildAuthForm(m.email, m.signUp)

			return m, m.form.Init()
		}
	}

	if m.pending {
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	if !m.form.GetBool("submit") {
		m.form = buildAuthForm(m.email, m.signUp)
		return m, m.form.Init()
	}

	m.pending = true
	m.err = nil
	m.notice = ""
	m.email = strings.TrimSpace(m.form.GetString("email"))

	return m, m.submitCmd()
}

func (m AuthModel) submitCmd() tea.Cmd {
	handle := m.provider.Handle()
	email := m.email
	password := m.form.GetString("password")
	signUp := m.signUp

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if signUp {
			s, err := handle.SignUp(ctx, email, password)
			return authResultMsg{session: s, err: err}
		}

		s, err := handle.SignIn(ctx, email, password)
		if err == nil && s == nil {
			err = errors.New("sign in returned no session")
		}

		return authResultMsg{session: s, err: err}
	}
}

func (m AuthModel) View() string {
	header := accentStyle.Render(m.Title())

	toggle := "No account yet? Press Ctrl+T to create one."
	if m.signUp {
		toggle = "Already registered? Press Ctrl+T to sign in."
	}

	body := m.form.View()
	if m.pending {
		body = "Contacting backend..."
	}

	lines := []string{header, faintStyle.Render(toggle), "", body}

	if m.notice != "" {
		lines = append(lines, successStyle.Render(m.notice))
	}

	if m.err != nil {
		lines = append(lines, errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	return lipgloss.NewStyle().Padding(1, 2).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
