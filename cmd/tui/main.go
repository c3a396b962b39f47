package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/getrich/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/getrich/internal/app"
	"github.com/MrJamesThe3rd/getrich/internal/backend"
	"github.com/MrJamesThe3rd/getrich/internal/config"
	"github.com/MrJamesThe3rd/getrich/internal/readiness"
)

type menuEntry struct {
	key   string
	label string
	open  func(a *app.App) view.View
}

var menu = []menuEntry{
	{"1", "Dashboard", func(a *app.App) view.View {
		return view.NewDashboardModel(a.Loader, a.Config.Business.Currency)
	}},
	{"2", "Invoices", func(a *app.App) view.View {
		return view.NewInvoiceModel(a.Invoices, a.Config.Business.Currency)
	}},
	{"3", "Projects", func(a *app.App) view.View {
		return view.NewProjectModel(a.Projects)
	}},
	{"4", "Transactions", func(a *app.App) view.View {
		return view.NewTransactionsModel(a.Transactions, a.Categories, a.Config.Business.Currency)
	}},
	{"5", "Review Categories", func(a *app.App) view.View {
		return view.NewReviewModel(a.Transactions, a.Categories, a.Config.Business.Currency)
	}},
	{"6", "AI Insights", func(a *app.App) view.View {
		return view.NewInsightsModel(a.Scheduler, a.Insights.Enabled(), a.Config.Insights.Timeout+a.Config.Backend.Timeout)
	}},
	{"7", "Import Bank Statement", func(a *app.App) view.View {
		return view.NewImportModel(a.Transactions, a.Importer)
	}},
	{"8", "Tax Export", func(a *app.App) view.View {
		return view.NewExportModel(a.Export)
	}},
	{"9", "Settings", func(a *app.App) view.View {
		return view.NewSettingsModel(view.SettingsDeps{
			Connection:     a.Accessor.Config,
			SaveConnection: saveConnection(a),
			ClearCache:     a.Store.ClearCache,
			User:           a.Tracker.User(),
			AIEnabled:      a.Insights.Enabled(),
		})
	}},
}

// authEventMsg reports that the backend handle changed its session.
type authEventMsg struct {
	event backend.AuthEvent
}

type sessionResolvedMsg struct {
	session *backend.Session
	err     error
}

type signedOutMsg struct {
	err error
}

type model struct {
	app *app.App

	// state is the screen currently shown; -1 until the first evaluation.
	state readiness.State

	setup   view.SetupModel
	auth    view.AuthModel
	spinner spinner.Model
	current view.View

	events      chan backend.AuthEvent
	done        chan struct{}
	unsubscribe func()

	width  int
	height int

	initCmd tea.Cmd
}

func newModel(a *app.App) model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	m := model{
		app:     a,
		state:   readiness.State(-1),
		spinner: s,
	}

	next, cmd := m.sync()
	next.initCmd = cmd

	return next
}

func saveConnection(a *app.App) func(backend.Config) error {
	return func(cfg backend.Config) error {
		_, err := a.SaveConnection(cfg)
		return err
	}
}

func (m model) Init() tea.Cmd {
	return m.initCmd
}

// sync re-evaluates the readiness gate and rebuilds the screen when it changed.
func (m model) sync() (model, tea.Cmd) {
	next := m.app.Tracker.State(m.app.Accessor.IsConfigured())
	if next == m.state {
		return m, nil
	}

	slog.Info("screen changed", "from", m.state, "to", next)
	m.state = next
	m.current = nil

	switch next {
	case readiness.Setup:
		cfg, _ := m.app.Accessor.Config()
		m.setup = view.NewSetupModel(cfg, saveConnection(m.app))

		return m, m.setup.Init()

	case readiness.Loading:
		var cmd tea.Cmd
		m, cmd = m.watch()

		return m, tea.Batch(m.spinner.Tick, cmd)

	case readiness.Auth:
		m.auth = view.NewAuthModel(m.app.Accessor)
		return m, m.auth.Init()
	}

	return m, nil
}

// watch subscribes the tracker to the current handle, replacing any earlier subscription.
func (m model) watch() (model, tea.Cmd) {
	m.stop()

	handle := m.app.Accessor.Handle()
	tracker := m.app.Tracker
	events := make(chan backend.AuthEvent, 16)
	done := make(chan struct{})

	m.events = events
	m.done = done

	unsubscribe := handle.OnAuthStateChange(func(event backend.AuthEvent, s *backend.Session) {
		tracker.Observe(event, s)

		select {
		case events <- event:
		default:
		}
	})

	m.unsubscribe = func() {
		unsubscribe()
		close(done)
	}

	return m, tea.Batch(waitForAuth(events, done), resolveSession(handle))
}

func (m model) stop() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
}

func waitForAuth(events <-chan backend.AuthEvent, done <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		select {
		case event := <-events:
			return authEventMsg{event: event}
		case <-done:
			return nil
		}
	}
}

func resolveSession(handle backend.Handle) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := view.DbCtx()
		defer cancel()

		s, err := handle.Session(ctx)

		return sessionResolvedMsg{session: s, err: err}
	}
}

func signOut(handle backend.Handle) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := view.DbCtx()
		defer cancel()

		return signedOutMsg{err: handle.SignOut(ctx)}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.stop()
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height

	case authEventMsg:
		slog.Info("auth state changed", "event", msg.event)
		cmds = append(cmds, waitForAuth(m.events, m.done))

	case sessionResolvedMsg:
		// A network failure keeps the hydrated session so cached data stays visible.
		switch {
		case msg.err == nil:
			m.app.Tracker.Resolved(msg.session)
		case backend.IsAuthError(msg.err):
			m.app.Tracker.Resolved(nil)
		default:
			slog.Error("failed to resolve session", "error", msg.err)
		}

	case signedOutMsg:
		if msg.err != nil {
			slog.Error("failed to sign out", "error", msg.err)
		}

		m.app.Tracker.SignedOut()

	case view.SignedInMsg:
		m.app.Tracker.SignedIn(msg.Session)

	case view.SessionExpiredMsg:
		m.app.Tracker.AuthFailed()

	case view.ConnectionSavedMsg:
		// SaveConnection already reset the tracker; sync moves to LOADING.

	case view.BackMsg:
		m.current = nil
		return m, nil
	}

	var cmd tea.Cmd
	m, cmd = m.delegate(msg)
	cmds = append(cmds, cmd)

	m, cmd = m.sync()
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// delegate forwards msg to whatever the current screen shows.
func (m model) delegate(msg tea.Msg) (model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.state {
	case readiness.Setup:
		var next tea.Model
		next, cmd = m.setup.Update(msg)
		m.setup = next.(view.SetupModel)

	case readiness.Auth:
		var next tea.Model
		next, cmd = m.auth.Update(msg)
		m.auth = next.(view.AuthModel)

	case readiness.Loading:
		if _, ok := msg.(spinner.TickMsg); ok {
			m.spinner, cmd = m.spinner.Update(msg)
		}

	case readiness.Ready:
		if m.current != nil {
			var next tea.Model
			next, cmd = m.current.Update(msg)
			m.current = next.(view.View)

			return m, cmd
		}

		if keyMsg, ok := msg.(tea.KeyMsg); ok {
			return m.updateMenu(keyMsg)
		}
	}

	return m, cmd
}

func (m model) updateMenu(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.String() {
	case "q":
		m.stop()
		return m, tea.Quit
	case "o":
		return m, signOut(m.app.Accessor.Handle())
	}

	for _, entry := range menu {
		if msg.String() != entry.key {
			continue
		}

		m.current = entry.open(m.app)
		cmds := []tea.Cmd{m.current.Init()}

		if m.width > 0 {
			size := tea.WindowSizeMsg{Width: m.width, Height: m.height}
			cmds = append(cmds, func() tea.Msg { return size })
		}

		return m, tea.Batch(cmds...)
	}

	return m, nil
}

func (m model) View() string {
	switch m.state {
	case readiness.Setup:
		return m.setup.View()
	case readiness.Loading:
		return lipgloss.NewStyle().Padding(2).Render(m.spinner.View() + " Connecting...")
	case readiness.Auth:
		return m.auth.View()
	case readiness.Ready:
		if m.current != nil {
			return m.current.View() + "\n" + lipgloss.NewStyle().Faint(true).PaddingLeft(1).Render(m.current.ShortHelp())
		}

		return m.menuView()
	}

	return ""
}

func (m model) menuView() string {
	var sb strings.Builder

	sb.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true).Render(m.app.Config.Business.Name))

	if u := m.app.Tracker.User(); u != nil {
		sb.WriteString(lipgloss.NewStyle().Faint(true).Render("  " + u.Email))
	}

	sb.WriteString("\n\n")

	for _, entry := range menu {
		fmt.Fprintf(&sb, "%s. %s\n", entry.key, entry.label)
	}

	sb.WriteString("\no. Sign out\nq. Quit")

	return lipgloss.NewStyle().Padding(2).Render(sb.String())
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	dir, err := cfg.StoreDir()
	if err != nil {
		slog.Error("failed to resolve config dir", "error", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		slog.Error("failed to create config dir", "error", err)
		os.Exit(1)
	}

	logFile, err := tea.LogToFile(filepath.Join(dir, "getrich.log"), "getrich")
	if err != nil {
		slog.Error("failed to open log file", "error", err)
		os.Exit(1)
	}
	defer logFile.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		slog.Error("failed to initialize", "error", err)
		os.Exit(1)
	}

	if a.Insights.Enabled() && cfg.Insights.Schedule != "" {
		if err := a.Scheduler.Start(cfg.Insights.Schedule); err != nil {
			slog.Error("failed to schedule insights", "error", err)
		} else {
			defer a.Scheduler.Stop()
		}
	}

	p := tea.NewProgram(newModel(a), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
