package view

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/getrich/internal/dashboard"
	"github.com/MrJamesThe3rd/getrich/internal/insight"
)

// InsightRefresher produces a fresh snapshot including generated insights.
type InsightRefresher interface {
	Refresh(ctx context.Context) dashboard.Snapshot
	Latest() (dashboard.Snapshot, bool)
}

type InsightsModel struct {
	CommonModel
	refresher InsightRefresher
	enabled   bool
	timeout   time.Duration

	spinner  spinner.Model
	loading  bool
	insights []insight.Insight
	at       time.Time
}

type insightsLoadedMsg struct {
	snap dashboard.Snapshot
}

func NewInsightsModel(refresher InsightRefresher, enabled bool, timeout time.Duration) InsightsModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	m := InsightsModel{
		refresher: refresher,
		enabled:   enabled,
		timeout:   timeout,
		spinner:   s,
	}

	if snap, ok := refresher.Latest(); ok {
		m.insights = snap.Insights
		m.at = snap.LoadedAt
	}

	m.loading = enabled && m.at.IsZero()

	return m
}

func (m InsightsModel) Title() string { return "AI Insights" }

func (m InsightsModel) ShortHelp() string { return "Esc: back | r: generate" }

func (m InsightsModel) Init() tea.Cmd {
	if !m.loading {
		return nil
	}

	return m.generateCmd()
}

func (m InsightsModel) generateCmd() tea.Cmd {
	refresher := m.refresher
	timeout := m.timeout

	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		return insightsLoadedMsg{snap: refresher.Refresh(ctx)}
	})
}

func (m InsightsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case insightsLoadedMsg:
		m.loading = false
		m.insights = msg.snap.Insights
		m.at = msg.snap.LoadedAt

		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "q":
			return m, Back
		case "r":
			if m.loading || !m.enabled {
				return m, nil
			}

			m.loading = true

			return m, m.generateCmd()
		}

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}

		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd
	}

	return m, nil
}

func (m InsightsModel) View() string {
	header := accentStyle.Render("AI Insights")

	if !m.enabled {
		return lipgloss.NewStyle().Padding(1).Render(header + "\n\n" +
			faintStyle.Render("Insights are disabled. Set GEMINI_API_KEY to enable them."))
	}

	if m.loading {
		return lipgloss.NewStyle().Padding(1).Render(header + "\n\n" +
			m.spinner.View() + " Analyzing your invoices, expenses and projects...")
	}

	if len(m.insights) == 0 {
		return lipgloss.NewStyle().Padding(1).Render(header + "\n\n" +
			faintStyle.Render("No insights available. Press r to try again."))
	}

	cards := make([]string, 0, len(m.insights)+2)
	cards = append(cards, header, faintStyle.Render("Generated "+m.at.Format("2006-01-02 15:04")), "")

	for _, in := range m.insights {
		cards = append(cards, insightCard(in))
	}

	return lipgloss.NewStyle().Padding(1).Render(lipgloss.JoinVertical(lipgloss.Left, cards...))
}

func insightCard(in insight.Insight) string {
	color := lipgloss.Color("39")

	switch in.Type {
	case insight.TypeWarning:
		color = lipgloss.Color("196")
	case insight.TypeTip:
		color = lipgloss.Color("46")
	}

	label := lipgloss.NewStyle().Foreground(color).Bold(true).Render(strings.ToUpper(string(in.Type)))

	return boxStyle.BorderForeground(color).Width(70).Render(
		fmt.Sprintf("%s  %s\n%s", label, lipgloss.NewStyle().Bold(true).Render(in.Title), in.Content),
	)
}
