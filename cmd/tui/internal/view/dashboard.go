package view

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/getrich/internal/dashboard"
	"github.com/MrJamesThe3rd/getrich/internal/project"
	"github.com/MrJamesThe3rd/getrich/internal/summary"
)

type DashboardModel struct {
	CommonModel
	loader   *dashboard.Loader
	currency string

	spinner spinner.Model
	loading bool
	cached  bool
	snap    dashboard.Snapshot
}

type dashboardLoadedMsg struct {
	snap dashboard.Snapshot
}

func NewDashboardModel(loader *dashboard.Loader, currency string) DashboardModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	m := DashboardModel{
		loader:   loader,
		currency: currency,
		spinner:  s,
		loading:  true,
	}

	if snap, ok := loader.Cached(); ok {
		m.snap = snap
		m.cached = true
	}

	return m
}

func (m DashboardModel) Title() string { return "Dashboard" }

func (m DashboardModel) ShortHelp() string { return "Esc: back | r: refresh" }

func (m DashboardModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.loadCmd())
}

func (m DashboardModel) loadCmd() tea.Cmd {
	loader := m.loader

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		return dashboardLoadedMsg{snap: loader.Records(ctx)}
	}
}

func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardLoadedMsg:
		m.loading = false
		m.cached = false
		m.snap = msg.snap

		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "q":
			return m, Back
		case "r":
			if m.loading {
				return m, nil
			}

			m.loading = true

			return m, tea.Batch(m.spinner.Tick, m.loadCmd())
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

func (m DashboardModel) View() string {
	s := m.snap.Summary

	status := ""

	switch {
	case m.loading && m.cached:
		status = m.spinner.View() + faintStyle.Render(" Showing cached figures, refreshing...")
	case m.loading:
		status = m.spinner.View() + " Loading..."
	case !m.snap.LoadedAt.IsZero():
		status = faintStyle.Render("Updated " + m.snap.LoadedAt.Format("15:04:05"))
	}

	cards := lipgloss.JoinHorizontal(lipgloss.Top,
		m.card("Paid revenue", s.PaidTotal, fmt.Sprintf("%d invoices", s.InvoiceCount)),
		m.card("Outstanding", s.UnpaidTotal, fmt.Sprintf("%d unpaid", s.UnpaidCount)),
		m.card("Earnings", s.EarningsTotal, "share of paid invoices"),
		m.card("Expenses", s.ExpenseTotal, fmt.Sprintf("%d ledger entries", s.TransactionCount)),
	)

	details := lipgloss.JoinHorizontal(lipgloss.Top,
		m.card("VAT collected", s.VATCollected, "on paid invoices"),
		m.card("Other income", s.IncomeTotal, ""),
		m.card("Net", s.Net(), fmt.Sprintf("%d/%d projects active", s.ActiveProjects, s.ProjectCount)),
	)

	return lipgloss.NewStyle().Padding(1).Render(lipgloss.JoinVertical(lipgloss.Left,
		accentStyle.Render("Dashboard"),
		status,
		"",
		cards,
		details,
		"",
		renewalsView(s.Renewals, time.Now()),
	))
}

func (m DashboardModel) card(title string, amount decimal.Decimal, note string) string {
	value := lipgloss.NewStyle().Bold(true).Render(FormatMoney(amount, m.currency))
	if amount.IsNegative() {
		value = errorStyle.Bold(true).Render(FormatMoney(amount, m.currency))
	}

	return boxStyle.Width(26).MarginRight(1).Render(
		faintStyle.Render(title) + "\n" + value + "\n" + faintStyle.Render(note),
	)
}

func renewalsView(renewals []project.Renewal, now time.Time) string {
	if len(renewals) == 0 {
		return faintStyle.Render(fmt.Sprintf("No renewals in the next %d days.", int(summary.RenewalWindow.Hours()/24)))
	}

	var sb strings.Builder

	sb.WriteString("Upcoming renewals:\n")

	for _, r := range renewals {
		days := int(r.Due.Sub(now).Hours() / 24)

		when := fmt.Sprintf("in %d days", days)
		style := lipgloss.NewStyle()

		switch {
		case r.Due.Before(now):
			when = "overdue"
			style = errorStyle
		case days <= 7:
			style = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
		}

		fmt.Fprintf(&sb, "  %s  %-20s %-8s %s\n", FormatDate(r.Due), r.Project.Name, r.Kind, style.Render(when))
	}

	return sb.String()
}
