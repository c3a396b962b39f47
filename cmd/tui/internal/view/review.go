package view

import (
	"fmt"
	"strings"
	"unicode"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/getrich/internal/matching"
	"github.com/MrJamesThe3rd/getrich/internal/transaction"
)

// ReviewModel walks the transactions still filed under Other, one at a time,
// and teaches the category matcher from each answer.
type ReviewModel struct {
	CommonModel
	txService  *transaction.Service
	categories *matching.Service
	currency   string

	queue      []*transaction.Transaction
	currentTx  *transaction.Transaction
	form       *huh.Form
	totalCount int
	reviewed   int

	loading bool
	status  string
}

func NewReviewModel(txSvc *transaction.Service, categories *matching.Service, currency string) ReviewModel {
	return ReviewModel{
		txService:  txSvc,
		categories: categories,
		currency:   currency,
		loading:    true,
	}
}

func (m ReviewModel) Title() string { return "Review Categories" }

func (m ReviewModel) ShortHelp() string {
	return "Esc: back | Enter: next field / save | pick Other to skip"
}

func (m ReviewModel) Init() tea.Cmd {
	return m.loadQueueCmd()
}

func (m ReviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case reviewQueueMsg:
		m.loading = false
		m.queue = msg.txs
		m.totalCount = len(msg.txs)

		return m.next()

	case reviewSavedMsg:
		if msg.err != nil {
			m.queue = append([]*transaction.Transaction{m.currentTx}, m.queue...)
			next, cmd := m.next()

			model := next.(ReviewModel)
			model.status = fmt.Sprintf("Error saving: %v", msg.err)

			return model, tea.Batch(cmd, expired(msg.err))
		}

		m.reviewed++
		m.status = msg.done

		return m.next()

	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m, Back
		}
	}

	if m.form == nil {
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	return m, m.saveCmd()
}

// next pops the queue and builds the form for the popped transaction.
func (m ReviewModel) next() (tea.Model, tea.Cmd) {
	if len(m.queue) == 0 {
		m.currentTx = nil
		m.form = nil

		return m, nil
	}

	m.currentTx = m.queue[0]
	m.queue = m.queue[1:]

	category := transaction.CategoryOther

	ctx, cancel := DbCtx()
	defer cancel()

	if suggestion, _ := m.categories.Suggest(ctx, m.currentTx.Description); suggestion != "" {
		category = suggestion
	}

	keyword := suggestKeyword(m.currentTx.Description)

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Key("category").
				Title("Category").
				Options(huh.NewOptions(transaction.Categories...)...).
				Height(6).
				Value(&category),

			huh.NewInput().
				Key("keyword").
				Title("Remember for descriptions containing (empty to skip)").
				Value(&keyword),
		),
	).WithWidth(60).WithShowHelp(false)

	return m, m.form.Init()
}

// suggestKeyword picks the first word that looks like a merchant name.
func suggestKeyword(description string) string {
	for _, word := range strings.Fields(description) {
		if len(word) >= 3 && strings.IndexFunc(word, unicode.IsLetter) >= 0 {
			return word
		}
	}

	return strings.TrimSpace(description)
}

type reviewQueueMsg struct {
	txs []*transaction.Transaction
}

type reviewSavedMsg struct {
	done string
	err  error
}

func (m ReviewModel) loadQueueCmd() tea.Cmd {
	svc := m.txService

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		var queue []*transaction.Transaction

		for _, tx := range svc.List(ctx) {
			if tx.Category == transaction.CategoryOther {
				queue = append(queue, tx)
			}
		}

		return reviewQueueMsg{txs: queue}
	}
}

func (m ReviewModel) saveCmd() tea.Cmd {
	tx := m.currentTx
	category := m.form.GetString("category")
	keyword := strings.TrimSpace(m.form.GetString("keyword"))
	txSvc := m.txService
	categories := m.categories

	return func() tea.Msg {
		if category == transaction.CategoryOther {
			return reviewSavedMsg{done: "Skipped."}
		}

		ctx, cancel := DbCtx()
		defer cancel()

		if keyword != "" {
			if err := categories.Learn(ctx, keyword, category); err != nil {
				return reviewSavedMsg{err: err}
			}
		}

		if err := txSvc.Update(ctx, tx.ID, transaction.Patch{Category: &category}); err != nil {
			return reviewSavedMsg{err: err}
		}

		return reviewSavedMsg{done: fmt.Sprintf("Filed under %s.", category)}
	}
}

func (m ReviewModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading uncategorized transactions...")
	}

	if m.currentTx == nil {
		msg := "Nothing to review: every transaction has a category."
		if m.totalCount > 0 {
			msg = fmt.Sprintf("Review complete. %d of %d transactions reviewed.", m.reviewed, m.totalCount)
		}

		return lipgloss.NewStyle().Padding(2).Render(successStyle.Render(msg) + "\n\n(Esc to go back)")
	}

	progress := faintStyle.Render(fmt.Sprintf("%d of %d", m.totalCount-len(m.queue), m.totalCount))

	info := boxStyle.Render(fmt.Sprintf(
		"Date: %s  |  Type: %s  |  Amount: %s\n%s",
		FormatDate(m.currentTx.Date),
		m.currentTx.Type,
		FormatMoney(m.currentTx.Amount, m.currency),
		m.currentTx.Description,
	))

	statusLine := ""
	if m.status != "" {
		statusLine = "\n" + faintStyle.Render(m.status)
	}

	return lipgloss.NewStyle().Padding(1).Render(
		accentStyle.Render("Review categories") + "  " + progress + "\n\n" + info + "\n" + m.form.View() + statusLine,
	)
}
