package view

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/getrich/internal/matching"
	"github.com/MrJamesThe3rd/getrich/internal/transaction"
)

type txState int

const (
	txStateTimeframe txState = iota
	txStateList
	txStateEditing
	txStateDelete
)

// txItem wraps a transaction to implement list.Item.
type txItem struct {
	tx *transaction.Transaction
}

func (i txItem) Title() string {
	amount := FormatAmount(i.tx.Amount)
	if i.tx.Type == transaction.TypeExpense {
		amount = "-" + amount
	}

	category := faintStyle.Render(fmt.Sprintf("[%s]", i.tx.Category))

	return fmt.Sprintf("%s  %14s  %s  %s", FormatDate(i.tx.Date), amount, category, i.tx.Description)
}

func (i txItem) Description() string {
	return string(i.tx.Type)
}

func (i txItem) FilterValue() string {
	return i.tx.Description + " " + i.tx.Category
}

type TransactionsModel struct {
	CommonModel
	txService  *transaction.Service
	categories *matching.Service
	currency   string

	state           txState
	timeframePicker TimeframePicker
	list            list.Model
	form            *huh.Form
	txs             []*transaction.Transaction
	selectedTx      *transaction.Transaction

	period  TimeframeSelectedMsg
	loading bool
	status  string
}

func NewTransactionsModel(txSvc *transaction.Service, categories *matching.Service, currency string) TransactionsModel {
	l := list.New([]list.Item{}, txItemDelegate{}, 0, 0)
	l.Title = "Transactions"
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(true)

	return TransactionsModel{
		txService:       txSvc,
		categories:      categories,
		currency:        currency,
		timeframePicker: NewTimeframePicker(TimeframeThisMonth),
		list:            l,
	}
}

func (m TransactionsModel) Title() string { return "Transactions" }

func (m TransactionsModel) ShortHelp() string {
	switch m.state {
	case txStateTimeframe:
		return "Esc: back | Enter: select"
	case txStateList:
		return "Esc: back | Enter: edit | n: new | d: delete | t: timeframe | /: filter"
	case txStateEditing:
		return "Esc: cancel | Enter/Tab: navigate form"
	case txStateDelete:
		return "y: delete | n/Esc: keep"
	}

	return ""
}

func (m TransactionsModel) Init() tea.Cmd {
	return nil
}

func (m TransactionsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case TimeframeSelectedMsg:
		m.period = msg
		m.loading = true
		m.state = txStateList
		m.list.Title = "Transactions: " + msg.Label

		return m, m.loadTxsCmd()

	case loadTxsMsg:
		m.loading = false
		m.txs = msg.txs
		m.refreshListItems()

		m.status = ""
		if len(msg.txs) == 0 {
			m.status = "No transactions found."
		}

		return m, nil

	case saveTxResultMsg:
		m.state = txStateList
		m.form = nil

		if msg.err != nil {
			m.status = fmt.Sprintf("Error saving: %v", msg.err)
			return m, expired(msg.err)
		}

		m.status = msg.done

		return m, m.loadTxsCmd()

	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width-4, msg.Height-8)
		return m, nil
	}

	switch m.state {
	case txStateTimeframe:
		return m.updateTimeframe(msg)
	case txStateList:
		return m.updateList(msg)
	case txStateEditing:
		return m.updateEditing(msg)
	case txStateDelete:
		return m.updateDelete(msg)
	}

	return m, nil
}

func (m TransactionsModel) updateTimeframe(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc && m.timeframePicker.IsSelecting() {
			return m, Back
		}
	}

	var cmd tea.Cmd
	m.timeframePicker, cmd = m.timeframePicker.Update(msg)

	return m, cmd
}

func (m TransactionsModel) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && m.list.FilterState() != list.Filtering {
		switch keyMsg.String() {
		case "esc":
			if m.list.FilterState() == list.FilterApplied {
				break // let the list clear the filter
			}

			return m, Back
		case "enter":
			if selected, ok := m.list.SelectedItem().(txItem); ok {
				return m.startEditing(selected.tx)
			}

			return m, nil
		case "n":
			return m.startEditing(nil)
		case "t":
			m.state = txStateTimeframe
			m.timeframePicker.Reset()

			return m, nil
		case "d":
			if selected, ok := m.list.SelectedItem().(txItem); ok {
				m.selectedTx = selected.tx
				m.state = txStateDelete
			}

			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)

	return m, cmd
}

func (m TransactionsModel) updateDelete(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "y":
		return m, m.deleteTxCmd(m.selectedTx)
	case "n", "esc":
		m.state = txStateList
	}

	return m, nil
}

// startEditing opens the form for tx, or for a new transaction when tx is nil.
// An uncategorized transaction is prefilled with the learned suggestion.
func (m TransactionsModel) startEditing(tx *transaction.Transaction) (tea.Model, tea.Cmd) {
	var (
		txType      = string(transaction.TypeExpense)
		category    = transaction.CategoryOther
		amount      string
		date        = FormatDate(time.Now())
		description string
		remember    bool
	)

	if tx != nil {
		txType = string(tx.Type)
		category = tx.Category
		amount = tx.Amount.String()
		date = FormatDate(tx.Date)
		description = tx.Description

		if category == transaction.CategoryOther && description != "" {
			ctx, cancel := DbCtx()
			defer cancel()

			if suggestion, _ := m.categories.Suggest(ctx, description); suggestion != "" {
				category = suggestion
			}
		}
	}

	m.selectedTx = tx
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("description").
				Title("Description").
				Value(&description).
				Validate(required("description")),

			huh.NewSelect[string]().
				Key("type").
				Title("Type").
				Options(huh.NewOptions(string(transaction.TypeExpense), string(transaction.TypeIncome))...).
				Value(&txType),

			huh.NewSelect[string]().
				Key("category").
				Title("Category").
				Options(huh.NewOptions(transaction.Categories...)...).
				Height(6).
				Value(&category),

			huh.NewInput().
				Key("amount").
				Title(fmt.Sprintf("Amount (%s)", m.currency)).
				Value(&amount).
				Validate(validateAmount),

			huh.NewInput().
				Key("date").
				Title("Date").
				Placeholder("YYYY-MM-DD").
				Value(&date).
				Validate(validateDate),

			huh.NewConfirm().
				Key("remember").
				Title("Use this category for similar descriptions?").
				Affirmative("Yes").
				Negative("No").
				Value(&remember),
		),
	).WithWidth(60).WithShowHelp(false)

	m.state = txStateEditing

	return m, m.form.Init()
}

func (m TransactionsModel) updateEditing(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			m.state = txStateList
			m.form = nil

			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	return m, m.saveTxCmd()
}

func (m TransactionsModel) View() string {
	switch m.state {
	case txStateTimeframe:
		return lipgloss.NewStyle().Padding(1).Render(m.timeframePicker.View())

	case txStateList:
		if m.loading {
			return lipgloss.NewStyle().Padding(2).Render("Loading transactions...")
		}

		statusLine := totalsLine(m.txs, m.currency) + "\n"
		if m.status != "" {
			statusLine += faintStyle.Render(m.status) + "\n"
		}

		return lipgloss.NewStyle().Padding(1).Render(statusLine + m.list.View())

	case txStateEditing:
		if m.form == nil {
			return ""
		}

		title := accentStyle.Render("New transaction")
		if m.selectedTx != nil {
			title = m.txInfoView()
		}

		return lipgloss.NewStyle().Padding(1).Render(title + "\n" + m.form.View())

	case txStateDelete:
		return lipgloss.NewStyle().Padding(1).Render(
			m.txInfoView() + "\n" + errorStyle.Render("Delete this transaction? [y/n]"),
		)
	}

	return ""
}

func totalsLine(txs []*transaction.Transaction, currency string) string {
	var income, expense decimal.Decimal

	for _, tx := range txs {
		if tx.Type == transaction.TypeIncome {
			income = income.Add(tx.Amount)
		} else {
			expense = expense.Add(tx.Amount)
		}
	}

	return fmt.Sprintf("In: %s  Out: %s",
		successStyle.Render(FormatMoney(income, currency)),
		errorStyle.Render(FormatMoney(expense, currency)),
	)
}

func (m TransactionsModel) txInfoView() string {
	if m.selectedTx == nil {
		return ""
	}

	return boxStyle.Render(fmt.Sprintf(
		"Date: %s  |  Type: %s  |  Amount: %s\nCategory: %s\n%s",
		FormatDate(m.selectedTx.Date),
		m.selectedTx.Type,
		FormatMoney(m.selectedTx.Amount, m.currency),
		m.selectedTx.Category,
		m.selectedTx.Description,
	))
}

func (m *TransactionsModel) refreshListItems() {
	items := make([]list.Item, len(m.txs))
	for i, tx := range m.txs {
		items[i] = txItem{tx: tx}
	}

	m.list.SetItems(items)
}

// Messages

type loadTxsMsg struct {
	txs []*transaction.Transaction
}

func (m TransactionsModel) loadTxsCmd() tea.Cmd {
	svc := m.txService
	filter := transaction.ListFilter{StartDate: m.period.Start, EndDate: m.period.End}

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		return loadTxsMsg{txs: svc.ListRange(ctx, filter)}
	}
}

type saveTxResultMsg struct {
	done string
	err  error
}

func (m TransactionsModel) saveTxCmd() tea.Cmd {
	prev := m.selectedTx
	categories := m.categories
	txSvc := m.txService

	date, _ := time.Parse(time.DateOnly, strings.TrimSpace(m.form.GetString("date")))
	amount, _ := decimal.NewFromString(strings.TrimSpace(m.form.GetString("amount")))
	params := transaction.CreateParams{
		Type:        transaction.Type(m.form.GetString("type")),
		Category:    m.form.GetString("category"),
		Amount:      amount,
		Date:        date,
		Description: strings.TrimSpace(m.form.GetString("description")),
	}
	remember := m.form.GetBool("remember")

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if remember && params.Category != transaction.CategoryOther {
			if err := categories.Learn(ctx, params.Description, params.Category); err != nil {
				return saveTxResultMsg{err: err}
			}
		}

		if prev == nil {
			if _, err := txSvc.Create(ctx, params); err != nil {
				return saveTxResultMsg{err: err}
			}

			return saveTxResultMsg{done: "Transaction added."}
		}

		if err := txSvc.Update(ctx, prev.ID, txPatch(prev, params)); err != nil {
			return saveTxResultMsg{err: err}
		}

		return saveTxResultMsg{done: "Saved."}
	}
}

// txPatch holds only the fields that differ from prev.
func txPatch(prev *transaction.Transaction, next transaction.CreateParams) transaction.Patch {
	var p transaction.Patch

	if next.Type != prev.Type {
		p.Type = &next.Type
	}

	if next.Category != prev.Category {
		p.Category = &next.Category
	}

	if !next.Amount.Equal(prev.Amount) {
		p.Amount = &next.Amount
	}

	if !next.Date.Equal(prev.Date) {
		p.Date = &next.Date
	}

	if next.Description != prev.Description {
		p.Description = &next.Description
	}

	return p
}

func (m TransactionsModel) deleteTxCmd(tx *transaction.Transaction) tea.Cmd {
	svc := m.txService

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if err := svc.Delete(ctx, tx.ID); err != nil {
			return saveTxResultMsg{err: err}
		}

		return saveTxResultMsg{done: "Transaction deleted."}
	}
}

// txItemDelegate renders items in the list.
type txItemDelegate struct{}

func (d txItemDelegate) Height() int                             { return 1 }
func (d txItemDelegate) Spacing() int                            { return 0 }
func (d txItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d txItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	i, ok := item.(txItem)
	if !ok {
		return
	}

	title := i.Title()

	switch {
	case index == m.Index():
		title = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true).Render("> " + title)
	case i.tx.Type == transaction.TypeIncome:
		title = "  " + successStyle.Render(title)
	default:
		title = "  " + title
	}

	fmt.Fprint(w, title)
}
