package view

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/getrich/internal/invoice"
)

type invoiceState int

const (
	invoiceStateBrowse invoiceState = iota
	invoiceStateForm
	invoiceStateDelete
)

var invoiceFilters = []invoice.Status{"", invoice.StatusUnpaid, invoice.StatusPaid}

type InvoiceModel struct {
	CommonModel
	service  *invoice.Service
	currency string

	state    invoiceState
	table    table.Model
	form     *huh.Form
	invoices []*invoice.Invoice
	visible  []*invoice.Invoice
	editing  *invoice.Invoice

	filterIdx int
	loading   bool
	status    string
}

func NewInvoiceModel(svc *invoice.Service, currency string) InvoiceModel {
	return InvoiceModel{
		service:  svc,
		currency: currency,
		loading:  true,
		table: newTable([]table.Column{
			{Title: "Date", Width: 12},
			{Title: "Number", Width: 12},
			{Title: "Client", Width: 24},
			{Title: "Amount", Width: 14},
			{Title: "VAT", Width: 12},
			{Title: "Earning", Width: 12},
			{Title: "Status", Width: 8},
			{Title: "Paid On", Width: 12},
		}),
	}
}

func (m InvoiceModel) Title() string { return "Invoices" }

func (m InvoiceModel) ShortHelp() string {
	switch m.state {
	case invoiceStateForm:
		return "Esc: cancel | Enter/Tab: navigate form"
	case invoiceStateDelete:
		return "y: delete | n/Esc: keep"
	}

	return "Esc: back | n: new | e: edit | p: toggle paid | d: delete | f: filter | r: refresh"
}

func (m InvoiceModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m InvoiceModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case invoicesLoadedMsg:
		m.loading = false
		m.invoices = msg.invoices
		m.refreshTable()

		return m, nil

	case invoiceSavedMsg:
		m.state = invoiceStateBrowse
		m.form = nil
		m.editing = nil
		m.table.Focus()

		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
			return m, expired(msg.err)
		}

		m.status = msg.done
		m.loading = true

		return m, m.loadCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(max(msg.Height-12, 5))
		return m, nil
	}

	switch m.state {
	case invoiceStateForm:
		return m.updateForm(msg)
	case invoiceStateDelete:
		return m.updateDelete(msg)
	}

	return m.updateBrowse(msg)
}

func (m InvoiceModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)

		return m, cmd
	}

	switch keyMsg.String() {
	case "esc", "q":
		return m, Back
	case "r":
		m.loading = true
		return m, m.loadCmd()
	case "f":
		m.filterIdx = (m.filterIdx + 1) % len(invoiceFilters)
		m.refreshTable()

		return m, nil
	case "n":
		return m.startForm(nil)
	case "e", "enter":
		if inv := m.selected(); inv != nil {
			return m.startForm(inv)
		}
	case "p":
		if inv := m.selected(); inv != nil {
			return m, m.togglePaidCmd(inv)
		}
	case "d":
		if m.selected() != nil {
			m.state = invoiceStateDelete
		}

		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m InvoiceModel) updateDelete(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "y":
		inv := m.selected()
		if inv == nil {
			m.state = invoiceStateBrowse
			return m, nil
		}

		return m, m.deleteCmd(inv.ID)
	case "n", "esc":
		m.state = invoiceStateBrowse
	}

	return m, nil
}

func (m InvoiceModel) selected() *invoice.Invoice {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.visible) {
		return nil
	}

	return m.visible[idx]
}

func (m *InvoiceModel) refreshTable() {
	filter := invoiceFilters[m.filterIdx]

	m.visible = make([]*invoice.Invoice, 0, len(m.invoices))
	rows := make([]table.Row, 0, len(m.invoices))

	for _, inv := range m.invoices {
		if filter != "" && inv.Status != filter {
			continue
		}

		m.visible = append(m.visible, inv)
		rows = append(rows, table.Row{
			FormatDate(inv.Date),
			inv.InvoiceNumber,
			inv.ClientName,
			FormatAmount(inv.Amount),
			FormatAmount(inv.VATAmount),
			FormatAmount(inv.Earning),
			string(inv.Status),
			FormatOptionalDate(inv.PaymentDate),
		})
	}

	m.table.SetRows(rows)

	if m.table.Cursor() >= len(rows) {
		m.table.SetCursor(max(len(rows)-1, 0))
	}
}

func (m InvoiceModel) startForm(inv *invoice.Invoice) (tea.Model, tea.Cmd) {
	var (
		number, client, notes string
		date                  = FormatDate(time.Now())
		amount                string
		status                = string(invoice.StatusUnpaid)
		rederive              bool
	)

	if inv != nil {
		number, client, notes = inv.InvoiceNumber, inv.ClientName, inv.Notes
		date = FormatDate(inv.Date)
		amount = inv.Amount.String()
		status = string(inv.Status)
	}

	fields := []huh.Field{
		huh.NewInput().Key("number").Title("Invoice number").Value(&number).Validate(required("invoice number")),
		huh.NewInput().Key("client").Title("Client").Value(&client).Validate(required("client")),
		huh.NewInput().Key("date").Title("Date").Placeholder("YYYY-MM-DD").Value(&date).Validate(validateDate),
		huh.NewInput().
			Key("amount").
			Title(fmt.Sprintf("Amount (%s)", m.currency)).
			Value(&amount).
			Validate(validateAmount),
		huh.NewSelect[string]().
			Key("status").
			Title("Status").
			Options(huh.NewOptions(string(invoice.StatusUnpaid), string(invoice.StatusPaid))...).
			Value(&status),
		huh.NewText().Key("notes").Title("Notes (optional)").Lines(3).Value(&notes),
	}

	if inv != nil {
		fields = append(fields, huh.NewConfirm().
			Key("rederive").
			Title("Recompute VAT and earning if the amount changed?").
			Affirmative("Yes").
			Negative("No").
			Value(&rederive))
	}

	m.editing = inv
	m.form = huh.NewForm(huh.NewGroup(fields...)).WithWidth(60).WithShowHelp(false)
	m.state = invoiceStateForm
	m.table.Blur()

	return m, m.form.Init()
}

func (m InvoiceModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = invoiceStateBrowse
		m.form = nil
		m.editing = nil
		m.table.Focus()

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	if m.editing == nil {
		return m, m.createCmd()
	}

	return m, m.updateCmd()
}

// formValues reads the completed form. Validation already ran, so parse errors cannot occur.
func (m InvoiceModel) formValues() (invoice.CreateParams, bool) {
	date, _ := time.Parse(time.DateOnly, strings.TrimSpace(m.form.GetString("date")))
	amount, _ := decimal.NewFromString(strings.TrimSpace(m.form.GetString("amount")))

	params := invoice.CreateParams{
		InvoiceNumber: strings.TrimSpace(m.form.GetString("number")),
		ClientName:    strings.TrimSpace(m.form.GetString("client")),
		Date:          date,
		Amount:        amount,
		Status:        invoice.Status(m.form.GetString("status")),
		Notes:         strings.TrimSpace(m.form.GetString("notes")),
	}

	if params.Status == invoice.StatusPaid {
		params.PaymentDate = &date
	}

	return params, m.form.GetBool("rederive")
}

type invoicesLoadedMsg struct {
	invoices []*invoice.Invoice
}

type invoiceSavedMsg struct {
	done string
	err  error
}

func (m InvoiceModel) loadCmd() tea.Cmd {
	svc := m.service

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		return invoicesLoadedMsg{invoices: svc.List(ctx)}
	}
}

func (m InvoiceModel) createCmd() tea.Cmd {
	svc := m.service
	params, _ := m.formValues()

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		inv, err := svc.Create(ctx, params)
		if err != nil {
			return invoiceSavedMsg{err: err}
		}

		return invoiceSavedMsg{done: fmt.Sprintf("Created invoice %s.", inv.InvoiceNumber)}
	}
}

func (m InvoiceModel) updateCmd() tea.Cmd {
	svc := m.service
	prev := m.editing
	params, rederive := m.formValues()

	patch := invoicePatch(prev, params)
	if rederive {
		patch = svc.Rederive(patch)
	}

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if err := svc.Update(ctx, prev.ID, patch); err != nil {
			return invoiceSavedMsg{err: err}
		}

		return invoiceSavedMsg{done: fmt.Sprintf("Updated invoice %s.", params.InvoiceNumber)}
	}
}

// invoicePatch holds only the fields that differ from prev.
func invoicePatch(prev *invoice.Invoice, next invoice.CreateParams) invoice.Patch {
	var p invoice.Patch

	if next.InvoiceNumber != prev.InvoiceNumber {
		p.InvoiceNumber = &next.InvoiceNumber
	}

	if next.ClientName != prev.ClientName {
		p.ClientName = &next.ClientName
	}

	if !next.Date.Equal(prev.Date) {
		p.Date = &next.Date
	}

	if !next.Amount.Equal(prev.Amount) {
		p.Amount = &next.Amount
	}

	if next.Notes != prev.Notes {
		p.Notes = &next.Notes
	}

	if next.Status != prev.Status {
		p.Status = &next.Status

		if next.Status == invoice.StatusPaid {
			p.PaymentDate = new(time.Now())
		} else {
			p.ClearPaymentDate = true
		}
	}

	return p
}

func (m InvoiceModel) togglePaidCmd(inv *invoice.Invoice) tea.Cmd {
	svc := m.service

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if inv.Status == invoice.StatusPaid {
			if err := svc.MarkUnpaid(ctx, inv.ID); err != nil {
				return invoiceSavedMsg{err: err}
			}

			return invoiceSavedMsg{done: fmt.Sprintf("Invoice %s marked unpaid.", inv.InvoiceNumber)}
		}

		if err := svc.MarkPaid(ctx, inv.ID, time.Now()); err != nil {
			return invoiceSavedMsg{err: err}
		}

		return invoiceSavedMsg{done: fmt.Sprintf("Invoice %s marked paid.", inv.InvoiceNumber)}
	}
}

func (m InvoiceModel) deleteCmd(id uuid.UUID) tea.Cmd {
	svc := m.service

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if err := svc.Delete(ctx, id); err != nil {
			return invoiceSavedMsg{err: err}
		}

		return invoiceSavedMsg{done: "Invoice deleted."}
	}
}

func (m InvoiceModel) View() string {
	switch m.state {
	case invoiceStateForm:
		title := "New invoice"
		if m.editing != nil {
			title = "Edit invoice " + m.editing.InvoiceNumber
		}

		rates := m.service.Rates()
		hint := faintStyle.Render(fmt.Sprintf("VAT %s%% and earning %s%% are derived from the amount.",
			rates.VAT.Shift(2).String(), rates.Earning.Shift(2).String()))

		return lipgloss.NewStyle().Padding(1).Render(
			accentStyle.Render(title) + "\n" + hint + "\n\n" + m.form.View(),
		)

	case invoiceStateDelete:
		inv := m.selected()
		if inv == nil {
			return ""
		}

		return lipgloss.NewStyle().Padding(1).Render(errorStyle.Render(fmt.Sprintf(
			"Delete invoice %s for %s (%s)? [y/n]",
			inv.InvoiceNumber, inv.ClientName, FormatMoney(inv.Amount, m.currency),
		)))
	}

	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading invoices...")
	}

	filter := "All"
	if f := invoiceFilters[m.filterIdx]; f != "" {
		filter = string(f)
	}

	header := fmt.Sprintf("%s  %s", accentStyle.Render("Invoices"), faintStyle.Render("Filter: "+filter))

	body := m.table.View()
	if len(m.visible) == 0 {
		body = faintStyle.Render("No invoices. Press n to create one.")
	}

	statusLine := ""
	if m.status != "" {
		statusLine = "\n" + faintStyle.Render(m.status)
	}

	return lipgloss.NewStyle().Padding(1).Render(header + "\n\n" + body + statusLine)
}
