package view

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/getrich/internal/project"
)

type projectState int

const (
	projectStateBrowse projectState = iota
	projectStateForm
	projectStateCredential
	projectStateDelete
)

type ProjectModel struct {
	CommonModel
	service *project.Service

	state    projectState
	table    table.Model
	form     *huh.Form
	projects []*project.Project
	visible  []*project.Project
	editing  *project.Project

	// -1 shows every status
	statusFilterIdx int
	loading         bool
	status          string
}

func NewProjectModel(svc *project.Service) ProjectModel {
	return ProjectModel{
		service:         svc,
		statusFilterIdx: -1,
		loading:         true,
		table: newTable([]table.Column{
			{Title: "Name", Width: 22},
			{Title: "Status", Width: 12},
			{Title: "Stack", Width: 20},
			{Title: "Domain", Width: 20},
			{Title: "Expires", Width: 12},
			{Title: "Hosting", Width: 14},
			{Title: "Renews", Width: 12},
		}),
	}
}

func (m ProjectModel) Title() string { return "Projects" }

func (m ProjectModel) ShortHelp() string {
	switch m.state {
	case projectStateForm, projectStateCredential:
		return "Esc: cancel | Enter/Tab: navigate form"
	case projectStateDelete:
		return "y: delete | n/Esc: keep"
	}

	return "Esc: back | n: new | e: edit | s: next status | c: add credential | d: delete | f: filter | r: refresh"
}

func (m ProjectModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m ProjectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case projectsLoadedMsg:
		m.loading = false
		m.projects = msg.projects
		m.refreshTable()

		return m, nil

	case projectSavedMsg:
		m.state = projectStateBrowse
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
		m.table.SetHeight(max(msg.Height-14, 5))
		return m, nil
	}

	switch m.state {
	case projectStateForm, projectStateCredential:
		return m.updateForm(msg)
	case projectStateDelete:
		return m.updateDelete(msg)
	}

	return m.updateBrowse(msg)
}

func (m ProjectModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc", "q":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "f":
			m.statusFilterIdx++
			if m.statusFilterIdx >= len(project.Statuses) {
				m.statusFilterIdx = -1
			}

			m.refreshTable()

			return m, nil
		case "n":
			return m.startForm(nil)
		case "e", "enter":
			if p := m.selected(); p != nil {
				return m.startForm(p)
			}
		case "s":
			if p := m.selected(); p != nil {
				return m, m.advanceStatusCmd(p)
			}
		case "c":
			if p := m.selected(); p != nil {
				return m.startCredentialForm(p)
			}
		case "d":
			if m.selected() != nil {
				m.state = projectStateDelete
			}

			return m, nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m ProjectModel) updateDelete(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "y":
		if p := m.selected(); p != nil {
			return m, m.deleteCmd(p)
		}

		m.state = projectStateBrowse
	case "n", "esc":
		m.state = projectStateBrowse
	}

	return m, nil
}

func (m ProjectModel) selected() *project.Project {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.visible) {
		return nil
	}

	return m.visible[idx]
}

func (m *ProjectModel) refreshTable() {
	m.visible = make([]*project.Project, 0, len(m.projects))
	rows := make([]table.Row, 0, len(m.projects))

	for _, p := range m.projects {
		if m.statusFilterIdx >= 0 && p.Status != project.Statuses[m.statusFilterIdx] {
			continue
		}

		m.visible = append(m.visible, p)
		rows = append(rows, table.Row{
			p.Name,
			string(p.Status),
			strings.Join(p.TechStack, ", "),
			p.DomainName,
			FormatOptionalDate(p.DomainExpiry),
			p.HostingProvider,
			FormatOptionalDate(p.HostingRenewal),
		})
	}

	m.table.SetRows(rows)

	if m.table.Cursor() >= len(rows) {
		m.table.SetCursor(max(len(rows)-1, 0))
	}
}

func (m ProjectModel) startForm(p *project.Project) (tea.Model, tea.Cmd) {
	var name, description, stack, domain, expiry, hosting, renewal string

	status := string(project.StatusPlanning)

	if p != nil {
		name, description = p.Name, p.Description
		status = string(p.Status)
		stack = strings.Join(p.TechStack, ", ")
		domain, hosting = p.DomainName, p.HostingProvider

		if p.DomainExpiry != nil {
			expiry = FormatDate(*p.DomainExpiry)
		}

		if p.HostingRenewal != nil {
			renewal = FormatDate(*p.HostingRenewal)
		}
	}

	statuses := make([]huh.Option[string], len(project.Statuses))
	for i, s := range project.Statuses {
		statuses[i] = huh.NewOption(string(s), string(s))
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Key("name").Title("Name").Value(&name).Validate(required("name")),
			huh.NewText().Key("description").Title("Description").Lines(2).Value(&description),
			huh.NewSelect[string]().Key("status").Title("Status").Options(statuses...).Value(&status),
			huh.NewInput().Key("stack").Title("Tech stack").Placeholder("Go, Postgres, React").Value(&stack),
		),
		huh.NewGroup(
			huh.NewInput().Key("domain").Title("Domain (optional)").Placeholder("example.rw").Value(&domain),
			huh.NewInput().
				Key("expiry").
				Title("Domain expiry (optional)").
				Placeholder("YYYY-MM-DD").
				Value(&expiry).
				Validate(validateOptionalDate),
			huh.NewInput().Key("hosting").Title("Hosting provider (optional)").Value(&hosting),
			huh.NewInput().
				Key("renewal").
				Title("Hosting renewal (optional)").
				Placeholder("YYYY-MM-DD").
				Value(&renewal).
				Validate(validateOptionalDate),
		),
	).WithWidth(60).WithShowHelp(false)

	m.editing = p
	m.state = projectStateForm
	m.table.Blur()

	return m, m.form.Init()
}

func (m ProjectModel) startCredentialForm(p *project.Project) (tea.Model, tea.Cmd) {
	var label, value string

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Key("label").Title("Label").Placeholder("cPanel admin").Value(&label).Validate(required("label")),
			huh.NewInput().
				Key("value").
				Title("Secret").
				EchoMode(huh.EchoModePassword).
				Value(&value).
				Validate(required("secret")),
		),
	).WithWidth(60).WithShowHelp(false)

	m.editing = p
	m.state = projectStateCredential
	m.table.Blur()

	return m, m.form.Init()
}

func (m ProjectModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = projectStateBrowse
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

	switch {
	case m.state == projectStateCredential:
		return m, m.addCredentialCmd(m.editing, m.form.GetString("label"), m.form.GetString("value"))
	case m.editing == nil:
		return m, m.createCmd(m.formValues())
	default:
		return m, m.updateCmd(m.editing, projectPatch(m.editing, m.formValues()))
	}
}

func (m ProjectModel) formValues() project.CreateParams {
	expiry, _ := parseOptionalDate(strings.TrimSpace(m.form.GetString("expiry")))
	renewal, _ := parseOptionalDate(strings.TrimSpace(m.form.GetString("renewal")))

	return project.CreateParams{
		Name:            strings.TrimSpace(m.form.GetString("name")),
		Description:     strings.TrimSpace(m.form.GetString("description")),
		Status:          project.Status(m.form.GetString("status")),
		TechStack:       splitStack(m.form.GetString("stack")),
		DomainName:      strings.TrimSpace(m.form.GetString("domain")),
		DomainExpiry:    expiry,
		HostingProvider: strings.TrimSpace(m.form.GetString("hosting")),
		HostingRenewal:  renewal,
	}
}

func splitStack(s string) []string {
	var out []string

	for part := range strings.SplitSeq(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}

	return out
}

func sameDate(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}

	return a.Equal(*b)
}

// projectPatch holds only the fields that differ from prev. A cleared date cannot
// be expressed as a patch and is left unchanged.
func projectPatch(prev *project.Project, next project.CreateParams) project.Patch {
	var p project.Patch

	if next.Name != prev.Name {
		p.Name = &next.Name
	}

	if next.Description != prev.Description {
		p.Description = &next.Description
	}

	if next.Status != prev.Status {
		p.Status = &next.Status
	}

	if !slices.Equal(next.TechStack, prev.TechStack) {
		p.TechStack = next.TechStack
		if p.TechStack == nil {
			p.TechStack = []string{}
		}
	}

	if next.DomainName != prev.DomainName {
		p.DomainName = &next.DomainName
	}

	if next.DomainExpiry != nil && !sameDate(next.DomainExpiry, prev.DomainExpiry) {
		p.DomainExpiry = next.DomainExpiry
	}

	if next.HostingProvider != prev.HostingProvider {
		p.HostingProvider = &next.HostingProvider
	}

	if next.HostingRenewal != nil && !sameDate(next.HostingRenewal, prev.HostingRenewal) {
		p.HostingRenewal = next.HostingRenewal
	}

	return p
}

// nextStatus walks Planning, Active, Maintenance, Archived and wraps around.
func nextStatus(s project.Status) project.Status {
	i := slices.Index(project.Statuses, s)
	return project.Statuses[(i+1)%len(project.Statuses)]
}

type projectsLoadedMsg struct {
	projects []*project.Project
}

type projectSavedMsg struct {
	done string
	err  error
}

func (m ProjectModel) loadCmd() tea.Cmd {
	svc := m.service

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		return projectsLoadedMsg{projects: svc.List(ctx)}
	}
}

func (m ProjectModel) createCmd(params project.CreateParams) tea.Cmd {
	svc := m.service

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		p, err := svc.Create(ctx, params)
		if err != nil {
			return projectSavedMsg{err: err}
		}

		return projectSavedMsg{done: fmt.Sprintf("Created project %s.", p.Name)}
	}
}

func (m ProjectModel) updateCmd(p *project.Project, patch project.Patch) tea.Cmd {
	svc := m.service

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if err := svc.Update(ctx, p.ID, patch); err != nil {
			return projectSavedMsg{err: err}
		}

		return projectSavedMsg{done: fmt.Sprintf("Updated project %s.", p.Name)}
	}
}

func (m ProjectModel) advanceStatusCmd(p *project.Project) tea.Cmd {
	next := nextStatus(p.Status)
	return m.updateCmd(p, project.Patch{Status: &next})
}

func (m ProjectModel) addCredentialCmd(p *project.Project, label, value string) tea.Cmd {
	svc := m.service
	label = strings.TrimSpace(label)

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if err := svc.AddCredential(ctx, p, label, value); err != nil {
			return projectSavedMsg{err: err}
		}

		return projectSavedMsg{done: fmt.Sprintf("Saved credential %q on %s.", label, p.Name)}
	}
}

func (m ProjectModel) deleteCmd(p *project.Project) tea.Cmd {
	svc := m.service

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if err := svc.Delete(ctx, p.ID); err != nil {
			return projectSavedMsg{err: err}
		}

		return projectSavedMsg{done: fmt.Sprintf("Deleted project %s.", p.Name)}
	}
}

func (m ProjectModel) View() string {
	switch m.state {
	case projectStateForm:
		title := "New project"
		if m.editing != nil {
			title = "Edit " + m.editing.Name
		}

		return lipgloss.NewStyle().Padding(1).Render(accentStyle.Render(title) + "\n\n" + m.form.View())

	case projectStateCredential:
		return lipgloss.NewStyle().Padding(1).Render(
			accentStyle.Render("Add credential to "+m.editing.Name) + "\n\n" + m.form.View(),
		)

	case projectStateDelete:
		p := m.selected()
		if p == nil {
			return ""
		}

		return lipgloss.NewStyle().Padding(1).Render(
			errorStyle.Render(fmt.Sprintf("Delete project %s and its credentials? [y/n]", p.Name)),
		)
	}

	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading projects...")
	}

	filter := "All"
	if m.statusFilterIdx >= 0 {
		filter = string(project.Statuses[m.statusFilterIdx])
	}

	header := fmt.Sprintf("%s  %s", accentStyle.Render("Projects"), faintStyle.Render("Filter: "+filter))

	body := m.table.View()
	if len(m.visible) == 0 {
		body = faintStyle.Render("No projects. Press n to add one.")
	}

	details := ""
	if p := m.selected(); p != nil {
		details = "\n" + projectDetails(p)
	}

	statusLine := ""
	if m.status != "" {
		statusLine = "\n" + faintStyle.Render(m.status)
	}

	return lipgloss.NewStyle().Padding(1).Render(header + "\n\n" + body + details + statusLine)
}

// projectDetails lists credential labels only; secret values are never rendered.
func projectDetails(p *project.Project) string {
	desc := p.Description
	if desc == "" {
		desc = "No description."
	}

	creds := "none"
	if len(p.Credentials) > 0 {
		creds = strings.Join(slices.Sorted(maps.Keys(p.Credentials)), ", ")
	}

	return boxStyle.Width(80).Render(fmt.Sprintf("%s\nCredentials: %s", desc, creds))
}
