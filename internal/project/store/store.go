package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/getrich/internal/backend"
	"github.com/MrJamesThe3rd/getrich/internal/project"
)

const table = "projects"

type Store struct {
	handles backend.Provider
}

func New(handles backend.Provider) *Store {
	return &Store{handles: handles}
}

type row struct {
	ID              *uuid.UUID        `json:"id,omitempty"`
	UserID          uuid.UUID         `json:"user_id"`
	Name            string            `json:"name"`
	Description     string            `json:"description"`
	Status          project.Status    `json:"status"`
	TechStack       []string          `json:"tech_stack"`
	Credentials     map[string]string `json:"credentials"`
	DomainName      *string           `json:"domain_name"`
	DomainExpiry    *string           `json:"domain_expiry"`
	HostingProvider *string           `json:"hosting_provider"`
	HostingRenewal  *string           `json:"hosting_renewal"`
	CreatedAt       *time.Time        `json:"created_at,omitempty"`
}

func optional(s string) *string {
	if s == "" {
		return nil
	}

	return &s
}

func optionalDate(t *time.Time) *string {
	if t == nil {
		return nil
	}

	return new(t.Format(time.DateOnly))
}

func parseOptionalDate(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}

	t, err := time.Parse(time.DateOnly, *s)
	if err != nil {
		return nil, err
	}

	return &t, nil
}

func toRow(p *project.Project) row {
	techStack := p.TechStack
	if techStack == nil {
		techStack = []string{}
	}

	return row{
		UserID:          p.UserID,
		Name:            p.Name,
		Description:     p.Description,
		Status:          p.Status,
		TechStack:       techStack,
		Credentials:     p.Credentials,
		DomainName:      optional(p.DomainName),
		DomainExpiry:    optionalDate(p.DomainExpiry),
		HostingProvider: optional(p.HostingProvider),
		HostingRenewal:  optionalDate(p.HostingRenewal),
	}
}

func scanProject(r row) (*project.Project, error) {
	p := &project.Project{
		UserID:      r.UserID,
		Name:        r.Name,
		Description: r.Description,
		Status:      r.Status,
		TechStack:   r.TechStack,
		Credentials: r.Credentials,
	}

	if r.ID != nil {
		p.ID = *r.ID
	}

	if r.CreatedAt != nil {
		p.CreatedAt = *r.CreatedAt
	}

	if r.DomainName != nil {
		p.DomainName = *r.DomainName
	}

	if r.HostingProvider != nil {
		p.HostingProvider = *r.HostingProvider
	}

	var err error

	if p.DomainExpiry, err = parseOptionalDate(r.DomainExpiry); err != nil {
		return nil, fmt.Errorf("parsing domain expiry: %w", err)
	}

	if p.HostingRenewal, err = parseOptionalDate(r.HostingRenewal); err != nil {
		return nil, fmt.Errorf("parsing hosting renewal: %w", err)
	}

	return p, nil
}

func (s *Store) ListProjects(ctx context.Context) ([]*project.Project, error) {
	var rows []row
	if err := s.handles.Handle().Select(ctx, table, backend.Query{Order: "created_at"}, &rows); err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}

	projects := make([]*project.Project, 0, len(rows))

	for _, r := range rows {
		p, err := scanProject(r)
		if err != nil {
			return nil, fmt.Errorf("scanning project: %w", err)
		}

		projects = append(projects, p)
	}

	return projects, nil
}

func (s *Store) CreateProject(ctx context.Context, p *project.Project) error {
	var created row
	if err := s.handles.Handle().Insert(ctx, table, toRow(p), &created); err != nil {
		return fmt.Errorf("creating project: %w", err)
	}

	stored, err := scanProject(created)
	if err != nil {
		return fmt.Errorf("scanning project: %w", err)
	}

	*p = *stored

	return nil
}

func (s *Store) UpdateProject(ctx context.Context, id uuid.UUID, patch project.Patch) error {
	fields := make(map[string]any)

	if patch.Name != nil {
		fields["name"] = *patch.Name
	}

	if patch.Description != nil {
		fields["description"] = *patch.Description
	}

	if patch.Status != nil {
		fields["status"] = *patch.Status
	}

	if patch.TechStack != nil {
		fields["tech_stack"] = patch.TechStack
	}

	if patch.Credentials != nil {
		fields["credentials"] = patch.Credentials
	}

	if patch.DomainName != nil {
		fields["domain_name"] = *patch.DomainName
	}

	if patch.DomainExpiry != nil {
		fields["domain_expiry"] = patch.DomainExpiry.Format(time.DateOnly)
	}

	if patch.HostingProvider != nil {
		fields["hosting_provider"] = *patch.HostingProvider
	}

	if patch.HostingRenewal != nil {
		fields["hosting_renewal"] = patch.HostingRenewal.Format(time.DateOnly)
	}

	if err := s.handles.Handle().Update(ctx, table, id, fields); err != nil {
		return fmt.Errorf("updating project: %w", err)
	}

	return nil
}

func (s *Store) DeleteProject(ctx context.Context, id uuid.UUID) error {
	if err := s.handles.Handle().Delete(ctx, table, id); err != nil {
		return fmt.Errorf("deleting project: %w", err)
	}

	return nil
}
