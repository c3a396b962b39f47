package project

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/getrich/internal/backend"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=project
type Repository interface {
	ListProjects(ctx context.Context) ([]*Project, error)
	CreateProject(ctx context.Context, p *Project) error
	UpdateProject(ctx context.Context, id uuid.UUID, patch Patch) error
	DeleteProject(ctx context.Context, id uuid.UUID) error
}

type Service struct {
	repo     Repository
	identity backend.Identity
}

func NewService(repo Repository, identity backend.Identity) *Service {
	return &Service{repo: repo, identity: identity}
}

type CreateParams struct {
	Name            string
	Description     string
	Status          Status
	TechStack       []string
	Credentials     map[string]string
	DomainName      string
	DomainExpiry    *time.Time
	HostingProvider string
	HostingRenewal  *time.Time
}

// Patch changes the fields that are set. Credentials, when set, replaces the whole map.
type Patch struct {
	Name            *string
	Description     *string
	Status          *Status
	TechStack       []string
	Credentials     map[string]string
	DomainName      *string
	DomainExpiry    *time.Time
	HostingProvider *string
	HostingRenewal  *time.Time
}

func (p Patch) Empty() bool {
	return p.Name == nil && p.Description == nil && p.Status == nil &&
		p.TechStack == nil && p.Credentials == nil && p.DomainName == nil &&
		p.DomainExpiry == nil && p.HostingProvider == nil && p.HostingRenewal == nil
}

// List returns projects, most recently created first. Failures degrade to an empty list.
func (s *Service) List(ctx context.Context) []*Project {
	projects, err := s.Fetch(ctx)
	if err != nil {
		if !errors.Is(err, backend.ErrNotConfigured) {
			slog.Error("failed to list projects", "error", err)
		}

		return []*Project{}
	}

	return projects
}

// Fetch reports failures instead of degrading; see List.
func (s *Service) Fetch(ctx context.Context) ([]*Project, error) {
	if !s.identity.IsConfigured() {
		return nil, backend.ErrNotConfigured
	}

	projects, err := s.repo.ListProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}

	return projects, nil
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Project, error) {
	actor, err := s.identity.Actor(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating project: %w", err)
	}

	status := params.Status
	if status == "" {
		status = StatusPlanning
	}

	p := &Project{
		UserID:          actor,
		Name:            params.Name,
		Description:     params.Description,
		Status:          status,
		TechStack:       params.TechStack,
		Credentials:     params.Credentials,
		DomainName:      params.DomainName,
		DomainExpiry:    params.DomainExpiry,
		HostingProvider: params.HostingProvider,
		HostingRenewal:  params.HostingRenewal,
	}

	if err := s.repo.CreateProject(ctx, p); err != nil {
		return nil, fmt.Errorf("creating project: %w", err)
	}

	return p, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, patch Patch) error {
	if !s.identity.IsConfigured() {
		return backend.ErrNotConfigured
	}

	if patch.Empty() {
		return nil
	}

	if err := s.repo.UpdateProject(ctx, id, patch); err != nil {
		return fmt.Errorf("updating project: %w", err)
	}

	return nil
}

// AddCredential stores one credential on p, keeping the existing ones.
func (s *Service) AddCredential(ctx context.Context, p *Project, label, value string) error {
	creds := make(map[string]string, len(p.Credentials)+1)
	maps.Copy(creds, p.Credentials)

	creds[label] = value

	if err := s.Update(ctx, p.ID, Patch{Credentials: creds}); err != nil {
		return err
	}

	p.Credentials = creds

	return nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if !s.identity.IsConfigured() {
		return backend.ErrNotConfigured
	}

	if err := s.repo.DeleteProject(ctx, id); err != nil {
		return fmt.Errorf("deleting project: %w", err)
	}

	return nil
}
