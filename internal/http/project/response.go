package project

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/getrich/internal/project"
)

type projectResponse struct {
	ID              uuid.UUID         `json:"id"`
	Name            string            `json:"name"`
	Description     string            `json:"description"`
	Status          project.Status    `json:"status"`
	TechStack       []string          `json:"tech_stack"`
	Credentials     map[string]string `json:"credentials,omitempty"`
	DomainName      string            `json:"domain_name,omitempty"`
	DomainExpiry    *string           `json:"domain_expiry,omitempty"`
	HostingProvider string            `json:"hosting_provider,omitempty"`
	HostingRenewal  *string           `json:"hosting_renewal,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
}

type renewalResponse struct {
	ProjectID uuid.UUID           `json:"project_id"`
	Project   string              `json:"project"`
	Kind      project.RenewalKind `json:"kind"`
	Due       string              `json:"due"`
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}

	return new(t.Format(time.DateOnly))
}

func toResponse(p *project.Project) projectResponse {
	techStack := p.TechStack
	if techStack == nil {
		techStack = []string{}
	}

	return projectResponse{
		ID:              p.ID,
		Name:            p.Name,
		Description:     p.Description,
		Status:          p.Status,
		TechStack:       techStack,
		Credentials:     p.Credentials,
		DomainName:      p.DomainName,
		DomainExpiry:    formatDate(p.DomainExpiry),
		HostingProvider: p.HostingProvider,
		HostingRenewal:  formatDate(p.HostingRenewal),
		CreatedAt:       p.CreatedAt,
	}
}

func toResponseList(projects []*project.Project) []projectResponse {
	resp := make([]projectResponse, len(projects))
	for i, p := range projects {
		resp[i] = toResponse(p)
	}

	return resp
}
