package project

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/getrich/internal/http/respond"
	"github.com/MrJamesThe3rd/getrich/internal/project"
)

var errNotFound = errors.New("project not found")

type Handler struct {
	svc *project.Service
}

func NewHandler(svc *project.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/renewals", h.renewals)
	r.Patch("/{id}", h.update)
	r.Post("/{id}/credentials", h.addCredential)
	r.Delete("/{id}", h.delete)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, toResponseList(h.svc.List(r.Context())))
}

type createProjectRequest struct {
	Name            string            `json:"name" validate:"required"`
	Description     string            `json:"description"`
	Status          project.Status    `json:"status" validate:"omitempty,oneof=Planning Active Maintenance Archived"`
	TechStack       []string          `json:"tech_stack" validate:"omitempty,dive,required"`
	Credentials     map[string]string `json:"credentials"`
	DomainName      string            `json:"domain_name" validate:"omitempty,fqdn"`
	DomainExpiry    string            `json:"domain_expiry" validate:"omitempty,datetime=2006-01-02"`
	HostingProvider string            `json:"hosting_provider"`
	HostingRenewal  string            `json:"hosting_renewal" validate:"omitempty,datetime=2006-01-02"`
}

func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}

	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil
	}

	return &t
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createProjectRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, err)
		return
	}

	p, err := h.svc.Create(r.Context(), project.CreateParams{
		Name:            req.Name,
		Description:     req.Description,
		Status:          req.Status,
		TechStack:       req.TechStack,
		Credentials:     req.Credentials,
		DomainName:      req.DomainName,
		DomainExpiry:    parseDate(req.DomainExpiry),
		HostingProvider: req.HostingProvider,
		HostingRenewal:  parseDate(req.HostingRenewal),
	})
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toResponse(p))
}

func (h *Handler) renewals(w http.ResponseWriter, r *http.Request) {
	window := 30 * 24 * time.Hour

	if s := r.URL.Query().Get("days"); s != "" {
		days, err := strconv.Atoi(s)
		if err != nil || days < 0 {
			respond.Error(w, fmt.Errorf("%w: days must be a non-negative integer", respond.ErrInvalid))
			return
		}

		window = time.Duration(days) * 24 * time.Hour
	}

	due := project.RenewalsDue(h.svc.List(r.Context()), time.Now(), window)

	resp := make([]renewalResponse, len(due))
	for i, d := range due {
		resp[i] = renewalResponse{
			ProjectID: d.Project.ID,
			Project:   d.Project.Name,
			Kind:      d.Kind,
			Due:       d.Due.Format(time.DateOnly),
		}
	}

	respond.JSON(w, http.StatusOK, resp)
}

type updateProjectRequest struct {
	Name            *string           `json:"name,omitempty" validate:"omitempty,min=1"`
	Description     *string           `json:"description,omitempty"`
	Status          *project.Status   `json:"status,omitempty" validate:"omitempty,oneof=Planning Active Maintenance Archived"`
	TechStack       []string          `json:"tech_stack,omitempty"`
	Credentials     map[string]string `json:"credentials,omitempty"`
	DomainName      *string           `json:"domain_name,omitempty"`
	DomainExpiry    *string           `json:"domain_expiry,omitempty" validate:"omitempty,datetime=2006-01-02"`
	HostingProvider *string           `json:"hosting_provider,omitempty"`
	HostingRenewal  *string           `json:"hosting_renewal,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

func parseID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid id", respond.ErrInvalid)
	}

	return id, nil
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respond.Error(w, err)
		return
	}

	var req updateProjectRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, err)
		return
	}

	patch := project.Patch{
		Name:            req.Name,
		Description:     req.Description,
		Status:          req.Status,
		TechStack:       req.TechStack,
		Credentials:     req.Credentials,
		DomainName:      req.DomainName,
		HostingProvider: req.HostingProvider,
	}

	if req.DomainExpiry != nil {
		patch.DomainExpiry = parseDate(*req.DomainExpiry)
	}

	if req.HostingRenewal != nil {
		patch.HostingRenewal = parseDate(*req.HostingRenewal)
	}

	if err := h.svc.Update(r.Context(), id, patch); err != nil {
		respond.Error(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type addCredentialRequest struct {
	Label string `json:"label" validate:"required"`
	Value string `json:"value" validate:"required"`
}

func (h *Handler) addCredential(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respond.Error(w, err)
		return
	}

	var req addCredentialRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, err)
		return
	}

	var target *project.Project

	for _, p := range h.svc.List(r.Context()) {
		if p.ID == id {
			target = p
			break
		}
	}

	if target == nil {
		http.Error(w, errNotFound.Error(), http.StatusNotFound)
		return
	}

	if err := h.svc.AddCredential(r.Context(), target, req.Label, req.Value); err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(target))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respond.Error(w, err)
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		respond.Error(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
