// Package account serves the connection setup, sign-in and readiness endpoints.
package account

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/getrich/internal/backend"
	"github.com/MrJamesThe3rd/getrich/internal/http/respond"
	"github.com/MrJamesThe3rd/getrich/internal/readiness"
)

// ConnectionStore persists the connection entered through PUT /config.
type ConnectionStore interface {
	SaveConnection(cfg backend.Config) error
}

// AIStatus reports whether insight generation is available.
type AIStatus interface {
	Enabled() bool
}

type Handler struct {
	accessor *backend.Accessor
	tracker  *readiness.Tracker
	conns    ConnectionStore
	ai       AIStatus

	mu          sync.Mutex
	unsubscribe func()
}

// NewHandler subscribes the tracker to the current handle's auth events.
func NewHandler(accessor *backend.Accessor, tracker *readiness.Tracker, conns ConnectionStore, ai AIStatus) *Handler {
	h := &Handler{
		accessor: accessor,
		tracker:  tracker,
		conns:    conns,
		ai:       ai,
	}

	if accessor.IsConfigured() {
		h.watch(accessor.Handle())
	}

	return h
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/status", h.status)
	r.Put("/config", h.saveConfig)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/signin", h.signIn)
		r.Post("/signup", h.signUp)
		r.Post("/signout", h.signOut)
		r.Get("/session", h.session)
	})
}

// Close drops the auth subscription.
func (h *Handler) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.unsubscribe != nil {
		h.unsubscribe()
		h.unsubscribe = nil
	}
}

func (h *Handler) watch(handle backend.Handle) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.unsubscribe != nil {
		h.unsubscribe()
	}

	h.unsubscribe = handle.OnAuthStateChange(h.tracker.Observe)
}

// TrackAuthFailures moves the tracker back to AUTH whenever a request ends
// with 401.
func (h *Handler) TrackAuthFailures(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		if ww.Status() == http.StatusUnauthorized {
			h.tracker.AuthFailed()
		}
	})
}

type userResponse struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
}

type statusResponse struct {
	State           string        `json:"state"`
	Configured      bool          `json:"configured"`
	BackendURL      string        `json:"backend_url,omitempty"`
	InsightsEnabled bool          `json:"insights_enabled"`
	User            *userResponse `json:"user"`
}

func toUser(u *backend.User) *userResponse {
	if u == nil {
		return nil
	}

	return &userResponse{ID: u.ID, Email: u.Email}
}

// resolve settles a LOADING state by asking the handle for its session.
func (h *Handler) resolve(ctx context.Context) {
	if h.tracker.State(h.accessor.IsConfigured()) != readiness.Loading {
		return
	}

	s, err := h.accessor.Handle().Session(ctx)

	// A network failure keeps the hydrated session; the next request retries.
	switch {
	case err == nil:
		h.tracker.Resolved(s)
	case backend.IsAuthError(err):
		h.tracker.AuthFailed()
	default:
		slog.Error("failed to resolve session", "error", err)
	}
}

func (h *Handler) status(w http.ResponseWriter, r *http.Request) {
	h.resolve(r.Context())

	cfg, configured := h.accessor.Config()
	configured = configured && backend.IsConfigured(cfg)

	resp := statusResponse{
		State:           h.tracker.State(configured).String(),
		Configured:      configured,
		InsightsEnabled: h.ai != nil && h.ai.Enabled(),
		User:            toUser(h.tracker.User()),
	}

	if configured {
		resp.BackendURL = cfg.URL
	}

	respond.JSON(w, http.StatusOK, resp)
}

type configRequest struct {
	URL     string `json:"url" validate:"required,url,startswith=https://"`
	AnonKey string `json:"anon_key" validate:"required"`
}

func (h *Handler) saveConfig(w http.ResponseWriter, r *http.Request) {
	var req configRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, err)
		return
	}

	cfg := backend.Config{
		URL:     strings.TrimRight(strings.TrimSpace(req.URL), "/"),
		AnonKey: strings.TrimSpace(req.AnonKey),
	}

	if !backend.IsConfigured(cfg) {
		respond.Error(w, fmt.Errorf("%w: anon key must be longer than %d characters", respond.ErrInvalid, backend.MinAnonKeyLength))
		return
	}

	if err := h.conns.SaveConnection(cfg); err != nil {
		respond.Error(w, fmt.Errorf("saving connection: %w", err))
		return
	}

	h.tracker.Reset()
	h.watch(h.accessor.Reinitialize())

	slog.Info("backend connection updated", "url", cfg.URL)

	h.status(w, r)
}

type credentialsRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type sessionResponse struct {
	User                 *userResponse `json:"user"`
	ConfirmationRequired bool          `json:"confirmation_required,omitempty"`
}

func (h *Handler) requireConfigured(w http.ResponseWriter) bool {
	if h.accessor.IsConfigured() {
		return true
	}

	respond.Error(w, backend.ErrNotConfigured)

	return false
}

func (h *Handler) signIn(w http.ResponseWriter, r *http.Request) {
	if !h.requireConfigured(w) {
		return
	}

	var req credentialsRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, err)
		return
	}

	s, err := h.accessor.Handle().SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		respond.Error(w, err)
		return
	}

	h.tracker.SignedIn(s)

	respond.JSON(w, http.StatusOK, sessionResponse{User: toUser(&s.User)})
}

func (h *Handler) signUp(w http.ResponseWriter, r *http.Request) {
	if !h.requireConfigured(w) {
		return
	}

	var req credentialsRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, err)
		return
	}

	s, err := h.accessor.Handle().SignUp(r.Context(), req.Email, req.Password)
	if err != nil {
		respond.Error(w, err)
		return
	}

	if s == nil {
		respond.JSON(w, http.StatusCreated, sessionResponse{ConfirmationRequired: true})
		return
	}

	h.tracker.SignedIn(s)

	respond.JSON(w, http.StatusCreated, sessionResponse{User: toUser(&s.User)})
}

func (h *Handler) signOut(w http.ResponseWriter, r *http.Request) {
	if err := h.accessor.Handle().SignOut(r.Context()); err != nil {
		slog.Error("failed to sign out", "error", err)
	}

	h.tracker.SignedOut()

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) {
	if !h.requireConfigured(w) {
		return
	}

	s, err := h.accessor.Handle().Session(r.Context())
	if err != nil {
		respond.Error(w, err)
		return
	}

	if s == nil {
		respond.Error(w, backend.ErrNotAuthenticated)
		return
	}

	respond.JSON(w, http.StatusOK, sessionResponse{User: toUser(&s.User)})
}
