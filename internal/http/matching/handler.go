package matching

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/getrich/internal/http/respond"
	"github.com/MrJamesThe3rd/getrich/internal/matching"
)

type Handler struct {
	svc *matching.Service
}

func NewHandler(svc *matching.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/suggest", h.suggest)
	r.Post("/", h.learn)
}

type suggestResponse struct {
	Description string `json:"description"`
	Category    string `json:"category"`
}

func (h *Handler) suggest(w http.ResponseWriter, r *http.Request) {
	desc := r.URL.Query().Get("description")
	if desc == "" {
		respond.Error(w, fmt.Errorf("%w: description query parameter is required", respond.ErrInvalid))
		return
	}

	category, err := h.svc.Suggest(r.Context(), desc)
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, suggestResponse{
		Description: desc,
		Category:    category,
	})
}

type learnRequest struct {
	Pattern  string `json:"pattern" validate:"required"`
	Category string `json:"category" validate:"required"`
}

func (h *Handler) learn(w http.ResponseWriter, r *http.Request) {
	var req learnRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, err)
		return
	}

	if err := h.svc.Learn(r.Context(), req.Pattern, req.Category); err != nil {
		if errors.Is(err, matching.ErrEmptyPattern) || errors.Is(err, matching.ErrUnknownCategory) {
			err = fmt.Errorf("%w: %v", respond.ErrInvalid, err)
		}

		respond.Error(w, err)

		return
	}

	w.WriteHeader(http.StatusCreated)
}
