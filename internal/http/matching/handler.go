package matching

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/saldo/internal/http/auth"
	"github.com/MrJamesThe3rd/saldo/internal/http/render"
	"github.com/MrJamesThe3rd/saldo/internal/matching"
)

type Handler struct {
	svc *matching.Service
}

func NewHandler(svc *matching.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/rules", h.list)
	r.Post("/rules", h.learn)
	r.Get("/rules/suggest", h.suggest)
	r.Delete("/rules/{id}", h.forget)
}

type ruleResponse struct {
	ID        uuid.UUID `json:"id"`
	Pattern   string    `json:"pattern"`
	Category  string    `json:"category"`
	CreatedAt time.Time `json:"createdAt"`
}

func toRuleResponse(r matching.Rule) ruleResponse {
	return ruleResponse{ID: r.ID, Pattern: r.Pattern, Category: r.Category, CreatedAt: r.CreatedAt}
}

type rulesResponse struct {
	Rules []ruleResponse `json:"rules"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	rules, err := h.svc.List(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		render.Error(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := rulesResponse{Rules: make([]ruleResponse, len(rules))}
	for i, rule := range rules {
		resp.Rules[i] = toRuleResponse(rule)
	}

	render.JSON(w, http.StatusOK, resp)
}

type suggestResponse struct {
	Description string `json:"description"`
	Category    string `json:"category"`
}

func (h *Handler) suggest(w http.ResponseWriter, r *http.Request) {
	desc := r.URL.Query().Get("description")
	if desc == "" {
		render.Error(w, http.StatusBadRequest, "description query parameter is required")
		return
	}

	category, err := h.svc.Suggest(r.Context(), auth.UserID(r.Context()), desc)
	if err != nil {
		render.Error(w, http.StatusInternalServerError, err.Error())
		return
	}

	render.JSON(w, http.StatusOK, suggestResponse{Description: desc, Category: category})
}

type learnRequest struct {
	Pattern  string `json:"pattern"`
	Category string `json:"category"`
}

type learnResponse struct {
	Message string       `json:"message"`
	Rule    ruleResponse `json:"rule"`
}

func (h *Handler) learn(w http.ResponseWriter, r *http.Request) {
	var req learnRequest
	if !render.Decode(w, r, &req) {
		return
	}

	rule, err := h.svc.Learn(r.Context(), auth.UserID(r.Context()), req.Pattern, req.Category)
	if err != nil {
		if errors.Is(err, matching.ErrMissingFields) || errors.Is(err, matching.ErrUnknownCategory) {
			render.Error(w, http.StatusBadRequest, err.Error())
			return
		}

		slog.Error("failed to save rule", "error", err)
		render.Error(w, http.StatusInternalServerError, err.Error())

		return
	}

	render.JSON(w, http.StatusCreated, learnResponse{
		Message: "Rule saved successfully",
		Rule:    toRuleResponse(*rule),
	})
}

func (h *Handler) forget(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		render.Error(w, http.StatusNotFound, matching.ErrNotFound.Error())
		return
	}

	if err := h.svc.Forget(r.Context(), auth.UserID(r.Context()), id); err != nil {
		if errors.Is(err, matching.ErrNotFound) {
			render.Error(w, http.StatusNotFound, err.Error())
			return
		}

		render.Error(w, http.StatusInternalServerError, err.Error())

		return
	}

	render.JSON(w, http.StatusOK, render.Message{Message: "Rule deleted successfully"})
}
