package category

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/saldo/internal/category"
	"github.com/MrJamesThe3rd/saldo/internal/http/render"
)

type Handler struct {
	svc *category.Service
}

func NewHandler(svc *category.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/category", h.create)
	r.Get("/categories", h.list)
}

type createCategoryRequest struct {
	Name            string `json:"name"`
	DefaultCategory bool   `json:"defaultCategory"`
}

type categoryResponse struct {
	Name    string `json:"name"`
	Default bool   `json:"default"`
}

type createCategoryResponse struct {
	Message     string           `json:"message"`
	NewCategory categoryResponse `json:"newCategory"`
}

type listCategoriesResponse struct {
	Categories []categoryResponse `json:"categories"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createCategoryRequest
	if !render.Decode(w, r, &req) {
		return
	}

	c, err := h.svc.Create(r.Context(), category.CreateParams{
		Name:    req.Name,
		Default: req.DefaultCategory,
	})
	if err != nil {
		if errors.Is(err, category.ErrMissingName) {
			render.Error(w, http.StatusBadRequest, err.Error())
			return
		}

		slog.Error("failed to add category", "error", err)
		render.Error(w, http.StatusInternalServerError, "error adding category: "+err.Error())

		return
	}

	render.JSON(w, http.StatusCreated, createCategoryResponse{
		Message:     "Category added successfully",
		NewCategory: categoryResponse{Name: c.Name, Default: c.Default},
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	cats, err := h.svc.List(r.Context())
	if err != nil {
		render.Error(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := listCategoriesResponse{Categories: make([]categoryResponse, len(cats))}
	for i, c := range cats {
		resp.Categories[i] = categoryResponse{Name: c.Name, Default: c.Default}
	}

	render.JSON(w, http.StatusOK, resp)
}
