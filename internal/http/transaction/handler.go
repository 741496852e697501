package transaction

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/saldo/internal/http/auth"
	"github.com/MrJamesThe3rd/saldo/internal/http/render"
	"github.com/MrJamesThe3rd/saldo/internal/transaction"
)

type Handler struct {
	svc *transaction.Service
}

func NewHandler(svc *transaction.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/transaction", h.create)
	r.Delete("/transaction/{id}", h.delete)
	r.Get("/saldo/reconcile", h.reconcile)
	r.Post("/saldo/reconcile", h.repair)
}

type createTransactionRequest struct {
	Type     string           `json:"type"`
	Category string           `json:"category"`
	Amount   *decimal.Decimal `json:"amount"`
}

type createTransactionResponse struct {
	Message        string   `json:"message"`
	NewTransaction Response `json:"newTransaction"`
}

// WriteError maps ledger errors onto status codes.
func WriteError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, transaction.ErrMissingFields),
		errors.Is(err, transaction.ErrInvalidType),
		errors.Is(err, transaction.ErrInvalidAmount),
		errors.Is(err, transaction.ErrInvalidCategory):
		render.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, transaction.ErrForbidden):
		render.Error(w, http.StatusForbidden, "you are not authorized to delete this transaction")
	case errors.Is(err, transaction.ErrNotFound),
		errors.Is(err, transaction.ErrUserNotFound):
		render.Error(w, http.StatusNotFound, err.Error())
	default:
		slog.Error("ledger operation failed", "error", err)
		render.Error(w, http.StatusInternalServerError, err.Error())
	}
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if !render.Decode(w, r, &req) {
		return
	}

	if req.Type == "" || req.Category == "" || req.Amount == nil {
		render.Error(w, http.StatusBadRequest, transaction.ErrMissingFields.Error())
		return
	}

	amount, err := transaction.ParseAmount(req.Amount.String())
	if err != nil {
		WriteError(w, err)
		return
	}

	tx, err := h.svc.Create(r.Context(), transaction.CreateParams{
		UserID:   auth.UserID(r.Context()),
		Type:     transaction.Type(req.Type),
		Category: req.Category,
		Amount:   amount,
	})
	if err != nil {
		WriteError(w, err)
		return
	}

	render.JSON(w, http.StatusCreated, createTransactionResponse{
		Message:        "Transaction added successfully",
		NewTransaction: ToResponse(tx),
	})
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		// ids are server-generated uuids, so anything else cannot exist
		render.Error(w, http.StatusNotFound, transaction.ErrNotFound.Error())
		return
	}

	if err := h.svc.Delete(r.Context(), auth.UserID(r.Context()), id); err != nil {
		WriteError(w, err)
		return
	}

	render.JSON(w, http.StatusOK, render.Message{Message: "Transaction deleted successfully"})
}

func (h *Handler) reconcile(w http.ResponseWriter, r *http.Request) {
	rec, err := h.svc.Reconcile(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		WriteError(w, err)
		return
	}

	render.JSON(w, http.StatusOK, toReconciliationResponse(rec, false))
}

func (h *Handler) repair(w http.ResponseWriter, r *http.Request) {
	uid := auth.UserID(r.Context())

	rec, err := h.svc.Repair(r.Context(), uid)
	if err != nil {
		WriteError(w, err)
		return
	}

	if rec.Drift {
		slog.Warn("repaired drifted balance", "user_id", uid, "stored", rec.Stored, "computed", rec.Computed)
	}

	render.JSON(w, http.StatusOK, toReconciliationResponse(rec, true))
}
