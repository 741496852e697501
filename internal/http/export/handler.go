package export

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/saldo/internal/export"
	"github.com/MrJamesThe3rd/saldo/internal/http/auth"
	"github.com/MrJamesThe3rd/saldo/internal/http/render"
	"github.com/MrJamesThe3rd/saldo/internal/report"
	"github.com/MrJamesThe3rd/saldo/internal/transaction"
)

type Handler struct {
	svc *export.Service
}

func NewHandler(svc *export.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/transactions/export", h.download)
}

// download streams the user's statement as CSV, or as a plain-text summary
// with format=summary. startDate and endDate are optional days; endDate is
// included.
func (h *Handler) download(w http.ResponseWriter, r *http.Request) {
	filter := transaction.ListFilter{UserID: auth.UserID(r.Context())}

	if s := r.URL.Query().Get("startDate"); s != "" {
		t, err := report.ParseDate(s)
		if err != nil {
			render.Error(w, http.StatusBadRequest, err.Error())
			return
		}

		filter.StartDate = &t
	}

	if s := r.URL.Query().Get("endDate"); s != "" {
		t, err := report.ParseDate(s)
		if err != nil {
			render.Error(w, http.StatusBadRequest, err.Error())
			return
		}

		end := t.AddDate(0, 0, 1)
		filter.EndDate = &end
	}

	if filter.StartDate != nil && filter.EndDate != nil && !filter.StartDate.Before(*filter.EndDate) {
		render.Error(w, http.StatusBadRequest, "startDate is after endDate")
		return
	}

	var buf bytes.Buffer

	txs, err := h.svc.Export(r.Context(), &buf, filter)
	if err != nil {
		slog.Error("failed to export statement", "error", err)
		render.Error(w, http.StatusInternalServerError, err.Error())

		return
	}

	if r.URL.Query().Get("format") == "summary" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")

		if _, err := fmt.Fprint(w, export.GenerateSummary(txs)); err != nil {
			slog.Error("failed to write summary", "error", err)
		}

		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename(filter.StartDate, filter.EndDate)))
	w.Header().Set("X-Transaction-Count", fmt.Sprint(len(txs)))

	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("failed to write export", "error", err)
	}
}
