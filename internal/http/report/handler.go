package report

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/saldo/internal/http/auth"
	"github.com/MrJamesThe3rd/saldo/internal/http/render"
	httptx "github.com/MrJamesThe3rd/saldo/internal/http/transaction"
	"github.com/MrJamesThe3rd/saldo/internal/report"
	"github.com/MrJamesThe3rd/saldo/internal/transaction"
	"github.com/MrJamesThe3rd/saldo/internal/user"
)

type Handler struct {
	svc *report.Service
}

func NewHandler(svc *report.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/transactions/monthly", h.monthly)
	r.Get("/transactions/latest", h.latest)
	r.Get("/transaction/weekly-expenses", h.weekly)
	r.Get("/statistics", h.statistics)
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, report.ErrInvalidPeriod), errors.Is(err, report.ErrInvalidType):
		render.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, report.ErrEmpty), errors.Is(err, user.ErrNotFound):
		render.Error(w, http.StatusNotFound, err.Error())
	default:
		render.Error(w, http.StatusInternalServerError, err.Error())
	}
}

// queryInts reads required integer query parameters in order.
func queryInts(r *http.Request, names ...string) ([]int, error) {
	vals := make([]int, len(names))

	for i, name := range names {
		s := r.URL.Query().Get(name)
		if s == "" {
			return nil, fmt.Errorf("missing required field %q", name)
		}

		n, err := strconv.Atoi(s)
		if err != nil {
			return nil, fmt.Errorf("%s must be a number", name)
		}

		vals[i] = n
	}

	return vals, nil
}

type transactionsResponse struct {
	Message      string             `json:"message"`
	Transactions []httptx.Response `json:"transactions"`
}

func (h *Handler) monthly(w http.ResponseWriter, r *http.Request) {
	typ := r.URL.Query().Get("type")
	if typ == "" {
		render.Error(w, http.StatusBadRequest, `missing required field "type"`)
		return
	}

	vals, err := queryInts(r, "month", "year")
	if err != nil {
		render.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	month, year := vals[0], vals[1]

	txs, err := h.svc.Monthly(r.Context(), auth.UserID(r.Context()), typ, month, year)
	if err != nil {
		if errors.Is(err, report.ErrEmpty) {
			render.Error(w, http.StatusNotFound, fmt.Sprintf("no %s transactions found for %d-%d", typ, month, year))
			return
		}

		writeError(w, err)

		return
	}

	render.JSON(w, http.StatusOK, transactionsResponse{
		Message:      fmt.Sprintf("%s transactions for %d-%d", typ, month, year),
		Transactions: httptx.ToResponseList(txs),
	})
}

func (h *Handler) latest(w http.ResponseWriter, r *http.Request) {
	txs, err := h.svc.Latest(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}

	render.JSON(w, http.StatusOK, transactionsResponse{
		Message:      "Latest transactions retrieved successfully",
		Transactions: httptx.ToResponseList(txs),
	})
}

type weekResponse struct {
	Week  int     `json:"week"`
	Start string  `json:"start"`
	End   string  `json:"end"`
	Total float64 `json:"total"`
}

type weeklyResponse struct {
	Year  int            `json:"year"`
	Month int            `json:"month"`
	Weeks []weekResponse `json:"weeks"`
}

func (h *Handler) weekly(w http.ResponseWriter, r *http.Request) {
	vals, err := queryInts(r, "year", "month")
	if err != nil {
		render.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	weeks, err := h.svc.WeeklyExpenses(r.Context(), auth.UserID(r.Context()), vals[0], vals[1])
	if err != nil {
		writeError(w, err)
		return
	}

	resp := weeklyResponse{Year: vals[0], Month: vals[1], Weeks: make([]weekResponse, len(weeks))}
	for i, wk := range weeks {
		resp.Weeks[i] = weekResponse{
			Week:  wk.Week,
			Start: wk.Start.Format(time.DateOnly),
			End:   wk.End.Format(time.DateOnly),
			Total: transaction.Major(wk.Total),
		}
	}

	render.JSON(w, http.StatusOK, resp)
}

type statisticsResponse struct {
	TotalIncome  float64            `json:"totalIncome"`
	TotalOutcome float64            `json:"totalOutcome"`
	Savings      float64            `json:"savings"`
	Categories   map[string]float64 `json:"categories"`
}

func (h *Handler) statistics(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("startDate") == "" || q.Get("endDate") == "" {
		render.Error(w, http.StatusBadRequest, "startDate and endDate are required")
		return
	}

	start, err := report.ParseDate(q.Get("startDate"))
	if err != nil {
		writeError(w, err)
		return
	}

	end, err := report.ParseDate(q.Get("endDate"))
	if err != nil {
		writeError(w, err)
		return
	}

	stats, err := h.svc.Statistics(r.Context(), auth.UserID(r.Context()), start, end)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := statisticsResponse{
		TotalIncome:  transaction.Major(stats.TotalIncome),
		TotalOutcome: transaction.Major(stats.TotalOutcome),
		Savings:      transaction.Major(stats.Savings),
		Categories:   make(map[string]float64, len(stats.Categories)),
	}

	for _, c := range stats.Categories {
		resp.Categories[c.Category] = transaction.Major(c.Total)
	}

	render.JSON(w, http.StatusOK, resp)
}
