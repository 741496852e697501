package importcsv

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/saldo/internal/http/auth"
	"github.com/MrJamesThe3rd/saldo/internal/http/render"
	httptx "github.com/MrJamesThe3rd/saldo/internal/http/transaction"
	"github.com/MrJamesThe3rd/saldo/internal/importer"
	"github.com/MrJamesThe3rd/saldo/internal/matching"
	"github.com/MrJamesThe3rd/saldo/internal/transaction"
)

type Handler struct {
	importSvc   *importer.Service
	matchingSvc *matching.Service
	txSvc       *transaction.Service
	maxBytes    int64
}

func NewHandler(importSvc *importer.Service, matchingSvc *matching.Service, txSvc *transaction.Service, maxBytes int64) *Handler {
	return &Handler{
		importSvc:   importSvc,
		matchingSvc: matchingSvc,
		txSvc:       txSvc,
		maxBytes:    maxBytes,
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/transactions/import", h.importStatement)
}

type importResponse struct {
	Imported     int               `json:"imported"`
	Transactions []httptx.Response `json:"transactions"`
}

func (h *Handler) importStatement(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)

	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		render.Error(w, http.StatusBadRequest, "failed to parse form: "+err.Error())
		return
	}

	format, err := importer.ParseFormat(r.FormValue("format"))
	if err != nil {
		render.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		render.Error(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	uid := auth.UserID(r.Context())

	rules, err := h.matchingSvc.List(r.Context(), uid)
	if err != nil {
		render.Error(w, http.StatusInternalServerError, err.Error())
		return
	}

	params, err := h.importSvc.Import(format, file, rules.Match)
	if err != nil {
		render.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	if len(params) == 0 {
		render.Error(w, http.StatusBadRequest, "statement contains no transactions")
		return
	}

	txs, err := h.txSvc.ImportBatch(r.Context(), uid, params)
	if err != nil {
		if errors.Is(err, transaction.ErrInvalidCategory) {
			render.Error(w, http.StatusBadRequest, err.Error())
			return
		}

		httptx.WriteError(w, err)

		return
	}

	slog.Info("imported statement", "user_id", uid, "format", format, "count", len(txs))

	render.JSON(w, http.StatusCreated, importResponse{
		Imported:     len(txs),
		Transactions: httptx.ToResponseList(txs),
	})
}
