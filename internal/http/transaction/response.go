package transaction

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/saldo/internal/transaction"
)

// Response is the JSON view of a ledger entry. Amounts are in major units.
type Response struct {
	ID       uuid.UUID        `json:"id"`
	UserID   string           `json:"user_id"`
	Type     transaction.Type `json:"type"`
	Category string           `json:"category"`
	Amount   float64          `json:"amount"`
	Date     time.Time        `json:"date"`
}

func ToResponse(tx *transaction.Transaction) Response {
	return Response{
		ID:       tx.ID,
		UserID:   tx.UserID,
		Type:     tx.Type,
		Category: tx.Category,
		Amount:   transaction.Major(tx.Amount),
		Date:     tx.Date.UTC(),
	}
}

func ToResponseList(txs []*transaction.Transaction) []Response {
	resp := make([]Response, len(txs))
	for i, tx := range txs {
		resp[i] = ToResponse(tx)
	}

	return resp
}

type reconciliationResponse struct {
	UserID   string  `json:"user_id"`
	Stored   float64 `json:"stored"`
	Computed float64 `json:"computed"`
	Drift    bool    `json:"drift"`
	Repaired bool    `json:"repaired"`
}

func toReconciliationResponse(rec *transaction.Reconciliation, repaired bool) reconciliationResponse {
	return reconciliationResponse{
		UserID:   rec.UserID,
		Stored:   transaction.Major(rec.Stored),
		Computed: transaction.Major(rec.Computed),
		Drift:    rec.Drift,
		Repaired: repaired && rec.Drift,
	}
}
