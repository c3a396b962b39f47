package transaction

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/getrich/internal/transaction"
)

type transactionResponse struct {
	ID          uuid.UUID        `json:"id"`
	Type        transaction.Type `json:"type"`
	Category    string           `json:"category"`
	Amount      decimal.Decimal  `json:"amount"`
	Date        string           `json:"date"`
	ProjectID   *uuid.UUID       `json:"project_id,omitempty"`
	Description string           `json:"description"`
	CreatedAt   time.Time        `json:"created_at"`
}

func toResponse(tx *transaction.Transaction) transactionResponse {
	return transactionResponse{
		ID:          tx.ID,
		Type:        tx.Type,
		Category:    tx.Category,
		Amount:      tx.Amount,
		Date:        tx.Date.Format(time.DateOnly),
		ProjectID:   tx.ProjectID,
		Description: tx.Description,
		CreatedAt:   tx.CreatedAt,
	}
}

func toResponseList(txs []*transaction.Transaction) []transactionResponse {
	resp := make([]transactionResponse, len(txs))
	for i, tx := range txs {
		resp[i] = toResponse(tx)
	}

	return resp
}
