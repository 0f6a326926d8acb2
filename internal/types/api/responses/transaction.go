package responses

import (
	"time"

	"github.com/google/uuid"
	"github.com/numera/numera-api/internal/types/business"
)

// TransactionResponse is the standardized API response for transaction
// operations.
type TransactionResponse struct {
	ID           uuid.UUID                `json:"id"`
	Date         time.Time                `json:"date"`
	Description  string                   `json:"description"`
	AmountCents  int64                    `json:"amount_cents"`
	Amount       string                   `json:"amount"`
	Currency     string                   `json:"currency"`
	Kind         business.TransactionKind `json:"kind"`
	Counterparty business.Party           `json:"counterparty"`
	Treatment    TreatmentResponse        `json:"vat_treatment"`
	CreatedAt    time.Time                `json:"created_at"`
}

// NewTransactionResponse converts a transaction into its response form
func NewTransactionResponse(tx business.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:           tx.ID,
		Date:         tx.Date,
		Description:  tx.Description,
		AmountCents:  tx.Amount.AmountCents,
		Amount:       tx.Amount.DecimalString(),
		Currency:     tx.Amount.Currency,
		Kind:         tx.Kind,
		Counterparty: tx.Counterparty,
		Treatment:    NewTreatmentResponse(tx.Treatment),
		CreatedAt:    tx.CreatedAt,
	}
}
