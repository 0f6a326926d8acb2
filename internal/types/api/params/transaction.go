package params

import (
	"time"

	"github.com/numera/numera-api/internal/types/business"
)

// TransactionCreateParams records a standalone income or expense entry. The
// net amount is a decimal string; the VAT treatment is resolved from the
// owner/counterparty context as of Date.
type TransactionCreateParams struct {
	Date           time.Time                `json:"date"`
	Description    string                   `json:"description"`
	Amount         string                   `json:"amount"`
	Currency       string                   `json:"currency"`
	Kind           business.TransactionKind `json:"kind"`
	Owner          business.Party           `json:"owner"`
	Counterparty   business.Party           `json:"counterparty"`
	Category       string                   `json:"category,omitempty"`
	IsGoods        bool                     `json:"is_goods"`
	HasExportProof bool                     `json:"has_export_proof"`
}
