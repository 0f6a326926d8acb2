package business

import (
	"time"

	"github.com/google/uuid"
)

// TransactionKind distinguishes standalone income from expenses
type TransactionKind string

const (
	TransactionIncome  TransactionKind = "income"
	TransactionExpense TransactionKind = "expense"
)

// Transaction is an income or expense entry not tied to an invoice. Amount is
// the net amount; the treatment determines the VAT on top of it. Transactions
// feed report aggregation for the period their Date falls in.
type Transaction struct {
	ID           uuid.UUID       `json:"id"`
	Date         time.Time       `json:"date"`
	Description  string          `json:"description"`
	Amount       Money           `json:"amount"`
	Kind         TransactionKind `json:"kind"`
	Counterparty Party           `json:"counterparty"`
	Treatment    VatTreatment    `json:"vat_treatment"`
	CreatedAt    time.Time       `json:"created_at"`
}
