package params

import (
	"time"

	"github.com/numera/numera-api/internal/types/business"
)

// LineItemParams carries one line as submitted by a client. UnitPrice is a
// decimal string; conversion to minor units happens at this boundary only.
type LineItemParams struct {
	Description string `json:"description"`
	UnitPrice   string `json:"unit_price" binding:"required"`
	Quantity    int64  `json:"quantity" binding:"required"`
	Unit        string `json:"unit,omitempty"`
	Destroy     bool   `json:"destroy,omitempty"`
}

// InvoiceCreateParams creates a draft invoice. The VAT treatment is resolved
// once from the seller/customer context at creation and is immutable after.
type InvoiceCreateParams struct {
	Seller         business.Party   `json:"seller"`
	Customer       business.Party   `json:"customer"`
	Currency       string           `json:"currency" binding:"required"`
	IssueDate      time.Time        `json:"issue_date"`
	DueDate        time.Time        `json:"due_date"`
	Category       string           `json:"category,omitempty"`
	IsGoods        bool             `json:"is_goods,omitempty"`
	HasExportProof bool             `json:"has_export_proof,omitempty"`
	Lines          []LineItemParams `json:"lines"`
}

// InvoiceUpdateParams mutates an existing invoice. Mutating a non-draft
// invoice additionally requires the invoice_edit entitlement; lines are
// immutable once the invoice is sent.
type InvoiceUpdateParams struct {
	UserID  string           `json:"-"`
	DueDate *time.Time       `json:"due_date,omitempty"`
	Lines   []LineItemParams `json:"lines,omitempty"`
}
