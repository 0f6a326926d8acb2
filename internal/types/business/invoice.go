package business

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// InvoiceStatus is the closed set of invoice lifecycle states
type InvoiceStatus string

const (
	InvoiceDraft     InvoiceStatus = "draft"
	InvoiceSent      InvoiceStatus = "sent"
	InvoicePaid      InvoiceStatus = "paid"
	InvoiceCancelled InvoiceStatus = "cancelled"
)

// invoiceTransitions is the full transition table. Adding a status means
// extending this table, not grepping for string comparisons.
var invoiceTransitions = map[InvoiceStatus][]InvoiceStatus{
	InvoiceDraft:     {InvoiceSent, InvoiceCancelled},
	InvoiceSent:      {InvoicePaid, InvoiceCancelled},
	InvoicePaid:      {},
	InvoiceCancelled: {},
}

// CanTransitionTo reports whether the transition s -> next is allowed
func (s InvoiceStatus) CanTransitionTo(next InvoiceStatus) bool {
	for _, allowed := range invoiceTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// InvalidTransitionError indicates a lifecycle transition outside the
// transition table.
type InvalidTransitionError struct {
	Entity string
	From   string
	To     string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("%s cannot transition from %s to %s", e.Entity, e.From, e.To)
}

// InvalidLineItemError indicates a rejected line item at the point it is
// added, carrying the field and offending value.
type InvalidLineItemError struct {
	Field  string
	Value  string
	Reason string
}

func (e *InvalidLineItemError) Error() string {
	return fmt.Sprintf("invalid line item: field %s (%s): %s", e.Field, e.Value, e.Reason)
}

// LineItem is a single invoice or transaction line. Once the parent invoice is
// sent the line is immutable; before that it may be soft-marked for removal
// with the Destroy flag.
type LineItem struct {
	ID          uuid.UUID `json:"id"`
	Description string    `json:"description"`
	UnitPrice   Money     `json:"unit_price"`
	Quantity    int64     `json:"quantity"`
	Unit        string    `json:"unit"`
	Destroy     bool      `json:"destroy,omitempty"`
}

// Validate rejects bad lines at add time rather than deferring to totals time
func (li LineItem) Validate() error {
	if li.UnitPrice.AmountCents < 0 {
		return &InvalidLineItemError{
			Field:  "unit_price",
			Value:  li.UnitPrice.String(),
			Reason: "unit price must not be negative",
		}
	}
	if li.Quantity <= 0 {
		return &InvalidLineItemError{
			Field:  "quantity",
			Value:  fmt.Sprintf("%d", li.Quantity),
			Reason: "quantity must be positive",
		}
	}
	return nil
}

// Invoice is an issued or draft customer invoice. Totals are always derived
// from the lines, never stored; the treatment is resolved once at creation
// from the seller/customer context and fixed thereafter, so the rate in force
// on the issue date sticks.
type Invoice struct {
	ID        uuid.UUID     `json:"id"`
	Seller    Party         `json:"seller"`
	Customer  Party         `json:"customer"`
	Lines     []LineItem    `json:"lines"`
	IssueDate time.Time     `json:"issue_date"`
	DueDate   time.Time     `json:"due_date"`
	Currency  string        `json:"currency"`
	Treatment VatTreatment  `json:"vat_treatment"`
	Status    InvoiceStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// InvoiceTotals is the derived amount triple for an invoice
type InvoiceTotals struct {
	Subtotal  Money `json:"subtotal"`
	VatAmount Money `json:"vat_amount"`
	Total     Money `json:"total"`
	LineCount int   `json:"line_count"`
}
