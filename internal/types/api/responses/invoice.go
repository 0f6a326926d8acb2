package responses

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/numera/numera-api/internal/types/business"
)

// TotalsResponse is the derived amount triple with display strings. Cents are
// authoritative; the decimal strings exist for rendering only.
type TotalsResponse struct {
	Currency       string `json:"currency"`
	SubtotalCents  int64  `json:"subtotal_cents"`
	VatAmountCents int64  `json:"vat_amount_cents"`
	TotalCents     int64  `json:"total_cents"`
	Subtotal       string `json:"subtotal"`
	VatAmount      string `json:"vat_amount"`
	Total          string `json:"total"`
	LineCount      int    `json:"line_count"`
}

// NewTotalsResponse converts derived totals into their response form
func NewTotalsResponse(t business.InvoiceTotals) TotalsResponse {
	return TotalsResponse{
		Currency:       t.Subtotal.Currency,
		SubtotalCents:  t.Subtotal.AmountCents,
		VatAmountCents: t.VatAmount.AmountCents,
		TotalCents:     t.Total.AmountCents,
		Subtotal:       t.Subtotal.DecimalString(),
		VatAmount:      t.VatAmount.DecimalString(),
		Total:          t.Total.DecimalString(),
		LineCount:      t.LineCount,
	}
}

// TreatmentResponse is the resolved VAT treatment in response form
type TreatmentResponse struct {
	Kind            business.TreatmentKind `json:"kind"`
	RateBasisPoints int64                  `json:"rate_basis_points"`
	RatePercent     string                 `json:"rate_percent"`
}

// NewTreatmentResponse converts a treatment into its response form
func NewTreatmentResponse(t business.VatTreatment) TreatmentResponse {
	percent := strconv.FormatInt(t.RateBasisPoints/100, 10)
	if frac := t.RateBasisPoints % 100; frac != 0 {
		percent = fmt.Sprintf("%d.%02d", t.RateBasisPoints/100, frac)
	}
	return TreatmentResponse{
		Kind:            t.Kind,
		RateBasisPoints: t.RateBasisPoints,
		RatePercent:     percent,
	}
}

// InvoiceResponse is the standardized API response for invoice operations.
// Totals are recomputed from the lines on every read.
type InvoiceResponse struct {
	ID        uuid.UUID              `json:"id"`
	Status    business.InvoiceStatus `json:"status"`
	Seller    business.Party         `json:"seller"`
	Customer  business.Party         `json:"customer"`
	Currency  string                 `json:"currency"`
	IssueDate time.Time              `json:"issue_date"`
	DueDate   time.Time              `json:"due_date"`
	Treatment TreatmentResponse      `json:"vat_treatment"`
	Lines     []business.LineItem    `json:"lines"`
	Totals    TotalsResponse         `json:"totals"`
	CreatedAt time.Time              `json:"created_at"`
	UpdatedAt time.Time              `json:"updated_at"`
}
