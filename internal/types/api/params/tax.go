package params

import (
	"time"

	"github.com/numera/numera-api/internal/types/business"
)

// ResolveTreatmentParams is the input to the VAT rule resolver
type ResolveTreatmentParams struct {
	Seller   business.Party `json:"seller"`
	Customer business.Party `json:"customer"`

	// Category is the good/service category, used for reduced-rate lookup
	Category string `json:"category,omitempty"`
	// IsGoods distinguishes goods from services for export treatment
	IsGoods bool `json:"is_goods,omitempty"`
	// HasExportProof marks goods exports with documented proof
	HasExportProof bool `json:"has_export_proof,omitempty"`
	// Date is the effective date for rate and membership lookup, normally the
	// invoice issue date.
	Date time.Time `json:"date"`
}

// TotalsPreviewParams is the input to the shared totals preview: the same
// rules engine the authoritative path runs, invoked without persisting
// anything.
type TotalsPreviewParams struct {
	ResolveTreatmentParams
	Currency string           `json:"currency"`
	Lines    []LineItemParams `json:"lines"`
}
