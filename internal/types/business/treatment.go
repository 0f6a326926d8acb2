package business

// TreatmentKind is the closed set of VAT treatments. The zero-rate kinds
// (Zero, ReverseCharge, Exempt, OutsideScope) all carry rate 0 but mean
// different legal justifications and are never collapsed into one case.
type TreatmentKind string

const (
	TreatmentStandard      TreatmentKind = "standard"
	TreatmentReduced       TreatmentKind = "reduced"
	TreatmentZero          TreatmentKind = "zero"
	TreatmentReverseCharge TreatmentKind = "reverse_charge"
	TreatmentExempt        TreatmentKind = "exempt"
	TreatmentOutsideScope  TreatmentKind = "outside_scope"
)

// VatTreatment is the resolved treatment for an invoice or transaction.
// RateBasisPoints is the applicable rate in basis points (1900 = 19%); it is 0
// for all non-taxable kinds.
type VatTreatment struct {
	Kind            TreatmentKind `json:"kind"`
	RateBasisPoints int64         `json:"rate_basis_points"`
}

// Taxable reports whether the treatment actually charges VAT
func (t VatTreatment) Taxable() bool {
	return t.Kind == TreatmentStandard || t.Kind == TreatmentReduced
}

// AllTreatmentKinds lists every treatment variant, for exhaustiveness checks
// in validation and tests.
var AllTreatmentKinds = []TreatmentKind{
	TreatmentStandard,
	TreatmentReduced,
	TreatmentZero,
	TreatmentReverseCharge,
	TreatmentExempt,
	TreatmentOutsideScope,
}
