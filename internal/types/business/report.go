package business

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ReportKind distinguishes VAT returns from ZM (EC Sales List) reports
type ReportKind string

const (
	ReportVAT ReportKind = "vat"
	ReportZM  ReportKind = "zm"
)

// ReportStatus is the authoritative lifecycle state of a tax report. Test
// submissions are a side branch: they produce an artifact without changing the
// status.
type ReportStatus string

const (
	ReportDraft     ReportStatus = "draft"
	ReportPreviewed ReportStatus = "previewed"
	ReportSubmitted ReportStatus = "submitted"
	ReportAccepted  ReportStatus = "accepted"
	ReportRejected  ReportStatus = "rejected"
)

// reportTransitions is the full transition table. Draft and Previewed are
// re-enterable; Accepted is terminal.
var reportTransitions = map[ReportStatus][]ReportStatus{
	ReportDraft:     {ReportPreviewed, ReportSubmitted},
	ReportPreviewed: {ReportPreviewed, ReportDraft, ReportSubmitted},
	ReportSubmitted: {ReportAccepted, ReportRejected},
	ReportAccepted:  {},
	ReportRejected:  {ReportDraft},
}

// CanTransitionTo reports whether the transition s -> next is allowed
func (s ReportStatus) CanTransitionTo(next ReportStatus) bool {
	for _, allowed := range reportTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transitions are possible
func (s ReportStatus) Terminal() bool {
	return len(reportTransitions[s]) == 0
}

// Submittable reports whether a submission may start from this status
func (s ReportStatus) Submittable() bool {
	return s.CanTransitionTo(ReportSubmitted)
}

// EmptyReportError is the validation failure for submitting a report whose
// period holds nothing to report.
type EmptyReportError struct {
	ReportID uuid.UUID
}

func (e *EmptyReportError) Error() string {
	return fmt.Sprintf("report %s has no data to submit for its period", e.ReportID)
}

// SubmissionInProgressError is returned when a second submission is attempted
// while one is already in flight for the same report id.
type SubmissionInProgressError struct {
	ReportID uuid.UUID
}

func (e *SubmissionInProgressError) Error() string {
	return fmt.Sprintf("submission already in progress for report %s", e.ReportID)
}

// FilingRejectedError is a structured rejection from the tax authority. The
// authority's message is preserved verbatim for the user.
type FilingRejectedError struct {
	Code    string
	Message string
}

func (e *FilingRejectedError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("filing rejected (%s): %s", e.Code, e.Message)
	}
	return fmt.Sprintf("filing rejected (%s)", e.Code)
}

// FilingReceipt is the success acknowledgement from the filing collaborator
type FilingReceipt struct {
	ReceiptID  string    `json:"receipt_id"`
	ReceivedAt time.Time `json:"received_at"`
}

// FilingArtifact is the preview document produced by a test-mode submission
type FilingArtifact struct {
	ContentType string `json:"content_type"`
	Content     []byte `json:"content"`
}

// SubmissionAttempt is one submission against the authority. Attempts are
// append-only: resubmission after rejection creates a new attempt and the
// prior attempt's error message is retained for audit.
type SubmissionAttempt struct {
	AttemptedAt  time.Time `json:"attempted_at"`
	TestMode     bool      `json:"test_mode"`
	ReceiptID    string    `json:"receipt_id,omitempty"`
	ErrorMessage string    `json:"error_message,omitempty"`
}

// ZMLine is one EC Sales List line: intra-union reverse-charge revenue per
// customer VAT number.
type ZMLine struct {
	VatNumber   string `json:"vat_number"`
	CountryCode string `json:"country_code"`
	NetCents    int64  `json:"net_cents"`
}

// ReportFinancialData is the aggregated snapshot over the period's invoices
// and transactions.
type ReportFinancialData struct {
	Currency       string                  `json:"currency"`
	NetCents       int64                   `json:"net_cents"`
	VatCents       int64                   `json:"vat_cents"`
	GrossCents     int64                   `json:"gross_cents"`
	InputVatCents  int64                   `json:"input_vat_cents"`
	PayableCents   int64                   `json:"payable_cents"`
	LineCount      int                     `json:"line_count"`
	NetByTreatment map[TreatmentKind]int64 `json:"net_by_treatment,omitempty"`
	ZMLines        []ZMLine                `json:"zm_lines,omitempty"`
}

// Empty reports whether there is nothing to file for the period
func (d *ReportFinancialData) Empty() bool {
	if d == nil {
		return true
	}
	if d.LineCount > 0 {
		return false
	}
	return d.NetCents == 0 && d.VatCents == 0 && d.GrossCents == 0 && len(d.ZMLines) == 0
}

// TaxReport is a VAT return or ZM report instance for one period. Reports are
// never deleted; a resubmission appends a new attempt under the same identity.
type TaxReport struct {
	ID            uuid.UUID            `json:"id"`
	Kind          ReportKind           `json:"kind"`
	PeriodStart   time.Time            `json:"period_start"`
	PeriodEnd     time.Time            `json:"period_end"`
	DueDate       time.Time            `json:"due_date"`
	Year          int                  `json:"year"`
	PeriodLabel   string               `json:"period_label"`
	Currency      string               `json:"currency"`
	Status        ReportStatus         `json:"status"`
	FinancialData *ReportFinancialData `json:"financial_data,omitempty"`
	ErrorMessage  *string              `json:"error_message,omitempty"`
	Attempts      []SubmissionAttempt  `json:"attempts,omitempty"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
}
