package responses

import (
	"time"

	"github.com/google/uuid"
	"github.com/numera/numera-api/internal/types/business"
)

// PeriodResponse is one derived reporting period with its due-date flags
type PeriodResponse struct {
	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`
	DueDate     time.Time `json:"due_date"`
	PeriodLabel string    `json:"period_label"`
	Year        int       `json:"year"`
	IsOverdue   bool      `json:"is_overdue"`
	IsDueSoon   bool      `json:"is_due_soon"`
}

// NewPeriodResponse converts a period into its response form, evaluating the
// due-date flags against today.
func NewPeriodResponse(p business.ReportPeriod, today time.Time) PeriodResponse {
	return PeriodResponse{
		PeriodStart: p.Start,
		PeriodEnd:   p.End,
		DueDate:     p.DueDate,
		PeriodLabel: p.Label,
		Year:        p.Year,
		IsOverdue:   p.IsOverdue(today),
		IsDueSoon:   p.IsDueSoon(today),
	}
}

// ReportResponse is the standardized API response for report operations
type ReportResponse struct {
	ID            uuid.UUID                     `json:"id"`
	Kind          business.ReportKind           `json:"kind"`
	Status        business.ReportStatus         `json:"status"`
	PeriodStart   time.Time                     `json:"period_start"`
	PeriodEnd     time.Time                     `json:"period_end"`
	DueDate       time.Time                     `json:"due_date"`
	Year          int                           `json:"year"`
	PeriodLabel   string                        `json:"period_label"`
	Currency      string                        `json:"currency"`
	FinancialData *business.ReportFinancialData `json:"financial_data,omitempty"`
	ErrorMessage  *string                       `json:"error_message,omitempty"`
	Attempts      []business.SubmissionAttempt  `json:"attempts,omitempty"`
	CreatedAt     time.Time                     `json:"created_at"`
	UpdatedAt     time.Time                     `json:"updated_at"`
}

// NewReportResponse converts a report into its response form
func NewReportResponse(r business.TaxReport) ReportResponse {
	return ReportResponse{
		ID:            r.ID,
		Kind:          r.Kind,
		Status:        r.Status,
		PeriodStart:   r.PeriodStart,
		PeriodEnd:     r.PeriodEnd,
		DueDate:       r.DueDate,
		Year:          r.Year,
		PeriodLabel:   r.PeriodLabel,
		Currency:      r.Currency,
		FinancialData: r.FinancialData,
		ErrorMessage:  r.ErrorMessage,
		Attempts:      r.Attempts,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

// ReportPreviewResponse is the pure read over a report's current computed
// financial data. Previewing never mutates report state.
type ReportPreviewResponse struct {
	ReportID      uuid.UUID                    `json:"report_id"`
	Kind          business.ReportKind          `json:"kind"`
	Status        business.ReportStatus        `json:"status"`
	PeriodLabel   string                       `json:"period_label"`
	FinancialData business.ReportFinancialData `json:"financial_data"`
}

// TestSubmissionResponse is the artifact produced by a test-mode submission
type TestSubmissionResponse struct {
	ReportID    uuid.UUID `json:"report_id"`
	ContentType string    `json:"content_type"`
	Content     []byte    `json:"content"`
}
