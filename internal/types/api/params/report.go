package params

import (
	"time"

	"github.com/google/uuid"
	"github.com/numera/numera-api/internal/types/business"
)

// BuildPeriodsParams derives reporting periods from a declared cadence
type BuildPeriodsParams struct {
	Kind            business.ReportKind `json:"kind"`
	Cadence         business.Cadence    `json:"cadence"`
	FiscalYearStart time.Month          `json:"fiscal_year_start"`
	AsOf            time.Time           `json:"as_of"`
	LookaheadCount  int                 `json:"lookahead_count"`
}

// ReportCreateParams creates a draft report for one period
type ReportCreateParams struct {
	Kind     business.ReportKind   `json:"kind"`
	Period   business.ReportPeriod `json:"period"`
	Currency string                `json:"currency"`
}

// ReportSubmitParams submits a report to the tax authority
type ReportSubmitParams struct {
	ReportID uuid.UUID `json:"-"`
	UserID   string    `json:"-"`
}
