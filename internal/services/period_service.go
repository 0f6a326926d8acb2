package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/numera/numera-api/internal/jurisdiction"
	"github.com/numera/numera-api/internal/logger"
	"github.com/numera/numera-api/internal/types/api/params"
	"github.com/numera/numera-api/internal/types/api/responses"
	"github.com/numera/numera-api/internal/types/business"
	"go.uber.org/zap"
)

// PeriodService derives reporting periods from a declared cadence. Periods are
// always computed, never stored, so a cadence change simply changes what the
// next call returns.
type PeriodService struct {
	jurisdictions jurisdiction.Source
	logger        *zap.Logger
}

// NewPeriodService creates a new period service
func NewPeriodService(jurisdictions jurisdiction.Source) *PeriodService {
	return &PeriodService{
		jurisdictions: jurisdictions,
		logger:        logger.Log,
	}
}

// BuildPeriods returns the periods of the fiscal year containing AsOf, from
// the fiscal year start through the period containing AsOf, plus
// LookaheadCount future periods. Due dates come from the jurisdiction filing
// lag for the report kind and cadence, and the overdue/due-soon flags are
// evaluated against AsOf.
func (s *PeriodService) BuildPeriods(ctx context.Context, p params.BuildPeriodsParams) ([]responses.PeriodResponse, error) {
	step := p.Cadence.Months()
	if step == 0 {
		return nil, fmt.Errorf("unsupported cadence: %s", p.Cadence)
	}

	fiscalYearStart := p.FiscalYearStart
	if fiscalYearStart == 0 {
		fiscalYearStart = time.January
	}
	asOf := p.AsOf
	if asOf.IsZero() {
		asOf = time.Now().UTC()
	}

	lag, err := s.jurisdictions.FilingLag(ctx, p.Kind, p.Cadence)
	if err != nil {
		return nil, fmt.Errorf("failed to look up filing lag: %w", err)
	}

	// Most recent fiscal year start at or before asOf.
	anchor := time.Date(asOf.Year(), fiscalYearStart, 1, 0, 0, 0, 0, time.UTC)
	if anchor.After(asOf) {
		anchor = anchor.AddDate(-1, 0, 0)
	}

	periodsPerYear := 12 / step
	fiscalYear := anchor.Year()
	index := 0
	lookahead := p.LookaheadCount

	var out []responses.PeriodResponse
	for start := anchor; ; start = start.AddDate(0, step, 0) {
		if start.After(asOf) {
			if lookahead == 0 {
				break
			}
			lookahead--
		}
		if index == periodsPerYear {
			index = 0
			fiscalYear++
		}

		end := start.AddDate(0, step, -1)
		period := business.ReportPeriod{
			Start:   start,
			End:     end,
			DueDate: lag.DueDateFor(end),
			Label:   periodLabel(p.Cadence, start, fiscalYear, index),
			Year:    fiscalYear,
		}
		out = append(out, responses.NewPeriodResponse(period, asOf))
		index++
	}

	s.logger.Debug("Built reporting periods",
		zap.String("kind", string(p.Kind)),
		zap.String("cadence", string(p.Cadence)),
		zap.Int("count", len(out)))

	return out, nil
}

func periodLabel(cadence business.Cadence, start time.Time, fiscalYear, index int) string {
	switch cadence {
	case business.CadenceMonthly:
		return fmt.Sprintf("%04d-%02d", start.Year(), int(start.Month()))
	case business.CadenceQuarterly:
		return fmt.Sprintf("Q%d %d", index+1, fiscalYear)
	default:
		return strconv.Itoa(fiscalYear)
	}
}
