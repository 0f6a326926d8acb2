package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/numera/numera-api/internal/auth"
	"github.com/numera/numera-api/internal/constants"
	"github.com/numera/numera-api/internal/logger"
	"github.com/numera/numera-api/internal/store"
	"github.com/numera/numera-api/internal/types/api/params"
	"github.com/numera/numera-api/internal/types/api/responses"
	"github.com/numera/numera-api/internal/types/business"
	"go.uber.org/zap"
)

// ReportService owns the report lifecycle: creation, pure preview, test
// submission, the real filing flow and the authority decision. Reports are
// never deleted; resubmission after rejection appends a new attempt under the
// same report identity.
type ReportService struct {
	reports      store.ReportStore
	invoices     store.InvoiceStore
	transactions store.TransactionStore
	filing       FilingClient
	authorizer   Authorizer
	logger       *zap.Logger
}

// NewReportService creates a new report service
func NewReportService(
	reports store.ReportStore,
	invoices store.InvoiceStore,
	transactions store.TransactionStore,
	filing FilingClient,
	authorizer Authorizer,
) *ReportService {
	return &ReportService{
		reports:      reports,
		invoices:     invoices,
		transactions: transactions,
		filing:       filing,
		authorizer:   authorizer,
		logger:       logger.Log,
	}
}

// CreateReport creates a draft report for one reporting period
func (s *ReportService) CreateReport(ctx context.Context, p params.ReportCreateParams) (*responses.ReportResponse, error) {
	if _, err := business.NewMoney(0, p.Currency); err != nil {
		return nil, err
	}
	if p.Kind != business.ReportVAT && p.Kind != business.ReportZM {
		return nil, fmt.Errorf("unsupported report kind: %s", p.Kind)
	}

	now := time.Now().UTC()
	report := business.TaxReport{
		ID:          uuid.New(),
		Kind:        p.Kind,
		PeriodStart: p.Period.Start,
		PeriodEnd:   p.Period.End,
		DueDate:     p.Period.DueDate,
		Year:        p.Period.Year,
		PeriodLabel: p.Period.Label,
		Currency:    p.Currency,
		Status:      business.ReportDraft,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.reports.CreateReport(ctx, report); err != nil {
		return nil, fmt.Errorf("failed to create report: %w", err)
	}

	s.logger.Info("Created tax report",
		zap.String("report_id", report.ID.String()),
		zap.String("kind", string(report.Kind)),
		zap.String("period", report.PeriodLabel))

	resp := responses.NewReportResponse(report)
	return &resp, nil
}

// GetReport retrieves a report by id
func (s *ReportService) GetReport(ctx context.Context, id uuid.UUID) (*responses.ReportResponse, error) {
	report, err := s.reports.GetReport(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := responses.NewReportResponse(report)
	return &resp, nil
}

// ListReports lists reports of one kind
func (s *ReportService) ListReports(ctx context.Context, kind business.ReportKind) ([]responses.ReportResponse, error) {
	reports, err := s.reports.ListReports(ctx, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	out := make([]responses.ReportResponse, 0, len(reports))
	for _, r := range reports {
		out = append(out, responses.NewReportResponse(r))
	}
	return out, nil
}

// Preview computes the report's financial data over the current period
// contents without persisting anything. Calling it any number of times leaves
// the report byte-for-byte unchanged.
func (s *ReportService) Preview(ctx context.Context, id uuid.UUID) (*responses.ReportPreviewResponse, error) {
	report, err := s.reports.GetReport(ctx, id)
	if err != nil {
		return nil, err
	}

	data, err := s.buildFinancialData(ctx, report)
	if err != nil {
		return nil, err
	}

	return &responses.ReportPreviewResponse{
		ReportID:      report.ID,
		Kind:          report.Kind,
		Status:        report.Status,
		PeriodLabel:   report.PeriodLabel,
		FinancialData: *data,
	}, nil
}

// MarkPreviewed records that the user has reviewed the computed figures. It
// snapshots the financial data onto the report and moves it to previewed; the
// preview computation itself stays pure.
func (s *ReportService) MarkPreviewed(ctx context.Context, id uuid.UUID) (*responses.ReportResponse, error) {
	report, err := s.reports.GetReport(ctx, id)
	if err != nil {
		return nil, err
	}

	if !report.Status.CanTransitionTo(business.ReportPreviewed) {
		return nil, &business.InvalidTransitionError{
			Entity: "report",
			From:   string(report.Status),
			To:     string(business.ReportPreviewed),
		}
	}

	data, err := s.buildFinancialData(ctx, report)
	if err != nil {
		return nil, err
	}

	report.Status = business.ReportPreviewed
	report.FinancialData = data
	report.UpdatedAt = time.Now().UTC()
	if err := s.reports.UpdateReport(ctx, report); err != nil {
		return nil, fmt.Errorf("failed to update report: %w", err)
	}

	resp := responses.NewReportResponse(report)
	return &resp, nil
}

// TestSubmit runs a test-mode submission. It produces the authority's preview
// artifact and records a test attempt, but the report status never changes, so
// a test run can never block or advance the real filing. Once the real filing
// has happened the audit trail is final, so test runs are only allowed while
// the report could still be submitted.
func (s *ReportService) TestSubmit(ctx context.Context, id uuid.UUID) (*responses.TestSubmissionResponse, error) {
	report, err := s.reports.GetReport(ctx, id)
	if err != nil {
		return nil, err
	}

	if !report.Status.Submittable() {
		return nil, &business.InvalidTransitionError{
			Entity: "report",
			From:   string(report.Status),
			To:     string(business.ReportSubmitted),
		}
	}

	data, err := s.buildFinancialData(ctx, report)
	if err != nil {
		return nil, err
	}
	if data.Empty() {
		return nil, &business.EmptyReportError{ReportID: report.ID}
	}
	report.FinancialData = data

	artifact, err := s.filing.TestSubmit(ctx, report)
	if err != nil {
		return nil, fmt.Errorf("test submission failed: %w", err)
	}

	report.Attempts = append(report.Attempts, business.SubmissionAttempt{
		AttemptedAt: time.Now().UTC(),
		TestMode:    true,
	})
	report.UpdatedAt = time.Now().UTC()
	if err := s.reports.UpdateReport(ctx, report); err != nil {
		return nil, fmt.Errorf("failed to record test attempt: %w", err)
	}

	return &responses.TestSubmissionResponse{
		ReportID:    report.ID,
		ContentType: artifact.ContentType,
		Content:     artifact.Content,
	}, nil
}

// Submit files the report with the tax authority. The whole flow runs under
// the per-report submission lock, so two concurrent submissions of the same
// report cannot both reach the authority: the loser fails fast with
// SubmissionInProgressError.
//
// A structured rejection from the authority is a domain outcome, not a
// transport failure: the report moves to rejected with the authority's message
// verbatim and the call returns the updated report.
func (s *ReportService) Submit(ctx context.Context, p params.ReportSubmitParams) (*responses.ReportResponse, error) {
	entitled, err := s.authorizer.IsEntitled(ctx, p.UserID, constants.CapabilityVatSubmission)
	if err != nil {
		return nil, fmt.Errorf("failed to check entitlement: %w", err)
	}
	if !entitled {
		return nil, auth.ErrNotEntitled
	}

	var result business.TaxReport
	err = s.reports.WithSubmissionLock(ctx, p.ReportID, func(ctx context.Context) error {
		report, err := s.reports.GetReport(ctx, p.ReportID)
		if err != nil {
			return err
		}

		if !report.Status.Submittable() {
			return &business.InvalidTransitionError{
				Entity: "report",
				From:   string(report.Status),
				To:     string(business.ReportSubmitted),
			}
		}

		data, err := s.buildFinancialData(ctx, report)
		if err != nil {
			return err
		}
		if data.Empty() {
			return &business.EmptyReportError{ReportID: report.ID}
		}
		report.FinancialData = data

		attempt := business.SubmissionAttempt{AttemptedAt: time.Now().UTC()}
		receipt, err := s.filing.Submit(ctx, report)

		var rejection *business.FilingRejectedError
		switch {
		case err == nil:
			report.Status = business.ReportSubmitted
			report.ErrorMessage = nil
			attempt.ReceiptID = receipt.ReceiptID
		case errors.As(err, &rejection):
			msg := rejection.Message
			report.Status = business.ReportRejected
			report.ErrorMessage = &msg
			attempt.ErrorMessage = rejection.Error()
		default:
			return fmt.Errorf("filing submission failed: %w", err)
		}

		report.Attempts = append(report.Attempts, attempt)
		report.UpdatedAt = time.Now().UTC()
		if err := s.reports.UpdateReport(ctx, report); err != nil {
			return fmt.Errorf("failed to update report: %w", err)
		}

		result = report
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Report submission finished",
		zap.String("report_id", result.ID.String()),
		zap.String("status", string(result.Status)))

	resp := responses.NewReportResponse(result)
	return &resp, nil
}

// RecordAuthorityDecision applies the authority's asynchronous verdict on a
// submitted report. Accepted is terminal; a rejection carries the authority's
// message verbatim.
func (s *ReportService) RecordAuthorityDecision(ctx context.Context, id uuid.UUID, accepted bool, message string) (*responses.ReportResponse, error) {
	report, err := s.reports.GetReport(ctx, id)
	if err != nil {
		return nil, err
	}

	next := business.ReportAccepted
	if !accepted {
		next = business.ReportRejected
	}
	if !report.Status.CanTransitionTo(next) {
		return nil, &business.InvalidTransitionError{
			Entity: "report",
			From:   string(report.Status),
			To:     string(next),
		}
	}

	report.Status = next
	if accepted {
		report.ErrorMessage = nil
	} else {
		report.ErrorMessage = &message
	}
	report.UpdatedAt = time.Now().UTC()
	if err := s.reports.UpdateReport(ctx, report); err != nil {
		return nil, fmt.Errorf("failed to update report: %w", err)
	}

	resp := responses.NewReportResponse(report)
	return &resp, nil
}

// Reopen moves a rejected report back to draft for correction. The current
// error message is cleared but the attempt history stays for audit.
func (s *ReportService) Reopen(ctx context.Context, id uuid.UUID) (*responses.ReportResponse, error) {
	report, err := s.reports.GetReport(ctx, id)
	if err != nil {
		return nil, err
	}

	if !report.Status.CanTransitionTo(business.ReportDraft) {
		return nil, &business.InvalidTransitionError{
			Entity: "report",
			From:   string(report.Status),
			To:     string(business.ReportDraft),
		}
	}

	report.Status = business.ReportDraft
	report.ErrorMessage = nil
	report.UpdatedAt = time.Now().UTC()
	if err := s.reports.UpdateReport(ctx, report); err != nil {
		return nil, fmt.Errorf("failed to update report: %w", err)
	}

	resp := responses.NewReportResponse(report)
	return &resp, nil
}

// buildFinancialData aggregates the report period's invoices and transactions
// into the report's financial snapshot. Cancelled invoices never contribute.
// All amounts must share the report currency; a stray foreign-currency
// document surfaces as CurrencyMismatchError rather than a silently wrong sum.
func (s *ReportService) buildFinancialData(ctx context.Context, report business.TaxReport) (*business.ReportFinancialData, error) {
	invoices, err := s.invoices.ListInvoicesByIssueDate(ctx, report.PeriodStart, report.PeriodEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	transactions, err := s.transactions.ListTransactionsByDate(ctx, report.PeriodStart, report.PeriodEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	net := business.ZeroMoney(report.Currency)
	vat := business.ZeroMoney(report.Currency)
	gross := business.ZeroMoney(report.Currency)
	inputVat := business.ZeroMoney(report.Currency)
	netByTreatment := make(map[business.TreatmentKind]int64)
	zmByVatNumber := make(map[string]*business.ZMLine)
	count := 0

	for _, invoice := range invoices {
		if invoice.Status == business.InvoiceCancelled {
			continue
		}

		totals, err := ComputeTotals(invoice.Currency, invoice.Lines, invoice.Treatment)
		if err != nil {
			return nil, err
		}
		if totals.LineCount == 0 {
			continue
		}

		if net, err = net.Add(totals.Subtotal); err != nil {
			return nil, err
		}
		if vat, err = vat.Add(totals.VatAmount); err != nil {
			return nil, err
		}
		if gross, err = gross.Add(totals.Total); err != nil {
			return nil, err
		}
		netByTreatment[invoice.Treatment.Kind] += totals.Subtotal.AmountCents
		count++

		if invoice.Treatment.Kind == business.TreatmentReverseCharge {
			line, ok := zmByVatNumber[invoice.Customer.VatNumber]
			if !ok {
				line = &business.ZMLine{
					VatNumber:   invoice.Customer.VatNumber,
					CountryCode: invoice.Customer.CountryCode,
				}
				zmByVatNumber[invoice.Customer.VatNumber] = line
			}
			line.NetCents += totals.Subtotal.AmountCents
		}
	}

	for _, tx := range transactions {
		txVat := business.ZeroMoney(tx.Amount.Currency)
		if tx.Treatment.Taxable() {
			txVat = tx.Amount.PercentageOf(tx.Treatment.RateBasisPoints).RoundToMinorUnit()
		}

		switch tx.Kind {
		case business.TransactionExpense:
			if inputVat, err = inputVat.Add(txVat); err != nil {
				return nil, err
			}
		default:
			txGross, err := tx.Amount.Add(txVat)
			if err != nil {
				return nil, err
			}
			if net, err = net.Add(tx.Amount); err != nil {
				return nil, err
			}
			if vat, err = vat.Add(txVat); err != nil {
				return nil, err
			}
			if gross, err = gross.Add(txGross); err != nil {
				return nil, err
			}
			netByTreatment[tx.Treatment.Kind] += tx.Amount.AmountCents
		}
		count++
	}

	data := &business.ReportFinancialData{
		Currency:      report.Currency,
		NetCents:      net.AmountCents,
		VatCents:      vat.AmountCents,
		GrossCents:    gross.AmountCents,
		InputVatCents: inputVat.AmountCents,
		PayableCents:  vat.AmountCents - inputVat.AmountCents,
		LineCount:     count,
	}
	if len(netByTreatment) > 0 {
		data.NetByTreatment = netByTreatment
	}

	if report.Kind == business.ReportZM {
		lines := make([]business.ZMLine, 0, len(zmByVatNumber))
		for _, line := range zmByVatNumber {
			lines = append(lines, *line)
		}
		sort.Slice(lines, func(i, j int) bool { return lines[i].VatNumber < lines[j].VatNumber })
		data.ZMLines = lines
	}

	return data, nil
}
