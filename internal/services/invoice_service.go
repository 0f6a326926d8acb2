package services

import (
	"context"
	"fmt"
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

// InvoiceService handles invoice creation, totals derivation and the invoice
// lifecycle. Totals are never stored: every read recomputes them from the
// lines so they cannot drift.
type InvoiceService struct {
	invoices   store.InvoiceStore
	taxService *TaxService
	authorizer Authorizer
	logger     *zap.Logger
}

// NewInvoiceService creates a new invoice service
func NewInvoiceService(invoices store.InvoiceStore, taxService *TaxService, authorizer Authorizer) *InvoiceService {
	return &InvoiceService{
		invoices:   invoices,
		taxService: taxService,
		authorizer: authorizer,
		logger:     logger.Log,
	}
}

// ComputeTotals derives subtotal, VAT amount and total for a set of lines
// under a resolved treatment. Lines flagged for removal are skipped. The VAT
// amount is rounded exactly once, at the end, with banker's rounding; rounding
// per line and summing diverges from this and is deliberately not what
// happens here. An empty line set yields a valid all-zero result.
func ComputeTotals(currency string, lines []business.LineItem, treatment business.VatTreatment) (business.InvoiceTotals, error) {
	subtotal := business.ZeroMoney(currency)
	count := 0

	for _, line := range lines {
		if line.Destroy {
			continue
		}
		var err error
		subtotal, err = subtotal.Add(line.UnitPrice.MultiplyByQuantity(line.Quantity))
		if err != nil {
			return business.InvoiceTotals{}, err
		}
		count++
	}

	vatAmount := business.ZeroMoney(currency)
	if treatment.Taxable() {
		vatAmount = subtotal.PercentageOf(treatment.RateBasisPoints).RoundToMinorUnit()
	}

	total, err := subtotal.Add(vatAmount)
	if err != nil {
		return business.InvoiceTotals{}, err
	}

	return business.InvoiceTotals{
		Subtotal:  subtotal,
		VatAmount: vatAmount,
		Total:     total,
		LineCount: count,
	}, nil
}

// CreateInvoice creates a draft invoice. The VAT treatment is resolved here,
// once, from the seller/customer context as of the issue date; it never
// changes afterwards, mirroring the legal rule that the applicable rate is
// fixed at invoice date.
func (s *InvoiceService) CreateInvoice(ctx context.Context, p params.InvoiceCreateParams) (*responses.InvoiceResponse, error) {
	if _, err := business.NewMoney(0, p.Currency); err != nil {
		return nil, err
	}

	issueDate := p.IssueDate
	if issueDate.IsZero() {
		issueDate = time.Now().UTC()
	}

	treatment, err := s.taxService.ResolveTreatment(ctx, params.ResolveTreatmentParams{
		Seller:         p.Seller,
		Customer:       p.Customer,
		Category:       p.Category,
		IsGoods:        p.IsGoods,
		HasExportProof: p.HasExportProof,
		Date:           issueDate,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to resolve treatment: %w", err)
	}

	lines, err := parseLines(p.Currency, p.Lines)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	invoice := business.Invoice{
		ID:        uuid.New(),
		Seller:    p.Seller,
		Customer:  p.Customer,
		Lines:     lines,
		IssueDate: issueDate,
		DueDate:   p.DueDate,
		Currency:  p.Currency,
		Treatment: treatment,
		Status:    business.InvoiceDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.invoices.CreateInvoice(ctx, invoice); err != nil {
		return nil, fmt.Errorf("failed to create invoice: %w", err)
	}

	s.logger.Info("Created invoice",
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("treatment", string(treatment.Kind)),
		zap.String("currency", invoice.Currency))

	return s.toResponse(invoice)
}

// GetInvoice retrieves an invoice with freshly derived totals
func (s *InvoiceService) GetInvoice(ctx context.Context, id uuid.UUID) (*responses.InvoiceResponse, error) {
	invoice, err := s.invoices.GetInvoice(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.toResponse(invoice)
}

// UpdateInvoice mutates an invoice. Non-draft invoices require the
// invoice_edit entitlement, and lines are immutable once the invoice has been
// sent.
func (s *InvoiceService) UpdateInvoice(ctx context.Context, id uuid.UUID, p params.InvoiceUpdateParams) (*responses.InvoiceResponse, error) {
	invoice, err := s.invoices.GetInvoice(ctx, id)
	if err != nil {
		return nil, err
	}

	if invoice.Status != business.InvoiceDraft {
		entitled, err := s.authorizer.IsEntitled(ctx, p.UserID, constants.CapabilityInvoiceEdit)
		if err != nil {
			return nil, fmt.Errorf("failed to check entitlement: %w", err)
		}
		if !entitled {
			return nil, auth.ErrNotEntitled
		}
	}

	if p.Lines != nil {
		if invoice.Status != business.InvoiceDraft {
			return nil, &business.InvalidTransitionError{
				Entity: "invoice line items",
				From:   string(invoice.Status),
				To:     string(invoice.Status),
			}
		}
		lines, err := parseLines(invoice.Currency, p.Lines)
		if err != nil {
			return nil, err
		}
		invoice.Lines = lines
	}
	if p.DueDate != nil {
		invoice.DueDate = *p.DueDate
	}
	invoice.UpdatedAt = time.Now().UTC()

	if err := s.invoices.UpdateInvoice(ctx, invoice); err != nil {
		return nil, fmt.Errorf("failed to update invoice: %w", err)
	}
	return s.toResponse(invoice)
}

// SendInvoice marks a draft invoice as sent, freezing its lines
func (s *InvoiceService) SendInvoice(ctx context.Context, id uuid.UUID) (*responses.InvoiceResponse, error) {
	return s.transition(ctx, id, business.InvoiceSent)
}

// MarkInvoicePaid marks a sent invoice as paid
func (s *InvoiceService) MarkInvoicePaid(ctx context.Context, id uuid.UUID) (*responses.InvoiceResponse, error) {
	return s.transition(ctx, id, business.InvoicePaid)
}

// CancelInvoice cancels a draft or sent invoice
func (s *InvoiceService) CancelInvoice(ctx context.Context, id uuid.UUID) (*responses.InvoiceResponse, error) {
	return s.transition(ctx, id, business.InvoiceCancelled)
}

// PreviewTotals resolves the treatment and derives totals without persisting
// anything. This is the shared preview path: a client showing live VAT while
// the user edits calls this instead of reimplementing the rules.
func (s *InvoiceService) PreviewTotals(ctx context.Context, p params.TotalsPreviewParams) (*responses.TotalsPreviewResponse, error) {
	treatment, err := s.taxService.ResolveTreatment(ctx, p.ResolveTreatmentParams)
	if err != nil {
		return nil, err
	}

	lines, err := parseLines(p.Currency, p.Lines)
	if err != nil {
		return nil, err
	}

	totals, err := ComputeTotals(p.Currency, lines, treatment)
	if err != nil {
		return nil, err
	}

	return &responses.TotalsPreviewResponse{
		Treatment: responses.NewTreatmentResponse(treatment),
		Totals:    responses.NewTotalsResponse(totals),
	}, nil
}

func (s *InvoiceService) transition(ctx context.Context, id uuid.UUID, next business.InvoiceStatus) (*responses.InvoiceResponse, error) {
	invoice, err := s.invoices.GetInvoice(ctx, id)
	if err != nil {
		return nil, err
	}

	if !invoice.Status.CanTransitionTo(next) {
		return nil, &business.InvalidTransitionError{
			Entity: "invoice",
			From:   string(invoice.Status),
			To:     string(next),
		}
	}

	invoice.Status = next
	invoice.UpdatedAt = time.Now().UTC()
	if err := s.invoices.UpdateInvoice(ctx, invoice); err != nil {
		return nil, fmt.Errorf("failed to update invoice: %w", err)
	}

	s.logger.Info("Invoice status changed",
		zap.String("invoice_id", id.String()),
		zap.String("status", string(next)))

	return s.toResponse(invoice)
}

func (s *InvoiceService) toResponse(invoice business.Invoice) (*responses.InvoiceResponse, error) {
	totals, err := ComputeTotals(invoice.Currency, invoice.Lines, invoice.Treatment)
	if err != nil {
		return nil, fmt.Errorf("failed to compute totals: %w", err)
	}

	return &responses.InvoiceResponse{
		ID:        invoice.ID,
		Status:    invoice.Status,
		Seller:    invoice.Seller,
		Customer:  invoice.Customer,
		Currency:  invoice.Currency,
		IssueDate: invoice.IssueDate,
		DueDate:   invoice.DueDate,
		Treatment: responses.NewTreatmentResponse(invoice.Treatment),
		Lines:     invoice.Lines,
		Totals:    responses.NewTotalsResponse(totals),
		CreatedAt: invoice.CreatedAt,
		UpdatedAt: invoice.UpdatedAt,
	}, nil
}

// parseLines converts boundary line params into validated line items. Bad
// lines are rejected here, at add time, not deferred to totals time.
func parseLines(currency string, lineParams []params.LineItemParams) ([]business.LineItem, error) {
	var lines []business.LineItem
	for _, lp := range lineParams {
		unitPrice, err := business.ParseMoney(lp.UnitPrice, currency)
		if err != nil {
			return nil, &business.InvalidLineItemError{
				Field:  "unit_price",
				Value:  lp.UnitPrice,
				Reason: err.Error(),
			}
		}
		line := business.LineItem{
			ID:          uuid.New(),
			Description: lp.Description,
			UnitPrice:   unitPrice,
			Quantity:    lp.Quantity,
			Unit:        lp.Unit,
			Destroy:     lp.Destroy,
		}
		if err := line.Validate(); err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, nil
}
