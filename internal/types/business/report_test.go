package business_test

import (
	"testing"

	"github.com/numera/numera-api/internal/types/business"
	"github.com/stretchr/testify/assert"
)

func TestReportStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		name    string
		from    business.ReportStatus
		to      business.ReportStatus
		allowed bool
	}{
		{name: "draft to previewed", from: business.ReportDraft, to: business.ReportPreviewed, allowed: true},
		{name: "draft to submitted", from: business.ReportDraft, to: business.ReportSubmitted, allowed: true},
		{name: "previewed again", from: business.ReportPreviewed, to: business.ReportPreviewed, allowed: true},
		{name: "previewed back to draft", from: business.ReportPreviewed, to: business.ReportDraft, allowed: true},
		{name: "previewed to submitted", from: business.ReportPreviewed, to: business.ReportSubmitted, allowed: true},
		{name: "submitted to accepted", from: business.ReportSubmitted, to: business.ReportAccepted, allowed: true},
		{name: "submitted to rejected", from: business.ReportSubmitted, to: business.ReportRejected, allowed: true},
		{name: "rejected reopens to draft", from: business.ReportRejected, to: business.ReportDraft, allowed: true},
		{name: "draft cannot jump to accepted", from: business.ReportDraft, to: business.ReportAccepted, allowed: false},
		{name: "submitted cannot revert to draft", from: business.ReportSubmitted, to: business.ReportDraft, allowed: false},
		{name: "accepted is terminal", from: business.ReportAccepted, to: business.ReportDraft, allowed: false},
		{name: "accepted cannot be resubmitted", from: business.ReportAccepted, to: business.ReportSubmitted, allowed: false},
		{name: "rejected cannot skip to submitted", from: business.ReportRejected, to: business.ReportSubmitted, allowed: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestReportStatus_Terminal(t *testing.T) {
	assert.True(t, business.ReportAccepted.Terminal())
	assert.False(t, business.ReportDraft.Terminal())
	assert.False(t, business.ReportRejected.Terminal())
}

func TestReportStatus_Submittable(t *testing.T) {
	assert.True(t, business.ReportDraft.Submittable())
	assert.True(t, business.ReportPreviewed.Submittable())
	assert.False(t, business.ReportSubmitted.Submittable())
	assert.False(t, business.ReportAccepted.Submittable())
	assert.False(t, business.ReportRejected.Submittable())
}

func TestReportFinancialData_Empty(t *testing.T) {
	var nilData *business.ReportFinancialData
	assert.True(t, nilData.Empty())

	assert.True(t, (&business.ReportFinancialData{Currency: "EUR"}).Empty())

	assert.False(t, (&business.ReportFinancialData{LineCount: 1}).Empty())
	assert.False(t, (&business.ReportFinancialData{NetCents: 100}).Empty())
	assert.False(t, (&business.ReportFinancialData{
		ZMLines: []business.ZMLine{{VatNumber: "FR123", CountryCode: "FR", NetCents: 100}},
	}).Empty())
}

func TestInvoiceStatus_CanTransitionTo(t *testing.T) {
	assert.True(t, business.InvoiceDraft.CanTransitionTo(business.InvoiceSent))
	assert.True(t, business.InvoiceDraft.CanTransitionTo(business.InvoiceCancelled))
	assert.True(t, business.InvoiceSent.CanTransitionTo(business.InvoicePaid))
	assert.True(t, business.InvoiceSent.CanTransitionTo(business.InvoiceCancelled))
	assert.False(t, business.InvoiceDraft.CanTransitionTo(business.InvoicePaid))
	assert.False(t, business.InvoicePaid.CanTransitionTo(business.InvoiceCancelled))
	assert.False(t, business.InvoiceCancelled.CanTransitionTo(business.InvoiceDraft))
}
