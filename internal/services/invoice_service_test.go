package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/numera/numera-api/internal/auth"
	"github.com/numera/numera-api/internal/jurisdiction"
	"github.com/numera/numera-api/internal/services"
	"github.com/numera/numera-api/internal/store"
	"github.com/numera/numera-api/internal/testutil"
	"github.com/numera/numera-api/internal/types/api/params"
	"github.com/numera/numera-api/internal/types/business"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newInvoiceService(authorizer services.Authorizer) (*services.InvoiceService, *store.MemoryStore) {
	mem := store.NewMemoryStore()
	taxService := services.NewTaxService(jurisdiction.NewStaticSource())
	return services.NewInvoiceService(mem, taxService, authorizer), mem
}

func euroLine(unitPrice string, quantity int64) params.LineItemParams {
	return params.LineItemParams{Description: "item", UnitPrice: unitPrice, Quantity: quantity}
}

func TestComputeTotals(t *testing.T) {
	standard := business.VatTreatment{Kind: business.TreatmentStandard, RateBasisPoints: 1900}

	line := func(cents, quantity int64) business.LineItem {
		return business.LineItem{UnitPrice: business.Money{AmountCents: cents, Currency: "EUR"}, Quantity: quantity}
	}

	t.Run("two lines at 19 percent", func(t *testing.T) {
		totals, err := services.ComputeTotals("EUR", []business.LineItem{line(10000, 1), line(5000, 2)}, standard)
		require.NoError(t, err)
		assert.Equal(t, int64(20000), totals.Subtotal.AmountCents)
		assert.Equal(t, int64(3800), totals.VatAmount.AmountCents)
		assert.Equal(t, int64(23800), totals.Total.AmountCents)
		assert.Equal(t, 2, totals.LineCount)
	})

	t.Run("VAT rounds once over the subtotal", func(t *testing.T) {
		// Three lines of 0.33: per-line VAT would round 0.0627 down to 0.06
		// each and sum to 0.18; rounding once over the 0.99 subtotal gives
		// 0.19.
		lines := []business.LineItem{line(33, 1), line(33, 1), line(33, 1)}
		totals, err := services.ComputeTotals("EUR", lines, standard)
		require.NoError(t, err)
		assert.Equal(t, int64(99), totals.Subtotal.AmountCents)
		assert.Equal(t, int64(19), totals.VatAmount.AmountCents)
		assert.Equal(t, int64(118), totals.Total.AmountCents)
	})

	t.Run("empty line set yields zeros", func(t *testing.T) {
		totals, err := services.ComputeTotals("EUR", nil, standard)
		require.NoError(t, err)
		assert.Equal(t, int64(0), totals.Subtotal.AmountCents)
		assert.Equal(t, int64(0), totals.VatAmount.AmountCents)
		assert.Equal(t, int64(0), totals.Total.AmountCents)
		assert.Equal(t, 0, totals.LineCount)
		assert.Equal(t, "EUR", totals.Total.Currency)
	})

	t.Run("destroy-flagged lines are skipped", func(t *testing.T) {
		removed := line(10000, 1)
		removed.Destroy = true
		totals, err := services.ComputeTotals("EUR", []business.LineItem{line(5000, 1), removed}, standard)
		require.NoError(t, err)
		assert.Equal(t, int64(5000), totals.Subtotal.AmountCents)
		assert.Equal(t, 1, totals.LineCount)
	})

	t.Run("non-taxable treatments add no VAT", func(t *testing.T) {
		for _, kind := range []business.TreatmentKind{
			business.TreatmentReverseCharge,
			business.TreatmentZero,
			business.TreatmentExempt,
			business.TreatmentOutsideScope,
		} {
			totals, err := services.ComputeTotals("EUR", []business.LineItem{line(10000, 1)}, business.VatTreatment{Kind: kind})
			require.NoError(t, err)
			assert.Equal(t, int64(0), totals.VatAmount.AmountCents, string(kind))
			assert.Equal(t, int64(10000), totals.Total.AmountCents, string(kind))
		}
	})
}

func TestInvoiceService_CreateInvoice(t *testing.T) {
	service, _ := newInvoiceService(&testutil.MockAuthorizer{})
	ctx := context.Background()

	resp, err := service.CreateInvoice(ctx, params.InvoiceCreateParams{
		Seller:    seller("DE"),
		Customer:  business.Party{CountryCode: "DE"},
		Currency:  "EUR",
		IssueDate: day(2025, time.March, 1),
		Lines: []params.LineItemParams{
			euroLine("100.00", 1),
			euroLine("50.00", 2),
		},
	})
	require.NoError(t, err)

	assert.Equal(t, business.InvoiceDraft, resp.Status)
	assert.Equal(t, business.TreatmentStandard, resp.Treatment.Kind)
	assert.Equal(t, int64(1900), resp.Treatment.RateBasisPoints)
	assert.Equal(t, int64(20000), resp.Totals.SubtotalCents)
	assert.Equal(t, int64(3800), resp.Totals.VatAmountCents)
	assert.Equal(t, int64(23800), resp.Totals.TotalCents)
	assert.Equal(t, "238.00", resp.Totals.Total)

	fetched, err := service.GetInvoice(ctx, resp.ID)
	require.NoError(t, err)
	assert.Equal(t, resp.Totals, fetched.Totals)
}

func TestInvoiceService_CreateInvoice_TreatmentFixedAtIssueDate(t *testing.T) {
	service, _ := newInvoiceService(&testutil.MockAuthorizer{})
	ctx := context.Background()

	resp, err := service.CreateInvoice(ctx, params.InvoiceCreateParams{
		Seller:    seller("DE"),
		Customer:  business.Party{CountryCode: "DE"},
		Currency:  "EUR",
		IssueDate: day(2020, time.August, 15),
		Lines:     []params.LineItemParams{euroLine("100.00", 1)},
	})
	require.NoError(t, err)

	// The 2020 temporary rate sticks, whatever today's rate is.
	assert.Equal(t, int64(1600), resp.Treatment.RateBasisPoints)
	assert.Equal(t, int64(1600), resp.Totals.VatAmountCents)
}

func TestInvoiceService_CreateInvoice_InvalidLines(t *testing.T) {
	service, _ := newInvoiceService(&testutil.MockAuthorizer{})
	ctx := context.Background()

	base := params.InvoiceCreateParams{
		Seller:    seller("DE"),
		Customer:  business.Party{CountryCode: "DE"},
		Currency:  "EUR",
		IssueDate: day(2025, time.March, 1),
	}

	tests := []struct {
		name string
		line params.LineItemParams
	}{
		{name: "negative unit price", line: euroLine("-1.00", 1)},
		{name: "zero quantity", line: euroLine("1.00", 0)},
		{name: "negative quantity", line: euroLine("1.00", -2)},
		{name: "unparseable price", line: euroLine("1.2.3", 1)},
		{name: "too many decimals", line: euroLine("1.005", 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := base
			p.Lines = []params.LineItemParams{tt.line}
			_, err := service.CreateInvoice(ctx, p)
			var invalid *business.InvalidLineItemError
			assert.ErrorAs(t, err, &invalid)
		})
	}
}

func TestInvoiceService_Lifecycle(t *testing.T) {
	service, _ := newInvoiceService(&testutil.MockAuthorizer{})
	ctx := context.Background()

	created, err := service.CreateInvoice(ctx, params.InvoiceCreateParams{
		Seller:    seller("DE"),
		Customer:  business.Party{CountryCode: "DE"},
		Currency:  "EUR",
		IssueDate: day(2025, time.March, 1),
		Lines:     []params.LineItemParams{euroLine("100.00", 1)},
	})
	require.NoError(t, err)

	// Draft cannot be paid directly.
	_, err = service.MarkInvoicePaid(ctx, created.ID)
	var invalidTransition *business.InvalidTransitionError
	require.ErrorAs(t, err, &invalidTransition)

	sent, err := service.SendInvoice(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, business.InvoiceSent, sent.Status)

	paid, err := service.MarkInvoicePaid(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, business.InvoicePaid, paid.Status)

	// Paid is terminal.
	_, err = service.CancelInvoice(ctx, created.ID)
	assert.ErrorAs(t, err, &invalidTransition)
}

func TestInvoiceService_UpdateInvoice(t *testing.T) {
	ctx := context.Background()

	t.Run("draft lines can change freely", func(t *testing.T) {
		service, _ := newInvoiceService(&testutil.MockAuthorizer{})
		created, err := service.CreateInvoice(ctx, params.InvoiceCreateParams{
			Seller:    seller("DE"),
			Customer:  business.Party{CountryCode: "DE"},
			Currency:  "EUR",
			IssueDate: day(2025, time.March, 1),
			Lines:     []params.LineItemParams{euroLine("100.00", 1)},
		})
		require.NoError(t, err)

		updated, err := service.UpdateInvoice(ctx, created.ID, params.InvoiceUpdateParams{
			Lines: []params.LineItemParams{euroLine("200.00", 1)},
		})
		require.NoError(t, err)
		assert.Equal(t, int64(20000), updated.Totals.SubtotalCents)
	})

	t.Run("non-draft mutation requires entitlement", func(t *testing.T) {
		authorizer := &testutil.MockAuthorizer{}
		authorizer.On("IsEntitled", mock.Anything, "user-1", "invoice_edit").Return(false, nil)

		service, _ := newInvoiceService(authorizer)
		created, err := service.CreateInvoice(ctx, params.InvoiceCreateParams{
			Seller:    seller("DE"),
			Customer:  business.Party{CountryCode: "DE"},
			Currency:  "EUR",
			IssueDate: day(2025, time.March, 1),
			Lines:     []params.LineItemParams{euroLine("100.00", 1)},
		})
		require.NoError(t, err)
		_, err = service.SendInvoice(ctx, created.ID)
		require.NoError(t, err)

		due := day(2025, time.April, 30)
		_, err = service.UpdateInvoice(ctx, created.ID, params.InvoiceUpdateParams{UserID: "user-1", DueDate: &due})
		assert.ErrorIs(t, err, auth.ErrNotEntitled)
		authorizer.AssertExpectations(t)
	})

	t.Run("lines are immutable once sent", func(t *testing.T) {
		authorizer := &testutil.MockAuthorizer{}
		authorizer.On("IsEntitled", mock.Anything, "user-1", "invoice_edit").Return(true, nil)

		service, _ := newInvoiceService(authorizer)
		created, err := service.CreateInvoice(ctx, params.InvoiceCreateParams{
			Seller:    seller("DE"),
			Customer:  business.Party{CountryCode: "DE"},
			Currency:  "EUR",
			IssueDate: day(2025, time.March, 1),
			Lines:     []params.LineItemParams{euroLine("100.00", 1)},
		})
		require.NoError(t, err)
		_, err = service.SendInvoice(ctx, created.ID)
		require.NoError(t, err)

		_, err = service.UpdateInvoice(ctx, created.ID, params.InvoiceUpdateParams{
			UserID: "user-1",
			Lines:  []params.LineItemParams{euroLine("1.00", 1)},
		})
		var invalidTransition *business.InvalidTransitionError
		assert.ErrorAs(t, err, &invalidTransition)

		// The due date alone may still move with the entitlement.
		due := day(2025, time.April, 30)
		updated, err := service.UpdateInvoice(ctx, created.ID, params.InvoiceUpdateParams{UserID: "user-1", DueDate: &due})
		require.NoError(t, err)
		assert.Equal(t, due, updated.DueDate)
	})
}

func TestInvoiceService_PreviewTotals(t *testing.T) {
	service, _ := newInvoiceService(&testutil.MockAuthorizer{})
	ctx := context.Background()

	preview, err := service.PreviewTotals(ctx, params.TotalsPreviewParams{
		ResolveTreatmentParams: params.ResolveTreatmentParams{
			Seller:   seller("DE"),
			Customer: business.Party{CountryCode: "FR", VatNumber: "FR12345678901", IsVatRegistered: true},
			Date:     day(2025, time.March, 1),
		},
		Currency: "EUR",
		Lines:    []params.LineItemParams{euroLine("100.00", 2)},
	})
	require.NoError(t, err)

	assert.Equal(t, business.TreatmentReverseCharge, preview.Treatment.Kind)
	assert.Equal(t, int64(20000), preview.Totals.SubtotalCents)
	assert.Equal(t, int64(0), preview.Totals.VatAmountCents)
	assert.Equal(t, int64(20000), preview.Totals.TotalCents)
}
