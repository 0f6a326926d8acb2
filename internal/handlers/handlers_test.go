package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/numera/numera-api/internal/handlers"
	"github.com/numera/numera-api/internal/jurisdiction"
	"github.com/numera/numera-api/internal/logger"
	"github.com/numera/numera-api/internal/services"
	"github.com/numera/numera-api/internal/store"
	"github.com/numera/numera-api/internal/testutil"
	"github.com/numera/numera-api/internal/types/api/responses"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	logger.InitLogger("test")
	gin.SetMode(gin.TestMode)
}

type fixture struct {
	router     *gin.Engine
	mem        *store.MemoryStore
	filing     *testutil.MockFilingClient
	authorizer *testutil.MockAuthorizer
}

func newFixture() *fixture {
	mem := store.NewMemoryStore()
	filing := &testutil.MockFilingClient{}
	authorizer := &testutil.MockAuthorizer{}

	jurisdictions := jurisdiction.NewStaticSource()
	taxService := services.NewTaxService(jurisdictions)
	invoiceService := services.NewInvoiceService(mem, taxService, authorizer)
	transactionService := services.NewTransactionService(mem, taxService)
	periodService := services.NewPeriodService(jurisdictions)
	reportService := services.NewReportService(mem, mem, mem, filing, authorizer)

	common := handlers.NewCommonServices(taxService, invoiceService, transactionService, periodService, reportService)
	taxHandler := handlers.NewTaxHandler(common)
	invoiceHandler := handlers.NewInvoiceHandler(common)
	reportHandler := handlers.NewReportHandler(common)

	router := gin.New()
	router.POST("/tax/treatment", taxHandler.ResolveTreatment)
	router.POST("/tax/totals-preview", taxHandler.PreviewTotals)
	router.POST("/invoices", invoiceHandler.CreateInvoice)
	router.GET("/invoices/:invoice_id", invoiceHandler.GetInvoice)
	router.POST("/invoices/:invoice_id/send", invoiceHandler.SendInvoice)
	router.POST("/reports", reportHandler.CreateReport)
	router.POST("/reports/:report_id/submit", func(c *gin.Context) {
		c.Set("userID", "user-1")
		reportHandler.SubmitReport(c)
	})

	return &fixture{router: router, mem: mem, filing: filing, authorizer: authorizer}
}

func (f *fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestTotalsPreviewEndpoint(t *testing.T) {
	f := newFixture()

	w := f.do(t, http.MethodPost, "/tax/totals-preview", map[string]any{
		"seller":   map[string]any{"country_code": "DE", "vat_number": "DE999999999", "is_vat_registered": true},
		"customer": map[string]any{"country_code": "DE"},
		"date":     "2025-03-01T00:00:00Z",
		"currency": "EUR",
		"lines": []map[string]any{
			{"description": "consulting", "unit_price": "100.00", "quantity": 2},
		},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp responses.TotalsPreviewResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(20000), resp.Totals.SubtotalCents)
	assert.Equal(t, int64(3800), resp.Totals.VatAmountCents)
	assert.Equal(t, "238.00", resp.Totals.Total)
	assert.Equal(t, "19", resp.Treatment.RatePercent)
}

func TestTotalsPreviewEndpoint_ValidationFailure(t *testing.T) {
	f := newFixture()

	// Registered customer without VAT number is a 422.
	w := f.do(t, http.MethodPost, "/tax/totals-preview", map[string]any{
		"seller":   map[string]any{"country_code": "DE", "vat_number": "DE999999999", "is_vat_registered": true},
		"customer": map[string]any{"country_code": "FR", "is_vat_registered": true},
		"date":     "2025-03-01T00:00:00Z",
		"currency": "EUR",
		"lines":    []map[string]any{},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestInvoiceEndpoints(t *testing.T) {
	f := newFixture()

	w := f.do(t, http.MethodPost, "/invoices", map[string]any{
		"seller":     map[string]any{"country_code": "DE", "vat_number": "DE999999999", "is_vat_registered": true},
		"customer":   map[string]any{"country_code": "DE"},
		"currency":   "EUR",
		"issue_date": "2025-03-01T00:00:00Z",
		"lines": []map[string]any{
			{"description": "widget", "unit_price": "50.00", "quantity": 4},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var created responses.InvoiceResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, int64(23800), created.Totals.TotalCents)

	w = f.do(t, http.MethodGet, "/invoices/"+created.ID.String(), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodPost, "/invoices/"+created.ID.String()+"/send", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// A second send is a lifecycle conflict.
	w = f.do(t, http.MethodPost, "/invoices/"+created.ID.String()+"/send", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	// Unknown ids are 404, malformed ids 400.
	w = f.do(t, http.MethodGet, "/invoices/00000000-0000-0000-0000-000000000001", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = f.do(t, http.MethodGet, "/invoices/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubmitReportEndpoint_ErrorMapping(t *testing.T) {
	f := newFixture()
	f.authorizer.On("IsEntitled", mock.Anything, "user-1", "vat_submission").Return(false, nil)

	w := f.do(t, http.MethodPost, "/reports", map[string]any{
		"kind": "vat",
		"period": map[string]any{
			"period_start": "2025-01-01T00:00:00Z",
			"period_end":   "2025-01-31T00:00:00Z",
			"due_date":     "2025-02-28T00:00:00Z",
			"period_label": "2025-01",
			"year":         2025,
		},
		"currency": "EUR",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var created responses.ReportResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	// Missing entitlement maps to 403.
	w = f.do(t, http.MethodPost, "/reports/"+created.ID.String()+"/submit", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	f.filing.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything)

	// An empty period maps to 422 once entitled.
	stored, err := f.mem.GetReport(context.Background(), created.ID)
	require.NoError(t, err)
	assert.NotZero(t, stored.CreatedAt)

	f2 := newFixture()
	f2.authorizer.On("IsEntitled", mock.Anything, "user-1", "vat_submission").Return(true, nil)
	w = f2.do(t, http.MethodPost, "/reports", map[string]any{
		"kind": "vat",
		"period": map[string]any{
			"period_start": "2025-01-01T00:00:00Z",
			"period_end":   "2025-01-31T00:00:00Z",
			"due_date":     "2025-02-28T00:00:00Z",
			"period_label": "2025-01",
			"year":         2025,
		},
		"currency": "EUR",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = f2.do(t, http.MethodPost, "/reports/"+created.ID.String()+"/submit", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestTreatmentEndpoint_UnknownCountry(t *testing.T) {
	f := newFixture()

	w := f.do(t, http.MethodPost, "/tax/treatment", map[string]any{
		"seller":   map[string]any{"country_code": "DE", "vat_number": "DE999999999", "is_vat_registered": true},
		"customer": map[string]any{"country_code": "ZZ"},
		"date":     time.Now().UTC().Format(time.RFC3339),
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}
