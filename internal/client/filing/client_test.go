package filing_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/numera/numera-api/internal/client/filing"
	"github.com/numera/numera-api/internal/logger"
	"github.com/numera/numera-api/internal/types/business"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	logger.InitLogger("test")
}

func testReport() business.TaxReport {
	return business.TaxReport{
		ID:          uuid.New(),
		Kind:        business.ReportVAT,
		PeriodLabel: "2025-01",
		Currency:    "EUR",
		FinancialData: &business.ReportFinancialData{
			Currency: "EUR",
			NetCents: 10000,
			VatCents: 1900,
		},
	}
}

func TestClient_Submit_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/filings", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("x-api-key"))

		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "vat", payload["kind"])
		assert.Equal(t, "2025-01", payload["period_label"])

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"receipt_id": "R-77"})
	}))
	defer server.Close()

	client := filing.NewClient(server.URL, "secret")
	receipt, err := client.Submit(context.Background(), testReport())
	require.NoError(t, err)
	assert.Equal(t, "R-77", receipt.ReceiptID)
}

func TestClient_Submit_StructuredRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"code":    "ERR-42",
			"message": "Die Steuernummer ist ungültig",
		})
	}))
	defer server.Close()

	client := filing.NewClient(server.URL, "secret")
	_, err := client.Submit(context.Background(), testReport())

	var rejection *business.FilingRejectedError
	require.ErrorAs(t, err, &rejection)
	assert.Equal(t, "ERR-42", rejection.Code)
	assert.Equal(t, "Die Steuernummer ist ungültig", rejection.Message)
}

func TestClient_Submit_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := filing.NewClient(server.URL, "secret")
	_, err := client.Submit(context.Background(), testReport())
	require.Error(t, err)

	// A 500 is a transport failure, never a structured rejection.
	var rejection *business.FilingRejectedError
	assert.False(t, errors.As(err, &rejection))
}

func TestClient_TestSubmit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/filings/test", r.URL.Path)
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-preview"))
	}))
	defer server.Close()

	client := filing.NewClient(server.URL, "secret")
	artifact, err := client.TestSubmit(context.Background(), testReport())
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", artifact.ContentType)
	assert.Equal(t, []byte("%PDF-preview"), artifact.Content)
}
