// Package filing is the HTTP client for the tax authority's filing API. It
// implements the services.FilingClient contract: live submissions and
// test-mode submissions against separate endpoints.
package filing

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/numera/numera-api/internal/logger"
	"github.com/numera/numera-api/internal/types/business"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Client talks to the filing authority over HTTPS
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new filing client
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger.Log,
	}
}

// submissionPayload is the wire form of a filing
type submissionPayload struct {
	ReportID      string                        `json:"report_id"`
	Kind          business.ReportKind           `json:"kind"`
	PeriodStart   string                        `json:"period_start"`
	PeriodEnd     string                        `json:"period_end"`
	PeriodLabel   string                        `json:"period_label"`
	Currency      string                        `json:"currency"`
	FinancialData *business.ReportFinancialData `json:"financial_data"`
}

// rejectionBody is the authority's structured rejection response
type rejectionBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func newSubmissionPayload(report business.TaxReport) submissionPayload {
	return submissionPayload{
		ReportID:      report.ID.String(),
		Kind:          report.Kind,
		PeriodStart:   report.PeriodStart.Format("2006-01-02"),
		PeriodEnd:     report.PeriodEnd.Format("2006-01-02"),
		PeriodLabel:   report.PeriodLabel,
		Currency:      report.Currency,
		FinancialData: report.FinancialData,
	}
}

// Submit files the report for real. A 422 with a structured body becomes
// *business.FilingRejectedError carrying the authority's message verbatim;
// anything else non-2xx is a transport-level failure.
func (c *Client) Submit(ctx context.Context, report business.TaxReport) (*business.FilingReceipt, error) {
	body, status, _, err := c.doRequest(ctx, http.MethodPost, "/v1/filings", newSubmissionPayload(report))
	if err != nil {
		return nil, err
	}

	if status == http.StatusUnprocessableEntity {
		var rejection rejectionBody
		if err := json.Unmarshal(body, &rejection); err != nil {
			return nil, errors.Wrap(err, "failed to parse rejection response")
		}
		return nil, &business.FilingRejectedError{Code: rejection.Code, Message: rejection.Message}
	}
	if status != http.StatusOK && status != http.StatusCreated {
		return nil, errors.Errorf("filing API returned status %d: %s", status, string(body))
	}

	var receipt business.FilingReceipt
	if err := json.Unmarshal(body, &receipt); err != nil {
		return nil, errors.Wrap(err, "failed to parse filing receipt")
	}

	c.logger.Info("Filing accepted by authority",
		zap.String("report_id", report.ID.String()),
		zap.String("receipt_id", receipt.ReceiptID))

	return &receipt, nil
}

// TestSubmit runs a test-mode submission and returns the preview artifact the
// authority generates. Nothing is filed.
func (c *Client) TestSubmit(ctx context.Context, report business.TaxReport) (*business.FilingArtifact, error) {
	body, status, contentType, err := c.doRequest(ctx, http.MethodPost, "/v1/filings/test", newSubmissionPayload(report))
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, errors.Errorf("filing API returned status %d: %s", status, string(body))
	}

	return &business.FilingArtifact{
		ContentType: contentType,
		Content:     body,
	}, nil
}

func (c *Client) doRequest(ctx context.Context, method, endpoint string, payload any) ([]byte, int, string, error) {
	reqBody, err := json.Marshal(payload)
	if err != nil {
		return nil, 0, "", errors.Wrap(err, "failed to marshal request body")
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, 0, "", errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, "", errors.Wrap(err, "filing API request failed")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, "", errors.Wrap(err, "failed to read response body")
	}

	return respBody, resp.StatusCode, resp.Header.Get("Content-Type"), nil
}
