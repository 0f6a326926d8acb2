package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/numera/numera-api/internal/auth"
	"github.com/numera/numera-api/internal/logger"
	"github.com/numera/numera-api/internal/services"
	"github.com/numera/numera-api/internal/store"
	"github.com/numera/numera-api/internal/types/business"
	"go.uber.org/zap"
)

// CommonServices holds common dependencies used across handlers
type CommonServices struct {
	taxService         *services.TaxService
	invoiceService     *services.InvoiceService
	transactionService *services.TransactionService
	periodService      *services.PeriodService
	reportService      *services.ReportService
}

// NewCommonServices creates a new instance of CommonServices
func NewCommonServices(
	taxService *services.TaxService,
	invoiceService *services.InvoiceService,
	transactionService *services.TransactionService,
	periodService *services.PeriodService,
	reportService *services.ReportService,
) *CommonServices {
	return &CommonServices{
		taxService:         taxService,
		invoiceService:     invoiceService,
		transactionService: transactionService,
		periodService:      periodService,
		reportService:      reportService,
	}
}

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// SuccessResponse represents a standard success response
type SuccessResponse struct {
	Message string `json:"message"`
}

// sendError is a helper function that combines logging and error response
func sendError(c *gin.Context, statusCode int, message string, err error) {
	logger.Error(message,
		zap.Error(err),
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method),
	)
	c.JSON(statusCode, ErrorResponse{Error: message})
}

// sendSuccess is a helper function that sends a success response
func sendSuccess(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, data)
}

// sendList is a helper function that sends a list response
func sendList(c *gin.Context, items interface{}) {
	c.JSON(http.StatusOK, gin.H{
		"object": "list",
		"data":   items,
	})
}

// respondDomainError maps domain errors onto HTTP status codes. Validation
// failures are 422, lifecycle and concurrency conflicts 409, missing entities
// 404, entitlement failures 403; anything unrecognized is a 500.
func respondDomainError(c *gin.Context, err error) {
	var (
		invalidTransition    *business.InvalidTransitionError
		submissionInProgress *business.SubmissionInProgressError
		currencyMismatch     *business.CurrencyMismatchError
		invalidParty         *business.InvalidPartyDataError
		invalidLineItem      *business.InvalidLineItemError
		unknownJurisdiction  *business.UnknownJurisdictionError
		emptyReport          *business.EmptyReportError
	)

	switch {
	case errors.Is(err, store.ErrNotFound):
		sendError(c, http.StatusNotFound, "Not found", err)
	case errors.Is(err, auth.ErrNotEntitled):
		sendError(c, http.StatusForbidden, err.Error(), err)
	case errors.As(err, &invalidTransition),
		errors.As(err, &submissionInProgress):
		sendError(c, http.StatusConflict, err.Error(), err)
	case errors.As(err, &currencyMismatch),
		errors.As(err, &invalidParty),
		errors.As(err, &invalidLineItem),
		errors.As(err, &unknownJurisdiction),
		errors.As(err, &emptyReport):
		sendError(c, http.StatusUnprocessableEntity, err.Error(), err)
	default:
		sendError(c, http.StatusInternalServerError, "Internal server error", err)
	}
}
