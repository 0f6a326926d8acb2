package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/numera/numera-api/internal/types/api/params"
	"github.com/numera/numera-api/internal/types/api/responses"
)

// InvoiceHandler exposes invoice creation, mutation and lifecycle endpoints
type InvoiceHandler struct {
	common *CommonServices
}

// NewInvoiceHandler creates a new invoice handler
func NewInvoiceHandler(common *CommonServices) *InvoiceHandler {
	return &InvoiceHandler{common: common}
}

// CreateInvoice creates a draft invoice
func (h *InvoiceHandler) CreateInvoice(c *gin.Context) {
	var p params.InvoiceCreateParams
	if err := c.ShouldBindJSON(&p); err != nil {
		sendError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	invoice, err := h.common.invoiceService.CreateInvoice(c.Request.Context(), p)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	sendSuccess(c, http.StatusCreated, invoice)
}

// GetInvoice retrieves an invoice with derived totals
func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	id, err := uuid.Parse(c.Param("invoice_id"))
	if err != nil {
		sendError(c, http.StatusBadRequest, "Invalid invoice ID format", err)
		return
	}

	invoice, err := h.common.invoiceService.GetInvoice(c.Request.Context(), id)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	sendSuccess(c, http.StatusOK, invoice)
}

// UpdateInvoice mutates an invoice's lines or due date
func (h *InvoiceHandler) UpdateInvoice(c *gin.Context) {
	id, err := uuid.Parse(c.Param("invoice_id"))
	if err != nil {
		sendError(c, http.StatusBadRequest, "Invalid invoice ID format", err)
		return
	}

	var p params.InvoiceUpdateParams
	if err := c.ShouldBindJSON(&p); err != nil {
		sendError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	p.UserID = c.GetString("userID")

	invoice, err := h.common.invoiceService.UpdateInvoice(c.Request.Context(), id, p)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	sendSuccess(c, http.StatusOK, invoice)
}

// SendInvoice marks a draft invoice as sent
func (h *InvoiceHandler) SendInvoice(c *gin.Context) {
	h.transition(c, h.common.invoiceService.SendInvoice)
}

// MarkInvoicePaid marks a sent invoice as paid
func (h *InvoiceHandler) MarkInvoicePaid(c *gin.Context) {
	h.transition(c, h.common.invoiceService.MarkInvoicePaid)
}

// CancelInvoice cancels a draft or sent invoice
func (h *InvoiceHandler) CancelInvoice(c *gin.Context) {
	h.transition(c, h.common.invoiceService.CancelInvoice)
}

func (h *InvoiceHandler) transition(c *gin.Context, fn func(ctx context.Context, id uuid.UUID) (*responses.InvoiceResponse, error)) {
	id, err := uuid.Parse(c.Param("invoice_id"))
	if err != nil {
		sendError(c, http.StatusBadRequest, "Invalid invoice ID format", err)
		return
	}

	invoice, err := fn(c.Request.Context(), id)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	sendSuccess(c, http.StatusOK, invoice)
}
