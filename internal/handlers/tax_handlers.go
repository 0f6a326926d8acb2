package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/numera/numera-api/internal/types/api/params"
)

// TaxHandler exposes the VAT rule resolver and the shared totals preview
type TaxHandler struct {
	common *CommonServices
}

// NewTaxHandler creates a new tax handler
func NewTaxHandler(common *CommonServices) *TaxHandler {
	return &TaxHandler{common: common}
}

// ResolveTreatment resolves the VAT treatment for a seller/customer context
func (h *TaxHandler) ResolveTreatment(c *gin.Context) {
	var p params.ResolveTreatmentParams
	if err := c.ShouldBindJSON(&p); err != nil {
		sendError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	treatment, err := h.common.taxService.ResolveTreatment(c.Request.Context(), p)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	sendSuccess(c, http.StatusOK, treatment)
}

// PreviewTotals resolves the treatment and derives totals for a line set
// without persisting anything.
func (h *TaxHandler) PreviewTotals(c *gin.Context) {
	var p params.TotalsPreviewParams
	if err := c.ShouldBindJSON(&p); err != nil {
		sendError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	preview, err := h.common.invoiceService.PreviewTotals(c.Request.Context(), p)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	sendSuccess(c, http.StatusOK, preview)
}
