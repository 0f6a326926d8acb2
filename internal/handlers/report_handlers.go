package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/numera/numera-api/internal/types/api/params"
	"github.com/numera/numera-api/internal/types/business"
)

// ReportHandler exposes period derivation and the report lifecycle endpoints
type ReportHandler struct {
	common *CommonServices
}

// NewReportHandler creates a new report handler
func NewReportHandler(common *CommonServices) *ReportHandler {
	return &ReportHandler{common: common}
}

// BuildPeriods derives reporting periods from a declared cadence
func (h *ReportHandler) BuildPeriods(c *gin.Context) {
	var p params.BuildPeriodsParams
	if err := c.ShouldBindJSON(&p); err != nil {
		sendError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	periods, err := h.common.periodService.BuildPeriods(c.Request.Context(), p)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	sendList(c, periods)
}

// CreateReport creates a draft report for one period
func (h *ReportHandler) CreateReport(c *gin.Context) {
	var p params.ReportCreateParams
	if err := c.ShouldBindJSON(&p); err != nil {
		sendError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	report, err := h.common.reportService.CreateReport(c.Request.Context(), p)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	sendSuccess(c, http.StatusCreated, report)
}

// GetReport retrieves a report by id
func (h *ReportHandler) GetReport(c *gin.Context) {
	id, ok := h.reportID(c)
	if !ok {
		return
	}

	report, err := h.common.reportService.GetReport(c.Request.Context(), id)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	sendSuccess(c, http.StatusOK, report)
}

// ListReports lists reports of the kind given by the kind query parameter
func (h *ReportHandler) ListReports(c *gin.Context) {
	kind := business.ReportKind(c.DefaultQuery("kind", string(business.ReportVAT)))

	reports, err := h.common.reportService.ListReports(c.Request.Context(), kind)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	sendList(c, reports)
}

// PreviewReport computes the report's figures without persisting anything
func (h *ReportHandler) PreviewReport(c *gin.Context) {
	id, ok := h.reportID(c)
	if !ok {
		return
	}

	preview, err := h.common.reportService.Preview(c.Request.Context(), id)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	sendSuccess(c, http.StatusOK, preview)
}

// MarkReportPreviewed records that the user reviewed the computed figures
func (h *ReportHandler) MarkReportPreviewed(c *gin.Context) {
	id, ok := h.reportID(c)
	if !ok {
		return
	}

	report, err := h.common.reportService.MarkPreviewed(c.Request.Context(), id)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	sendSuccess(c, http.StatusOK, report)
}

// TestSubmitReport runs a test-mode submission and returns the artifact
func (h *ReportHandler) TestSubmitReport(c *gin.Context) {
	id, ok := h.reportID(c)
	if !ok {
		return
	}

	artifact, err := h.common.reportService.TestSubmit(c.Request.Context(), id)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	sendSuccess(c, http.StatusOK, artifact)
}

// SubmitReport files the report with the tax authority
func (h *ReportHandler) SubmitReport(c *gin.Context) {
	id, ok := h.reportID(c)
	if !ok {
		return
	}

	report, err := h.common.reportService.Submit(c.Request.Context(), params.ReportSubmitParams{
		ReportID: id,
		UserID:   c.GetString("userID"),
	})
	if err != nil {
		respondDomainError(c, err)
		return
	}

	sendSuccess(c, http.StatusOK, report)
}

// authorityDecisionBody is the authority's asynchronous verdict
type authorityDecisionBody struct {
	Accepted bool   `json:"accepted"`
	Message  string `json:"message"`
}

// RecordAuthorityDecision applies the authority's verdict on a submitted
// report.
func (h *ReportHandler) RecordAuthorityDecision(c *gin.Context) {
	id, ok := h.reportID(c)
	if !ok {
		return
	}

	var body authorityDecisionBody
	if err := c.ShouldBindJSON(&body); err != nil {
		sendError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	report, err := h.common.reportService.RecordAuthorityDecision(c.Request.Context(), id, body.Accepted, body.Message)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	sendSuccess(c, http.StatusOK, report)
}

// ReopenReport moves a rejected report back to draft
func (h *ReportHandler) ReopenReport(c *gin.Context) {
	id, ok := h.reportID(c)
	if !ok {
		return
	}

	report, err := h.common.reportService.Reopen(c.Request.Context(), id)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	sendSuccess(c, http.StatusOK, report)
}

func (h *ReportHandler) reportID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("report_id"))
	if err != nil {
		sendError(c, http.StatusBadRequest, "Invalid report ID format", err)
		return uuid.Nil, false
	}
	return id, true
}
