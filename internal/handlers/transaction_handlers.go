package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/numera/numera-api/internal/types/api/params"
)

// TransactionHandler exposes standalone income/expense entry endpoints
type TransactionHandler struct {
	common *CommonServices
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(common *CommonServices) *TransactionHandler {
	return &TransactionHandler{common: common}
}

// CreateTransaction records an income or expense entry
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	var p params.TransactionCreateParams
	if err := c.ShouldBindJSON(&p); err != nil {
		sendError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	tx, err := h.common.transactionService.CreateTransaction(c.Request.Context(), p)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	sendSuccess(c, http.StatusCreated, tx)
}

// ListTransactions lists transactions within a date range given by the
// from/to query parameters (YYYY-MM-DD, inclusive).
func (h *TransactionHandler) ListTransactions(c *gin.Context) {
	from, err := time.Parse("2006-01-02", c.Query("from"))
	if err != nil {
		sendError(c, http.StatusBadRequest, "Invalid from date", err)
		return
	}
	to, err := time.Parse("2006-01-02", c.Query("to"))
	if err != nil {
		sendError(c, http.StatusBadRequest, "Invalid to date", err)
		return
	}

	txs, err := h.common.transactionService.ListTransactions(c.Request.Context(), from, to)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	sendList(c, txs)
}
