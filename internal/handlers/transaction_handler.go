package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"crosspay-backend/internal/repository"
	"crosspay-backend/internal/services"
	"crosspay-backend/internal/types"

	"github.com/gin-gonic/gin"
)

// TransactionHandler handles transaction ledger endpoints
type TransactionHandler struct {
	service *services.TransactionService
}

// NewTransactionHandler creates a new TransactionHandler instance
func NewTransactionHandler(service *services.TransactionService) *TransactionHandler {
	return &TransactionHandler{service: service}
}

// RecordTransactionHandler records a send or swap in the ledger
// POST /api/transaction
func (h *TransactionHandler) RecordTransactionHandler(c *gin.Context) {
	var req types.RecordTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body", "details": err.Error()})
		return
	}

	tx, err := h.service.Record(c.Request.Context(), &req)
	if err != nil {
		var validationErr *services.ValidationError
		if errors.As(err, &validationErr) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": validationErr.Message})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Internal server error", "details": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "transaction": tx})
}

// ListByWalletHandler lists transactions involving a wallet
// GET /api/transaction/wallet/:address
func (h *TransactionHandler) ListByWalletHandler(c *gin.Context) {
	address := c.Param("address")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	filter := repository.TransactionFilter{
		Type:      c.Query("type"),
		Direction: c.Query("direction"),
		Limit:     limit,
		Offset:    offset,
	}
	if successParam := c.Query("success"); successParam != "" {
		success := successParam == "true"
		filter.Success = &success
	}

	txs, pagination, err := h.service.ListByWallet(c.Request.Context(), address, filter)
	if err != nil {
		var validationErr *services.ValidationError
		if errors.As(err, &validationErr) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": validationErr.Message})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Internal server error", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"transactions": txs,
		"pagination":   pagination,
	})
}
