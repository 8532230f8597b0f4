// Package handlers contains Gin HTTP handlers for the REST API.
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"crosspay-backend/internal/services"
	"crosspay-backend/internal/types"

	"github.com/gin-gonic/gin"
)

// PaymentHandler handles payment link endpoints
type PaymentHandler struct {
	service *services.PaymentLinkService
}

// NewPaymentHandler creates a new PaymentHandler instance
func NewPaymentHandler(service *services.PaymentLinkService) *PaymentHandler {
	return &PaymentHandler{service: service}
}

// respondPaymentError maps service errors onto the HTTP error taxonomy
func respondPaymentError(c *gin.Context, err error) {
	var validationErr *services.ValidationError
	var mismatchErr *services.RecipientMismatchError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": validationErr.Message})
	case errors.Is(err, services.ErrPaymentLinkNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Payment link not found"})
	case errors.Is(err, services.ErrPaymentLinkNotActive):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Payment link is no longer active"})
	case errors.Is(err, services.ErrPaymentLinkExpired):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Payment link has expired"})
	case errors.As(err, &mismatchErr):
		// Both addresses are included on purpose so users who opened the
		// link with the wrong wallet can see what went wrong.
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error":   "This payment link is for a different recipient",
			"details": gin.H{
				"expectedRecipient": mismatchErr.Expected,
				"yourAddress":       mismatchErr.Got,
			},
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Internal server error", "details": err.Error()})
	}
}

// CreatePaymentHandler creates a new payment link
// POST /api/payment/create
func (h *PaymentHandler) CreatePaymentHandler(c *gin.Context) {
	var req types.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body", "details": err.Error()})
		return
	}

	resp, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		respondPaymentError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":     true,
		"paymentId":   resp.PaymentID,
		"paymentLink": resp.PaymentLink,
		"expiresAt":   resp.ExpiresAt,
		"status":      resp.Status,
	})
}

// ValidatePaymentHandler validates a payment link for a recipient
// POST /api/payment/validate
func (h *PaymentHandler) ValidatePaymentHandler(c *gin.Context) {
	var req types.ValidatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body", "details": err.Error()})
		return
	}

	detail, err := h.service.Validate(c.Request.Context(), &req)
	if err != nil {
		respondPaymentError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "payment": detail})
}

// RecordAttemptHandler records a payment attempt against a link
// POST /api/payment/attempt
func (h *PaymentHandler) RecordAttemptHandler(c *gin.Context) {
	var req types.RecordAttemptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body", "details": err.Error()})
		return
	}

	attempt, err := h.service.RecordAttempt(c.Request.Context(), &req)
	if err != nil {
		respondPaymentError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "attempt": attempt})
}

// ListByCreatorHandler lists payment links created by an address
// GET /api/payment/creator/:address
func (h *PaymentHandler) ListByCreatorHandler(c *gin.Context) {
	address := c.Param("address")
	status := c.Query("status")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	links, pagination, err := h.service.ListByCreator(c.Request.Context(), address, status, limit, offset)
	if err != nil {
		respondPaymentError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"paymentLinks": links,
		"pagination":   pagination,
	})
}

// GetPaymentHandler returns the public view of a payment link
// GET /api/payment/:paymentId
func (h *PaymentHandler) GetPaymentHandler(c *gin.Context) {
	detail, err := h.service.GetPublic(c.Request.Context(), c.Param("paymentId"))
	if err != nil {
		respondPaymentError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "payment": detail})
}
