package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// RootHandler service banner
// GET /
func RootHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"service": "crosspay-backend",
		"message": "Payment Backend API is running",
		"endpoints": gin.H{
			"health":       "/api/health",
			"payments":     "/api/payment",
			"transactions": "/api/transaction",
			"websocket":    "/api/ws",
		},
	})
}

// HealthCheckHandler liveness probe
// GET /health, GET /api/health
func HealthCheckHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"status":    "ok",
		"service":   "crosspay-backend",
		"message":   "Payment Backend API is running",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// PingHandler connectivity check
// GET /ping
func PingHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}
