// Package router assembles the Gin engine, middleware and routes.
package router

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"crosspay-backend/internal/config"
	"crosspay-backend/internal/handlers"
	"crosspay-backend/internal/metrics"
	"crosspay-backend/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// corsMiddleware applies the configured CORS policy. Origins come from
// config (already env-overridable there); empty config allows all.
func corsMiddleware(cfg config.CORSConfig) gin.HandlerFunc {
	allowedOrigins := cfg.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	maxAge := cfg.MaxAge
	if maxAge <= 0 {
		maxAge = 3600
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		if len(allowedOrigins) == 1 && allowedOrigins[0] == "*" {
			c.Header("Access-Control-Allow-Origin", "*")
		} else if origin != "" {
			allowed := false
			for _, allowedOrigin := range allowedOrigins {
				if strings.TrimSpace(allowedOrigin) == origin {
					allowed = true
					break
				}
			}
			if allowed {
				c.Header("Access-Control-Allow-Origin", origin)
			} else {
				logrus.WithFields(logrus.Fields{
					"origin": origin,
					"path":   c.Request.URL.Path,
					"method": c.Request.Method,
				}).Warn("🚫 CORS: Request blocked - origin not in whitelist")
			}
		}

		if cfg.AllowCredentials {
			c.Header("Access-Control-Allow-Credentials", "true")
		}
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Header("Access-Control-Max-Age", strconv.Itoa(maxAge))

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// metricsMiddleware observes request latency per route
func metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.HTTPRequestDuration.
			WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}

// Setup builds the Gin engine with all routes registered
func Setup(
	cfg *config.Config,
	paymentHandler *handlers.PaymentHandler,
	transactionHandler *handlers.TransactionHandler,
	wsHandler *handlers.WebSocketHandler,
) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(corsMiddleware(cfg.CORS))
	r.Use(metricsMiddleware())

	// Basic endpoints
	r.GET("/", handlers.RootHandler)
	r.GET("/health", handlers.HealthCheckHandler)
	r.GET("/ping", handlers.PingHandler)

	// Operational endpoints restricted to localhost / whitelisted IPs
	localhostOnly := middleware.NewLocalhostOnly(cfg.Admin.AllowedIPs)
	r.GET("/metrics", localhostOnly.Restrict(), gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		api.GET("/health", handlers.HealthCheckHandler)
		api.GET("/ws", wsHandler.HandleWebSocket)

		payment := api.Group("/payment")
		{
			payment.POST("/create", paymentHandler.CreatePaymentHandler)
			payment.POST("/validate", paymentHandler.ValidatePaymentHandler)
			payment.POST("/attempt", paymentHandler.RecordAttemptHandler)
			payment.GET("/creator/:address", paymentHandler.ListByCreatorHandler)
			payment.GET("/:paymentId", paymentHandler.GetPaymentHandler)
		}

		transaction := api.Group("/transaction")
		{
			transaction.POST("", transactionHandler.RecordTransactionHandler)
			transaction.GET("/wallet/:address", transactionHandler.ListByWalletHandler)
		}
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Route not found"})
	})

	return r
}
