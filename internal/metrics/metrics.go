package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ============================================
	// Database metrics
	// ============================================
	DBConnectionStatus = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "crosspay_db_connection_status",
		Help: "Database connection status (1=healthy, 0=unhealthy)",
	})

	// ============================================
	// Payment link metrics
	// ============================================
	PaymentLinksCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crosspay_payment_links_created_total",
		Help: "Total number of payment links created",
	})

	PaymentLinksPaid = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crosspay_payment_links_paid_total",
		Help: "Total number of payment links marked paid",
	})

	PaymentAttemptsRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crosspay_payment_attempts_recorded_total",
			Help: "Total number of payment attempts recorded",
		},
		[]string{"result"},
	)

	PaymentValidations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crosspay_payment_validations_total",
			Help: "Total number of payment link validation calls",
		},
		[]string{"outcome"},
	)

	// ============================================
	// Transaction ledger metrics
	// ============================================
	TransactionsRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crosspay_transactions_recorded_total",
			Help: "Total number of ledger transactions recorded",
		},
		[]string{"type", "result"},
	)

	// ============================================
	// HTTP metrics
	// ============================================
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "crosspay_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// ============================================
	// NATS metrics
	// ============================================
	NATSConnectionStatus = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "crosspay_nats_connection_status",
		Help: "NATS connection status (1=connected, 0=disconnected)",
	})

	NATSEventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crosspay_nats_events_published_total",
			Help: "Total number of NATS events published",
		},
		[]string{"subject"},
	)

	NATSPublishFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crosspay_nats_publish_failures_total",
			Help: "Total number of failed NATS publishes",
		},
		[]string{"subject"},
	)

	// ============================================
	// WebSocket metrics
	// ============================================
	WebSocketConnectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "crosspay_websocket_connections_active",
		Help: "Number of active WebSocket connections",
	})

	WebSocketMessagesPushed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crosspay_websocket_messages_pushed_total",
			Help: "Total number of WebSocket messages pushed to clients",
		},
		[]string{"type"},
	)
)
