// Package clients wraps external service connections.
package clients

import (
	"encoding/json"
	"fmt"
	"time"

	"crosspay-backend/internal/metrics"

	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
)

// NATSClient thin publishing client over a NATS connection
type NATSClient struct {
	conn *nats.Conn
}

// NewNATSClient connects to the NATS server with reconnect handling
func NewNATSClient(url string, timeoutSeconds int) (*NATSClient, error) {
	connectTimeout := 10 * time.Second
	if timeoutSeconds > 0 {
		connectTimeout = time.Duration(timeoutSeconds) * time.Second
	}

	conn, err := nats.Connect(url,
		nats.Timeout(connectTimeout),
		nats.ReconnectWait(5*time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			logrus.WithField("error", err).Warn("NATS connection lost")
			metrics.NATSConnectionStatus.Set(0)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logrus.WithField("url", nc.ConnectedUrl()).Info("✅ NATS reconnected")
			metrics.NATSConnectionStatus.Set(1)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	metrics.NATSConnectionStatus.Set(1)
	logrus.WithField("url", url).Info("✅ NATS client connected")

	return &NATSClient{conn: conn}, nil
}

// Publish marshals payload to JSON and publishes it on subject
func (c *NATSClient) Publish(subject string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}
	if err := c.conn.Publish(subject, data); err != nil {
		metrics.NATSPublishFailures.WithLabelValues(subject).Inc()
		return fmt.Errorf("failed to publish to %s: %w", subject, err)
	}
	metrics.NATSEventsPublished.WithLabelValues(subject).Inc()
	return nil
}

// Close drains and closes the connection
func (c *NATSClient) Close() {
	if c.conn != nil {
		if err := c.conn.Drain(); err != nil {
			logrus.WithField("error", err).Warn("NATS drain failed, closing anyway")
		}
		c.conn.Close()
	}
}
