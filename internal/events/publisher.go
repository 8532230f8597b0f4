// Package events publishes bookkeeping events over NATS so other demo
// services can subscribe to payment activity. Publishing is best-effort:
// failures are logged and never fail the originating request.
package events

import (
	"time"

	"crosspay-backend/internal/clients"
	"crosspay-backend/internal/models"

	"github.com/sirupsen/logrus"
)

// Subjects for published events
const (
	SubjectPaymentCreated      = "crosspay.payment.created"
	SubjectPaymentPaid         = "crosspay.payment.paid"
	SubjectTransactionRecorded = "crosspay.transaction.recorded"
)

// PaymentCreatedEvent published when a payment link is created
type PaymentCreatedEvent struct {
	PaymentID          string    `json:"payment_id"`
	CreatorAddress     string    `json:"creator_address"`
	RecipientAddress   string    `json:"recipient_address"`
	Amount             string    `json:"amount"`
	SolverFee          string    `json:"solver_fee"`
	SourceChainID      int64     `json:"source_chain_id"`
	DestinationChainID int64     `json:"destination_chain_id"`
	ExpiresAt          time.Time `json:"expires_at"`
	Timestamp          time.Time `json:"timestamp"`
}

// PaymentPaidEvent published when a successful attempt marks a link paid
type PaymentPaidEvent struct {
	PaymentID       string    `json:"payment_id"`
	CreatorAddress  string    `json:"creator_address"`
	AttemptAddress  string    `json:"attempt_address"`
	AttemptChainID  int64     `json:"attempt_chain_id"`
	TransactionHash string    `json:"transaction_hash"`
	Timestamp       time.Time `json:"timestamp"`
}

// TransactionRecordedEvent published for every ledger row
type TransactionRecordedEvent struct {
	TransactionID   string    `json:"transaction_id"`
	Type            string    `json:"type"`
	WalletAddress   string    `json:"wallet_address"`
	FromChainID     int64     `json:"from_chain_id"`
	ToChainID       *int64    `json:"to_chain_id,omitempty"`
	Success         bool      `json:"success"`
	TransactionHash string    `json:"transaction_hash,omitempty"`
	Timestamp       time.Time `json:"timestamp"`
}

// Publisher publishes CrossPay events. A nil Publisher is valid and
// publishes nothing, so callers never need to guard their calls.
type Publisher struct {
	client *clients.NATSClient
}

// NewPublisher creates a Publisher over a connected NATS client
func NewPublisher(client *clients.NATSClient) *Publisher {
	return &Publisher{client: client}
}

// PublishPaymentCreated publishes a payment.created event
func (p *Publisher) PublishPaymentCreated(link *models.PaymentLink) {
	if p == nil || p.client == nil {
		return
	}
	event := PaymentCreatedEvent{
		PaymentID:          link.PaymentID,
		CreatorAddress:     link.CreatorAddress,
		RecipientAddress:   link.RecipientAddress,
		Amount:             link.Amount,
		SolverFee:          link.SolverFee,
		SourceChainID:      link.SourceChainID,
		DestinationChainID: link.DestinationChainID,
		ExpiresAt:          link.ExpiresAt,
		Timestamp:          time.Now().UTC(),
	}
	if err := p.client.Publish(SubjectPaymentCreated, event); err != nil {
		logrus.WithFields(logrus.Fields{
			"payment_id": link.PaymentID,
			"error":      err,
		}).Warn("⚠️ Failed to publish payment.created event")
	}
}

// PublishPaymentPaid publishes a payment.paid event
func (p *Publisher) PublishPaymentPaid(link *models.PaymentLink, attempt *models.PaymentAttempt) {
	if p == nil || p.client == nil {
		return
	}
	event := PaymentPaidEvent{
		PaymentID:       link.PaymentID,
		CreatorAddress:  link.CreatorAddress,
		AttemptAddress:  attempt.AttemptAddress,
		AttemptChainID:  attempt.AttemptChainID,
		TransactionHash: attempt.TransactionHash,
		Timestamp:       time.Now().UTC(),
	}
	if err := p.client.Publish(SubjectPaymentPaid, event); err != nil {
		logrus.WithFields(logrus.Fields{
			"payment_id": link.PaymentID,
			"error":      err,
		}).Warn("⚠️ Failed to publish payment.paid event")
	}
}

// PublishTransactionRecorded publishes a transaction.recorded event
func (p *Publisher) PublishTransactionRecorded(tx *models.Transaction) {
	if p == nil || p.client == nil {
		return
	}
	event := TransactionRecordedEvent{
		TransactionID:   tx.ID,
		Type:            string(tx.Type),
		WalletAddress:   tx.WalletAddress,
		FromChainID:     tx.FromChainID,
		ToChainID:       tx.ToChainID,
		Success:         tx.Success,
		TransactionHash: tx.TransactionHash,
		Timestamp:       time.Now().UTC(),
	}
	if err := p.client.Publish(SubjectTransactionRecorded, event); err != nil {
		logrus.WithFields(logrus.Fields{
			"transaction_id": tx.ID,
			"error":          err,
		}).Warn("⚠️ Failed to publish transaction.recorded event")
	}
}
