package models

import (
	"time"
)

// PaymentLinkStatus stored payment link status
type PaymentLinkStatus string

const (
	PaymentLinkStatusPending PaymentLinkStatus = "pending" // awaiting payment
	PaymentLinkStatusPaid    PaymentLinkStatus = "paid"    // a successful attempt was recorded
)

// Derived statuses are never stored; they are computed at read time from the
// stored link plus its attempts (see services.DerivePaymentLinkStatus).
const (
	DerivedStatusCompleted = "completed"
	DerivedStatusExpired   = "expired"
	DerivedStatusFailed    = "failed"
	DerivedStatusPending   = "pending"
)

// TransactionType ledger record type
type TransactionType string

const (
	TransactionTypeSend TransactionType = "send"
	TransactionTypeSwap TransactionType = "swap"
)

// PaymentLink is a shareable request for a specific recipient to pay a
// specific amount across chains, with expiry.
//
// Amount and SolverFee are token base-unit integer strings; they are never
// parsed into floats.
type PaymentLink struct {
	ID                 string                 `json:"id" gorm:"primaryKey"`
	PaymentID          string                 `json:"paymentId" gorm:"uniqueIndex;not null"`
	CreatorAddress     string                 `json:"creatorAddress" gorm:"index;not null"`
	RecipientAddress   string                 `json:"recipientAddress" gorm:"index;not null"`
	Amount             string                 `json:"amount" gorm:"not null"`
	SolverFee          string                 `json:"solverFee" gorm:"not null"`
	SourceChainID      int64                  `json:"sourceChainId" gorm:"not null"`
	DestinationChainID int64                  `json:"destinationChainId" gorm:"not null"`
	Status             PaymentLinkStatus      `json:"status" gorm:"index;not null;default:pending"`
	CreatedAt          time.Time              `json:"createdAt" gorm:"index"`
	ExpiresAt          time.Time              `json:"expiresAt" gorm:"not null"`
	PaidAt             *time.Time             `json:"paidAt"`
	TransactionHash    string                 `json:"transactionHash"`
	Metadata           map[string]interface{} `json:"metadata" gorm:"serializer:json"`

	Attempts []PaymentAttempt `json:"attempts,omitempty" gorm:"foreignKey:PaymentID;references:PaymentID;constraint:OnDelete:CASCADE"`
}

// TableName table name
func (PaymentLink) TableName() string {
	return "payment_links"
}

// IsExpired reports whether the link is past its TTL at the given instant
func (p *PaymentLink) IsExpired(now time.Time) bool {
	return now.After(p.ExpiresAt)
}

// PaymentAttempt is one recorded try (successful or not) at satisfying a
// payment link. Rows are append-only: never edited, never deleted except by
// cascade when the parent link is removed.
type PaymentAttempt struct {
	ID               string    `json:"id" gorm:"primaryKey"`
	PaymentID        string    `json:"paymentId" gorm:"index;not null"`
	AttemptAddress   string    `json:"attemptAddress" gorm:"index;not null"`
	AttemptChainID   int64     `json:"attemptChainId" gorm:"not null"`
	AttemptTimestamp time.Time `json:"attemptTimestamp" gorm:"index"`
	Success          bool      `json:"success" gorm:"not null;default:false"`
	ErrorMessage     string    `json:"errorMessage"`
	TransactionHash  string    `json:"transactionHash"`
}

// TableName table name
func (PaymentAttempt) TableName() string {
	return "payment_attempts"
}

// Transaction is an independent ledger record of a direct send or a
// same-owner cross-chain swap, unrelated to payment links. One immutable row
// per attempted on-chain operation.
type Transaction struct {
	ID               string                 `json:"id" gorm:"primaryKey"`
	Type             TransactionType        `json:"type" gorm:"index;not null"`
	WalletAddress    string                 `json:"walletAddress" gorm:"index;not null"`
	FromChainID      int64                  `json:"fromChainId" gorm:"not null"`
	ToChainID        *int64                 `json:"toChainId"` // nil for same-chain sends
	Amount           string                 `json:"amount"`
	RecipientAddress string                 `json:"recipientAddress" gorm:"index"`
	TokenIn          string                 `json:"tokenIn"`
	TokenOut         string                 `json:"tokenOut"`
	Success          bool                   `json:"success" gorm:"index;not null;default:false"`
	ErrorMessage     string                 `json:"errorMessage"`
	TransactionHash  string                 `json:"transactionHash"`
	Timestamp        time.Time              `json:"timestamp" gorm:"index"`
	Metadata         map[string]interface{} `json:"metadata" gorm:"serializer:json"`
}

// TableName table name
func (Transaction) TableName() string {
	return "transactions"
}
