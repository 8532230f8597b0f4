package types

import (
	"time"

	"crosspay-backend/internal/models"
)

// Pagination response fragment shared by list endpoints
type Pagination struct {
	Total   int64 `json:"total"`
	Limit   int   `json:"limit"`
	Offset  int   `json:"offset"`
	HasMore bool  `json:"hasMore"`
}

// CreatePaymentResponse data for POST /api/payment/create
type CreatePaymentResponse struct {
	PaymentID   string                   `json:"paymentId"`
	PaymentLink string                   `json:"paymentLink"`
	ExpiresAt   time.Time                `json:"expiresAt"`
	Status      models.PaymentLinkStatus `json:"status"`
}

// PaymentDetail data for POST /api/payment/validate. The creator address is
// revealed here: the validated recipient needs it to know who to pay.
type PaymentDetail struct {
	PaymentID          string                 `json:"paymentId"`
	Amount             string                 `json:"amount"`
	SolverFee          string                 `json:"solverFee"`
	SourceChainID      int64                  `json:"sourceChainId"`
	DestinationChainID int64                  `json:"destinationChainId"`
	CreatorAddress     string                 `json:"creatorAddress"`
	ExpiresAt          time.Time              `json:"expiresAt"`
	Metadata           map[string]interface{} `json:"metadata"`
}

// PublicPaymentDetail data for GET /api/payment/:paymentId. Creator and
// recipient addresses are deliberately omitted for pre-authentication viewing.
type PublicPaymentDetail struct {
	PaymentID          string                   `json:"paymentId"`
	Amount             string                   `json:"amount"`
	SolverFee          string                   `json:"solverFee"`
	SourceChainID      int64                    `json:"sourceChainId"`
	DestinationChainID int64                    `json:"destinationChainId"`
	Status             models.PaymentLinkStatus `json:"status"`
	ExpiresAt          time.Time                `json:"expiresAt"`
	CreatedAt          time.Time                `json:"createdAt"`
}

// AttemptView one attempt row in the creator listing
type AttemptView struct {
	ID              string    `json:"id"`
	Timestamp       time.Time `json:"timestamp"`
	Address         string    `json:"address"`
	ChainID         int64     `json:"chainId"`
	Success         bool      `json:"success"`
	ErrorMessage    string    `json:"errorMessage,omitempty"`
	TransactionHash string    `json:"transactionHash,omitempty"`
}

// CompletionDetails describes how a link reached the completed state.
// Address and chain id fall back to "unknown" when the link was marked paid
// without a matching successful attempt.
type CompletionDetails struct {
	CompletedAt     *time.Time  `json:"completedAt"`
	TransactionHash string      `json:"transactionHash"`
	AttemptAddress  interface{} `json:"attemptAddress"`
	AttemptChainID  interface{} `json:"attemptChainId"`
}

// PaymentLinkView one payment link in GET /api/payment/creator/:address.
// Status carries the derived status; OriginalStatus the stored one.
type PaymentLinkView struct {
	PaymentID          string                   `json:"paymentId"`
	CreatorAddress     string                   `json:"creatorAddress"`
	RecipientAddress   string                   `json:"recipientAddress"`
	Amount             string                   `json:"amount"`
	SolverFee          string                   `json:"solverFee"`
	SourceChainID      int64                    `json:"sourceChainId"`
	DestinationChainID int64                    `json:"destinationChainId"`
	Status             string                   `json:"status"`
	OriginalStatus     models.PaymentLinkStatus `json:"originalStatus"`
	CreatedAt          time.Time                `json:"createdAt"`
	ExpiresAt          time.Time                `json:"expiresAt"`
	PaidAt             *time.Time               `json:"paidAt"`
	TransactionHash    string                   `json:"transactionHash"`
	Metadata           map[string]interface{}   `json:"metadata"`
	PaymentURL         string                   `json:"paymentUrl"`

	AttemptCount       int          `json:"attemptCount"`
	SuccessfulAttempts int          `json:"successfulAttempts"`
	FailedAttempts     int          `json:"failedAttempts"`
	LastAttempt        *AttemptView `json:"lastAttempt"`

	CompletionDetails *CompletionDetails `json:"completionDetails"`

	AllAttempts []AttemptView `json:"allAttempts"`
}

// TransactionView one ledger row in GET /api/transaction/wallet/:address.
// Type is relabeled from "send" to "received" when the queried wallet is the
// recipient; storage keeps "send".
type TransactionView struct {
	ID               string                 `json:"id"`
	Type             string                 `json:"type"`
	WalletAddress    string                 `json:"walletAddress"`
	FromChainID      int64                  `json:"fromChainId"`
	ToChainID        *int64                 `json:"toChainId"`
	Amount           string                 `json:"amount"`
	RecipientAddress string                 `json:"recipientAddress"`
	TokenIn          string                 `json:"tokenIn"`
	TokenOut         string                 `json:"tokenOut"`
	Success          bool                   `json:"success"`
	ErrorMessage     string                 `json:"errorMessage"`
	TransactionHash  string                 `json:"transactionHash"`
	Timestamp        time.Time              `json:"timestamp"`
	Metadata         map[string]interface{} `json:"metadata"`
}
