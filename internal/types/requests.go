// Package types holds request and response shapes for the REST API.
package types

// CreatePaymentRequest body for POST /api/payment/create
type CreatePaymentRequest struct {
	CreatorAddress     string `json:"creatorAddress" binding:"required"`
	RecipientAddress   string `json:"recipientAddress" binding:"required"`
	Amount             string `json:"amount" binding:"required"`
	SolverFee          string `json:"solverFee" binding:"required"`
	SourceChainID      int64  `json:"sourceChainId" binding:"required"`
	DestinationChainID int64  `json:"destinationChainId" binding:"required"`
	// nil means "not supplied": the default of 24 hours applies
	ExpiresInHours *int `json:"expiresInHours"`
}

// ValidatePaymentRequest body for POST /api/payment/validate
type ValidatePaymentRequest struct {
	PaymentID        string `json:"paymentId" binding:"required,uuid"`
	RecipientAddress string `json:"recipientAddress" binding:"required"`
}

// RecordAttemptRequest body for POST /api/payment/attempt
type RecordAttemptRequest struct {
	PaymentID       string `json:"paymentId" binding:"required"`
	AttemptAddress  string `json:"attemptAddress" binding:"required"`
	AttemptChainID  int64  `json:"attemptChainId" binding:"required"`
	Success         bool   `json:"success"`
	ErrorMessage    string `json:"errorMessage"`
	TransactionHash string `json:"transactionHash"`
}

// RecordTransactionRequest body for POST /api/transaction
type RecordTransactionRequest struct {
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
	Metadata         map[string]interface{} `json:"metadata"`
}
