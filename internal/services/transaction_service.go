package services

import (
	"context"
	"fmt"
	"time"

	"crosspay-backend/internal/events"
	"crosspay-backend/internal/metrics"
	"crosspay-backend/internal/models"
	"crosspay-backend/internal/repository"
	"crosspay-backend/internal/types"
	"crosspay-backend/internal/utils"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// TransactionService records and lists ledger transactions
type TransactionService struct {
	repo           repository.TransactionRepository
	pushService    *WebSocketPushService
	eventPublisher *events.Publisher
}

// NewTransactionService creates a new transaction service
func NewTransactionService(repo repository.TransactionRepository) *TransactionService {
	return &TransactionService{repo: repo}
}

// SetPushService wires the WebSocket push service (optional)
func (s *TransactionService) SetPushService(push *WebSocketPushService) {
	s.pushService = push
}

// SetEventPublisher wires the NATS event publisher (optional)
func (s *TransactionService) SetEventPublisher(publisher *events.Publisher) {
	s.eventPublisher = publisher
}

// Record appends one immutable ledger row. Failed operations are recorded
// too; Success distinguishes them.
func (s *TransactionService) Record(ctx context.Context, req *types.RecordTransactionRequest) (*models.Transaction, error) {
	if req.Type == "" || req.WalletAddress == "" || req.FromChainID == 0 {
		return nil, &ValidationError{Message: "Missing required fields: type, walletAddress, fromChainId"}
	}
	txType := models.TransactionType(req.Type)
	if txType != models.TransactionTypeSend && txType != models.TransactionTypeSwap {
		return nil, &ValidationError{Message: fmt.Sprintf("Invalid transaction type: %s", req.Type)}
	}
	if !utils.IsValidAddress(req.WalletAddress) {
		return nil, &ValidationError{Message: "Invalid wallet address format"}
	}
	if txType == models.TransactionTypeSend {
		if req.RecipientAddress == "" {
			return nil, &ValidationError{Message: "recipientAddress is required for send transactions"}
		}
		if !utils.IsValidAddress(req.RecipientAddress) {
			return nil, &ValidationError{Message: "Invalid recipient address format"}
		}
	}
	if txType == models.TransactionTypeSwap && (req.TokenIn == "" || req.TokenOut == "") {
		return nil, &ValidationError{Message: "tokenIn and tokenOut are required for swap transactions"}
	}

	tx := &models.Transaction{
		ID:               uuid.New().String(),
		Type:             txType,
		WalletAddress:    req.WalletAddress,
		FromChainID:      req.FromChainID,
		ToChainID:        req.ToChainID,
		Amount:           req.Amount,
		RecipientAddress: req.RecipientAddress,
		TokenIn:          req.TokenIn,
		TokenOut:         req.TokenOut,
		Success:          req.Success,
		ErrorMessage:     req.ErrorMessage,
		TransactionHash:  req.TransactionHash,
		Timestamp:        time.Now().UTC(),
		Metadata:         req.Metadata,
	}

	// A swap never leaves the owner's wallet
	if tx.Type == models.TransactionTypeSwap {
		tx.RecipientAddress = tx.WalletAddress
	}

	if err := s.repo.Create(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to record transaction: %w", err)
	}

	result := "failed"
	if tx.Success {
		result = "success"
	}
	metrics.TransactionsRecorded.WithLabelValues(string(tx.Type), result).Inc()

	logrus.WithFields(logrus.Fields{
		"transaction_id": tx.ID,
		"type":           tx.Type,
		"wallet":         tx.WalletAddress,
		"success":        tx.Success,
	}).Info("🧾 Transaction recorded")

	s.eventPublisher.PublishTransactionRecorded(tx)
	if s.pushService != nil {
		s.pushService.PushTransactionUpdate(tx)
	}

	return tx, nil
}

// ListByWallet lists transactions involving an address, newest first.
// Rows where the address is the recipient of another wallet's send are
// relabeled "received" in the view; storage is untouched.
func (s *TransactionService) ListByWallet(ctx context.Context, address string, filter repository.TransactionFilter) ([]types.TransactionView, *types.Pagination, error) {
	if !utils.IsValidAddress(address) {
		return nil, nil, &ValidationError{Message: "Invalid wallet address format"}
	}
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	txs, total, err := s.repo.FindByWallet(ctx, address, filter)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	views := make([]types.TransactionView, 0, len(txs))
	for _, tx := range txs {
		viewType := string(tx.Type)
		if tx.Type == models.TransactionTypeSend && tx.RecipientAddress == address {
			viewType = "received"
		}
		views = append(views, types.TransactionView{
			ID:               tx.ID,
			Type:             viewType,
			WalletAddress:    tx.WalletAddress,
			FromChainID:      tx.FromChainID,
			ToChainID:        tx.ToChainID,
			Amount:           tx.Amount,
			RecipientAddress: tx.RecipientAddress,
			TokenIn:          tx.TokenIn,
			TokenOut:         tx.TokenOut,
			Success:          tx.Success,
			ErrorMessage:     tx.ErrorMessage,
			TransactionHash:  tx.TransactionHash,
			Timestamp:        tx.Timestamp,
			Metadata:         tx.Metadata,
		})
	}

	pagination := &types.Pagination{
		Total:   total,
		Limit:   filter.Limit,
		Offset:  filter.Offset,
		HasMore: int64(filter.Offset+filter.Limit) < total,
	}
	return views, pagination, nil
}
