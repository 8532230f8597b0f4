package repository

import (
	"context"

	"crosspay-backend/internal/models"

	"gorm.io/gorm"
)

// TransactionFilter narrows wallet transaction listings
type TransactionFilter struct {
	// Type is "send", "swap" or the view-only pseudo-type "received";
	// empty means no type filter.
	Type string
	// Direction is "sent" or "received"; empty means both. Ignored when
	// Type is set, matching the precedence of the query parameters.
	Direction string
	Success   *bool
	Limit     int
	Offset    int
}

// TransactionRepository defines the interface for ledger data access
type TransactionRepository interface {
	Create(ctx context.Context, tx *models.Transaction) error
	FindByWallet(ctx context.Context, address string, filter TransactionFilter) ([]*models.Transaction, int64, error)
}

// transactionRepository implements TransactionRepository
type transactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates a new TransactionRepository instance
func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

// Create persists one immutable ledger row
func (r *transactionRepository) Create(ctx context.Context, tx *models.Transaction) error {
	return r.db.WithContext(ctx).Create(tx).Error
}

// FindByWallet lists transactions sent or received by an address.
// A "received" row is one where the address is the recipient of a send;
// swaps cannot be received since their recipient always equals the sender.
func (r *transactionRepository) FindByWallet(ctx context.Context, address string, filter TransactionFilter) ([]*models.Transaction, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Transaction{})

	switch {
	case filter.Type == "received":
		query = query.Where("recipient_address = ? AND type = ?", address, models.TransactionTypeSend)
	case filter.Type == string(models.TransactionTypeSend) || filter.Type == string(models.TransactionTypeSwap):
		query = query.Where("wallet_address = ? AND type = ?", address, filter.Type)
	case filter.Direction == "sent":
		query = query.Where("wallet_address = ?", address)
	case filter.Direction == "received":
		query = query.Where("recipient_address = ? AND type = ?", address, models.TransactionTypeSend)
	default:
		query = query.Where(
			"wallet_address = ? OR (recipient_address = ? AND type = ?)",
			address, address, models.TransactionTypeSend,
		)
	}

	if filter.Success != nil {
		query = query.Where("success = ?", *filter.Success)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var txs []*models.Transaction
	err := query.
		Order("timestamp DESC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&txs).Error
	if err != nil {
		return nil, 0, err
	}

	return txs, total, nil
}
