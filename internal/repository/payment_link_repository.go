// Package repository provides data access interfaces and implementations
package repository

import (
	"context"
	"time"

	"crosspay-backend/internal/models"

	"gorm.io/gorm"
)

// PaymentLinkRepository defines the interface for payment link data access
type PaymentLinkRepository interface {
	Create(ctx context.Context, link *models.PaymentLink) error
	GetByPaymentID(ctx context.Context, paymentID string) (*models.PaymentLink, error)

	// MarkPaid unconditionally sets status=paid, paid_at and transaction_hash.
	// Last write wins when concurrent successful attempts race; the derived
	// status keeps the user view consistent either way.
	MarkPaid(ctx context.Context, paymentID string, transactionHash string, paidAt time.Time) error

	// FindByCreator returns links with attempts eagerly loaded, newest link
	// first, attempts newest first. statusFilter filters on the STORED
	// status and is ignored when empty.
	FindByCreator(ctx context.Context, creatorAddress string, statusFilter models.PaymentLinkStatus, limit, offset int) ([]*models.PaymentLink, int64, error)

	CreateAttempt(ctx context.Context, attempt *models.PaymentAttempt) error
}

// paymentLinkRepository implements PaymentLinkRepository
type paymentLinkRepository struct {
	db *gorm.DB
}

// NewPaymentLinkRepository creates a new PaymentLinkRepository instance
func NewPaymentLinkRepository(db *gorm.DB) PaymentLinkRepository {
	return &paymentLinkRepository{db: db}
}

// Create creates a new payment link
func (r *paymentLinkRepository) Create(ctx context.Context, link *models.PaymentLink) error {
	return r.db.WithContext(ctx).Create(link).Error
}

// GetByPaymentID retrieves a payment link by its external payment id
func (r *paymentLinkRepository) GetByPaymentID(ctx context.Context, paymentID string) (*models.PaymentLink, error) {
	var link models.PaymentLink
	err := r.db.WithContext(ctx).Where("payment_id = ?", paymentID).First(&link).Error
	if err != nil {
		return nil, err
	}
	return &link, nil
}

// MarkPaid marks a payment link as paid
func (r *paymentLinkRepository) MarkPaid(ctx context.Context, paymentID string, transactionHash string, paidAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.PaymentLink{}).
		Where("payment_id = ?", paymentID).
		Updates(map[string]interface{}{
			"status":           models.PaymentLinkStatusPaid,
			"paid_at":          paidAt,
			"transaction_hash": transactionHash,
		}).Error
}

// FindByCreator finds payment links created by an address
func (r *paymentLinkRepository) FindByCreator(ctx context.Context, creatorAddress string, statusFilter models.PaymentLinkStatus, limit, offset int) ([]*models.PaymentLink, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.PaymentLink{}).
		Where("creator_address = ?", creatorAddress)
	if statusFilter != "" {
		query = query.Where("status = ?", statusFilter)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var links []*models.PaymentLink
	err := query.
		Preload("Attempts", func(db *gorm.DB) *gorm.DB {
			return db.Order("attempt_timestamp DESC")
		}).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&links).Error
	if err != nil {
		return nil, 0, err
	}

	return links, total, nil
}

// CreateAttempt appends a payment attempt row
func (r *paymentLinkRepository) CreateAttempt(ctx context.Context, attempt *models.PaymentAttempt) error {
	return r.db.WithContext(ctx).Create(attempt).Error
}
