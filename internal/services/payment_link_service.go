// Package services contains the business logic for payment links and the
// transaction ledger.
package services

import (
	"context"
	"errors"
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
	"gorm.io/gorm"
)

// Payment link errors
var (
	ErrPaymentLinkNotFound  = errors.New("payment link not found")
	ErrPaymentLinkNotActive = errors.New("payment link is no longer active")
	ErrPaymentLinkExpired   = errors.New("payment link has expired")
)

// Expiry bounds in hours
const (
	DefaultExpiresInHours = 24
	MinExpiresInHours     = 1
	MaxExpiresInHours     = 168 // one week
)

// ValidationError marks a request rejected before touching storage
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// RecipientMismatchError is returned when someone other than the designated
// recipient tries to validate a payment link
type RecipientMismatchError struct {
	Expected string
	Got      string
}

func (e *RecipientMismatchError) Error() string {
	return fmt.Sprintf("this payment link is for a different recipient: expected %s, got %s", e.Expected, e.Got)
}

// PaymentLinkService handles payment link lifecycle operations
type PaymentLinkService struct {
	repo            repository.PaymentLinkRepository
	frontendBaseURL string
	pushService     *WebSocketPushService
	eventPublisher  *events.Publisher
}

// NewPaymentLinkService creates a new payment link service
func NewPaymentLinkService(repo repository.PaymentLinkRepository, frontendBaseURL string) *PaymentLinkService {
	return &PaymentLinkService{
		repo:            repo,
		frontendBaseURL: frontendBaseURL,
	}
}

// SetPushService wires the WebSocket push service (optional)
func (s *PaymentLinkService) SetPushService(push *WebSocketPushService) {
	s.pushService = push
}

// SetEventPublisher wires the NATS event publisher (optional)
func (s *PaymentLinkService) SetEventPublisher(publisher *events.Publisher) {
	s.eventPublisher = publisher
}

// Create validates and persists a new payment link
func (s *PaymentLinkService) Create(ctx context.Context, req *types.CreatePaymentRequest) (*types.CreatePaymentResponse, error) {
	if !utils.IsValidAddress(req.CreatorAddress) {
		return nil, &ValidationError{Message: "Invalid creator address format"}
	}
	if !utils.IsValidAddress(req.RecipientAddress) {
		return nil, &ValidationError{Message: "Invalid recipient address format"}
	}
	if !utils.IsValidBaseUnitAmount(req.Amount) {
		return nil, &ValidationError{Message: "Amount must be a positive integer string in base units"}
	}
	if !utils.IsValidBaseUnitAmount(req.SolverFee) {
		return nil, &ValidationError{Message: "Solver fee must be a positive integer string in base units"}
	}
	if !utils.IsSupportedChain(req.SourceChainID) {
		return nil, &ValidationError{Message: fmt.Sprintf("Unsupported source chain: %d", req.SourceChainID)}
	}
	if !utils.IsSupportedChain(req.DestinationChainID) {
		return nil, &ValidationError{Message: fmt.Sprintf("Unsupported destination chain: %d", req.DestinationChainID)}
	}

	expiresInHours := DefaultExpiresInHours
	if req.ExpiresInHours != nil {
		expiresInHours = *req.ExpiresInHours
		if expiresInHours < MinExpiresInHours || expiresInHours > MaxExpiresInHours {
			return nil, &ValidationError{
				Message: fmt.Sprintf("expiresInHours must be between %d and %d", MinExpiresInHours, MaxExpiresInHours),
			}
		}
	}

	now := time.Now().UTC()
	link := &models.PaymentLink{
		ID:                 uuid.New().String(),
		PaymentID:          uuid.New().String(),
		CreatorAddress:     req.CreatorAddress,
		RecipientAddress:   req.RecipientAddress,
		Amount:             req.Amount,
		SolverFee:          req.SolverFee,
		SourceChainID:      req.SourceChainID,
		DestinationChainID: req.DestinationChainID,
		Status:             models.PaymentLinkStatusPending,
		CreatedAt:          now,
		ExpiresAt:          now.Add(time.Duration(expiresInHours) * time.Hour),
	}

	if err := s.repo.Create(ctx, link); err != nil {
		return nil, fmt.Errorf("failed to create payment link: %w", err)
	}

	metrics.PaymentLinksCreated.Inc()
	logrus.WithFields(logrus.Fields{
		"payment_id": link.PaymentID,
		"creator":    link.CreatorAddress,
		"amount":     link.Amount,
		"expires_at": link.ExpiresAt,
	}).Info("💳 Payment link created")

	s.eventPublisher.PublishPaymentCreated(link)

	return &types.CreatePaymentResponse{
		PaymentID:   link.PaymentID,
		PaymentLink: fmt.Sprintf("%s/payment/%s", s.frontendBaseURL, link.PaymentID),
		ExpiresAt:   link.ExpiresAt,
		Status:      link.Status,
	}, nil
}

// Validate checks that a payment link is payable by the given recipient and
// returns the payment details needed to execute it
func (s *PaymentLinkService) Validate(ctx context.Context, req *types.ValidatePaymentRequest) (*types.PaymentDetail, error) {
	if !utils.IsValidAddress(req.RecipientAddress) {
		metrics.PaymentValidations.WithLabelValues("invalid_request").Inc()
		return nil, &ValidationError{Message: "Invalid recipient address format"}
	}

	link, err := s.repo.GetByPaymentID(ctx, req.PaymentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			metrics.PaymentValidations.WithLabelValues("not_found").Inc()
			return nil, ErrPaymentLinkNotFound
		}
		return nil, fmt.Errorf("failed to load payment link: %w", err)
	}

	if link.Status != models.PaymentLinkStatusPending {
		metrics.PaymentValidations.WithLabelValues("not_active").Inc()
		return nil, ErrPaymentLinkNotActive
	}
	if link.IsExpired(time.Now().UTC()) {
		metrics.PaymentValidations.WithLabelValues("expired").Inc()
		return nil, ErrPaymentLinkExpired
	}
	if !utils.SameAddress(link.RecipientAddress, req.RecipientAddress) {
		metrics.PaymentValidations.WithLabelValues("wrong_recipient").Inc()
		return nil, &RecipientMismatchError{
			Expected: link.RecipientAddress,
			Got:      req.RecipientAddress,
		}
	}

	metrics.PaymentValidations.WithLabelValues("valid").Inc()
	logrus.WithFields(logrus.Fields{
		"payment_id": link.PaymentID,
		"recipient":  req.RecipientAddress,
	}).Info("✅ Payment link validated")

	return &types.PaymentDetail{
		PaymentID:          link.PaymentID,
		Amount:             link.Amount,
		SolverFee:          link.SolverFee,
		SourceChainID:      link.SourceChainID,
		DestinationChainID: link.DestinationChainID,
		CreatorAddress:     link.CreatorAddress,
		ExpiresAt:          link.ExpiresAt,
		Metadata:           link.Metadata,
	}, nil
}

// RecordAttempt appends a payment attempt. A successful attempt carrying a
// transaction hash marks the link paid (last write wins, including on an
// already-paid link) and notifies the creator.
func (s *PaymentLinkService) RecordAttempt(ctx context.Context, req *types.RecordAttemptRequest) (*models.PaymentAttempt, error) {
	if !utils.IsValidAddress(req.AttemptAddress) {
		return nil, &ValidationError{Message: "Invalid attempt address format"}
	}
	if !utils.IsSupportedChain(req.AttemptChainID) {
		return nil, &ValidationError{Message: fmt.Sprintf("Unsupported chain: %d", req.AttemptChainID)}
	}

	link, err := s.repo.GetByPaymentID(ctx, req.PaymentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentLinkNotFound
		}
		return nil, fmt.Errorf("failed to load payment link: %w", err)
	}

	attempt := &models.PaymentAttempt{
		ID:               uuid.New().String(),
		PaymentID:        link.PaymentID,
		AttemptAddress:   req.AttemptAddress,
		AttemptChainID:   req.AttemptChainID,
		AttemptTimestamp: time.Now().UTC(),
		Success:          req.Success,
		ErrorMessage:     req.ErrorMessage,
		TransactionHash:  req.TransactionHash,
	}
	if err := s.repo.CreateAttempt(ctx, attempt); err != nil {
		return nil, fmt.Errorf("failed to record payment attempt: %w", err)
	}

	result := "failed"
	if req.Success {
		result = "success"
	}
	metrics.PaymentAttemptsRecorded.WithLabelValues(result).Inc()

	logrus.WithFields(logrus.Fields{
		"payment_id": link.PaymentID,
		"address":    attempt.AttemptAddress,
		"chain_id":   attempt.AttemptChainID,
		"success":    attempt.Success,
	}).Info("📝 Payment attempt recorded")

	if req.Success && req.TransactionHash != "" {
		paidAt := attempt.AttemptTimestamp
		if err := s.repo.MarkPaid(ctx, link.PaymentID, req.TransactionHash, paidAt); err != nil {
			return nil, fmt.Errorf("failed to mark payment link paid: %w", err)
		}

		metrics.PaymentLinksPaid.Inc()
		logrus.WithFields(logrus.Fields{
			"payment_id": link.PaymentID,
			"tx_hash":    req.TransactionHash,
		}).Info("🎉 Payment link paid")

		s.eventPublisher.PublishPaymentPaid(link, attempt)

		if s.pushService != nil {
			s.pushService.PushPaymentLinkUpdate(link.CreatorAddress, PaymentLinkUpdateData{
				PaymentID:       link.PaymentID,
				Status:          models.DerivedStatusCompleted,
				StoredStatus:    string(models.PaymentLinkStatusPaid),
				TransactionHash: req.TransactionHash,
				PaidAt:          &paidAt,
				AttemptAddress:  attempt.AttemptAddress,
				AttemptChainID:  attempt.AttemptChainID,
				UserMessage:     "Your payment link has been paid",
			})
		}
	}

	return attempt, nil
}

// ListByCreator returns a creator's payment links with derived statuses and
// attempt summaries
func (s *PaymentLinkService) ListByCreator(ctx context.Context, creatorAddress string, statusFilter string, limit, offset int) ([]types.PaymentLinkView, *types.Pagination, error) {
	if !utils.IsValidAddress(creatorAddress) {
		return nil, nil, &ValidationError{Message: "Invalid creator address format"}
	}
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	// only stored statuses filter; anything else (including derived values
	// like "completed") is ignored rather than matching nothing
	storedStatus := models.PaymentLinkStatus(statusFilter)
	if storedStatus != models.PaymentLinkStatusPending && storedStatus != models.PaymentLinkStatusPaid {
		storedStatus = ""
	}

	links, total, err := s.repo.FindByCreator(ctx, creatorAddress, storedStatus, limit, offset)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list payment links: %w", err)
	}

	now := time.Now().UTC()
	views := make([]types.PaymentLinkView, 0, len(links))
	for _, link := range links {
		views = append(views, s.buildPaymentLinkView(link, now))
	}

	pagination := &types.Pagination{
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		HasMore: int64(offset+limit) < total,
	}
	return views, pagination, nil
}

// GetPublic returns the address-free details shown before validation
func (s *PaymentLinkService) GetPublic(ctx context.Context, paymentID string) (*types.PublicPaymentDetail, error) {
	link, err := s.repo.GetByPaymentID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentLinkNotFound
		}
		return nil, fmt.Errorf("failed to load payment link: %w", err)
	}

	return &types.PublicPaymentDetail{
		PaymentID:          link.PaymentID,
		Amount:             link.Amount,
		SolverFee:          link.SolverFee,
		SourceChainID:      link.SourceChainID,
		DestinationChainID: link.DestinationChainID,
		Status:             link.Status,
		ExpiresAt:          link.ExpiresAt,
		CreatedAt:          link.CreatedAt,
	}, nil
}

// DerivePaymentLinkStatus computes the user-facing status of a link from its
// stored row and attempts. Priority order:
//  1. any successful attempt wins: completed
//  2. stored paid with a transaction hash: completed
//  3. past expiry: expired
//  4. only failed attempts: failed
//  5. otherwise the stored status
func DerivePaymentLinkStatus(link *models.PaymentLink, now time.Time) string {
	for _, attempt := range link.Attempts {
		if attempt.Success {
			return models.DerivedStatusCompleted
		}
	}
	if link.Status == models.PaymentLinkStatusPaid && link.TransactionHash != "" {
		return models.DerivedStatusCompleted
	}
	if link.IsExpired(now) {
		return models.DerivedStatusExpired
	}
	if len(link.Attempts) > 0 {
		return models.DerivedStatusFailed
	}
	return string(link.Status)
}

// buildPaymentLinkView assembles the creator-listing view of one link.
// Attempts arrive newest-first from the repository.
func (s *PaymentLinkService) buildPaymentLinkView(link *models.PaymentLink, now time.Time) types.PaymentLinkView {
	var successful, failed int
	var lastSuccess *models.PaymentAttempt
	attempts := make([]types.AttemptView, 0, len(link.Attempts))
	for i := range link.Attempts {
		attempt := &link.Attempts[i]
		if attempt.Success {
			successful++
			if lastSuccess == nil {
				lastSuccess = attempt
			}
		} else {
			failed++
		}
		attempts = append(attempts, types.AttemptView{
			ID:              attempt.ID,
			Timestamp:       attempt.AttemptTimestamp,
			Address:         attempt.AttemptAddress,
			ChainID:         attempt.AttemptChainID,
			Success:         attempt.Success,
			ErrorMessage:    attempt.ErrorMessage,
			TransactionHash: attempt.TransactionHash,
		})
	}

	var lastAttempt *types.AttemptView
	if len(attempts) > 0 {
		lastAttempt = &attempts[0]
	}

	derived := DerivePaymentLinkStatus(link, now)

	var completion *types.CompletionDetails
	if derived == models.DerivedStatusCompleted {
		completion = &types.CompletionDetails{
			CompletedAt:     link.PaidAt,
			TransactionHash: link.TransactionHash,
			AttemptAddress:  "unknown",
			AttemptChainID:  "unknown",
		}
		if lastSuccess != nil {
			completedAt := lastSuccess.AttemptTimestamp
			completion.CompletedAt = &completedAt
			completion.AttemptAddress = lastSuccess.AttemptAddress
			completion.AttemptChainID = lastSuccess.AttemptChainID
			if lastSuccess.TransactionHash != "" {
				completion.TransactionHash = lastSuccess.TransactionHash
			}
		} else if len(link.Attempts) > 0 {
			// paid externally: attribute to the most recent attempt
			completion.AttemptAddress = link.Attempts[0].AttemptAddress
			completion.AttemptChainID = link.Attempts[0].AttemptChainID
		}
	}

	return types.PaymentLinkView{
		PaymentID:          link.PaymentID,
		CreatorAddress:     link.CreatorAddress,
		RecipientAddress:   link.RecipientAddress,
		Amount:             link.Amount,
		SolverFee:          link.SolverFee,
		SourceChainID:      link.SourceChainID,
		DestinationChainID: link.DestinationChainID,
		Status:             derived,
		OriginalStatus:     link.Status,
		CreatedAt:          link.CreatedAt,
		ExpiresAt:          link.ExpiresAt,
		PaidAt:             link.PaidAt,
		TransactionHash:    link.TransactionHash,
		Metadata:           link.Metadata,
		PaymentURL:         fmt.Sprintf("%s/payment/%s", s.frontendBaseURL, link.PaymentID),
		AttemptCount:       len(attempts),
		SuccessfulAttempts: successful,
		FailedAttempts:     failed,
		LastAttempt:        lastAttempt,
		CompletionDetails:  completion,
		AllAttempts:        attempts,
	}
}
