package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"crosspay-backend/internal/models"
	"crosspay-backend/internal/repository"
	"crosspay-backend/internal/types"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	creatorAddr   = "0x1111111111111111111111111111111111111111"
	recipientAddr = "0x2222222222222222222222222222222222222222"
	otherAddr     = "0x3333333333333333333333333333333333333333"
)

func setupPaymentServiceTest(t *testing.T) (*PaymentLinkService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:payment_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.PaymentLink{},
		&models.PaymentAttempt{},
		&models.Transaction{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	repo := repository.NewPaymentLinkRepository(db)
	return NewPaymentLinkService(repo, "http://localhost:5173"), db
}

func createTestLink(t *testing.T, service *PaymentLinkService, hours int) *types.CreatePaymentResponse {
	t.Helper()
	resp, err := service.Create(context.Background(), &types.CreatePaymentRequest{
		CreatorAddress:     creatorAddr,
		RecipientAddress:   recipientAddr,
		Amount:             "1000000",
		SolverFee:          "5000",
		SourceChainID:      84532,
		DestinationChainID: 43113,
		ExpiresInHours:     &hours,
	})
	require.NoError(t, err)
	return resp
}

func TestCreatePaymentLink(t *testing.T) {
	service, _ := setupPaymentServiceTest(t)

	resp, err := service.Create(context.Background(), &types.CreatePaymentRequest{
		CreatorAddress:     creatorAddr,
		RecipientAddress:   recipientAddr,
		Amount:             "1000000",
		SolverFee:          "5000",
		SourceChainID:      84532,
		DestinationChainID: 43113,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.PaymentID)
	assert.Equal(t, "http://localhost:5173/payment/"+resp.PaymentID, resp.PaymentLink)
	assert.Equal(t, models.PaymentLinkStatusPending, resp.Status)
	// default expiry is 24 hours
	assert.WithinDuration(t, time.Now().UTC().Add(24*time.Hour), resp.ExpiresAt, time.Minute)
}

func TestCreatePaymentLinkValidation(t *testing.T) {
	service, _ := setupPaymentServiceTest(t)
	hours := 24

	base := func() *types.CreatePaymentRequest {
		return &types.CreatePaymentRequest{
			CreatorAddress:     creatorAddr,
			RecipientAddress:   recipientAddr,
			Amount:             "1000000",
			SolverFee:          "5000",
			SourceChainID:      84532,
			DestinationChainID: 43113,
			ExpiresInHours:     &hours,
		}
	}

	cases := []struct {
		name   string
		mutate func(*types.CreatePaymentRequest)
	}{
		{"bad creator address", func(r *types.CreatePaymentRequest) { r.CreatorAddress = "0x123" }},
		{"missing 0x prefix", func(r *types.CreatePaymentRequest) { r.CreatorAddress = "1111111111111111111111111111111111111111" }},
		{"bad recipient address", func(r *types.CreatePaymentRequest) { r.RecipientAddress = "not-an-address" }},
		{"decimal amount", func(r *types.CreatePaymentRequest) { r.Amount = "10.5" }},
		{"negative amount", func(r *types.CreatePaymentRequest) { r.Amount = "-5" }},
		{"scientific notation amount", func(r *types.CreatePaymentRequest) { r.Amount = "1e18" }},
		{"bad solver fee", func(r *types.CreatePaymentRequest) { r.SolverFee = "fee" }},
		{"unsupported source chain", func(r *types.CreatePaymentRequest) { r.SourceChainID = 1 }},
		{"unsupported destination chain", func(r *types.CreatePaymentRequest) { r.DestinationChainID = 999 }},
		{"expiry too short", func(r *types.CreatePaymentRequest) { h := 0; r.ExpiresInHours = &h }},
		{"expiry too long", func(r *types.CreatePaymentRequest) { h := 169; r.ExpiresInHours = &h }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := base()
			tc.mutate(req)
			_, err := service.Create(context.Background(), req)
			var validationErr *ValidationError
			assert.True(t, errors.As(err, &validationErr), "expected ValidationError, got %v", err)
		})
	}
}

func TestValidatePaymentLink(t *testing.T) {
	service, _ := setupPaymentServiceTest(t)
	created := createTestLink(t, service, 24)

	detail, err := service.Validate(context.Background(), &types.ValidatePaymentRequest{
		PaymentID:        created.PaymentID,
		RecipientAddress: recipientAddr,
	})
	require.NoError(t, err)
	assert.Equal(t, "1000000", detail.Amount)
	assert.Equal(t, "5000", detail.SolverFee)
	assert.Equal(t, creatorAddr, detail.CreatorAddress)
	assert.Equal(t, int64(84532), detail.SourceChainID)
	assert.Equal(t, int64(43113), detail.DestinationChainID)
}

func TestValidatePaymentLinkRecipientCaseInsensitive(t *testing.T) {
	service, _ := setupPaymentServiceTest(t)
	hours := 24
	created, err := service.Create(context.Background(), &types.CreatePaymentRequest{
		CreatorAddress:     creatorAddr,
		RecipientAddress:   "0xAbCdAbCdAbCdAbCdAbCdAbCdAbCdAbCdAbCdAbCd",
		Amount:             "1000000",
		SolverFee:          "5000",
		SourceChainID:      84532,
		DestinationChainID: 43113,
		ExpiresInHours:     &hours,
	})
	require.NoError(t, err)

	// hex-digit casing does not matter
	_, err = service.Validate(context.Background(), &types.ValidatePaymentRequest{
		PaymentID:        created.PaymentID,
		RecipientAddress: "0xabcdabcdabcdabcdabcdabcdabcdabcdabcdabcd",
	})
	require.NoError(t, err)

	_, err = service.Validate(context.Background(), &types.ValidatePaymentRequest{
		PaymentID:        created.PaymentID,
		RecipientAddress: "0xABCDABCDABCDABCDABCDABCDABCDABCDABCDABCD",
	})
	require.NoError(t, err)
}

func TestValidatePaymentLinkWrongRecipient(t *testing.T) {
	service, _ := setupPaymentServiceTest(t)
	created := createTestLink(t, service, 24)

	_, err := service.Validate(context.Background(), &types.ValidatePaymentRequest{
		PaymentID:        created.PaymentID,
		RecipientAddress: otherAddr,
	})
	var mismatch *RecipientMismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, recipientAddr, mismatch.Expected)
	assert.Equal(t, otherAddr, mismatch.Got)
}

func TestValidatePaymentLinkNotFound(t *testing.T) {
	service, _ := setupPaymentServiceTest(t)

	_, err := service.Validate(context.Background(), &types.ValidatePaymentRequest{
		PaymentID:        "2db7a9c1-9563-4d2e-bc64-65d37c2e0001",
		RecipientAddress: recipientAddr,
	})
	assert.ErrorIs(t, err, ErrPaymentLinkNotFound)
}

func TestValidatePaymentLinkExpired(t *testing.T) {
	service, db := setupPaymentServiceTest(t)
	created := createTestLink(t, service, 1)

	// age the link past its TTL
	err := db.Model(&models.PaymentLink{}).
		Where("payment_id = ?", created.PaymentID).
		Update("expires_at", time.Now().UTC().Add(-time.Hour)).Error
	require.NoError(t, err)

	_, err = service.Validate(context.Background(), &types.ValidatePaymentRequest{
		PaymentID:        created.PaymentID,
		RecipientAddress: recipientAddr,
	})
	assert.ErrorIs(t, err, ErrPaymentLinkExpired)
}

func TestValidatePaymentLinkNotActive(t *testing.T) {
	service, _ := setupPaymentServiceTest(t)
	created := createTestLink(t, service, 24)

	// successful attempt flips the stored status to paid
	_, err := service.RecordAttempt(context.Background(), &types.RecordAttemptRequest{
		PaymentID:       created.PaymentID,
		AttemptAddress:  recipientAddr,
		AttemptChainID:  84532,
		Success:         true,
		TransactionHash: "0xabc",
	})
	require.NoError(t, err)

	_, err = service.Validate(context.Background(), &types.ValidatePaymentRequest{
		PaymentID:        created.PaymentID,
		RecipientAddress: recipientAddr,
	})
	assert.ErrorIs(t, err, ErrPaymentLinkNotActive)
}

func TestRecordAttemptSuccessMarksPaid(t *testing.T) {
	service, db := setupPaymentServiceTest(t)
	created := createTestLink(t, service, 24)

	attempt, err := service.RecordAttempt(context.Background(), &types.RecordAttemptRequest{
		PaymentID:       created.PaymentID,
		AttemptAddress:  recipientAddr,
		AttemptChainID:  84532,
		Success:         true,
		TransactionHash: "0xdeadbeef",
	})
	require.NoError(t, err)
	assert.True(t, attempt.Success)

	var link models.PaymentLink
	require.NoError(t, db.Where("payment_id = ?", created.PaymentID).First(&link).Error)
	assert.Equal(t, models.PaymentLinkStatusPaid, link.Status)
	assert.Equal(t, "0xdeadbeef", link.TransactionHash)
	require.NotNil(t, link.PaidAt)
}

func TestRecordAttemptSecondSuccessOverwritesHash(t *testing.T) {
	service, db := setupPaymentServiceTest(t)
	created := createTestLink(t, service, 24)
	ctx := context.Background()

	_, err := service.RecordAttempt(ctx, &types.RecordAttemptRequest{
		PaymentID:       created.PaymentID,
		AttemptAddress:  recipientAddr,
		AttemptChainID:  84532,
		Success:         true,
		TransactionHash: "0xfirst",
	})
	require.NoError(t, err)

	// last write wins: the paid update is unconditional
	_, err = service.RecordAttempt(ctx, &types.RecordAttemptRequest{
		PaymentID:       created.PaymentID,
		AttemptAddress:  otherAddr,
		AttemptChainID:  43113,
		Success:         true,
		TransactionHash: "0xsecond",
	})
	require.NoError(t, err)

	var link models.PaymentLink
	require.NoError(t, db.Where("payment_id = ?", created.PaymentID).First(&link).Error)
	assert.Equal(t, models.PaymentLinkStatusPaid, link.Status)
	assert.Equal(t, "0xsecond", link.TransactionHash)
}

func TestRecordAttemptSuccessWithoutHashKeepsPending(t *testing.T) {
	service, db := setupPaymentServiceTest(t)
	created := createTestLink(t, service, 24)

	attempt, err := service.RecordAttempt(context.Background(), &types.RecordAttemptRequest{
		PaymentID:      created.PaymentID,
		AttemptAddress: recipientAddr,
		AttemptChainID: 84532,
		Success:        true,
	})
	require.NoError(t, err)
	assert.True(t, attempt.Success)

	// without a transaction hash the link is not marked paid
	var link models.PaymentLink
	require.NoError(t, db.Where("payment_id = ?", created.PaymentID).First(&link).Error)
	assert.Equal(t, models.PaymentLinkStatusPending, link.Status)
	assert.Nil(t, link.PaidAt)
}

func TestRecordAttemptFailureKeepsPending(t *testing.T) {
	service, db := setupPaymentServiceTest(t)
	created := createTestLink(t, service, 24)

	_, err := service.RecordAttempt(context.Background(), &types.RecordAttemptRequest{
		PaymentID:      created.PaymentID,
		AttemptAddress: recipientAddr,
		AttemptChainID: 43113,
		Success:        false,
		ErrorMessage:   "insufficient balance",
	})
	require.NoError(t, err)

	var link models.PaymentLink
	require.NoError(t, db.Where("payment_id = ?", created.PaymentID).First(&link).Error)
	assert.Equal(t, models.PaymentLinkStatusPending, link.Status)
	assert.Nil(t, link.PaidAt)
}

func TestRecordAttemptUnknownLink(t *testing.T) {
	service, _ := setupPaymentServiceTest(t)

	_, err := service.RecordAttempt(context.Background(), &types.RecordAttemptRequest{
		PaymentID:      "2db7a9c1-9563-4d2e-bc64-65d37c2e0002",
		AttemptAddress: recipientAddr,
		AttemptChainID: 84532,
		Success:        false,
	})
	assert.ErrorIs(t, err, ErrPaymentLinkNotFound)
}

func TestDerivePaymentLinkStatus(t *testing.T) {
	now := time.Now().UTC()
	future := now.Add(time.Hour)
	past := now.Add(-time.Hour)

	t.Run("successful attempt wins even when expired", func(t *testing.T) {
		link := &models.PaymentLink{
			Status:    models.PaymentLinkStatusPending,
			ExpiresAt: past,
			Attempts: []models.PaymentAttempt{
				{Success: false},
				{Success: true},
			},
		}
		assert.Equal(t, models.DerivedStatusCompleted, DerivePaymentLinkStatus(link, now))
	})

	t.Run("stored paid with hash but no attempts", func(t *testing.T) {
		link := &models.PaymentLink{
			Status:          models.PaymentLinkStatusPaid,
			TransactionHash: "0xabc",
			ExpiresAt:       future,
		}
		assert.Equal(t, models.DerivedStatusCompleted, DerivePaymentLinkStatus(link, now))
	})

	t.Run("expired beats failed attempts", func(t *testing.T) {
		link := &models.PaymentLink{
			Status:    models.PaymentLinkStatusPending,
			ExpiresAt: past,
			Attempts:  []models.PaymentAttempt{{Success: false}},
		}
		assert.Equal(t, models.DerivedStatusExpired, DerivePaymentLinkStatus(link, now))
	})

	t.Run("failed attempts only", func(t *testing.T) {
		link := &models.PaymentLink{
			Status:    models.PaymentLinkStatusPending,
			ExpiresAt: future,
			Attempts:  []models.PaymentAttempt{{Success: false}, {Success: false}},
		}
		assert.Equal(t, models.DerivedStatusFailed, DerivePaymentLinkStatus(link, now))
	})

	t.Run("untouched pending link", func(t *testing.T) {
		link := &models.PaymentLink{
			Status:    models.PaymentLinkStatusPending,
			ExpiresAt: future,
		}
		assert.Equal(t, models.DerivedStatusPending, DerivePaymentLinkStatus(link, now))
	})
}

func TestListByCreator(t *testing.T) {
	service, _ := setupPaymentServiceTest(t)
	ctx := context.Background()

	paid := createTestLink(t, service, 24)
	pending := createTestLink(t, service, 24)

	_, err := service.RecordAttempt(ctx, &types.RecordAttemptRequest{
		PaymentID:       paid.PaymentID,
		AttemptAddress:  recipientAddr,
		AttemptChainID:  84532,
		Success:         true,
		TransactionHash: "0xfeed",
	})
	require.NoError(t, err)

	views, pagination, err := service.ListByCreator(ctx, creatorAddr, "", 50, 0)
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, int64(2), pagination.Total)
	assert.False(t, pagination.HasMore)

	byID := map[string]types.PaymentLinkView{}
	for _, v := range views {
		byID[v.PaymentID] = v
	}

	paidView := byID[paid.PaymentID]
	assert.Equal(t, models.DerivedStatusCompleted, paidView.Status)
	assert.Equal(t, models.PaymentLinkStatusPaid, paidView.OriginalStatus)
	assert.Equal(t, 1, paidView.AttemptCount)
	assert.Equal(t, 1, paidView.SuccessfulAttempts)
	require.NotNil(t, paidView.CompletionDetails)
	assert.Equal(t, recipientAddr, paidView.CompletionDetails.AttemptAddress)
	assert.Equal(t, int64(84532), paidView.CompletionDetails.AttemptChainID)
	assert.Equal(t, "0xfeed", paidView.CompletionDetails.TransactionHash)
	require.NotNil(t, paidView.LastAttempt)
	assert.True(t, paidView.LastAttempt.Success)
	assert.Equal(t, "http://localhost:5173/payment/"+paid.PaymentID, paidView.PaymentURL)

	pendingView := byID[pending.PaymentID]
	assert.Equal(t, models.DerivedStatusPending, pendingView.Status)
	assert.Nil(t, pendingView.CompletionDetails)
	assert.Nil(t, pendingView.LastAttempt)
}

func TestListByCreatorStatusFilterUsesStoredStatus(t *testing.T) {
	service, _ := setupPaymentServiceTest(t)
	ctx := context.Background()

	paid := createTestLink(t, service, 24)
	createTestLink(t, service, 24)

	_, err := service.RecordAttempt(ctx, &types.RecordAttemptRequest{
		PaymentID:       paid.PaymentID,
		AttemptAddress:  recipientAddr,
		AttemptChainID:  84532,
		Success:         true,
		TransactionHash: "0xfeed",
	})
	require.NoError(t, err)

	views, _, err := service.ListByCreator(ctx, creatorAddr, "pending", 50, 0)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, models.PaymentLinkStatusPending, views[0].OriginalStatus)

	views, _, err = service.ListByCreator(ctx, creatorAddr, "paid", 50, 0)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, paid.PaymentID, views[0].PaymentID)

	// values outside the stored-status set are ignored, not matched
	views, _, err = service.ListByCreator(ctx, creatorAddr, "completed", 50, 0)
	require.NoError(t, err)
	assert.Len(t, views, 2)
}

func TestListByCreatorCompletionFallbackUnknown(t *testing.T) {
	service, db := setupPaymentServiceTest(t)
	ctx := context.Background()
	created := createTestLink(t, service, 24)

	// mark paid directly, without any recorded attempt
	now := time.Now().UTC()
	err := db.Model(&models.PaymentLink{}).
		Where("payment_id = ?", created.PaymentID).
		Updates(map[string]interface{}{
			"status":           models.PaymentLinkStatusPaid,
			"paid_at":          now,
			"transaction_hash": "0xexternal",
		}).Error
	require.NoError(t, err)

	views, _, err := service.ListByCreator(ctx, creatorAddr, "", 50, 0)
	require.NoError(t, err)
	require.Len(t, views, 1)

	view := views[0]
	assert.Equal(t, models.DerivedStatusCompleted, view.Status)
	require.NotNil(t, view.CompletionDetails)
	assert.Equal(t, "unknown", view.CompletionDetails.AttemptAddress)
	assert.Equal(t, "unknown", view.CompletionDetails.AttemptChainID)
	assert.Equal(t, "0xexternal", view.CompletionDetails.TransactionHash)
}

func TestListByCreatorCompletionFallsBackToLastAttempt(t *testing.T) {
	service, db := setupPaymentServiceTest(t)
	ctx := context.Background()
	created := createTestLink(t, service, 24)

	// a failed attempt, then the link gets marked paid out of band
	_, err := service.RecordAttempt(ctx, &types.RecordAttemptRequest{
		PaymentID:      created.PaymentID,
		AttemptAddress: otherAddr,
		AttemptChainID: 43113,
		Success:        false,
		ErrorMessage:   "reverted",
	})
	require.NoError(t, err)

	now := time.Now().UTC()
	err = db.Model(&models.PaymentLink{}).
		Where("payment_id = ?", created.PaymentID).
		Updates(map[string]interface{}{
			"status":           models.PaymentLinkStatusPaid,
			"paid_at":          now,
			"transaction_hash": "0xexternal",
		}).Error
	require.NoError(t, err)

	views, _, err := service.ListByCreator(ctx, creatorAddr, "", 50, 0)
	require.NoError(t, err)
	require.Len(t, views, 1)

	// completion attributes to the most recent attempt, not "unknown"
	completion := views[0].CompletionDetails
	require.NotNil(t, completion)
	assert.Equal(t, otherAddr, completion.AttemptAddress)
	assert.Equal(t, int64(43113), completion.AttemptChainID)
	assert.Equal(t, "0xexternal", completion.TransactionHash)
}

func TestListByCreatorPagination(t *testing.T) {
	service, _ := setupPaymentServiceTest(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		createTestLink(t, service, 24)
	}

	views, pagination, err := service.ListByCreator(ctx, creatorAddr, "", 2, 0)
	require.NoError(t, err)
	assert.Len(t, views, 2)
	assert.Equal(t, int64(5), pagination.Total)
	assert.True(t, pagination.HasMore)

	views, pagination, err = service.ListByCreator(ctx, creatorAddr, "", 2, 4)
	require.NoError(t, err)
	assert.Len(t, views, 1)
	assert.False(t, pagination.HasMore)
}

func TestGetPublicOmitsAddresses(t *testing.T) {
	service, _ := setupPaymentServiceTest(t)
	created := createTestLink(t, service, 24)

	detail, err := service.GetPublic(context.Background(), created.PaymentID)
	require.NoError(t, err)
	assert.Equal(t, created.PaymentID, detail.PaymentID)
	assert.Equal(t, "1000000", detail.Amount)
	assert.Equal(t, models.PaymentLinkStatusPending, detail.Status)

	_, err = service.GetPublic(context.Background(), "2db7a9c1-9563-4d2e-bc64-65d37c2e0003")
	assert.ErrorIs(t, err, ErrPaymentLinkNotFound)
}
