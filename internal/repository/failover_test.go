package repository

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"cabinbook/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) GetIdentity(ctx context.Context, deviceID string) (*models.GuestRecord, error) {
	args := m.Called(ctx, deviceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GuestRecord), args.Error(1)
}

func (m *mockRepo) SetIdentity(ctx context.Context, deviceID string, record *models.GuestRecord) error {
	args := m.Called(ctx, deviceID, record)
	return args.Error(0)
}

func (m *mockRepo) ClearIdentity(ctx context.Context, deviceID string) error {
	args := m.Called(ctx, deviceID)
	return args.Error(0)
}

func (m *mockRepo) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	args := m.Called(ctx, key, limit, window)
	return args.Bool(0), args.Error(1)
}

func TestFailoverIdentityRepository(t *testing.T) {
	primary := new(mockRepo)
	fallback := new(mockRepo)
	logger := zerolog.New(io.Discard)
	repo := NewFailoverIdentityRepository(primary, fallback, &logger)
	ctx := context.Background()

	t.Run("PrimarySuccess", func(t *testing.T) {
		record := &models.GuestRecord{Name: "Dana", Phone: "0501234567"}
		primary.On("GetIdentity", ctx, "d1").Return(record, nil).Once()

		got, err := repo.GetIdentity(ctx, "d1")
		assert.NoError(t, err)
		assert.Equal(t, record, got)
		primary.AssertExpectations(t)
	})

	t.Run("PrimaryFailFallbackSuccess", func(t *testing.T) {
		record := &models.GuestRecord{Name: "Yossi", Phone: "0529998877"}
		primary.On("GetIdentity", ctx, "d2").Return(nil, errors.New("fail")).Once()
		fallback.On("GetIdentity", ctx, "d2").Return(record, nil).Once()

		got, err := repo.GetIdentity(ctx, "d2")
		assert.NoError(t, err)
		assert.Equal(t, record, got)
		assert.True(t, repo.isDown.Load())
		primary.AssertExpectations(t)
		fallback.AssertExpectations(t)
	})

	t.Run("RecoveryAttempt", func(t *testing.T) {
		repo.isDown.Store(true)
		repo.lastCheck = time.Now().Add(-2 * time.Minute)

		record := &models.GuestRecord{Name: "Noa", Phone: "0541112233"}
		primary.On("GetIdentity", ctx, "d3").Return(record, nil).Once()

		got, err := repo.GetIdentity(ctx, "d3")
		assert.NoError(t, err)
		assert.Equal(t, record, got)
		assert.False(t, repo.isDown.Load())
		primary.AssertExpectations(t)
	})

	t.Run("RecoveryAttemptFail", func(t *testing.T) {
		repo.isDown.Store(true)
		repo.lastCheck = time.Now().Add(-2 * time.Minute)

		primary.On("GetIdentity", ctx, "d33").Return(nil, errors.New("still fail")).Once()
		fallback.On("GetIdentity", ctx, "d33").Return(nil, nil).Once()

		_, err := repo.GetIdentity(ctx, "d33")
		assert.NoError(t, err)
		assert.True(t, repo.isDown.Load())
		primary.AssertExpectations(t)
		fallback.AssertExpectations(t)
	})

	t.Run("SetIdentitySuccess", func(t *testing.T) {
		repo.isDown.Store(false)
		record := &models.GuestRecord{Name: "Dana", Phone: "0501234567"}
		primary.On("SetIdentity", ctx, "d77", record).Return(nil).Once()

		err := repo.SetIdentity(ctx, "d77", record)
		assert.NoError(t, err)
		primary.AssertExpectations(t)
	})

	t.Run("ClearIdentitySuccess", func(t *testing.T) {
		repo.isDown.Store(false)
		primary.On("ClearIdentity", ctx, "d88").Return(nil).Once()

		err := repo.ClearIdentity(ctx, "d88")
		assert.NoError(t, err)
		primary.AssertExpectations(t)
	})

	t.Run("CheckRateLimitSuccess", func(t *testing.T) {
		repo.isDown.Store(false)
		primary.On("CheckRateLimit", ctx, "k99", 10, time.Minute).Return(true, nil).Once()

		allowed, err := repo.CheckRateLimit(ctx, "k99", 10, time.Minute)
		assert.NoError(t, err)
		assert.True(t, allowed)
		primary.AssertExpectations(t)
	})

	t.Run("SetIdentityFailover", func(t *testing.T) {
		repo.isDown.Store(false)
		record := &models.GuestRecord{Name: "Dana", Phone: "0501234567"}
		primary.On("SetIdentity", ctx, "d4", record).Return(errors.New("fail")).Once()
		fallback.On("SetIdentity", ctx, "d4", record).Return(nil).Once()

		err := repo.SetIdentity(ctx, "d4", record)
		assert.NoError(t, err)
		assert.True(t, repo.isDown.Load())
		primary.AssertExpectations(t)
		fallback.AssertExpectations(t)
	})

	t.Run("ClearIdentityFailover", func(t *testing.T) {
		repo.isDown.Store(false)
		primary.On("ClearIdentity", ctx, "d5").Return(errors.New("fail")).Once()
		fallback.On("ClearIdentity", ctx, "d5").Return(nil).Once()

		err := repo.ClearIdentity(ctx, "d5")
		assert.NoError(t, err)
		assert.True(t, repo.isDown.Load())
		primary.AssertExpectations(t)
		fallback.AssertExpectations(t)
	})

	t.Run("CheckRateLimitFailover", func(t *testing.T) {
		repo.isDown.Store(false)
		primary.On("CheckRateLimit", ctx, "k6", 10, time.Minute).Return(false, errors.New("fail")).Once()
		fallback.On("CheckRateLimit", ctx, "k6", 10, time.Minute).Return(true, nil).Once()

		allowed, err := repo.CheckRateLimit(ctx, "k6", 10, time.Minute)
		assert.NoError(t, err)
		assert.True(t, allowed)
		assert.True(t, repo.isDown.Load())
		primary.AssertExpectations(t)
		fallback.AssertExpectations(t)
	})

	t.Run("SetIdentityAlreadyDown", func(t *testing.T) {
		repo.isDown.Store(true)
		record := &models.GuestRecord{Name: "Dana", Phone: "0501234567"}
		fallback.On("SetIdentity", ctx, "d44", record).Return(nil).Once()

		err := repo.SetIdentity(ctx, "d44", record)
		assert.NoError(t, err)
		fallback.AssertExpectations(t)
	})

	t.Run("ClearIdentityAlreadyDown", func(t *testing.T) {
		repo.isDown.Store(true)
		fallback.On("ClearIdentity", ctx, "d55").Return(nil).Once()

		err := repo.ClearIdentity(ctx, "d55")
		assert.NoError(t, err)
		fallback.AssertExpectations(t)
	})

	t.Run("CheckRateLimitAlreadyDown", func(t *testing.T) {
		repo.isDown.Store(true)
		fallback.On("CheckRateLimit", ctx, "k66", 10, time.Minute).Return(true, nil).Once()

		allowed, err := repo.CheckRateLimit(ctx, "k66", 10, time.Minute)
		assert.NoError(t, err)
		assert.True(t, allowed)
		fallback.AssertExpectations(t)
	})
}
