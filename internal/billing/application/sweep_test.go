package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/quickcut/backend/internal/billing/domain"
	"github.com/quickcut/backend/internal/shared/infrastructure/outbox"
)

func lapsedTrial(now time.Time) *domain.Subscription {
	plan, _ := domain.PlanByID("starter")
	return domain.NewTrialSubscription(uuid.New(), plan, now.Add(-30*24*time.Hour))
}

func TestSubscriptionSweeperExpireLapsed(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()

	t.Run("flips lapsed subscriptions and records the expiry event", func(t *testing.T) {
		sub := lapsedTrial(now)
		subs := &mockSubscriptionRepository{}
		subs.On("ListLapsed", mock.Anything, now).Return([]*domain.Subscription{sub}, nil)
		subs.On("Upsert", mock.Anything, sub).Return(nil).Once()

		var saved *outbox.Message
		outboxRepo := &mockOutboxRepository{}
		outboxRepo.On("Save", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
			saved = args.Get(1).(*outbox.Message)
		}).Return(nil).Once()

		sweeper := NewSubscriptionSweeper(subs, outboxRepo, passthroughUnitOfWork(), nil)
		expired, err := sweeper.ExpireLapsed(ctx, now)
		require.NoError(t, err)
		assert.Equal(t, 1, expired)

		assert.Equal(t, domain.SubscriptionExpired, sub.Status)
		require.NotNil(t, saved)
		assert.Equal(t, domain.RoutingKeySubscriptionExpired, saved.RoutingKey)
		assert.Equal(t, sub.ID, saved.AggregateID)
		subs.AssertExpectations(t)
		outboxRepo.AssertExpectations(t)
	})

	t.Run("skips subscriptions that are no longer lapsed", func(t *testing.T) {
		plan, _ := domain.PlanByID("starter")
		fresh := domain.NewTrialSubscription(uuid.New(), plan, now)
		subs := &mockSubscriptionRepository{}
		subs.On("ListLapsed", mock.Anything, now).Return([]*domain.Subscription{fresh}, nil)

		sweeper := NewSubscriptionSweeper(subs, &mockOutboxRepository{}, passthroughUnitOfWork(), nil)
		expired, err := sweeper.ExpireLapsed(ctx, now)
		require.NoError(t, err)
		assert.Equal(t, 0, expired)

		assert.Equal(t, domain.SubscriptionTrial, fresh.Status)
		subs.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
	})

	t.Run("keeps sweeping past a failed expiry", func(t *testing.T) {
		first := lapsedTrial(now)
		second := lapsedTrial(now)
		subs := &mockSubscriptionRepository{}
		subs.On("ListLapsed", mock.Anything, now).Return([]*domain.Subscription{first, second}, nil)
		subs.On("Upsert", mock.Anything, first).Return(errors.New("write failed")).Once()
		subs.On("Upsert", mock.Anything, second).Return(nil).Once()

		outboxRepo := &mockOutboxRepository{}
		outboxRepo.On("Save", mock.Anything, mock.Anything).Return(nil).Once()

		sweeper := NewSubscriptionSweeper(subs, outboxRepo, passthroughUnitOfWork(), nil)
		expired, err := sweeper.ExpireLapsed(ctx, now)
		require.NoError(t, err)
		assert.Equal(t, 1, expired)
		subs.AssertExpectations(t)
	})
}
