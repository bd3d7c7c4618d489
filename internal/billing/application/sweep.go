package application

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/quickcut/backend/internal/billing/domain"
	sharedApplication "github.com/quickcut/backend/internal/shared/application"
	sharedDomain "github.com/quickcut/backend/internal/shared/domain"
	"github.com/quickcut/backend/internal/shared/infrastructure/outbox"
)

// SubscriptionSweeper flips lapsed subscriptions to expired. The gate
// already denies lapsed trials at read time; the sweep keeps the stored
// status honest and emits the expiry event.
type SubscriptionSweeper struct {
	subscriptions domain.SubscriptionRepository
	outboxRepo    outbox.Repository
	uow           sharedApplication.UnitOfWork
	logger        *slog.Logger
}

// NewSubscriptionSweeper creates a sweeper.
func NewSubscriptionSweeper(
	subscriptions domain.SubscriptionRepository,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
	logger *slog.Logger,
) *SubscriptionSweeper {
	if logger == nil {
		logger = slog.Default()
	}
	return &SubscriptionSweeper{
		subscriptions: subscriptions,
		outboxRepo:    outboxRepo,
		uow:           uow,
		logger:        logger,
	}
}

// ExpireLapsed expires every subscription whose deadline has passed.
// Returns the number of subscriptions flipped.
func (s *SubscriptionSweeper) ExpireLapsed(ctx context.Context, now time.Time) (int, error) {
	lapsed, err := s.subscriptions.ListLapsed(ctx, now)
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, sub := range lapsed {
		if !sub.Lapsed(now) {
			continue
		}
		err := sharedApplication.WithUnitOfWork(ctx, s.uow, func(ctx context.Context) error {
			sub.Expire(now)
			if err := s.subscriptions.Upsert(ctx, sub); err != nil {
				return err
			}

			event := domain.NewSubscriptionLapsed(sub)
			sharedApplication.ApplyEventMetadata(
				[]sharedDomain.DomainEvent{event},
				sharedApplication.NewEventMetadata(uuid.Nil),
			)
			msg, err := outbox.NewMessage(event)
			if err != nil {
				return err
			}
			return s.outboxRepo.Save(ctx, msg)
		})
		if err != nil {
			s.logger.Error("expire subscription failed", "subscription_id", sub.ID, "error", err)
			continue
		}
		expired++
	}

	if expired > 0 {
		s.logger.Info("expired lapsed subscriptions", "count", expired)
	}
	return expired, nil
}
