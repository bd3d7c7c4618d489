package commands

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/quickcut/backend/internal/booking/domain"
	sharedApplication "github.com/quickcut/backend/internal/shared/application"
	"github.com/quickcut/backend/internal/shared/infrastructure/outbox"
)

// SummaryInvalidator drops any cached dashboard summary for a barber's
// date. A nil invalidator is a no-op (caching is optional).
type SummaryInvalidator interface {
	Invalidate(ctx context.Context, barberID uuid.UUID, date time.Time) error
}

func saveEvents(ctx context.Context, repo outbox.Repository, booking *domain.Booking, actorID uuid.UUID) error {
	events := booking.DomainEvents()
	sharedApplication.ApplyEventMetadata(events, sharedApplication.NewEventMetadata(actorID))

	msgs := make([]*outbox.Message, 0, len(events))
	for _, event := range events {
		msg, err := outbox.NewMessage(event)
		if err != nil {
			return err
		}
		msgs = append(msgs, msg)
	}
	if err := repo.SaveBatch(ctx, msgs); err != nil {
		return err
	}
	booking.ClearDomainEvents()
	return nil
}

func invalidateSummary(ctx context.Context, inv SummaryInvalidator, booking *domain.Booking) {
	if inv == nil {
		return
	}
	// Best-effort; summaries recompute on read.
	_ = inv.Invalidate(ctx, booking.BarberID(), booking.Date())
}
