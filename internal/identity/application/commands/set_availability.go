// Package commands implements identity write operations.
package commands

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/quickcut/backend/internal/identity/domain"
	sharedApplication "github.com/quickcut/backend/internal/shared/application"
	"github.com/quickcut/backend/internal/shared/infrastructure/outbox"
)

// ErrUserNotFound is returned when the target user does not exist.
var ErrUserNotFound = errors.New("user not found")

// SetAvailabilityCommand toggles a barber's availability flag.
type SetAvailabilityCommand struct {
	BarberID  uuid.UUID
	Available bool
}

// SetAvailabilityHandler handles availability toggles.
type SetAvailabilityHandler struct {
	users      domain.UserRepository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
}

// NewSetAvailabilityHandler creates a new handler.
func NewSetAvailabilityHandler(
	users domain.UserRepository,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
) *SetAvailabilityHandler {
	return &SetAvailabilityHandler{users: users, outboxRepo: outboxRepo, uow: uow}
}

// Handle toggles the flag and returns the resulting value.
func (h *SetAvailabilityHandler) Handle(ctx context.Context, cmd SetAvailabilityCommand) (bool, error) {
	user, err := h.users.FindByID(ctx, cmd.BarberID)
	if err != nil {
		return false, err
	}
	if user == nil {
		return false, ErrUserNotFound
	}

	if err := user.SetAvailability(cmd.Available); err != nil {
		return false, err
	}

	err = sharedApplication.WithUnitOfWork(ctx, h.uow, func(ctx context.Context) error {
		if err := h.users.SetAvailability(ctx, user.ID(), cmd.Available); err != nil {
			return err
		}

		events := user.DomainEvents()
		sharedApplication.ApplyEventMetadata(events, sharedApplication.NewEventMetadata(cmd.BarberID))

		msgs := make([]*outbox.Message, 0, len(events))
		for _, event := range events {
			msg, err := outbox.NewMessage(event)
			if err != nil {
				return err
			}
			msgs = append(msgs, msg)
		}
		return h.outboxRepo.SaveBatch(ctx, msgs)
	})
	if err != nil {
		return false, err
	}

	user.ClearDomainEvents()
	return user.IsAvailable(), nil
}
