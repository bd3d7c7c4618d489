package commands

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/quickcut/backend/internal/booking/domain"
	sharedApplication "github.com/quickcut/backend/internal/shared/application"
	"github.com/quickcut/backend/internal/shared/infrastructure/outbox"
)

// TransitionAction names a lifecycle transition requested by an actor.
type TransitionAction string

const (
	ActionConfirm  TransitionAction = "confirm"
	ActionComplete TransitionAction = "complete"
	ActionCancel   TransitionAction = "cancel"
)

// ErrUnknownAction is returned for an unrecognized transition action.
var ErrUnknownAction = errors.New("unknown booking action")

// TransitionBookingCommand contains the data needed to move a booking
// through its lifecycle.
type TransitionBookingCommand struct {
	BookingID uuid.UUID
	ActorID   uuid.UUID
	Action    TransitionAction
}

// TransitionBookingResult reports the authoritative status after the
// attempt, also on failure, so callers can resynchronize.
type TransitionBookingResult struct {
	Status domain.Status
}

// TransitionBookingHandler handles the TransitionBookingCommand.
type TransitionBookingHandler struct {
	bookings    domain.BookingRepository
	outboxRepo  outbox.Repository
	uow         sharedApplication.UnitOfWork
	invalidator SummaryInvalidator
}

// NewTransitionBookingHandler creates a new TransitionBookingHandler.
func NewTransitionBookingHandler(
	bookings domain.BookingRepository,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
	invalidator SummaryInvalidator,
) *TransitionBookingHandler {
	return &TransitionBookingHandler{
		bookings:    bookings,
		outboxRepo:  outboxRepo,
		uow:         uow,
		invalidator: invalidator,
	}
}

// Handle executes the TransitionBookingCommand.
//
// The status write is a compare-and-swap against the status the booking
// was loaded with. If a concurrent request transitioned the booking
// first, the swap fails and the caller gets ErrInvalidTransition with
// the then-current status, never a silent overwrite.
func (h *TransitionBookingHandler) Handle(ctx context.Context, cmd TransitionBookingCommand) (TransitionBookingResult, error) {
	booking, err := h.bookings.FindByID(ctx, cmd.BookingID)
	if err != nil {
		return TransitionBookingResult{}, err
	}
	if booking == nil {
		return TransitionBookingResult{}, domain.ErrBookingNotFound
	}

	loadedStatus := booking.Status()

	switch cmd.Action {
	case ActionConfirm:
		err = booking.Confirm(cmd.ActorID)
	case ActionComplete:
		err = booking.Complete(cmd.ActorID)
	case ActionCancel:
		err = booking.Cancel(cmd.ActorID)
	default:
		return TransitionBookingResult{Status: loadedStatus}, ErrUnknownAction
	}
	if err != nil {
		return TransitionBookingResult{Status: loadedStatus}, err
	}

	err = sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		if err := h.bookings.UpdateStatus(txCtx, booking.ID(), loadedStatus, booking.Status()); err != nil {
			return err
		}
		return saveEvents(txCtx, h.outboxRepo, booking, cmd.ActorID)
	})
	if err != nil {
		if errors.Is(err, domain.ErrStatusConflict) {
			return h.conflictResult(ctx, cmd.BookingID, loadedStatus)
		}
		return TransitionBookingResult{Status: loadedStatus}, err
	}

	invalidateSummary(ctx, h.invalidator, booking)
	return TransitionBookingResult{Status: booking.Status()}, nil
}

// conflictResult reloads the authoritative status after losing a race.
func (h *TransitionBookingHandler) conflictResult(ctx context.Context, bookingID uuid.UUID, fallback domain.Status) (TransitionBookingResult, error) {
	current, err := h.bookings.FindByID(ctx, bookingID)
	if err != nil || current == nil {
		return TransitionBookingResult{Status: fallback}, domain.ErrInvalidTransition
	}
	return TransitionBookingResult{Status: current.Status()}, domain.ErrInvalidTransition
}
