package commands

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/quickcut/backend/internal/availability"
	billingDomain "github.com/quickcut/backend/internal/billing/domain"
	"github.com/quickcut/backend/internal/booking/domain"
	identityDomain "github.com/quickcut/backend/internal/identity/domain"
	sharedApplication "github.com/quickcut/backend/internal/shared/application"
	"github.com/quickcut/backend/internal/shared/infrastructure/outbox"
)

var (
	ErrBarberNotFound = errors.New("barber not found")
	// ErrBarberUnavailable means the availability gate rejected the
	// barber at creation time. Existing bookings are unaffected by a
	// later gate change.
	ErrBarberUnavailable = errors.New("barber is not currently bookable")
)

// CreateBookingCommand contains the data needed to book an appointment.
type CreateBookingCommand struct {
	ClientID      uuid.UUID
	BarberID      uuid.UUID
	ServiceID     uuid.UUID
	ScheduledTime time.Time
}

// CreateBookingHandler handles the CreateBookingCommand.
type CreateBookingHandler struct {
	users         identityDomain.UserRepository
	subscriptions billingDomain.SubscriptionRepository
	bookings      domain.BookingRepository
	gate          availability.Gate
	outboxRepo    outbox.Repository
	uow           sharedApplication.UnitOfWork
	invalidator   SummaryInvalidator
}

// NewCreateBookingHandler creates a new CreateBookingHandler.
func NewCreateBookingHandler(
	users identityDomain.UserRepository,
	subscriptions billingDomain.SubscriptionRepository,
	bookings domain.BookingRepository,
	gate availability.Gate,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
	invalidator SummaryInvalidator,
) *CreateBookingHandler {
	return &CreateBookingHandler{
		users:         users,
		subscriptions: subscriptions,
		bookings:      bookings,
		gate:          gate,
		outboxRepo:    outboxRepo,
		uow:           uow,
		invalidator:   invalidator,
	}
}

// Handle executes the CreateBookingCommand and returns the new booking id.
func (h *CreateBookingHandler) Handle(ctx context.Context, cmd CreateBookingCommand) (uuid.UUID, error) {
	now := time.Now().UTC()

	barber, err := h.users.FindByID(ctx, cmd.BarberID)
	if err != nil {
		return uuid.Nil, err
	}
	if barber == nil || !barber.IsBarber() {
		return uuid.Nil, ErrBarberNotFound
	}

	offering, err := barber.ServiceByID(cmd.ServiceID)
	if err != nil {
		return uuid.Nil, err
	}

	sub, err := h.subscriptions.FindByUserID(ctx, cmd.BarberID)
	if err != nil {
		return uuid.Nil, err
	}

	// Gate check happens at call time; it is not re-checked later.
	if !h.gate.Bookable(barber, sub, now) {
		return uuid.Nil, ErrBarberUnavailable
	}

	booking, err := domain.NewBooking(
		cmd.ClientID,
		cmd.BarberID,
		domain.Service{
			Name:            offering.Name,
			PriceCents:      offering.PriceCents,
			DurationMinutes: offering.DurationMinutes,
		},
		cmd.ScheduledTime,
		now,
	)
	if err != nil {
		return uuid.Nil, err
	}

	err = sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		if err := h.bookings.Save(txCtx, booking); err != nil {
			return err
		}
		return saveEvents(txCtx, h.outboxRepo, booking, cmd.ClientID)
	})
	if err != nil {
		return uuid.Nil, err
	}

	invalidateSummary(ctx, h.invalidator, booking)
	return booking.ID(), nil
}
