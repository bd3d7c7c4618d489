package commands

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/quickcut/backend/internal/booking/domain"
)

type transitionFixture struct {
	bookings    *mockBookingRepository
	outboxRepo  *mockOutboxRepository
	uow         *mockUnitOfWork
	invalidator *mockInvalidator
	handler     *TransitionBookingHandler

	clientID uuid.UUID
	barberID uuid.UUID
}

func newTransitionFixture(t *testing.T) *transitionFixture {
	t.Helper()

	f := &transitionFixture{
		bookings:    &mockBookingRepository{},
		outboxRepo:  &mockOutboxRepository{},
		uow:         passthroughUnitOfWork(),
		invalidator: &mockInvalidator{},
		clientID:    uuid.New(),
		barberID:    uuid.New(),
	}
	f.handler = NewTransitionBookingHandler(f.bookings, f.outboxRepo, f.uow, f.invalidator)
	return f
}

func (f *transitionFixture) storedBooking(status domain.Status) *domain.Booking {
	now := time.Now().UTC()
	return domain.RehydrateBooking(
		uuid.New(), f.clientID, f.barberID,
		domain.Service{Name: "Classic Cut", PriceCents: 3000, DurationMinutes: 30},
		now.Add(2*time.Hour), status, now.Add(-time.Hour), now.Add(-time.Hour),
	)
}

func TestTransitionBookingHandler(t *testing.T) {
	ctx := context.Background()

	t.Run("barber confirms pending booking", func(t *testing.T) {
		f := newTransitionFixture(t)
		booking := f.storedBooking(domain.StatusPending)
		f.bookings.On("FindByID", mock.Anything, booking.ID()).Return(booking, nil)
		f.bookings.On("UpdateStatus", mock.Anything, booking.ID(), domain.StatusPending, domain.StatusConfirmed).Return(nil)
		f.outboxRepo.On("SaveBatch", mock.Anything, mock.Anything).Return(nil)
		f.invalidator.On("Invalidate", mock.Anything, f.barberID, mock.Anything).Return(nil)

		result, err := f.handler.Handle(ctx, TransitionBookingCommand{
			BookingID: booking.ID(),
			ActorID:   f.barberID,
			Action:    ActionConfirm,
		})
		require.NoError(t, err)
		assert.Equal(t, domain.StatusConfirmed, result.Status)
		f.bookings.AssertExpectations(t)
	})

	t.Run("missing booking", func(t *testing.T) {
		f := newTransitionFixture(t)
		f.bookings.On("FindByID", mock.Anything, mock.Anything).Return(nil, nil)

		_, err := f.handler.Handle(ctx, TransitionBookingCommand{
			BookingID: uuid.New(),
			ActorID:   f.barberID,
			Action:    ActionConfirm,
		})
		assert.ErrorIs(t, err, domain.ErrBookingNotFound)
	})

	t.Run("unknown action", func(t *testing.T) {
		f := newTransitionFixture(t)
		booking := f.storedBooking(domain.StatusPending)
		f.bookings.On("FindByID", mock.Anything, booking.ID()).Return(booking, nil)

		_, err := f.handler.Handle(ctx, TransitionBookingCommand{
			BookingID: booking.ID(),
			ActorID:   f.barberID,
			Action:    TransitionAction("reschedule"),
		})
		assert.ErrorIs(t, err, ErrUnknownAction)
	})

	t.Run("client may not confirm", func(t *testing.T) {
		f := newTransitionFixture(t)
		booking := f.storedBooking(domain.StatusPending)
		f.bookings.On("FindByID", mock.Anything, booking.ID()).Return(booking, nil)

		result, err := f.handler.Handle(ctx, TransitionBookingCommand{
			BookingID: booking.ID(),
			ActorID:   f.clientID,
			Action:    ActionConfirm,
		})
		assert.ErrorIs(t, err, domain.ErrNotAuthorized)
		assert.Equal(t, domain.StatusPending, result.Status)
		f.bookings.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("terminal booking rejects transition", func(t *testing.T) {
		f := newTransitionFixture(t)
		booking := f.storedBooking(domain.StatusCancelled)
		f.bookings.On("FindByID", mock.Anything, booking.ID()).Return(booking, nil)

		result, err := f.handler.Handle(ctx, TransitionBookingCommand{
			BookingID: booking.ID(),
			ActorID:   f.barberID,
			Action:    ActionConfirm,
		})
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
		assert.Equal(t, domain.StatusCancelled, result.Status)
	})

	t.Run("losing a concurrent race reports the authoritative status", func(t *testing.T) {
		f := newTransitionFixture(t)
		booking := f.storedBooking(domain.StatusPending)

		// First read sees pending; the compare-and-swap then loses to a
		// concurrent cancel, and the reload sees the winner's status.
		winner := f.storedBooking(domain.StatusCancelled)
		f.bookings.On("FindByID", mock.Anything, booking.ID()).Return(booking, nil).Once()
		f.bookings.On("UpdateStatus", mock.Anything, booking.ID(), domain.StatusPending, domain.StatusConfirmed).
			Return(domain.ErrStatusConflict)
		f.bookings.On("FindByID", mock.Anything, booking.ID()).Return(winner, nil).Once()

		result, err := f.handler.Handle(ctx, TransitionBookingCommand{
			BookingID: booking.ID(),
			ActorID:   f.barberID,
			Action:    ActionConfirm,
		})
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
		assert.Equal(t, domain.StatusCancelled, result.Status)
		f.invalidator.AssertNotCalled(t, "Invalidate", mock.Anything, mock.Anything, mock.Anything)
	})
}
