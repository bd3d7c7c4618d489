package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrStatusConflict is returned by UpdateStatus when the stored status
// no longer matches the expected one, i.e. a concurrent transition won.
var ErrStatusConflict = errors.New("booking status changed concurrently")

// BookingRepository defines access for booking persistence.
type BookingRepository interface {
	Save(ctx context.Context, booking *Booking) error
	FindByID(ctx context.Context, id uuid.UUID) (*Booking, error)
	// UpdateStatus is a compare-and-swap on the stored status. It fails
	// with ErrStatusConflict rather than overwriting a concurrent
	// transition, which keeps per-booking transitions linearizable.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status) error
	// ListByBarberAndDate returns the barber's bookings whose
	// scheduled time falls on the given UTC calendar date.
	ListByBarberAndDate(ctx context.Context, barberID uuid.UUID, date time.Time) ([]*Booking, error)
	// ListUpcomingByBarber returns pending and confirmed bookings
	// ordered by scheduled time.
	ListUpcomingByBarber(ctx context.Context, barberID uuid.UUID) ([]*Booking, error)
	// ListByClient returns the client's bookings, newest first.
	ListByClient(ctx context.Context, clientID uuid.UUID) ([]*Booking, error)
}
