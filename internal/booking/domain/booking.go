package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	sharedDomain "github.com/quickcut/backend/internal/shared/domain"
)

var (
	ErrInvalidSchedule   = errors.New("scheduled time must be in the future")
	ErrInvalidTransition = errors.New("invalid booking status transition")
	ErrNotAuthorized     = errors.New("actor may not perform this transition")
	ErrBookingNotFound   = errors.New("booking not found")
)

// Status is the lifecycle state of a booking.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// IsTerminal reports whether no further transitions are legal.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Service is the snapshot of the barber's offering taken at booking
// time. Prices on the menu may change later; the booking keeps the
// price that was agreed.
type Service struct {
	Name            string
	PriceCents      int64
	DurationMinutes int
}

// Booking is one scheduled appointment between a client and a barber.
//
// Transitions form the only legal paths:
//
//	pending → confirmed → completed
//	pending → cancelled
//	confirmed → cancelled
//
// Terminal bookings are immutable; re-issuing a transition on one fails
// with ErrInvalidTransition rather than being silently ignored.
type Booking struct {
	sharedDomain.BaseAggregateRoot
	clientID      uuid.UUID
	barberID      uuid.UUID
	service       Service
	scheduledTime time.Time
	status        Status
}

// NewBooking creates a booking in pending state. The caller is
// responsible for checking the barber's bookability first; this
// constructor only validates the schedule.
func NewBooking(clientID, barberID uuid.UUID, service Service, scheduledTime time.Time, now time.Time) (*Booking, error) {
	if !scheduledTime.After(now) {
		return nil, ErrInvalidSchedule
	}

	b := &Booking{
		BaseAggregateRoot: sharedDomain.NewBaseAggregateRoot(),
		clientID:          clientID,
		barberID:          barberID,
		service:           service,
		scheduledTime:     scheduledTime,
		status:            StatusPending,
	}
	b.AddDomainEvent(NewBookingCreated(b))
	return b, nil
}

// Getters
func (b *Booking) ClientID() uuid.UUID      { return b.clientID }
func (b *Booking) BarberID() uuid.UUID      { return b.barberID }
func (b *Booking) Service() Service         { return b.service }
func (b *Booking) ScheduledTime() time.Time { return b.scheduledTime }
func (b *Booking) Status() Status           { return b.status }

// Confirm moves pending → confirmed. Only the owning barber may confirm.
func (b *Booking) Confirm(actorID uuid.UUID) error {
	if actorID != b.barberID {
		return ErrNotAuthorized
	}
	if b.status != StatusPending {
		return ErrInvalidTransition
	}
	b.status = StatusConfirmed
	b.Touch()
	b.AddDomainEvent(NewBookingConfirmed(b))
	return nil
}

// Complete moves confirmed → completed. Only the owning barber may
// complete. From this point the booking contributes to earnings.
func (b *Booking) Complete(actorID uuid.UUID) error {
	if actorID != b.barberID {
		return ErrNotAuthorized
	}
	if b.status != StatusConfirmed {
		return ErrInvalidTransition
	}
	b.status = StatusCompleted
	b.Touch()
	b.AddDomainEvent(NewBookingCompleted(b))
	return nil
}

// Cancel moves pending or confirmed → cancelled. Either party may cancel.
func (b *Booking) Cancel(actorID uuid.UUID) error {
	if actorID != b.barberID && actorID != b.clientID {
		return ErrNotAuthorized
	}
	if b.status != StatusPending && b.status != StatusConfirmed {
		return ErrInvalidTransition
	}
	b.status = StatusCancelled
	b.Touch()
	b.AddDomainEvent(NewBookingCancelled(b))
	return nil
}

// Date returns the UTC calendar date the booking belongs to for
// aggregation. Each booking counts on exactly one date.
func (b *Booking) Date() time.Time {
	t := b.scheduledTime.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// RehydrateBooking recreates a booking from persisted state.
func RehydrateBooking(
	id uuid.UUID,
	clientID, barberID uuid.UUID,
	service Service,
	scheduledTime time.Time,
	status Status,
	createdAt, updatedAt time.Time,
) *Booking {
	return &Booking{
		BaseAggregateRoot: sharedDomain.RehydrateBaseAggregateRoot(sharedDomain.RehydrateBaseEntity(id, createdAt, updatedAt)),
		clientID:          clientID,
		barberID:          barberID,
		service:           service,
		scheduledTime:     scheduledTime,
		status:            status,
	}
}
