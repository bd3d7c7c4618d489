package domain

import (
	"time"

	"github.com/google/uuid"
	sharedDomain "github.com/quickcut/backend/internal/shared/domain"
)

const (
	AggregateType = "Booking"

	RoutingKeyBookingCreated   = "booking.created"
	RoutingKeyBookingConfirmed = "booking.confirmed"
	RoutingKeyBookingCompleted = "booking.completed"
	RoutingKeyBookingCancelled = "booking.cancelled"
)

// BookingCreated is emitted when a client books an appointment.
type BookingCreated struct {
	sharedDomain.BaseEvent
	ClientID      uuid.UUID `json:"client_id"`
	BarberID      uuid.UUID `json:"barber_id"`
	ServiceName   string    `json:"service_name"`
	PriceCents    int64     `json:"price_cents"`
	ScheduledTime time.Time `json:"scheduled_time"`
}

// NewBookingCreated creates a BookingCreated event.
func NewBookingCreated(b *Booking) *BookingCreated {
	return &BookingCreated{
		BaseEvent:     sharedDomain.NewBaseEvent(b.ID(), AggregateType, RoutingKeyBookingCreated),
		ClientID:      b.ClientID(),
		BarberID:      b.BarberID(),
		ServiceName:   b.Service().Name,
		PriceCents:    b.Service().PriceCents,
		ScheduledTime: b.ScheduledTime(),
	}
}

// BookingConfirmed is emitted when the barber accepts a pending booking.
type BookingConfirmed struct {
	sharedDomain.BaseEvent
	BarberID uuid.UUID `json:"barber_id"`
}

// NewBookingConfirmed creates a BookingConfirmed event.
func NewBookingConfirmed(b *Booking) *BookingConfirmed {
	return &BookingConfirmed{
		BaseEvent: sharedDomain.NewBaseEvent(b.ID(), AggregateType, RoutingKeyBookingConfirmed),
		BarberID:  b.BarberID(),
	}
}

// BookingCompleted is emitted when a confirmed booking is carried out.
type BookingCompleted struct {
	sharedDomain.BaseEvent
	BarberID   uuid.UUID `json:"barber_id"`
	PriceCents int64     `json:"price_cents"`
}

// NewBookingCompleted creates a BookingCompleted event.
func NewBookingCompleted(b *Booking) *BookingCompleted {
	return &BookingCompleted{
		BaseEvent:  sharedDomain.NewBaseEvent(b.ID(), AggregateType, RoutingKeyBookingCompleted),
		BarberID:   b.BarberID(),
		PriceCents: b.Service().PriceCents,
	}
}

// BookingCancelled is emitted when either party cancels.
type BookingCancelled struct {
	sharedDomain.BaseEvent
	BarberID uuid.UUID `json:"barber_id"`
	ClientID uuid.UUID `json:"client_id"`
}

// NewBookingCancelled creates a BookingCancelled event.
func NewBookingCancelled(b *Booking) *BookingCancelled {
	return &BookingCancelled{
		BaseEvent: sharedDomain.NewBaseEvent(b.ID(), AggregateType, RoutingKeyBookingCancelled),
		BarberID:  b.BarberID(),
		ClientID:  b.ClientID(),
	}
}
