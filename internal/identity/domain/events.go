package domain

import (
	"github.com/google/uuid"
	sharedDomain "github.com/quickcut/backend/internal/shared/domain"
)

const (
	AggregateType = "User"

	RoutingKeyAvailabilityChanged = "identity.barber.availability_changed"
)

// AvailabilityChanged is emitted when a barber toggles their availability.
type AvailabilityChanged struct {
	sharedDomain.BaseEvent
	BarberID    uuid.UUID `json:"barber_id"`
	IsAvailable bool      `json:"is_available"`
}

// NewAvailabilityChanged creates an AvailabilityChanged event.
func NewAvailabilityChanged(barberID uuid.UUID, isAvailable bool) *AvailabilityChanged {
	return &AvailabilityChanged{
		BaseEvent:   sharedDomain.NewBaseEvent(barberID, AggregateType, RoutingKeyAvailabilityChanged),
		BarberID:    barberID,
		IsAvailable: isAvailable,
	}
}
