package domain

import (
	"context"

	"github.com/google/uuid"
)

// UserRepository defines access for user persistence.
type UserRepository interface {
	Save(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	// ListBarbers returns every barber account with its service menu.
	ListBarbers(ctx context.Context) ([]*User, error)
	// SetAvailability writes the availability flag as a single atomic update.
	SetAvailability(ctx context.Context, barberID uuid.UUID, available bool) error
}
