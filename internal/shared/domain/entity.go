// Package domain is the shared kernel: identity-bearing entities,
// aggregate roots that collect domain events, and the event contract
// the outbox publishes.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// BaseEntity gives an aggregate its identity and audit timestamps.
// Embedded by every aggregate in the system.
type BaseEntity struct {
	id        uuid.UUID
	createdAt time.Time
	updatedAt time.Time
}

// NewBaseEntity mints a fresh identity with both timestamps set to now.
func NewBaseEntity() BaseEntity {
	now := time.Now().UTC()
	return BaseEntity{
		id:        uuid.New(),
		createdAt: now,
		updatedAt: now,
	}
}

// RehydrateBaseEntity rebuilds the identity from stored columns. Used
// only by repository scan paths.
func RehydrateBaseEntity(id uuid.UUID, createdAt, updatedAt time.Time) BaseEntity {
	return BaseEntity{
		id:        id,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

func (e BaseEntity) ID() uuid.UUID        { return e.id }
func (e BaseEntity) CreatedAt() time.Time { return e.createdAt }
func (e BaseEntity) UpdatedAt() time.Time { return e.updatedAt }

// Touch bumps updatedAt. Aggregates call it on every state change.
func (e *BaseEntity) Touch() {
	e.updatedAt = time.Now().UTC()
}
