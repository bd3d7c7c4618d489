package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SubscriptionRepository defines access for subscription persistence.
type SubscriptionRepository interface {
	Upsert(ctx context.Context, subscription *Subscription) error
	FindByID(ctx context.Context, id uuid.UUID) (*Subscription, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) (*Subscription, error)
	// ListLapsed returns subscriptions whose stored status is stale
	// relative to now (trial or active past its deadline).
	ListLapsed(ctx context.Context, now time.Time) ([]*Subscription, error)
}

// PaymentIntentRepository defines access for payment intent persistence.
type PaymentIntentRepository interface {
	Save(ctx context.Context, intent *PaymentIntent) error
	FindBySessionID(ctx context.Context, sessionID string) (*PaymentIntent, error)
	// TransitionStatus is a compare-and-swap on the stored status. It
	// returns false when the intent was not in the expected state, which
	// makes the paid transition exactly-once under concurrent polling.
	TransitionStatus(ctx context.Context, sessionID string, from, to IntentStatus) (bool, error)
	// ListByStatus returns intents currently in the given state.
	ListByStatus(ctx context.Context, status IntentStatus) ([]*PaymentIntent, error)
}

// EnrollmentRepository defines access for enrollment persistence.
type EnrollmentRepository interface {
	Save(ctx context.Context, enrollment *Enrollment) error
	FindByID(ctx context.Context, id uuid.UUID) (*Enrollment, error)
	Update(ctx context.Context, enrollment *Enrollment) error
}
