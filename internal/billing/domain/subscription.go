package domain

import (
	"time"

	"github.com/google/uuid"
)

// SubscriptionStatus represents the stored billing state.
type SubscriptionStatus string

const (
	SubscriptionTrial   SubscriptionStatus = "trial"
	SubscriptionActive  SubscriptionStatus = "active"
	SubscriptionExpired SubscriptionStatus = "expired"
)

// Subscription represents a barber's subscription.
//
// The stored status is updated lazily: a trial whose deadline has passed
// may still carry status "trial" until the expiry sweep runs. Callers
// deciding visibility must use ActiveAt, which re-evaluates expiry
// against the clock, never the stored enum alone.
type Subscription struct {
	ID               uuid.UUID
	UserID           uuid.UUID
	PlanID           string
	Status           SubscriptionStatus
	TrialExpiresAt   *time.Time
	CurrentPeriodEnd *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// NewTrialSubscription starts a trial for a barber on the given plan.
func NewTrialSubscription(userID uuid.UUID, plan Plan, now time.Time) *Subscription {
	trialEnd := now.Add(time.Duration(plan.TrialDays) * 24 * time.Hour)
	return &Subscription{
		ID:             uuid.New(),
		UserID:         userID,
		PlanID:         plan.ID,
		Status:         SubscriptionTrial,
		TrialExpiresAt: &trialEnd,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// ActiveAt reports whether the subscription grants access at the given
// instant. Trials count as active strictly before their deadline.
func (s *Subscription) ActiveAt(now time.Time) bool {
	if s == nil {
		return false
	}
	switch s.Status {
	case SubscriptionActive:
		return s.CurrentPeriodEnd == nil || now.Before(*s.CurrentPeriodEnd)
	case SubscriptionTrial:
		return s.TrialExpiresAt != nil && now.Before(*s.TrialExpiresAt)
	default:
		return false
	}
}

// Activate moves the subscription to active with a new period end.
// Only payment reconciliation may call this.
func (s *Subscription) Activate(periodEnd time.Time, now time.Time) {
	s.Status = SubscriptionActive
	s.CurrentPeriodEnd = &periodEnd
	s.UpdatedAt = now
}

// Expire marks the subscription expired. Idempotent.
func (s *Subscription) Expire(now time.Time) {
	if s.Status == SubscriptionExpired {
		return
	}
	s.Status = SubscriptionExpired
	s.UpdatedAt = now
}

// Lapsed reports whether the stored status no longer matches the clock
// and should be flipped to expired by the sweep.
func (s *Subscription) Lapsed(now time.Time) bool {
	return s.Status != SubscriptionExpired && !s.ActiveAt(now)
}
