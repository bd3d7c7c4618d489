package domain

import (
	"github.com/google/uuid"
	sharedDomain "github.com/quickcut/backend/internal/shared/domain"
)

const (
	SubscriptionAggregateType = "Subscription"

	RoutingKeySubscriptionActivated = "billing.subscription.activated"
	RoutingKeySubscriptionExpired   = "billing.subscription.expired"
	RoutingKeyPaymentConfirmed      = "billing.payment.confirmed"
)

// SubscriptionActivated is emitted when a confirmed payment activates a
// subscription.
type SubscriptionActivated struct {
	sharedDomain.BaseEvent
	UserID uuid.UUID `json:"user_id"`
	PlanID string    `json:"plan_id"`
}

// NewSubscriptionActivated creates a SubscriptionActivated event.
func NewSubscriptionActivated(sub *Subscription) *SubscriptionActivated {
	return &SubscriptionActivated{
		BaseEvent: sharedDomain.NewBaseEvent(sub.ID, SubscriptionAggregateType, RoutingKeySubscriptionActivated),
		UserID:    sub.UserID,
		PlanID:    sub.PlanID,
	}
}

// SubscriptionLapsed is emitted when the expiry sweep flips a lapsed
// subscription to expired.
type SubscriptionLapsed struct {
	sharedDomain.BaseEvent
	UserID uuid.UUID `json:"user_id"`
}

// NewSubscriptionLapsed creates a SubscriptionLapsed event.
func NewSubscriptionLapsed(sub *Subscription) *SubscriptionLapsed {
	return &SubscriptionLapsed{
		BaseEvent: sharedDomain.NewBaseEvent(sub.ID, SubscriptionAggregateType, RoutingKeySubscriptionExpired),
		UserID:    sub.UserID,
	}
}

// PaymentConfirmed is emitted exactly once per paid intent.
type PaymentConfirmed struct {
	sharedDomain.BaseEvent
	SessionID   string    `json:"session_id"`
	SubjectType string    `json:"subject_type"`
	SubjectID   uuid.UUID `json:"subject_id"`
}

// NewPaymentConfirmed creates a PaymentConfirmed event.
func NewPaymentConfirmed(intent *PaymentIntent) *PaymentConfirmed {
	return &PaymentConfirmed{
		BaseEvent:   sharedDomain.NewBaseEvent(intent.SubjectID, SubscriptionAggregateType, RoutingKeyPaymentConfirmed),
		SessionID:   intent.SessionID,
		SubjectType: string(intent.SubjectType),
		SubjectID:   intent.SubjectID,
	}
}
