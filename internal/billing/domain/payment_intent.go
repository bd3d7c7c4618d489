package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrUnknownSubject   = errors.New("unknown payment subject type")
	ErrIntentNotFound   = errors.New("payment intent not found")
	ErrSubjectNotFound  = errors.New("payment subject not found")
	ErrUnknownPlan      = errors.New("unknown subscription plan")
	ErrProcessorFailure = errors.New("payment processor unavailable")
)

// SubjectType names what a payment intent pays for.
type SubjectType string

const (
	SubjectSubscription SubjectType = "subscription"
	SubjectEnrollment   SubjectType = "enrollment"
)

// IntentStatus is the local view of an externally-hosted checkout.
type IntentStatus string

const (
	IntentOpen IntentStatus = "open"
	IntentPaid IntentStatus = "paid"
	// IntentExpired means the processor reported the checkout as abandoned.
	IntentExpired IntentStatus = "expired"
	// IntentIndeterminate means polling exhausted its attempt budget
	// without a definitive signal. The reconciliation sweep resolves it
	// against the processor's authoritative record; it is never treated
	// as success.
	IntentIndeterminate IntentStatus = "indeterminate"
)

// PaymentIntent tracks one in-flight external checkout, keyed by the
// processor's opaque session id.
type PaymentIntent struct {
	SessionID   string
	SubjectType SubjectType
	SubjectID   uuid.UUID
	Status      IntentStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewPaymentIntent creates an open intent for a checkout session.
func NewPaymentIntent(sessionID string, subjectType SubjectType, subjectID uuid.UUID, now time.Time) *PaymentIntent {
	return &PaymentIntent{
		SessionID:   sessionID,
		SubjectType: subjectType,
		SubjectID:   subjectID,
		Status:      IntentOpen,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// IsTerminal reports whether the intent has reached paid or expired.
func (i *PaymentIntent) IsTerminal() bool {
	return i.Status == IntentPaid || i.Status == IntentExpired
}
