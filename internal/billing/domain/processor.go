package domain

import "context"

// CheckoutRequest describes what an external checkout session pays for.
type CheckoutRequest struct {
	SubjectType SubjectType
	Reference   string
	Description string
	AmountCents int64
}

// CheckoutSession is the processor's handle on a hosted checkout page.
type CheckoutSession struct {
	SessionID   string
	RedirectURL string
}

// SessionState is the processor's authoritative view of a session.
type SessionState string

const (
	SessionOpen    SessionState = "open"
	SessionPaid    SessionState = "paid"
	SessionExpired SessionState = "expired"
)

// Processor abstracts the external payment processor. Implementations
// must be safe for concurrent use; reconciliation is the only caller
// allowed to act on its answers.
type Processor interface {
	CreateSession(ctx context.Context, req CheckoutRequest) (CheckoutSession, error)
	GetSessionState(ctx context.Context, sessionID string) (SessionState, error)
}
