// Package availability decides whether a barber is currently
// presentable to clients as bookable.
package availability

import (
	"time"

	billingDomain "github.com/quickcut/backend/internal/billing/domain"
	identityDomain "github.com/quickcut/backend/internal/identity/domain"
)

// Gate computes bookability. It is a pure read: no side effects, no
// stored state. Subscription expiry is re-evaluated against the clock
// on every call so a stale stored status can never leak an expired
// barber into listings.
type Gate struct{}

// NewGate creates a Gate.
func NewGate() Gate { return Gate{} }

// Bookable reports whether the barber may receive new bookings at the
// given instant: the availability toggle is on AND the subscription
// grants access right now. A missing subscription never gates open.
func (Gate) Bookable(barber *identityDomain.User, sub *billingDomain.Subscription, now time.Time) bool {
	if barber == nil || !barber.IsBarber() {
		return false
	}
	if !barber.IsAvailable() {
		return false
	}
	return sub.ActiveAt(now)
}
