package domain

import "time"

// Plan is an entry in the subscription plan catalog.
type Plan struct {
	ID         string
	Name       string
	PriceCents int64
	TrialDays  int
}

// SubscriptionPeriod is the length of one paid billing period.
const SubscriptionPeriod = 30 * 24 * time.Hour

// DefaultPlans is the seeded plan catalog.
var DefaultPlans = []Plan{
	{ID: "starter", Name: "Starter", PriceCents: 1999, TrialDays: 14},
	{ID: "professional", Name: "Professional", PriceCents: 3999, TrialDays: 14},
	{ID: "premium", Name: "Premium", PriceCents: 7999, TrialDays: 30},
}

// PlanByID returns the catalog plan with the given id.
func PlanByID(id string) (Plan, bool) {
	for _, p := range DefaultPlans {
		if p.ID == id {
			return p, true
		}
	}
	return Plan{}, false
}
