package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTrialSubscription(t *testing.T) {
	now := time.Now().UTC()
	plan, ok := PlanByID("professional")
	require.True(t, ok)

	sub := NewTrialSubscription(uuid.New(), plan, now)

	assert.Equal(t, SubscriptionTrial, sub.Status)
	assert.Equal(t, "professional", sub.PlanID)
	require.NotNil(t, sub.TrialExpiresAt)
	assert.Equal(t, now.Add(14*24*time.Hour), *sub.TrialExpiresAt)
	assert.Nil(t, sub.CurrentPeriodEnd)
}

func TestSubscriptionActiveAt(t *testing.T) {
	now := time.Now().UTC()
	plan, _ := PlanByID("starter")

	t.Run("nil subscription is never active", func(t *testing.T) {
		var sub *Subscription
		assert.False(t, sub.ActiveAt(now))
	})

	t.Run("trial active strictly before deadline", func(t *testing.T) {
		sub := NewTrialSubscription(uuid.New(), plan, now)

		assert.True(t, sub.ActiveAt(now))
		assert.True(t, sub.ActiveAt(sub.TrialExpiresAt.Add(-time.Second)))
		assert.False(t, sub.ActiveAt(*sub.TrialExpiresAt))
		assert.False(t, sub.ActiveAt(sub.TrialExpiresAt.Add(time.Second)))
	})

	t.Run("activated subscription active until period end", func(t *testing.T) {
		sub := NewTrialSubscription(uuid.New(), plan, now)
		sub.Activate(now.Add(SubscriptionPeriod), now)

		assert.Equal(t, SubscriptionActive, sub.Status)
		assert.True(t, sub.ActiveAt(now))
		assert.False(t, sub.ActiveAt(now.Add(SubscriptionPeriod)))
	})

	t.Run("expired subscription is never active", func(t *testing.T) {
		sub := NewTrialSubscription(uuid.New(), plan, now)
		sub.Expire(now)

		assert.False(t, sub.ActiveAt(now))
		assert.False(t, sub.ActiveAt(now.Add(-time.Hour)))
	})
}

func TestSubscriptionExpire(t *testing.T) {
	now := time.Now().UTC()
	plan, _ := PlanByID("starter")

	t.Run("is idempotent", func(t *testing.T) {
		sub := NewTrialSubscription(uuid.New(), plan, now)
		sub.Expire(now)
		first := sub.UpdatedAt

		sub.Expire(now.Add(time.Hour))
		assert.Equal(t, first, sub.UpdatedAt)
		assert.Equal(t, SubscriptionExpired, sub.Status)
	})
}

func TestSubscriptionLapsed(t *testing.T) {
	now := time.Now().UTC()
	plan, _ := PlanByID("premium")

	t.Run("fresh trial has not lapsed", func(t *testing.T) {
		sub := NewTrialSubscription(uuid.New(), plan, now)
		assert.False(t, sub.Lapsed(now))
	})

	t.Run("trial past deadline has lapsed", func(t *testing.T) {
		sub := NewTrialSubscription(uuid.New(), plan, now)
		assert.True(t, sub.Lapsed(sub.TrialExpiresAt.Add(time.Minute)))
	})

	t.Run("already expired does not lapse again", func(t *testing.T) {
		sub := NewTrialSubscription(uuid.New(), plan, now)
		sub.Expire(now)
		assert.False(t, sub.Lapsed(now.Add(365*24*time.Hour)))
	})
}

func TestPlanCatalog(t *testing.T) {
	for _, id := range []string{"starter", "professional", "premium"} {
		plan, ok := PlanByID(id)
		assert.True(t, ok)
		assert.Equal(t, id, plan.ID)
		assert.Positive(t, plan.PriceCents)
	}

	_, ok := PlanByID("enterprise")
	assert.False(t, ok)
}
