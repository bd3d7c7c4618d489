package app

import (
	"context"
	"fmt"
	"time"

	billingDomain "github.com/quickcut/backend/internal/billing/domain"
	identityDomain "github.com/quickcut/backend/internal/identity/domain"
)

type seedBarber struct {
	name     string
	contact  string
	shop     string
	location identityDomain.Location
	planID   string
	services []seedService
}

type seedService struct {
	name            string
	priceCents      int64
	durationMinutes int
}

var seedBarbers = []seedBarber{
	{
		name: "Liam Byrne", contact: "liam@sharpfade.ie", shop: "Sharp Fade Dublin", planID: "professional",
		location: identityDomain.Location{Latitude: 53.3498, Longitude: -6.2603},
		services: []seedService{
			{"Skin Fade", 4500, 45},
			{"Classic Cut", 3000, 30},
			{"Beard Trim", 1500, 15},
		},
	},
	{
		name: "Tomasz Nowak", contact: "tomasz@portobellobarbers.ie", shop: "Portobello Barbers", planID: "starter",
		location: identityDomain.Location{Latitude: 53.3459, Longitude: -6.2675},
		services: []seedService{
			{"Cut & Style", 3500, 40},
			{"Hot Towel Shave", 2500, 30},
		},
	},
	{
		name: "Dara O'Sullivan", contact: "dara@northsidecuts.ie", shop: "Northside Cuts", planID: "premium",
		location: identityDomain.Location{Latitude: 53.3505, Longitude: -6.2605},
		services: []seedService{
			{"Full Works", 6000, 60},
			{"Kids Cut", 2000, 20},
		},
	},
}

// Seed loads a development data set: the plan catalog, a handful of
// Dublin barbers on trial subscriptions with service menus, and one
// client account.
func Seed(ctx context.Context, c *Container) error {
	now := time.Now().UTC()

	for _, b := range seedBarbers {
		barber, err := identityDomain.NewBarber(b.name, b.contact, b.shop)
		if err != nil {
			return fmt.Errorf("seed barber %s: %w", b.name, err)
		}
		if err := barber.SetAvailability(true); err != nil {
			return err
		}
		if err := barber.SetShopLocation(b.location); err != nil {
			return err
		}
		for _, s := range b.services {
			if _, err := barber.AddService(s.name, s.priceCents, s.durationMinutes); err != nil {
				return err
			}
		}
		barber.ClearDomainEvents()
		if err := c.Users.Save(ctx, barber); err != nil {
			return fmt.Errorf("save barber %s: %w", b.name, err)
		}

		plan, ok := billingDomain.PlanByID(b.planID)
		if !ok {
			return billingDomain.ErrUnknownPlan
		}
		sub := billingDomain.NewTrialSubscription(barber.ID(), plan, now)
		if err := c.Subscriptions.Upsert(ctx, sub); err != nil {
			return fmt.Errorf("save subscription for %s: %w", b.name, err)
		}

		c.Logger.Info("seeded barber",
			"id", barber.ID(),
			"shop", b.shop,
			"plan", b.planID,
		)
	}

	client, err := identityDomain.NewClient("Aoife Kelly", "aoife@example.com")
	if err != nil {
		return err
	}
	client.ClearDomainEvents()
	if err := c.Users.Save(ctx, client); err != nil {
		return fmt.Errorf("save client: %w", err)
	}
	c.Logger.Info("seeded client", "id", client.ID())

	return nil
}
