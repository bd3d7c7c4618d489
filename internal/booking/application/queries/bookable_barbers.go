package queries

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/quickcut/backend/internal/availability"
	billingDomain "github.com/quickcut/backend/internal/billing/domain"
	identityDomain "github.com/quickcut/backend/internal/identity/domain"
)

// BarberSummary is the listing shape shown to clients.
type BarberSummary struct {
	ID         uuid.UUID        `json:"id"`
	Name       string           `json:"name"`
	ShopName   string           `json:"shop_name"`
	Latitude   float64          `json:"latitude"`
	Longitude  float64          `json:"longitude"`
	DistanceKm *float64         `json:"distance_km,omitempty"`
	Services   []ServiceSummary `json:"services"`
}

// ServiceSummary is one menu entry in a barber listing.
type ServiceSummary struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	PriceCents      int64     `json:"price_cents"`
	DurationMinutes int       `json:"duration_minutes"`
}

// GeoFilter narrows a listing to shops within RadiusKm of the client.
type GeoFilter struct {
	Latitude  float64
	Longitude float64
	RadiusKm  float64
}

// ListBookableBarbersQuery carries the optional geo filter. A nil Near
// lists every bookable barber regardless of location.
type ListBookableBarbersQuery struct {
	Near *GeoFilter
}

// ListBookableBarbersHandler returns barbers that pass the availability
// gate at query time.
type ListBookableBarbersHandler struct {
	users         identityDomain.UserRepository
	subscriptions billingDomain.SubscriptionRepository
	gate          availability.Gate
}

// NewListBookableBarbersHandler creates a new handler.
func NewListBookableBarbersHandler(
	users identityDomain.UserRepository,
	subscriptions billingDomain.SubscriptionRepository,
	gate availability.Gate,
) *ListBookableBarbersHandler {
	return &ListBookableBarbersHandler{
		users:         users,
		subscriptions: subscriptions,
		gate:          gate,
	}
}

// Handle lists the currently bookable barbers. With a geo filter the
// list is limited to shops with a published location inside the radius,
// nearest first.
func (h *ListBookableBarbersHandler) Handle(ctx context.Context, query ListBookableBarbersQuery) ([]BarberSummary, error) {
	now := time.Now().UTC()

	barbers, err := h.users.ListBarbers(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]BarberSummary, 0, len(barbers))
	for _, barber := range barbers {
		sub, err := h.subscriptions.FindByUserID(ctx, barber.ID())
		if err != nil {
			return nil, err
		}
		if !h.gate.Bookable(barber, sub, now) {
			continue
		}

		summary := BarberSummary{
			ID:        barber.ID(),
			Name:      barber.Name(),
			ShopName:  barber.ShopName(),
			Latitude:  barber.Location().Latitude,
			Longitude: barber.Location().Longitude,
		}

		if query.Near != nil {
			loc := barber.Location()
			if loc.IsZero() {
				continue
			}
			distance := loc.DistanceKm(identityDomain.Location{
				Latitude:  query.Near.Latitude,
				Longitude: query.Near.Longitude,
			})
			if distance > query.Near.RadiusKm {
				continue
			}
			summary.DistanceKm = &distance
		}

		services := make([]ServiceSummary, 0, len(barber.Services()))
		for _, s := range barber.Services() {
			services = append(services, ServiceSummary{
				ID:              s.ID,
				Name:            s.Name,
				PriceCents:      s.PriceCents,
				DurationMinutes: s.DurationMinutes,
			})
		}
		summary.Services = services

		summaries = append(summaries, summary)
	}

	if query.Near != nil {
		sort.SliceStable(summaries, func(i, j int) bool {
			return *summaries[i].DistanceKm < *summaries[j].DistanceKm
		})
	}

	return summaries, nil
}
