package queries

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/quickcut/backend/internal/availability"
	billingDomain "github.com/quickcut/backend/internal/billing/domain"
	identityDomain "github.com/quickcut/backend/internal/identity/domain"
)

type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) Save(ctx context.Context, user *identityDomain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identityDomain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identityDomain.User), args.Error(1)
}

func (m *mockUserRepository) ListBarbers(ctx context.Context) ([]*identityDomain.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*identityDomain.User), args.Error(1)
}

func (m *mockUserRepository) SetAvailability(ctx context.Context, barberID uuid.UUID, available bool) error {
	args := m.Called(ctx, barberID, available)
	return args.Error(0)
}

type mockSubscriptionRepository struct {
	mock.Mock
}

func (m *mockSubscriptionRepository) Upsert(ctx context.Context, sub *billingDomain.Subscription) error {
	args := m.Called(ctx, sub)
	return args.Error(0)
}

func (m *mockSubscriptionRepository) FindByID(ctx context.Context, id uuid.UUID) (*billingDomain.Subscription, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billingDomain.Subscription), args.Error(1)
}

func (m *mockSubscriptionRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*billingDomain.Subscription, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billingDomain.Subscription), args.Error(1)
}

func (m *mockSubscriptionRepository) ListLapsed(ctx context.Context, now time.Time) ([]*billingDomain.Subscription, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*billingDomain.Subscription), args.Error(1)
}

func newBarberWithMenu(t *testing.T, name, shop string, available bool) *identityDomain.User {
	t.Helper()

	barber, err := identityDomain.NewBarber(name, name+"@example.com", shop)
	require.NoError(t, err)
	if available {
		require.NoError(t, barber.SetAvailability(true))
	}
	_, err = barber.AddService("Skin Fade", 4500, 45)
	require.NoError(t, err)
	barber.ClearDomainEvents()
	return barber
}

func activeTrial(userID uuid.UUID, now time.Time) *billingDomain.Subscription {
	plan, _ := billingDomain.PlanByID("professional")
	return billingDomain.NewTrialSubscription(userID, plan, now)
}

func TestListBookableBarbers(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()

	t.Run("lists only barbers passing the gate", func(t *testing.T) {
		bookable := newBarberWithMenu(t, "Liam Byrne", "Sharp Fade", true)
		toggledOff := newBarberWithMenu(t, "Tomasz Nowak", "Portobello Barbers", false)
		unsubscribed := newBarberWithMenu(t, "Dara O'Sullivan", "Northside Cuts", true)

		users := new(mockUserRepository)
		subs := new(mockSubscriptionRepository)
		users.On("ListBarbers", ctx).
			Return([]*identityDomain.User{bookable, toggledOff, unsubscribed}, nil)
		subs.On("FindByUserID", ctx, bookable.ID()).Return(activeTrial(bookable.ID(), now), nil)
		subs.On("FindByUserID", ctx, toggledOff.ID()).Return(activeTrial(toggledOff.ID(), now), nil)
		subs.On("FindByUserID", ctx, unsubscribed.ID()).Return(nil, nil)

		handler := NewListBookableBarbersHandler(users, subs, availability.NewGate())
		listed, err := handler.Handle(ctx, ListBookableBarbersQuery{})
		require.NoError(t, err)

		require.Len(t, listed, 1)
		assert.Equal(t, bookable.ID(), listed[0].ID)
		assert.Equal(t, "Liam Byrne", listed[0].Name)
		assert.Equal(t, "Sharp Fade", listed[0].ShopName)
		require.Len(t, listed[0].Services, 1)
		assert.Equal(t, "Skin Fade", listed[0].Services[0].Name)
		assert.Equal(t, int64(4500), listed[0].Services[0].PriceCents)
	})

	t.Run("expired trials drop out without any write", func(t *testing.T) {
		barber := newBarberWithMenu(t, "Liam Byrne", "Sharp Fade", true)
		stale := activeTrial(barber.ID(), now.Add(-90*24*time.Hour))

		users := new(mockUserRepository)
		subs := new(mockSubscriptionRepository)
		users.On("ListBarbers", ctx).Return([]*identityDomain.User{barber}, nil)
		subs.On("FindByUserID", ctx, barber.ID()).Return(stale, nil)

		handler := NewListBookableBarbersHandler(users, subs, availability.NewGate())
		listed, err := handler.Handle(ctx, ListBookableBarbersQuery{})
		require.NoError(t, err)

		assert.Empty(t, listed)
		assert.Equal(t, billingDomain.SubscriptionTrial, stale.Status)
		subs.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
	})

	t.Run("no barbers yields an empty list", func(t *testing.T) {
		users := new(mockUserRepository)
		subs := new(mockSubscriptionRepository)
		users.On("ListBarbers", ctx).Return(nil, nil)

		handler := NewListBookableBarbersHandler(users, subs, availability.NewGate())
		listed, err := handler.Handle(ctx, ListBookableBarbersQuery{})
		require.NoError(t, err)
		assert.Empty(t, listed)
	})

	t.Run("geo filter keeps nearby shops, nearest first", func(t *testing.T) {
		grafton := newBarberWithMenu(t, "Liam Byrne", "Sharp Fade", true)
		require.NoError(t, grafton.SetShopLocation(identityDomain.Location{Latitude: 53.3498, Longitude: -6.2603}))
		templeBar := newBarberWithMenu(t, "Tomasz Nowak", "Portobello Barbers", true)
		require.NoError(t, templeBar.SetShopLocation(identityDomain.Location{Latitude: 53.3459, Longitude: -6.2675}))
		// Howth is well outside a 5km radius of the city centre.
		howth := newBarberWithMenu(t, "Dara O'Sullivan", "Howth Harbour Cuts", true)
		require.NoError(t, howth.SetShopLocation(identityDomain.Location{Latitude: 53.3871, Longitude: -6.0650}))
		unlocated := newBarberWithMenu(t, "Sean Walsh", "Pop-up Chair", true)

		users := new(mockUserRepository)
		subs := new(mockSubscriptionRepository)
		users.On("ListBarbers", ctx).
			Return([]*identityDomain.User{grafton, templeBar, howth, unlocated}, nil)
		for _, b := range []*identityDomain.User{grafton, templeBar, howth, unlocated} {
			subs.On("FindByUserID", ctx, b.ID()).Return(activeTrial(b.ID(), now), nil)
		}

		handler := NewListBookableBarbersHandler(users, subs, availability.NewGate())
		// Query from Temple Bar; the Temple Bar shop should sort first.
		listed, err := handler.Handle(ctx, ListBookableBarbersQuery{
			Near: &GeoFilter{Latitude: 53.3455, Longitude: -6.2672, RadiusKm: 5},
		})
		require.NoError(t, err)

		require.Len(t, listed, 2)
		assert.Equal(t, templeBar.ID(), listed[0].ID)
		assert.Equal(t, grafton.ID(), listed[1].ID)
		require.NotNil(t, listed[0].DistanceKm)
		require.NotNil(t, listed[1].DistanceKm)
		assert.Less(t, *listed[0].DistanceKm, *listed[1].DistanceKm)
		assert.Less(t, *listed[1].DistanceKm, 5.0)
	})
}
