package domain

import (
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
	sharedDomain "github.com/quickcut/backend/internal/shared/domain"
)

var (
	ErrNotABarber      = errors.New("user is not a barber")
	ErrServiceNotFound = errors.New("service not found")
	ErrEmptyName       = errors.New("name must not be empty")
)

// Role distinguishes the two kinds of accounts.
type Role string

const (
	RoleClient Role = "client"
	RoleBarber Role = "barber"
)

// Location is a shop's coordinates. The zero value means the barber has
// not published a location.
type Location struct {
	Latitude  float64
	Longitude float64
}

// IsZero reports whether no location has been published.
func (l Location) IsZero() bool {
	return l.Latitude == 0 && l.Longitude == 0
}

const earthRadiusKm = 6371.0

// DistanceKm returns the great-circle distance to another location.
func (l Location) DistanceKm(other Location) float64 {
	lat1 := l.Latitude * math.Pi / 180
	lat2 := other.Latitude * math.Pi / 180
	dLat := lat2 - lat1
	dLng := (other.Longitude - l.Longitude) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(a))
}

// ServiceOffering is one entry in a barber's service menu.
type ServiceOffering struct {
	ID              uuid.UUID
	Name            string
	PriceCents      int64
	DurationMinutes int
}

// User represents a client or barber account. Authentication lives in an
// external identity service; this aggregate only carries the profile
// state the booking domain depends on.
type User struct {
	sharedDomain.BaseAggregateRoot
	role        Role
	name        string
	contact     string
	shopName    string
	location    Location
	isAvailable bool
	services    []ServiceOffering
}

// NewClient creates a new client account.
func NewClient(name, contact string) (*User, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	return &User{
		BaseAggregateRoot: sharedDomain.NewBaseAggregateRoot(),
		role:              RoleClient,
		name:              name,
		contact:           contact,
	}, nil
}

// NewBarber creates a new barber account. New barbers start offline.
func NewBarber(name, contact, shopName string) (*User, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	return &User{
		BaseAggregateRoot: sharedDomain.NewBaseAggregateRoot(),
		role:              RoleBarber,
		name:              name,
		contact:           contact,
		shopName:          shopName,
		isAvailable:       false,
	}, nil
}

// Getters
func (u *User) Role() Role                  { return u.role }
func (u *User) Name() string                { return u.name }
func (u *User) Contact() string             { return u.contact }
func (u *User) ShopName() string            { return u.shopName }
func (u *User) Location() Location          { return u.location }
func (u *User) IsAvailable() bool           { return u.isAvailable }
func (u *User) Services() []ServiceOffering { return u.services }
func (u *User) IsBarber() bool              { return u.role == RoleBarber }

// SetShopLocation publishes the barber's shop coordinates.
func (u *User) SetShopLocation(location Location) error {
	if !u.IsBarber() {
		return ErrNotABarber
	}
	u.location = location
	u.Touch()
	return nil
}

// SetAvailability flips the barber's availability toggle. The flag is
// owned exclusively by the barber; concurrent writes are last-write-wins.
func (u *User) SetAvailability(available bool) error {
	if !u.IsBarber() {
		return ErrNotABarber
	}
	if u.isAvailable == available {
		return nil
	}
	u.isAvailable = available
	u.Touch()
	u.AddDomainEvent(NewAvailabilityChanged(u.ID(), available))
	return nil
}

// AddService appends an offering to the barber's menu.
func (u *User) AddService(name string, priceCents int64, durationMinutes int) (ServiceOffering, error) {
	if !u.IsBarber() {
		return ServiceOffering{}, ErrNotABarber
	}
	offering := ServiceOffering{
		ID:              uuid.New(),
		Name:            name,
		PriceCents:      priceCents,
		DurationMinutes: durationMinutes,
	}
	u.services = append(u.services, offering)
	u.Touch()
	return offering, nil
}

// ServiceByID looks up an offering on the barber's menu.
func (u *User) ServiceByID(id uuid.UUID) (ServiceOffering, error) {
	for _, s := range u.services {
		if s.ID == id {
			return s, nil
		}
	}
	return ServiceOffering{}, ErrServiceNotFound
}

// RehydrateUser recreates a user from persisted state.
func RehydrateUser(
	id uuid.UUID,
	role Role,
	name, contact, shopName string,
	location Location,
	isAvailable bool,
	services []ServiceOffering,
	createdAt, updatedAt time.Time,
) *User {
	return &User{
		BaseAggregateRoot: sharedDomain.RehydrateBaseAggregateRoot(sharedDomain.RehydrateBaseEntity(id, createdAt, updatedAt)),
		role:              role,
		name:              name,
		contact:           contact,
		shopName:          shopName,
		location:          location,
		isAvailable:       isAvailable,
		services:          services,
	}
}
