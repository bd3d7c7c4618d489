package queries

import (
	"context"

	"github.com/google/uuid"
	"github.com/quickcut/backend/internal/booking/domain"
)

// ListBookingsHandler serves the client-history and barber-upcoming
// booking lists.
type ListBookingsHandler struct {
	bookings domain.BookingRepository
}

// NewListBookingsHandler creates a new handler.
func NewListBookingsHandler(bookings domain.BookingRepository) *ListBookingsHandler {
	return &ListBookingsHandler{bookings: bookings}
}

// ForClient returns all bookings made by a client, newest first.
func (h *ListBookingsHandler) ForClient(ctx context.Context, clientID uuid.UUID) ([]BookingEntry, error) {
	bookings, err := h.bookings.ListByClient(ctx, clientID)
	if err != nil {
		return nil, err
	}
	return toEntries(bookings), nil
}

// UpcomingForBarber returns a barber's non-terminal future bookings.
func (h *ListBookingsHandler) UpcomingForBarber(ctx context.Context, barberID uuid.UUID) ([]BookingEntry, error) {
	bookings, err := h.bookings.ListUpcomingByBarber(ctx, barberID)
	if err != nil {
		return nil, err
	}
	return toEntries(bookings), nil
}

func toEntries(bookings []*domain.Booking) []BookingEntry {
	entries := make([]BookingEntry, 0, len(bookings))
	for _, b := range bookings {
		entries = append(entries, BookingEntry{
			ID:            b.ID(),
			ClientID:      b.ClientID(),
			ServiceName:   b.Service().Name,
			PriceCents:    b.Service().PriceCents,
			ScheduledTime: b.ScheduledTime(),
			Status:        b.Status(),
		})
	}
	return entries
}
