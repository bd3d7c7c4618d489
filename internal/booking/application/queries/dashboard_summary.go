package queries

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/quickcut/backend/internal/booking/domain"
)

// DashboardSummary is the per-barber, per-date view backing the
// barber dashboard.
type DashboardSummary struct {
	BarberID      uuid.UUID      `json:"barber_id"`
	Date          string         `json:"date"`
	EarningsCents int64          `json:"earnings_cents"`
	ClientCount   int            `json:"client_count"`
	PendingCount  int            `json:"pending_count"`
	Bookings      []BookingEntry `json:"bookings"`
}

// BookingEntry is one booking row inside a dashboard summary.
type BookingEntry struct {
	ID            uuid.UUID     `json:"id"`
	ClientID      uuid.UUID     `json:"client_id"`
	ServiceName   string        `json:"service_name"`
	PriceCents    int64         `json:"price_cents"`
	ScheduledTime time.Time     `json:"scheduled_time"`
	Status        domain.Status `json:"status"`
}

// SummaryCache caches computed summaries keyed by barber and date.
// Implementations must tolerate being nil-checked by callers; cache
// failures never fail the query.
type SummaryCache interface {
	Get(ctx context.Context, barberID uuid.UUID, date string) (*DashboardSummary, bool)
	Set(ctx context.Context, summary *DashboardSummary)
}

// DashboardSummaryQuery identifies one barber-day.
type DashboardSummaryQuery struct {
	BarberID uuid.UUID
	Date     time.Time
}

// DashboardSummaryHandler computes the daily summary for a barber.
type DashboardSummaryHandler struct {
	bookings domain.BookingRepository
	cache    SummaryCache
	logger   *slog.Logger
}

// NewDashboardSummaryHandler creates a new handler. cache may be nil.
func NewDashboardSummaryHandler(
	bookings domain.BookingRepository,
	cache SummaryCache,
	logger *slog.Logger,
) *DashboardSummaryHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &DashboardSummaryHandler{
		bookings: bookings,
		cache:    cache,
		logger:   logger,
	}
}

// Handle returns the summary for the given barber and calendar date.
func (h *DashboardSummaryHandler) Handle(ctx context.Context, query DashboardSummaryQuery) (*DashboardSummary, error) {
	date := query.Date.UTC().Format("2006-01-02")

	if h.cache != nil {
		if cached, ok := h.cache.Get(ctx, query.BarberID, date); ok {
			return cached, nil
		}
	}

	bookings, err := h.bookings.ListByBarberAndDate(ctx, query.BarberID, query.Date)
	if err != nil {
		return nil, err
	}

	summary := Summarize(query.BarberID, date, bookings)

	if h.cache != nil {
		h.cache.Set(ctx, summary)
	}

	return summary, nil
}

// Summarize reduces a barber's bookings for one date into a summary.
// Earnings count only completed bookings; client count spans confirmed
// and completed; cancelled bookings appear in the list but contribute
// to no counter.
func Summarize(barberID uuid.UUID, date string, bookings []*domain.Booking) *DashboardSummary {
	summary := &DashboardSummary{
		BarberID: barberID,
		Date:     date,
		Bookings: make([]BookingEntry, 0, len(bookings)),
	}

	clients := make(map[uuid.UUID]struct{})
	for _, b := range bookings {
		switch b.Status() {
		case domain.StatusCompleted:
			summary.EarningsCents += b.Service().PriceCents
			clients[b.ClientID()] = struct{}{}
		case domain.StatusConfirmed:
			clients[b.ClientID()] = struct{}{}
		case domain.StatusPending:
			summary.PendingCount++
		}

		summary.Bookings = append(summary.Bookings, BookingEntry{
			ID:            b.ID(),
			ClientID:      b.ClientID(),
			ServiceName:   b.Service().Name,
			PriceCents:    b.Service().PriceCents,
			ScheduledTime: b.ScheduledTime(),
			Status:        b.Status(),
		})
	}
	summary.ClientCount = len(clients)

	return summary
}
