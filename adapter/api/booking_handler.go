package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/quickcut/backend/internal/booking/application/commands"
	"github.com/quickcut/backend/internal/booking/application/queries"
	"github.com/quickcut/backend/internal/booking/domain"
	identityDomain "github.com/quickcut/backend/internal/identity/domain"
)

// BookingHandler serves booking and dashboard endpoints.
type BookingHandler struct {
	createBooking     *commands.CreateBookingHandler
	transitionBooking *commands.TransitionBookingHandler
	bookableBarbers   *queries.ListBookableBarbersHandler
	dashboard         *queries.DashboardSummaryHandler
	listBookings      *queries.ListBookingsHandler
}

// NewBookingHandler creates a new booking handler.
func NewBookingHandler(
	createBooking *commands.CreateBookingHandler,
	transitionBooking *commands.TransitionBookingHandler,
	bookableBarbers *queries.ListBookableBarbersHandler,
	dashboard *queries.DashboardSummaryHandler,
	listBookings *queries.ListBookingsHandler,
) *BookingHandler {
	return &BookingHandler{
		createBooking:     createBooking,
		transitionBooking: transitionBooking,
		bookableBarbers:   bookableBarbers,
		dashboard:         dashboard,
		listBookings:      listBookings,
	}
}

const defaultSearchRadiusKm = 5.0

// ListBookableBarbers handles GET /api/v1/barbers/bookable. Optional
// lat/lng query parameters narrow the listing to nearby shops.
func (h *BookingHandler) ListBookableBarbers(w http.ResponseWriter, r *http.Request) {
	query, err := parseBarberSearch(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	barbers, err := h.bookableBarbers.Handle(r.Context(), query)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list barbers")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"barbers": barbers})
}

func parseBarberSearch(r *http.Request) (queries.ListBookableBarbersQuery, error) {
	rawLat := r.URL.Query().Get("lat")
	rawLng := r.URL.Query().Get("lng")
	if rawLat == "" && rawLng == "" {
		return queries.ListBookableBarbersQuery{}, nil
	}

	lat, err := strconv.ParseFloat(rawLat, 64)
	if err != nil {
		return queries.ListBookableBarbersQuery{}, errors.New("invalid lat")
	}
	lng, err := strconv.ParseFloat(rawLng, 64)
	if err != nil {
		return queries.ListBookableBarbersQuery{}, errors.New("invalid lng")
	}

	radius := defaultSearchRadiusKm
	if raw := r.URL.Query().Get("radius_km"); raw != "" {
		radius, err = strconv.ParseFloat(raw, 64)
		if err != nil || radius <= 0 {
			return queries.ListBookableBarbersQuery{}, errors.New("invalid radius_km")
		}
	}

	return queries.ListBookableBarbersQuery{
		Near: &queries.GeoFilter{Latitude: lat, Longitude: lng, RadiusKm: radius},
	}, nil
}

type createBookingRequest struct {
	BarberID      uuid.UUID `json:"barber_id"`
	ServiceID     uuid.UUID `json:"service_id"`
	ScheduledTime time.Time `json:"scheduled_time"`
}

// CreateBooking handles POST /api/v1/bookings.
func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	user, _ := CurrentUserFromContext(r.Context())

	var req createBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	bookingID, err := h.createBooking.Handle(r.Context(), commands.CreateBookingCommand{
		ClientID:      user.ID,
		BarberID:      req.BarberID,
		ServiceID:     req.ServiceID,
		ScheduledTime: req.ScheduledTime,
	})
	if err != nil {
		switch {
		case errors.Is(err, commands.ErrBarberNotFound),
			errors.Is(err, identityDomain.ErrServiceNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, commands.ErrBarberUnavailable):
			writeError(w, http.StatusConflict, err.Error())
		case errors.Is(err, domain.ErrInvalidSchedule):
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "failed to create booking")
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"booking_id": bookingID.String()})
}

// TransitionBooking handles POST /api/v1/bookings/{bookingID}/{action}.
func (h *BookingHandler) TransitionBooking(w http.ResponseWriter, r *http.Request) {
	user, _ := CurrentUserFromContext(r.Context())

	bookingID, err := uuid.Parse(r.PathValue("bookingID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid booking id")
		return
	}

	result, err := h.transitionBooking.Handle(r.Context(), commands.TransitionBookingCommand{
		BookingID: bookingID,
		ActorID:   user.ID,
		Action:    commands.TransitionAction(r.PathValue("action")),
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrBookingNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, commands.ErrUnknownAction):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, domain.ErrNotAuthorized):
			writeError(w, http.StatusForbidden, err.Error())
		case errors.Is(err, domain.ErrInvalidTransition):
			writeJSON(w, http.StatusConflict, map[string]string{
				"error":   http.StatusText(http.StatusConflict),
				"message": err.Error(),
				"status":  string(result.Status),
			})
		default:
			writeError(w, http.StatusInternalServerError, "failed to transition booking")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": string(result.Status)})
}

// ListBookings handles GET /api/v1/bookings. Clients get their history,
// barbers their upcoming schedule.
func (h *BookingHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
	user, _ := CurrentUserFromContext(r.Context())

	var (
		bookings []queries.BookingEntry
		err      error
	)
	if user.Role == identityDomain.RoleBarber {
		bookings, err = h.listBookings.UpcomingForBarber(r.Context(), user.ID)
	} else {
		bookings, err = h.listBookings.ForClient(r.Context(), user.ID)
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list bookings")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"bookings": bookings})
}

// Dashboard handles GET /api/v1/barbers/{barberID}/dashboard.
func (h *BookingHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	user, _ := CurrentUserFromContext(r.Context())

	barberID, err := uuid.Parse(r.PathValue("barberID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid barber id")
		return
	}
	if barberID != user.ID {
		writeError(w, http.StatusForbidden, "dashboard is only visible to its owner")
		return
	}

	date := time.Now().UTC()
	if raw := r.URL.Query().Get("date"); raw != "" {
		date, err = time.Parse("2006-01-02", raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
			return
		}
	}

	summary, err := h.dashboard.Handle(r.Context(), queries.DashboardSummaryQuery{
		BarberID: barberID,
		Date:     date,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to compute dashboard")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
