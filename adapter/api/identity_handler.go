package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/quickcut/backend/internal/identity/application/commands"
	"github.com/quickcut/backend/internal/identity/domain"
)

// IdentityHandler serves identity endpoints.
type IdentityHandler struct {
	setAvailability *commands.SetAvailabilityHandler
}

// NewIdentityHandler creates a new identity handler.
func NewIdentityHandler(setAvailability *commands.SetAvailabilityHandler) *IdentityHandler {
	return &IdentityHandler{setAvailability: setAvailability}
}

type setAvailabilityRequest struct {
	Available bool `json:"available"`
}

// SetAvailability handles POST /api/v1/availability.
func (h *IdentityHandler) SetAvailability(w http.ResponseWriter, r *http.Request) {
	user, _ := CurrentUserFromContext(r.Context())

	var req setAvailabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	available, err := h.setAvailability.Handle(r.Context(), commands.SetAvailabilityCommand{
		BarberID:  user.ID,
		Available: req.Available,
	})
	if err != nil {
		switch {
		case errors.Is(err, commands.ErrUserNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, domain.ErrNotABarber):
			writeError(w, http.StatusForbidden, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "failed to update availability")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"is_available": available})
}
