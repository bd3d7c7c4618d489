package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/quickcut/backend/internal/billing/application"
	"github.com/quickcut/backend/internal/billing/domain"
)

// BillingHandler serves checkout and payment status endpoints.
type BillingHandler struct {
	payments *application.PaymentService
}

// NewBillingHandler creates a new billing handler.
func NewBillingHandler(payments *application.PaymentService) *BillingHandler {
	return &BillingHandler{payments: payments}
}

type checkoutRequest struct {
	SubjectType string    `json:"subject_type"`
	SubjectID   uuid.UUID `json:"subject_id,omitempty"`
}

// Checkout handles POST /api/v1/payments/checkout.
func (h *BillingHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	user, _ := CurrentUserFromContext(r.Context())

	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.payments.BeginCheckout(r.Context(), application.CheckoutCommand{
		UserID:      user.ID,
		SubjectType: domain.SubjectType(req.SubjectType),
		SubjectID:   req.SubjectID,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUnknownSubject), errors.Is(err, domain.ErrUnknownPlan):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, domain.ErrSubjectNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, domain.ErrProcessorFailure):
			writeError(w, http.StatusServiceUnavailable, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "failed to create checkout session")
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"session_id":   result.SessionID,
		"redirect_url": result.RedirectURL,
	})
}

// PaymentStatus handles GET /api/v1/payments/status/{sessionID}. It
// performs a single reconciling poll against the processor.
func (h *BillingHandler) PaymentStatus(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("sessionID")
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "missing session id")
		return
	}

	status, err := h.payments.PollStatus(r.Context(), sessionID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrIntentNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, domain.ErrProcessorFailure):
			writeError(w, http.StatusServiceUnavailable, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "failed to resolve payment status")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": string(status)})
}
