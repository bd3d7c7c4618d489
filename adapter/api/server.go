// Package api provides the HTTP API for the QuickCut backend.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	identityDomain "github.com/quickcut/backend/internal/identity/domain"
)

// Server is the HTTP API server.
type Server struct {
	mux      *http.ServeMux
	server   *http.Server
	logger   *slog.Logger
	auth     *Authenticator
	bookings *BookingHandler
	billing  *BillingHandler
	identity *IdentityHandler
}

// ServerConfig holds configuration for the API server.
type ServerConfig struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DefaultServerConfig returns the default server configuration.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:         "0.0.0.0:8080",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// NewServer creates a new API server.
func NewServer(
	cfg ServerConfig,
	auth *Authenticator,
	bookings *BookingHandler,
	billing *BillingHandler,
	identity *IdentityHandler,
	logger *slog.Logger,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		mux:      http.NewServeMux(),
		logger:   logger,
		auth:     auth,
		bookings: bookings,
		billing:  billing,
		identity: identity,
	}
	s.registerRoutes()

	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.mux,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return s
}

// registerRoutes sets up the API routes.
func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)

	// Marketplace
	s.mux.HandleFunc("GET /api/v1/barbers/bookable", s.bookings.ListBookableBarbers)

	// Bookings
	s.mux.HandleFunc("POST /api/v1/bookings",
		s.auth.RequireRole(identityDomain.RoleClient, s.bookings.CreateBooking))
	s.mux.HandleFunc("POST /api/v1/bookings/{bookingID}/{action}",
		s.auth.Middleware(s.bookings.TransitionBooking))
	s.mux.HandleFunc("GET /api/v1/bookings",
		s.auth.Middleware(s.bookings.ListBookings))

	// Barber dashboard and availability
	s.mux.HandleFunc("GET /api/v1/barbers/{barberID}/dashboard",
		s.auth.RequireRole(identityDomain.RoleBarber, s.bookings.Dashboard))
	s.mux.HandleFunc("POST /api/v1/availability",
		s.auth.RequireRole(identityDomain.RoleBarber, s.identity.SetAvailability))

	// Payments
	s.mux.HandleFunc("POST /api/v1/payments/checkout",
		s.auth.Middleware(s.billing.Checkout))
	s.mux.HandleFunc("GET /api/v1/payments/status/{sessionID}",
		s.auth.Middleware(s.billing.PaymentStatus))
}

// handleHealth handles health check requests.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// Start starts the API server.
func (s *Server) Start() error {
	s.logger.Info("starting API server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down API server")
	return s.server.Shutdown(ctx)
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode JSON response", "error", err)
		}
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{
		"error":   http.StatusText(status),
		"message": message,
	})
}
