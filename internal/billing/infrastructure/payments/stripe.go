// Package payments adapts the Stripe hosted checkout API to the billing
// Processor port.
package payments

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"

	"github.com/quickcut/backend/internal/billing/domain"
)

// Config holds the Stripe adapter configuration.
type Config struct {
	APIKey     string
	SuccessURL string
	CancelURL  string
	Currency   string
}

// StripeProcessor implements domain.Processor against Stripe Checkout.
// All processor calls run behind a circuit breaker so a Stripe outage
// fails fast instead of stacking up blocked pollers.
type StripeProcessor struct {
	config  Config
	breaker *gobreaker.CircuitBreaker[any]
	logger  *slog.Logger
}

// NewStripeProcessor creates the adapter and installs the API key.
func NewStripeProcessor(config Config, logger *slog.Logger) *StripeProcessor {
	if logger == nil {
		logger = slog.Default()
	}
	if config.Currency == "" {
		config.Currency = "eur"
	}
	stripe.Key = config.APIKey

	settings := gobreaker.Settings{
		Name:        "stripe",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info("circuit breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	}

	return &StripeProcessor{
		config:  config,
		breaker: gobreaker.NewCircuitBreaker[any](settings),
		logger:  logger,
	}
}

// CreateSession opens a hosted checkout session for a one-off charge.
func (p *StripeProcessor) CreateSession(ctx context.Context, req domain.CheckoutRequest) (domain.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(p.config.SuccessURL),
		CancelURL:         stripe.String(p.config.CancelURL),
		ClientReferenceID: stripe.String(req.Reference),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(p.config.Currency),
					UnitAmount: stripe.Int64(req.AmountCents),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(req.Description),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
	}
	params.Context = ctx

	result, err := p.execute(func() (any, error) {
		return session.New(params)
	})
	if err != nil {
		return domain.CheckoutSession{}, err
	}

	s := result.(*stripe.CheckoutSession)
	return domain.CheckoutSession{SessionID: s.ID, RedirectURL: s.URL}, nil
}

// GetSessionState fetches the session and maps Stripe's status pair to
// the domain's three-valued state.
func (p *StripeProcessor) GetSessionState(ctx context.Context, sessionID string) (domain.SessionState, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	result, err := p.execute(func() (any, error) {
		return session.Get(sessionID, params)
	})
	if err != nil {
		return "", err
	}

	s := result.(*stripe.CheckoutSession)
	switch {
	case s.Status == stripe.CheckoutSessionStatusComplete && s.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid:
		return domain.SessionPaid, nil
	case s.Status == stripe.CheckoutSessionStatusExpired:
		return domain.SessionExpired, nil
	default:
		return domain.SessionOpen, nil
	}
}

func (p *StripeProcessor) execute(fn func() (any, error)) (any, error) {
	result, err := p.breaker.Execute(fn)
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", domain.ErrProcessorFailure, err)
		}
		return nil, err
	}
	return result, nil
}
