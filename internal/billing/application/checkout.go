// Package application implements billing use cases: checkout session
// creation, payment status polling, reconciliation of indeterminate
// payments, and trial expiry sweeps.
package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/quickcut/backend/internal/billing/domain"
	sharedApplication "github.com/quickcut/backend/internal/shared/application"
	"github.com/quickcut/backend/internal/shared/infrastructure/outbox"
)

// CheckoutCommand requests a hosted checkout session for a payable
// subject. For subscriptions the subject is resolved from the user's
// own subscription; SubjectID names the enrollment otherwise.
type CheckoutCommand struct {
	UserID      uuid.UUID
	SubjectType domain.SubjectType
	SubjectID   uuid.UUID
}

// CheckoutResult carries the session handle back to the caller.
type CheckoutResult struct {
	SessionID   string
	RedirectURL string
}

// PaymentService owns the payment-intent lifecycle from checkout to
// reconciliation. Subject state (subscription, enrollment) is only ever
// mutated after the intent's compare-and-swap to paid succeeds, so a
// payment activates its subject exactly once no matter how many pollers
// observe it.
type PaymentService struct {
	processor     domain.Processor
	intents       domain.PaymentIntentRepository
	subscriptions domain.SubscriptionRepository
	enrollments   domain.EnrollmentRepository
	outboxRepo    outbox.Repository
	uow           sharedApplication.UnitOfWork
	logger        *slog.Logger

	pollInterval    time.Duration
	pollMaxAttempts int
}

// NewPaymentService creates the billing payment service.
func NewPaymentService(
	processor domain.Processor,
	intents domain.PaymentIntentRepository,
	subscriptions domain.SubscriptionRepository,
	enrollments domain.EnrollmentRepository,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
	logger *slog.Logger,
	pollInterval time.Duration,
	pollMaxAttempts int,
) *PaymentService {
	if logger == nil {
		logger = slog.Default()
	}
	if pollInterval <= 0 {
		pollInterval = 2 * time.Second
	}
	if pollMaxAttempts <= 0 {
		pollMaxAttempts = 5
	}
	return &PaymentService{
		processor:       processor,
		intents:         intents,
		subscriptions:   subscriptions,
		enrollments:     enrollments,
		outboxRepo:      outboxRepo,
		uow:             uow,
		logger:          logger,
		pollInterval:    pollInterval,
		pollMaxAttempts: pollMaxAttempts,
	}
}

// BeginCheckout creates a processor session and records an open intent.
// The subject itself is untouched until the payment is confirmed.
func (s *PaymentService) BeginCheckout(ctx context.Context, cmd CheckoutCommand) (*CheckoutResult, error) {
	subjectID, req, err := s.buildCheckoutRequest(ctx, cmd)
	if err != nil {
		return nil, err
	}

	session, err := s.processor.CreateSession(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}

	intent := domain.NewPaymentIntent(session.SessionID, cmd.SubjectType, subjectID, time.Now().UTC())
	if err := s.intents.Save(ctx, intent); err != nil {
		return nil, fmt.Errorf("save payment intent: %w", err)
	}

	s.logger.Info("checkout session created",
		"session_id", session.SessionID,
		"subject_type", cmd.SubjectType,
		"subject_id", subjectID,
	)

	return &CheckoutResult{SessionID: session.SessionID, RedirectURL: session.RedirectURL}, nil
}

func (s *PaymentService) buildCheckoutRequest(ctx context.Context, cmd CheckoutCommand) (uuid.UUID, domain.CheckoutRequest, error) {
	switch cmd.SubjectType {
	case domain.SubjectSubscription:
		sub, err := s.subscriptions.FindByUserID(ctx, cmd.UserID)
		if err != nil {
			return uuid.Nil, domain.CheckoutRequest{}, err
		}
		if sub == nil {
			return uuid.Nil, domain.CheckoutRequest{}, domain.ErrSubjectNotFound
		}
		plan, ok := domain.PlanByID(sub.PlanID)
		if !ok {
			return uuid.Nil, domain.CheckoutRequest{}, domain.ErrUnknownPlan
		}
		return sub.ID, domain.CheckoutRequest{
			SubjectType: cmd.SubjectType,
			Reference:   sub.ID.String(),
			Description: fmt.Sprintf("QuickCut %s plan", plan.Name),
			AmountCents: plan.PriceCents,
		}, nil

	case domain.SubjectEnrollment:
		enrollment, err := s.enrollments.FindByID(ctx, cmd.SubjectID)
		if err != nil {
			return uuid.Nil, domain.CheckoutRequest{}, err
		}
		if enrollment == nil {
			return uuid.Nil, domain.CheckoutRequest{}, domain.ErrSubjectNotFound
		}
		return enrollment.ID, domain.CheckoutRequest{
			SubjectType: cmd.SubjectType,
			Reference:   enrollment.ID.String(),
			Description: fmt.Sprintf("Enrollment deposit: %s", enrollment.CourseName),
			AmountCents: enrollment.PriceCents,
		}, nil

	default:
		return uuid.Nil, domain.CheckoutRequest{}, domain.ErrUnknownSubject
	}
}
