package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/quickcut/backend/internal/billing/domain"
	sharedApplication "github.com/quickcut/backend/internal/shared/application"
	sharedDomain "github.com/quickcut/backend/internal/shared/domain"
	"github.com/quickcut/backend/internal/shared/infrastructure/outbox"

	"github.com/google/uuid"
)

// PollStatus asks the processor for the session's state and reconciles
// the local intent against it. Safe to call concurrently and after the
// intent is already settled: the compare-and-swap inside confirm makes
// the paid transition exactly-once.
func (s *PaymentService) PollStatus(ctx context.Context, sessionID string) (domain.IntentStatus, error) {
	intent, err := s.intents.FindBySessionID(ctx, sessionID)
	if err != nil {
		return "", err
	}
	if intent == nil {
		return "", domain.ErrIntentNotFound
	}
	if intent.IsTerminal() {
		return intent.Status, nil
	}

	state, err := s.processor.GetSessionState(ctx, sessionID)
	if err != nil {
		return "", fmt.Errorf("get session state: %w", err)
	}

	switch state {
	case domain.SessionPaid:
		if err := s.confirm(ctx, intent); err != nil {
			return "", err
		}
		return domain.IntentPaid, nil

	case domain.SessionExpired:
		if _, err := s.intents.TransitionStatus(ctx, sessionID, intent.Status, domain.IntentExpired); err != nil {
			return "", err
		}
		return domain.IntentExpired, nil

	default:
		return intent.Status, nil
	}
}

// PollUntilSettled polls the processor on a fixed interval until the
// session settles or the attempt budget runs out. An exhausted budget
// marks the intent indeterminate for the reconciliation sweep. It never
// assumes success.
func (s *PaymentService) PollUntilSettled(ctx context.Context, sessionID string) (domain.IntentStatus, error) {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for attempt := 1; attempt <= s.pollMaxAttempts; attempt++ {
		status, err := s.PollStatus(ctx, sessionID)
		if err != nil {
			if errors.Is(err, domain.ErrIntentNotFound) {
				return "", err
			}
			s.logger.Warn("payment poll attempt failed",
				"session_id", sessionID,
				"attempt", attempt,
				"error", err,
			)
		} else if status == domain.IntentPaid || status == domain.IntentExpired {
			return status, nil
		}

		if attempt == s.pollMaxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return s.markIndeterminate(context.WithoutCancel(ctx), sessionID)
		case <-ticker.C:
		}
	}

	return s.markIndeterminate(ctx, sessionID)
}

func (s *PaymentService) markIndeterminate(ctx context.Context, sessionID string) (domain.IntentStatus, error) {
	swapped, err := s.intents.TransitionStatus(ctx, sessionID, domain.IntentOpen, domain.IntentIndeterminate)
	if err != nil {
		return "", err
	}
	if !swapped {
		// Someone else settled or parked it; report the stored state.
		intent, err := s.intents.FindBySessionID(ctx, sessionID)
		if err != nil {
			return "", err
		}
		if intent == nil {
			return "", domain.ErrIntentNotFound
		}
		return intent.Status, nil
	}

	s.logger.Warn("payment intent parked as indeterminate", "session_id", sessionID)
	return domain.IntentIndeterminate, nil
}

// ResolveIndeterminate re-polls every indeterminate intent against the
// processor's authoritative record. Run periodically by the worker.
func (s *PaymentService) ResolveIndeterminate(ctx context.Context) error {
	intents, err := s.intents.ListByStatus(ctx, domain.IntentIndeterminate)
	if err != nil {
		return err
	}

	for _, intent := range intents {
		status, err := s.PollStatus(ctx, intent.SessionID)
		if err != nil {
			s.logger.Warn("indeterminate intent still unresolved",
				"session_id", intent.SessionID,
				"error", err,
			)
			continue
		}
		if status != domain.IntentIndeterminate {
			s.logger.Info("indeterminate intent resolved",
				"session_id", intent.SessionID,
				"status", status,
			)
		}
	}
	return nil
}

// confirm flips the intent to paid and activates its subject in one
// transaction. The compare-and-swap on the intent is the guard: losing
// it means another caller already confirmed, and the subject is left
// alone.
func (s *PaymentService) confirm(ctx context.Context, intent *domain.PaymentIntent) error {
	return sharedApplication.WithUnitOfWork(ctx, s.uow, func(ctx context.Context) error {
		swapped, err := s.intents.TransitionStatus(ctx, intent.SessionID, intent.Status, domain.IntentPaid)
		if err != nil {
			return err
		}
		if !swapped {
			return nil
		}

		now := time.Now().UTC()
		events := []sharedDomain.DomainEvent{domain.NewPaymentConfirmed(intent)}

		switch intent.SubjectType {
		case domain.SubjectSubscription:
			sub, err := s.subscriptions.FindByID(ctx, intent.SubjectID)
			if err != nil {
				return err
			}
			if sub == nil {
				return domain.ErrSubjectNotFound
			}
			sub.Activate(now.Add(domain.SubscriptionPeriod), now)
			if err := s.subscriptions.Upsert(ctx, sub); err != nil {
				return err
			}
			events = append(events, domain.NewSubscriptionActivated(sub))

		case domain.SubjectEnrollment:
			enrollment, err := s.enrollments.FindByID(ctx, intent.SubjectID)
			if err != nil {
				return err
			}
			if enrollment == nil {
				return domain.ErrSubjectNotFound
			}
			enrollment.MarkPaid(now)
			if err := s.enrollments.Update(ctx, enrollment); err != nil {
				return err
			}

		default:
			return domain.ErrUnknownSubject
		}

		return s.saveEvents(ctx, events)
	})
}

func (s *PaymentService) saveEvents(ctx context.Context, events []sharedDomain.DomainEvent) error {
	sharedApplication.ApplyEventMetadata(events, sharedApplication.NewEventMetadata(uuid.Nil))

	msgs := make([]*outbox.Message, 0, len(events))
	for _, event := range events {
		msg, err := outbox.NewMessage(event)
		if err != nil {
			return err
		}
		msgs = append(msgs, msg)
	}
	return s.outboxRepo.SaveBatch(ctx, msgs)
}
