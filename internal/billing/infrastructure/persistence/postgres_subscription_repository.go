package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quickcut/backend/internal/billing/domain"
	sharedPersistence "github.com/quickcut/backend/internal/shared/infrastructure/persistence"
)

// PostgresSubscriptionRepository implements domain.SubscriptionRepository
// using pgx.
type PostgresSubscriptionRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresSubscriptionRepository creates a new repository.
func NewPostgresSubscriptionRepository(pool *pgxpool.Pool) *PostgresSubscriptionRepository {
	return &PostgresSubscriptionRepository{pool: pool}
}

// Upsert writes the subscription, replacing any existing row for the user.
func (r *PostgresSubscriptionRepository) Upsert(ctx context.Context, sub *domain.Subscription) error {
	db := sharedPersistence.Executor(ctx, r.pool)
	_, err := db.Exec(ctx, `
		INSERT INTO subscriptions (id, user_id, plan_id, status, trial_expires_at, current_period_end, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id) DO UPDATE SET
			plan_id = EXCLUDED.plan_id,
			status = EXCLUDED.status,
			trial_expires_at = EXCLUDED.trial_expires_at,
			current_period_end = EXCLUDED.current_period_end,
			updated_at = EXCLUDED.updated_at`,
		sub.ID, sub.UserID, sub.PlanID, string(sub.Status),
		sub.TrialExpiresAt, sub.CurrentPeriodEnd, sub.CreatedAt, sub.UpdatedAt,
	)
	return err
}

// FindByID returns the subscription with the given id, or nil.
func (r *PostgresSubscriptionRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Subscription, error) {
	db := sharedPersistence.Executor(ctx, r.pool)
	row := db.QueryRow(ctx, `
		SELECT id, user_id, plan_id, status, trial_expires_at, current_period_end, created_at, updated_at
		FROM subscriptions WHERE id = $1`, id)
	return scanPgSubscription(row)
}

// FindByUserID returns the user's subscription, or nil.
func (r *PostgresSubscriptionRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*domain.Subscription, error) {
	db := sharedPersistence.Executor(ctx, r.pool)
	row := db.QueryRow(ctx, `
		SELECT id, user_id, plan_id, status, trial_expires_at, current_period_end, created_at, updated_at
		FROM subscriptions WHERE user_id = $1`, userID)
	return scanPgSubscription(row)
}

// ListLapsed returns non-expired subscriptions whose deadline passed.
func (r *PostgresSubscriptionRepository) ListLapsed(ctx context.Context, now time.Time) ([]*domain.Subscription, error) {
	db := sharedPersistence.Executor(ctx, r.pool)
	rows, err := db.Query(ctx, `
		SELECT id, user_id, plan_id, status, trial_expires_at, current_period_end, created_at, updated_at
		FROM subscriptions
		WHERE (status = 'trial' AND trial_expires_at <= $1)
		   OR (status = 'active' AND current_period_end IS NOT NULL AND current_period_end <= $1)`,
		now.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []*domain.Subscription
	for rows.Next() {
		sub, err := scanPgSubscription(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

func scanPgSubscription(row pgx.Row) (*domain.Subscription, error) {
	var (
		sub    domain.Subscription
		status string
	)
	err := row.Scan(&sub.ID, &sub.UserID, &sub.PlanID, &status,
		&sub.TrialExpiresAt, &sub.CurrentPeriodEnd, &sub.CreatedAt, &sub.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	sub.Status = domain.SubscriptionStatus(status)
	return &sub, nil
}
