// Package persistence provides SQLite and Postgres implementations of
// the billing repositories.
package persistence

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/quickcut/backend/internal/billing/domain"
	sharedPersistence "github.com/quickcut/backend/internal/shared/infrastructure/persistence"
)

type sqliteExecer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func sqliteDB(ctx context.Context, db *sql.DB) sqliteExecer {
	if info, ok := sharedPersistence.SQLiteTxInfoFromContext(ctx); ok {
		return info.Tx
	}
	return db
}

type rowScanner interface {
	Scan(dest ...any) error
}

// SQLiteSubscriptionRepository implements domain.SubscriptionRepository
// using SQLite.
type SQLiteSubscriptionRepository struct {
	db *sql.DB
}

// NewSQLiteSubscriptionRepository creates a new repository.
func NewSQLiteSubscriptionRepository(db *sql.DB) *SQLiteSubscriptionRepository {
	return &SQLiteSubscriptionRepository{db: db}
}

// Upsert writes the subscription, replacing any existing row for the user.
func (r *SQLiteSubscriptionRepository) Upsert(ctx context.Context, sub *domain.Subscription) error {
	db := sqliteDB(ctx, r.db)
	_, err := db.ExecContext(ctx, `
		INSERT INTO subscriptions (id, user_id, plan_id, status, trial_expires_at, current_period_end, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			plan_id = excluded.plan_id,
			status = excluded.status,
			trial_expires_at = excluded.trial_expires_at,
			current_period_end = excluded.current_period_end,
			updated_at = excluded.updated_at`,
		sub.ID.String(),
		sub.UserID.String(),
		sub.PlanID,
		string(sub.Status),
		sqliteNullTime(sub.TrialExpiresAt),
		sqliteNullTime(sub.CurrentPeriodEnd),
		sub.CreatedAt.Format(time.RFC3339Nano),
		sub.UpdatedAt.Format(time.RFC3339Nano),
	)
	return err
}

// FindByID returns the subscription with the given id, or nil.
func (r *SQLiteSubscriptionRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Subscription, error) {
	db := sqliteDB(ctx, r.db)
	row := db.QueryRowContext(ctx, `
		SELECT id, user_id, plan_id, status, trial_expires_at, current_period_end, created_at, updated_at
		FROM subscriptions WHERE id = ?`, id.String())
	return scanSQLiteSubscription(row)
}

// FindByUserID returns the user's subscription, or nil.
func (r *SQLiteSubscriptionRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*domain.Subscription, error) {
	db := sqliteDB(ctx, r.db)
	row := db.QueryRowContext(ctx, `
		SELECT id, user_id, plan_id, status, trial_expires_at, current_period_end, created_at, updated_at
		FROM subscriptions WHERE user_id = ?`, userID.String())
	return scanSQLiteSubscription(row)
}

// ListLapsed returns non-expired subscriptions whose deadline passed.
func (r *SQLiteSubscriptionRepository) ListLapsed(ctx context.Context, now time.Time) ([]*domain.Subscription, error) {
	cutoff := now.UTC().Format(time.RFC3339Nano)
	db := sqliteDB(ctx, r.db)
	rows, err := db.QueryContext(ctx, `
		SELECT id, user_id, plan_id, status, trial_expires_at, current_period_end, created_at, updated_at
		FROM subscriptions
		WHERE (status = 'trial' AND trial_expires_at <= ?)
		   OR (status = 'active' AND current_period_end IS NOT NULL AND current_period_end <= ?)`,
		cutoff, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []*domain.Subscription
	for rows.Next() {
		sub, err := scanSQLiteSubscription(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

func scanSQLiteSubscription(row rowScanner) (*domain.Subscription, error) {
	var (
		id, userID           string
		planID, status       string
		trialExpires, period sql.NullString
		createdAt, updatedAt string
	)
	err := row.Scan(&id, &userID, &planID, &status, &trialExpires, &period, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	sub := &domain.Subscription{PlanID: planID, Status: domain.SubscriptionStatus(status)}
	if sub.ID, err = uuid.Parse(id); err != nil {
		return nil, err
	}
	if sub.UserID, err = uuid.Parse(userID); err != nil {
		return nil, err
	}
	if sub.TrialExpiresAt, err = sqliteTimePtr(trialExpires); err != nil {
		return nil, err
	}
	if sub.CurrentPeriodEnd, err = sqliteTimePtr(period); err != nil {
		return nil, err
	}
	if sub.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, err
	}
	if sub.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return nil, err
	}
	return sub, nil
}

func sqliteNullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func sqliteTimePtr(s sql.NullString) (*time.Time, error) {
	if !s.Valid {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
