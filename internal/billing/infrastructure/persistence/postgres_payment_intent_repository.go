package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quickcut/backend/internal/billing/domain"
	sharedPersistence "github.com/quickcut/backend/internal/shared/infrastructure/persistence"
)

// PostgresPaymentIntentRepository implements domain.PaymentIntentRepository
// using pgx.
type PostgresPaymentIntentRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresPaymentIntentRepository creates a new repository.
func NewPostgresPaymentIntentRepository(pool *pgxpool.Pool) *PostgresPaymentIntentRepository {
	return &PostgresPaymentIntentRepository{pool: pool}
}

// Save inserts a new intent.
func (r *PostgresPaymentIntentRepository) Save(ctx context.Context, intent *domain.PaymentIntent) error {
	db := sharedPersistence.Executor(ctx, r.pool)
	_, err := db.Exec(ctx, `
		INSERT INTO payment_intents (session_id, subject_type, subject_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		intent.SessionID, string(intent.SubjectType), intent.SubjectID,
		string(intent.Status), intent.CreatedAt, intent.UpdatedAt,
	)
	return err
}

// FindBySessionID returns the intent for a session, or nil.
func (r *PostgresPaymentIntentRepository) FindBySessionID(ctx context.Context, sessionID string) (*domain.PaymentIntent, error) {
	db := sharedPersistence.Executor(ctx, r.pool)
	row := db.QueryRow(ctx, `
		SELECT session_id, subject_type, subject_id, status, created_at, updated_at
		FROM payment_intents WHERE session_id = $1`, sessionID)
	return scanPgIntent(row)
}

// TransitionStatus is a compare-and-swap on the stored status.
func (r *PostgresPaymentIntentRepository) TransitionStatus(ctx context.Context, sessionID string, from, to domain.IntentStatus) (bool, error) {
	db := sharedPersistence.Executor(ctx, r.pool)
	tag, err := db.Exec(ctx, `
		UPDATE payment_intents SET status = $1, updated_at = $2
		WHERE session_id = $3 AND status = $4`,
		string(to), time.Now().UTC(), sessionID, string(from),
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// ListByStatus returns intents currently in the given state.
func (r *PostgresPaymentIntentRepository) ListByStatus(ctx context.Context, status domain.IntentStatus) ([]*domain.PaymentIntent, error) {
	db := sharedPersistence.Executor(ctx, r.pool)
	rows, err := db.Query(ctx, `
		SELECT session_id, subject_type, subject_id, status, created_at, updated_at
		FROM payment_intents WHERE status = $1 ORDER BY created_at`, string(status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var intents []*domain.PaymentIntent
	for rows.Next() {
		intent, err := scanPgIntent(rows)
		if err != nil {
			return nil, err
		}
		intents = append(intents, intent)
	}
	return intents, rows.Err()
}

func scanPgIntent(row pgx.Row) (*domain.PaymentIntent, error) {
	var (
		intent      domain.PaymentIntent
		subjectType string
		status      string
	)
	err := row.Scan(&intent.SessionID, &subjectType, &intent.SubjectID, &status, &intent.CreatedAt, &intent.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	intent.SubjectType = domain.SubjectType(subjectType)
	intent.Status = domain.IntentStatus(status)
	return &intent, nil
}
