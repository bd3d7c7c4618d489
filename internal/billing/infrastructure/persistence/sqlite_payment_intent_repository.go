package persistence

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/quickcut/backend/internal/billing/domain"
)

// SQLitePaymentIntentRepository implements domain.PaymentIntentRepository
// using SQLite.
type SQLitePaymentIntentRepository struct {
	db *sql.DB
}

// NewSQLitePaymentIntentRepository creates a new repository.
func NewSQLitePaymentIntentRepository(db *sql.DB) *SQLitePaymentIntentRepository {
	return &SQLitePaymentIntentRepository{db: db}
}

// Save inserts a new intent.
func (r *SQLitePaymentIntentRepository) Save(ctx context.Context, intent *domain.PaymentIntent) error {
	db := sqliteDB(ctx, r.db)
	_, err := db.ExecContext(ctx, `
		INSERT INTO payment_intents (session_id, subject_type, subject_id, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		intent.SessionID,
		string(intent.SubjectType),
		intent.SubjectID.String(),
		string(intent.Status),
		intent.CreatedAt.Format(time.RFC3339Nano),
		intent.UpdatedAt.Format(time.RFC3339Nano),
	)
	return err
}

// FindBySessionID returns the intent for a session, or nil.
func (r *SQLitePaymentIntentRepository) FindBySessionID(ctx context.Context, sessionID string) (*domain.PaymentIntent, error) {
	db := sqliteDB(ctx, r.db)
	row := db.QueryRowContext(ctx, `
		SELECT session_id, subject_type, subject_id, status, created_at, updated_at
		FROM payment_intents WHERE session_id = ?`, sessionID)
	return scanSQLiteIntent(row)
}

// TransitionStatus is a compare-and-swap on the stored status.
func (r *SQLitePaymentIntentRepository) TransitionStatus(ctx context.Context, sessionID string, from, to domain.IntentStatus) (bool, error) {
	db := sqliteDB(ctx, r.db)
	res, err := db.ExecContext(ctx, `
		UPDATE payment_intents SET status = ?, updated_at = ?
		WHERE session_id = ? AND status = ?`,
		string(to),
		time.Now().UTC().Format(time.RFC3339Nano),
		sessionID,
		string(from),
	)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// ListByStatus returns intents currently in the given state.
func (r *SQLitePaymentIntentRepository) ListByStatus(ctx context.Context, status domain.IntentStatus) ([]*domain.PaymentIntent, error) {
	db := sqliteDB(ctx, r.db)
	rows, err := db.QueryContext(ctx, `
		SELECT session_id, subject_type, subject_id, status, created_at, updated_at
		FROM payment_intents WHERE status = ? ORDER BY created_at`, string(status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var intents []*domain.PaymentIntent
	for rows.Next() {
		intent, err := scanSQLiteIntent(rows)
		if err != nil {
			return nil, err
		}
		intents = append(intents, intent)
	}
	return intents, rows.Err()
}

func scanSQLiteIntent(row rowScanner) (*domain.PaymentIntent, error) {
	var (
		subjectType, subjectID string
		status                 string
		createdAt, updatedAt   string
	)
	intent := &domain.PaymentIntent{}
	err := row.Scan(&intent.SessionID, &subjectType, &subjectID, &status, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	intent.SubjectType = domain.SubjectType(subjectType)
	intent.Status = domain.IntentStatus(status)
	if intent.SubjectID, err = uuid.Parse(subjectID); err != nil {
		return nil, err
	}
	if intent.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, err
	}
	if intent.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return nil, err
	}
	return intent, nil
}
