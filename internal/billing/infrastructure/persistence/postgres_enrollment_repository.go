package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quickcut/backend/internal/billing/domain"
	sharedPersistence "github.com/quickcut/backend/internal/shared/infrastructure/persistence"
)

// PostgresEnrollmentRepository implements domain.EnrollmentRepository
// using pgx.
type PostgresEnrollmentRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresEnrollmentRepository creates a new repository.
func NewPostgresEnrollmentRepository(pool *pgxpool.Pool) *PostgresEnrollmentRepository {
	return &PostgresEnrollmentRepository{pool: pool}
}

// Save inserts a new enrollment.
func (r *PostgresEnrollmentRepository) Save(ctx context.Context, enrollment *domain.Enrollment) error {
	db := sharedPersistence.Executor(ctx, r.pool)
	_, err := db.Exec(ctx, `
		INSERT INTO enrollments (id, student_id, course_name, school_name, price_cents, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		enrollment.ID, enrollment.StudentID, enrollment.CourseName, enrollment.SchoolName,
		enrollment.PriceCents, string(enrollment.Status), enrollment.CreatedAt, enrollment.UpdatedAt,
	)
	return err
}

// FindByID returns the enrollment with the given id, or nil.
func (r *PostgresEnrollmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Enrollment, error) {
	db := sharedPersistence.Executor(ctx, r.pool)
	row := db.QueryRow(ctx, `
		SELECT id, student_id, course_name, school_name, price_cents, status, created_at, updated_at
		FROM enrollments WHERE id = $1`, id)

	var (
		enrollment domain.Enrollment
		status     string
	)
	err := row.Scan(&enrollment.ID, &enrollment.StudentID, &enrollment.CourseName,
		&enrollment.SchoolName, &enrollment.PriceCents, &status,
		&enrollment.CreatedAt, &enrollment.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	enrollment.Status = domain.EnrollmentStatus(status)
	return &enrollment, nil
}

// Update rewrites the mutable columns.
func (r *PostgresEnrollmentRepository) Update(ctx context.Context, enrollment *domain.Enrollment) error {
	db := sharedPersistence.Executor(ctx, r.pool)
	_, err := db.Exec(ctx, `
		UPDATE enrollments SET status = $1, updated_at = $2 WHERE id = $3`,
		string(enrollment.Status), enrollment.UpdatedAt, enrollment.ID,
	)
	return err
}
