package persistence

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/quickcut/backend/internal/billing/domain"
)

// SQLiteEnrollmentRepository implements domain.EnrollmentRepository
// using SQLite.
type SQLiteEnrollmentRepository struct {
	db *sql.DB
}

// NewSQLiteEnrollmentRepository creates a new repository.
func NewSQLiteEnrollmentRepository(db *sql.DB) *SQLiteEnrollmentRepository {
	return &SQLiteEnrollmentRepository{db: db}
}

// Save inserts a new enrollment.
func (r *SQLiteEnrollmentRepository) Save(ctx context.Context, enrollment *domain.Enrollment) error {
	db := sqliteDB(ctx, r.db)
	_, err := db.ExecContext(ctx, `
		INSERT INTO enrollments (id, student_id, course_name, school_name, price_cents, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		enrollment.ID.String(),
		enrollment.StudentID.String(),
		enrollment.CourseName,
		enrollment.SchoolName,
		enrollment.PriceCents,
		string(enrollment.Status),
		enrollment.CreatedAt.Format(time.RFC3339Nano),
		enrollment.UpdatedAt.Format(time.RFC3339Nano),
	)
	return err
}

// FindByID returns the enrollment with the given id, or nil.
func (r *SQLiteEnrollmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Enrollment, error) {
	db := sqliteDB(ctx, r.db)
	row := db.QueryRowContext(ctx, `
		SELECT id, student_id, course_name, school_name, price_cents, status, created_at, updated_at
		FROM enrollments WHERE id = ?`, id.String())

	var (
		rawID, studentID     string
		status               string
		createdAt, updatedAt string
	)
	enrollment := &domain.Enrollment{}
	err := row.Scan(&rawID, &studentID, &enrollment.CourseName, &enrollment.SchoolName,
		&enrollment.PriceCents, &status, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	enrollment.Status = domain.EnrollmentStatus(status)
	if enrollment.ID, err = uuid.Parse(rawID); err != nil {
		return nil, err
	}
	if enrollment.StudentID, err = uuid.Parse(studentID); err != nil {
		return nil, err
	}
	if enrollment.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, err
	}
	if enrollment.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return nil, err
	}
	return enrollment, nil
}

// Update rewrites the mutable columns.
func (r *SQLiteEnrollmentRepository) Update(ctx context.Context, enrollment *domain.Enrollment) error {
	db := sqliteDB(ctx, r.db)
	_, err := db.ExecContext(ctx, `
		UPDATE enrollments SET status = ?, updated_at = ? WHERE id = ?`,
		string(enrollment.Status),
		enrollment.UpdatedAt.Format(time.RFC3339Nano),
		enrollment.ID.String(),
	)
	return err
}
