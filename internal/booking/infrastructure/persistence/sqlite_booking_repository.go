// Package persistence provides SQLite and Postgres implementations of
// the booking repository.
package persistence

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/quickcut/backend/internal/booking/domain"
	sharedPersistence "github.com/quickcut/backend/internal/shared/infrastructure/persistence"
)

const sqliteSelectBooking = `
	SELECT id, client_id, barber_id, service_name, service_price_cents,
	       service_duration_minutes, scheduled_time, status, created_at, updated_at
	FROM bookings
`

// SQLiteBookingRepository implements domain.BookingRepository using SQLite.
type SQLiteBookingRepository struct {
	db *sql.DB
}

// NewSQLiteBookingRepository creates a new SQLite booking repository.
func NewSQLiteBookingRepository(db *sql.DB) *SQLiteBookingRepository {
	return &SQLiteBookingRepository{db: db}
}

type sqliteExecer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (r *SQLiteBookingRepository) getDB(ctx context.Context) sqliteExecer {
	if info, ok := sharedPersistence.SQLiteTxInfoFromContext(ctx); ok {
		return info.Tx
	}
	return r.db
}

// Save inserts a new booking.
func (r *SQLiteBookingRepository) Save(ctx context.Context, booking *domain.Booking) error {
	db := r.getDB(ctx)
	_, err := db.ExecContext(ctx, `
		INSERT INTO bookings (
			id, client_id, barber_id, service_name, service_price_cents,
			service_duration_minutes, scheduled_time, status, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		booking.ID().String(),
		booking.ClientID().String(),
		booking.BarberID().String(),
		booking.Service().Name,
		booking.Service().PriceCents,
		booking.Service().DurationMinutes,
		booking.ScheduledTime().UTC().Format(time.RFC3339Nano),
		string(booking.Status()),
		booking.CreatedAt().Format(time.RFC3339Nano),
		booking.UpdatedAt().Format(time.RFC3339Nano),
	)
	return err
}

// FindByID returns the booking with the given id, or nil when absent.
func (r *SQLiteBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	db := r.getDB(ctx)
	row := db.QueryRowContext(ctx, sqliteSelectBooking+` WHERE id = ?`, id.String())

	booking, err := scanSQLiteBooking(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return booking, err
}

// UpdateStatus is a compare-and-swap on the stored status. Zero rows
// affected means another transition won the race.
func (r *SQLiteBookingRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.Status) error {
	db := r.getDB(ctx)
	res, err := db.ExecContext(ctx, `
		UPDATE bookings SET status = ?, updated_at = ?
		WHERE id = ? AND status = ?`,
		string(to),
		time.Now().UTC().Format(time.RFC3339Nano),
		id.String(),
		string(from),
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrStatusConflict
	}
	return nil
}

// ListByBarberAndDate returns the barber's bookings scheduled on the
// given UTC calendar date.
func (r *SQLiteBookingRepository) ListByBarberAndDate(ctx context.Context, barberID uuid.UUID, date time.Time) ([]*domain.Booking, error) {
	dayStart := time.Date(date.UTC().Year(), date.UTC().Month(), date.UTC().Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24 * time.Hour)

	db := r.getDB(ctx)
	rows, err := db.QueryContext(ctx, sqliteSelectBooking+`
		WHERE barber_id = ? AND scheduled_time >= ? AND scheduled_time < ?
		ORDER BY scheduled_time`,
		barberID.String(),
		dayStart.Format(time.RFC3339Nano),
		dayEnd.Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, err
	}
	return collectSQLiteBookings(rows)
}

// ListUpcomingByBarber returns the barber's future non-terminal bookings.
func (r *SQLiteBookingRepository) ListUpcomingByBarber(ctx context.Context, barberID uuid.UUID) ([]*domain.Booking, error) {
	db := r.getDB(ctx)
	rows, err := db.QueryContext(ctx, sqliteSelectBooking+`
		WHERE barber_id = ? AND scheduled_time >= ? AND status IN (?, ?)
		ORDER BY scheduled_time`,
		barberID.String(),
		time.Now().UTC().Format(time.RFC3339Nano),
		string(domain.StatusPending),
		string(domain.StatusConfirmed),
	)
	if err != nil {
		return nil, err
	}
	return collectSQLiteBookings(rows)
}

// ListByClient returns every booking made by the client, newest first.
func (r *SQLiteBookingRepository) ListByClient(ctx context.Context, clientID uuid.UUID) ([]*domain.Booking, error) {
	db := r.getDB(ctx)
	rows, err := db.QueryContext(ctx, sqliteSelectBooking+`
		WHERE client_id = ? ORDER BY scheduled_time DESC`, clientID.String())
	if err != nil {
		return nil, err
	}
	return collectSQLiteBookings(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteBooking(row rowScanner) (*domain.Booking, error) {
	var (
		id, clientID, barberID string
		service                domain.Service
		scheduled, status      string
		createdAt, updatedAt   string
	)
	err := row.Scan(&id, &clientID, &barberID, &service.Name, &service.PriceCents,
		&service.DurationMinutes, &scheduled, &status, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	bookingID, err := uuid.Parse(id)
	if err != nil {
		return nil, err
	}
	client, err := uuid.Parse(clientID)
	if err != nil {
		return nil, err
	}
	barber, err := uuid.Parse(barberID)
	if err != nil {
		return nil, err
	}
	scheduledTime, err := time.Parse(time.RFC3339Nano, scheduled)
	if err != nil {
		return nil, err
	}
	created, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, err
	}
	updated, err := time.Parse(time.RFC3339Nano, updatedAt)
	if err != nil {
		return nil, err
	}

	return domain.RehydrateBooking(bookingID, client, barber, service, scheduledTime, domain.Status(status), created, updated), nil
}

func collectSQLiteBookings(rows *sql.Rows) ([]*domain.Booking, error) {
	defer rows.Close()

	var bookings []*domain.Booking
	for rows.Next() {
		booking, err := scanSQLiteBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, booking)
	}
	return bookings, rows.Err()
}
