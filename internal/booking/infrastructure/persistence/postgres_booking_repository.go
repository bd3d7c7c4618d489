package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quickcut/backend/internal/booking/domain"
	sharedPersistence "github.com/quickcut/backend/internal/shared/infrastructure/persistence"
)

const pgSelectBooking = `
	SELECT id, client_id, barber_id, service_name, service_price_cents,
	       service_duration_minutes, scheduled_time, status, created_at, updated_at
	FROM bookings
`

// PostgresBookingRepository implements domain.BookingRepository using pgx.
type PostgresBookingRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresBookingRepository creates a new Postgres booking repository.
func NewPostgresBookingRepository(pool *pgxpool.Pool) *PostgresBookingRepository {
	return &PostgresBookingRepository{pool: pool}
}

// Save inserts a new booking.
func (r *PostgresBookingRepository) Save(ctx context.Context, booking *domain.Booking) error {
	db := sharedPersistence.Executor(ctx, r.pool)
	_, err := db.Exec(ctx, `
		INSERT INTO bookings (
			id, client_id, barber_id, service_name, service_price_cents,
			service_duration_minutes, scheduled_time, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		booking.ID(),
		booking.ClientID(),
		booking.BarberID(),
		booking.Service().Name,
		booking.Service().PriceCents,
		booking.Service().DurationMinutes,
		booking.ScheduledTime().UTC(),
		string(booking.Status()),
		booking.CreatedAt(),
		booking.UpdatedAt(),
	)
	return err
}

// FindByID returns the booking with the given id, or nil when absent.
func (r *PostgresBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	db := sharedPersistence.Executor(ctx, r.pool)
	row := db.QueryRow(ctx, pgSelectBooking+` WHERE id = $1`, id)

	booking, err := scanPgBooking(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return booking, err
}

// UpdateStatus is a compare-and-swap on the stored status. Zero rows
// affected means another transition won the race.
func (r *PostgresBookingRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.Status) error {
	db := sharedPersistence.Executor(ctx, r.pool)
	tag, err := db.Exec(ctx, `
		UPDATE bookings SET status = $1, updated_at = $2
		WHERE id = $3 AND status = $4`,
		string(to), time.Now().UTC(), id, string(from),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrStatusConflict
	}
	return nil
}

// ListByBarberAndDate returns the barber's bookings scheduled on the
// given UTC calendar date.
func (r *PostgresBookingRepository) ListByBarberAndDate(ctx context.Context, barberID uuid.UUID, date time.Time) ([]*domain.Booking, error) {
	dayStart := time.Date(date.UTC().Year(), date.UTC().Month(), date.UTC().Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24 * time.Hour)

	db := sharedPersistence.Executor(ctx, r.pool)
	rows, err := db.Query(ctx, pgSelectBooking+`
		WHERE barber_id = $1 AND scheduled_time >= $2 AND scheduled_time < $3
		ORDER BY scheduled_time`, barberID, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}
	return collectPgBookings(rows)
}

// ListUpcomingByBarber returns the barber's future non-terminal bookings.
func (r *PostgresBookingRepository) ListUpcomingByBarber(ctx context.Context, barberID uuid.UUID) ([]*domain.Booking, error) {
	db := sharedPersistence.Executor(ctx, r.pool)
	rows, err := db.Query(ctx, pgSelectBooking+`
		WHERE barber_id = $1 AND scheduled_time >= $2 AND status = ANY($3)
		ORDER BY scheduled_time`,
		barberID,
		time.Now().UTC(),
		[]string{string(domain.StatusPending), string(domain.StatusConfirmed)},
	)
	if err != nil {
		return nil, err
	}
	return collectPgBookings(rows)
}

// ListByClient returns every booking made by the client, newest first.
func (r *PostgresBookingRepository) ListByClient(ctx context.Context, clientID uuid.UUID) ([]*domain.Booking, error) {
	db := sharedPersistence.Executor(ctx, r.pool)
	rows, err := db.Query(ctx, pgSelectBooking+`
		WHERE client_id = $1 ORDER BY scheduled_time DESC`, clientID)
	if err != nil {
		return nil, err
	}
	return collectPgBookings(rows)
}

func scanPgBooking(row pgx.Row) (*domain.Booking, error) {
	var (
		id, clientID, barberID uuid.UUID
		service                domain.Service
		scheduledTime          time.Time
		status                 string
		createdAt, updatedAt   time.Time
	)
	err := row.Scan(&id, &clientID, &barberID, &service.Name, &service.PriceCents,
		&service.DurationMinutes, &scheduledTime, &status, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	return domain.RehydrateBooking(id, clientID, barberID, service, scheduledTime, domain.Status(status), createdAt, updatedAt), nil
}

func collectPgBookings(rows pgx.Rows) ([]*domain.Booking, error) {
	defer rows.Close()

	var bookings []*domain.Booking
	for rows.Next() {
		booking, err := scanPgBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, booking)
	}
	return bookings, rows.Err()
}
