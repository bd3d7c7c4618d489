package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quickcut/backend/internal/identity/domain"
	sharedPersistence "github.com/quickcut/backend/internal/shared/infrastructure/persistence"
)

// PostgresUserRepository implements domain.UserRepository using pgx.
type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresUserRepository creates a new Postgres user repository.
func NewPostgresUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

// Save upserts the user and rewrites its service menu.
func (r *PostgresUserRepository) Save(ctx context.Context, user *domain.User) error {
	db := sharedPersistence.Executor(ctx, r.pool)

	_, err := db.Exec(ctx, `
		INSERT INTO users (id, role, name, contact, shop_name, latitude, longitude, is_available, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			contact = EXCLUDED.contact,
			shop_name = EXCLUDED.shop_name,
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			is_available = EXCLUDED.is_available,
			updated_at = EXCLUDED.updated_at`,
		user.ID(),
		string(user.Role()),
		user.Name(),
		user.Contact(),
		user.ShopName(),
		user.Location().Latitude,
		user.Location().Longitude,
		user.IsAvailable(),
		user.CreatedAt(),
		user.UpdatedAt(),
	)
	if err != nil {
		return err
	}

	if _, err := db.Exec(ctx, `DELETE FROM user_services WHERE user_id = $1`, user.ID()); err != nil {
		return err
	}
	for _, svc := range user.Services() {
		_, err := db.Exec(ctx, `
			INSERT INTO user_services (id, user_id, name, price_cents, duration_minutes, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			svc.ID, user.ID(), svc.Name, svc.PriceCents, svc.DurationMinutes, time.Now().UTC(),
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// FindByID returns the user with the given id, or nil when absent.
func (r *PostgresUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	db := sharedPersistence.Executor(ctx, r.pool)
	row := db.QueryRow(ctx, `
		SELECT id, role, name, contact, shop_name, latitude, longitude, is_available, created_at, updated_at
		FROM users WHERE id = $1`, id)

	raw, err := scanPgUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	services, err := r.loadServices(ctx, db, []uuid.UUID{raw.id})
	if err != nil {
		return nil, err
	}
	return rehydrateUser(raw, services[raw.id]), nil
}

// ListBarbers returns every barber with its service menu.
func (r *PostgresUserRepository) ListBarbers(ctx context.Context) ([]*domain.User, error) {
	db := sharedPersistence.Executor(ctx, r.pool)
	rows, err := db.Query(ctx, `
		SELECT id, role, name, contact, shop_name, latitude, longitude, is_available, created_at, updated_at
		FROM users WHERE role = $1 ORDER BY name`, string(domain.RoleBarber))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var raws []userRow
	var ids []uuid.UUID
	for rows.Next() {
		raw, err := scanPgUser(rows)
		if err != nil {
			return nil, err
		}
		raws = append(raws, raw)
		ids = append(ids, raw.id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	services, err := r.loadServices(ctx, db, ids)
	if err != nil {
		return nil, err
	}

	users := make([]*domain.User, 0, len(raws))
	for _, raw := range raws {
		users = append(users, rehydrateUser(raw, services[raw.id]))
	}
	return users, nil
}

// SetAvailability writes the flag in a single statement.
func (r *PostgresUserRepository) SetAvailability(ctx context.Context, barberID uuid.UUID, available bool) error {
	db := sharedPersistence.Executor(ctx, r.pool)
	tag, err := db.Exec(ctx, `
		UPDATE users SET is_available = $1, updated_at = $2
		WHERE id = $3 AND role = $4`,
		available, time.Now().UTC(), barberID, string(domain.RoleBarber),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotABarber
	}
	return nil
}

func scanPgUser(row pgx.Row) (userRow, error) {
	var raw userRow
	err := row.Scan(&raw.id, &raw.role, &raw.name, &raw.contact, &raw.shopName, &raw.latitude, &raw.longitude, &raw.isAvailable, &raw.createdAt, &raw.updatedAt)
	if err != nil {
		return userRow{}, err
	}
	return raw, nil
}

func (r *PostgresUserRepository) loadServices(ctx context.Context, db sharedPersistence.DBExecutor, userIDs []uuid.UUID) (map[uuid.UUID][]domain.ServiceOffering, error) {
	services := make(map[uuid.UUID][]domain.ServiceOffering, len(userIDs))
	if len(userIDs) == 0 {
		return services, nil
	}

	rows, err := db.Query(ctx, `
		SELECT id, user_id, name, price_cents, duration_minutes
		FROM user_services WHERE user_id = ANY($1) ORDER BY name`, userIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			owner uuid.UUID
			svc   domain.ServiceOffering
		)
		if err := rows.Scan(&svc.ID, &owner, &svc.Name, &svc.PriceCents, &svc.DurationMinutes); err != nil {
			return nil, err
		}
		services[owner] = append(services[owner], svc)
	}
	return services, rows.Err()
}

func rehydrateUser(raw userRow, services []domain.ServiceOffering) *domain.User {
	return domain.RehydrateUser(
		raw.id,
		domain.Role(raw.role),
		raw.name, raw.contact, raw.shopName,
		domain.Location{Latitude: raw.latitude, Longitude: raw.longitude},
		raw.isAvailable,
		services,
		raw.createdAt, raw.updatedAt,
	)
}
