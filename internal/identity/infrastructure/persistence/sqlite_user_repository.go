// Package persistence provides SQLite and Postgres implementations of
// the identity repositories.
package persistence

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/quickcut/backend/internal/identity/domain"
	sharedPersistence "github.com/quickcut/backend/internal/shared/infrastructure/persistence"
)

// SQLiteUserRepository implements domain.UserRepository using SQLite.
type SQLiteUserRepository struct {
	db *sql.DB
}

// NewSQLiteUserRepository creates a new SQLite user repository.
func NewSQLiteUserRepository(db *sql.DB) *SQLiteUserRepository {
	return &SQLiteUserRepository{db: db}
}

type sqliteExecer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (r *SQLiteUserRepository) getDB(ctx context.Context) sqliteExecer {
	if info, ok := sharedPersistence.SQLiteTxInfoFromContext(ctx); ok {
		return info.Tx
	}
	return r.db
}

// Save upserts the user and rewrites its service menu.
func (r *SQLiteUserRepository) Save(ctx context.Context, user *domain.User) error {
	db := r.getDB(ctx)

	_, err := db.ExecContext(ctx, `
		INSERT INTO users (id, role, name, contact, shop_name, latitude, longitude, is_available, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			contact = excluded.contact,
			shop_name = excluded.shop_name,
			latitude = excluded.latitude,
			longitude = excluded.longitude,
			is_available = excluded.is_available,
			updated_at = excluded.updated_at`,
		user.ID().String(),
		string(user.Role()),
		user.Name(),
		user.Contact(),
		user.ShopName(),
		user.Location().Latitude,
		user.Location().Longitude,
		boolToInt(user.IsAvailable()),
		user.CreatedAt().Format(time.RFC3339Nano),
		user.UpdatedAt().Format(time.RFC3339Nano),
	)
	if err != nil {
		return err
	}

	if _, err := db.ExecContext(ctx, `DELETE FROM user_services WHERE user_id = ?`, user.ID().String()); err != nil {
		return err
	}
	for _, svc := range user.Services() {
		_, err := db.ExecContext(ctx, `
			INSERT INTO user_services (id, user_id, name, price_cents, duration_minutes, created_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			svc.ID.String(),
			user.ID().String(),
			svc.Name,
			svc.PriceCents,
			svc.DurationMinutes,
			time.Now().UTC().Format(time.RFC3339Nano),
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// FindByID returns the user with the given id, or nil when absent.
func (r *SQLiteUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	db := r.getDB(ctx)
	row := db.QueryRowContext(ctx, `
		SELECT id, role, name, contact, shop_name, latitude, longitude, is_available, created_at, updated_at
		FROM users WHERE id = ?`, id.String())

	user, err := r.scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	services, err := r.loadServices(ctx, db, []uuid.UUID{user.id})
	if err != nil {
		return nil, err
	}
	return rehydrateUser(user, services[user.id]), nil
}

// ListBarbers returns every barber with its service menu.
func (r *SQLiteUserRepository) ListBarbers(ctx context.Context) ([]*domain.User, error) {
	db := r.getDB(ctx)
	rows, err := db.QueryContext(ctx, `
		SELECT id, role, name, contact, shop_name, latitude, longitude, is_available, created_at, updated_at
		FROM users WHERE role = ? ORDER BY name`, string(domain.RoleBarber))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var raws []userRow
	var ids []uuid.UUID
	for rows.Next() {
		raw, err := r.scanUser(rows)
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
func (r *SQLiteUserRepository) SetAvailability(ctx context.Context, barberID uuid.UUID, available bool) error {
	db := r.getDB(ctx)
	res, err := db.ExecContext(ctx, `
		UPDATE users SET is_available = ?, updated_at = ?
		WHERE id = ? AND role = ?`,
		boolToInt(available),
		time.Now().UTC().Format(time.RFC3339Nano),
		barberID.String(),
		string(domain.RoleBarber),
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotABarber
	}
	return nil
}

type userRow struct {
	id          uuid.UUID
	role        string
	name        string
	contact     string
	shopName    string
	latitude    float64
	longitude   float64
	isAvailable bool
	createdAt   time.Time
	updatedAt   time.Time
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *SQLiteUserRepository) scanUser(row rowScanner) (userRow, error) {
	var (
		raw                  userRow
		id                   string
		available            int
		createdAt, updatedAt string
	)
	if err := row.Scan(&id, &raw.role, &raw.name, &raw.contact, &raw.shopName, &raw.latitude, &raw.longitude, &available, &createdAt, &updatedAt); err != nil {
		return userRow{}, err
	}

	parsed, err := uuid.Parse(id)
	if err != nil {
		return userRow{}, err
	}
	raw.id = parsed
	raw.isAvailable = available != 0

	if raw.createdAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return userRow{}, err
	}
	if raw.updatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return userRow{}, err
	}
	return raw, nil
}

func (r *SQLiteUserRepository) loadServices(ctx context.Context, db sqliteExecer, userIDs []uuid.UUID) (map[uuid.UUID][]domain.ServiceOffering, error) {
	services := make(map[uuid.UUID][]domain.ServiceOffering, len(userIDs))
	if len(userIDs) == 0 {
		return services, nil
	}

	args := make([]any, 0, len(userIDs))
	placeholders := ""
	for i, id := range userIDs {
		if i > 0 {
			placeholders += ", "
		}
		placeholders += "?"
		args = append(args, id.String())
	}

	rows, err := db.QueryContext(ctx, `
		SELECT id, user_id, name, price_cents, duration_minutes
		FROM user_services WHERE user_id IN (`+placeholders+`) ORDER BY name`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id, userID string
			svc        domain.ServiceOffering
		)
		if err := rows.Scan(&id, &userID, &svc.Name, &svc.PriceCents, &svc.DurationMinutes); err != nil {
			return nil, err
		}
		if svc.ID, err = uuid.Parse(id); err != nil {
			return nil, err
		}
		owner, err := uuid.Parse(userID)
		if err != nil {
			return nil, err
		}
		services[owner] = append(services[owner], svc)
	}
	return services, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
