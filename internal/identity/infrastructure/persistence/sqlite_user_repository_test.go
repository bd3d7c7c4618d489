package persistence

import (
	"context"
	"database/sql"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quickcut/backend/internal/identity/domain"
	"github.com/quickcut/backend/internal/shared/infrastructure/migrations"

	_ "modernc.org/sqlite"
)

func setupUserTestDB(t *testing.T) *sql.DB {
	t.Helper()

	sqlDB, err := sql.Open("sqlite", ":memory:?_pragma=foreign_keys(1)")
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	// Every connection gets its own in-memory database, so keep one.
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, migrations.RunSQLiteMigrations(context.Background(), sqlDB))
	return sqlDB
}

func TestSQLiteUserRepository_SaveAndFind(t *testing.T) {
	sqlDB := setupUserTestDB(t)
	repo := NewSQLiteUserRepository(sqlDB)
	ctx := context.Background()

	barber, err := domain.NewBarber("Liam Byrne", "liam@sharpfade.ie", "Sharp Fade")
	require.NoError(t, err)
	require.NoError(t, barber.SetAvailability(true))
	require.NoError(t, barber.SetShopLocation(domain.Location{Latitude: 53.3498, Longitude: -6.2603}))
	fade, err := barber.AddService("Skin Fade", 4500, 45)
	require.NoError(t, err)
	_, err = barber.AddService("Beard Trim", 1500, 15)
	require.NoError(t, err)

	require.NoError(t, repo.Save(ctx, barber))

	found, err := repo.FindByID(ctx, barber.ID())
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, barber.ID(), found.ID())
	assert.Equal(t, domain.RoleBarber, found.Role())
	assert.Equal(t, "Liam Byrne", found.Name())
	assert.Equal(t, "Sharp Fade", found.ShopName())
	assert.Equal(t, domain.Location{Latitude: 53.3498, Longitude: -6.2603}, found.Location())
	assert.True(t, found.IsAvailable())
	require.Len(t, found.Services(), 2)

	svc, err := found.ServiceByID(fade.ID)
	require.NoError(t, err)
	assert.Equal(t, "Skin Fade", svc.Name)
	assert.Equal(t, int64(4500), svc.PriceCents)
}

func TestSQLiteUserRepository_Save_RewritesServices(t *testing.T) {
	sqlDB := setupUserTestDB(t)
	repo := NewSQLiteUserRepository(sqlDB)
	ctx := context.Background()

	barber, err := domain.NewBarber("Tomasz Nowak", "tomasz@portobello.ie", "Portobello Barbers")
	require.NoError(t, err)
	_, err = barber.AddService("Classic Cut", 3000, 30)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, barber))

	_, err = barber.AddService("Hot Towel Shave", 3500, 40)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, barber))

	found, err := repo.FindByID(ctx, barber.ID())
	require.NoError(t, err)
	require.Len(t, found.Services(), 2)
}

func TestSQLiteUserRepository_FindByID_NotFound(t *testing.T) {
	sqlDB := setupUserTestDB(t)
	repo := NewSQLiteUserRepository(sqlDB)

	found, err := repo.FindByID(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestSQLiteUserRepository_ListBarbers(t *testing.T) {
	sqlDB := setupUserTestDB(t)
	repo := NewSQLiteUserRepository(sqlDB)
	ctx := context.Background()

	barberA, err := domain.NewBarber("Dara O'Sullivan", "dara@northside.ie", "Northside Cuts")
	require.NoError(t, err)
	_, err = barberA.AddService("Buzz Cut", 2000, 20)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, barberA))

	barberB, err := domain.NewBarber("Liam Byrne", "liam@sharpfade.ie", "Sharp Fade")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, barberB))

	client, err := domain.NewClient("Aoife Kelly", "aoife@example.com")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, client))

	barbers, err := repo.ListBarbers(ctx)
	require.NoError(t, err)
	require.Len(t, barbers, 2)

	// Ordered by name; clients never appear.
	assert.Equal(t, barberA.ID(), barbers[0].ID())
	assert.Equal(t, barberB.ID(), barbers[1].ID())
	require.Len(t, barbers[0].Services(), 1)
	assert.Empty(t, barbers[1].Services())
}

func TestSQLiteUserRepository_SetAvailability(t *testing.T) {
	sqlDB := setupUserTestDB(t)
	repo := NewSQLiteUserRepository(sqlDB)
	ctx := context.Background()

	barber, err := domain.NewBarber("Liam Byrne", "liam@sharpfade.ie", "Sharp Fade")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, barber))

	client, err := domain.NewClient("Aoife Kelly", "aoife@example.com")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, client))

	t.Run("toggles the stored flag", func(t *testing.T) {
		require.NoError(t, repo.SetAvailability(ctx, barber.ID(), true))

		found, err := repo.FindByID(ctx, barber.ID())
		require.NoError(t, err)
		assert.True(t, found.IsAvailable())

		require.NoError(t, repo.SetAvailability(ctx, barber.ID(), false))

		found, err = repo.FindByID(ctx, barber.ID())
		require.NoError(t, err)
		assert.False(t, found.IsAvailable())
	})

	t.Run("rejects clients", func(t *testing.T) {
		err := repo.SetAvailability(ctx, client.ID(), true)
		assert.ErrorIs(t, err, domain.ErrNotABarber)
	})

	t.Run("rejects unknown users", func(t *testing.T) {
		err := repo.SetAvailability(ctx, uuid.New(), true)
		assert.ErrorIs(t, err, domain.ErrNotABarber)
	})
}
