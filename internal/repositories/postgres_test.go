package repositories

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/sbilibin2017/gw-marketplace/internal/logger"
	"github.com/sbilibin2017/gw-marketplace/internal/models"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// --- Setup Postgres ---
func setupPostgres(t *testing.T) (*sqlx.DB, func()) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres container test in short mode")
	}

	logger.Initialize("debug")
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_PASSWORD": "secret", "POSTGRES_DB": "testdb", "POSTGRES_USER": "postgres"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(30 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("postgres://postgres:secret@%s:%s/testdb?sslmode=disable", host, port.Port())

	var db *sqlx.DB
	for i := 0; i < 10; i++ {
		db, err = sqlx.Connect("pgx", dsn)
		if err == nil {
			break
		}
		time.Sleep(time.Second)
	}
	require.NoError(t, err)

	require.NoError(t, Migrate(ctx, db))

	return db, func() {
		db.Close()
		container.Terminate(ctx)
	}
}

// --- Helpers ---
func insertUser(t *testing.T, db *sqlx.DB, username string) uuid.UUID {
	t.Helper()
	user := &models.UserDB{
		UserID:       uuid.New(),
		Username:     username,
		PasswordHash: "hash",
		FirstName:    "First",
		LastName:     "Last",
		Email:        username + "@example.com",
	}
	require.NoError(t, NewUserWriteRepository(db, nil).Save(context.Background(), user))
	return user.UserID
}

func insertPlace(t *testing.T, db *sqlx.DB, creator uuid.UUID, mutate func(p *models.PlaceDB)) uuid.UUID {
	t.Helper()
	place := &models.PlaceDB{
		PlaceID:     uuid.New(),
		Title:       "Cosy flat",
		Description: "Near the river",
		Country:     "FR",
		City:        "Paris",
		County:      "Ile-de-France",
		Price:       250,
		Category:    "flat",
		Creator:     creator,
	}
	if mutate != nil {
		mutate(place)
	}
	require.NoError(t, NewPlaceWriteRepository(db, nil).Save(context.Background(), place))
	return place.PlaceID
}
