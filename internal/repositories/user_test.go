package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-marketplace/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserWriteRepository_Save(t *testing.T) {
	db, cleanup := setupPostgres(t)
	defer cleanup()
	ctx := context.Background()

	repo := NewUserWriteRepository(db, nil)
	reader := NewUserReadRepository(db)

	user := &models.UserDB{
		UserID:       uuid.New(),
		Username:     "alice",
		PasswordHash: "hash",
		FirstName:    "Alice",
		LastName:     "Smith",
		Email:        "alice@example.com",
	}
	require.NoError(t, repo.Save(ctx, user))

	got, err := reader.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, user.UserID, got.UserID)
	assert.Equal(t, "hash", got.PasswordHash)
	assert.Equal(t, "Alice", got.FirstName)
	assert.Equal(t, 0, got.PostCount)
	assert.Nil(t, got.LastSeen)

	t.Run("duplicate username", func(t *testing.T) {
		dup := *user
		dup.UserID = uuid.New()
		err := repo.Save(ctx, &dup)
		assert.ErrorIs(t, err, ErrConflict)
	})
}

func TestUserReadRepository_NotFound(t *testing.T) {
	db, cleanup := setupPostgres(t)
	defer cleanup()
	ctx := context.Background()

	reader := NewUserReadRepository(db)

	user, err := reader.GetByUsername(ctx, "nobody")
	assert.NoError(t, err)
	assert.Nil(t, user)

	user, err = reader.GetByID(ctx, uuid.New())
	assert.NoError(t, err)
	assert.Nil(t, user)
}

func TestUserWriteRepository_UpdateAndDelete(t *testing.T) {
	db, cleanup := setupPostgres(t)
	defer cleanup()
	ctx := context.Background()

	repo := NewUserWriteRepository(db, nil)
	reader := NewUserReadRepository(db)
	userID := insertUser(t, db, "bob")

	t.Run("partial update", func(t *testing.T) {
		bio := "hello"
		first := "Robert"
		ok, err := repo.Update(ctx, userID, models.UserUpdate{Biography: &bio, FirstName: &first})
		require.NoError(t, err)
		assert.True(t, ok)

		got, err := reader.GetByID(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, "hello", got.Biography)
		assert.Equal(t, "Robert", got.FirstName)
		assert.Equal(t, "bob", got.Username)
	})

	t.Run("empty update", func(t *testing.T) {
		ok, err := repo.Update(ctx, userID, models.UserUpdate{})
		assert.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("update unknown user", func(t *testing.T) {
		bio := "x"
		ok, err := repo.Update(ctx, uuid.New(), models.UserUpdate{Biography: &bio})
		assert.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("post count never negative", func(t *testing.T) {
		require.NoError(t, repo.AdjustPostCount(ctx, userID, 1))
		require.NoError(t, repo.AdjustPostCount(ctx, userID, -1))
		require.NoError(t, repo.AdjustPostCount(ctx, userID, -1))

		got, err := reader.GetByID(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, 0, got.PostCount)
	})

	t.Run("last seen and picture", func(t *testing.T) {
		at := time.Now().UTC().Truncate(time.Second)
		require.NoError(t, repo.UpdateLastSeen(ctx, "bob", at))
		require.NoError(t, repo.UpdatePicture(ctx, userID, "users/pic.png"))

		got, err := reader.GetByID(ctx, userID)
		require.NoError(t, err)
		require.NotNil(t, got.LastSeen)
		assert.True(t, at.Equal(*got.LastSeen))
		assert.Equal(t, "users/pic.png", got.PicturePath)
	})

	t.Run("delete cascades to places", func(t *testing.T) {
		placeID := insertPlace(t, db, userID, nil)

		ok, err := repo.Delete(ctx, userID)
		require.NoError(t, err)
		assert.True(t, ok)

		place, err := NewPlaceReadRepository(db).GetByID(ctx, placeID)
		assert.NoError(t, err)
		assert.Nil(t, place)

		ok, err = repo.Delete(ctx, userID)
		assert.NoError(t, err)
		assert.False(t, ok)
	})
}
