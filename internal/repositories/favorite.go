package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sbilibin2017/gw-marketplace/internal/models"
)

// FavoriteWriteRepository stores user favorites
type FavoriteWriteRepository struct {
	db       *sqlx.DB
	txGetter func(ctx context.Context) *sqlx.Tx
}

func NewFavoriteWriteRepository(db *sqlx.DB, txGetter func(ctx context.Context) *sqlx.Tx) *FavoriteWriteRepository {
	return &FavoriteWriteRepository{db: db, txGetter: txGetter}
}

// Save records that the user favorited the place. A missing place or user
// yields ErrReferenceNotFound.
func (r *FavoriteWriteRepository) Save(ctx context.Context, fav *models.FavoriteDB) error {
	query := `
		INSERT INTO favorites (id, place_id, user_id, added_at)
		VALUES ($1, $2, $3, NOW())
	`
	args := []any{fav.FavoriteID, fav.PlaceID, fav.UserID}

	_, err := executor(ctx, r.db, r.txGetter).ExecContext(ctx, query, args...)

	logQuery(query, args, fav.FavoriteID, err)

	return translateError(err)
}

// FavoriteReadRepository lists user favorites
type FavoriteReadRepository struct {
	db *sqlx.DB
}

func NewFavoriteReadRepository(db *sqlx.DB) *FavoriteReadRepository {
	return &FavoriteReadRepository{db: db}
}

// ListPlacesByUser returns the places the user favorited, most recently added first.
func (r *FavoriteReadRepository) ListPlacesByUser(ctx context.Context, userID uuid.UUID) ([]models.PlaceDB, error) {
	query := `
		SELECT p.id, p.title, p.description, p.country, p.city, p.county, p.district, p.image_paths,
			p.area, p.rooms, p.beds, p.wc, p.price, p.pets, p.available, p.category, p.amenities,
			p.features, p.creator, p.created_at, p.updated_at
		FROM favorites f
		JOIN places p ON p.id = f.place_id
		WHERE f.user_id = $1
		ORDER BY f.added_at DESC
	`

	places := []models.PlaceDB{}
	err := r.db.SelectContext(ctx, &places, query, userID)

	logQuery(query, []any{userID}, len(places), err)

	if err != nil {
		return nil, err
	}
	return places, nil
}
