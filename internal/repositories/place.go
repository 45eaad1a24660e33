package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sbilibin2017/gw-marketplace/internal/models"
)

const placeSelect = `
	SELECT id, title, description, country, city, county, district, image_paths,
		area, rooms, beds, wc, price, pets, available, category, amenities, features,
		creator, created_at, updated_at
	FROM places
`

// PlaceReadRepository handles place read operations
type PlaceReadRepository struct {
	db *sqlx.DB
}

func NewPlaceReadRepository(db *sqlx.DB) *PlaceReadRepository {
	return &PlaceReadRepository{db: db}
}

// GetByID returns the place with the given id, or nil when none exists.
func (r *PlaceReadRepository) GetByID(ctx context.Context, placeID uuid.UUID) (*models.PlaceDB, error) {
	query := placeSelect + ` WHERE id = $1`

	var place models.PlaceDB
	err := r.db.GetContext(ctx, &place, query, placeID)

	logQuery(query, []any{placeID}, place.PlaceID, err)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &place, nil
}

// Search returns the places matching every predicate in filter, newest first.
func (r *PlaceReadRepository) Search(ctx context.Context, filter models.PlaceFilter) ([]models.PlaceDB, error) {
	query, args, err := buildSearchQuery(filter)
	if err != nil {
		return nil, err
	}

	places := []models.PlaceDB{}
	err = r.db.SelectContext(ctx, &places, query, args...)

	logQuery(query, args, len(places), err)

	if err != nil {
		return nil, err
	}
	return places, nil
}

// PlaceWriteRepository handles place write operations
type PlaceWriteRepository struct {
	db       *sqlx.DB
	txGetter func(ctx context.Context) *sqlx.Tx
}

func NewPlaceWriteRepository(db *sqlx.DB, txGetter func(ctx context.Context) *sqlx.Tx) *PlaceWriteRepository {
	return &PlaceWriteRepository{db: db, txGetter: txGetter}
}

// Save inserts a new place. An unknown creator yields ErrReferenceNotFound.
func (r *PlaceWriteRepository) Save(ctx context.Context, place *models.PlaceDB) error {
	query := `
		INSERT INTO places (id, title, description, country, city, county, district, image_paths,
			area, rooms, beds, wc, price, pets, available, category, amenities, features,
			creator, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, NOW(), NOW())
	`
	args := []any{
		place.PlaceID, place.Title, place.Description, place.Country, place.City, place.County, place.District,
		stringArray(place.ImagePaths),
		nullable(place.Area), nullable(place.Rooms), nullable(place.Beds), nullable(place.WC),
		place.Price, nullable(place.Pets), nullable(place.Available), place.Category,
		stringArray(place.Amenities), stringArray(place.Features),
		place.Creator,
	}

	_, err := executor(ctx, r.db, r.txGetter).ExecContext(ctx, query, args...)

	logQuery(query, args, place.PlaceID, err)

	return translateError(err)
}

// Update overwrites every writable field of the place. Optional fields left
// nil are stored as NULL. It reports whether the place existed.
func (r *PlaceWriteRepository) Update(ctx context.Context, placeID uuid.UUID, in models.PlaceInput) (bool, error) {
	query := `
		UPDATE places SET
			title = $2, description = $3, country = $4, city = $5, county = $6, district = $7,
			area = $8, rooms = $9, beds = $10, wc = $11, price = $12, pets = $13, available = $14,
			category = $15, amenities = $16, features = $17, updated_at = NOW()
		WHERE id = $1
	`
	args := []any{
		placeID, in.Title, in.Description, in.Country, in.City, in.County, in.District,
		nullable(in.Area), nullable(in.Rooms), nullable(in.Beds), nullable(in.WC),
		in.Price, nullable(in.Pets), nullable(in.Available), in.Category,
		stringArray(in.Amenities), stringArray(in.Features),
	}

	res, err := executor(ctx, r.db, r.txGetter).ExecContext(ctx, query, args...)
	affected := rowsAffected(res)

	logQuery(query, args, affected, err)

	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// Patch writes only the non-nil fields of patch. It reports whether the place existed.
func (r *PlaceWriteRepository) Patch(ctx context.Context, placeID uuid.UUID, patch models.PlacePatch) (bool, error) {
	record := patchRecord(patch)
	record["updated_at"] = goqu.L("NOW()")

	query, args, err := dialect.Update("places").Prepared(true).
		Set(record).
		Where(goqu.C("id").Eq(placeID.String())).
		ToSQL()
	if err != nil {
		return false, err
	}

	res, err := executor(ctx, r.db, r.txGetter).ExecContext(ctx, query, args...)
	affected := rowsAffected(res)

	logQuery(query, args, affected, err)

	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// Delete removes the place. It reports whether the place existed.
func (r *PlaceWriteRepository) Delete(ctx context.Context, placeID uuid.UUID) (bool, error) {
	query := `DELETE FROM places WHERE id = $1`

	res, err := executor(ctx, r.db, r.txGetter).ExecContext(ctx, query, placeID)
	affected := rowsAffected(res)

	logQuery(query, []any{placeID}, affected, err)

	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func patchRecord(p models.PlacePatch) goqu.Record {
	record := goqu.Record{}
	set := func(column string, value any, present bool) {
		if present {
			record[column] = value
		}
	}

	set("title", nullable(p.Title), p.Title != nil)
	set("description", nullable(p.Description), p.Description != nil)
	set("country", nullable(p.Country), p.Country != nil)
	set("city", nullable(p.City), p.City != nil)
	set("county", nullable(p.County), p.County != nil)
	set("district", nullable(p.District), p.District != nil)
	set("area", nullable(p.Area), p.Area != nil)
	set("rooms", nullable(p.Rooms), p.Rooms != nil)
	set("beds", nullable(p.Beds), p.Beds != nil)
	set("wc", nullable(p.WC), p.WC != nil)
	set("price", nullable(p.Price), p.Price != nil)
	set("pets", nullable(p.Pets), p.Pets != nil)
	set("available", nullable(p.Available), p.Available != nil)
	set("category", nullable(p.Category), p.Category != nil)
	if p.Amenities != nil {
		record["amenities"] = stringArray(*p.Amenities)
	}
	if p.Features != nil {
		record["features"] = stringArray(*p.Features)
	}
	return record
}
