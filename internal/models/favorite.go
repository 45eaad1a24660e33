package models

import (
	"time"

	"github.com/google/uuid"
)

// FavoriteDB associates a user with a place they marked as favorite.
type FavoriteDB struct {
	FavoriteID uuid.UUID `json:"id" db:"id"`
	PlaceID    uuid.UUID `json:"place_id" db:"place_id"`
	UserID     uuid.UUID `json:"user_id" db:"user_id"`
	AddedAt    time.Time `json:"added_at" db:"added_at"`
}
