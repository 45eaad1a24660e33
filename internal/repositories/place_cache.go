package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sbilibin2017/gw-marketplace/internal/logger"
	"github.com/sbilibin2017/gw-marketplace/internal/models"
)

// PlaceCacheRepository caches single places in Redis
type PlaceCacheRepository struct {
	client *redis.Client
	exp    time.Duration // expiration duration for cached places
}

// NewPlaceCacheRepository creates a new repository instance with the given TTL
func NewPlaceCacheRepository(client *redis.Client, expiration time.Duration) *PlaceCacheRepository {
	return &PlaceCacheRepository{
		client: client,
		exp:    expiration,
	}
}

func placeKey(placeID uuid.UUID) string {
	return fmt.Sprintf("place:%s", placeID)
}

// Get returns the cached place, or nil on a cache miss.
func (r *PlaceCacheRepository) Get(ctx context.Context, placeID uuid.UUID) (*models.PlaceDB, error) {
	key := placeKey(placeID)

	val, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		logger.Log.Debugw("cache miss", "key", key)
		return nil, nil
	}
	if err != nil {
		logger.Log.Infow("key", key, "result", nil, "error", err)
		return nil, err
	}

	var place models.PlaceDB
	if err := json.Unmarshal(val, &place); err != nil {
		logger.Log.Infow("key", key, "value", string(val), "result", nil, "error", err)
		return nil, err
	}

	logger.Log.Infow("key", key, "result", place.PlaceID, "error", nil)

	return &place, nil
}

// Set caches the place with expiration
func (r *PlaceCacheRepository) Set(ctx context.Context, place *models.PlaceDB) error {
	key := placeKey(place.PlaceID)

	val, err := json.Marshal(place)
	if err != nil {
		return err
	}
	err = r.client.Set(ctx, key, val, r.exp).Err()

	logger.Log.Infow("key", key, "result", "ok", "error", err)

	return err
}

// Delete evicts the place from the cache.
func (r *PlaceCacheRepository) Delete(ctx context.Context, placeID uuid.UUID) error {
	key := placeKey(placeID)
	err := r.client.Del(ctx, key).Err()

	logger.Log.Infow("key", key, "result", "deleted", "error", err)

	return err
}
