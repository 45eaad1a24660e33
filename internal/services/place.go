package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-marketplace/internal/logger"
	"github.com/sbilibin2017/gw-marketplace/internal/models"
)

// TxManager runs fn inside a single database transaction.
type TxManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// PlaceReader defines read-only operations for places.
type PlaceReader interface {
	GetByID(ctx context.Context, placeID uuid.UUID) (*models.PlaceDB, error)
	Search(ctx context.Context, filter models.PlaceFilter) ([]models.PlaceDB, error)
}

// PlaceWriter defines write operations for places.
type PlaceWriter interface {
	Save(ctx context.Context, place *models.PlaceDB) error
	Update(ctx context.Context, placeID uuid.UUID, in models.PlaceInput) (bool, error)
	Patch(ctx context.Context, placeID uuid.UUID, patch models.PlacePatch) (bool, error)
	Delete(ctx context.Context, placeID uuid.UUID) (bool, error)
}

// PlaceCache caches single places by id.
type PlaceCache interface {
	Get(ctx context.Context, placeID uuid.UUID) (*models.PlaceDB, error)
	Set(ctx context.Context, place *models.PlaceDB) error
	Delete(ctx context.Context, placeID uuid.UUID) error
}

// PostCounter keeps users.post_count in step with their places.
type PostCounter interface {
	AdjustPostCount(ctx context.Context, userID uuid.UUID, delta int) error
}

// ImageRemover deletes stored images.
type ImageRemover interface {
	Delete(ctx context.Context, path string) error
}

// PlaceService handles listing operations.
type PlaceService struct {
	tx        TxManager
	reader    PlaceReader
	writer    PlaceWriter
	users     UserReader
	counter   PostCounter
	cache     PlaceCache
	images    ImageRemover
	publisher eventPublisher
}

// NewPlaceService creates a new PlaceService. cache, images and kafkaWriter may be nil.
func NewPlaceService(
	tx TxManager,
	reader PlaceReader,
	writer PlaceWriter,
	users UserReader,
	counter PostCounter,
	cache PlaceCache,
	images ImageRemover,
	kafkaWriter KafkaWriter,
) *PlaceService {
	return &PlaceService{
		tx:        tx,
		reader:    reader,
		writer:    writer,
		users:     users,
		counter:   counter,
		cache:     cache,
		images:    images,
		publisher: eventPublisher{kafkaWriter: kafkaWriter},
	}
}

// Create stores a new place owned by userID and increments the owner's post count.
func (s *PlaceService) Create(ctx context.Context, userID uuid.UUID, in models.PlaceInput, imagePaths []string) (uuid.UUID, error) {
	in = normalizePlaceInput(in)
	if err := validatePlaceInput(in); err != nil {
		return uuid.Nil, err
	}
	if len(imagePaths) > models.MaxPlaceImages {
		return uuid.Nil, fmt.Errorf("%w: at most %d images", ErrInvalidInput, models.MaxPlaceImages)
	}

	place := &models.PlaceDB{
		PlaceID:     uuid.New(),
		Title:       in.Title,
		Description: in.Description,
		Country:     in.Country,
		City:        in.City,
		County:      in.County,
		District:    in.District,
		ImagePaths:  imagePaths,
		Area:        in.Area,
		Rooms:       in.Rooms,
		Beds:        in.Beds,
		WC:          in.WC,
		Price:       in.Price,
		Pets:        in.Pets,
		Available:   in.Available,
		Category:    in.Category,
		Amenities:   in.Amenities,
		Features:    in.Features,
		Creator:     userID,
	}

	err := s.tx.Do(ctx, func(ctx context.Context) error {
		if err := s.writer.Save(ctx, place); err != nil {
			return err
		}
		return s.counter.AdjustPostCount(ctx, userID, 1)
	})
	if err != nil {
		logger.FromContext(ctx).Errorw("failed to create place", "user_id", userID, "error", err)
		return uuid.Nil, err
	}

	s.publisher.publish(ctx, models.OperationPlaceCreated, place.PlaceID, userID)

	return place.PlaceID, nil
}

// Update rewrites every writable field of the place.
func (s *PlaceService) Update(ctx context.Context, userID, placeID uuid.UUID, in models.PlaceInput) error {
	in = normalizePlaceInput(in)
	if err := validatePlaceInput(in); err != nil {
		return err
	}
	if _, err := s.authorize(ctx, userID, placeID); err != nil {
		return err
	}

	ok, err := s.writer.Update(ctx, placeID, in)
	if err != nil {
		logger.FromContext(ctx).Errorw("failed to update place", "place_id", placeID, "error", err)
		return err
	}
	if !ok {
		return ErrPlaceNotFound
	}

	s.evict(ctx, placeID)
	s.publisher.publish(ctx, models.OperationPlaceUpdated, placeID, userID)

	return nil
}

// Patch changes only the fields present in patch.
func (s *PlaceService) Patch(ctx context.Context, userID, placeID uuid.UUID, patch models.PlacePatch) error {
	patch = normalizePlacePatch(patch)
	if err := validatePlacePatch(patch); err != nil {
		return err
	}
	if _, err := s.authorize(ctx, userID, placeID); err != nil {
		return err
	}

	ok, err := s.writer.Patch(ctx, placeID, patch)
	if err != nil {
		logger.FromContext(ctx).Errorw("failed to patch place", "place_id", placeID, "error", err)
		return err
	}
	if !ok {
		return ErrPlaceNotFound
	}

	s.evict(ctx, placeID)
	s.publisher.publish(ctx, models.OperationPlaceUpdated, placeID, userID)

	return nil
}

// Delete removes the place, decrements its creator's post count and drops its images.
func (s *PlaceService) Delete(ctx context.Context, userID, placeID uuid.UUID) error {
	place, err := s.authorize(ctx, userID, placeID)
	if err != nil {
		return err
	}

	err = s.tx.Do(ctx, func(ctx context.Context) error {
		ok, err := s.writer.Delete(ctx, placeID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrPlaceNotFound
		}
		return s.counter.AdjustPostCount(ctx, place.Creator, -1)
	})
	if err != nil {
		logger.FromContext(ctx).Errorw("failed to delete place", "place_id", placeID, "error", err)
		return err
	}

	s.evict(ctx, placeID)

	if s.images != nil {
		for _, path := range place.ImagePaths {
			if err := s.images.Delete(ctx, path); err != nil {
				logger.FromContext(ctx).Warnw("failed to delete place image", "place_id", placeID, "path", path, "error", err)
			}
		}
	}

	s.publisher.publish(ctx, models.OperationPlaceDeleted, placeID, userID)

	return nil
}

// Get returns the place or nil when it does not exist.
func (s *PlaceService) Get(ctx context.Context, placeID uuid.UUID) (*models.PlaceDB, error) {
	if s.cache != nil {
		place, err := s.cache.Get(ctx, placeID)
		if err != nil {
			logger.FromContext(ctx).Warnw("place cache read failed", "place_id", placeID, "error", err)
		}
		if place != nil {
			return place, nil
		}
	}

	place, err := s.reader.GetByID(ctx, placeID)
	if err != nil {
		logger.FromContext(ctx).Errorw("failed to get place", "place_id", placeID, "error", err)
		return nil, err
	}
	if place == nil {
		return nil, nil
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, place); err != nil {
			logger.FromContext(ctx).Warnw("place cache write failed", "place_id", placeID, "error", err)
		}
	}

	return place, nil
}

// Search returns the places matching filter.
func (s *PlaceService) Search(ctx context.Context, filter models.PlaceFilter) ([]models.PlaceDB, error) {
	for _, r := range []*models.Range{filter.Area, filter.Price} {
		if r != nil && r.Min != nil && r.Max != nil && *r.Min > *r.Max {
			return nil, fmt.Errorf("%w: range min exceeds max", ErrInvalidInput)
		}
	}

	places, err := s.reader.Search(ctx, filter)
	if err != nil {
		logger.FromContext(ctx).Errorw("failed to search places", "error", err)
		return nil, err
	}
	return places, nil
}

// authorize loads the place and checks that userID is its creator or an admin.
func (s *PlaceService) authorize(ctx context.Context, userID, placeID uuid.UUID) (*models.PlaceDB, error) {
	place, err := s.reader.GetByID(ctx, placeID)
	if err != nil {
		logger.FromContext(ctx).Errorw("failed to get place", "place_id", placeID, "error", err)
		return nil, err
	}
	if place == nil {
		return nil, ErrPlaceNotFound
	}
	if place.Creator == userID {
		return place, nil
	}

	if err := requireAdmin(ctx, s.users, userID); err != nil {
		logger.FromContext(ctx).Warnw("place access denied", "place_id", placeID, "user_id", userID)
		return nil, err
	}
	return place, nil
}

func (s *PlaceService) evict(ctx context.Context, placeID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, placeID); err != nil {
		logger.FromContext(ctx).Warnw("place cache eviction failed", "place_id", placeID, "error", err)
	}
}

// requireAdmin returns ErrNotAuthorized unless userID belongs to an admin.
func requireAdmin(ctx context.Context, users UserReader, userID uuid.UUID) error {
	user, err := users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil || !user.Admin {
		return ErrNotAuthorized
	}
	return nil
}

// normalizePlaceInput trims the free-text fields.
func normalizePlaceInput(in models.PlaceInput) models.PlaceInput {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Country = strings.TrimSpace(in.Country)
	in.City = strings.TrimSpace(in.City)
	in.County = strings.TrimSpace(in.County)
	in.District = strings.TrimSpace(in.District)
	in.Category = strings.TrimSpace(in.Category)
	return in
}

func normalizePlacePatch(p models.PlacePatch) models.PlacePatch {
	for _, v := range []**string{&p.Title, &p.Description, &p.Country, &p.City, &p.County, &p.District, &p.Category} {
		if *v != nil {
			trimmed := strings.TrimSpace(**v)
			*v = &trimmed
		}
	}
	return p
}

func validatePlaceInput(in models.PlaceInput) error {
	if err := requireFields(
		field{"title", in.Title},
		field{"description", in.Description},
		field{"country", in.Country},
		field{"city", in.City},
		field{"county", in.County},
		field{"category", in.Category},
	); err != nil {
		return err
	}
	if in.Price <= 0 {
		return fmt.Errorf("%w: price must be positive", ErrInvalidInput)
	}
	return nil
}

func validatePlacePatch(p models.PlacePatch) error {
	required := []struct {
		name  string
		value *string
	}{
		{"title", p.Title},
		{"description", p.Description},
		{"country", p.Country},
		{"city", p.City},
		{"county", p.County},
		{"category", p.Category},
	}

	empty := p.District == nil && p.Area == nil && p.Rooms == nil && p.Beds == nil && p.WC == nil &&
		p.Price == nil && p.Pets == nil && p.Available == nil && p.Amenities == nil && p.Features == nil
	for _, f := range required {
		if f.value == nil {
			continue
		}
		empty = false
		if strings.TrimSpace(*f.value) == "" {
			return fmt.Errorf("%w: %s must not be blank", ErrInvalidInput, f.name)
		}
	}
	if empty {
		return fmt.Errorf("%w: nothing to update", ErrInvalidInput)
	}
	if p.Price != nil && *p.Price <= 0 {
		return fmt.Errorf("%w: price must be positive", ErrInvalidInput)
	}
	return nil
}
