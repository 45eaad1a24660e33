package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-marketplace/internal/logger"
	"github.com/sbilibin2017/gw-marketplace/internal/models"
	"github.com/sbilibin2017/gw-marketplace/internal/repositories"
)

// FavoriteWriter stores favorites.
type FavoriteWriter interface {
	Save(ctx context.Context, fav *models.FavoriteDB) error
}

// FavoriteReader lists favorites.
type FavoriteReader interface {
	ListPlacesByUser(ctx context.Context, userID uuid.UUID) ([]models.PlaceDB, error)
}

// FavoriteService handles user favorites.
type FavoriteService struct {
	writer    FavoriteWriter
	reader    FavoriteReader
	publisher eventPublisher
}

func NewFavoriteService(writer FavoriteWriter, reader FavoriteReader, kafkaWriter KafkaWriter) *FavoriteService {
	return &FavoriteService{
		writer:    writer,
		reader:    reader,
		publisher: eventPublisher{kafkaWriter: kafkaWriter},
	}
}

// Add marks the place as a favorite of the user. Repeated calls add repeated rows.
func (s *FavoriteService) Add(ctx context.Context, userID, placeID uuid.UUID) error {
	fav := &models.FavoriteDB{
		FavoriteID: uuid.New(),
		PlaceID:    placeID,
		UserID:     userID,
	}

	if err := s.writer.Save(ctx, fav); err != nil {
		if errors.Is(err, repositories.ErrReferenceNotFound) {
			var refErr *repositories.ReferenceError
			if errors.As(err, &refErr) && refErr.Constraint == repositories.FavoritesUserConstraint {
				return ErrUserDoesNotExist
			}
			return ErrPlaceNotFound
		}
		logger.FromContext(ctx).Errorw("failed to save favorite", "place_id", placeID, "user_id", userID, "error", err)
		return err
	}

	s.publisher.publish(ctx, models.OperationFavoriteAdded, placeID, userID)

	return nil
}

// List returns the places the user favorited, most recent first.
func (s *FavoriteService) List(ctx context.Context, userID uuid.UUID) ([]models.PlaceDB, error) {
	places, err := s.reader.ListPlacesByUser(ctx, userID)
	if err != nil {
		logger.FromContext(ctx).Errorw("failed to list favorites", "user_id", userID, "error", err)
		return nil, err
	}
	return places, nil
}
