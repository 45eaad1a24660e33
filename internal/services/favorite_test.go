package services

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-marketplace/internal/models"
	"github.com/sbilibin2017/gw-marketplace/internal/repositories"
	"github.com/stretchr/testify/assert"
)

func TestFavoriteService_Add(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	writer := NewMockFavoriteWriter(ctrl)
	reader := NewMockFavoriteReader(ctrl)
	svc := NewFavoriteService(writer, reader, nil)

	userID := uuid.New()
	placeID := uuid.New()

	tests := []struct {
		name    string
		saveErr error
		wantErr error
	}{
		{name: "saved"},
		{name: "missing place", saveErr: repositories.ErrReferenceNotFound, wantErr: ErrPlaceNotFound},
		{
			name:    "missing place constraint",
			saveErr: &repositories.ReferenceError{Constraint: repositories.FavoritesPlaceConstraint},
			wantErr: ErrPlaceNotFound,
		},
		{
			name:    "deleted user",
			saveErr: &repositories.ReferenceError{Constraint: repositories.FavoritesUserConstraint},
			wantErr: ErrUserDoesNotExist,
		},
		{name: "db error", saveErr: errors.New("db error"), wantErr: errors.New("db error")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			writer.EXPECT().Save(gomock.Any(), gomock.Any()).
				DoAndReturn(func(_ context.Context, fav *models.FavoriteDB) error {
					assert.Equal(t, userID, fav.UserID)
					assert.Equal(t, placeID, fav.PlaceID)
					assert.NotEqual(t, uuid.Nil, fav.FavoriteID)
					return tt.saveErr
				})

			err := svc.Add(context.Background(), userID, placeID)
			if tt.wantErr != nil {
				assert.EqualError(t, err, tt.wantErr.Error())
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFavoriteService_List(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	reader := NewMockFavoriteReader(ctrl)
	svc := NewFavoriteService(NewMockFavoriteWriter(ctrl), reader, nil)
	userID := uuid.New()

	reader.EXPECT().ListPlacesByUser(gomock.Any(), userID).Return([]models.PlaceDB{{Title: "a"}, {Title: "b"}}, nil)

	places, err := svc.List(context.Background(), userID)
	assert.NoError(t, err)
	assert.Len(t, places, 2)
}
