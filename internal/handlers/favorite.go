package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-marketplace/internal/models"
)

// Favoriter defines the interface that the service must implement.
type Favoriter interface {
	Add(ctx context.Context, userID, placeID uuid.UUID) error
	List(ctx context.Context, userID uuid.UUID) ([]models.PlaceDB, error)
}

// FavoriteRequest marks a place as favorite
// swagger:model FavoriteRequest
type FavoriteRequest struct {
	PlaceID uuid.UUID `json:"placeId"`
	Token   string    `json:"token,omitempty"`
}

// NewAddFavoriteHandler returns an HTTP handler that favorites a listing.
// @Summary Add a favorite
// @Tags places
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body handlers.FavoriteRequest true "Place id"
// @Success 200 {object} handlers.MessageResponse
// @Failure 400 {object} handlers.ErrorResponse
// @Failure 401 {object} handlers.ErrorResponse
// @Failure 404 {object} handlers.ErrorResponse
// @Failure 500 {object} handlers.ErrorResponse
// @Router /places/favorite [post]
func NewAddFavoriteHandler(svc Favoriter, getUserID UserIDGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := callerID(w, r, getUserID)
		if !ok {
			return
		}

		var req FavoriteRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if req.PlaceID == uuid.Nil {
			writeError(w, http.StatusBadRequest, "Invalid placeId")
			return
		}

		if err := svc.Add(r.Context(), userID, req.PlaceID); err != nil {
			writeServiceError(r.Context(), w, err)
			return
		}

		writeJSON(w, http.StatusOK, MessageResponse{Message: "Favorite added"})
	}
}

// NewListFavoritesHandler returns an HTTP handler listing the caller's favorites.
// @Summary List favorites
// @Tags places
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.PlaceDB
// @Failure 401 {object} handlers.ErrorResponse
// @Failure 500 {object} handlers.ErrorResponse
// @Router /places/favorites [get]
func NewListFavoritesHandler(svc Favoriter, getUserID UserIDGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := callerID(w, r, getUserID)
		if !ok {
			return
		}

		places, err := svc.List(r.Context(), userID)
		if err != nil {
			writeServiceError(r.Context(), w, err)
			return
		}
		if places == nil {
			places = []models.PlaceDB{}
		}

		writeJSON(w, http.StatusOK, places)
	}
}
