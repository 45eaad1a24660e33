package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-marketplace/internal/models"
)

// PlaceGetter defines the interface that the service must implement.
type PlaceGetter interface {
	Get(ctx context.Context, placeID uuid.UUID) (*models.PlaceDB, error)
}

// PlaceSearcher defines the interface that the service must implement.
type PlaceSearcher interface {
	Search(ctx context.Context, filter models.PlaceFilter) ([]models.PlaceDB, error)
}

// NewGetPlaceHandler returns an HTTP handler that fetches one listing.
// @Summary Get a place
// @Description Returns the place, or null when it does not exist.
// @Tags places
// @Produce json
// @Param id query string true "Place id"
// @Success 200 {object} models.PlaceDB
// @Failure 400 {object} handlers.ErrorResponse
// @Failure 500 {object} handlers.ErrorResponse
// @Router /places/place [get]
func NewGetPlaceHandler(svc PlaceGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		placeID, ok := parseID(w, r, "id")
		if !ok {
			return
		}

		place, err := svc.Get(r.Context(), placeID)
		if err != nil {
			writeServiceError(r.Context(), w, err)
			return
		}

		writeJSON(w, http.StatusOK, place)
	}
}

// NewSearchPlacesHandler returns an HTTP handler that searches listings.
// @Summary Search places
// @Description filters is a JSON object: category, country/city/county/district (string or list), area/price {min,max} (exclusive), rooms, beds, wc, pets, available, amenities, features, limit, offset.
// @Tags places
// @Produce json
// @Param filters query string false "Filter JSON"
// @Success 200 {array} models.PlaceDB
// @Failure 400 {object} handlers.ErrorResponse
// @Failure 500 {object} handlers.ErrorResponse
// @Router /places/places [get]
func NewSearchPlacesHandler(svc PlaceSearcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var filter models.PlaceFilter
		if raw := r.URL.Query().Get("filters"); raw != "" {
			if err := json.Unmarshal([]byte(raw), &filter); err != nil {
				writeError(w, http.StatusBadRequest, "Invalid filters")
				return
			}
		}

		places, err := svc.Search(r.Context(), filter)
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
