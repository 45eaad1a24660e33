package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// PlaceDeleter defines the interface that the service must implement.
type PlaceDeleter interface {
	Delete(ctx context.Context, userID, placeID uuid.UUID) error
}

// NewDeletePlaceHandler returns an HTTP handler that deletes a listing.
// @Summary Delete a place
// @Tags places
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body handlers.IDRequest true "Place id"
// @Success 200 {object} handlers.MessageResponse
// @Failure 400 {object} handlers.ErrorResponse
// @Failure 401 {object} handlers.ErrorResponse
// @Failure 404 {object} handlers.ErrorResponse
// @Failure 500 {object} handlers.ErrorResponse
// @Router /places/delete [delete]
func NewDeletePlaceHandler(svc PlaceDeleter, getUserID UserIDGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := callerID(w, r, getUserID)
		if !ok {
			return
		}

		var req IDRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if req.ID == uuid.Nil {
			writeError(w, http.StatusBadRequest, "Invalid id")
			return
		}

		if err := svc.Delete(r.Context(), userID, req.ID); err != nil {
			writeServiceError(r.Context(), w, err)
			return
		}

		writeJSON(w, http.StatusOK, MessageResponse{Message: "Place deleted"})
	}
}
