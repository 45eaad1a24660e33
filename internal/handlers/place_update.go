package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-marketplace/internal/models"
)

// PlaceUpdater defines the interface that the service must implement.
type PlaceUpdater interface {
	Update(ctx context.Context, userID, placeID uuid.UUID, in models.PlaceInput) error
	Patch(ctx context.Context, userID, placeID uuid.UUID, patch models.PlacePatch) error
}

// UpdatePlaceRequest replaces every writable field of a place
// swagger:model UpdatePlaceRequest
type UpdatePlaceRequest struct {
	ID    uuid.UUID `json:"id"`
	Token string    `json:"token,omitempty"`
	models.PlaceInput
}

// PatchPlaceRequest changes the given fields of a place
// swagger:model PatchPlaceRequest
type PatchPlaceRequest struct {
	ID    uuid.UUID `json:"id"`
	Token string    `json:"token,omitempty"`
	models.PlacePatch
}

// NewUpdatePlaceHandler returns an HTTP handler for full place updates.
// @Summary Replace a place
// @Description Rewrites every field of the place. Omitted optional fields are cleared. Creator or admin only.
// @Tags places
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body handlers.UpdatePlaceRequest true "Place"
// @Success 200 {object} handlers.MessageResponse
// @Failure 400 {object} handlers.ErrorResponse
// @Failure 401 {object} handlers.ErrorResponse
// @Failure 404 {object} handlers.ErrorResponse
// @Failure 500 {object} handlers.ErrorResponse
// @Router /places/update [put]
func NewUpdatePlaceHandler(svc PlaceUpdater, getUserID UserIDGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := callerID(w, r, getUserID)
		if !ok {
			return
		}

		var req UpdatePlaceRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if req.ID == uuid.Nil {
			writeError(w, http.StatusBadRequest, "Invalid id")
			return
		}

		if err := svc.Update(r.Context(), userID, req.ID, req.PlaceInput); err != nil {
			writeServiceError(r.Context(), w, err)
			return
		}

		writeJSON(w, http.StatusOK, MessageResponse{Message: "Place updated"})
	}
}

// NewPatchPlaceHandler returns an HTTP handler for partial place updates.
// @Summary Update some fields of a place
// @Description Changes only the fields present in the body. Creator or admin only.
// @Tags places
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body handlers.PatchPlaceRequest true "Changed fields"
// @Success 200 {object} handlers.MessageResponse
// @Failure 400 {object} handlers.ErrorResponse
// @Failure 401 {object} handlers.ErrorResponse
// @Failure 404 {object} handlers.ErrorResponse
// @Failure 500 {object} handlers.ErrorResponse
// @Router /places/update [patch]
func NewPatchPlaceHandler(svc PlaceUpdater, getUserID UserIDGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := callerID(w, r, getUserID)
		if !ok {
			return
		}

		var req PatchPlaceRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if req.ID == uuid.Nil {
			writeError(w, http.StatusBadRequest, "Invalid id")
			return
		}

		if err := svc.Patch(r.Context(), userID, req.ID, req.PlacePatch); err != nil {
			writeServiceError(r.Context(), w, err)
			return
		}

		writeJSON(w, http.StatusOK, MessageResponse{Message: "Place updated"})
	}
}
