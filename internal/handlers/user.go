package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-marketplace/internal/models"
)

// UserManager defines the interface that the service must implement.
type UserManager interface {
	Get(ctx context.Context, userID uuid.UUID) (*models.UserDB, error)
	Update(ctx context.Context, callerID, targetID uuid.UUID, upd models.UserUpdate) error
	Delete(ctx context.Context, callerID, targetID uuid.UUID) error
	SetPicture(ctx context.Context, callerID, targetID uuid.UUID, data []byte, mimeType string) (string, error)
}

// UpdateUserRequest changes the given profile fields
// swagger:model UpdateUserRequest
type UpdateUserRequest struct {
	ID    uuid.UUID `json:"id"`
	Token string    `json:"token,omitempty"`
	models.UserUpdate
}

// PictureResponse carries the stored picture path
// swagger:model PictureResponse
type PictureResponse struct {
	Path string `json:"path"`
}

// NewGetUserHandler returns an HTTP handler that fetches a public profile.
// @Summary Get a user
// @Description Returns the user, or null when it does not exist.
// @Tags users
// @Produce json
// @Param id query string true "User id"
// @Success 200 {object} models.UserDB
// @Failure 400 {object} handlers.ErrorResponse
// @Failure 500 {object} handlers.ErrorResponse
// @Router /users/user [get]
func NewGetUserHandler(svc UserManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := parseID(w, r, "id")
		if !ok {
			return
		}

		user, err := svc.Get(r.Context(), userID)
		if err != nil {
			writeServiceError(r.Context(), w, err)
			return
		}

		writeJSON(w, http.StatusOK, user)
	}
}

// NewUpdateUserHandler returns an HTTP handler that updates a profile.
// @Summary Update a user
// @Description Changes the fields present in the body. The user themself or an admin only.
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body handlers.UpdateUserRequest true "Changed fields"
// @Success 200 {object} handlers.MessageResponse
// @Failure 400 {object} handlers.ErrorResponse
// @Failure 401 {object} handlers.ErrorResponse
// @Failure 403 {object} handlers.ErrorResponse
// @Failure 500 {object} handlers.ErrorResponse
// @Router /users/update [put]
func NewUpdateUserHandler(svc UserManager, getUserID UserIDGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := callerID(w, r, getUserID)
		if !ok {
			return
		}

		var req UpdateUserRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if req.ID == uuid.Nil {
			writeError(w, http.StatusBadRequest, "Invalid id")
			return
		}

		if err := svc.Update(r.Context(), caller, req.ID, req.UserUpdate); err != nil {
			writeServiceError(r.Context(), w, err)
			return
		}

		writeJSON(w, http.StatusOK, MessageResponse{Message: "User updated"})
	}
}

// NewDeleteUserHandler returns an HTTP handler that deletes an account.
// @Summary Delete a user
// @Description Deletes the user with their places and favorites. The user themself or an admin only.
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body handlers.IDRequest true "User id"
// @Success 200 {object} handlers.MessageResponse
// @Failure 400 {object} handlers.ErrorResponse
// @Failure 401 {object} handlers.ErrorResponse
// @Failure 404 {object} handlers.ErrorResponse
// @Failure 500 {object} handlers.ErrorResponse
// @Router /users/delete [delete]
func NewDeleteUserHandler(svc UserManager, getUserID UserIDGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := callerID(w, r, getUserID)
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

		if err := svc.Delete(r.Context(), caller, req.ID); err != nil {
			writeServiceError(r.Context(), w, err)
			return
		}

		writeJSON(w, http.StatusOK, MessageResponse{Message: "User deleted"})
	}
}

// NewUserPictureHandler returns an HTTP handler that replaces a profile picture.
// @Summary Upload a profile picture
// @Tags users
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id formData string true "User id"
// @Param image formData file true "Picture"
// @Success 200 {object} handlers.PictureResponse
// @Failure 400 {object} handlers.ErrorResponse
// @Failure 401 {object} handlers.ErrorResponse
// @Failure 404 {object} handlers.ErrorResponse
// @Failure 500 {object} handlers.ErrorResponse
// @Router /users/picture [post]
func NewUserPictureHandler(svc UserManager, getUserID UserIDGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := callerID(w, r, getUserID)
		if !ok {
			return
		}

		if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid multipart form")
			return
		}

		targetID, err := uuid.Parse(r.FormValue("id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid id")
			return
		}

		file, header, err := r.FormFile("image")
		if err != nil {
			writeError(w, http.StatusBadRequest, "Missing image")
			return
		}
		defer file.Close()

		data, err := io.ReadAll(io.LimitReader(file, maxImageSize+1))
		if err != nil || len(data) > maxImageSize {
			writeError(w, http.StatusBadRequest, "Invalid image")
			return
		}

		mimeType := header.Header.Get("Content-Type")
		if mimeType == "" || mimeType == "application/octet-stream" {
			mimeType = http.DetectContentType(data)
		}

		path, err := svc.SetPicture(r.Context(), caller, targetID, data, mimeType)
		if err != nil {
			writeServiceError(r.Context(), w, err)
			return
		}

		writeJSON(w, http.StatusOK, PictureResponse{Path: path})
	}
}
