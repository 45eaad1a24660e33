package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-marketplace/internal/logger"
	"github.com/sbilibin2017/gw-marketplace/internal/services"
)

// UserIDGetter returns the authenticated caller stored in the context by the auth middleware.
type UserIDGetter func(ctx context.Context) (uuid.UUID, bool)

// ErrorResponse represents an error response
// swagger:model ErrorResponse
type ErrorResponse struct {
	// Error message
	// default: Internal server error
	Error string `json:"error"`
}

// MessageResponse represents a successful operation without payload
// swagger:model MessageResponse
type MessageResponse struct {
	// Success message
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// writeServiceError maps service errors onto HTTP statuses.
func writeServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidInput), errors.Is(err, services.ErrInvalidUsername):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials), errors.Is(err, services.ErrNotAuthorized):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, services.ErrUserAlreadyExists):
		writeError(w, http.StatusForbidden, "Username already exists")
	case errors.Is(err, services.ErrUserDoesNotExist):
		writeError(w, http.StatusNotFound, "User not found")
	case errors.Is(err, services.ErrPlaceNotFound):
		writeError(w, http.StatusNotFound, "Place not found")
	default:
		logger.FromContext(ctx).Errorw("internal server error", "err", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// callerID returns the authenticated user or writes 401.
func callerID(w http.ResponseWriter, r *http.Request, getUserID UserIDGetter) (uuid.UUID, bool) {
	id, ok := getUserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
	}
	return id, ok
}

// parseID reads a uuid from a query parameter or writes 400.
func parseID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.URL.Query().Get(name))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

// IDRequest carries the target of a delete
// swagger:model IDRequest
type IDRequest struct {
	ID    uuid.UUID `json:"id"`
	Token string    `json:"token,omitempty"`
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}
