package handlers

import (
	"context"
	"net/http"
)

// Registerer defines the interface that the service must implement.
type Registerer interface {
	Register(ctx context.Context, username, password, firstName, lastName, email string) (string, error)
}

// RegisterRequest represents the JSON body for user registration
// swagger:model RegisterRequest
type RegisterRequest struct {
	// Username, 3-16 letters, digits, '_' or '-'
	// required: true
	// default: john_doe
	Username string `json:"username"`

	// Password
	// required: true
	// default: secret123
	Password string `json:"password"`

	// First name
	// required: true
	// default: John
	FirstName string `json:"first_name"`

	// Last name
	// required: true
	// default: Doe
	LastName string `json:"last_name"`

	// Email
	// required: true
	// default: john@example.com
	Email string `json:"email"`
}

// TokenResponse carries a freshly issued JWT
// swagger:model TokenResponse
type TokenResponse struct {
	// JWT token
	Token string `json:"token"`
}

// NewRegisterHandler returns an HTTP handler for user registration.
// @Summary Register a new user
// @Description Creates a new user account and returns a token for it. Username and email are lowercased, names capitalized.
// @Tags auth
// @Accept json
// @Produce json
// @Param registerRequest body handlers.RegisterRequest true "User registration request"
// @Success 201 {object} handlers.TokenResponse "User successfully registered"
// @Failure 400 {object} handlers.ErrorResponse "Invalid request"
// @Failure 403 {object} handlers.ErrorResponse "Username already exists"
// @Failure 500 {object} handlers.ErrorResponse "Internal server error"
// @Router /auth/register [post]
func NewRegisterHandler(svc Registerer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		token, err := svc.Register(r.Context(), req.Username, req.Password, req.FirstName, req.LastName, req.Email)
		if err != nil {
			writeServiceError(r.Context(), w, err)
			return
		}

		writeJSON(w, http.StatusCreated, TokenResponse{Token: token})
	}
}
