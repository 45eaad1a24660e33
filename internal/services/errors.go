package services

import "errors"

// Error variables
var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidUsername    = errors.New("username must be 3-16 characters of letters, digits, '_' or '-'")
	ErrUserAlreadyExists  = errors.New("username already exists")
	ErrUserDoesNotExist   = errors.New("user does not exist")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrNotAuthorized      = errors.New("not authorized")
	ErrPlaceNotFound      = errors.New("place not found")
	ErrStorage            = errors.New("storage error")
)
