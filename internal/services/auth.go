package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-marketplace/internal/logger"
	"github.com/sbilibin2017/gw-marketplace/internal/models"
	"github.com/sbilibin2017/gw-marketplace/internal/repositories"
	"golang.org/x/crypto/bcrypt"
)

// UserReader defines read-only operations for users.
type UserReader interface {
	GetByUsername(ctx context.Context, username string) (*models.UserDB, error)
	GetByID(ctx context.Context, userID uuid.UUID) (*models.UserDB, error)
}

// UserWriter defines write operations for users.
type UserWriter interface {
	Save(ctx context.Context, user *models.UserDB) error
}

// JWTGenerator defines an interface for generating JWT tokens.
type JWTGenerator interface {
	Generate(ctx context.Context, userID uuid.UUID) (string, error)
}

// AuthService handles registration and login.
type AuthService struct {
	reader UserReader
	writer UserWriter
	jwt    JWTGenerator
}

// NewAuthService creates a new AuthService instance.
func NewAuthService(reader UserReader, writer UserWriter, jwt JWTGenerator) *AuthService {
	return &AuthService{
		reader: reader,
		writer: writer,
		jwt:    jwt,
	}
}

// Register creates a new user and returns a token for it.
func (svc *AuthService) Register(ctx context.Context, username, password, firstName, lastName, email string) (string, error) {
	username = normalizeUsername(username)
	email = normalizeEmail(email)
	firstName = normalizeName(firstName)
	lastName = normalizeName(lastName)

	if err := requireFields(
		field{"username", username},
		field{"password", password},
		field{"first_name", firstName},
		field{"last_name", lastName},
		field{"email", email},
	); err != nil {
		return "", err
	}
	if err := validateUsername(username); err != nil {
		return "", err
	}

	user, err := svc.reader.GetByUsername(ctx, username)
	if err != nil {
		logger.FromContext(ctx).Errorw("failed to check user exists", "err", err)
		return "", err
	}
	if user != nil {
		logger.FromContext(ctx).Errorw("user already exists", "username", username)
		return "", ErrUserAlreadyExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logger.FromContext(ctx).Errorw("failed to hash password", "err", err)
		return "", err
	}

	user = &models.UserDB{
		UserID:       uuid.New(),
		Username:     username,
		PasswordHash: string(hashedPassword),
		FirstName:    firstName,
		LastName:     lastName,
		Email:        email,
	}
	if err := svc.writer.Save(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			return "", ErrUserAlreadyExists
		}
		logger.FromContext(ctx).Errorw("failed to save user", "err", err)
		return "", err
	}

	token, err := svc.jwt.Generate(ctx, user.UserID)
	if err != nil {
		logger.FromContext(ctx).Errorw("failed to generate JWT", "err", err)
		return "", err
	}

	return token, nil
}

// Login authenticates a user and returns a JWT token.
func (svc *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	username = normalizeUsername(username)
	if err := requireFields(field{"username", username}, field{"password", password}); err != nil {
		return "", err
	}

	user, err := svc.reader.GetByUsername(ctx, username)
	if err != nil {
		logger.FromContext(ctx).Errorw("failed to get user", "err", err)
		return "", err
	}
	if user == nil {
		logger.FromContext(ctx).Errorw("user does not exist", "username", username)
		return "", ErrUserDoesNotExist
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		logger.FromContext(ctx).Errorw("invalid credentials", "username", username)
		return "", ErrInvalidCredentials
	}

	token, err := svc.jwt.Generate(ctx, user.UserID)
	if err != nil {
		logger.FromContext(ctx).Errorw("failed to generate JWT", "err", err)
		return "", err
	}

	return token, nil
}
