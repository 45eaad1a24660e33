package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-marketplace/internal/models"
	"github.com/sbilibin2017/gw-marketplace/internal/repositories"
	"github.com/sbilibin2017/gw-marketplace/internal/services"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
)

func TestAuthService_Register(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockReader := services.NewMockUserReader(ctrl)
	mockWriter := services.NewMockUserWriter(ctrl)
	mockJWT := services.NewMockJWTGenerator(ctrl)

	svc := services.NewAuthService(mockReader, mockWriter, mockJWT)

	t.Run("successful registration normalizes fields", func(t *testing.T) {
		var saved *models.UserDB
		mockReader.EXPECT().GetByUsername(gomock.Any(), "alice").Return(nil, nil)
		mockWriter.EXPECT().Save(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, u *models.UserDB) error {
				saved = u
				return nil
			})
		mockJWT.EXPECT().Generate(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, id uuid.UUID) (string, error) {
				assert.Equal(t, saved.UserID, id)
				return "token123", nil
			})

		token, err := svc.Register(context.Background(), "  Alice ", "pass123", " alice ", "smith", " Alice@Example.COM ")
		assert.NoError(t, err)
		assert.Equal(t, "token123", token)

		if assert.NotNil(t, saved) {
			assert.Equal(t, "alice", saved.Username)
			assert.Equal(t, "Alice", saved.FirstName)
			assert.Equal(t, "Smith", saved.LastName)
			assert.Equal(t, "alice@example.com", saved.Email)
			assert.NotEqual(t, uuid.Nil, saved.UserID)
			assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(saved.PasswordHash), []byte("pass123")))
		}
	})

	dbErr := errors.New("db error")

	tests := []struct {
		name     string
		username string
		password string
		setup    func()
		wantErr  error
	}{
		{
			name:     "invalid username",
			username: "a!",
			password: "pass123",
			wantErr:  services.ErrInvalidUsername,
		},
		{
			name:     "username too long",
			username: "abcdefghijklmnopq",
			password: "pass123",
			wantErr:  services.ErrInvalidUsername,
		},
		{
			name:     "missing password",
			username: "alice",
			password: "",
			wantErr:  services.ErrInvalidInput,
		},
		{
			name:     "user already exists",
			username: "bob",
			password: "pass123",
			setup: func() {
				mockReader.EXPECT().GetByUsername(gomock.Any(), "bob").Return(&models.UserDB{UserID: uuid.New()}, nil)
			},
			wantErr: services.ErrUserAlreadyExists,
		},
		{
			name:     "unique violation on insert",
			username: "carol",
			password: "pass123",
			setup: func() {
				mockReader.EXPECT().GetByUsername(gomock.Any(), "carol").Return(nil, nil)
				mockWriter.EXPECT().Save(gomock.Any(), gomock.Any()).Return(repositories.ErrConflict)
			},
			wantErr: services.ErrUserAlreadyExists,
		},
		{
			name:     "reader error",
			username: "eve",
			password: "pass123",
			setup: func() {
				mockReader.EXPECT().GetByUsername(gomock.Any(), "eve").Return(nil, dbErr)
			},
			wantErr: dbErr,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.setup != nil {
				tt.setup()
			}

			token, err := svc.Register(context.Background(), tt.username, tt.password, "First", "Last", "x@example.com")
			assert.Empty(t, token)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockReader := services.NewMockUserReader(ctrl)
	mockWriter := services.NewMockUserWriter(ctrl)
	mockJWT := services.NewMockJWTGenerator(ctrl)

	svc := services.NewAuthService(mockReader, mockWriter, mockJWT)

	password := "secret"
	hashed, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	userID := uuid.New()

	tests := []struct {
		name      string
		username  string
		loginPass string
		lookup    string
		user      *models.UserDB
		readerErr error
		jwtErr    error
		wantErr   error
		expectJWT string
	}{
		{
			name:      "successful login",
			username:  "  Alice",
			loginPass: password,
			lookup:    "alice",
			user:      &models.UserDB{UserID: userID, Username: "alice", PasswordHash: string(hashed)},
			expectJWT: "token123",
		},
		{
			name:      "user does not exist",
			username:  "bob",
			loginPass: password,
			lookup:    "bob",
			wantErr:   services.ErrUserDoesNotExist,
		},
		{
			name:      "wrong password",
			username:  "alice",
			loginPass: "wrong",
			lookup:    "alice",
			user:      &models.UserDB{UserID: userID, Username: "alice", PasswordHash: string(hashed)},
			wantErr:   services.ErrInvalidCredentials,
		},
		{
			name:      "reader error",
			username:  "eve",
			loginPass: password,
			lookup:    "eve",
			readerErr: errors.New("db error"),
			wantErr:   errors.New("db error"),
		},
		{
			name:      "jwt error",
			username:  "alice",
			loginPass: password,
			lookup:    "alice",
			user:      &models.UserDB{UserID: userID, Username: "alice", PasswordHash: string(hashed)},
			jwtErr:    errors.New("jwt error"),
			wantErr:   errors.New("jwt error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockReader.EXPECT().GetByUsername(gomock.Any(), tt.lookup).Return(tt.user, tt.readerErr)

			if tt.user != nil && tt.loginPass == password {
				mockJWT.EXPECT().Generate(gomock.Any(), tt.user.UserID).Return(tt.expectJWT, tt.jwtErr)
			}

			token, err := svc.Login(context.Background(), tt.username, tt.loginPass)
			if tt.wantErr != nil {
				assert.EqualError(t, err, tt.wantErr.Error())
				assert.Empty(t, token)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expectJWT, token)
			}
		})
	}

	t.Run("empty credentials", func(t *testing.T) {
		_, err := svc.Login(context.Background(), " ", "")
		assert.ErrorIs(t, err, services.ErrInvalidInput)
	})
}
