package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-marketplace/internal/services"
	"github.com/stretchr/testify/assert"
)

func authenticatedAs(id uuid.UUID) UserIDGetter {
	return func(context.Context) (uuid.UUID, bool) { return id, true }
}

func anonymous(context.Context) (uuid.UUID, bool) { return uuid.Nil, false }

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp map[string]any
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp
}

func TestRegisterHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tests := []struct {
		name         string
		body         string
		mockSetup    func(m *MockRegisterer)
		expectedCode int
		expectedBody map[string]any
	}{
		{
			name: "success",
			body: `{"username":"john","password":"secret","first_name":"John","last_name":"Doe","email":"john@example.com"}`,
			mockSetup: func(m *MockRegisterer) {
				m.EXPECT().
					Register(gomock.Any(), "john", "secret", "John", "Doe", "john@example.com").
					Return("token123", nil)
			},
			expectedCode: http.StatusCreated,
			expectedBody: map[string]any{"token": "token123"},
		},
		{
			name: "user already exists",
			body: `{"username":"alice","password":"pass","first_name":"A","last_name":"B","email":"a@example.com"}`,
			mockSetup: func(m *MockRegisterer) {
				m.EXPECT().Register(gomock.Any(), "alice", "pass", "A", "B", "a@example.com").
					Return("", services.ErrUserAlreadyExists)
			},
			expectedCode: http.StatusForbidden,
			expectedBody: map[string]any{"error": "Username already exists"},
		},
		{
			name: "invalid username",
			body: `{"username":"a!","password":"pass","first_name":"A","last_name":"B","email":"a@example.com"}`,
			mockSetup: func(m *MockRegisterer) {
				m.EXPECT().Register(gomock.Any(), "a!", "pass", "A", "B", "a@example.com").
					Return("", services.ErrInvalidUsername)
			},
			expectedCode: http.StatusBadRequest,
			expectedBody: map[string]any{"error": services.ErrInvalidUsername.Error()},
		},
		{
			name: "missing field",
			body: `{"username":"bob"}`,
			mockSetup: func(m *MockRegisterer) {
				m.EXPECT().Register(gomock.Any(), "bob", "", "", "", "").
					Return("", fmt.Errorf("%w: password is required", services.ErrInvalidInput))
			},
			expectedCode: http.StatusBadRequest,
			expectedBody: map[string]any{"error": "invalid input: password is required"},
		},
		{
			name: "internal server error",
			body: `{"username":"bob","password":"pass","first_name":"B","last_name":"C","email":"b@example.com"}`,
			mockSetup: func(m *MockRegisterer) {
				m.EXPECT().Register(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Return("", errors.New("database failure"))
			},
			expectedCode: http.StatusInternalServerError,
			expectedBody: map[string]any{"error": "Internal server error"},
		},
		{
			name:         "invalid json",
			body:         "{invalid json}",
			expectedCode: http.StatusBadRequest,
			expectedBody: map[string]any{"error": "Invalid request body"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockSvc := NewMockRegisterer(ctrl)
			if tt.mockSetup != nil {
				tt.mockSetup(mockSvc)
			}

			handler := NewRegisterHandler(mockSvc)

			req := httptest.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewBufferString(tt.body))
			rr := httptest.NewRecorder()
			handler(rr, req)

			assert.Equal(t, tt.expectedCode, rr.Code)
			assert.Equal(t, tt.expectedBody, decodeBody(t, rr))
		})
	}
}

func TestLoginHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tests := []struct {
		name         string
		body         string
		mockSetup    func(m *MockLoginer)
		expectedCode int
		expectedBody map[string]any
	}{
		{
			name: "success",
			body: `{"username":"john","password":"secret"}`,
			mockSetup: func(m *MockLoginer) {
				m.EXPECT().Login(gomock.Any(), "john", "secret").Return("token123", nil)
			},
			expectedCode: http.StatusOK,
			expectedBody: map[string]any{"token": "token123"},
		},
		{
			name: "wrong password",
			body: `{"username":"john","password":"bad"}`,
			mockSetup: func(m *MockLoginer) {
				m.EXPECT().Login(gomock.Any(), "john", "bad").Return("", services.ErrInvalidCredentials)
			},
			expectedCode: http.StatusUnauthorized,
			expectedBody: map[string]any{"error": "Invalid username or password"},
		},
		{
			name: "unknown user",
			body: `{"username":"ghost","password":"x"}`,
			mockSetup: func(m *MockLoginer) {
				m.EXPECT().Login(gomock.Any(), "ghost", "x").Return("", services.ErrUserDoesNotExist)
			},
			expectedCode: http.StatusUnauthorized,
			expectedBody: map[string]any{"error": "Invalid username or password"},
		},
		{
			name: "empty credentials",
			body: `{}`,
			mockSetup: func(m *MockLoginer) {
				m.EXPECT().Login(gomock.Any(), "", "").Return("", fmt.Errorf("%w: username is required", services.ErrInvalidInput))
			},
			expectedCode: http.StatusBadRequest,
			expectedBody: map[string]any{"error": "invalid input: username is required"},
		},
		{
			name:         "invalid json",
			body:         "nope",
			expectedCode: http.StatusBadRequest,
			expectedBody: map[string]any{"error": "Invalid request body"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockSvc := NewMockLoginer(ctrl)
			if tt.mockSetup != nil {
				tt.mockSetup(mockSvc)
			}

			req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewBufferString(tt.body))
			rr := httptest.NewRecorder()
			NewLoginHandler(mockSvc)(rr, req)

			assert.Equal(t, tt.expectedCode, rr.Code)
			assert.Equal(t, tt.expectedBody, decodeBody(t, rr))
		})
	}
}
