package handlers

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-marketplace/internal/models"
	"github.com/sbilibin2017/gw-marketplace/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetUserHandler(t *testing.T) {
	userID := uuid.New()

	t.Run("found without password hash", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc := NewMockUserManager(ctrl)
		svc.EXPECT().Get(gomock.Any(), userID).Return(&models.UserDB{UserID: userID, Username: "alice", PasswordHash: "secret-hash"}, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/users/user?id="+userID.String(), nil)
		rr := httptest.NewRecorder()
		NewGetUserHandler(svc)(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.NotContains(t, rr.Body.String(), "secret-hash")
		assert.Equal(t, "alice", decodeBody(t, rr)["username"])
	})

	t.Run("missing returns null", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc := NewMockUserManager(ctrl)
		svc.EXPECT().Get(gomock.Any(), userID).Return(nil, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/users/user?id="+userID.String(), nil)
		rr := httptest.NewRecorder()
		NewGetUserHandler(svc)(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "null\n", rr.Body.String())
	})
}

func TestUpdateUserHandler(t *testing.T) {
	caller := uuid.New()
	target := uuid.New()

	tests := []struct {
		name         string
		serviceErr   error
		expectedCode int
	}{
		{name: "updated", expectedCode: http.StatusOK},
		{name: "username taken", serviceErr: services.ErrUserAlreadyExists, expectedCode: http.StatusForbidden},
		{name: "not allowed", serviceErr: services.ErrNotAuthorized, expectedCode: http.StatusUnauthorized},
		{name: "invalid", serviceErr: services.ErrInvalidUsername, expectedCode: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			svc := NewMockUserManager(ctrl)
			svc.EXPECT().Update(gomock.Any(), caller, target, gomock.Any()).
				DoAndReturn(func(_ context.Context, _, _ uuid.UUID, upd models.UserUpdate) error {
					require.NotNil(t, upd.Biography)
					assert.Equal(t, "hello", *upd.Biography)
					assert.Nil(t, upd.Username)
					return tt.serviceErr
				})

			body := fmt.Sprintf(`{"id":%q,"token":"tok","biography":"hello"}`, target)
			req := httptest.NewRequest(http.MethodPut, "/api/users/update", bytes.NewBufferString(body))
			rr := httptest.NewRecorder()
			NewUpdateUserHandler(svc, authenticatedAs(caller))(rr, req)

			assert.Equal(t, tt.expectedCode, rr.Code)
		})
	}
}

func TestDeleteUserHandler(t *testing.T) {
	caller := uuid.New()

	tests := []struct {
		name         string
		serviceErr   error
		expectedCode int
	}{
		{name: "deleted", expectedCode: http.StatusOK},
		{name: "missing", serviceErr: services.ErrUserDoesNotExist, expectedCode: http.StatusNotFound},
		{name: "not allowed", serviceErr: services.ErrNotAuthorized, expectedCode: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			svc := NewMockUserManager(ctrl)
			svc.EXPECT().Delete(gomock.Any(), caller, caller).Return(tt.serviceErr)

			body := fmt.Sprintf(`{"id":%q}`, caller)
			req := httptest.NewRequest(http.MethodDelete, "/api/users/delete", bytes.NewBufferString(body))
			rr := httptest.NewRecorder()
			NewDeleteUserHandler(svc, authenticatedAs(caller))(rr, req)

			assert.Equal(t, tt.expectedCode, rr.Code)
		})
	}
}

func TestUserPictureHandler(t *testing.T) {
	caller := uuid.New()

	newRequest := func(t *testing.T, id string, withImage bool) *http.Request {
		body := &bytes.Buffer{}
		mw := multipart.NewWriter(body)
		require.NoError(t, mw.WriteField("id", id))
		if withImage {
			h := make(textproto.MIMEHeader)
			h.Set("Content-Disposition", `form-data; name="image"; filename="me.jpg"`)
			h.Set("Content-Type", "image/jpeg")
			part, err := mw.CreatePart(h)
			require.NoError(t, err)
			_, err = part.Write([]byte("jpeg"))
			require.NoError(t, err)
		}
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/users/picture", body)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		return req
	}

	t.Run("uploaded", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc := NewMockUserManager(ctrl)
		svc.EXPECT().SetPicture(gomock.Any(), caller, caller, []byte("jpeg"), "image/jpeg").Return("users/me.jpeg", nil)

		rr := httptest.NewRecorder()
		NewUserPictureHandler(svc, authenticatedAs(caller))(rr, newRequest(t, caller.String(), true))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, map[string]any{"path": "users/me.jpeg"}, decodeBody(t, rr))
	})

	t.Run("missing image", func(t *testing.T) {
		ctrl := gomock.NewController(t)

		rr := httptest.NewRecorder()
		NewUserPictureHandler(NewMockUserManager(ctrl), authenticatedAs(caller))(rr, newRequest(t, caller.String(), false))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("invalid id", func(t *testing.T) {
		ctrl := gomock.NewController(t)

		rr := httptest.NewRecorder()
		NewUserPictureHandler(NewMockUserManager(ctrl), authenticatedAs(caller))(rr, newRequest(t, "abc", true))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("storage down", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc := NewMockUserManager(ctrl)
		svc.EXPECT().SetPicture(gomock.Any(), caller, caller, gomock.Any(), gomock.Any()).Return("", services.ErrStorage)

		rr := httptest.NewRecorder()
		NewUserPictureHandler(svc, authenticatedAs(caller))(rr, newRequest(t, caller.String(), true))

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
	})
}
