package services

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-marketplace/internal/models"
	"github.com/sbilibin2017/gw-marketplace/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func strPtr(s string) *string { return &s }

func newUserService(t *testing.T) (*UserService, *MockUserReader, *MockUserProfileWriter, *MockImageUploader) {
	ctrl := gomock.NewController(t)
	reader := NewMockUserReader(ctrl)
	writer := NewMockUserProfileWriter(ctrl)
	images := NewMockImageUploader(ctrl)
	return NewUserService(reader, writer, images, nil), reader, writer, images
}

func TestUserService_Update(t *testing.T) {
	self := uuid.New()

	t.Run("self update is normalized", func(t *testing.T) {
		svc, _, writer, _ := newUserService(t)

		writer.EXPECT().Update(gomock.Any(), self, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ uuid.UUID, upd models.UserUpdate) (bool, error) {
				assert.Equal(t, "newname", *upd.Username)
				assert.Equal(t, "Jane", *upd.FirstName)
				assert.Equal(t, "jane@example.com", *upd.Email)
				assert.Nil(t, upd.Password)
				require.NotNil(t, upd.PasswordHash)
				assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(*upd.PasswordHash), []byte("newpass")))
				return true, nil
			})

		err := svc.Update(context.Background(), self, self, models.UserUpdate{
			Username:  strPtr(" NewName "),
			FirstName: strPtr("jane"),
			Email:     strPtr("JANE@example.com"),
			Password:  strPtr("newpass"),
		})
		assert.NoError(t, err)
	})

	t.Run("admin updates someone else", func(t *testing.T) {
		svc, reader, writer, _ := newUserService(t)
		admin := uuid.New()

		reader.EXPECT().GetByID(gomock.Any(), admin).Return(&models.UserDB{UserID: admin, Admin: true}, nil)
		writer.EXPECT().Update(gomock.Any(), self, gomock.Any()).Return(true, nil)

		assert.NoError(t, svc.Update(context.Background(), admin, self, models.UserUpdate{Biography: strPtr("hi")}))
	})

	t.Run("stranger is rejected", func(t *testing.T) {
		svc, reader, _, _ := newUserService(t)
		stranger := uuid.New()

		reader.EXPECT().GetByID(gomock.Any(), stranger).Return(&models.UserDB{UserID: stranger}, nil)

		err := svc.Update(context.Background(), stranger, self, models.UserUpdate{Biography: strPtr("hi")})
		assert.ErrorIs(t, err, ErrNotAuthorized)
	})

	t.Run("username taken", func(t *testing.T) {
		svc, _, writer, _ := newUserService(t)
		writer.EXPECT().Update(gomock.Any(), self, gomock.Any()).Return(false, repositories.ErrConflict)

		err := svc.Update(context.Background(), self, self, models.UserUpdate{Username: strPtr("taken")})
		assert.ErrorIs(t, err, ErrUserAlreadyExists)
	})

	t.Run("missing user", func(t *testing.T) {
		svc, _, writer, _ := newUserService(t)
		writer.EXPECT().Update(gomock.Any(), self, gomock.Any()).Return(false, nil)

		err := svc.Update(context.Background(), self, self, models.UserUpdate{Biography: strPtr("x")})
		assert.ErrorIs(t, err, ErrUserDoesNotExist)
	})

	invalid := map[string]models.UserUpdate{
		"empty":        {},
		"bad username": {Username: strPtr("no spaces!")},
		"blank name":   {LastName: strPtr("  ")},
		"blank pass":   {Password: strPtr("")},
	}
	for name, upd := range invalid {
		t.Run(name, func(t *testing.T) {
			svc, _, _, _ := newUserService(t)
			err := svc.Update(context.Background(), self, self, upd)
			assert.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidInput) || errors.Is(err, ErrInvalidUsername))
		})
	}
}

func TestUserService_Delete(t *testing.T) {
	self := uuid.New()

	t.Run("deletes and removes picture", func(t *testing.T) {
		svc, reader, writer, images := newUserService(t)

		reader.EXPECT().GetByID(gomock.Any(), self).Return(&models.UserDB{UserID: self, PicturePath: "users/me.png"}, nil)
		writer.EXPECT().Delete(gomock.Any(), self).Return(true, nil)
		images.EXPECT().Delete(gomock.Any(), "users/me.png").Return(nil)

		assert.NoError(t, svc.Delete(context.Background(), self, self))
	})

	t.Run("missing user", func(t *testing.T) {
		svc, reader, _, _ := newUserService(t)
		reader.EXPECT().GetByID(gomock.Any(), self).Return(nil, nil)

		assert.ErrorIs(t, svc.Delete(context.Background(), self, self), ErrUserDoesNotExist)
	})
}

func TestUserService_SetPicture(t *testing.T) {
	self := uuid.New()

	t.Run("replaces previous picture", func(t *testing.T) {
		svc, reader, writer, images := newUserService(t)

		reader.EXPECT().GetByID(gomock.Any(), self).Return(&models.UserDB{UserID: self, PicturePath: "users/old.png"}, nil)
		images.EXPECT().Upload(gomock.Any(), []byte("img"), "image/png", "users").Return("users/new.png", nil)
		writer.EXPECT().UpdatePicture(gomock.Any(), self, "users/new.png").Return(nil)
		images.EXPECT().Delete(gomock.Any(), "users/old.png").Return(errors.New("already gone"))

		path, err := svc.SetPicture(context.Background(), self, self, []byte("img"), "image/png")
		assert.NoError(t, err)
		assert.Equal(t, "users/new.png", path)
	})

	t.Run("upload failure", func(t *testing.T) {
		svc, reader, _, images := newUserService(t)

		reader.EXPECT().GetByID(gomock.Any(), self).Return(&models.UserDB{UserID: self}, nil)
		images.EXPECT().Upload(gomock.Any(), gomock.Any(), gomock.Any(), "users").Return("", ErrStorage)

		_, err := svc.SetPicture(context.Background(), self, self, []byte("img"), "image/png")
		assert.ErrorIs(t, err, ErrStorage)
	})

	t.Run("db failure removes new upload", func(t *testing.T) {
		svc, reader, writer, images := newUserService(t)
		dbErr := errors.New("db error")

		reader.EXPECT().GetByID(gomock.Any(), self).Return(&models.UserDB{UserID: self}, nil)
		images.EXPECT().Upload(gomock.Any(), gomock.Any(), gomock.Any(), "users").Return("users/new.png", nil)
		writer.EXPECT().UpdatePicture(gomock.Any(), self, "users/new.png").Return(dbErr)
		images.EXPECT().Delete(gomock.Any(), "users/new.png").Return(nil)

		_, err := svc.SetPicture(context.Background(), self, self, []byte("img"), "image/png")
		assert.ErrorIs(t, err, dbErr)
	})
}

func TestUserService_Get(t *testing.T) {
	svc, reader, _, _ := newUserService(t)
	id := uuid.New()

	reader.EXPECT().GetByID(gomock.Any(), id).Return(nil, nil)

	user, err := svc.Get(context.Background(), id)
	assert.NoError(t, err)
	assert.Nil(t, user)
}
