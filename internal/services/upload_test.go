package services

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadService_Upload(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := NewMockBlobStore(ctrl)
	svc := NewUploadService(store)
	svc.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 123, time.FixedZone("X", 3600)) }

	pathPattern := regexp.MustCompile(`^places/2024-05-01T11:00:00\.000000123Z-[0-9a-f-]{36}\.png$`)

	t.Run("stores image", func(t *testing.T) {
		store.EXPECT().Put(gomock.Any(), gomock.Any(), "image/png", []byte("data")).Return(nil)

		path, err := svc.Upload(context.Background(), []byte("data"), "image/png", "places")
		require.NoError(t, err)
		assert.Regexp(t, pathPattern, path)
	})

	t.Run("rejects non images", func(t *testing.T) {
		_, err := svc.Upload(context.Background(), []byte("data"), "text/plain", "places")
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("rejects empty data", func(t *testing.T) {
		_, err := svc.Upload(context.Background(), nil, "image/png", "places")
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("store failure", func(t *testing.T) {
		store.EXPECT().Put(gomock.Any(), gomock.Any(), "image/jpeg", gomock.Any()).Return(errors.New("quota"))

		_, err := svc.Upload(context.Background(), []byte("data"), "image/jpeg", "users")
		assert.ErrorIs(t, err, ErrStorage)
	})
}

func TestUploadService_SignedURL(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := NewMockBlobStore(ctrl)
	svc := NewUploadService(store)
	now := time.Now()
	svc.now = func() time.Time { return now }

	store.EXPECT().SignedURL(gomock.Any(), "places/a.png", now.Add(SignedURLExpiration)).Return("https://signed", nil)

	url, err := svc.SignedURL(context.Background(), "places/a.png")
	assert.NoError(t, err)
	assert.Equal(t, "https://signed", url)

	_, err = svc.SignedURL(context.Background(), "")
	assert.ErrorIs(t, err, ErrInvalidInput)

	store.EXPECT().SignedURL(gomock.Any(), "x", gomock.Any()).Return("", errors.New("denied"))
	_, err = svc.SignedURL(context.Background(), "x")
	assert.ErrorIs(t, err, ErrStorage)
}

func TestUploadService_NoStore(t *testing.T) {
	svc := NewUploadService(nil)
	ctx := context.Background()

	_, err := svc.Upload(ctx, []byte("data"), "image/png", "places")
	assert.ErrorIs(t, err, ErrStorage)

	_, err = svc.SignedURL(ctx, "places/a.png")
	assert.ErrorIs(t, err, ErrStorage)

	assert.ErrorIs(t, svc.Delete(ctx, "places/a.png"), ErrStorage)
}
