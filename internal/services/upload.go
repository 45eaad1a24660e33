package services

import (
	"context"
	"fmt"
	"mime"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-marketplace/internal/logger"
)

// SignedURLExpiration is how long a signed image URL stays valid.
const SignedURLExpiration = 10 * time.Minute

// BlobStore is the object storage backing uploads.
type BlobStore interface {
	Put(ctx context.Context, path, contentType string, data []byte) error
	SignedURL(ctx context.Context, path string, expires time.Time) (string, error)
	Delete(ctx context.Context, path string) error
}

// UploadService stores images in blob storage.
type UploadService struct {
	store BlobStore
	now   func() time.Time
}

// NewUploadService creates an UploadService. A nil store makes every call fail with ErrStorage.
func NewUploadService(store BlobStore) *UploadService {
	return &UploadService{store: store, now: time.Now}
}

// Upload stores data under folder and returns the object path.
func (s *UploadService) Upload(ctx context.Context, data []byte, mimeType, folder string) (string, error) {
	mediaType, _, err := mime.ParseMediaType(mimeType)
	if err != nil || !strings.HasPrefix(mediaType, "image/") {
		return "", fmt.Errorf("%w: unsupported mime type %q", ErrInvalidInput, mimeType)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty image", ErrInvalidInput)
	}
	if s.store == nil {
		return "", fmt.Errorf("%w: blob storage not configured", ErrStorage)
	}

	ext := strings.TrimPrefix(mediaType, "image/")
	path := fmt.Sprintf("%s/%s-%s.%s", folder, s.now().UTC().Format(time.RFC3339Nano), uuid.NewString(), ext)

	if err := s.store.Put(ctx, path, mediaType, data); err != nil {
		logger.FromContext(ctx).Errorw("failed to upload image", "path", path, "error", err)
		return "", fmt.Errorf("%w: %v", ErrStorage, err)
	}

	logger.FromContext(ctx).Infow("image uploaded", "path", path, "size", len(data))

	return path, nil
}

// SignedURL returns a GET URL for path valid for SignedURLExpiration.
func (s *UploadService) SignedURL(ctx context.Context, path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("%w: path is required", ErrInvalidInput)
	}
	if s.store == nil {
		return "", fmt.Errorf("%w: blob storage not configured", ErrStorage)
	}

	url, err := s.store.SignedURL(ctx, path, s.now().Add(SignedURLExpiration))
	if err != nil {
		logger.FromContext(ctx).Errorw("failed to sign url", "path", path, "error", err)
		return "", fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return url, nil
}

// Delete removes the object at path.
func (s *UploadService) Delete(ctx context.Context, path string) error {
	if s.store == nil {
		return fmt.Errorf("%w: blob storage not configured", ErrStorage)
	}
	if err := s.store.Delete(ctx, path); err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return nil
}
