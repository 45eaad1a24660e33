package facades

import (
	"bytes"
	"context"
	"time"

	"cloud.google.com/go/storage"
	"github.com/klauspost/compress/gzip"
	"github.com/sbilibin2017/gw-marketplace/internal/logger"
)

// BlobStorageGCSFacade stores objects in a Google Cloud Storage bucket.
type BlobStorageGCSFacade struct {
	bucket *storage.BucketHandle
}

// NewBlobStorageGCSFacade creates a new facade over the given bucket.
func NewBlobStorageGCSFacade(bucket *storage.BucketHandle) *BlobStorageGCSFacade {
	return &BlobStorageGCSFacade{bucket: bucket}
}

// Put writes data gzip-compressed to path.
func (f *BlobStorageGCSFacade) Put(ctx context.Context, path, contentType string, data []byte) error {
	compressed, err := gzipBytes(data)
	if err != nil {
		return err
	}

	w := f.bucket.Object(path).NewWriter(ctx)
	w.ContentType = contentType
	w.ContentEncoding = "gzip"

	if _, err := w.Write(compressed); err != nil {
		w.Close()
		logger.Log.Errorw("failed to write object to GCS", "path", path, "error", err)
		return err
	}
	if err := w.Close(); err != nil {
		logger.Log.Errorw("failed to finalize object in GCS", "path", path, "error", err)
		return err
	}
	return nil
}

// SignedURL returns a GET URL for path that expires at expires.
func (f *BlobStorageGCSFacade) SignedURL(ctx context.Context, path string, expires time.Time) (string, error) {
	url, err := f.bucket.SignedURL(path, &storage.SignedURLOptions{
		Method:  "GET",
		Expires: expires,
		Scheme:  storage.SigningSchemeV4,
	})
	if err != nil {
		logger.Log.Errorw("failed to sign GCS url", "path", path, "error", err)
		return "", err
	}
	return url, nil
}

// Delete removes the object at path.
func (f *BlobStorageGCSFacade) Delete(ctx context.Context, path string) error {
	if err := f.bucket.Object(path).Delete(ctx); err != nil {
		logger.Log.Errorw("failed to delete object from GCS", "path", path, "error", err)
		return err
	}
	return nil
}

func gzipBytes(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
