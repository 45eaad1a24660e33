package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-marketplace/internal/logger"
	"github.com/sbilibin2017/gw-marketplace/internal/models"
)

const (
	maxMultipartMemory = 32 << 20
	maxImageSize       = 10 << 20
)

// PlaceCreator defines the interface that the service must implement.
type PlaceCreator interface {
	Create(ctx context.Context, userID uuid.UUID, in models.PlaceInput, imagePaths []string) (uuid.UUID, error)
}

// ImageUploader stores uploaded images and removes them again.
type ImageUploader interface {
	Upload(ctx context.Context, data []byte, mimeType, folder string) (string, error)
	Delete(ctx context.Context, path string) error
}

// CreatePlaceRequest is the JSON form of a create request
// swagger:model CreatePlaceRequest
type CreatePlaceRequest struct {
	Place models.PlaceInput `json:"place"`
	Token string            `json:"token,omitempty"`
}

// CreatePlaceResponse carries the id of the new place
// swagger:model CreatePlaceResponse
type CreatePlaceResponse struct {
	ID uuid.UUID `json:"id"`
}

// NewCreatePlaceHandler returns an HTTP handler that creates a listing.
// @Summary Create a place
// @Description Accepts multipart/form-data with a "place" JSON field and up to 3 "images", or a JSON body {place, token}.
// @Tags places
// @Accept multipart/form-data
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param place formData string true "Place JSON"
// @Param images formData file false "Up to 3 images"
// @Success 201 {object} handlers.CreatePlaceResponse
// @Failure 400 {object} handlers.ErrorResponse
// @Failure 401 {object} handlers.ErrorResponse
// @Failure 500 {object} handlers.ErrorResponse
// @Router /places/create [post]
func NewCreatePlaceHandler(svc PlaceCreator, uploader ImageUploader, getUserID UserIDGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := callerID(w, r, getUserID)
		if !ok {
			return
		}
		ctx := r.Context()

		var (
			in     models.PlaceInput
			images []uploadedImage
		)

		mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if mediaType == "multipart/form-data" {
			if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
				writeError(w, http.StatusBadRequest, "Invalid multipart form")
				return
			}
			if err := json.Unmarshal([]byte(r.FormValue("place")), &in); err != nil {
				writeError(w, http.StatusBadRequest, "Invalid place")
				return
			}

			files := r.MultipartForm.File["images"]
			if len(files) > models.MaxPlaceImages {
				writeError(w, http.StatusBadRequest, fmt.Sprintf("At most %d images allowed", models.MaxPlaceImages))
				return
			}
			for _, fh := range files {
				img, err := readImage(fh)
				if err != nil {
					writeError(w, http.StatusBadRequest, err.Error())
					return
				}
				images = append(images, img)
			}
		} else {
			var req CreatePlaceRequest
			if !decodeJSON(w, r, &req) {
				return
			}
			in = req.Place
		}

		paths := make([]string, 0, len(images))
		for _, img := range images {
			path, err := uploader.Upload(ctx, img.data, img.mimeType, "places")
			if err != nil {
				removeImages(ctx, uploader, paths)
				writeServiceError(ctx, w, err)
				return
			}
			paths = append(paths, path)
		}

		id, err := svc.Create(ctx, userID, in, paths)
		if err != nil {
			removeImages(ctx, uploader, paths)
			writeServiceError(ctx, w, err)
			return
		}

		writeJSON(w, http.StatusCreated, CreatePlaceResponse{ID: id})
	}
}

type uploadedImage struct {
	data     []byte
	mimeType string
}

func readImage(fh *multipart.FileHeader) (uploadedImage, error) {
	if fh.Size > maxImageSize {
		return uploadedImage{}, fmt.Errorf("image %s is too large", fh.Filename)
	}

	f, err := fh.Open()
	if err != nil {
		return uploadedImage{}, fmt.Errorf("invalid image %s", fh.Filename)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxImageSize+1))
	if err != nil || len(data) > maxImageSize {
		return uploadedImage{}, fmt.Errorf("invalid image %s", fh.Filename)
	}

	mimeType := fh.Header.Get("Content-Type")
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = http.DetectContentType(data)
	}
	return uploadedImage{data: data, mimeType: mimeType}, nil
}

func removeImages(ctx context.Context, uploader ImageUploader, paths []string) {
	for _, path := range paths {
		if err := uploader.Delete(ctx, path); err != nil {
			logger.FromContext(ctx).Warnw("failed to remove uploaded image", "path", path, "error", err)
		}
	}
}
