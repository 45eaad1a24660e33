package handlers

import (
	"context"
	"net/http"
)

// URLSigner defines the interface that the service must implement.
type URLSigner interface {
	SignedURL(ctx context.Context, path string) (string, error)
}

// ImageURLResponse carries a short-lived download URL
// swagger:model ImageURLResponse
type ImageURLResponse struct {
	URL string `json:"url"`
}

// NewImageURLHandler returns an HTTP handler that signs an image path.
// @Summary Get a signed image URL
// @Description Returns a GET URL valid for 10 minutes.
// @Tags places
// @Produce json
// @Param path query string true "Image path"
// @Success 200 {object} handlers.ImageURLResponse
// @Failure 400 {object} handlers.ErrorResponse
// @Failure 500 {object} handlers.ErrorResponse
// @Router /places/image [get]
func NewImageURLHandler(svc URLSigner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		url, err := svc.SignedURL(r.Context(), r.URL.Query().Get("path"))
		if err != nil {
			writeServiceError(r.Context(), w, err)
			return
		}

		writeJSON(w, http.StatusOK, ImageURLResponse{URL: url})
	}
}
