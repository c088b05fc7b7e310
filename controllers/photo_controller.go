package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"datee_server/middleware"
	"datee_server/services"

	"github.com/gorilla/mux"
)

// PhotoController handles photo upload and retrieval via presigned S3 URLs.
type PhotoController struct {
	PhotoService *services.PhotoService
}

// NewPhotoController creates a new PhotoController instance
func NewPhotoController(photoService *services.PhotoService) *PhotoController {
	return &PhotoController{PhotoService: photoService}
}

// Upload issues a presigned PUT URL for a new profile photo of the caller.
func (c *PhotoController) Upload(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ContentType string `json:"contentType"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	upload, err := c.PhotoService.BeginUpload(r.Context(), middleware.CallerUID(r), req.ContentType)
	switch {
	case errors.Is(err, services.ErrNotAnImage):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, services.ErrTooManyPhotos):
		http.Error(w, err.Error(), http.StatusConflict)
	case err != nil:
		http.Error(w, "Failed to start upload", http.StatusInternalServerError)
	default:
		json.NewEncoder(w).Encode(upload)
	}
}

// List returns the photo ids belonging to a user.
func (c *PhotoController) List(w http.ResponseWriter, r *http.Request) {
	photos, err := c.PhotoService.ListPhotos(r.Context(), mux.Vars(r)["uid"])
	if err != nil {
		http.Error(w, "Failed to list photos", http.StatusInternalServerError)
		return
	}
	ids := make([]string, 0, len(photos))
	for _, p := range photos {
		ids = append(ids, p.PhotoID)
	}
	json.NewEncoder(w).Encode(map[string]interface{}{"photos": ids})
}

// Read redirects to a presigned GET URL for the photo.
func (c *PhotoController) Read(w http.ResponseWriter, r *http.Request) {
	url, err := c.PhotoService.ReadURL(r.Context(), mux.Vars(r)["id"])
	if errors.Is(err, services.ErrPhotoNotFound) {
		http.Error(w, "Photo not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "Failed to fetch photo", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}
