package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"datee_server/middleware"
	"datee_server/services"

	"github.com/gorilla/mux"
)

// RatingController handles user-to-user ratings.
type RatingController struct {
	RatingService *services.RatingService
}

// NewRatingController creates a new RatingController instance
func NewRatingController(ratingService *services.RatingService) *RatingController {
	return &RatingController{RatingService: ratingService}
}

// PutRating records the caller's score for another user.
func (c *RatingController) PutRating(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Score int `json:"score"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	err := c.RatingService.SetRating(r.Context(), middleware.CallerUID(r), mux.Vars(r)["uid"], req.Score)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, services.ErrUserNotFound) {
			status = http.StatusNotFound
		}
		http.Error(w, err.Error(), status)
		return
	}
	json.NewEncoder(w).Encode(map[string]interface{}{"message": "Rating saved"})
}

// GetMyRating returns the caller's mean received score.
func (c *RatingController) GetMyRating(w http.ResponseWriter, r *http.Request) {
	rating, err := c.RatingService.GetRatingOfUser(r.Context(), middleware.CallerUID(r))
	if err != nil {
		http.Error(w, "Failed to fetch rating", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(map[string]interface{}{"rating": rating})
}
