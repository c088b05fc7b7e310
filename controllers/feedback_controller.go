package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"datee_server/middleware"
	"datee_server/services"
)

// FeedbackController handles post-date feedback.
type FeedbackController struct {
	FeedbackService *services.FeedbackService
}

// NewFeedbackController creates a new FeedbackController instance
func NewFeedbackController(feedbackService *services.FeedbackService) *FeedbackController {
	return &FeedbackController{FeedbackService: feedbackService}
}

// Create records the caller's feedback about another user.
func (c *FeedbackController) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		To      string `json:"to"`
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	feedback, err := c.FeedbackService.CreateFeedback(r.Context(), middleware.CallerUID(r), req.To, req.Content)
	if errors.Is(err, services.ErrFeedbackExists) {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message":  "Feedback created",
		"feedback": feedback,
	})
}

// List returns the feedback written by the caller.
func (c *FeedbackController) List(w http.ResponseWriter, r *http.Request) {
	feedbacks, err := c.FeedbackService.ListFeedbacksByFrom(r.Context(), middleware.CallerUID(r))
	if err != nil {
		http.Error(w, "Failed to list feedback", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(map[string]interface{}{"feedbacks": feedbacks})
}
