package routes

import (
	"datee_server/controllers"
	"datee_server/services"

	"github.com/gorilla/mux"
)

// RegisterFeedbackRoutes sets up routes for feedback under /api/feedback
func RegisterFeedbackRoutes(r *mux.Router, feedbackService *services.FeedbackService) {
	controller := controllers.NewFeedbackController(feedbackService)

	feedbackRouter := r.PathPrefix("/api/feedback").Subrouter()
	feedbackRouter.HandleFunc("", controller.Create).Methods("POST")
	feedbackRouter.HandleFunc("", controller.List).Methods("GET")
}
