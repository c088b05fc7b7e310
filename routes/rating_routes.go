package routes

import (
	"datee_server/controllers"
	"datee_server/services"

	"github.com/gorilla/mux"
)

// RegisterRatingRoutes sets up routes for ratings under /api/rate
func RegisterRatingRoutes(r *mux.Router, ratingService *services.RatingService) {
	controller := controllers.NewRatingController(ratingService)

	ratingRouter := r.PathPrefix("/api/rate").Subrouter()
	ratingRouter.HandleFunc("/my", controller.GetMyRating).Methods("GET")
	ratingRouter.HandleFunc("/{uid}", controller.PutRating).Methods("PUT")
}
