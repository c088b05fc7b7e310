package routes

import (
	"datee_server/controllers"
	"datee_server/services"

	"github.com/gorilla/mux"
)

// RegisterPhotoRoutes sets up routes for photo operations under /api/photos
func RegisterPhotoRoutes(r *mux.Router, photoService *services.PhotoService) {
	controller := controllers.NewPhotoController(photoService)

	photoRouter := r.PathPrefix("/api/photos").Subrouter()
	photoRouter.HandleFunc("/upload", controller.Upload).Methods("PUT")
	photoRouter.HandleFunc("/list/{uid}", controller.List).Methods("GET")
	photoRouter.HandleFunc("/{id}", controller.Read).Methods("GET")
}
