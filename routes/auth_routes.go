package routes

import (
	"datee_server/controllers"
	"datee_server/services"

	"github.com/gorilla/mux"
)

// RegisterAuthRoutes sets up the token endpoint under /api/auth
func RegisterAuthRoutes(r *mux.Router, authService *services.AuthService) {
	controller := controllers.NewAuthController(authService)

	authRouter := r.PathPrefix("/api/auth").Subrouter()
	authRouter.HandleFunc("/token", controller.Token).Methods("POST")
}
