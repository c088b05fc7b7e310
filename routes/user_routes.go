package routes

import (
	"datee_server/controllers"
	"datee_server/services"

	"github.com/gorilla/mux"
)

// RegisterUserRoutes sets up routes for registration and profile lifecycle
// under /api/user
func RegisterUserRoutes(r *mux.Router, userService *services.UserService) {
	controller := controllers.NewUserController(userService)

	userRouter := r.PathPrefix("/api/user").Subrouter()
	userRouter.HandleFunc("/register", controller.Register).Methods("PUT")
	userRouter.HandleFunc("/me", controller.Me).Methods("GET")
	userRouter.HandleFunc("/assessment", controller.SetAssessment).Methods("POST")
	userRouter.HandleFunc("/preferences", controller.SetPreferences).Methods("POST")
}
