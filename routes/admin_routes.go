package routes

import (
	"datee_server/controllers"
	"datee_server/middleware"
	"datee_server/services"

	"github.com/gorilla/mux"
)

// RegisterAdminRoutes sets up the admin routes under /api/admin, guarded by
// the admin password instead of bearer tokens.
func RegisterAdminRoutes(r *mux.Router, adminPassword string, userService *services.UserService, engine *services.MatchEngine, seedService *services.SeedService) {
	controller := controllers.NewAdminController(userService, engine, seedService)

	adminRouter := r.PathPrefix("/api/admin").Subrouter()
	adminRouter.Use(middleware.RequireAdmin(adminPassword))
	adminRouter.HandleFunc("/activate", controller.Activate).Methods("POST")
	adminRouter.HandleFunc("/do_match", controller.DoMatch).Methods("POST")
	adminRouter.HandleFunc("/seed", controller.Seed).Methods("POST")
}
