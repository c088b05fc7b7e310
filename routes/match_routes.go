package routes

import (
	"datee_server/controllers"
	"datee_server/services"

	"github.com/gorilla/mux"
)

// RegisterMatchRoutes sets up routes for match operations under /api/match
func RegisterMatchRoutes(r *mux.Router, matchService *services.MatchService, userService *services.UserService) {
	controller := controllers.NewMatchController(matchService, userService)

	matchRouter := r.PathPrefix("/api/match").Subrouter()
	matchRouter.HandleFunc("/current", controller.GetCurrent).Methods("GET")
	matchRouter.HandleFunc("/unmatch", controller.Unmatch).Methods("POST")
	matchRouter.HandleFunc("/{matchId}/proposals", controller.AppendProposal).Methods("POST")
	matchRouter.HandleFunc("/{matchId}/proposals/{index}/accept", controller.AcceptProposal).Methods("POST")
}
