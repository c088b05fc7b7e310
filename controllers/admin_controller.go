package controllers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"datee_server/services"
)

// AdminController exposes the administrative actions: approving users,
// triggering a matching pass and seeding random users.
type AdminController struct {
	UserService *services.UserService
	Engine      *services.MatchEngine
	SeedService *services.SeedService
}

// NewAdminController creates a new AdminController instance
func NewAdminController(userService *services.UserService, engine *services.MatchEngine, seedService *services.SeedService) *AdminController {
	return &AdminController{UserService: userService, Engine: engine, SeedService: seedService}
}

// Activate approves a registration: MatchingPreferencesSet -> Idle.
func (c *AdminController) Activate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UID string `json:"uid"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UID == "" {
		http.Error(w, "Must provide uid", http.StatusBadRequest)
		return
	}

	err := c.UserService.ActivateUser(r.Context(), req.UID)
	switch {
	case errors.Is(err, services.ErrUserNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, services.ErrInvalidState):
		http.Error(w, "Invalid state for approval", http.StatusConflict)
	case err != nil:
		http.Error(w, "Failed to activate user", http.StatusInternalServerError)
	default:
		json.NewEncoder(w).Encode(map[string]interface{}{"message": "User activated"})
	}
}

// DoMatch triggers one matching pass. Cohort failures are aggregated into
// the response instead of being swallowed.
func (c *AdminController) DoMatch(w http.ResponseWriter, r *http.Request) {
	err := c.Engine.RunMatchingPass(r.Context())
	if errors.Is(err, services.ErrPassInProgress) {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	if err != nil {
		log.Printf("Matching pass finished with errors: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"message": "Matching pass finished with errors",
			"errors":  err.Error(),
		})
		return
	}
	json.NewEncoder(w).Encode(map[string]interface{}{"message": "Matching pass completed"})
}

// Seed creates one random fully-onboarded Idle user.
func (c *AdminController) Seed(w http.ResponseWriter, r *http.Request) {
	user, err := c.SeedService.GenerateRandomUser(r.Context())
	if err != nil {
		http.Error(w, "Failed to seed user", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Random user created",
		"user":    user.Sanitized(),
	})
}
