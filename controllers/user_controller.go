package controllers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"datee_server/middleware"
	"datee_server/models"
	"datee_server/services"
)

// UserController handles registration and profile lifecycle requests.
type UserController struct {
	UserService *services.UserService
}

// NewUserController creates a new instance of UserController
func NewUserController(userService *services.UserService) *UserController {
	return &UserController{UserService: userService}
}

// Register handles new user registration. Unauthenticated.
func (c *UserController) Register(w http.ResponseWriter, r *http.Request) {
	var info services.RegistrationInfo
	if err := json.NewDecoder(r.Body).Decode(&info); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	user, err := c.UserService.Register(r.Context(), info)
	if err != nil {
		if errors.Is(err, services.ErrUserExists) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		log.Printf("Registration failed: %v", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "User registered successfully",
		"user":    user.Sanitized(),
	})
}

// Me returns the authenticated user's own profile.
func (c *UserController) Me(w http.ResponseWriter, r *http.Request) {
	user, err := c.UserService.GetUser(r.Context(), middleware.CallerUID(r))
	if err != nil {
		http.Error(w, "Failed to fetch profile", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(user.Sanitized())
}

// SetAssessment stores the caller's self-assessment traits.
func (c *UserController) SetAssessment(w http.ResponseWriter, r *http.Request) {
	var traits models.Traits
	if err := json.NewDecoder(r.Body).Decode(&traits); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	user, err := c.UserService.SetSelfAssessment(r.Context(), middleware.CallerUID(r), traits)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, services.ErrInvalidState) {
			status = http.StatusConflict
		}
		http.Error(w, err.Error(), status)
		return
	}
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Self-assessment saved",
		"user":    user.Sanitized(),
	})
}

// SetPreferences stores the caller's matching preferences.
func (c *UserController) SetPreferences(w http.ResponseWriter, r *http.Request) {
	var pref models.MatchingPreference
	if err := json.NewDecoder(r.Body).Decode(&pref); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	user, err := c.UserService.SetMatchingPreference(r.Context(), middleware.CallerUID(r), pref)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, services.ErrInvalidState) {
			status = http.StatusConflict
		}
		http.Error(w, err.Error(), status)
		return
	}
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Matching preferences saved",
		"user":    user.Sanitized(),
	})
}
