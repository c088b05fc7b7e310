package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"datee_server/services"
)

// AuthController implements the token endpoint.
type AuthController struct {
	AuthService *services.AuthService
}

// NewAuthController creates a new AuthController instance
func NewAuthController(authService *services.AuthService) *AuthController {
	return &AuthController{AuthService: authService}
}

type tokenRequest struct {
	GrantType    string `json:"grant_type"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	RefreshToken string `json:"refresh_token"`
}

// Token handles the password and refresh_token grants. Unauthenticated.
func (c *AuthController) Token(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	var pair *services.TokenPair
	var err error
	switch req.GrantType {
	case "password":
		pair, err = c.AuthService.Login(r.Context(), req.Email, req.Password)
	case "refresh_token":
		pair, err = c.AuthService.Refresh(r.Context(), req.RefreshToken)
	default:
		http.Error(w, "Unsupported grant_type", http.StatusBadRequest)
		return
	}

	if errors.Is(err, services.ErrBadCredentials) || errors.Is(err, services.ErrBadToken) {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}
	if err != nil {
		http.Error(w, "Token issuance failed", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(pair)
}
