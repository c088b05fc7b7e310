package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"datee_server/middleware"
	"datee_server/models"
	"datee_server/services"

	"github.com/gorilla/mux"
)

// MatchController exposes the caller's match and its date proposals.
type MatchController struct {
	MatchService *services.MatchService
	UserService  *services.UserService
}

// NewMatchController creates a new MatchController instance
func NewMatchController(matchService *services.MatchService, userService *services.UserService) *MatchController {
	return &MatchController{MatchService: matchService, UserService: userService}
}

// GetCurrent returns the caller's active match, if any.
func (c *MatchController) GetCurrent(w http.ResponseWriter, r *http.Request) {
	match, err := c.MatchService.FindMatchForUser(r.Context(), middleware.CallerUID(r))
	if err != nil {
		http.Error(w, "Failed to fetch match", http.StatusInternalServerError)
		return
	}
	if match == nil {
		http.Error(w, "No active match", http.StatusNotFound)
		return
	}
	json.NewEncoder(w).Encode(match)
}

// position returns 1 or 2 for the caller within the match, 0 if the caller
// is not part of it.
func position(match *models.Match, uid string) int {
	switch uid {
	case match.UserID1:
		return 1
	case match.UserID2:
		return 2
	}
	return 0
}

// AppendProposal attaches a new date proposal to the caller's match.
func (c *MatchController) AppendProposal(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Date     int64  `json:"date"`
		Location string `json:"location"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	matchID := mux.Vars(r)["matchId"]
	match, err := c.MatchService.GetMatch(r.Context(), matchID)
	if errors.Is(err, services.ErrMatchNotFound) {
		http.Error(w, "Match not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "Failed to fetch match", http.StatusInternalServerError)
		return
	}
	pos := position(match, middleware.CallerUID(r))
	if pos == 0 || !match.Active {
		http.Error(w, "Not your active match", http.StatusForbidden)
		return
	}

	updated, err := c.MatchService.AppendProposal(r.Context(), matchID, models.DateProposal{
		MadeBy:   pos,
		Date:     req.Date,
		Location: req.Location,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	json.NewEncoder(w).Encode(updated)
}

// AcceptProposal agrees to a proposal made by the other user.
func (c *MatchController) AcceptProposal(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	matchID := vars["matchId"]
	index, err := strconv.Atoi(vars["index"])
	if err != nil {
		http.Error(w, "Invalid proposal index", http.StatusBadRequest)
		return
	}

	match, err := c.MatchService.GetMatch(r.Context(), matchID)
	if errors.Is(err, services.ErrMatchNotFound) {
		http.Error(w, "Match not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "Failed to fetch match", http.StatusInternalServerError)
		return
	}
	pos := position(match, middleware.CallerUID(r))
	if pos == 0 || !match.Active {
		http.Error(w, "Not your active match", http.StatusForbidden)
		return
	}

	updated, err := c.MatchService.AcceptProposal(r.Context(), matchID, index, pos)
	switch {
	case errors.Is(err, services.ErrProposalNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, services.ErrProposalAgreed), errors.Is(err, services.ErrProposalOwnAccept):
		http.Error(w, err.Error(), http.StatusConflict)
	case err != nil:
		http.Error(w, "Failed to accept proposal", http.StatusInternalServerError)
	default:
		json.NewEncoder(w).Encode(updated)
	}
}

// Unmatch deactivates the caller's active match and returns both users to
// the idle pool. The match record stays around, inactive.
func (c *MatchController) Unmatch(w http.ResponseWriter, r *http.Request) {
	uid := middleware.CallerUID(r)
	match, err := c.MatchService.FindMatchForUser(r.Context(), uid)
	if err != nil {
		http.Error(w, "Failed to fetch match", http.StatusInternalServerError)
		return
	}
	if match == nil {
		http.Error(w, "No active match", http.StatusNotFound)
		return
	}

	if err := c.MatchService.DeactivateMatch(r.Context(), match.MatchID); err != nil {
		http.Error(w, "Failed to unmatch", http.StatusInternalServerError)
		return
	}
	for _, u := range []string{match.UserID1, match.UserID2} {
		if err := c.UserService.SetUserState(r.Context(), u, models.StateIdle); err != nil {
			http.Error(w, "Failed to reset user state", http.StatusInternalServerError)
			return
		}
	}
	json.NewEncoder(w).Encode(map[string]interface{}{"message": "Unmatched"})
}
