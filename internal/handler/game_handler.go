package handler

import (
	"errors"
	"net/http"
	"strconv"

	"broadside/internal/auth"
	"broadside/internal/service"
)

// GameHandler handles game endpoints.
type GameHandler struct {
	gameSvc *service.GameService
}

// NewGameHandler creates a GameHandler.
func NewGameHandler(gameSvc *service.GameService) *GameHandler {
	return &GameHandler{gameSvc: gameSvc}
}

// CreateGame handles POST /api/v1/games
func (h *GameHandler) CreateGame(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	var req struct {
		Name       string `json:"name"`
		Difficulty string `json:"difficulty"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.Difficulty == "" {
		req.Difficulty = "medium"
	}

	game, err := h.gameSvc.CreateGame(r.Context(), req.Name, userID, req.Difficulty)
	if err != nil {
		if errors.Is(err, service.ErrInvalidDifficulty) {
			writeError(w, http.StatusBadRequest, "invalid difficulty")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, game)
}

// ListGames handles GET /api/v1/games
func (h *GameHandler) ListGames(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	games, err := h.gameSvc.ListGames(r.Context(), userID, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if games == nil {
		writeJSON(w, http.StatusOK, []struct{}{})
		return
	}
	writeJSON(w, http.StatusOK, games)
}

// GetGame handles GET /api/v1/games/{id}
func (h *GameHandler) GetGame(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	game, err := h.gameSvc.GetGame(r.Context(), gameID)
	if err != nil {
		if errors.Is(err, service.ErrGameNotFound) {
			writeError(w, http.StatusNotFound, "game not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, game)
}

// PlaceFleet handles POST /api/v1/games/{id}/fleet
func (h *GameHandler) PlaceFleet(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	userID := auth.UserIDFromContext(r.Context())
	var req struct {
		Ships []service.ShipPlacement `json:"ships"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	game, err := h.gameSvc.PlaceFleet(r.Context(), gameID, userID, req.Ships)
	if err != nil {
		writeError(w, gameErrorStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, game)
}

// FireShot handles POST /api/v1/games/{id}/shots
func (h *GameHandler) FireShot(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	userID := auth.UserIDFromContext(r.Context())
	var req struct {
		Row int `json:"row"`
		Col int `json:"col"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.gameSvc.FireShot(r.Context(), gameID, userID, req.Row, req.Col)
	if err != nil {
		writeError(w, gameErrorStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// ListShots handles GET /api/v1/games/{id}/shots
func (h *GameHandler) ListShots(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	shots, err := h.gameSvc.ListShots(r.Context(), gameID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if shots == nil {
		writeJSON(w, http.StatusOK, []struct{}{})
		return
	}
	writeJSON(w, http.StatusOK, shots)
}

// Hint handles GET /api/v1/games/{id}/hint
func (h *GameHandler) Hint(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	userID := auth.UserIDFromContext(r.Context())

	heat, best, err := h.gameSvc.Hint(r.Context(), gameID, userID)
	if err != nil {
		writeError(w, gameErrorStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"heatmap": heat.Prob,
		"best":    map[string]int{"row": best.Row, "col": best.Col},
	})
}

// Stats handles GET /api/v1/stats
func (h *GameHandler) Stats(w http.ResponseWriter, r *http.Request) {
	summary, err := h.gameSvc.Stats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if summary == nil {
		writeJSON(w, http.StatusOK, []struct{}{})
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// RecentGames handles GET /api/v1/stats/recent
func (h *GameHandler) RecentGames(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	recent, err := h.gameSvc.RecentGames(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if recent == nil {
		writeJSON(w, http.StatusOK, []struct{}{})
		return
	}
	writeJSON(w, http.StatusOK, recent)
}

// gameErrorStatus maps service errors to HTTP status codes.
func gameErrorStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrGameNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrNotYourGame):
		return http.StatusForbidden
	case errors.Is(err, service.ErrGameNotPlacing),
		errors.Is(err, service.ErrGameNotActive),
		errors.Is(err, service.ErrNotYourTurn),
		errors.Is(err, service.ErrInvalidPlacement),
		errors.Is(err, service.ErrInvalidShot),
		errors.Is(err, service.ErrInvalidDifficulty):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
