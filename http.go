package main

import (
	"encoding/json"
	"net/http"
)

type createGameRequest struct {
	HostID     string `json:"hostId"`
	HostName   string `json:"hostName"`
	MaxPlayers int    `json:"maxPlayers"`
	Difficulty string `json:"difficulty"`
}

type joinGameRequest struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
}

func newMux(reg *registry, h *hub) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/games", func(w http.ResponseWriter, r *http.Request) {
		var req createGameRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body: %v", err)
			return
		}
		if req.HostID == "" {
			writeError(w, http.StatusBadRequest, "hostId is required")
			return
		}
		res := reg.createGame(req.HostID, req.HostName, req.MaxPlayers, req.Difficulty)
		writeJSON(w, http.StatusCreated, res)
	})

	mux.HandleFunc("GET /api/games", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, reg.getGameList())
	})

	mux.HandleFunc("GET /api/games/{id}", func(w http.ResponseWriter, r *http.Request) {
		res := reg.getGameState(r.PathValue("id"))
		writeJSON(w, statusFor(res), res)
	})

	mux.HandleFunc("POST /api/games/{id}/join", func(w http.ResponseWriter, r *http.Request) {
		var req joinGameRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body: %v", err)
			return
		}
		if req.PlayerID == "" {
			writeError(w, http.StatusBadRequest, "playerId is required")
			return
		}
		res := reg.joinGame(r.PathValue("id"), req.PlayerID, req.Name)
		writeJSON(w, statusFor(res), res)
	})

	mux.HandleFunc("DELETE /api/games/{id}", func(w http.ResponseWriter, r *http.Request) {
		res := reg.deleteGame(r.PathValue("id"))
		writeJSON(w, statusFor(res), res)
	})

	mux.HandleFunc("GET /ws", h.handleWS)

	return withCORS(mux)
}

func statusFor(res actionResult) int {
	if res.Success {
		return http.StatusOK
	}
	switch res.Code {
	case codeNotFound:
		return http.StatusNotFound
	case codePermissionDenied:
		return http.StatusForbidden
	case codeCapacityExceeded, codeInvalidState, codeWaveInProgress, codePlayersNotReady, codeMaxLevelReached:
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}
