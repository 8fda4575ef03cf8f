package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"sketchroom/internal/game"
)

type createRoomResponse struct {
	RoomID   string `json:"room_id"`
	PlayerID string `json:"player_id"`
	Token    string `json:"token"`
}

func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	var req createRoomRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	name, err := validateRoomName(req.Name)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	hostName, err := validateName(req.HostName)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	settings := s.roomSettings(req)
	visibility := game.VisibilityPrivate
	if req.Visibility == string(game.VisibilityPublic) {
		visibility = game.VisibilityPublic
	}

	room, host := s.registry.Create(name, visibility, settings, hostName)
	token, err := s.sessions.Issue(room.ID, host.ID)
	if err != nil {
		log.Error().Err(err).Str("room_id", room.ID).Msg("issue session token")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusCreated, createRoomResponse{
		RoomID:   room.ID,
		PlayerID: host.ID,
		Token:    token,
	})
}

// roomSettings applies configured defaults and clamps the per-room
// player cap to the server-wide limit.
func (s *Server) roomSettings(req createRoomRequest) game.Settings {
	settings := game.Settings{
		Rounds:        s.cfg.DefaultRounds,
		RoundDuration: time.Duration(s.cfg.RoundDurationSeconds) * time.Second,
		MaxPlayers:    s.cfg.DefaultMaxPlayers,
	}
	if req.Rounds > 0 {
		settings.Rounds = req.Rounds
	}
	if req.RoundSecs > 0 {
		settings.RoundDuration = time.Duration(req.RoundSecs) * time.Second
	}
	if req.MaxPlayers > 0 {
		settings.MaxPlayers = req.MaxPlayers
	}
	if settings.MaxPlayers > s.cfg.MaxPlayersLimit {
		settings.MaxPlayers = s.cfg.MaxPlayersLimit
	}
	return settings
}

func (s *Server) handleListRooms(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"rooms": s.registry.ListPublic(),
	})
}

func (s *Server) handleRoomSummary(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomID")
	room, ok := s.registry.Find(roomID)
	if !ok {
		writeGameError(w, game.ErrRoomNotFound)
		return
	}
	summary := room.Summary()
	writeJSON(w, http.StatusOK, map[string]any{
		"id":           summary.ID,
		"name":         summary.Name,
		"phase":        room.Phase(),
		"player_count": summary.PlayerCount,
		"max_players":  summary.MaxPlayers,
	})
}
