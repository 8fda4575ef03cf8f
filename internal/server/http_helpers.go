package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"sketchroom/internal/game"
)

func readJSON(body io.Reader, dest any) error {
	decoder := json.NewDecoder(body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dest)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{
		"error": message,
	})
}

func writeGameError(w http.ResponseWriter, err error) {
	writeJSON(w, statusForError(err), map[string]string{
		"error": err.Error(),
		"code":  game.ErrorCode(err),
	})
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, game.ErrRoomNotFound), errors.Is(err, game.ErrPlayerNotFound):
		return http.StatusNotFound
	case errors.Is(err, game.ErrRoomFull), errors.Is(err, game.ErrRoomClosed):
		return http.StatusConflict
	case errors.Is(err, game.ErrNotHost), errors.Is(err, game.ErrNotDrawer), errors.Is(err, game.ErrNotAGuesser):
		return http.StatusForbidden
	case errors.Is(err, game.ErrInsufficientPlayers), errors.Is(err, game.ErrInvalidChoice), errors.Is(err, game.ErrAlreadyGuessed):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
