package server

import (
	"errors"
	"fmt"
	"strings"
)

const (
	maxNameLength     = 20
	maxRoomNameLength = 40
	maxGuessLength    = 60
	maxStrokePoints   = 512
)

type createRoomRequest struct {
	Name       string `json:"name" validate:"required,max=40"`
	Visibility string `json:"visibility" validate:"omitempty,oneof=public private"`
	HostName   string `json:"host_name" validate:"required,max=20"`
	Rounds     int    `json:"rounds" validate:"omitempty,min=1,max=10"`
	RoundSecs  int    `json:"round_seconds" validate:"omitempty,min=30,max=180"`
	MaxPlayers int    `json:"max_players" validate:"omitempty,min=2"`
}

func validateName(name string) (string, error) {
	return validateText("name", name, maxNameLength)
}

func validateRoomName(name string) (string, error) {
	return validateText("room name", name, maxRoomNameLength)
}

func validateGuess(text string) (string, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", errors.New("guess is required")
	}
	if len(trimmed) > maxGuessLength {
		return "", fmt.Errorf("guess must be %d characters or fewer", maxGuessLength)
	}
	return trimmed, nil
}

func validateText(label, text string, maxLen int) (string, error) {
	trimmed := normalizeText(text)
	if trimmed == "" {
		return "", fmt.Errorf("%s is required", label)
	}
	if len(trimmed) > maxLen {
		return "", fmt.Errorf("%s must be %d characters or fewer", label, maxLen)
	}
	if !isSafeText(trimmed) {
		return "", fmt.Errorf("%s contains unsupported characters", label)
	}
	return trimmed, nil
}

// normalizeText collapses runs of whitespace so "Bob" and "Bob " are
// the same player.
func normalizeText(text string) string {
	fields := strings.Fields(strings.TrimSpace(text))
	return strings.Join(fields, " ")
}

func isSafeText(text string) bool {
	for _, r := range text {
		if r > 127 {
			return false
		}
		if r >= 'a' && r <= 'z' {
			continue
		}
		if r >= 'A' && r <= 'Z' {
			continue
		}
		if r >= '0' && r <= '9' {
			continue
		}
		switch r {
		case ' ', '-', '_', '\'', '.', '!', '?':
			continue
		default:
			return false
		}
	}
	return true
}
