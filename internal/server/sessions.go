package server

import (
	"crypto/rand"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"

	"sketchroom/internal/config"
)

// sessionManager issues and verifies the signed tokens that tie a
// websocket back to a roster identity. The token is the reconnect
// credential: whoever presents it resumes that player's seat.
type sessionManager struct {
	secret []byte
	ttl    time.Duration
}

type sessionClaims struct {
	RoomID   string `json:"room_id"`
	PlayerID string `json:"player_id"`
	jwt.RegisteredClaims
}

func newSessionManager(cfg config.Config) *sessionManager {
	secret := []byte(cfg.SessionSecret)
	if len(secret) == 0 {
		// Ephemeral secret: sessions survive reconnects but not a
		// process restart, which matches room state anyway.
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			log.Fatal().Err(err).Msg("generate session secret")
		}
		log.Warn().Msg("SESSION_SECRET not set, using ephemeral secret")
	}
	return &sessionManager{
		secret: secret,
		ttl:    time.Duration(cfg.SessionTTLHours) * time.Hour,
	}
}

func (m *sessionManager) Issue(roomID, playerID string) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		RoomID:   roomID,
		PlayerID: playerID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Parse verifies the token signature and that it was minted for the
// given room.
func (m *sessionManager) Parse(tokenString, roomID string) (string, error) {
	var claims sessionClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	})
	if err != nil {
		return "", err
	}
	if !token.Valid || claims.RoomID != roomID || claims.PlayerID == "" {
		return "", errors.New("invalid session token")
	}
	return claims.PlayerID, nil
}
