package db

import (
	"encoding/json"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"sketchroom/internal/game"
)

// Archiver persists finished games. A nil receiver (no database
// configured) is valid and does nothing, so the game core never has to
// care whether archiving is on.
type Archiver struct {
	conn *gorm.DB
}

func NewArchiver(conn *gorm.DB) *Archiver {
	if conn == nil {
		return nil
	}
	return &Archiver{conn: conn}
}

// SaveResult is wired to the registry's game-end hook.
func (a *Archiver) SaveResult(result game.GameResult) {
	if a == nil {
		return
	}
	scores, err := json.Marshal(result.Scores)
	if err != nil {
		log.Error().Err(err).Str("room_id", result.RoomID).Msg("encode final scores")
		return
	}
	record := GameRecord{
		RoomID:      result.RoomID,
		RoomName:    result.RoomName,
		Rounds:      result.Rounds,
		WinnerID:    result.WinnerID,
		WinnerName:  result.WinnerName,
		FinalScores: scores,
		EndedAt:     result.EndedAt,
	}
	if err := a.conn.Create(&record).Error; err != nil {
		log.Error().Err(err).Str("room_id", result.RoomID).Msg("archive game result")
		return
	}
	log.Info().Str("room_id", result.RoomID).Msg("game result archived")
}
