package db

import (
	"time"

	"gorm.io/datatypes"
)

// GameRecord is the archived outcome of one finished game. Live room
// state never touches the database; only terminal results land here.
type GameRecord struct {
	ID          uint           `gorm:"primaryKey"`
	RoomID      string         `gorm:"size:36;index;not null"`
	RoomName    string         `gorm:"size:64;not null"`
	Rounds      int            `gorm:"not null"`
	WinnerID    string         `gorm:"size:36"`
	WinnerName  string         `gorm:"size:64"`
	FinalScores datatypes.JSON `gorm:"not null"`
	EndedAt     time.Time      `gorm:"not null"`
	CreatedAt   time.Time      `gorm:"not null"`
}
