package game

import (
	"time"

	"sketchroom/internal/words"
)

type Phase string

const (
	PhaseLobby       Phase = "lobby"
	PhaseRoundActive Phase = "round-active"
	PhaseRoundEnd    Phase = "round-end"
	PhaseGameEnd     Phase = "game-end"
)

type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

// Settings are the per-room game parameters fixed at creation.
type Settings struct {
	Rounds        int
	RoundDuration time.Duration
	MaxPlayers    int
}

// Options tune the timing behavior shared by all rooms of a registry.
type Options struct {
	SelectionTimeout time.Duration
	Intermission     time.Duration
	ReconnectGrace   time.Duration
	EmptyRoomTTL     time.Duration
	ReplayLimit      int
}

func DefaultOptions() Options {
	return Options{
		SelectionTimeout: 15 * time.Second,
		Intermission:     5 * time.Second,
		ReconnectGrace:   30 * time.Second,
		EmptyRoomTTL:     60 * time.Second,
		ReplayLimit:      4096,
	}
}

// Event is the wire envelope relayed to clients.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Conn is the outbound half of a player's transport. Send must never
// block; it reports false when the message was dropped. The core holds
// no other transport knowledge.
type Conn interface {
	Send(ev Event) bool
	Close()
}

// Player is a stable game identity. The conn reference is replaceable:
// nil means temporarily disconnected, pending the reconnect grace.
type Player struct {
	ID             string
	Name           string
	Score          int
	JoinedAt       time.Time
	DisconnectedAt time.Time

	conn     Conn
	isHost   bool
	hasDrawn bool
	// presenceGen invalidates stale grace timers across
	// disconnect/reconnect cycles.
	presenceGen int
}

func (p *Player) Connected() bool { return p.conn != nil }

func (p *Player) IsHost() bool { return p.isHost }

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Stroke is one incremental drawing instruction from the drawer.
type Stroke struct {
	Color  string  `json:"color"`
	Width  float64 `json:"width"`
	Points []Point `json:"points"`
}

// round is one drawer turn. It is created at turn start and discarded
// once scored; seq is the room-wide monotonic turn counter that stale
// timers are checked against.
type round struct {
	seq               int
	number            int
	drawerID          string
	choices           []words.Word
	selectionDeadline time.Time
	word              words.Word
	wordChosen        bool
	chosenAt          time.Time
	deadline          time.Time
	correct           []string
	deltas            map[string]int
	strokes           []Stroke
	endReason         string
}

func (rd *round) guessedCorrectly(playerID string) bool {
	for _, id := range rd.correct {
		if id == playerID {
			return true
		}
	}
	return false
}

// RoomSummary is the public-listing view of a room.
type RoomSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	PlayerCount int    `json:"player_count"`
	MaxPlayers  int    `json:"max_players"`
}

// PlayerScore is one line of a final scoreboard.
type PlayerScore struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	Score    int    `json:"score"`
}

// GameResult is handed to the registry's OnGameEnd hook when a room
// reaches its terminal phase.
type GameResult struct {
	RoomID     string
	RoomName   string
	Rounds     int
	WinnerID   string
	WinnerName string
	Scores     []PlayerScore
	EndedAt    time.Time
}
