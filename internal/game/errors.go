package game

import "errors"

var (
	ErrRoomNotFound        = errors.New("room not found")
	ErrRoomFull            = errors.New("room full")
	ErrRoomClosed          = errors.New("room closed to joins")
	ErrNotHost             = errors.New("only the host can do that")
	ErrInsufficientPlayers = errors.New("need at least 2 players to start")
	ErrNotDrawer           = errors.New("not the current drawer")
	ErrNotAGuesser         = errors.New("drawer cannot guess")
	ErrAlreadyGuessed      = errors.New("already guessed correctly")
	ErrInvalidChoice       = errors.New("invalid word choice")
	ErrPlayerNotFound      = errors.New("player not found")
)

// ErrorCode maps a room error to the wire code sent back to the
// originating connection. Unknown errors map to "internal".
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrRoomNotFound):
		return "NotFound"
	case errors.Is(err, ErrRoomFull):
		return "RoomFull"
	case errors.Is(err, ErrRoomClosed):
		return "RoomClosed"
	case errors.Is(err, ErrNotHost):
		return "NotHost"
	case errors.Is(err, ErrInsufficientPlayers):
		return "InsufficientPlayers"
	case errors.Is(err, ErrNotDrawer):
		return "NotDrawer"
	case errors.Is(err, ErrNotAGuesser):
		return "NotAGuesser"
	case errors.Is(err, ErrAlreadyGuessed):
		return "AlreadyGuessedCorrectly"
	case errors.Is(err, ErrInvalidChoice):
		return "InvalidChoice"
	case errors.Is(err, ErrPlayerNotFound):
		return "PlayerNotFound"
	default:
		return "internal"
	}
}
