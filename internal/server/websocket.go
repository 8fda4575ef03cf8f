package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"sketchroom/internal/game"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
	sendBuffer     = 256
)

// command is the inbound message envelope.
type command struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// client adapts one websocket to the room's connection interface.
// Outbound events pass through a bounded channel; a client that cannot
// drain it loses events rather than stalling the room.
type client struct {
	room     *game.Room
	playerID string
	conn     *websocket.Conn

	send      chan game.Event
	done      chan struct{}
	closeOnce sync.Once

	// per-connection limiters; drawing is deliberately generous
	strokes *rate.Limiter
	guesses *rate.Limiter
	control *rate.Limiter
}

func newClient(conn *websocket.Conn) *client {
	return &client{
		conn:    conn,
		send:    make(chan game.Event, sendBuffer),
		done:    make(chan struct{}),
		strokes: rate.NewLimiter(60, 120),
		guesses: rate.NewLimiter(2, 5),
		control: rate.NewLimiter(5, 10),
	}
}

func (c *client) Send(ev game.Event) bool {
	select {
	case c.send <- ev:
		return true
	case <-c.done:
		return false
	default:
		return false
	}
}

func (c *client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

func (s *Server) handleRoomWebsocket(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomID")
	room, ok := s.registry.Find(roomID)
	if !ok {
		writeError(w, http.StatusNotFound, "room not found")
		return
	}

	token := r.URL.Query().Get("token")
	name := r.URL.Query().Get("name")
	if token == "" && name == "" {
		writeError(w, http.StatusBadRequest, "token or name required")
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	c := newClient(conn)
	c.room = room

	if token != "" {
		playerID, err := s.sessions.Parse(token, roomID)
		if err != nil {
			c.reject(game.ErrorEvent(errors.New("invalid session token")))
			return
		}
		c.playerID = playerID
		if _, err := room.Resume(playerID, c); err != nil {
			c.reject(game.ErrorEvent(err))
			return
		}
	} else {
		playerName, err := validateName(name)
		if err != nil {
			c.reject(game.ErrorEvent(err))
			return
		}
		joined, err := room.Join(playerName, c)
		if err != nil {
			c.reject(game.ErrorEvent(err))
			return
		}
		c.playerID = joined.PlayerID
		sessionToken, err := s.sessions.Issue(roomID, joined.PlayerID)
		if err != nil {
			log.Error().Err(err).Str("room_id", roomID).Msg("issue session token")
			room.Leave(joined.PlayerID)
			c.reject(game.ErrorEvent(errors.New("internal error")))
			return
		}
		c.Send(game.Event{Type: "session", Data: map[string]any{
			"player_id": joined.PlayerID,
			"token":     sessionToken,
		}})
	}

	log.Info().
		Str("room_id", roomID).
		Str("player_id", c.playerID).
		Str("remote", r.RemoteAddr).
		Msg("ws connected")

	go c.writePump()
	c.readPump()
}

// reject delivers one terminal event directly and closes the socket;
// the pumps never start.
func (c *client) reject(ev game.Event) {
	payload, err := json.Marshal(ev)
	if err == nil {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		_ = c.conn.WriteMessage(websocket.TextMessage, payload)
	}
	_ = c.conn.Close()
	c.Close()
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case ev := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(ev); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

// readPump owns the socket's read side. Returning triggers the
// disconnect path, which starts the reconnect grace period.
func (c *client) readPump() {
	defer func() {
		c.Close()
		_ = c.conn.Close()
		c.room.Disconnect(c.playerID, c)
	}()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug().Err(err).Str("player_id", c.playerID).Msg("ws read error")
			}
			return
		}
		var cmd command
		if err := json.Unmarshal(raw, &cmd); err != nil {
			c.Send(game.ErrorEvent(errors.New("malformed message")))
			continue
		}
		if leave := c.dispatch(cmd); leave {
			return
		}
	}
}

// dispatch routes one command. The returned bool means the player left
// for good and the grace period should not apply.
func (c *client) dispatch(cmd command) bool {
	switch cmd.Type {
	case "leave_room":
		c.room.Leave(c.playerID)
		return true
	case "start_game":
		if !c.control.Allow() {
			c.Send(game.ErrorEvent(errors.New("slow down")))
			return false
		}
		if err := c.room.StartGame(c.playerID); err != nil {
			c.Send(game.ErrorEvent(err))
		}
	case "select_word":
		if !c.control.Allow() {
			c.Send(game.ErrorEvent(errors.New("slow down")))
			return false
		}
		var data struct {
			ChoiceIndex int `json:"choice_index"`
		}
		if err := json.Unmarshal(cmd.Data, &data); err != nil {
			c.Send(game.ErrorEvent(errors.New("malformed message")))
			return false
		}
		if err := c.room.SelectWord(c.playerID, data.ChoiceIndex); err != nil {
			c.Send(game.ErrorEvent(err))
		}
	case "draw_event":
		// Over-limit strokes are dropped without an error event; a
		// drawing client floods by nature and an error per dropped
		// stroke would flood right back.
		if !c.strokes.Allow() {
			return false
		}
		var stroke game.Stroke
		if err := json.Unmarshal(cmd.Data, &stroke); err != nil {
			c.Send(game.ErrorEvent(errors.New("malformed message")))
			return false
		}
		if len(stroke.Points) > maxStrokePoints {
			stroke.Points = stroke.Points[:maxStrokePoints]
		}
		if err := c.room.AddStroke(c.playerID, stroke); err != nil {
			c.Send(game.ErrorEvent(err))
		}
	case "clear_canvas":
		if !c.control.Allow() {
			c.Send(game.ErrorEvent(errors.New("slow down")))
			return false
		}
		if err := c.room.ClearCanvas(c.playerID); err != nil {
			c.Send(game.ErrorEvent(err))
		}
	case "submit_guess":
		if !c.guesses.Allow() {
			c.Send(game.ErrorEvent(errors.New("slow down")))
			return false
		}
		var data struct {
			Text string `json:"text"`
		}
		if err := json.Unmarshal(cmd.Data, &data); err != nil {
			c.Send(game.ErrorEvent(errors.New("malformed message")))
			return false
		}
		text, err := validateGuess(data.Text)
		if err != nil {
			c.Send(game.ErrorEvent(err))
			return false
		}
		result, err := c.room.SubmitGuess(c.playerID, text)
		if err != nil {
			c.Send(game.ErrorEvent(err))
			return false
		}
		c.Send(game.GuessResultEvent(result))
	default:
		c.Send(game.ErrorEvent(errors.New("unknown command")))
	}
	return false
}
