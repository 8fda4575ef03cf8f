package server

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"sketchroom/internal/game"
)

// lobbyHub fans the public room list out to browsing clients. Lobby
// connections are read-discarded: the list is push-only. The hub lock
// is held across every write; gorilla connections do not allow
// concurrent writers, and list broadcasts fire from many goroutines.
type lobbyHub struct {
	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

func newLobbyHub() *lobbyHub {
	return &lobbyHub{
		conns: make(map[*websocket.Conn]struct{}),
	}
}

// AddAndSend registers the connection and delivers its initial payload
// in one step, so a concurrent broadcast cannot arrive ahead of it.
func (h *lobbyHub) AddAndSend(conn *websocket.Conn, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[conn] = struct{}{}
	_ = conn.WriteMessage(websocket.TextMessage, data)
}

func (h *lobbyHub) Remove(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns, conn)
	_ = conn.Close()
}

func (h *lobbyHub) Broadcast(payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.conns {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			delete(h.conns, conn)
			_ = conn.Close()
		}
	}
}

func lobbyPayload(rooms []game.RoomSummary) map[string]any {
	return map[string]any{
		"type":  "room_list",
		"rooms": rooms,
	}
}

func (s *Server) handleLobbyWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	log.Debug().Str("remote", r.RemoteAddr).Msg("lobby ws connected")
	s.lobby.AddAndSend(conn, lobbyPayload(s.registry.ListPublic()))
	go s.readLobbyWS(conn)
}

func (s *Server) readLobbyWS(conn *websocket.Conn) {
	defer s.lobby.Remove(conn)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
