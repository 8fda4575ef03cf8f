package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"

	"sketchroom/internal/config"
	"sketchroom/internal/game"
)

type Server struct {
	registry *game.Registry
	cfg      config.Config
	sessions *sessionManager
	validate *validator.Validate
	lobby    *lobbyHub
	upgrader websocket.Upgrader
}

func New(registry *game.Registry, cfg config.Config) *Server {
	s := &Server{
		registry: registry,
		cfg:      cfg,
		sessions: newSessionManager(cfg),
		validate: validator.New(),
		lobby:    newLobbyHub(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
	registry.SetPublicListListener(s.pushLobbyUpdate)
	return s
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api/rooms", func(r chi.Router) {
		r.Post("/", s.handleCreateRoom)
		r.Get("/", s.handleListRooms)
		r.Get("/{roomID}", s.handleRoomSummary)
	})
	r.Get("/ws/rooms/{roomID}", s.handleRoomWebsocket)
	r.Get("/ws/lobby", s.handleLobbyWebsocket)
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) pushLobbyUpdate() {
	s.lobby.Broadcast(lobbyPayload(s.registry.ListPublic()))
}
