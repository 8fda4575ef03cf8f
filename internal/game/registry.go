package game

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Registry owns the namespace of room identifiers. Its lock guards only
// the lookup table; every room serializes its own state independently.
type Registry struct {
	opts Options

	mu    sync.RWMutex
	rooms map[string]*Room

	// OnGameEnd, when set, receives the final result of every game that
	// reaches its terminal phase. Invoked on its own goroutine.
	OnGameEnd func(GameResult)

	// onPublicChange is notified whenever the public listing may have
	// changed. Invoked on its own goroutine.
	onPublicChange func()
}

func NewRegistry(opts Options) *Registry {
	return &Registry{
		opts:  opts,
		rooms: make(map[string]*Room),
	}
}

// SetPublicListListener registers the lobby-push callback. Must be set
// before rooms are created.
func (g *Registry) SetPublicListListener(fn func()) {
	g.onPublicChange = fn
}

// Create registers a new room with the given host. Room identifiers are
// random UUIDs: private rooms are reachable only by whoever holds the
// link. The host joins the roster immediately but is disconnected until
// their websocket attaches; the usual reconnect grace applies.
func (g *Registry) Create(name string, visibility Visibility, settings Settings, hostName string) (*Room, *Player) {
	room := &Room{
		ID:         uuid.NewString(),
		Name:       name,
		Visibility: visibility,
		Settings:   settings,
		CreatedAt:  time.Now().UTC(),
		registry:   g,
		opts:       g.opts,
		phase:      PhaseLobby,
		usedWords:  make(map[string]struct{}),
	}
	host := &Player{
		ID:             uuid.NewString(),
		Name:           hostName,
		JoinedAt:       time.Now().UTC(),
		DisconnectedAt: time.Now().UTC(),
		isHost:         true,
	}
	room.players = append(room.players, host)
	room.hostID = host.ID

	g.mu.Lock()
	g.rooms[room.ID] = room
	g.mu.Unlock()

	room.mu.Lock()
	room.startGraceTimer(host)
	room.mu.Unlock()

	log.Info().
		Str("room_id", room.ID).
		Str("name", name).
		Str("visibility", string(visibility)).
		Msg("room created")
	g.publicChanged(visibility)
	return room, host
}

// Find resolves a room id regardless of visibility; visibility controls
// discoverability, not reachability.
func (g *Registry) Find(id string) (*Room, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	room, ok := g.rooms[id]
	return room, ok
}

// ListPublic returns summaries for public rooms still gathering players.
// In-progress rooms are excluded from discovery.
func (g *Registry) ListPublic() []RoomSummary {
	g.mu.RLock()
	rooms := make([]*Room, 0, len(g.rooms))
	for _, room := range g.rooms {
		rooms = append(rooms, room)
	}
	g.mu.RUnlock()

	list := make([]RoomSummary, 0, len(rooms))
	for _, room := range rooms {
		if summary, ok := room.publicSummary(); ok {
			list = append(list, summary)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].Name < list[j].Name
	})
	return list
}

// Retire removes a room from the namespace and releases its resources.
// Idempotent; safe to race with in-flight operations on the room, which
// observe either completion or a closed-room failure.
func (g *Registry) Retire(id string) {
	g.mu.Lock()
	room, ok := g.rooms[id]
	delete(g.rooms, id)
	g.mu.Unlock()
	if !ok {
		return
	}
	visibility := room.Visibility
	room.close()
	log.Info().Str("room_id", id).Msg("room retired")
	g.publicChanged(visibility)
}

func (g *Registry) publicChanged(visibility Visibility) {
	if visibility != VisibilityPublic || g.onPublicChange == nil {
		return
	}
	go g.onPublicChange()
}

func (g *Registry) gameEnded(result GameResult) {
	if g.OnGameEnd == nil {
		return
	}
	go g.OnGameEnd(result)
}
