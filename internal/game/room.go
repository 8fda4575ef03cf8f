package game

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Room is an independently-serialized game session. Every exported
// method takes the room's own mutex; no two state transitions for the
// same room ever interleave, and rooms share no mutable state.
type Room struct {
	ID         string
	Name       string
	Visibility Visibility
	Settings   Settings
	CreatedAt  time.Time

	registry *Registry
	opts     Options

	mu      sync.Mutex
	closed  bool
	phase   Phase
	players []*Player
	hostID  string
	cycle   int
	seq     int
	current *round

	usedWords map[string]struct{}

	selectionTimer    *time.Timer
	deadlineTimer     *time.Timer
	intermissionTimer *time.Timer
	emptyTimer        *time.Timer
}

// JoinedPlayer is what a successful join hands back to the transport.
type JoinedPlayer struct {
	PlayerID string
	Name     string
}

// Join adds a new player to the lobby roster and attaches their
// connection. Name collisions are resolved by suffixing, never rejected.
func (r *Room) Join(name string, conn Conn) (JoinedPlayer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return JoinedPlayer{}, ErrRoomNotFound
	}
	if r.phase != PhaseLobby {
		return JoinedPlayer{}, ErrRoomClosed
	}
	if len(r.players) >= r.Settings.MaxPlayers {
		return JoinedPlayer{}, ErrRoomFull
	}

	player := &Player{
		ID:       uuid.NewString(),
		Name:     r.dedupeName(name),
		JoinedAt: time.Now().UTC(),
		conn:     conn,
	}
	r.players = append(r.players, player)
	r.cancelEmptyTimer()

	log.Info().
		Str("room_id", r.ID).
		Str("player_id", player.ID).
		Str("player_name", player.Name).
		Msg("player joined")

	r.broadcastExcept(player.ID, playerJoinedEvent(player))
	r.broadcast(r.roomStateEvent())
	r.notifyPublic()
	return JoinedPlayer{PlayerID: player.ID, Name: player.Name}, nil
}

// Resume reattaches a reconnecting player identified by a session
// token. Roster position, score, and role are untouched; the current
// round's strokes are replayed so the canvas can be rebuilt.
func (r *Room) Resume(playerID string, conn Conn) (JoinedPlayer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return JoinedPlayer{}, ErrRoomNotFound
	}
	player := r.findPlayer(playerID)
	if player == nil {
		return JoinedPlayer{}, ErrPlayerNotFound
	}
	if player.conn != nil {
		player.conn.Close()
	}
	player.conn = conn
	player.DisconnectedAt = time.Time{}
	player.presenceGen++

	log.Info().
		Str("room_id", r.ID).
		Str("player_id", player.ID).
		Msg("player reconnected")

	r.sendTo(player, r.roomStateEvent())
	r.replayRound(player)
	r.broadcastExcept(player.ID, r.roomStateEvent())
	return JoinedPlayer{PlayerID: player.ID, Name: player.Name}, nil
}

// replayRound re-delivers the current round's private and canvas state
// to one freshly attached connection, in original order.
func (r *Room) replayRound(player *Player) {
	rd := r.current
	if rd == nil || r.phase != PhaseRoundActive {
		return
	}
	if player.ID == rd.drawerID && !rd.wordChosen {
		r.sendTo(player, wordChoicesEvent(rd, rd.selectionDeadline))
	}
	if rd.wordChosen && (player.ID == rd.drawerID || rd.guessedCorrectly(player.ID)) {
		r.sendTo(player, wordRevealedEvent(rd))
	}
	for _, stroke := range rd.strokes {
		r.sendTo(player, drawRelayEvent(stroke))
	}
	if rd.wordChosen {
		r.sendTo(player, timerTickEvent(time.Until(rd.deadline)))
	}
}

// Leave removes a player immediately, in any phase.
func (r *Room) Leave(playerID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.removePlayer(playerID, "left")
}

// Disconnect clears a player's connection reference but keeps their
// identity for the reconnect grace period. The conn argument must be
// the connection that actually dropped: when a reconnect has already
// replaced it, the stale socket's teardown is a no-op. Host duties
// transfer immediately rather than stalling on one player's
// connectivity.
func (r *Room) Disconnect(playerID string, conn Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	player := r.findPlayer(playerID)
	if player == nil || player.conn == nil || player.conn != conn {
		return
	}
	player.conn = nil
	player.DisconnectedAt = time.Now().UTC()
	player.presenceGen++

	log.Info().
		Str("room_id", r.ID).
		Str("player_id", playerID).
		Msg("player disconnected")

	if player.isHost {
		r.migrateHost()
	}
	r.startGraceTimer(player)
	r.broadcast(r.roomStateEvent())
	// The departed socket may have belonged to the last missing
	// guesser; only connected players can hold up the round.
	r.checkAllGuessed()
}

// StartGame transitions Lobby -> RoundActive. Host only, two or more
// connected players required.
func (r *Room) StartGame(playerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrRoomNotFound
	}
	if r.phase != PhaseLobby {
		return ErrRoomClosed
	}
	if playerID != r.hostID {
		return ErrNotHost
	}
	if r.connectedCount() < 2 {
		return ErrInsufficientPlayers
	}
	r.cycle = 1
	log.Info().
		Str("room_id", r.ID).
		Int("players", len(r.players)).
		Int("rounds", r.Settings.Rounds).
		Msg("game started")
	r.beginTurn()
	r.notifyPublic()
	return nil
}

// removePlayer drops a player from the roster. Lock held. A departing
// drawer ends the round early with no further scoring; an empty roster
// arms the destruction countdown.
func (r *Room) removePlayer(playerID, reason string) {
	idx := -1
	for i, p := range r.players {
		if p.ID == playerID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}
	player := r.players[idx]
	if player.conn != nil {
		player.conn.Close()
		player.conn = nil
	}
	r.players = append(r.players[:idx], r.players[idx+1:]...)

	log.Info().
		Str("room_id", r.ID).
		Str("player_id", playerID).
		Str("reason", reason).
		Msg("player left")

	wasDrawer := r.current != nil && r.phase == PhaseRoundActive && r.current.drawerID == playerID
	if wasDrawer {
		r.endRound("drawer_left")
	}
	if player.isHost {
		r.migrateHost()
	}
	r.broadcast(playerLeftEvent(player.ID, player.Name, reason))
	r.broadcast(r.roomStateEvent())
	r.notifyPublic()

	if len(r.players) == 0 {
		r.startEmptyTimer()
		return
	}
	if r.phase == PhaseRoundActive && !wasDrawer {
		// The departed player may have been the last missing guesser.
		r.checkAllGuessed()
	}
}

// migrateHost hands the host role to the next connected player in join
// order. Lock held. With nobody connected the role stays put until the
// grace period resolves the roster.
func (r *Room) migrateHost() {
	for _, p := range r.players {
		if p.ID == r.hostID {
			p.isHost = false
		}
	}
	for _, p := range r.players {
		if p.Connected() {
			p.isHost = true
			r.hostID = p.ID
			log.Info().
				Str("room_id", r.ID).
				Str("host_id", p.ID).
				Msg("host changed")
			r.broadcast(hostChangedEvent(p))
			return
		}
	}
}

// close releases all per-room resources. Called by the registry with no
// room lock held.
func (r *Room) close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	r.stopTimer(&r.selectionTimer)
	r.stopTimer(&r.deadlineTimer)
	r.stopTimer(&r.intermissionTimer)
	r.stopTimer(&r.emptyTimer)
	for _, p := range r.players {
		if p.conn != nil {
			p.conn.Close()
			p.conn = nil
		}
	}
	r.players = nil
}

func (r *Room) stopTimer(t **time.Timer) {
	if *t != nil {
		(*t).Stop()
		*t = nil
	}
}

// Phase reports the current phase.
func (r *Room) Phase() Phase {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.phase
}

// Roster returns a point-in-time copy of the player list, in join order.
func (r *Room) Roster() []PlayerScore {
	r.mu.Lock()
	defer r.mu.Unlock()
	roster := make([]PlayerScore, 0, len(r.players))
	for _, p := range r.players {
		roster = append(roster, PlayerScore{PlayerID: p.ID, Name: p.Name, Score: p.Score})
	}
	return roster
}

func (r *Room) Summary() RoomSummary {
	r.mu.Lock()
	defer r.mu.Unlock()
	return RoomSummary{
		ID:          r.ID,
		Name:        r.Name,
		PlayerCount: len(r.players),
		MaxPlayers:  r.Settings.MaxPlayers,
	}
}

// publicSummary reports the room for the public listing, or false when
// the room is private or no longer in its lobby.
func (r *Room) publicSummary() (RoomSummary, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed || r.Visibility != VisibilityPublic || r.phase != PhaseLobby {
		return RoomSummary{}, false
	}
	return RoomSummary{
		ID:          r.ID,
		Name:        r.Name,
		PlayerCount: len(r.players),
		MaxPlayers:  r.Settings.MaxPlayers,
	}, true
}

func (r *Room) findPlayer(playerID string) *Player {
	for _, p := range r.players {
		if p.ID == playerID {
			return p
		}
	}
	return nil
}

func (r *Room) connectedCount() int {
	count := 0
	for _, p := range r.players {
		if p.Connected() {
			count++
		}
	}
	return count
}

func (r *Room) dedupeName(name string) string {
	taken := func(candidate string) bool {
		for _, p := range r.players {
			if p.Name == candidate {
				return true
			}
		}
		return false
	}
	if !taken(name) {
		return name
	}
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s (%d)", name, i)
		if !taken(candidate) {
			return candidate
		}
	}
}

// broadcast fans out to every connected player. Send never blocks: a
// slow consumer's message is dropped rather than stalling the room.
func (r *Room) broadcast(ev Event) {
	for _, p := range r.players {
		r.sendTo(p, ev)
	}
}

func (r *Room) broadcastExcept(playerID string, ev Event) {
	for _, p := range r.players {
		if p.ID == playerID {
			continue
		}
		r.sendTo(p, ev)
	}
}

func (r *Room) sendTo(p *Player, ev Event) {
	if p.conn == nil {
		return
	}
	if !p.conn.Send(ev) {
		log.Warn().
			Str("room_id", r.ID).
			Str("player_id", p.ID).
			Str("event", ev.Type).
			Msg("dropped event for slow consumer")
	}
}

func (r *Room) notifyPublic() {
	r.registry.publicChanged(r.Visibility)
}

// startEmptyTimer arms the destruction countdown for an empty room.
// Lock held.
func (r *Room) startEmptyTimer() {
	r.stopTimer(&r.emptyTimer)
	r.emptyTimer = time.AfterFunc(r.opts.EmptyRoomTTL, func() {
		r.mu.Lock()
		if r.closed || len(r.players) > 0 {
			r.mu.Unlock()
			return
		}
		r.mu.Unlock()
		r.registry.Retire(r.ID)
	})
}

func (r *Room) cancelEmptyTimer() {
	r.stopTimer(&r.emptyTimer)
}

// startGraceTimer schedules removal of a disconnected player unless
// they reconnect in time. The presence generation check makes a timer
// from a previous disconnect cycle a no-op. Lock held.
func (r *Room) startGraceTimer(player *Player) {
	gen := player.presenceGen
	playerID := player.ID
	time.AfterFunc(r.opts.ReconnectGrace, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if r.closed {
			return
		}
		p := r.findPlayer(playerID)
		if p == nil || p.presenceGen != gen || p.Connected() {
			return
		}
		log.Info().
			Str("room_id", r.ID).
			Str("player_id", playerID).
			Msg("reconnect grace expired")
		r.removePlayer(playerID, "timeout")
	})
}
