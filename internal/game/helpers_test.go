package game

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"sketchroom/internal/words"
)

// fakeConn records everything sent to one player.
type fakeConn struct {
	mu     sync.Mutex
	events []Event
	closed bool
}

func (c *fakeConn) Send(ev Event) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, ev)
	return true
}

func (c *fakeConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

func (c *fakeConn) eventsOfType(eventType string) []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	matched := make([]Event, 0)
	for _, ev := range c.events {
		if ev.Type == eventType {
			matched = append(matched, ev)
		}
	}
	return matched
}

func (c *fakeConn) waitForEvent(t *testing.T, eventType string, timeout time.Duration) Event {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if evs := c.eventsOfType(eventType); len(evs) > 0 {
			return evs[len(evs)-1]
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s event", eventType)
	return Event{}
}

func fastOptions() Options {
	return Options{
		SelectionTimeout: 50 * time.Millisecond,
		Intermission:     20 * time.Millisecond,
		ReconnectGrace:   60 * time.Millisecond,
		EmptyRoomTTL:     60 * time.Millisecond,
		ReplayLimit:      64,
	}
}

func testSettings(rounds int) Settings {
	return Settings{
		Rounds:        rounds,
		RoundDuration: time.Minute,
		MaxPlayers:    8,
	}
}

// newTestRoom creates a room with n connected players. The first
// returned conn belongs to the host.
func newTestRoom(t *testing.T, reg *Registry, n int) (*Room, []JoinedPlayer, []*fakeConn) {
	t.Helper()
	return newTestRoomSettings(t, reg, n, testSettings(2))
}

func newTestRoomSettings(t *testing.T, reg *Registry, n int, settings Settings) (*Room, []JoinedPlayer, []*fakeConn) {
	t.Helper()
	room, host := reg.Create("Test Room", VisibilityPrivate, settings, "Host")
	conns := make([]*fakeConn, n)
	players := make([]JoinedPlayer, n)
	conns[0] = &fakeConn{}
	joined, err := room.Resume(host.ID, conns[0])
	require.NoError(t, err)
	players[0] = joined
	names := []string{"Host", "Ada", "Grace", "Linus", "Dennis", "Ken", "Rob", "Brian"}
	for i := 1; i < n; i++ {
		conns[i] = &fakeConn{}
		joined, err := room.Join(names[i], conns[i])
		require.NoError(t, err)
		players[i] = joined
	}
	return room, players, conns
}

// startRound starts the game and returns the drawer's roster index
// along with the offered word choices.
func startRound(t *testing.T, room *Room, players []JoinedPlayer, conns []*fakeConn) (int, []words.Word) {
	t.Helper()
	require.NoError(t, room.StartGame(players[0].PlayerID))
	return currentDrawer(t, room, players, conns)
}

func currentDrawer(t *testing.T, room *Room, players []JoinedPlayer, conns []*fakeConn) (int, []words.Word) {
	t.Helper()
	for i, conn := range conns {
		if evs := conn.eventsOfType(EventWordChoices); len(evs) > 0 {
			data := evs[len(evs)-1].Data.(map[string]any)
			return i, data["choices"].([]words.Word)
		}
	}
	t.Fatal("no player received word choices")
	return 0, nil
}
