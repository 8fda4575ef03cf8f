package game

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCreateAssignsDistinctIDs(t *testing.T) {
	reg := NewRegistry(fastOptions())
	seen := make(map[string]bool)
	for i := 0; i < 10; i++ {
		room, host := reg.Create("Room", VisibilityPrivate, testSettings(1), "Host")
		require.False(t, seen[room.ID], "room id reused")
		seen[room.ID] = true
		require.NotEmpty(t, host.ID)

		found, ok := reg.Find(room.ID)
		require.True(t, ok)
		require.Same(t, room, found)
	}
}

func TestFindUnknownRoom(t *testing.T) {
	reg := NewRegistry(fastOptions())
	_, ok := reg.Find("no-such-room")
	require.False(t, ok)
}

func TestListPublicExcludesPrivateAndInProgressRooms(t *testing.T) {
	opts := fastOptions()
	opts.ReconnectGrace = time.Minute
	opts.EmptyRoomTTL = time.Minute
	reg := NewRegistry(opts)

	reg.Create("Beta", VisibilityPublic, testSettings(1), "Host")
	reg.Create("Alpha", VisibilityPublic, testSettings(1), "Host")
	reg.Create("Hidden", VisibilityPrivate, testSettings(1), "Host")

	list := reg.ListPublic()
	require.Len(t, list, 2)
	require.Equal(t, "Alpha", list[0].Name)
	require.Equal(t, "Beta", list[1].Name)

	// A room that has started playing drops out of discovery.
	started, _, _ := func() (*Room, []JoinedPlayer, []*fakeConn) {
		room, host := reg.Create("Busy", VisibilityPublic, testSettings(1), "Host")
		conns := []*fakeConn{{}, {}}
		joined, err := room.Resume(host.ID, conns[0])
		require.NoError(t, err)
		other, err := room.Join("Ada", conns[1])
		require.NoError(t, err)
		return room, []JoinedPlayer{joined, other}, conns
	}()
	require.Len(t, reg.ListPublic(), 3)
	hostID := started.Roster()[0].PlayerID
	require.NoError(t, started.StartGame(hostID))
	require.Len(t, reg.ListPublic(), 2)
}

func TestRetireIsIdempotentAndClosesTheRoom(t *testing.T) {
	reg := NewRegistry(fastOptions())
	room, _ := reg.Create("Room", VisibilityPublic, testSettings(1), "Host")

	reg.Retire(room.ID)
	reg.Retire(room.ID)
	reg.Retire("never-existed")

	_, ok := reg.Find(room.ID)
	require.False(t, ok)
	_, err := room.Join("Ada", &fakeConn{})
	require.ErrorIs(t, err, ErrRoomNotFound)
}

func TestPublicListListenerFiresOnPublicChangesOnly(t *testing.T) {
	opts := fastOptions()
	opts.EmptyRoomTTL = time.Minute
	reg := NewRegistry(opts)
	var fired atomic.Int32
	reg.SetPublicListListener(func() { fired.Add(1) })

	_, _ = reg.Create("Hidden", VisibilityPrivate, testSettings(1), "Host")
	time.Sleep(30 * time.Millisecond)
	require.Zero(t, fired.Load(), "private rooms must not wake the lobby")

	room, _ := reg.Create("Open", VisibilityPublic, testSettings(1), "Host")
	require.Eventually(t, func() bool {
		return fired.Load() >= 1
	}, time.Second, 5*time.Millisecond)

	before := fired.Load()
	reg.Retire(room.ID)
	require.Eventually(t, func() bool {
		return fired.Load() > before
	}, time.Second, 5*time.Millisecond)
}

func TestRegistryOptionsFlowIntoRooms(t *testing.T) {
	opts := fastOptions()
	opts.EmptyRoomTTL = 40 * time.Millisecond
	opts.ReconnectGrace = 40 * time.Millisecond
	reg := NewRegistry(opts)

	// The host never attaches; grace expiry empties the room and the
	// empty-room TTL retires it.
	room, _ := reg.Create("Abandoned", VisibilityPublic, testSettings(1), "Host")
	require.Eventually(t, func() bool {
		_, ok := reg.Find(room.ID)
		return !ok
	}, 2*time.Second, 10*time.Millisecond)
}
