package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testStroke(x float64) Stroke {
	return Stroke{
		Color:  "#000000",
		Width:  3,
		Points: []Point{{X: x, Y: x}, {X: x + 1, Y: x + 1}},
	}
}

func TestOnlyDrawerMayDraw(t *testing.T) {
	opts := fastOptions()
	opts.SelectionTimeout = time.Minute
	reg := NewRegistry(opts)
	room, players, conns := newTestRoom(t, reg, 3)
	drawer, _ := startRound(t, room, players, conns)
	require.NoError(t, room.SelectWord(players[drawer].PlayerID, 0))
	guesser := (drawer + 1) % 3

	require.ErrorIs(t, room.AddStroke(players[guesser].PlayerID, testStroke(1)), ErrNotDrawer)
	require.ErrorIs(t, room.ClearCanvas(players[guesser].PlayerID), ErrNotDrawer)

	// The rejected stroke must not reach anyone.
	for _, conn := range conns {
		require.Empty(t, conn.eventsOfType(EventDrawRelay))
	}
}

func TestStrokesRelayInOrderWithoutEchoToDrawer(t *testing.T) {
	opts := fastOptions()
	opts.SelectionTimeout = time.Minute
	reg := NewRegistry(opts)
	room, players, conns := newTestRoom(t, reg, 3)
	drawer, _ := startRound(t, room, players, conns)
	require.NoError(t, room.SelectWord(players[drawer].PlayerID, 0))
	guesser := (drawer + 1) % 3

	for i := 0; i < 5; i++ {
		require.NoError(t, room.AddStroke(players[drawer].PlayerID, testStroke(float64(i))))
	}

	relayed := conns[guesser].eventsOfType(EventDrawRelay)
	require.Len(t, relayed, 5)
	for i, ev := range relayed {
		require.Equal(t, float64(i), ev.Data.(Stroke).Points[0].X)
	}
	require.Empty(t, conns[drawer].eventsOfType(EventDrawRelay))
}

func TestClearCanvasDropsReplayBuffer(t *testing.T) {
	opts := fastOptions()
	opts.SelectionTimeout = time.Minute
	opts.ReconnectGrace = time.Minute
	reg := NewRegistry(opts)
	room, players, conns := newTestRoom(t, reg, 3)
	drawer, _ := startRound(t, room, players, conns)
	require.NoError(t, room.SelectWord(players[drawer].PlayerID, 0))
	guesser := (drawer + 1) % 3

	require.NoError(t, room.AddStroke(players[drawer].PlayerID, testStroke(1)))
	require.NoError(t, room.ClearCanvas(players[drawer].PlayerID))
	require.NoError(t, room.AddStroke(players[drawer].PlayerID, testStroke(9)))

	conns[guesser].waitForEvent(t, EventCanvasCleared, time.Second)

	// A reconnecting player replays only post-clear strokes.
	room.Disconnect(players[guesser].PlayerID, conns[guesser])
	fresh := &fakeConn{}
	_, err := room.Resume(players[guesser].PlayerID, fresh)
	require.NoError(t, err)

	replayed := fresh.eventsOfType(EventDrawRelay)
	require.Len(t, replayed, 1)
	require.Equal(t, float64(9), replayed[0].Data.(Stroke).Points[0].X)
}

func TestDrawingOutsideActiveRoundIsRejected(t *testing.T) {
	reg := NewRegistry(fastOptions())
	room, players, _ := newTestRoom(t, reg, 2)

	err := room.AddStroke(players[0].PlayerID, testStroke(1))
	require.Error(t, err)
}

func TestReplayBufferIsBounded(t *testing.T) {
	opts := fastOptions()
	opts.SelectionTimeout = time.Minute
	opts.ReconnectGrace = time.Minute
	opts.ReplayLimit = 3
	reg := NewRegistry(opts)
	room, players, conns := newTestRoom(t, reg, 3)
	drawer, _ := startRound(t, room, players, conns)
	require.NoError(t, room.SelectWord(players[drawer].PlayerID, 0))
	guesser := (drawer + 1) % 3

	for i := 0; i < 10; i++ {
		require.NoError(t, room.AddStroke(players[drawer].PlayerID, testStroke(float64(i))))
	}
	// Live relay is unaffected by the cap.
	require.Len(t, conns[guesser].eventsOfType(EventDrawRelay), 10)

	room.Disconnect(players[guesser].PlayerID, conns[guesser])
	fresh := &fakeConn{}
	_, err := room.Resume(players[guesser].PlayerID, fresh)
	require.NoError(t, err)
	require.Len(t, fresh.eventsOfType(EventDrawRelay), 3)
}
