package game

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestGuessBeforeWordIsChosenIsChat(t *testing.T) {
	opts := fastOptions()
	opts.SelectionTimeout = time.Minute
	reg := NewRegistry(opts)
	room, players, conns := newTestRoom(t, reg, 3)
	drawer, _ := startRound(t, room, players, conns)
	guesser := (drawer + 1) % 3

	res, err := room.SubmitGuess(players[guesser].PlayerID, "anything")
	require.NoError(t, err)
	require.False(t, res.Correct)
	require.Zero(t, res.ScoreDelta)
	require.Empty(t, conns[drawer].eventsOfType(EventGuessAnnounced))
}

func TestDrawerCannotGuess(t *testing.T) {
	opts := fastOptions()
	opts.SelectionTimeout = time.Minute
	reg := NewRegistry(opts)
	room, players, conns := newTestRoom(t, reg, 3)
	drawer, choices := startRound(t, room, players, conns)
	require.NoError(t, room.SelectWord(players[drawer].PlayerID, 0))

	_, err := room.SubmitGuess(players[drawer].PlayerID, choices[0].Text)
	require.ErrorIs(t, err, ErrNotAGuesser)
}

func TestGuessMatchingIgnoresCaseAndWhitespace(t *testing.T) {
	opts := fastOptions()
	opts.SelectionTimeout = time.Minute
	reg := NewRegistry(opts)
	room, players, conns := newTestRoom(t, reg, 3)
	drawer, choices := startRound(t, room, players, conns)
	require.NoError(t, room.SelectWord(players[drawer].PlayerID, 0))
	guesser := (drawer + 1) % 3

	mangled := "  " + strings.ToUpper(choices[0].Text) + "\t"
	res, err := room.SubmitGuess(players[guesser].PlayerID, mangled)
	require.NoError(t, err)
	require.True(t, res.Correct)
	require.Positive(t, res.ScoreDelta)
	require.LessOrEqual(t, res.ScoreDelta, choices[0].Points)
}

func TestRepeatGuessAfterCorrectIsRejected(t *testing.T) {
	opts := fastOptions()
	opts.SelectionTimeout = time.Minute
	reg := NewRegistry(opts)
	room, players, conns := newTestRoom(t, reg, 3)
	drawer, choices := startRound(t, room, players, conns)
	require.NoError(t, room.SelectWord(players[drawer].PlayerID, 0))
	guesser := (drawer + 1) % 3

	_, err := room.SubmitGuess(players[guesser].PlayerID, choices[0].Text)
	require.NoError(t, err)
	_, err = room.SubmitGuess(players[guesser].PlayerID, choices[0].Text)
	require.ErrorIs(t, err, ErrAlreadyGuessed)
}

func TestWrongGuessRevealsNothing(t *testing.T) {
	opts := fastOptions()
	opts.SelectionTimeout = time.Minute
	reg := NewRegistry(opts)
	room, players, conns := newTestRoom(t, reg, 3)
	drawer, _ := startRound(t, room, players, conns)
	require.NoError(t, room.SelectWord(players[drawer].PlayerID, 0))
	guesser := (drawer + 1) % 3
	other := (drawer + 2) % 3

	res, err := room.SubmitGuess(players[guesser].PlayerID, "definitely wrong")
	require.NoError(t, err)
	require.False(t, res.Correct)

	// Everyone hears that a guess happened, nobody learns the word.
	ev := conns[other].waitForEvent(t, EventGuessAnnounced, time.Second)
	data := ev.Data.(map[string]any)
	require.Equal(t, players[guesser].Name, data["name"])
	require.Equal(t, false, data["correct"])
	require.NotContains(t, data, "word")
	require.NotContains(t, data, "text")
	require.Empty(t, conns[guesser].eventsOfType(EventWordRevealed))
	require.Empty(t, conns[other].eventsOfType(EventWordRevealed))
}

func TestCorrectGuessScoresAndRevealsToGuesserOnly(t *testing.T) {
	opts := fastOptions()
	opts.SelectionTimeout = time.Minute
	reg := NewRegistry(opts)
	room, players, conns := newTestRoom(t, reg, 4)
	drawer, choices := startRound(t, room, players, conns)
	require.NoError(t, room.SelectWord(players[drawer].PlayerID, 1))
	guesser := (drawer + 1) % 4
	bystander := (drawer + 2) % 4

	res, err := room.SubmitGuess(players[guesser].PlayerID, choices[1].Text)
	require.NoError(t, err)
	require.True(t, res.Correct)
	require.Positive(t, res.ScoreDelta)
	require.LessOrEqual(t, res.ScoreDelta, choices[1].Points)

	ev := conns[guesser].waitForEvent(t, EventWordRevealed, time.Second)
	require.Equal(t, choices[1].Text, ev.Data.(map[string]any)["word"])
	require.Empty(t, conns[bystander].eventsOfType(EventWordRevealed))

	ann := conns[bystander].waitForEvent(t, EventGuessAnnounced, time.Second)
	require.Equal(t, true, ann.Data.(map[string]any)["correct"])

	for _, p := range room.Roster() {
		if p.PlayerID == players[guesser].PlayerID {
			require.Equal(t, res.ScoreDelta, p.Score)
		}
	}
}

func TestLaterCorrectGuessNeverOutscoresEarlier(t *testing.T) {
	opts := fastOptions()
	opts.SelectionTimeout = time.Minute
	reg := NewRegistry(opts)
	room, players, conns := newTestRoom(t, reg, 4)
	drawer, choices := startRound(t, room, players, conns)
	require.NoError(t, room.SelectWord(players[drawer].PlayerID, 2))

	var deltas []int
	for i := range players {
		if i == drawer {
			continue
		}
		res, err := room.SubmitGuess(players[i].PlayerID, choices[2].Text)
		require.NoError(t, err)
		require.True(t, res.Correct)
		deltas = append(deltas, res.ScoreDelta)
		time.Sleep(10 * time.Millisecond)
	}
	for i := 1; i < len(deltas); i++ {
		require.LessOrEqual(t, deltas[i], deltas[i-1])
	}
}

func TestAllCorrectEndsRoundEarlyAndPaysDrawer(t *testing.T) {
	opts := fastOptions()
	opts.SelectionTimeout = time.Minute
	opts.Intermission = time.Minute
	reg := NewRegistry(opts)
	room, players, conns := newTestRoom(t, reg, 3)
	drawer, choices := startRound(t, room, players, conns)
	require.NoError(t, room.SelectWord(players[drawer].PlayerID, 0))

	for i := range players {
		if i == drawer {
			continue
		}
		_, err := room.SubmitGuess(players[i].PlayerID, choices[0].Text)
		require.NoError(t, err)
	}

	ev := conns[drawer].waitForEvent(t, EventRoundEnded, time.Second)
	data := ev.Data.(map[string]any)
	require.Equal(t, "all_correct", data["reason"])
	deltas := data["deltas"].(map[string]int)
	require.Equal(t, drawerScore(choices[0].Points, 2), deltas[players[drawer].PlayerID])
	require.Equal(t, PhaseRoundEnd, room.Phase())
}
