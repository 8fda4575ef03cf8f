package game

import (
	"strings"
	"time"
)

// GuessResult is returned synchronously to the submitting connection.
type GuessResult struct {
	Correct    bool
	ScoreDelta int
}

// SubmitGuess evaluates a guess against the current round's secret
// word. Match policy is deliberate: case-insensitive, whitespace-
// trimmed exact match, no partial credit. A mismatch reveals nothing
// about the word.
func (r *Room) SubmitGuess(playerID, text string) (GuessResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return GuessResult{}, ErrRoomNotFound
	}
	player := r.findPlayer(playerID)
	if player == nil {
		return GuessResult{}, ErrPlayerNotFound
	}
	rd := r.current
	if rd == nil || r.phase != PhaseRoundActive || !rd.wordChosen {
		// Nothing to guess against yet; treat it as chat.
		return GuessResult{}, nil
	}
	if playerID == rd.drawerID {
		return GuessResult{}, ErrNotAGuesser
	}
	if rd.guessedCorrectly(playerID) {
		return GuessResult{}, ErrAlreadyGuessed
	}

	if normalizeGuess(text) != normalizeGuess(rd.word.Text) {
		r.broadcast(guessAnnouncedEvent(player, false))
		return GuessResult{Correct: false}, nil
	}

	elapsed := time.Since(rd.chosenAt)
	delta := guesserScore(rd.word.Points, elapsed, r.Settings.RoundDuration)
	rd.correct = append(rd.correct, playerID)
	rd.deltas[playerID] = delta
	player.Score += delta

	// A correct guesser is entitled to see the word.
	r.sendTo(player, wordRevealedEvent(rd))
	r.broadcast(guessAnnouncedEvent(player, true))
	r.checkAllGuessed()
	return GuessResult{Correct: true, ScoreDelta: delta}, nil
}

// checkAllGuessed ends the round early once every connected non-drawer
// has guessed correctly. Lock held.
func (r *Room) checkAllGuessed() {
	rd := r.current
	if rd == nil || r.phase != PhaseRoundActive || !rd.wordChosen {
		return
	}
	for _, p := range r.players {
		if p.ID == rd.drawerID || !p.Connected() {
			continue
		}
		if !rd.guessedCorrectly(p.ID) {
			return
		}
	}
	r.endRound("all_correct")
}

func normalizeGuess(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
