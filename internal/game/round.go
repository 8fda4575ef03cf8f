package game

import (
	"time"

	"github.com/rs/zerolog/log"

	"sketchroom/internal/words"
)

// beginTurn starts the next drawer's round. Lock held. The drawer is
// the first player in join order who has not yet drawn this cycle and
// is currently connected; no player draws twice before every other
// player has drawn once.
func (r *Room) beginTurn() {
	drawer := r.nextDrawer()
	if drawer == nil {
		r.endGame()
		return
	}
	drawer.hasDrawn = true
	r.seq++
	rd := &round{
		seq:               r.seq,
		number:            r.cycle,
		drawerID:          drawer.ID,
		choices:           words.Choices(r.usedWords),
		selectionDeadline: time.Now().UTC().Add(r.opts.SelectionTimeout),
		deltas:            make(map[string]int),
	}
	// Offered words are burned for the rest of the game, chosen or not.
	for _, w := range rd.choices {
		r.usedWords[w.Text] = struct{}{}
	}
	r.current = rd
	r.phase = PhaseRoundActive

	log.Info().
		Str("room_id", r.ID).
		Int("round", rd.number).
		Int("turn", rd.seq).
		Str("drawer_id", drawer.ID).
		Msg("round started")

	r.broadcast(r.roomStateEvent())
	r.broadcast(roundStartedEvent(rd, rd.selectionDeadline))
	r.sendTo(drawer, wordChoicesEvent(rd, rd.selectionDeadline))
	r.armSelectionTimer(rd.seq)
}

// nextDrawer picks in join order among connected players who have not
// drawn this cycle, resetting the cycle once everyone has drawn. Lock
// held. Returns nil when the game is over.
func (r *Room) nextDrawer() *Player {
	if r.connectedCount() < 2 {
		return nil
	}
	pick := func() *Player {
		for _, p := range r.players {
			if !p.hasDrawn && p.Connected() {
				return p
			}
		}
		return nil
	}
	if drawer := pick(); drawer != nil {
		return drawer
	}
	// Cycle exhausted: either the game is done or a new cycle begins.
	if r.cycle >= r.Settings.Rounds {
		return nil
	}
	r.cycle++
	for _, p := range r.players {
		p.hasDrawn = false
	}
	return pick()
}

// SelectWord records the drawer's choice and starts the countdown. The
// round clock runs from word selection, not from round start.
func (r *Room) SelectWord(playerID string, choiceIndex int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrRoomNotFound
	}
	rd := r.current
	if rd == nil || r.phase != PhaseRoundActive {
		return ErrRoomClosed
	}
	if playerID != rd.drawerID {
		return ErrNotDrawer
	}
	if rd.wordChosen {
		return nil
	}
	if choiceIndex < 0 || choiceIndex >= len(rd.choices) {
		return ErrInvalidChoice
	}
	r.chooseWord(rd, choiceIndex)
	return nil
}

// chooseWord finalizes the word and arms the round deadline. Lock held.
func (r *Room) chooseWord(rd *round, choiceIndex int) {
	rd.word = rd.choices[choiceIndex]
	rd.wordChosen = true
	rd.chosenAt = time.Now().UTC()
	rd.deadline = rd.chosenAt.Add(r.Settings.RoundDuration)
	r.stopTimer(&r.selectionTimer)

	log.Info().
		Str("room_id", r.ID).
		Int("turn", rd.seq).
		Str("difficulty", string(rd.word.Difficulty)).
		Msg("word selected")

	if drawer := r.findPlayer(rd.drawerID); drawer != nil {
		r.sendTo(drawer, wordRevealedEvent(rd))
	}
	r.broadcast(r.roomStateEvent())
	r.broadcast(timerTickEvent(r.Settings.RoundDuration))
	r.armDeadlineTimer(rd.seq)
	r.startTicker(rd.seq)
}

// armSelectionTimer auto-assigns the first candidate if the drawer does
// not choose in time; a round never blocks on word selection. Lock held.
func (r *Room) armSelectionTimer(seq int) {
	r.stopTimer(&r.selectionTimer)
	r.selectionTimer = time.AfterFunc(r.opts.SelectionTimeout, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		rd := r.current
		if r.closed || rd == nil || rd.seq != seq || r.phase != PhaseRoundActive || rd.wordChosen {
			return
		}
		log.Info().
			Str("room_id", r.ID).
			Int("turn", seq).
			Msg("word selection timed out, auto-assigning")
		r.chooseWord(rd, 0)
	})
}

func (r *Room) armDeadlineTimer(seq int) {
	r.stopTimer(&r.deadlineTimer)
	r.deadlineTimer = time.AfterFunc(r.Settings.RoundDuration, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		rd := r.current
		if r.closed || rd == nil || rd.seq != seq || r.phase != PhaseRoundActive {
			return
		}
		r.endRound("deadline")
	})
}

// startTicker emits server-side countdown ticks once per second for the
// round identified by seq. The goroutine exits on its own as soon as
// the round it belongs to is over. Lock held by caller.
func (r *Room) startTicker(seq int) {
	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for range ticker.C {
			if !r.tick(seq) {
				return
			}
		}
	}()
}

func (r *Room) tick(seq int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	rd := r.current
	if r.closed || rd == nil || rd.seq != seq || r.phase != PhaseRoundActive || !rd.wordChosen {
		return false
	}
	r.broadcast(timerTickEvent(time.Until(rd.deadline)))
	return true
}

// endRound closes the current round and schedules the intermission.
// Lock held. The trigger reason is recorded: "deadline", "all_correct",
// or "drawer_left". The drawer earns points proportional to how many
// players guessed the word, except when they abandoned the round.
func (r *Room) endRound(reason string) {
	rd := r.current
	if rd == nil || r.phase != PhaseRoundActive {
		return
	}
	rd.endReason = reason
	r.stopTimer(&r.selectionTimer)
	r.stopTimer(&r.deadlineTimer)

	if reason != "drawer_left" && len(rd.correct) > 0 {
		if drawer := r.findPlayer(rd.drawerID); drawer != nil {
			delta := drawerScore(rd.word.Points, len(rd.correct))
			drawer.Score += delta
			rd.deltas[drawer.ID] = delta
		}
	}
	r.phase = PhaseRoundEnd

	log.Info().
		Str("room_id", r.ID).
		Int("turn", rd.seq).
		Str("reason", reason).
		Int("correct", len(rd.correct)).
		Msg("round ended")

	r.broadcast(r.roundEndedEvent(rd))
	r.broadcast(r.roomStateEvent())
	r.armIntermissionTimer(rd.seq)
}

// armIntermissionTimer holds the round-end scoreboard briefly before
// the next turn begins. Lock held.
func (r *Room) armIntermissionTimer(seq int) {
	r.stopTimer(&r.intermissionTimer)
	r.intermissionTimer = time.AfterFunc(r.opts.Intermission, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		rd := r.current
		if r.closed || rd == nil || rd.seq != seq || r.phase != PhaseRoundEnd {
			return
		}
		r.beginTurn()
	})
}

// endGame reaches the terminal phase: final scores out, result archived.
// Players can linger on the scoreboard; the room is only retired once the
// roster empties and the TTL runs out. Lock held.
func (r *Room) endGame() {
	r.phase = PhaseGameEnd
	r.current = nil
	result := r.buildResult()

	log.Info().
		Str("room_id", r.ID).
		Str("winner_id", result.WinnerID).
		Msg("game ended")

	r.broadcast(gameEndedEvent(result))
	r.broadcast(r.roomStateEvent())
	r.registry.gameEnded(result)
}

func (r *Room) buildResult() GameResult {
	scores := make([]PlayerScore, 0, len(r.players))
	var winner *Player
	for _, p := range r.players {
		scores = append(scores, PlayerScore{PlayerID: p.ID, Name: p.Name, Score: p.Score})
		if winner == nil || p.Score > winner.Score {
			winner = p
		}
	}
	result := GameResult{
		RoomID:   r.ID,
		RoomName: r.Name,
		Rounds:   r.cycle,
		Scores:   scores,
		EndedAt:  time.Now().UTC(),
	}
	if winner != nil {
		result.WinnerID = winner.ID
		result.WinnerName = winner.Name
	}
	return result
}

// guesserScore decreases monotonically with elapsed drawing time: an
// earlier correct guess is always worth at least as much as a later
// one, floored at a tenth of the word's base points.
func guesserScore(base int, elapsed, total time.Duration) int {
	if total <= 0 {
		return base
	}
	if elapsed < 0 {
		elapsed = 0
	}
	if elapsed > total {
		elapsed = total
	}
	remaining := total - elapsed
	score := int(float64(base) * remaining.Seconds() / total.Seconds())
	floor := base / 10
	if floor < 1 {
		floor = 1
	}
	if score < floor {
		score = floor
	}
	return score
}

// drawerScore rewards a clear drawing: half the word's base points per
// correct guesser.
func drawerScore(base, correctGuessers int) int {
	return base / 2 * correctGuessers
}
