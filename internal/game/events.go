package game

import "time"

const (
	EventRoomState      = "room_state"
	EventPlayerJoined   = "player_joined"
	EventPlayerLeft     = "player_left"
	EventHostChanged    = "host_changed"
	EventRoundStarted   = "round_started"
	EventWordChoices    = "word_choices"
	EventWordRevealed   = "word_revealed"
	EventTimerTick      = "timer_tick"
	EventDrawRelay      = "draw_event_relay"
	EventCanvasCleared  = "canvas_cleared"
	EventGuessResult    = "guess_result"
	EventGuessAnnounced = "guess_announced"
	EventRoundEnded     = "round_ended"
	EventGameEnded      = "game_ended"
	EventError          = "error"
)

// roomStateEvent builds the broadcast snapshot of a room. Callers hold
// the room lock. The secret word never appears here.
func (r *Room) roomStateEvent() Event {
	roster := make([]map[string]any, 0, len(r.players))
	for _, p := range r.players {
		roster = append(roster, map[string]any{
			"player_id": p.ID,
			"name":      p.Name,
			"score":     p.Score,
			"connected": p.Connected(),
			"role":      r.roleOf(p),
		})
	}
	data := map[string]any{
		"room_id":    r.ID,
		"name":       r.Name,
		"visibility": r.Visibility,
		"phase":      r.phase,
		"host_id":    r.hostID,
		"roster":     roster,
		"settings": map[string]any{
			"rounds":        r.Settings.Rounds,
			"round_seconds": int(r.Settings.RoundDuration.Seconds()),
			"max_players":   r.Settings.MaxPlayers,
		},
	}
	if r.current != nil {
		data["round"] = r.current.number
		data["drawer_id"] = r.current.drawerID
		data["word_chosen"] = r.current.wordChosen
	}
	return Event{Type: EventRoomState, Data: data}
}

func (r *Room) roleOf(p *Player) string {
	if r.current != nil && r.phase == PhaseRoundActive && p.ID == r.current.drawerID {
		return "drawer"
	}
	if p.isHost {
		return "host"
	}
	if r.phase == PhaseRoundActive {
		return "guesser"
	}
	return ""
}

func playerJoinedEvent(p *Player) Event {
	return Event{Type: EventPlayerJoined, Data: map[string]any{
		"player_id": p.ID,
		"name":      p.Name,
	}}
}

func playerLeftEvent(playerID, name, reason string) Event {
	return Event{Type: EventPlayerLeft, Data: map[string]any{
		"player_id": playerID,
		"name":      name,
		"reason":    reason,
	}}
}

func hostChangedEvent(p *Player) Event {
	return Event{Type: EventHostChanged, Data: map[string]any{
		"host_id": p.ID,
		"name":    p.Name,
	}}
}

func roundStartedEvent(rd *round, selectionDeadline time.Time) Event {
	return Event{Type: EventRoundStarted, Data: map[string]any{
		"round":              rd.number,
		"drawer_id":          rd.drawerID,
		"selection_deadline": selectionDeadline.UnixMilli(),
	}}
}

// wordChoicesEvent goes to the drawer only.
func wordChoicesEvent(rd *round, selectionDeadline time.Time) Event {
	return Event{Type: EventWordChoices, Data: map[string]any{
		"choices":  rd.choices,
		"deadline": selectionDeadline.UnixMilli(),
	}}
}

// wordRevealedEvent goes only to the drawer and to players who have
// guessed correctly this round.
func wordRevealedEvent(rd *round) Event {
	return Event{Type: EventWordRevealed, Data: map[string]any{
		"word":       rd.word.Text,
		"difficulty": rd.word.Difficulty,
	}}
}

func timerTickEvent(remaining time.Duration) Event {
	if remaining < 0 {
		remaining = 0
	}
	return Event{Type: EventTimerTick, Data: map[string]any{
		"remaining_ms": remaining.Milliseconds(),
	}}
}

func drawRelayEvent(s Stroke) Event {
	return Event{Type: EventDrawRelay, Data: s}
}

func canvasClearedEvent() Event {
	return Event{Type: EventCanvasCleared, Data: map[string]any{}}
}

// GuessResultEvent is the private acknowledgement for the submitter.
func GuessResultEvent(res GuessResult) Event {
	return Event{Type: EventGuessResult, Data: map[string]any{
		"correct":     res.Correct,
		"score_delta": res.ScoreDelta,
	}}
}

// guessAnnouncedEvent never carries the submitted text or the word.
func guessAnnouncedEvent(p *Player, correct bool) Event {
	return Event{Type: EventGuessAnnounced, Data: map[string]any{
		"player_id": p.ID,
		"name":      p.Name,
		"correct":   correct,
	}}
}

func (r *Room) roundEndedEvent(rd *round) Event {
	scores := make(map[string]int, len(r.players))
	for _, p := range r.players {
		scores[p.ID] = p.Score
	}
	return Event{Type: EventRoundEnded, Data: map[string]any{
		"round":  rd.number,
		"word":   rd.word.Text,
		"reason": rd.endReason,
		"scores": scores,
		"deltas": rd.deltas,
	}}
}

func gameEndedEvent(result GameResult) Event {
	return Event{Type: EventGameEnded, Data: map[string]any{
		"final_scores": result.Scores,
		"winner_id":    result.WinnerID,
		"winner_name":  result.WinnerName,
	}}
}

// ErrorEvent wraps a validation failure for the originating connection.
func ErrorEvent(err error) Event {
	return Event{Type: EventError, Data: map[string]any{
		"code":    ErrorCode(err),
		"message": err.Error(),
	}}
}
