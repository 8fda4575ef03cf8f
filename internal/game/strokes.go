package game

// AddStroke accepts a stroke delta from the current drawer and relays
// it, in submission order, to every other connected player. Strokes are
// recorded in a bounded replay buffer so a reconnecting player can
// rebuild the canvas without asking other clients.
func (r *Room) AddStroke(playerID string, stroke Stroke) error {
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
	if len(rd.strokes) < r.opts.ReplayLimit {
		rd.strokes = append(rd.strokes, stroke)
	}
	r.broadcastExcept(playerID, drawRelayEvent(stroke))
	return nil
}

// ClearCanvas truncates the replay buffer and tells everyone to wipe.
// Drawer only.
func (r *Room) ClearCanvas(playerID string) error {
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
	rd.strokes = rd.strokes[:0]
	r.broadcast(canvasClearedEvent())
	return nil
}
