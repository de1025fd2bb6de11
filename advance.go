package bracketry

// ResolveByes mutates o1/o2 in place: if exactly one side is an empty (BYE)
// slot and the other already holds a concrete participant with no result
// yet, the present participant is awarded the win. This is the single
// source of truth for "BYE auto-advance" (§4.4), used identically at stage
// generation time and by the progression engine when a successor receives
// a participant next to an already-empty slot.
func ResolveByes(o1, o2 *Opponent) {
	win := ResultWin
	if o1.Kind == OpponentEmpty && o2.Kind == OpponentParticipant && o2.Result == nil && !o2.Forfeit {
		o2.Result = &win
	} else if o2.Kind == OpponentEmpty && o1.Kind == OpponentParticipant && o1.Result == nil && !o1.Forfeit {
		o1.Result = &win
	}
}

// ClassifyStatus derives a match's status from its (already canonicalized —
// forfeit/result merged, byes resolved) opponents, per the §3 invariants.
// Waiting is deliberately collapsed into Ready: §3 explicitly permits this
// when no upstream match exists, and since a resolved-both-sides match
// never needs a separate "waiting to be displayed" state to drive
// progression, this implementation always collapses it (see DESIGN.md).
func ClassifyStatus(o1, o2 Opponent) MatchStatus {
	if o1.Won() || o2.Won() {
		return StatusCompleted
	}
	if o1.Kind == OpponentEmpty && o2.Kind == OpponentEmpty {
		return StatusCompleted
	}
	if o1.Kind != OpponentParticipant || o2.Kind != OpponentParticipant {
		return StatusLocked
	}
	if o1.Score != nil || o2.Score != nil {
		return StatusRunning
	}
	return StatusReady
}

// Winner returns the participant id that is currently recorded as the
// winner of the match, if any.
func Winner(o1, o2 Opponent) (int64, bool) {
	if o1.Won() {
		return o1.ParticipantID, true
	}
	if o2.Won() {
		return o2.ParticipantID, true
	}
	return 0, false
}

// Loser returns the participant id currently recorded as having lost, if any.
func Loser(o1, o2 Opponent) (int64, bool) {
	if o1.Lost() && o1.Kind == OpponentParticipant {
		return o1.ParticipantID, true
	}
	if o2.Lost() && o2.Kind == OpponentParticipant {
		return o2.ParticipantID, true
	}
	return 0, false
}
