// Package engine implements C4: validating and applying a score/result
// update to a match, canonicalizing forfeits into results, recomputing
// status, and describing how a newly completed match propagates into the
// matches it feeds. It never touches storage directly — the manager package
// loads/saves matches around calls into this package, so every function
// here is a pure, easily testable transformation.
package engine

import (
	"github.com/coinflip-gg/bracketry"
	"github.com/coinflip-gg/bracketry/graph"
	"github.com/coinflip-gg/bracketry/internal/utils"
)

// Update is one requested change to a single opponent slot of a match.
type Update struct {
	Slot    bracketry.Slot
	Score   *int
	Result  *bracketry.Result
	Forfeit bool
}

// Validate checks an update against the match's current state without
// mutating anything, returning the specific §7 error kind on failure.
func Validate(match bracketry.Match, u Update) error {
	if match.Status == bracketry.StatusArchived {
		return bracketry.NewError(bracketry.ErrInvalidTransition, "match is archived")
	}
	if match.ChildCount > 0 && (u.Score != nil || u.Result != nil) {
		return bracketry.NewError(bracketry.ErrUseMatchGameUpdate, "match has child games; update.matchGame instead")
	}

	opp := match.Opponent(u.Slot)
	if opp.Kind != bracketry.OpponentParticipant {
		return bracketry.NewError(bracketry.ErrInvalidOpponent, "opponent slot is not resolved to a participant yet")
	}
	if match.Status == bracketry.StatusLocked {
		return bracketry.NewError(bracketry.ErrInvalidTransition, "match is locked: an upstream match has not completed")
	}
	if u.Score != nil && *u.Score < 0 {
		return bracketry.NewError(bracketry.ErrInvalidScore, "score cannot be negative")
	}
	if u.Result != nil {
		switch *u.Result {
		case bracketry.ResultWin, bracketry.ResultLoss, bracketry.ResultDraw:
		default:
			return bracketry.NewError(bracketry.ErrInvalidResult, "unrecognized result value")
		}
		if *u.Result == bracketry.ResultWin && match.Opponent(u.Slot.Other()).Won() {
			return bracketry.NewError(bracketry.ErrInvalidResult, "both sides cannot win")
		}
	}
	return nil
}

// Apply mutates match with a validated update, canonicalizes the opponents
// (forfeit dominance, implicit win/loss) and recomputes status. Callers
// must call Validate first.
func Apply(match *bracketry.Match, u Update) {
	opp := match.Opponent(u.Slot)

	if u.Score != nil {
		opp.Score = u.Score
	}
	if u.Result != nil {
		opp.Result = u.Result
	}
	if u.Forfeit {
		opp.Forfeit = true
		opp.Result = utils.Ptr(bracketry.ResultLoss)
	}
	match.SetOpponent(u.Slot, opp)

	canonicalize(match)
	match.Status = bracketry.ClassifyStatus(match.Opponent1, match.Opponent2)
}

// canonicalize enforces §3's "forfeit dominance": a forfeiting side is
// always recorded as the loss, and the opposite side, if it has no result
// yet, is recorded as the win; an explicit win likewise marks a result-less
// opposite side as the loss. A lone loss (without forfeit) or draw leaves
// the opposite side's result unset.
func canonicalize(match *bracketry.Match) {
	resolvePair(&match.Opponent1, &match.Opponent2)
	resolvePair(&match.Opponent2, &match.Opponent1)
}

func resolvePair(o, other *bracketry.Opponent) {
	if o.Kind != bracketry.OpponentParticipant || other.Kind != bracketry.OpponentParticipant {
		return
	}
	if o.Forfeit && other.Result == nil {
		other.Result = utils.Ptr(bracketry.ResultWin)
	}
	if o.Result != nil && *o.Result == bracketry.ResultWin && other.Result == nil {
		other.Result = utils.Ptr(bracketry.ResultLoss)
	}
}

// ValidateGame is Validate's counterpart for a best-of series' child game: a
// MatchGame never carries ChildCount, so the UseMatchGameUpdate branch does
// not apply, but it is otherwise governed by the same rules.
func ValidateGame(game bracketry.MatchGame, u Update) error {
	if game.Status == bracketry.StatusArchived {
		return bracketry.NewError(bracketry.ErrInvalidTransition, "match game is archived")
	}
	opp := game.Opponent(u.Slot)
	if opp.Kind != bracketry.OpponentParticipant {
		return bracketry.NewError(bracketry.ErrInvalidOpponent, "opponent slot is not resolved to a participant yet")
	}
	if game.Status == bracketry.StatusLocked {
		return bracketry.NewError(bracketry.ErrInvalidTransition, "match game is locked")
	}
	if u.Score != nil && *u.Score < 0 {
		return bracketry.NewError(bracketry.ErrInvalidScore, "score cannot be negative")
	}
	if u.Result != nil {
		switch *u.Result {
		case bracketry.ResultWin, bracketry.ResultLoss, bracketry.ResultDraw:
		default:
			return bracketry.NewError(bracketry.ErrInvalidResult, "unrecognized result value")
		}
		if *u.Result == bracketry.ResultWin && game.Opponent(u.Slot.Other()).Won() {
			return bracketry.NewError(bracketry.ErrInvalidResult, "both sides cannot win")
		}
	}
	return nil
}

// ApplyGame is Apply's counterpart for a child game.
func ApplyGame(game *bracketry.MatchGame, u Update) {
	opp := game.Opponent(u.Slot)
	if u.Score != nil {
		opp.Score = u.Score
	}
	if u.Result != nil {
		opp.Result = u.Result
	}
	if u.Forfeit {
		opp.Forfeit = true
		opp.Result = utils.Ptr(bracketry.ResultLoss)
	}
	game.SetOpponent(u.Slot, opp)

	resolvePair(&game.Opponent1, &game.Opponent2)
	resolvePair(&game.Opponent2, &game.Opponent1)
	game.Status = bracketry.ClassifyStatus(game.Opponent1, game.Opponent2)
}

// CanReset reports whether match can have its result cleared: only a
// Completed (not yet Archived) match, and only via Reset, never a bare
// Update. Downstream-completed checks require storage and are the
// manager's responsibility (§7 CannotResetDownstreamCompleted).
func CanReset(match bracketry.Match) bool {
	return match.Status == bracketry.StatusCompleted
}

// Reset clears both opponents' scores/results/forfeits and recomputes
// status. The caller must have already verified no downstream match that
// depended on this result has itself completed.
func Reset(match *bracketry.Match) {
	clear := func(o *bracketry.Opponent) {
		if o.Kind == bracketry.OpponentParticipant {
			o.Score = nil
			o.Result = nil
			o.Forfeit = false
		}
	}
	clear(&match.Opponent1)
	clear(&match.Opponent2)
	match.Status = bracketry.ClassifyStatus(match.Opponent1, match.Opponent2)
}

// CanResetGame is CanReset's counterpart for a child game.
func CanResetGame(game bracketry.MatchGame) bool {
	return game.Status == bracketry.StatusCompleted
}

// ResetGame clears a child game's recorded result, mirroring Reset.
func ResetGame(game *bracketry.MatchGame) {
	clear := func(o *bracketry.Opponent) {
		if o.Kind == bracketry.OpponentParticipant {
			o.Score = nil
			o.Result = nil
			o.Forfeit = false
		}
	}
	clear(&game.Opponent1)
	clear(&game.Opponent2)
	game.Status = bracketry.ClassifyStatus(game.Opponent1, game.Opponent2)
}

// Advance describes one opponent slot that needs to be written into a
// successor match once the source match completes.
type Advance struct {
	Group, Round, Number int
	Slot                 bracketry.Slot
	ParticipantID        int64
}

// Propagate computes which successor slots should be filled once match
// (at group/round/number, already Completed) is applied, using topo's
// derived-edge formulas. It is idempotent: calling it again against an
// already-propagated match yields the same Advances, so the manager can
// safely re-apply on retry without double-advancing anyone.
func Propagate(topo graph.Topology, group, round, number int, match bracketry.Match) []Advance {
	if match.Status != bracketry.StatusCompleted {
		return nil
	}
	var out []Advance
	for _, edge := range graph.Successors(topo, group, round, number) {
		var id int64
		var ok bool
		if edge.Role == bracketry.RoleWinner {
			id, ok = bracketry.Winner(match.Opponent1, match.Opponent2)
		} else {
			id, ok = bracketry.Loser(match.Opponent1, match.Opponent2)
		}
		if !ok {
			continue // a double-BYE terminal match has neither; nothing to propagate
		}
		out = append(out, Advance{Group: edge.Group, Round: edge.Round, Number: edge.Number, Slot: edge.Slot, ParticipantID: id})
	}
	return out
}

// FillSlot writes a propagated participant into match's slot unless that
// slot already holds a participant, awards the BYE win when the other slot
// is empty, then reclassifies status. It returns true when the slot holds
// participantID afterwards (an idempotent re-delivery of the same id
// included) and false when a different participant already occupies it.
func FillSlot(match *bracketry.Match, slot bracketry.Slot, participantID int64) bool {
	current := match.Opponent(slot)
	if current.Kind == bracketry.OpponentParticipant {
		return current.ParticipantID == participantID // already filled; treat matching id as a no-op success
	}
	match.SetOpponent(slot, bracketry.ParticipantOpponent(participantID))
	bracketry.ResolveByes(&match.Opponent1, &match.Opponent2)
	match.Status = bracketry.ClassifyStatus(match.Opponent1, match.Opponent2)
	return true
}
