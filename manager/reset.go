package manager

import (
	"context"

	"github.com/coinflip-gg/bracketry"
	"github.com/coinflip-gg/bracketry/bestof"
	"github.com/coinflip-gg/bracketry/engine"
	"github.com/coinflip-gg/bracketry/graph"
	"github.com/coinflip-gg/bracketry/storage"
)

type resetOps struct{ m *Manager }

// MatchResults clears a completed match's recorded result, rejecting the
// call with ErrCannotResetDownstreamCompleted (§4.4/§7) when any match this
// one feeds, transitively, has itself already completed — resetting here
// would otherwise leave a downstream match's opponent pointing at a result
// that no longer exists upstream.
func (r *resetOps) MatchResults(ctx context.Context, matchID int64) (bracketry.Match, error) {
	rows, err := r.m.store.Matches().Select(ctx, storage.ByID[bracketry.Match](matchID))
	if err != nil {
		return bracketry.Match{}, err
	}
	if len(rows) == 0 {
		return bracketry.Match{}, bracketry.NewError(bracketry.ErrNotFound, "match not found")
	}
	match := rows[0]
	if !engine.CanReset(match) {
		return bracketry.Match{}, bracketry.NewError(bracketry.ErrInvalidTransition, "match has no result to reset")
	}

	idx, err := loadStageIndex(ctx, r.m.store, match.StageID)
	if err != nil {
		return bracketry.Match{}, err
	}
	if err := checkNoDownstreamCompleted(idx, idx.key(match)); err != nil {
		return bracketry.Match{}, err
	}

	before := match
	engine.Reset(&match)
	if _, err := r.m.store.Matches().Update(ctx, storage.ByID[bracketry.Match](match.ID), match); err != nil {
		return bracketry.Match{}, err
	}
	if err := reversePropagate(ctx, r.m.store, idx, idx.topology(), idx.key(before), before); err != nil {
		return bracketry.Match{}, err
	}
	return match, nil
}

// reversePropagate undoes the forward propagation a match made while it was
// Completed (§4.4: "clear the participant from successor's opponentSide,
// restoring the placeholder"): for every edge engine.Propagate derives from
// before's result, if the successor's slot still holds the participant that
// was pushed into it, the slot is restored to its Position placeholder and
// the successor reclassified. checkNoDownstreamCompleted already guarantees
// no successor is itself Completed or Archived, so this never cascades
// beyond the one hop.
func reversePropagate(ctx context.Context, store storage.Storage, idx *stageIndex, topo graph.Topology, root matchKey, before bracketry.Match) error {
	for _, adv := range engine.Propagate(topo, root.GroupNumber, root.RoundNumber, root.Number, before) {
		succKey := matchKey{GroupNumber: adv.Group, RoundNumber: adv.Round, Number: adv.Number}
		succ, ok := idx.matchAt(succKey)
		if !ok {
			continue
		}
		current := succ.Opponent(adv.Slot)
		if current.Kind != bracketry.OpponentParticipant || current.ParticipantID != adv.ParticipantID {
			continue // already overwritten by an unrelated update; leave it alone
		}
		pos := root.Number
		if topo.StageType == bracketry.StageDoubleElimination && root.GroupNumber == bracketry.GroupWinners && adv.Group == bracketry.GroupLosers {
			pos = -root.Number // layout tags winners-bracket drops with the negated feeder number
		}
		succ.SetOpponent(adv.Slot, bracketry.PositionOpponent(pos))
		succ.Status = bracketry.ClassifyStatus(succ.Opponent1, succ.Opponent2)
		if _, err := store.Matches().Update(ctx, storage.ByID[bracketry.Match](succ.ID), succ); err != nil {
			return err
		}
	}
	return deactivateGrandFinalReset(ctx, store, idx, topo, root, before)
}

// deactivateGrandFinalReset reverts GF2 back to its generated Archived
// sentinel when GF1 is reset after GF2 was activated but never played — the
// mirror of update.activateGrandFinalReset, for the same reason it can't be
// expressed as an ordinary graph edge.
func deactivateGrandFinalReset(ctx context.Context, store storage.Storage, idx *stageIndex, topo graph.Topology, root matchKey, before bracketry.Match) error {
	if topo.StageType != bracketry.StageDoubleElimination || topo.GrandFinal != bracketry.GrandFinalDouble {
		return nil
	}
	if root != grandFinalGame1Key() || !before.Opponent2.Won() {
		return nil
	}
	succ, ok := idx.matchAt(grandFinalResetKey())
	if !ok || succ.Status == bracketry.StatusArchived {
		return nil
	}
	succ.Opponent1, succ.Opponent2 = bracketry.PositionOpponent(1), bracketry.PositionOpponent(2)
	succ.Status = bracketry.StatusArchived
	_, err := store.Matches().Update(ctx, storage.ByID[bracketry.Match](succ.ID), succ)
	return err
}

// checkNoDownstreamCompleted walks graph.Successors transitively from root
// and fails the moment it finds a match that has already completed.
func checkNoDownstreamCompleted(idx *stageIndex, root matchKey) error {
	topo := idx.topology()
	visited := map[matchKey]bool{}
	worklist := []matchKey{root}
	for len(worklist) > 0 {
		k := worklist[0]
		worklist = worklist[1:]
		for _, e := range graph.Successors(topo, k.GroupNumber, k.RoundNumber, k.Number) {
			ek := matchKey{GroupNumber: e.Group, RoundNumber: e.Round, Number: e.Number}
			if visited[ek] {
				continue
			}
			visited[ek] = true
			m, ok := idx.matchAt(ek)
			if !ok {
				continue
			}
			if m.Status == bracketry.StatusCompleted || m.Status == bracketry.StatusArchived {
				return bracketry.NewError(bracketry.ErrCannotResetDownstreamCompleted,
					"a match downstream of this one has already completed")
			}
			worklist = append(worklist, ek)
		}
	}

	// GF2, the double grand-final's reset game, has no ordinary successor
	// edge (doubleSuccessors has no GroupFinal case) since activating it
	// copies both opponents wholesale rather than filling one slot; the BFS
	// above can never reach it, so it needs its own check here.
	if root == grandFinalGame1Key() && topo.StageType == bracketry.StageDoubleElimination && topo.GrandFinal == bracketry.GrandFinalDouble {
		if gf2, ok := idx.matchAt(grandFinalResetKey()); ok && gf2.Status == bracketry.StatusCompleted {
			return bracketry.NewError(bracketry.ErrCannotResetDownstreamCompleted,
				"the grand final reset game has already completed")
		}
	}
	return nil
}

// MatchGameResults clears a single game's result and re-aggregates the
// series onto the parent match, subject to the same downstream-completed
// guard MatchResults enforces on the parent.
func (r *resetOps) MatchGameResults(ctx context.Context, gameID int64) (bracketry.MatchGame, error) {
	rows, err := r.m.store.MatchGames().Select(ctx, storage.ByID[bracketry.MatchGame](gameID))
	if err != nil {
		return bracketry.MatchGame{}, err
	}
	if len(rows) == 0 {
		return bracketry.MatchGame{}, bracketry.NewError(bracketry.ErrNotFound, "match game not found")
	}
	game := rows[0]
	if !engine.CanResetGame(game) {
		return bracketry.MatchGame{}, bracketry.NewError(bracketry.ErrInvalidTransition, "match game has no result to reset")
	}

	parentRows, err := r.m.store.Matches().Select(ctx, storage.ByID[bracketry.Match](game.ParentID))
	if err != nil {
		return bracketry.MatchGame{}, err
	}
	if len(parentRows) == 0 {
		return bracketry.MatchGame{}, bracketry.NewError(bracketry.ErrNotFound, "parent match not found")
	}
	parent := parentRows[0]

	idx, err := loadStageIndex(ctx, r.m.store, parent.StageID)
	if err != nil {
		return bracketry.MatchGame{}, err
	}
	if parent.Status == bracketry.StatusCompleted {
		if err := checkNoDownstreamCompleted(idx, idx.key(parent)); err != nil {
			return bracketry.MatchGame{}, err
		}
	}

	engine.ResetGame(&game)
	if _, err := r.m.store.MatchGames().Update(ctx, storage.ByID[bracketry.MatchGame](game.ID), game); err != nil {
		return bracketry.MatchGame{}, err
	}

	siblings, err := r.m.store.MatchGames().Select(ctx, storage.ByPartial(bracketry.MatchGame{ParentID: parent.ID}))
	if err != nil {
		return bracketry.MatchGame{}, err
	}
	beforeParent := parent
	outcome := bestof.Aggregate(parent.ChildCount, siblings)
	bestof.ApplyOutcome(&parent, outcome)
	if _, err := r.m.store.Matches().Update(ctx, storage.ByID[bracketry.Match](parent.ID), parent); err != nil {
		return bracketry.MatchGame{}, err
	}
	if beforeParent.Status == bracketry.StatusCompleted && parent.Status != bracketry.StatusCompleted {
		if err := reversePropagate(ctx, r.m.store, idx, idx.topology(), idx.key(beforeParent), beforeParent); err != nil {
			return bracketry.MatchGame{}, err
		}
	}
	return game, nil
}

// Seeding regenerates a stage from scratch using the tournament's currently
// stored participant order (ordered by id) rather than a caller-supplied
// one — reset.seeding's distinction from update.seeding per §9.
func (r *resetOps) Seeding(ctx context.Context, stageID int64) (bracketry.Stage, error) {
	stages, err := r.m.store.Stages().Select(ctx, storage.ByID[bracketry.Stage](stageID))
	if err != nil {
		return bracketry.Stage{}, err
	}
	if len(stages) == 0 {
		return bracketry.Stage{}, bracketry.NewError(bracketry.ErrNotFound, "stage not found")
	}
	participants, err := r.m.store.Participants().Select(ctx, storage.ByPartial(bracketry.Participant{TournamentID: stages[0].TournamentID}))
	if err != nil {
		return bracketry.Stage{}, err
	}
	seedOrder := make([]int64, len(participants))
	for i, p := range participants {
		seedOrder[i] = p.ID
	}
	return regenerateStage(ctx, r.m.store, stageID, seedOrder)
}
