package manager

import (
	"context"

	"github.com/coinflip-gg/bracketry"
	"github.com/coinflip-gg/bracketry/bestof"
	"github.com/coinflip-gg/bracketry/engine"
	"github.com/coinflip-gg/bracketry/graph"
	"github.com/coinflip-gg/bracketry/layout"
	"github.com/coinflip-gg/bracketry/storage"
)

type updateOps struct{ m *Manager }

// MatchInput is update.match's payload: either opponent side may carry an
// update, or both at once, since a single call is allowed to record both
// sides' results together (e.g. a reported final score).
type MatchInput struct {
	Opponent1 *engine.Update
	Opponent2 *engine.Update
}

// Match applies a validated update to one or both opponent slots of a match,
// then propagates the result through every successor it feeds, persisting
// successors before the match itself (§5: "updated match last after
// successors are wired"). Calling Match again with the same arguments against
// an already-applied result is a no-op each step of the way.
func (u *updateOps) Match(ctx context.Context, matchID int64, in MatchInput) (bracketry.Match, error) {
	rows, err := u.m.store.Matches().Select(ctx, storage.ByID[bracketry.Match](matchID))
	if err != nil {
		return bracketry.Match{}, err
	}
	if len(rows) == 0 {
		return bracketry.Match{}, bracketry.NewError(bracketry.ErrNotFound, "match not found")
	}
	match := rows[0]

	for _, upd := range []*engine.Update{in.Opponent1, in.Opponent2} {
		if upd == nil {
			continue
		}
		if err := engine.Validate(match, *upd); err != nil {
			return bracketry.Match{}, err
		}
		engine.Apply(&match, *upd)
	}

	idx, err := loadStageIndex(ctx, u.m.store, match.StageID)
	if err != nil {
		return bracketry.Match{}, err
	}
	topo := idx.topology()
	root := idx.key(match)

	toPersist, err := propagate(idx, topo, root, match)
	if err != nil {
		return bracketry.Match{}, err
	}
	for _, successor := range toPersist {
		if _, err := u.m.store.Matches().Update(ctx, storage.ByID[bracketry.Match](successor.ID), successor); err != nil {
			return bracketry.Match{}, err
		}
	}
	if _, err := u.m.store.Matches().Update(ctx, storage.ByID[bracketry.Match](match.ID), match); err != nil {
		return bracketry.Match{}, err
	}
	return match, nil
}

// propagate runs the worklist from root (already mutated into its final
// in-memory state) outward: every newly-completed successor is itself pushed
// onto the worklist, so a BYE-chain cascades in one call (§4.4). It returns
// the mutated successors in no particular order; callers persist the root
// separately, and last.
func propagate(idx *stageIndex, topo graph.Topology, root matchKey, rootMatch bracketry.Match) ([]bracketry.Match, error) {
	current := map[matchKey]bracketry.Match{root: rootMatch}
	mutated := map[int64]bracketry.Match{}
	worklist := []matchKey{root}

	for len(worklist) > 0 {
		k := worklist[0]
		worklist = worklist[1:]
		m := current[k]

		if succKey, succ, changed := activateGrandFinalReset(idx, topo, current, k, m); changed {
			current[succKey] = succ
			mutated[succ.ID] = succ
		}

		for _, adv := range engine.Propagate(topo, k.GroupNumber, k.RoundNumber, k.Number, m) {
			succKey := matchKey{GroupNumber: adv.Group, RoundNumber: adv.Round, Number: adv.Number}
			succ, ok := current[succKey]
			if !ok {
				succ, ok = idx.matchAt(succKey)
				if !ok {
					continue // graph edge points outside this stage snapshot; nothing to fill
				}
			}
			changed := engine.FillSlot(&succ, adv.Slot, adv.ParticipantID)
			current[succKey] = succ
			if changed {
				mutated[succ.ID] = succ
				if succ.Status == bracketry.StatusCompleted {
					worklist = append(worklist, succKey)
				}
			}
		}
	}

	out := make([]bracketry.Match, 0, len(mutated))
	for _, m := range mutated {
		out = append(out, m)
	}
	return out, nil
}

// activateGrandFinalReset turns GF2 from its generated Archived sentinel
// into a playable rematch once GF1 completes with the losers-bracket
// finalist winning (§4.2/§8.3): a winners-bracket win leaves it untouched.
// Like FillSlot, it is idempotent — re-delivery of the same GF1 result is a
// no-op — since graph has no edge for this and engine.Propagate never sees
// it.
func activateGrandFinalReset(idx *stageIndex, topo graph.Topology, current map[matchKey]bracketry.Match, k matchKey, m bracketry.Match) (matchKey, bracketry.Match, bool) {
	if topo.StageType != bracketry.StageDoubleElimination || topo.GrandFinal != bracketry.GrandFinalDouble {
		return matchKey{}, bracketry.Match{}, false
	}
	if k != grandFinalGame1Key() || m.Status != bracketry.StatusCompleted || !m.Opponent2.Won() {
		return matchKey{}, bracketry.Match{}, false
	}
	succKey := grandFinalResetKey()
	succ, ok := current[succKey]
	if !ok {
		succ, ok = idx.matchAt(succKey)
		if !ok {
			return matchKey{}, bracketry.Match{}, false
		}
	}
	o1, o2 := bracketry.ParticipantOpponent(m.Opponent1.ParticipantID), bracketry.ParticipantOpponent(m.Opponent2.ParticipantID)
	if succ.Opponent1 == o1 && succ.Opponent2 == o2 {
		return succKey, succ, false
	}
	succ.Opponent1, succ.Opponent2 = o1, o2
	succ.Status = bracketry.ClassifyStatus(succ.Opponent1, succ.Opponent2)
	return succKey, succ, true
}

// MatchGame applies a validated update to one game of a best-of series, then
// re-aggregates the series onto the parent match (C5) and runs the same
// match-propagation worklist Match uses, since a decided series advances the
// bracket exactly like a direct match update would.
func (u *updateOps) MatchGame(ctx context.Context, gameID int64, upd engine.Update) (bracketry.MatchGame, error) {
	rows, err := u.m.store.MatchGames().Select(ctx, storage.ByID[bracketry.MatchGame](gameID))
	if err != nil {
		return bracketry.MatchGame{}, err
	}
	if len(rows) == 0 {
		return bracketry.MatchGame{}, bracketry.NewError(bracketry.ErrNotFound, "match game not found")
	}
	game := rows[0]

	if err := engine.ValidateGame(game, upd); err != nil {
		return bracketry.MatchGame{}, err
	}
	engine.ApplyGame(&game, upd)
	if _, err := u.m.store.MatchGames().Update(ctx, storage.ByID[bracketry.MatchGame](game.ID), game); err != nil {
		return bracketry.MatchGame{}, err
	}

	siblings, err := u.m.store.MatchGames().Select(ctx, storage.ByPartial(bracketry.MatchGame{ParentID: game.ParentID}))
	if err != nil {
		return bracketry.MatchGame{}, err
	}
	parentRows, err := u.m.store.Matches().Select(ctx, storage.ByID[bracketry.Match](game.ParentID))
	if err != nil {
		return bracketry.MatchGame{}, err
	}
	if len(parentRows) == 0 {
		return bracketry.MatchGame{}, bracketry.NewError(bracketry.ErrNotFound, "parent match not found")
	}
	parent := parentRows[0]

	outcome := bestof.Aggregate(parent.ChildCount, siblings)
	bestof.ApplyOutcome(&parent, outcome)

	if outcome.Decided {
		for _, id := range bestof.GamesToArchive(siblings) {
			for _, g := range siblings {
				if g.ID == id {
					g.Status = bracketry.StatusArchived
					if _, err := u.m.store.MatchGames().Update(ctx, storage.ByID[bracketry.MatchGame](id), g); err != nil {
						return bracketry.MatchGame{}, err
					}
				}
			}
		}
	}

	idx, err := loadStageIndex(ctx, u.m.store, parent.StageID)
	if err != nil {
		return bracketry.MatchGame{}, err
	}
	topo := idx.topology()
	root := idx.key(parent)

	toPersist, err := propagate(idx, topo, root, parent)
	if err != nil {
		return bracketry.MatchGame{}, err
	}
	for _, successor := range toPersist {
		if _, err := u.m.store.Matches().Update(ctx, storage.ByID[bracketry.Match](successor.ID), successor); err != nil {
			return bracketry.MatchGame{}, err
		}
	}
	if _, err := u.m.store.Matches().Update(ctx, storage.ByID[bracketry.Match](parent.ID), parent); err != nil {
		return bracketry.MatchGame{}, err
	}
	return game, nil
}

// ConfirmSeeding resolves every Position placeholder in a stage whose
// position indexes into seedOrder, regardless of which generator produced
// the placeholder — a stage-type-agnostic pass over the stage's matches
// rather than a round-robin- or elimination-specific one.
func (u *updateOps) ConfirmSeeding(ctx context.Context, stageID int64, seedOrder []int64) error {
	idx, err := loadStageIndex(ctx, u.m.store, stageID)
	if err != nil {
		return err
	}
	for _, match := range idx.matches {
		changed := false
		for _, slot := range []bracketry.Slot{bracketry.SlotOpponent1, bracketry.SlotOpponent2} {
			opp := match.Opponent(slot)
			if !opp.IsPosition() {
				continue
			}
			i := opp.Position
			if i < 0 || i >= len(seedOrder) {
				continue
			}
			match.SetOpponent(slot, bracketry.ParticipantOpponent(seedOrder[i]))
			changed = true
		}
		if !changed {
			continue
		}
		bracketry.ResolveByes(&match.Opponent1, &match.Opponent2)
		match.Status = bracketry.ClassifyStatus(match.Opponent1, match.Opponent2)
		if _, err := u.m.store.Matches().Update(ctx, storage.ByID[bracketry.Match](match.ID), match); err != nil {
			return err
		}
	}
	return nil
}

// Seeding guards §4.1/§9's reseed-before-play rule and then regenerates the
// stage from scratch with newSeedOrder: every group/round/match this stage
// currently has is deleted and recreated via layout.Generate, since there is
// no partial-reseed operation — a stage is either still fully pristine (only
// generation-time BYE auto-completions are tolerated) or it is not
// reseedable at all.
func (u *updateOps) Seeding(ctx context.Context, stageID int64, newSeedOrder []int64) (bracketry.Stage, error) {
	return regenerateStage(ctx, u.m.store, stageID, newSeedOrder)
}

// seedingGuard reports an error if any match in the stage carries a result
// beyond what generation-time BYE resolution produces.
func seedingGuard(idx *stageIndex) error {
	for _, m := range idx.matches {
		if m.Status == bracketry.StatusRunning {
			return bracketry.NewError(bracketry.ErrInvalidTransition, "stage already has a match in progress")
		}
		if m.Status != bracketry.StatusCompleted {
			continue
		}
		if m.Opponent1.Kind == bracketry.OpponentParticipant && m.Opponent2.Kind == bracketry.OpponentParticipant {
			return bracketry.NewError(bracketry.ErrInvalidTransition, "stage already has a genuine match result recorded")
		}
	}
	return nil
}

// regenerateStage keeps the stage row (and its id) in place and only rebuilds
// its groups/rounds/matches/games: deleting a group cascades to its rounds,
// matches and match games (see the migration's ON DELETE CASCADE chain), so
// the stage itself never needs to be dropped and recreated under a new id.
func regenerateStage(ctx context.Context, store storage.Storage, stageID int64, seedOrder []int64) (bracketry.Stage, error) {
	idx, err := loadStageIndex(ctx, store, stageID)
	if err != nil {
		return bracketry.Stage{}, err
	}
	if err := seedingGuard(idx); err != nil {
		return bracketry.Stage{}, err
	}

	for _, g := range idx.groups {
		if _, err := store.Groups().Delete(ctx, storage.ByID[bracketry.Group](g.ID)); err != nil {
			return bracketry.Stage{}, err
		}
	}

	generated, err := layout.Generate(idx.stage.Type, seedOrder, idx.stage.Settings)
	if err != nil {
		return bracketry.Stage{}, err
	}
	if err := persistGenerated(ctx, store, idx.stage, generated); err != nil {
		return bracketry.Stage{}, err
	}
	return idx.stage, nil
}
