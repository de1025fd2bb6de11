package manager

import (
	"context"

	"github.com/coinflip-gg/bracketry"
	"github.com/coinflip-gg/bracketry/graph"
	"github.com/coinflip-gg/bracketry/storage"
)

// roundKey addresses a round by its stage-type-specific group number and its
// number within that group, the same coordinate graph.Edge uses.
type roundKey struct {
	GroupNumber, RoundNumber int
}

// grandFinalGame1Key addresses GF1, a double grand final's first game:
// Opponent1 is always the winners-bracket finalist, Opponent2 the
// losers-bracket one (see layout.buildGrandFinal), so "the losers-bracket
// path won" is exactly Opponent2.Won().
func grandFinalGame1Key() matchKey {
	return matchKey{GroupNumber: bracketry.GroupFinal, RoundNumber: 1, Number: 1}
}

// grandFinalResetKey addresses GF2, the rematch layout.buildGrandFinal
// generates Archived and that graph has no ordinary successor edge for
// (doubleSuccessors has no GroupFinal case): it's a full copy of both
// opponents into a rematch, not a one-slot fill, so the manager activates
// and reverts it as a special case rather than through engine.Propagate.
func grandFinalResetKey() matchKey {
	return matchKey{GroupNumber: bracketry.GroupFinal, RoundNumber: 2, Number: 1}
}

// matchKey addresses a match the same way, down to its number within the round.
type matchKey struct {
	GroupNumber, RoundNumber, Number int
}

// stageIndex is a snapshot of one stage's groups/rounds/matches, loaded fresh
// for every operation, with the lookup maps needed to translate between
// database ids and the (group, round, number) coordinates graph and engine
// address matches by.
type stageIndex struct {
	stage   bracketry.Stage
	groups  []bracketry.Group
	rounds  []bracketry.Round
	matches []bracketry.Match

	groupNumberByID map[int64]int
	groupIDByNumber map[int]int64
	roundKeyByID    map[int64]roundKey
	roundIDByKey    map[roundKey]int64
	matchByKey      map[matchKey]bracketry.Match
}

// loadStageIndex reads every row of a stage out of storage and builds the
// coordinate lookup tables the manager needs to walk the derived match graph.
func loadStageIndex(ctx context.Context, store storage.Storage, stageID int64) (*stageIndex, error) {
	stages, err := store.Stages().Select(ctx, storage.ByID[bracketry.Stage](stageID))
	if err != nil {
		return nil, err
	}
	if len(stages) == 0 {
		return nil, bracketry.NewError(bracketry.ErrNotFound, "stage not found")
	}
	stage := stages[0]

	groups, err := store.Groups().Select(ctx, storage.ByPartial(bracketry.Group{StageID: stageID}))
	if err != nil {
		return nil, err
	}
	rounds, err := store.Rounds().Select(ctx, storage.ByPartial(bracketry.Round{StageID: stageID}))
	if err != nil {
		return nil, err
	}
	matches, err := store.Matches().Select(ctx, storage.ByPartial(bracketry.Match{StageID: stageID}))
	if err != nil {
		return nil, err
	}

	idx := &stageIndex{
		stage:           stage,
		groups:          groups,
		rounds:          rounds,
		matches:         matches,
		groupNumberByID: map[int64]int{},
		groupIDByNumber: map[int]int64{},
		roundKeyByID:    map[int64]roundKey{},
		roundIDByKey:    map[roundKey]int64{},
		matchByKey:      map[matchKey]bracketry.Match{},
	}
	for _, g := range groups {
		idx.groupNumberByID[g.ID] = g.Number
		idx.groupIDByNumber[g.Number] = g.ID
	}
	for _, r := range rounds {
		gn := idx.groupNumberByID[r.GroupID]
		key := roundKey{GroupNumber: gn, RoundNumber: r.Number}
		idx.roundKeyByID[r.ID] = key
		idx.roundIDByKey[key] = r.ID
	}
	for _, m := range matches {
		rk := idx.roundKeyByID[m.RoundID]
		idx.matchByKey[matchKey{GroupNumber: rk.GroupNumber, RoundNumber: rk.RoundNumber, Number: m.Number}] = m
	}
	return idx, nil
}

// winnerBracketRounds returns the round count graph.Topology needs: the
// highest round number seen in the winners group (GroupMain for single
// elimination, GroupWinners for double elimination).
func (idx *stageIndex) winnerBracketRounds() int {
	winnerGroup := bracketry.GroupMain
	if idx.stage.Type == bracketry.StageDoubleElimination {
		winnerGroup = bracketry.GroupWinners
	}
	max := 0
	for _, r := range idx.rounds {
		gn := idx.groupNumberByID[r.GroupID]
		if gn == winnerGroup && r.Number > max {
			max = r.Number
		}
	}
	return max
}

func (idx *stageIndex) topology() graph.Topology {
	return graph.NewTopology(idx.stage.Type, idx.stage.Settings, idx.winnerBracketRounds())
}

// key returns the (group, round, number) coordinate of a loaded match.
func (idx *stageIndex) key(m bracketry.Match) matchKey {
	rk := idx.roundKeyByID[m.RoundID]
	return matchKey{GroupNumber: rk.GroupNumber, RoundNumber: rk.RoundNumber, Number: m.Number}
}

// matchAt looks up a match by its coordinate, as loaded in this snapshot.
func (idx *stageIndex) matchAt(k matchKey) (bracketry.Match, bool) {
	m, ok := idx.matchByKey[k]
	return m, ok
}

// roundID returns the persisted round id for a (group, round) coordinate.
func (idx *stageIndex) roundID(rk roundKey) (int64, bool) {
	id, ok := idx.roundIDByKey[rk]
	return id, ok
}

// groupID returns the persisted group id for a stage-type-specific group number.
func (idx *stageIndex) groupID(number int) (int64, bool) {
	id, ok := idx.groupIDByNumber[number]
	return id, ok
}
