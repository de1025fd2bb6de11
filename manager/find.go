package manager

import (
	"context"

	"github.com/coinflip-gg/bracketry"
	"github.com/coinflip-gg/bracketry/graph"
	"github.com/coinflip-gg/bracketry/standings"
	"github.com/coinflip-gg/bracketry/storage"
)

type findOps struct{ m *Manager }

// Match looks up a single match by id.
func (f *findOps) Match(ctx context.Context, matchID int64) (bracketry.Match, error) {
	rows, err := f.m.store.Matches().Select(ctx, storage.ByID[bracketry.Match](matchID))
	if err != nil {
		return bracketry.Match{}, err
	}
	if len(rows) == 0 {
		return bracketry.Match{}, bracketry.NewError(bracketry.ErrNotFound, "match not found")
	}
	return rows[0], nil
}

// NextMatches returns the match(es) that receive an opponent from matchID —
// its graph.Successors edges resolved to the loaded rows they point at.
func (f *findOps) NextMatches(ctx context.Context, matchID int64) ([]bracketry.Match, error) {
	return f.walkEdges(ctx, matchID, graph.Successors)
}

// PreviousMatches returns the match(es) that feed matchID.
func (f *findOps) PreviousMatches(ctx context.Context, matchID int64) ([]bracketry.Match, error) {
	return f.walkEdges(ctx, matchID, graph.Predecessors)
}

func (f *findOps) walkEdges(ctx context.Context, matchID int64, edgesOf func(graph.Topology, int, int, int) []graph.Edge) ([]bracketry.Match, error) {
	match, err := f.Match(ctx, matchID)
	if err != nil {
		return nil, err
	}
	idx, err := loadStageIndex(ctx, f.m.store, match.StageID)
	if err != nil {
		return nil, err
	}
	k := idx.key(match)
	edges := edgesOf(idx.topology(), k.GroupNumber, k.RoundNumber, k.Number)

	seen := map[matchKey]bool{}
	var out []bracketry.Match
	for _, e := range edges {
		ek := matchKey{GroupNumber: e.Group, RoundNumber: e.Round, Number: e.Number}
		if seen[ek] {
			continue
		}
		seen[ek] = true
		if m, ok := idx.matchAt(ek); ok {
			out = append(out, m)
		}
	}
	return out, nil
}

// MatchLocation is the supplemented find.matchLocation operation: given a
// stage and a match id, report its (group, round, number) coordinate.
func (f *findOps) MatchLocation(ctx context.Context, stageID, matchID int64) (standings.MatchRef, bool, error) {
	idx, err := loadStageIndex(ctx, f.m.store, stageID)
	if err != nil {
		return standings.MatchRef{}, false, err
	}
	ref, ok := standings.MatchLocation(allRefs(idx), matchID)
	return ref, ok, nil
}
