// Package layout implements C2: given a stage type, its settings, and a
// seeded participant list, compute the groups, rounds and matches that make
// up the initial bracket. Generation works entirely against participant ids
// already assigned by storage (see storage.Table) and local, per-group
// match numbers — group/round/match row ids don't exist yet, so the graph
// here is addressed positionally, matching the derived-edges design of §9.
package layout

import "github.com/coinflip-gg/bracketry"

// MatchSpec is one not-yet-persisted match: Number is its position within
// its round (1-based), used by graph.Predecessors/Successors and by the
// manager to wire generated rows back together after insertion.
type MatchSpec struct {
	Number     int
	Opponent1  bracketry.Opponent
	Opponent2  bracketry.Opponent
	ChildCount int
	Status     bracketry.MatchStatus
}

// RoundSpec is one round's matches.
type RoundSpec struct {
	Number  int
	Matches []MatchSpec
}

// GroupSpec is one group's rounds, keyed by the stage-type-specific group
// Number (§3): Main/Consolation for single elimination, Winners/Losers/Final
// for double elimination, pool number for round robin.
type GroupSpec struct {
	Number int
	Rounds []RoundSpec
}

// Generated is the full output of a bracket generation call.
type Generated struct {
	Groups []GroupSpec
}

func (g *Generated) group(number int) *GroupSpec {
	for i := range g.Groups {
		if g.Groups[i].Number == number {
			return &g.Groups[i]
		}
	}
	return nil
}

func (gr *GroupSpec) round(number int) *RoundSpec {
	for i := range gr.Rounds {
		if gr.Rounds[i].Number == number {
			return &gr.Rounds[i]
		}
	}
	return nil
}

func (r *RoundSpec) match(number int) *MatchSpec {
	for i := range r.Matches {
		if r.Matches[i].Number == number {
			return &r.Matches[i]
		}
	}
	return nil
}

func nextPow2(n int) int {
	p := 1
	for p < n {
		p *= 2
	}
	return p
}

func log2(n int) int {
	r := 0
	for n > 1 {
		n /= 2
		r++
	}
	return r
}

// newMatch builds a not-yet-classified match stub; callers must call
// recompute once both opponents are in their final generation-time shape.
func newMatch(number int, o1, o2 bracketry.Opponent, childCount int) MatchSpec {
	m := MatchSpec{Number: number, Opponent1: o1, Opponent2: o2, ChildCount: childCount}
	recompute(&m)
	return m
}

// recompute resolves any BYE-vs-participant auto-advance and reclassifies
// status; used both at generation time and whenever a placeholder slot is
// filled in by propagate.
func recompute(m *MatchSpec) {
	bracketry.ResolveByes(&m.Opponent1, &m.Opponent2)
	m.Status = bracketry.ClassifyStatus(m.Opponent1, m.Opponent2)
}

// fillPosition replaces any opponent slot on m that is a Position placeholder
// referencing the given feeder match number with the given resolved opponent,
// then recomputes. Returns true if a slot was filled.
func fillPosition(m *MatchSpec, feederNumber int, resolved bracketry.Opponent) bool {
	filled := false
	if m.Opponent1.Kind == bracketry.OpponentPosition && m.Opponent1.Position == feederNumber {
		m.Opponent1 = resolved
		filled = true
	}
	if m.Opponent2.Kind == bracketry.OpponentPosition && m.Opponent2.Position == feederNumber {
		m.Opponent2 = resolved
		filled = true
	}
	if filled {
		recompute(m)
	}
	return filled
}
