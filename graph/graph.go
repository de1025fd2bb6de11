// Package graph implements C3: the match dependency graph is never
// persisted as edges (§9) — predecessors and successors of a match are
// computed on demand from its stage type and its (group, round, match)
// position, using the same generation scheme layout used to build it.
package graph

import "github.com/coinflip-gg/bracketry"

// Topology carries the handful of stage-settings-derived facts the pure
// position formulas need: how many rounds the winner bracket has, and
// which optional groups (consolation final, grand final variant) exist.
// It holds no per-tournament state and is cheap to rebuild from a Stage.
type Topology struct {
	StageType        bracketry.StageType
	WinnerRounds     int // log2(bracket size); for single elimination, its own round count
	ConsolationFinal bool
	GrandFinal       bracketry.GrandFinalType
}

// NewTopology derives a Topology from a stage's persisted settings.
func NewTopology(stageType bracketry.StageType, settings bracketry.StageSettings, winnerRounds int) Topology {
	return Topology{
		StageType:        stageType,
		WinnerRounds:     winnerRounds,
		ConsolationFinal: settings.ConsolationFinal,
		GrandFinal:       settings.GrandFinal,
	}
}

// Edge identifies one endpoint of a match-graph link: the match at
// (Group, Round, Number) receiving the participant via Slot, in Role.
type Edge struct {
	Group  int
	Round  int
	Number int
	Slot   bracketry.Slot
	Role   bracketry.Role
}

func slotFor(n int) bracketry.Slot {
	if n%2 != 0 {
		return bracketry.SlotOpponent1
	}
	return bracketry.SlotOpponent2
}

func ceilDiv2(n int) int { return (n + 1) / 2 }

// lastLBRound returns the final loser-bracket round number for a winner
// bracket of k rounds (2*(k-1)), or 0 when k<2 (no loser bracket at all).
func lastLBRound(k int) int {
	if k < 2 {
		return 0
	}
	return 2 * (k - 1)
}

// combineRoundNumber maps winner-bracket round r to the loser-bracket round
// its losers enter (mirrors layout.combineRoundNumber).
func combineRoundNumber(r int) int {
	if r == 1 {
		return 1
	}
	return 2 * (r - 1)
}

// isLBCombineRound reports whether LB round q receives winner-bracket
// losers directly (q==1 or q even); odd q>1 rounds are pure consolidation.
func isLBCombineRound(q int) bool {
	return q == 1 || q%2 == 0
}

// Successors returns every match-graph edge fed by the winner (and, for
// elimination stages, the loser) of the match at (group, round, number).
func Successors(topo Topology, group, round, number int) []Edge {
	switch topo.StageType {
	case bracketry.StageSingleElimination:
		return singleSuccessors(topo, group, round, number)
	case bracketry.StageDoubleElimination:
		return doubleSuccessors(topo, group, round, number)
	default:
		return nil
	}
}

// Predecessors returns every match-graph edge that feeds into the match at
// (group, round, number).
func Predecessors(topo Topology, group, round, number int) []Edge {
	switch topo.StageType {
	case bracketry.StageSingleElimination:
		return singlePredecessors(topo, group, round, number)
	case bracketry.StageDoubleElimination:
		return doublePredecessors(topo, group, round, number)
	default:
		return nil
	}
}

func singleSuccessors(topo Topology, group, round, number int) []Edge {
	if group == bracketry.GroupMain {
		var edges []Edge
		if round < topo.WinnerRounds {
			edges = append(edges, Edge{
				Group: bracketry.GroupMain, Round: round + 1, Number: ceilDiv2(number),
				Slot: slotFor(number), Role: bracketry.RoleWinner,
			})
		}
		if topo.ConsolationFinal && round == topo.WinnerRounds-1 {
			edges = append(edges, Edge{
				Group: bracketry.GroupConsolation, Round: 1, Number: 1,
				Slot: slotFor(number), Role: bracketry.RoleLoser,
			})
		}
		return edges
	}
	return nil
}

func singlePredecessors(topo Topology, group, round, number int) []Edge {
	if group == bracketry.GroupMain && round > 1 {
		return []Edge{
			{Group: bracketry.GroupMain, Round: round - 1, Number: 2*number - 1, Role: bracketry.RoleWinner},
			{Group: bracketry.GroupMain, Round: round - 1, Number: 2 * number, Role: bracketry.RoleWinner},
		}
	}
	if group == bracketry.GroupConsolation && round == 1 && number == 1 && topo.ConsolationFinal {
		return []Edge{
			{Group: bracketry.GroupMain, Round: topo.WinnerRounds - 1, Number: 1, Role: bracketry.RoleLoser},
			{Group: bracketry.GroupMain, Round: topo.WinnerRounds - 1, Number: 2, Role: bracketry.RoleLoser},
		}
	}
	return nil
}

func doubleSuccessors(topo Topology, group, round, number int) []Edge {
	k := topo.WinnerRounds
	switch group {
	case bracketry.GroupWinners:
		var edges []Edge
		if round < k {
			edges = append(edges, Edge{Group: bracketry.GroupWinners, Round: round + 1, Number: ceilDiv2(number), Slot: slotFor(number), Role: bracketry.RoleWinner})
		} else if topo.GrandFinal != bracketry.GrandFinalNone {
			edges = append(edges, Edge{Group: bracketry.GroupFinal, Round: 1, Number: 1, Slot: bracketry.SlotOpponent1, Role: bracketry.RoleWinner})
		}
		// loser always drops to the loser bracket (r==1 halves, r>=2 is 1:1).
		if lastLBRound(k) > 0 {
			if round == 1 {
				edges = append(edges, Edge{Group: bracketry.GroupLosers, Round: 1, Number: ceilDiv2(number), Slot: slotFor(number), Role: bracketry.RoleLoser})
			} else {
				edges = append(edges, Edge{Group: bracketry.GroupLosers, Round: combineRoundNumber(round), Number: number, Slot: bracketry.SlotOpponent2, Role: bracketry.RoleLoser})
			}
		} else if topo.GrandFinal != bracketry.GrandFinalNone {
			// k==1: the only WB match's loser goes straight to the final.
			edges = append(edges, Edge{Group: bracketry.GroupFinal, Round: 1, Number: 1, Slot: bracketry.SlotOpponent2, Role: bracketry.RoleLoser})
		}
		return edges
	case bracketry.GroupLosers:
		last := lastLBRound(k)
		if round == last {
			if topo.GrandFinal != bracketry.GrandFinalNone {
				return []Edge{{Group: bracketry.GroupFinal, Round: 1, Number: 1, Slot: bracketry.SlotOpponent2, Role: bracketry.RoleWinner}}
			}
			return nil
		}
		if round%2 == 1 { // odd round (entry or consolidate) feeds a combine round 1:1
			return []Edge{{Group: bracketry.GroupLosers, Round: round + 1, Number: number, Slot: bracketry.SlotOpponent1, Role: bracketry.RoleWinner}}
		}
		// even (combine) round feeds the next consolidate round via halving
		return []Edge{{Group: bracketry.GroupLosers, Round: round + 1, Number: ceilDiv2(number), Slot: slotFor(number), Role: bracketry.RoleWinner}}
	default:
		return nil
	}
}

func doublePredecessors(topo Topology, group, round, number int) []Edge {
	k := topo.WinnerRounds
	switch group {
	case bracketry.GroupWinners:
		if round > 1 {
			return []Edge{
				{Group: bracketry.GroupWinners, Round: round - 1, Number: 2*number - 1, Role: bracketry.RoleWinner},
				{Group: bracketry.GroupWinners, Round: round - 1, Number: 2 * number, Role: bracketry.RoleWinner},
			}
		}
		return nil
	case bracketry.GroupLosers:
		if round == 1 {
			return []Edge{
				{Group: bracketry.GroupWinners, Round: 1, Number: 2*number - 1, Role: bracketry.RoleLoser},
				{Group: bracketry.GroupWinners, Round: 1, Number: 2 * number, Role: bracketry.RoleLoser},
			}
		}
		if isLBCombineRound(round) {
			r := round/2 + 1 // inverse of combineRoundNumber for round>=2
			return []Edge{
				{Group: bracketry.GroupLosers, Round: round - 1, Number: number, Role: bracketry.RoleWinner},
				{Group: bracketry.GroupWinners, Round: r, Number: number, Role: bracketry.RoleLoser},
			}
		}
		return []Edge{
			{Group: bracketry.GroupLosers, Round: round - 1, Number: 2*number - 1, Role: bracketry.RoleWinner},
			{Group: bracketry.GroupLosers, Round: round - 1, Number: 2 * number, Role: bracketry.RoleWinner},
		}
	case bracketry.GroupFinal:
		if round == 1 && number == 1 {
			last := lastLBRound(k)
			wbFinalRound := k
			if last == 0 {
				return []Edge{
					{Group: bracketry.GroupWinners, Round: wbFinalRound, Number: 1, Role: bracketry.RoleWinner},
					{Group: bracketry.GroupWinners, Round: wbFinalRound, Number: 1, Role: bracketry.RoleLoser},
				}
			}
			return []Edge{
				{Group: bracketry.GroupWinners, Round: wbFinalRound, Number: 1, Role: bracketry.RoleWinner},
				{Group: bracketry.GroupLosers, Round: last, Number: 1, Role: bracketry.RoleWinner},
			}
		}
		if round == 2 && number == 1 {
			return []Edge{{Group: bracketry.GroupFinal, Round: 1, Number: 1, Role: bracketry.RoleWinner}}
		}
		return nil
	default:
		return nil
	}
}
