package graph

import (
	"testing"

	"github.com/coinflip-gg/bracketry"
	"github.com/stretchr/testify/assert"
)

func TestSingleElimination_RoundTrip(t *testing.T) {
	topo := Topology{StageType: bracketry.StageSingleElimination, WinnerRounds: 3}
	for round := 1; round <= 3; round++ {
		matches := 1 << (3 - round)
		for n := 1; n <= matches; n++ {
			for _, succ := range Successors(topo, bracketry.GroupMain, round, n) {
				preds := Predecessors(topo, succ.Group, succ.Round, succ.Number)
				found := false
				for _, p := range preds {
					if p.Group == bracketry.GroupMain && p.Round == round && p.Number == n {
						found = true
					}
				}
				assert.True(t, found, "successor of (%d,%d) does not list it back as predecessor", round, n)
			}
		}
	}
}

func TestDoubleElimination_LoserRouting_RoundTrip(t *testing.T) {
	topo := Topology{StageType: bracketry.StageDoubleElimination, WinnerRounds: 3, GrandFinal: bracketry.GrandFinalSimple}
	for round := 1; round <= 3; round++ {
		matches := 1 << (3 - round)
		for n := 1; n <= matches; n++ {
			for _, succ := range Successors(topo, bracketry.GroupWinners, round, n) {
				preds := Predecessors(topo, succ.Group, succ.Round, succ.Number)
				found := false
				for _, p := range preds {
					if p.Group == bracketry.GroupWinners && p.Round == round && p.Number == n {
						found = true
					}
				}
				assert.True(t, found, "WB (%d,%d) successor %+v doesn't list it back", round, n, succ)
			}
		}
	}
}

func TestDoubleElimination_FinalRoundHasNoLoserBracketSuccessor(t *testing.T) {
	topo := Topology{StageType: bracketry.StageDoubleElimination, WinnerRounds: 3, GrandFinal: bracketry.GrandFinalSimple}
	edges := Successors(topo, bracketry.GroupLosers, 4, 1)
	assert.Len(t, edges, 1)
	assert.Equal(t, bracketry.GroupFinal, edges[0].Group)
	assert.Equal(t, bracketry.RoleWinner, edges[0].Role)
}
