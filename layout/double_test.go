package layout

import (
	"testing"

	"github.com/coinflip-gg/bracketry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateDoubleElimination_Sizes(t *testing.T) {
	gen, err := GenerateDoubleElimination(ids(8), bracketry.StageSettings{})
	require.NoError(t, err)
	require.Len(t, gen.Groups, 3)

	wb := gen.Groups[0]
	assert.Equal(t, bracketry.GroupWinners, wb.Number)
	require.Len(t, wb.Rounds, 3)
	assert.Len(t, wb.Rounds[0].Matches, 4)
	assert.Len(t, wb.Rounds[1].Matches, 2)
	assert.Len(t, wb.Rounds[2].Matches, 1)

	lb := gen.Groups[1]
	assert.Equal(t, bracketry.GroupLosers, lb.Number)
	require.Len(t, lb.Rounds, 4)
	assert.Len(t, lb.Rounds[0].Matches, 2)
	assert.Len(t, lb.Rounds[1].Matches, 2)
	assert.Len(t, lb.Rounds[2].Matches, 1)
	assert.Len(t, lb.Rounds[3].Matches, 1)

	gf := gen.Groups[2]
	assert.Equal(t, bracketry.GroupFinal, gf.Number)
	require.Len(t, gf.Rounds, 1) // GrandFinalSimple by default
	require.Len(t, gf.Rounds[0].Matches, 1)
}

func TestGenerateDoubleElimination_DoubleGrandFinal(t *testing.T) {
	gen, err := GenerateDoubleElimination(ids(4), bracketry.StageSettings{GrandFinal: bracketry.GrandFinalDouble})
	require.NoError(t, err)
	gf := gen.Groups[len(gen.Groups)-1]
	require.Len(t, gf.Rounds, 2)
	assert.Equal(t, bracketry.StatusArchived, gf.Rounds[1].Matches[0].Status)
}

func TestGenerateDoubleElimination_TwoParticipantsSkipsLosersBracket(t *testing.T) {
	gen, err := GenerateDoubleElimination(ids(2), bracketry.StageSettings{})
	require.NoError(t, err)
	// Winners (1 round) + Final only; no separate Losers group needed.
	require.Len(t, gen.Groups, 2)
	assert.Equal(t, bracketry.GroupWinners, gen.Groups[0].Number)
	assert.Equal(t, bracketry.GroupFinal, gen.Groups[1].Number)
}

func TestGenerateDoubleElimination_NoImmediateRematchInLoserEntry(t *testing.T) {
	// Round-1 losers bracket entrants come from distinct WB round-1 matches,
	// so no LB round-1 pairing can repeat a WB round-1 pairing.
	gen, err := GenerateDoubleElimination(ids(8), bracketry.StageSettings{})
	require.NoError(t, err)
	lb := gen.Groups[1]
	for _, m := range lb.Rounds[0].Matches {
		assert.NotEqual(t, m.Opponent1.Position, m.Opponent2.Position)
	}
}
