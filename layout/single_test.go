package layout

import (
	"testing"

	"github.com/coinflip-gg/bracketry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(n int) []int64 {
	out := make([]int64, n)
	for i := range out {
		out[i] = int64(i + 1)
	}
	return out
}

func TestGenerateSingleElimination_PowerOfTwo(t *testing.T) {
	gen, err := GenerateSingleElimination(ids(8), bracketry.StageSettings{})
	require.NoError(t, err)
	require.Len(t, gen.Groups, 1)
	main := gen.Groups[0]
	assert.Equal(t, bracketry.GroupMain, main.Number)
	require.Len(t, main.Rounds, 3)
	assert.Len(t, main.Rounds[0].Matches, 4)
	assert.Len(t, main.Rounds[1].Matches, 2)
	assert.Len(t, main.Rounds[2].Matches, 1)

	for _, m := range main.Rounds[0].Matches {
		assert.Equal(t, bracketry.StatusReady, m.Status)
	}
	for _, m := range main.Rounds[1].Matches {
		assert.Equal(t, bracketry.StatusLocked, m.Status)
	}
}

func TestGenerateSingleElimination_PadsWithByes(t *testing.T) {
	gen, err := GenerateSingleElimination(ids(5), bracketry.StageSettings{})
	require.NoError(t, err)
	main := gen.Groups[0]
	require.Len(t, main.Rounds, 3) // padded to 8
	assert.Len(t, main.Rounds[0].Matches, 4)

	byeCompleted := 0
	for _, m := range main.Rounds[0].Matches {
		if m.Opponent1.Empty() || m.Opponent2.Empty() {
			assert.Equal(t, bracketry.StatusCompleted, m.Status)
			byeCompleted++
		}
	}
	assert.Equal(t, 3, byeCompleted, "3 of the 4 round-1 matches pair a real entrant against one of the 3 byes")

	round2 := main.Rounds[1]
	resolvedInRound2 := 0
	for _, m := range round2.Matches {
		if m.Opponent1.Resolved() || m.Opponent2.Resolved() {
			resolvedInRound2++
		}
	}
	assert.Greater(t, resolvedInRound2, 0, "a bye winner should have propagated into round 2")
}

func TestGenerateSingleElimination_ConsolationFinal(t *testing.T) {
	gen, err := GenerateSingleElimination(ids(4), bracketry.StageSettings{ConsolationFinal: true})
	require.NoError(t, err)
	require.Len(t, gen.Groups, 2)
	consolation := gen.Groups[1]
	assert.Equal(t, bracketry.GroupConsolation, consolation.Number)
	require.Len(t, consolation.Rounds, 1)
	require.Len(t, consolation.Rounds[0].Matches, 1)
}

func TestGenerateSingleElimination_RejectsTooFew(t *testing.T) {
	_, err := GenerateSingleElimination(ids(1), bracketry.StageSettings{})
	require.Error(t, err)
	kind, ok := bracketry.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, bracketry.ErrInvalidInput, kind)
}

func TestGenerateSingleElimination_ManualOrdering(t *testing.T) {
	gen, err := GenerateSingleElimination(ids(4), bracketry.StageSettings{
		ManualOrdering: [][]int{{3, 0}, {1, 2}},
	})
	require.NoError(t, err)
	m := gen.Groups[0].Rounds[0].Matches[0]
	assert.Equal(t, int64(4), m.Opponent1.ParticipantID)
	assert.Equal(t, int64(1), m.Opponent2.ParticipantID)
}
