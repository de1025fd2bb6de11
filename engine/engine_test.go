package engine

import (
	"testing"

	"github.com/coinflip-gg/bracketry"
	"github.com/coinflip-gg/bracketry/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readyMatch() bracketry.Match {
	return bracketry.Match{
		Opponent1: bracketry.ParticipantOpponent(1),
		Opponent2: bracketry.ParticipantOpponent(2),
		Status:    bracketry.StatusReady,
	}
}

func TestApply_RecordsWinAndDerivesLoss(t *testing.T) {
	m := readyMatch()
	win := bracketry.ResultWin
	u := Update{Slot: bracketry.SlotOpponent1, Result: &win}
	require.NoError(t, Validate(m, u))
	Apply(&m, u)
	assert.Equal(t, bracketry.StatusCompleted, m.Status)
	assert.True(t, m.Opponent1.Won())
	assert.True(t, m.Opponent2.Lost())
}

func TestApply_ForfeitAwardsOpponentWin(t *testing.T) {
	m := readyMatch()
	u := Update{Slot: bracketry.SlotOpponent1, Forfeit: true}
	require.NoError(t, Validate(m, u))
	Apply(&m, u)
	assert.True(t, m.Opponent1.Lost())
	assert.True(t, m.Opponent2.Won())
	assert.Equal(t, bracketry.StatusCompleted, m.Status)
}

func TestValidate_RejectsLockedMatch(t *testing.T) {
	m := bracketry.Match{
		Opponent1: bracketry.PositionOpponent(1),
		Opponent2: bracketry.ParticipantOpponent(2),
		Status:    bracketry.StatusLocked,
	}
	win := bracketry.ResultWin
	err := Validate(m, Update{Slot: bracketry.SlotOpponent2, Result: &win})
	kind, ok := bracketry.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, bracketry.ErrInvalidTransition, kind)
}

func TestValidate_RejectsBothSidesWinning(t *testing.T) {
	m := readyMatch()
	win := bracketry.ResultWin
	Apply(&m, Update{Slot: bracketry.SlotOpponent1, Result: &win})
	require.True(t, m.Opponent1.Won())

	err := Validate(m, Update{Slot: bracketry.SlotOpponent2, Result: &win})
	kind, ok := bracketry.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, bracketry.ErrInvalidResult, kind)
}

func TestValidateGame_RejectsBothSidesWinning(t *testing.T) {
	g := bracketry.MatchGame{
		Opponent1: bracketry.ParticipantOpponent(1),
		Opponent2: bracketry.ParticipantOpponent(2),
		Status:    bracketry.StatusReady,
	}
	win := bracketry.ResultWin
	ApplyGame(&g, Update{Slot: bracketry.SlotOpponent1, Result: &win})
	require.True(t, g.Opponent1.Won())

	err := ValidateGame(g, Update{Slot: bracketry.SlotOpponent2, Result: &win})
	kind, ok := bracketry.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, bracketry.ErrInvalidResult, kind)
}

func TestValidate_RejectsScoreOnChildGameMatch(t *testing.T) {
	m := readyMatch()
	m.ChildCount = 3
	score := 1
	err := Validate(m, Update{Slot: bracketry.SlotOpponent1, Score: &score})
	kind, ok := bracketry.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, bracketry.ErrUseMatchGameUpdate, kind)
}

func TestReset_ClearsResult(t *testing.T) {
	m := readyMatch()
	win := bracketry.ResultWin
	Apply(&m, Update{Slot: bracketry.SlotOpponent1, Result: &win})
	require.True(t, CanReset(m))
	Reset(&m)
	assert.Equal(t, bracketry.StatusReady, m.Status)
	assert.Nil(t, m.Opponent1.Result)
	assert.Nil(t, m.Opponent2.Result)
}

func TestPropagate_SingleElimination(t *testing.T) {
	topo := graph.Topology{StageType: bracketry.StageSingleElimination, WinnerRounds: 2}
	m := readyMatch()
	win := bracketry.ResultWin
	Apply(&m, Update{Slot: bracketry.SlotOpponent1, Result: &win})

	advances := Propagate(topo, bracketry.GroupMain, 1, 1, m)
	require.Len(t, advances, 1)
	assert.Equal(t, bracketry.GroupMain, advances[0].Group)
	assert.Equal(t, 2, advances[0].Round)
	assert.Equal(t, 1, advances[0].Number)
	assert.Equal(t, int64(1), advances[0].ParticipantID)
}

func TestFillSlot_IsIdempotent(t *testing.T) {
	m := bracketry.Match{Opponent1: bracketry.PositionOpponent(1), Opponent2: bracketry.PositionOpponent(2)}
	assert.True(t, FillSlot(&m, bracketry.SlotOpponent1, 7))
	assert.True(t, FillSlot(&m, bracketry.SlotOpponent1, 7)) // re-delivery, same id
	assert.False(t, FillSlot(&m, bracketry.SlotOpponent1, 9)) // conflicting id, no-op
	assert.Equal(t, int64(7), m.Opponent1.ParticipantID)
}
