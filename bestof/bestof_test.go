package bestof

import (
	"testing"

	"github.com/coinflip-gg/bracketry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completedGame(winner bracketry.Slot) bracketry.MatchGame {
	g := bracketry.MatchGame{
		Status:    bracketry.StatusCompleted,
		Opponent1: bracketry.ParticipantOpponent(1),
		Opponent2: bracketry.ParticipantOpponent(2),
	}
	win, loss := bracketry.ResultWin, bracketry.ResultLoss
	if winner == bracketry.SlotOpponent1 {
		g.Opponent1.Result, g.Opponent2.Result = &win, &loss
	} else {
		g.Opponent2.Result, g.Opponent1.Result = &win, &loss
	}
	return g
}

func TestThreshold(t *testing.T) {
	assert.Equal(t, 2, Threshold(3))
	assert.Equal(t, 3, Threshold(5))
	assert.Equal(t, 3, Threshold(4))
}

func TestValidateChildCount_RejectsEven(t *testing.T) {
	err := ValidateChildCount(4)
	kind, ok := bracketry.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, bracketry.ErrInvalidInput, kind)
	require.NoError(t, ValidateChildCount(3))
}

func TestAggregate_DecidesBestOfThreeEarly(t *testing.T) {
	games := []bracketry.MatchGame{completedGame(bracketry.SlotOpponent1), completedGame(bracketry.SlotOpponent1)}
	outcome := Aggregate(3, games)
	require.True(t, outcome.Decided)
	assert.Equal(t, bracketry.SlotOpponent1, outcome.Winner)
}

func TestAggregate_UndecidedBeforeThreshold(t *testing.T) {
	games := []bracketry.MatchGame{completedGame(bracketry.SlotOpponent1), completedGame(bracketry.SlotOpponent2)}
	outcome := Aggregate(3, games)
	assert.False(t, outcome.Decided)
}

func TestGamesToArchive_OnlyUnfinished(t *testing.T) {
	games := []bracketry.MatchGame{
		{ID: 1, Status: bracketry.StatusCompleted},
		{ID: 2, Status: bracketry.StatusReady},
		{ID: 3, Status: bracketry.StatusLocked},
	}
	assert.ElementsMatch(t, []int64{2, 3}, GamesToArchive(games))
}

func TestApplyOutcome_SetsParentStatus(t *testing.T) {
	m := bracketry.Match{
		Opponent1:  bracketry.ParticipantOpponent(1),
		Opponent2:  bracketry.ParticipantOpponent(2),
		ChildCount: 3,
		Status:     bracketry.StatusRunning,
	}
	ApplyOutcome(&m, Outcome{Decided: true, Winner: bracketry.SlotOpponent2})
	assert.Equal(t, bracketry.StatusCompleted, m.Status)
	assert.True(t, m.Opponent2.Won())
	assert.True(t, m.Opponent1.Lost())
}

func TestApplyOutcome_UndecidedClearsStaleResult(t *testing.T) {
	m := bracketry.Match{
		Opponent1:  bracketry.ParticipantOpponent(1),
		Opponent2:  bracketry.ParticipantOpponent(2),
		ChildCount: 3,
		Status:     bracketry.StatusCompleted,
	}
	ApplyOutcome(&m, Outcome{Decided: true, Winner: bracketry.SlotOpponent1})
	require.Equal(t, bracketry.StatusCompleted, m.Status)

	// dropping the decided game back below threshold (e.g. a reset) must
	// clear the stale winner, not leave the parent wrongly Completed.
	ApplyOutcome(&m, Outcome{Opponent1Wins: 1, Opponent2Wins: 1, Decided: false})
	assert.False(t, m.Opponent1.Won())
	assert.False(t, m.Opponent2.Won())
	assert.Nil(t, m.Opponent1.Result)
	assert.Nil(t, m.Opponent2.Result)
	assert.Equal(t, bracketry.StatusRunning, m.Status)
}
