package standings

import (
	"testing"

	"github.com/coinflip-gg/bracketry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decided(winner, loser int64) bracketry.Match {
	win, loss := bracketry.ResultWin, bracketry.ResultLoss
	return bracketry.Match{
		Status:    bracketry.StatusCompleted,
		Opponent1: bracketry.Opponent{Kind: bracketry.OpponentParticipant, ParticipantID: winner, Result: &win},
		Opponent2: bracketry.Opponent{Kind: bracketry.OpponentParticipant, ParticipantID: loser, Result: &loss},
	}
}

func TestSingleElimination_RanksByRoundEliminated(t *testing.T) {
	main := []MatchRef{
		{Group: 1, Round: 1, Number: 1, Match: decided(1, 2)},
		{Group: 1, Round: 1, Number: 2, Match: decided(3, 4)},
		{Group: 1, Round: 2, Number: 1, Match: decided(1, 3)},
	}
	entries := SingleElimination(main, nil, 2)
	byID := map[int64]int{}
	for _, e := range entries {
		byID[e.ParticipantID] = e.Rank
	}
	assert.Equal(t, 1, byID[1])
	assert.Equal(t, 2, byID[3])
	assert.Equal(t, 3, byID[2]) // round-1 losers tie for 3rd without a consolation final
	assert.Equal(t, 3, byID[4])
}

func TestSingleElimination_ConsolationFinalSplitsThirdFourth(t *testing.T) {
	main := []MatchRef{
		{Group: 1, Round: 1, Number: 1, Match: decided(1, 2)},
		{Group: 1, Round: 1, Number: 2, Match: decided(3, 4)},
		{Group: 1, Round: 2, Number: 1, Match: decided(1, 3)},
	}
	consolation := []MatchRef{{Group: 2, Round: 1, Number: 1, Match: decided(2, 4)}}
	entries := SingleElimination(main, consolation, 2)
	byID := map[int64]int{}
	for _, e := range entries {
		byID[e.ParticipantID] = e.Rank
	}
	assert.Equal(t, 3, byID[2])
	assert.Equal(t, 4, byID[4])
}

func TestRoundRobin_RanksByWinsThenDiff(t *testing.T) {
	score := func(m bracketry.Match, s1, s2 int) bracketry.Match {
		m.Opponent1.Score, m.Opponent2.Score = &s1, &s2
		return m
	}
	matches := []bracketry.Match{
		score(decided(1, 2), 3, 1),
		score(decided(1, 3), 2, 1),
		score(decided(2, 3), 2, 0),
	}
	entries := RoundRobin(matches, []int64{1, 2, 3})
	require.Len(t, entries, 3)
	assert.Equal(t, int64(1), entries[0].ParticipantID)
	assert.Equal(t, 1, entries[0].Rank)
}

func TestRoundRobin_HeadToHeadTiebreak(t *testing.T) {
	// 1 beats 2, 2 beats 3, 3 beats 1: a perfect cycle where every
	// participant is 1-1 with equal score diff, broken by seed order.
	matches := []bracketry.Match{decided(1, 2), decided(2, 3), decided(3, 1)}
	entries := RoundRobin(matches, []int64{1, 2, 3})
	require.Len(t, entries, 3)
	assert.Equal(t, int64(1), entries[0].ParticipantID)
}

func TestCurrentRace_FindsMostAdvancedOpenMatch(t *testing.T) {
	refs := []MatchRef{
		{Group: 1, Round: 1, Number: 1, Match: decided(1, 2)},
		{Group: 1, Round: 2, Number: 1, Match: bracketry.Match{
			Status:    bracketry.StatusReady,
			Opponent1: bracketry.ParticipantOpponent(1),
			Opponent2: bracketry.ParticipantOpponent(5),
		}},
	}
	ref, ok := CurrentRace(refs, 1)
	require.True(t, ok)
	assert.Equal(t, 2, ref.Round)
}

func TestCurrentRace_FalseWhenEliminated(t *testing.T) {
	refs := []MatchRef{{Group: 1, Round: 1, Number: 1, Match: decided(1, 2)}}
	_, ok := CurrentRace(refs, 2)
	assert.False(t, ok)
}
