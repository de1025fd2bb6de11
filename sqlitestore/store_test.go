package sqlitestore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coinflip-gg/bracketry"
	"github.com/coinflip-gg/bracketry/storage"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Connect("file::memory:?cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestTournamentsCRUD(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	ids, err := s.Tournaments().Insert(ctx, bracketry.Tournament{Name: "Spring Open"})
	require.NoError(t, err)
	require.Len(t, ids, 1)

	got, err := s.Tournaments().Select(ctx, storage.ByID[bracketry.Tournament](ids[0]))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Spring Open", got[0].Name)

	ok, err := s.Tournaments().Update(ctx, storage.ByID[bracketry.Tournament](ids[0]), bracketry.Tournament{Name: "Spring Open 2"})
	require.NoError(t, err)
	assert.True(t, ok)

	got, err = s.Tournaments().Select(ctx, storage.ByID[bracketry.Tournament](ids[0]))
	require.NoError(t, err)
	assert.Equal(t, "Spring Open 2", got[0].Name)

	ok, err = s.Tournaments().Delete(ctx, storage.ByID[bracketry.Tournament](ids[0]))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestStageSettingsRoundTripManualOrdering(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	tIDs, err := s.Tournaments().Insert(ctx, bracketry.Tournament{Name: "T"})
	require.NoError(t, err)

	stage := bracketry.Stage{
		TournamentID: tIDs[0],
		Name:         "Main Bracket",
		Type:         bracketry.StageSingleElimination,
		Number:       1,
		Settings: bracketry.StageSettings{
			Size:           8,
			GrandFinal:     bracketry.GrandFinalDouble,
			ManualOrdering: [][]int{{1, 8}, {4, 5}, {2, 7}, {3, 6}},
		},
	}
	ids, err := s.Stages().Insert(ctx, stage)
	require.NoError(t, err)

	got, err := s.Stages().Select(ctx, storage.ByID[bracketry.Stage](ids[0]))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, stage.Settings.ManualOrdering, got[0].Settings.ManualOrdering)
	assert.Equal(t, bracketry.GrandFinalDouble, got[0].Settings.GrandFinal)
}

func TestMatchOpponentRoundTrip(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	tIDs, _ := s.Tournaments().Insert(ctx, bracketry.Tournament{Name: "T"})
	stageIDs, _ := s.Stages().Insert(ctx, bracketry.Stage{TournamentID: tIDs[0], Type: bracketry.StageSingleElimination, Number: 1})
	groupIDs, _ := s.Groups().Insert(ctx, bracketry.Group{StageID: stageIDs[0], Number: bracketry.GroupMain})
	roundIDs, _ := s.Rounds().Insert(ctx, bracketry.Round{StageID: stageIDs[0], GroupID: groupIDs[0], Number: 1})

	win := bracketry.ResultWin
	score := 2
	match := bracketry.Match{
		StageID: stageIDs[0], GroupID: groupIDs[0], RoundID: roundIDs[0],
		Number: 1, Status: bracketry.StatusCompleted,
		Opponent1: bracketry.Opponent{Kind: bracketry.OpponentParticipant, ParticipantID: 42, Score: &score, Result: &win},
		Opponent2: bracketry.Opponent{Kind: bracketry.OpponentPosition, Position: -3},
	}
	ids, err := s.Matches().Insert(ctx, match)
	require.NoError(t, err)

	got, err := s.Matches().Select(ctx, storage.ByID[bracketry.Match](ids[0]))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(42), got[0].Opponent1.ParticipantID)
	assert.Equal(t, 2, *got[0].Opponent1.Score)
	assert.Equal(t, bracketry.ResultWin, *got[0].Opponent1.Result)
	assert.Equal(t, -3, got[0].Opponent2.Position)
	assert.True(t, got[0].Opponent2.IsPosition())
}
