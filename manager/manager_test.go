package manager

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coinflip-gg/bracketry"
	"github.com/coinflip-gg/bracketry/engine"
	"github.com/coinflip-gg/bracketry/sqlitestore"
	"github.com/coinflip-gg/bracketry/storage"
)

func setup(t *testing.T) *Manager {
	t.Helper()
	store, err := sqlitestore.Connect("file::memory:?cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return New(store)
}

func makeTournament(t *testing.T, m *Manager, names ...string) (bracketry.Tournament, []bracketry.Participant) {
	t.Helper()
	tournament, participants, err := m.Create.Tournament(context.Background(), "T", names)
	require.NoError(t, err)
	return tournament, participants
}

func participantIDs(participants []bracketry.Participant) []int64 {
	ids := make([]int64, len(participants))
	for i, p := range participants {
		ids[i] = p.ID
	}
	return ids
}

func TestCreateStage_SingleEliminationGeneratesReadyMatches(t *testing.T) {
	m := setup(t)
	ctx := context.Background()
	tournament, participants := makeTournament(t, m, "A", "B", "C", "D")

	stage, err := m.Create.Stage(ctx, StageInput{
		TournamentID:   tournament.ID,
		Name:           "Main",
		Type:           bracketry.StageSingleElimination,
		Number:         1,
		Settings:       bracketry.StageSettings{Size: 4},
		ParticipantIDs: participantIDs(participants),
	})
	require.NoError(t, err)

	data, err := m.Get.StageData(ctx, stage.ID)
	require.NoError(t, err)
	require.Len(t, data.Matches, 3) // 2 round-1 + 1 final

	for _, match := range data.Matches {
		if match.Opponent1.Kind == bracketry.OpponentParticipant && match.Opponent2.Kind == bracketry.OpponentParticipant {
			assert.Equal(t, bracketry.StatusReady, match.Status)
		}
	}
}

func TestUpdateMatch_PropagatesWinnerThroughFinal(t *testing.T) {
	m := setup(t)
	ctx := context.Background()
	tournament, participants := makeTournament(t, m, "A", "B", "C", "D")

	stage, err := m.Create.Stage(ctx, StageInput{
		TournamentID: tournament.ID, Type: bracketry.StageSingleElimination, Number: 1,
		Settings: bracketry.StageSettings{Size: 4}, ParticipantIDs: participantIDs(participants),
	})
	require.NoError(t, err)

	data, err := m.Get.StageData(ctx, stage.ID)
	require.NoError(t, err)

	var r1m1, r1m2, final bracketry.Match
	for _, match := range data.Matches {
		rk := roundKeyOf(t, data, match)
		switch {
		case rk.RoundNumber == 1 && match.Number == 1:
			r1m1 = match
		case rk.RoundNumber == 1 && match.Number == 2:
			r1m2 = match
		case rk.RoundNumber == 2:
			final = match
		}
	}
	require.NotZero(t, r1m1.ID)
	require.NotZero(t, r1m2.ID)
	require.NotZero(t, final.ID)

	win := bracketry.ResultWin
	_, err = m.Update.Match(ctx, r1m1.ID, MatchInput{Opponent1: &engine.Update{Slot: bracketry.SlotOpponent1, Result: &win}})
	require.NoError(t, err)
	_, err = m.Update.Match(ctx, r1m2.ID, MatchInput{Opponent1: &engine.Update{Slot: bracketry.SlotOpponent1, Result: &win}})
	require.NoError(t, err)

	updatedFinal, err := m.Find.Match(ctx, final.ID)
	require.NoError(t, err)
	assert.True(t, updatedFinal.Opponent1.Resolved())
	assert.True(t, updatedFinal.Opponent2.Resolved())
	assert.Equal(t, bracketry.StatusReady, updatedFinal.Status)
	assert.Equal(t, r1m1.Opponent1.ParticipantID, updatedFinal.Opponent1.ParticipantID)
	assert.Equal(t, r1m2.Opponent1.ParticipantID, updatedFinal.Opponent2.ParticipantID)
}

func roundKeyOf(t *testing.T, data StageData, match bracketry.Match) roundKey {
	t.Helper()
	for _, r := range data.Rounds {
		if r.ID == match.RoundID {
			for _, g := range data.Groups {
				if g.ID == r.GroupID {
					return roundKey{GroupNumber: g.Number, RoundNumber: r.Number}
				}
			}
		}
	}
	t.Fatalf("round not found for match %d", match.ID)
	return roundKey{}
}

func TestUpdateMatch_ThreePlayerByeChainAdvancesAutomatically(t *testing.T) {
	m := setup(t)
	ctx := context.Background()
	tournament, participants := makeTournament(t, m, "A", "B", "C")

	stage, err := m.Create.Stage(ctx, StageInput{
		TournamentID: tournament.ID, Type: bracketry.StageSingleElimination, Number: 1,
		Settings: bracketry.StageSettings{Size: 4}, ParticipantIDs: participantIDs(participants),
	})
	require.NoError(t, err)

	data, err := m.Get.StageData(ctx, stage.ID)
	require.NoError(t, err)

	var byeMatchID int64
	for _, match := range data.Matches {
		if match.Status == bracketry.StatusCompleted && (match.Opponent1.Empty() || match.Opponent2.Empty()) {
			byeMatchID = match.ID
		}
	}
	require.NotZero(t, byeMatchID, "expected a generation-time BYE match")

	final, err := m.Find.NextMatches(ctx, byeMatchID)
	require.NoError(t, err)
	require.Len(t, final, 1)
	assert.True(t, final[0].Opponent1.Resolved() || final[0].Opponent2.Resolved())
}

func TestResetMatchResults_RejectsWhenDownstreamCompleted(t *testing.T) {
	m := setup(t)
	ctx := context.Background()
	tournament, participants := makeTournament(t, m, "A", "B", "C", "D")

	stage, err := m.Create.Stage(ctx, StageInput{
		TournamentID: tournament.ID, Type: bracketry.StageSingleElimination, Number: 1,
		Settings: bracketry.StageSettings{Size: 4}, ParticipantIDs: participantIDs(participants),
	})
	require.NoError(t, err)

	data, err := m.Get.StageData(ctx, stage.ID)
	require.NoError(t, err)
	var r1m1, r1m2, final bracketry.Match
	for _, match := range data.Matches {
		rk := roundKeyOf(t, data, match)
		switch {
		case rk.RoundNumber == 1 && match.Number == 1:
			r1m1 = match
		case rk.RoundNumber == 1 && match.Number == 2:
			r1m2 = match
		case rk.RoundNumber == 2:
			final = match
		}
	}
	_ = final

	win := bracketry.ResultWin
	_, err = m.Update.Match(ctx, r1m1.ID, MatchInput{Opponent1: &engine.Update{Slot: bracketry.SlotOpponent1, Result: &win}})
	require.NoError(t, err)
	_, err = m.Update.Match(ctx, r1m2.ID, MatchInput{Opponent1: &engine.Update{Slot: bracketry.SlotOpponent1, Result: &win}})
	require.NoError(t, err)

	finalNow, err := m.Find.Match(ctx, final.ID)
	require.NoError(t, err)
	_, err = m.Update.Match(ctx, finalNow.ID, MatchInput{Opponent1: &engine.Update{Slot: bracketry.SlotOpponent1, Result: &win}})
	require.NoError(t, err)

	_, err = m.Reset.MatchResults(ctx, r1m1.ID)
	require.Error(t, err)
	kind, ok := bracketry.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, bracketry.ErrCannotResetDownstreamCompleted, kind)
}

func TestUpdateMatchGame_DecidesSeriesAndAdvances(t *testing.T) {
	m := setup(t)
	ctx := context.Background()
	tournament, participants := makeTournament(t, m, "A", "B")

	stage, err := m.Create.Stage(ctx, StageInput{
		TournamentID: tournament.ID, Type: bracketry.StageSingleElimination, Number: 1,
		Settings:       bracketry.StageSettings{Size: 2, MatchesChildCount: 3},
		ParticipantIDs: participantIDs(participants),
	})
	require.NoError(t, err)

	data, err := m.Get.StageData(ctx, stage.ID)
	require.NoError(t, err)
	require.Len(t, data.Matches, 1)
	match := data.Matches[0]

	games, err := m.Get.MatchGames(ctx, match.ID)
	require.NoError(t, err)
	require.Len(t, games, 3)

	win := bracketry.ResultWin
	_, err = m.Update.MatchGame(ctx, games[0].ID, engine.Update{Slot: bracketry.SlotOpponent1, Result: &win})
	require.NoError(t, err)
	_, err = m.Update.MatchGame(ctx, games[1].ID, engine.Update{Slot: bracketry.SlotOpponent1, Result: &win})
	require.NoError(t, err)

	updated, err := m.Find.Match(ctx, match.ID)
	require.NoError(t, err)
	assert.Equal(t, bracketry.StatusCompleted, updated.Status)
	assert.Equal(t, 2, *updated.Opponent1.Score)
	assert.True(t, updated.Opponent1.Won())

	remaining, err := m.Get.MatchGames(ctx, match.ID)
	require.NoError(t, err)
	assert.Equal(t, bracketry.StatusArchived, remaining[2].Status)
}

func TestUpdateSeeding_RejectsAfterGenuineResult(t *testing.T) {
	m := setup(t)
	ctx := context.Background()
	tournament, participants := makeTournament(t, m, "A", "B", "C", "D")

	stage, err := m.Create.Stage(ctx, StageInput{
		TournamentID: tournament.ID, Type: bracketry.StageSingleElimination, Number: 1,
		Settings: bracketry.StageSettings{Size: 4}, ParticipantIDs: participantIDs(participants),
	})
	require.NoError(t, err)

	data, err := m.Get.StageData(ctx, stage.ID)
	require.NoError(t, err)
	var r1m1 bracketry.Match
	for _, match := range data.Matches {
		if roundKeyOf(t, data, match).RoundNumber == 1 && match.Number == 1 {
			r1m1 = match
		}
	}

	win := bracketry.ResultWin
	_, err = m.Update.Match(ctx, r1m1.ID, MatchInput{Opponent1: &engine.Update{Slot: bracketry.SlotOpponent1, Result: &win}})
	require.NoError(t, err)

	ids := participantIDs(participants)
	reversed := []int64{ids[3], ids[2], ids[1], ids[0]}
	_, err = m.Update.Seeding(ctx, stage.ID, reversed)
	require.Error(t, err)
}

func TestUpdateMatch_DoubleGrandFinalResetActivatesOnLosersBracketWin(t *testing.T) {
	m := setup(t)
	ctx := context.Background()
	tournament, participants := makeTournament(t, m, "A", "B", "C", "D")
	a, b, c, _ := participants[0].ID, participants[1].ID, participants[2].ID, participants[3].ID

	stage, err := m.Create.Stage(ctx, StageInput{
		TournamentID: tournament.ID, Type: bracketry.StageDoubleElimination, Number: 1,
		Settings:       bracketry.StageSettings{Size: 4, GrandFinal: bracketry.GrandFinalDouble},
		ParticipantIDs: participantIDs(participants),
	})
	require.NoError(t, err)

	data, err := m.Get.StageData(ctx, stage.ID)
	require.NoError(t, err)

	matchIDAt := func(group, round, number int) int64 {
		for _, match := range data.Matches {
			rk := roundKeyOf(t, data, match)
			if rk.GroupNumber == group && rk.RoundNumber == round && match.Number == number {
				return match.ID
			}
		}
		t.Fatalf("no match at group=%d round=%d number=%d", group, round, number)
		return 0
	}

	// play reports winnerID as the winner of the match currently at matchID,
	// resolving whichever slot holds it.
	play := func(matchID int64, winnerID int64) bracketry.Match {
		match, err := m.Find.Match(ctx, matchID)
		require.NoError(t, err)
		win := bracketry.ResultWin
		upd := engine.Update{Result: &win}
		in := MatchInput{}
		if match.Opponent1.ParticipantID == winnerID {
			upd.Slot = bracketry.SlotOpponent1
			in.Opponent1 = &upd
		} else {
			upd.Slot = bracketry.SlotOpponent2
			in.Opponent2 = &upd
		}
		updated, err := m.Update.Match(ctx, matchID, in)
		require.NoError(t, err)
		return updated
	}

	play(matchIDAt(bracketry.GroupWinners, 1, 1), a) // A beats D
	play(matchIDAt(bracketry.GroupWinners, 1, 2), c) // C beats B
	play(matchIDAt(bracketry.GroupWinners, 2, 1), a) // A beats C; C drops to the losers bracket final
	play(matchIDAt(bracketry.GroupLosers, 1, 1), b)  // B beats D
	play(matchIDAt(bracketry.GroupLosers, 2, 1), c)  // C beats B; C is the losers-bracket finalist

	gf1ID := matchIDAt(bracketry.GroupFinal, 1, 1)
	gf1, err := m.Find.Match(ctx, gf1ID)
	require.NoError(t, err)
	assert.Equal(t, a, gf1.Opponent1.ParticipantID)
	assert.Equal(t, c, gf1.Opponent2.ParticipantID)

	play(gf1ID, c) // C, the losers-bracket finalist, wins game 1

	gf2ID := matchIDAt(bracketry.GroupFinal, 2, 1)
	gf2, err := m.Find.Match(ctx, gf2ID)
	require.NoError(t, err)
	assert.Equal(t, bracketry.StatusReady, gf2.Status, "the reset game must activate once the losers-bracket finalist takes game 1")
	assert.Equal(t, a, gf2.Opponent1.ParticipantID)
	assert.Equal(t, c, gf2.Opponent2.ParticipantID)

	champion := play(gf2ID, a) // A wins the reset game and takes the title
	assert.True(t, champion.Opponent1.Won())
	assert.Equal(t, bracketry.StatusCompleted, champion.Status)
}

func TestUpdateMatch_DoubleGrandFinalResetStaysArchivedOnWinnersBracketWin(t *testing.T) {
	m := setup(t)
	ctx := context.Background()
	tournament, participants := makeTournament(t, m, "A", "B", "C", "D")
	a, b, c, _ := participants[0].ID, participants[1].ID, participants[2].ID, participants[3].ID

	stage, err := m.Create.Stage(ctx, StageInput{
		TournamentID: tournament.ID, Type: bracketry.StageDoubleElimination, Number: 1,
		Settings:       bracketry.StageSettings{Size: 4, GrandFinal: bracketry.GrandFinalDouble},
		ParticipantIDs: participantIDs(participants),
	})
	require.NoError(t, err)

	data, err := m.Get.StageData(ctx, stage.ID)
	require.NoError(t, err)

	matchIDAt := func(group, round, number int) int64 {
		for _, match := range data.Matches {
			rk := roundKeyOf(t, data, match)
			if rk.GroupNumber == group && rk.RoundNumber == round && match.Number == number {
				return match.ID
			}
		}
		t.Fatalf("no match at group=%d round=%d number=%d", group, round, number)
		return 0
	}
	play := func(matchID int64, winnerID int64) bracketry.Match {
		match, err := m.Find.Match(ctx, matchID)
		require.NoError(t, err)
		win := bracketry.ResultWin
		upd := engine.Update{Result: &win}
		in := MatchInput{}
		if match.Opponent1.ParticipantID == winnerID {
			upd.Slot = bracketry.SlotOpponent1
			in.Opponent1 = &upd
		} else {
			upd.Slot = bracketry.SlotOpponent2
			in.Opponent2 = &upd
		}
		updated, err := m.Update.Match(ctx, matchID, in)
		require.NoError(t, err)
		return updated
	}

	play(matchIDAt(bracketry.GroupWinners, 1, 1), a)
	play(matchIDAt(bracketry.GroupWinners, 1, 2), c)
	play(matchIDAt(bracketry.GroupWinners, 2, 1), a) // A beats C again
	play(matchIDAt(bracketry.GroupLosers, 1, 1), b)
	play(matchIDAt(bracketry.GroupLosers, 2, 1), c)

	gf1ID := matchIDAt(bracketry.GroupFinal, 1, 1)
	final := play(gf1ID, a) // A, the winners-bracket finalist, wins game 1 outright

	assert.Equal(t, bracketry.StatusCompleted, final.Status)
	gf2, err := m.Find.Match(ctx, matchIDAt(bracketry.GroupFinal, 2, 1))
	require.NoError(t, err)
	assert.Equal(t, bracketry.StatusArchived, gf2.Status, "the reset game never activates when the winners-bracket finalist takes game 1")
}

func TestResetMatchResults_RestoresSuccessorPlaceholder(t *testing.T) {
	m := setup(t)
	ctx := context.Background()
	tournament, participants := makeTournament(t, m, "A", "B", "C", "D")

	stage, err := m.Create.Stage(ctx, StageInput{
		TournamentID: tournament.ID, Type: bracketry.StageSingleElimination, Number: 1,
		Settings: bracketry.StageSettings{Size: 4}, ParticipantIDs: participantIDs(participants),
	})
	require.NoError(t, err)

	data, err := m.Get.StageData(ctx, stage.ID)
	require.NoError(t, err)
	var r1m1, r1m2, final bracketry.Match
	for _, match := range data.Matches {
		rk := roundKeyOf(t, data, match)
		switch {
		case rk.RoundNumber == 1 && match.Number == 1:
			r1m1 = match
		case rk.RoundNumber == 1 && match.Number == 2:
			r1m2 = match
		case rk.RoundNumber == 2:
			final = match
		}
	}

	win := bracketry.ResultWin
	_, err = m.Update.Match(ctx, r1m1.ID, MatchInput{Opponent1: &engine.Update{Slot: bracketry.SlotOpponent1, Result: &win}})
	require.NoError(t, err)
	_, err = m.Update.Match(ctx, r1m2.ID, MatchInput{Opponent1: &engine.Update{Slot: bracketry.SlotOpponent1, Result: &win}})
	require.NoError(t, err)

	afterFirstResult, err := m.Find.Match(ctx, final.ID)
	require.NoError(t, err)
	winnerOfM1 := afterFirstResult.Opponent1.ParticipantID

	_, err = m.Reset.MatchResults(ctx, r1m1.ID)
	require.NoError(t, err)

	reverted, err := m.Find.Match(ctx, final.ID)
	require.NoError(t, err)
	assert.True(t, reverted.Opponent1.IsPosition(), "the final's slot fed by r1m1 must revert to a placeholder")
	assert.Equal(t, bracketry.StatusLocked, reverted.Status)

	// recording the opposite winner must now propagate cleanly instead of
	// leaving the final pointed at the stale participant.
	_, err = m.Update.Match(ctx, r1m1.ID, MatchInput{Opponent2: &engine.Update{Slot: bracketry.SlotOpponent2, Result: &win}})
	require.NoError(t, err)

	corrected, err := m.Find.Match(ctx, final.ID)
	require.NoError(t, err)
	require.True(t, corrected.Opponent1.Resolved())
	assert.NotEqual(t, winnerOfM1, corrected.Opponent1.ParticipantID)
}

func TestDeleteTournament_CascadesToStagesAndParticipants(t *testing.T) {
	m := setup(t)
	ctx := context.Background()
	tournament, participants := makeTournament(t, m, "A", "B")

	stage, err := m.Create.Stage(ctx, StageInput{
		TournamentID: tournament.ID, Type: bracketry.StageSingleElimination, Number: 1,
		Settings: bracketry.StageSettings{Size: 2}, ParticipantIDs: participantIDs(participants),
	})
	require.NoError(t, err)

	ok, err := m.Delete.Tournament(ctx, tournament.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = m.Get.StageData(ctx, stage.ID)
	require.Error(t, err)

	remaining, err := m.store.Participants().Select(ctx, storage.ByPartial(bracketry.Participant{TournamentID: tournament.ID}))
	require.NoError(t, err)
	assert.Empty(t, remaining)
}
