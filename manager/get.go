package manager

import (
	"context"
	"sort"

	"github.com/coinflip-gg/bracketry"
	"github.com/coinflip-gg/bracketry/standings"
	"github.com/coinflip-gg/bracketry/storage"
)

type getOps struct{ m *Manager }

// StageData is the full, denormalized view of one stage — everything a
// client needs to render or drive a bracket in a single call.
type StageData struct {
	Stage   bracketry.Stage
	Groups  []bracketry.Group
	Rounds  []bracketry.Round
	Matches []bracketry.Match
}

// StageData loads a stage and every group/round/match beneath it.
func (g *getOps) StageData(ctx context.Context, stageID int64) (StageData, error) {
	idx, err := loadStageIndex(ctx, g.m.store, stageID)
	if err != nil {
		return StageData{}, err
	}
	return StageData{Stage: idx.stage, Groups: idx.groups, Rounds: idx.rounds, Matches: idx.matches}, nil
}

// TournamentData is a tournament, its roster, and the summary rows of every
// stage it owns (not each stage's full match tree — call StageData for that).
type TournamentData struct {
	Tournament   bracketry.Tournament
	Participants []bracketry.Participant
	Stages       []bracketry.Stage
}

func (g *getOps) TournamentData(ctx context.Context, tournamentID int64) (TournamentData, error) {
	tRows, err := g.m.store.Tournaments().Select(ctx, storage.ByID[bracketry.Tournament](tournamentID))
	if err != nil {
		return TournamentData{}, err
	}
	if len(tRows) == 0 {
		return TournamentData{}, bracketry.NewError(bracketry.ErrNotFound, "tournament not found")
	}
	participants, err := g.m.store.Participants().Select(ctx, storage.ByPartial(bracketry.Participant{TournamentID: tournamentID}))
	if err != nil {
		return TournamentData{}, err
	}
	stages, err := g.m.store.Stages().Select(ctx, storage.ByPartial(bracketry.Stage{TournamentID: tournamentID}))
	if err != nil {
		return TournamentData{}, err
	}
	return TournamentData{Tournament: tRows[0], Participants: participants, Stages: stages}, nil
}

// Seeding returns a tournament's participants in stored (seed) order.
func (g *getOps) Seeding(ctx context.Context, tournamentID int64) ([]bracketry.Participant, error) {
	participants, err := g.m.store.Participants().Select(ctx, storage.ByPartial(bracketry.Participant{TournamentID: tournamentID}))
	if err != nil {
		return nil, err
	}
	sort.Slice(participants, func(i, j int) bool { return participants[i].ID < participants[j].ID })
	return participants, nil
}

// refsForGroup builds the standings.MatchRef slice for one stage-type-
// specific group number, in (round, number) order.
func refsForGroup(idx *stageIndex, groupNumber int) []standings.MatchRef {
	var out []standings.MatchRef
	for _, m := range idx.matches {
		rk := idx.roundKeyByID[m.RoundID]
		if rk.GroupNumber != groupNumber {
			continue
		}
		out = append(out, standings.MatchRef{Group: rk.GroupNumber, Round: rk.RoundNumber, Number: m.Number, Match: m})
	}
	return out
}

func maxRoundIn(idx *stageIndex, groupNumber int) int {
	max := 0
	for _, r := range idx.rounds {
		if idx.groupNumberByID[r.GroupID] == groupNumber && r.Number > max {
			max = r.Number
		}
	}
	return max
}

// FinalStandings dispatches to the stage-type-specific C6 ranking function.
func (g *getOps) FinalStandings(ctx context.Context, stageID int64) ([]standings.Entry, error) {
	idx, err := loadStageIndex(ctx, g.m.store, stageID)
	if err != nil {
		return nil, err
	}
	switch idx.stage.Type {
	case bracketry.StageSingleElimination:
		main := refsForGroup(idx, bracketry.GroupMain)
		consolation := refsForGroup(idx, bracketry.GroupConsolation)
		return standings.SingleElimination(main, consolation, maxRoundIn(idx, bracketry.GroupMain)), nil
	case bracketry.StageDoubleElimination:
		gf := refsForGroup(idx, bracketry.GroupFinal)
		losers := refsForGroup(idx, bracketry.GroupLosers)
		return standings.DoubleElimination(gf, losers, maxRoundIn(idx, bracketry.GroupLosers)), nil
	case bracketry.StageRoundRobin:
		seedOrder, err := g.Seeding(ctx, idx.stage.TournamentID)
		if err != nil {
			return nil, err
		}
		ids := make([]int64, len(seedOrder))
		for i, p := range seedOrder {
			ids[i] = p.ID
		}
		return standings.RoundRobin(idx.matches, ids), nil
	default:
		return nil, bracketry.NewError(bracketry.ErrInvalidInput, "unknown stage type: "+string(idx.stage.Type))
	}
}

// CurrentRace is the supplemented get.currentRace operation: the most
// advanced not-yet-completed match the participant still appears in.
func (g *getOps) CurrentRace(ctx context.Context, stageID, participantID int64) (standings.MatchRef, bool, error) {
	idx, err := loadStageIndex(ctx, g.m.store, stageID)
	if err != nil {
		return standings.MatchRef{}, false, err
	}
	refs := allRefs(idx)
	ref, ok := standings.CurrentRace(refs, participantID)
	return ref, ok, nil
}

func allRefs(idx *stageIndex) []standings.MatchRef {
	out := make([]standings.MatchRef, 0, len(idx.matches))
	for _, m := range idx.matches {
		rk := idx.roundKeyByID[m.RoundID]
		out = append(out, standings.MatchRef{Group: rk.GroupNumber, Round: rk.RoundNumber, Number: m.Number, Match: m})
	}
	return out
}

// MatchGames returns every child game of a match, in game-number order.
func (g *getOps) MatchGames(ctx context.Context, matchID int64) ([]bracketry.MatchGame, error) {
	return g.m.store.MatchGames().Select(ctx, storage.ByPartial(bracketry.MatchGame{ParentID: matchID}))
}
