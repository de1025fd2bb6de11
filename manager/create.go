package manager

import (
	"context"

	"github.com/coinflip-gg/bracketry"
	"github.com/coinflip-gg/bracketry/bestof"
	"github.com/coinflip-gg/bracketry/layout"
	"github.com/coinflip-gg/bracketry/storage"
)

type createOps struct{ m *Manager }

// Tournament creates a tournament and its participant roster in one call;
// participants are stored in the given order, which is what reset.seeding
// later falls back to when no explicit seed order is supplied.
func (c *createOps) Tournament(ctx context.Context, name string, participantNames []string) (bracketry.Tournament, []bracketry.Participant, error) {
	ids, err := c.m.store.Tournaments().Insert(ctx, bracketry.Tournament{Name: name})
	if err != nil {
		return bracketry.Tournament{}, nil, err
	}
	tournament := bracketry.Tournament{ID: ids[0], Name: name}

	if len(participantNames) == 0 {
		return tournament, nil, nil
	}
	records := make([]bracketry.Participant, len(participantNames))
	for i, n := range participantNames {
		records[i] = bracketry.Participant{TournamentID: tournament.ID, Name: n}
	}
	pIDs, err := c.m.store.Participants().Insert(ctx, records...)
	if err != nil {
		return bracketry.Tournament{}, nil, err
	}
	for i := range records {
		records[i].ID = pIDs[i]
	}
	return tournament, records, nil
}

// StageInput describes a stage to generate: the seed order is the caller's
// chosen participant order going into layout.Generate, before any automatic
// seeding.Method permutation settings.SeedOrdering names.
type StageInput struct {
	TournamentID   int64
	Name           string
	Type           bracketry.StageType
	Number         int
	Settings       bracketry.StageSettings
	ParticipantIDs []int64
}

// Stage runs C2 against the requested seed order and settings, then persists
// the generated stage/groups/rounds/matches in dependency order — a stage
// always exists before its groups, a group before its rounds, a round before
// its matches, matching how update.match later persists successors before
// the match that fed them.
func (c *createOps) Stage(ctx context.Context, in StageInput) (bracketry.Stage, error) {
	if in.Settings.MatchesChildCount > 0 {
		if err := bestof.ValidateChildCount(in.Settings.MatchesChildCount); err != nil {
			return bracketry.Stage{}, err
		}
	}

	generated, err := layout.Generate(in.Type, in.ParticipantIDs, in.Settings)
	if err != nil {
		return bracketry.Stage{}, err
	}

	stageIDs, err := c.m.store.Stages().Insert(ctx, bracketry.Stage{
		TournamentID: in.TournamentID,
		Name:         in.Name,
		Type:         in.Type,
		Number:       in.Number,
		Settings:     in.Settings,
	})
	if err != nil {
		return bracketry.Stage{}, err
	}
	stage := bracketry.Stage{ID: stageIDs[0], TournamentID: in.TournamentID, Name: in.Name, Type: in.Type, Number: in.Number, Settings: in.Settings}

	if err := persistGenerated(ctx, c.m.store, stage, generated); err != nil {
		return bracketry.Stage{}, err
	}
	return stage, nil
}

// persistGenerated writes a layout.Generated tree under an already-persisted
// stage in dependency order — a group before its rounds, a round before its
// matches — then seeds best-of child games for any match configured with
// one. Used both by Stage (a brand new stage) and by update.seeding /
// reset.seeding (an existing stage being regenerated in place).
func persistGenerated(ctx context.Context, store storage.Storage, stage bracketry.Stage, generated *layout.Generated) error {
	for _, groupSpec := range generated.Groups {
		groupIDs, err := store.Groups().Insert(ctx, bracketry.Group{StageID: stage.ID, Number: groupSpec.Number})
		if err != nil {
			return err
		}
		groupID := groupIDs[0]

		for _, roundSpec := range groupSpec.Rounds {
			roundIDs, err := store.Rounds().Insert(ctx, bracketry.Round{StageID: stage.ID, GroupID: groupID, Number: roundSpec.Number})
			if err != nil {
				return err
			}
			roundID := roundIDs[0]

			matchRecords := make([]bracketry.Match, len(roundSpec.Matches))
			for i, ms := range roundSpec.Matches {
				matchRecords[i] = bracketry.Match{
					StageID: stage.ID, GroupID: groupID, RoundID: roundID,
					Number: ms.Number, Status: ms.Status,
					Opponent1: ms.Opponent1, Opponent2: ms.Opponent2,
					ChildCount: ms.ChildCount,
				}
			}
			if len(matchRecords) == 0 {
				continue
			}
			if _, err := store.Matches().Insert(ctx, matchRecords...); err != nil {
				return err
			}
		}
	}

	if stage.Settings.MatchesChildCount > 0 {
		if err := seedChildGames(ctx, store, stage.ID, stage.Settings.MatchesChildCount); err != nil {
			return err
		}
	}
	return nil
}

// seedChildGames gives every generated match with a configured best-of
// length its full, unplayed roster of MatchGame rows up front, mirroring the
// opponents its parent match was generated with so the first game is ready
// to play the moment the parent itself becomes Ready.
func seedChildGames(ctx context.Context, store storage.Storage, stageID int64, childCount int) error {
	matches, err := store.Matches().Select(ctx, storage.ByPartial(bracketry.Match{StageID: stageID}))
	if err != nil {
		return err
	}
	for _, match := range matches {
		if match.ChildCount == 0 {
			continue
		}
		if match.Opponent1.Kind != bracketry.OpponentParticipant || match.Opponent2.Kind != bracketry.OpponentParticipant {
			continue // a BYE-resolved or still-locked match has no games to play
		}
		o1, o2 := stripScore(match.Opponent1), stripScore(match.Opponent2)
		games := make([]bracketry.MatchGame, match.ChildCount)
		for i := range games {
			games[i] = bracketry.MatchGame{
				ParentID:  match.ID,
				Number:    i + 1,
				Status:    bracketry.ClassifyStatus(o1, o2),
				Opponent1: o1,
				Opponent2: o2,
			}
		}
		if _, err := store.MatchGames().Insert(ctx, games...); err != nil {
			return err
		}
	}
	return nil
}

// stripScore copies an opponent without any score/result a generation-time
// BYE auto-resolution may have stamped onto the parent match; a fresh child
// game always starts unplayed even when its parent was instantly decided.
func stripScore(o bracketry.Opponent) bracketry.Opponent {
	o.Score, o.Result, o.Forfeit = nil, nil, false
	return o
}
