package manager

import (
	"context"

	"github.com/coinflip-gg/bracketry"
	"github.com/coinflip-gg/bracketry/storage"
)

type deleteOps struct{ m *Manager }

// Stage removes a stage and everything beneath it (groups, rounds, matches,
// match games cascade via the storage backend's foreign keys); participants
// are untouched, since they belong to the tournament, not the stage.
func (d *deleteOps) Stage(ctx context.Context, stageID int64) (bool, error) {
	return d.m.store.Stages().Delete(ctx, storage.ByID[bracketry.Stage](stageID))
}

// Tournament removes a tournament, its participants, and every stage beneath
// it (§3: "participants survive stage deletion but are removed with the
// tournament").
func (d *deleteOps) Tournament(ctx context.Context, tournamentID int64) (bool, error) {
	return d.m.store.Tournaments().Delete(ctx, storage.ByID[bracketry.Tournament](tournamentID))
}

// Match removes a single match row outright. This has no place in a
// generated bracket's normal lifecycle — every match a layout generator
// produces is load-bearing for the graph formulas — so it exists only for
// correcting a manually-inserted stray row; callers are responsible for not
// leaving dangling graph edges behind.
func (d *deleteOps) Match(ctx context.Context, matchID int64) (bool, error) {
	return d.m.store.Matches().Delete(ctx, storage.ByID[bracketry.Match](matchID))
}
