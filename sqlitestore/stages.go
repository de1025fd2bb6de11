package sqlitestore

import (
	"context"
	"encoding/json"

	"github.com/jmoiron/sqlx"

	"github.com/coinflip-gg/bracketry"
	"github.com/coinflip-gg/bracketry/storage"
)

// stageRow flattens bracketry.StageSettings into individual columns; there
// is no polymorphism to model here, just an option bag, so a flat row is
// simpler than a side table.
type stageRow struct {
	ID           int64  `db:"id"`
	TournamentID int64  `db:"tournament_id"`
	Name         string `db:"name"`
	Type         string `db:"type"`
	Number       int    `db:"number"`

	Size              int    `db:"size"`
	SeedOrdering      string `db:"seed_ordering"`
	BalanceByes       bool   `db:"balance_byes"`
	ConsolationFinal  bool   `db:"consolation_final"`
	SkipFirstRound    bool   `db:"skip_first_round"`
	GrandFinal        string `db:"grand_final"`
	GroupCount        int    `db:"group_count"`
	RoundRobinMode    string `db:"round_robin_mode"`
	MatchesChildCount int    `db:"matches_child_count"`
	ManualOrdering    string `db:"manual_ordering"`
}

func fromStage(s bracketry.Stage) (stageRow, error) {
	row := stageRow{
		ID:                s.ID,
		TournamentID:      s.TournamentID,
		Name:              s.Name,
		Type:              string(s.Type),
		Number:            s.Number,
		Size:              s.Settings.Size,
		SeedOrdering:      s.Settings.SeedOrdering,
		BalanceByes:       s.Settings.BalanceByes,
		ConsolationFinal:  s.Settings.ConsolationFinal,
		SkipFirstRound:    s.Settings.SkipFirstRound,
		GrandFinal:        string(s.Settings.GrandFinal),
		GroupCount:        s.Settings.GroupCount,
		RoundRobinMode:    string(s.Settings.RoundRobinMode),
		MatchesChildCount: s.Settings.MatchesChildCount,
	}
	if len(s.Settings.ManualOrdering) > 0 {
		encoded, err := json.Marshal(s.Settings.ManualOrdering)
		if err != nil {
			return stageRow{}, err
		}
		row.ManualOrdering = string(encoded)
	}
	return row, nil
}

func (r stageRow) toDomain() (bracketry.Stage, error) {
	stage := bracketry.Stage{
		ID:           r.ID,
		TournamentID: r.TournamentID,
		Name:         r.Name,
		Type:         bracketry.StageType(r.Type),
		Number:       r.Number,
		Settings: bracketry.StageSettings{
			Size:              r.Size,
			SeedOrdering:      r.SeedOrdering,
			BalanceByes:       r.BalanceByes,
			ConsolationFinal:  r.ConsolationFinal,
			SkipFirstRound:    r.SkipFirstRound,
			GrandFinal:        bracketry.GrandFinalType(r.GrandFinal),
			GroupCount:        r.GroupCount,
			RoundRobinMode:    bracketry.RoundRobinMode(r.RoundRobinMode),
			MatchesChildCount: r.MatchesChildCount,
		},
	}
	if r.ManualOrdering != "" {
		if err := json.Unmarshal([]byte(r.ManualOrdering), &stage.Settings.ManualOrdering); err != nil {
			return bracketry.Stage{}, err
		}
	}
	return stage, nil
}

type stageTable struct{ db *sqlx.DB }

func (t *stageTable) Select(ctx context.Context, filter storage.Filter[bracketry.Stage]) ([]bracketry.Stage, error) {
	var rows []stageRow
	var err error
	if id, ok := filter.ID(); ok {
		err = t.db.SelectContext(ctx, &rows, "SELECT * FROM stages WHERE id = ?", id)
	} else if partial, ok := filter.Partial(); ok && partial.TournamentID != 0 {
		err = t.db.SelectContext(ctx, &rows, "SELECT * FROM stages WHERE tournament_id = ? ORDER BY number ASC", partial.TournamentID)
	} else {
		err = t.db.SelectContext(ctx, &rows, "SELECT * FROM stages ORDER BY id ASC")
	}
	if err != nil {
		return nil, wrapStorageErr("select stages", err)
	}
	out := make([]bracketry.Stage, len(rows))
	for i, r := range rows {
		stage, err := r.toDomain()
		if err != nil {
			return nil, wrapStorageErr("decode stage settings", err)
		}
		out[i] = stage
	}
	return out, nil
}

func (t *stageTable) Insert(ctx context.Context, records ...bracketry.Stage) ([]int64, error) {
	ids := make([]int64, len(records))
	for i, rec := range records {
		row, err := fromStage(rec)
		if err != nil {
			return nil, wrapStorageErr("encode stage settings", err)
		}
		res, err := t.db.NamedExecContext(ctx, `INSERT INTO stages
			(tournament_id, name, type, number, size, seed_ordering, balance_byes, consolation_final,
			 skip_first_round, grand_final, group_count, round_robin_mode, matches_child_count, manual_ordering)
			VALUES (:tournament_id, :name, :type, :number, :size, :seed_ordering, :balance_byes, :consolation_final,
			 :skip_first_round, :grand_final, :group_count, :round_robin_mode, :matches_child_count, :manual_ordering)`, row)
		if err != nil {
			return nil, wrapStorageErr("insert stage", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, wrapStorageErr("read inserted stage id", err)
		}
		ids[i] = id
	}
	return ids, nil
}

func (t *stageTable) Update(ctx context.Context, filter storage.Filter[bracketry.Stage], patch bracketry.Stage) (bool, error) {
	id, ok := filter.ID()
	if !ok {
		return false, bracketry.NewError(bracketry.ErrInvalidInput, "stages.Update requires an ID filter")
	}
	row, err := fromStage(patch)
	if err != nil {
		return false, wrapStorageErr("encode stage settings", err)
	}
	row.ID = id
	res, err := t.db.NamedExecContext(ctx, `UPDATE stages SET
		name = :name, type = :type, number = :number, size = :size, seed_ordering = :seed_ordering,
		balance_byes = :balance_byes, consolation_final = :consolation_final, skip_first_round = :skip_first_round,
		grand_final = :grand_final, group_count = :group_count, round_robin_mode = :round_robin_mode,
		matches_child_count = :matches_child_count, manual_ordering = :manual_ordering
		WHERE id = :id`, row)
	if err != nil {
		return false, wrapStorageErr("update stage", err)
	}
	n, err := res.RowsAffected()
	return n > 0, wrapStorageErr("read update stage result", err)
}

func (t *stageTable) Delete(ctx context.Context, filter storage.Filter[bracketry.Stage]) (bool, error) {
	id, ok := filter.ID()
	if !ok {
		return false, bracketry.NewError(bracketry.ErrInvalidInput, "stages.Delete requires an ID filter")
	}
	res, err := t.db.ExecContext(ctx, "DELETE FROM stages WHERE id = ?", id)
	if err != nil {
		return false, wrapStorageErr("delete stage", err)
	}
	n, err := res.RowsAffected()
	return n > 0, wrapStorageErr("read delete stage result", err)
}
