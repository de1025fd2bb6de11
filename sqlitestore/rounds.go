package sqlitestore

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/coinflip-gg/bracketry"
	"github.com/coinflip-gg/bracketry/storage"
)

type roundRow struct {
	ID      int64 `db:"id"`
	StageID int64 `db:"stage_id"`
	GroupID int64 `db:"group_id"`
	Number  int   `db:"number"`
}

func (r roundRow) toDomain() bracketry.Round {
	return bracketry.Round{ID: r.ID, StageID: r.StageID, GroupID: r.GroupID, Number: r.Number}
}

func fromRound(r bracketry.Round) roundRow {
	return roundRow{ID: r.ID, StageID: r.StageID, GroupID: r.GroupID, Number: r.Number}
}

type roundTable struct{ db *sqlx.DB }

func (t *roundTable) Select(ctx context.Context, filter storage.Filter[bracketry.Round]) ([]bracketry.Round, error) {
	var rows []roundRow
	var err error
	if id, ok := filter.ID(); ok {
		err = t.db.SelectContext(ctx, &rows, "SELECT * FROM rounds WHERE id = ?", id)
	} else if partial, ok := filter.Partial(); ok && partial.GroupID != 0 {
		err = t.db.SelectContext(ctx, &rows, "SELECT * FROM rounds WHERE group_id = ? ORDER BY number ASC", partial.GroupID)
	} else if partial, ok := filter.Partial(); ok && partial.StageID != 0 {
		err = t.db.SelectContext(ctx, &rows, "SELECT * FROM rounds WHERE stage_id = ? ORDER BY group_id ASC, number ASC", partial.StageID)
	} else {
		err = t.db.SelectContext(ctx, &rows, "SELECT * FROM rounds ORDER BY id ASC")
	}
	if err != nil {
		return nil, wrapStorageErr("select rounds", err)
	}
	out := make([]bracketry.Round, len(rows))
	for i, r := range rows {
		out[i] = r.toDomain()
	}
	return out, nil
}

func (t *roundTable) Insert(ctx context.Context, records ...bracketry.Round) ([]int64, error) {
	ids := make([]int64, len(records))
	for i, rec := range records {
		res, err := t.db.NamedExecContext(ctx,
			"INSERT INTO rounds (stage_id, group_id, number) VALUES (:stage_id, :group_id, :number)", fromRound(rec))
		if err != nil {
			return nil, wrapStorageErr("insert round", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, wrapStorageErr("read inserted round id", err)
		}
		ids[i] = id
	}
	return ids, nil
}

func (t *roundTable) Update(ctx context.Context, filter storage.Filter[bracketry.Round], patch bracketry.Round) (bool, error) {
	id, ok := filter.ID()
	if !ok {
		return false, bracketry.NewError(bracketry.ErrInvalidInput, "rounds.Update requires an ID filter")
	}
	res, err := t.db.ExecContext(ctx, "UPDATE rounds SET number = ? WHERE id = ?", patch.Number, id)
	if err != nil {
		return false, wrapStorageErr("update round", err)
	}
	n, err := res.RowsAffected()
	return n > 0, wrapStorageErr("read update round result", err)
}

func (t *roundTable) Delete(ctx context.Context, filter storage.Filter[bracketry.Round]) (bool, error) {
	id, ok := filter.ID()
	if !ok {
		return false, bracketry.NewError(bracketry.ErrInvalidInput, "rounds.Delete requires an ID filter")
	}
	res, err := t.db.ExecContext(ctx, "DELETE FROM rounds WHERE id = ?", id)
	if err != nil {
		return false, wrapStorageErr("delete round", err)
	}
	n, err := res.RowsAffected()
	return n > 0, wrapStorageErr("read delete round result", err)
}
