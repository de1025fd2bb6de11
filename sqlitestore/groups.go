package sqlitestore

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/coinflip-gg/bracketry"
	"github.com/coinflip-gg/bracketry/storage"
)

type groupRow struct {
	ID      int64 `db:"id"`
	StageID int64 `db:"stage_id"`
	Number  int   `db:"number"`
}

func (r groupRow) toDomain() bracketry.Group {
	return bracketry.Group{ID: r.ID, StageID: r.StageID, Number: r.Number}
}

func fromGroup(g bracketry.Group) groupRow {
	return groupRow{ID: g.ID, StageID: g.StageID, Number: g.Number}
}

type groupTable struct{ db *sqlx.DB }

func (t *groupTable) Select(ctx context.Context, filter storage.Filter[bracketry.Group]) ([]bracketry.Group, error) {
	var rows []groupRow
	var err error
	if id, ok := filter.ID(); ok {
		err = t.db.SelectContext(ctx, &rows, "SELECT * FROM groups WHERE id = ?", id)
	} else if partial, ok := filter.Partial(); ok && partial.StageID != 0 {
		err = t.db.SelectContext(ctx, &rows, "SELECT * FROM groups WHERE stage_id = ? ORDER BY number ASC", partial.StageID)
	} else {
		err = t.db.SelectContext(ctx, &rows, "SELECT * FROM groups ORDER BY id ASC")
	}
	if err != nil {
		return nil, wrapStorageErr("select groups", err)
	}
	out := make([]bracketry.Group, len(rows))
	for i, r := range rows {
		out[i] = r.toDomain()
	}
	return out, nil
}

func (t *groupTable) Insert(ctx context.Context, records ...bracketry.Group) ([]int64, error) {
	ids := make([]int64, len(records))
	for i, rec := range records {
		res, err := t.db.NamedExecContext(ctx,
			"INSERT INTO groups (stage_id, number) VALUES (:stage_id, :number)", fromGroup(rec))
		if err != nil {
			return nil, wrapStorageErr("insert group", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, wrapStorageErr("read inserted group id", err)
		}
		ids[i] = id
	}
	return ids, nil
}

func (t *groupTable) Update(ctx context.Context, filter storage.Filter[bracketry.Group], patch bracketry.Group) (bool, error) {
	id, ok := filter.ID()
	if !ok {
		return false, bracketry.NewError(bracketry.ErrInvalidInput, "groups.Update requires an ID filter")
	}
	res, err := t.db.ExecContext(ctx, "UPDATE groups SET number = ? WHERE id = ?", patch.Number, id)
	if err != nil {
		return false, wrapStorageErr("update group", err)
	}
	n, err := res.RowsAffected()
	return n > 0, wrapStorageErr("read update group result", err)
}

func (t *groupTable) Delete(ctx context.Context, filter storage.Filter[bracketry.Group]) (bool, error) {
	id, ok := filter.ID()
	if !ok {
		return false, bracketry.NewError(bracketry.ErrInvalidInput, "groups.Delete requires an ID filter")
	}
	res, err := t.db.ExecContext(ctx, "DELETE FROM groups WHERE id = ?", id)
	if err != nil {
		return false, wrapStorageErr("delete group", err)
	}
	n, err := res.RowsAffected()
	return n > 0, wrapStorageErr("read delete group result", err)
}
