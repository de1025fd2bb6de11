package sqlitestore

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/coinflip-gg/bracketry"
	"github.com/coinflip-gg/bracketry/storage"
)

type tournamentRow struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
}

func (r tournamentRow) toDomain() bracketry.Tournament {
	return bracketry.Tournament{ID: r.ID, Name: r.Name}
}

func fromTournament(t bracketry.Tournament) tournamentRow {
	return tournamentRow{ID: t.ID, Name: t.Name}
}

type tournamentTable struct{ db *sqlx.DB }

func (t *tournamentTable) Select(ctx context.Context, filter storage.Filter[bracketry.Tournament]) ([]bracketry.Tournament, error) {
	var rows []tournamentRow
	var err error
	if id, ok := filter.ID(); ok {
		err = t.db.SelectContext(ctx, &rows, "SELECT * FROM tournaments WHERE id = ?", id)
	} else if partial, ok := filter.Partial(); ok && partial.Name != "" {
		err = t.db.SelectContext(ctx, &rows, "SELECT * FROM tournaments WHERE name = ?", partial.Name)
	} else {
		err = t.db.SelectContext(ctx, &rows, "SELECT * FROM tournaments ORDER BY id ASC")
	}
	if err != nil {
		return nil, wrapStorageErr("select tournaments", err)
	}
	out := make([]bracketry.Tournament, len(rows))
	for i, r := range rows {
		out[i] = r.toDomain()
	}
	return out, nil
}

func (t *tournamentTable) Insert(ctx context.Context, records ...bracketry.Tournament) ([]int64, error) {
	ids := make([]int64, len(records))
	for i, rec := range records {
		res, err := t.db.NamedExecContext(ctx, "INSERT INTO tournaments (name) VALUES (:name)", fromTournament(rec))
		if err != nil {
			return nil, wrapStorageErr("insert tournament", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, wrapStorageErr("read inserted tournament id", err)
		}
		ids[i] = id
	}
	return ids, nil
}

func (t *tournamentTable) Update(ctx context.Context, filter storage.Filter[bracketry.Tournament], patch bracketry.Tournament) (bool, error) {
	id, ok := filter.ID()
	if !ok {
		return false, bracketry.NewError(bracketry.ErrInvalidInput, "tournaments.Update requires an ID filter")
	}
	res, err := t.db.ExecContext(ctx, "UPDATE tournaments SET name = ? WHERE id = ?", patch.Name, id)
	if err != nil {
		return false, wrapStorageErr("update tournament", err)
	}
	n, err := res.RowsAffected()
	return n > 0, wrapStorageErr("read update tournament result", err)
}

func (t *tournamentTable) Delete(ctx context.Context, filter storage.Filter[bracketry.Tournament]) (bool, error) {
	id, ok := filter.ID()
	if !ok {
		return false, bracketry.NewError(bracketry.ErrInvalidInput, "tournaments.Delete requires an ID filter")
	}
	res, err := t.db.ExecContext(ctx, "DELETE FROM tournaments WHERE id = ?", id)
	if err != nil {
		return false, wrapStorageErr("delete tournament", err)
	}
	n, err := res.RowsAffected()
	return n > 0, wrapStorageErr("read delete tournament result", err)
}
