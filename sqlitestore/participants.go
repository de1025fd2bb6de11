package sqlitestore

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/coinflip-gg/bracketry"
	"github.com/coinflip-gg/bracketry/storage"
)

type participantRow struct {
	ID           int64  `db:"id"`
	TournamentID int64  `db:"tournament_id"`
	Name         string `db:"name"`
}

func (r participantRow) toDomain() bracketry.Participant {
	return bracketry.Participant{ID: r.ID, TournamentID: r.TournamentID, Name: r.Name}
}

func fromParticipant(p bracketry.Participant) participantRow {
	return participantRow{ID: p.ID, TournamentID: p.TournamentID, Name: p.Name}
}

type participantTable struct{ db *sqlx.DB }

func (t *participantTable) Select(ctx context.Context, filter storage.Filter[bracketry.Participant]) ([]bracketry.Participant, error) {
	var rows []participantRow
	var err error
	if id, ok := filter.ID(); ok {
		err = t.db.SelectContext(ctx, &rows, "SELECT * FROM participants WHERE id = ?", id)
	} else if partial, ok := filter.Partial(); ok && partial.TournamentID != 0 {
		err = t.db.SelectContext(ctx, &rows, "SELECT * FROM participants WHERE tournament_id = ? ORDER BY id ASC", partial.TournamentID)
	} else {
		err = t.db.SelectContext(ctx, &rows, "SELECT * FROM participants ORDER BY id ASC")
	}
	if err != nil {
		return nil, wrapStorageErr("select participants", err)
	}
	out := make([]bracketry.Participant, len(rows))
	for i, r := range rows {
		out[i] = r.toDomain()
	}
	return out, nil
}

func (t *participantTable) Insert(ctx context.Context, records ...bracketry.Participant) ([]int64, error) {
	ids := make([]int64, len(records))
	for i, rec := range records {
		res, err := t.db.NamedExecContext(ctx,
			"INSERT INTO participants (tournament_id, name) VALUES (:tournament_id, :name)", fromParticipant(rec))
		if err != nil {
			return nil, wrapStorageErr("insert participant", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, wrapStorageErr("read inserted participant id", err)
		}
		ids[i] = id
	}
	return ids, nil
}

func (t *participantTable) Update(ctx context.Context, filter storage.Filter[bracketry.Participant], patch bracketry.Participant) (bool, error) {
	id, ok := filter.ID()
	if !ok {
		return false, bracketry.NewError(bracketry.ErrInvalidInput, "participants.Update requires an ID filter")
	}
	res, err := t.db.ExecContext(ctx, "UPDATE participants SET name = ? WHERE id = ?", patch.Name, id)
	if err != nil {
		return false, wrapStorageErr("update participant", err)
	}
	n, err := res.RowsAffected()
	return n > 0, wrapStorageErr("read update participant result", err)
}

func (t *participantTable) Delete(ctx context.Context, filter storage.Filter[bracketry.Participant]) (bool, error) {
	id, ok := filter.ID()
	if !ok {
		return false, bracketry.NewError(bracketry.ErrInvalidInput, "participants.Delete requires an ID filter")
	}
	res, err := t.db.ExecContext(ctx, "DELETE FROM participants WHERE id = ?", id)
	if err != nil {
		return false, wrapStorageErr("delete participant", err)
	}
	n, err := res.RowsAffected()
	return n > 0, wrapStorageErr("read delete participant result", err)
}
