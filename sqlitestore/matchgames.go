package sqlitestore

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/coinflip-gg/bracketry"
	"github.com/coinflip-gg/bracketry/storage"
)

type matchGameRow struct {
	ID       int64 `db:"id"`
	ParentID int64 `db:"parent_id"`
	Number   int   `db:"number"`
	Status   int   `db:"status"`

	Opponent1Kind          int            `db:"opponent1_kind"`
	Opponent1Position      int            `db:"opponent1_position"`
	Opponent1ParticipantID sql.NullInt64  `db:"opponent1_participant_id"`
	Opponent1Score         sql.NullInt64  `db:"opponent1_score"`
	Opponent1Result        sql.NullString `db:"opponent1_result"`
	Opponent1Forfeit       bool           `db:"opponent1_forfeit"`

	Opponent2Kind          int            `db:"opponent2_kind"`
	Opponent2Position      int            `db:"opponent2_position"`
	Opponent2ParticipantID sql.NullInt64  `db:"opponent2_participant_id"`
	Opponent2Score         sql.NullInt64  `db:"opponent2_score"`
	Opponent2Result        sql.NullString `db:"opponent2_result"`
	Opponent2Forfeit       bool           `db:"opponent2_forfeit"`
}

func fromMatchGame(g bracketry.MatchGame) matchGameRow {
	o1, o2 := fromOpponent(g.Opponent1), fromOpponent(g.Opponent2)
	return matchGameRow{
		ID: g.ID, ParentID: g.ParentID, Number: g.Number, Status: int(g.Status),

		Opponent1Kind: o1.Kind, Opponent1Position: o1.Position, Opponent1ParticipantID: o1.ParticipantID,
		Opponent1Score: o1.Score, Opponent1Result: o1.Result, Opponent1Forfeit: o1.Forfeit,

		Opponent2Kind: o2.Kind, Opponent2Position: o2.Position, Opponent2ParticipantID: o2.ParticipantID,
		Opponent2Score: o2.Score, Opponent2Result: o2.Result, Opponent2Forfeit: o2.Forfeit,
	}
}

func (r matchGameRow) toDomain() bracketry.MatchGame {
	o1 := opponentRow{Kind: r.Opponent1Kind, Position: r.Opponent1Position, ParticipantID: r.Opponent1ParticipantID,
		Score: r.Opponent1Score, Result: r.Opponent1Result, Forfeit: r.Opponent1Forfeit}
	o2 := opponentRow{Kind: r.Opponent2Kind, Position: r.Opponent2Position, ParticipantID: r.Opponent2ParticipantID,
		Score: r.Opponent2Score, Result: r.Opponent2Result, Forfeit: r.Opponent2Forfeit}
	return bracketry.MatchGame{
		ID: r.ID, ParentID: r.ParentID, Number: r.Number, Status: bracketry.MatchStatus(r.Status),
		Opponent1: o1.toOpponent(), Opponent2: o2.toOpponent(),
	}
}

type matchGameTable struct{ db *sqlx.DB }

func (t *matchGameTable) Select(ctx context.Context, filter storage.Filter[bracketry.MatchGame]) ([]bracketry.MatchGame, error) {
	var rows []matchGameRow
	var err error
	if id, ok := filter.ID(); ok {
		err = t.db.SelectContext(ctx, &rows, "SELECT * FROM match_games WHERE id = ?", id)
	} else if partial, ok := filter.Partial(); ok && partial.ParentID != 0 {
		err = t.db.SelectContext(ctx, &rows, "SELECT * FROM match_games WHERE parent_id = ? ORDER BY number ASC", partial.ParentID)
	} else {
		err = t.db.SelectContext(ctx, &rows, "SELECT * FROM match_games ORDER BY id ASC")
	}
	if err != nil {
		return nil, wrapStorageErr("select match games", err)
	}
	out := make([]bracketry.MatchGame, len(rows))
	for i, r := range rows {
		out[i] = r.toDomain()
	}
	return out, nil
}

func (t *matchGameTable) Insert(ctx context.Context, records ...bracketry.MatchGame) ([]int64, error) {
	ids := make([]int64, len(records))
	for i, rec := range records {
		res, err := t.db.NamedExecContext(ctx, `INSERT INTO match_games
			(parent_id, number, status,
			 opponent1_kind, opponent1_position, opponent1_participant_id, opponent1_score, opponent1_result, opponent1_forfeit,
			 opponent2_kind, opponent2_position, opponent2_participant_id, opponent2_score, opponent2_result, opponent2_forfeit)
			VALUES
			(:parent_id, :number, :status,
			 :opponent1_kind, :opponent1_position, :opponent1_participant_id, :opponent1_score, :opponent1_result, :opponent1_forfeit,
			 :opponent2_kind, :opponent2_position, :opponent2_participant_id, :opponent2_score, :opponent2_result, :opponent2_forfeit)`,
			fromMatchGame(rec))
		if err != nil {
			return nil, wrapStorageErr("insert match game", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, wrapStorageErr("read inserted match game id", err)
		}
		ids[i] = id
	}
	return ids, nil
}

func (t *matchGameTable) Update(ctx context.Context, filter storage.Filter[bracketry.MatchGame], patch bracketry.MatchGame) (bool, error) {
	id, ok := filter.ID()
	if !ok {
		return false, bracketry.NewError(bracketry.ErrInvalidInput, "match_games.Update requires an ID filter")
	}
	row := fromMatchGame(patch)
	row.ID = id
	res, err := t.db.NamedExecContext(ctx, `UPDATE match_games SET
		number = :number, status = :status,
		opponent1_kind = :opponent1_kind, opponent1_position = :opponent1_position,
		opponent1_participant_id = :opponent1_participant_id, opponent1_score = :opponent1_score,
		opponent1_result = :opponent1_result, opponent1_forfeit = :opponent1_forfeit,
		opponent2_kind = :opponent2_kind, opponent2_position = :opponent2_position,
		opponent2_participant_id = :opponent2_participant_id, opponent2_score = :opponent2_score,
		opponent2_result = :opponent2_result, opponent2_forfeit = :opponent2_forfeit
		WHERE id = :id`, row)
	if err != nil {
		return false, wrapStorageErr("update match game", err)
	}
	n, err := res.RowsAffected()
	return n > 0, wrapStorageErr("read update match game result", err)
}

func (t *matchGameTable) Delete(ctx context.Context, filter storage.Filter[bracketry.MatchGame]) (bool, error) {
	id, ok := filter.ID()
	if !ok {
		return false, bracketry.NewError(bracketry.ErrInvalidInput, "match_games.Delete requires an ID filter")
	}
	res, err := t.db.ExecContext(ctx, "DELETE FROM match_games WHERE id = ?", id)
	if err != nil {
		return false, wrapStorageErr("delete match game", err)
	}
	n, err := res.RowsAffected()
	return n > 0, wrapStorageErr("read delete match game result", err)
}
