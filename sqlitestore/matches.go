package sqlitestore

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/coinflip-gg/bracketry"
	"github.com/coinflip-gg/bracketry/storage"
)

type matchRow struct {
	ID         int64 `db:"id"`
	StageID    int64 `db:"stage_id"`
	GroupID    int64 `db:"group_id"`
	RoundID    int64 `db:"round_id"`
	Number     int   `db:"number"`
	Status     int   `db:"status"`
	ChildCount int   `db:"child_count"`

	Opponent1Kind          int             `db:"opponent1_kind"`
	Opponent1Position      int             `db:"opponent1_position"`
	Opponent1ParticipantID sql.NullInt64   `db:"opponent1_participant_id"`
	Opponent1Score         sql.NullInt64   `db:"opponent1_score"`
	Opponent1Result        sql.NullString  `db:"opponent1_result"`
	Opponent1Forfeit       bool            `db:"opponent1_forfeit"`

	Opponent2Kind          int             `db:"opponent2_kind"`
	Opponent2Position      int             `db:"opponent2_position"`
	Opponent2ParticipantID sql.NullInt64   `db:"opponent2_participant_id"`
	Opponent2Score         sql.NullInt64   `db:"opponent2_score"`
	Opponent2Result        sql.NullString  `db:"opponent2_result"`
	Opponent2Forfeit       bool            `db:"opponent2_forfeit"`
}

func fromMatch(m bracketry.Match) matchRow {
	o1, o2 := fromOpponent(m.Opponent1), fromOpponent(m.Opponent2)
	return matchRow{
		ID: m.ID, StageID: m.StageID, GroupID: m.GroupID, RoundID: m.RoundID,
		Number: m.Number, Status: int(m.Status), ChildCount: m.ChildCount,

		Opponent1Kind: o1.Kind, Opponent1Position: o1.Position, Opponent1ParticipantID: o1.ParticipantID,
		Opponent1Score: o1.Score, Opponent1Result: o1.Result, Opponent1Forfeit: o1.Forfeit,

		Opponent2Kind: o2.Kind, Opponent2Position: o2.Position, Opponent2ParticipantID: o2.ParticipantID,
		Opponent2Score: o2.Score, Opponent2Result: o2.Result, Opponent2Forfeit: o2.Forfeit,
	}
}

func (r matchRow) toDomain() bracketry.Match {
	o1 := opponentRow{Kind: r.Opponent1Kind, Position: r.Opponent1Position, ParticipantID: r.Opponent1ParticipantID,
		Score: r.Opponent1Score, Result: r.Opponent1Result, Forfeit: r.Opponent1Forfeit}
	o2 := opponentRow{Kind: r.Opponent2Kind, Position: r.Opponent2Position, ParticipantID: r.Opponent2ParticipantID,
		Score: r.Opponent2Score, Result: r.Opponent2Result, Forfeit: r.Opponent2Forfeit}
	return bracketry.Match{
		ID: r.ID, StageID: r.StageID, GroupID: r.GroupID, RoundID: r.RoundID,
		Number: r.Number, Status: bracketry.MatchStatus(r.Status), ChildCount: r.ChildCount,
		Opponent1: o1.toOpponent(), Opponent2: o2.toOpponent(),
	}
}

type matchTable struct{ db *sqlx.DB }

func (t *matchTable) Select(ctx context.Context, filter storage.Filter[bracketry.Match]) ([]bracketry.Match, error) {
	var rows []matchRow
	var err error
	if id, ok := filter.ID(); ok {
		err = t.db.SelectContext(ctx, &rows, "SELECT * FROM matches WHERE id = ?", id)
	} else if partial, ok := filter.Partial(); ok && partial.RoundID != 0 {
		err = t.db.SelectContext(ctx, &rows, "SELECT * FROM matches WHERE round_id = ? ORDER BY number ASC", partial.RoundID)
	} else if partial, ok := filter.Partial(); ok && partial.GroupID != 0 {
		err = t.db.SelectContext(ctx, &rows, "SELECT * FROM matches WHERE group_id = ? ORDER BY round_id ASC, number ASC", partial.GroupID)
	} else if partial, ok := filter.Partial(); ok && partial.StageID != 0 {
		err = t.db.SelectContext(ctx, &rows, "SELECT * FROM matches WHERE stage_id = ? ORDER BY group_id ASC, round_id ASC, number ASC", partial.StageID)
	} else {
		err = t.db.SelectContext(ctx, &rows, "SELECT * FROM matches ORDER BY id ASC")
	}
	if err != nil {
		return nil, wrapStorageErr("select matches", err)
	}
	out := make([]bracketry.Match, len(rows))
	for i, r := range rows {
		out[i] = r.toDomain()
	}
	return out, nil
}

func (t *matchTable) Insert(ctx context.Context, records ...bracketry.Match) ([]int64, error) {
	ids := make([]int64, len(records))
	for i, rec := range records {
		res, err := t.db.NamedExecContext(ctx, `INSERT INTO matches
			(stage_id, group_id, round_id, number, status, child_count,
			 opponent1_kind, opponent1_position, opponent1_participant_id, opponent1_score, opponent1_result, opponent1_forfeit,
			 opponent2_kind, opponent2_position, opponent2_participant_id, opponent2_score, opponent2_result, opponent2_forfeit)
			VALUES
			(:stage_id, :group_id, :round_id, :number, :status, :child_count,
			 :opponent1_kind, :opponent1_position, :opponent1_participant_id, :opponent1_score, :opponent1_result, :opponent1_forfeit,
			 :opponent2_kind, :opponent2_position, :opponent2_participant_id, :opponent2_score, :opponent2_result, :opponent2_forfeit)`,
			fromMatch(rec))
		if err != nil {
			return nil, wrapStorageErr("insert match", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, wrapStorageErr("read inserted match id", err)
		}
		ids[i] = id
	}
	return ids, nil
}

func (t *matchTable) Update(ctx context.Context, filter storage.Filter[bracketry.Match], patch bracketry.Match) (bool, error) {
	id, ok := filter.ID()
	if !ok {
		return false, bracketry.NewError(bracketry.ErrInvalidInput, "matches.Update requires an ID filter")
	}
	row := fromMatch(patch)
	row.ID = id
	res, err := t.db.NamedExecContext(ctx, `UPDATE matches SET
		number = :number, status = :status, child_count = :child_count,
		opponent1_kind = :opponent1_kind, opponent1_position = :opponent1_position,
		opponent1_participant_id = :opponent1_participant_id, opponent1_score = :opponent1_score,
		opponent1_result = :opponent1_result, opponent1_forfeit = :opponent1_forfeit,
		opponent2_kind = :opponent2_kind, opponent2_position = :opponent2_position,
		opponent2_participant_id = :opponent2_participant_id, opponent2_score = :opponent2_score,
		opponent2_result = :opponent2_result, opponent2_forfeit = :opponent2_forfeit
		WHERE id = :id`, row)
	if err != nil {
		return false, wrapStorageErr("update match", err)
	}
	n, err := res.RowsAffected()
	return n > 0, wrapStorageErr("read update match result", err)
}

func (t *matchTable) Delete(ctx context.Context, filter storage.Filter[bracketry.Match]) (bool, error) {
	id, ok := filter.ID()
	if !ok {
		return false, bracketry.NewError(bracketry.ErrInvalidInput, "matches.Delete requires an ID filter")
	}
	res, err := t.db.ExecContext(ctx, "DELETE FROM matches WHERE id = ?", id)
	if err != nil {
		return false, wrapStorageErr("delete match", err)
	}
	n, err := res.RowsAffected()
	return n > 0, wrapStorageErr("read delete match result", err)
}
