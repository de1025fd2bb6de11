package sqlitestore

import (
	"database/sql"

	"github.com/coinflip-gg/bracketry"
)

// opponentRow is the flattened shape one side of a Match or MatchGame takes
// in SQL: bracketry.Opponent is a tagged union (§9), and SQLite has no sum
// type, so every column set is present and only the ones matching Kind are
// meaningful.
type opponentRow struct {
	Kind          int            `db:"kind"`
	Position      int            `db:"position"`
	ParticipantID sql.NullInt64  `db:"participant_id"`
	Score         sql.NullInt64  `db:"score"`
	Result        sql.NullString `db:"result"`
	Forfeit       bool           `db:"forfeit"`
}

func fromOpponent(o bracketry.Opponent) opponentRow {
	row := opponentRow{Kind: int(o.Kind), Position: o.Position, Forfeit: o.Forfeit}
	if o.Kind == bracketry.OpponentParticipant {
		row.ParticipantID = sql.NullInt64{Int64: o.ParticipantID, Valid: true}
	}
	if o.Score != nil {
		row.Score = sql.NullInt64{Int64: int64(*o.Score), Valid: true}
	}
	if o.Result != nil {
		row.Result = sql.NullString{String: string(*o.Result), Valid: true}
	}
	return row
}

func (row opponentRow) toOpponent() bracketry.Opponent {
	o := bracketry.Opponent{
		Kind:     bracketry.OpponentKind(row.Kind),
		Position: row.Position,
		Forfeit:  row.Forfeit,
	}
	if row.ParticipantID.Valid {
		o.ParticipantID = row.ParticipantID.Int64
	}
	if row.Score.Valid {
		s := int(row.Score.Int64)
		o.Score = &s
	}
	if row.Result.Valid {
		r := bracketry.Result(row.Result.String)
		o.Result = &r
	}
	return o
}
