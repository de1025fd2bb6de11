// Package storage defines the §6.2 persistence contract. The core library
// never inspects storage-specific error shapes — any failure crossing this
// boundary is wrapped as bracketry.ErrStorageError by the storage
// implementation — and never
// assumes transactional semantics: a multi-record mutation (e.g. a match
// update touching several successors) is issued as several independent calls
// in dependency order (§5).
package storage

import (
	"context"

	"github.com/coinflip-gg/bracketry"
)

// Filter selects records within a table: either every record (zero value),
// a single record by ID, or every record matching a partial record (every
// non-zero field of Partial must match).
type Filter[T any] struct {
	id      int64
	hasID   bool
	partial T
	hasPart bool
}

// All matches every record in the table.
func All[T any]() Filter[T] { return Filter[T]{} }

// ByID matches the single record with the given id.
func ByID[T any](id int64) Filter[T] { return Filter[T]{id: id, hasID: true} }

// ByPartial matches every record whose fields agree with the non-zero fields
// of partial.
func ByPartial[T any](partial T) Filter[T] { return Filter[T]{partial: partial, hasPart: true} }

// ID reports the id and whether the filter is an ID filter.
func (f Filter[T]) ID() (int64, bool) { return f.id, f.hasID }

// Partial reports the partial record and whether the filter is a partial filter.
func (f Filter[T]) Partial() (T, bool) { return f.partial, f.hasPart }

// Table is the generic CRUD surface for one of the §3 entity tables.
// Storage assigns IDs on Insert.
type Table[T any] interface {
	Select(ctx context.Context, filter Filter[T]) ([]T, error)
	Insert(ctx context.Context, records ...T) ([]int64, error)
	Update(ctx context.Context, filter Filter[T], patch T) (bool, error)
	Delete(ctx context.Context, filter Filter[T]) (bool, error)
}

type (
	TournamentTable  = Table[bracketry.Tournament]
	StageTable       = Table[bracketry.Stage]
	GroupTable       = Table[bracketry.Group]
	RoundTable       = Table[bracketry.Round]
	MatchTable       = Table[bracketry.Match]
	MatchGameTable   = Table[bracketry.MatchGame]
	ParticipantTable = Table[bracketry.Participant]
)

// Storage is the full §6.2 persistence contract the manager is constructed
// with. Implementations are free to back it with any engine; sqlitestore
// is the reference implementation shipped in this module.
type Storage interface {
	Tournaments() TournamentTable
	Stages() StageTable
	Groups() GroupTable
	Rounds() RoundTable
	Matches() MatchTable
	MatchGames() MatchGameTable
	Participants() ParticipantTable
}
