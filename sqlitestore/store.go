// Package sqlitestore is the reference storage.Storage implementation: a
// single SQLite database, accessed through sqlx, with its schema managed by
// golang-migrate. Every mutation crossing the storage.Table boundary wraps
// its error as bracketry.ErrStorageError — the core never inspects a
// driver-specific error shape (§6.2).
package sqlitestore

import (
	"embed"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/coinflip-gg/bracketry"
	"github.com/coinflip-gg/bracketry/storage"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store is the sqlx-backed storage.Storage.
type Store struct {
	db *sqlx.DB
}

// Connect opens dsn (a go-sqlite3 DSN, e.g. "bracketry.db?_journal_mode=WAL")
// and applies every pending migration.
func Connect(dsn string) (*Store, error) {
	db, err := sqlx.Connect("sqlite3", dsn)
	if err != nil {
		return nil, bracketry.WrapError(bracketry.ErrStorageError, "connect to sqlite", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON;"); err != nil {
		return nil, bracketry.WrapError(bracketry.ErrStorageError, "enable foreign keys", err)
	}
	if err := migrateUp(db); err != nil {
		return nil, err
	}
	slog.Info("sqlitestore connected", "dsn", dsn)
	return &Store{db: db}, nil
}

func migrateUp(db *sqlx.DB) error {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return bracketry.WrapError(bracketry.ErrStorageError, "load embedded migrations", err)
	}
	driver, err := sqlite3.WithInstance(db.DB, &sqlite3.Config{})
	if err != nil {
		return bracketry.WrapError(bracketry.ErrStorageError, "attach migration driver", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)
	if err != nil {
		return bracketry.WrapError(bracketry.ErrStorageError, "build migrator", err)
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return bracketry.WrapError(bracketry.ErrStorageError, "apply migrations", err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Tournaments() storage.TournamentTable   { return &tournamentTable{db: s.db} }
func (s *Store) Stages() storage.StageTable             { return &stageTable{db: s.db} }
func (s *Store) Groups() storage.GroupTable             { return &groupTable{db: s.db} }
func (s *Store) Rounds() storage.RoundTable             { return &roundTable{db: s.db} }
func (s *Store) Matches() storage.MatchTable            { return &matchTable{db: s.db} }
func (s *Store) MatchGames() storage.MatchGameTable     { return &matchGameTable{db: s.db} }
func (s *Store) Participants() storage.ParticipantTable { return &participantTable{db: s.db} }

func wrapStorageErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return bracketry.WrapError(bracketry.ErrStorageError, op, err)
}
