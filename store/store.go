// Package store persists posts, versions, spaces and users in sqlite.
// It owns every SQL statement in the repository; business rules live
// in the service package.
package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

// Open connects to the sqlite database at dataSourceName and runs the
// schema migrations from migrationsURL (e.g. "file://db/migrations").
// migrate.ErrNoChange is not an error.
//
// sqlite allows a single writer; limiting the pool to one connection
// serializes the read-max-then-insert sections for version numbers and
// slugs without any further locking.
func Open(dataSourceName, migrationsURL string) (*Store, error) {
	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, err
	}

	driver, err := sqlite.WithInstance(db, &sqlite.Config{})
	if err != nil {
		db.Close()
		return nil, err
	}
	m, err := migrate.NewWithDatabaseInstance(migrationsURL, "sqlite", driver)
	if err != nil {
		db.Close()
		return nil, err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Ping reports database reachability for health checks.
func (s *Store) Ping() error {
	return s.db.Ping()
}

func now() time.Time {
	return time.Now().UTC()
}
