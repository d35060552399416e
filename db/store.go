// Package db persists artifact blobs in a SQL database so a deployment can
// ship model, scaler and feature names as rows instead of loose files.
package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

var ErrNotFound = errors.New("artifact not found")

var schemas = map[string]string{
	"sqlite3": `
    CREATE TABLE IF NOT EXISTS artifacts (
        name TEXT PRIMARY KEY,
        payload BLOB NOT NULL,
        updated_at DATETIME NOT NULL
    );`,
	"postgres": `
    CREATE TABLE IF NOT EXISTS artifacts (
        name TEXT PRIMARY KEY,
        payload BYTEA NOT NULL,
        updated_at TIMESTAMPTZ NOT NULL
    );`,
}

// Artifact is one stored row.
type Artifact struct {
	Name      string    `db:"name"`
	Payload   []byte    `db:"payload"`
	UpdatedAt time.Time `db:"updated_at"`
}

type Store struct {
	db *sqlx.DB
}

// Open connects with driver "sqlite3" or "postgres" and creates the schema.
func Open(driver, dsn string) (*Store, error) {
	schema, ok := schemas[driver]
	if !ok {
		return nil, errors.Errorf("unsupported artifact store driver %q", driver)
	}
	conn, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open artifact store")
	}
	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "create artifact schema")
	}
	return &Store{db: conn}, nil
}

func (s *Store) Put(ctx context.Context, name string, payload []byte) error {
	if name == "" {
		return errors.New("artifact name is required")
	}
	query := s.db.Rebind(`
        INSERT INTO artifacts (name, payload, updated_at) VALUES (?, ?, ?)
        ON CONFLICT (name) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`)
	_, err := s.db.ExecContext(ctx, query, name, payload, time.Now().UTC())
	return errors.Wrapf(err, "put artifact %s", name)
}

func (s *Store) Get(ctx context.Context, name string) ([]byte, error) {
	var payload []byte
	err := s.db.GetContext(ctx, &payload, s.db.Rebind(`SELECT payload FROM artifacts WHERE name = ?`), name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.Wrap(ErrNotFound, name)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "get artifact %s", name)
	}
	return payload, nil
}

func (s *Store) List(ctx context.Context) ([]Artifact, error) {
	var rows []Artifact
	err := s.db.SelectContext(ctx, &rows, `SELECT name, payload, updated_at FROM artifacts ORDER BY name`)
	if err != nil {
		return nil, errors.Wrap(err, "list artifacts")
	}
	return rows, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
