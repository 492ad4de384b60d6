// Package localstore implements the browser-cache analogue of the system: a
// SQLite-resident mirror of the remote collections plus per-collection sync
// metadata. The store is a disposable projection, always rebuildable from
// the remote store and replaced wholesale on every full resync.
package localstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/jakir-hossen-4928/jakir-hossen-dev/internal/common"
	"github.com/jakir-hossen-4928/jakir-hossen-dev/internal/dbx"
	"github.com/jakir-hossen-4928/jakir-hossen-dev/internal/portfolio/localstore/migrations"
)

// Record is one mirrored document: the entity normalized and encoded as JSON.
type Record struct {
	ID      string
	Payload []byte
}

// Meta is one row of sync metadata, keyed per collection.
type Meta struct {
	Key      string
	LastSync time.Time
	Version  int
}

// Store owns the SQLite handle. Any number of goroutines may use it; the
// only mutual-exclusion guarantee is the per-collection replace transaction.
type Store struct {
	db *sql.DB
}

func runMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// Open opens (creating if needed) the cache database at dsn and applies
// schema migrations. Use ":memory:" for tests.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON;"); err != nil {
		_ = db.Close()
		return nil, err
	}

	if err := runMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// List returns a collection's records in mirror order.
func (s *Store) List(ctx context.Context, collection string) ([]Record, error) {
	query := `SELECT id, payload FROM records WHERE collection = ? ORDER BY position`
	rows, err := s.db.QueryContext(ctx, query, collection)
	if err != nil {
		return nil, fmt.Errorf("failed to select records: %w", err)
	}
	defer rows.Close()

	var result []Record
	for rows.Next() {
		var item Record
		if err := rows.Scan(&item.ID, &item.Payload); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Get returns a single record or common.ErrNotFound.
func (s *Store) Get(ctx context.Context, collection, id string) (*Record, error) {
	query := `SELECT id, payload FROM records WHERE collection = ? AND id = ?`
	row := s.db.QueryRowContext(ctx, query, collection, id)

	r := &Record{}
	if err := row.Scan(&r.ID, &r.Payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("query row scan failed: %w", err)
	}
	return r, nil
}

// Count reports how many records the collection holds.
func (s *Store) Count(ctx context.Context, collection string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM records WHERE collection = ?`, collection).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return n, nil
}

// Put upserts a single record. New records are placed after existing ones;
// existing records keep their position.
func (s *Store) Put(ctx context.Context, collection, id string, payload []byte) error {
	query := `
		INSERT INTO records (collection, id, position, payload)
		VALUES (?, ?, (SELECT COALESCE(MAX(position), -1) + 1 FROM records WHERE collection = ?), ?)
		ON CONFLICT(collection, id) DO UPDATE SET payload = excluded.payload
	`
	_, err := s.db.ExecContext(ctx, query, collection, id, collection, payload)
	if err != nil {
		return fmt.Errorf("failed to upsert record: %w", err)
	}
	return nil
}

// Delete removes a single record. Deleting an absent record is not an error.
func (s *Store) Delete(ctx context.Context, collection, id string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM records WHERE collection = ? AND id = ?`, collection, id)
	if err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	return nil
}

// ReplaceAll clears the collection, bulk-inserts recs in order, and touches
// the sync metadata for key in one transaction, so concurrent readers see
// either the old generation or the new one, never an intermediate state.
func (s *Store) ReplaceAll(ctx context.Context, collection, key string, recs []Record) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM records WHERE collection = ?`, collection); err != nil {
			return fmt.Errorf("failed to clear collection: %w", err)
		}
		for i, r := range recs {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO records (collection, id, position, payload) VALUES (?, ?, ?, ?)`,
				collection, r.ID, i, r.Payload); err != nil {
				return fmt.Errorf("failed to insert record: %w", err)
			}
		}
		return touchMetadata(ctx, tx, key, time.Now())
	})
}

// Metadata returns the sync metadata for key, or (nil, nil) when no row
// exists. Absence means "never synced".
func (s *Store) Metadata(ctx context.Context, key string) (*Meta, error) {
	var lastSync string
	m := &Meta{Key: key}
	err := s.db.QueryRowContext(ctx,
		`SELECT last_sync, version FROM cache_metadata WHERE key = ?`, key).
		Scan(&lastSync, &m.Version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get metadata[%s]: %w", key, err)
	}
	t, err := time.Parse(time.RFC3339Nano, lastSync)
	if err != nil {
		return nil, fmt.Errorf("failed to parse metadata[%s]: %w", key, err)
	}
	m.LastSync = t
	return m, nil
}

// TouchMetadata unconditionally overwrites the metadata row for key with
// the given sync time and version 1.
func (s *Store) TouchMetadata(ctx context.Context, key string, at time.Time) error {
	return touchMetadata(ctx, s.db, key, at)
}

func touchMetadata(ctx context.Context, db dbx.DBTX, key string, at time.Time) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO cache_metadata (key, last_sync, version) VALUES (?, ?, 1)
		ON CONFLICT(key) DO UPDATE SET last_sync = excluded.last_sync, version = excluded.version
	`, key, at.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to touch metadata[%s]: %w", key, err)
	}
	return nil
}

// DeleteMetadata drops the metadata row for key, forcing the next staleness
// check to report stale.
func (s *Store) DeleteMetadata(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM cache_metadata WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("failed to delete metadata[%s]: %w", key, err)
	}
	return nil
}
