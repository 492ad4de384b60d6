package docstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"

	"github.com/goccy/go-json"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/jakir-hossen-4928/jakir-hossen-dev/internal/common"
	"github.com/jakir-hossen-4928/jakir-hossen-dev/internal/docstore/migrations"
)

// orderByPattern restricts OrderBy to plain field names. The field is
// interpolated into the ORDER BY clause, so anything else is rejected.
var orderByPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// PostgresBackend stores documents in a single jsonb-valued table keyed by
// (collection, id).
type PostgresBackend struct {
	db *sql.DB
}

var _ Backend = (*PostgresBackend)(nil)

// NewPostgresBackend opens the database, runs the embedded goose migrations
// and returns a ready backend.
func NewPostgresBackend(ctx context.Context, dsn string) (*PostgresBackend, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	b := &PostgresBackend{db: db}
	if err := b.runMigrations(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}
	return b, nil
}

func (b *PostgresBackend) runMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return goose.UpContext(ctx, b.db, ".")
}

func (b *PostgresBackend) List(ctx context.Context, collection string, opts ListOptions) ([]Document, error) {
	query := `SELECT id, data FROM documents WHERE collection = $1 ORDER BY `
	switch {
	case opts.OrderBy == "":
		query += "id"
	case orderByPattern.MatchString(opts.OrderBy):
		query += fmt.Sprintf("data->>'%s'", opts.OrderBy)
	default:
		return nil, fmt.Errorf("invalid order field: %q", opts.OrderBy)
	}
	if opts.Descending {
		query += " DESC"
	}
	query += ", id"

	rows, err := b.db.QueryContext(ctx, query, collection)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var (
			doc Document
			raw []byte
		)
		if err := rows.Scan(&doc.ID, &raw); err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		if err := json.Unmarshal(raw, &doc.Data); err != nil {
			return nil, fmt.Errorf("decoding document %s/%s: %w", collection, doc.ID, err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return docs, nil
}

func (b *PostgresBackend) Get(ctx context.Context, collection, id string) (Document, error) {
	row := b.db.QueryRowContext(ctx,
		`SELECT data FROM documents WHERE collection = $1 AND id = $2`, collection, id)

	var raw []byte
	if err := row.Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, common.ErrNotFound
		}
		return Document{}, fmt.Errorf("db error: %w", err)
	}

	doc := Document{ID: id}
	if err := json.Unmarshal(raw, &doc.Data); err != nil {
		return Document{}, fmt.Errorf("decoding document %s/%s: %w", collection, id, err)
	}
	return doc, nil
}

func (b *PostgresBackend) Set(ctx context.Context, collection, id string, data map[string]any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	_, err = b.db.ExecContext(ctx, `
		INSERT INTO documents (collection, id, data, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (collection, id)
		DO UPDATE SET data = EXCLUDED.data, updated_at = now();
	`, collection, id, raw)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Merge relies on the jsonb || operator for the shallow merge, so existing
// fields absent from data survive.
func (b *PostgresBackend) Merge(ctx context.Context, collection, id string, data map[string]any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	_, err = b.db.ExecContext(ctx, `
		INSERT INTO documents (collection, id, data, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (collection, id)
		DO UPDATE SET data = documents.data || EXCLUDED.data, updated_at = now();
	`, collection, id, raw)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (b *PostgresBackend) Delete(ctx context.Context, collection, id string) error {
	_, err := b.db.ExecContext(ctx,
		`DELETE FROM documents WHERE collection = $1 AND id = $2`, collection, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (b *PostgresBackend) Close() error {
	return b.db.Close()
}
