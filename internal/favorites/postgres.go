// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package favorites

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pdiddy/bookfinder/pkg/types"
)

// PostgresRepository stores favorites in PostgreSQL, for setups that keep
// the store on a shared database instead of a local file.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository connects to dsn, verifies the connection and creates
// the schema if it does not exist.
func NewPostgresRepository(ctx context.Context, dsn string) (*PostgresRepository, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("creating db pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	r := &PostgresRepository{db: pool}
	if err := r.createSchema(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return r, nil
}

// NewPostgresRepositoryFromPool wraps an existing pool. The schema must
// already exist or be created with EnsureSchema.
func NewPostgresRepositoryFromPool(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: pool}
}

// EnsureSchema creates the favorites table if needed.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	return r.createSchema(ctx)
}

// Close releases the pool.
func (r *PostgresRepository) Close() error {
	r.db.Close()
	return nil
}

func (r *PostgresRepository) createSchema(ctx context.Context) error {
	const schemaSQL = `
		CREATE TABLE IF NOT EXISTS favorites (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			author TEXT,
			cover_url TEXT,
			publish_year INTEGER,
			description TEXT,
			saved_at TIMESTAMPTZ NOT NULL
		)`
	if _, err := r.db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("executing schema statement: %w", err)
	}
	return nil
}

// List returns all favorites, newest first.
func (r *PostgresRepository) List(ctx context.Context) ([]types.FavoriteEntry, error) {
	const listSQL = `
		SELECT id, title, COALESCE(author, ''), COALESCE(cover_url, ''),
			COALESCE(publish_year, 0), COALESCE(description, ''), saved_at
		FROM favorites
		ORDER BY saved_at DESC, id`
	rows, err := r.db.Query(ctx, listSQL)
	if err != nil {
		return nil, fmt.Errorf("querying favorites: %w", err)
	}
	defer rows.Close()

	var entries []types.FavoriteEntry
	for rows.Next() {
		var e types.FavoriteEntry
		if err := rows.Scan(&e.ID, &e.Title, &e.Author, &e.CoverURL, &e.PublishYear, &e.Description, &e.SavedAt); err != nil {
			return nil, fmt.Errorf("scanning favorite: %w", err)
		}
		e.SavedAt = e.SavedAt.UTC()
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating favorites: %w", err)
	}
	return entries, nil
}

// Upsert writes e, replacing any entry with the same id.
func (r *PostgresRepository) Upsert(ctx context.Context, e types.FavoriteEntry) error {
	const upsertSQL = `
		INSERT INTO favorites (id, title, author, cover_url, publish_year, description, saved_at)
		VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), NULLIF($5, 0), NULLIF($6, ''), $7)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title, author = EXCLUDED.author, cover_url = EXCLUDED.cover_url,
			publish_year = EXCLUDED.publish_year, description = EXCLUDED.description,
			saved_at = EXCLUDED.saved_at`
	_, err := r.db.Exec(ctx, upsertSQL,
		e.ID, e.Title, e.Author, e.CoverURL, e.PublishYear, e.Description, e.SavedAt)
	if err != nil {
		return fmt.Errorf("upserting favorite %s: %w", e.ID, err)
	}
	return nil
}

// Delete removes id.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM favorites WHERE id = $1`, id); err != nil {
		return fmt.Errorf("deleting favorite %s: %w", id, err)
	}
	return nil
}

// Exists reports whether id is saved.
func (r *PostgresRepository) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM favorites WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking favorite %s: %w", id, err)
	}
	return exists, nil
}
