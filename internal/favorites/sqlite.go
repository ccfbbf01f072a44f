// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package favorites

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/bookfinder/pkg/types"
)

// SQLiteRepository stores favorites in a local SQLite database file, so
// saved works stay visible offline.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository opens or creates the database at path and creates the
// schema if it does not exist.
func NewSQLiteRepository(path string) (*SQLiteRepository, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating favorites directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	r := &SQLiteRepository{db: db}
	if err := r.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return r, nil
}

// Close releases the database connection.
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func (r *SQLiteRepository) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS favorites (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			author TEXT,
			cover_url TEXT,
			publish_year INTEGER,
			description TEXT,
			saved_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_favorites_saved_at ON favorites(saved_at)`,
	}
	for _, stmt := range statements {
		if _, err := r.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// List returns all favorites, newest first.
func (r *SQLiteRepository) List(ctx context.Context) ([]types.FavoriteEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, title, COALESCE(author, ''), COALESCE(cover_url, ''),
			COALESCE(publish_year, 0), COALESCE(description, ''), saved_at
		FROM favorites
		ORDER BY saved_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("querying favorites: %w", err)
	}
	defer rows.Close()

	var entries []types.FavoriteEntry
	for rows.Next() {
		var (
			e       types.FavoriteEntry
			savedAt int64
		)
		if err := rows.Scan(&e.ID, &e.Title, &e.Author, &e.CoverURL, &e.PublishYear, &e.Description, &savedAt); err != nil {
			return nil, fmt.Errorf("scanning favorite: %w", err)
		}
		e.SavedAt = time.Unix(0, savedAt).UTC()
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating favorites: %w", err)
	}
	return entries, nil
}

// Upsert writes e, replacing any entry with the same id.
func (r *SQLiteRepository) Upsert(ctx context.Context, e types.FavoriteEntry) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO favorites (id, title, author, cover_url, publish_year, description, saved_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			title=excluded.title, author=excluded.author, cover_url=excluded.cover_url,
			publish_year=excluded.publish_year, description=excluded.description,
			saved_at=excluded.saved_at`,
		e.ID, e.Title, nullString(e.Author), nullString(e.CoverURL),
		nullInt(e.PublishYear), nullString(e.Description), e.SavedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("upserting favorite %s: %w", e.ID, err)
	}
	return nil
}

// Delete removes id.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM favorites WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting favorite %s: %w", id, err)
	}
	return nil
}

// Exists reports whether id is saved.
func (r *SQLiteRepository) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM favorites WHERE id = ?)`, id,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking favorite %s: %w", id, err)
	}
	return exists, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt(n int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(n), Valid: n != 0}
}
