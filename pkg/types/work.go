// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for bookfinder: the canonical
// Work record, its saved-state projection, favorites entries, and
// configuration.
package types

import (
	"strings"
	"time"
)

// WorkKeyPrefix is the path wrapper Open Library puts around work keys
// (e.g. "/works/OL468516W").
const WorkKeyPrefix = "/works/"

// UnknownTitle is the title given to a work whose detail record carries none.
const UnknownTitle = "Unknown Title"

// Work is a single bibliographic entity returned by the catalog. Optional
// fields use their zero value for "absent".
type Work struct {
	// ID is the opaque catalog key and the primary key everywhere,
	// including the favorites store.
	ID string `json:"id" yaml:"id"`

	// Title is always set on detail records; search records may carry "".
	Title string `json:"title" yaml:"title"`

	// Author is the best-effort primary author name.
	Author string `json:"author,omitempty" yaml:"author,omitempty"`

	// CoverURL is derived from a numeric cover id, never stored remotely.
	CoverURL string `json:"cover_url,omitempty" yaml:"cover_url,omitempty"`

	// PublishYear is a best-effort four-digit year.
	PublishYear int `json:"publish_year,omitempty" yaml:"publish_year,omitempty"`

	// Description is populated only by detail resolution.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// WorkView is a Work joined with the favorites store at read time.
type WorkView struct {
	Work
	IsSaved bool `json:"is_saved" yaml:"is_saved"`
}

// FavoriteEntry is one row of the local favorites store.
type FavoriteEntry struct {
	ID          string    `json:"id" yaml:"id"`
	Title       string    `json:"title" yaml:"title"`
	Author      string    `json:"author,omitempty" yaml:"author,omitempty"`
	CoverURL    string    `json:"cover_url,omitempty" yaml:"cover_url,omitempty"`
	PublishYear int       `json:"publish_year,omitempty" yaml:"publish_year,omitempty"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	SavedAt     time.Time `json:"saved_at" yaml:"saved_at"`
}

// NewFavoriteEntry snapshots w for storage at savedAt.
func NewFavoriteEntry(w Work, savedAt time.Time) FavoriteEntry {
	return FavoriteEntry{
		ID:          w.ID,
		Title:       w.Title,
		Author:      w.Author,
		CoverURL:    w.CoverURL,
		PublishYear: w.PublishYear,
		Description: w.Description,
		SavedAt:     savedAt,
	}
}

// Work returns the stored snapshot as a Work.
func (e FavoriteEntry) Work() Work {
	return Work{
		ID:          e.ID,
		Title:       e.Title,
		Author:      e.Author,
		CoverURL:    e.CoverURL,
		PublishYear: e.PublishYear,
		Description: e.Description,
	}
}

// WorkKey strips the "/works/" wrapper from id, returning the bare key used
// in detail URLs. Surrounding whitespace is ignored.
func WorkKey(id string) string {
	return strings.TrimPrefix(strings.TrimSpace(id), WorkKeyPrefix)
}

// CanonicalWorkID returns the prefixed form of id. It is idempotent.
func CanonicalWorkID(id string) string {
	return WorkKeyPrefix + WorkKey(id)
}
