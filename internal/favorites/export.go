// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package favorites

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/bookfinder/pkg/types"
)

// Export file names written by ExportYAML and ExportJSON.
const (
	ExportYAMLFile = "favorites.yaml"
	ExportJSONFile = "favorites.json"
)

// ExportEntry is one favorite as written to an export file.
type ExportEntry struct {
	ID          string `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	Author      string `json:"author,omitempty" yaml:"author,omitempty"`
	CoverURL    string `json:"cover_url,omitempty" yaml:"cover_url,omitempty"`
	PublishYear int    `json:"publish_year,omitempty" yaml:"publish_year,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	SavedAt     string `json:"saved_at" yaml:"saved_at"`
}

// ExportYAML writes every favorite to dir/favorites.yaml and returns the path.
func (s *Service) ExportYAML(ctx context.Context, dir string) (string, error) {
	entries, err := s.exportEntries(ctx)
	if err != nil {
		return "", err
	}
	data, err := yaml.Marshal(entries)
	if err != nil {
		return "", fmt.Errorf("marshaling YAML: %w", err)
	}
	return writeExport(dir, ExportYAMLFile, data)
}

// ExportJSON writes every favorite to dir/favorites.json and returns the path.
func (s *Service) ExportJSON(ctx context.Context, dir string) (string, error) {
	entries, err := s.exportEntries(ctx)
	if err != nil {
		return "", err
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling JSON: %w", err)
	}
	return writeExport(dir, ExportJSONFile, data)
}

func (s *Service) exportEntries(ctx context.Context) ([]ExportEntry, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing favorites for export: %w", err)
	}
	entries := make([]ExportEntry, len(list))
	for i, e := range list {
		entries[i] = toExportEntry(e)
	}
	return entries, nil
}

func toExportEntry(e types.FavoriteEntry) ExportEntry {
	return ExportEntry{
		ID:          e.ID,
		Title:       e.Title,
		Author:      e.Author,
		CoverURL:    e.CoverURL,
		PublishYear: e.PublishYear,
		Description: e.Description,
		SavedAt:     e.SavedAt.UTC().Format(time.RFC3339),
	}
}

func writeExport(dir, name string, data []byte) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating export directory: %w", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}
