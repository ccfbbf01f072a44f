// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pdiddy/bookfinder/internal/paging"
	"github.com/pdiddy/bookfinder/pkg/types"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

func yearString(y int) string {
	if y == 0 {
		return "-"
	}
	return strconv.Itoa(y)
}

func savedMark(saved bool) string {
	if saved {
		return "*"
	}
	return " "
}

// printWorkTable writes one numbered row per work.
func printWorkTable(w io.Writer, views []types.WorkView) {
	fmt.Fprintf(w, "%-4s %-1s %-45s %-25s %-5s %s\n", "#", "", "Title", "Author", "Year", "ID")
	fmt.Fprintln(w, strings.Repeat("-", 100))
	for i, v := range views {
		title := v.Title
		if title == "" {
			title = "(untitled)"
		}
		fmt.Fprintf(w, "%-4d %-1s %-45s %-25s %-5s %s\n",
			i+1, savedMark(v.IsSaved), truncate(title, 45), truncate(v.Author, 25),
			yearString(v.PublishYear), v.ID)
	}
}

// printSnapshotFooter summarizes a search snapshot below its table.
func printSnapshotFooter(w io.Writer, snap paging.Snapshot) {
	switch snap.State {
	case paging.Error:
		fmt.Fprintf(w, "\n%d shown, page %d failed: %v\n", len(snap.Works), snap.Page, snap.Err)
	case paging.Loading:
		fmt.Fprintf(w, "\n%d shown, loading page %d...\n", len(snap.Works), snap.Page)
	case paging.Idle:
		fmt.Fprintf(w, "\n%d shown of %d found, more available\n", len(snap.Works), snap.NumFound)
	default:
		fmt.Fprintf(w, "\n%d shown of %d found\n", len(snap.Works), snap.NumFound)
	}
}

// printWorkDetail writes one resolved work.
func printWorkDetail(w io.Writer, v types.WorkView) {
	fmt.Fprintf(w, "%s\n", v.Title)
	fmt.Fprintf(w, "  id:      %s\n", v.ID)
	if v.Author != "" {
		fmt.Fprintf(w, "  author:  %s\n", v.Author)
	}
	if v.PublishYear != 0 {
		fmt.Fprintf(w, "  year:    %d\n", v.PublishYear)
	}
	if v.CoverURL != "" {
		fmt.Fprintf(w, "  cover:   %s\n", v.CoverURL)
	}
	fmt.Fprintf(w, "  saved:   %t\n", v.IsSaved)
	if v.Description != "" {
		fmt.Fprintf(w, "\n%s\n", v.Description)
	}
}
