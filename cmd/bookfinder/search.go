// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/bookfinder/internal/favorites"
	"github.com/pdiddy/bookfinder/internal/paging"
	"github.com/pdiddy/bookfinder/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search <title>",
	Short: "Search the catalog by title",
	Long: `Search queries the catalog for works whose title matches, loading up to
--pages pages of results. Works already in favorites are marked with *.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pages, _ := cmd.Flags().GetInt("pages")
		jsonOutput, _ := cmd.Flags().GetBool("json")

		ctx := cmd.Context()
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		return runSearch(ctx, a, cmd.OutOrStdout(), strings.Join(args, " "), pages, jsonOutput)
	},
}

func init() {
	searchCmd.Flags().Int("pages", 1, "number of result pages to load")
	searchCmd.Flags().Bool("json", false, "output results as JSON")

	rootCmd.AddCommand(searchCmd)
}

// searchOutput is the JSON shape of a search.
type searchOutput struct {
	Query    string           `json:"query"`
	NumFound int              `json:"num_found"`
	State    string           `json:"state"`
	NextPage int              `json:"next_page,omitempty"`
	Error    string           `json:"error,omitempty"`
	Works    []types.WorkView `json:"works"`
}

func runSearch(ctx context.Context, a *app, w io.Writer, title string, pages int, jsonOutput bool) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("title cannot be blank")
	}
	if pages < 1 {
		pages = 1
	}

	sess := a.engine.Start(ctx, title, nil)
	defer sess.Close()

	for range pages {
		if err := sess.LoadMore(ctx); err != nil {
			break
		}
		if sess.Snapshot().State != paging.Idle {
			break
		}
	}
	snap := sess.Snapshot()

	saved, err := a.favorites.List(ctx)
	if err != nil {
		return err
	}
	views := favorites.Annotate(snap.Works, saved)

	if jsonOutput {
		out := searchOutput{
			Query:    snap.Query,
			NumFound: snap.NumFound,
			State:    snap.State.String(),
			Works:    views,
		}
		if snap.State == paging.Idle {
			out.NextPage = snap.Page
		}
		if snap.Err != nil {
			out.Error = snap.Err.Error()
		}
		if err := writeJSON(w, out); err != nil {
			return err
		}
	} else {
		if len(views) == 0 && snap.State != paging.Error {
			fmt.Fprintln(w, "No results found.")
			return nil
		}
		printWorkTable(w, views)
		printSnapshotFooter(w, snap)
	}

	if snap.State == paging.Error && len(views) == 0 {
		return fmt.Errorf("search failed: %w", snap.Err)
	}
	return nil
}
