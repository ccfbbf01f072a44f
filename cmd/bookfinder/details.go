// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/bookfinder/pkg/types"
)

// detailsConcurrency bounds parallel detail requests.
const detailsConcurrency = 4

var detailsCmd = &cobra.Command{
	Use:   "details <id>...",
	Short: "Resolve works by id",
	Long: `Details fetches each work by id ("OL45804W" or "/works/OL45804W") and
prints the canonical record with its saved state. A work that cannot be
fetched is shown as "Unknown Title".`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		jsonOutput, _ := cmd.Flags().GetBool("json")

		ctx := cmd.Context()
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		return runDetails(ctx, a, cmd.OutOrStdout(), args, jsonOutput)
	},
}

func init() {
	detailsCmd.Flags().Bool("json", false, "output results as JSON")

	rootCmd.AddCommand(detailsCmd)
}

func runDetails(ctx context.Context, a *app, w io.Writer, ids []string, jsonOutput bool) error {
	views := make([]types.WorkView, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(detailsConcurrency)
	for i, id := range ids {
		g.Go(func() error {
			v, err := a.resolver.View(gctx, id, a.favorites)
			if err != nil {
				return err
			}
			views[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if jsonOutput {
		return writeJSON(w, views)
	}
	for i, v := range views {
		if i > 0 {
			fmt.Fprintln(w)
		}
		printWorkDetail(w, v)
	}
	return nil
}
