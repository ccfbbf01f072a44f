// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/pdiddy/bookfinder/pkg/types"
)

var favoritesCmd = &cobra.Command{
	Use:   "favorites",
	Short: "Manage saved works (list, toggle, remove, export)",
	Long: `Favorites manages the local store of saved works. Saved works keep the
snapshot taken when they were saved and stay listed without network access.`,
}

// --- list subcommand ---

var favoritesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved works, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		jsonOutput, _ := cmd.Flags().GetBool("json")
		return withApp(cmd, func(ctx context.Context, a *app) error {
			return runFavoritesList(ctx, a, cmd.OutOrStdout(), jsonOutput)
		})
	},
}

func runFavoritesList(ctx context.Context, a *app, w io.Writer, jsonOutput bool) error {
	entries, err := a.favorites.List(ctx)
	if err != nil {
		return err
	}
	if jsonOutput {
		return writeJSON(w, entries)
	}
	if len(entries) == 0 {
		fmt.Fprintln(w, "No favorites saved.")
		return nil
	}

	fmt.Fprintf(w, "%-4s %-45s %-25s %-5s %-20s %s\n", "#", "Title", "Author", "Year", "Saved", "ID")
	for i, e := range entries {
		fmt.Fprintf(w, "%-4d %-45s %-25s %-5s %-20s %s\n",
			i+1, truncate(e.Title, 45), truncate(e.Author, 25), yearString(e.PublishYear),
			e.SavedAt.Local().Format("2006-01-02 15:04"), e.ID)
	}
	fmt.Fprintf(w, "\n%d favorites\n", len(entries))
	return nil
}

// --- toggle subcommand ---

var favoritesToggleCmd = &cobra.Command{
	Use:   "toggle <id>",
	Short: "Save a work, or remove it if already saved",
	Long: `Toggle resolves the work's details first so the saved snapshot carries
the full record, then flips its saved state.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			return runFavoritesToggle(ctx, a, cmd.OutOrStdout(), args[0])
		})
	},
}

func runFavoritesToggle(ctx context.Context, a *app, w io.Writer, id string) error {
	work := a.resolver.Resolve(ctx, id)
	saved, err := a.favorites.Toggle(ctx, work)
	if err != nil {
		return err
	}
	if saved {
		fmt.Fprintf(w, "Saved %s (%s)\n", work.ID, work.Title)
	} else {
		fmt.Fprintf(w, "Removed %s\n", work.ID)
	}
	return nil
}

// --- remove subcommand ---

var favoritesRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove a saved work",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			return runFavoritesRemove(ctx, a, cmd.OutOrStdout(), args[0])
		})
	},
}

func runFavoritesRemove(ctx context.Context, a *app, w io.Writer, id string) error {
	id = types.CanonicalWorkID(id)
	saved, err := a.favorites.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !saved {
		fmt.Fprintf(w, "%s is not saved\n", id)
		return nil
	}
	if err := a.favorites.Remove(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(w, "Removed %s\n", id)
	return nil
}

// --- export subcommand ---

var favoritesExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export favorites to YAML and JSON",
	Long: `Export writes favorites.yaml and favorites.json into the --out directory.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("out")
		return withApp(cmd, func(ctx context.Context, a *app) error {
			return runFavoritesExport(ctx, a, cmd.OutOrStdout(), out)
		})
	},
}

func runFavoritesExport(ctx context.Context, a *app, w io.Writer, dir string) error {
	yamlPath, err := a.favorites.ExportYAML(ctx, dir)
	if err != nil {
		return err
	}
	jsonPath, err := a.favorites.ExportJSON(ctx, dir)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Exported to %s and %s\n", yamlPath, jsonPath)
	return nil
}

// --- shared helpers ---

func withApp(cmd *cobra.Command, fn func(context.Context, *app) error) error {
	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}

func init() {
	favoritesListCmd.Flags().Bool("json", false, "output as JSON")
	favoritesExportCmd.Flags().String("out", "export", "directory to write export files into")

	favoritesCmd.AddCommand(favoritesListCmd)
	favoritesCmd.AddCommand(favoritesToggleCmd)
	favoritesCmd.AddCommand(favoritesRemoveCmd)
	favoritesCmd.AddCommand(favoritesExportCmd)
	rootCmd.AddCommand(favoritesCmd)
}
