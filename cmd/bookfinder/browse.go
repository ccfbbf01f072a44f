// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/bookfinder/internal/favorites"
	"github.com/pdiddy/bookfinder/internal/paging"
	"github.com/pdiddy/bookfinder/internal/session"
	"github.com/pdiddy/bookfinder/internal/stream"
	"github.com/pdiddy/bookfinder/pkg/types"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Interactive search session reading commands from stdin",
	Long: `Browse reads lines from stdin. A plain line replaces the query; the search
starts once typing pauses for the debounce window. Lines starting with a
colon are commands:

  :more       load the next page
  :retry      retry a failed page
  :refresh    reload the current query from page 1
  :save <n>   toggle result n in favorites
  :open <n>   show details of result n
  :quit       exit`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		return runBrowse(ctx, a, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(browseCmd)
}

// browser renders the results and favorites streams and executes commands.
type browser struct {
	app  *app
	ctrl *session.Controller

	mu    sync.Mutex
	out   io.Writer
	snap  paging.Snapshot
	saved []types.FavoriteEntry
}

func runBrowse(ctx context.Context, a *app, in io.Reader, out io.Writer) error {
	b := &browser{app: a, ctrl: a.newController(), out: out}

	results := b.ctrl.Subscribe()
	favs := a.favorites.Subscribe(ctx)

	rendered := make(chan struct{})
	go func() {
		defer close(rendered)
		b.render(results, favs)
	}()
	defer func() {
		b.ctrl.Close()
		favs.Cancel()
		<-rendered
	}()

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == ":quit" {
			return nil
		}
		if err := b.handle(ctx, line); err != nil {
			b.printf("error: %v\n", err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	b.settle(ctx)
	return nil
}

func (b *browser) handle(ctx context.Context, line string) error {
	if !strings.HasPrefix(line, ":") {
		b.ctrl.SetQuery(line)
		return nil
	}

	cmd, arg, _ := strings.Cut(line, " ")
	switch cmd {
	case ":more":
		return ignoreSuperseded(b.ctrl.LoadMore(ctx))
	case ":retry":
		return ignoreSuperseded(b.ctrl.Retry(ctx))
	case ":refresh":
		b.ctrl.Refresh()
		return nil
	case ":save":
		w, err := b.work(arg)
		if err != nil {
			return err
		}
		saved, err := b.app.favorites.Toggle(ctx, w)
		if err != nil {
			return err
		}
		if saved {
			b.printf("saved %s\n", w.ID)
		} else {
			b.printf("removed %s\n", w.ID)
		}
		return nil
	case ":open":
		w, err := b.work(arg)
		if err != nil {
			return err
		}
		v, err := b.app.resolver.View(ctx, w.ID, b.app.favorites)
		if err != nil {
			return err
		}
		b.mu.Lock()
		printWorkDetail(b.out, v)
		b.mu.Unlock()
		return nil
	default:
		return fmt.Errorf("unknown command %s", cmd)
	}
}

// work returns the result at the 1-based position arg.
func (b *browser) work(arg string) (types.Work, error) {
	n, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil {
		return types.Work{}, fmt.Errorf("expected a result number, got %q", arg)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if n < 1 || n > len(b.snap.Works) {
		return types.Work{}, fmt.Errorf("no result %d", n)
	}
	return b.snap.Works[n-1], nil
}

// render redraws the result list whenever results or favorites change,
// until either stream ends.
func (b *browser) render(results *stream.Subscription[paging.Snapshot], favs *stream.Subscription[favorites.Snapshot]) {
	for {
		select {
		case snap, ok := <-results.C:
			if !ok {
				return
			}
			b.mu.Lock()
			b.snap = snap
			b.drawLocked()
			b.mu.Unlock()
		case fs, ok := <-favs.C:
			if !ok {
				return
			}
			if fs.Err != nil {
				b.printf("favorites unavailable: %v\n", fs.Err)
				continue
			}
			b.mu.Lock()
			b.saved = fs.Entries
			if b.snap.Query != "" {
				b.drawLocked()
			}
			b.mu.Unlock()
		}
	}
}

func (b *browser) drawLocked() {
	snap := b.snap
	if strings.TrimSpace(snap.Query) == "" {
		fmt.Fprintln(b.out, "(no query)")
		return
	}
	if snap.State == paging.Loading && len(snap.Works) == 0 {
		fmt.Fprintf(b.out, "searching %q...\n", snap.Query)
		return
	}
	fmt.Fprintf(b.out, "\n== %s ==\n", snap.Query)
	if len(snap.Works) == 0 && snap.State == paging.Exhausted {
		fmt.Fprintln(b.out, "No results found.")
		return
	}
	printWorkTable(b.out, favorites.Annotate(snap.Works, b.saved))
	printSnapshotFooter(b.out, snap)
}

func (b *browser) printf(format string, args ...any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	fmt.Fprintf(b.out, format, args...)
}

// settle waits until a query typed just before end of input has loaded and
// been drawn.
func (b *browser) settle(ctx context.Context) {
	deadline := time.After(b.app.cfg.Session.Debounce + b.app.cfg.Catalog.Timeout)
	tick := time.NewTicker(20 * time.Millisecond)
	defer tick.Stop()
	for {
		query := b.ctrl.Query()
		if query == "" {
			return
		}
		b.mu.Lock()
		drawn := b.snap.Query == query && b.snap.State != paging.Loading
		b.mu.Unlock()
		if drawn {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-deadline:
			return
		case <-tick.C:
		}
	}
}

func ignoreSuperseded(err error) error {
	if errors.Is(err, paging.ErrSuperseded) {
		return nil
	}
	return err
}
