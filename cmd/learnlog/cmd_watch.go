package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/daviddao/learnlog/pkg/engine"
	"github.com/daviddao/learnlog/pkg/model"
)

func (a *app) newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Print progress whenever the database changes",
		Long: `Watches the database file and prints a status line each time another
learnlog process saves. With --json, prints one JSON object per line.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			w, err := fsnotify.NewWatcher()
			if err != nil {
				return fmt.Errorf("watch: %w", err)
			}
			defer w.Close()

			dbPath := a.store.Path()
			if err := w.Add(filepath.Dir(dbPath)); err != nil {
				return fmt.Errorf("watch %s: %w", filepath.Dir(dbPath), err)
			}
			fmt.Fprintf(a.errOut, "watching %s (ctrl-c to stop)\n", dbPath)

			last := a.engine.Stats()
			a.printStats(last)
			for {
				select {
				case <-ctx.Done():
					fmt.Fprintln(a.errOut, "\nstopped")
					return nil
				case err, ok := <-w.Errors:
					if !ok {
						return nil
					}
					a.log.Warn().Err(err).Msg("watch error")
				case ev, ok := <-w.Events:
					if !ok {
						return nil
					}
					if !isDBWrite(dbPath, ev) {
						continue
					}
					st, err := a.reloadStats(ctx)
					if err != nil {
						a.log.Warn().Err(err).Msg("reload failed")
						continue
					}
					if st != last {
						a.printStats(st)
						last = st
					}
				}
			}
		},
	}
}

// isDBWrite reports whether ev changes the database file or its WAL.
func isDBWrite(dbPath string, ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
		return false
	}
	name := filepath.Clean(ev.Name)
	base := filepath.Clean(dbPath)
	return name == base || strings.HasPrefix(name, base+"-")
}

// reloadStats builds a read-only engine from the stored records.
func (a *app) reloadStats(ctx context.Context) (model.Stats, error) {
	recs, err := a.store.LoadRecords(ctx)
	if err != nil {
		return model.Stats{}, err
	}
	e := engine.Init(recs, engine.Options{
		Milestones: a.catalog.Milestones,
		TotalTasks: a.catalog.Total(),
		Policy:     a.catalog.RetentionPolicy(),
		Clock:      a.clk,
	})
	return e.Stats(), nil
}

func (a *app) printStats(st model.Stats) {
	if a.jsonOut {
		b, _ := json.Marshal(st)
		a.printf("%s\n", b)
		return
	}
	a.printf("%s %s %d%% (%d/%d)  streak=%d  due=%d  milestones=%d\n",
		a.clk.Now().Format("15:04:05"), progressBar(st.Percent), st.Percent,
		st.Completed, st.Total, st.Streak, st.DueReviews, st.MilestonesAchieved)
}
