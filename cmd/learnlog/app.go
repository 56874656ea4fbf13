package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/daviddao/learnlog/pkg/clock"
	"github.com/daviddao/learnlog/pkg/config"
	"github.com/daviddao/learnlog/pkg/engine"
	"github.com/daviddao/learnlog/pkg/logging"
	"github.com/daviddao/learnlog/pkg/metrics"
	"github.com/daviddao/learnlog/pkg/store"
)

// app holds shared state for all subcommands. The database and engine are
// opened lazily by open so that help and version work anywhere.
type app struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer
	clk    clock.Clock
	rng    *rand.Rand

	jsonOut bool

	cfg     *config.Config
	catalog *config.Catalog
	log     zerolog.Logger
	store   store.StoreInterface
	engine  *engine.Engine
	metrics *metrics.Metrics
}

func newApp(in io.Reader, out, errOut io.Writer, clk clock.Clock) *app {
	return &app{
		in:     in,
		out:    out,
		errOut: errOut,
		clk:    clk,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		log:    logging.Nop(),
	}
}

// open loads configuration and the catalog, opens the database and builds
// the engine from the stored records. Creates the default directory when
// LEARNLOG_DB is unset.
func (a *app) open(ctx context.Context) error {
	if a.engine != nil {
		return nil
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = logging.New(cfg.LogLevel, cfg.LogFormat, a.errOut)

	cat, err := config.LoadCatalog(cfg.CatalogPath)
	if err != nil {
		return err
	}
	a.catalog = cat

	if cfg.UsesDefaultDB() {
		if err := os.MkdirAll(config.DefaultDir, 0o755); err != nil {
			return fmt.Errorf("cannot create %s: %w", config.DefaultDir, err)
		}
	} else if dir := filepath.Dir(cfg.DBPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("cannot create %s: %w", dir, err)
		}
	}
	s, err := store.New(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("cannot open database %q: %w", cfg.DBPath, err)
	}
	a.store = s

	recs, err := s.LoadRecords(ctx)
	if err != nil {
		return fmt.Errorf("load records: %w", err)
	}
	a.metrics = metrics.New()
	a.engine = engine.Init(recs, engine.Options{
		Milestones: cat.Milestones,
		TotalTasks: cat.Total(),
		Policy:     cat.RetentionPolicy(),
		Clock:      a.clk,
		Persister:  s,
		Logger:     &a.log,
		OnSave:     a.metrics.RecordSave,
	})
	for _, key := range a.engine.Recovered() {
		fmt.Fprintf(a.errOut, "warning: stored %s was unreadable and has been reset\n", key)
	}
	if ids := cat.TaskIDs(); len(ids) > 0 {
		if err := a.engine.Observe(ctx, ids...); err != nil {
			return err
		}
	}
	if ms := a.engine.Reconciled(); len(ms) > 0 {
		if err := a.engine.Flush(ctx); err != nil {
			return err
		}
		a.recordMilestones(ctx, ms)
	}
	return nil
}

// Close releases the database connection.
func (a *app) Close() {
	if a.store != nil {
		a.store.Close()
	}
}

// record appends an activity log entry. Failures are logged, not returned:
// the state change itself has already been saved.
func (a *app) record(ctx context.Context, kind, subject, detail string) {
	if a.store == nil {
		return
	}
	_, err := a.store.AppendActivity(ctx, &store.Activity{
		Kind:      kind,
		Subject:   subject,
		Detail:    detail,
		CreatedAt: a.clk.Now(),
	})
	if err != nil {
		a.log.Warn().Err(err).Str("kind", kind).Msg("activity log append failed")
	}
}

// printJSON writes v to the command output as indented JSON.
func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (a *app) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

// taskLabel returns "id (title)" for catalog tasks, otherwise the id.
func (a *app) taskLabel(id string) string {
	if a.catalog != nil {
		if title := a.catalog.TaskTitle(id); title != "" {
			return fmt.Sprintf("%s (%s)", id, title)
		}
	}
	return id
}
