package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/daviddao/learnlog/pkg/engine"
	"github.com/daviddao/learnlog/pkg/model"
	"github.com/daviddao/learnlog/pkg/store"
)

func (a *app) newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <task-id>...",
		Short: "Mark tasks completed",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.setTasks(cmd.Context(), args, func(ctx context.Context, id string) (engine.Change, error) {
				return a.engine.SetCompletion(ctx, id, true)
			})
		},
	}
}

func (a *app) newUncheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "uncheck <task-id>...",
		Short: "Mark tasks not completed (review history is kept)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.setTasks(cmd.Context(), args, func(ctx context.Context, id string) (engine.Change, error) {
				return a.engine.SetCompletion(ctx, id, false)
			})
		},
	}
}

func (a *app) newToggleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <task-id>...",
		Short: "Flip the completion of tasks",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.setTasks(cmd.Context(), args, a.engine.ToggleTask)
		},
	}
}

func (a *app) setTasks(ctx context.Context, ids []string, apply func(context.Context, string) (engine.Change, error)) error {
	changes := make([]engine.Change, 0, len(ids))
	for _, id := range ids {
		ch, err := apply(ctx, id)
		if err != nil {
			return fmt.Errorf("%s: %w", id, err)
		}
		changes = append(changes, ch)
		a.recordChange(ctx, ch)
	}

	if a.jsonOut {
		return a.printJSON(map[string]any{"changes": changes, "stats": a.engine.Stats()})
	}
	for _, ch := range changes {
		a.printChange(ch)
	}
	st := a.engine.Stats()
	a.printf("progress: %s %d%% (%d/%d)\n", progressBar(st.Percent), st.Percent, st.Completed, st.Total)
	return nil
}

func (a *app) recordChange(ctx context.Context, ch engine.Change) {
	if !ch.Changed {
		return
	}
	kind := store.KindUncompleted
	if ch.Completed {
		kind = store.KindCompleted
	}
	a.record(ctx, kind, ch.TaskID, "")
	a.recordMilestones(ctx, ch.NewMilestones)
}

func (a *app) recordMilestones(ctx context.Context, ms []model.MilestoneDef) {
	for _, m := range ms {
		a.record(ctx, store.KindMilestone, m.ID, m.Title)
	}
}

func (a *app) printChange(ch engine.Change) {
	state := "not completed"
	if ch.Completed {
		state = "completed"
	}
	if !ch.Changed {
		a.printf("%s already %s\n", a.taskLabel(ch.TaskID), state)
		return
	}
	a.printf("%s %s\n", a.taskLabel(ch.TaskID), state)
	if ch.ReviewScheduled {
		a.printf("  first review scheduled\n")
	}
	for _, m := range ch.NewMilestones {
		a.printf("%s\n", milestoneBanner(m.Title, m.Reward))
	}
}
