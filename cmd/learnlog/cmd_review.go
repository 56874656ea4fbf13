package main

import (
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/daviddao/learnlog/pkg/model"
	"github.com/daviddao/learnlog/pkg/store"
)

func (a *app) newReviewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "review",
		Short: "Spaced-repetition reviews of completed tasks",
	}
	cmd.AddCommand(a.newReviewListCmd(), a.newReviewRecordCmd())
	return cmd
}

func (a *app) newReviewListCmd() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List reviews that are due, most overdue first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			now := a.clk.Now()
			var entries []model.RetentionEntry
			if all {
				entries = a.engine.ScheduledEntries()
			} else {
				entries = a.engine.DueEntries(now)
			}

			if a.jsonOut {
				if entries == nil {
					entries = []model.RetentionEntry{}
				}
				return a.printJSON(map[string]any{"reviews": entries, "count": len(entries)})
			}
			if len(entries) == 0 {
				a.printf("no reviews due\n")
				return nil
			}
			for _, e := range entries {
				when := humanize.RelTime(e.NextReviewAt, now, "ago", "from now")
				if !e.NextReviewAt.After(now) {
					when = dueStyle.Render("due " + when)
				}
				a.printf("  %-30s strength=%d reviews=%-3d %s\n", a.taskLabel(e.TaskID), e.Strength, e.ReviewCount, when)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "list every scheduled review, not only due ones")
	return cmd
}

func (a *app) newReviewRecordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "record <task-id> <easy|medium|hard>",
		Short: "Record how well you recalled a task",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := model.ParseDifficulty(args[1])
			if err != nil {
				return err
			}
			ok, err := a.engine.RecordReview(cmd.Context(), args[0], d)
			if err != nil {
				return err
			}
			entry, _ := a.engine.RetentionEntry(args[0])
			if ok {
				a.record(cmd.Context(), store.KindReviewed, args[0], string(d))
			}
			if a.jsonOut {
				return a.printJSON(map[string]any{"recorded": ok, "entry": entry})
			}
			if !ok {
				a.printf("%s has no review schedule (complete it first)\n", args[0])
				return nil
			}
			a.printf("reviewed %s (%s): strength=%d, next review %s\n",
				a.taskLabel(args[0]), d, entry.Strength,
				humanize.RelTime(entry.NextReviewAt, a.clk.Now(), "ago", "from now"))
			return nil
		},
	}
}

