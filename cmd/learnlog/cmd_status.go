package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (a *app) newStatusCmd() *cobra.Command {
	var textfile string
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show progress, streak, retention and milestones",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st := a.engine.Stats()
			if textfile != "" {
				a.metrics.Observe(st)
				if err := a.metrics.WriteTextfile(textfile); err != nil {
					return fmt.Errorf("write metrics: %w", err)
				}
			}
			if a.jsonOut {
				return a.printJSON(st)
			}

			a.printf("%s\n", titleStyle.Render(a.catalog.Name))
			a.printf("  progress:   %s %d%% (%d/%d tasks)\n", progressBar(st.Percent), st.Percent, st.Completed, st.Total)
			a.printf("  streak:     %d day(s)\n", st.Streak)
			a.printf("  retention:  %d%%\n", st.RetentionScore)
			due := fmt.Sprintf("%d", st.DueReviews)
			if st.DueReviews > 0 {
				due = dueStyle.Render(due)
			}
			a.printf("  due:        %s review(s)\n", due)
			a.printf("  milestones: %d/%d achieved\n", st.MilestonesAchieved, len(a.catalog.Milestones))
			a.printf("  projects:   %d built\n", st.ProjectsBuilt)
			if ts, err := a.store.LastSaved(cmd.Context()); err == nil && !ts.IsZero() {
				a.printf("  saved:      %s\n", ts.Local().Format("2006-01-02 15:04:05"))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&textfile, "textfile", "", "also write Prometheus metrics to this file")
	return cmd
}
