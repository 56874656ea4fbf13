package main

import (
	"github.com/spf13/cobra"
)

func (a *app) newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the database and write the initial state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.engine.Flush(cmd.Context()); err != nil {
				return err
			}
			st := a.engine.Stats()
			if a.jsonOut {
				return a.printJSON(map[string]any{
					"db":         a.store.Path(),
					"catalog":    a.catalog.Name,
					"tasks":      st.Total,
					"milestones": len(a.catalog.Milestones),
					"questions":  len(a.catalog.Quiz),
				})
			}
			a.printf("initialized learnlog (db: %s)\n", a.store.Path())
			a.printf("  roadmap: %s\n", a.catalog.Name)
			a.printf("  %d tasks, %d milestones, %d quiz questions\n",
				st.Total, len(a.catalog.Milestones), len(a.catalog.Quiz))
			if st.Completed > 0 {
				a.printf("  %d task(s) already completed\n", st.Completed)
			}
			a.printf("\nnext steps:\n")
			a.printf("  learnlog check <task-id>   mark a task done\n")
			a.printf("  learnlog status            see your progress\n")
			return nil
		},
	}
}
