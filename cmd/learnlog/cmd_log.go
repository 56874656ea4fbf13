package main

import (
	"github.com/spf13/cobra"
)

func (a *app) newLogCmd() *cobra.Command {
	var (
		limit int
		kind  string
	)
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Query the activity log, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			acts, err := a.store.ListActivity(cmd.Context(), kind, limit)
			if err != nil {
				return err
			}
			if a.jsonOut {
				return a.printJSON(map[string]any{"activity": acts, "count": len(acts)})
			}
			if len(acts) == 0 {
				a.printf("no activity\n")
				return nil
			}
			for _, act := range acts {
				line := act.CreatedAt.Local().Format("2006-01-02 15:04:05") + "  " + act.Kind
				if act.Subject != "" {
					line += " " + act.Subject
				}
				if act.Detail != "" {
					line += " " + act.Detail
				}
				a.printf("%s\n", line)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 50, "max entries to return (0 = all)")
	cmd.Flags().StringVar(&kind, "kind", "", "filter by kind (completed, uncompleted, reviewed, milestone, quiz, import, checkin)")
	return cmd
}
