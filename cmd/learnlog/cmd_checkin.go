package main

import (
	"github.com/spf13/cobra"

	"github.com/daviddao/learnlog/pkg/store"
)

func (a *app) newCheckinCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "checkin",
		Short: "Record today's learning activity for the streak",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			changed, err := a.engine.RecordActivity(cmd.Context())
			if err != nil {
				return err
			}
			st := a.engine.Streak()
			if changed {
				a.record(cmd.Context(), store.KindCheckin, "", st.LastActive.String())
			}
			if a.jsonOut {
				return a.printJSON(map[string]any{"changed": changed, "streak": st})
			}
			if changed {
				a.printf("checked in for %s\n", st.LastActive)
			} else {
				a.printf("already checked in today\n")
			}
			a.printf("streak: %d day(s)\n", st.Count)
			return nil
		},
	}
}
