package main

import (
	"github.com/spf13/cobra"
)

func (a *app) newMilestonesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "milestones",
		Short: "Show milestones and progress toward them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			newly, err := a.engine.CheckMilestones(cmd.Context())
			if err != nil {
				return err
			}
			views := a.engine.MilestoneDisplayList()
			if a.jsonOut {
				return a.printJSON(map[string]any{"milestones": views, "new": newly})
			}
			for _, m := range newly {
				a.printf("%s\n", milestoneBanner(m.Title, m.Reward))
			}
			for _, v := range views {
				line := v.Title + "  " + fraction(v.Progress, v.RequiredTasks)
				switch {
				case v.Achieved:
					a.printf("  [x] %s\n", achievedStyle.Render(line))
				case v.Locked:
					a.printf("  [ ] %s\n", lockedStyle.Render(line+" (locked)"))
				default:
					a.printf("  [ ] %s\n", line)
				}
				if v.Reward != "" && v.Achieved {
					a.printf("      %s\n", v.Reward)
				}
			}
			return nil
		},
	}
}
