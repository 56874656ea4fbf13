package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "learnlog",
		Short: "Track progress through a learning roadmap",
		Long: `learnlog records which roadmap tasks you have completed and builds on it:
a daily activity streak, milestones that unlock as tasks pile up, spaced
repetition reviews of completed tasks, and short knowledge-check quizzes.

State lives in a SQLite file (LEARNLOG_DB, default .learnlog/learnlog.db).
The roadmap catalog is built in and can be replaced with LEARNLOG_CATALOG
pointing at a TOML or YAML file.

Exit codes:
  0  success
  1  error
  2  import rejected (not a roadmap backup)`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			switch cmd.Name() {
			case "version", "help", "learnlog":
				return nil
			}
			return a.open(cmd.Context())
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.PersistentFlags().BoolVar(&a.jsonOut, "json", false, "JSON output")

	root.AddCommand(
		a.newInitCmd(),
		a.newCheckCmd(),
		a.newUncheckCmd(),
		a.newToggleCmd(),
		a.newStatusCmd(),
		a.newCheckinCmd(),
		a.newReviewCmd(),
		a.newMilestonesCmd(),
		a.newQuizCmd(),
		a.newHistoryCmd(),
		a.newLogCmd(),
		a.newExportCmd(),
		a.newImportCmd(),
		a.newSessionCmd(),
		a.newWatchCmd(),
		a.newVersionCmd(),
	)
	return root
}
