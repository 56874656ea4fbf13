package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/daviddao/learnlog/pkg/engine"
	"github.com/daviddao/learnlog/pkg/store"
)

func (a *app) newExportCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a JSON backup of all progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			snap, err := a.engine.ExportSnapshot()
			if err != nil {
				return err
			}
			if output == "" || output == "-" {
				return snap.Encode(a.out)
			}
			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("export: %w", err)
			}
			if err := snap.Encode(f); err != nil {
				f.Close()
				return fmt.Errorf("export: %w", err)
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("export: %w", err)
			}
			fmt.Fprintf(a.errOut, "exported %d task(s) to %s\n", len(snap.Progress), output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to file instead of stdout")
	return cmd
}

func (a *app) newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Replace all progress with a JSON backup",
		Long: `Reads a backup written by "learnlog export" (or by the browser tracker
it replaces) and overwrites every stored record with it. Files that are not
roadmap backups are rejected with exit code 2 and nothing is changed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("import: %w", err)
			}
			defer f.Close()

			snap, err := engine.DecodeSnapshot(f)
			if err != nil {
				return fmt.Errorf("import %s: %w", args[0], err)
			}
			if err := a.engine.ImportSnapshot(cmd.Context(), snap); err != nil {
				return fmt.Errorf("import %s: %w", args[0], err)
			}
			a.record(cmd.Context(), store.KindImport, args[0], snap.ID)
			newly := a.engine.Reconciled()
			a.recordMilestones(cmd.Context(), newly)

			st := a.engine.Stats()
			if a.jsonOut {
				return a.printJSON(map[string]any{"imported": args[0], "stats": st, "newMilestones": newly})
			}
			a.printf("imported %s: %d/%d tasks completed, %d milestone(s), streak %d\n",
				args[0], st.Completed, st.Total, st.MilestonesAchieved, st.Streak)
			for _, m := range newly {
				a.printf("%s\n", milestoneBanner(m.Title, m.Reward))
			}
			return nil
		},
	}
}
