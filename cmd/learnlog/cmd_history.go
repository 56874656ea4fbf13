package main

import (
	"github.com/spf13/cobra"

	"github.com/daviddao/learnlog/pkg/model"
	"github.com/daviddao/learnlog/pkg/quiz"
)

func (a *app) newHistoryCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show quiz scores, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			h := a.engine.QuizHistory()
			out := make([]model.QuizResult, 0, len(h))
			for i := len(h) - 1; i >= 0; i-- {
				if limit > 0 && len(out) == limit {
					break
				}
				out = append(out, h[i])
			}
			if a.jsonOut {
				return a.printJSON(map[string]any{"quizzes": out, "count": len(h)})
			}
			if len(out) == 0 {
				a.printf("no quizzes taken\n")
				return nil
			}
			for _, r := range out {
				a.printf("  %s  %3d%%  %s\n", r.Date.Local().Format("2006-01-02 15:04"), r.Score, quiz.Rate(r.Score))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "max entries to show (0 = all)")
	return cmd
}
