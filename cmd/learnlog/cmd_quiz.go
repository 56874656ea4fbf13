package main

import (
	"bufio"
	"errors"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/daviddao/learnlog/pkg/quiz"
	"github.com/daviddao/learnlog/pkg/store"
)

func (a *app) newQuizCmd() *cobra.Command {
	var size int
	cmd := &cobra.Command{
		Use:   "quiz",
		Short: "Take a knowledge-check quiz",
		Long: `Asks a random selection of questions from the roadmap's quiz bank and
reads answers (option numbers) from standard input. The score is saved to
the quiz history.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if len(a.catalog.Quiz) == 0 {
				return quiz.ErrNoQuestions
			}
			if !cmd.Flags().Changed("size") {
				size = a.cfg.QuizSize
			}
			s := quiz.NewSession(quiz.Select(a.rng, a.catalog.Quiz, size))
			sc := bufio.NewScanner(a.in)

			for i := 0; !s.Done(); i++ {
				q := s.Questions[i]
				a.printf("\nQuestion %d of %d: %s\n", i+1, len(s.Questions), q.Prompt)
				for j, opt := range q.Options {
					a.printf("  %d) %s\n", j+1, opt)
				}
				choice, err := a.readChoice(sc, len(q.Options))
				if err != nil {
					return err
				}
				ok, err := s.Answer(choice)
				if err != nil {
					return err
				}
				if ok {
					a.printf("correct\n")
				} else {
					a.printf("wrong, the answer is %s\n", q.Options[q.Correct])
				}
				if q.Explanation != "" {
					a.printf("  %s\n", q.Explanation)
				}
			}

			score := s.Score()
			if err := a.engine.RecordQuiz(cmd.Context(), score); err != nil {
				return err
			}
			a.record(cmd.Context(), store.KindQuiz, "", strconv.Itoa(score))
			if a.jsonOut {
				return a.printJSON(map[string]any{
					"score":   score,
					"correct": s.Correct(),
					"total":   len(s.Questions),
				})
			}
			a.printf("\nscore: %d%% (%d/%d)\n%s\n", score, s.Correct(), len(s.Questions), quiz.Rate(score))
			return nil
		},
	}
	cmd.Flags().IntVar(&size, "size", 5, "number of questions (0 = whole bank)")
	return cmd
}

// readChoice reads a 1-based option number and returns it 0-based. Invalid
// input is re-prompted; end of input is an error.
func (a *app) readChoice(sc *bufio.Scanner, n int) (int, error) {
	for {
		a.printf("answer [1-%d]: ", n)
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return 0, err
			}
			return 0, errors.New("quiz aborted: no more input")
		}
		v, err := strconv.Atoi(strings.TrimSpace(sc.Text()))
		if err == nil && v >= 1 && v <= n {
			return v - 1, nil
		}
		a.printf("enter a number between 1 and %d\n", n)
	}
}
