package main

import (
	"bufio"
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/daviddao/learnlog/pkg/engine"
	"github.com/daviddao/learnlog/pkg/model"
	"github.com/daviddao/learnlog/pkg/store"
)

const sessionHelp = `commands:
  check <id>            mark a task completed
  uncheck <id>          mark a task not completed
  toggle <id>           flip a task
  review <id> <level>   record a review (easy, medium, hard)
  due                   list due reviews
  status                show progress
  save                  save now
  quit                  save and leave
`

func (a *app) newSessionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "session",
		Short: "Interactive session with periodic auto-save",
		Long: `Reads commands line by line from standard input. State is saved after
every change, every LEARNLOG_AUTOSAVE_INTERVAL, and once more on exit
(end of input, "quit", or ctrl-c).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a.engine.StartAutoSave(a.cfg.AutoSaveInterval)
			defer func() {
				if err := a.engine.Close(context.WithoutCancel(ctx)); err != nil {
					a.log.Error().Err(err).Msg("final save failed")
				}
			}()

			// After ctrl-c the reader may stay blocked in Scan until stdin
			// yields a line or EOF. The process exits right after RunE.
			lines := make(chan string)
			go func() {
				defer close(lines)
				sc := bufio.NewScanner(a.in)
				for sc.Scan() {
					select {
					case lines <- sc.Text():
					case <-ctx.Done():
						return
					}
				}
			}()

			a.printf("session started, type help for commands\n")
			for {
				select {
				case <-ctx.Done():
					a.printf("\nstopped\n")
					return nil
				case line, ok := <-lines:
					if !ok {
						return nil
					}
					if quit := a.sessionLine(ctx, line); quit {
						return nil
					}
				}
			}
		},
	}
}

// sessionLine runs one session command. Returns true on quit.
func (a *app) sessionLine(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	arg := func(i int) string {
		if i < len(fields) {
			return fields[i]
		}
		return ""
	}

	switch fields[0] {
	case "quit", "exit":
		return true
	case "help", "?":
		a.printf("%s", sessionHelp)
	case "check", "uncheck", "toggle":
		id := arg(1)
		if id == "" {
			a.printf("usage: %s <task-id>\n", fields[0])
			return false
		}
		var ch engine.Change
		var err error
		switch fields[0] {
		case "check":
			ch, err = a.engine.SetCompletion(ctx, id, true)
		case "uncheck":
			ch, err = a.engine.SetCompletion(ctx, id, false)
		default:
			ch, err = a.engine.ToggleTask(ctx, id)
		}
		if err != nil {
			a.printf("error: %v\n", err)
		}
		a.recordChange(ctx, ch)
		a.printChange(ch)
	case "review":
		d, err := model.ParseDifficulty(arg(2))
		if err != nil || arg(1) == "" {
			a.printf("usage: review <task-id> <easy|medium|hard>\n")
			return false
		}
		ok, err := a.engine.RecordReview(ctx, arg(1), d)
		switch {
		case err != nil:
			a.printf("error: %v\n", err)
		case !ok:
			a.printf("%s has no review schedule\n", arg(1))
		default:
			a.record(ctx, store.KindReviewed, arg(1), string(d))
			e, _ := a.engine.RetentionEntry(arg(1))
			a.printf("reviewed %s: strength=%d\n", arg(1), e.Strength)
		}
	case "due":
		due := a.engine.DueReviews(a.clk.Now())
		if len(due) == 0 {
			a.printf("no reviews due\n")
		}
		for _, id := range due {
			a.printf("  %s\n", a.taskLabel(id))
		}
	case "status":
		st := a.engine.Stats()
		a.printf("%s %d%% (%d/%d), streak %d, %d due\n",
			progressBar(st.Percent), st.Percent, st.Completed, st.Total, st.Streak, st.DueReviews)
	case "save":
		if err := a.engine.Flush(ctx); err != nil {
			a.printf("error: %v\n", err)
		} else {
			a.printf("saved\n")
		}
	default:
		a.printf("unknown command %q, type help\n", fields[0])
	}
	return false
}
