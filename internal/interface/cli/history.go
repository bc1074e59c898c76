package cli

import (
	"fmt"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/Ajay03299/DevForge/internal/domain/repair"
)

// historyFlags holds the flags for the history command
type historyFlags struct {
	limit   int
	session string
}

func newHistoryCmd(env *cmdEnv) *cobra.Command {
	flags := &historyFlags{}

	cmd := &cobra.Command{
		Use:   "history [FILE]",
		Short: "List past repair sessions",
		Long: `List recorded repair sessions, newest first, optionally only those of FILE.
With --session, show the attempts of one session.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			ctx := c.Context()
			container, err := env.container(ctx)
			if err != nil {
				return err
			}
			defer container.Close()

			ledger, err := container.Ledger()
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(env.out, 0, 0, 2, ' ', 0)
			defer w.Flush()

			if flags.session != "" {
				attempts, err := ledger.Attempts(ctx, flags.session)
				if err != nil {
					return err
				}
				if len(attempts) == 0 {
					return fmt.Errorf("no attempts recorded for session %s", flags.session)
				}
				fmt.Fprintf(w, "#\tVERDICT\tEXIT\tPATCH\tAPPLIED\tDURATION\tDETAIL\n")
				for _, a := range attempts {
					detail := a.Excerpt
					if a.Error != "" {
						detail = a.Error
					}
					fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
						a.Index, a.Verdict, formatExit(a.Exit),
						yesNo(a.PatchRequested), yesNo(a.Applied), a.Duration, truncateString(detail, 60))
				}
				return nil
			}

			target := ""
			if len(args) == 1 {
				target = filepath.Clean(args[0])
			}
			sessions, err := ledger.List(ctx, target, flags.limit)
			if err != nil {
				return err
			}
			if len(sessions) == 0 {
				fmt.Fprintln(w, "No sessions recorded.")
				return nil
			}

			fmt.Fprintf(w, "SESSION\tFILE\tOUTCOME\tATTEMPTS\tCHANGES\tSTARTED\n")
			for _, s := range sessions {
				outcome := string(s.Outcome)
				if s.Reverted {
					outcome += " (reverted)"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%d/%d\t+%d -%d\t%s\n",
					s.ID, s.TargetPath, outcome, s.AttemptsUsed, s.MaxAttempts,
					s.LinesAdded, s.LinesDeleted, formatTime(s.StartedAt))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&flags.limit, "limit", "n", 20, "Maximum number of sessions")
	cmd.Flags().StringVar(&flags.session, "session", "", "Show the attempts of one session")
	return cmd
}

func formatExit(exit repair.ExitStatus) string {
	switch exit.Kind {
	case repair.ExitNormal:
		return fmt.Sprintf("exit %d", exit.Code)
	case repair.ExitTimeout:
		return "timeout"
	case repair.ExitSignal:
		return exit.Signal
	default:
		return "-"
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}

func truncateString(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
