package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Ajay03299/DevForge/internal/adapter/presenter"
	"github.com/Ajay03299/DevForge/internal/application/dto"
	"github.com/Ajay03299/DevForge/internal/application/port/output"
	"github.com/Ajay03299/DevForge/internal/domain/repair"
	"github.com/Ajay03299/DevForge/internal/infrastructure/di"
)

// repairFlags holds the flags for the repair command
type repairFlags struct {
	intent          string
	expect          string
	maxAttempts     int
	timeout         time.Duration
	match           string
	revertOnFailure bool
	jsonOut         bool
}

func newRepairCmd(env *cmdEnv) *cobra.Command {
	flags := &repairFlags{}

	cmd := &cobra.Command{
		Use:   "repair FILE [INTENT...]",
		Short: "Repair one source file",
		Long: `Run FILE, and while it crashes, times out or prints the wrong thing, ask the
model for a corrected file and try again.

The intent describes what the program should do. An expected output is taken
from phrases like "should print 5" unless --expect is given.`,
		Example: `  devforge repair avg.py "compute the average of [2, 4, 9]; it should print 5"
  devforge repair --expect "Hello" hello.js
  devforge repair --max-attempts 5 --revert-on-failure solver.cpp`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			intent := flags.intent
			if intent == "" {
				intent = strings.Join(args[1:], " ")
			}

			strategy, err := repair.ParseMatchStrategy(flags.match)
			if err != nil {
				return err
			}
			if flags.match == "" {
				strategy = ""
			}

			container, err := env.container(c.Context())
			if err != nil {
				return err
			}
			defer container.Close()

			input := dto.RunRepairInput{
				FilePath:        filepath.Clean(args[0]),
				Intent:          intent,
				Expectation:     flags.expect,
				MaxAttempts:     flags.maxAttempts,
				Timeout:         flags.timeout,
				MatchStrategy:   strategy,
				RevertOnFailure: flags.revertOnFailure,
			}
			return runRepair(c.Context(), container, env.presenter(flags.jsonOut), input)
		},
	}

	cmd.Flags().StringVarP(&flags.intent, "intent", "m", "", "What the program should do (default: remaining arguments)")
	cmd.Flags().StringVar(&flags.expect, "expect", "", "Expected output; overrides the one taken from the intent")
	cmd.Flags().IntVar(&flags.maxAttempts, "max-attempts", 0, "Execution budget (default: max_attempts setting)")
	cmd.Flags().DurationVar(&flags.timeout, "timeout", 0, "Per-execution timeout (default: timeout_sec setting)")
	cmd.Flags().StringVar(&flags.match, "match", "", "Output match strategy: contains, exact, normalized")
	cmd.Flags().BoolVar(&flags.revertOnFailure, "revert-on-failure", false, "Restore the original when the session does not succeed")
	cmd.Flags().BoolVar(&flags.jsonOut, "json", false, "Print the session report as JSON")

	return cmd
}

// presenter picks the output format for one session
func (env *cmdEnv) presenter(jsonOut bool) output.RepairPresenter {
	if jsonOut {
		return presenter.NewJSONPresenter(env.out)
	}
	return presenter.NewCLIRepairPresenter(env.out)
}

// runRepair runs one session and maps its outcome onto an exit code
func runRepair(ctx context.Context, container *di.Container, p output.RepairPresenter, input dto.RunRepairInput) error {
	uc := container.RepairUseCase(p)

	out, err := uc.Execute(ctx, input)
	if err != nil {
		p.PresentError(err)
		return &ExitError{Code: ExitFailure}
	}
	if err := p.PresentReport(out); err != nil {
		return fmt.Errorf("failed to print report: %w", err)
	}

	switch out.Outcome {
	case repair.OutcomeSuccess:
		return nil
	case repair.OutcomeFailed, repair.OutcomeAdapterFailed:
		return &ExitError{Code: ExitFailure}
	default:
		return &ExitError{Code: ExitNotFixed}
	}
}
