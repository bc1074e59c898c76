package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/Ajay03299/DevForge/internal/app"
	"github.com/Ajay03299/DevForge/internal/app/config"
	"github.com/Ajay03299/DevForge/internal/application/port/output"
	infraConfig "github.com/Ajay03299/DevForge/internal/infra/config"
	"github.com/Ajay03299/DevForge/internal/infrastructure/di"
	initcmd "github.com/Ajay03299/DevForge/internal/interface/cli/init"
	"github.com/Ajay03299/DevForge/internal/interface/cli/version"
)

// ExitError carries a process exit code without an error message.
// Commands return it when the outcome was already reported.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// Exit codes
const (
	ExitNotFixed = 1 // Session ended without success
	ExitFailure  = 2 // Infrastructure failure or bad usage
)

// cmdEnv holds what every command shares. Tests swap the streams and
// the completion backend.
type cmdEnv struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer
	fs     afero.Fs

	// gateway replaces the configured backend when set
	gateway output.CompletionGateway

	home     string
	logLevel string
	cfg      config.Config
}

// container builds the dependency graph for one command
func (env *cmdEnv) container(ctx context.Context) (*di.Container, error) {
	c, err := di.NewContainer(ctx, di.Config{
		Settings: env.cfg,
		Fs:       env.fs,
		Gateway:  env.gateway,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize container: %w", err)
	}
	return c, nil
}

// NewRoot creates the devforge command tree on the process streams
func NewRoot() *cobra.Command {
	return newRoot(&cmdEnv{
		in:     os.Stdin,
		out:    os.Stdout,
		errOut: os.Stderr,
		fs:     afero.NewOsFs(),
	})
}

func newRoot(env *cmdEnv) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "devforge",
		Short: "Run a broken source file, diagnose it and patch it until it works",
		Long: `devforge runs a single source file in a sandbox, classifies how it failed,
asks a language model for a complete corrected file and applies it, for a
bounded number of attempts. The original is kept next to the file as <file>.bak.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Priority: --home > DEVFORGE_HOME > .devforge
			home := env.home
			if home == "" {
				home = app.ResolvePaths().Home
			}

			cfg, err := infraConfig.LoadSettings(env.fs, home)
			if err != nil {
				return err
			}
			env.cfg = cfg

			level := env.logLevel
			if level == "" {
				level = cfg.StderrLevel()
			}
			InitializeLoggers(NewLogger(LogLevelFromString(level), env.errOut))
			return nil
		},
		RunE: func(c *cobra.Command, _ []string) error { return c.Help() },
	}
	cmd.SetIn(env.in)
	cmd.SetOut(env.out)
	cmd.SetErr(env.errOut)

	cmd.PersistentFlags().StringVar(&env.home, "home", "", "devforge home directory (default: $DEVFORGE_HOME or .devforge)")
	cmd.PersistentFlags().StringVar(&env.logLevel, "log-level", "", "stderr log level: debug, info, warn, error (default: stderr_level setting)")

	cmd.AddCommand(newRepairCmd(env))
	cmd.AddCommand(newChatCmd(env))
	cmd.AddCommand(newRestoreCmd(env))
	cmd.AddCommand(newDiffCmd(env))
	cmd.AddCommand(newHistoryCmd(env))
	cmd.AddCommand(initcmd.NewCommand(env.fs))
	cmd.AddCommand(version.NewCommand())
	return cmd
}
