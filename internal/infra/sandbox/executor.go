package sandbox

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/Ajay03299/DevForge/internal/domain/repair"
)

// DefaultTimeout bounds one execution (build and run together)
const DefaultTimeout = 5 * time.Second

// waitDelay bounds how long Wait blocks on pipes after the process group is killed
const waitDelay = 500 * time.Millisecond

// Config configures an Executor
type Config struct {
	Profiles    *Profiles
	OutputLimit int      // Per stream; <= 0 means DefaultOutputLimit
	Env         []string // Extra KEY=VALUE entries appended to the parent environment
}

// Executor runs code in a throwaway directory as a separate process group.
// It never touches the target file: the code is materialized under a temp dir.
type Executor struct {
	profiles    *Profiles
	outputLimit int
	env         []string
}

// NewExecutor creates a sandbox executor
func NewExecutor(cfg Config) *Executor {
	profiles := cfg.Profiles
	if profiles == nil {
		profiles = DefaultProfiles()
	}
	return &Executor{
		profiles:    profiles,
		outputLimit: cfg.OutputLimit,
		env:         cfg.Env,
	}
}

// Execute runs req.Code as if it were req.FileName and captures the outcome.
// It returns an error only when the code could not be run at all
// (SANDBOX_START_FAILURE) or when ctx was cancelled by the caller.
func (e *Executor) Execute(ctx context.Context, req repair.ExecutionRequest) (repair.ExecutionResult, error) {
	profile, ok := e.profiles.ForPath(req.FileName)
	if !ok {
		return repair.ExecutionResult{}, repair.NewError(repair.CodeSandboxStart,
			fmt.Sprintf("no language profile for %q", filepath.Ext(req.FileName)), nil)
	}

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	dir, err := os.MkdirTemp(req.WorkDir, "devforge-run-*")
	if err != nil {
		return repair.ExecutionResult{}, repair.NewError(repair.CodeSandboxStart, "failed to create scratch directory", err)
	}
	defer os.RemoveAll(dir)

	src := filepath.Join(dir, filepath.Base(req.FileName))
	if err := os.WriteFile(src, []byte(req.Code), 0o644); err != nil {
		return repair.ExecutionResult{}, repair.NewError(repair.CodeSandboxStart, "failed to materialize source", err)
	}
	bin := filepath.Join(dir, "prog")

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	stdout := newTailBuffer(e.outputLimit)
	stderr := newTailBuffer(e.outputLimit)
	start := time.Now()

	var exit repair.ExitStatus
	if len(profile.Build) > 0 {
		exit, err = e.run(ctx, runCtx, expand(profile.Build, src, bin, dir), dir, stdout, stderr)
		if err == nil && (exit.Kind != repair.ExitNormal || exit.Code != 0) {
			// Compiler diagnostics are reported like a crash of the program
			return e.result(stdout, stderr, exit, start), nil
		}
	}
	if err == nil {
		exit, err = e.run(ctx, runCtx, expand(profile.Run, src, bin, dir), dir, stdout, stderr)
	}

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return repair.ExecutionResult{}, ctxErr
		}
		return repair.ExecutionResult{}, err
	}
	return e.result(stdout, stderr, exit, start), nil
}

func (e *Executor) result(stdout, stderr *tailBuffer, exit repair.ExitStatus, start time.Time) repair.ExecutionResult {
	return repair.ExecutionResult{
		Stdout:          stdout.String(),
		Stderr:          stderr.String(),
		StdoutTruncated: stdout.Truncated(),
		StderrTruncated: stderr.Truncated(),
		Exit:            exit,
		Duration:        time.Since(start),
	}
}

// run executes one command line under runCtx, which is derived from ctx.
// Only runCtx's own deadline is an ExitTimeout status; once ctx is done the
// caller's cancellation or deadline is returned as the error.
func (e *Executor) run(ctx, runCtx context.Context, args []string, dir string, stdout, stderr *tailBuffer) (repair.ExitStatus, error) {
	cmd := exec.CommandContext(runCtx, args[0], args[1:]...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), e.env...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	configureProcess(cmd)
	cmd.WaitDelay = waitDelay

	err := cmd.Run()

	if ctx.Err() != nil {
		return repair.ExitStatus{}, ctx.Err()
	}
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return repair.ExitStatus{Kind: repair.ExitTimeout}, nil
	}
	if runCtx.Err() != nil {
		return repair.ExitStatus{}, runCtx.Err()
	}

	if cmd.ProcessState == nil {
		return repair.ExitStatus{}, repair.NewError(repair.CodeSandboxStart,
			fmt.Sprintf("failed to start %s", args[0]), err)
	}

	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) && !errors.Is(err, exec.ErrWaitDelay) {
		return repair.ExitStatus{}, repair.NewError(repair.CodeSandboxStart,
			fmt.Sprintf("failed to run %s", args[0]), err)
	}
	return exitStatus(cmd.ProcessState), nil
}
