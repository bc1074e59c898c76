package repair

import (
	"fmt"
	"time"
)

// ExitKind describes how the sandboxed child ended
type ExitKind string

const (
	ExitNormal      ExitKind = "exited"            // Process exited on its own with a code
	ExitTimeout     ExitKind = "killed_by_timeout" // Process group killed at the deadline
	ExitSignal      ExitKind = "killed_by_signal"  // Process terminated by a signal it did not handle
	ExitUnspecified ExitKind = ""
)

// ExitStatus is the exit kind plus its detail (code or signal name)
type ExitStatus struct {
	Kind   ExitKind `json:"kind"`
	Code   int      `json:"code"`
	Signal string   `json:"signal,omitempty"`
}

// Describe renders the status for people: "exit 3", "killed by SIGSEGV"
func (e ExitStatus) Describe() string {
	switch e.Kind {
	case ExitNormal:
		return fmt.Sprintf("exit %d", e.Code)
	case ExitTimeout:
		return "killed at timeout"
	case ExitSignal:
		if e.Signal == "" {
			return "killed by signal"
		}
		return "killed by " + e.Signal
	default:
		return "not started"
	}
}

// ExecutionRequest asks the sandbox to run Code as if it were the file FileName.
// The extension of FileName selects the language profile.
type ExecutionRequest struct {
	Code     string
	FileName string
	Timeout  time.Duration
	WorkDir  string // Optional parent of the scratch directory
}

// ExecutionResult is produced by the sandbox and never mutated afterwards
type ExecutionResult struct {
	Stdout          string        `json:"stdout"`
	Stderr          string        `json:"stderr"`
	StdoutTruncated bool          `json:"stdout_truncated,omitempty"`
	StderrTruncated bool          `json:"stderr_truncated,omitempty"`
	Exit            ExitStatus    `json:"exit"`
	Duration        time.Duration `json:"duration"`
}

// TimedOut reports whether the sandbox killed the child at its deadline
func (r ExecutionResult) TimedOut() bool {
	return r.Exit.Kind == ExitTimeout
}

// ExitedCleanly reports a normal exit with status 0
func (r ExecutionResult) ExitedCleanly() bool {
	return r.Exit.Kind == ExitNormal && r.Exit.Code == 0
}
