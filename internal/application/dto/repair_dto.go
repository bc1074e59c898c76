package dto

import (
	"time"

	"github.com/Ajay03299/DevForge/internal/domain/diff"
	"github.com/Ajay03299/DevForge/internal/domain/repair"
)

// RunRepairInput represents input for one repair session
type RunRepairInput struct {
	FilePath        string               `json:"file_path"`
	Intent          string               `json:"intent"`
	Expectation     string               `json:"expectation,omitempty"`    // Explicit expectation; extracted from Intent when empty
	MaxAttempts     int                  `json:"max_attempts,omitempty"`   // <= 0 means the configured default
	Timeout         time.Duration        `json:"timeout,omitempty"`        // Per execution; <= 0 means the configured default
	MatchStrategy   repair.MatchStrategy `json:"match_strategy,omitempty"` // Empty means the configured default
	RevertOnFailure bool                 `json:"revert_on_failure"`        // Restore the backup when the session does not succeed
}

// AttemptDTO is the display form of one attempt
type AttemptDTO struct {
	Index          int               `json:"index"`
	Verdict        repair.Verdict    `json:"verdict"`
	Exit           repair.ExitStatus `json:"exit"`
	Excerpt        string            `json:"excerpt,omitempty"`
	Diagnostic     string            `json:"diagnostic,omitempty"`
	PatchRequested bool              `json:"patch_requested"`
	Applied        bool              `json:"applied"`
	DurationMs     int64             `json:"duration_ms"`
	Error          string            `json:"error,omitempty"`
}

// RunRepairOutput represents the result of a repair session
type RunRepairOutput struct {
	SessionID   string         `json:"session_id"`
	FilePath    string         `json:"file_path"`
	Intent      string         `json:"intent"`
	Expectation string         `json:"expectation,omitempty"`
	Outcome     repair.Outcome `json:"outcome"`
	StopReason  string         `json:"stop_reason,omitempty"`

	AttemptsUsed int            `json:"attempts_used"`
	MaxAttempts  int            `json:"max_attempts"`
	Attempts     []AttemptDTO   `json:"attempts"`
	LastVerdict  repair.Verdict `json:"last_verdict,omitempty"`
	LastExcerpt  string         `json:"last_excerpt,omitempty"` // Diagnostic excerpt of the last attempt

	// Results
	Diff         diff.Report `json:"diff"`
	UnifiedDiff  string      `json:"unified_diff,omitempty"`
	LinesAdded   int         `json:"lines_added"`
	LinesDeleted int         `json:"lines_deleted"`
	BackupPath   string      `json:"backup_path,omitempty"` // Set when a backup was written
	Reverted     bool        `json:"reverted"`
	ErrorMsg     string      `json:"error_msg,omitempty"` // Infrastructure failure, verbatim
	ElapsedMs    int64       `json:"elapsed_ms"`
	CompletedAt  time.Time   `json:"completed_at"`

	// Err is the infrastructure error behind ErrorMsg, for errors.As
	Err error `json:"-"`
	// Session is the full session record
	Session *repair.Session `json:"-"`
}

// NewAttemptDTO converts a finalized attempt
func NewAttemptDTO(a repair.Attempt) AttemptDTO {
	return AttemptDTO{
		Index:          a.Index,
		Verdict:        a.Verdict(),
		Exit:           a.Result.Exit,
		Excerpt:        repair.Excerpt(a.Classification.Diagnostic, repair.ExcerptLength),
		Diagnostic:     a.Classification.Diagnostic,
		PatchRequested: a.PatchRequested,
		Applied:        a.Applied,
		DurationMs:     a.Result.Duration.Milliseconds(),
		Error:          a.Error,
	}
}
