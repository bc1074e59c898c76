package repair

import "time"

// AttemptStarted is emitted before the sandbox runs an attempt
type AttemptStarted struct {
	SessionID   string `json:"session_id"`
	TargetPath  string `json:"target_path"`
	Index       int    `json:"index"`
	MaxAttempts int    `json:"max_attempts"`
}

// AttemptFinished is emitted once an attempt is finalized
type AttemptFinished struct {
	SessionID      string        `json:"session_id"`
	TargetPath     string        `json:"target_path"`
	Index          int           `json:"index"`
	MaxAttempts    int           `json:"max_attempts"`
	Verdict        Verdict       `json:"verdict"`
	Exit           ExitStatus    `json:"exit"`
	Excerpt        string        `json:"excerpt,omitempty"`
	PatchRequested bool          `json:"patch_requested"`
	Applied        bool          `json:"applied"`
	Duration       time.Duration `json:"duration"`
	Error          string        `json:"error,omitempty"`
}

// SessionFinished is emitted once with the terminal outcome
type SessionFinished struct {
	SessionID    string        `json:"session_id"`
	TargetPath   string        `json:"target_path"`
	Intent       string        `json:"intent"`
	Outcome      Outcome       `json:"outcome"`
	StopReason   string        `json:"stop_reason,omitempty"`
	AttemptsUsed int           `json:"attempts_used"`
	MaxAttempts  int           `json:"max_attempts"`
	LastVerdict  Verdict       `json:"last_verdict,omitempty"`
	LinesAdded   int           `json:"lines_added"`
	LinesDeleted int           `json:"lines_deleted"`
	Reverted     bool          `json:"reverted"`
	Duration     time.Duration `json:"duration"`
	Error        string        `json:"error,omitempty"`
}

// ExcerptLength caps diagnostic excerpts carried by events
const ExcerptLength = 160

// NewAttemptFinished builds the event for a finalized attempt
func NewAttemptFinished(s *Session, a Attempt) AttemptFinished {
	return AttemptFinished{
		SessionID:      s.ID,
		TargetPath:     s.TargetPath,
		Index:          a.Index,
		MaxAttempts:    s.MaxAttempts,
		Verdict:        a.Verdict(),
		Exit:           a.Result.Exit,
		Excerpt:        Excerpt(a.Classification.Diagnostic, ExcerptLength),
		PatchRequested: a.PatchRequested,
		Applied:        a.Applied,
		Duration:       a.Result.Duration,
		Error:          a.Error,
	}
}
