package repair

import "time"

// Attempt is one execute/classify/(patch/apply) iteration
type Attempt struct {
	Index          int             `json:"index"`
	Code           string          `json:"code"`
	Result         ExecutionResult `json:"result"`
	Classification Classification  `json:"classification"`
	PatchRequested bool            `json:"patch_requested"`
	Candidate      string          `json:"candidate,omitempty"`
	Applied        bool            `json:"applied"`
	Error          string          `json:"error,omitempty"`
	StartedAt      time.Time       `json:"started_at"`
	FinishedAt     time.Time       `json:"finished_at"`
}

// Verdict is a shortcut for the attempt's classified verdict
func (a Attempt) Verdict() Verdict {
	return a.Classification.Verdict
}

// ContentAfter returns the content written by this attempt, if any
func (a Attempt) ContentAfter() (string, bool) {
	if !a.Applied {
		return "", false
	}
	return a.Candidate, true
}

// Patch returns the candidate received from the patch service, if any
func (a Attempt) Patch() (string, bool) {
	if !a.PatchRequested || a.Candidate == "" {
		return "", false
	}
	return a.Candidate, true
}
