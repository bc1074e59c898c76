package repair

import (
	"crypto/rand"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
)

// DefaultMaxAttempts bounds the executions of one session
const DefaultMaxAttempts = 3

// Session is one bounded repair run over one file. The original content is
// captured once at construction and cannot be replaced afterwards.
type Session struct {
	ID          string
	TargetPath  string
	Intent      string
	Expectation string
	MaxAttempts int
	Outcome     Outcome
	StopReason  string
	StartedAt   time.Time
	FinishedAt  time.Time

	original string
	attempts []Attempt
}

// NewSessionID generates a sortable session identifier (ULID)
func NewSessionID(now time.Time) string {
	entropy := ulid.Monotonic(rand.Reader, 0)
	return ulid.MustNew(ulid.Timestamp(now), entropy).String()
}

// NewSession starts a session with the captured original content
func NewSession(id, targetPath, original, intent, expectation string, maxAttempts int, now time.Time) *Session {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Session{
		ID:          id,
		TargetPath:  targetPath,
		Intent:      intent,
		Expectation: expectation,
		MaxAttempts: maxAttempts,
		Outcome:     OutcomePending,
		StartedAt:   now,
		original:    original,
	}
}

// Original returns the content captured before the first execution
func (s *Session) Original() string {
	return s.original
}

// Attempts returns a copy of the attempt history
func (s *Session) Attempts() []Attempt {
	out := make([]Attempt, len(s.attempts))
	copy(out, s.attempts)
	return out
}

// AttemptsUsed returns the number of recorded attempts
func (s *Session) AttemptsUsed() int {
	return len(s.attempts)
}

// LastAttempt returns the most recent attempt
func (s *Session) LastAttempt() (Attempt, bool) {
	if len(s.attempts) == 0 {
		return Attempt{}, false
	}
	return s.attempts[len(s.attempts)-1], true
}

// Record appends a finalized attempt. Indices must be contiguous from 1
// and may not exceed MaxAttempts.
func (s *Session) Record(a Attempt) error {
	if s.Outcome.IsTerminal() {
		return NewError(CodeAttemptOutOfSequence, "session already finished", nil)
	}
	want := len(s.attempts) + 1
	if a.Index != want || a.Index > s.MaxAttempts {
		return NewError(CodeAttemptOutOfSequence,
			fmt.Sprintf("attempt %d recorded, expected %d (max %d)", a.Index, want, s.MaxAttempts), nil)
	}
	s.attempts = append(s.attempts, a)
	return nil
}

// Finish sets the terminal outcome
func (s *Session) Finish(outcome Outcome, reason string, now time.Time) {
	s.Outcome = outcome
	s.StopReason = reason
	s.FinishedAt = now
}

// FinalContent is the content the target holds after the loop: the last
// applied candidate, or the original when nothing was applied.
func (s *Session) FinalContent() string {
	for i := len(s.attempts) - 1; i >= 0; i-- {
		if content, ok := s.attempts[i].ContentAfter(); ok {
			return content
		}
	}
	return s.original
}

// Wrote reports whether any attempt wrote to the target
func (s *Session) Wrote() bool {
	for _, a := range s.attempts {
		if a.Applied {
			return true
		}
	}
	return false
}
