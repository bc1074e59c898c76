package app

import (
	"time"

	"github.com/Ajay03299/DevForge/internal/domain/repair"
)

// Journal event names
const (
	JournalAttemptStarted  = "attempt_started"
	JournalAttemptFinished = "attempt_finished"
	JournalSessionFinished = "session_finished"
)

// JournalEntry is one NDJSON line of the repair journal. Every line has the
// same keys so the file can be loaded as a table.
type JournalEntry struct {
	TS         string `json:"ts"`
	Event      string `json:"event"`
	SessionID  string `json:"session_id"`
	Target     string `json:"target"`
	Attempt    int    `json:"attempt"`
	Verdict    string `json:"verdict"`
	Code       string `json:"code"`
	Outcome    string `json:"outcome"`
	StopReason string `json:"stop_reason"`
	Applied    bool   `json:"applied"`
	ElapsedMs  int64  `json:"elapsed_ms"`
	Excerpt    string `json:"excerpt"`
	Error      string `json:"error"`
}

// NormalizeJournalEntry fills missing fields so every line has the same schema
func NormalizeJournalEntry(entry *JournalEntry) JournalEntry {
	if entry == nil {
		entry = &JournalEntry{}
	}
	e := *entry
	if e.TS == "" {
		e.TS = time.Now().UTC().Format(time.RFC3339Nano)
	}
	if e.Event == "" {
		e.Event = "unknown"
	}
	if e.ElapsedMs < 0 {
		e.ElapsedMs = 0
	}
	return e
}

// journalFromAttemptStarted maps the event onto a journal line
func journalFromAttemptStarted(ev repair.AttemptStarted) *JournalEntry {
	return &JournalEntry{
		Event:     JournalAttemptStarted,
		SessionID: ev.SessionID,
		Target:    ev.TargetPath,
		Attempt:   ev.Index,
	}
}

func journalFromAttemptFinished(ev repair.AttemptFinished) *JournalEntry {
	return &JournalEntry{
		Event:     JournalAttemptFinished,
		SessionID: ev.SessionID,
		Target:    ev.TargetPath,
		Attempt:   ev.Index,
		Verdict:   string(ev.Verdict),
		Code:      ev.Verdict.ErrorCode(),
		Applied:   ev.Applied,
		ElapsedMs: ev.Duration.Milliseconds(),
		Excerpt:   ev.Excerpt,
		Error:     ev.Error,
	}
}

func journalFromSessionFinished(ev repair.SessionFinished) *JournalEntry {
	return &JournalEntry{
		Event:      JournalSessionFinished,
		SessionID:  ev.SessionID,
		Target:     ev.TargetPath,
		Attempt:    ev.AttemptsUsed,
		Verdict:    string(ev.LastVerdict),
		Outcome:    string(ev.Outcome),
		StopReason: ev.StopReason,
		ElapsedMs:  ev.Duration.Milliseconds(),
		Error:      ev.Error,
	}
}
