package app

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"

	"github.com/Ajay03299/DevForge/internal/domain/repair"
)

// JournalWriter appends normalized entries to an NDJSON journal
type JournalWriter struct {
	fs   afero.Fs
	path string
	mu   sync.Mutex
}

// NewJournalWriter creates a new JournalWriter instance
func NewJournalWriter(fsys afero.Fs, path string) *JournalWriter {
	return &JournalWriter{fs: fsys, path: path}
}

// Path returns the journal file path
func (w *JournalWriter) Path() string {
	return w.path
}

// Append writes a normalized journal entry to the journal file
func (w *JournalWriter) Append(entry *JournalEntry) error {
	e := NormalizeJournalEntry(entry)
	if err := validateJournal(e); err != nil {
		GetLogger().Warn("journal schema validation: %v", err)
	}

	b, err := json.Marshal(e)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.fs.MkdirAll(filepath.Dir(w.path), 0o755); err != nil {
		return err
	}
	f, err := w.fs.OpenFile(w.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	if _, err = bw.Write(append(b, '\n')); err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return err
	}

	// The line is already written; a failed fsync only loses durability
	if err := f.Sync(); err != nil {
		GetLogger().Warn("failed to fsync journal: %v", err)
	}
	return nil
}

// validateJournal checks the fields every line must carry
func validateJournal(e JournalEntry) error {
	if e.TS == "" {
		return errors.New("ts is empty")
	}
	if e.SessionID == "" {
		return errors.New("session_id is empty")
	}
	switch e.Event {
	case JournalAttemptStarted, JournalAttemptFinished, JournalSessionFinished:
	default:
		return errors.New("invalid event: " + e.Event)
	}
	return nil
}

// JournalObserver writes repair progress events to a journal.
// Write failures are logged and never surface to the repair loop.
type JournalObserver struct {
	w *JournalWriter
}

// NewJournalObserver creates an observer over w
func NewJournalObserver(w *JournalWriter) *JournalObserver {
	return &JournalObserver{w: w}
}

func (o *JournalObserver) AttemptStarted(_ context.Context, ev repair.AttemptStarted) {
	o.append(journalFromAttemptStarted(ev))
}

func (o *JournalObserver) AttemptFinished(_ context.Context, ev repair.AttemptFinished) {
	o.append(journalFromAttemptFinished(ev))
}

func (o *JournalObserver) SessionFinished(_ context.Context, ev repair.SessionFinished) {
	o.append(journalFromSessionFinished(ev))
}

func (o *JournalObserver) append(e *JournalEntry) {
	if err := o.w.Append(e); err != nil {
		GetLogger().Warn("journal append to %s failed: %v", o.w.Path(), err)
	}
}
