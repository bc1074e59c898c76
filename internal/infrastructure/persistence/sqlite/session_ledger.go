package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/Ajay03299/DevForge/internal/app"
	"github.com/Ajay03299/DevForge/internal/domain/repair"
)

// SessionRecord is one row of the sessions table
type SessionRecord struct {
	ID           string
	TargetPath   string
	Intent       string
	Outcome      repair.Outcome
	StopReason   string
	AttemptsUsed int
	MaxAttempts  int
	LastVerdict  repair.Verdict
	LinesAdded   int
	LinesDeleted int
	Reverted     bool
	Duration     time.Duration
	Error        string
	StartedAt    time.Time
	FinishedAt   *time.Time
}

// AttemptRecord is one row of the attempts table
type AttemptRecord struct {
	SessionID      string
	Index          int
	Verdict        repair.Verdict
	Exit           repair.ExitStatus
	Excerpt        string
	PatchRequested bool
	Applied        bool
	Duration       time.Duration
	Error          string
}

// SessionLedger persists repair sessions and their attempts. It implements
// output.RepairObserver so the use case can feed it directly.
type SessionLedger struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (creating if needed) the ledger database and migrates it
func Open(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open ledger %s: %w", path, err)
	}
	if err := NewMigrator(db).Migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate ledger %s: %w", path, err)
	}
	return db, nil
}

// NewSessionLedger creates a ledger over a migrated database
func NewSessionLedger(db *sql.DB) *SessionLedger {
	return &SessionLedger{db: db, now: time.Now}
}

// AttemptStarted registers the session on its first attempt
func (l *SessionLedger) AttemptStarted(ctx context.Context, ev repair.AttemptStarted) {
	if ev.Index != 1 {
		return
	}
	query := `
		INSERT OR IGNORE INTO sessions (id, target_path, max_attempts, started_at)
		VALUES (?, ?, ?, ?)
	`
	if _, err := l.db.ExecContext(ctx, query, ev.SessionID, ev.TargetPath, ev.MaxAttempts, l.now().UTC()); err != nil {
		app.GetLogger().Warn("ledger: failed to register session %s: %v", ev.SessionID, err)
	}
}

// AttemptFinished saves the attempt row
func (l *SessionLedger) AttemptFinished(ctx context.Context, ev repair.AttemptFinished) {
	query := `
		INSERT OR REPLACE INTO attempts (session_id, idx, verdict, exit_kind, exit_code, signal,
			excerpt, patch_requested, applied, duration_ms, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := l.db.ExecContext(ctx, query,
		ev.SessionID,
		ev.Index,
		string(ev.Verdict),
		string(ev.Exit.Kind),
		ev.Exit.Code,
		ev.Exit.Signal,
		ev.Excerpt,
		ev.PatchRequested,
		ev.Applied,
		ev.Duration.Milliseconds(),
		ev.Error,
	)
	if err != nil {
		app.GetLogger().Warn("ledger: failed to save attempt %d of %s: %v", ev.Index, ev.SessionID, err)
	}
}

// SessionFinished upserts the terminal session row
func (l *SessionLedger) SessionFinished(ctx context.Context, ev repair.SessionFinished) {
	now := l.now().UTC()
	query := `
		INSERT INTO sessions (id, target_path, intent, outcome, stop_reason, attempts_used, max_attempts,
			last_verdict, lines_added, lines_deleted, reverted, duration_ms, error, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			intent = excluded.intent,
			outcome = excluded.outcome,
			stop_reason = excluded.stop_reason,
			attempts_used = excluded.attempts_used,
			last_verdict = excluded.last_verdict,
			lines_added = excluded.lines_added,
			lines_deleted = excluded.lines_deleted,
			reverted = excluded.reverted,
			duration_ms = excluded.duration_ms,
			error = excluded.error,
			finished_at = excluded.finished_at
	`
	_, err := l.db.ExecContext(ctx, query,
		ev.SessionID,
		ev.TargetPath,
		ev.Intent,
		string(ev.Outcome),
		ev.StopReason,
		ev.AttemptsUsed,
		ev.MaxAttempts,
		string(ev.LastVerdict),
		ev.LinesAdded,
		ev.LinesDeleted,
		ev.Reverted,
		ev.Duration.Milliseconds(),
		ev.Error,
		now.Add(-ev.Duration),
		now,
	)
	if err != nil {
		app.GetLogger().Warn("ledger: failed to finish session %s: %v", ev.SessionID, err)
	}
}

// List returns the most recent sessions, newest first. An empty target
// lists sessions for every file.
func (l *SessionLedger) List(ctx context.Context, target string, limit int) ([]*SessionRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `
		SELECT id, target_path, intent, outcome, stop_reason, attempts_used, max_attempts, last_verdict,
			lines_added, lines_deleted, reverted, duration_ms, error, started_at, finished_at
		FROM sessions
		WHERE (? = '' OR target_path = ?)
		ORDER BY started_at DESC, id DESC
		LIMIT ?
	`
	rows, err := l.db.QueryContext(ctx, query, target, target, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var records []*SessionRecord
	for rows.Next() {
		rec := &SessionRecord{}
		var outcome, verdict string
		var durationMs int64
		var finishedAt sql.NullTime

		err := rows.Scan(
			&rec.ID,
			&rec.TargetPath,
			&rec.Intent,
			&outcome,
			&rec.StopReason,
			&rec.AttemptsUsed,
			&rec.MaxAttempts,
			&verdict,
			&rec.LinesAdded,
			&rec.LinesDeleted,
			&rec.Reverted,
			&durationMs,
			&rec.Error,
			&rec.StartedAt,
			&finishedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}

		rec.Outcome = repair.Outcome(outcome)
		rec.LastVerdict = repair.Verdict(verdict)
		rec.Duration = time.Duration(durationMs) * time.Millisecond
		if finishedAt.Valid {
			rec.FinishedAt = &finishedAt.Time
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sessions: %w", err)
	}
	return records, nil
}

// Attempts returns the attempts of one session in index order
func (l *SessionLedger) Attempts(ctx context.Context, sessionID string) ([]*AttemptRecord, error) {
	query := `
		SELECT session_id, idx, verdict, exit_kind, exit_code, signal, excerpt,
			patch_requested, applied, duration_ms, error
		FROM attempts
		WHERE session_id = ?
		ORDER BY idx ASC
	`
	rows, err := l.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query attempts: %w", err)
	}
	defer rows.Close()

	var records []*AttemptRecord
	for rows.Next() {
		rec := &AttemptRecord{}
		var verdict, exitKind string
		var durationMs int64

		err := rows.Scan(
			&rec.SessionID,
			&rec.Index,
			&verdict,
			&exitKind,
			&rec.Exit.Code,
			&rec.Exit.Signal,
			&rec.Excerpt,
			&rec.PatchRequested,
			&rec.Applied,
			&durationMs,
			&rec.Error,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attempt: %w", err)
		}

		rec.Verdict = repair.Verdict(verdict)
		rec.Exit.Kind = repair.ExitKind(exitKind)
		rec.Duration = time.Duration(durationMs) * time.Millisecond
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating attempts: %w", err)
	}
	return records, nil
}
