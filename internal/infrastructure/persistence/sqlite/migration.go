package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is bumped together with schema.sql
const schemaVersion = 1

// Migrator manages database schema migrations
type Migrator struct {
	db *sql.DB
}

// NewMigrator creates a new database migrator
func NewMigrator(db *sql.DB) *Migrator {
	return &Migrator{db: db}
}

// Migrate applies all pending database migrations
func (m *Migrator) Migrate(ctx context.Context) error {
	// Create schema_migrations table if it doesn't exist
	if err := m.ensureMigrationsTable(ctx); err != nil {
		return fmt.Errorf("create migrations table failed: %w", err)
	}

	version, err := m.Version(ctx)
	if err != nil {
		return fmt.Errorf("check schema version failed: %w", err)
	}
	if version >= schemaVersion {
		return nil
	}

	if err := m.applySchema(ctx); err != nil {
		return fmt.Errorf("apply schema failed: %w", err)
	}
	return nil
}

func (m *Migrator) ensureMigrationsTable(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			description TEXT
		);
	`
	_, err := m.db.ExecContext(ctx, query)
	return err
}

func (m *Migrator) applySchema(ctx context.Context) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction failed: %w", err)
	}
	defer tx.Rollback()

	for i, stmt := range splitSQLStatements(schemaSQL) {
		// Already handled by ensureMigrationsTable
		if strings.Contains(stmt, "schema_migrations") {
			continue
		}
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("execute statement %d failed: %w\nStatement: %s", i, err, stmt)
		}
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO schema_migrations (version, description) VALUES (?, ?)",
		schemaVersion, "repair ledger"); err != nil {
		return fmt.Errorf("record migration failed: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction failed: %w", err)
	}
	return nil
}

// splitSQLStatements splits a SQL file into individual statements
func splitSQLStatements(sql string) []string {
	lines := strings.Split(sql, "\n")
	var cleanLines []string
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		cleanLines = append(cleanLines, line)
	}

	var result []string
	for _, stmt := range strings.Split(strings.Join(cleanLines, "\n"), ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt != "" {
			result = append(result, stmt)
		}
	}
	return result
}

// Version returns the current schema version, 0 for an empty database
func (m *Migrator) Version(ctx context.Context) (int, error) {
	var version sql.NullInt64
	err := m.db.QueryRowContext(ctx, "SELECT MAX(version) FROM schema_migrations").Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if !version.Valid {
		return 0, nil
	}
	return int(version.Int64), nil
}
