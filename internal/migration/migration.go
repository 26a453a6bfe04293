package migration

import (
	"context"

	"parceldash/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner handles database schema migrations. The statements are
// portable between PostgreSQL and SQLite.
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := r.createReportEntriesTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create report_entries table")
	}

	if err := r.createIndexes(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create indexes")
	}

	return nil
}

// created_at holds a fixed-width UTC timestamp so text ordering is time ordering
func (r *MigrationRunner) createReportEntriesTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS report_entries (
			id VARCHAR(64) PRIMARY KEY,
			created_at VARCHAR(40) NOT NULL,
			type VARCHAR(64) NOT NULL,
			format VARCHAR(32) NOT NULL,
			status VARCHAR(32) NOT NULL,
			size_label VARCHAR(32) NOT NULL DEFAULT ''
		)
	`)
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE INDEX IF NOT EXISTS idx_report_entries_created_at ON report_entries(created_at)
	`)
	return err
}
