package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"parceldash/domain/core"
	"parceldash/domain/survey"
	"parceldash/internal/errors"
	"parceldash/internal/migration"
	"parceldash/ports"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// timestampLayout is fixed width so lexical order matches time order
const timestampLayout = "2006-01-02T15:04:05.000000000Z"

// ReportRepositoryImpl implements ReportRepository over sqlx
type ReportRepositoryImpl struct {
	db *sqlx.DB
}

// NewReportRepository creates a report repository on an open database
func NewReportRepository(db *sqlx.DB) ports.ReportRepository {
	return &ReportRepositoryImpl{db: db}
}

// Open connects with driver "postgres" or "sqlite" and runs migrations
func Open(ctx context.Context, driver, dsn string) (*sqlx.DB, error) {
	driver = strings.ToLower(driver)
	if driver != "postgres" && driver != "sqlite" {
		return nil, errors.ConfigInvalid(fmt.Sprintf("unsupported report database driver %q", driver))
	}

	db, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, errors.WithCode(errors.CodeDatabaseError, errors.Wrap(err, "failed to connect to report database"))
	}
	if driver == "sqlite" {
		// a single connection keeps ":memory:" databases shared
		db.SetMaxOpenConns(1)
	}

	if err := migration.NewRunner().Run(ctx, db); err != nil {
		db.Close()
		return nil, errors.WithCode(errors.CodeDatabaseError, errors.Wrap(err, "report database migration failed"))
	}
	return db, nil
}

type reportRow struct {
	ID        string `db:"id"`
	CreatedAt string `db:"created_at"`
	Type      string `db:"type"`
	Format    string `db:"format"`
	Status    string `db:"status"`
	SizeLabel string `db:"size_label"`
}

// Append stores one entry
func (r *ReportRepositoryImpl) Append(ctx context.Context, entry survey.ReportEntry) error {
	query := r.db.Rebind(`
		INSERT INTO report_entries (id, created_at, type, format, status, size_label)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	_, err := r.db.ExecContext(ctx, query,
		entry.ID.String(),
		entry.Timestamp.Time().UTC().Format(timestampLayout),
		entry.Type,
		entry.Format,
		string(entry.Status),
		entry.SizeLabel,
	)
	if err != nil {
		return errors.WithCode(errors.CodeDatabaseError, errors.Wrapf(err, "failed to insert report %s", entry.ID))
	}
	return nil
}

// List returns every stored entry, oldest first
func (r *ReportRepositoryImpl) List(ctx context.Context) ([]survey.ReportEntry, error) {
	var rows []reportRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT id, created_at, type, format, status, size_label
		FROM report_entries
		ORDER BY created_at ASC, id ASC
	`)
	if err != nil {
		return nil, errors.WithCode(errors.CodeDatabaseError, errors.Wrap(err, "failed to list reports"))
	}

	entries := make([]survey.ReportEntry, 0, len(rows))
	for _, row := range rows {
		ts, err := time.Parse(timestampLayout, row.CreatedAt)
		if err != nil {
			return nil, errors.WithCode(errors.CodeDatabaseError, errors.Wrapf(err, "bad timestamp on report %s", row.ID))
		}
		entries = append(entries, survey.ReportEntry{
			ID:        core.ReportID(row.ID),
			Timestamp: core.NewTimestamp(ts),
			Type:      row.Type,
			Format:    row.Format,
			Status:    survey.ReportStatus(row.Status),
			SizeLabel: row.SizeLabel,
		})
	}
	return entries, nil
}
