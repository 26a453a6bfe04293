package ports

import (
	"context"

	"parceldash/domain/survey"
)

// ReportRepository persists the report history
type ReportRepository interface {
	// Append stores one entry; entries are never updated or removed
	Append(ctx context.Context, entry survey.ReportEntry) error

	// List returns every stored entry, oldest first
	List(ctx context.Context) ([]survey.ReportEntry, error)
}

// DatasetLoader produces the survey data set consumed by the dashboard
type DatasetLoader interface {
	Load(ctx context.Context) (*survey.Dataset, error)
}
