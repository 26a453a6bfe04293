package dataset

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"parceldash/adapters/excel"
	"parceldash/domain/core"
	"parceldash/domain/survey"
	"parceldash/internal"
	apperrors "parceldash/internal/errors"
	"parceldash/ports"

	"gopkg.in/yaml.v3"
)

// SeedLoader returns the bundled survey data set
type SeedLoader struct{}

// Load implements ports.DatasetLoader
func (SeedLoader) Load(ctx context.Context) (*survey.Dataset, error) {
	return survey.Seed()
}

// FileLoader reads a data set from JSON, YAML, XLSX or CSV
type FileLoader struct {
	path   string
	logger *internal.Logger
}

// NewLoader picks the loader for path; an empty path serves the bundled seed
func NewLoader(path string, logger *internal.Logger) ports.DatasetLoader {
	if strings.TrimSpace(path) == "" {
		return SeedLoader{}
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &FileLoader{path: path, logger: logger}
}

// Load implements ports.DatasetLoader
func (l *FileLoader) Load(ctx context.Context) (*survey.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		ds  *survey.Dataset
		err error
	)
	switch ext := strings.ToLower(filepath.Ext(l.path)); ext {
	case ".json":
		ds, err = l.loadDocument(json.Unmarshal)
	case ".yaml", ".yml":
		ds, err = l.loadDocument(yaml.Unmarshal)
	case ".xlsx", ".csv":
		ds, err = l.loadTable()
	default:
		return nil, apperrors.InvalidInput(fmt.Sprintf("unsupported dataset format %q", ext))
	}
	if err != nil {
		return nil, err
	}

	l.logger.Info("[Dataset] loaded %d communes from %s (%s)", len(ds.Communes), l.path, ds.Fingerprint().Short())
	return ds, nil
}

func (l *FileLoader) loadDocument(unmarshal func([]byte, interface{}) error) (*survey.Dataset, error) {
	raw, err := os.ReadFile(l.path)
	if err != nil {
		return nil, l.readError(err)
	}
	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))

	var ds survey.Dataset
	if err := unmarshal(raw, &ds); err != nil {
		return nil, apperrors.WithCode(apperrors.CodeDatasetUnavailable, fmt.Errorf("decode %s: %w", l.path, err))
	}
	if ds.Summary == (survey.SummaryMetrics{}) && len(ds.Communes) > 0 {
		l.logger.Debug("[Dataset] %s has no summary block, computing it from communes", l.path)
		ds.Summary, ds.Quality = ComputeAggregates(ds.Communes)
	}
	if ds.Communes == nil {
		ds.Communes = []survey.CommuneRecord{}
	}
	return &ds, nil
}

func (l *FileLoader) loadTable() (*survey.Dataset, error) {
	data, err := excel.NewDataReader(l.path, l.logger).ReadData()
	if err != nil {
		return nil, l.readError(err)
	}
	communes, warnings, err := excel.ParseCommunes(data)
	if err != nil {
		return nil, apperrors.WithCode(apperrors.CodeDatasetUnavailable, fmt.Errorf("parse %s: %w", l.path, err))
	}
	for _, w := range warnings {
		l.logger.Warn("[Dataset] %s: %s", filepath.Base(l.path), w)
	}

	summary, quality := ComputeAggregates(communes)
	return &survey.Dataset{
		Summary:        summary,
		Quality:        quality,
		Communes:       communes,
		ReportsHistory: []survey.ReportEntry{},
	}, nil
}

func (l *FileLoader) readError(err error) error {
	if errors.Is(err, os.ErrNotExist) {
		return apperrors.WithCode(apperrors.CodeDatasetUnavailable, fmt.Errorf("dataset file %s: %w", l.path, core.ErrDatasetMissing))
	}
	return apperrors.WithCode(apperrors.CodeDatasetUnavailable, fmt.Errorf("read %s: %w", l.path, err))
}
