package dataset

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"parceldash/adapters/excel"
	"parceldash/domain/core"
	"parceldash/domain/survey"
	"parceldash/internal"
	apperrors "parceldash/internal/errors"
	"parceldash/internal/reports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T) *survey.Dataset {
	t.Helper()
	ds, err := survey.Seed()
	require.NoError(t, err)
	return ds
}

func write(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, content, 0o644))
	return path
}

func TestNewLoader_EmptyPathServesSeed(t *testing.T) {
	loader := NewLoader("  ", nil)
	assert.IsType(t, SeedLoader{}, loader)

	ds, err := loader.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, seed(t), ds)
}

func TestFileLoader_JSON(t *testing.T) {
	path := write(t, "survey.json", survey.SeedJSON())
	ds, err := NewLoader(path, internal.NewNopLogger()).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, seed(t), ds)
}

func TestFileLoader_YAML(t *testing.T) {
	doc := `
summary:
  totalFiles: 2
  totalParcels: 100
  processedFiles: 2
  conflicts: 3
  successRate: 50
  cleaningRate: 80
quality:
  validationRate: 50
  criticalErrors: 1
  consistency: 80
communes:
  - name: BALA
    rawParcelCount: 60
    individualParcelCount: 40
    collectiveParcelCount: 10
    conflictCount: 3
    qualityScore: 91.5
    status: success
  - name: KOAR
    rawParcelCount: 40
    individualParcelCount: 30
    status: ERROR
reportsHistory:
  - id: 0190a1c2-5b00-7000-8000-000000000009
    timestamp: "2024-07-01T10:00:00Z"
    type: summary
    format: pdf
    status: DONE
    sizeLabel: 1 MB
`
	path := write(t, "survey.yml", []byte(doc))
	ds, err := NewLoader(path, internal.NewNopLogger()).Load(context.Background())
	require.NoError(t, err)

	require.Len(t, ds.Communes, 2)
	assert.Equal(t, survey.StatusSuccess, ds.Communes[0].Status)
	assert.Equal(t, survey.StatusError, ds.Communes[1].Status)
	assert.Equal(t, 100, ds.Summary.TotalParcels)
	require.Len(t, ds.ReportsHistory, 1)
	assert.Equal(t, survey.ReportDone, ds.ReportsHistory[0].Status)
}

func TestFileLoader_HistoryWithoutIDs(t *testing.T) {
	doc := `{
  "summary": {"totalFiles": 1, "totalParcels": 60, "processedFiles": 1, "conflicts": 3, "successRate": 100, "cleaningRate": 83.3},
  "quality": {"validationRate": 100, "criticalErrors": 0, "consistency": 91.5},
  "communes": [
    {"name": "BALA", "rawParcelCount": 60, "individualParcelCount": 40, "collectiveParcelCount": 10, "conflictCount": 3, "qualityScore": 91.5, "status": "SUCCESS"}
  ],
  "reportsHistory": [
    {"timestamp": "2024-06-03T09:15:00Z", "type": "summary", "format": "pdf", "status": "DONE", "sizeLabel": "2.4 MB"},
    {"timestamp": "2024-06-10T14:30:00Z", "type": "conflicts", "format": "xlsx", "status": "DONE", "sizeLabel": "860 kB"}
  ]
}`
	path := write(t, "survey.json", []byte(doc))
	ds, err := NewLoader(path, internal.NewNopLogger()).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, ds.ReportsHistory, 2)
	assert.Empty(t, ds.Inconsistencies())

	log := reports.NewLog(nil, internal.NewNopLogger())
	log.Seed(ds.ReportsHistory)
	entries := log.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "summary", entries[0].Type)
	assert.Equal(t, "conflicts", entries[1].Type)
	assert.NotEmpty(t, entries[0].ID)
	assert.NotEmpty(t, entries[1].ID)
}

func TestFileLoader_TabularComputesAggregates(t *testing.T) {
	want := seed(t)
	path := filepath.Join(t.TempDir(), "communes.xlsx")
	require.NoError(t, excel.WriteCommunes(path, want.Communes))

	ds, err := NewLoader(path, internal.NewNopLogger()).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want.Communes, ds.Communes)
	assert.Equal(t, want.Summary, ds.Summary)
	assert.Equal(t, want.Quality, ds.Quality)
	assert.Empty(t, ds.ReportsHistory)
}

func TestFileLoader_CSV(t *testing.T) {
	path := write(t, "communes.csv", []byte("name,rawParcelCount,individualParcelCount,collectiveParcelCount,conflictCount,qualityScore,status\n"+
		"BALA,1024,718,144,0,92.4,SUCCESS\n"))

	ds, err := NewLoader(path, internal.NewNopLogger()).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, ds.Communes, 1)
	assert.Equal(t, 1024, ds.Summary.TotalParcels)
	assert.Equal(t, 100.0, ds.Summary.SuccessRate)
	assert.Equal(t, 84.2, ds.Summary.CleaningRate)
}

func TestFileLoader_Errors(t *testing.T) {
	ctx := context.Background()
	logger := internal.NewNopLogger()

	_, err := NewLoader(filepath.Join(t.TempDir(), "absent.json"), logger).Load(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrDatasetMissing)
	assert.Equal(t, apperrors.CodeDatasetUnavailable, apperrors.GetCode(err))

	_, err = NewLoader(filepath.Join(t.TempDir(), "absent.csv"), logger).Load(ctx)
	assert.ErrorIs(t, err, core.ErrDatasetMissing)

	bad := write(t, "broken.json", []byte("{"))
	_, err = NewLoader(bad, logger).Load(ctx)
	assert.Equal(t, apperrors.CodeDatasetUnavailable, apperrors.GetCode(err))

	_, err = NewLoader("survey.parquet", logger).Load(ctx)
	assert.Equal(t, apperrors.CodeInvalidInput, apperrors.GetCode(err))

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = NewLoader(bad, logger).Load(cancelled)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestComputeAggregates(t *testing.T) {
	summary, quality := ComputeAggregates(nil)
	assert.Equal(t, survey.SummaryMetrics{}, summary)
	assert.Equal(t, survey.QualityMetrics{}, quality)

	summary, quality = ComputeAggregates([]survey.CommuneRecord{{Name: "EMPTY", Status: survey.StatusError}})
	assert.Equal(t, 0.0, summary.CleaningRate)
	assert.Equal(t, 0.0, quality.Consistency)
	assert.Equal(t, 1, quality.CriticalErrors)
}
