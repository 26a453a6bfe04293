package dashboard

import (
	"context"
	"testing"
	"time"

	"parceldash/domain/core"
	"parceldash/internal"
	"parceldash/internal/reports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSession(t *testing.T, opts Options) *Session {
	t.Helper()
	opts.Logger = internal.NewNopLogger()
	if opts.Reports == nil {
		opts.Reports = reports.NewLog(nil, opts.Logger)
	}
	s := NewSession(opts)
	t.Cleanup(s.Close)
	return s
}

func loadedSession(t *testing.T, opts Options) *Session {
	t.Helper()
	s := newTestSession(t, opts)
	res := s.Load(seedDataset(t))
	require.Equal(t, targetOrder, res.Rendered)
	return s
}

func TestSession_UnloadedRendersNothing(t *testing.T) {
	s := newTestSession(t, Options{})

	res := s.ApplyFilters(FilterPatch{Status: strPtr("ERROR")})
	assert.Empty(t, res.Rendered)
	assert.NotEmpty(t, res.Skipped)
	_, ok := s.Frame(MountCommunesTable)
	assert.False(t, ok)

	res = s.Load(nil)
	assert.Empty(t, res.Rendered)
	assert.False(t, s.Loaded())
}

func TestSession_LoadPaintsEveryMount(t *testing.T) {
	s := loadedSession(t, Options{})
	for _, m := range AllMounts() {
		f, ok := s.Frame(m)
		require.True(t, ok, m)
		assert.Equal(t, 1, f.Revision, m)
	}

	kpi, _ := s.Frame(MountKPIs)
	payload := kpi.Payload.(KPIFrame)
	assert.Equal(t, "10,898", payload.Formatted.TotalParcels)
	assert.Equal(t, "0.5%", payload.Formatted.ConflictRate)
	assert.Contains(t, payload.SummaryHTML, "<table>")
	assert.Len(t, s.Reports(), 3)
}

func TestSession_FilterRepaintsOnlyDependents(t *testing.T) {
	s := loadedSession(t, Options{})

	res := s.ApplyFilters(FilterPatch{Status: strPtr("ERROR")})
	assert.Equal(t, []TargetID{TargetDistributionChart, TargetPerformanceChart, TargetCommunesTable}, res.Rendered)

	kpi, _ := s.Frame(MountKPIs)
	assert.Equal(t, 1, kpi.Revision)
	quality, _ := s.Frame(MountQualityChart)
	assert.Equal(t, 1, quality.Revision)

	perf, _ := s.Frame(MountPerformanceChart)
	cfg := perf.Payload.(ChartConfig)
	assert.Equal(t, []string{"NDOGA_BABACAR"}, cfg.Data.Labels)
	assert.Equal(t, []float64{0}, cfg.Data.Datasets[0].Data)

	table, _ := s.Frame(MountCommunesTable)
	assert.Len(t, table.Payload.(CommunesTableFrame).Rows, 1)

	// repeating the same filter changes nothing
	assert.Empty(t, s.ApplyFilters(FilterPatch{Status: strPtr("ERROR")}).Rendered)
}

func TestSession_ResetRestoresFullView(t *testing.T) {
	s := loadedSession(t, Options{})
	full := s.View()

	s.ApplyFilters(FilterPatch{CommuneName: strPtr("BALA"), SearchText: strPtr("ba")})
	assert.Len(t, s.View().FilteredCommunes, 1)

	res := s.ResetFilters()
	assert.Equal(t, []TargetID{TargetDistributionChart, TargetPerformanceChart, TargetCommunesTable}, res.Rendered)
	assert.Equal(t, full.FilteredCommunes, s.View().FilteredCommunes)
	assert.Equal(t, full.Distribution, s.View().Distribution)
	assert.True(t, s.Filters().IsZero())

	assert.Empty(t, s.ResetFilters().Rendered)
}

func TestSession_MetricAndChartType(t *testing.T) {
	s := loadedSession(t, Options{})

	res := s.SelectMetric("quality")
	assert.Equal(t, []TargetID{TargetPerformanceChart}, res.Rendered)
	assert.Empty(t, s.SelectMetric("QUALITY").Rendered)

	res = s.SelectChartType("line")
	assert.Equal(t, []TargetID{TargetPerformanceChart}, res.Rendered)

	d := s.Diagnostics()
	var perf ChartInfo
	for _, c := range d.Charts {
		if c.Mount == MountPerformanceChart {
			perf = c
		}
	}
	// metric change updated in place, chart type change recreated
	assert.Equal(t, 2, perf.Creates)
	assert.Equal(t, 1, perf.Updates)
	assert.Equal(t, ChartLine, perf.Type)
	assert.Equal(t, MetricQuality, d.Metric)

	// unknown values fall back to the defaults
	s.SelectChartType("pyramid")
	assert.Equal(t, ChartBar, s.View().ChartType)
}

func TestSession_Tabs(t *testing.T) {
	s := loadedSession(t, Options{DefaultTab: TabCommunes})
	assert.Equal(t, TabCommunes, s.ActiveTab())

	res, err := s.ActivateTab(TabQuality)
	require.NoError(t, err)
	assert.Equal(t, []TargetID{TargetQualityChart, TargetStatusChart}, res.Rendered)

	res, err = s.ActivateTab(TabQuality)
	require.NoError(t, err)
	assert.Empty(t, res.Rendered)

	_, err = s.ActivateTab("nope")
	assert.Error(t, err)
	assert.Equal(t, TabQuality, s.ActiveTab())
}

func TestSession_MissingMountIsSkipped(t *testing.T) {
	mounts := []core.MountID{MountKPIs, MountCommunesTable, MountReportsTable}
	s := newTestSession(t, Options{Mounts: mounts})

	res := s.Load(seedDataset(t))
	assert.Equal(t, []TargetID{TargetKPIs, TargetCommunesTable, TargetReportsTable}, res.Rendered)
	assert.Len(t, res.Skipped, 4)
	assert.Empty(t, res.Failed)

	d := s.Diagnostics()
	assert.ElementsMatch(t,
		[]core.MountID{MountDistributionChart, MountPerformanceChart, MountQualityChart, MountStatusChart},
		d.MissingMounts)

	res = s.DeclareMounts(AllMounts())
	assert.Equal(t, targetOrder, res.Rendered)
}

func TestSession_DeclareMountsReleasesCharts(t *testing.T) {
	s := loadedSession(t, Options{})
	s.DeclareMounts([]core.MountID{MountKPIs})

	for _, c := range s.Diagnostics().Charts {
		assert.False(t, c.Live, c.Mount)
	}
}

func TestSession_DebouncedSearch(t *testing.T) {
	s := loadedSession(t, Options{SearchDebounce: 30 * time.Millisecond})
	before, _ := s.Frame(MountCommunesTable)

	s.SetSearchText("b")
	s.SetSearchText("ba")
	s.SetSearchText("bal")
	assert.True(t, s.SearchPending())
	assert.Equal(t, "", s.Filters().SearchText)

	require.Eventually(t, func() bool { return !s.SearchPending() }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "bal", s.Filters().SearchText)

	after, _ := s.Frame(MountCommunesTable)
	assert.Equal(t, before.Revision+1, after.Revision)
	assert.Equal(t, 2, after.Payload.(CommunesTableFrame).VisibleCount)

	dist, _ := s.Frame(MountDistributionChart)
	assert.Equal(t, 1, dist.Revision)
}

func TestSession_ImmediateSearchDropsPending(t *testing.T) {
	s := loadedSession(t, Options{SearchDebounce: time.Hour})

	s.SetSearchText("koar")
	res := s.SetSearchTextNow("ou")
	assert.Equal(t, []TargetID{TargetCommunesTable}, res.Rendered)
	assert.False(t, s.SearchPending())
	assert.Equal(t, "ou", s.Filters().SearchText)
}

func TestSession_GenerateReport(t *testing.T) {
	s := loadedSession(t, Options{})
	s.ApplyFilters(FilterPatch{Status: strPtr("SUCCESS")})

	entry, res, err := s.GenerateReport(context.Background(), "Communes", "XLSX")
	require.NoError(t, err)
	assert.Equal(t, "communes", entry.Type)
	assert.Equal(t, "xlsx", entry.Format)
	assert.Equal(t, []TargetID{TargetReportsTable}, res.Rendered)
	assert.Len(t, s.Reports(), 4)

	frame, _ := s.Frame(MountReportsTable)
	assert.Equal(t, 2, frame.Revision)

	_, _, err = s.GenerateReport(context.Background(), "", "pdf")
	assert.Error(t, err)
	assert.Len(t, s.Reports(), 4)
}

func TestSession_DateRangeFiltersReportsOnly(t *testing.T) {
	s := loadedSession(t, Options{})

	res := s.ApplyFilters(FilterPatch{DateRange: strPtr("2024-06-01/2024-06-12")})
	assert.Equal(t, []TargetID{TargetReportsTable}, res.Rendered)
	assert.Len(t, s.View().Reports, 2)
	assert.Len(t, s.View().FilteredCommunes, 11)
}

func TestSession_Diagnostics(t *testing.T) {
	s := newTestSession(t, Options{})
	d := s.Diagnostics()
	assert.False(t, d.Loaded)
	assert.Nil(t, d.LoadedAt)
	assert.NotNil(t, d.DatasetWarnings)
	assert.Len(t, d.Charts, 4)

	s.Load(seedDataset(t))
	d = s.Diagnostics()
	assert.True(t, d.Loaded)
	assert.NotNil(t, d.LoadedAt)
	assert.Equal(t, 11, d.CommuneCount)
	assert.NotEmpty(t, d.DatasetFingerprint)
	assert.Equal(t, 1, d.RenderCounts[TargetKPIs])
	assert.Equal(t, 3, d.ReportCount)
	assert.Empty(t, d.MissingMounts)
}

func TestSession_HistoryWithoutIDsSurvivesLoad(t *testing.T) {
	ds := seedDataset(t)
	for i := range ds.ReportsHistory {
		ds.ReportsHistory[i].ID = ""
	}
	s := newTestSession(t, Options{})
	s.Load(ds)

	history := s.Reports()
	require.Len(t, history, 3)
	for i, e := range history {
		assert.NotEmpty(t, e.ID)
		assert.Equal(t, ds.ReportsHistory[i].Timestamp, e.Timestamp)
		assert.Equal(t, ds.ReportsHistory[i].Type, e.Type)
	}
	assert.Len(t, s.View().Reports, 3)

	entry, res, err := s.GenerateReport(context.Background(), "summary", "csv")
	require.NoError(t, err)
	assert.Equal(t, []TargetID{TargetReportsTable}, res.Rendered)

	all := s.Reports()
	require.Len(t, all, 4)
	assert.Equal(t, history, all[:3])
	assert.Equal(t, entry.ID, all[3].ID)
}

func TestSession_ReplacedSearchIsNotAppliedByEarlierCallback(t *testing.T) {
	s := loadedSession(t, Options{SearchDebounce: 5 * time.Millisecond})

	s.mu.Lock()
	s.scheduleSearchLocked("bala")
	// the first callback fires and queues on the lock
	time.Sleep(50 * time.Millisecond)
	s.search = NewDebouncer(time.Hour)
	s.scheduleSearchLocked("ballou")
	s.mu.Unlock()

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, "", s.Filters().SearchText)
	assert.True(t, s.SearchPending())
}
