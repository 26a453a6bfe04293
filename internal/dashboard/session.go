package dashboard

import (
	"context"
	"sync"
	"time"

	"parceldash/domain/core"
	"parceldash/domain/survey"
	"parceldash/internal"
	"parceldash/internal/reports"
)

// Options configures a Session
type Options struct {
	DefaultTab     core.TabID
	Metric         Metric
	ChartType      ChartType
	SearchDebounce time.Duration
	// Mounts present on the page; nil declares every known mount
	Mounts  []core.MountID
	Reports *reports.Log
	// Backend allocates chart resources; nil paints Chart.js configs onto the surface
	Backend ChartBackend
	Logger  *internal.Logger
}

// Session owns the dashboard state: data set, filters, active view, charts
// and report history. Every input change re-derives the view and repaints
// only the render targets that read the changed input.
type Session struct {
	mu sync.Mutex

	dataset  *survey.Dataset
	loadedAt time.Time
	warnings []string

	filters   FilterState
	metric    Metric
	chartType ChartType

	tabs       *TabController
	surface    *Surface
	charts     map[TargetID]*ChartHandle
	dispatcher *Dispatcher
	reports    *reports.Log

	search        *Debouncer
	pendingSearch *string
	lastRefresh   RefreshResult

	logger *internal.Logger
	closed bool
}

// NewSession builds an empty session; nothing renders until Load
func NewSession(opts Options) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = internal.DefaultLogger
	}
	mounts := opts.Mounts
	if mounts == nil {
		mounts = AllMounts()
	}
	reportLog := opts.Reports
	if reportLog == nil {
		reportLog = reports.NewLog(nil, logger)
	}

	surface := NewSurface(mounts...)
	backend := opts.Backend
	if backend == nil {
		backend = NewSurfaceChartBackend(surface)
	}

	charts := map[TargetID]*ChartHandle{
		TargetDistributionChart: NewChartHandle(MountDistributionChart, backend),
		TargetPerformanceChart:  NewChartHandle(MountPerformanceChart, backend),
		TargetQualityChart:      NewChartHandle(MountQualityChart, backend),
		TargetStatusChart:       NewChartHandle(MountStatusChart, backend),
	}

	dispatcher := NewDispatcher(surface, logger,
		&kpiTarget{surface: surface},
		&chartTarget{id: TargetDistributionChart, mount: MountDistributionChart, handle: charts[TargetDistributionChart], build: distributionChart},
		&chartTarget{id: TargetPerformanceChart, mount: MountPerformanceChart, handle: charts[TargetPerformanceChart], build: performanceChart},
		&chartTarget{id: TargetQualityChart, mount: MountQualityChart, handle: charts[TargetQualityChart], build: qualityChart},
		&chartTarget{id: TargetStatusChart, mount: MountStatusChart, handle: charts[TargetStatusChart], build: statusChart},
		&communesTableTarget{surface: surface},
		&reportsTableTarget{surface: surface},
	)

	return &Session{
		metric:     ParseMetric(string(opts.Metric)),
		chartType:  ParseChartType(string(opts.ChartType)),
		tabs:       NewTabController(opts.DefaultTab),
		surface:    surface,
		charts:     charts,
		dispatcher: dispatcher,
		reports:    reportLog,
		search:     NewDebouncer(opts.SearchDebounce),
		logger:     logger,
	}
}

// Load installs the data set, seeds the report history and paints every target
func (s *Session) Load(ds *survey.Dataset) RefreshResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ds == nil {
		s.logger.Warn("[Session] nil dataset, dashboard stays empty")
		return s.refreshLocked()
	}
	s.dataset = ds
	s.loadedAt = time.Now()
	s.warnings = ds.Inconsistencies()
	for _, w := range s.warnings {
		s.logger.Warn("[Session] dataset: %s", w)
	}
	s.reports.Seed(ds.ReportsHistory)
	s.logger.Info("[Session] loaded %d communes (%s)", len(ds.Communes), ds.Fingerprint())
	return s.refreshLocked(targetOrder...)
}

// Loaded reports whether a data set is installed
func (s *Session) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dataset != nil
}

// View derives the current view
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

func (s *Session) viewLocked() View {
	v := Derive(s.dataset, s.filters, s.metric, s.chartType)
	if v.Loaded {
		v.Reports = FilterReports(s.reports.Entries(), s.filters.DateRange)
	}
	return v
}

func (s *Session) refreshLocked(ids ...TargetID) RefreshResult {
	res := s.dispatcher.Refresh(s.viewLocked(), ids...)
	s.lastRefresh = res
	return res
}

// Filters returns the current filter state
func (s *Session) Filters() FilterState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filters
}

// ApplyFilters merges a partial update and repaints what depends on the changed fields
func (s *Session) ApplyFilters(patch FilterPatch) RefreshResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	if patch.SearchText != nil {
		s.cancelPendingSearchLocked()
	}
	next, dims := s.filters.Apply(patch)
	s.filters = next
	return s.refreshLocked(TargetsFor(dims...)...)
}

// ResetFilters clears every filter; resetting an unfiltered view paints nothing
func (s *Session) ResetFilters() RefreshResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelPendingSearchLocked()
	dims := FilterState{}.changedFrom(s.filters)
	s.filters = FilterState{}
	return s.refreshLocked(TargetsFor(dims...)...)
}

// SetSearchText applies text after the quiet period; each call replaces the pending one
func (s *Session) SetSearchText(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.scheduleSearchLocked(text)
}

func (s *Session) scheduleSearchLocked(text string) {
	pending := &text
	s.pendingSearch = pending
	s.search.Start(func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		// replaced while this callback waited for the lock
		if s.closed || s.pendingSearch != pending {
			return
		}
		s.applySearchLocked(text)
	})
}

// SetSearchTextNow applies text immediately, dropping any pending search
func (s *Session) SetSearchTextNow(text string) RefreshResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelPendingSearchLocked()
	return s.applySearchLocked(text)
}

func (s *Session) applySearchLocked(text string) RefreshResult {
	s.pendingSearch = nil
	next, dims := s.filters.Apply(FilterPatch{SearchText: &text})
	s.filters = next
	return s.refreshLocked(TargetsFor(dims...)...)
}

func (s *Session) cancelPendingSearchLocked() {
	s.search.Cancel()
	s.pendingSearch = nil
}

// SearchPending reports whether a debounced search is waiting
func (s *Session) SearchPending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pendingSearch != nil
}

// SelectMetric changes the performance chart metric
func (s *Session) SelectMetric(metric string) RefreshResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := ParseMetric(metric)
	if next == s.metric {
		return s.refreshLocked()
	}
	s.metric = next
	return s.refreshLocked(TargetsFor(DimMetric)...)
}

// SelectChartType changes the performance chart style
func (s *Session) SelectChartType(chartType string) RefreshResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := ParseChartType(chartType)
	if next == s.chartType {
		return s.refreshLocked()
	}
	s.chartType = next
	return s.refreshLocked(TargetsFor(DimChartType)...)
}

// ActivateTab switches the view and repaints only its targets
func (s *Session) ActivateTab(id core.TabID) (RefreshResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed, targets, err := s.tabs.Activate(id)
	if err != nil {
		return RefreshResult{}, err
	}
	if !changed {
		return s.refreshLocked(), nil
	}
	s.logger.Debug("[Session] tab %s active", id)
	return s.refreshLocked(targets...), nil
}

// ActiveTab returns the active view
func (s *Session) ActiveTab() core.TabID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tabs.Active()
}

// Tabs lists the views with their active flag
func (s *Session) Tabs() []TabState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tabs.Tabs()
}

// GenerateReport appends a report entry sized for the current selection
// and repaints the reports table
func (s *Session) GenerateReport(ctx context.Context, reportType, format string) (survey.ReportEntry, RefreshResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows := len(FilterCommunes(s.dataset, s.filters))
	entry, err := s.reports.Generate(ctx, reportType, format, rows)
	if err != nil {
		return survey.ReportEntry{}, RefreshResult{}, err
	}
	return entry, s.refreshLocked(TargetReportsTable), nil
}

// Reports returns the full report history
func (s *Session) Reports() []survey.ReportEntry {
	return s.reports.Entries()
}

// DeclareMounts replaces the page's mount points and repaints everything
func (s *Session) DeclareMounts(mounts []core.MountID) RefreshResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.surface.Declare(mounts...)
	for id, h := range s.charts {
		if !s.surface.Has(h.mount) {
			s.logger.Debug("[Session] releasing chart %s, mount gone", id)
			h.Destroy()
		}
	}
	return s.refreshLocked(targetOrder...)
}

// Frame returns the latest frame painted on a mount
func (s *Session) Frame(mount core.MountID) (Frame, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.surface.Frame(mount)
}

// Close cancels any pending search and releases the charts
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.cancelPendingSearchLocked()
	for _, h := range s.charts {
		h.Destroy()
	}
}
