package dashboard

import (
	"sort"
	"time"

	"parceldash/domain/core"
)

// Diagnostics is a read-only snapshot of the session for troubleshooting
type Diagnostics struct {
	Loaded             bool             `json:"loaded"`
	LoadedAt           *time.Time       `json:"loadedAt,omitempty"`
	DatasetFingerprint string           `json:"datasetFingerprint"`
	CommuneCount       int              `json:"communeCount"`
	DatasetWarnings    []string         `json:"datasetWarnings"`
	Filters            FilterState      `json:"filters"`
	SearchPending      bool             `json:"searchPending"`
	ActiveTab          core.TabID       `json:"activeTab"`
	Metric             Metric           `json:"metric"`
	ChartType          ChartType        `json:"chartType"`
	Charts             []ChartInfo      `json:"charts"`
	DeclaredMounts     []core.MountID   `json:"declaredMounts"`
	MissingMounts      []core.MountID   `json:"missingMounts"`
	RenderCounts       map[TargetID]int `json:"renderCounts"`
	LastRefresh        RefreshResult    `json:"lastRefresh"`
	ReportCount        int              `json:"reportCount"`
}

// Diagnostics snapshots the session without changing it. Absent state is
// reported as empty values rather than nil.
func (s *Session) Diagnostics() Diagnostics {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := Diagnostics{
		Loaded:          s.dataset != nil,
		DatasetWarnings: append([]string{}, s.warnings...),
		Filters:         s.filters,
		SearchPending:   s.pendingSearch != nil,
		ActiveTab:       s.tabs.Active(),
		Metric:          s.metric,
		ChartType:       s.chartType,
		Charts:          []ChartInfo{},
		DeclaredMounts:  s.surface.Declared(),
		MissingMounts:   s.surface.Missing(AllMounts()),
		RenderCounts:    s.dispatcher.RenderCounts(),
		LastRefresh:     s.lastRefresh,
		ReportCount:     s.reports.Len(),
	}
	if d.MissingMounts == nil {
		d.MissingMounts = []core.MountID{}
	}
	if d.Loaded {
		at := s.loadedAt
		d.LoadedAt = &at
		d.DatasetFingerprint = s.dataset.Fingerprint().String()
		d.CommuneCount = len(s.dataset.Communes)
	}
	for _, h := range s.charts {
		d.Charts = append(d.Charts, h.Info())
	}
	sort.Slice(d.Charts, func(i, j int) bool { return d.Charts[i].Mount < d.Charts[j].Mount })
	return d
}
