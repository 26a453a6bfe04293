package dashboard

import (
	"math"
	"strings"

	"parceldash/domain/survey"

	"github.com/montanaflynn/stats"
)

// Metric selects the per-commune value plotted by the performance chart
type Metric string

const (
	MetricIndividual Metric = "individual"
	MetricCollective Metric = "collective"
	MetricConflicts  Metric = "conflicts"
	MetricQuality    Metric = "quality"
)

// ParseMetric falls back to individual for unknown input
func ParseMetric(s string) Metric {
	switch m := Metric(strings.ToLower(strings.TrimSpace(s))); m {
	case MetricIndividual, MetricCollective, MetricConflicts, MetricQuality:
		return m
	}
	return MetricIndividual
}

// Label is the human-readable series name
func (m Metric) Label() string {
	switch m {
	case MetricCollective:
		return "Collective parcels"
	case MetricConflicts:
		return "Conflicts"
	case MetricQuality:
		return "Quality score"
	default:
		return "Individual parcels"
	}
}

// ChartType is the rendering style of the performance chart
type ChartType string

const (
	ChartBar      ChartType = "bar"
	ChartLine     ChartType = "line"
	ChartPie      ChartType = "pie"
	ChartDoughnut ChartType = "doughnut"
	ChartRadar    ChartType = "radar"
)

// ParseChartType accepts the styles a user can pick, falling back to bar
func ParseChartType(s string) ChartType {
	switch c := ChartType(strings.ToLower(strings.TrimSpace(s))); c {
	case ChartBar, ChartLine, ChartDoughnut:
		return c
	}
	return ChartBar
}

// KPIValues are the headline scalars
type KPIValues struct {
	TotalFiles     int     `json:"totalFiles"`
	ProcessedFiles int     `json:"processedFiles"`
	TotalParcels   int     `json:"totalParcels"`
	Conflicts      int     `json:"conflicts"`
	SuccessRate    float64 `json:"successRate"`
	CleaningRate   float64 `json:"cleaningRate"`
	ConflictRate   float64 `json:"conflictRate"`
	ValidationRate float64 `json:"validationRate"`
	CriticalErrors int     `json:"criticalErrors"`
	Consistency    float64 `json:"consistency"`
}

// Series is a labelled list of chart values
type Series struct {
	Label  string    `json:"label"`
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
}

// DistributionLabels name the three slices of the distribution series
var DistributionLabels = []string{"Individual", "Collective", "Conflicts"}

// CommuneRow is a communes-table row; Visible carries the search predicate
type CommuneRow struct {
	survey.CommuneRecord
	Visible bool `json:"visible"`
}

// View is everything the render targets need for one filter state
type View struct {
	Loaded           bool                   `json:"loaded"`
	Filters          FilterState            `json:"filters"`
	Metric           Metric                 `json:"metric"`
	ChartType        ChartType              `json:"chartType"`
	FilteredCommunes []survey.CommuneRecord `json:"filteredCommunes"`
	KPIs             KPIValues              `json:"kpis"`
	Formatted        FormattedKPIs          `json:"formatted"`
	Distribution     []int                  `json:"distribution"`
	Performance      Series                 `json:"performance"`
	Quality          QualityBreakdown       `json:"quality"`
	Overall          QualityBreakdown       `json:"overall"`
	CommuneRows      []CommuneRow           `json:"communeRows"`
	Reports          []survey.ReportEntry   `json:"reports"`
}

// Derive builds the view for a data set and selection. It has no side effects;
// a nil data set yields an empty, unloaded view.
func Derive(ds *survey.Dataset, filters FilterState, metric Metric, chartType ChartType) View {
	view := View{
		Filters:          filters,
		Metric:           ParseMetric(string(metric)),
		ChartType:        ParseChartType(string(chartType)),
		FilteredCommunes: []survey.CommuneRecord{},
		Distribution:     []int{0, 0, 0},
		Performance:      Series{Labels: []string{}, Values: []float64{}},
		CommuneRows:      []CommuneRow{},
		Reports:          []survey.ReportEntry{},
	}
	view.Performance.Label = view.Metric.Label()
	if ds == nil {
		return view
	}

	view.Loaded = true
	view.FilteredCommunes = FilterCommunes(ds, filters)
	view.KPIs = ComputeKPIs(ds)
	view.Formatted = FormatKPIs(view.KPIs)
	view.Distribution = DistributionSeries(view.FilteredCommunes)
	view.Performance = PerformanceSeries(view.FilteredCommunes, view.Metric)
	view.Quality = ComputeQualityBreakdown(view.FilteredCommunes)
	view.Overall = ComputeQualityBreakdown(ds.Communes)
	view.CommuneRows = CommuneRows(ds, filters)
	return view
}

// FilterCommunes keeps, in dataset order, the records satisfying every active predicate
func FilterCommunes(ds *survey.Dataset, filters FilterState) []survey.CommuneRecord {
	out := []survey.CommuneRecord{}
	if ds == nil {
		return out
	}
	for _, c := range ds.Communes {
		if filters.matchesCommune(c) && filters.matchesStatus(c) && filters.matchesSearch(c) {
			out = append(out, c)
		}
	}
	return out
}

// CommuneRows applies the commune and status predicates and marks search matches visible
func CommuneRows(ds *survey.Dataset, filters FilterState) []CommuneRow {
	rows := []CommuneRow{}
	if ds == nil {
		return rows
	}
	for _, c := range ds.Communes {
		if filters.matchesCommune(c) && filters.matchesStatus(c) {
			rows = append(rows, CommuneRow{CommuneRecord: c, Visible: filters.matchesSearch(c)})
		}
	}
	return rows
}

// ComputeKPIs passes the upstream scalars through and adds the conflict rate
func ComputeKPIs(ds *survey.Dataset) KPIValues {
	if ds == nil {
		return KPIValues{}
	}
	s, q := ds.Summary, ds.Quality
	return KPIValues{
		TotalFiles:     s.TotalFiles,
		ProcessedFiles: s.ProcessedFiles,
		TotalParcels:   s.TotalParcels,
		Conflicts:      s.Conflicts,
		SuccessRate:    finite(s.SuccessRate),
		CleaningRate:   finite(s.CleaningRate),
		ConflictRate:   ConflictRate(s.Conflicts, s.TotalParcels),
		ValidationRate: finite(q.ValidationRate),
		CriticalErrors: q.CriticalErrors,
		Consistency:    finite(q.Consistency),
	}
}

// ConflictRate is conflicts/totalParcels*100 to one decimal, 0 when there are no parcels
func ConflictRate(conflicts, totalParcels int) float64 {
	if totalParcels == 0 {
		return 0
	}
	return round1(float64(conflicts) / float64(totalParcels) * 100)
}

// DistributionSeries is [Σindividual, Σcollective, Σconflicts]
func DistributionSeries(communes []survey.CommuneRecord) []int {
	out := []int{0, 0, 0}
	for _, c := range communes {
		out[0] += c.IndividualParcelCount
		out[1] += c.CollectiveParcelCount
		out[2] += c.ConflictCount
	}
	return out
}

// PerformanceSeries is one value per commune for the metric, in input order
func PerformanceSeries(communes []survey.CommuneRecord, metric Metric) Series {
	metric = ParseMetric(string(metric))
	series := Series{
		Label:  metric.Label(),
		Labels: make([]string, 0, len(communes)),
		Values: make([]float64, 0, len(communes)),
	}
	for _, c := range communes {
		series.Labels = append(series.Labels, c.Name)
		series.Values = append(series.Values, metricValue(c, metric))
	}
	return series
}

func metricValue(c survey.CommuneRecord, metric Metric) float64 {
	switch metric {
	case MetricCollective:
		return float64(c.CollectiveParcelCount)
	case MetricConflicts:
		return float64(c.ConflictCount)
	case MetricQuality:
		return finite(c.QualityScore)
	default:
		return float64(c.IndividualParcelCount)
	}
}

// FilterReports keeps history entries inside the date range; a malformed range keeps all
func FilterReports(entries []survey.ReportEntry, dateRange *string) []survey.ReportEntry {
	out := make([]survey.ReportEntry, 0, len(entries))
	span, err := ParseDateRange(optionalValue(dateRange))
	if err != nil {
		span = DateSpan{}
	}
	for _, e := range entries {
		if span.Contains(e.Timestamp) {
			out = append(out, e)
		}
	}
	return out
}

func round1(v float64) float64 {
	r, err := stats.Round(v, 1)
	if err != nil || math.IsNaN(r) || math.IsInf(r, 0) {
		return 0
	}
	return r
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
