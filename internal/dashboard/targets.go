package dashboard

import (
	"fmt"

	"parceldash/domain/core"
	"parceldash/domain/survey"
	"parceldash/internal"
)

// TargetID names a render target
type TargetID string

const (
	TargetKPIs              TargetID = "kpis"
	TargetDistributionChart TargetID = "distribution-chart"
	TargetPerformanceChart  TargetID = "performance-chart"
	TargetQualityChart      TargetID = "quality-chart"
	TargetStatusChart       TargetID = "status-chart"
	TargetCommunesTable     TargetID = "communes-table"
	TargetReportsTable      TargetID = "reports-table"
)

// targetOrder fixes the paint order for every refresh
var targetOrder = []TargetID{
	TargetKPIs, TargetDistributionChart, TargetPerformanceChart, TargetQualityChart,
	TargetStatusChart, TargetCommunesTable, TargetReportsTable,
}

// dependents maps each input dimension to the targets whose output reads it
var dependents = map[Dimension][]TargetID{
	DimCommune:   {TargetCommunesTable, TargetDistributionChart, TargetPerformanceChart},
	DimStatus:    {TargetCommunesTable, TargetDistributionChart, TargetPerformanceChart},
	DimSearch:    {TargetCommunesTable},
	DimDateRange: {TargetReportsTable},
	DimMetric:    {TargetPerformanceChart},
	DimChartType: {TargetPerformanceChart},
}

// TargetsFor returns the targets affected by the dimensions, in paint order
func TargetsFor(dims ...Dimension) []TargetID {
	want := make(map[TargetID]bool)
	for _, d := range dims {
		for _, id := range dependents[d] {
			want[id] = true
		}
	}
	out := []TargetID{}
	for _, id := range targetOrder {
		if want[id] {
			out = append(out, id)
		}
	}
	return out
}

// Target paints one part of the dashboard from a view
type Target interface {
	ID() TargetID
	Mount() core.MountID
	Render(v View) error
}

// RefreshResult reports what a refresh did per target
type RefreshResult struct {
	Rendered []TargetID `json:"rendered"`
	Skipped  []TargetID `json:"skipped"`
	Failed   []TargetID `json:"failed"`
}

// Dispatcher runs refreshes, guarding each target independently
type Dispatcher struct {
	targets map[TargetID]Target
	surface *Surface
	logger  *internal.Logger
	renders map[TargetID]int
}

// NewDispatcher registers targets painting onto surface
func NewDispatcher(surface *Surface, logger *internal.Logger, targets ...Target) *Dispatcher {
	d := &Dispatcher{
		targets: make(map[TargetID]Target, len(targets)),
		surface: surface,
		logger:  logger,
		renders: make(map[TargetID]int),
	}
	for _, t := range targets {
		d.targets[t.ID()] = t
	}
	return d
}

// Refresh paints the named targets from v. Unloaded views, unknown targets and
// missing mounts are skipped; a failing target does not stop the others.
func (d *Dispatcher) Refresh(v View, ids ...TargetID) RefreshResult {
	res := RefreshResult{Rendered: []TargetID{}, Skipped: []TargetID{}, Failed: []TargetID{}}
	for _, id := range ids {
		t, ok := d.targets[id]
		if !ok || !v.Loaded {
			res.Skipped = append(res.Skipped, id)
			continue
		}
		if !d.surface.Has(t.Mount()) {
			d.logger.Debug("[Render] mount %s missing, skipping %s", t.Mount(), id)
			res.Skipped = append(res.Skipped, id)
			continue
		}
		if err := d.renderGuarded(t, v); err != nil {
			d.logger.Warn("[Render] %s failed: %v", id, err)
			res.Failed = append(res.Failed, id)
			continue
		}
		d.renders[id]++
		res.Rendered = append(res.Rendered, id)
	}
	return res
}

func (d *Dispatcher) renderGuarded(t Target, v View) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return t.Render(v)
}

// RenderCounts returns how many times each target has painted
func (d *Dispatcher) RenderCounts() map[TargetID]int {
	out := make(map[TargetID]int, len(d.renders))
	for k, v := range d.renders {
		out[k] = v
	}
	return out
}

// KPIFrame is the payload of the KPI display
type KPIFrame struct {
	Values      KPIValues     `json:"values"`
	Formatted   FormattedKPIs `json:"formatted"`
	SummaryHTML string        `json:"summaryHtml"`
}

type kpiTarget struct {
	surface *Surface
}

func (t *kpiTarget) ID() TargetID        { return TargetKPIs }
func (t *kpiTarget) Mount() core.MountID { return MountKPIs }

func (t *kpiTarget) Render(v View) error {
	html, err := RenderSummaryHTML(v)
	if err != nil {
		return err
	}
	t.surface.Publish(MountKPIs, FrameKPI, KPIFrame{Values: v.KPIs, Formatted: v.Formatted, SummaryHTML: html})
	return nil
}

type chartTarget struct {
	id     TargetID
	handle *ChartHandle
	mount  core.MountID
	build  func(View) ChartConfig
}

func (t *chartTarget) ID() TargetID        { return t.id }
func (t *chartTarget) Mount() core.MountID { return t.mount }
func (t *chartTarget) Render(v View) error { return t.handle.Apply(t.build(v)) }

// CommunesTableFrame is the payload of the communes table
type CommunesTableFrame struct {
	Rows         []CommuneRow `json:"rows"`
	VisibleCount int          `json:"visibleCount"`
}

type communesTableTarget struct {
	surface *Surface
}

func (t *communesTableTarget) ID() TargetID        { return TargetCommunesTable }
func (t *communesTableTarget) Mount() core.MountID { return MountCommunesTable }

func (t *communesTableTarget) Render(v View) error {
	frame := CommunesTableFrame{Rows: v.CommuneRows}
	for _, r := range v.CommuneRows {
		if r.Visible {
			frame.VisibleCount++
		}
	}
	t.surface.Publish(MountCommunesTable, FrameTable, frame)
	return nil
}

type reportsTableTarget struct {
	surface *Surface
}

func (t *reportsTableTarget) ID() TargetID        { return TargetReportsTable }
func (t *reportsTableTarget) Mount() core.MountID { return MountReportsTable }

func (t *reportsTableTarget) Render(v View) error {
	rows := v.Reports
	if rows == nil {
		rows = []survey.ReportEntry{}
	}
	t.surface.Publish(MountReportsTable, FrameTable, rows)
	return nil
}

var palette = []string{"#2E7D32", "#1565C0", "#C62828", "#F9A825", "#6A1B9A", "#00838F", "#EF6C00", "#4E342E"}

func paletteFor(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = palette[i%len(palette)]
	}
	return out
}

func distributionChart(v View) ChartConfig {
	data := make([]float64, len(v.Distribution))
	for i, n := range v.Distribution {
		data[i] = float64(n)
	}
	return ChartConfig{
		Type: ChartPie,
		Data: ChartData{
			Labels:   DistributionLabels,
			Datasets: []ChartDataset{{Label: "Parcels", Data: data, BackgroundColor: paletteFor(len(data))}},
		},
		Options: map[string]interface{}{"responsive": true},
	}
}

func performanceChart(v View) ChartConfig {
	cfg := ChartConfig{
		Type: v.ChartType,
		Data: ChartData{
			Labels: v.Performance.Labels,
			Datasets: []ChartDataset{{
				Label: v.Performance.Label,
				Data:  v.Performance.Values,
			}},
		},
		Options: map[string]interface{}{"responsive": true},
	}
	if v.ChartType == ChartDoughnut {
		cfg.Data.Datasets[0].BackgroundColor = paletteFor(len(v.Performance.Values))
	} else {
		cfg.Data.Datasets[0].BackgroundColor = []string{palette[1]}
		cfg.Options["scales"] = map[string]interface{}{"y": map[string]interface{}{"beginAtZero": true}}
	}
	return cfg
}

func qualityChart(v View) ChartConfig {
	return ChartConfig{
		Type: ChartRadar,
		Data: ChartData{
			Labels: []string{"Validation rate", "Consistency", "Mean quality", "Success rate"},
			Datasets: []ChartDataset{{
				Label:       "Quality",
				Data:        []float64{v.KPIs.ValidationRate, v.KPIs.Consistency, v.Overall.Mean, v.KPIs.SuccessRate},
				BorderColor: palette[0],
			}},
		},
		Options: map[string]interface{}{"scales": map[string]interface{}{"r": map[string]interface{}{"min": 0, "max": 100}}},
	}
}

func statusChart(v View) ChartConfig {
	return ChartConfig{
		Type: ChartDoughnut,
		Data: ChartData{
			Labels: []string{string(survey.StatusSuccess), string(survey.StatusError)},
			Datasets: []ChartDataset{{
				Label:           "Files",
				Data:            []float64{float64(v.Overall.Success), float64(v.Overall.Error)},
				BackgroundColor: []string{palette[0], palette[2]},
			}},
		},
	}
}
