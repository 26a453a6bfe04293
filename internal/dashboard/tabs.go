package dashboard

import (
	"parceldash/domain/core"
	"parceldash/internal/errors"
)

// Views of the dashboard
const (
	TabOverview core.TabID = "overview"
	TabCommunes core.TabID = "communes"
	TabQuality  core.TabID = "quality"
	TabReports  core.TabID = "reports"
)

var tabOrder = []core.TabID{TabOverview, TabCommunes, TabQuality, TabReports}

var tabTargets = map[core.TabID][]TargetID{
	TabOverview: {TargetKPIs, TargetDistributionChart, TargetPerformanceChart},
	TabCommunes: {TargetCommunesTable},
	TabQuality:  {TargetQualityChart, TargetStatusChart},
	TabReports:  {TargetReportsTable},
}

// TabState is one tab as shown in the navigation
type TabState struct {
	ID     core.TabID `json:"id"`
	Active bool       `json:"active"`
}

// TabController keeps exactly one view active
type TabController struct {
	active core.TabID
}

// NewTabController starts on defaultTab, or overview when it is unknown
func NewTabController(defaultTab core.TabID) *TabController {
	if _, ok := tabTargets[defaultTab]; !ok {
		defaultTab = TabOverview
	}
	return &TabController{active: defaultTab}
}

// Active returns the active view
func (t *TabController) Active() core.TabID {
	return t.active
}

// Activate switches to id and returns the targets to refresh. Activating the
// current view changes nothing and returns no targets.
func (t *TabController) Activate(id core.TabID) (bool, []TargetID, error) {
	targets, ok := tabTargets[id]
	if !ok {
		return false, nil, errors.NotFound("tab " + id.String())
	}
	if id == t.active {
		return false, nil, nil
	}
	t.active = id
	return true, append([]TargetID(nil), targets...), nil
}

// Targets lists the targets shown by a view
func (t *TabController) Targets(id core.TabID) []TargetID {
	return append([]TargetID(nil), tabTargets[id]...)
}

// Tabs lists every view with its active flag
func (t *TabController) Tabs() []TabState {
	out := make([]TabState, len(tabOrder))
	for i, id := range tabOrder {
		out[i] = TabState{ID: id, Active: id == t.active}
	}
	return out
}
