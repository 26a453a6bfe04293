package dashboard

import (
	"testing"

	"parceldash/domain/survey"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatKPIs(t *testing.T) {
	f := FormatKPIs(KPIValues{TotalParcels: 10898, SuccessRate: 90.9, ConflictRate: 0.54})
	assert.Equal(t, "10,898", f.TotalParcels)
	assert.Equal(t, "90.9%", f.SuccessRate)
	assert.Equal(t, "0.5%", f.ConflictRate)
	assert.Equal(t, "0", f.Conflicts)
}

func TestRenderSummaryHTML(t *testing.T) {
	ds := seedDataset(t)
	ds.Communes = append(ds.Communes, survey.CommuneRecord{Name: "X", Status: survey.StatusError})
	view := Derive(ds, FilterState{}, MetricIndividual, ChartBar)

	md := SummaryMarkdown(view)
	assert.Contains(t, md, "| Total parcels | 10,898 |")
	assert.Contains(t, md, "2 commune file(s) failed")

	out, err := RenderSummaryHTML(view)
	require.NoError(t, err)
	assert.Contains(t, out, "<td>10,898</td>")
	assert.Contains(t, out, "<strong>")
	assert.NotContains(t, out, "<script")
}

func TestComputeQualityBreakdown(t *testing.T) {
	qb := ComputeQualityBreakdown([]survey.CommuneRecord{
		{QualityScore: 80, Status: survey.StatusSuccess},
		{QualityScore: 90, Status: survey.StatusSuccess},
		{QualityScore: 10, Status: survey.StatusError},
	})
	assert.Equal(t, 3, qb.Count)
	assert.Equal(t, 60.0, qb.Mean)
	assert.Equal(t, 80.0, qb.Median)
	assert.Equal(t, 10.0, qb.Min)
	assert.Equal(t, 90.0, qb.Max)
	assert.Equal(t, 2, qb.Success)
	assert.Equal(t, 1, qb.Error)
	assert.Greater(t, qb.StdDev, 0.0)

	single := ComputeQualityBreakdown([]survey.CommuneRecord{{QualityScore: 50}})
	assert.Equal(t, 0.0, single.StdDev)
	assert.Equal(t, 50.0, single.Mean)
}
