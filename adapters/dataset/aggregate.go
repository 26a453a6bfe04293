package dataset

import (
	"math"

	"parceldash/domain/survey"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
)

// ComputeAggregates derives the summary and quality blocks from commune rows,
// for sources that carry only the rows. Every file counts as processed;
// files with status ERROR count against the success rate.
func ComputeAggregates(communes []survey.CommuneRecord) (survey.SummaryMetrics, survey.QualityMetrics) {
	var (
		summary    survey.SummaryMetrics
		quality    survey.QualityMetrics
		classified int
		succeeded  int
	)
	summary.TotalFiles = len(communes)
	summary.ProcessedFiles = len(communes)

	shares := make([]float64, 0, len(communes))
	weights := make([]float64, 0, len(communes))
	for _, c := range communes {
		summary.TotalParcels += c.RawParcelCount
		summary.Conflicts += c.ConflictCount
		classified += c.ClassifiedParcels()
		if c.Status == survey.StatusSuccess {
			succeeded++
		} else {
			quality.CriticalErrors++
		}
		if c.RawParcelCount > 0 {
			shares = append(shares, float64(c.ClassifiedParcels())/float64(c.RawParcelCount)*100)
			weights = append(weights, float64(c.RawParcelCount))
		}
	}

	summary.SuccessRate = percent(succeeded, len(communes))
	summary.CleaningRate = percent(classified, summary.TotalParcels)
	quality.ValidationRate = summary.SuccessRate
	if len(shares) > 0 {
		// raw-weighted mean of each commune's classified share
		quality.Consistency = round1(stat.Mean(shares, weights))
	}
	return summary, quality
}

func percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return round1(float64(part) / float64(whole) * 100)
}

func round1(v float64) float64 {
	r, err := stats.Round(v, 1)
	if err != nil || math.IsNaN(r) || math.IsInf(r, 0) {
		return 0
	}
	return r
}
