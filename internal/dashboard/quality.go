package dashboard

import (
	"parceldash/domain/survey"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
)

// QualityBreakdown summarizes quality scores and outcomes over a set of communes
type QualityBreakdown struct {
	Count   int     `json:"count"`
	Mean    float64 `json:"mean"`
	Median  float64 `json:"median"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	StdDev  float64 `json:"stdDev"`
	Success int     `json:"success"`
	Error   int     `json:"error"`
}

// ComputeQualityBreakdown returns zeros for an empty input
func ComputeQualityBreakdown(communes []survey.CommuneRecord) QualityBreakdown {
	qb := QualityBreakdown{Count: len(communes)}
	if len(communes) == 0 {
		return qb
	}

	scores := make([]float64, len(communes))
	for i, c := range communes {
		scores[i] = finite(c.QualityScore)
		switch c.Status {
		case survey.StatusSuccess:
			qb.Success++
		case survey.StatusError:
			qb.Error++
		}
	}

	qb.Mean = round1(stat.Mean(scores, nil))
	if len(scores) > 1 {
		qb.StdDev = round1(stat.StdDev(scores, nil))
	}

	// stats copies its input before sorting, so scores stays in dataset order
	if median, err := stats.Median(scores); err == nil {
		qb.Median = round1(median)
	}
	if lo, err := stats.Min(scores); err == nil {
		qb.Min = lo
	}
	if hi, err := stats.Max(scores); err == nil {
		qb.Max = hi
	}
	return qb
}
