package dashboard

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// FormattedKPIs are display strings for the KPI cards
type FormattedKPIs struct {
	TotalFiles     string `json:"totalFiles"`
	ProcessedFiles string `json:"processedFiles"`
	TotalParcels   string `json:"totalParcels"`
	Conflicts      string `json:"conflicts"`
	SuccessRate    string `json:"successRate"`
	CleaningRate   string `json:"cleaningRate"`
	ConflictRate   string `json:"conflictRate"`
	ValidationRate string `json:"validationRate"`
	CriticalErrors string `json:"criticalErrors"`
	Consistency    string `json:"consistency"`
}

// FormatCount renders an integer with thousands separators
func FormatCount(n int) string {
	return humanize.Comma(int64(n))
}

// FormatPercent renders a percentage with one decimal
func FormatPercent(v float64) string {
	return fmt.Sprintf("%.1f%%", finite(v))
}

// FormatKPIs renders every KPI for display
func FormatKPIs(k KPIValues) FormattedKPIs {
	return FormattedKPIs{
		TotalFiles:     FormatCount(k.TotalFiles),
		ProcessedFiles: FormatCount(k.ProcessedFiles),
		TotalParcels:   FormatCount(k.TotalParcels),
		Conflicts:      FormatCount(k.Conflicts),
		SuccessRate:    FormatPercent(k.SuccessRate),
		CleaningRate:   FormatPercent(k.CleaningRate),
		ConflictRate:   FormatPercent(k.ConflictRate),
		ValidationRate: FormatPercent(k.ValidationRate),
		CriticalErrors: FormatCount(k.CriticalErrors),
		Consistency:    FormatPercent(k.Consistency),
	}
}
