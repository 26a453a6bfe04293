package survey

import (
	"fmt"
	"strings"

	"parceldash/domain/core"
)

// Status is the processing outcome of a commune's survey file
type Status string

const (
	StatusSuccess Status = "SUCCESS"
	StatusError   Status = "ERROR"
)

// ParseStatus accepts any casing of a known status
func ParseStatus(s string) (Status, error) {
	switch Status(strings.ToUpper(strings.TrimSpace(s))) {
	case StatusSuccess:
		return StatusSuccess, nil
	case StatusError:
		return StatusError, nil
	}
	return "", fmt.Errorf("%w: %q", core.ErrUnknownStatus, s)
}

// Matches reports whether s names this status, ignoring case
func (s Status) Matches(other string) bool {
	return strings.EqualFold(string(s), strings.TrimSpace(other))
}

// UnmarshalText normalizes casing; unknown values are kept verbatim so trusted
// input is never rejected at decode time.
func (s *Status) UnmarshalText(text []byte) error {
	if parsed, err := ParseStatus(string(text)); err == nil {
		*s = parsed
		return nil
	}
	*s = Status(strings.TrimSpace(string(text)))
	return nil
}

// ReportStatus is the lifecycle state of a generated report
type ReportStatus string

const (
	ReportDone       ReportStatus = "DONE"
	ReportInProgress ReportStatus = "IN_PROGRESS"
)

// CommuneRecord holds per-commune parcel statistics.
// IndividualParcelCount+CollectiveParcelCount <= RawParcelCount is expected
// but not enforced; records are trusted input.
type CommuneRecord struct {
	Name                  string  `json:"name" yaml:"name"`
	RawParcelCount        int     `json:"rawParcelCount" yaml:"rawParcelCount"`
	IndividualParcelCount int     `json:"individualParcelCount" yaml:"individualParcelCount"`
	CollectiveParcelCount int     `json:"collectiveParcelCount" yaml:"collectiveParcelCount"`
	ConflictCount         int     `json:"conflictCount" yaml:"conflictCount"`
	QualityScore          float64 `json:"qualityScore" yaml:"qualityScore"` // 0-100
	Status                Status  `json:"status" yaml:"status"`
}

// ClassifiedParcels is the individually plus collectively held parcel count
func (c CommuneRecord) ClassifiedParcels() int {
	return c.IndividualParcelCount + c.CollectiveParcelCount
}

// SummaryMetrics are aggregate scalars computed upstream of the dashboard
type SummaryMetrics struct {
	TotalFiles     int     `json:"totalFiles" yaml:"totalFiles"`
	TotalParcels   int     `json:"totalParcels" yaml:"totalParcels"`
	ProcessedFiles int     `json:"processedFiles" yaml:"processedFiles"`
	Conflicts      int     `json:"conflicts" yaml:"conflicts"`
	SuccessRate    float64 `json:"successRate" yaml:"successRate"`
	CleaningRate   float64 `json:"cleaningRate" yaml:"cleaningRate"`
}

// QualityMetrics are percentages except CriticalErrors, which is a count
type QualityMetrics struct {
	ValidationRate float64 `json:"validationRate" yaml:"validationRate"`
	CriticalErrors int     `json:"criticalErrors" yaml:"criticalErrors"`
	Consistency    float64 `json:"consistency" yaml:"consistency"`
}

// ReportEntry is one line of the report history
type ReportEntry struct {
	ID        core.ReportID  `json:"id" yaml:"id" db:"id"`
	Timestamp core.Timestamp `json:"timestamp" yaml:"timestamp" db:"-"`
	Type      string         `json:"type" yaml:"type" db:"type"`
	Format    string         `json:"format" yaml:"format" db:"format"`
	Status    ReportStatus   `json:"status" yaml:"status" db:"status"`
	SizeLabel string         `json:"sizeLabel" yaml:"sizeLabel" db:"size_label"`
}

// Dataset is the complete pre-computed survey data set
type Dataset struct {
	Summary        SummaryMetrics  `json:"summary" yaml:"summary"`
	Quality        QualityMetrics  `json:"quality" yaml:"quality"`
	Communes       []CommuneRecord `json:"communes" yaml:"communes"`
	ReportsHistory []ReportEntry   `json:"reportsHistory" yaml:"reportsHistory"`
}

// CommuneNames lists commune names in dataset order
func (d *Dataset) CommuneNames() []string {
	if d == nil {
		return nil
	}
	names := make([]string, len(d.Communes))
	for i, c := range d.Communes {
		names[i] = c.Name
	}
	return names
}

// Fingerprint hashes the commune records in order
func (d *Dataset) Fingerprint() core.DatasetHash {
	if d == nil {
		return ""
	}
	records := make([][]interface{}, 0, len(d.Communes))
	for _, c := range d.Communes {
		records = append(records, []interface{}{
			c.Name, c.RawParcelCount, c.IndividualParcelCount, c.CollectiveParcelCount,
			c.ConflictCount, c.QualityScore, c.Status,
		})
	}
	return core.ComputeDatasetHash(records)
}

// Inconsistencies lists records breaking the expected count relationship and
// summary totals that disagree with the commune sums.
// Callers decide whether to warn; nothing here rejects input.
func (d *Dataset) Inconsistencies() []string {
	if d == nil {
		return nil
	}
	var issues []string
	raw, conflicts := 0, 0
	for _, c := range d.Communes {
		raw += c.RawParcelCount
		conflicts += c.ConflictCount
		if c.ClassifiedParcels() > c.RawParcelCount {
			issues = append(issues, fmt.Sprintf("%s: individual+collective (%d) exceeds raw (%d)",
				c.Name, c.ClassifiedParcels(), c.RawParcelCount))
		}
		if c.QualityScore < 0 || c.QualityScore > 100 {
			issues = append(issues, fmt.Sprintf("%s: quality score %.1f outside 0-100", c.Name, c.QualityScore))
		}
		if _, err := ParseStatus(string(c.Status)); err != nil {
			issues = append(issues, fmt.Sprintf("%s: %v", c.Name, err))
		}
	}
	if d.Summary.TotalParcels != raw {
		issues = append(issues, fmt.Sprintf("summary: totalParcels %d differs from commune sum %d", d.Summary.TotalParcels, raw))
	}
	if d.Summary.Conflicts != conflicts {
		issues = append(issues, fmt.Sprintf("summary: conflicts %d differs from commune sum %d", d.Summary.Conflicts, conflicts))
	}
	return issues
}
