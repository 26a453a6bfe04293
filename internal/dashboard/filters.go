package dashboard

import (
	"strings"
	"time"

	"parceldash/domain/core"
	"parceldash/domain/survey"
)

// Dimension names one independently changeable input of the view
type Dimension string

const (
	DimCommune   Dimension = "commune"
	DimStatus    Dimension = "status"
	DimSearch    Dimension = "search"
	DimDateRange Dimension = "dateRange"
	DimMetric    Dimension = "metric"
	DimChartType Dimension = "chartType"
)

// FilterState is the user's current selection. A nil pointer means unset.
type FilterState struct {
	CommuneName *string `json:"communeName,omitempty"`
	Status      *string `json:"status,omitempty"`
	DateRange   *string `json:"dateRange,omitempty"`
	SearchText  string  `json:"searchText"`
}

// FilterPatch is a partial update: nil leaves a field alone, an empty string clears it
type FilterPatch struct {
	CommuneName *string `json:"communeName,omitempty"`
	Status      *string `json:"status,omitempty"`
	DateRange   *string `json:"dateRange,omitempty"`
	SearchText  *string `json:"searchText,omitempty"`
}

// IsZero reports whether no filter is active
func (f FilterState) IsZero() bool {
	return f.CommuneName == nil && f.Status == nil && f.DateRange == nil && f.SearchText == ""
}

// Apply returns the patched state and the dimensions whose value actually changed
func (f FilterState) Apply(p FilterPatch) (FilterState, []Dimension) {
	next := f
	if p.CommuneName != nil {
		next.CommuneName = normalizeOptional(*p.CommuneName, false)
	}
	if p.Status != nil {
		next.Status = normalizeOptional(*p.Status, true)
	}
	if p.DateRange != nil {
		next.DateRange = normalizeOptional(*p.DateRange, false)
	}
	if p.SearchText != nil {
		next.SearchText = strings.TrimSpace(*p.SearchText)
	}
	return next, next.changedFrom(f)
}

func (f FilterState) changedFrom(prev FilterState) []Dimension {
	var dims []Dimension
	if !equalOptional(f.CommuneName, prev.CommuneName) {
		dims = append(dims, DimCommune)
	}
	if !equalOptional(f.Status, prev.Status) {
		dims = append(dims, DimStatus)
	}
	if !equalOptional(f.DateRange, prev.DateRange) {
		dims = append(dims, DimDateRange)
	}
	if f.SearchText != prev.SearchText {
		dims = append(dims, DimSearch)
	}
	return dims
}

// normalizeOptional maps blank input (and "all" for select-style fields) to unset
func normalizeOptional(v string, allowAll bool) *string {
	v = strings.TrimSpace(v)
	if v == "" || (allowAll && strings.EqualFold(v, "all")) {
		return nil
	}
	return &v
}

func equalOptional(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func optionalValue(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// matchesCommune is an exact, case-sensitive comparison against the stored name
func (f FilterState) matchesCommune(c survey.CommuneRecord) bool {
	return f.CommuneName == nil || c.Name == *f.CommuneName
}

func (f FilterState) matchesStatus(c survey.CommuneRecord) bool {
	return f.Status == nil || c.Status.Matches(*f.Status)
}

func (f FilterState) matchesSearch(c survey.CommuneRecord) bool {
	if f.SearchText == "" {
		return true
	}
	return strings.Contains(strings.ToLower(c.Name), strings.ToLower(f.SearchText))
}

// DateSpan is an inclusive range of calendar days; a nil bound is open
type DateSpan struct {
	From *time.Time
	To   *time.Time
}

// ParseDateRange reads "FROM/TO" with ISO dates, either side optional.
// Malformed input yields an open span so a bad filter never restricts.
func ParseDateRange(raw string) (DateSpan, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DateSpan{}, nil
	}
	parts := strings.SplitN(raw, "/", 2)
	var span DateSpan
	from := strings.TrimSpace(parts[0])
	if from != "" {
		t, err := time.Parse(core.DateLayout, from)
		if err != nil {
			return DateSpan{}, core.ErrInvalidDateSpan
		}
		span.From = &t
	}
	if len(parts) == 2 {
		to := strings.TrimSpace(parts[1])
		if to != "" {
			t, err := time.Parse(core.DateLayout, to)
			if err != nil {
				return DateSpan{}, core.ErrInvalidDateSpan
			}
			span.To = &t
		}
	} else if span.From != nil {
		// a single date selects that day
		day := *span.From
		span.To = &day
	}
	return span, nil
}

// Contains reports whether ts falls on a day inside the span
func (s DateSpan) Contains(ts core.Timestamp) bool {
	day := ts.Day()
	if s.From != nil && day.Before(*s.From) {
		return false
	}
	if s.To != nil && day.After(*s.To) {
		return false
	}
	return true
}
