package reports

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"parceldash/domain/core"
	"parceldash/domain/survey"
	"parceldash/internal"
	"parceldash/internal/errors"
	"parceldash/ports"

	"github.com/dustin/go-humanize"
)

// sizeModel estimates an export size from a fixed header cost plus a per-row cost
type sizeModel struct {
	base   uint64
	perRow uint64
}

var sizeModels = map[string]sizeModel{
	"pdf":  {base: 180_000, perRow: 12_000},
	"xlsx": {base: 24_000, perRow: 2_000},
	"csv":  {base: 1_000, perRow: 160},
	"json": {base: 2_000, perRow: 420},
}

var defaultSizeModel = sizeModel{base: 8_000, perRow: 1_000}

// EstimateSize returns the placeholder size label for a report over rows communes
func EstimateSize(format string, rows int) string {
	m, ok := sizeModels[format]
	if !ok {
		m = defaultSizeModel
	}
	if rows < 0 {
		rows = 0
	}
	return humanize.Bytes(m.base + m.perRow*uint64(rows))
}

// Log is the append-only report history. Generation is simulated: an entry
// is complete the moment it is appended and no file is produced.
type Log struct {
	mu      sync.RWMutex
	entries []survey.ReportEntry
	ids     map[core.ReportID]bool
	repo    ports.ReportRepository
	logger  *internal.Logger
	now     func() time.Time
}

// NewLog creates an empty log; repo may be nil for memory-only history
func NewLog(repo ports.ReportRepository, logger *internal.Logger) *Log {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Log{
		ids:    make(map[core.ReportID]bool),
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

// Seed merges history entries not already present, then orders by timestamp
func (l *Log) Seed(entries []survey.ReportEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.mergeLocked(entries)
}

// Load merges the persisted history, if a repository is configured
func (l *Log) Load(ctx context.Context) error {
	if l.repo == nil {
		return nil
	}
	stored, err := l.repo.List(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to load report history")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.mergeLocked(stored)
	l.logger.Info("[Reports] loaded %d persisted report(s)", len(stored))
	return nil
}

func (l *Log) mergeLocked(entries []survey.ReportEntry) {
	added, derived := 0, 0
	occurrences := make(map[string]int)
	for _, e := range entries {
		if e.ID == "" {
			e.ID = historyID(e, occurrences)
			derived++
		}
		if l.ids[e.ID] {
			continue
		}
		l.ids[e.ID] = true
		l.entries = append(l.entries, e)
		added++
	}
	if derived > 0 {
		l.logger.Debug("[Reports] assigned ids to %d history entries", derived)
	}
	if added > 0 {
		sort.SliceStable(l.entries, func(i, j int) bool {
			return l.entries[i].Timestamp.Before(l.entries[j].Timestamp)
		})
	}
}

// historyID derives an id from the entry's fields. Identical entries in one
// batch are told apart by their occurrence, so reseeding the same history
// yields the same ids.
func historyID(e survey.ReportEntry, occurrences map[string]int) core.ReportID {
	key := strings.Join([]string{e.Timestamp.String(), e.Type, e.Format, string(e.Status), e.SizeLabel}, "|")
	n := occurrences[key]
	occurrences[key] = n + 1
	return core.DeriveReportID(key, strconv.Itoa(n))
}

// Generate builds a DONE entry for reportType/format over rows communes and
// appends it. When persistence fails nothing is appended.
func (l *Log) Generate(ctx context.Context, reportType, format string, rows int) (survey.ReportEntry, error) {
	reportType = strings.ToLower(strings.TrimSpace(reportType))
	format = strings.ToLower(strings.TrimSpace(format))
	if reportType == "" {
		return survey.ReportEntry{}, errors.InvalidInput("report type is required")
	}
	if format == "" {
		return survey.ReportEntry{}, errors.InvalidInput("report format is required")
	}

	entry := survey.ReportEntry{
		ID:        core.NewReportID(),
		Timestamp: core.NewTimestamp(l.now()),
		Type:      reportType,
		Format:    format,
		Status:    survey.ReportDone,
		SizeLabel: EstimateSize(format, rows),
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.repo != nil {
		if err := l.repo.Append(ctx, entry); err != nil {
			return survey.ReportEntry{}, errors.Wrap(err, "failed to persist report")
		}
	}
	l.ids[entry.ID] = true
	l.entries = append(l.entries, entry)
	l.logger.Info("[Reports] generated %s report as %s (%s)", reportType, format, entry.SizeLabel)
	return entry, nil
}

// Entries returns a copy of the history in order
func (l *Log) Entries() []survey.ReportEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]survey.ReportEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of entries
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}
