package dashboard

import (
	"sort"
	"time"

	"parceldash/domain/core"
)

// Mount points declared by the dashboard pages
const (
	MountKPIs              core.MountID = "kpi-cards"
	MountDistributionChart core.MountID = "distributionChart"
	MountPerformanceChart  core.MountID = "performanceChart"
	MountQualityChart      core.MountID = "qualityChart"
	MountStatusChart       core.MountID = "statusChart"
	MountCommunesTable     core.MountID = "communesTableBody"
	MountReportsTable      core.MountID = "reportsTableBody"
)

// AllMounts lists every mount point a render target can paint
func AllMounts() []core.MountID {
	return []core.MountID{
		MountKPIs, MountDistributionChart, MountPerformanceChart, MountQualityChart,
		MountStatusChart, MountCommunesTable, MountReportsTable,
	}
}

// FrameKind says how the client should paint a frame
type FrameKind string

const (
	FrameKPI   FrameKind = "kpi"
	FrameChart FrameKind = "chart"
	FrameTable FrameKind = "table"
)

// Frame is the latest painted content of one mount point
type Frame struct {
	Mount      core.MountID `json:"mount"`
	Kind       FrameKind    `json:"kind"`
	Revision   int          `json:"revision"`
	Payload    interface{}  `json:"payload"`
	RenderedAt time.Time    `json:"renderedAt"`
}

// Surface is the set of declared mount points and what is painted on them.
// It is not safe for concurrent use; the owning Session serializes access.
type Surface struct {
	declared  map[core.MountID]bool
	frames    map[core.MountID]Frame
	revisions map[core.MountID]int
	now       func() time.Time
}

// NewSurface declares the given mounts
func NewSurface(mounts ...core.MountID) *Surface {
	s := &Surface{
		frames:    make(map[core.MountID]Frame),
		revisions: make(map[core.MountID]int),
		now:       time.Now,
	}
	s.Declare(mounts...)
	return s
}

// Declare replaces the set of mount points present on the page
func (s *Surface) Declare(mounts ...core.MountID) {
	s.declared = make(map[core.MountID]bool, len(mounts))
	for _, m := range mounts {
		s.declared[m] = true
	}
}

// Has reports whether a mount point is present
func (s *Surface) Has(mount core.MountID) bool {
	return s.declared[mount]
}

// Declared lists mount points in sorted order
func (s *Surface) Declared() []core.MountID {
	out := make([]core.MountID, 0, len(s.declared))
	for m := range s.declared {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Missing lists expected mount points that are not declared
func (s *Surface) Missing(expected []core.MountID) []core.MountID {
	var out []core.MountID
	for _, m := range expected {
		if !s.declared[m] {
			out = append(out, m)
		}
	}
	return out
}

// Publish paints a frame and bumps the mount's revision
func (s *Surface) Publish(mount core.MountID, kind FrameKind, payload interface{}) Frame {
	s.revisions[mount]++
	f := Frame{
		Mount:      mount,
		Kind:       kind,
		Revision:   s.revisions[mount],
		Payload:    payload,
		RenderedAt: s.now(),
	}
	s.frames[mount] = f
	return f
}

// Clear removes a frame; the revision counter keeps counting
func (s *Surface) Clear(mount core.MountID) {
	delete(s.frames, mount)
}

// Frame returns the latest frame of a mount
func (s *Surface) Frame(mount core.MountID) (Frame, bool) {
	f, ok := s.frames[mount]
	return f, ok
}
