package dashboard

import (
	"errors"
	"fmt"

	"parceldash/domain/core"
)

// ErrUpdateUnsupported is returned by resources that can only be recreated
var ErrUpdateUnsupported = errors.New("chart backend does not support in-place update")

// ChartConfig is a Chart.js-shaped chart description
type ChartConfig struct {
	Type    ChartType              `json:"type"`
	Data    ChartData              `json:"data"`
	Options map[string]interface{} `json:"options,omitempty"`
}

// ChartData holds labels and datasets
type ChartData struct {
	Labels   []string       `json:"labels"`
	Datasets []ChartDataset `json:"datasets"`
}

// ChartDataset is one plotted series
type ChartDataset struct {
	Label           string    `json:"label"`
	Data            []float64 `json:"data"`
	BackgroundColor []string  `json:"backgroundColor,omitempty"`
	BorderColor     string    `json:"borderColor,omitempty"`
}

// ChartResource is a live chart owned by a ChartHandle
type ChartResource interface {
	Update(cfg ChartConfig) error
	Destroy()
}

// ChartBackend allocates chart resources on a mount point
type ChartBackend interface {
	Create(mount core.MountID, cfg ChartConfig) (ChartResource, error)
}

// ChartHandle owns the resource behind one chart. Apply updates in place when
// the chart type is unchanged and the backend allows it, otherwise it recreates.
type ChartHandle struct {
	mount    core.MountID
	backend  ChartBackend
	resource ChartResource
	current  ChartConfig
	creates  int
	updates  int
}

// NewChartHandle binds a handle to a mount point; no resource exists until Apply
func NewChartHandle(mount core.MountID, backend ChartBackend) *ChartHandle {
	return &ChartHandle{mount: mount, backend: backend}
}

// Apply shows cfg on the chart
func (h *ChartHandle) Apply(cfg ChartConfig) error {
	if h.resource != nil && h.current.Type == cfg.Type {
		err := h.resource.Update(cfg)
		if err == nil {
			h.current = cfg
			h.updates++
			return nil
		}
		if !errors.Is(err, ErrUpdateUnsupported) {
			return fmt.Errorf("update chart %s: %w", h.mount, err)
		}
	}

	h.Destroy()
	res, err := h.backend.Create(h.mount, cfg)
	if err != nil {
		return fmt.Errorf("create chart %s: %w", h.mount, err)
	}
	h.resource = res
	h.current = cfg
	h.creates++
	return nil
}

// Destroy releases the resource; Apply will allocate a new one
func (h *ChartHandle) Destroy() {
	if h.resource != nil {
		h.resource.Destroy()
		h.resource = nil
	}
}

// ChartInfo describes a handle for diagnostics
type ChartInfo struct {
	Mount   core.MountID `json:"mount"`
	Type    ChartType    `json:"type,omitempty"`
	Live    bool         `json:"live"`
	Creates int          `json:"creates"`
	Updates int          `json:"updates"`
}

// Info snapshots the handle
func (h *ChartHandle) Info() ChartInfo {
	info := ChartInfo{Mount: h.mount, Live: h.resource != nil, Creates: h.creates, Updates: h.updates}
	if info.Live {
		info.Type = h.current.Type
	}
	return info
}

// SurfaceChartBackend publishes chart configs as frames for the browser to draw
type SurfaceChartBackend struct {
	surface *Surface
}

// NewSurfaceChartBackend paints charts onto surface
func NewSurfaceChartBackend(surface *Surface) *SurfaceChartBackend {
	return &SurfaceChartBackend{surface: surface}
}

// Create implements ChartBackend
func (b *SurfaceChartBackend) Create(mount core.MountID, cfg ChartConfig) (ChartResource, error) {
	b.surface.Publish(mount, FrameChart, cfg)
	return &surfaceChart{surface: b.surface, mount: mount}, nil
}

type surfaceChart struct {
	surface   *Surface
	mount     core.MountID
	destroyed bool
}

func (c *surfaceChart) Update(cfg ChartConfig) error {
	if c.destroyed {
		return fmt.Errorf("chart %s already destroyed", c.mount)
	}
	c.surface.Publish(c.mount, FrameChart, cfg)
	return nil
}

func (c *surfaceChart) Destroy() {
	c.destroyed = true
	c.surface.Clear(c.mount)
}
