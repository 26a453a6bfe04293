package ui

import (
	"encoding/json"
	"io"
	"net/http"

	"parceldash/domain/core"
	"parceldash/internal"
	"parceldash/internal/dashboard"
	apperrors "parceldash/internal/errors"

	"github.com/go-chi/chi/v5"
)

const maxBodyBytes = 1 << 20

// API exposes the dashboard session over JSON
type API struct {
	session *dashboard.Session
	logger  *internal.Logger
}

// NewAPI creates the JSON API for a session
func NewAPI(session *dashboard.Session, logger *internal.Logger) *API {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &API{session: session, logger: logger}
}

// Register mounts the API routes under /api
func (a *API) Register(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/dashboard", a.handleDashboard)
		r.Post("/filters", a.handleApplyFilters)
		r.Post("/filters/reset", a.handleResetFilters)
		r.Post("/search", a.handleSearch)
		r.Post("/metric", a.handleSelectMetric)
		r.Post("/chart-type", a.handleSelectChartType)
		r.Post("/tabs/{id}", a.handleActivateTab)
		r.Get("/frames/{mount}", a.handleFrame)
		r.Put("/mounts", a.handleDeclareMounts)
		r.Get("/reports", a.handleListReports)
		r.Post("/reports", a.handleGenerateReport)
		r.Get("/diagnostics", a.handleDiagnostics)
		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			a.writeError(w, apperrors.NotFound("route "+r.URL.Path))
		})
	})
}

// Handler returns a standalone router serving only the API
func (a *API) Handler() http.Handler {
	r := chi.NewRouter()
	a.Register(r)
	return r
}

type dashboardResponse struct {
	View          dashboard.View       `json:"view"`
	Tabs          []dashboard.TabState `json:"tabs"`
	ActiveTab     core.TabID           `json:"activeTab"`
	SearchPending bool                 `json:"searchPending"`
}

type refreshResponse struct {
	Refresh dashboard.RefreshResult `json:"refresh"`
	Filters dashboard.FilterState   `json:"filters"`
}

func (a *API) handleDashboard(w http.ResponseWriter, r *http.Request) {
	a.writeJSON(w, http.StatusOK, dashboardResponse{
		View:          a.session.View(),
		Tabs:          a.session.Tabs(),
		ActiveTab:     a.session.ActiveTab(),
		SearchPending: a.session.SearchPending(),
	})
}

func (a *API) handleApplyFilters(w http.ResponseWriter, r *http.Request) {
	var patch dashboard.FilterPatch
	if err := decodeJSON(r, &patch); err != nil {
		a.writeError(w, err)
		return
	}
	res := a.session.ApplyFilters(patch)
	a.writeJSON(w, http.StatusOK, refreshResponse{Refresh: res, Filters: a.session.Filters()})
}

func (a *API) handleResetFilters(w http.ResponseWriter, r *http.Request) {
	res := a.session.ResetFilters()
	a.writeJSON(w, http.StatusOK, refreshResponse{Refresh: res, Filters: a.session.Filters()})
}

// handleSearch debounces by default; ?immediate=true applies the text at once
func (a *API) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, err)
		return
	}
	if r.URL.Query().Get("immediate") == "true" {
		res := a.session.SetSearchTextNow(req.Text)
		a.writeJSON(w, http.StatusOK, refreshResponse{Refresh: res, Filters: a.session.Filters()})
		return
	}
	a.session.SetSearchText(req.Text)
	a.writeJSON(w, http.StatusAccepted, map[string]bool{"pending": true})
}

func (a *API) handleSelectMetric(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Metric string `json:"metric"`
	}
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, map[string]interface{}{
		"refresh": a.session.SelectMetric(req.Metric),
		"metric":  a.session.View().Metric,
	})
}

func (a *API) handleSelectChartType(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ChartType string `json:"chartType"`
	}
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, map[string]interface{}{
		"refresh":   a.session.SelectChartType(req.ChartType),
		"chartType": a.session.View().ChartType,
	})
}

func (a *API) handleActivateTab(w http.ResponseWriter, r *http.Request) {
	id, err := core.ParseTabID(chi.URLParam(r, "id"))
	if err != nil {
		a.writeError(w, apperrors.InvalidInput(err.Error()))
		return
	}
	res, err := a.session.ActivateTab(id)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, map[string]interface{}{
		"refresh": res,
		"tabs":    a.session.Tabs(),
	})
}

func (a *API) handleFrame(w http.ResponseWriter, r *http.Request) {
	mount, err := core.ParseMountID(chi.URLParam(r, "mount"))
	if err != nil {
		a.writeError(w, apperrors.InvalidInput(err.Error()))
		return
	}
	frame, ok := a.session.Frame(mount)
	if !ok {
		a.writeError(w, apperrors.NotFound("frame for "+mount.String()))
		return
	}
	a.writeJSON(w, http.StatusOK, frame)
}

func (a *API) handleDeclareMounts(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Mounts []string `json:"mounts"`
	}
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, err)
		return
	}
	mounts := make([]core.MountID, 0, len(req.Mounts))
	for _, m := range req.Mounts {
		id, err := core.ParseMountID(m)
		if err != nil {
			a.writeError(w, apperrors.InvalidInput(err.Error()))
			return
		}
		mounts = append(mounts, id)
	}
	a.writeJSON(w, http.StatusOK, map[string]interface{}{
		"refresh": a.session.DeclareMounts(mounts),
	})
}

func (a *API) handleListReports(w http.ResponseWriter, r *http.Request) {
	a.writeJSON(w, http.StatusOK, map[string]interface{}{
		"reports": a.session.Reports(),
		"visible": a.session.View().Reports,
	})
}

func (a *API) handleGenerateReport(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Type   string `json:"type"`
		Format string `json:"format"`
	}
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, err)
		return
	}
	entry, res, err := a.session.GenerateReport(r.Context(), req.Type, req.Format)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusCreated, map[string]interface{}{
		"report":  entry,
		"refresh": res,
	})
}

func (a *API) handleDiagnostics(w http.ResponseWriter, r *http.Request) {
	a.writeJSON(w, http.StatusOK, a.session.Diagnostics())
}

func decodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return apperrors.InvalidInput("invalid request body: " + err.Error())
	}
	return nil
}

func (a *API) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		a.logger.Warn("[API] encoding response: %v", err)
	}
}

func (a *API) writeError(w http.ResponseWriter, err error) {
	status := apperrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		a.logger.Error("[API] %v", err)
	}
	a.writeJSON(w, status, map[string]string{
		"code":  apperrors.GetCode(err),
		"error": err.Error(),
	})
}
