package main

import (
	"context"
	"fmt"

	"parceldash/adapters/dataset"
	"parceldash/adapters/postgres"
	"parceldash/domain/core"
	"parceldash/domain/survey"
	"parceldash/internal"
	"parceldash/internal/config"
	"parceldash/internal/dashboard"
	"parceldash/internal/reports"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
)

// loadConfig reads .env when present, then the environment
func loadConfig() (*config.Config, *internal.Logger, error) {
	// a missing .env is normal outside development
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	logger := internal.NewLogger(internal.ParseLogLevel(cfg.LogLevel))
	internal.DefaultLogger = logger
	return cfg, logger, nil
}

// runtime is everything a command needs to drive a session
type runtime struct {
	cfg     *config.Config
	logger  *internal.Logger
	dataset *survey.Dataset
	reports *reports.Log
	session *dashboard.Session
	db      *sqlx.DB
}

func newRuntime(ctx context.Context, cfg *config.Config, logger *internal.Logger) (*runtime, error) {
	rt := &runtime{cfg: cfg, logger: logger}

	if cfg.Reports.Enabled() {
		db, err := postgres.Open(ctx, cfg.Reports.Driver, cfg.Reports.DSN)
		if err != nil {
			return nil, err
		}
		rt.db = db
		rt.reports = reports.NewLog(postgres.NewReportRepository(db), logger)
		if err := rt.reports.Load(ctx); err != nil {
			rt.Close()
			return nil, err
		}
		logger.Info("[Reports] persisting history via %s", cfg.Reports.Driver)
	} else {
		rt.reports = reports.NewLog(nil, logger)
	}

	ds, err := dataset.NewLoader(cfg.Data.DatasetFile, logger).Load(ctx)
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("load dataset: %w", err)
	}
	rt.dataset = ds

	rt.session = dashboard.NewSession(dashboard.Options{
		DefaultTab:     core.TabID(cfg.Dashboard.DefaultTab),
		Metric:         dashboard.Metric(cfg.Dashboard.DefaultMetric),
		ChartType:      dashboard.ChartType(cfg.Dashboard.DefaultChartType),
		SearchDebounce: cfg.Dashboard.SearchDebounce,
		Reports:        rt.reports,
		Logger:         logger,
	})
	rt.session.Load(ds)
	return rt, nil
}

// Close releases the session and the database
func (rt *runtime) Close() {
	if rt.session != nil {
		rt.session.Close()
	}
	if rt.db != nil {
		if err := rt.db.Close(); err != nil {
			rt.logger.Warn("[Reports] closing database: %v", err)
		}
	}
	_ = rt.logger.Sync()
}
