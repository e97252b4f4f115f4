// Package session assembles a pipeline from configuration: the fetchers
// for every supported URI scheme, the source loader and the join options.
package session

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/gironde-risk-etl/internal/adapter/remote"
	s3adapter "github.com/couchcryptid/gironde-risk-etl/internal/adapter/s3"
	"github.com/couchcryptid/gironde-risk-etl/internal/config"
	"github.com/couchcryptid/gironde-risk-etl/internal/observability"
	"github.com/couchcryptid/gironde-risk-etl/internal/pipeline"
	"github.com/couchcryptid/gironde-risk-etl/internal/source"
)

// NewFetcher returns a router serving local paths, file://, http(s):// and
// s3:// locations.
func NewFetcher(ctx context.Context, cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics, clock clockwork.Clock) (*source.Router, error) {
	router := source.NewRouter(metrics, clock)
	router.Register(remote.NewClient(cfg.FetchTimeout, logger), "http", "https")

	s3, err := s3adapter.New(ctx, s3adapter.Config{
		Region:    cfg.S3Region,
		Endpoint:  cfg.S3Endpoint,
		PathStyle: cfg.S3PathStyle,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("init s3 fetcher: %w", err)
	}
	router.Register(s3, "s3")
	return router, nil
}

// New builds the pipeline described by cfg. A nil clock uses the real one.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics, clock clockwork.Clock) (*pipeline.Pipeline, error) {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	fetcher, err := NewFetcher(ctx, cfg, logger, metrics, clock)
	if err != nil {
		return nil, err
	}
	loader := source.NewLoader(fetcher, source.LocationsFromConfig(cfg.Sources), logger, metrics)

	logger.Info("session configured",
		"department", cfg.DepartmentCode,
		"fire_window_start", cfg.FireWindow.Start(),
		"fire_current_year", cfg.FireWindow.CurrentYear,
		"radius_km", cfg.ProximityRadiusKm,
		"stations", len(cfg.Stations),
	)

	return pipeline.New(loader, pipeline.Options{
		Department: cfg.DepartmentCode,
		FireWindow: cfg.FireWindow,
		Stations:   cfg.Stations,
		RadiusKm:   cfg.ProximityRadiusKm,
		Clock:      clock,
	}, logger, metrics), nil
}
