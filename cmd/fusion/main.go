package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/gironde-risk-etl/internal/adapter/httpadapter"
	"github.com/couchcryptid/gironde-risk-etl/internal/config"
	"github.com/couchcryptid/gironde-risk-etl/internal/observability"
	"github.com/couchcryptid/gironde-risk-etl/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	p, err := session.New(ctx, cfg, logger, metrics, nil)
	if err != nil {
		logger.Error("failed to build pipeline", "error", err)
		os.Exit(1)
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, nil, logger)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Build the fact table. The session stays up after a fatal load so the
	// failure remains visible on /readyz.
	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	go func() {
		<-p.SpatialDone()
		if !p.Ready() {
			return
		}
		s := p.Summary()
		logger.Info("fact table complete",
			"municipalities", s.Facts.Municipalities,
			"with_social", s.Facts.WithSocial,
			"fires_in_window", s.Facts.FiresInWindow,
			"clay_high", s.Facts.ClayRisk["HIGH"],
			"clay_medium", s.Facts.ClayRisk["MEDIUM"],
			"with_water", s.Facts.WithWater,
		)
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	select {
	case <-p.SpatialDone():
	case <-shutdownCtx.Done():
		logger.Warn("pipeline did not stop before the shutdown timeout")
	}

	logger.Info("shutdown complete")
}
