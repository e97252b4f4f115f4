package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/couchcryptid/gironde-risk-etl/internal/config"
	"github.com/couchcryptid/gironde-risk-etl/internal/mockdata"
	"github.com/couchcryptid/gironde-risk-etl/internal/observability"
	"github.com/couchcryptid/gironde-risk-etl/internal/pipeline"
	"github.com/couchcryptid/gironde-risk-etl/internal/session"
)

type cli struct {
	cfg     *config.Config
	logger  *slog.Logger
	dataDir string
	jsonOut bool
	verbose bool
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:          "fusionctl",
		Short:        "Fuse the Gironde open datasets into a municipal risk table and query it",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			if c.dataDir != "" {
				cfg.Sources = sourcesIn(c.dataDir)
			}
			switch {
			case c.verbose:
				cfg.LogLevel = "debug"
			case os.Getenv("LOG_LEVEL") == "":
				cfg.LogLevel = "warn"
			}
			c.cfg = cfg
			c.logger = observability.NewLoggerTo(cmd.ErrOrStderr(), cfg)
			return nil
		},
	}

	root.PersistentFlags().StringVar(&c.dataDir, "data-dir", "", "Read every source from this directory, using the file names written by genmock")
	root.PersistentFlags().BoolVar(&c.jsonOut, "json", false, "Print JSON instead of text")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "Log pipeline progress to stderr")

	root.AddCommand(
		c.summaryCmd(),
		c.searchCmd(),
		c.rankCmd(),
		c.clayCmd(),
		c.stationCmd(),
		c.correlateCmd(),
		c.municipalityCmd(),
		c.validateCmd(),
	)
	return root
}

// sourcesIn locates every dataset under dir.
func sourcesIn(dir string) config.Sources {
	return config.Sources{
		Boundaries: filepath.Join(dir, mockdata.BoundariesFile),
		Social:     filepath.Join(dir, mockdata.SocialFile),
		Fire:       filepath.Join(dir, mockdata.FireFile),
		Clay:       filepath.Join(dir, mockdata.ClayFile),
		Water:      filepath.Join(dir, mockdata.WaterFile),
		Cavities:   filepath.Join(dir, mockdata.CavitiesFile),
		Movements:  filepath.Join(dir, mockdata.MovementsFile),
	}
}

// build runs the pipeline to completion, spatial join included.
func (c *cli) build(ctx context.Context) (*pipeline.Pipeline, error) {
	metrics := observability.NewMetricsWith(prometheus.NewRegistry())
	p, err := session.New(ctx, c.cfg, c.logger, metrics, nil)
	if err != nil {
		return nil, err
	}
	if err := p.Run(ctx); err != nil {
		return nil, fmt.Errorf("building fact table: %w", err)
	}
	if !p.Ready() {
		return nil, errors.New("interrupted before the fact table was built")
	}
	return p, nil
}

// emit prints v as indented JSON when --json is set, otherwise calls text.
func (c *cli) emit(w io.Writer, v any, text func(io.Writer)) error {
	if c.jsonOut {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	text(w)
	return nil
}
