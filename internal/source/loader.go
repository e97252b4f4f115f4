package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/gironde-risk-etl/internal/config"
	"github.com/couchcryptid/gironde-risk-etl/internal/domain"
	"github.com/couchcryptid/gironde-risk-etl/internal/observability"
)

// ErrNotConfigured is returned when a dataset has no location.
var ErrNotConfigured = errors.New("source not configured")

// Locations maps each dataset to its URI.
type Locations map[Kind]string

// LocationsFromConfig maps the configured source locations by kind.
func LocationsFromConfig(s config.Sources) Locations {
	return Locations{
		Boundaries: s.Boundaries,
		Social:     s.Social,
		Fire:       s.Fire,
		Clay:       s.Clay,
		Water:      s.Water,
		Cavities:   s.Cavities,
		Movements:  s.Movements,
	}
}

// Loader fetches and decodes datasets. Every dataset except the boundaries
// degrades to an empty result on failure.
type Loader struct {
	fetcher   Fetcher
	locations Locations
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// NewLoader creates a Loader.
func NewLoader(f Fetcher, locations Locations, logger *slog.Logger, metrics *observability.Metrics) *Loader {
	return &Loader{fetcher: f, locations: locations, logger: logger, metrics: metrics}
}

// LoadBoundaries fetches the boundary FeatureCollection. Its failure is
// returned to the caller.
func (l *Loader) LoadBoundaries(ctx context.Context) ([]domain.Boundary, error) {
	uri := l.locations[Boundaries]
	if uri == "" {
		return nil, fmt.Errorf("%s: %w", Boundaries, ErrNotConfigured)
	}
	rc, err := l.fetcher.Open(ctx, uri)
	if err != nil {
		l.metrics.SourceFailures.WithLabelValues(Boundaries.String()).Inc()
		return nil, fmt.Errorf("fetch %s: %w", Boundaries, err)
	}
	defer rc.Close()

	features, err := ParseBoundaries(rc)
	if err != nil {
		l.metrics.SourceFailures.WithLabelValues(Boundaries.String()).Inc()
		return nil, fmt.Errorf("load %s: %w", Boundaries, err)
	}
	l.metrics.SourceRows.WithLabelValues(Boundaries.String()).Add(float64(len(features)))
	l.logger.Info("source loaded", "source", Boundaries, "uri", uri, "rows", len(features))
	return features, nil
}

// LoadTable fetches and reads a CSV dataset. On any failure the table is
// empty and the failure is logged.
func (l *Loader) LoadTable(ctx context.Context, kind Kind) Table {
	var t Table
	err := l.stream(ctx, kind, func(header []string, rec Record) error {
		if t.Header == nil {
			t.Header = header
		}
		t.Records = append(t.Records, rec)
		return nil
	})
	if err != nil {
		l.fail(kind, err)
		return Table{}
	}
	l.metrics.SourceRows.WithLabelValues(kind.String()).Add(float64(t.Len()))
	l.logger.Info("source loaded", "source", kind, "uri", l.locations[kind], "rows", t.Len())
	return t
}

// StreamTable calls fn for each row of a CSV dataset without materializing
// it. Fetch and decode failures are logged and end the scan with a nil
// error; rows seen before a mid-stream failure stay applied. Only errors
// returned by fn are propagated.
func (l *Loader) StreamTable(ctx context.Context, kind Kind, fn func(Record) error) error {
	rows := 0
	var fnErr error
	err := l.stream(ctx, kind, func(_ []string, rec Record) error {
		rows++
		if err := fn(rec); err != nil {
			fnErr = err
			return err
		}
		return nil
	})
	l.metrics.SourceRows.WithLabelValues(kind.String()).Add(float64(rows))
	if fnErr != nil {
		return fnErr
	}
	if err != nil {
		l.fail(kind, err)
		return nil
	}
	l.logger.Info("source streamed", "source", kind, "uri", l.locations[kind], "rows", rows)
	return nil
}

func (l *Loader) stream(ctx context.Context, kind Kind, fn func([]string, Record) error) error {
	uri := l.locations[kind]
	if uri == "" {
		return ErrNotConfigured
	}
	rc, err := l.fetcher.Open(ctx, uri)
	if err != nil {
		return fmt.Errorf("fetch: %w", err)
	}
	defer rc.Close()
	return StreamCSV(rc, OptionsFor(kind), fn)
}

func (l *Loader) fail(kind Kind, err error) {
	l.metrics.SourceFailures.WithLabelValues(kind.String()).Inc()
	l.logger.Warn("source unavailable, continuing without it",
		"source", kind,
		"uri", l.locations[kind],
		"error", err,
	)
}
