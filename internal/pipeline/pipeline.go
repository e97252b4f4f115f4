package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/gironde-risk-etl/internal/domain"
	"github.com/couchcryptid/gironde-risk-etl/internal/factstore"
	"github.com/couchcryptid/gironde-risk-etl/internal/join"
	"github.com/couchcryptid/gironde-risk-etl/internal/observability"
	"github.com/couchcryptid/gironde-risk-etl/internal/query"
	"github.com/couchcryptid/gironde-risk-etl/internal/source"
)

// ErrNoBoundaries is returned when the boundary dataset yields no feature.
var ErrNoBoundaries = errors.New("boundary dataset is empty")

// SourceLoader fetches the datasets. Table loads never fail: a broken
// source comes back empty.
type SourceLoader interface {
	LoadBoundaries(ctx context.Context) ([]domain.Boundary, error)
	LoadTable(ctx context.Context, kind source.Kind) source.Table
	StreamTable(ctx context.Context, kind source.Kind, fn func(source.Record) error) error
}

// Options configures the joins.
type Options struct {
	Department string
	FireWindow domain.FireWindow
	Stations   []domain.Station
	RadiusKm   float64
	Clock      clockwork.Clock
}

// Pipeline loads every source, builds the fact table and runs the joins.
// The table becomes queryable before the clay spatial join, which runs last.
type Pipeline struct {
	loader  SourceLoader
	opts    Options
	store   *factstore.Store
	logger  *slog.Logger
	metrics *observability.Metrics
	clock   clockwork.Clock

	runID       string
	ready       atomic.Bool
	spatialDone chan struct{}

	mu      sync.Mutex
	reports []join.Report
	series  map[string]*domain.SensorTimeSeries
}

// New creates a Pipeline. A nil Options.Clock uses the real clock.
func New(loader SourceLoader, opts Options, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	clock := opts.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	runID := uuid.NewString()
	return &Pipeline{
		loader:      loader,
		opts:        opts,
		store:       factstore.New(logger.With("run_id", runID)),
		logger:      logger.With("run_id", runID),
		metrics:     metrics,
		clock:       clock,
		runID:       runID,
		spatialDone: make(chan struct{}),
	}
}

// CheckReadiness returns nil once the fact table is queryable, or an error
// describing why the service is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("fact table is not built yet")
	}
	return nil
}

// Ready reports whether the fact table is queryable.
func (p *Pipeline) Ready() bool { return p.ready.Load() }

// SpatialDone is closed when Run returns.
func (p *Pipeline) SpatialDone() <-chan struct{} { return p.spatialDone }

// Store returns the fact table.
func (p *Pipeline) Store() *factstore.Store { return p.store }

// RunID identifies this run in logs.
func (p *Pipeline) RunID() string { return p.runID }

// Series returns the reading history of a station, nil if unknown.
func (p *Pipeline) Series(station string) *domain.SensorTimeSeries {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.series[station]
}

// Reports returns the join reports recorded so far, in execution order.
func (p *Pipeline) Reports() []join.Report {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]join.Report(nil), p.reports...)
}

// Summary describes the run and the current state of the fact table.
type Summary struct {
	RunID       string        `json:"run_id"`
	Ready       bool          `json:"ready"`
	SpatialDone bool          `json:"spatial_done"`
	Facts       query.Summary `json:"facts"`
	Reports     []join.Report `json:"reports"`
}

// Summary snapshots the run.
func (p *Pipeline) Summary() Summary {
	done := false
	select {
	case <-p.spatialDone:
		done = true
	default:
	}
	return Summary{
		RunID:       p.runID,
		Ready:       p.Ready(),
		SpatialDone: done,
		Facts:       query.Summarize(p.store),
		Reports:     p.Reports(),
	}
}

// Run loads the sources concurrently and applies the joins in dependency
// order. It returns after the spatial join, or early with an error when
// the boundaries cannot be loaded. Cancelling ctx stops the run without
// error.
func (p *Pipeline) Run(ctx context.Context) error {
	defer close(p.spatialDone)
	start := p.clock.Now()
	p.logger.Info("pipeline started")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	boundaries := newSlot[[]domain.Boundary]()
	tables := make(map[source.Kind]*slot[source.Table])
	for _, k := range []source.Kind{source.Social, source.Fire, source.Water, source.Cavities, source.Movements} {
		tables[k] = newSlot[source.Table]()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		b, err := p.loader.LoadBoundaries(gctx)
		boundaries.set(b, err)
		return err
	})
	for kind, s := range tables {
		g.Go(func() error {
			s.set(p.loader.LoadTable(gctx, kind), nil)
			return nil
		})
	}
	defer func() {
		cancel()
		_ = g.Wait()
	}()

	if err := p.buildStore(ctx, boundaries); err != nil {
		if ctx.Err() != nil {
			p.logger.Info("pipeline stopping", "reason", ctx.Err())
			return nil
		}
		p.logger.Error("pipeline aborted", "error", err)
		return err
	}

	for _, st := range p.stages() {
		if err := p.runStage(ctx, st, tables); err != nil {
			p.logger.Info("pipeline stopping", "reason", err)
			return nil
		}
	}

	p.ready.Store(true)
	p.metrics.PipelineReady.Set(1)
	p.logger.Info("fact table ready", "municipalities", p.store.Len(), "elapsed", p.clock.Since(start))

	if err := p.runSpatial(ctx); err != nil {
		p.logger.Info("pipeline stopping", "reason", err)
		return nil
	}

	p.logger.Info("pipeline finished", "elapsed", p.clock.Since(start))
	return nil
}

func (p *Pipeline) buildStore(ctx context.Context, boundaries *slot[[]domain.Boundary]) error {
	start := p.clock.Now()
	features, err := boundaries.wait(ctx)
	if err != nil {
		return fmt.Errorf("load boundaries: %w", err)
	}
	if len(features) == 0 {
		return ErrNoBoundaries
	}
	report := p.store.CreateFromBoundaries(features)
	p.metrics.Municipalities.Set(float64(p.store.Len()))
	p.observePhase("boundaries", start)
	p.logger.Info("fact table created",
		"municipalities", report.Created,
		"duplicates", report.Duplicates,
		"degenerate", report.Degenerate,
	)
	return nil
}

func (p *Pipeline) runStage(ctx context.Context, st stage, tables map[source.Kind]*slot[source.Table]) error {
	inputs := make(map[source.Kind]source.Table, len(st.needs))
	for _, k := range st.needs {
		t, err := tables[k].wait(ctx)
		if err != nil {
			return err
		}
		inputs[k] = t
	}

	start := p.clock.Now()
	report := st.apply(inputs)
	p.observePhase(st.name, start)
	p.record(report)
	p.logger.Info("join applied",
		"stage", st.name,
		"rows", report.Rows,
		"joined", report.Joined,
		"dropped", report.Dropped,
	)
	return nil
}

func (p *Pipeline) runSpatial(ctx context.Context) error {
	start := p.clock.Now()
	scan := join.NewSpatial(p.store, p.logger, p.metrics).NewScan(ctx)
	if err := p.loader.StreamTable(ctx, source.Clay, scan.Apply); err != nil {
		return err
	}
	report := scan.Report()
	p.observePhase("spatial", start)
	p.record(report)
	p.logger.Info("join applied",
		"stage", "spatial",
		"rows", report.Rows,
		"joined", report.Joined,
		"dropped", report.Dropped,
		"tests", scan.Tests(),
	)
	return nil
}

func (p *Pipeline) observePhase(phase string, start time.Time) {
	p.metrics.PhaseDuration.WithLabelValues(phase).Observe(p.clock.Since(start).Seconds())
}

func (p *Pipeline) record(r join.Report) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reports = append(p.reports, r)
}
