package join

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/gironde-risk-etl/internal/domain"
	"github.com/couchcryptid/gironde-risk-etl/internal/factstore"
	"github.com/couchcryptid/gironde-risk-etl/internal/geo"
	"github.com/couchcryptid/gironde-risk-etl/internal/observability"
	"github.com/couchcryptid/gironde-risk-etl/internal/source"
)

const colGeoShape = "Geo Shape"

// riskColumns hold the hazard level, newer exports use cl_alea.
var riskColumns = []string{"alea", "cl_alea"}

// Spatial assigns clay risk levels by testing municipality centroids
// against hazard polygons.
type Spatial struct {
	engine
}

// NewSpatial creates a Spatial engine writing to store.
func NewSpatial(store *factstore.Store, logger *slog.Logger, metrics *observability.Metrics) *Spatial {
	return &Spatial{engine{store: store, logger: logger, metrics: metrics}}
}

// SpatialScan is one pass over a stream of hazard features.
type SpatialScan struct {
	s         *Spatial
	ctx       context.Context
	centroids []factstore.Located
	report    Report
	tests     int
}

// NewScan snapshots the centroids and starts a scan. ctx is checked between
// features.
func (s *Spatial) NewScan(ctx context.Context) *SpatialScan {
	return &SpatialScan{
		s:         s,
		ctx:       ctx,
		centroids: s.store.Centroids(),
		report:    Report{Source: source.Clay},
	}
}

// Apply processes one hazard feature. Malformed geometries are skipped.
// The only error returned is the context's.
func (sc *SpatialScan) Apply(rec source.Record) error {
	if err := sc.ctx.Err(); err != nil {
		return err
	}
	sc.report.Rows++

	g, err := geo.ParseGeometry(rec.Get(colGeoShape))
	if err != nil {
		sc.s.metrics.RiskZonesSkipped.Inc()
		sc.s.drop(&sc.report, ReasonBadGeometry, "error", err)
		return nil
	}
	level := domain.ParseRiskLevel(rec.Get(riskColumns...))
	bound := g.Bound()

	for _, c := range sc.centroids {
		if !bound.Contains(c.Centroid) {
			continue
		}
		sc.tests++
		if !geo.Contains(g, c.Centroid) {
			continue
		}
		// LOW is the default and cannot raise anything.
		if level == domain.RiskLow {
			continue
		}
		sc.s.store.Update(c.ID, func(m *domain.Municipality) {
			m.ClayRisk = domain.MergeRisk(m.ClayRisk, level)
		})
		sc.s.joined(&sc.report)
	}
	return nil
}

// Report returns the scan totals so far. Joined counts feature and
// municipality hits.
func (sc *SpatialScan) Report() Report { return sc.report }

// Tests returns the number of point in polygon tests run.
func (sc *SpatialScan) Tests() int { return sc.tests }

// Apply scans a materialized table.
func (s *Spatial) Apply(ctx context.Context, table source.Table) (Report, error) {
	sc := s.NewScan(ctx)
	for _, rec := range table.Records {
		if err := sc.Apply(rec); err != nil {
			return sc.Report(), err
		}
	}
	return sc.Report(), nil
}
