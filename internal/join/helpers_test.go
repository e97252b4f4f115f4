package join

import (
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/gironde-risk-etl/internal/domain"
	"github.com/couchcryptid/gironde-risk-etl/internal/factstore"
	"github.com/couchcryptid/gironde-risk-etl/internal/observability"
	"github.com/couchcryptid/gironde-risk-etl/internal/source"
)

// squareAround is a small square centered on (lon, lat).
func squareAround(lon, lat, half float64) orb.Polygon {
	return orb.Polygon{orb.Ring{
		{lon - half, lat - half}, {lon + half, lat - half}, {lon + half, lat + half}, {lon - half, lat + half}, {lon - half, lat - half},
	}}
}

func geoShape(p orb.Polygon) string {
	s := `{"type":"Polygon","coordinates":[[`
	for i, pt := range p[0] {
		if i > 0 {
			s += ","
		}
		s += fmt.Sprintf("[%v,%v]", pt[0], pt[1])
	}
	return s + `]]}`
}

func newStore(t *testing.T, boundaries ...domain.Boundary) *factstore.Store {
	t.Helper()
	s := factstore.New(slog.Default())
	report := s.CreateFromBoundaries(boundaries)
	require.Equal(t, len(boundaries), report.Created)
	return s
}

// girondeFixture is three municipalities laid out west to east.
func girondeFixture(t *testing.T) *factstore.Store {
	return newStore(t,
		domain.Boundary{Code: "33063", Name: "Bordeaux", Geometry: squareAround(-0.57, 44.84, 0.05)},
		domain.Boundary{Code: "33394", Name: "Saint-Émilion", Geometry: squareAround(-0.15, 44.89, 0.03)},
		domain.Boundary{Code: "33522", Name: "Soulac-sur-Mer", Geometry: squareAround(-1.12, 45.50, 0.04)},
	)
}

func testMetrics() *observability.Metrics { return observability.NewMetricsForTesting() }

func table(records ...source.Record) source.Table {
	return source.Table{Records: records}
}

func mustGet(t *testing.T, s *factstore.Store, id string) domain.Municipality {
	t.Helper()
	m, ok := s.Get(id)
	require.True(t, ok, "missing %s", id)
	return m
}

func hourAt(h int) time.Time {
	return time.Date(2025, 12, 8, 0, 0, 0, 0, time.UTC).Add(time.Duration(h) * time.Hour)
}
