package join

import (
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/paulmach/orb"
	"github.com/shopspring/decimal"

	"github.com/couchcryptid/gironde-risk-etl/internal/domain"
	"github.com/couchcryptid/gironde-risk-etl/internal/factstore"
	"github.com/couchcryptid/gironde-risk-etl/internal/geo"
	"github.com/couchcryptid/gironde-risk-etl/internal/observability"
	"github.com/couchcryptid/gironde-risk-etl/internal/source"
)

const (
	colWaterTime = "Date et heure locale"

	// LatestWindow is the number of readings averaged into the latest level.
	LatestWindow = 10
)

var timestampLayouts = []string{"2006-01-02 15:04:05", "2006-01-02T15:04:05", "2006-01-02 15:04"}

// Proximity links municipalities to their nearest river gauge.
type Proximity struct {
	engine
	stations []domain.Station
	radiusKm float64
}

// NewProximity creates a Proximity engine. Stations are considered in the
// given order, which breaks exact distance ties.
func NewProximity(store *factstore.Store, stations []domain.Station, radiusKm float64, logger *slog.Logger, metrics *observability.Metrics) *Proximity {
	return &Proximity{
		engine:   engine{store: store, logger: logger, metrics: metrics},
		stations: stations,
		radiusKm: radiusKm,
	}
}

// BuildSeries extracts one time series per station from the gauge export.
// Each series is built once here and never written again.
func (p *Proximity) BuildSeries(table source.Table) map[string]*domain.SensorTimeSeries {
	builders := make([]*domain.SeriesBuilder, len(p.stations))
	for i, st := range p.stations {
		builders[i] = domain.NewSeriesBuilder(st.Name)
	}

	report := Report{Source: source.Water}
	for _, rec := range table.Records {
		report.Rows++
		at, ok := parseTimestamp(rec.Get(colWaterTime))
		if !ok {
			p.drop(&report, ReasonBadTimestamp, "value", rec.Get(colWaterTime))
			continue
		}
		for i, st := range p.stations {
			v, ok := parseLevel(rec.Get(st.Column))
			if !ok {
				continue
			}
			builders[i].Append(at, v)
		}
	}

	out := make(map[string]*domain.SensorTimeSeries, len(p.stations))
	for i, st := range p.stations {
		out[st.Name] = builders[i].Build()
		p.logger.Debug("station series built", "station", st.Name, "readings", builders[i].Len())
	}
	return out
}

// Nearest returns the closest station strictly within the radius. The
// first declared station wins an exact tie.
func (p *Proximity) Nearest(pt orb.Point) (domain.Station, float64, bool) {
	best := p.radiusKm
	found := -1
	for i, st := range p.stations {
		d := geo.DistanceKm(pt, st.Point())
		if d < best {
			best = d
			found = i
		}
	}
	if found < 0 {
		return domain.Station{}, 0, false
	}
	return p.stations[found], best, true
}

// Apply builds the station series from the gauge export and links the
// municipalities to them.
func (p *Proximity) Apply(table source.Table) Report {
	return p.Link(p.BuildSeries(table))
}

// Link attaches every municipality with a centroid to its nearest station.
// A nearest station without readings produces no link.
func (p *Proximity) Link(series map[string]*domain.SensorTimeSeries) Report {
	type level struct {
		value float64
		label string
	}
	levels := make(map[string]level, len(series))
	for name, s := range series {
		if v, label, ok := LatestLevel(s); ok {
			levels[name] = level{value: v, label: label}
		}
	}

	r := Report{Source: source.Water}
	for _, c := range p.store.Centroids() {
		r.Rows++
		st, dist, ok := p.Nearest(c.Centroid)
		if !ok {
			continue
		}
		lv, ok := levels[st.Name]
		if !ok {
			p.drop(&r, ReasonNoReadings, "insee", c.ID, "station", st.Name)
			continue
		}
		link := &domain.WaterLink{
			Station:     st.Name,
			DistanceKm:  dist,
			LatestLevel: lv.value,
			LatestLabel: lv.label,
			Series:      series[st.Name],
		}
		p.store.Update(c.ID, func(m *domain.Municipality) { m.Water = link })
		p.joined(&r)
	}
	return r
}

// LatestLevel averages the last LatestWindow readings, rounded to two
// decimals, and formats it the French way ("3,45 m (Moy/h)"). If the mean
// cannot be computed the last reading is used. A series without readings
// has no level.
func LatestLevel(s *domain.SensorTimeSeries) (float64, string, bool) {
	recent := s.Recent(LatestWindow)
	if len(recent) == 0 {
		return 0, "", false
	}

	sum := decimal.Zero
	finite := true
	for _, r := range recent {
		if math.IsNaN(r.Value) || math.IsInf(r.Value, 0) {
			finite = false
			break
		}
		sum = sum.Add(decimal.NewFromFloat(r.Value))
	}

	var mean decimal.Decimal
	if finite {
		mean = sum.Div(decimal.NewFromInt(int64(len(recent)))).Round(2)
	} else {
		last := recent[len(recent)-1].Value
		if math.IsNaN(last) || math.IsInf(last, 0) {
			return 0, "", false
		}
		mean = decimal.NewFromFloat(last).Round(2)
	}
	return mean.InexactFloat64(), FormatLevel(mean), true
}

// FormatLevel renders a level with a decimal comma.
func FormatLevel(d decimal.Decimal) string {
	return strings.Replace(d.StringFixed(2), ".", ",", 1) + " m (Moy/h)"
}

func parseTimestamp(raw string) (time.Time, bool) {
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func parseLevel(raw string) (float64, bool) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return 0, false
	}
	d, err := decimal.NewFromString(strings.Replace(v, ",", ".", 1))
	if err != nil {
		return 0, false
	}
	return d.InexactFloat64(), true
}
