package pipeline

import (
	"github.com/couchcryptid/gironde-risk-etl/internal/domain"
	"github.com/couchcryptid/gironde-risk-etl/internal/join"
	"github.com/couchcryptid/gironde-risk-etl/internal/source"
)

// stage is one join run once the sources it needs have loaded.
type stage struct {
	name  string
	needs []source.Kind
	apply func(inputs map[source.Kind]source.Table) join.Report
}

// stages returns the joins that run before the fact table is ready, in
// execution order.
func (p *Pipeline) stages() []stage {
	tabular := join.NewTabular(p.store, p.logger, p.metrics)
	fire := join.NewFire(p.store, p.opts.Department, p.opts.FireWindow, p.logger, p.metrics)
	proximity := join.NewProximity(p.store, p.opts.Stations, p.opts.RadiusKm, p.logger, p.metrics)

	return []stage{
		{
			name:  "social",
			needs: []source.Kind{source.Social},
			apply: func(in map[source.Kind]source.Table) join.Report {
				return tabular.Social(in[source.Social])
			},
		},
		{
			name:  "cavities",
			needs: []source.Kind{source.Cavities},
			apply: func(in map[source.Kind]source.Table) join.Report {
				return tabular.Cavities(in[source.Cavities])
			},
		},
		{
			name:  "movements",
			needs: []source.Kind{source.Movements},
			apply: func(in map[source.Kind]source.Table) join.Report {
				return tabular.Movements(in[source.Movements])
			},
		},
		{
			name:  "fire",
			needs: []source.Kind{source.Fire},
			apply: func(in map[source.Kind]source.Table) join.Report {
				return fire.Apply(in[source.Fire])
			},
		},
		{
			name:  "proximity",
			needs: []source.Kind{source.Water},
			apply: func(in map[source.Kind]source.Table) join.Report {
				series := proximity.BuildSeries(in[source.Water])
				p.setSeries(series)
				return proximity.Link(series)
			},
		},
	}
}

func (p *Pipeline) setSeries(series map[string]*domain.SensorTimeSeries) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.series = series
}
