package join

import (
	"log/slog"

	"github.com/couchcryptid/gironde-risk-etl/internal/domain"
	"github.com/couchcryptid/gironde-risk-etl/internal/factstore"
	"github.com/couchcryptid/gironde-risk-etl/internal/observability"
	"github.com/couchcryptid/gironde-risk-etl/internal/source"
)

// Column names of the tabular sources.
const (
	colSocialCode   = "CODGEO"
	colSocialName   = "LIBGEO"
	colPovertyRate  = "TP6017"
	colMedianIncome = "MED17"
	colCavityCode   = "numInsee"
	colMovementCode = "num_insee"
)

// nameColumns are tried, in order, when a counter row has no code.
var nameColumns = []string{"commune", "nom_commune", "nomCommune", "lib_commune"}

// socialNameColumns locate the municipality name of a Filosofi row.
var socialNameColumns = append([]string{colSocialName}, nameColumns...)

// Tabular joins the identifier-keyed datasets.
type Tabular struct {
	engine
}

// NewTabular creates a Tabular engine writing to store.
func NewTabular(store *factstore.Store, logger *slog.Logger, metrics *observability.Metrics) *Tabular {
	return &Tabular{engine{store: store, logger: logger, metrics: metrics}}
}

// Social attaches the poverty rate and median income. When a code appears
// twice the last row wins.
func (t *Tabular) Social(table source.Table) Report {
	r := Report{Source: source.Social}
	for _, rec := range table.Records {
		r.Rows++
		id, ok := t.resolve(&r, rec.Get(colSocialCode), rec.Get(socialNameColumns...))
		if !ok {
			continue
		}
		social := &domain.Social{
			PovertyRate:  parseNumber(rec.Get(colPovertyRate)),
			MedianIncome: parseNumber(rec.Get(colMedianIncome)),
		}
		t.store.Update(id, func(m *domain.Municipality) { m.Social = social })
		t.joined(&r)
	}
	return r
}

// Cavities counts one underground cavity per row.
func (t *Tabular) Cavities(table source.Table) Report {
	return t.count(table, source.Cavities, colCavityCode, func(m *domain.Municipality) { m.Cavities++ })
}

// Movements counts one ground movement per row.
func (t *Tabular) Movements(table source.Table) Report {
	return t.count(table, source.Movements, colMovementCode, func(m *domain.Municipality) { m.Movements++ })
}

func (t *Tabular) count(table source.Table, kind source.Kind, codeColumn string, inc func(*domain.Municipality)) Report {
	r := Report{Source: kind}
	for _, rec := range table.Records {
		r.Rows++
		id, ok := t.resolve(&r, rec.Get(codeColumn), rec.Get(nameColumns...))
		if !ok {
			continue
		}
		t.store.Update(id, inc)
		t.joined(&r)
	}
	return r
}
