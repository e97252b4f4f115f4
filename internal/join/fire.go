package join

import (
	"log/slog"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/couchcryptid/gironde-risk-etl/internal/domain"
	"github.com/couchcryptid/gironde-risk-etl/internal/factstore"
	"github.com/couchcryptid/gironde-risk-etl/internal/observability"
	"github.com/couchcryptid/gironde-risk-etl/internal/source"
)

const (
	colFireDepartment = "Département"
	colFireCode       = "Code INSEE"
	colFireYear       = "Année"
	colFireName       = "Nom de la commune"
)

// Fire aggregates wildfire records into per-year counts.
type Fire struct {
	engine
	department string
	window     domain.FireWindow
}

// NewFire creates a Fire engine for one department.
func NewFire(store *factstore.Store, department string, window domain.FireWindow, logger *slog.Logger, metrics *observability.Metrics) *Fire {
	return &Fire{
		engine:     engine{store: store, logger: logger, metrics: metrics},
		department: domain.NormalizeCode(department),
		window:     window,
	}
}

// Apply groups qualifying rows by (municipality, year) and adds the counts.
// A row qualifies when its department matches or its code carries the
// department prefix.
func (f *Fire) Apply(table source.Table) Report {
	r := Report{Source: source.Fire}
	counts := make(map[string]map[int]int)
	rowsByID := make(map[string]int)

	for _, rec := range table.Records {
		r.Rows++
		code := domain.NormalizeCode(rec.Get(colFireCode))
		dept := domain.NormalizeCode(rec.Get(colFireDepartment))
		if dept != f.department && !strings.HasPrefix(code, f.department) {
			f.drop(&r, ReasonOutOfScope, "department", dept, "code", code)
			continue
		}
		year, ok := parseYear(rec.Get(colFireYear))
		if !ok {
			f.drop(&r, ReasonBadYear, "year", rec.Get(colFireYear))
			continue
		}
		id, ok := f.resolve(&r, code, rec.Get(colFireName))
		if !ok {
			continue
		}
		if counts[id] == nil {
			counts[id] = make(map[int]int)
		}
		counts[id][year]++
		rowsByID[id]++
	}

	for _, id := range slices.Sorted(maps.Keys(counts)) {
		years := counts[id]
		f.store.Update(id, func(m *domain.Municipality) {
			for _, y := range slices.Sorted(maps.Keys(years)) {
				m.Fire.Add(y, years[y], f.window)
			}
		})
		r.Joined += rowsByID[id]
		f.metrics.RowsJoined.WithLabelValues(r.Source.String()).Add(float64(rowsByID[id]))
	}
	return r
}

func parseYear(raw string) (int, bool) {
	v := strings.TrimSuffix(strings.TrimSpace(raw), ".0")
	y, err := strconv.Atoi(v)
	if err != nil || y <= 0 {
		return 0, false
	}
	return y, true
}
