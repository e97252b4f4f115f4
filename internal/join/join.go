// Package join applies each dataset to the fact table: identifier joins
// for the tabular sources, per-year aggregation for wildfires, point in
// polygon for clay risk zones and nearest gauge for river levels.
package join

import (
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/couchcryptid/gironde-risk-etl/internal/domain"
	"github.com/couchcryptid/gironde-risk-etl/internal/factstore"
	"github.com/couchcryptid/gironde-risk-etl/internal/observability"
	"github.com/couchcryptid/gironde-risk-etl/internal/source"
)

// Drop reasons reported in rows_dropped_total.
const (
	ReasonUnresolved   = "unresolved"
	ReasonUnknownID    = "unknown_id"
	ReasonOutOfScope   = "out_of_department"
	ReasonBadYear      = "bad_year"
	ReasonBadGeometry  = "bad_geometry"
	ReasonBadTimestamp = "bad_timestamp"
	ReasonNoReadings   = "station_without_readings"
	ReasonNoCentroid   = "no_centroid"
)

// Report summarizes one join.
type Report struct {
	Source  source.Kind `json:"source"`
	Rows    int         `json:"rows"`
	Joined  int         `json:"joined"`
	Dropped int         `json:"dropped"`
}

// engine carries what every join needs.
type engine struct {
	store   *factstore.Store
	logger  *slog.Logger
	metrics *observability.Metrics
}

func (e engine) drop(r *Report, reason string, attrs ...any) {
	r.Dropped++
	e.metrics.RowsDropped.WithLabelValues(r.Source.String(), reason).Inc()
	e.logger.Debug("row dropped", append([]any{"source", r.Source, "reason", reason}, attrs...)...)
}

func (e engine) joined(r *Report) {
	r.Joined++
	e.metrics.RowsJoined.WithLabelValues(r.Source.String()).Inc()
}

// resolve derives a row's identifier and checks it against the fact table.
func (e engine) resolve(r *Report, code, name string) (string, bool) {
	id, how := domain.ResolveIdentifier(code, name, e.store)
	if how == domain.Unresolved {
		e.drop(r, ReasonUnresolved, "code", code, "name", name)
		return "", false
	}
	if !e.store.Contains(id) {
		e.drop(r, ReasonUnknownID, "insee", id)
		return "", false
	}
	return id, true
}

// numberSpaces are thousands separators found in French exports.
var numberSpaces = strings.NewReplacer(" ", "", "\u00a0", "", "\u202f", "")

// parseNumber reads a French-formatted number. Empty and statistical
// secrecy markers ("s", "nd") are absent.
func parseNumber(raw string) *float64 {
	v := strings.TrimSpace(raw)
	switch strings.ToLower(v) {
	case "", "s", "nd", "n/a", "na":
		return nil
	}
	v = numberSpaces.Replace(v)
	v = strings.Replace(v, ",", ".", 1)
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}
