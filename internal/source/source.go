// Package source fetches and decodes the raw datasets: the boundary
// FeatureCollection and the semicolon-separated open-data CSV exports.
package source

import (
	"strings"
)

// Kind names one input dataset.
type Kind string

const (
	Boundaries Kind = "boundaries"
	Social     Kind = "social"
	Fire       Kind = "fire"
	Water      Kind = "water"
	Cavities   Kind = "cavities"
	Movements  Kind = "movements"
	Clay       Kind = "clay"
)

// Kinds lists every dataset in load order.
var Kinds = []Kind{Boundaries, Social, Fire, Water, Cavities, Movements, Clay}

func (k Kind) String() string { return string(k) }

// Record is one CSV row keyed by header name.
type Record map[string]string

// Get returns the first non-empty trimmed value among keys.
func (r Record) Get(keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(r[k]); v != "" {
			return v
		}
	}
	return ""
}

// Table is a fully materialized CSV source.
type Table struct {
	Header  []string
	Records []Record
}

// Len returns the number of records.
func (t Table) Len() int { return len(t.Records) }
