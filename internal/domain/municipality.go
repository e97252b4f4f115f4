package domain

import (
	"github.com/paulmach/orb"
)

// Boundary is one feature of the boundary dataset before it becomes a record.
type Boundary struct {
	Code     string
	Name     string
	Geometry orb.Geometry
}

// Social holds the Filosofi indicators. Nil fields are absent (masked or
// missing), never zero.
type Social struct {
	PovertyRate  *float64 `json:"poverty_rate,omitempty"`  // percent, 0-100
	MedianIncome *float64 `json:"median_income,omitempty"` // euros per consumption unit
}

// WaterLink ties a municipality to its nearest gauge within the proximity
// radius.
type WaterLink struct {
	Station     string            `json:"station"`
	DistanceKm  float64           `json:"distance_km"`
	LatestLevel float64           `json:"latest_level"`
	LatestLabel string            `json:"latest_label"` // e.g. "3,45 m (Moy/h)"
	Series      *SensorTimeSeries `json:"-"`
}

// Municipality is one row of the fact table.
type Municipality struct {
	ID          string      `json:"insee"`
	Name        string      `json:"name"`
	Centroid    orb.Point   `json:"centroid"`
	HasCentroid bool        `json:"has_centroid"`
	Social      *Social     `json:"social,omitempty"`
	Fire        FireHistory `json:"fire"`
	ClayRisk    RiskLevel   `json:"clay_risk"`
	Water       *WaterLink  `json:"water,omitempty"`
	Cavities    int         `json:"cavities"`
	Movements   int         `json:"movements"`
}

// NewMunicipality creates the default record for a boundary feature.
func NewMunicipality(id, name string) Municipality {
	return Municipality{ID: id, Name: name, ClayRisk: RiskLow}
}

// Clone returns a copy that shares nothing mutable with m, except the
// read-only time series.
func (m Municipality) Clone() Municipality {
	out := m
	if m.Social != nil {
		s := *m.Social
		if s.PovertyRate != nil {
			v := *s.PovertyRate
			s.PovertyRate = &v
		}
		if s.MedianIncome != nil {
			v := *s.MedianIncome
			s.MedianIncome = &v
		}
		out.Social = &s
	}
	if m.Water != nil {
		w := *m.Water
		out.Water = &w
	}
	out.Fire = m.Fire.clone()
	return out
}
