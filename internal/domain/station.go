package domain

import (
	"errors"
	"fmt"
	"io"

	"github.com/paulmach/orb"
	"gopkg.in/yaml.v3"
)

// Station is a river gauge with a known position and the name of its
// column in the Vigicrues export.
type Station struct {
	Name   string  `yaml:"name" json:"name"`
	Lat    float64 `yaml:"lat" json:"lat"`
	Lon    float64 `yaml:"lon" json:"lon"`
	Column string  `yaml:"column" json:"column"`
}

// Point returns the station position in lon/lat order.
func (s Station) Point() orb.Point {
	return orb.Point{s.Lon, s.Lat}
}

// DefaultStations are the Vigicrues gauges covering the Garonne and
// Dordogne estuary. Declaration order breaks exact distance ties.
var DefaultStations = []Station{
	{Name: "Bordeaux", Lat: 44.84, Lon: -0.57, Column: "Bordeaux (Garonne) (m)"},
	{Name: "Ambès", Lat: 45.04, Lon: -0.55, Column: "Ambès [Le Marquis] (Garonne) (m)"},
	{Name: "Libourne", Lat: 44.91, Lon: -0.24, Column: "Bayon-sur-Gironde [Bec d'Ambès] (Dordogne) (m)"},
}

type stationCatalog struct {
	Stations []Station `yaml:"stations"`
}

// ParseStations reads a YAML station catalog:
//
//	stations:
//	  - name: Bordeaux
//	    lat: 44.84
//	    lon: -0.57
//	    column: "Bordeaux (Garonne) (m)"
//
// The catalog order is the tie-breaking order.
func ParseStations(r io.Reader) ([]Station, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read station catalog: %w", err)
	}
	var catalog stationCatalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("parse station catalog: %w", err)
	}
	if len(catalog.Stations) == 0 {
		return nil, errors.New("station catalog is empty")
	}

	seen := make(map[string]struct{}, len(catalog.Stations))
	for i, s := range catalog.Stations {
		if s.Name == "" || s.Column == "" {
			return nil, fmt.Errorf("station %d: name and column are required", i)
		}
		if s.Lat < -90 || s.Lat > 90 || s.Lon < -180 || s.Lon > 180 {
			return nil, fmt.Errorf("station %q: coordinates out of range", s.Name)
		}
		if _, dup := seen[s.Name]; dup {
			return nil, fmt.Errorf("station %q declared twice", s.Name)
		}
		seen[s.Name] = struct{}{}
	}
	return catalog.Stations, nil
}
