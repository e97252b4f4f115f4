// Package geo wraps the planar and spherical geometry used by the joins:
// polygon centroids, point-in-polygon tests and great-circle distance.
package geo

import (
	"errors"
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
)

// ErrDegenerate is returned for geometries with no usable area.
var ErrDegenerate = errors.New("degenerate geometry")

// ErrUnsupported is returned for non-polygonal geometries.
var ErrUnsupported = errors.New("unsupported geometry type")

// Centroid returns the area-weighted centroid of a Polygon or MultiPolygon.
func Centroid(g orb.Geometry) (orb.Point, error) {
	if !polygonal(g) {
		return orb.Point{}, unsupported(g)
	}
	c, area := planar.CentroidArea(g)
	if area == 0 || math.IsNaN(area) || math.IsNaN(c[0]) || math.IsNaN(c[1]) {
		return orb.Point{}, ErrDegenerate
	}
	return c, nil
}

// ParseGeometry decodes a GeoJSON geometry object and keeps it only if it is
// polygonal.
func ParseGeometry(text string) (orb.Geometry, error) {
	if text == "" {
		return nil, fmt.Errorf("parse geometry: %w", ErrDegenerate)
	}
	g, err := geojson.UnmarshalGeometry([]byte(text))
	if err != nil {
		return nil, fmt.Errorf("parse geometry: %w", err)
	}
	geom := g.Geometry()
	if !polygonal(geom) {
		return nil, unsupported(geom)
	}
	return geom, nil
}

// Contains reports whether p lies inside the polygonal geometry g. Points on
// a ring edge count as inside.
func Contains(g orb.Geometry, p orb.Point) bool {
	switch v := g.(type) {
	case orb.Polygon:
		return planar.PolygonContains(v, p)
	case orb.MultiPolygon:
		return planar.MultiPolygonContains(v, p)
	default:
		return false
	}
}

// MeanEarthRadius is the mean radius of the earth in meters. orb works on
// the equatorial radius, which overstates distances by about 0.11%.
const MeanEarthRadius = 6371008.8

// DistanceKm is the haversine distance between two lon/lat points on the
// mean-radius sphere.
func DistanceKm(a, b orb.Point) float64 {
	return geo.DistanceHaversine(a, b) / orb.EarthRadius * MeanEarthRadius / 1000
}

func polygonal(g orb.Geometry) bool {
	switch v := g.(type) {
	case orb.Polygon:
		return len(v) > 0
	case orb.MultiPolygon:
		return len(v) > 0
	default:
		return false
	}
}

func unsupported(g orb.Geometry) error {
	if g == nil {
		return fmt.Errorf("%w: nil", ErrUnsupported)
	}
	return fmt.Errorf("%w: %s", ErrUnsupported, g.GeoJSONType())
}
