package geo

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func square(lon, lat, size float64) orb.Polygon {
	return orb.Polygon{orb.Ring{
		{lon, lat}, {lon + size, lat}, {lon + size, lat + size}, {lon, lat + size}, {lon, lat},
	}}
}

func TestCentroid(t *testing.T) {
	t.Run("square", func(t *testing.T) {
		c, err := Centroid(square(-0.6, 44.8, 0.1))
		require.NoError(t, err)
		assert.InDelta(t, -0.55, c[0], 1e-9)
		assert.InDelta(t, 44.85, c[1], 1e-9)
	})

	t.Run("multipolygon weights by area", func(t *testing.T) {
		mp := orb.MultiPolygon{square(0, 0, 2), square(10, 0, 1)}
		c, err := Centroid(mp)
		require.NoError(t, err)
		// 4 units at x=1 and 1 unit at x=10.5
		assert.InDelta(t, (4*1.0+1*10.5)/5, c[0], 1e-9)
	})

	t.Run("zero area", func(t *testing.T) {
		flat := orb.Polygon{orb.Ring{{0, 0}, {1, 0}, {2, 0}, {0, 0}}}
		_, err := Centroid(flat)
		assert.ErrorIs(t, err, ErrDegenerate)
	})

	t.Run("point is unsupported", func(t *testing.T) {
		_, err := Centroid(orb.Point{1, 2})
		assert.ErrorIs(t, err, ErrUnsupported)
	})

	t.Run("nil", func(t *testing.T) {
		_, err := Centroid(nil)
		assert.ErrorIs(t, err, ErrUnsupported)
	})
}

func TestParseGeometry(t *testing.T) {
	t.Run("polygon", func(t *testing.T) {
		g, err := ParseGeometry(`{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,1],[0,0]]]}`)
		require.NoError(t, err)
		assert.IsType(t, orb.Polygon{}, g)
	})

	t.Run("multipolygon", func(t *testing.T) {
		g, err := ParseGeometry(`{"type":"MultiPolygon","coordinates":[[[[0,0],[1,0],[1,1],[0,0]]]]}`)
		require.NoError(t, err)
		assert.IsType(t, orb.MultiPolygon{}, g)
	})

	t.Run("line string rejected", func(t *testing.T) {
		_, err := ParseGeometry(`{"type":"LineString","coordinates":[[0,0],[1,1]]}`)
		assert.ErrorIs(t, err, ErrUnsupported)
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := ParseGeometry(`{"type":"Polygon","coordinates":`)
		assert.Error(t, err)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := ParseGeometry("")
		assert.Error(t, err)
	})
}

func TestContains(t *testing.T) {
	sq := square(0, 0, 1)
	assert.True(t, Contains(sq, orb.Point{0.5, 0.5}))
	assert.False(t, Contains(sq, orb.Point{1.5, 0.5}))

	mp := orb.MultiPolygon{sq, square(5, 5, 1)}
	assert.True(t, Contains(mp, orb.Point{5.5, 5.5}))
	assert.False(t, Contains(mp, orb.Point{3, 3}))

	assert.False(t, Contains(orb.Point{0, 0}, orb.Point{0, 0}))
}

func TestDistanceKm_MeanRadiusKeepsEdgeInside(t *testing.T) {
	// 14.99 km north on the mean sphere reads as 15.007 km on the
	// equatorial one.
	lat := 44.84 + 14.99*1000/MeanEarthRadius*180/math.Pi
	d := DistanceKm(orb.Point{-0.57, 44.84}, orb.Point{-0.57, lat})
	assert.InDelta(t, 14.99, d, 1e-6)
	assert.Less(t, d, 15.0)
}

func TestDistanceKm(t *testing.T) {
	// One degree of latitude on the mean-radius sphere.
	want := MeanEarthRadius * math.Pi / 180 / 1000
	got := DistanceKm(orb.Point{-0.57, 44.0}, orb.Point{-0.57, 45.0})
	assert.InDelta(t, want, got, 1e-6)
	assert.InDelta(t, 111.195, got, 1e-3)
	assert.Equal(t, 0.0, DistanceKm(orb.Point{1, 1}, orb.Point{1, 1}))
}
