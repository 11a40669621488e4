package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type place struct {
	name string
	p    *Point
}

func (pl place) Coordinates() (Point, bool) {
	if pl.p == nil {
		return Point{}, false
	}
	return *pl.p, true
}

func TestDistance(t *testing.T) {
	belgrade := Point{Lat: 44.7866, Lon: 20.4489}
	noviSad := Point{Lat: 45.2671, Lon: 19.8335}

	assert.Equal(t, 0.0, Distance(belgrade, belgrade))
	assert.InDelta(t, 71.0, Distance(belgrade, noviSad), 1.5)
	assert.InDelta(t, Distance(belgrade, noviSad), Distance(noviSad, belgrade), 1e-9)

	// One degree of latitude along a meridian
	assert.InDelta(t, 111.19, Distance(Point{0, 0}, Point{1, 0}), 0.01)
}

func TestProximityScore(t *testing.T) {
	tests := []struct {
		km       float64
		expected float64
	}{
		{0, 1.0},
		{5, 1.0},
		{10, 0.5},
		{12.5, 0.25},
		{15, 0.0},
		{40, 0.0},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.expected, ProximityScore(tt.km, 5, 15), 1e-9, "distance %v", tt.km)
	}
}

func TestProximityScore_FromCoordinates(t *testing.T) {
	origin := Point{Lat: 0, Lon: 0}
	// Latitude offsets that give the wanted great-circle distance
	at := func(km float64) Point { return Point{Lat: km / EarthRadiusKm * 180 / 3.141592653589793} }

	assert.InDelta(t, 1.0, ProximityScore(Distance(origin, origin), 5, 15), 1e-9)
	assert.InDelta(t, 0.5, ProximityScore(Distance(origin, at(10)), 5, 15), 1e-6)
	assert.InDelta(t, 0.0, ProximityScore(Distance(origin, at(15)), 5, 15), 1e-6)
}

func TestNearest(t *testing.T) {
	places := []place{
		{name: "unknown"},
		{name: "far", p: &Point{Lat: 10, Lon: 10}},
		{name: "near", p: &Point{Lat: 1, Lon: 1}},
	}
	assert.Equal(t, 2, Nearest(Point{}, places))
	assert.Equal(t, -1, Nearest(Point{}, []place{{name: "unknown"}}))
	assert.Equal(t, -1, Nearest[place](Point{}, nil))
}

func TestPointValid(t *testing.T) {
	assert.True(t, Point{Lat: 45, Lon: 19}.Valid())
	assert.False(t, Point{Lat: 91, Lon: 0}.Valid())
	assert.False(t, Point{Lat: 0, Lon: -181}.Valid())
}
