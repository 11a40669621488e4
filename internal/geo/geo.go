// Package geo holds great-circle helpers used by suggestion scoring.
package geo

import "math"

// EarthRadiusKm is the mean Earth radius used by Distance
const EarthRadiusKm = 6371.0

// Point is a WGS84 coordinate in degrees
type Point struct {
	Lat float64
	Lon float64
}

// Valid reports whether the point is within latitude and longitude bounds
func (p Point) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180 &&
		!math.IsNaN(p.Lat) && !math.IsNaN(p.Lon)
}

// Distance returns the haversine distance between a and b in kilometres
func Distance(a, b Point) float64 {
	lat1, lat2 := radians(a.Lat), radians(b.Lat)
	dLat := lat2 - lat1
	dLon := radians(b.Lon - a.Lon)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * EarthRadiusKm * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// ProximityScore is 1 up to fullKm, falls linearly to 0 at zeroKm, and is 0 beyond
func ProximityScore(distanceKm, fullKm, zeroKm float64) float64 {
	switch {
	case distanceKm <= fullKm:
		return 1
	case distanceKm >= zeroKm:
		return 0
	default:
		return (zeroKm - distanceKm) / (zeroKm - fullKm)
	}
}

// Locatable is anything with optional coordinates
type Locatable interface {
	Coordinates() (Point, bool)
}

// Nearest returns the index of the item closest to p among those with
// coordinates, or -1 when none has any. Ties keep the earlier item.
func Nearest[T Locatable](p Point, items []T) int {
	best, bestDist := -1, math.Inf(1)
	for i, item := range items {
		q, ok := item.Coordinates()
		if !ok {
			continue
		}
		if d := Distance(p, q); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
