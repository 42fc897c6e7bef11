// Package geomath provides the distance and normalization primitives used
// by the scoring and clustering pipeline.
package geomath

import (
	"math"
)

// EarthRadiusKm is the mean Earth radius used by the haversine formula.
const EarthRadiusKm = 6371.0

// Point is a WGS84 coordinate pair.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Valid reports whether the point holds finite coordinates inside the
// legal latitude/longitude ranges. Invalid points come from real-world
// catalog data and are filtered, never scored.
func (p Point) Valid() bool {
	if math.IsNaN(p.Lat) || math.IsInf(p.Lat, 0) {
		return false
	}
	if math.IsNaN(p.Lng) || math.IsInf(p.Lng, 0) {
		return false
	}
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

// DistanceKm returns the great-circle distance between a and b in
// kilometers using the haversine formula. Symmetric, and exactly zero
// when a == b.
func DistanceKm(a, b Point) float64 {
	if a == b {
		return 0
	}

	lat1 := toRadians(a.Lat)
	lon1 := toRadians(a.Lng)
	lat2 := toRadians(b.Lat)
	lon2 := toRadians(b.Lng)

	dlat := lat2 - lat1
	dlon := lon2 - lon1

	h := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dlon/2)*math.Sin(dlon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EarthRadiusKm * c
}

// Normalize maps value into [0,1] relative to [min,max], clamping out-of-range
// inputs. A degenerate range (min == max) returns the neutral midpoint 0.5 so
// single-candidate and all-identical sets never divide by zero.
func Normalize(value, minVal, maxVal float64) float64 {
	if minVal == maxVal {
		return 0.5
	}
	n := (value - minVal) / (maxVal - minVal)
	if n < 0 {
		return 0
	}
	if n > 1 {
		return 1
	}
	return n
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
