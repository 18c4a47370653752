package geo

import (
	"github.com/shopspring/decimal"
	"math"
)

const earthRadiusMeters = 6371000.0

// Haversine returns the great-circle distance between a and b in meters.
func Haversine(a, b LatLng) float64 {
	lat1, lon1 := a.Float64()
	lat2, lon2 := b.Float64()

	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	// rounding pushes h past 1 near the antipode
	h = math.Min(1, math.Max(0, h))

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusMeters * c
}

// Interpolate returns a + (b - a) * t. t = 0 gives a, t = 1 gives b.
func Interpolate(a, b LatLng, t decimal.Decimal) LatLng {
	return a.Add(b.Sub(a).Mul(t))
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
