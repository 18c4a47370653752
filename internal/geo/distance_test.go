package geo_test

import (
	"github.com/shopspring/decimal"
	"github.com/ssherwood/locationservices/internal/geo"
	"github.com/stretchr/testify/assert"
	"math"
	"testing"
)

func TestHaversine(t *testing.T) {
	bucharest := mustParse(t, "44.4268", "26.1025")
	cluj := mustParse(t, "46.7712", "23.6236")

	assert.InDelta(t, 0, geo.Haversine(bucharest, bucharest), 1e-9)
	// ~324 km as the crow flies
	assert.InDelta(t, 324_000, geo.Haversine(bucharest, cluj), 3_000)
	assert.InDelta(t, geo.Haversine(bucharest, cluj), geo.Haversine(cluj, bucharest), 1e-6)

	// one degree of latitude
	assert.InDelta(t, 111_195, geo.Haversine(mustParse(t, "0", "0"), mustParse(t, "1", "0")), 1)
}

func TestHaversine_Antipodal(t *testing.T) {
	halfCircumference := math.Pi * 6371000.0

	for lat := -90.0; lat <= 90; lat += 1.5 {
		for lng := -180.0; lng <= 180; lng += 7.5 {
			a := geo.LatLngFromFloat(lat, lng)
			b := geo.LatLngFromFloat(-lat, lng-180)

			d := geo.Haversine(a, b)

			if !assert.Falsef(t, math.IsNaN(d), "%s to %s", a, b) {
				return
			}
			assert.InDeltaf(t, halfCircumference, d, 1, "%s to %s", a, b)
		}
	}

	assert.InDelta(t, 20_015_087, geo.Haversine(mustParse(t, "-88.5", "0"), mustParse(t, "88.5", "-180")), 1)
}

func TestInterpolate(t *testing.T) {
	a := mustParse(t, "10", "20")
	b := mustParse(t, "20", "40")

	assert.True(t, geo.Interpolate(a, b, decimal.Zero).Equal(a))
	assert.True(t, geo.Interpolate(a, b, decimal.NewFromInt(1)).Equal(b))
	assert.True(t, geo.Interpolate(a, b, decimal.RequireFromString("0.25")).Equal(mustParse(t, "12.5", "25")))
}
