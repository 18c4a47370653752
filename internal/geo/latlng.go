// Package geo holds the location value types shared by every provider:
// decimal latitude/longitude pairs, postal addresses and the geofence
// containment test.
package geo

import (
	"encoding/json"
	"errors"
	"fmt"
	"github.com/shopspring/decimal"
)

var (
	ErrMissingLat = errors.New("lat is required")
	ErrMissingLng = errors.New("lng is required")
)

// StringPrecision is the number of fractional digits kept by LatLng.String.
const StringPrecision = 15

var (
	maxLat = decimal.NewFromInt(90)
	maxLng = decimal.NewFromInt(180)
)

// LatLng is an immutable latitude/longitude pair in decimal degrees.
//
// Arithmetic is exact decimal arithmetic, so small coordinate deltas do not drift
// the way binary floating point does. The zero value is the point [0, 0].
// Compare values with Equal, not ==.
type LatLng struct {
	lat decimal.Decimal
	lng decimal.Decimal
}

func NewLatLng(lat, lng decimal.Decimal) LatLng {
	return LatLng{lat: lat, lng: lng}
}

// LatLngFromFloat converts using the shortest decimal representation of each float.
func LatLngFromFloat(lat, lng float64) LatLng {
	return LatLng{lat: decimal.NewFromFloat(lat), lng: decimal.NewFromFloat(lng)}
}

// ParseLatLng parses two decimal strings such as "44.4268" and "26.1025".
func ParseLatLng(lat, lng string) (LatLng, error) {
	dLat, err := decimal.NewFromString(lat)
	if err != nil {
		return LatLng{}, fmt.Errorf("parse latitude %q: %w", lat, err)
	}
	dLng, err := decimal.NewFromString(lng)
	if err != nil {
		return LatLng{}, fmt.Errorf("parse longitude %q: %w", lng, err)
	}
	return LatLng{lat: dLat, lng: dLng}, nil
}

func (p LatLng) Lat() decimal.Decimal { return p.lat }
func (p LatLng) Lng() decimal.Decimal { return p.lng }

// Add returns p + q, component-wise.
func (p LatLng) Add(q LatLng) LatLng {
	return LatLng{lat: p.lat.Add(q.lat), lng: p.lng.Add(q.lng)}
}

// Sub returns p - q, component-wise.
func (p LatLng) Sub(q LatLng) LatLng {
	return LatLng{lat: p.lat.Sub(q.lat), lng: p.lng.Sub(q.lng)}
}

// Mul scales both components by k.
func (p LatLng) Mul(k decimal.Decimal) LatLng {
	return LatLng{lat: p.lat.Mul(k), lng: p.lng.Mul(k)}
}

// Equal compares numerically, so [1.0, 2] equals [1, 2.00].
func (p LatLng) Equal(q LatLng) bool {
	return p.lat.Equal(q.lat) && p.lng.Equal(q.lng)
}

// Valid reports whether p is a WGS84 coordinate. Results of Sub or Mul are
// vectors and are not expected to be valid.
func (p LatLng) Valid() bool {
	return p.lat.Abs().LessThanOrEqual(maxLat) && p.lng.Abs().LessThanOrEqual(maxLng)
}

// Float64 returns the components as floats for trigonometry.
func (p LatLng) Float64() (lat, lng float64) {
	return p.lat.InexactFloat64(), p.lng.InexactFloat64()
}

// String renders "[lat, lng]" with at most 15 fractional digits and no trailing zeros.
func (p LatLng) String() string {
	return "[" + formatComponent(p.lat) + ", " + formatComponent(p.lng) + "]"
}

func formatComponent(d decimal.Decimal) string {
	return d.Round(StringPrecision).String()
}

type latLngJSON struct {
	Lat decimal.NullDecimal `json:"lat"`
	Lng decimal.NullDecimal `json:"lng"`
}

// MarshalJSON writes both components as JSON numbers.
func (p LatLng) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Lat json.Number `json:"lat"`
		Lng json.Number `json:"lng"`
	}{
		Lat: json.Number(p.lat.String()),
		Lng: json.Number(p.lng.String()),
	})
}

// UnmarshalJSON accepts the components as numbers or numeric strings. Both
// are required; a missing or null component is an error, never zero.
func (p *LatLng) UnmarshalJSON(data []byte) error {
	var raw latLngJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if !raw.Lat.Valid {
		return ErrMissingLat
	}
	if !raw.Lng.Valid {
		return ErrMissingLng
	}
	p.lat, p.lng = raw.Lat.Decimal, raw.Lng.Decimal
	return nil
}
