// Package location defines the contract every location data provider
// implements (geocoding, reverse geocoding, distance and routing), the
// configuration adapters are built from, and provider independent
// plumbing: decorators, batch helpers and the HTTP API.
package location

import (
	"context"
	"github.com/ssherwood/locationservices/internal/geo"
)

// Service is implemented by every location provider.
//
// Implementations must be safe for concurrent use; callers wanting
// non-blocking behaviour run a call in a goroutine or use BatchGeocode and
// BatchReverseGeocode. A failed call returns one of the error kinds in this
// package (wrapped) and never a zero LatLng or Address in place of an error.
type Service interface {
	// Geocode converts a postal address into coordinates.
	Geocode(ctx context.Context, address geo.Address) (geo.LatLng, error)

	// ReverseGeocode converts coordinates into a postal address.
	ReverseGeocode(ctx context.Context, point geo.LatLng) (geo.Address, error)

	// GetDistance returns the distance in meters between two points.
	GetDistance(ctx context.Context, from, to geo.LatLng) (int, error)

	// GetRoute returns the ordered points of a route between two points.
	GetRoute(ctx context.Context, from, to geo.LatLng) ([]geo.LatLng, error)
}

// IsInside reports whether point is inside fence. It is shared by all providers
// so every provider answers geofence queries identically; see geo.IsInside for the
// boundary and tie-break rules.
func IsInside(point geo.LatLng, fence []geo.LatLng) bool {
	return geo.IsInside(point, fence)
}
