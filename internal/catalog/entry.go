// Package catalog is the built-in location provider. It answers geocoding
// queries from a table of known addresses and their coordinates, and computes
// distances and routes geometrically.
package catalog

import (
	"github.com/google/uuid"
	"github.com/ssherwood/locationservices/internal/geo"
	"time"
)

// Entry is a catalogued address with its coordinates. LookupKey is the
// Address.String form and is unique across the catalog.
type Entry struct {
	ID        uuid.UUID   `json:"id"`
	Address   geo.Address `json:"address"`
	Point     geo.LatLng  `json:"point"`
	CreatedAt time.Time   `json:"created_at"`
}

func (e *Entry) LookupKey() string {
	return e.Address.String()
}
