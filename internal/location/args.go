package location

// ServiceArgs configures a provider adapter.
type ServiceArgs struct {
	// APIKey authorizes requests against the provider.
	APIKey string `json:"api_key"`

	// Cccode is the country and city code, e.g. "ro-bucharest" for Bucharest, Romania.
	Cccode string `json:"cccode"`

	// GeocodeURL is the URL template of the geocoding operation.
	GeocodeURL string `json:"geocode_url"`

	// ReverseGeocodeURL is the URL template of the reverse geocoding operation.
	ReverseGeocodeURL string `json:"reverse_geocode_url"`

	// RouteURL is the URL template of the routing operation.
	RouteURL string `json:"route_url"`
}
