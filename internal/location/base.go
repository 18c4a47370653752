package location

import (
	"errors"
	"fmt"
	"github.com/ssherwood/locationservices/internal/geo"
	"log/slog"
	"net/url"
	"strings"
)

// URL template placeholders understood by Base.
const (
	PlaceholderKey     = "{key}"
	PlaceholderCccode  = "{cccode}"
	PlaceholderQuery   = "{query}"
	PlaceholderLat     = "{lat}"
	PlaceholderLng     = "{lng}"
	PlaceholderFromLat = "{from_lat}"
	PlaceholderFromLng = "{from_lng}"
	PlaceholderToLat   = "{to_lat}"
	PlaceholderToLng   = "{to_lng}"
)

// Base carries the validated configuration of a provider adapter and the
// operations every adapter shares. Adapters embed it and build it with NewBase.
type Base struct {
	args ServiceArgs
}

// NewBase validates args. A missing API key or URL template fails with
// ErrInvalidConfiguration, one joined error per missing field.
func NewBase(args ServiceArgs) (Base, error) {
	var errs []error
	required := []struct {
		name  string
		value string
	}{
		{"api key", args.APIKey},
		{"geocode url", args.GeocodeURL},
		{"reverse geocode url", args.ReverseGeocodeURL},
		{"route url", args.RouteURL},
	}
	for _, field := range required {
		if strings.TrimSpace(field.value) == "" {
			errs = append(errs, fmt.Errorf("%w: %s is required", ErrInvalidConfiguration, field.name))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return Base{}, err
	}

	slog.Debug("Location provider configured", slog.Any("args", args))
	return Base{args: args}, nil
}

func (b Base) Args() ServiceArgs { return b.args }

// IsInside reports whether point is inside fence, see location.IsInside.
func (b Base) IsInside(point geo.LatLng, fence []geo.LatLng) bool {
	return IsInside(point, fence)
}

// GeocodeURL expands the geocode template for address, using Address.String as {query}.
func (b Base) GeocodeURL(address geo.Address) string {
	return b.expand(b.args.GeocodeURL,
		PlaceholderQuery, address.String(),
	)
}

// ReverseGeocodeURL expands the reverse geocode template for point.
func (b Base) ReverseGeocodeURL(point geo.LatLng) string {
	return b.expand(b.args.ReverseGeocodeURL,
		PlaceholderLat, point.Lat().String(),
		PlaceholderLng, point.Lng().String(),
	)
}

// RouteURL expands the route template for the from and to points.
func (b Base) RouteURL(from, to geo.LatLng) string {
	return b.expand(b.args.RouteURL,
		PlaceholderFromLat, from.Lat().String(),
		PlaceholderFromLng, from.Lng().String(),
		PlaceholderToLat, to.Lat().String(),
		PlaceholderToLng, to.Lng().String(),
	)
}

func (b Base) expand(template string, pairs ...string) string {
	oldnew := []string{
		PlaceholderKey, url.QueryEscape(b.args.APIKey),
		PlaceholderCccode, url.QueryEscape(b.args.Cccode),
	}
	for i := 0; i+1 < len(pairs); i += 2 {
		oldnew = append(oldnew, pairs[i], url.QueryEscape(pairs[i+1]))
	}
	return strings.NewReplacer(oldnew...).Replace(template)
}

// LogValue keeps the API key out of logs.
func (a ServiceArgs) LogValue() slog.Value {
	key := ""
	if a.APIKey != "" {
		key = "*****"
	}
	return slog.GroupValue(
		slog.String("api_key", key),
		slog.String("cccode", a.Cccode),
		slog.String("geocode_url", a.GeocodeURL),
		slog.String("reverse_geocode_url", a.ReverseGeocodeURL),
		slog.String("route_url", a.RouteURL),
	)
}
