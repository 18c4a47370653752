package location_test

import (
	"bytes"
	"errors"
	"github.com/ssherwood/locationservices/internal/geo"
	"github.com/ssherwood/locationservices/internal/location"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"log/slog"
	"testing"
)

func validArgs() location.ServiceArgs {
	return location.ServiceArgs{
		APIKey:            "s3cr3t key",
		Cccode:            "ro-bucharest",
		GeocodeURL:        "https://maps.example.com/geocode?q={query}&region={cccode}&key={key}",
		ReverseGeocodeURL: "https://maps.example.com/reverse?lat={lat}&lng={lng}&key={key}",
		RouteURL:          "https://maps.example.com/route?from={from_lat},{from_lng}&to={to_lat},{to_lng}&key={key}",
	}
}

// stubProvider is the smallest adapter shape: a struct embedding Base.
type stubProvider struct {
	location.Base
}

func newStubProvider(args location.ServiceArgs) (*stubProvider, error) {
	base, err := location.NewBase(args)
	if err != nil {
		return nil, err
	}
	return &stubProvider{Base: base}, nil
}

func TestNewBase_Valid(t *testing.T) {
	base, err := location.NewBase(validArgs())

	require.NoError(t, err)
	assert.Equal(t, validArgs(), base.Args())
}

func TestNewBase_MissingFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*location.ServiceArgs)
		field  string
	}{
		{"api key", func(a *location.ServiceArgs) { a.APIKey = "" }, "api key is required"},
		{"blank api key", func(a *location.ServiceArgs) { a.APIKey = "   " }, "api key is required"},
		{"geocode url", func(a *location.ServiceArgs) { a.GeocodeURL = "" }, "geocode url is required"},
		{"reverse geocode url", func(a *location.ServiceArgs) { a.ReverseGeocodeURL = "" }, "reverse geocode url is required"},
		{"route url", func(a *location.ServiceArgs) { a.RouteURL = "" }, "route url is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := validArgs()
			tt.mutate(&args)

			_, err := location.NewBase(args)

			require.Error(t, err)
			assert.ErrorIs(t, err, location.ErrInvalidConfiguration)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestNewBase_ReportsEveryMissingField(t *testing.T) {
	_, err := location.NewBase(location.ServiceArgs{})

	require.ErrorIs(t, err, location.ErrInvalidConfiguration)
	for _, field := range []string{"api key", "geocode url", "reverse geocode url", "route url"} {
		assert.Contains(t, err.Error(), field)
	}
}

func TestProviderConstruction_EmptyAPIKeyFailsBeforeAnyCall(t *testing.T) {
	args := validArgs()
	args.APIKey = ""

	provider, err := newStubProvider(args)

	assert.Nil(t, provider)
	assert.True(t, errors.Is(err, location.ErrInvalidConfiguration))
}

func TestBase_IsInsideDelegates(t *testing.T) {
	provider, err := newStubProvider(validArgs())
	require.NoError(t, err)

	fence := []geo.LatLng{
		geo.LatLngFromFloat(0, 0),
		geo.LatLngFromFloat(0, 10),
		geo.LatLngFromFloat(10, 10),
		geo.LatLngFromFloat(10, 0),
	}

	assert.True(t, provider.IsInside(geo.LatLngFromFloat(5, 5), fence))
	assert.False(t, provider.IsInside(geo.LatLngFromFloat(20, 20), fence))
}

func TestBase_URLs(t *testing.T) {
	base, err := location.NewBase(validArgs())
	require.NoError(t, err)

	address := geo.Address{StreetName: "Main St", StreetNo: "12", City: "Springfield"}
	assert.Equal(t,
		"https://maps.example.com/geocode?q=main+st%2C12%2Cspringfield&region=ro-bucharest&key=s3cr3t+key",
		base.GeocodeURL(address))

	point, err := geo.ParseLatLng("44.4268", "-26.1025")
	require.NoError(t, err)
	assert.Equal(t,
		"https://maps.example.com/reverse?lat=44.4268&lng=-26.1025&key=s3cr3t+key",
		base.ReverseGeocodeURL(point))

	to, err := geo.ParseLatLng("46.7712", "23.6236")
	require.NoError(t, err)
	assert.Equal(t,
		"https://maps.example.com/route?from=44.4268,-26.1025&to=46.7712,23.6236&key=s3cr3t+key",
		base.RouteURL(point, to))
}

func TestServiceArgs_LogValueMasksKey(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	logger.Info("configured", slog.Any("args", validArgs()))

	assert.NotContains(t, buf.String(), "s3cr3t")
	assert.Contains(t, buf.String(), "args.api_key=*****")
	assert.Contains(t, buf.String(), "args.cccode=ro-bucharest")
}
