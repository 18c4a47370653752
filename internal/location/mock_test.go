package location_test

import (
	"context"
	"errors"
	"github.com/ssherwood/locationservices/internal/geo"
	"github.com/ssherwood/locationservices/internal/location"
	"sync"
	"time"
)

// --- Mock Service ---

type mockService struct {
	geocodeFn        func(ctx context.Context, address geo.Address) (geo.LatLng, error)
	reverseGeocodeFn func(ctx context.Context, point geo.LatLng) (geo.Address, error)
	getDistanceFn    func(ctx context.Context, from, to geo.LatLng) (int, error)
	getRouteFn       func(ctx context.Context, from, to geo.LatLng) ([]geo.LatLng, error)

	mu    sync.Mutex
	calls map[string]int
}

func (m *mockService) record(op string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.calls == nil {
		m.calls = map[string]int{}
	}
	m.calls[op]++
}

func (m *mockService) count(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[op]
}

func (m *mockService) Geocode(ctx context.Context, address geo.Address) (geo.LatLng, error) {
	m.record("geocode")
	if m.geocodeFn != nil {
		return m.geocodeFn(ctx, address)
	}
	return geo.LatLng{}, location.ErrNotFound
}

func (m *mockService) ReverseGeocode(ctx context.Context, point geo.LatLng) (geo.Address, error) {
	m.record("reverse")
	if m.reverseGeocodeFn != nil {
		return m.reverseGeocodeFn(ctx, point)
	}
	return geo.Address{}, location.ErrNotFound
}

func (m *mockService) GetDistance(ctx context.Context, from, to geo.LatLng) (int, error) {
	m.record("distance")
	if m.getDistanceFn != nil {
		return m.getDistanceFn(ctx, from, to)
	}
	return 0, nil
}

func (m *mockService) GetRoute(ctx context.Context, from, to geo.LatLng) ([]geo.LatLng, error) {
	m.record("route")
	if m.getRouteFn != nil {
		return m.getRouteFn(ctx, from, to)
	}
	return []geo.LatLng{from, to}, nil
}

// --- Mock Cache ---

type mockCache struct {
	mu     sync.Mutex
	data   map[string][]byte
	ttls   map[string]time.Duration
	getErr error
	setErr error
}

func newMockCache() *mockCache {
	return &mockCache{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (c *mockCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, c.getErr
	}
	value, ok := c.data[key]
	if !ok {
		return nil, location.ErrCacheMiss
	}
	return value, nil
}

func (c *mockCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.setErr != nil {
		return c.setErr
	}
	c.data[key] = value
	c.ttls[key] = ttl
	return nil
}

var errBoom = errors.New("boom")
