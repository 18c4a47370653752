package location

import (
	"context"
	"encoding/json"
	"errors"
	"github.com/ssherwood/locationservices/internal/config"
	"github.com/ssherwood/locationservices/internal/geo"
	"log/slog"
	"time"
)

// ErrCacheMiss is returned by Cache.Get when key is not cached.
var ErrCacheMiss = errors.New("cache miss")

// Cache is a byte oriented key value store with expiry, e.g. Redis.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

const (
	geocodeKeyPrefix = "geocode:"
	reverseKeyPrefix = "reverse:"
)

type cached struct {
	next  Service
	cache Cache
	ttl   time.Duration
}

// WithCache returns svc with read-through caching of Geocode and ReverseGeocode
// results. Distance and route calls pass straight through. Cache failures are
// logged and never fail a call.
func WithCache(svc Service, cache Cache, ttl time.Duration) Service {
	return &cached{next: svc, cache: cache, ttl: ttl}
}

func (s *cached) Geocode(ctx context.Context, address geo.Address) (geo.LatLng, error) {
	key := geocodeKeyPrefix + address.String()

	var point geo.LatLng
	if s.load(ctx, key, &point) {
		return point, nil
	}

	point, err := s.next.Geocode(ctx, address)
	if err != nil {
		return geo.LatLng{}, err
	}
	s.store(ctx, key, point)
	return point, nil
}

func (s *cached) ReverseGeocode(ctx context.Context, point geo.LatLng) (geo.Address, error) {
	key := reverseKeyPrefix + point.String()

	var address geo.Address
	if s.load(ctx, key, &address) {
		return address, nil
	}

	address, err := s.next.ReverseGeocode(ctx, point)
	if err != nil {
		return geo.Address{}, err
	}
	s.store(ctx, key, address)
	return address, nil
}

func (s *cached) GetDistance(ctx context.Context, from, to geo.LatLng) (int, error) {
	return s.next.GetDistance(ctx, from, to)
}

func (s *cached) GetRoute(ctx context.Context, from, to geo.LatLng) ([]geo.LatLng, error) {
	return s.next.GetRoute(ctx, from, to)
}

func (s *cached) load(ctx context.Context, key string, v any) bool {
	data, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			slog.DebugContext(ctx, "Cache read failed", slog.String("key", key), config.ErrAttr(err))
		}
		return false
	}
	if err = json.Unmarshal(data, v); err != nil {
		slog.DebugContext(ctx, "Discarding undecodable cache entry", slog.String("key", key), config.ErrAttr(err))
		return false
	}
	return true
}

func (s *cached) store(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		slog.DebugContext(ctx, "Unable to encode cache entry", slog.String("key", key), config.ErrAttr(err))
		return
	}
	if err = s.cache.Set(ctx, key, data, s.ttl); err != nil {
		slog.DebugContext(ctx, "Cache write failed", slog.String("key", key), config.ErrAttr(err))
	}
}
