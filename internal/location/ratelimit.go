package location

import (
	"context"
	"fmt"
	"github.com/ssherwood/locationservices/internal/geo"
	"golang.org/x/time/rate"
)

type rateLimited struct {
	next    Service
	limiter *rate.Limiter
}

// RateLimit makes every call of svc wait for a token from limiter. If ctx ends
// or its deadline cannot be met while waiting the call fails with ErrRateLimited
// and never reaches svc.
func RateLimit(svc Service, limiter *rate.Limiter) Service {
	return &rateLimited{next: svc, limiter: limiter}
}

func (s *rateLimited) wait(ctx context.Context) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrRateLimited, err)
	}
	return nil
}

func (s *rateLimited) Geocode(ctx context.Context, address geo.Address) (geo.LatLng, error) {
	if err := s.wait(ctx); err != nil {
		return geo.LatLng{}, err
	}
	return s.next.Geocode(ctx, address)
}

func (s *rateLimited) ReverseGeocode(ctx context.Context, point geo.LatLng) (geo.Address, error) {
	if err := s.wait(ctx); err != nil {
		return geo.Address{}, err
	}
	return s.next.ReverseGeocode(ctx, point)
}

func (s *rateLimited) GetDistance(ctx context.Context, from, to geo.LatLng) (int, error) {
	if err := s.wait(ctx); err != nil {
		return 0, err
	}
	return s.next.GetDistance(ctx, from, to)
}

func (s *rateLimited) GetRoute(ctx context.Context, from, to geo.LatLng) ([]geo.LatLng, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	return s.next.GetRoute(ctx, from, to)
}
