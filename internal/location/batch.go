package location

import (
	"context"
	"fmt"
	"github.com/ssherwood/locationservices/internal/geo"
	"golang.org/x/sync/errgroup"
)

// BatchGeocode geocodes every address with at most limit calls in flight
// (limit <= 0 means unbounded). Results keep the order of addresses. The first
// failure cancels the remaining calls and is returned with its index.
func BatchGeocode(ctx context.Context, svc Service, addresses []geo.Address, limit int) ([]geo.LatLng, error) {
	points := make([]geo.LatLng, len(addresses))
	err := fanOut(ctx, len(addresses), limit, func(ctx context.Context, i int) error {
		point, err := svc.Geocode(ctx, addresses[i])
		if err != nil {
			return fmt.Errorf("geocode address %d: %w", i, err)
		}
		points[i] = point
		return nil
	})
	if err != nil {
		return nil, err
	}
	return points, nil
}

// BatchReverseGeocode is the reverse geocoding counterpart of BatchGeocode.
func BatchReverseGeocode(ctx context.Context, svc Service, points []geo.LatLng, limit int) ([]geo.Address, error) {
	addresses := make([]geo.Address, len(points))
	err := fanOut(ctx, len(points), limit, func(ctx context.Context, i int) error {
		address, err := svc.ReverseGeocode(ctx, points[i])
		if err != nil {
			return fmt.Errorf("reverse geocode point %d: %w", i, err)
		}
		addresses[i] = address
		return nil
	})
	if err != nil {
		return nil, err
	}
	return addresses, nil
}

func fanOut(ctx context.Context, n, limit int, fn func(ctx context.Context, i int) error) error {
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return fn(ctx, i)
		})
	}
	return g.Wait()
}
