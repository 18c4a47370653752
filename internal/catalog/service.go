package catalog

import (
	"context"
	"errors"
	"fmt"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/ssherwood/locationservices/internal/geo"
	"github.com/ssherwood/locationservices/internal/location"
	"math"
)

// Options tune the geometric answers of Service.
type Options struct {
	// RouteStep is the spacing between route vertices in meters.
	RouteStep float64
	// MaxRoutePoints caps the vertices of a route, endpoints included.
	MaxRoutePoints int
	// MaxReverseDistance is the farthest, in meters, a catalogued address may
	// be from the queried point to answer a reverse geocode. Zero means no limit.
	MaxReverseDistance float64
}

func DefaultOptions() Options {
	return Options{RouteStep: 1000, MaxRoutePoints: 256, MaxReverseDistance: 5000}
}

// Service implements location.Service on top of a Store.
type Service struct {
	store Store
	opts  Options
}

var _ location.Service = (*Service)(nil)

func NewService(store Store, opts Options) *Service {
	if opts.RouteStep <= 0 {
		opts.RouteStep = DefaultOptions().RouteStep
	}
	if opts.MaxRoutePoints < 2 {
		opts.MaxRoutePoints = 2
	}
	return &Service{store: store, opts: opts}
}

func (s *Service) Geocode(ctx context.Context, address geo.Address) (geo.LatLng, error) {
	if address.IsZero() {
		return geo.LatLng{}, fmt.Errorf("%w: address is empty", location.ErrInvalidArgument)
	}

	entry, err := s.store.GetByKey(ctx, address.String())
	if err != nil {
		return geo.LatLng{}, storeError(err)
	}
	return entry.Point, nil
}

func (s *Service) ReverseGeocode(ctx context.Context, point geo.LatLng) (geo.Address, error) {
	if err := validPoint("point", point); err != nil {
		return geo.Address{}, err
	}

	entry, err := s.store.Nearest(ctx, point)
	if err != nil {
		return geo.Address{}, storeError(err)
	}

	if s.opts.MaxReverseDistance > 0 {
		if d := geo.Haversine(point, entry.Point); d > s.opts.MaxReverseDistance {
			return geo.Address{}, fmt.Errorf("%w: nearest address is %.0f m away", location.ErrNotFound, d)
		}
	}
	return entry.Address, nil
}

// GetDistance returns the great-circle distance rounded to the nearest meter.
func (s *Service) GetDistance(_ context.Context, from, to geo.LatLng) (int, error) {
	if err := validPair(from, to); err != nil {
		return 0, err
	}
	return int(math.Round(geo.Haversine(from, to))), nil
}

// GetRoute returns the straight line from from to to with a vertex every
// RouteStep meters. The first and last vertices are exactly from and to.
func (s *Service) GetRoute(_ context.Context, from, to geo.LatLng) ([]geo.LatLng, error) {
	if err := validPair(from, to); err != nil {
		return nil, err
	}

	segments := int(math.Ceil(geo.Haversine(from, to) / s.opts.RouteStep))
	if segments < 1 {
		segments = 1
	}
	if segments > s.opts.MaxRoutePoints-1 {
		segments = s.opts.MaxRoutePoints - 1
	}

	n := decimal.NewFromInt(int64(segments))
	points := make([]geo.LatLng, 0, segments+1)
	points = append(points, from)
	for i := 1; i < segments; i++ {
		points = append(points, geo.Interpolate(from, to, decimal.NewFromInt(int64(i)).Div(n)))
	}
	points = append(points, to)

	return points, nil
}

// Register adds address at point to the catalog, or moves an address already
// catalogued under the same lookup key.
func (s *Service) Register(ctx context.Context, address geo.Address, point geo.LatLng) (*Entry, error) {
	if address.IsZero() {
		return nil, fmt.Errorf("%w: address is empty", location.ErrInvalidArgument)
	}
	if err := validPoint("point", point); err != nil {
		return nil, err
	}

	entry, err := s.store.Create(ctx, &Entry{Address: address, Point: point})
	if err != nil {
		return nil, storeError(err)
	}
	return entry, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Entry, error) {
	entry, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err)
	}
	return entry, nil
}

func validPair(from, to geo.LatLng) error {
	if err := validPoint("from", from); err != nil {
		return err
	}
	return validPoint("to", to)
}

func validPoint(name string, p geo.LatLng) error {
	if !p.Valid() {
		return fmt.Errorf("%w: %s %s is not a valid coordinate", location.ErrInvalidArgument, name, p)
	}
	return nil
}

func storeError(err error) error {
	if errors.Is(err, location.ErrNotFound) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: catalog: %v", location.ErrProviderUnavailable, err)
}
