package location_test

import (
	"context"
	"fmt"
	"github.com/ssherwood/locationservices/internal/geo"
	"github.com/ssherwood/locationservices/internal/location"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"strconv"
	"sync/atomic"
	"testing"
	"time"
)

func TestBatchGeocode_KeepsOrder(t *testing.T) {
	svc := &mockService{
		geocodeFn: func(ctx context.Context, address geo.Address) (geo.LatLng, error) {
			n, _ := strconv.Atoi(address.StreetNo)
			// later addresses finish first
			time.Sleep(time.Duration(10-n) * time.Millisecond)
			return geo.LatLngFromFloat(float64(n), float64(-n)), nil
		},
	}

	addresses := make([]geo.Address, 10)
	for i := range addresses {
		addresses[i] = geo.Address{StreetName: "Main", StreetNo: strconv.Itoa(i)}
	}

	points, err := location.BatchGeocode(context.Background(), svc, addresses, 4)

	require.NoError(t, err)
	require.Len(t, points, 10)
	for i, point := range points {
		assert.True(t, point.Equal(geo.LatLngFromFloat(float64(i), float64(-i))), "index %d: %s", i, point)
	}
}

func TestBatchGeocode_RespectsLimit(t *testing.T) {
	var inFlight, peak int32
	svc := &mockService{
		geocodeFn: func(ctx context.Context, address geo.Address) (geo.LatLng, error) {
			n := atomic.AddInt32(&inFlight, 1)
			for {
				p := atomic.LoadInt32(&peak)
				if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			atomic.AddInt32(&inFlight, -1)
			return geo.LatLng{}, nil
		},
	}

	_, err := location.BatchGeocode(context.Background(), svc, make([]geo.Address, 20), 3)

	require.NoError(t, err)
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(3))
}

func TestBatchGeocode_FirstErrorWins(t *testing.T) {
	svc := &mockService{
		geocodeFn: func(ctx context.Context, address geo.Address) (geo.LatLng, error) {
			if address.City == "nowhere" {
				return geo.LatLng{}, fmt.Errorf("%w: %s", location.ErrNotFound, address)
			}
			return geo.LatLngFromFloat(1, 1), nil
		},
	}

	points, err := location.BatchGeocode(context.Background(), svc, []geo.Address{
		{City: "Bucharest"},
		{City: "nowhere"},
	}, 1)

	assert.Nil(t, points)
	assert.ErrorIs(t, err, location.ErrNotFound)
	assert.Contains(t, err.Error(), "geocode address 1")
}

func TestBatchGeocode_Empty(t *testing.T) {
	points, err := location.BatchGeocode(context.Background(), &mockService{}, nil, 2)

	require.NoError(t, err)
	assert.Empty(t, points)
}

func TestBatchReverseGeocode(t *testing.T) {
	svc := &mockService{
		reverseGeocodeFn: func(ctx context.Context, point geo.LatLng) (geo.Address, error) {
			return geo.Address{City: point.Lat().String()}, nil
		},
	}

	addresses, err := location.BatchReverseGeocode(context.Background(), svc, []geo.LatLng{
		geo.LatLngFromFloat(1.5, 0),
		geo.LatLngFromFloat(2.5, 0),
	}, 0)

	require.NoError(t, err)
	assert.Equal(t, []geo.Address{{City: "1.5"}, {City: "2.5"}}, addresses)
}

func TestBatchReverseGeocode_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc := &mockService{}
	_, err := location.BatchReverseGeocode(ctx, svc, []geo.LatLng{{}, {}}, 1)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, svc.count("reverse"))
}
