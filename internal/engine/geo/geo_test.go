package geo

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripflow/tripflow-api/internal/types"
)

func ptr(f float64) *float64 { return &f }

func TestNewPoint(t *testing.T) {
	tests := []struct {
		name    string
		lat     float64
		lon     float64
		wantErr bool
	}{
		{"valid", 48.8584, 2.2945, false},
		{"valid extremes", -90, 180, false},
		{"latitude too high", 90.01, 0, true},
		{"latitude too low", -91, 0, true},
		{"longitude too high", 0, 180.5, true},
		{"longitude too low", 0, -181, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewPoint(tt.lat, tt.lon)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, types.ErrValidation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.lat, p.Lat)
			assert.Equal(t, tt.lon, p.Lon)
		})
	}
}

func TestDistanceKmSymmetry(t *testing.T) {
	pairs := [][2]Point{
		{{48.8566, 2.3522}, {51.5074, -0.1278}},  // Paris <-> London
		{{-33.8688, 151.2093}, {35.6762, 139.65}}, // Sydney <-> Tokyo
		{{89.9, 0}, {89.9, 179.9}},                // near the pole
		{{0, 179.9}, {0, -179.9}},                 // across the antimeridian
	}
	for _, p := range pairs {
		assert.InDelta(t, DistanceKm(p[0], p[1]), DistanceKm(p[1], p[0]), 1e-9)
	}
}

func TestDistanceKmIdentical(t *testing.T) {
	p := Point{Lat: 48.8566, Lon: 2.3522}
	assert.Zero(t, DistanceKm(p, p))
}

func TestDistanceKmKnownValue(t *testing.T) {
	paris := Point{Lat: 48.8566, Lon: 2.3522}
	london := Point{Lat: 51.5074, Lon: -0.1278}
	// Great-circle distance Paris-London is roughly 344 km.
	assert.InDelta(t, 344, DistanceKm(paris, london), 5)
}

func TestDistanceKmAntimeridian(t *testing.T) {
	a := Point{Lat: 0, Lon: 179.9}
	b := Point{Lat: 0, Lon: -179.9}
	// 0.2 degrees of longitude at the equator, not a near-circumnavigation.
	assert.InDelta(t, 22.24, DistanceKm(a, b), 0.5)
}

func TestNearestEiffelTower(t *testing.T) {
	target := Point{Lat: 48.8584, Lon: 2.2945}
	candidates := []types.Place{
		{Name: "A", Latitude: ptr(48.8566), Longitude: ptr(2.3522)},
		{Name: "B", Latitude: ptr(48.8606), Longitude: ptr(2.3376)},
	}

	got := Nearest(target, candidates, 3, 5)
	require.Len(t, got, 2)

	// B is closer than A, both within (0, 3) km.
	assert.Equal(t, "B", got[0].Item.Name)
	assert.Equal(t, "A", got[1].Item.Name)
	for _, r := range got {
		assert.Greater(t, r.DistanceKm, 0.0)
		assert.Less(t, r.DistanceKm, 3.0)
	}
}

func TestNearestSkipsMissingCoordinates(t *testing.T) {
	target := Point{Lat: 48.8584, Lon: 2.2945}
	candidates := []types.Place{
		{Name: "no coords"},
		{Name: "lat only", Latitude: ptr(48.86)},
		{Name: "ok", Latitude: ptr(48.8566), Longitude: ptr(2.3522)},
	}

	got := Nearest(target, candidates, 10, 0)
	require.Len(t, got, 1)
	assert.Equal(t, "ok", got[0].Item.Name)
}

func TestNearestRadiusLimitAndOrder(t *testing.T) {
	target := Point{Lat: 0, Lon: 0}
	var candidates []types.Listing
	// One candidate every ~11 km heading north.
	for i := 1; i <= 10; i++ {
		candidates = append(candidates, types.Listing{
			Name:     string(rune('a' + i - 1)),
			Latitude: ptr(float64(i) * 0.1), Longitude: ptr(0.0),
		})
	}

	got := Nearest(target, candidates, 60, 3)
	require.Len(t, got, 3)
	for i, r := range got {
		assert.LessOrEqual(t, r.DistanceKm, 60.0)
		if i > 0 {
			assert.GreaterOrEqual(t, r.DistanceKm, got[i-1].DistanceKm)
		}
	}
}

func TestNearestEmptyWhenNothingInRange(t *testing.T) {
	target := Point{Lat: 0, Lon: 0}
	candidates := []types.Place{{Name: "far", Latitude: ptr(50.0), Longitude: ptr(50.0)}}
	assert.Empty(t, Nearest(target, candidates, 2, 5))
}

func TestWithDistanceField(t *testing.T) {
	w := WithDistance[types.Listing]{
		Item:       types.Listing{Name: "loft", Price: 120},
		DistanceKm: 1.25,
	}

	v, ok := w.Field("distance_km")
	require.True(t, ok)
	assert.Equal(t, 1.25, v)

	v, ok = w.Field("price")
	require.True(t, ok)
	assert.Equal(t, 120.0, v)

	_, ok = w.Field("missing")
	assert.False(t, ok)
}
