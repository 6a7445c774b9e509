package ranking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripflow/tripflow-api/internal/engine/geo"
	"github.com/tripflow/tripflow-api/internal/types"
)

func ptr(f float64) *float64 { return &f }

func parisFixtures() ([]types.Listing, []types.Place) {
	listings := []types.Listing{
		{Name: "Trocadero flat", RoomType: "Entire home", Price: 180, Latitude: ptr(48.8616), Longitude: ptr(2.2893)},
		{Name: "Champ de Mars studio", RoomType: "Entire studio", Price: 140, Latitude: ptr(48.8554), Longitude: ptr(2.2980)},
		{Name: "Marais room", RoomType: "Private room", Price: 70, Latitude: ptr(48.8575), Longitude: ptr(2.3622)},
		{Name: "No coords", RoomType: "Entire home", Price: 50},
	}
	places := []types.Place{
		{Name: "Eiffel Tower", City: "Paris", Latitude: ptr(48.8584), Longitude: ptr(2.2945)},
		{Name: "Louvre Museum", City: "Paris", Latitude: ptr(48.8606), Longitude: ptr(2.3376)},
	}
	return listings, places
}

func TestResolveTargetByNameCaseInsensitive(t *testing.T) {
	_, places := parisFixtures()

	p, ok := ResolveTarget(Target{Name: "eiffel tower"}, places)
	require.True(t, ok)
	assert.InDelta(t, 48.8584, p.Lat, 1e-9)
}

func TestResolveTargetUnknownName(t *testing.T) {
	_, places := parisFixtures()
	_, ok := ResolveTarget(Target{Name: "Atlantis"}, places)
	assert.False(t, ok)
}

func TestResolveTargetExplicitPointWins(t *testing.T) {
	_, places := parisFixtures()

	p, ok := ResolveTarget(Target{Name: "Eiffel Tower", Point: &geo.Point{Lat: 1, Lon: 2}}, places)
	require.True(t, ok)
	assert.Equal(t, geo.Point{Lat: 1, Lon: 2}, p)
}

func TestNearPlaceSortsByDistance(t *testing.T) {
	listings, places := parisFixtures()

	got := NearPlace(listings, places, Target{Name: "Eiffel Tower"}, nil, "", 5, NearPlaceOptions{MaxDistanceKm: 2})
	require.Len(t, got, 2, "the Marais and the coordinate-less listing fall outside 2 km")

	assert.Equal(t, "Champ de Mars studio", got[0].Item.Name)
	assert.Equal(t, "Trocadero flat", got[1].Item.Name)
	assert.Less(t, got[0].DistanceKm, got[1].DistanceKm)
}

func TestNearPlaceUnknownPlaceIsEmpty(t *testing.T) {
	listings, places := parisFixtures()
	got := NearPlace(listings, places, Target{Name: "no such landmark"}, nil, "", 5, NearPlaceOptions{})
	assert.Empty(t, got)
}

func TestNearPlaceComposesWithPreferences(t *testing.T) {
	listings, places := parisFixtures()

	got := NearPlace(listings, places, Target{Name: "Eiffel Tower"},
		map[string]any{"room_type": "entire"}, "price", 5, NearPlaceOptions{MaxDistanceKm: 2})
	require.Len(t, got, 2)

	// Sorted by price, still carrying the join's distance annotation.
	assert.Equal(t, "Champ de Mars studio", got[0].Item.Name)
	assert.Equal(t, "Trocadero flat", got[1].Item.Name)
	for _, r := range got {
		assert.Greater(t, r.DistanceKm, 0.0)
		assert.LessOrEqual(t, r.DistanceKm, 2.0)
	}
}

func TestNearPlaceSortByDistanceKeyExplicitly(t *testing.T) {
	listings, places := parisFixtures()

	got := NearPlace(listings, places, Target{Name: "Eiffel Tower"}, nil, "distance_km", 5, NearPlaceOptions{MaxDistanceKm: 2})
	require.Len(t, got, 2)
	assert.LessOrEqual(t, got[0].DistanceKm, got[1].DistanceKm)
}

func TestNearPlaceTruncationIsFinal(t *testing.T) {
	listings, places := parisFixtures()

	got := NearPlace(listings, places, Target{Name: "Eiffel Tower"}, nil, "", 1, NearPlaceOptions{MaxDistanceKm: 2})
	require.Len(t, got, 1)
	// The single survivor is the nearest one, so the cap applied after sorting.
	assert.Equal(t, "Champ de Mars studio", got[0].Item.Name)
}

func TestNearPlaceExplicitPoint(t *testing.T) {
	listings, places := parisFixtures()

	louvre := geo.Point{Lat: 48.8606, Lon: 2.3376}
	got := NearPlace(listings, places, Target{Point: &louvre}, nil, "", 5, NearPlaceOptions{MaxDistanceKm: 2})
	require.Len(t, got, 1)
	assert.Equal(t, "Marais room", got[0].Item.Name)
}
