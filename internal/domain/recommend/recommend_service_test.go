package recommend

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tripflow/tripflow-api/internal/engine/ranking"
	"github.com/tripflow/tripflow-api/internal/types"
)

type mockListings struct{ mock.Mock }

func (m *mockListings) ListByCity(ctx context.Context, city string) ([]types.Listing, error) {
	args := m.Called(ctx, city)
	return args.Get(0).([]types.Listing), args.Error(1)
}

func (m *mockListings) Get(ctx context.Context, id string) (*types.Listing, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Listing), args.Error(1)
}

type mockPlaces struct{ mock.Mock }

func (m *mockPlaces) ListByCity(ctx context.Context, city string) ([]types.Place, error) {
	args := m.Called(ctx, city)
	return args.Get(0).([]types.Place), args.Error(1)
}

func (m *mockPlaces) FindByName(ctx context.Context, name, city string) (*types.Place, error) {
	args := m.Called(ctx, name, city)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Place), args.Error(1)
}

type mockWeather struct{ mock.Mock }

func (m *mockWeather) Forecast(ctx context.Context, city, date string) (types.WeatherForecast, error) {
	args := m.Called(ctx, city, date)
	return args.Get(0).(types.WeatherForecast), args.Error(1)
}

type mockEvents struct{ mock.Mock }

func (m *mockEvents) Upcoming(ctx context.Context, city, date string) ([]types.Event, error) {
	args := m.Called(ctx, city, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Event), args.Error(1)
}

type mockTransit struct{ mock.Mock }

func (m *mockTransit) Options(ctx context.Context, city string) ([]types.TransitStop, error) {
	args := m.Called(ctx, city)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.TransitStop), args.Error(1)
}

func ptr(f float64) *float64 { return &f }

func listing(name string, rating float64, lat, lon float64) types.Listing {
	return types.Listing{
		ID:            uuid.New(),
		Name:          name,
		City:          "Paris",
		OverallRating: rating,
		Latitude:      ptr(lat),
		Longitude:     ptr(lon),
	}
}

func newTestService(l *mockListings, p *mockPlaces, w *mockWeather, e *mockEvents, tr *mockTransit) *ServiceImpl {
	return NewService(l, p, w, e, tr, slog.Default())
}

func TestDefaultForCityRanks(t *testing.T) {
	l := new(mockListings)
	pool := []types.Listing{
		listing("Modest", 3.0, 48.85, 2.35),
		listing("Grand", 4.9, 48.85, 2.35),
		listing("Mid", 4.0, 48.85, 2.35),
	}
	l.On("ListByCity", mock.Anything, "Paris").Return(pool, nil)

	svc := newTestService(l, new(mockPlaces), nil, nil, nil)
	got, err := svc.DefaultForCity(context.Background(), "Paris", 2)
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, "Grand", got[0].Name)
	assert.Equal(t, "Mid", got[1].Name)
	l.AssertExpectations(t)
}

func TestDefaultForCityUnknownCityIsEmpty(t *testing.T) {
	l := new(mockListings)
	l.On("ListByCity", mock.Anything, "Atlantis").Return([]types.Listing{}, nil)

	svc := newTestService(l, new(mockPlaces), nil, nil, nil)
	got, err := svc.DefaultForCity(context.Background(), "Atlantis", 5)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestWithPreferencesFilters(t *testing.T) {
	l := new(mockListings)
	entire := listing("Entire flat", 4.0, 48.85, 2.35)
	entire.RoomType = "Entire home/apt"
	private := listing("Private room", 4.8, 48.85, 2.35)
	private.RoomType = "Private room"
	l.On("ListByCity", mock.Anything, "Paris").Return([]types.Listing{entire, private}, nil)

	svc := newTestService(l, new(mockPlaces), nil, nil, nil)
	got, err := svc.WithPreferences(context.Background(), "Paris", map[string]any{"room_type": "entire"}, "", 5)
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, "Entire flat", got[0].Name)
}

func TestNearPlaceResolvesByName(t *testing.T) {
	l := new(mockListings)
	p := new(mockPlaces)

	near := listing("Near Eiffel", 4.0, 48.8590, 2.2950)
	far := listing("Far Away", 5.0, 48.9000, 2.5000)
	l.On("ListByCity", mock.Anything, "Paris").Return([]types.Listing{near, far}, nil)
	p.On("ListByCity", mock.Anything, "Paris").Return([]types.Place{
		{Name: "Eiffel Tower", City: "Paris", Latitude: ptr(48.8584), Longitude: ptr(2.2945)},
	}, nil)

	svc := newTestService(l, p, nil, nil, nil)
	got, err := svc.NearPlace(context.Background(), "Paris",
		ranking.Target{Name: "eiffel tower"}, nil, "", 5, 2.0)
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, "Near Eiffel", got[0].Item.Name)
	assert.Less(t, got[0].DistanceKm, 2.0)
}

func TestNearPlaceUnknownPlaceIsEmpty(t *testing.T) {
	l := new(mockListings)
	p := new(mockPlaces)
	l.On("ListByCity", mock.Anything, "Paris").Return([]types.Listing{listing("A", 4, 48.85, 2.35)}, nil)
	p.On("ListByCity", mock.Anything, "Paris").Return([]types.Place{}, nil)

	svc := newTestService(l, p, nil, nil, nil)
	got, err := svc.NearPlace(context.Background(), "Paris",
		ranking.Target{Name: "Nonexistent Museum"}, nil, "", 5, 2.0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestNearPlaceRequiresTarget(t *testing.T) {
	svc := newTestService(new(mockListings), new(mockPlaces), nil, nil, nil)
	_, err := svc.NearPlace(context.Background(), "Paris", ranking.Target{}, nil, "", 5, 2.0)
	assert.ErrorIs(t, err, types.ErrValidation)
}

func TestAttractionsNearListing(t *testing.T) {
	l := new(mockListings)
	p := new(mockPlaces)

	home := listing("Home base", 4.0, 48.8584, 2.2945)
	l.On("Get", mock.Anything, home.ID.String()).Return(&home, nil)
	p.On("ListByCity", mock.Anything, "Paris").Return([]types.Place{
		{Name: "Champ de Mars", City: "Paris", Latitude: ptr(48.8556), Longitude: ptr(2.2986)},
		{Name: "Louvre", City: "Paris", Latitude: ptr(48.8606), Longitude: ptr(2.3376)},
	}, nil)

	svc := newTestService(l, p, nil, nil, nil)
	got, err := svc.AttractionsNearListing(context.Background(), home.ID.String(), 2.0, 5)
	require.NoError(t, err)

	require.Len(t, got, 1, "the Louvre sits beyond two kilometres")
	assert.Equal(t, "Champ de Mars", got[0].Item.Name)
}

func TestAttractionsNearListingWithoutCoordinates(t *testing.T) {
	l := new(mockListings)
	noCoords := types.Listing{ID: uuid.New(), Name: "Mystery", City: "Paris"}
	l.On("Get", mock.Anything, noCoords.ID.String()).Return(&noCoords, nil)

	svc := newTestService(l, new(mockPlaces), nil, nil, nil)
	_, err := svc.AttractionsNearListing(context.Background(), noCoords.ID.String(), 2.0, 5)
	assert.ErrorIs(t, err, types.ErrValidation)
}

func TestTripBriefAssemblesSections(t *testing.T) {
	w := new(mockWeather)
	e := new(mockEvents)
	tr := new(mockTransit)

	w.On("Forecast", mock.Anything, "Paris", "2026-09-01").
		Return(types.WeatherForecast{City: "Paris", Date: "2026-09-01", AvgTempC: 21}, nil)
	e.On("Upcoming", mock.Anything, "Paris", "2026-09-01").
		Return([]types.Event{{Name: "Concert"}}, nil)
	tr.On("Options", mock.Anything, "Paris").
		Return([]types.TransitStop{{Name: "Châtelet", PlaceID: "p1"}}, nil)

	svc := newTestService(new(mockListings), new(mockPlaces), w, e, tr)
	brief, err := svc.TripBrief(context.Background(), "Paris", "2026-09-01")
	require.NoError(t, err)

	require.NotNil(t, brief.Weather)
	assert.Equal(t, 21.0, brief.Weather.AvgTempC)
	assert.Len(t, brief.Events, 1)
	assert.Len(t, brief.Transit, 1)
	assert.Empty(t, brief.Warnings)
}

func TestTripBriefDegradesPerSection(t *testing.T) {
	w := new(mockWeather)
	e := new(mockEvents)
	tr := new(mockTransit)

	w.On("Forecast", mock.Anything, "Paris", "").
		Return(types.WeatherForecast{}, errors.New("upstream down"))
	e.On("Upcoming", mock.Anything, "Paris", "").
		Return([]types.Event{{Name: "Concert"}}, nil)
	tr.On("Options", mock.Anything, "Paris").
		Return(nil, errors.New("quota exhausted"))

	svc := newTestService(new(mockListings), new(mockPlaces), w, e, tr)
	brief, err := svc.TripBrief(context.Background(), "Paris", "")
	require.NoError(t, err)

	assert.Nil(t, brief.Weather)
	assert.Len(t, brief.Events, 1)
	assert.Nil(t, brief.Transit)
	require.Len(t, brief.Warnings, 2)
	assert.Contains(t, brief.Warnings[0], "weather unavailable")
	assert.Contains(t, brief.Warnings[1], "transit unavailable")
}

func TestTripBriefAllSectionsFailed(t *testing.T) {
	w := new(mockWeather)
	e := new(mockEvents)
	tr := new(mockTransit)

	w.On("Forecast", mock.Anything, "Paris", "").Return(types.WeatherForecast{}, errors.New("down"))
	e.On("Upcoming", mock.Anything, "Paris", "").Return(nil, errors.New("down"))
	tr.On("Options", mock.Anything, "Paris").Return(nil, errors.New("down"))

	svc := newTestService(new(mockListings), new(mockPlaces), w, e, tr)
	_, err := svc.TripBrief(context.Background(), "Paris", "")
	assert.Error(t, err)
}

func TestTripBriefRequiresCity(t *testing.T) {
	svc := newTestService(new(mockListings), new(mockPlaces), nil, nil, nil)
	_, err := svc.TripBrief(context.Background(), "", "")
	assert.ErrorIs(t, err, types.ErrValidation)
}
