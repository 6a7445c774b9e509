package recommend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/tripflow/tripflow-api/internal/domain/listings"
	"github.com/tripflow/tripflow-api/internal/domain/places"
	"github.com/tripflow/tripflow-api/internal/engine/geo"
	"github.com/tripflow/tripflow-api/internal/engine/ranking"
	"github.com/tripflow/tripflow-api/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

// WeatherProvider is the slice of the weather client the brief needs.
type WeatherProvider interface {
	Forecast(ctx context.Context, city, date string) (types.WeatherForecast, error)
}

// EventsProvider lists upcoming events for a city.
type EventsProvider interface {
	Upcoming(ctx context.Context, city, date string) ([]types.Event, error)
}

// TransitProvider lists public transport options for a city.
type TransitProvider interface {
	Options(ctx context.Context, city string) ([]types.TransitStop, error)
}

// Service ranks lodging and composes trip context.
type Service interface {
	DefaultForCity(ctx context.Context, city string, topN int) ([]types.Listing, error)
	WithPreferences(ctx context.Context, city string, filters map[string]any, sortKey string, topN int) ([]types.Listing, error)
	NearPlace(ctx context.Context, city string, target ranking.Target, filters map[string]any, sortKey string, topN int, maxKm float64) ([]geo.WithDistance[types.Listing], error)
	AttractionsNearListing(ctx context.Context, listingID string, maxKm float64, topN int) ([]geo.WithDistance[types.Place], error)
	TripBrief(ctx context.Context, city, date string) (types.TripBrief, error)
}

type ServiceImpl struct {
	logger   *slog.Logger
	listings listings.Service
	places   places.Service
	weather  WeatherProvider
	events   EventsProvider
	transit  TransitProvider
}

func NewService(
	listingSvc listings.Service,
	placeSvc places.Service,
	weather WeatherProvider,
	events EventsProvider,
	transit TransitProvider,
	logger *slog.Logger,
) *ServiceImpl {
	return &ServiceImpl{
		logger:   logger,
		listings: listingSvc,
		places:   placeSvc,
		weather:  weather,
		events:   events,
		transit:  transit,
	}
}

// DefaultForCity ranks the city's inventory by the standard lodging key
// order. An unknown city is an empty answer, not an error.
func (s *ServiceImpl) DefaultForCity(ctx context.Context, city string, topN int) ([]types.Listing, error) {
	ctx, span := otel.Tracer("RecommendService").Start(ctx, "DefaultForCity", trace.WithAttributes(
		attribute.String("city", city),
	))
	defer span.End()

	pool, err := s.listings.ListByCity(ctx, city)
	if err != nil {
		return nil, err
	}
	ranked := ranking.Default(pool, topN)
	span.SetAttributes(attribute.Int("result.count", len(ranked)))
	return ranked, nil
}

// WithPreferences filters the city's inventory before ranking. Filters on
// attributes no listing carries are ignored rather than emptying the result.
func (s *ServiceImpl) WithPreferences(ctx context.Context, city string, filters map[string]any, sortKey string, topN int) ([]types.Listing, error) {
	ctx, span := otel.Tracer("RecommendService").Start(ctx, "WithPreferences", trace.WithAttributes(
		attribute.String("city", city),
		attribute.String("sort_key", sortKey),
		attribute.Int("filter.count", len(filters)),
	))
	defer span.End()

	pool, err := s.listings.ListByCity(ctx, city)
	if err != nil {
		return nil, err
	}
	ranked := ranking.WithPreferences(pool, filters, sortKey, topN)
	span.SetAttributes(attribute.Int("result.count", len(ranked)))
	return ranked, nil
}

// NearPlace ranks listings within maxKm of a named place or explicit point.
// An unresolvable place yields an empty result.
func (s *ServiceImpl) NearPlace(ctx context.Context, city string, target ranking.Target, filters map[string]any, sortKey string, topN int, maxKm float64) ([]geo.WithDistance[types.Listing], error) {
	ctx, span := otel.Tracer("RecommendService").Start(ctx, "NearPlace", trace.WithAttributes(
		attribute.String("city", city),
		attribute.String("place", target.Name),
		attribute.Float64("max_km", maxKm),
	))
	defer span.End()

	if target.Point == nil && target.Name == "" {
		return nil, fmt.Errorf("%w: a place name or explicit coordinates required", types.ErrValidation)
	}

	pool, err := s.listings.ListByCity(ctx, city)
	if err != nil {
		return nil, err
	}
	cityPlaces, err := s.places.ListByCity(ctx, city)
	if err != nil {
		return nil, err
	}

	near := ranking.NearPlace(pool, cityPlaces, target, filters, sortKey, topN, ranking.NearPlaceOptions{MaxDistanceKm: maxKm})
	span.SetAttributes(attribute.Int("result.count", len(near)))
	return near, nil
}

// AttractionsNearListing inverts the proximity join: places ranked by
// distance from a stored listing.
func (s *ServiceImpl) AttractionsNearListing(ctx context.Context, listingID string, maxKm float64, topN int) ([]geo.WithDistance[types.Place], error) {
	ctx, span := otel.Tracer("RecommendService").Start(ctx, "AttractionsNearListing", trace.WithAttributes(
		attribute.String("listing.id", listingID),
	))
	defer span.End()

	listing, err := s.listings.Get(ctx, listingID)
	if err != nil {
		return nil, err
	}
	lat, lon, ok := listing.Coordinates()
	if !ok {
		return nil, fmt.Errorf("%w: listing %s has no coordinates", types.ErrValidation, listingID)
	}
	origin, err := geo.NewPoint(lat, lon)
	if err != nil {
		return nil, err
	}

	cityPlaces, err := s.places.ListByCity(ctx, listing.City)
	if err != nil {
		return nil, err
	}
	if maxKm <= 0 {
		maxKm = geo.DefaultMaxDistanceKm
	}
	if topN <= 0 {
		topN = ranking.DefaultTopN
	}
	return geo.Nearest(origin, cityPlaces, maxKm, topN), nil
}

// TripBrief fans out to the weather, events and transit providers and
// assembles whatever came back. A failed section becomes a warning; the
// brief only fails as a whole when every section fails.
func (s *ServiceImpl) TripBrief(ctx context.Context, city, date string) (types.TripBrief, error) {
	ctx, span := otel.Tracer("RecommendService").Start(ctx, "TripBrief", trace.WithAttributes(
		attribute.String("city", city),
		attribute.String("date", date),
	))
	defer span.End()

	if city == "" {
		return types.TripBrief{}, fmt.Errorf("%w: city required", types.ErrValidation)
	}

	brief := types.TripBrief{City: city}
	var weatherErr, eventsErr, transitErr error

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if s.weather == nil {
			weatherErr = errors.New("weather provider not configured")
			return nil
		}
		w, err := s.weather.Forecast(gctx, city, date)
		if err != nil {
			weatherErr = err
			return nil
		}
		brief.Weather = &w
		return nil
	})
	g.Go(func() error {
		if s.events == nil {
			eventsErr = errors.New("events provider not configured")
			return nil
		}
		evs, err := s.events.Upcoming(gctx, city, date)
		if err != nil {
			eventsErr = err
			return nil
		}
		brief.Events = evs
		return nil
	})
	g.Go(func() error {
		if s.transit == nil {
			transitErr = errors.New("transit provider not configured")
			return nil
		}
		stops, err := s.transit.Options(gctx, city)
		if err != nil {
			transitErr = err
			return nil
		}
		brief.Transit = stops
		return nil
	})

	// The goroutines report failures through the captured error slots, so
	// Wait never returns one.
	_ = g.Wait()

	sections := []struct {
		name string
		err  error
	}{
		{"weather", weatherErr},
		{"events", eventsErr},
		{"transit", transitErr},
	}
	for _, sec := range sections {
		name, err := sec.name, sec.err
		if err != nil {
			brief.Warnings = append(brief.Warnings, name+" unavailable: "+err.Error())
			s.logger.WarnContext(ctx, "trip brief section failed",
				slog.String("city", city),
				slog.String("section", name),
				slog.Any("error", err))
		}
	}

	if brief.Weather == nil && brief.Events == nil && brief.Transit == nil {
		return types.TripBrief{}, fmt.Errorf("composing trip brief for %s: all sections failed", city)
	}
	return brief, nil
}
