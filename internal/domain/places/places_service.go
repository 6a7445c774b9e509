package places

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tripflow/tripflow-api/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	ListByCity(ctx context.Context, city string) ([]types.Place, error)
	FindByName(ctx context.Context, name, city string) (*types.Place, error)
}

type ServiceImpl struct {
	logger *slog.Logger
	repo   Repository
	cache  *cache.Cache
}

func NewService(repo Repository, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger: logger,
		repo:   repo,
		cache:  cache.New(5*time.Minute, 10*time.Minute),
	}
}

func (s *ServiceImpl) ListByCity(ctx context.Context, city string) ([]types.Place, error) {
	ctx, span := otel.Tracer("PlacesService").Start(ctx, "ListByCity", trace.WithAttributes(
		attribute.String("city", city),
	))
	defer span.End()

	if city == "" {
		return nil, fmt.Errorf("%w: city required", types.ErrValidation)
	}

	cacheKey := "places_city_" + strings.ToLower(city)
	if cached, found := s.cache.Get(cacheKey); found {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return cached.([]types.Place), nil
	}

	out, err := s.repo.GetByCity(ctx, city)
	if err != nil {
		return nil, err
	}
	s.cache.Set(cacheKey, out, cache.DefaultExpiration)

	s.logger.DebugContext(ctx, "loaded city places",
		slog.String("city", city), slog.Int("count", len(out)))
	return out, nil
}

func (s *ServiceImpl) FindByName(ctx context.Context, name, city string) (*types.Place, error) {
	ctx, span := otel.Tracer("PlacesService").Start(ctx, "FindByName", trace.WithAttributes(
		attribute.String("place.name", name),
		attribute.String("city", city),
	))
	defer span.End()

	if name == "" || city == "" {
		return nil, fmt.Errorf("%w: place name and city required", types.ErrValidation)
	}
	return s.repo.FindByNameAndCity(ctx, name, city)
}
