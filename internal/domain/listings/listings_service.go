package listings

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

// Service reads lodging inventory. City snapshots are cached because the
// ranking layer re-reads the same city many times per session.
type Service interface {
	ListByCity(ctx context.Context, city string) ([]types.Listing, error)
	Get(ctx context.Context, id string) (*types.Listing, error)
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

func (s *ServiceImpl) ListByCity(ctx context.Context, city string) ([]types.Listing, error) {
	ctx, span := otel.Tracer("ListingsService").Start(ctx, "ListByCity", trace.WithAttributes(
		attribute.String("city", city),
	))
	defer span.End()

	if city == "" {
		return nil, fmt.Errorf("%w: city required", types.ErrValidation)
	}

	cacheKey := "listings_city_" + strings.ToLower(city)
	if cached, found := s.cache.Get(cacheKey); found {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return cached.([]types.Listing), nil
	}

	out, err := s.repo.GetByCity(ctx, city)
	if err != nil {
		return nil, err
	}
	s.cache.Set(cacheKey, out, cache.DefaultExpiration)

	s.logger.DebugContext(ctx, "loaded city listings",
		slog.String("city", city), slog.Int("count", len(out)))
	return out, nil
}

func (s *ServiceImpl) Get(ctx context.Context, id string) (*types.Listing, error) {
	ctx, span := otel.Tracer("ListingsService").Start(ctx, "Get", trace.WithAttributes(
		attribute.String("listing.id", id),
	))
	defer span.End()

	if id == "" {
		return nil, fmt.Errorf("%w: listing id required", types.ErrValidation)
	}
	return s.repo.GetByID(ctx, id)
}
