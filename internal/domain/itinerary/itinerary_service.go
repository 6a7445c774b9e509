package itinerary

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tripflow/tripflow-api/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	Save(ctx context.Context, userID, destination, content string) (uuid.UUID, error)
	Latest(ctx context.Context, userID string) (*types.Itinerary, error)
	List(ctx context.Context, userID string, limit int) ([]types.Itinerary, error)
}

type ServiceImpl struct {
	logger *slog.Logger
	repo   Repository
}

func NewService(repo Repository, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{logger: logger, repo: repo}
}

func (s *ServiceImpl) Save(ctx context.Context, userID, destination, content string) (uuid.UUID, error) {
	ctx, span := otel.Tracer("ItineraryService").Start(ctx, "Save", trace.WithAttributes(
		attribute.String("user.id", userID),
		attribute.String("destination", destination),
	))
	defer span.End()

	if userID == "" || destination == "" || content == "" {
		return uuid.Nil, fmt.Errorf("%w: user id, destination and itinerary content required", types.ErrValidation)
	}

	id, err := s.repo.Save(ctx, userID, destination, content)
	if err != nil {
		return uuid.Nil, err
	}
	s.logger.InfoContext(ctx, "itinerary saved",
		slog.String("user_id", userID),
		slog.String("itinerary_id", id.String()))
	return id, nil
}

func (s *ServiceImpl) Latest(ctx context.Context, userID string) (*types.Itinerary, error) {
	ctx, span := otel.Tracer("ItineraryService").Start(ctx, "Latest", trace.WithAttributes(
		attribute.String("user.id", userID),
	))
	defer span.End()

	if userID == "" {
		return nil, fmt.Errorf("%w: user id required", types.ErrValidation)
	}
	return s.repo.Latest(ctx, userID)
}

func (s *ServiceImpl) List(ctx context.Context, userID string, limit int) ([]types.Itinerary, error) {
	ctx, span := otel.Tracer("ItineraryService").Start(ctx, "List", trace.WithAttributes(
		attribute.String("user.id", userID),
	))
	defer span.End()

	if userID == "" {
		return nil, fmt.Errorf("%w: user id required", types.ErrValidation)
	}
	return s.repo.List(ctx, userID, limit)
}
