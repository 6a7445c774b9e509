package itinerary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/tripflow/tripflow-api/internal/types"
)

var _ Repository = (*RepositoryImpl)(nil)

type Repository interface {
	Save(ctx context.Context, userID, destination, content string) (uuid.UUID, error)
	Latest(ctx context.Context, userID string) (*types.Itinerary, error)
	List(ctx context.Context, userID string, limit int) ([]types.Itinerary, error)
}

// Querier is the slice of pgxpool.Pool the repository needs.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type RepositoryImpl struct {
	logger *slog.Logger
	pgpool Querier
}

func NewRepository(pgpool Querier, logger *slog.Logger) *RepositoryImpl {
	return &RepositoryImpl{logger: logger, pgpool: pgpool}
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

func (r *RepositoryImpl) Save(ctx context.Context, userID, destination, content string) (uuid.UUID, error) {
	query, args, err := psql.
		Insert("itineraries").
		Columns("user_id", "destination", "itinerary").
		Values(userID, destination, content).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return uuid.Nil, fmt.Errorf("building itinerary insert: %w", err)
	}

	var id uuid.UUID
	if err := r.pgpool.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		return uuid.Nil, fmt.Errorf("saving itinerary for user %s: %w", userID, err)
	}
	return id, nil
}

// Latest returns the most recently saved itinerary for the user.
func (r *RepositoryImpl) Latest(ctx context.Context, userID string) (*types.Itinerary, error) {
	query, args, err := psql.
		Select("id", "user_id", "destination", "itinerary", "created_at").
		From("itineraries").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building latest itinerary query: %w", err)
	}

	var it types.Itinerary
	err = r.pgpool.QueryRow(ctx, query, args...).Scan(
		&it.ID, &it.UserID, &it.Destination, &it.Content, &it.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: no itineraries for user %s", types.ErrNotFound, userID)
		}
		return nil, fmt.Errorf("loading latest itinerary for user %s: %w", userID, err)
	}
	return &it, nil
}

func (r *RepositoryImpl) List(ctx context.Context, userID string, limit int) ([]types.Itinerary, error) {
	if limit <= 0 {
		limit = 20
	}
	query, args, err := psql.
		Select("id", "user_id", "destination", "itinerary", "created_at").
		From("itineraries").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building itinerary list query: %w", err)
	}

	rows, err := r.pgpool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing itineraries for user %s: %w", userID, err)
	}
	defer rows.Close()

	var out []types.Itinerary
	for rows.Next() {
		var it types.Itinerary
		if err := rows.Scan(&it.ID, &it.UserID, &it.Destination, &it.Content, &it.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning itinerary row: %w", err)
		}
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading itineraries for user %s: %w", userID, err)
	}
	return out, nil
}
