package listings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/tripflow/tripflow-api/internal/types"
)

var _ Repository = (*RepositoryImpl)(nil)

type Repository interface {
	GetByCity(ctx context.Context, city string) ([]types.Listing, error)
	GetByID(ctx context.Context, id string) (*types.Listing, error)
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

const listingColumns = `id, name, city, room_type, price, overall_rating, reputation_score,
	cleanliness, walk_score, distance_to_city_center, distance_to_metro,
	nearby_attractions, latitude, longitude, extra`

// GetByCity returns every listing in the city. An unknown city yields an
// empty slice, not an error.
func (r *RepositoryImpl) GetByCity(ctx context.Context, city string) ([]types.Listing, error) {
	query, args, err := psql.
		Select(listingColumns).
		From("listings").
		Where(sq.Expr("lower(city) = lower(?)", city)).
		OrderBy("name").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building listings query: %w", err)
	}

	rows, err := r.pgpool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying listings for city %q: %w", city, err)
	}
	defer rows.Close()

	var out []types.Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading listings for city %q: %w", city, err)
	}
	return out, nil
}

func (r *RepositoryImpl) GetByID(ctx context.Context, id string) (*types.Listing, error) {
	query, args, err := psql.
		Select(listingColumns).
		From("listings").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building listing query: %w", err)
	}

	l, err := scanListing(r.pgpool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: listing %s", types.ErrNotFound, id)
		}
		return nil, fmt.Errorf("querying listing %s: %w", id, err)
	}
	return &l, nil
}

func scanListing(row pgx.Row) (types.Listing, error) {
	var l types.Listing
	var extra []byte
	err := row.Scan(
		&l.ID, &l.Name, &l.City, &l.RoomType, &l.Price,
		&l.OverallRating, &l.ReputationScore, &l.Cleanliness, &l.WalkScore,
		&l.DistanceToCityCenter, &l.DistanceToMetro, &l.NearbyAttractions,
		&l.Latitude, &l.Longitude, &extra,
	)
	if err != nil {
		return l, err
	}
	if len(extra) > 0 {
		if err := json.Unmarshal(extra, &l.Extra); err != nil {
			return l, fmt.Errorf("decoding listing extra attributes: %w", err)
		}
	}
	return l, nil
}
