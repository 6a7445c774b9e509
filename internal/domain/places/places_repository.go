package places

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
	GetByCity(ctx context.Context, city string) ([]types.Place, error)
	FindByNameAndCity(ctx context.Context, name, city string) (*types.Place, error)
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

const placeColumns = `id, name, city, category, rating, description, latitude, longitude, extra`

func (r *RepositoryImpl) GetByCity(ctx context.Context, city string) ([]types.Place, error) {
	query, args, err := psql.
		Select(placeColumns).
		From("places").
		Where(sq.Expr("lower(city) = lower(?)", city)).
		OrderBy("name").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building places query: %w", err)
	}

	rows, err := r.pgpool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying places for city %q: %w", city, err)
	}
	defer rows.Close()

	var out []types.Place
	for rows.Next() {
		p, err := scanPlace(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading places for city %q: %w", city, err)
	}
	return out, nil
}

// FindByNameAndCity resolves a place by its exact name, case-insensitively.
// A miss returns ErrNotFound; callers treating the miss as a normal empty
// answer check for it explicitly.
func (r *RepositoryImpl) FindByNameAndCity(ctx context.Context, name, city string) (*types.Place, error) {
	query, args, err := psql.
		Select(placeColumns).
		From("places").
		Where(sq.Expr("lower(city) = lower(?)", city)).
		Where(sq.Expr("lower(name) = lower(?)", name)).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building place lookup: %w", err)
	}

	p, err := scanPlace(r.pgpool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: place %q in %q", types.ErrNotFound, name, city)
		}
		return nil, fmt.Errorf("looking up place %q in %q: %w", name, city, err)
	}
	return &p, nil
}

func scanPlace(row pgx.Row) (types.Place, error) {
	var p types.Place
	var extra []byte
	err := row.Scan(
		&p.ID, &p.Name, &p.City, &p.Category, &p.Rating, &p.Description,
		&p.Latitude, &p.Longitude, &extra,
	)
	if err != nil {
		return p, err
	}
	if len(extra) > 0 {
		if err := json.Unmarshal(extra, &p.Extra); err != nil {
			return p, fmt.Errorf("decoding place extra attributes: %w", err)
		}
	}
	return p, nil
}
