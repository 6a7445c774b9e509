package listings

import (
	"context"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripflow/tripflow-api/internal/types"
)

var listingRowColumns = []string{
	"id", "name", "city", "room_type", "price", "overall_rating", "reputation_score",
	"cleanliness", "walk_score", "distance_to_city_center", "distance_to_metro",
	"nearby_attractions", "latitude", "longitude", "extra",
}

func ptr(f float64) *float64 { return &f }

func TestGetByCity(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := uuid.New()
	rows := pgxmock.NewRows(listingRowColumns).
		AddRow(id, "Grand Flat", "Paris", "Entire home/apt", 120.0, 4.8, 9.1,
			4.5, 88.0, 1.2, 0.3, 12.0, ptr(48.85), ptr(2.35), []byte(`{"balcony": true}`)).
		AddRow(uuid.New(), "No Coords", "Paris", "Private room", 60.0, 4.0, 7.0,
			4.0, 70.0, 2.0, 0.8, 5.0, (*float64)(nil), (*float64)(nil), []byte(nil))

	mock.ExpectQuery("(?s)SELECT .+ FROM listings WHERE lower\\(city\\) = lower\\(\\$1\\)").
		WithArgs("Paris").
		WillReturnRows(rows)

	repo := NewRepository(mock, slog.Default())
	got, err := repo.GetByCity(context.Background(), "Paris")
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, id, got[0].ID)
	assert.Equal(t, "Grand Flat", got[0].Name)
	assert.Equal(t, true, got[0].Extra["balcony"])
	_, _, ok := got[0].Coordinates()
	assert.True(t, ok)
	_, _, ok = got[1].Coordinates()
	assert.False(t, ok, "row without coordinates survives the scan")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByCityEmpty(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("(?s)SELECT .+ FROM listings").
		WithArgs("Atlantis").
		WillReturnRows(pgxmock.NewRows(listingRowColumns))

	repo := NewRepository(mock, slog.Default())
	got, err := repo.GetByCity(context.Background(), "Atlantis")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestGetByIDNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := uuid.New()
	mock.ExpectQuery("(?s)SELECT .+ FROM listings WHERE id = \\$1").
		WithArgs(id.String()).
		WillReturnRows(pgxmock.NewRows(listingRowColumns))

	repo := NewRepository(mock, slog.Default())
	_, err = repo.GetByID(context.Background(), id.String())
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestGetByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := uuid.New()
	rows := pgxmock.NewRows(listingRowColumns).
		AddRow(id, "Grand Flat", "Paris", "Entire home/apt", 120.0, 4.8, 9.1,
			4.5, 88.0, 1.2, 0.3, 12.0, ptr(48.85), ptr(2.35), []byte(`{}`))

	mock.ExpectQuery("(?s)SELECT .+ FROM listings WHERE id = \\$1").
		WithArgs(id.String()).
		WillReturnRows(rows)

	repo := NewRepository(mock, slog.Default())
	got, err := repo.GetByID(context.Background(), id.String())
	require.NoError(t, err)
	assert.Equal(t, "Grand Flat", got.Name)
}
