package ranking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripflow/tripflow-api/internal/types"
)

func listing(name string, price, rating float64) types.Listing {
	return types.Listing{Name: name, Price: price, OverallRating: rating}
}

func TestDefaultOrdersByPriorityTable(t *testing.T) {
	records := []types.Listing{
		{Name: "mid", OverallRating: 4.0, DistanceToCityCenter: 1.0},
		{Name: "best", OverallRating: 4.8, DistanceToCityCenter: 3.0},
		{Name: "low", OverallRating: 3.1, DistanceToCityCenter: 0.2},
	}

	got := Default(records, 10)
	require.Len(t, got, 3)
	assert.Equal(t, "best", got[0].Name)
	assert.Equal(t, "mid", got[1].Name)
	assert.Equal(t, "low", got[2].Name)
}

func TestDefaultTieBreaksOnLaterKeys(t *testing.T) {
	records := []types.Listing{
		{Name: "far", OverallRating: 4.5, ReputationScore: 9, Cleanliness: 5, WalkScore: 80, DistanceToCityCenter: 4.0},
		{Name: "near", OverallRating: 4.5, ReputationScore: 9, Cleanliness: 5, WalkScore: 80, DistanceToCityCenter: 0.5},
	}

	got := Default(records, 10)
	assert.Equal(t, "near", got[0].Name, "distance_to_city_center ascends on quality ties")
}

func TestDefaultIsStable(t *testing.T) {
	// Equal on every priority key: input order must survive.
	a := types.Listing{Name: "first", OverallRating: 4.0}
	b := types.Listing{Name: "second", OverallRating: 4.0}

	got := Default([]types.Listing{a, b}, 10)
	assert.Equal(t, "first", got[0].Name)
	assert.Equal(t, "second", got[1].Name)

	got = Default([]types.Listing{b, a}, 10)
	assert.Equal(t, "second", got[0].Name)
}

func TestDefaultDoesNotMutateInput(t *testing.T) {
	records := []types.Listing{
		{Name: "b", OverallRating: 1},
		{Name: "a", OverallRating: 5},
	}
	_ = Default(records, 10)
	assert.Equal(t, "b", records[0].Name)
}

func TestDefaultTruncatesLast(t *testing.T) {
	var records []types.Listing
	for i := 0; i < 8; i++ {
		records = append(records, types.Listing{Name: string(rune('a' + i)), OverallRating: float64(i)})
	}

	got := Default(records, 3)
	require.Len(t, got, 3)
	// Highest rated survive the cut, so truncation happened after sorting.
	assert.Equal(t, "h", got[0].Name)
	assert.Equal(t, "g", got[1].Name)
	assert.Equal(t, "f", got[2].Name)
}

func TestWithPreferencesRoomTypeSubstring(t *testing.T) {
	records := []types.Listing{
		{Name: "l1", RoomType: "Entire home/apt", Price: 150},
		{Name: "l2", RoomType: "Private room", Price: 60},
		{Name: "l3", RoomType: "ENTIRE loft", Price: 90},
		{Name: "l4", RoomType: "Shared room", Price: 30},
		{Name: "l5", RoomType: "entire studio", Price: 120},
		{Name: "l6", RoomType: "Private room", Price: 75},
		{Name: "l7", RoomType: "Hotel room", Price: 200},
		{Name: "l8", RoomType: "Entire villa", Price: 300},
		{Name: "l9", RoomType: "Private room", Price: 55},
		{Name: "l10", RoomType: "Shared room", Price: 25},
	}

	got := WithPreferences(records, map[string]any{"room_type": "entire"}, "price", 3)
	require.Len(t, got, 3)
	assert.Equal(t, "l3", got[0].Name)
	assert.Equal(t, "l5", got[1].Name)
	assert.Equal(t, "l1", got[2].Name)
	for _, r := range got {
		assert.Contains(t, []string{"l1", "l3", "l5", "l8"}, r.Name)
	}
}

func TestWithPreferencesNumericExactMatch(t *testing.T) {
	records := []types.Listing{
		{Name: "four", OverallRating: 4.0},
		{Name: "four-five", OverallRating: 4.5},
	}

	got := WithPreferences(records, map[string]any{"overall_rating": 4.5}, "", 10)
	require.Len(t, got, 1)
	assert.Equal(t, "four-five", got[0].Name)
}

func TestWithPreferencesUnknownFilterIgnored(t *testing.T) {
	records := []types.Listing{listing("a", 10, 4), listing("b", 20, 5)}

	got := WithPreferences(records, map[string]any{"pet_friendlyness": true}, "", 10)
	assert.Len(t, got, 2, "unknown filter fields must not drop records")
}

func TestWithPreferencesNoFiltersNoSortKey(t *testing.T) {
	records := []types.Listing{listing("c", 3, 1), listing("a", 1, 3), listing("b", 2, 2)}

	got := WithPreferences(records, nil, "", 2)
	require.Len(t, got, 2)
	assert.Equal(t, "c", got[0].Name, "input order preserved when nothing is requested")
	assert.Equal(t, "a", got[1].Name)
}

func TestWithPreferencesSortDirections(t *testing.T) {
	records := []types.Listing{
		listing("cheap", 40, 3.0),
		listing("dear", 200, 4.9),
		listing("mid", 90, 4.1),
	}

	byPrice := WithPreferences(records, nil, "price", 10)
	assert.Equal(t, []string{"cheap", "mid", "dear"}, names(byPrice))

	byRating := WithPreferences(records, nil, "overall_rating", 10)
	assert.Equal(t, []string{"dear", "mid", "cheap"}, names(byRating))
}

func TestWithPreferencesMissingSortKeyKeepsOrder(t *testing.T) {
	records := []types.Listing{listing("z", 5, 1), listing("y", 1, 2)}

	got := WithPreferences(records, nil, "no_such_metric", 10)
	assert.Equal(t, []string{"z", "y"}, names(got))
}

func TestWithPreferencesEmptyResultIsNotAnError(t *testing.T) {
	records := []types.Listing{listing("a", 10, 4)}
	got := WithPreferences(records, map[string]any{"name": "nothing matches this"}, "", 10)
	assert.Empty(t, got)
}

func names(records []types.Listing) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Name
	}
	return out
}
