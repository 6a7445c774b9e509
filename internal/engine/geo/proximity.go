package geo

import "sort"

// Defaults for the proximity join, matching the recommendation defaults used
// across the service layer.
const (
	DefaultMaxDistanceKm = 2.0
	DefaultLimit         = 5
)

// Locatable is any record carrying optional coordinates. Records reporting
// ok=false are skipped by Nearest, not treated as errors.
type Locatable interface {
	Coordinates() (lat, lon float64, ok bool)
}

// WithDistance annotates a record with its computed distance to the query
// target. It is produced fresh per request and never cached across targets.
type WithDistance[T any] struct {
	Item       T       `json:"item"`
	DistanceKm float64 `json:"distance_km"`
}

// Field lets annotated records flow through the ranking engine: distance_km
// resolves to the annotation, everything else to the wrapped record.
func (w WithDistance[T]) Field(name string) (any, bool) {
	if name == "distance_km" || name == "distance_to_place" {
		return w.DistanceKm, true
	}
	if r, ok := any(w.Item).(interface {
		Field(string) (any, bool)
	}); ok {
		return r.Field(name)
	}
	return nil, false
}

// Nearest returns the candidates within maxKm of target, each annotated with
// its distance, sorted ascending by distance. limit <= 0 means no truncation.
// The same call serves both directions of the join: attractions near a
// lodging and lodgings near an attraction only swap the candidate set.
func Nearest[T Locatable](target Point, candidates []T, maxKm float64, limit int) []WithDistance[T] {
	if maxKm <= 0 {
		maxKm = DefaultMaxDistanceKm
	}

	results := make([]WithDistance[T], 0, len(candidates))
	for _, c := range candidates {
		lat, lon, ok := c.Coordinates()
		if !ok {
			continue
		}
		d := DistanceKm(target, Point{Lat: lat, Lon: lon})
		if d <= maxKm {
			results = append(results, WithDistance[T]{Item: c, DistanceKm: d})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].DistanceKm < results[j].DistanceKm
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}
