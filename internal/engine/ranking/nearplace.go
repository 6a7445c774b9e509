package ranking

import (
	"strings"

	"github.com/tripflow/tripflow-api/internal/engine/geo"
	"github.com/tripflow/tripflow-api/internal/types"
)

// Target names the anchor of a near-place query. Explicit coordinates take
// precedence over the place name when both are set.
type Target struct {
	Name  string
	Point *geo.Point
}

// NearPlaceOptions tunes the proximity stage of NearPlace.
type NearPlaceOptions struct {
	// MaxDistanceKm bounds the join radius; <= 0 uses geo.DefaultMaxDistanceKm.
	MaxDistanceKm float64
}

// ResolveTarget finds the anchor point among the reference places by
// case-insensitive name. ok=false means "no such place", which is a normal
// empty outcome for callers, not a failure.
func ResolveTarget(target Target, places []types.Place) (geo.Point, bool) {
	if target.Point != nil {
		return *target.Point, true
	}
	name := strings.ToLower(strings.TrimSpace(target.Name))
	if name == "" {
		return geo.Point{}, false
	}
	for _, p := range places {
		if strings.ToLower(p.Name) != name {
			continue
		}
		lat, lon, ok := p.Coordinates()
		if !ok {
			continue
		}
		return geo.Point{Lat: lat, Lon: lon}, true
	}
	return geo.Point{}, false
}

// NearPlace joins listings against the resolved anchor and ranks the result.
// The join annotates each listing with distance_km exactly once; when filters
// or a sort key are supplied the annotated records flow through
// WithPreferences, otherwise they stay in ascending distance order. Either
// way truncation to topN happens last, so the join itself is not capped.
func NearPlace(listings []types.Listing, places []types.Place, target Target, filters map[string]any, sortKey string, topN int, opts NearPlaceOptions) []geo.WithDistance[types.Listing] {
	anchor, ok := ResolveTarget(target, places)
	if !ok {
		return nil
	}

	annotated := geo.Nearest(anchor, listings, opts.MaxDistanceKm, 0)

	if len(filters) > 0 || sortKey != "" {
		return WithPreferences(annotated, filters, sortKey, topN)
	}
	return truncate(annotated, topN)
}
