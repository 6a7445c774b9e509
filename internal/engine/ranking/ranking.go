// Package ranking turns raw record collections into ordered recommendations.
// All entry points are deterministic, never mutate their input, and truncate
// to topN only after filtering and sorting.
package ranking

import (
	"sort"
	"strings"
)

// DefaultTopN bounds result sets when the caller does not say otherwise.
const DefaultTopN = 5

// Record exposes named fields for filtering and sorting. types.Listing,
// types.Place and geo.WithDistance all satisfy it.
type Record interface {
	Field(name string) (any, bool)
}

type keyOrder struct {
	key       string
	ascending bool
}

// listingRankKeys is the fixed priority order behind RankDefault. The order
// and directions are part of the contract: quality metrics descend, cost and
// distance metrics ascend. Extending to another domain means adding a new
// named table, not changing this one.
var listingRankKeys = []keyOrder{
	{"overall_rating", false},
	{"reputation_score", false},
	{"cleanliness", false},
	{"walk_score", false},
	{"distance_to_city_center", true},
	{"distance_to_metro", true},
	{"nearby_attractions", true},
}

// ascendingKeys lists the sort keys that mean "smaller is better" for
// caller-chosen sorting; every other key sorts descending.
var ascendingKeys = map[string]struct{}{
	"price":                   {},
	"distance_to_city_center": {},
	"distance_to_metro":       {},
	"distance_to_place":       {},
	"distance_km":             {},
	"duration_minutes":        {},
}

// Default ranks records by the fixed lodging priority table as a stable
// multi-key sort: ties on key i break on key i+1, and records equal on every
// key keep their input order.
func Default[T Record](records []T, topN int) []T {
	out := make([]T, len(records))
	copy(out, records)

	sort.SliceStable(out, func(i, j int) bool {
		for _, k := range listingRankKeys {
			vi, iok := out[i].Field(k.key)
			vj, jok := out[j].Field(k.key)
			if !iok || !jok {
				continue
			}
			cmp := compareValues(vi, vj)
			if cmp == 0 {
				continue
			}
			if k.ascending {
				return cmp < 0
			}
			return cmp > 0
		}
		return false
	})

	return truncate(out, topN)
}

// WithPreferences applies field filters, then an optional caller-chosen sort.
// Text filters match case-insensitive substrings; numeric and boolean filters
// match exactly. A filter naming a field no record carries is ignored, so a
// partial or misspelled preference set degrades instead of erroring. When
// sortKey is present in no remaining record, the filtered order is kept.
func WithPreferences[T Record](records []T, filters map[string]any, sortKey string, topN int) []T {
	out := make([]T, len(records))
	copy(out, records)

	for field, want := range filters {
		if !anyHasField(out, field) {
			continue
		}
		kept := out[:0:0]
		for _, r := range out {
			v, ok := r.Field(field)
			if ok && matches(v, want) {
				kept = append(kept, r)
			}
		}
		out = kept
	}

	if sortKey != "" && anyHasField(out, sortKey) {
		_, asc := ascendingKeys[strings.ToLower(sortKey)]
		sort.SliceStable(out, func(i, j int) bool {
			vi, iok := out[i].Field(sortKey)
			vj, jok := out[j].Field(sortKey)
			if !iok || !jok {
				// Records lacking the key sink to the end.
				return iok && !jok
			}
			cmp := compareValues(vi, vj)
			if asc {
				return cmp < 0
			}
			return cmp > 0
		})
	}

	return truncate(out, topN)
}

func truncate[T any](records []T, topN int) []T {
	if topN <= 0 {
		topN = DefaultTopN
	}
	if len(records) > topN {
		return records[:topN]
	}
	return records
}

func anyHasField[T Record](records []T, field string) bool {
	for _, r := range records {
		if _, ok := r.Field(field); ok {
			return true
		}
	}
	return false
}

// matches implements the filter semantics: substring match for text against
// text, exact equality for everything else.
func matches(have, want any) bool {
	hs, hok := have.(string)
	if hok {
		ws, wok := want.(string)
		if wok {
			return strings.Contains(strings.ToLower(hs), strings.ToLower(ws))
		}
		return false
	}

	hf, hok := toFloat(have)
	wf, wok := toFloat(want)
	if hok && wok {
		return hf == wf
	}
	return have == want
}

// compareValues orders two field values: numerics numerically, strings
// lexicographically (case-insensitive), everything else as equal.
func compareValues(a, b any) int {
	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	if aok && bok {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	}

	as, aok2 := a.(string)
	bs, bok2 := b.(string)
	if aok2 && bok2 {
		return strings.Compare(strings.ToLower(as), strings.ToLower(bs))
	}
	return 0
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
