// Package lib holds small shared lookup helpers: the airport-code table and
// the landmark-to-city gazetteer used to anchor free-text trip requests.
package lib

import (
	"strings"

	a "github.com/petar-dambovaliev/aho-corasick"
)

// airportCodes maps well-known cities to their primary IATA code.
var airportCodes = map[string]string{
	"jakarta": "CGK", "paris": "CDG", "amsterdam": "AMS", "berlin": "BER", "rome": "FCO",
	"vienna": "VIE", "budapest": "BUD", "athens": "ATH", "barcelona": "BCN", "lisbon": "LIS",
	"london": "LHR", "madrid": "MAD", "zurich": "ZRH", "brussels": "BRU", "oslo": "OSL",
	"stockholm": "ARN", "helsinki": "HEL", "new york": "JFK", "los angeles": "LAX",
	"chicago": "ORD", "san francisco": "SFO", "miami": "MIA", "toronto": "YYZ", "vancouver": "YVR",
	"singapore": "SIN", "kuala lumpur": "KUL", "bangkok": "BKK", "hong kong": "HKG",
	"tokyo": "HND", "seoul": "ICN", "beijing": "PEK", "shanghai": "PVG", "delhi": "DEL", "mumbai": "BOM",
	"cairo": "CAI", "johannesburg": "JNB", "nairobi": "NBO", "lagos": "LOS", "cape town": "CPT",
}

// AirportCode resolves a city name to its IATA code.
func AirportCode(city string) (string, bool) {
	code, ok := airportCodes[strings.ToLower(strings.TrimSpace(city))]
	return code, ok
}

// landmarkToCity maps famous landmark fragments to their city.
var landmarkToCity = map[string]string{
	// Paris
	"eiffel": "paris", "louvre": "paris", "notre dame": "paris", "arc de triomphe": "paris",
	// London
	"big ben": "london", "tower bridge": "london", "buckingham": "london",
	// Rome
	"colosseum": "rome", "vatican": "rome", "pantheon": "rome",
	// Berlin
	"brandenburg": "berlin", "berlin wall": "berlin",
	// Barcelona
	"sagrada familia": "barcelona", "park guell": "barcelona",
}

var landmarkMatcher = func() a.AhoCorasick {
	builder := a.NewAhoCorasickBuilder(a.Opts{
		AsciiCaseInsensitive: true,
	})
	patterns := make([]string, 0, len(landmarkToCity))
	for fragment := range landmarkToCity {
		patterns = append(patterns, fragment)
	}
	return builder.Build(patterns)
}()

// LandmarkCity scans free text for a known landmark and returns its city in
// lowercase. ok=false when no landmark appears.
func LandmarkCity(text string) (string, bool) {
	if text == "" {
		return "", false
	}
	lowered := strings.ToLower(text)
	matches := landmarkMatcher.FindAll(lowered)
	if len(matches) == 0 {
		return "", false
	}
	fragment := lowered[matches[0].Start():matches[0].End()]
	city, ok := landmarkToCity[fragment]
	return city, ok
}
