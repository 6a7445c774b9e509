package types

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Listing is a lodging row from the listings table. Latitude/Longitude are
// pointers because some imported rows have no coordinates; those rows are
// skipped by proximity operations rather than treated as errors. Extra holds
// attributes outside the fixed schema so ranking filters can still reach them.
type Listing struct {
	ID                   uuid.UUID      `json:"id"`
	Name                 string         `json:"name"`
	City                 string         `json:"city"`
	RoomType             string         `json:"room_type"`
	Price                float64        `json:"price"`
	OverallRating        float64        `json:"overall_rating"`
	ReputationScore      float64        `json:"reputation_score"`
	Cleanliness          float64        `json:"cleanliness"`
	WalkScore            float64        `json:"walk_score"`
	DistanceToCityCenter float64        `json:"distance_to_city_center"`
	DistanceToMetro      float64        `json:"distance_to_metro"`
	NearbyAttractions    float64        `json:"nearby_attractions"`
	Latitude             *float64       `json:"latitude,omitempty"`
	Longitude            *float64       `json:"longitude,omitempty"`
	Extra                map[string]any `json:"extra,omitempty"`
}

// Field resolves a named attribute for filtering and sorting. Unknown names
// fall through to the Extra bag.
func (l Listing) Field(name string) (any, bool) {
	switch strings.ToLower(name) {
	case "name":
		return l.Name, true
	case "city":
		return l.City, true
	case "room_type":
		return l.RoomType, true
	case "price":
		return l.Price, true
	case "overall_rating":
		return l.OverallRating, true
	case "reputation_score":
		return l.ReputationScore, true
	case "cleanliness":
		return l.Cleanliness, true
	case "walk_score":
		return l.WalkScore, true
	case "distance_to_city_center":
		return l.DistanceToCityCenter, true
	case "distance_to_metro":
		return l.DistanceToMetro, true
	case "nearby_attractions":
		return l.NearbyAttractions, true
	}
	v, ok := l.Extra[name]
	return v, ok
}

// Coordinates reports the listing position, ok=false when either side is missing.
func (l Listing) Coordinates() (lat, lon float64, ok bool) {
	if l.Latitude == nil || l.Longitude == nil {
		return 0, 0, false
	}
	return *l.Latitude, *l.Longitude, true
}

// Place is a point of interest (attraction, museum, park) from the places table.
type Place struct {
	ID          uuid.UUID      `json:"id"`
	Name        string         `json:"name"`
	City        string         `json:"city"`
	Category    string         `json:"category"`
	Rating      float64        `json:"rating"`
	Description string         `json:"description,omitempty"`
	Latitude    *float64       `json:"latitude,omitempty"`
	Longitude   *float64       `json:"longitude,omitempty"`
	Extra       map[string]any `json:"extra,omitempty"`
}

func (p Place) Field(name string) (any, bool) {
	switch strings.ToLower(name) {
	case "name":
		return p.Name, true
	case "city":
		return p.City, true
	case "category":
		return p.Category, true
	case "rating":
		return p.Rating, true
	case "description":
		return p.Description, true
	}
	v, ok := p.Extra[name]
	return v, ok
}

func (p Place) Coordinates() (lat, lon float64, ok bool) {
	if p.Latitude == nil || p.Longitude == nil {
		return 0, 0, false
	}
	return *p.Latitude, *p.Longitude, true
}

// WeatherReport is the current-conditions shape returned by the weather client.
type WeatherReport struct {
	City      string  `json:"city"`
	Date      string  `json:"date"`
	TempC     float64 `json:"temp_c"`
	FeelsLike float64 `json:"feels_like"`
	Weather   string  `json:"weather"`
	Humidity  float64 `json:"humidity"`
	WindSpeed float64 `json:"wind"`
}

// WeatherForecast is a one-day aggregate over the provider's 3-hourly slots.
type WeatherForecast struct {
	City         string  `json:"city"`
	Date         string  `json:"date"`
	AvgTempC     float64 `json:"avg_temp_c"`
	AvgFeelsLike float64 `json:"avg_feels_like"`
	Weather      string  `json:"weather"`
	Humidity     float64 `json:"humidity"`
	WindSpeed    float64 `json:"wind"`
}

// FlightOffer is one flattened flight-offers result.
type FlightOffer struct {
	PriceTotal  string   `json:"price_total"`
	Currency    string   `json:"currency"`
	Airlines    []string `json:"airlines"`
	From        string   `json:"from"`
	To          string   `json:"to"`
	DepartureAt string   `json:"departure_at"`
	ArrivalAt   string   `json:"arrival_at"`
}

// FlightSearchResult wraps the offers with the resolved route.
type FlightSearchResult struct {
	Origin      string        `json:"origin"`
	Destination string        `json:"destination"`
	Date        string        `json:"date"`
	Count       int           `json:"count"`
	Items       []FlightOffer `json:"items"`
}

// Event is one upcoming event from the events provider.
type Event struct {
	Name  string `json:"name"`
	Date  string `json:"date,omitempty"`
	Time  string `json:"time,omitempty"`
	URL   string `json:"url,omitempty"`
	Venue string `json:"venue,omitempty"`
}

// TransitStop is one public transport result (station, stop, airport).
type TransitStop struct {
	Name    string  `json:"name"`
	Address string  `json:"address,omitempty"`
	Rating  float64 `json:"rating,omitempty"`
	PlaceID string  `json:"place_id"`
	Type    string  `json:"type"`
}

// UserLocation is an IP-derived approximate position.
type UserLocation struct {
	City      string   `json:"city"`
	Region    string   `json:"region,omitempty"`
	Country   string   `json:"country,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// Itinerary is a stored trip plan.
type Itinerary struct {
	ID          uuid.UUID `json:"id"`
	UserID      string    `json:"user_id"`
	Destination string    `json:"destination"`
	Content     string    `json:"itinerary"`
	CreatedAt   time.Time `json:"created_at"`
}

// TripBrief aggregates the per-city context fetched for itinerary composition.
// Sections that failed to load are nil; the brief itself is not an error.
type TripBrief struct {
	City     string           `json:"city"`
	Weather  *WeatherForecast `json:"weather,omitempty"`
	Events   []Event          `json:"events,omitempty"`
	Transit  []TransitStop    `json:"transit,omitempty"`
	Warnings []string         `json:"warnings,omitempty"`
}
