// Package flights searches flight offers through the Amadeus self-service
// API. The OAuth token is fetched with client credentials and cached just
// under its advertised lifetime so searches rarely pay the token round trip.
package flights

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/tripflow/tripflow-api/internal/clients/httpx"
	"github.com/tripflow/tripflow-api/internal/engine/rescache"
	"github.com/tripflow/tripflow-api/internal/engine/resilience"
	"github.com/tripflow/tripflow-api/internal/lib"
	"github.com/tripflow/tripflow-api/internal/types"
)

const (
	defaultBaseURL = "https://test.api.amadeus.com"
	tokenTTL       = 25 * time.Minute
	maxOffers      = 5

	// DefaultOriginIATA stands in when the origin city cannot be resolved.
	DefaultOriginIATA = "CGK"
)

type Client struct {
	http      *httpx.Client
	apiKey    string
	apiSecret string
	baseURL   string

	token  *resilience.Caller[string]
	search *resilience.Caller[types.FlightSearchResult]
}

func New(apiKey, apiSecret string, cache *rescache.Cache, logger *slog.Logger) *Client {
	policy := resilience.DefaultPolicy()
	return &Client{
		http:      httpx.New("amadeus", httpx.Config{Timeout: 15 * time.Second}, logger),
		apiKey:    apiKey,
		apiSecret: apiSecret,
		baseURL:   defaultBaseURL,
		token:     resilience.NewCaller[string]("flights.token", policy, cache, tokenTTL, logger),
		search:    resilience.NewCaller[types.FlightSearchResult]("flights.search", policy, cache, 0, logger),
	}
}

func (c *Client) WithBaseURL(u string) *Client {
	c.baseURL = u
	return c
}

// resolveIATA maps a city name to its airport code. Free text naming a known
// landmark ("near the Eiffel Tower") resolves through the landmark gazetteer.
func resolveIATA(place string) (string, bool) {
	if code, ok := lib.AirportCode(place); ok {
		return code, true
	}
	if city, ok := lib.LandmarkCity(place); ok {
		return lib.AirportCode(city)
	}
	return "", false
}

func (c *Client) accessToken(ctx context.Context) (string, error) {
	args := map[string]any{"client_id": c.apiKey}
	return c.token.Do(ctx, args, func(ctx context.Context) (string, error) {
		var resp struct {
			AccessToken string `json:"access_token"`
		}
		form := url.Values{
			"grant_type":    {"client_credentials"},
			"client_id":     {c.apiKey},
			"client_secret": {c.apiSecret},
		}
		if err := c.http.PostForm(ctx, c.baseURL+"/v1/security/oauth2/token", form, &resp); err != nil {
			return "", fmt.Errorf("amadeus token: %w", err)
		}
		if resp.AccessToken == "" {
			return "", fmt.Errorf("%w: amadeus returned an empty access token", types.ErrConfiguration)
		}
		return resp.AccessToken, nil
	})
}

// Search finds up to five offers from originCity to destinationCity on the
// given date (YYYY-MM-DD). City names resolve to IATA codes through the
// airport table; an unresolvable origin falls back to DefaultOriginIATA,
// an unresolvable destination is a validation error.
func (c *Client) Search(ctx context.Context, originCity, destinationCity, date string) (types.FlightSearchResult, error) {
	var zero types.FlightSearchResult
	if destinationCity == "" || date == "" {
		return zero, fmt.Errorf("%w: destination city and date required", types.ErrValidation)
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return zero, fmt.Errorf("%w: date %q not in YYYY-MM-DD form", types.ErrValidation, date)
	}
	if c.apiKey == "" || c.apiSecret == "" {
		return zero, fmt.Errorf("%w: Amadeus credentials not set", types.ErrConfiguration)
	}

	destIATA, ok := resolveIATA(destinationCity)
	if !ok {
		return zero, fmt.Errorf("%w: no airport known for %q", types.ErrValidation, destinationCity)
	}
	originIATA, ok := resolveIATA(originCity)
	if !ok {
		originIATA = DefaultOriginIATA
	}

	args := map[string]any{"origin": originIATA, "destination": destIATA, "date": date}
	return c.search.Do(ctx, args, func(ctx context.Context) (types.FlightSearchResult, error) {
		token, err := c.accessToken(ctx)
		if err != nil {
			return zero, err
		}

		var resp struct {
			Data []struct {
				Price struct {
					Total    string `json:"total"`
					Currency string `json:"currency"`
				} `json:"price"`
				ValidatingAirlineCodes []string `json:"validatingAirlineCodes"`
				Itineraries            []struct {
					Segments []struct {
						Departure struct {
							IataCode string `json:"iataCode"`
							At       string `json:"at"`
						} `json:"departure"`
						Arrival struct {
							IataCode string `json:"iataCode"`
							At       string `json:"at"`
						} `json:"arrival"`
					} `json:"segments"`
				} `json:"itineraries"`
			} `json:"data"`
		}

		query := url.Values{
			"originLocationCode":      {originIATA},
			"destinationLocationCode": {destIATA},
			"departureDate":           {date},
			"adults":                  {"1"},
			"max":                     {strconv.Itoa(maxOffers)},
		}
		header := http.Header{"Authorization": {"Bearer " + token}}
		if err := c.http.GetJSON(ctx, c.baseURL+"/v2/shopping/flight-offers", query, header, &resp); err != nil {
			return zero, fmt.Errorf("flight offers %s-%s: %w", originIATA, destIATA, err)
		}

		result := types.FlightSearchResult{Origin: originIATA, Destination: destIATA, Date: date}
		for _, offer := range resp.Data {
			if len(offer.Itineraries) == 0 || len(offer.Itineraries[0].Segments) == 0 {
				continue
			}
			seg := offer.Itineraries[0].Segments[0]
			result.Items = append(result.Items, types.FlightOffer{
				PriceTotal:  offer.Price.Total,
				Currency:    offer.Price.Currency,
				Airlines:    offer.ValidatingAirlineCodes,
				From:        seg.Departure.IataCode,
				To:          seg.Arrival.IataCode,
				DepartureAt: seg.Departure.At,
				ArrivalAt:   seg.Arrival.At,
			})
		}
		result.Count = len(result.Items)
		return result, nil
	})
}
