// Package transit discovers public transport options in a city through the
// Google Places text search API. One city lookup fans out over a fixed set of
// queries (bus, train, metro, airport) and merges the results.
package transit

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/tripflow/tripflow-api/internal/clients/httpx"
	"github.com/tripflow/tripflow-api/internal/engine/rescache"
	"github.com/tripflow/tripflow-api/internal/engine/resilience"
	"github.com/tripflow/tripflow-api/internal/types"
)

const (
	defaultBaseURL = "https://maps.googleapis.com"
	maxStops       = 15
)

// searchQueries are the transport categories probed per city, in merge order.
var searchQueries = []string{
	"public transport",
	"bus station",
	"train station",
	"metro station",
	"airport",
}

type Client struct {
	http    *httpx.Client
	apiKey  string
	baseURL string

	search *resilience.Caller[[]types.TransitStop]
	detail *resilience.Caller[types.TransitStop]
}

func New(apiKey string, cache *rescache.Cache, logger *slog.Logger) *Client {
	policy := resilience.DefaultPolicy()
	return &Client{
		http:    httpx.New("google-places", httpx.Config{Timeout: 15 * time.Second}, logger),
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		search:  resilience.NewCaller[[]types.TransitStop]("transit.search", policy, cache, 0, logger),
		detail:  resilience.NewCaller[types.TransitStop]("transit.detail", policy, cache, 0, logger),
	}
}

func (c *Client) WithBaseURL(u string) *Client {
	c.baseURL = u
	return c
}

type textSearchResponse struct {
	Status  string `json:"status"`
	Results []struct {
		Name             string  `json:"name"`
		FormattedAddress string  `json:"formatted_address"`
		Rating           float64 `json:"rating"`
		PlaceID          string  `json:"place_id"`
	} `json:"results"`
}

// Options returns up to fifteen transport stops in the city, deduplicated by
// place ID across the query fan-out. A query that fails only drops its own
// category; the merged result from the remaining queries still comes back.
func (c *Client) Options(ctx context.Context, city string) ([]types.TransitStop, error) {
	if city == "" {
		return nil, fmt.Errorf("%w: city required", types.ErrValidation)
	}
	if c.apiKey == "" {
		return nil, fmt.Errorf("%w: Google Places API key not set", types.ErrConfiguration)
	}

	args := map[string]any{"city": city}
	return c.search.Do(ctx, args, func(ctx context.Context) ([]types.TransitStop, error) {
		seen := make(map[string]bool)
		var out []types.TransitStop
		var lastErr error

		for _, q := range searchQueries {
			var resp textSearchResponse
			query := url.Values{
				"query": {q + " in " + city},
				"key":   {c.apiKey},
			}
			if err := c.http.GetJSON(ctx, c.baseURL+"/maps/api/place/textsearch/json", query, nil, &resp); err != nil {
				lastErr = fmt.Errorf("transit query %q: %w", q, err)
				continue
			}
			for _, r := range resp.Results {
				if r.PlaceID == "" || seen[r.PlaceID] {
					continue
				}
				seen[r.PlaceID] = true
				out = append(out, types.TransitStop{
					Name:    r.Name,
					Address: r.FormattedAddress,
					Rating:  r.Rating,
					PlaceID: r.PlaceID,
					Type:    q,
				})
				if len(out) == maxStops {
					return out, nil
				}
			}
		}
		if len(out) == 0 && lastErr != nil {
			return nil, lastErr
		}
		return out, nil
	})
}

// Detail fetches one stop by its place ID.
func (c *Client) Detail(ctx context.Context, placeID string) (types.TransitStop, error) {
	var zero types.TransitStop
	if placeID == "" {
		return zero, fmt.Errorf("%w: place id required", types.ErrValidation)
	}
	if c.apiKey == "" {
		return zero, fmt.Errorf("%w: Google Places API key not set", types.ErrConfiguration)
	}

	args := map[string]any{"place_id": placeID}
	return c.detail.Do(ctx, args, func(ctx context.Context) (types.TransitStop, error) {
		var resp struct {
			Status string `json:"status"`
			Result struct {
				Name             string  `json:"name"`
				FormattedAddress string  `json:"formatted_address"`
				Rating           float64 `json:"rating"`
				PlaceID          string  `json:"place_id"`
			} `json:"result"`
		}
		query := url.Values{
			"place_id": {placeID},
			"fields":   {"name,formatted_address,rating,place_id"},
			"key":      {c.apiKey},
		}
		if err := c.http.GetJSON(ctx, c.baseURL+"/maps/api/place/details/json", query, nil, &resp); err != nil {
			return zero, fmt.Errorf("transit detail %s: %w", placeID, err)
		}
		if resp.Status == "NOT_FOUND" || resp.Result.PlaceID == "" {
			return zero, fmt.Errorf("%w: place %s", types.ErrNotFound, placeID)
		}
		return types.TransitStop{
			Name:    resp.Result.Name,
			Address: resp.Result.FormattedAddress,
			Rating:  resp.Result.Rating,
			PlaceID: resp.Result.PlaceID,
			Type:    "detail",
		}, nil
	})
}
