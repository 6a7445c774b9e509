// Package geoip resolves an approximate user position from an IP address via
// ipinfo.io. The lookup is best effort: a missing or unparsable "loc" field
// yields a location without coordinates, not an error.
package geoip

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tripflow/tripflow-api/internal/clients/httpx"
	"github.com/tripflow/tripflow-api/internal/engine/rescache"
	"github.com/tripflow/tripflow-api/internal/engine/resilience"
	"github.com/tripflow/tripflow-api/internal/types"
)

const defaultBaseURL = "https://ipinfo.io"

type Client struct {
	http    *httpx.Client
	token   string
	baseURL string

	lookup *resilience.Caller[types.UserLocation]
}

// New builds the client. token may be empty; ipinfo serves unauthenticated
// requests at a lower quota.
func New(token string, cache *rescache.Cache, logger *slog.Logger) *Client {
	return &Client{
		http:    httpx.New("ipinfo", httpx.Config{Timeout: 10 * time.Second}, logger),
		token:   token,
		baseURL: defaultBaseURL,
		lookup:  resilience.NewCaller[types.UserLocation]("geoip.lookup", resilience.DefaultPolicy(), cache, 0, logger),
	}
}

func (c *Client) WithBaseURL(u string) *Client {
	c.baseURL = u
	return c
}

// Locate resolves ip to a city-level position. An empty ip asks ipinfo about
// the caller's own egress address.
func (c *Client) Locate(ctx context.Context, ip string) (types.UserLocation, error) {
	args := map[string]any{"ip": ip}
	return c.lookup.Do(ctx, args, func(ctx context.Context) (types.UserLocation, error) {
		var zero types.UserLocation
		var resp struct {
			City    string `json:"city"`
			Region  string `json:"region"`
			Country string `json:"country"`
			Loc     string `json:"loc"`
		}

		endpoint := c.baseURL + "/json"
		if ip != "" {
			endpoint = c.baseURL + "/" + url.PathEscape(ip) + "/json"
		}
		var query url.Values
		if c.token != "" {
			query = url.Values{"token": {c.token}}
		}
		if err := c.http.GetJSON(ctx, endpoint, query, nil, &resp); err != nil {
			return zero, fmt.Errorf("geoip lookup: %w", err)
		}

		loc := types.UserLocation{
			City:    resp.City,
			Region:  resp.Region,
			Country: resp.Country,
		}
		if lat, lon, ok := parseLoc(resp.Loc); ok {
			loc.Latitude = &lat
			loc.Longitude = &lon
		}
		return loc, nil
	})
}

// parseLoc splits ipinfo's "lat,lon" field.
func parseLoc(loc string) (lat, lon float64, ok bool) {
	parts := strings.SplitN(loc, ",", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, false
	}
	lon, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, false
	}
	return lat, lon, true
}
