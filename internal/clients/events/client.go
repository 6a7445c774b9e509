// Package events lists upcoming events for a city through the Ticketmaster
// Discovery API.
package events

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"github.com/tripflow/tripflow-api/internal/clients/httpx"
	"github.com/tripflow/tripflow-api/internal/engine/rescache"
	"github.com/tripflow/tripflow-api/internal/engine/resilience"
	"github.com/tripflow/tripflow-api/internal/types"
)

const (
	defaultBaseURL = "https://app.ticketmaster.com"
	maxEvents      = 10
)

type Client struct {
	http    *httpx.Client
	apiKey  string
	baseURL string

	search *resilience.Caller[[]types.Event]
}

func New(apiKey string, cache *rescache.Cache, logger *slog.Logger) *Client {
	return &Client{
		http:    httpx.New("ticketmaster", httpx.Config{Timeout: 15 * time.Second}, logger),
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		search:  resilience.NewCaller[[]types.Event]("events.search", resilience.DefaultPolicy(), cache, 0, logger),
	}
}

func (c *Client) WithBaseURL(u string) *Client {
	c.baseURL = u
	return c
}

// Upcoming returns up to ten events in the city sorted by date, soonest
// first. date (YYYY-MM-DD) is optional; when set only events starting on or
// after that day are returned. An empty slice is a valid answer for a quiet
// city.
func (c *Client) Upcoming(ctx context.Context, city, date string) ([]types.Event, error) {
	if city == "" {
		return nil, fmt.Errorf("%w: city required", types.ErrValidation)
	}
	if date != "" {
		if _, err := time.Parse("2006-01-02", date); err != nil {
			return nil, fmt.Errorf("%w: date %q not in YYYY-MM-DD form", types.ErrValidation, date)
		}
	}
	if c.apiKey == "" {
		return nil, fmt.Errorf("%w: Ticketmaster API key not set", types.ErrConfiguration)
	}

	args := map[string]any{"city": city, "date": date}
	return c.search.Do(ctx, args, func(ctx context.Context) ([]types.Event, error) {
		var resp struct {
			Embedded struct {
				Events []struct {
					Name  string `json:"name"`
					URL   string `json:"url"`
					Dates struct {
						Start struct {
							LocalDate string `json:"localDate"`
							LocalTime string `json:"localTime"`
						} `json:"start"`
					} `json:"dates"`
					Embedded struct {
						Venues []struct {
							Name string `json:"name"`
						} `json:"venues"`
					} `json:"_embedded"`
				} `json:"events"`
			} `json:"_embedded"`
		}

		query := url.Values{
			"apikey": {c.apiKey},
			"city":   {city},
			"size":   {strconv.Itoa(maxEvents)},
			"sort":   {"date,asc"},
		}
		if date != "" {
			query.Set("startDateTime", date+"T00:00:00Z")
		}
		if err := c.http.GetJSON(ctx, c.baseURL+"/discovery/v2/events.json", query, nil, &resp); err != nil {
			return nil, fmt.Errorf("events for %s: %w", city, err)
		}

		out := make([]types.Event, 0, len(resp.Embedded.Events))
		for _, ev := range resp.Embedded.Events {
			if len(out) == maxEvents {
				break
			}
			e := types.Event{
				Name: ev.Name,
				Date: ev.Dates.Start.LocalDate,
				Time: ev.Dates.Start.LocalTime,
				URL:  ev.URL,
			}
			if len(ev.Embedded.Venues) > 0 {
				e.Venue = ev.Embedded.Venues[0].Name
			}
			out = append(out, e)
		}
		return out, nil
	})
}
