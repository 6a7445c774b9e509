// Package weather fetches current conditions and daily forecasts from
// OpenWeather. The provider returns forecasts in 3-hour slots; the daily
// forecast aggregates the slots of the requested day.
package weather

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"net/url"
	"time"

	"github.com/tripflow/tripflow-api/internal/clients/httpx"
	"github.com/tripflow/tripflow-api/internal/engine/rescache"
	"github.com/tripflow/tripflow-api/internal/engine/resilience"
	"github.com/tripflow/tripflow-api/internal/types"
)

const defaultBaseURL = "https://api.openweathermap.org/data/2.5"

type Client struct {
	http    *httpx.Client
	apiKey  string
	baseURL string

	current  *resilience.Caller[types.WeatherReport]
	forecast *resilience.Caller[types.WeatherForecast]
}

// New wires the weather client. cache may be shared with other clients; keys
// are namespaced per operation.
func New(apiKey string, cache *rescache.Cache, logger *slog.Logger) *Client {
	policy := resilience.DefaultPolicy()
	return &Client{
		http:     httpx.New("openweather", httpx.Config{Timeout: 10 * time.Second}, logger),
		apiKey:   apiKey,
		baseURL:  defaultBaseURL,
		current:  resilience.NewCaller[types.WeatherReport]("weather.current", policy, cache, 0, logger),
		forecast: resilience.NewCaller[types.WeatherForecast]("weather.forecast", policy, cache, 0, logger),
	}
}

// WithBaseURL points the client at a different endpoint, used by tests.
func (c *Client) WithBaseURL(u string) *Client {
	c.baseURL = u
	return c
}

type conditions struct {
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  float64 `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Dt int64 `json:"dt"`
}

// Current returns the present conditions for a city.
func (c *Client) Current(ctx context.Context, city string) (types.WeatherReport, error) {
	if city == "" {
		return types.WeatherReport{}, fmt.Errorf("%w: city required", types.ErrValidation)
	}
	if c.apiKey == "" {
		return types.WeatherReport{}, fmt.Errorf("%w: OPENWEATHER_API_KEY not set", types.ErrConfiguration)
	}

	args := map[string]any{"city": city}
	return c.current.Do(ctx, args, func(ctx context.Context) (types.WeatherReport, error) {
		var resp struct {
			conditions
			Name string `json:"name"`
		}
		query := url.Values{
			"q":     {city},
			"appid": {c.apiKey},
			"units": {"metric"},
		}
		if err := c.http.GetJSON(ctx, c.baseURL+"/weather", query, nil, &resp); err != nil {
			return types.WeatherReport{}, fmt.Errorf("current weather for %s: %w", city, err)
		}

		name := resp.Name
		if name == "" {
			name = city
		}
		desc := ""
		if len(resp.Weather) > 0 {
			desc = resp.Weather[0].Description
		}
		return types.WeatherReport{
			City:      name,
			Date:      time.Now().UTC().Format("2006-01-02"),
			TempC:     resp.Main.Temp,
			FeelsLike: resp.Main.FeelsLike,
			Weather:   desc,
			Humidity:  resp.Main.Humidity,
			WindSpeed: resp.Wind.Speed,
		}, nil
	})
}

// Forecast returns the aggregated forecast for a city on one day
// (YYYY-MM-DD): mean temperature, feels-like, humidity and wind over the
// day's 3-hour slots, with the most frequent description.
func (c *Client) Forecast(ctx context.Context, city, date string) (types.WeatherForecast, error) {
	if city == "" {
		return types.WeatherForecast{}, fmt.Errorf("%w: city required", types.ErrValidation)
	}
	target, err := time.Parse("2006-01-02", date)
	if err != nil {
		return types.WeatherForecast{}, fmt.Errorf("%w: date %q not in YYYY-MM-DD form", types.ErrValidation, date)
	}
	if c.apiKey == "" {
		return types.WeatherForecast{}, fmt.Errorf("%w: OPENWEATHER_API_KEY not set", types.ErrConfiguration)
	}

	args := map[string]any{"city": city, "date": date}
	return c.forecast.Do(ctx, args, func(ctx context.Context) (types.WeatherForecast, error) {
		var resp struct {
			List []conditions `json:"list"`
			City struct {
				Name string `json:"name"`
			} `json:"city"`
		}
		query := url.Values{
			"q":     {city},
			"appid": {c.apiKey},
			"units": {"metric"},
		}
		if err := c.http.GetJSON(ctx, c.baseURL+"/forecast", query, nil, &resp); err != nil {
			return types.WeatherForecast{}, fmt.Errorf("forecast for %s: %w", city, err)
		}

		day := target.Format("2006-01-02")
		var slots []conditions
		for _, slot := range resp.List {
			if time.Unix(slot.Dt, 0).UTC().Format("2006-01-02") == day {
				slots = append(slots, slot)
			}
		}
		if len(slots) == 0 {
			return types.WeatherForecast{}, fmt.Errorf("%w: no forecast data for %s on %s", types.ErrNotFound, city, day)
		}

		var temp, feels, hum, wind float64
		descCount := make(map[string]int)
		for _, s := range slots {
			temp += s.Main.Temp
			feels += s.Main.FeelsLike
			hum += s.Main.Humidity
			wind += s.Wind.Speed
			if len(s.Weather) > 0 {
				descCount[s.Weather[0].Description]++
			}
		}
		n := float64(len(slots))

		common, best := "", 0
		for desc, count := range descCount {
			if count > best || (count == best && desc < common) {
				common, best = desc, count
			}
		}

		name := resp.City.Name
		if name == "" {
			name = city
		}
		return types.WeatherForecast{
			City:         name,
			Date:         day,
			AvgTempC:     round1(temp / n),
			AvgFeelsLike: round1(feels / n),
			Weather:      common,
			Humidity:     round1(hum / n),
			WindSpeed:    round1(wind / n),
		}, nil
	})
}

func round1(f float64) float64 {
	return math.Round(f*10) / 10
}
