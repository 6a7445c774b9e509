// Package httpx is the shared outbound HTTP layer for the travel API
// clients. Every request passes a per-host rate limiter and a circuit
// breaker, carries a bounded timeout, and comes back either decoded or as a
// classified failure (transient / configuration / validation) so the
// resilience layer can decide whether to retry.
package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/tripflow/tripflow-api/internal/types"
	"github.com/tripflow/tripflow-api/pkg/observability"
)

// Config tunes one upstream client.
type Config struct {
	// Timeout bounds a single round trip. Defaults to 10s.
	Timeout time.Duration

	// RateLimit and RateBurst throttle outbound requests to the upstream.
	// Zero disables throttling.
	RateLimit rate.Limit
	RateBurst int

	// Breaker trip settings; zero values take the defaults below.
	BreakerMinRequests      uint32
	BreakerFailureThreshold float64
	BreakerTimeout          time.Duration
}

// Client wraps one upstream host.
type Client struct {
	name    string
	http    *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
	logger  *slog.Logger
}

// New builds a client for the named upstream.
func New(name string, cfg Config, logger *slog.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.BreakerMinRequests == 0 {
		cfg.BreakerMinRequests = 5
	}
	if cfg.BreakerFailureThreshold == 0 {
		cfg.BreakerFailureThreshold = 0.6
	}
	if cfg.BreakerTimeout <= 0 {
		cfg.BreakerTimeout = 60 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	var limiter *rate.Limiter
	if cfg.RateLimit > 0 && cfg.RateBurst > 0 {
		limiter = rate.NewLimiter(cfg.RateLimit, cfg.RateBurst)
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    name,
		Timeout: cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.BreakerMinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return ratio >= cfg.BreakerFailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			observability.BreakerTransitions.WithLabelValues(name, to.String()).Inc()
			logger.Warn("circuit breaker state changed",
				slog.String("circuit", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()))
		},
	})

	return &Client{
		name:    name,
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: limiter,
		breaker: breaker,
		logger:  logger,
	}
}

// GetJSON performs a GET with query parameters and decodes the JSON response
// body into out.
func (c *Client) GetJSON(ctx context.Context, rawURL string, query url.Values, header http.Header, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", types.ErrValidation, err)
	}
	if query != nil {
		req.URL.RawQuery = query.Encode()
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	return c.do(req, out)
}

// PostForm performs a form-encoded POST and decodes the JSON response into out.
func (c *Client) PostForm(ctx context.Context, rawURL string, form url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("%w: %v", types.ErrValidation, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(req.Context()); err != nil {
			return fmt.Errorf("%w: rate limiter: %v", types.ErrTransient, err)
		}
	}

	body, err := c.breaker.Execute(func() (any, error) {
		resp, err := c.http.Do(req)
		if err != nil {
			return nil, classifyTransport(err)
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
		if err != nil {
			return nil, fmt.Errorf("%w: reading response: %v", types.ErrTransient, err)
		}
		if err := classifyStatus(resp.StatusCode); err != nil {
			return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL.Host, err)
		}
		return data, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			err = fmt.Errorf("%w: circuit %s open: %v", types.ErrTransient, c.name, err)
		}
		observability.ExternalFailures.WithLabelValues(c.name, classLabel(err)).Inc()
		return err
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body.([]byte), out); err != nil {
		return fmt.Errorf("%w: decoding %s response: %v", types.ErrTransient, c.name, err)
	}
	return nil
}

// classifyTransport maps network-level failures. Context cancellation keeps
// its own identity so the retry loop stops instead of retrying it.
func classifyTransport(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: timeout: %v", types.ErrTransient, err)
	}
	return fmt.Errorf("%w: %v", types.ErrTransient, err)
}

// classifyStatus maps upstream status codes onto the failure taxonomy:
// 429 and 5xx are retryable, credential rejections are configuration
// problems, remaining 4xx mean the request itself was malformed.
func classifyStatus(status int) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusTooManyRequests || status >= 500:
		return fmt.Errorf("%w: upstream status %d", types.ErrTransient, status)
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("%w: upstream status %d", types.ErrConfiguration, status)
	default:
		return fmt.Errorf("%w: upstream status %d", types.ErrValidation, status)
	}
}

func classLabel(err error) string {
	switch {
	case errors.Is(err, types.ErrTransient):
		return "transient"
	case errors.Is(err, types.ErrConfiguration):
		return "configuration"
	case errors.Is(err, types.ErrValidation):
		return "validation"
	default:
		return "other"
	}
}
