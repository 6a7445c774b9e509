package main

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"github.com/tripflow/tripflow-api/internal/types"
)

// SetupRouter configures all routes and returns the HTTP handler.
func SetupRouter(deps *Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if deps.Config.Server.RateLimitPerSecond > 0 && deps.Config.Server.RateLimitBurst > 0 {
		limiter := rate.NewLimiter(
			rate.Limit(float64(deps.Config.Server.RateLimitPerSecond)),
			deps.Config.Server.RateLimitBurst,
		)
		r.Use(rateLimitMiddleware(limiter))
	}

	r.Get("/health", healthHandler(deps))
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		deps.RecommendHandler.Routes(r)
		deps.ItineraryHandler.Routes(r)

		r.Get("/weather", weatherHandler(deps))
		r.Get("/weather/forecast", forecastHandler(deps))
		r.Get("/flights", flightsHandler(deps))
		r.Get("/events", eventsHandler(deps))
		r.Get("/transit", transitHandler(deps))
		r.Get("/transit/{placeID}", transitDetailHandler(deps))
		r.Get("/whereami", whereamiHandler(deps))
	})

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: deps.Config.Server.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
	})
	return corsHandler.Handler(r)
}

func rateLimitMiddleware(limiter *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				respondError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func healthHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := deps.DB.Health(r.Context()); err != nil {
			respondJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "degraded", "database": err.Error(),
			})
			return
		}
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func weatherHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report, err := deps.Weather.Current(r.Context(), r.URL.Query().Get("city"))
		if err != nil {
			respondClientError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, report)
	}
}

func forecastHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		forecast, err := deps.Weather.Forecast(r.Context(), q.Get("city"), q.Get("date"))
		if err != nil {
			respondClientError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, forecast)
	}
}

func flightsHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		origin := q.Get("origin")
		if origin == "" {
			origin = deps.Config.Providers.DefaultOriginCity
		}
		result, err := deps.Flights.Search(r.Context(), origin, q.Get("destination"), q.Get("date"))
		if err != nil {
			respondClientError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, result)
	}
}

func eventsHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		evs, err := deps.Events.Upcoming(r.Context(), q.Get("city"), q.Get("date"))
		if err != nil {
			respondClientError(w, err)
			return
		}
		if evs == nil {
			evs = []types.Event{}
		}
		respondJSON(w, http.StatusOK, map[string]any{"count": len(evs), "items": evs})
	}
}

func transitHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stops, err := deps.Transit.Options(r.Context(), r.URL.Query().Get("city"))
		if err != nil {
			respondClientError(w, err)
			return
		}
		if stops == nil {
			stops = []types.TransitStop{}
		}
		respondJSON(w, http.StatusOK, map[string]any{"count": len(stops), "items": stops})
	}
}

func transitDetailHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stop, err := deps.Transit.Detail(r.Context(), chi.URLParam(r, "placeID"))
		if err != nil {
			respondClientError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, stop)
	}
}

func whereamiHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := r.URL.Query().Get("ip")
		if ip == "" {
			// RealIP middleware has already unwrapped proxy headers.
			host, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				host = r.RemoteAddr
			}
			ip = host
		}
		loc, err := deps.GeoIP.Locate(r.Context(), ip)
		if err != nil {
			respondClientError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, loc)
	}
}

// respondClientError maps the failure taxonomy onto HTTP statuses for the
// thin pass-through endpoints.
func respondClientError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, types.ErrValidation) || errors.Is(err, types.ErrBadRequest):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, types.ErrNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, types.ErrConfiguration):
		respondError(w, http.StatusServiceUnavailable, "service not configured for this operation")
	case errors.Is(err, types.ErrTransient):
		respondError(w, http.StatusBadGateway, "upstream temporarily unavailable")
	default:
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}
