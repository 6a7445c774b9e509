package recommend

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tripflow/tripflow-api/internal/engine/geo"
	"github.com/tripflow/tripflow-api/internal/engine/ranking"
	"github.com/tripflow/tripflow-api/internal/types"
)

// Handler exposes the recommendation service over HTTP.
type Handler struct {
	svc    Service
	logger *slog.Logger
}

func NewHandler(svc Service, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// Routes mounts the handler under a chi router.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/recommendations/{city}", h.defaultForCity)
	r.Post("/recommendations/{city}/preferences", h.withPreferences)
	r.Post("/recommendations/{city}/near-place", h.nearPlace)
	r.Get("/listings/{id}/attractions", h.attractionsNearListing)
	r.Get("/trips/brief", h.tripBrief)
}

func (h *Handler) defaultForCity(w http.ResponseWriter, r *http.Request) {
	city := chi.URLParam(r, "city")
	topN := queryInt(r, "top_n", ranking.DefaultTopN)

	ranked, err := h.svc.DefaultForCity(r.Context(), city, topN)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"city":  city,
		"count": len(ranked),
		"items": emptyIfNil(ranked),
	})
}

type preferencesRequest struct {
	Filters map[string]any `json:"filters"`
	SortKey string         `json:"sort_key"`
	TopN    int            `json:"top_n"`
}

func (h *Handler) withPreferences(w http.ResponseWriter, r *http.Request) {
	city := chi.URLParam(r, "city")

	var req preferencesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.TopN == 0 {
		req.TopN = ranking.DefaultTopN
	}

	ranked, err := h.svc.WithPreferences(r.Context(), city, req.Filters, req.SortKey, req.TopN)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"city":  city,
		"count": len(ranked),
		"items": emptyIfNil(ranked),
	})
}

type nearPlaceRequest struct {
	Place         string         `json:"place"`
	Latitude      *float64       `json:"latitude"`
	Longitude     *float64       `json:"longitude"`
	Filters       map[string]any `json:"filters"`
	SortKey       string         `json:"sort_key"`
	TopN          int            `json:"top_n"`
	MaxDistanceKm float64        `json:"max_distance_km"`
}

func (h *Handler) nearPlace(w http.ResponseWriter, r *http.Request) {
	city := chi.URLParam(r, "city")

	var req nearPlaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.TopN == 0 {
		req.TopN = ranking.DefaultTopN
	}

	target := ranking.Target{Name: req.Place}
	if req.Latitude != nil && req.Longitude != nil {
		p, err := geo.NewPoint(*req.Latitude, *req.Longitude)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		target.Point = &p
	}

	near, err := h.svc.NearPlace(r.Context(), city, target, req.Filters, req.SortKey, req.TopN, req.MaxDistanceKm)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"city":  city,
		"place": req.Place,
		"count": len(near),
		"items": emptyIfNil(near),
	})
}

func (h *Handler) attractionsNearListing(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	maxKm := queryFloat(r, "max_km", geo.DefaultMaxDistanceKm)
	topN := queryInt(r, "top_n", ranking.DefaultTopN)

	near, err := h.svc.AttractionsNearListing(r.Context(), id, maxKm, topN)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"listing_id": id,
		"count":      len(near),
		"items":      emptyIfNil(near),
	})
}

func (h *Handler) tripBrief(w http.ResponseWriter, r *http.Request) {
	city := r.URL.Query().Get("city")
	date := r.URL.Query().Get("date")

	brief, err := h.svc.TripBrief(r.Context(), city, date)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, brief)
}

// writeError maps the failure taxonomy onto HTTP statuses.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, types.ErrValidation) || errors.Is(err, types.ErrBadRequest):
		writeErrorMessage(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, types.ErrNotFound):
		writeErrorMessage(w, http.StatusNotFound, err.Error())
	case errors.Is(err, types.ErrConfiguration):
		h.logger.ErrorContext(r.Context(), "request hit missing configuration", slog.Any("error", err))
		writeErrorMessage(w, http.StatusServiceUnavailable, "service not configured for this operation")
	case errors.Is(err, types.ErrTransient):
		writeErrorMessage(w, http.StatusBadGateway, "upstream temporarily unavailable")
	default:
		h.logger.ErrorContext(r.Context(), "request failed", slog.Any("error", err))
		writeErrorMessage(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeErrorMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func queryInt(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func queryFloat(r *http.Request, key string, def float64) float64 {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

// emptyIfNil keeps JSON arrays as [] instead of null.
func emptyIfNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
