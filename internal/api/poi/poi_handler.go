package poi

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/tripcraft/go-travel-planner/internal/api"
	"github.com/tripcraft/go-travel-planner/internal/types"
)

type POIHandler struct {
	poiService Service
	logger     *slog.Logger
}

func NewPOIHandler(poiService Service, logger *slog.Logger) *POIHandler {
	return &POIHandler{
		poiService: poiService,
		logger:     logger,
	}
}

func parseCoordinates(r *http.Request) (float64, float64, bool) {
	lat, errLat := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	lon, errLon := strconv.ParseFloat(r.URL.Query().Get("lon"), 64)
	if errLat != nil || errLon != nil || (lat == 0 && lon == 0) {
		return 0, 0, false
	}
	return lat, lon, true
}

func parseCSV(raw string) []string {
	var values []string
	for _, value := range strings.Split(raw, ",") {
		if value = strings.TrimSpace(value); value != "" {
			values = append(values, value)
		}
	}
	return values
}

// GetPOIs returns nearby points of interest for the given coordinates.
// Callers pass either explicit comma-separated kinds or interest tags;
// interests are classified into kinds when no kinds are given.
func (h *POIHandler) GetPOIs(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("POIHandler").Start(r.Context(), "GetPOIs", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/api/pois"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "GetPOIs"))

	lat, lon, ok := parseCoordinates(r)
	if !ok {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Missing or invalid coordinates")
		return
	}

	kinds := parseCSV(r.URL.Query().Get("kinds"))
	if len(kinds) == 0 {
		if interests := parseCSV(r.URL.Query().Get("interests")); len(interests) > 0 {
			kinds = h.poiService.KindsForInterests(interests)
		}
	}
	radius, _ := strconv.Atoi(r.URL.Query().Get("radius"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	pois, err := h.poiService.GetPOIs(ctx, lat, lon, kinds, radius, limit)
	if err != nil {
		l.ErrorContext(ctx, "Failed to fetch POIs", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "POI service unavailable")
		return
	}

	l.InfoContext(ctx, "POIs fetched", slog.Int("count", len(pois)))
	api.WriteJSONResponse(w, r, http.StatusOK, pois)
}

// GetHotels returns nearby lodging suggestions.
func (h *POIHandler) GetHotels(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("POIHandler").Start(r.Context(), "GetHotels", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/api/hotels"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "GetHotels"))

	lat, lon, ok := parseCoordinates(r)
	if !ok {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Missing or invalid coordinates")
		return
	}
	radius, _ := strconv.Atoi(r.URL.Query().Get("radius"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	hotels, err := h.poiService.GetHotels(ctx, lat, lon, radius, limit)
	if err != nil {
		l.ErrorContext(ctx, "Failed to fetch hotels", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Hotel service unavailable")
		return
	}

	l.InfoContext(ctx, "Hotels fetched", slog.Int("count", len(hotels)))
	api.WriteJSONResponse(w, r, http.StatusOK, hotels)
}

// GetRoute returns a route between two coordinate pairs. An unroutable
// pair yields an unavailability message, not an error status.
func (h *POIHandler) GetRoute(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("POIHandler").Start(r.Context(), "GetRoute", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/api/route"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "GetRoute"))

	var req struct {
		Source      types.PlaceReference `json:"source"`
		Destination types.PlaceReference `json:"destination"`
	}
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.ErrorContext(ctx, "Failed to decode request body", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	route := h.poiService.GetRoute(ctx, req.Source, req.Destination)
	l.InfoContext(ctx, "Route computed", slog.Bool("available", route.Available))
	api.WriteJSONResponse(w, r, http.StatusOK, route)
}
