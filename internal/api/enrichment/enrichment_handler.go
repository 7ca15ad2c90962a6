package enrichment

import (
	"log/slog"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/tripcraft/go-travel-planner/internal/api"
)

type EnrichmentHandler struct {
	enrichmentService Service
	logger            *slog.Logger
}

func NewEnrichmentHandler(enrichmentService Service, logger *slog.Logger) *EnrichmentHandler {
	return &EnrichmentHandler{
		enrichmentService: enrichmentService,
		logger:            logger,
	}
}

// Weather returns the daily forecast for a destination's coordinates.
func (h *EnrichmentHandler) Weather(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("EnrichmentHandler").Start(r.Context(), "Weather", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/api/weather"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "Weather"))

	var req struct {
		Destination string  `json:"destination"`
		Lat         float64 `json:"lat"`
		Lon         float64 `json:"lon"`
		Days        int     `json:"days"`
	}
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.ErrorContext(ctx, "Failed to decode request body", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Destination) == "" || (req.Lat == 0 && req.Lon == 0) {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Missing destination or coordinates")
		return
	}
	if req.Days <= 0 {
		req.Days = 7
	}

	weather, err := h.enrichmentService.Weather(ctx, req.Lat, req.Lon, req.Days)
	if err != nil {
		l.ErrorContext(ctx, "Weather fetch failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Weather service unavailable")
		return
	}

	l.InfoContext(ctx, "Weather fetched", slog.String("destination", req.Destination))
	api.WriteJSONResponse(w, r, http.StatusOK, weather)
}

// Timezone returns the timezone for a coordinate pair.
func (h *EnrichmentHandler) Timezone(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("EnrichmentHandler").Start(r.Context(), "Timezone", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/api/timezone"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "Timezone"))

	var req struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	}
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.ErrorContext(ctx, "Failed to decode request body", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if req.Lat == 0 && req.Lon == 0 {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Missing coordinates")
		return
	}

	tz, err := h.enrichmentService.Timezone(ctx, req.Lat, req.Lon)
	if err != nil {
		l.ErrorContext(ctx, "Timezone fetch failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Timezone service unavailable")
		return
	}

	l.InfoContext(ctx, "Timezone fetched", slog.String("timezone", tz.Timezone))
	api.WriteJSONResponse(w, r, http.StatusOK, tz)
}

// CountryInfo returns country metadata including currency.
func (h *EnrichmentHandler) CountryInfo(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("EnrichmentHandler").Start(r.Context(), "CountryInfo", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/api/country-info"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "CountryInfo"))

	countryName := strings.TrimSpace(r.URL.Query().Get("country"))
	if countryName == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Missing country name")
		return
	}

	info, err := h.enrichmentService.CountryInfo(ctx, countryName)
	if err != nil {
		l.ErrorContext(ctx, "Country info fetch failed", slog.Any("error", err), slog.String("country", countryName))
		api.ErrorResponse(w, r, http.StatusNotFound, "Country not found")
		return
	}

	l.InfoContext(ctx, "Country info fetched",
		slog.String("country", countryName), slog.String("currency", info.CurrencyCode))
	api.WriteJSONResponse(w, r, http.StatusOK, info)
}

// Advisory returns the travel advisory for a 2-letter country code.
func (h *EnrichmentHandler) Advisory(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("EnrichmentHandler").Start(r.Context(), "Advisory", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/api/travel-advisory"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "Advisory"))

	code := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("country")))
	if len(code) != 2 {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid country code (must be 2-letter ISO code)")
		return
	}

	advisory, err := h.enrichmentService.Advisory(ctx, code)
	if err != nil {
		l.ErrorContext(ctx, "Advisory fetch failed", slog.Any("error", err), slog.String("country_code", code))
		api.ErrorResponse(w, r, http.StatusNotFound, "Advisory not available for this country")
		return
	}

	l.InfoContext(ctx, "Travel advisory fetched",
		slog.String("country_code", code), slog.String("level", advisory.Level))
	api.WriteJSONResponse(w, r, http.StatusOK, advisory)
}

// ExchangeRate returns the rate for a currency pair.
func (h *EnrichmentHandler) ExchangeRate(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("EnrichmentHandler").Start(r.Context(), "ExchangeRate", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/api/exchange-rate"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "ExchangeRate"))

	from := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("from")))
	to := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("to")))
	if from == "" {
		from = "USD"
	}
	if to == "" {
		to = "EUR"
	}
	if len(from) != 3 || len(to) != 3 {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid currency code (must be 3-letter ISO code)")
		return
	}

	rate, err := h.enrichmentService.ExchangeRate(ctx, from, to)
	if err != nil {
		l.ErrorContext(ctx, "Exchange rate fetch failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusNotFound, "Exchange rate not available")
		return
	}

	l.InfoContext(ctx, "Exchange rate fetched",
		slog.String("from", from), slog.String("to", to), slog.Float64("rate", rate.Rate))
	api.WriteJSONResponse(w, r, http.StatusOK, rate)
}
