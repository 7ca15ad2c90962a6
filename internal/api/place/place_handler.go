package place

import (
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/tripcraft/go-travel-planner/internal/api"
)

type PlaceHandler struct {
	placeService Service
	logger       *slog.Logger
}

func NewPlaceHandler(placeService Service, logger *slog.Logger) *PlaceHandler {
	return &PlaceHandler{
		placeService: placeService,
		logger:       logger,
	}
}

// Autocomplete returns ranked place candidates for a query string.
func (h *PlaceHandler) Autocomplete(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("PlaceHandler").Start(r.Context(), "Autocomplete", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/api/autocomplete"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "Autocomplete"))

	query := r.URL.Query().Get("q")
	results, err := h.placeService.Autocomplete(ctx, query, 10)
	if err != nil {
		l.ErrorContext(ctx, "Autocomplete failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Autocomplete service unavailable")
		return
	}

	l.InfoContext(ctx, "Autocomplete completed", slog.String("query", query), slog.Int("results", len(results)))
	api.WriteJSONResponse(w, r, http.StatusOK, results)
}
