package itinerary

import (
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/tripcraft/go-travel-planner/internal/api"
	"github.com/tripcraft/go-travel-planner/internal/types"
)

type ItineraryHandler struct {
	itineraryService Service
	logger           *slog.Logger
	mode             string
}

func NewItineraryHandler(itineraryService Service, mode string, logger *slog.Logger) *ItineraryHandler {
	return &ItineraryHandler{
		itineraryService: itineraryService,
		logger:           logger,
		mode:             mode,
	}
}

// GenerateItinerary runs the full aggregation pipeline for a trip request.
func (h *ItineraryHandler) GenerateItinerary(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ItineraryHandler").Start(r.Context(), "GenerateItinerary", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/api/generate-itinerary"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "GenerateItinerary"))

	var req types.TripRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.ErrorContext(ctx, "Failed to decode request body", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	req.Normalize()
	if err := req.Validate(); err != nil {
		l.InfoContext(ctx, "Rejected invalid trip request", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	response, err := h.itineraryService.GenerateItinerary(ctx, &req)
	if err != nil {
		l.ErrorContext(ctx, "Itinerary generation failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to generate itinerary")
		return
	}

	l.InfoContext(ctx, "Itinerary generated",
		slog.String("destination", req.Destination), slog.Int("days", req.Days))
	api.WriteJSONResponse(w, r, http.StatusOK, response)
}

// ExportPDF renders a previously generated itinerary as a PDF download.
func (h *ItineraryHandler) ExportPDF(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ItineraryHandler").Start(r.Context(), "ExportPDF", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/api/itinerary/pdf"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "ExportPDF"))

	var req PDFRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.ErrorContext(ctx, "Failed to decode request body", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	pdfBytes, err := GeneratePDFBytes(&req)
	if err != nil {
		l.ErrorContext(ctx, "PDF generation failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="itinerary.pdf"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(pdfBytes)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(pdfBytes); err != nil {
		l.ErrorContext(ctx, "Failed to write PDF response", slog.Any("error", err))
	}
}

// Styles returns the selectable travel styles.
func (h *ItineraryHandler) Styles(w http.ResponseWriter, r *http.Request) {
	api.WriteJSONResponse(w, r, http.StatusOK, types.TravelStyles)
}

// Interests returns the selectable interest tags.
func (h *ItineraryHandler) Interests(w http.ResponseWriter, r *http.Request) {
	api.WriteJSONResponse(w, r, http.StatusOK, types.Interests)
}

// Groups returns the selectable group types.
func (h *ItineraryHandler) Groups(w http.ResponseWriter, r *http.Request) {
	api.WriteJSONResponse(w, r, http.StatusOK, types.GroupTypes)
}

// Health reports process health and which provider keys are configured.
func (h *ItineraryHandler) Health(w http.ResponseWriter, r *http.Request) {
	api.WriteJSONResponse(w, r, http.StatusOK, map[string]interface{}{
		"status":      "healthy",
		"environment": h.mode,
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
		"env_vars_set": map[string]bool{
			"GOOGLE_GEMINI_API_KEY": os.Getenv("GOOGLE_GEMINI_API_KEY") != "",
			"GEOAPIFY_API_KEY":      os.Getenv("GEOAPIFY_API_KEY") != "",
			"TEQUILA_API_KEY":       os.Getenv("TEQUILA_API_KEY") != "",
		},
	})
}

// Status reports application identity and configuration.
func (h *ItineraryHandler) Status(w http.ResponseWriter, r *http.Request) {
	api.WriteJSONResponse(w, r, http.StatusOK, map[string]interface{}{
		"app":         "Travel Planner API",
		"version":     "1.0.0",
		"environment": h.mode,
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
	})
}
