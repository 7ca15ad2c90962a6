package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/tripcraft/go-travel-planner/internal/api/enrichment"
	"github.com/tripcraft/go-travel-planner/internal/api/itinerary"
	"github.com/tripcraft/go-travel-planner/internal/api/place"
	"github.com/tripcraft/go-travel-planner/internal/api/poi"
)

// Config contains the handlers the router wires up. Server-wide middleware
// (request id, logger, recoverer) is applied in main before mounting.
type Config struct {
	PlaceHandler      *place.PlaceHandler
	EnrichmentHandler *enrichment.EnrichmentHandler
	POIHandler        *poi.POIHandler
	ItineraryHandler  *itinerary.ItineraryHandler
}

// SetupRouter initializes and configures the main application router.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000", "http://localhost:5000", "http://localhost:5173"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("pong"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", cfg.ItineraryHandler.Health)
		r.Get("/status", cfg.ItineraryHandler.Status)

		// Form vocabularies
		r.Get("/styles", cfg.ItineraryHandler.Styles)
		r.Get("/interests", cfg.ItineraryHandler.Interests)
		r.Get("/groups", cfg.ItineraryHandler.Groups)

		// Place resolution
		r.Get("/autocomplete", cfg.PlaceHandler.Autocomplete)

		// Enrichment lookups
		r.Post("/weather", cfg.EnrichmentHandler.Weather)
		r.Post("/timezone", cfg.EnrichmentHandler.Timezone)
		r.Get("/country-info", cfg.EnrichmentHandler.CountryInfo)
		r.Get("/travel-advisory", cfg.EnrichmentHandler.Advisory)
		r.Get("/exchange-rate", cfg.EnrichmentHandler.ExchangeRate)

		// POIs and routing
		r.Get("/pois", cfg.POIHandler.GetPOIs)
		r.Get("/hotels", cfg.POIHandler.GetHotels)
		r.Post("/route", cfg.POIHandler.GetRoute)

		// Aggregation pipeline
		r.Post("/generate-itinerary", cfg.ItineraryHandler.GenerateItinerary)
		r.Post("/itinerary/pdf", cfg.ItineraryHandler.ExportPDF)
	})

	return r
}
