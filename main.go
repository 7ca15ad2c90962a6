package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"

	appLogger "github.com/tripcraft/go-travel-planner/app/logger"
	"github.com/tripcraft/go-travel-planner/app/observability/metrics"
	"github.com/tripcraft/go-travel-planner/app/tracer"
	"github.com/tripcraft/go-travel-planner/config"
	"github.com/tripcraft/go-travel-planner/internal/api/enrichment"
	generativeAI "github.com/tripcraft/go-travel-planner/internal/api/generative_ai"
	"github.com/tripcraft/go-travel-planner/internal/api/itinerary"
	"github.com/tripcraft/go-travel-planner/internal/api/place"
	"github.com/tripcraft/go-travel-planner/internal/api/poi"
	"github.com/tripcraft/go-travel-planner/internal/api/transport"
	"github.com/tripcraft/go-travel-planner/internal/router"
)

func main() {
	// Use standard log until slog is configured, in case godotenv fails
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found or error loading:", err)
	}

	cfg, err := config.InitConfig()
	if err != nil {
		log.Fatalf("FATAL: Error initializing config: %v", err)
	}

	logger := setupLogger(cfg.Mode)
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	tracer.InitTracingAndMetrics(cfg.Handlers.Prometheus.Port)
	metrics.InitAppMetrics()

	// --- Dependency Injection ---
	aiClient, err := generativeAI.NewAIClient(ctx, cfg.LLM.Model)
	if err != nil {
		logger.Error("Failed to initialize AI client", slog.Any("error", err))
		os.Exit(1)
	}

	placeClient := place.NewClientImpl(&cfg, logger)
	placeService := place.NewServiceImpl(placeClient, logger)
	placeHandler := place.NewPlaceHandler(placeService, logger)

	enrichmentService := enrichment.NewServiceImpl(
		enrichment.NewOpenMeteoClient(&cfg),
		enrichment.NewGeoNamesClient(&cfg),
		enrichment.NewRestCountriesClient(&cfg, logger),
		enrichment.NewTravelAdvisoryClient(&cfg),
		enrichment.NewExchangeRateClient(&cfg),
		placeClient,
		logger,
	)
	enrichmentHandler := enrichment.NewEnrichmentHandler(enrichmentService, logger)

	poiService := poi.NewServiceImpl(poi.NewGeoapifyClient(&cfg), logger)
	poiHandler := poi.NewPOIHandler(poiService, logger)

	transportService := transport.NewServiceImpl(transport.NewTequilaClient(&cfg, logger), logger)

	itineraryService := itinerary.NewServiceImpl(
		aiClient,
		placeService,
		enrichmentService,
		poiService,
		transportService,
		logger,
	)
	itineraryHandler := itinerary.NewItineraryHandler(itineraryService, cfg.Mode, logger)

	mainRouter := router.SetupRouter(&router.Config{
		PlaceHandler:      placeHandler,
		EnrichmentHandler: enrichmentHandler,
		POIHandler:        poiHandler,
		ItineraryHandler:  itineraryHandler,
	})

	mux := chi.NewMux()
	mux.Use(middleware.RequestID)
	mux.Use(middleware.RealIP)
	mux.Use(appLogger.StructuredLogger(logger))
	mux.Use(middleware.Recoverer)
	mux.Use(middleware.StripSlashes)
	mux.Use(middleware.Timeout(cfg.Server.Timeout))
	mux.Use(middleware.Compress(5, "application/json"))
	mux.Mount("/", mainRouter)

	serverAddress := fmt.Sprintf(":%s", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         serverAddress,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	go func() {
		logger.Info("Starting HTTP server", slog.String("address", serverAddress))
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server ListenAndServe error", slog.Any("error", err))
			cancel()
		}
	}()

	<-ctx.Done()

	logger.Info("Shutdown signal received, starting graceful shutdown...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server graceful shutdown failed", slog.Any("error", err))
	} else {
		logger.Info("HTTP server gracefully stopped")
	}
	logger.Info("Application shut down complete.")
}

// setupLogger configures the application logger: colored logs in
// development, JSON otherwise.
func setupLogger(mode string) *slog.Logger {
	var logger *slog.Logger
	if mode == "development" || mode == "" {
		tintOpts := &tint.Options{
			Level:      slog.LevelDebug,
			TimeFormat: time.Kitchen,
			AddSource:  true,
		}
		logger = slog.New(tint.NewHandler(os.Stdout, tintOpts))
		log.Println("Initialized development logger (tint)")
	} else {
		jsonOpts := &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}
		logger = slog.New(slog.NewJSONHandler(os.Stdout, jsonOpts))
		log.Println("Initialized production logger (JSON)")
	}
	return logger
}
