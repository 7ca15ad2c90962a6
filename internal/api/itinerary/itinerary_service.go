package itinerary

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"google.golang.org/genai"

	"github.com/tripcraft/go-travel-planner/app/observability/metrics"
	"github.com/tripcraft/go-travel-planner/internal/api/enrichment"
	"github.com/tripcraft/go-travel-planner/internal/api/place"
	"github.com/tripcraft/go-travel-planner/internal/api/poi"
	"github.com/tripcraft/go-travel-planner/internal/api/transport"
	"github.com/tripcraft/go-travel-planner/internal/types"
)

const (
	mealPOIRadius = 1500
	mealPOILimit  = 18
	hotelRadius   = 2500
	hotelLimit    = 6
)

// ContentGenerator is the LLM call the planner depends on; satisfied by
// the generative AI client.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, prompt string, config *genai.GenerateContentConfig) (string, error)
}

var _ Service = (*ServiceImpl)(nil)

// Service runs the aggregation pipeline behind the generate endpoint.
type Service interface {
	GenerateItinerary(ctx context.Context, req *types.TripRequest) (*types.GenerateItineraryResponse, error)
}

type ServiceImpl struct {
	logger            *slog.Logger
	generator         ContentGenerator
	placeService      place.Service
	enrichmentService enrichment.Service
	poiService        poi.Service
	transportService  transport.Service
	history           *costHistory
}

func NewServiceImpl(
	generator ContentGenerator,
	placeService place.Service,
	enrichmentService enrichment.Service,
	poiService poi.Service,
	transportService transport.Service,
	logger *slog.Logger,
) *ServiceImpl {
	return &ServiceImpl{
		logger:            logger,
		generator:         generator,
		placeService:      placeService,
		enrichmentService: enrichmentService,
		poiService:        poiService,
		transportService:  transportService,
		history:           newCostHistory(),
	}
}

// GenerateItinerary resolves the trip endpoints, enriches the
// destination, generates the LLM plan and budget, prices transport, and
// merges everything into one normalized response. Enrichment failures
// degrade silently; only planner or budget failure aborts the request.
func (s *ServiceImpl) GenerateItinerary(ctx context.Context, req *types.TripRequest) (*types.GenerateItineraryResponse, error) {
	ctx, span := otel.Tracer("ItineraryService").Start(ctx, "GenerateItinerary")
	defer span.End()
	start := time.Now()

	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	l := s.logger.With(
		slog.String("source", req.Source),
		slog.String("destination", req.Destination),
		slog.Int("days", req.Days),
		slog.Int("travelers", req.Travelers),
	)
	l.InfoContext(ctx, "Generating itinerary")

	sourceRef := s.placeService.Resolve(ctx, req.Source, req.SourceDetails)
	destRef := s.placeService.Resolve(ctx, req.Destination, req.DestinationDetails)
	span.SetAttributes(
		attribute.Bool("place.source_resolved", sourceRef.Resolved()),
		attribute.Bool("place.destination_resolved", destRef.Resolved()),
	)

	enriched := s.enrichmentService.Enrich(ctx, destRef, req.Destination, req.Days)

	var mealPOIs, hotels []types.POIDetail
	if destRef.Resolved() {
		var err error
		mealPOIs, err = s.poiService.GetPOIs(ctx, destRef.Lat, destRef.Lon,
			[]string{"foods", "cafes", "restaurants"}, mealPOIRadius, mealPOILimit)
		if err != nil {
			l.WarnContext(ctx, "Meal POI lookup failed", slog.Any("error", err))
		}
		hotels, err = s.poiService.GetHotels(ctx, destRef.Lat, destRef.Lon, hotelRadius, hotelLimit)
		if err != nil {
			l.WarnContext(ctx, "Hotel lookup failed", slog.Any("error", err))
		}
	}

	itineraryRaw, err := s.generatePlan(ctx, req)
	if err != nil {
		metrics.Get().ItineraryRequestsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", "error")))
		return nil, fmt.Errorf("planner failed to return itinerary data: %w", err)
	}

	plan := normalizeItineraryCosts(itineraryRaw.Clone(), req.Budget)
	if len(mealPOIs) > 0 {
		plan = applyMealPOIs(plan, mealPOIs)
		plan = normalizeItineraryCosts(plan, req.Budget)
	}
	if len(hotels) > 0 {
		plan = injectHotelRecommendations(plan, hotels, req.Destination)
	}

	budgetRaw, err := s.generateBudget(ctx, req)
	if err != nil {
		metrics.Get().ItineraryRequestsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", "error")))
		return nil, fmt.Errorf("budget agent failed to return data: %w", err)
	}
	budget := normalizeBudgetEstimate(budgetRaw.Clone(), req.Budget, req.Days)

	transportOptions := s.transportService.BuildPricing(ctx, sourceRef, destRef, req.StartDate, req.Travelers)
	for i := range transportOptions.Quotes {
		NormalizeQuote(&transportOptions.Quotes[i], req.Travelers)
	}

	applied := injectTransportCosts(plan, budget, transportOptions, s.usdRate(ctx))
	if applied != nil {
		transportOptions.AppliedQuote = applied
	}
	plan = smoothCostOutliers(plan, s.history)

	display := s.buildDisplayCurrency(enriched, budget, req.Travelers)

	itineraryNormalized := scaleItineraryForGroup(plan, req.Travelers)
	budgetNormalized := scaleBudgetForGroup(budget, req.Travelers)

	metrics.Get().ItineraryRequestsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", "success")))
	metrics.Get().ItineraryDurationSeconds.Record(ctx, time.Since(start).Seconds())
	l.InfoContext(ctx, "Itinerary generated", slog.Duration("elapsed", time.Since(start)))

	return &types.GenerateItineraryResponse{
		Success:             true,
		Itinerary:           itineraryNormalized,
		ItineraryNormalized: itineraryNormalized,
		ItineraryRaw:        itineraryRaw,
		Budget:              budgetNormalized,
		BudgetNormalized:    budgetNormalized,
		BudgetRaw:           budgetRaw,
		Transport:           transportOptions,
		Hotels:              hotels,
		Enrichment:          enriched,
		Display:             display,
		Group: &types.GroupContext{
			Type:      req.Group,
			Travelers: req.Travelers,
			StartDate: req.StartDate,
		},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}, nil
}

func (s *ServiceImpl) generatePlan(ctx context.Context, req *types.TripRequest) (*types.ItineraryPlan, error) {
	response, err := s.generator.GenerateContent(ctx, buildItineraryPrompt(req), nil)
	if err != nil {
		return nil, err
	}
	return parseItineraryPlan(response)
}

func (s *ServiceImpl) generateBudget(ctx context.Context, req *types.TripRequest) (*types.BudgetEstimate, error) {
	response, err := s.generator.GenerateContent(ctx, buildBudgetPrompt(req), nil)
	if err != nil {
		return nil, err
	}
	return parseBudgetEstimate(response)
}

// usdRate returns a lookup for converting a quote currency back into USD.
// A failed lookup falls back to rate 1, leaving the amount uninterpreted
// rather than dropping the quote.
func (s *ServiceImpl) usdRate(ctx context.Context) func(currency string) float64 {
	return func(currency string) float64 {
		rate, err := s.enrichmentService.ExchangeRate(ctx, currency, "USD")
		if err != nil || rate == nil || rate.Rate <= 0 {
			s.logger.WarnContext(ctx, "USD conversion lookup failed", slog.String("currency", currency), slog.Any("error", err))
			return 1
		}
		return rate.Rate
	}
}

// buildDisplayCurrency produces the presentation-time currency view. All
// figures pass through exactly one Converter.
func (s *ServiceImpl) buildDisplayCurrency(enriched *types.Enrichment, budget *types.BudgetEstimate, travelers int) *types.DisplayCurrency {
	if budget == nil {
		return nil
	}

	code := "USD"
	symbol := "$"
	var exchange *types.ExchangeRate
	// Without a resolved rate the display currency stays USD even when the
	// destination uses another currency.
	if enriched != nil && enriched.Country != nil && enriched.Exchange != nil && enriched.Country.CurrencyCode != "" {
		code = enriched.Country.CurrencyCode
		symbol = enriched.Country.CurrencySymbol
		exchange = enriched.Exchange
	}
	converter := NewConverter(exchange)

	groupTotal := GroupTotal(budget.TotalBudget, travelers)
	return &types.DisplayCurrency{
		Code:             code,
		Symbol:           symbol,
		Rate:             converter.Rate(),
		TotalBudget:      converter.Convert(groupTotal),
		DailyBudget:      converter.Convert(GroupTotal(budget.DailyBudget, travelers)),
		PerTravelerTotal: PerTraveler(float64(converter.Convert(groupTotal)), travelers),
	}
}
