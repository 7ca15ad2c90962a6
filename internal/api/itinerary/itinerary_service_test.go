package itinerary

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/tripcraft/go-travel-planner/app/observability/metrics"
	"github.com/tripcraft/go-travel-planner/internal/types"
)

type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) GenerateContent(ctx context.Context, prompt string, config *genai.GenerateContentConfig) (string, error) {
	args := m.Called(ctx, prompt, config)
	return args.String(0), args.Error(1)
}

type MockPlaceService struct {
	mock.Mock
}

func (m *MockPlaceService) Autocomplete(ctx context.Context, query string, limit int) ([]types.PlaceReference, error) {
	args := m.Called(ctx, query, limit)
	refs, _ := args.Get(0).([]types.PlaceReference)
	return refs, args.Error(1)
}

func (m *MockPlaceService) Resolve(ctx context.Context, raw string, detail *types.PlaceReference) types.PlaceReference {
	args := m.Called(ctx, raw, detail)
	return args.Get(0).(types.PlaceReference)
}

type MockEnrichmentService struct {
	mock.Mock
}

func (m *MockEnrichmentService) Enrich(ctx context.Context, dest types.PlaceReference, rawText string, days int) *types.Enrichment {
	args := m.Called(ctx, dest, rawText, days)
	enriched, _ := args.Get(0).(*types.Enrichment)
	return enriched
}

func (m *MockEnrichmentService) Weather(ctx context.Context, lat, lon float64, days int) (*types.WeatherForecast, error) {
	args := m.Called(ctx, lat, lon, days)
	weather, _ := args.Get(0).(*types.WeatherForecast)
	return weather, args.Error(1)
}

func (m *MockEnrichmentService) Timezone(ctx context.Context, lat, lon float64) (*types.TimezoneInfo, error) {
	args := m.Called(ctx, lat, lon)
	tz, _ := args.Get(0).(*types.TimezoneInfo)
	return tz, args.Error(1)
}

func (m *MockEnrichmentService) CountryInfo(ctx context.Context, countryName string) (*types.CountryInfo, error) {
	args := m.Called(ctx, countryName)
	info, _ := args.Get(0).(*types.CountryInfo)
	return info, args.Error(1)
}

func (m *MockEnrichmentService) Advisory(ctx context.Context, countryCode string) (*types.TravelAdvisory, error) {
	args := m.Called(ctx, countryCode)
	advisory, _ := args.Get(0).(*types.TravelAdvisory)
	return advisory, args.Error(1)
}

func (m *MockEnrichmentService) ExchangeRate(ctx context.Context, from, to string) (*types.ExchangeRate, error) {
	args := m.Called(ctx, from, to)
	rate, _ := args.Get(0).(*types.ExchangeRate)
	return rate, args.Error(1)
}

type MockPOIService struct {
	mock.Mock
}

func (m *MockPOIService) GetPOIs(ctx context.Context, lat, lon float64, kinds []string, radius, limit int) ([]types.POIDetail, error) {
	args := m.Called(ctx, lat, lon, kinds, radius, limit)
	pois, _ := args.Get(0).([]types.POIDetail)
	return pois, args.Error(1)
}

func (m *MockPOIService) GetHotels(ctx context.Context, lat, lon float64, radius, limit int) ([]types.POIDetail, error) {
	args := m.Called(ctx, lat, lon, radius, limit)
	hotels, _ := args.Get(0).([]types.POIDetail)
	return hotels, args.Error(1)
}

func (m *MockPOIService) GetRoute(ctx context.Context, from, to types.PlaceReference) *types.RouteResult {
	args := m.Called(ctx, from, to)
	route, _ := args.Get(0).(*types.RouteResult)
	return route
}

func (m *MockPOIService) KindsForInterests(interests []string) []string {
	args := m.Called(interests)
	kinds, _ := args.Get(0).([]string)
	return kinds
}

type MockTransportService struct {
	mock.Mock
}

func (m *MockTransportService) BuildPricing(ctx context.Context, source, destination types.PlaceReference, departureDate string, travelers int) *types.TransportOptions {
	args := m.Called(ctx, source, destination, departureDate, travelers)
	options, _ := args.Get(0).(*types.TransportOptions)
	return options
}

const sampleBudgetJSON = `{
  "total_budget": 1000,
  "daily_budget": 200,
  "breakdown": {
    "accommodation": {"per_night": 80, "nights": 5, "subtotal": 400},
    "food": {"per_day": 40, "days": 5, "subtotal": 200},
    "activities": {"estimated": 200},
    "transport": {"estimated": 100},
    "contingency": {"percent": 10, "amount": 90}
  },
  "savings_tips": ["Walk where possible"]
}`

func validRequest() *types.TripRequest {
	return &types.TripRequest{
		Source:      "London",
		Destination: "Paris",
		Days:        5,
		Budget:      1000,
		Style:       "Mid-Range",
		Interests:   []string{"Food & Dining"},
		Group:       "Couple",
		Travelers:   2,
	}
}

func newTestService(generator *MockGenerator, places *MockPlaceService, enrich *MockEnrichmentService, pois *MockPOIService, transports *MockTransportService) *ServiceImpl {
	metrics.InitAppMetrics()
	return NewServiceImpl(generator, places, enrich, pois, transports, slog.New(slog.DiscardHandler))
}

func TestGenerateItineraryRejectsNonSoloSingleTraveler(t *testing.T) {
	generator := new(MockGenerator)
	places := new(MockPlaceService)
	enrich := new(MockEnrichmentService)
	pois := new(MockPOIService)
	transports := new(MockTransportService)
	svc := newTestService(generator, places, enrich, pois, transports)

	req := validRequest()
	req.Travelers = 1

	_, err := svc.GenerateItinerary(context.Background(), req)
	require.Error(t, err)

	// Rejected before any outbound call.
	places.AssertNotCalled(t, "Resolve", mock.Anything, mock.Anything, mock.Anything)
	enrich.AssertNotCalled(t, "Enrich", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	generator.AssertNotCalled(t, "GenerateContent", mock.Anything, mock.Anything, mock.Anything)
}

func TestGenerateItinerarySoloForcesSingleTraveler(t *testing.T) {
	generator := new(MockGenerator)
	places := new(MockPlaceService)
	enrich := new(MockEnrichmentService)
	pois := new(MockPOIService)
	transports := new(MockTransportService)
	svc := newTestService(generator, places, enrich, pois, transports)

	paris := types.PlaceReference{Name: "Paris", Country: "FR", Lat: 48.8566, Lon: 2.3522}
	london := types.PlaceReference{Name: "London", Country: "GB", Lat: 51.5074, Lon: -0.1278}

	places.On("Resolve", mock.Anything, "London", mock.Anything).Return(london)
	places.On("Resolve", mock.Anything, "Paris", mock.Anything).Return(paris)
	enrich.On("Enrich", mock.Anything, paris, "Paris", 5).Return(&types.Enrichment{})
	pois.On("GetPOIs", mock.Anything, paris.Lat, paris.Lon, mock.Anything, mealPOIRadius, mealPOILimit).Return(nil, nil)
	pois.On("GetHotels", mock.Anything, paris.Lat, paris.Lon, hotelRadius, hotelLimit).Return(nil, nil)
	generator.On("GenerateContent", mock.Anything, mock.Anything, mock.Anything).Return(sampleItineraryJSON, nil).Once()
	generator.On("GenerateContent", mock.Anything, mock.Anything, mock.Anything).Return(sampleBudgetJSON, nil).Once()
	// The Solo rule clamps the traveler count before pricing.
	transports.On("BuildPricing", mock.Anything, london, paris, "", 1).Return(&types.TransportOptions{Travelers: 1})

	req := validRequest()
	req.Group = "Solo"
	req.Travelers = 5

	response, err := svc.GenerateItinerary(context.Background(), req)
	require.NoError(t, err)

	require.NotNil(t, response.Group)
	assert.Equal(t, 1, response.Group.Travelers)
	transports.AssertExpectations(t)
}

func TestGenerateItineraryMergedView(t *testing.T) {
	generator := new(MockGenerator)
	places := new(MockPlaceService)
	enrich := new(MockEnrichmentService)
	pois := new(MockPOIService)
	transports := new(MockTransportService)
	svc := newTestService(generator, places, enrich, pois, transports)

	paris := types.PlaceReference{Name: "Paris", Country: "FR", Lat: 48.8566, Lon: 2.3522}
	london := types.PlaceReference{Name: "London", Country: "GB", Lat: 51.5074, Lon: -0.1278}

	enriched := &types.Enrichment{
		Country:  &types.CountryInfo{Name: "France", CurrencyCode: "EUR", CurrencySymbol: "€", CountryCode: "FR"},
		Exchange: &types.ExchangeRate{From: "USD", To: "EUR", Rate: 0.92},
	}
	hotels := []types.POIDetail{{Name: "Grand Hotel", Address: "2 Plaza"}}

	places.On("Resolve", mock.Anything, "London", mock.Anything).Return(london)
	places.On("Resolve", mock.Anything, "Paris", mock.Anything).Return(paris)
	enrich.On("Enrich", mock.Anything, paris, "Paris", 5).Return(enriched)
	pois.On("GetPOIs", mock.Anything, paris.Lat, paris.Lon, []string{"foods", "cafes", "restaurants"}, mealPOIRadius, mealPOILimit).
		Return([]types.POIDetail{{Name: "Chez Marie", Address: "1 Rue de Rivoli"}}, nil)
	pois.On("GetHotels", mock.Anything, paris.Lat, paris.Lon, hotelRadius, hotelLimit).Return(hotels, nil)
	generator.On("GenerateContent", mock.Anything, mock.Anything, mock.Anything).Return(sampleItineraryJSON, nil).Once()
	generator.On("GenerateContent", mock.Anything, mock.Anything, mock.Anything).Return(sampleBudgetJSON, nil).Once()
	transports.On("BuildPricing", mock.Anything, london, paris, "", 2).Return(&types.TransportOptions{
		TripType:  "international_flight",
		Travelers: 2,
		Quotes:    []types.TransportQuote{{ID: "f1", Mode: "flight", Provider: "Economy", Currency: "USD", PricePerPerson: 150}},
	})

	response, err := svc.GenerateItinerary(context.Background(), validRequest())
	require.NoError(t, err)

	assert.True(t, response.Success)
	require.NotNil(t, response.Itinerary)
	require.NotNil(t, response.ItineraryRaw)
	require.NotNil(t, response.Budget)
	assert.Equal(t, hotels, response.Hotels)
	assert.Equal(t, enriched, response.Enrichment)

	// The per-person quote got a synthesized group price.
	require.NotNil(t, response.Transport)
	require.NotEmpty(t, response.Transport.Quotes)
	require.NotNil(t, response.Transport.Quotes[0].GroupPrice)
	assert.Equal(t, 300.0, *response.Transport.Quotes[0].GroupPrice)
	require.NotNil(t, response.Transport.AppliedQuote)
	assert.Equal(t, 300, response.Transport.AppliedQuote.USDAmount)

	// Meal POI swap reached the normalized plan.
	assert.Equal(t, "Chez Marie", response.Itinerary.Days[0].Meals[0].Restaurant)

	// Hotel lodging was injected into day one.
	require.NotNil(t, response.Itinerary.Meta)
	assert.True(t, response.Itinerary.Meta.LodgingInjected)

	// EUR display view: round(usd x 0.92) through one converter.
	require.NotNil(t, response.Display)
	assert.Equal(t, "EUR", response.Display.Code)
	assert.Equal(t, 0.92, response.Display.Rate)

	// Group scaling recorded per-traveler originals.
	require.NotNil(t, response.Budget.GroupMetadata)
	assert.Equal(t, 2, response.Budget.GroupMetadata.Travelers)

	generator.AssertExpectations(t)
}

func TestGenerateItineraryPlannerFailureAborts(t *testing.T) {
	generator := new(MockGenerator)
	places := new(MockPlaceService)
	enrich := new(MockEnrichmentService)
	pois := new(MockPOIService)
	transports := new(MockTransportService)
	svc := newTestService(generator, places, enrich, pois, transports)

	unresolved := types.PlaceReference{Name: "Paris"}
	places.On("Resolve", mock.Anything, mock.Anything, mock.Anything).Return(unresolved)
	enrich.On("Enrich", mock.Anything, unresolved, "Paris", 5).Return(&types.Enrichment{})
	generator.On("GenerateContent", mock.Anything, mock.Anything, mock.Anything).Return("garbage output", nil)

	_, err := svc.GenerateItinerary(context.Background(), validRequest())
	require.Error(t, err)

	// Unresolved destination skips POI and hotel lookups entirely.
	pois.AssertNotCalled(t, "GetPOIs", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	pois.AssertNotCalled(t, "GetHotels", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
