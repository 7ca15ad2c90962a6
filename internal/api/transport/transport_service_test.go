package transport

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tripcraft/go-travel-planner/internal/types"
)

type MockFlightsClient struct {
	mock.Mock
}

func (m *MockFlightsClient) LookupIATA(ctx context.Context, term, country string) (string, error) {
	args := m.Called(ctx, term, country)
	return args.String(0), args.Error(1)
}

func (m *MockFlightsClient) SearchFlights(ctx context.Context, fromCode, toCode string, departure time.Time, travelers int, currency string) ([]types.TransportQuote, error) {
	args := m.Called(ctx, fromCode, toCode, departure, travelers, currency)
	quotes, _ := args.Get(0).([]types.TransportQuote)
	return quotes, args.Error(1)
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestHaversineDistance(t *testing.T) {
	delhi := types.PlaceReference{Name: "Delhi", Lat: 28.6139, Lon: 77.2090}
	mumbai := types.PlaceReference{Name: "Mumbai", Lat: 19.0760, Lon: 72.8777}

	distance := haversineDistance(delhi, mumbai)
	assert.InDelta(t, 1150, distance, 30, "Delhi to Mumbai great-circle distance")

	unresolved := types.PlaceReference{Name: "Nowhere"}
	assert.Zero(t, haversineDistance(delhi, unresolved))
	assert.Zero(t, haversineDistance(unresolved, mumbai))
}

func TestEstimateTrainQuotes(t *testing.T) {
	departure := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	quotes := estimateTrainQuotes(2, departure, 1000)
	require.Len(t, quotes, 5)

	var sleeper *types.TransportQuote
	for i := range quotes {
		if quotes[i].Class == "SL" {
			sleeper = &quotes[i]
		}
	}
	require.NotNil(t, sleeper)

	// 1000*0.75 + 20 reservation + 45 superfast, plus 5% GST.
	assert.InDelta(t, 855.75, sleeper.PricePerPerson, 0.01)
	require.NotNil(t, sleeper.GroupPrice)
	assert.InDelta(t, 1711.5, *sleeper.GroupPrice, 0.01)
	assert.Equal(t, "INR", sleeper.Currency)
	assert.Equal(t, "Indian Railways", sleeper.Provider)
	assert.Equal(t, types.ConfidenceEstimated, sleeper.Confidence)
	assert.Equal(t, "2026-10-01", sleeper.Departure)
	assert.InDelta(t, 18.2, sleeper.DurationHours, 0.01)
}

func TestEstimateTrainQuotesShortJourney(t *testing.T) {
	quotes := estimateTrainQuotes(1, time.Now(), 200)
	require.NotEmpty(t, quotes)

	for _, quote := range quotes {
		if quote.Class != "SL" {
			continue
		}
		// No superfast surcharge under 300 km: (200*0.75 + 20) * 1.05.
		assert.InDelta(t, 178.5, quote.PricePerPerson, 0.01)
		// Minimum journey duration is six hours.
		assert.Equal(t, 6.0, quote.DurationHours)
	}
}

func TestFallbackFlightQuotes(t *testing.T) {
	quotes := fallbackFlightQuotes(2000, 3, "USD")
	require.Len(t, quotes, 3)

	economy := quotes[0]
	assert.Equal(t, "flight-economy", economy.ID)
	assert.InDelta(t, 310, economy.PricePerPerson, 0.01)
	require.NotNil(t, economy.GroupPrice)
	assert.InDelta(t, 930, *economy.GroupPrice, 0.01)

	assert.InDelta(t, economy.PricePerPerson*1.6, quotes[1].PricePerPerson, 0.01)
	assert.InDelta(t, economy.PricePerPerson*2.4, quotes[2].PricePerPerson, 0.01)

	for _, quote := range quotes {
		assert.Equal(t, types.ConfidenceEstimated, quote.Confidence)
		assert.Equal(t, "USD", quote.Currency)
	}
}

func TestFallbackFlightQuotesShortHop(t *testing.T) {
	quotes := fallbackFlightQuotes(100, 1, "USD")
	require.NotEmpty(t, quotes)
	// Floor fare applies below the distance where the linear rate exceeds it.
	assert.InDelta(t, 120, quotes[0].PricePerPerson, 0.01)
	assert.Equal(t, 3.0, quotes[0].DurationHours)
}

func TestBuildPricingIndiaTrip(t *testing.T) {
	client := new(MockFlightsClient)
	svc := NewServiceImpl(client, testLogger())

	source := types.PlaceReference{Name: "Delhi", Country: "India", Lat: 28.6139, Lon: 77.2090}
	dest := types.PlaceReference{Name: "Mumbai", Country: "IN", Lat: 19.0760, Lon: 72.8777}

	options := svc.BuildPricing(context.Background(), source, dest, "2026-10-01", 2)
	require.NotNil(t, options)

	assert.Equal(t, "india_train", options.TripType)
	assert.Equal(t, 2, options.Travelers)
	assert.Equal(t, "IN", options.Source.Country)
	assert.Equal(t, "IN", options.Destination.Country)
	assert.Len(t, options.Quotes, 5)
	require.NotNil(t, options.DistanceKM)
	assert.InDelta(t, 1150, *options.DistanceKM, 30)

	// Domestic train pricing never touches the flight provider.
	client.AssertNotCalled(t, "SearchFlights", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestBuildPricingInternationalFallback(t *testing.T) {
	client := new(MockFlightsClient)
	client.On("SearchFlights", mock.Anything, "PAR", "LON", mock.Anything, 2, "USD").Return(nil, nil)

	svc := NewServiceImpl(client, testLogger())

	source := types.PlaceReference{Name: "Paris", Country: "FR", Lat: 48.8566, Lon: 2.3522}
	dest := types.PlaceReference{Name: "London", Country: "GB", Lat: 51.5074, Lon: -0.1278}

	options := svc.BuildPricing(context.Background(), source, dest, "", 2)
	require.NotNil(t, options)

	assert.Equal(t, "international_flight", options.TripType)
	require.Len(t, options.Quotes, 3)
	for _, quote := range options.Quotes {
		assert.Equal(t, "flight", quote.Mode)
		assert.Equal(t, types.ConfidenceEstimated, quote.Confidence)
	}
	client.AssertExpectations(t)
}

func TestBuildPricingUsesLiveQuotes(t *testing.T) {
	groupPrice := 640.0
	live := []types.TransportQuote{{
		ID:             "live-1",
		Mode:           "flight",
		Provider:       "AF",
		Currency:       "USD",
		PricePerPerson: 320,
		GroupPrice:     &groupPrice,
		Confidence:     types.ConfidenceLive,
	}}

	client := new(MockFlightsClient)
	client.On("SearchFlights", mock.Anything, "PAR", "NYC", mock.Anything, 2, "USD").Return(live, nil)

	svc := NewServiceImpl(client, testLogger())

	source := types.PlaceReference{Name: "Paris", Country: "FR", Lat: 48.8566, Lon: 2.3522}
	dest := types.PlaceReference{Name: "New York", Country: "US", Lat: 40.7128, Lon: -74.0060}

	options := svc.BuildPricing(context.Background(), source, dest, "2026-10-15", 2)
	require.Len(t, options.Quotes, 1)
	assert.Equal(t, "live-1", options.Quotes[0].ID)
	assert.Equal(t, types.ConfidenceLive, options.Quotes[0].Confidence)
	client.AssertExpectations(t)
}

func TestBuildPricingLooksUpUnknownAirport(t *testing.T) {
	client := new(MockFlightsClient)
	client.On("LookupIATA", mock.Anything, "Reykjavik", "IS").Return("KEF", nil)
	client.On("SearchFlights", mock.Anything, "LON", "KEF", mock.Anything, 1, "USD").Return(nil, nil)

	svc := NewServiceImpl(client, testLogger())

	source := types.PlaceReference{Name: "London", Country: "GB", Lat: 51.5074, Lon: -0.1278}
	dest := types.PlaceReference{Name: "Reykjavik", Country: "IS", Lat: 64.1466, Lon: -21.9426}

	options := svc.BuildPricing(context.Background(), source, dest, "", 1)
	require.NotNil(t, options)
	client.AssertExpectations(t)
}

func TestNormalizeDate(t *testing.T) {
	parsed := normalizeDate("2026-12-24")
	assert.Equal(t, "2026-12-24", parsed.Format("2006-01-02"))

	fallback := normalizeDate("not-a-date")
	expected := time.Now().UTC().AddDate(0, 0, defaultDepartureOffsetDays)
	assert.WithinDuration(t, expected, fallback, time.Minute)
}

func TestNormalizeCountryCode(t *testing.T) {
	assert.Equal(t, "IN", normalizeCountryCode("India"))
	assert.Equal(t, "US", normalizeCountryCode("united states"))
	assert.Equal(t, "FR", normalizeCountryCode(" fr "))
	assert.Equal(t, "", normalizeCountryCode(""))
	assert.Equal(t, "NARNIA", normalizeCountryCode("Narnia"))
}
