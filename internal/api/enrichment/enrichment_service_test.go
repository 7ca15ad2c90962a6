package enrichment

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tripcraft/go-travel-planner/internal/types"
)

type MockWeatherClient struct {
	mock.Mock
}

func (m *MockWeatherClient) GetForecast(ctx context.Context, lat, lon float64, days int) (*types.WeatherForecast, error) {
	args := m.Called(ctx, lat, lon, days)
	forecast, _ := args.Get(0).(*types.WeatherForecast)
	return forecast, args.Error(1)
}

type MockTimezoneClient struct {
	mock.Mock
}

func (m *MockTimezoneClient) GetTimezone(ctx context.Context, lat, lon float64) (*types.TimezoneInfo, error) {
	args := m.Called(ctx, lat, lon)
	tz, _ := args.Get(0).(*types.TimezoneInfo)
	return tz, args.Error(1)
}

type MockCountryClient struct {
	mock.Mock
}

func (m *MockCountryClient) GetCountryInfo(ctx context.Context, countryName string) (*types.CountryInfo, error) {
	args := m.Called(ctx, countryName)
	info, _ := args.Get(0).(*types.CountryInfo)
	return info, args.Error(1)
}

type MockAdvisoryClient struct {
	mock.Mock
}

func (m *MockAdvisoryClient) GetAdvisory(ctx context.Context, countryCode string) (*types.TravelAdvisory, error) {
	args := m.Called(ctx, countryCode)
	advisory, _ := args.Get(0).(*types.TravelAdvisory)
	return advisory, args.Error(1)
}

type MockExchangeClient struct {
	mock.Mock
}

func (m *MockExchangeClient) GetExchangeRate(ctx context.Context, fromCurrency, toCurrency string) (*types.ExchangeRate, error) {
	args := m.Called(ctx, fromCurrency, toCurrency)
	rate, _ := args.Get(0).(*types.ExchangeRate)
	return rate, args.Error(1)
}

type MockPlaceClient struct {
	mock.Mock
}

func (m *MockPlaceClient) Autocomplete(ctx context.Context, query string, limit int) ([]types.PlaceReference, error) {
	args := m.Called(ctx, query, limit)
	refs, _ := args.Get(0).([]types.PlaceReference)
	return refs, args.Error(1)
}

type serviceMocks struct {
	weather  *MockWeatherClient
	timezone *MockTimezoneClient
	country  *MockCountryClient
	advisory *MockAdvisoryClient
	exchange *MockExchangeClient
	place    *MockPlaceClient
}

func newTestService() (*ServiceImpl, *serviceMocks) {
	m := &serviceMocks{
		weather:  new(MockWeatherClient),
		timezone: new(MockTimezoneClient),
		country:  new(MockCountryClient),
		advisory: new(MockAdvisoryClient),
		exchange: new(MockExchangeClient),
		place:    new(MockPlaceClient),
	}
	svc := NewServiceImpl(m.weather, m.timezone, m.country, m.advisory, m.exchange, m.place,
		slog.New(slog.DiscardHandler))
	return svc, m
}

var franceInfo = &types.CountryInfo{
	Name:           "France",
	CountryCode:    "FR",
	CurrencyCode:   "EUR",
	CurrencySymbol: "€",
}

func TestEnrichResolvedDestination(t *testing.T) {
	svc, m := newTestService()

	paris := types.PlaceReference{Name: "Paris", Country: "France", Lat: 48.8566, Lon: 2.3522}
	forecast := &types.WeatherForecast{}
	tz := &types.TimezoneInfo{Timezone: "Europe/Paris", CountryName: "France"}
	advisory := &types.TravelAdvisory{Score: 2.5, Message: "Exercise normal precautions"}
	rate := &types.ExchangeRate{From: "USD", To: "EUR", Rate: 0.92}

	m.weather.On("GetForecast", mock.Anything, paris.Lat, paris.Lon, 5).Return(forecast, nil)
	m.timezone.On("GetTimezone", mock.Anything, paris.Lat, paris.Lon).Return(tz, nil)
	m.country.On("GetCountryInfo", mock.Anything, "France").Return(franceInfo, nil)
	m.advisory.On("GetAdvisory", mock.Anything, "FR").Return(advisory, nil)
	m.exchange.On("GetExchangeRate", mock.Anything, "USD", "EUR").Return(rate, nil)

	out := svc.Enrich(context.Background(), paris, "Paris", 5)

	assert.Same(t, forecast, out.Weather)
	assert.Same(t, tz, out.Timezone)
	assert.Same(t, franceInfo, out.Country)
	assert.Same(t, advisory, out.Advisory)
	assert.Same(t, rate, out.Exchange)

	// The first strategy resolved, so the autocomplete fallback never ran.
	m.place.AssertNotCalled(t, "Autocomplete", mock.Anything, mock.Anything, mock.Anything)
	m.country.AssertNumberOfCalls(t, "GetCountryInfo", 1)
}

func TestEnrichUnresolvedSkipsCoordinateLookups(t *testing.T) {
	svc, m := newTestService()

	dest := types.PlaceReference{Name: "Paris"}
	m.country.On("GetCountryInfo", mock.Anything, "Paris").Return(nil, errors.New("not a country"))
	m.place.On("Autocomplete", mock.Anything, "Paris", 1).
		Return([]types.PlaceReference{{Name: "Paris", Country: "France"}}, nil)
	m.country.On("GetCountryInfo", mock.Anything, "France").Return(franceInfo, nil)
	m.advisory.On("GetAdvisory", mock.Anything, "FR").Return(nil, errors.New("unavailable"))
	m.exchange.On("GetExchangeRate", mock.Anything, "USD", "EUR").Return(nil, errors.New("unavailable"))

	out := svc.Enrich(context.Background(), dest, "Paris", 3)

	// Zero coordinates mean no weather or timezone calls at all.
	m.weather.AssertNotCalled(t, "GetForecast", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	m.timezone.AssertNotCalled(t, "GetTimezone", mock.Anything, mock.Anything, mock.Anything)

	// Country still resolved through the autocomplete fallback.
	assert.Same(t, franceInfo, out.Country)
	assert.Nil(t, out.Weather)
	assert.Nil(t, out.Advisory)
	assert.Nil(t, out.Exchange)
}

func TestEnrichWaterfallStopsAtFirstHit(t *testing.T) {
	svc, m := newTestService()

	dest := types.PlaceReference{Name: "Tokyo", Country: "Japan"}
	japan := &types.CountryInfo{Name: "Japan", CountryCode: "JP", CurrencyCode: "JPY", CurrencySymbol: "¥"}

	m.country.On("GetCountryInfo", mock.Anything, "Japan").Return(japan, nil)
	m.advisory.On("GetAdvisory", mock.Anything, "JP").Return(nil, errors.New("unavailable"))
	m.exchange.On("GetExchangeRate", mock.Anything, "USD", "JPY").Return(&types.ExchangeRate{From: "USD", To: "JPY", Rate: 147.2}, nil)

	out := svc.Enrich(context.Background(), dest, "Tokyo", 4)

	require.NotNil(t, out.Country)
	assert.Equal(t, "JP", out.Country.CountryCode)
	m.country.AssertNumberOfCalls(t, "GetCountryInfo", 1)
	m.place.AssertNotCalled(t, "Autocomplete", mock.Anything, mock.Anything, mock.Anything)
}

func TestEnrichDeduplicatesCandidates(t *testing.T) {
	svc, m := newTestService()

	// Strategy one and two both produce "Narnia"; the country client must
	// only be asked once for it before the autocomplete fallback runs.
	dest := types.PlaceReference{Name: "Narnia"}
	m.country.On("GetCountryInfo", mock.Anything, "Narnia").Return(nil, errors.New("unknown")).Once()
	m.place.On("Autocomplete", mock.Anything, "Narnia", 1).Return(nil, errors.New("no matches"))

	out := svc.Enrich(context.Background(), dest, "Narnia", 2)

	assert.Nil(t, out.Country)
	m.country.AssertNumberOfCalls(t, "GetCountryInfo", 1)
}

func TestEnrichSkipsExchangeForUSD(t *testing.T) {
	svc, m := newTestService()

	dest := types.PlaceReference{Name: "New York", Country: "United States"}
	usa := &types.CountryInfo{Name: "United States", CountryCode: "US", CurrencyCode: "USD", CurrencySymbol: "$"}

	m.country.On("GetCountryInfo", mock.Anything, "United States").Return(usa, nil)
	m.advisory.On("GetAdvisory", mock.Anything, "US").Return(&types.TravelAdvisory{Score: 2.0}, nil)

	out := svc.Enrich(context.Background(), dest, "New York", 3)

	assert.Nil(t, out.Exchange)
	m.exchange.AssertNotCalled(t, "GetExchangeRate", mock.Anything, mock.Anything, mock.Anything)
}

func TestExchangeRateCaching(t *testing.T) {
	svc, m := newTestService()

	rate := &types.ExchangeRate{From: "USD", To: "EUR", Rate: 0.92}
	m.exchange.On("GetExchangeRate", mock.Anything, "USD", "EUR").Return(rate, nil).Once()

	first, err := svc.ExchangeRate(context.Background(), "USD", "EUR")
	require.NoError(t, err)
	assert.Equal(t, 0.92, first.Rate)

	second, err := svc.ExchangeRate(context.Background(), "USD", "EUR")
	require.NoError(t, err)
	assert.Equal(t, 0.92, second.Rate)

	m.exchange.AssertNumberOfCalls(t, "GetExchangeRate", 1)
}

func TestExchangeRateErrorNotCached(t *testing.T) {
	svc, m := newTestService()

	m.exchange.On("GetExchangeRate", mock.Anything, "USD", "GBP").Return(nil, errors.New("upstream down")).Once()
	m.exchange.On("GetExchangeRate", mock.Anything, "USD", "GBP").
		Return(&types.ExchangeRate{From: "USD", To: "GBP", Rate: 0.78}, nil).Once()

	_, err := svc.ExchangeRate(context.Background(), "USD", "GBP")
	require.Error(t, err)

	rate, err := svc.ExchangeRate(context.Background(), "USD", "GBP")
	require.NoError(t, err)
	assert.Equal(t, 0.78, rate.Rate)
}
