package enrichment

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tripcraft/go-travel-planner/app/observability/metrics"
	"github.com/tripcraft/go-travel-planner/config"
	"github.com/tripcraft/go-travel-planner/internal/types"
)

// Client interfaces for the optional secondary-data services. Each impl is
// a thin wrapper over a free JSON API and returns a typed record or an
// error; the service layer decides what absence means.
type WeatherClient interface {
	GetForecast(ctx context.Context, lat, lon float64, days int) (*types.WeatherForecast, error)
}

type TimezoneClient interface {
	GetTimezone(ctx context.Context, lat, lon float64) (*types.TimezoneInfo, error)
}

type CountryClient interface {
	GetCountryInfo(ctx context.Context, countryName string) (*types.CountryInfo, error)
}

type AdvisoryClient interface {
	GetAdvisory(ctx context.Context, countryCode string) (*types.TravelAdvisory, error)
}

type ExchangeClient interface {
	GetExchangeRate(ctx context.Context, fromCurrency, toCurrency string) (*types.ExchangeRate, error)
}

var (
	_ WeatherClient  = (*OpenMeteoClient)(nil)
	_ TimezoneClient = (*GeoNamesClient)(nil)
	_ CountryClient  = (*RestCountriesClient)(nil)
	_ AdvisoryClient = (*TravelAdvisoryClient)(nil)
	_ ExchangeClient = (*ExchangeRateClient)(nil)
)

// --- Weather (Open-Meteo) ---

type OpenMeteoClient struct {
	cfg        *config.Config
	httpClient *http.Client
}

func NewOpenMeteoClient(cfg *config.Config) *OpenMeteoClient {
	return &OpenMeteoClient{cfg: cfg, httpClient: &http.Client{Timeout: cfg.Upstream.WeatherTimeout}}
}

func (c *OpenMeteoClient) GetForecast(ctx context.Context, lat, lon float64, days int) (*types.WeatherForecast, error) {
	if days > 16 {
		days = 16 // Open-Meteo forecast limit
	}
	if days < 1 {
		days = 7
	}

	params := url.Values{}
	params.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
	params.Set("daily", "temperature_2m_max,temperature_2m_min,precipitation_sum,weathercode")
	params.Set("forecast_days", strconv.Itoa(days))
	params.Set("timezone", "auto")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.Upstream.OpenMeteoURL+"/forecast?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.Get().RecordUpstreamCall(ctx, "open_meteo", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("weather request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("weather API returned status %d", resp.StatusCode)
	}

	var payload struct {
		Timezone string `json:"timezone"`
		Daily    struct {
			Time             []string  `json:"time"`
			TemperatureMax   []float64 `json:"temperature_2m_max"`
			TemperatureMin   []float64 `json:"temperature_2m_min"`
			PrecipitationSum []float64 `json:"precipitation_sum"`
			WeatherCode      []int     `json:"weathercode"`
		} `json:"daily"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode weather response: %w", err)
	}

	forecast := &types.WeatherForecast{
		Location: types.PlaceCoordinates{Lat: lat, Lon: lon},
		Timezone: payload.Timezone,
	}
	if forecast.Timezone == "" {
		forecast.Timezone = "UTC"
	}
	for i := range payload.Daily.Time {
		entry := types.DailyForecast{Date: payload.Daily.Time[i]}
		if i < len(payload.Daily.TemperatureMax) {
			entry.TempMax = payload.Daily.TemperatureMax[i]
		}
		if i < len(payload.Daily.TemperatureMin) {
			entry.TempMin = payload.Daily.TemperatureMin[i]
		}
		if i < len(payload.Daily.PrecipitationSum) {
			entry.Precipitation = payload.Daily.PrecipitationSum[i]
		}
		if i < len(payload.Daily.WeatherCode) {
			entry.WeatherCode = payload.Daily.WeatherCode[i]
		}
		forecast.Forecasts = append(forecast.Forecasts, entry)
	}
	return forecast, nil
}

// --- Timezone (GeoNames) ---

type GeoNamesClient struct {
	cfg        *config.Config
	httpClient *http.Client
}

func NewGeoNamesClient(cfg *config.Config) *GeoNamesClient {
	return &GeoNamesClient{cfg: cfg, httpClient: &http.Client{Timeout: cfg.Upstream.TimezoneTimeout}}
}

func (c *GeoNamesClient) GetTimezone(ctx context.Context, lat, lon float64) (*types.TimezoneInfo, error) {
	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("lng", strconv.FormatFloat(lon, 'f', -1, 64))
	params.Set("username", c.cfg.Upstream.GeoNamesUsername)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.Upstream.GeoNamesTimezoneURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.Get().RecordUpstreamCall(ctx, "geonames_timezone", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("timezone request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("timezone API returned status %d", resp.StatusCode)
	}

	var payload struct {
		TimezoneID  string  `json:"timezoneId"`
		GMTOffset   float64 `json:"gmtOffset"`
		DSTOffset   float64 `json:"dstOffset"`
		Time        string  `json:"time"`
		CountryCode string  `json:"countryCode"`
		CountryName string  `json:"countryName"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode timezone response: %w", err)
	}
	if payload.TimezoneID == "" {
		payload.TimezoneID = "UTC"
	}

	return &types.TimezoneInfo{
		Timezone:    payload.TimezoneID,
		GMTOffset:   payload.GMTOffset,
		DSTOffset:   payload.DSTOffset,
		Time:        payload.Time,
		CountryCode: payload.CountryCode,
		CountryName: payload.CountryName,
	}, nil
}

// --- Country metadata (RestCountries) ---

type RestCountriesClient struct {
	logger     *slog.Logger
	cfg        *config.Config
	httpClient *http.Client
}

func NewRestCountriesClient(cfg *config.Config, logger *slog.Logger) *RestCountriesClient {
	return &RestCountriesClient{logger: logger, cfg: cfg, httpClient: &http.Client{Timeout: cfg.Upstream.CountryTimeout}}
}

// localCountryOverrides answers lookups the upstream occasionally fails on.
var localCountryOverrides = map[string]types.CountryInfo{
	"india": {
		Name:           "India",
		Capital:        "New Delhi",
		Region:         "Asia",
		Subregion:      "Southern Asia",
		Population:     1380004385,
		Area:           3287263,
		CurrencyCode:   "INR",
		CurrencyName:   "Indian Rupee",
		CurrencySymbol: "₹",
		Languages:      []string{"Hindi", "English"},
		CountryCode:    "IN",
		CountryCode3:   "IND",
		Timezones:      []string{"Asia/Kolkata"},
		Flag:           "https://flagcdn.com/w320/in.png",
	},
}

type restCountryEntry struct {
	Name struct {
		Common     string `json:"common"`
		Official   string `json:"official"`
		NativeName map[string]struct {
			Common   string `json:"common"`
			Official string `json:"official"`
		} `json:"nativeName"`
	} `json:"name"`
	Capital    []string `json:"capital"`
	Region     string   `json:"region"`
	Subregion  string   `json:"subregion"`
	Population int64    `json:"population"`
	Area       float64  `json:"area"`
	Currencies map[string]struct {
		Name   string `json:"name"`
		Symbol string `json:"symbol"`
	} `json:"currencies"`
	Languages map[string]string `json:"languages"`
	CCA2      string            `json:"cca2"`
	CCA3      string            `json:"cca3"`
	Timezones []string          `json:"timezones"`
	Flags     struct {
		PNG string `json:"png"`
	} `json:"flags"`
}

func (c *RestCountriesClient) GetCountryInfo(ctx context.Context, countryName string) (*types.CountryInfo, error) {
	normalized := strings.TrimSpace(countryName)
	if normalized == "" {
		return nil, fmt.Errorf("country name is empty")
	}
	overrideKey := strings.ToLower(normalized)

	countries, err := c.fetch(ctx, normalized, true)
	if err != nil {
		// Retry with partial match if fullText fails
		countries, err = c.fetch(ctx, normalized, false)
	}
	if err != nil {
		if override, ok := localCountryOverrides[overrideKey]; ok {
			info := override
			return &info, nil
		}
		return nil, err
	}
	if len(countries) == 0 {
		if override, ok := localCountryOverrides[overrideKey]; ok {
			info := override
			return &info, nil
		}
		return nil, fmt.Errorf("no country matched %q", countryName)
	}

	selected := pickCountry(countries, normalized)

	var currencyCode, currencyName, currencySymbol string
	for code, info := range selected.Currencies {
		currencyCode, currencyName, currencySymbol = code, info.Name, info.Symbol
		break
	}
	if currencyCode == "" {
		currencyCode = "USD"
		currencyName = "Unknown"
	}

	capital := "N/A"
	if len(selected.Capital) > 0 {
		capital = selected.Capital[0]
	}
	languages := make([]string, 0, len(selected.Languages))
	for _, lang := range selected.Languages {
		languages = append(languages, lang)
	}

	name := selected.Name.Common
	if name == "" {
		name = normalized
	}

	return &types.CountryInfo{
		Name:           name,
		Capital:        capital,
		Region:         selected.Region,
		Subregion:      selected.Subregion,
		Population:     selected.Population,
		Area:           selected.Area,
		CurrencyCode:   currencyCode,
		CurrencyName:   currencyName,
		CurrencySymbol: currencySymbol,
		Languages:      languages,
		CountryCode:    selected.CCA2,
		CountryCode3:   selected.CCA3,
		Timezones:      selected.Timezones,
		Flag:           selected.Flags.PNG,
	}, nil
}

func (c *RestCountriesClient) fetch(ctx context.Context, name string, fullText bool) ([]restCountryEntry, error) {
	params := url.Values{}
	if fullText {
		params.Set("fullText", "true")
		params.Set("fields", "name,capital,region,subregion,population,area,currencies,languages,cca2,cca3,flags,timezones")
	} else {
		params.Set("fullText", "false")
	}

	endpoint := c.cfg.Upstream.RestCountriesURL + "/name/" + url.PathEscape(name) + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.Get().RecordUpstreamCall(ctx, "restcountries", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("country request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("country API returned status %d", resp.StatusCode)
	}

	var countries []restCountryEntry
	if err := json.NewDecoder(resp.Body).Decode(&countries); err != nil {
		return nil, fmt.Errorf("failed to decode country response: %w", err)
	}
	return countries, nil
}

// pickCountry prefers an exact name match (common, official or native)
// over the API's default ordering.
func pickCountry(countries []restCountryEntry, query string) restCountryEntry {
	target := strings.ToLower(strings.TrimSpace(query))
	for _, country := range countries {
		candidates := []string{country.Name.Common, country.Name.Official}
		for _, native := range country.Name.NativeName {
			candidates = append(candidates, native.Common, native.Official)
		}
		for _, candidate := range candidates {
			if strings.ToLower(strings.TrimSpace(candidate)) == target && candidate != "" {
				return country
			}
		}
	}
	return countries[0]
}

// --- Travel advisory (travel-advisory.info) ---

type TravelAdvisoryClient struct {
	cfg        *config.Config
	httpClient *http.Client
}

func NewTravelAdvisoryClient(cfg *config.Config) *TravelAdvisoryClient {
	return &TravelAdvisoryClient{cfg: cfg, httpClient: &http.Client{Timeout: cfg.Upstream.AdvisoryTimeout}}
}

var advisoryLevels = map[int]string{
	1: "Exercise normal precautions",
	2: "Exercise increased caution",
	3: "Reconsider travel",
	4: "Do not travel",
	5: "Do not travel",
}

func (c *TravelAdvisoryClient) GetAdvisory(ctx context.Context, countryCode string) (*types.TravelAdvisory, error) {
	code := strings.ToUpper(strings.TrimSpace(countryCode))
	if len(code) != 2 {
		return nil, fmt.Errorf("invalid country code %q", countryCode)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.Upstream.TravelAdvisoryURL, nil)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.Get().RecordUpstreamCall(ctx, "travel_advisory", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("advisory request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("advisory API returned status %d", resp.StatusCode)
	}

	var payload struct {
		Data map[string]struct {
			Name     string `json:"name"`
			Advisory struct {
				Score   float64  `json:"score"`
				Message string   `json:"message"`
				Sources []string `json:"sources"`
				Updated string   `json:"updated"`
			} `json:"advisory"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode advisory response: %w", err)
	}

	entry, ok := payload.Data[code]
	if !ok {
		return nil, fmt.Errorf("no advisory data for %s", code)
	}

	level, ok := advisoryLevels[int(entry.Advisory.Score)]
	if !ok {
		level = "Unknown"
	}
	message := entry.Advisory.Message
	if message == "" {
		message = "No advisory"
	}

	return &types.TravelAdvisory{
		Country:     code,
		CountryName: entry.Name,
		Score:       entry.Advisory.Score,
		Level:       level,
		Message:     message,
		Sources:     entry.Advisory.Sources,
		Updated:     entry.Advisory.Updated,
	}, nil
}

// --- Exchange rate (exchangerate-api) ---

type ExchangeRateClient struct {
	cfg        *config.Config
	httpClient *http.Client
}

func NewExchangeRateClient(cfg *config.Config) *ExchangeRateClient {
	return &ExchangeRateClient{cfg: cfg, httpClient: &http.Client{Timeout: cfg.Upstream.ExchangeTimeout}}
}

func (c *ExchangeRateClient) GetExchangeRate(ctx context.Context, fromCurrency, toCurrency string) (*types.ExchangeRate, error) {
	from := strings.ToUpper(strings.TrimSpace(fromCurrency))
	to := strings.ToUpper(strings.TrimSpace(toCurrency))
	if len(from) != 3 || len(to) != 3 {
		return nil, fmt.Errorf("invalid currency pair %q -> %q", fromCurrency, toCurrency)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.Upstream.ExchangeRateURL+"/"+from, nil)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.Get().RecordUpstreamCall(ctx, "exchange_rate", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("exchange rate request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("exchange rate API returned status %d", resp.StatusCode)
	}

	var payload struct {
		Base  string             `json:"base"`
		Date  string             `json:"date"`
		Rates map[string]float64 `json:"rates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode exchange rate response: %w", err)
	}

	rate, ok := payload.Rates[to]
	if !ok {
		return nil, fmt.Errorf("no rate available for %s -> %s", from, to)
	}

	base := payload.Base
	if base == "" {
		base = from
	}
	return &types.ExchangeRate{
		From: from,
		To:   to,
		Rate: rate,
		Date: payload.Date,
		Base: base,
	}, nil
}
