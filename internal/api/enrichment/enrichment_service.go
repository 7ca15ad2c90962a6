package enrichment

import (
	"context"
	"log/slog"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/tripcraft/go-travel-planner/internal/api/place"
	"github.com/tripcraft/go-travel-planner/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

// Service assembles the optional enrichment view for a destination and
// exposes the individual lookups for the auxiliary read endpoints.
type Service interface {
	Enrich(ctx context.Context, dest types.PlaceReference, rawText string, days int) *types.Enrichment
	Weather(ctx context.Context, lat, lon float64, days int) (*types.WeatherForecast, error)
	Timezone(ctx context.Context, lat, lon float64) (*types.TimezoneInfo, error)
	CountryInfo(ctx context.Context, countryName string) (*types.CountryInfo, error)
	Advisory(ctx context.Context, countryCode string) (*types.TravelAdvisory, error)
	ExchangeRate(ctx context.Context, from, to string) (*types.ExchangeRate, error)
}

type ServiceImpl struct {
	logger         *slog.Logger
	weatherClient  WeatherClient
	timezoneClient TimezoneClient
	countryClient  CountryClient
	advisoryClient AdvisoryClient
	exchangeClient ExchangeClient
	placeClient    place.AutocompleteClient
	rateCache      *gocache.Cache
}

func NewServiceImpl(
	weatherClient WeatherClient,
	timezoneClient TimezoneClient,
	countryClient CountryClient,
	advisoryClient AdvisoryClient,
	exchangeClient ExchangeClient,
	placeClient place.AutocompleteClient,
	logger *slog.Logger,
) *ServiceImpl {
	return &ServiceImpl{
		logger:         logger,
		weatherClient:  weatherClient,
		timezoneClient: timezoneClient,
		countryClient:  countryClient,
		advisoryClient: advisoryClient,
		exchangeClient: exchangeClient,
		placeClient:    placeClient,
		rateCache:      gocache.New(time.Hour, 2*time.Hour),
	}
}

// countryStrategy is one entry of the country-resolution waterfall: it
// turns the request inputs into a candidate country name, or "" when the
// strategy does not apply.
type countryStrategy struct {
	name      string
	candidate func(ctx context.Context, dest types.PlaceReference, tz *types.TimezoneInfo, rawText string) string
}

// Enrich fetches weather, timezone, country metadata, advisory and
// exchange rate for a destination. Every field is independently optional:
// a failed lookup is logged and left absent, never propagated.
func (s *ServiceImpl) Enrich(ctx context.Context, dest types.PlaceReference, rawText string, days int) *types.Enrichment {
	ctx, span := otel.Tracer("EnrichmentService").Start(ctx, "Enrich")
	defer span.End()

	out := &types.Enrichment{}

	if dest.Resolved() {
		// Weather and timezone are independent; fetch them as one batch
		// and tolerate partial failure.
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			weather, err := s.weatherClient.GetForecast(gctx, dest.Lat, dest.Lon, days)
			if err != nil {
				s.logger.WarnContext(gctx, "Weather lookup failed", slog.Any("error", err))
				return nil
			}
			out.Weather = weather
			return nil
		})
		g.Go(func() error {
			tz, err := s.timezoneClient.GetTimezone(gctx, dest.Lat, dest.Lon)
			if err != nil {
				s.logger.WarnContext(gctx, "Timezone lookup failed", slog.Any("error", err))
				return nil
			}
			out.Timezone = tz
			return nil
		})
		_ = g.Wait()
	}

	out.Country = s.resolveCountry(ctx, dest, out.Timezone, rawText)
	if out.Country == nil || out.Country.CountryCode == "" {
		span.SetAttributes(attribute.Bool("enrichment.country_resolved", false))
		return out
	}
	span.SetAttributes(attribute.Bool("enrichment.country_resolved", true))

	if advisory, err := s.advisoryClient.GetAdvisory(ctx, out.Country.CountryCode); err != nil {
		s.logger.WarnContext(ctx, "Advisory lookup failed",
			slog.Any("error", err), slog.String("country_code", out.Country.CountryCode))
	} else {
		out.Advisory = advisory
	}

	if code := out.Country.CurrencyCode; code != "" && code != "USD" {
		if rate, err := s.ExchangeRate(ctx, "USD", code); err != nil {
			s.logger.WarnContext(ctx, "Exchange rate lookup failed",
				slog.Any("error", err), slog.String("currency", code))
		} else {
			out.Exchange = rate
		}
	}

	return out
}

// resolveCountry runs the fixed three-strategy waterfall and stops at the
// first lookup that yields a usable country code. Partial results from
// different strategies are never merged.
func (s *ServiceImpl) resolveCountry(ctx context.Context, dest types.PlaceReference, tz *types.TimezoneInfo, rawText string) *types.CountryInfo {
	strategies := []countryStrategy{
		{
			name: "place_reference",
			candidate: func(_ context.Context, dest types.PlaceReference, tz *types.TimezoneInfo, rawText string) string {
				if dest.Country != "" {
					return dest.Country
				}
				if tz != nil && tz.CountryName != "" {
					return tz.CountryName
				}
				return rawText
			},
		},
		{
			name: "destination_text",
			candidate: func(_ context.Context, _ types.PlaceReference, _ *types.TimezoneInfo, rawText string) string {
				return rawText
			},
		},
		{
			name: "autocomplete_country",
			candidate: func(ctx context.Context, _ types.PlaceReference, _ *types.TimezoneInfo, rawText string) string {
				candidates, err := s.placeClient.Autocomplete(ctx, rawText, 1)
				if err != nil || len(candidates) == 0 {
					return ""
				}
				return candidates[0].Country
			},
		},
	}

	tried := make(map[string]bool)
	for _, strategy := range strategies {
		name := strings.TrimSpace(strategy.candidate(ctx, dest, tz, rawText))
		if name == "" || tried[strings.ToLower(name)] {
			continue
		}
		tried[strings.ToLower(name)] = true

		info, err := s.countryClient.GetCountryInfo(ctx, name)
		if err != nil {
			s.logger.DebugContext(ctx, "Country strategy failed",
				slog.String("strategy", strategy.name), slog.String("candidate", name), slog.Any("error", err))
			continue
		}
		if info != nil && info.CountryCode != "" {
			return info
		}
	}
	return nil
}

func (s *ServiceImpl) Weather(ctx context.Context, lat, lon float64, days int) (*types.WeatherForecast, error) {
	return s.weatherClient.GetForecast(ctx, lat, lon, days)
}

func (s *ServiceImpl) Timezone(ctx context.Context, lat, lon float64) (*types.TimezoneInfo, error) {
	return s.timezoneClient.GetTimezone(ctx, lat, lon)
}

func (s *ServiceImpl) CountryInfo(ctx context.Context, countryName string) (*types.CountryInfo, error) {
	return s.countryClient.GetCountryInfo(ctx, countryName)
}

func (s *ServiceImpl) Advisory(ctx context.Context, countryCode string) (*types.TravelAdvisory, error) {
	return s.advisoryClient.GetAdvisory(ctx, countryCode)
}

// ExchangeRate caches resolved rates so one request never pays for the
// same currency pair twice.
func (s *ServiceImpl) ExchangeRate(ctx context.Context, from, to string) (*types.ExchangeRate, error) {
	cacheKey := strings.ToUpper(from) + ":" + strings.ToUpper(to)
	if cached, found := s.rateCache.Get(cacheKey); found {
		rate := cached.(types.ExchangeRate)
		return &rate, nil
	}
	rate, err := s.exchangeClient.GetExchangeRate(ctx, from, to)
	if err != nil {
		return nil, err
	}
	s.rateCache.Set(cacheKey, *rate, gocache.DefaultExpiration)
	return rate, nil
}
