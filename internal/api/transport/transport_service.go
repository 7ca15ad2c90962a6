package transport

import (
	"context"
	"log/slog"
	"math"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/tripcraft/go-travel-planner/internal/types"
)

const (
	earthRadiusKM              = 6371.0
	defaultDepartureOffsetDays = 30
	defaultFlightCurrency      = "USD"
	fallbackDistanceKM         = 800.0
)

type trainClassRate struct {
	Label          string
	PerKM          float64
	ReservationFee float64
	SuperfastFee   float64
}

// Indian Railways fare slabs per class, INR. Superfast surcharge applies
// to journeys of 300 km or more; 5% GST on the sum.
var trainClassRates = []struct {
	Code string
	Rate trainClassRate
}{
	{"SL", trainClassRate{"Sleeper", 0.75, 20, 45}},
	{"3A", trainClassRate{"AC 3 Tier", 1.9, 40, 45}},
	{"2A", trainClassRate{"AC 2 Tier", 2.45, 50, 45}},
	{"1A", trainClassRate{"AC First", 4.35, 60, 45}},
	{"CC", trainClassRate{"AC Chair Car", 1.28, 40, 45}},
}

var cityToAirport = map[string]string{
	"new delhi":     "DEL",
	"delhi":         "DEL",
	"mumbai":        "BOM",
	"bengaluru":     "BLR",
	"bangalore":     "BLR",
	"chennai":       "MAA",
	"kolkata":       "CCU",
	"hyderabad":     "HYD",
	"pune":          "PNQ",
	"goa":           "GOI",
	"kochi":         "COK",
	"ahmedabad":     "AMD",
	"jaipur":        "JAI",
	"dubai":         "DXB",
	"singapore":     "SIN",
	"tokyo":         "TYO",
	"osaka":         "OSA",
	"paris":         "PAR",
	"london":        "LON",
	"new york":      "NYC",
	"san francisco": "SFO",
	"los angeles":   "LAX",
	"sydney":        "SYD",
	"melbourne":     "MEL",
	"toronto":       "YTO",
}

var countryAliases = map[string]string{
	"INDIA":                    "IN",
	"UNITED STATES":            "US",
	"UNITED STATES OF AMERICA": "US",
}

var _ Service = (*ServiceImpl)(nil)

// Service prices the journey between the trip endpoints. Domestic Indian
// trips are priced as train fares, everything else as flights with a
// distance heuristic standing in when no live provider is available.
type Service interface {
	BuildPricing(ctx context.Context, source, destination types.PlaceReference, departureDate string, travelers int) *types.TransportOptions
}

type ServiceImpl struct {
	logger        *slog.Logger
	flightsClient FlightsClient
}

func NewServiceImpl(flightsClient FlightsClient, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{logger: logger, flightsClient: flightsClient}
}

func (s *ServiceImpl) BuildPricing(ctx context.Context, source, destination types.PlaceReference, departureDate string, travelers int) *types.TransportOptions {
	ctx, span := otel.Tracer("TransportService").Start(ctx, "BuildPricing")
	defer span.End()

	if travelers < 1 {
		travelers = 1
	}
	departure := normalizeDate(departureDate)
	distanceKM := haversineDistance(source, destination)

	sourceCountry := normalizeCountryCode(source.Country)
	destCountry := normalizeCountryCode(destination.Country)

	options := &types.TransportOptions{
		Travelers:     travelers,
		DepartureDate: departure.Format("2006-01-02"),
		Source:        types.TransportEndpoint{Label: source.Name, Country: sourceCountry},
		Destination:   types.TransportEndpoint{Label: destination.Name, Country: destCountry},
	}
	if distanceKM > 0 {
		rounded := round1(distanceKM)
		options.DistanceKM = &rounded
	}

	if sourceCountry == "IN" && destCountry == "IN" {
		options.TripType = "india_train"
		options.Quotes = estimateTrainQuotes(travelers, departure, distanceKM)
	} else {
		options.TripType = "international_flight"
		options.Quotes = s.flightQuotes(ctx, source, destination, sourceCountry, destCountry, departure, travelers, distanceKM)
	}

	span.SetAttributes(
		attribute.String("transport.trip_type", options.TripType),
		attribute.Int("transport.quotes", len(options.Quotes)),
	)
	return options
}

func (s *ServiceImpl) flightQuotes(ctx context.Context, source, destination types.PlaceReference, sourceCountry, destCountry string, departure time.Time, travelers int, distanceKM float64) []types.TransportQuote {
	sourceCode := s.resolveAirportCode(ctx, source, sourceCountry)
	destCode := s.resolveAirportCode(ctx, destination, destCountry)

	quotes, err := s.flightsClient.SearchFlights(ctx, sourceCode, destCode, departure, travelers, defaultFlightCurrency)
	if err != nil {
		s.logger.WarnContext(ctx, "Live flight search failed, using fallback fares", slog.Any("error", err))
	}
	if len(quotes) == 0 {
		quotes = fallbackFlightQuotes(distanceKM, travelers, defaultFlightCurrency)
	}
	return quotes
}

func (s *ServiceImpl) resolveAirportCode(ctx context.Context, place types.PlaceReference, country string) string {
	if code, ok := cityToAirport[strings.ToLower(strings.TrimSpace(place.Name))]; ok {
		return code
	}
	code, err := s.flightsClient.LookupIATA(ctx, place.Name, country)
	if err != nil {
		s.logger.WarnContext(ctx, "IATA lookup failed", slog.String("place", place.Name), slog.Any("error", err))
		return ""
	}
	return code
}

func estimateTrainQuotes(travelers int, departure time.Time, distanceKM float64) []types.TransportQuote {
	if distanceKM <= 0 {
		distanceKM = fallbackDistanceKM
	}
	if travelers < 1 {
		travelers = 1
	}

	quotes := make([]types.TransportQuote, 0, len(trainClassRates))
	for _, class := range trainClassRates {
		baseFare := distanceKM * class.Rate.PerKM
		reservation := class.Rate.ReservationFee
		superfast := 0.0
		if distanceKM >= 300 {
			superfast = class.Rate.SuperfastFee
		}
		gst := 0.05 * (baseFare + reservation + superfast)
		perPerson := round2(baseFare + reservation + superfast + gst)
		groupPrice := round2(perPerson * float64(travelers))

		quotes = append(quotes, types.TransportQuote{
			ID:             "train-" + class.Code,
			Mode:           "train",
			Provider:       "Indian Railways",
			Class:          class.Code,
			ClassLabel:     class.Rate.Label,
			Currency:       "INR",
			PricePerPerson: perPerson,
			GroupPrice:     &groupPrice,
			DurationHours:  round1(math.Max(6.0, distanceKM/55.0)),
			Confidence:     types.ConfidenceEstimated,
			Notes:          "Estimation based on IRCTC fare slabs with GST & reservation charges",
			Departure:      departure.Format("2006-01-02"),
		})
	}
	return quotes
}

func fallbackFlightQuotes(distanceKM float64, travelers int, currency string) []types.TransportQuote {
	if distanceKM <= 0 {
		distanceKM = fallbackDistanceKM
	}
	if travelers < 1 {
		travelers = 1
	}

	baseEconomy := math.Max(120.0, 0.11*distanceKM+90)
	tiers := []struct {
		Cabin string
		Price float64
	}{
		{"Economy", baseEconomy},
		{"Premium Economy", baseEconomy * 1.6},
		{"Business", baseEconomy * 2.4},
	}

	quotes := make([]types.TransportQuote, 0, len(tiers))
	for _, tier := range tiers {
		perPerson := round2(tier.Price)
		groupPrice := round2(tier.Price * float64(travelers))
		quotes = append(quotes, types.TransportQuote{
			ID:             "flight-" + strings.ReplaceAll(strings.ToLower(tier.Cabin), " ", "-"),
			Mode:           "flight",
			Provider:       tier.Cabin,
			Currency:       currency,
			PricePerPerson: perPerson,
			GroupPrice:     &groupPrice,
			DurationHours:  round1(math.Max(3.0, distanceKM/750.0)),
			Confidence:     types.ConfidenceEstimated,
			Notes:          "Estimated using distance-based heuristic due to missing live API key",
		})
	}
	return quotes
}

// haversineDistance is zero when either endpoint lacks coordinates.
func haversineDistance(source, destination types.PlaceReference) float64 {
	if !source.Resolved() || !destination.Resolved() {
		return 0
	}

	phi1 := source.Lat * math.Pi / 180
	phi2 := destination.Lat * math.Pi / 180
	dPhi := (destination.Lat - source.Lat) * math.Pi / 180
	dLambda := (destination.Lon - source.Lon) * math.Pi / 180

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKM * c
}

func normalizeDate(value string) time.Time {
	if value != "" {
		if parsed, err := time.Parse("2006-01-02", value); err == nil {
			return parsed
		}
		if parsed, err := time.Parse(time.RFC3339, value); err == nil {
			return parsed
		}
	}
	return time.Now().UTC().AddDate(0, 0, defaultDepartureOffsetDays)
}

func normalizeCountryCode(raw string) string {
	code := strings.ToUpper(strings.TrimSpace(raw))
	if code == "" || len(code) == 2 {
		return code
	}
	if alias, ok := countryAliases[code]; ok {
		return alias
	}
	return code
}
