package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/tripcraft/go-travel-planner/app/observability/metrics"
	"github.com/tripcraft/go-travel-planner/config"
	"github.com/tripcraft/go-travel-planner/internal/types"
)

var _ FlightsClient = (*TequilaClient)(nil)

// FlightsClient provides live flight fares. Both operations return empty
// results when the provider is not configured; the pricing service then
// falls back to distance-based estimates.
type FlightsClient interface {
	LookupIATA(ctx context.Context, term, country string) (string, error)
	SearchFlights(ctx context.Context, fromCode, toCode string, departure time.Time, travelers int, currency string) ([]types.TransportQuote, error)
}

type TequilaClient struct {
	logger     *slog.Logger
	cfg        *config.Config
	httpClient *http.Client
}

func NewTequilaClient(cfg *config.Config, logger *slog.Logger) *TequilaClient {
	return &TequilaClient{logger: logger, cfg: cfg, httpClient: &http.Client{Timeout: cfg.Upstream.FlightsTimeout}}
}

func (c *TequilaClient) apiKey() string {
	return os.Getenv("TEQUILA_API_KEY")
}

func (c *TequilaClient) Enabled() bool {
	return c.apiKey() != ""
}

// LookupIATA resolves a free-text city name to an IATA code.
func (c *TequilaClient) LookupIATA(ctx context.Context, term, country string) (string, error) {
	if !c.Enabled() || strings.TrimSpace(term) == "" {
		return "", nil
	}

	params := url.Values{}
	params.Set("term", term)
	params.Set("location_types", "city")
	params.Set("limit", "1")
	if country != "" {
		params.Set("country", strings.ToUpper(country))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.Upstream.TequilaURL+"/locations/query?"+params.Encode(), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("apikey", c.apiKey())

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.Get().RecordUpstreamCall(ctx, "tequila_locations", time.Since(start), err)
	if err != nil {
		return "", fmt.Errorf("IATA lookup failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("IATA lookup returned status %d", resp.StatusCode)
	}

	var payload struct {
		Locations []struct {
			Code string `json:"code"`
		} `json:"locations"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("failed to decode IATA lookup response: %w", err)
	}
	if len(payload.Locations) == 0 {
		return "", nil
	}
	return payload.Locations[0].Code, nil
}

func (c *TequilaClient) SearchFlights(ctx context.Context, fromCode, toCode string, departure time.Time, travelers int, currency string) ([]types.TransportQuote, error) {
	if !c.Enabled() || fromCode == "" || toCode == "" {
		return nil, nil
	}
	if travelers < 1 {
		travelers = 1
	}

	dateStr := departure.Format("02/01/2006")
	params := url.Values{}
	params.Set("fly_from", fromCode)
	params.Set("fly_to", toCode)
	params.Set("date_from", dateStr)
	params.Set("date_to", dateStr)
	params.Set("curr", currency)
	params.Set("adults", strconv.Itoa(travelers))
	params.Set("limit", "4")
	params.Set("sort", "price")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.Upstream.TequilaURL+"/v2/search?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("apikey", c.apiKey())

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.Get().RecordUpstreamCall(ctx, "tequila_search", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("flight search failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("flight search returned status %d", resp.StatusCode)
	}

	var payload struct {
		Data []struct {
			ID       string            `json:"id"`
			Price    float64           `json:"price"`
			Airlines []string          `json:"airlines"`
			Route    []json.RawMessage `json:"route"`
			Duration struct {
				Total float64 `json:"total"`
			} `json:"duration"`
			DeepLink       string `json:"deep_link"`
			LocalDeparture string `json:"local_departure"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode flight search response: %w", err)
	}

	quotes := make([]types.TransportQuote, 0, len(payload.Data))
	for _, entry := range payload.Data {
		carrier := "Multiple"
		if len(entry.Airlines) > 0 {
			carrier = entry.Airlines[0]
		}

		groupPrice := round2(entry.Price * float64(travelers))
		departureDate := entry.LocalDeparture
		if len(departureDate) > 10 {
			departureDate = departureDate[:10]
		}

		quote := types.TransportQuote{
			ID:             entry.ID,
			Mode:           "flight",
			Provider:       carrier,
			Currency:       currency,
			PricePerPerson: entry.Price,
			GroupPrice:     &groupPrice,
			DurationHours:  round1(entry.Duration.Total / 3600.0),
			Confidence:     types.ConfidenceLive,
			BookingURL:     entry.DeepLink,
			Departure:      departureDate,
		}
		if len(entry.Route) > 0 {
			stops := len(entry.Route) - 1
			quote.Stops = &stops
		}
		quotes = append(quotes, quote)
	}
	return quotes, nil
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
