package place

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
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

var _ AutocompleteClient = (*ClientImpl)(nil)

// AutocompleteClient resolves free text into ranked place candidates.
type AutocompleteClient interface {
	Autocomplete(ctx context.Context, query string, limit int) ([]types.PlaceReference, error)
}

// ClientImpl chains Geoapify, Nominatim and a built-in city table. The
// chain stops at the first provider that returns candidates.
type ClientImpl struct {
	logger     *slog.Logger
	cfg        *config.Config
	httpClient *http.Client
}

func NewClientImpl(cfg *config.Config, logger *slog.Logger) *ClientImpl {
	return &ClientImpl{
		logger:     logger,
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Upstream.AutocompleteTimeout},
	}
}

func (c *ClientImpl) Autocomplete(ctx context.Context, query string, limit int) ([]types.PlaceReference, error) {
	query = strings.TrimSpace(query)
	if len(query) < 2 {
		return nil, nil
	}
	if limit < 1 {
		limit = 10
	}

	if apiKey := os.Getenv("GEOAPIFY_API_KEY"); apiKey != "" {
		results, err := c.geoapifyAutocomplete(ctx, query, limit, apiKey)
		if err != nil {
			c.logger.WarnContext(ctx, "Geoapify autocomplete failed, trying Nominatim", slog.Any("error", err))
		} else if len(results) > 0 {
			return results, nil
		}
	}

	results, err := c.nominatimAutocomplete(ctx, query, limit)
	if err != nil {
		c.logger.WarnContext(ctx, "Nominatim autocomplete failed, using fallback", slog.Any("error", err))
	} else if len(results) > 0 {
		return results, nil
	}

	return fallbackAutocomplete(query, limit), nil
}

func (c *ClientImpl) geoapifyAutocomplete(ctx context.Context, query string, limit int, apiKey string) ([]types.PlaceReference, error) {
	if limit > 20 {
		limit = 20
	}
	params := url.Values{}
	params.Set("text", query)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("lang", "en")
	params.Set("apiKey", apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.Upstream.GeoapifyAutocompleteURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.Get().RecordUpstreamCall(ctx, "geoapify_autocomplete", time.Since(start), err)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geoapify autocomplete returned status %d", resp.StatusCode)
	}

	var payload struct {
		Features []struct {
			Properties struct {
				Lat          float64 `json:"lat"`
				Lon          float64 `json:"lon"`
				City         string  `json:"city"`
				Name         string  `json:"name"`
				AddressLine1 string  `json:"address_line1"`
				Formatted    string  `json:"formatted"`
				Country      string  `json:"country"`
				State        string  `json:"state"`
			} `json:"properties"`
			Geometry struct {
				Coordinates []float64 `json:"coordinates"`
			} `json:"geometry"`
		} `json:"features"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode geoapify autocomplete response: %w", err)
	}

	results := make([]types.PlaceReference, 0, len(payload.Features))
	for _, feature := range payload.Features {
		props := feature.Properties
		lat, lon := props.Lat, props.Lon
		if lat == 0 && lon == 0 && len(feature.Geometry.Coordinates) == 2 {
			lon, lat = feature.Geometry.Coordinates[0], feature.Geometry.Coordinates[1]
		}
		if lat == 0 && lon == 0 {
			continue
		}

		name := props.City
		if name == "" {
			name = props.Name
		}
		if name == "" {
			name = props.AddressLine1
		}
		if name == "" {
			name = props.Formatted
		}
		if name == "" {
			continue
		}

		display := props.Formatted
		if display == "" {
			display = name
		}
		results = append(results, types.PlaceReference{
			Name:        name,
			Country:     props.Country,
			State:       props.State,
			Lat:         lat,
			Lon:         lon,
			DisplayName: display,
			Source:      "geoapify",
		})
		if len(results) >= limit {
			break
		}
	}
	return results, nil
}

func (c *ClientImpl) nominatimAutocomplete(ctx context.Context, query string, limit int) ([]types.PlaceReference, error) {
	if limit > 10 {
		limit = 10
	}
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("limit", strconv.Itoa(limit))
	params.Set("addressdetails", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.Upstream.NominatimURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	// Nominatim requires an identifying user agent.
	req.Header.Set("User-Agent", "TravelPlanner/1.0 (demo@example.com)")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.Get().RecordUpstreamCall(ctx, "nominatim", time.Since(start), err)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("nominatim returned status %d", resp.StatusCode)
	}

	var entries []struct {
		Lat         string `json:"lat"`
		Lon         string `json:"lon"`
		DisplayName string `json:"display_name"`
		Address     struct {
			City    string `json:"city"`
			Town    string `json:"town"`
			State   string `json:"state"`
			Country string `json:"country"`
		} `json:"address"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("failed to decode nominatim response: %w", err)
	}

	results := make([]types.PlaceReference, 0, len(entries))
	for _, entry := range entries {
		lat, _ := strconv.ParseFloat(entry.Lat, 64)
		lon, _ := strconv.ParseFloat(entry.Lon, 64)
		if lat == 0 || lon == 0 {
			continue
		}

		name := entry.Address.City
		if name == "" {
			name = entry.Address.Town
		}
		if name == "" {
			name = entry.Address.State
		}
		if name == "" {
			name = entry.DisplayName
		}
		if name == "" {
			continue
		}

		results = append(results, types.PlaceReference{
			Name:        name,
			Country:     entry.Address.Country,
			State:       entry.Address.State,
			Lat:         lat,
			Lon:         lon,
			DisplayName: entry.DisplayName,
			Source:      "nominatim",
		})
		if len(results) >= limit {
			break
		}
	}
	return results, nil
}

// fallbackCities keeps autocomplete usable when both geocoders are down.
var fallbackCities = []types.PlaceReference{
	{Name: "Paris", Country: "France", Lat: 48.8566, Lon: 2.3522},
	{Name: "London", Country: "United Kingdom", Lat: 51.5074, Lon: -0.1278},
	{Name: "New York", Country: "United States", Lat: 40.7128, Lon: -74.0060},
	{Name: "Tokyo", Country: "Japan", Lat: 35.6762, Lon: 139.6503},
	{Name: "Dubai", Country: "United Arab Emirates", Lat: 25.2048, Lon: 55.2708},
	{Name: "Barcelona", Country: "Spain", Lat: 41.3851, Lon: 2.1734},
	{Name: "Rome", Country: "Italy", Lat: 41.9028, Lon: 12.4964},
	{Name: "Amsterdam", Country: "Netherlands", Lat: 52.3676, Lon: 4.9041},
	{Name: "Berlin", Country: "Germany", Lat: 52.5200, Lon: 13.4050},
	{Name: "Sydney", Country: "Australia", Lat: -33.8688, Lon: 151.2093},
	{Name: "Singapore", Country: "Singapore", Lat: 1.3521, Lon: 103.8198},
	{Name: "Bangkok", Country: "Thailand", Lat: 13.7563, Lon: 100.5018},
	{Name: "Mumbai", Country: "India", Lat: 19.0760, Lon: 72.8777},
	{Name: "Istanbul", Country: "Turkey", Lat: 41.0082, Lon: 28.9784},
	{Name: "Los Angeles", Country: "United States", Lat: 34.0522, Lon: -118.2437},
	{Name: "Toronto", Country: "Canada", Lat: 43.6532, Lon: -79.3832},
	{Name: "Mexico City", Country: "Mexico", Lat: 19.4326, Lon: -99.1332},
	{Name: "Rio de Janeiro", Country: "Brazil", Lat: -22.9068, Lon: -43.1729},
	{Name: "Cairo", Country: "Egypt", Lat: 30.0444, Lon: 31.2357},
	{Name: "Cape Town", Country: "South Africa", Lat: -33.9249, Lon: 18.4241},
}

func fallbackAutocomplete(query string, limit int) []types.PlaceReference {
	q := strings.ToLower(query)
	var matches []types.PlaceReference
	for _, city := range fallbackCities {
		if strings.Contains(strings.ToLower(city.Name), q) || strings.Contains(strings.ToLower(city.Country), q) {
			matches = append(matches, city)
			if len(matches) >= limit {
				break
			}
		}
	}
	return matches
}
