package poi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tripcraft/go-travel-planner/app/observability/metrics"
	"github.com/tripcraft/go-travel-planner/config"
	"github.com/tripcraft/go-travel-planner/internal/types"
)

var _ PlacesClient = (*GeoapifyClient)(nil)

// PlacesClient fetches nearby points of interest and routes between
// coordinate pairs.
type PlacesClient interface {
	GetPlaces(ctx context.Context, lat, lon float64, categories []string, radius, limit int) ([]types.POIDetail, error)
	GetRoute(ctx context.Context, from, to types.PlaceReference, mode string) (*types.RouteResult, error)
}

type GeoapifyClient struct {
	cfg        *config.Config
	httpClient *http.Client
}

func NewGeoapifyClient(cfg *config.Config) *GeoapifyClient {
	return &GeoapifyClient{cfg: cfg, httpClient: &http.Client{Timeout: cfg.Upstream.PlacesTimeout}}
}

func (c *GeoapifyClient) apiKey() (string, error) {
	key := os.Getenv("GEOAPIFY_API_KEY")
	if key == "" {
		return "", fmt.Errorf("missing Geoapify API key")
	}
	return key, nil
}

func (c *GeoapifyClient) GetPlaces(ctx context.Context, lat, lon float64, categories []string, radius, limit int) ([]types.POIDetail, error) {
	apiKey, err := c.apiKey()
	if err != nil {
		return nil, err
	}
	if lat == 0 && lon == 0 {
		return nil, fmt.Errorf("latitude and longitude are required for POI lookup")
	}

	params := url.Values{}
	params.Set("categories", strings.Join(categories, ","))
	params.Set("filter", fmt.Sprintf("circle:%f,%f,%d", lon, lat, radius))
	params.Set("bias", fmt.Sprintf("proximity:%f,%f", lon, lat))
	// Over-fetch so popularity ranking has candidates to discard.
	params.Set("limit", strconv.Itoa(limit*2))
	params.Set("apiKey", apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.Upstream.GeoapifyPlacesURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.Get().RecordUpstreamCall(ctx, "geoapify_places", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("places request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("places API returned status %d", resp.StatusCode)
	}

	var payload struct {
		Features []struct {
			ID         string `json:"id"`
			Properties struct {
				PlaceID          string   `json:"place_id"`
				Name             string   `json:"name"`
				AddressLine1     string   `json:"address_line1"`
				AddressLine2     string   `json:"address_line2"`
				Formatted        string   `json:"formatted"`
				Distance         *float64 `json:"distance"`
				Categories       []string `json:"categories"`
				PlaceDescription string   `json:"place_description"`
				Website          string   `json:"website"`
				Rank             struct {
					Popularity float64 `json:"popularity"`
					Confidence float64 `json:"confidence"`
				} `json:"rank"`
				Datasource struct {
					URL string `json:"url"`
				} `json:"datasource"`
			} `json:"properties"`
			Geometry struct {
				Coordinates []float64 `json:"coordinates"`
			} `json:"geometry"`
		} `json:"features"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode places response: %w", err)
	}

	pois := make([]types.POIDetail, 0, len(payload.Features))
	for _, feature := range payload.Features {
		props := feature.Properties

		name := props.Name
		if name == "" {
			name = props.AddressLine1
		}
		if name == "" {
			name = props.Formatted
		}
		if name == "" {
			continue
		}

		// Stable identifier so the UI can map list entries to markers.
		id := props.PlaceID
		if id == "" {
			id = feature.ID
		}
		if id == "" {
			id = uuid.NewSHA1(uuid.NameSpaceURL, []byte(name)).String()
		}

		var poiLat, poiLon float64
		if len(feature.Geometry.Coordinates) >= 2 {
			poiLon, poiLat = feature.Geometry.Coordinates[0], feature.Geometry.Coordinates[1]
		}

		rate := props.Rank.Popularity
		if rate == 0 {
			rate = props.Rank.Confidence
		}

		kinds := props.Categories
		if len(kinds) == 0 {
			kinds = categories
		}

		address := props.AddressLine1
		if address == "" {
			address = props.Formatted
		}
		description := props.PlaceDescription
		if description == "" {
			description = props.AddressLine2
		}
		poiURL := props.Website
		if poiURL == "" {
			poiURL = props.Datasource.URL
		}

		pois = append(pois, types.POIDetail{
			ID:          id,
			Name:        name,
			Lat:         poiLat,
			Lon:         poiLon,
			DistanceM:   props.Distance,
			Rate:        rate,
			Kinds:       kinds,
			Address:     address,
			Description: description,
			URL:         poiURL,
			Source:      "geoapify",
		})
	}
	return pois, nil
}

func (c *GeoapifyClient) GetRoute(ctx context.Context, from, to types.PlaceReference, mode string) (*types.RouteResult, error) {
	apiKey, err := c.apiKey()
	if err != nil {
		return nil, err
	}
	if mode == "" {
		mode = "drive"
	}

	params := url.Values{}
	params.Set("waypoints", fmt.Sprintf("%f,%f|%f,%f", from.Lat, from.Lon, to.Lat, to.Lon))
	params.Set("mode", mode)
	params.Set("apiKey", apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.Upstream.GeoapifyRoutingURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.Get().RecordUpstreamCall(ctx, "geoapify_routing", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("routing request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("routing API returned status %d", resp.StatusCode)
	}

	var payload struct {
		Features []struct {
			Properties struct {
				Distance float64 `json:"distance"`
				Time     float64 `json:"time"`
			} `json:"properties"`
			Geometry struct {
				Coordinates [][][]float64 `json:"coordinates"`
			} `json:"geometry"`
		} `json:"features"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode routing response: %w", err)
	}
	if len(payload.Features) == 0 {
		return nil, fmt.Errorf("no route found")
	}

	feature := payload.Features[0]
	var coordinates [][]float64
	for _, segment := range feature.Geometry.Coordinates {
		coordinates = append(coordinates, segment...)
	}

	return &types.RouteResult{
		Available:       true,
		DistanceKM:      feature.Properties.Distance / 1000.0,
		DurationMinutes: feature.Properties.Time / 60.0,
		Mode:            mode,
		Coordinates:     coordinates,
	}, nil
}
