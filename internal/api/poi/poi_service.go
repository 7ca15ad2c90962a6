package poi

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/tripcraft/go-travel-planner/internal/types"
)

const (
	defaultPOIRadius = 2500
	defaultPOILimit  = 15
	hotelRadius      = 2000
	hotelLimit       = 6
)

var defaultPOIKinds = []string{
	"cultural", "historic", "museums", "natural", "parks",
	"foods", "restaurants", "shops", "sport", "interesting_places",
}

var hotelKinds = []string{"hotels", "hostels", "guest_houses"}

// kindCategoryMap translates place kinds into Geoapify category strings.
var kindCategoryMap = map[string][]string{
	"foods":              {"catering.restaurant", "catering.fast_food"},
	"restaurants":        {"catering.restaurant"},
	"cafes":              {"catering.cafe"},
	"cultural":           {"entertainment.culture", "tourism.sights"},
	"historic":           {"heritage.sights", "tourism.sights"},
	"museums":            {"entertainment.museum"},
	"natural":            {"natural", "tourism.sights"},
	"parks":              {"leisure.park"},
	"shops":              {"commercial.shopping_mall", "commercial.shopping_center"},
	"sport":              {"sport.sport_center"},
	"interesting_places": {"tourism.attraction"},
	"beaches":            {"natural.beach"},
	"mountains":          {"natural.mountain"},
	"hotels":             {"accommodation.hotel"},
	"hostels":            {"accommodation.hostel"},
	"guest_houses":       {"accommodation.guest_house"},
}

var defaultPOICategories = []string{
	"tourism.sights",
	"tourism.attraction",
	"entertainment.culture",
	"catering.restaurant",
	"catering.cafe",
	"leisure.park",
}

// interestKindMap classifies form interests into the place-kind
// vocabulary. Tags outside the table fall back to interesting_places.
var interestKindMap = map[string][]string{
	"history & culture": {"historic", "cultural", "museums"},
	"food & dining":     {"foods", "cafes", "restaurants"},
	"adventure sports":  {"sport"},
	"nature":            {"natural", "parks"},
	"nightlife":         {"interesting_places", "foods"},
	"shopping":          {"shops"},
	"beach":             {"beaches"},
	"mountains":         {"mountains"},
	"art & museums":     {"museums", "cultural"},
	"photography":       {"interesting_places", "natural"},
}

var _ Service = (*ServiceImpl)(nil)

// Service exposes POI, hotel and route lookups for map enrichment.
type Service interface {
	GetPOIs(ctx context.Context, lat, lon float64, kinds []string, radius, limit int) ([]types.POIDetail, error)
	GetHotels(ctx context.Context, lat, lon float64, radius, limit int) ([]types.POIDetail, error)
	GetRoute(ctx context.Context, from, to types.PlaceReference) *types.RouteResult
	KindsForInterests(interests []string) []string
}

type ServiceImpl struct {
	logger       *slog.Logger
	placesClient PlacesClient
	cache        *gocache.Cache
}

func NewServiceImpl(placesClient PlacesClient, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:       logger,
		placesClient: placesClient,
		cache:        gocache.New(time.Hour, 2*time.Hour),
	}
}

// KindsForInterests maps interest tags through the fixed lookup table.
// The result is never empty: unmapped or empty sets yield the default
// catch-all kind.
func (s *ServiceImpl) KindsForInterests(interests []string) []string {
	var kinds []string
	seen := make(map[string]bool)
	for _, interest := range interests {
		for _, kind := range interestKindMap[strings.ToLower(strings.TrimSpace(interest))] {
			if !seen[kind] {
				seen[kind] = true
				kinds = append(kinds, kind)
			}
		}
	}
	if len(kinds) == 0 {
		kinds = []string{"interesting_places"}
	}
	return kinds
}

func categoriesFromKinds(kinds []string) []string {
	if len(kinds) == 0 {
		kinds = defaultPOIKinds
	}
	var categories []string
	seen := make(map[string]bool)
	for _, kind := range kinds {
		for _, category := range kindCategoryMap[strings.ToLower(strings.TrimSpace(kind))] {
			if !seen[category] {
				seen[category] = true
				categories = append(categories, category)
			}
		}
	}
	if len(categories) == 0 {
		categories = defaultPOICategories
	}
	return categories
}

func (s *ServiceImpl) GetPOIs(ctx context.Context, lat, lon float64, kinds []string, radius, limit int) ([]types.POIDetail, error) {
	ctx, span := otel.Tracer("POIService").Start(ctx, "GetPOIs")
	defer span.End()

	if radius <= 0 {
		radius = defaultPOIRadius
	}
	if limit <= 0 {
		limit = defaultPOILimit
	}
	radius = clamp(radius, 500, 5000)
	limit = clamp(limit, 5, 18)

	cacheKey := fmt.Sprintf("pois:%.4f:%.4f:%s:%d", lat, lon, strings.Join(kinds, ","), radius)
	if cached, found := s.cache.Get(cacheKey); found {
		return cached.([]types.POIDetail), nil
	}

	categories := categoriesFromKinds(kinds)
	span.SetAttributes(attribute.Int("poi.categories", len(categories)))

	pois, err := s.placesClient.GetPlaces(ctx, lat, lon, categories, radius, limit)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to fetch POIs", slog.Any("error", err))
		return nil, err
	}

	// Popularity first, then proximity.
	sort.SliceStable(pois, func(i, j int) bool {
		if pois[i].Rate != pois[j].Rate {
			return pois[i].Rate > pois[j].Rate
		}
		return distanceOf(pois[i]) < distanceOf(pois[j])
	})
	if len(pois) > limit {
		pois = pois[:limit]
	}

	s.cache.Set(cacheKey, pois, gocache.DefaultExpiration)
	return pois, nil
}

func (s *ServiceImpl) GetHotels(ctx context.Context, lat, lon float64, radius, limit int) ([]types.POIDetail, error) {
	if radius <= 0 {
		radius = hotelRadius
	}
	if limit <= 0 {
		limit = hotelLimit
	}
	return s.GetPOIs(ctx, lat, lon, hotelKinds, radius, limit)
}

// GetRoute requires both endpoints to carry coordinates; otherwise it
// reports unavailability without blocking itinerary display.
func (s *ServiceImpl) GetRoute(ctx context.Context, from, to types.PlaceReference) *types.RouteResult {
	ctx, span := otel.Tracer("POIService").Start(ctx, "GetRoute")
	defer span.End()

	if !from.Resolved() || !to.Resolved() {
		return &types.RouteResult{
			Available: false,
			Message:   "Route unavailable: both source and destination need resolved coordinates",
		}
	}

	route, err := s.placesClient.GetRoute(ctx, from, to, "drive")
	if err != nil {
		s.logger.WarnContext(ctx, "Route fetch failed", slog.Any("error", err))
		return &types.RouteResult{
			Available: false,
			Message:   fmt.Sprintf("Route unavailable between %s and %s", from.Name, to.Name),
		}
	}
	return route
}

func clamp(value, min, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

func distanceOf(p types.POIDetail) float64 {
	if p.DistanceM == nil {
		return 1e18
	}
	return *p.DistanceM
}
