package place

import (
	"context"
	"log/slog"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/tripcraft/go-travel-planner/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

// Service defines the place-resolution contract used by the aggregation
// pipeline and the autocomplete endpoint.
type Service interface {
	Autocomplete(ctx context.Context, query string, limit int) ([]types.PlaceReference, error)
	Resolve(ctx context.Context, raw string, detail *types.PlaceReference) types.PlaceReference
}

type ServiceImpl struct {
	logger *slog.Logger
	client AutocompleteClient
	cache  *gocache.Cache
}

func NewServiceImpl(client AutocompleteClient, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger: logger,
		client: client,
		cache:  gocache.New(time.Hour, 2*time.Hour),
	}
}

func (s *ServiceImpl) Autocomplete(ctx context.Context, query string, limit int) ([]types.PlaceReference, error) {
	query = strings.TrimSpace(query)
	if len(query) < 2 {
		return []types.PlaceReference{}, nil
	}
	if limit < 1 {
		limit = 10
	}

	cacheKey := "autocomplete:" + strings.ToLower(query)
	if cached, found := s.cache.Get(cacheKey); found {
		return cached.([]types.PlaceReference), nil
	}

	results, err := s.client.Autocomplete(ctx, query, limit)
	if err != nil {
		s.logger.ErrorContext(ctx, "Autocomplete lookup failed", slog.Any("error", err), slog.String("query", query))
		return nil, err
	}
	if results == nil {
		results = []types.PlaceReference{}
	}
	s.cache.Set(cacheKey, results, gocache.DefaultExpiration)
	return results, nil
}

// Resolve produces a PlaceReference with coordinates for downstream
// enrichment. A detail chosen from an autocomplete suggestion is reused
// verbatim; otherwise one lookup is issued and the first candidate wins.
// Lookup failure degrades to a zero-coordinate placeholder and is never
// surfaced as a request failure.
func (s *ServiceImpl) Resolve(ctx context.Context, raw string, detail *types.PlaceReference) types.PlaceReference {
	ctx, span := otel.Tracer("PlaceService").Start(ctx, "Resolve")
	defer span.End()

	raw = strings.TrimSpace(raw)
	if detail != nil && detail.Resolved() {
		resolved := *detail
		if resolved.Name == "" {
			resolved.Name = raw
		}
		span.SetAttributes(attribute.String("place.source", "cached"))
		return resolved
	}

	candidates, err := s.client.Autocomplete(ctx, raw, 1)
	if err != nil {
		s.logger.WarnContext(ctx, "Place lookup failed, using unresolved placeholder",
			slog.Any("error", err), slog.String("place", raw))
		return types.PlaceReference{Name: raw}
	}
	if len(candidates) == 0 {
		s.logger.DebugContext(ctx, "No candidates for place, using unresolved placeholder", slog.String("place", raw))
		return types.PlaceReference{Name: raw}
	}

	resolved := candidates[0]
	if resolved.Name == "" {
		resolved.Name = raw
	}
	span.SetAttributes(attribute.String("place.source", resolved.Source))
	return resolved
}
