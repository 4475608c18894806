package usecase

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	crerr "github.com/cockroachdb/errors"

	"github.com/jsvanda/infoboard/internal/domain/place"
	"github.com/jsvanda/infoboard/internal/platform/cache"
	"github.com/jsvanda/infoboard/internal/platform/geo"
	"github.com/jsvanda/infoboard/internal/platform/logging"
	"github.com/jsvanda/infoboard/internal/platform/resilience"
)

var postalRe = regexp.MustCompile(`^\d{5}$`)

// PlaceDirectory is the open-data dataset API behind the place search.
type PlaceDirectory interface {
	SearchByPostal(ctx context.Context, kind place.Kind, postal string, limit int) ([]place.Item, error)
	SearchByCity(ctx context.Context, kind place.Kind, city string, limit int) ([]place.Item, error)
	FetchCandidates(ctx context.Context, kind place.Kind) ([]place.Item, error)
}

type PlaceService struct {
	directory PlaceDirectory
	store     *cache.Store
	flight    resilience.SingleFlight
	logger    *logging.Logger
}

func NewPlaceService(directory PlaceDirectory, store *cache.Store, logger *logging.Logger) *PlaceService {
	if logger == nil {
		logger = logging.Default()
	}
	return &PlaceService{directory: directory, store: store, logger: logger}
}

// ByPostal finds records with an exact postal-code match.
func (s *PlaceService) ByPostal(ctx context.Context, kind place.Kind, postal string, limit int) ([]place.Item, bool, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlaceService.ByPostal")
	defer span.End()

	if !kind.Valid() {
		return nil, false, fmt.Errorf("%w: unknown place kind %q", ErrInvalidInput, kind)
	}
	postal = strings.ReplaceAll(strings.TrimSpace(postal), " ", "")
	if !postalRe.MatchString(postal) {
		return nil, false, fmt.Errorf("%w: postal code must be five digits", ErrInvalidInput)
	}
	limit = clampLimit(limit)

	key := fmt.Sprintf("places:%s:postal:%s:%d", kind, postal, limit)
	items, stale, err := cachedLoad(ctx, s.store, &s.flight, key,
		func(ctx context.Context) ([]place.Item, error) {
			return s.directory.SearchByPostal(ctx, kind, postal, limit)
		})
	if err != nil {
		return nil, false, crerr.CombineErrors(ErrUpstreamUnavailable, err)
	}
	return items, stale, nil
}

// ByCity finds records for one municipality. Accent and case differences
// between the query and the dataset are folded away upstream of the filter.
func (s *PlaceService) ByCity(ctx context.Context, kind place.Kind, city string, limit int) ([]place.Item, bool, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlaceService.ByCity")
	defer span.End()

	if !kind.Valid() {
		return nil, false, fmt.Errorf("%w: unknown place kind %q", ErrInvalidInput, kind)
	}
	city = strings.TrimSpace(city)
	if city == "" {
		return nil, false, fmt.Errorf("%w: city is required", ErrInvalidInput)
	}
	limit = clampLimit(limit)

	key := fmt.Sprintf("places:%s:city:%s:%d", kind, strings.ToLower(city), limit)
	items, stale, err := cachedLoad(ctx, s.store, &s.flight, key,
		func(ctx context.Context) ([]place.Item, error) {
			return s.directory.SearchByCity(ctx, kind, city, limit)
		})
	if err != nil {
		return nil, false, crerr.CombineErrors(ErrUpstreamUnavailable, err)
	}
	return items, stale, nil
}

// ByGeo ranks records by great-circle distance from the query point.
// Records without coordinates are excluded before ranking, and a radius
// bound excludes far candidates before the limit truncation so that a far
// record never displaces a nearer one.
func (s *PlaceService) ByGeo(ctx context.Context, kind place.Kind, lat, lon, radiusKm float64, limit int) ([]place.Item, bool, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlaceService.ByGeo")
	defer span.End()

	if !kind.Valid() {
		return nil, false, fmt.Errorf("%w: unknown place kind %q", ErrInvalidInput, kind)
	}
	if !geo.ValidCoordinates(lat, lon) {
		return nil, false, fmt.Errorf("%w: coordinates out of range", ErrInvalidInput)
	}
	if radiusKm < 0 || radiusKm > place.MaxRadiusKm {
		return nil, false, fmt.Errorf("%w: radius must be between 0 and %d km", ErrInvalidInput, place.MaxRadiusKm)
	}
	limit = clampLimit(limit)

	key := fmt.Sprintf("places:%s:candidates", kind)
	candidates, stale, err := cachedLoad(ctx, s.store, &s.flight, key,
		func(ctx context.Context) ([]place.Item, error) {
			return s.directory.FetchCandidates(ctx, kind)
		})
	if err != nil {
		return nil, false, crerr.CombineErrors(ErrUpstreamUnavailable, err)
	}

	return rankByDistance(candidates, lat, lon, radiusKm, limit), stale, nil
}

func (s *PlaceService) reloadCandidates(ctx context.Context, kind place.Kind) error {
	key := fmt.Sprintf("places:%s:candidates", kind)
	return reloadCached(ctx, s.store, &s.flight, key,
		func(ctx context.Context) ([]place.Item, error) {
			return s.directory.FetchCandidates(ctx, kind)
		})
}

func rankByDistance(candidates []place.Item, lat, lon, radiusKm float64, limit int) []place.Item {
	ranked := make([]place.Item, 0, len(candidates))
	for _, item := range candidates {
		if !item.HasCoordinates() {
			continue
		}
		distance := geo.Distance(lat, lon, *item.Lat, *item.Lon)
		if radiusKm > 0 && distance > radiusKm*1000 {
			continue
		}
		item.DistanceMeters = &distance
		ranked = append(ranked, item)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return *ranked[i].DistanceMeters < *ranked[j].DistanceMeters
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return place.DefaultLimit
	}
	if limit > place.MaxLimit {
		return place.MaxLimit
	}
	return limit
}
