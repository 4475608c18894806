package usecase

import (
	"context"
	"fmt"

	crerr "github.com/cockroachdb/errors"

	"github.com/jsvanda/infoboard/internal/domain/sportdata"
	"github.com/jsvanda/infoboard/internal/platform/cache"
	"github.com/jsvanda/infoboard/internal/platform/logging"
	"github.com/jsvanda/infoboard/internal/platform/resilience"
)

// ResultsProvider is the compressed sports-data feed.
type ResultsProvider interface {
	FetchMatches(ctx context.Context, sport sportdata.Sport) ([]sportdata.MatchResult, error)
	FetchRaceResults(ctx context.Context) ([]sportdata.RaceResult, error)
}

type ResultsService struct {
	provider ResultsProvider
	matches  *cache.Store
	races    *cache.Store
	flight   resilience.SingleFlight
	logger   *logging.Logger
}

func NewResultsService(provider ResultsProvider, matches, races *cache.Store, logger *logging.Logger) *ResultsService {
	if logger == nil {
		logger = logging.Default()
	}
	return &ResultsService{
		provider: provider,
		matches:  matches,
		races:    races,
		logger:   logger,
	}
}

// Matches returns the latest finished matches for one sport. The second
// return value reports whether a stale cache entry was served because the
// upstream feed was unavailable.
func (s *ResultsService) Matches(ctx context.Context, sport sportdata.Sport) ([]sportdata.MatchResult, bool, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ResultsService.Matches")
	defer span.End()

	if !sport.Valid() {
		return nil, false, fmt.Errorf("%w: unknown sport %q", ErrInvalidInput, sport)
	}

	key := "results:matches:" + string(sport)
	results, stale, err := cachedLoad(ctx, s.matches, &s.flight, key,
		func(ctx context.Context) ([]sportdata.MatchResult, error) {
			return s.provider.FetchMatches(ctx, sport)
		})
	if err != nil {
		return nil, false, crerr.CombineErrors(ErrUpstreamUnavailable, err)
	}
	if stale {
		s.logger.WarnContext(ctx, "serving stale match results", "sport", string(sport))
	}
	return results, stale, nil
}

// RaceResults returns the most recent race podium.
func (s *ResultsService) RaceResults(ctx context.Context) ([]sportdata.RaceResult, bool, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ResultsService.RaceResults")
	defer span.End()

	results, stale, err := cachedLoad(ctx, s.races, &s.flight, "results:races",
		func(ctx context.Context) ([]sportdata.RaceResult, error) {
			return s.provider.FetchRaceResults(ctx)
		})
	if err != nil {
		return nil, false, crerr.CombineErrors(ErrUpstreamUnavailable, err)
	}
	if stale {
		s.logger.WarnContext(ctx, "serving stale race results")
	}
	return results, stale, nil
}

func (s *ResultsService) reloadMatches(ctx context.Context, sport sportdata.Sport) error {
	key := "results:matches:" + string(sport)
	return reloadCached(ctx, s.matches, &s.flight, key,
		func(ctx context.Context) ([]sportdata.MatchResult, error) {
			return s.provider.FetchMatches(ctx, sport)
		})
}

func (s *ResultsService) reloadRaces(ctx context.Context) error {
	return reloadCached(ctx, s.races, &s.flight, "results:races",
		func(ctx context.Context) ([]sportdata.RaceResult, error) {
			return s.provider.FetchRaceResults(ctx)
		})
}
