package usecase

import (
	"context"

	crerr "github.com/cockroachdb/errors"

	"github.com/jsvanda/infoboard/internal/domain/tvguide"
	"github.com/jsvanda/infoboard/internal/platform/cache"
	"github.com/jsvanda/infoboard/internal/platform/logging"
	"github.com/jsvanda/infoboard/internal/platform/resilience"
)

// ScheduleProvider scrapes the TV broadcast programme page.
type ScheduleProvider interface {
	FetchSchedule(ctx context.Context) ([]tvguide.ScheduleEntry, error)
}

type TVGuideService struct {
	provider ScheduleProvider
	store    *cache.Store
	flight   resilience.SingleFlight
	logger   *logging.Logger
}

func NewTVGuideService(provider ScheduleProvider, store *cache.Store, logger *logging.Logger) *TVGuideService {
	if logger == nil {
		logger = logging.Default()
	}
	return &TVGuideService{provider: provider, store: store, logger: logger}
}

// Schedule returns upcoming televised matches. An empty result is a valid
// answer, not an error, since the scraped page degrades on redesign.
func (s *TVGuideService) Schedule(ctx context.Context) ([]tvguide.ScheduleEntry, bool, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TVGuideService.Schedule")
	defer span.End()

	entries, stale, err := cachedLoad(ctx, s.store, &s.flight, "tv:schedule",
		func(ctx context.Context) ([]tvguide.ScheduleEntry, error) {
			return s.provider.FetchSchedule(ctx)
		})
	if err != nil {
		return nil, false, crerr.CombineErrors(ErrUpstreamUnavailable, err)
	}
	if stale {
		s.logger.WarnContext(ctx, "serving stale tv schedule")
	}
	if len(entries) == 0 {
		s.logger.WarnContext(ctx, "tv schedule is empty, possible upstream redesign")
	}
	return entries, stale, nil
}

func (s *TVGuideService) reloadSchedule(ctx context.Context) error {
	return reloadCached(ctx, s.store, &s.flight, "tv:schedule",
		func(ctx context.Context) ([]tvguide.ScheduleEntry, error) {
			return s.provider.FetchSchedule(ctx)
		})
}
