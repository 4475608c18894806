package usecase

import (
	"context"
	"fmt"
	"time"

	crerr "github.com/cockroachdb/errors"

	"github.com/jsvanda/infoboard/internal/domain/calendar"
	"github.com/jsvanda/infoboard/internal/ics"
	"github.com/jsvanda/infoboard/internal/platform/cache"
	"github.com/jsvanda/infoboard/internal/platform/logging"
	"github.com/jsvanda/infoboard/internal/platform/resilience"
)

// FeedProvider downloads raw ICS text for a registered calendar source.
type FeedProvider interface {
	FetchFeed(ctx context.Context, src calendar.Source) (string, error)
}

type CalendarService struct {
	provider FeedProvider
	store    *cache.Store
	flight   resilience.SingleFlight
	logger   *logging.Logger
	now      func() time.Time
}

func NewCalendarService(provider FeedProvider, store *cache.Store, logger *logging.Logger) *CalendarService {
	if logger == nil {
		logger = logging.Default()
	}
	return &CalendarService{
		provider: provider,
		store:    store,
		logger:   logger,
		now:      time.Now,
	}
}

// Calendar returns the rewritten ICS text for one feed slug. The transform
// is idempotent, so cached already-rewritten text passes through unchanged.
func (s *CalendarService) Calendar(ctx context.Context, slug string) (string, bool, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CalendarService.Calendar")
	defer span.End()

	src, ok := calendar.SourceBySlug(slug)
	if !ok {
		return "", false, fmt.Errorf("%w: calendar %q is not registered", ErrNotFound, slug)
	}

	text, stale, err := s.transformed(ctx, src)
	if err != nil {
		return "", false, crerr.CombineErrors(ErrUpstreamUnavailable, err)
	}
	if stale {
		s.logger.WarnContext(ctx, "serving stale calendar", "slug", slug)
	}
	return text, stale, nil
}

// Meta returns parsed event metadata for one feed slug. It reuses the same
// cached transformed text the Calendar operation serves, so meta and the
// downloadable calendar never disagree.
func (s *CalendarService) Meta(ctx context.Context, slug string) (calendar.Meta, bool, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CalendarService.Meta")
	defer span.End()

	src, ok := calendar.SourceBySlug(slug)
	if !ok {
		return calendar.Meta{}, false, fmt.Errorf("%w: calendar %q is not registered", ErrNotFound, slug)
	}

	text, stale, err := s.transformed(ctx, src)
	if err != nil {
		return calendar.Meta{}, false, crerr.CombineErrors(ErrUpstreamUnavailable, err)
	}

	meta := ics.BuildMeta(src, text, s.now())
	return meta, stale, nil
}

// Slugs lists the registered calendar feeds.
func (s *CalendarService) Slugs() []string {
	return calendar.Slugs()
}

func (s *CalendarService) reloadCalendar(ctx context.Context, slug string) error {
	src, ok := calendar.SourceBySlug(slug)
	if !ok {
		return fmt.Errorf("%w: calendar %q is not registered", ErrNotFound, slug)
	}
	return reloadCached(ctx, s.store, &s.flight, "calendar:ics:"+src.Slug,
		func(ctx context.Context) (string, error) {
			raw, err := s.provider.FetchFeed(ctx, src)
			if err != nil {
				return "", err
			}
			return ics.Transform(src, raw), nil
		})
}

func (s *CalendarService) transformed(ctx context.Context, src calendar.Source) (string, bool, error) {
	key := "calendar:ics:" + src.Slug
	return cachedLoad(ctx, s.store, &s.flight, key,
		func(ctx context.Context) (string, error) {
			raw, err := s.provider.FetchFeed(ctx, src)
			if err != nil {
				return "", err
			}
			return ics.Transform(src, raw), nil
		})
}
