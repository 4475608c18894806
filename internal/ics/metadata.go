package ics

import (
	"sort"
	"time"

	"github.com/jsvanda/infoboard/internal/domain/calendar"
)

// BuildMeta computes the metadata view of a feed: per-event precision, event
// count and the next upcoming event relative to now.
//
// Events without a SUMMARY are excluded even when otherwise valid; the
// widgets rendering this metadata have nothing to show for them.
func BuildMeta(src calendar.Source, icsText string, now time.Time) calendar.Meta {
	parsed := ParseEvents(icsText)

	events := make([]calendar.EventMeta, 0, len(parsed))
	for _, ev := range parsed {
		if ev.Summary == "" {
			continue
		}
		events = append(events, calendar.EventMeta{
			Summary:       ev.Summary,
			Start:         ev.Start,
			End:           ev.End,
			TimePrecision: DetectTimePrecision(ev),
		})
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Start.Before(events[j].Start)
	})

	meta := calendar.Meta{
		Slug:       src.Slug,
		Name:       src.DisplayName,
		EventCount: len(events),
		Events:     events,
		FetchedAt:  now,
	}

	for i := range events {
		if !events[i].Start.Before(now) {
			meta.NextEvent = &events[i]
			break
		}
	}

	return meta
}
