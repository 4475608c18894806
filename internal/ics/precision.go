package ics

import (
	"time"

	"github.com/jsvanda/infoboard/internal/domain/calendar"
)

// DetectTimePrecision classifies an event as day- or time-precise. The rules
// form an ordered cascade; the first match wins. The fall-through default is
// "time" so a timed event is never silently flattened to an all-day one.
func DetectTimePrecision(ev Event) calendar.TimePrecision {
	// 1. Explicit VALUE=DATE parameter.
	if ev.DTStart.HasValueDate() {
		return calendar.PrecisionDay
	}

	// 2. Pure 8-digit date with no time component.
	if ev.DTStart.IsDateOnly() {
		return calendar.PrecisionDay
	}

	// 3. Explicit all-day marker property.
	if ev.HasAllDayFlag {
		return calendar.PrecisionDay
	}

	// 4. Midnight-to-midnight span covering whole 24h periods: an all-day
	// range expressed with explicit endpoints instead of VALUE=DATE.
	if ev.DTEnd != nil && ev.End != nil && ev.DTStart.IsMidnight() && ev.DTEnd.IsMidnight() {
		gap := ev.End.Sub(ev.Start)
		if gap >= 24*time.Hour && gap%(24*time.Hour) == 0 {
			return calendar.PrecisionDay
		}
	}

	return calendar.PrecisionTime
}
