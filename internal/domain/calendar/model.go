package calendar

import "time"

// TimePrecision classifies whether an event is meaningful to the day or to
// the clock time.
type TimePrecision string

const (
	PrecisionDay  TimePrecision = "day"
	PrecisionTime TimePrecision = "time"
)

// EventMeta is the metadata view of one parsed calendar event.
type EventMeta struct {
	Summary       string        `json:"summary"`
	Start         time.Time     `json:"start"`
	End           *time.Time    `json:"end,omitempty"`
	TimePrecision TimePrecision `json:"timePrecision"`
}

// Meta summarizes a whole transformed feed.
type Meta struct {
	Slug       string      `json:"slug"`
	Name       string      `json:"name"`
	EventCount int         `json:"eventCount"`
	NextEvent  *EventMeta  `json:"nextEvent,omitempty"`
	Events     []EventMeta `json:"events"`
	FetchedAt  time.Time   `json:"fetchedAt"`
}
