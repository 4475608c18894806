package tvguide

import "time"

// ScheduleEntry is one broadcast-schedule row recovered from the portal page.
type ScheduleEntry struct {
	MatchID   string    `json:"matchId"`
	HomeTeam  string    `json:"homeTeam"`
	AwayTeam  string    `json:"awayTeam"`
	KickoffAt time.Time `json:"kickoffAt"`
	Channel   string    `json:"channel"`
	SourcedAt time.Time `json:"sourcedAt"`
}

// UpcomingWindowDays bounds how far ahead entries are kept. Entries beyond it
// are dropped unless that would empty the result.
const UpcomingWindowDays = 14

// FallbackPrefixSize is returned when the upcoming window would empty the
// result: a fixed-size prefix of everything parsed, stale or not.
const FallbackPrefixSize = 5
