package sportdata

import "time"

// Sport identifies one micro-format upstream feed.
type Sport string

const (
	SportFootball   Sport = "football"
	SportHockey     Sport = "hockey"
	SportBasketball Sport = "basketball"
)

func (s Sport) Valid() bool {
	switch s {
	case SportFootball, SportHockey, SportBasketball:
		return true
	}
	return false
}

// MatchResult is one finished match, immutable once constructed. Team names
// are already resolved through the alias table.
type MatchResult struct {
	Sport     Sport     `json:"sport"`
	HomeTeam  string    `json:"homeTeam"`
	AwayTeam  string    `json:"awayTeam"`
	HomeScore int       `json:"homeScore"`
	AwayScore int       `json:"awayScore"`
	Date      string    `json:"date"`
	Time      string    `json:"time"`
	SourcedAt time.Time `json:"sourcedAt"`
}

// RaceResult is one podium entry of a race classification.
type RaceResult struct {
	Position  int       `json:"position"`
	Driver    string    `json:"driver"`
	Team      string    `json:"team"`
	Gap       string    `json:"gap"`
	Points    int       `json:"points"`
	Date      string    `json:"date"`
	SourcedAt time.Time `json:"sourcedAt"`
}

// MatchResultLimit caps how many recent matches a single response carries.
const MatchResultLimit = 30

// PodiumSize caps race results to the podium.
const PodiumSize = 3
