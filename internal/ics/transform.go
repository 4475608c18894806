package ics

import (
	"strings"

	"github.com/jsvanda/infoboard/internal/domain/calendar"
)

// raceDenyKeywords reject non-race sessions. Deny wins over allow so a
// "Sprint Race" session stays excluded.
var raceDenyKeywords = []string{
	"sprint",
	"qualifying",
	"practice",
	"shootout",
	"warm up",
	"warmup",
	"kvalifikace",
	"trénink",
	"trenink",
}

var raceAllowKeywords = []string{
	"race",
	"grand prix",
	"velká cena",
	"velka cena",
}

// Transform applies the registered rewrite for src: optional race-only event
// filtering plus display-name and product-id header rewrites. Running it on
// already-transformed text is a no-op.
func Transform(src calendar.Source, icsText string) string {
	out := icsText
	if src.RaceOnly {
		out = FilterEvents(out, func(block string) bool {
			return IsRaceSession(EventSummary(block))
		})
	}
	if src.DisplayName != "" {
		out = UpsertHeaderProperty(out, "X-WR-CALNAME", src.DisplayName)
	}
	if src.ProductID != "" {
		out = UpsertHeaderProperty(out, "PRODID", src.ProductID)
	}
	return out
}

// IsRaceSession classifies a session summary: deny keywords exclude, allow
// keywords include, anything ambiguous is excluded.
func IsRaceSession(summary string) bool {
	folded := strings.ToLower(summary)
	for _, deny := range raceDenyKeywords {
		if strings.Contains(folded, deny) {
			return false
		}
	}
	for _, allow := range raceAllowKeywords {
		if strings.Contains(folded, allow) {
			return true
		}
	}
	return false
}
