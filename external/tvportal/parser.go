// Package tvportal scrapes the broadcast schedule off a third-party TV
// portal page. The selectors are coupled to the live markup and will break
// on redesign; empty output is a signal of upstream change, not an error.
package tvportal

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/jsvanda/infoboard/internal/domain/tvguide"
)

// portalZone converts the portal's naive local times. The page prints
// Central European summer time without a zone marker.
var portalZone = time.FixedZone("CEST", 2*60*60)

var (
	matchHrefRe   = regexp.MustCompile(`/zapas/([a-zA-Z0-9-]+)`)
	clockTextRe   = regexp.MustCompile(`\b(\d{1,2})[:.](\d{2})\b`)
	dayMonthRe    = regexp.MustCompile(`\b(\d{1,2})\.\s*(\d{1,2})\.`)
	affiliationRe = regexp.MustCompile(`(?i)via\s+([A-Za-z0-9ČŘŽ][A-Za-z0-9ČŘŽ ]{1,30})`)
	teamSplitRe   = regexp.MustCompile(`\s+(?:-|vs\.?|–)\s+`)
)

// Parse walks the schedule page and recovers structured entries using the
// layered strategy: explicit markers, then structured containers, then free
// text heuristics. Entries missing a kickoff or either team are dropped;
// duplicates by match id keep the first occurrence.
func Parse(html string, now time.Time) ([]tvguide.ScheduleEntry, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var entries []tvguide.ScheduleEntry

	doc.Find("div.match-item").Each(func(_ int, container *goquery.Selection) {
		entry, ok := parseContainer(container, now)
		if !ok {
			return
		}
		if _, dup := seen[entry.MatchID]; dup {
			return
		}
		seen[entry.MatchID] = struct{}{}
		entries = append(entries, entry)
	})

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].KickoffAt.Before(entries[j].KickoffAt)
	})

	return applyUpcomingWindow(entries, now), nil
}

func parseContainer(container *goquery.Selection, now time.Time) (tvguide.ScheduleEntry, bool) {
	entry := tvguide.ScheduleEntry{SourcedAt: now}

	entry.MatchID = extractMatchID(container)
	if entry.MatchID == "" {
		return tvguide.ScheduleEntry{}, false
	}

	kickoff, ok := extractKickoff(container, now)
	if !ok {
		return tvguide.ScheduleEntry{}, false
	}
	entry.KickoffAt = kickoff

	home, away, ok := extractTeams(container)
	if !ok {
		return tvguide.ScheduleEntry{}, false
	}
	entry.HomeTeam = home
	entry.AwayTeam = away

	entry.Channel = extractChannel(container)

	return entry, true
}

func extractMatchID(container *goquery.Selection) string {
	if id, ok := container.Attr("data-match-id"); ok && strings.TrimSpace(id) != "" {
		return strings.TrimSpace(id)
	}

	var id string
	container.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		if match := matchHrefRe.FindStringSubmatch(href); match != nil {
			id = match[1]
			return false
		}
		return true
	})
	return id
}

func extractKickoff(container *goquery.Selection, now time.Time) (time.Time, bool) {
	if raw, ok := container.Find("time[datetime]").First().Attr("datetime"); ok {
		if parsed, err := time.Parse(time.RFC3339, strings.TrimSpace(raw)); err == nil {
			return parsed.In(portalZone), true
		}
	}

	// Free-text fallback: a clock somewhere in the container, optionally a
	// day.month. date; the year comes from now.
	text := container.Text()
	clock := clockTextRe.FindStringSubmatch(text)
	if clock == nil {
		return time.Time{}, false
	}
	hour := atoiDigits(clock[1])
	minute := atoiDigits(clock[2])
	if hour > 23 || minute > 59 {
		return time.Time{}, false
	}

	day, month := now.Day(), int(now.Month())
	if dm := dayMonthRe.FindStringSubmatch(text); dm != nil {
		day = atoiDigits(dm[1])
		month = atoiDigits(dm[2])
	}

	year := now.Year()
	candidate := time.Date(year, time.Month(month), day, hour, minute, 0, 0, portalZone)
	// A date far in the past across a year boundary means next year's
	// fixture printed without a year.
	if candidate.Before(now.AddDate(0, -6, 0)) {
		candidate = candidate.AddDate(1, 0, 0)
	}
	return candidate, true
}

func extractTeams(container *goquery.Selection) (string, string, bool) {
	home := cleanTeamName(container.Find(".team-home .name").First().Text())
	away := cleanTeamName(container.Find(".team-away .name").First().Text())
	if home != "" && away != "" {
		return home, away, true
	}

	combined := container.Find(".match-title").First().Text()
	if combined == "" {
		combined = container.Text()
	}
	parts := teamSplitRe.Split(strings.TrimSpace(combined), 2)
	if len(parts) != 2 {
		return "", "", false
	}
	home = cleanTeamName(parts[0])
	away = cleanTeamName(parts[1])
	if home == "" || away == "" {
		return "", "", false
	}
	return home, away, true
}

func cleanTeamName(raw string) string {
	name := strings.TrimSpace(raw)
	name = strings.TrimSuffix(name, "Logo")
	fields := strings.Fields(name)
	kept := fields[:0]
	for _, field := range fields {
		if strings.EqualFold(field, "logo") {
			continue
		}
		kept = append(kept, field)
	}
	name = strings.Join(kept, " ")
	// Strip trailing schedule noise like a clock glued to the away team.
	name = clockTextRe.ReplaceAllString(name, "")
	name = dayMonthRe.ReplaceAllString(name, "")
	return strings.TrimSpace(name)
}

// extractChannel resolves the broadcast channel by priority cascade:
// explicit affiliation wording beats broadcast-logo alt text, which beats
// free-text channel mentions. Among free-text mentions the fixed channel
// priority picks one winner.
func extractChannel(container *goquery.Selection) string {
	if match := affiliationRe.FindStringSubmatch(container.Text()); match != nil {
		if channel := tvguide.CanonicalChannel(match[1]); channel != "" {
			return channel
		}
		// The affiliation phrase may trail extra words; retry shortened.
		words := strings.Fields(match[1])
		for end := len(words) - 1; end > 0; end-- {
			if channel := tvguide.CanonicalChannel(strings.Join(words[:end], " ")); channel != "" {
				return channel
			}
		}
	}

	var fromLogo string
	container.Find("img.channel-logo, .broadcast img").EachWithBreak(func(_ int, img *goquery.Selection) bool {
		alt, _ := img.Attr("alt")
		if channel := tvguide.CanonicalChannel(alt); channel != "" {
			fromLogo = channel
			return false
		}
		return true
	})
	if fromLogo != "" {
		return fromLogo
	}

	text := container.Text()
	best := ""
	bestRank := int(^uint(0) >> 1)
	for _, channel := range tvguide.KnownChannels() {
		if !containsFold(text, channel) {
			continue
		}
		if rank := tvguide.ChannelRank(channel); rank < bestRank {
			best = channel
			bestRank = rank
		}
	}
	return best
}

// applyUpcomingWindow drops entries beyond the upcoming window unless that
// would empty the result; then a fixed-size prefix of everything parsed is
// returned instead, so callers never get nothing while something exists.
func applyUpcomingWindow(entries []tvguide.ScheduleEntry, now time.Time) []tvguide.ScheduleEntry {
	if len(entries) == 0 {
		return entries
	}

	horizon := now.AddDate(0, 0, tvguide.UpcomingWindowDays)
	windowed := make([]tvguide.ScheduleEntry, 0, len(entries))
	for _, entry := range entries {
		if entry.KickoffAt.After(horizon) {
			continue
		}
		if entry.KickoffAt.Before(now.Add(-6 * time.Hour)) {
			continue
		}
		windowed = append(windowed, entry)
	}

	if len(windowed) > 0 {
		return windowed
	}
	if len(entries) > tvguide.FallbackPrefixSize {
		return entries[:tvguide.FallbackPrefixSize]
	}
	return entries
}

func atoiDigits(s string) int {
	n := 0
	for _, r := range s {
		n = n*10 + int(r-'0')
	}
	return n
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
