package tvportal

import (
	"fmt"
	"testing"
	"time"

	"github.com/jsvanda/infoboard/internal/domain/tvguide"
)

var parseNow = time.Date(2024, 5, 20, 12, 0, 0, 0, portalZone)

const fixturePrimary = `
<html><body>
<div class="match-item" data-match-id="m-1001">
  <div class="team-home"><span class="name">Sparta Praha</span></div>
  <div class="team-away"><span class="name">Slavia Praha</span></div>
  <time datetime="2024-05-21T16:30:00Z">21. 5. 18:30</time>
  <div class="broadcast"><img class="channel-logo" alt="Oneplay Sport"></div>
</div>
<div class="match-item" data-match-id="m-1002">
  <div class="team-home"><span class="name">Plzeň</span></div>
  <div class="team-away"><span class="name">Baník Ostrava</span></div>
  <time datetime="2024-05-22T14:00:00Z">22. 5. 16:00</time>
  <span>live via Nova Sport 1 and also on ČT sport</span>
</div>
<div class="match-item" data-match-id="m-1002">
  <div class="team-home"><span class="name">Duplicate</span></div>
  <div class="team-away"><span class="name">Entry</span></div>
  <time datetime="2024-05-23T14:00:00Z">23. 5.</time>
</div>
</body></html>`

func TestParse_PrimaryStrategy(t *testing.T) {
	t.Parallel()

	entries, err := Parse(fixturePrimary, parseNow)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("parsed %d entries, want 2 (duplicate id dropped)", len(entries))
	}

	first := entries[0]
	if first.MatchID != "m-1001" {
		t.Fatalf("first entry = %+v, want the earlier kickoff first", first)
	}
	if first.HomeTeam != "Sparta Praha" || first.AwayTeam != "Slavia Praha" {
		t.Fatalf("teams = %q vs %q", first.HomeTeam, first.AwayTeam)
	}
	wantKickoff := time.Date(2024, 5, 21, 18, 30, 0, 0, portalZone)
	if !first.KickoffAt.Equal(wantKickoff) {
		t.Fatalf("kickoff = %v, want %v (UTC shifted to portal zone)", first.KickoffAt, wantKickoff)
	}
	if first.Channel != "Oneplay Sport" {
		t.Fatalf("channel = %q, want logo alt resolution", first.Channel)
	}
}

func TestParse_AffiliationBeatsFreeText(t *testing.T) {
	t.Parallel()

	entries, err := Parse(fixturePrimary, parseNow)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	second := entries[1]
	if second.Channel != "Nova Sport 1" {
		t.Fatalf("channel = %q, want the via-affiliation winner over the free-text mention", second.Channel)
	}
}

const fixtureFallback = `
<html><body>
<div class="match-item">
  <a href="/zapas/trinec-kometa-554">detail</a>
  <div class="match-title">HC Oceláři Třinec Logo - Kometa Brno Logo</div>
  <span>21. 5. 19:00 na stanici Sport 2 i Oneplay Sport</span>
</div>
</body></html>`

func TestParse_FallbackStrategies(t *testing.T) {
	t.Parallel()

	entries, err := Parse(fixtureFallback, parseNow)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("parsed %d entries, want 1", len(entries))
	}

	entry := entries[0]
	if entry.MatchID != "trinec-kometa-554" {
		t.Fatalf("match id = %q, want href-derived id", entry.MatchID)
	}
	if entry.HomeTeam != "HC Oceláři Třinec" || entry.AwayTeam != "Kometa Brno" {
		t.Fatalf("teams = %q vs %q, want Logo tokens stripped", entry.HomeTeam, entry.AwayTeam)
	}
	if entry.KickoffAt.Hour() != 19 || entry.KickoffAt.Day() != 21 {
		t.Fatalf("kickoff = %v, want 21st 19:00 from free text", entry.KickoffAt)
	}
	if entry.Channel != "Oneplay Sport" {
		t.Fatalf("channel = %q, want the priority winner among free-text mentions", entry.Channel)
	}
}

func TestParse_DropsIncompleteEntries(t *testing.T) {
	t.Parallel()

	html := `
<div class="match-item" data-match-id="no-time">
  <div class="team-home"><span class="name">A</span></div>
  <div class="team-away"><span class="name">B</span></div>
</div>
<div class="match-item" data-match-id="no-teams">
  <time datetime="2024-05-21T16:30:00Z"></time>
</div>`

	entries, err := Parse(html, parseNow)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("parsed %d entries from incomplete containers, want 0", len(entries))
	}
}

func TestApplyUpcomingWindow_FallbackPrefix(t *testing.T) {
	t.Parallel()

	// All entries are far in the past: the window would empty the result,
	// so a fixed-size prefix comes back instead.
	stale := make([]tvguide.ScheduleEntry, 0, tvguide.FallbackPrefixSize+3)
	for i := 0; i < tvguide.FallbackPrefixSize+3; i++ {
		stale = append(stale, tvguide.ScheduleEntry{
			MatchID:   fmt.Sprintf("old-%d", i),
			KickoffAt: parseNow.AddDate(0, -2, i),
		})
	}

	got := applyUpcomingWindow(stale, parseNow)
	if len(got) != tvguide.FallbackPrefixSize {
		t.Fatalf("fallback returned %d entries, want the fixed prefix %d", len(got), tvguide.FallbackPrefixSize)
	}
	if got[0].MatchID != "old-0" {
		t.Fatalf("fallback did not keep the prefix order")
	}
}

func TestApplyUpcomingWindow_DropsBeyondHorizon(t *testing.T) {
	t.Parallel()

	entries := []tvguide.ScheduleEntry{
		{MatchID: "soon", KickoffAt: parseNow.AddDate(0, 0, 2)},
		{MatchID: "far", KickoffAt: parseNow.AddDate(0, 0, tvguide.UpcomingWindowDays+5)},
	}

	got := applyUpcomingWindow(entries, parseNow)
	if len(got) != 1 || got[0].MatchID != "soon" {
		t.Fatalf("window kept %+v, want only the near entry", got)
	}
}
