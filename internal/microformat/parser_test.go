package microformat

import (
	"fmt"
	"testing"
	"time"

	"github.com/jsvanda/infoboard/internal/domain/sportdata"
)

func TestParseMatches_WireExample(t *testing.T) {
	t.Parallel()

	raw := "AA÷abc123¬AG÷2¬AH÷1¬AF÷Team A¬CX÷Team B¬AD÷1700000000"
	sourced := time.Now()

	results := ParseMatches(raw, sportdata.SportFootball, sourced)
	if len(results) != 1 {
		t.Fatalf("parsed %d results, want 1", len(results))
	}
	got := results[0]
	if got.HomeScore != 2 || got.AwayScore != 1 {
		t.Fatalf("scores = %d:%d, want 2:1", got.HomeScore, got.AwayScore)
	}
	if got.HomeTeam != "Team A" || got.AwayTeam != "Team B" {
		t.Fatalf("teams = %q vs %q", got.HomeTeam, got.AwayTeam)
	}
	wantDate := time.Unix(1700000000, 0).In(time.Local).Format("2006-01-02")
	if got.Date != wantDate {
		t.Fatalf("date = %q, want %q", got.Date, wantDate)
	}
	if got.Time == "" {
		t.Fatalf("time missing")
	}
}

func TestParseMatches_SkipsBlocksMissingScores(t *testing.T) {
	t.Parallel()

	raw := "AF÷Team A¬CX÷Team B¬AD÷1700000000" + // no scores at all
		"¬~AG÷3¬AH÷0¬AF÷Sparta Praha¬CX÷Slavia Praha¬AD÷1700090000"

	results := ParseMatches(raw, sportdata.SportFootball, time.Now())
	if len(results) != 1 {
		t.Fatalf("parsed %d results, want 1 (scoreless block skipped)", len(results))
	}
	if results[0].HomeTeam != "Sparta" || results[0].AwayTeam != "Slavia" {
		t.Fatalf("alias resolution failed: %q vs %q", results[0].HomeTeam, results[0].AwayTeam)
	}
}

func TestParseMatches_FallbackTeamCodes(t *testing.T) {
	t.Parallel()

	raw := "AG÷1¬AH÷1¬AE÷Old Home¬WV÷Old Away¬AD÷1700000000"
	results := ParseMatches(raw, sportdata.SportHockey, time.Now())
	if len(results) != 1 {
		t.Fatalf("parsed %d results, want 1", len(results))
	}
	if results[0].HomeTeam != "Old Home" || results[0].AwayTeam != "Old Away" {
		t.Fatalf("fallback codes not applied: %+v", results[0])
	}
}

func TestParseMatches_MostRecentFirstAndCapped(t *testing.T) {
	t.Parallel()

	raw := ""
	for i := 0; i < sportdata.MatchResultLimit+5; i++ {
		if raw != "" {
			raw += "¬~"
		}
		raw += fmt.Sprintf("AG÷1¬AH÷0¬AF÷Home %d¬CX÷Away %d¬AD÷%d", i, i, 1700000000+i*3600)
	}

	results := ParseMatches(raw, sportdata.SportFootball, time.Now())
	if len(results) != sportdata.MatchResultLimit {
		t.Fatalf("got %d results, want the cap %d", len(results), sportdata.MatchResultLimit)
	}
	if results[0].HomeTeam != fmt.Sprintf("Home %d", sportdata.MatchResultLimit+4) {
		t.Fatalf("newest result not first: %+v", results[0])
	}
}

func TestParseRaceResults_PodiumOrderingAndPoints(t *testing.T) {
	t.Parallel()

	raw := "ZA÷2¬ZB÷Norris¬ZD÷McLaren Formula 1 Team¬ZE÷+7.612¬AD÷1716735600" +
		"¬~ZA÷1¬ZB÷Verstappen¬ZD÷Red Bull Racing¬AD÷1716735600" +
		"¬~ZA÷3¬ZB÷Leclerc¬ZD÷Scuderia Ferrari¬AD÷1716735600" +
		"¬~ZA÷4¬ZB÷Hamilton¬ZD÷Mercedes-AMG Petronas¬AD÷1716735600"

	results := ParseRaceResults(raw, time.Now())
	if len(results) != 3 {
		t.Fatalf("got %d results, want the podium", len(results))
	}
	if results[0].Driver != "Verstappen" || results[0].Position != 1 {
		t.Fatalf("winner = %+v", results[0])
	}
	if results[0].Points != 25 || results[1].Points != 18 || results[2].Points != 15 {
		t.Fatalf("points = %d/%d/%d", results[0].Points, results[1].Points, results[2].Points)
	}
	if results[0].Team != "Red Bull" || results[2].Team != "Ferrari" {
		t.Fatalf("constructor aliases not applied: %+v", results)
	}
	if results[1].Gap != "+7.612" {
		t.Fatalf("gap = %q", results[1].Gap)
	}
	// The winner block omits ZE and keeps an empty gap; non-winners get the
	// placeholder when the source drops theirs.
	if results[0].Gap != "" {
		t.Fatalf("winner gap = %q, want empty", results[0].Gap)
	}
	if results[2].Gap != placeholderGap {
		t.Fatalf("missing gap not defaulted: %q", results[2].Gap)
	}
}

func TestParseRaceResults_SkipsInvalidPositions(t *testing.T) {
	t.Parallel()

	raw := "ZA÷0¬ZB÷Ghost" + "¬~ZB÷No position at all" + "¬~ZA÷x¬ZB÷Garbled"
	if got := ParseRaceResults(raw, time.Now()); len(got) != 0 {
		t.Fatalf("got %d results from invalid blocks, want 0", len(got))
	}
}

func TestParseRecords_MalformedBlockDoesNotAbort(t *testing.T) {
	t.Parallel()

	raw := "÷÷÷garbage¬¬¬" + "¬~AG÷5¬AH÷2¬AF÷Valid¬CX÷Block¬AD÷1700000000"
	results := ParseMatches(raw, sportdata.SportBasketball, time.Now())
	if len(results) != 1 {
		t.Fatalf("valid block lost next to garbage: got %d", len(results))
	}
}
