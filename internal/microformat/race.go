package microformat

import (
	"regexp"
	"sort"
	"strconv"
	"time"

	"github.com/jsvanda/infoboard/internal/domain/sportdata"
)

// raceFields is the extraction table for race-classification blocks. Driver
// names show under ZB in current payloads, ZC in older ones.
var raceFields = []Field{
	{Name: "position", Pattern: regexp.MustCompile(`ZA÷(\d+)`)},
	{Name: "driver", Pattern: regexp.MustCompile(`ZB÷([^¬]+)`), Fallback: regexp.MustCompile(`ZC÷([^¬]+)`)},
	{Name: "team", Pattern: regexp.MustCompile(`ZD÷([^¬]+)`)},
	{Name: "gap", Pattern: regexp.MustCompile(`ZE÷([^¬]+)`)},
	{Name: "raceEpoch", Pattern: regexp.MustCompile(`AD÷(\d+)`)},
}

// pointsForPosition is the derived championship-points lookup.
var pointsForPosition = map[int]int{1: 25, 2: 18, 3: 15}

// placeholderGap substitutes the gap time the source omits for non-winning
// positions in some payloads.
const placeholderGap = "+?.???"

// ParseRaceResults maps raw wire text into the podium classification.
// Blocks without a 1-3 finishing position are skipped. Output is sorted by
// position ascending and capped to the podium.
func ParseRaceResults(raw string, sourcedAt time.Time) []sportdata.RaceResult {
	records := ParseRecords(raw, raceFields)

	results := make([]sportdata.RaceResult, 0, sportdata.PodiumSize)
	for _, record := range records {
		position, err := strconv.Atoi(record["position"])
		if err != nil || position < 1 || position > sportdata.PodiumSize {
			continue
		}

		gap := record["gap"]
		if gap == "" && position > 1 {
			gap = placeholderGap
		}

		result := sportdata.RaceResult{
			Position:  position,
			Driver:    record["driver"],
			Team:      sportdata.CanonicalRaceTeam(record["team"]),
			Gap:       gap,
			Points:    pointsForPosition[position],
			SourcedAt: sourcedAt,
		}

		if rawEpoch, ok := record["raceEpoch"]; ok {
			if parsed, err := strconv.ParseInt(rawEpoch, 10, 64); err == nil {
				result.Date = time.Unix(parsed, 0).In(time.Local).Format("2006-01-02")
			}
		}

		results = append(results, result)
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].Position < results[j].Position })
	if len(results) > sportdata.PodiumSize {
		results = results[:sportdata.PodiumSize]
	}
	return results
}
