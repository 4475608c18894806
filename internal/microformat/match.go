package microformat

import (
	"regexp"
	"sort"
	"strconv"
	"time"

	"github.com/jsvanda/infoboard/internal/domain/sportdata"
)

// matchFields is the extraction table for match-result blocks. Team names
// appear under AF/CX in most payloads and under AE/WV in older variants.
var matchFields = []Field{
	{Name: "homeTeam", Pattern: regexp.MustCompile(`AF÷([^¬]+)`), Fallback: regexp.MustCompile(`AE÷([^¬]+)`)},
	{Name: "awayTeam", Pattern: regexp.MustCompile(`CX÷([^¬]+)`), Fallback: regexp.MustCompile(`WV÷([^¬]+)`)},
	{Name: "homeScore", Pattern: regexp.MustCompile(`AG÷(\d+)`)},
	{Name: "awayScore", Pattern: regexp.MustCompile(`AH÷(\d+)`)},
	{Name: "startEpoch", Pattern: regexp.MustCompile(`AD÷(\d+)`)},
}

// ParseMatches maps raw wire text into finished match results. Blocks
// missing either score are skipped; partial success is the norm here.
// Results are ordered most recent first and capped.
func ParseMatches(raw string, sport sportdata.Sport, sourcedAt time.Time) []sportdata.MatchResult {
	records := ParseRecords(raw, matchFields)

	type dated struct {
		result sportdata.MatchResult
		epoch  int64
	}
	out := make([]dated, 0, len(records))
	for _, record := range records {
		homeScore, err := strconv.Atoi(record["homeScore"])
		if err != nil {
			continue
		}
		awayScore, err := strconv.Atoi(record["awayScore"])
		if err != nil {
			continue
		}

		result := sportdata.MatchResult{
			Sport:     sport,
			HomeTeam:  sportdata.CanonicalTeam(record["homeTeam"]),
			AwayTeam:  sportdata.CanonicalTeam(record["awayTeam"]),
			HomeScore: homeScore,
			AwayScore: awayScore,
			SourcedAt: sourcedAt,
		}

		var epoch int64
		if rawEpoch, ok := record["startEpoch"]; ok {
			if parsed, err := strconv.ParseInt(rawEpoch, 10, 64); err == nil {
				epoch = parsed
				at := time.Unix(parsed, 0).In(time.Local)
				result.Date = at.Format("2006-01-02")
				result.Time = at.Format("15:04")
			}
		}

		out = append(out, dated{result: result, epoch: epoch})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].epoch > out[j].epoch })
	if len(out) > sportdata.MatchResultLimit {
		out = out[:sportdata.MatchResultLimit]
	}

	results := make([]sportdata.MatchResult, 0, len(out))
	for _, d := range out {
		results = append(results, d.result)
	}
	return results
}
