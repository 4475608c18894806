package sportdata

import "strings"

// teamAliases maps the raw names the wire feed uses to canonical short names.
// Pure data: extending a sport means extending this table.
var teamAliases = map[string]string{
	"Sparta Praha":           "Sparta",
	"AC Sparta Praha":        "Sparta",
	"Slavia Praha":           "Slavia",
	"SK Slavia Praha":        "Slavia",
	"Viktoria Plzen":         "Plzeň",
	"FC Viktoria Plzen":      "Plzeň",
	"Banik Ostrava":          "Baník",
	"FC Banik Ostrava":       "Baník",
	"Sigma Olomouc":          "Sigma",
	"Slovan Liberec":         "Liberec",
	"FK Jablonec":            "Jablonec",
	"Bohemians 1905":         "Bohemians",
	"Hradec Kralove":         "Hradec",
	"HC Sparta Praha":        "Sparta",
	"HC Ocelari Trinec":      "Třinec",
	"HC Kometa Brno":         "Kometa",
	"Mountfield HK":          "Hradec",
	"HC Dynamo Pardubice":    "Pardubice",
	"Bili Tygri Liberec":     "Liberec",
	"HC Skoda Plzen":         "Plzeň",
	"HC Vitkovice Ridera":    "Vítkovice",
	"BK Opava":               "Opava",
	"ERA Basketball Nymburk": "Nymburk",
	"USK Praha":              "USK",
}

// raceTeamAliases normalizes constructor names in race classifications.
var raceTeamAliases = map[string]string{
	"Red Bull Racing":            "Red Bull",
	"Oracle Red Bull Racing":     "Red Bull",
	"Mercedes-AMG Petronas":      "Mercedes",
	"Scuderia Ferrari":           "Ferrari",
	"McLaren Formula 1 Team":     "McLaren",
	"Aston Martin Aramco":        "Aston Martin",
	"BWT Alpine F1 Team":         "Alpine",
	"Visa Cash App RB":           "RB",
	"Stake F1 Team Kick Sauber":  "Sauber",
	"MoneyGram Haas F1 Team":     "Haas",
	"Williams Racing":            "Williams",
}

// CanonicalTeam resolves a raw feed name into its canonical short form,
// falling back to the trimmed raw name when the table has no entry.
func CanonicalTeam(raw string) string {
	name := strings.TrimSpace(raw)
	if canonical, ok := teamAliases[name]; ok {
		return canonical
	}
	return name
}

// CanonicalRaceTeam resolves a constructor name the same way.
func CanonicalRaceTeam(raw string) string {
	name := strings.TrimSpace(raw)
	if canonical, ok := raceTeamAliases[name]; ok {
		return canonical
	}
	return name
}
