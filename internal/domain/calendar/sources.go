package calendar

import "sort"

// Source describes one upstream ICS feed and how to rewrite it.
type Source struct {
	Slug        string
	URL         string
	DisplayName string
	ProductID   string
	// RaceOnly keeps only race sessions, dropping sprint/qualifying/practice.
	RaceOnly bool
}

// sources is the static feed registry. Pure data, not behavior.
var sources = map[string]Source{
	"f1": {
		Slug:        "f1",
		URL:         "https://ics.ecal.com/ecal-sub/formula-1.ics",
		DisplayName: "F1 závody",
		ProductID:   "-//infoboard//F1 Calendar//CS",
		RaceOnly:    true,
	},
	"motogp": {
		Slug:        "motogp",
		URL:         "https://ics.ecal.com/ecal-sub/motogp.ics",
		DisplayName: "MotoGP závody",
		ProductID:   "-//infoboard//MotoGP Calendar//CS",
		RaceOnly:    true,
	},
	"holidays": {
		Slug:        "holidays",
		URL:         "https://calendar.google.com/calendar/ical/cs.czech/basic.ics",
		DisplayName: "Svátky a významné dny",
		ProductID:   "-//infoboard//Holiday Calendar//CS",
	},
	"biathlon": {
		Slug:        "biathlon",
		URL:         "https://ics.ecal.com/ecal-sub/biathlon.ics",
		DisplayName: "Biatlon",
		ProductID:   "-//infoboard//Biathlon Calendar//CS",
	},
}

// SourceBySlug returns the registered source for slug.
func SourceBySlug(slug string) (Source, bool) {
	src, ok := sources[slug]
	return src, ok
}

// Slugs lists registered feed slugs in stable order.
func Slugs() []string {
	out := make([]string, 0, len(sources))
	for slug := range sources {
		out = append(out, slug)
	}
	sort.Strings(out)
	return out
}
