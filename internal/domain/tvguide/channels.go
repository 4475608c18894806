package tvguide

import "strings"

// channelPriority decides the winner when a container mentions several
// channels: the primary subscription channel outranks simulcast partners.
// Lower index wins.
var channelPriority = []string{
	"Oneplay Sport",
	"O2 TV Sport",
	"Nova Sport 1",
	"Nova Sport 2",
	"ČT sport",
	"Premier Sport",
	"Sport 1",
	"Sport 2",
}

// channelAliases maps label/alt-text variants to canonical channel names.
var channelAliases = map[string]string{
	"oneplay":        "Oneplay Sport",
	"oneplay sport":  "Oneplay Sport",
	"o2 tv":          "O2 TV Sport",
	"o2 tv sport":    "O2 TV Sport",
	"o2tv":           "O2 TV Sport",
	"nova sport":     "Nova Sport 1",
	"nova sport 1":   "Nova Sport 1",
	"nova sport 2":   "Nova Sport 2",
	"ct sport":       "ČT sport",
	"čt sport":       "ČT sport",
	"premier sport":  "Premier Sport",
	"sport 1":        "Sport 1",
	"sport 2":        "Sport 2",
}

// CanonicalChannel resolves a raw mention to a canonical channel name.
// Unknown mentions return "".
func CanonicalChannel(raw string) string {
	key := strings.ToLower(strings.TrimSpace(raw))
	if canonical, ok := channelAliases[key]; ok {
		return canonical
	}
	for _, name := range channelPriority {
		if strings.EqualFold(name, strings.TrimSpace(raw)) {
			return name
		}
	}
	return ""
}

// ChannelRank returns the priority index of a canonical channel; unknown
// channels rank last.
func ChannelRank(channel string) int {
	for i, name := range channelPriority {
		if name == channel {
			return i
		}
	}
	return len(channelPriority)
}

// KnownChannels lists canonical channel names in priority order.
func KnownChannels() []string {
	out := make([]string, len(channelPriority))
	copy(out, channelPriority)
	return out
}
