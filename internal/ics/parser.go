// Package ics parses and rewrites the subset of RFC 5545 actually emitted by
// the registered upstream feeds. It is not a general iCalendar library.
package ics

import (
	"regexp"
	"strings"
	"time"
)

const (
	beginEvent = "BEGIN:VEVENT"
	endEvent   = "END:VEVENT"
)

var (
	foldedLineRe = regexp.MustCompile(`\r?\n[ \t]`)
	summaryRe    = regexp.MustCompile(`(?m)^SUMMARY[^:]*:(.*)$`)
	dtstartRe    = regexp.MustCompile(`(?m)^DTSTART([^:]*):(\S+)`)
	dtendRe      = regexp.MustCompile(`(?m)^DTEND([^:]*):(\S+)`)
	allDayRe     = regexp.MustCompile(`(?m)^X-MICROSOFT-CDO-ALLDAYEVENT[^:]*:TRUE`)
	dateOnlyRe   = regexp.MustCompile(`^\d{8}$`)
)

// DateToken retains the literal DTSTART/DTEND representation. Precision
// inference needs the original encoding, not just the parsed instant: two
// events with identical instants can differ in semantic precision.
type DateToken struct {
	// Params is the raw parameter substring between the property name and
	// the colon, e.g. ";VALUE=DATE".
	Params string
	// Value is the raw property value, e.g. "20240526" or "20240526T130000Z".
	Value string
}

// HasValueDate reports whether the token carries a VALUE=DATE parameter.
func (t DateToken) HasValueDate() bool {
	return strings.Contains(strings.ToUpper(t.Params), "VALUE=DATE")
}

// IsDateOnly reports whether the value is a pure 8-digit date.
func (t DateToken) IsDateOnly() bool {
	return dateOnlyRe.MatchString(t.Value)
}

// IsMidnight reports whether the value resolves to midnight, either as a
// date-only value or an explicit 000000 time component.
func (t DateToken) IsMidnight() bool {
	if t.IsDateOnly() {
		return true
	}
	idx := strings.IndexByte(t.Value, 'T')
	if idx < 0 || len(t.Value) < idx+7 {
		return false
	}
	return t.Value[idx+1:idx+7] == "000000"
}

// Event is one parsed VEVENT.
type Event struct {
	Summary       string
	Start         time.Time
	End           *time.Time
	DTStart       DateToken
	DTEnd         *DateToken
	HasAllDayFlag bool
}

// ParseEvents tokenizes icsText into events. Fragments without an END:VEVENT
// terminator and events without a parseable DTSTART are dropped; a malformed
// event never aborts the rest of the parse.
func ParseEvents(icsText string) []Event {
	fragments := strings.Split(icsText, beginEvent)
	if len(fragments) < 2 {
		return nil
	}

	events := make([]Event, 0, len(fragments)-1)
	for _, fragment := range fragments[1:] {
		terminator := strings.Index(fragment, endEvent)
		if terminator < 0 {
			continue
		}
		block := Unfold(fragment[:terminator])

		ev, ok := parseEventBlock(block)
		if !ok {
			continue
		}
		events = append(events, ev)
	}

	return events
}

// Unfold collapses iCalendar line folding: a CRLF (or LF) followed by a
// single space or tab continues the previous logical line.
func Unfold(text string) string {
	return foldedLineRe.ReplaceAllString(text, "")
}

func parseEventBlock(block string) (Event, bool) {
	ev := Event{}

	startMatch := dtstartRe.FindStringSubmatch(block)
	if startMatch == nil {
		return Event{}, false
	}
	ev.DTStart = DateToken{Params: startMatch[1], Value: strings.TrimSpace(startMatch[2])}

	start, ok := parseDateValue(ev.DTStart.Value)
	if !ok {
		return Event{}, false
	}
	ev.Start = start

	if endMatch := dtendRe.FindStringSubmatch(block); endMatch != nil {
		token := DateToken{Params: endMatch[1], Value: strings.TrimSpace(endMatch[2])}
		if end, ok := parseDateValue(token.Value); ok {
			ev.DTEnd = &token
			ev.End = &end
		}
	}

	if summaryMatch := summaryRe.FindStringSubmatch(block); summaryMatch != nil {
		ev.Summary = strings.TrimSpace(summaryMatch[1])
	}

	ev.HasAllDayFlag = allDayRe.MatchString(block)

	return ev, true
}

// parseDateValue maps the three supported encodings to an instant: 8-digit
// date to local midnight, local date-time, and UTC date-time with trailing Z.
func parseDateValue(value string) (time.Time, bool) {
	switch {
	case dateOnlyRe.MatchString(value):
		t, err := time.ParseInLocation("20060102", value, time.Local)
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	case strings.HasSuffix(value, "Z"):
		t, err := time.Parse("20060102T150405Z0700", value)
		if err != nil {
			return time.Time{}, false
		}
		return t.UTC(), true
	default:
		t, err := time.ParseInLocation("20060102T150405", value, time.Local)
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	}
}
