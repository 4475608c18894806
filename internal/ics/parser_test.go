package ics

import (
	"strings"
	"testing"
	"time"

	"github.com/jsvanda/infoboard/internal/domain/calendar"
)

func wrapCalendar(events ...string) string {
	var b strings.Builder
	b.WriteString("BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:-//upstream//feed//EN\r\n")
	for _, ev := range events {
		b.WriteString(ev)
	}
	b.WriteString("END:VCALENDAR\r\n")
	return b.String()
}

func vevent(lines ...string) string {
	return "BEGIN:VEVENT\r\n" + strings.Join(lines, "\r\n") + "\r\nEND:VEVENT\r\n"
}

func TestParseEvents_BasicTimedEvent(t *testing.T) {
	t.Parallel()

	text := wrapCalendar(vevent(
		"SUMMARY:Qualifying",
		"DTSTART:20240525T140000Z",
		"DTEND:20240525T150000Z",
	))

	events := ParseEvents(text)
	if len(events) != 1 {
		t.Fatalf("parsed %d events, want 1", len(events))
	}
	ev := events[0]
	if ev.Summary != "Qualifying" {
		t.Fatalf("summary = %q", ev.Summary)
	}
	want := time.Date(2024, 5, 25, 14, 0, 0, 0, time.UTC)
	if !ev.Start.Equal(want) {
		t.Fatalf("start = %v, want %v", ev.Start, want)
	}
	if ev.End == nil || !ev.End.Equal(want.Add(time.Hour)) {
		t.Fatalf("end = %v", ev.End)
	}
}

func TestParseEvents_UnfoldsContinuationLines(t *testing.T) {
	t.Parallel()

	// The SUMMARY value spans two physical lines; the continuation line
	// starts with a single folding space followed by the payload " Monaco".
	text := wrapCalendar(
		"BEGIN:VEVENT\r\nSUMMARY:Grand Prix de\r\n  Monaco\r\nDTSTART;VALUE=DATE:20240526\r\nEND:VEVENT\r\n",
	)

	events := ParseEvents(text)
	if len(events) != 1 {
		t.Fatalf("parsed %d events, want 1", len(events))
	}
	if events[0].Summary != "Grand Prix de Monaco" {
		t.Fatalf("unfolded summary = %q", events[0].Summary)
	}
}

func TestParseEvents_DropsUnterminatedAndUnparseable(t *testing.T) {
	t.Parallel()

	text := "BEGIN:VCALENDAR\r\n" +
		"BEGIN:VEVENT\r\nSUMMARY:No terminator\r\nDTSTART:20240526T100000Z\r\n" +
		vevent("SUMMARY:No start") +
		vevent("SUMMARY:Valid", "DTSTART:20240527T100000Z") +
		"END:VCALENDAR\r\n"

	events := ParseEvents(text)
	if len(events) != 1 {
		t.Fatalf("parsed %d events, want only the valid one", len(events))
	}
	if events[0].Summary != "Valid" {
		t.Fatalf("kept event summary = %q", events[0].Summary)
	}
}

func TestDetectTimePrecision_ValueDateShortCircuits(t *testing.T) {
	t.Parallel()

	// Even with a time-of-day in the value, VALUE=DATE wins.
	ev := Event{
		DTStart: DateToken{Params: ";VALUE=DATE", Value: "20240526T140000Z"},
		Start:   time.Date(2024, 5, 26, 14, 0, 0, 0, time.UTC),
	}
	if got := DetectTimePrecision(ev); got != calendar.PrecisionDay {
		t.Fatalf("precision = %s, want day", got)
	}
}

func TestDetectTimePrecision_EightDigitDate(t *testing.T) {
	t.Parallel()

	text := wrapCalendar(vevent("SUMMARY:All day", "DTSTART:20240526"))
	events := ParseEvents(text)
	if len(events) != 1 {
		t.Fatalf("parsed %d events", len(events))
	}
	if got := DetectTimePrecision(events[0]); got != calendar.PrecisionDay {
		t.Fatalf("precision = %s, want day", got)
	}
}

func TestDetectTimePrecision_AllDayMarker(t *testing.T) {
	t.Parallel()

	text := wrapCalendar(vevent(
		"SUMMARY:Marked",
		"DTSTART:20240526T090000",
		"X-MICROSOFT-CDO-ALLDAYEVENT:TRUE",
	))
	events := ParseEvents(text)
	if got := DetectTimePrecision(events[0]); got != calendar.PrecisionDay {
		t.Fatalf("precision = %s, want day", got)
	}
}

func TestDetectTimePrecision_MidnightWholeDaySpan(t *testing.T) {
	t.Parallel()

	text := wrapCalendar(vevent(
		"SUMMARY:Two day span",
		"DTSTART:20240526T000000",
		"DTEND:20240528T000000",
	))
	events := ParseEvents(text)
	if got := DetectTimePrecision(events[0]); got != calendar.PrecisionDay {
		t.Fatalf("precision = %s, want day", got)
	}
}

func TestDetectTimePrecision_ThirtyHourSpanIsTime(t *testing.T) {
	t.Parallel()

	text := wrapCalendar(vevent(
		"SUMMARY:Thirty hours from midnight",
		"DTSTART:20240526T000000",
		"DTEND:20240527T060000",
	))
	events := ParseEvents(text)
	if got := DetectTimePrecision(events[0]); got != calendar.PrecisionTime {
		t.Fatalf("precision = %s, want time", got)
	}
}

func TestDetectTimePrecision_TimedEventDefaultsToTime(t *testing.T) {
	t.Parallel()

	text := wrapCalendar(vevent(
		"SUMMARY:Kickoff",
		"DTSTART:20240526T203000Z",
		"DTEND:20240526T223000Z",
	))
	events := ParseEvents(text)
	if got := DetectTimePrecision(events[0]); got != calendar.PrecisionTime {
		t.Fatalf("precision = %s, want time", got)
	}
}

func TestBuildMeta_EndToEnd(t *testing.T) {
	t.Parallel()

	text := wrapCalendar(
		vevent("SUMMARY:Grand Prix de Monaco", "DTSTART;VALUE=DATE:20240526"),
		vevent("SUMMARY:Qualifying — 14:00Z", "DTSTART:20240525T140000Z"),
	)

	src := calendar.Source{Slug: "f1", DisplayName: "F1 závody"}
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	meta := BuildMeta(src, text, now)

	if meta.EventCount != 2 {
		t.Fatalf("eventCount = %d, want 2", meta.EventCount)
	}
	byName := map[string]calendar.EventMeta{}
	for _, ev := range meta.Events {
		byName[ev.Summary] = ev
	}
	if got := byName["Grand Prix de Monaco"].TimePrecision; got != calendar.PrecisionDay {
		t.Fatalf("all-day event precision = %s, want day", got)
	}
	if got := byName["Qualifying — 14:00Z"].TimePrecision; got != calendar.PrecisionTime {
		t.Fatalf("timed event precision = %s, want time", got)
	}
	if meta.NextEvent == nil || meta.NextEvent.Summary != "Qualifying — 14:00Z" {
		t.Fatalf("next event = %+v, want the earlier qualifying session", meta.NextEvent)
	}
}

func TestBuildMeta_DropsEventsWithoutSummary(t *testing.T) {
	t.Parallel()

	text := wrapCalendar(
		vevent("DTSTART;VALUE=DATE:20240526"),
		vevent("SUMMARY:Named", "DTSTART:20240527T100000Z"),
	)

	meta := BuildMeta(calendar.Source{Slug: "x"}, text, time.Now())
	if meta.EventCount != 1 {
		t.Fatalf("eventCount = %d, want 1 (anonymous event dropped)", meta.EventCount)
	}
}
