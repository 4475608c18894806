package ics

import (
	"strings"
	"testing"

	"github.com/jsvanda/infoboard/internal/domain/calendar"
)

const rewriterFixture = "BEGIN:VCALENDAR\r\n" +
	"VERSION:2.0\r\n" +
	"PRODID:-//upstream//feed//EN\r\n" +
	"X-WR-CALNAME:Formula 1\r\n" +
	"BEGIN:VEVENT\r\nSUMMARY:Monaco Grand Prix - Race\r\nDTSTART:20240526T130000Z\r\nEND:VEVENT\r\n" +
	"BEGIN:VEVENT\r\nSUMMARY:Monaco Grand Prix - Qualifying\r\nDTSTART:20240525T140000Z\r\nEND:VEVENT\r\n" +
	"BEGIN:VEVENT\r\nSUMMARY:Monaco Grand Prix - Sprint\r\nDTSTART:20240525T100000Z\r\nEND:VEVENT\r\n" +
	"END:VCALENDAR\r\n"

func TestFilterEvents_KeepsHeaderFooterAndOrder(t *testing.T) {
	t.Parallel()

	out := FilterEvents(rewriterFixture, func(block string) bool {
		return IsRaceSession(EventSummary(block))
	})

	if !strings.HasPrefix(out, "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:-//upstream//feed//EN\r\nX-WR-CALNAME:Formula 1\r\n") {
		t.Fatalf("header not preserved verbatim:\n%s", out)
	}
	if !strings.HasSuffix(out, "END:VCALENDAR\r\n") {
		t.Fatalf("footer not preserved verbatim:\n%s", out)
	}
	if strings.Count(out, "BEGIN:VEVENT") != 1 {
		t.Fatalf("kept %d events, want 1:\n%s", strings.Count(out, "BEGIN:VEVENT"), out)
	}
	if !strings.Contains(out, "SUMMARY:Monaco Grand Prix - Race") {
		t.Fatalf("race session missing:\n%s", out)
	}
}

func TestFilterEvents_PreservesRelativeOrder(t *testing.T) {
	t.Parallel()

	out := FilterEvents(rewriterFixture, func(string) bool { return true })
	if out != rewriterFixture {
		t.Fatalf("keep-all filter changed the document")
	}
}

func TestUpsertHeaderProperty_ReplacesExistingLine(t *testing.T) {
	t.Parallel()

	out := UpsertHeaderProperty(rewriterFixture, "X-WR-CALNAME", "F1 závody")
	if strings.Contains(out, "X-WR-CALNAME:Formula 1") {
		t.Fatalf("old calendar name survived")
	}
	if !strings.Contains(out, "X-WR-CALNAME:F1 závody\r\n") {
		t.Fatalf("new calendar name missing:\n%s", out)
	}
	if strings.Count(out, "X-WR-CALNAME") != 1 {
		t.Fatalf("property duplicated")
	}
}

func TestUpsertHeaderProperty_ReplaceKeepsCRLF(t *testing.T) {
	t.Parallel()

	out := UpsertHeaderProperty(rewriterFixture, "X-WR-CALNAME", "New Name")
	if !strings.Contains(out, "X-WR-CALNAME:New Name\r\n") {
		t.Fatalf("replaced line lost its CRLF terminator:\n%q", out)
	}
	if stripped := strings.ReplaceAll(out, "\r\n", ""); strings.Contains(stripped, "\n") {
		t.Fatalf("document contains an LF-only line ending:\n%q", out)
	}
}

func TestUpsertHeaderProperty_InsertsWhenAbsent(t *testing.T) {
	t.Parallel()

	out := UpsertHeaderProperty(rewriterFixture, "X-PUBLISHED-TTL", "PT1H")
	idx := strings.Index(out, "X-PUBLISHED-TTL:PT1H")
	begin := strings.Index(out, "BEGIN:VCALENDAR")
	event := strings.Index(out, "BEGIN:VEVENT")
	if idx < 0 || idx < begin || idx > event {
		t.Fatalf("property not inserted into the header:\n%s", out)
	}
}

func TestUpsertHeaderProperty_Idempotent(t *testing.T) {
	t.Parallel()

	once := UpsertHeaderProperty(rewriterFixture, "X-WR-CALNAME", "F1 závody")
	twice := UpsertHeaderProperty(once, "X-WR-CALNAME", "F1 závody")
	if once != twice {
		t.Fatalf("second application changed bytes")
	}

	onceNew := UpsertHeaderProperty(rewriterFixture, "X-PUBLISHED-TTL", "PT1H")
	twiceNew := UpsertHeaderProperty(onceNew, "X-PUBLISHED-TTL", "PT1H")
	if onceNew != twiceNew {
		t.Fatalf("second insert-then-replace changed bytes")
	}
}

func TestUpsertHeaderProperty_NeverTouchesEvents(t *testing.T) {
	t.Parallel()

	out := UpsertHeaderProperty(rewriterFixture, "PRODID", "-//infoboard//F1//CS")
	eventsIn := rewriterFixture[strings.Index(rewriterFixture, "BEGIN:VEVENT"):]
	eventsOut := out[strings.Index(out, "BEGIN:VEVENT"):]
	if eventsIn != eventsOut {
		t.Fatalf("event bytes changed by a header rewrite")
	}
}

func TestTransform_Idempotent(t *testing.T) {
	t.Parallel()

	src := calendar.Source{
		Slug:        "f1",
		DisplayName: "F1 závody",
		ProductID:   "-//infoboard//F1 Calendar//CS",
		RaceOnly:    true,
	}

	once := Transform(src, rewriterFixture)
	twice := Transform(src, once)
	if once != twice {
		t.Fatalf("transform is not idempotent")
	}
	if strings.Count(once, "BEGIN:VEVENT") != 1 {
		t.Fatalf("race filter kept %d events, want 1", strings.Count(once, "BEGIN:VEVENT"))
	}
}

func TestIsRaceSession(t *testing.T) {
	t.Parallel()

	cases := []struct {
		summary string
		want    bool
	}{
		{"Monaco Grand Prix - Race", true},
		{"Velká cena Monaka", true},
		{"Monaco Grand Prix - Sprint Race", false},
		{"Qualifying", false},
		{"Practice 3", false},
		{"Sprint Shootout", false},
		{"Drivers parade", false},
	}
	for _, tc := range cases {
		if got := IsRaceSession(tc.summary); got != tc.want {
			t.Fatalf("IsRaceSession(%q) = %v, want %v", tc.summary, got, tc.want)
		}
	}
}
