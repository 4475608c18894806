package ics

import (
	"regexp"
	"strings"

	"github.com/valyala/bytebufferpool"
)

var eventSpanRe = regexp.MustCompile(`(?s)BEGIN:VEVENT.*?END:VEVENT(\r?\n)?`)

// FilterEvents keeps only the VEVENT spans for which keep returns true.
// Header and footer bytes around the spans are preserved verbatim, and kept
// events retain their relative order. keep receives the raw span text.
func FilterEvents(icsText string, keep func(eventBlock string) bool) string {
	spans := eventSpanRe.FindAllStringIndex(icsText, -1)
	if len(spans) == 0 {
		return icsText
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	_, _ = buf.WriteString(icsText[:spans[0][0]])
	for _, span := range spans {
		block := icsText[span[0]:span[1]]
		if keep(block) {
			_, _ = buf.WriteString(block)
		}
	}
	_, _ = buf.WriteString(icsText[spans[len(spans)-1][1]:])

	return buf.String()
}

// UpsertHeaderProperty sets a calendar-level property in the header (the bytes
// before the first VEVENT), replacing an existing line for key or inserting a
// new one right after BEGIN:VCALENDAR. Applying the same upsert twice yields
// byte-identical output: callers re-run transforms on already-rewritten text.
func UpsertHeaderProperty(icsText, key, value string) string {
	eol := "\n"
	if strings.Contains(icsText, "\r\n") {
		eol = "\r\n"
	}

	headerEnd := strings.Index(icsText, beginEvent)
	if headerEnd < 0 {
		headerEnd = len(icsText)
	}
	header := icsText[:headerEnd]
	body := icsText[headerEnd:]

	newLine := key + ":" + value

	// Replace an existing property line, parameters included. The match stops
	// before the line terminator so a CRLF document keeps its CRLFs.
	propRe := regexp.MustCompile(`(?m)^` + regexp.QuoteMeta(key) + `[;:][^\r\n]*`)
	if propRe.MatchString(header) {
		replaced := false
		header = propRe.ReplaceAllStringFunc(header, func(line string) string {
			if replaced {
				return line
			}
			replaced = true
			return newLine
		})
		return header + body
	}

	beginRe := regexp.MustCompile(`(?m)^BEGIN:VCALENDAR\r?$`)
	loc := beginRe.FindStringIndex(header)
	if loc == nil {
		return icsText
	}

	lineEnd := strings.Index(icsText[loc[1]:headerEnd], "\n")
	if lineEnd < 0 {
		return header + eol + newLine + body
	}
	insertAt := loc[1] + lineEnd + 1

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	_, _ = buf.WriteString(icsText[:insertAt])
	_, _ = buf.WriteString(newLine)
	_, _ = buf.WriteString(eol)
	_, _ = buf.WriteString(icsText[insertAt:])
	return buf.String()
}

// EventSummary extracts the raw unfolded SUMMARY from one VEVENT span.
// Filtering is a text-classification problem over the literal summary, not
// over parsed semantic fields.
func EventSummary(eventBlock string) string {
	match := summaryRe.FindStringSubmatch(Unfold(eventBlock))
	if match == nil {
		return ""
	}
	return strings.TrimSpace(match[1])
}
