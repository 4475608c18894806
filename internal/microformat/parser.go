// Package microformat decodes the delimiter-separated pseudo-records of the
// compressed sports-data wire format: CODE÷VALUE pairs joined by ¬ inside a
// block, blocks joined by ¬~. The format has no grammar and the upstream is
// unstable by design, so extraction is tolerant and malformed blocks are
// skipped, never fatal.
package microformat

import (
	"regexp"
	"strings"
)

const blockDelimiter = "¬~"

// Field binds a record field name to its extraction pattern. Tables of
// fields are data: supporting a new sport or field is a table edit.
type Field struct {
	Name    string
	Pattern *regexp.Regexp
	// Fallback extracts the field when the primary code is absent; some
	// payload variants carry the same value under a different code.
	Fallback *regexp.Regexp
}

// Record is the transient field-code view of one block, discarded after
// being mapped into a domain record.
type Record map[string]string

// ParseRecords splits raw on the block delimiter and applies the field table
// to every block. Fields that match nothing are simply absent from the
// record; blocks that match no field at all are dropped.
func ParseRecords(raw string, fields []Field) []Record {
	if raw == "" {
		return nil
	}

	blocks := splitBlocks(raw)
	records := make([]Record, 0, len(blocks))
	for _, block := range blocks {
		record := make(Record, len(fields))
		for _, field := range fields {
			if value, ok := extract(block, field); ok {
				record[field.Name] = value
			}
		}
		if len(record) == 0 {
			continue
		}
		records = append(records, record)
	}
	return records
}

func splitBlocks(raw string) []string {
	parts := strings.Split(raw, blockDelimiter)
	blocks := parts[:0]
	for _, part := range parts {
		if part != "" {
			blocks = append(blocks, part)
		}
	}
	return blocks
}

func extract(block string, field Field) (string, bool) {
	if match := field.Pattern.FindStringSubmatch(block); match != nil && match[1] != "" {
		return match[1], true
	}
	if field.Fallback != nil {
		if match := field.Fallback.FindStringSubmatch(block); match != nil && match[1] != "" {
			return match[1], true
		}
	}
	return "", false
}
