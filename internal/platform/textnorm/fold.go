package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var foldTransformer = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// Fold lowers, strips diacritics and collapses punctuation/whitespace runs to
// single spaces. Upstream city and venue fields are inconsistently cased and
// accented, so both query and candidate go through the same fold before
// comparison.
func Fold(value string) string {
	stripped, _, err := transform.String(foldTransformer, value)
	if err != nil {
		stripped = value
	}

	var b strings.Builder
	b.Grow(len(stripped))
	pendingSpace := false
	for _, r := range strings.ToLower(stripped) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(r)
			continue
		}
		pendingSpace = true
	}
	return b.String()
}

// Equal reports whether two strings match after folding.
func Equal(a, b string) bool {
	return Fold(a) == Fold(b)
}
