// file: internal/matcher/normalize.go
// version: 1.0.0
// guid: d7c90886-7ed7-40f0-8a94-1a5c1ee6a669

package matcher

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks decomposes text and drops combining marks (é -> e, č -> c).
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize folds a team or rider name for comparison. Accents are stripped,
// the text is lower-cased, every character outside [a-z0-9] becomes a space
// and whitespace runs collapse to a single space.
//
// An empty result means no match is possible for the input.
func Normalize(text string) string {
	folded, _, err := transform.String(stripMarks, text)
	if err != nil {
		folded = text
	}
	folded = strings.ToLower(folded)

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			continue
		}
		b.WriteByte(' ')
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
