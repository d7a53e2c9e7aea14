// file: internal/matcher/fuzzy_test.go
// version: 2.0.0
// guid: b2c3d4e5-f6a7-8901-bcde-f23456789012

package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimilarity(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{"", "abc", 0},
		{"abc", "", 0},
		{"", "", 0},
		{"jumbo visma", "jumbo visma", 1},
		{"totalenergies", "team totalenergies", 0.9},
		{"team totalenergies", "totalenergies", 0.9},
		// filler removed: {ineos, grenadiers} vs {ineos} -> 1/2
		{"ineos grenadiers", "team ineos", 0.5},
		// only filler on one side: kept as-is, no overlap
		{"team pro", "ineos grenadiers", 0},
		{"uae team emirates", "emirates uae xrg", 2.0 / 3.0},
		{"movistar", "lotto dstny", 0},
	}
	for _, tt := range tests {
		got := Similarity(tt.a, tt.b)
		assert.InDelta(t, tt.want, got, 1e-9, "Similarity(%q, %q)", tt.a, tt.b)
	}
}

func TestSimilarity_SymmetricAndBounded(t *testing.T) {
	names := []string{
		"", "team", "team pro cycling", "ag2r citroen team", "ag2r",
		"decathlon ag2r la mondiale", "lidl trek", "trek", "pro team astana",
		"astana qazaqstan team", "a", "ab",
	}
	for _, a := range names {
		for _, b := range names {
			ab := Similarity(a, b)
			ba := Similarity(b, a)
			assert.Equal(t, ab, ba, "symmetry for %q / %q", a, b)
			assert.GreaterOrEqual(t, ab, 0.0)
			assert.LessOrEqual(t, ab, 1.0)
		}
		if a != "" {
			assert.Equal(t, 1.0, Similarity(a, a))
		}
	}
}

func TestSuggest(t *testing.T) {
	candidates := []string{
		"Tadej Pogačar",
		"Jonas Vingegaard",
		"Remco Evenepoel",
		"Tadej Pogacar", // normalizes identically but is a distinct string
		"Primož Roglič",
	}

	got := Suggest("Tadej POGACAR", candidates, 5)
	assert.Equal(t, []string{"Tadej Pogacar", "Tadej Pogačar"}, got)

	got = Suggest("Vingegard", candidates, 1)
	assert.Equal(t, []string{"Jonas Vingegaard"}, got)

	assert.Empty(t, Suggest("", candidates, 3))
	assert.Empty(t, Suggest("Pogacar", candidates, 0))
	assert.Empty(t, Suggest("zzzz", candidates, 3))
}
