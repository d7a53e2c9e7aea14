// file: internal/matcher/fuzzy.go
// version: 2.0.0
// guid: a1b2c3d4-e5f6-7890-abcd-ef1234567890

package matcher

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// ContainmentScore is returned when one name fully contains the other.
const ContainmentScore = 0.9

// fillerWords are generic organisational words ignored by token overlap.
var fillerWords = map[string]struct{}{
	"team":    {},
	"pro":     {},
	"cycling": {},
}

// Similarity scores two normalized names in [0, 1]. The first applicable
// rule wins: empty side 0, equality 1, containment 0.9, otherwise the
// token overlap divided by the larger filler-free token set.
func Similarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return ContainmentScore
	}

	sa := withoutFiller(tokenSet(a))
	sb := withoutFiller(tokenSet(b))
	if len(sa) == 0 || len(sb) == 0 {
		return 0
	}

	overlap := 0
	for w := range sa {
		if _, ok := sb[w]; ok {
			overlap++
		}
	}
	return float64(overlap) / float64(max(len(sa), len(sb)))
}

func tokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(s) {
		set[w] = struct{}{}
	}
	return set
}

// withoutFiller drops filler words unless that would leave nothing.
func withoutFiller(set map[string]struct{}) map[string]struct{} {
	clean := make(map[string]struct{}, len(set))
	for w := range set {
		if _, filler := fillerWords[w]; !filler {
			clean[w] = struct{}{}
		}
	}
	if len(clean) == 0 {
		return set
	}
	return clean
}

// Suggest returns up to limit candidates that resemble query, closest
// first. A candidate qualifies when the longest token of the query can be
// found in it as a fuzzy subsequence; qualifying candidates are ranked by
// Levenshtein distance between the normalized forms.
func Suggest(query string, candidates []string, limit int) []string {
	q := Normalize(query)
	if q == "" || limit <= 0 {
		return nil
	}
	key := longestToken(q)

	type hit struct {
		name string
		dist int
	}
	var hits []hit
	seen := make(map[string]bool)
	for _, c := range candidates {
		if seen[c] {
			continue
		}
		n := Normalize(c)
		if n == "" || !fuzzy.Match(key, n) {
			continue
		}
		seen[c] = true
		hits = append(hits, hit{name: c, dist: fuzzy.LevenshteinDistance(q, n)})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].dist != hits[j].dist {
			return hits[i].dist < hits[j].dist
		}
		return hits[i].name < hits[j].name
	})

	if len(hits) > limit {
		hits = hits[:limit]
	}
	out := make([]string, len(hits))
	for i, h := range hits {
		out[i] = h.name
	}
	return out
}

func longestToken(s string) string {
	best := ""
	for _, w := range strings.Fields(s) {
		if len(w) > len(best) {
			best = w
		}
	}
	return best
}
