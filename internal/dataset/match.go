// file: internal/dataset/match.go
// version: 1.0.0
// guid: 6a1d93c8-4e2f-47b0-b5a9-81f3c0d2e7a4

package dataset

import (
	"strings"

	"github.com/benjaminnaesen/PCM-CDB-Editor/internal/matcher"
)

// Rider candidate scores.
const (
	scoreFirstExact   = 100
	scoreFirstPartial = 60
	scoreTeamBonus    = 20
)

// TeamMatch is a resolved team.
type TeamMatch struct {
	ID    int
	Name  string
	Score float64
}

// RiderMatch is a resolved cyclist. Display is rebuilt from the database
// record, not from the scraped text.
type RiderMatch struct {
	ID      int
	Display string
	Score   int
	TeamID  *int
}

// MatchTeam resolves a scraped team name. An exact normalized hit on a team
// name or short name wins outright; otherwise the best fuzzy similarity is
// accepted when it reaches the team threshold.
func (d *Dataset) MatchTeam(name string) (TeamMatch, bool) {
	if !d.Loaded() {
		return TeamMatch{}, false
	}
	norm := matcher.Normalize(name)
	if norm == "" {
		return TeamMatch{}, false
	}

	if id, ok := d.teamIndex[norm]; ok {
		return TeamMatch{ID: id, Name: d.teamByID[id].Name, Score: 1}, true
	}

	best, bestID := 0.0, 0
	for _, k := range d.teamKeys {
		if score := matcher.Similarity(norm, k.norm); score > best {
			best, bestID = score, k.id
		}
	}
	if best <= 0 || best < d.opts.TeamThreshold {
		return TeamMatch{}, false
	}
	return TeamMatch{ID: bestID, Name: d.teamByID[bestID].Name, Score: best}, true
}

// MatchRider resolves a scraped "First Last" rider name. Sites that render
// "Last First" are handled by a reversed split. teamHint is the resolved
// team of the rider, or 0 when unknown; a matching affiliation adds a bonus.
// Among equally scored candidates the lowest cyclist identifier wins.
func (d *Dataset) MatchRider(fullName string, teamHint int) (RiderMatch, bool) {
	if !d.Loaded() {
		return RiderMatch{}, false
	}
	parts := strings.Fields(fullName)
	if len(parts) < 2 {
		return RiderMatch{}, false
	}

	first := matcher.Normalize(parts[0])
	last := matcher.Normalize(strings.Join(parts[1:], " "))
	altFirst := matcher.Normalize(strings.Join(parts[:len(parts)-1], " "))
	altLast := matcher.Normalize(parts[len(parts)-1])

	var candidates []int
	seen := make(map[int]bool)
	add := func(idxs []int) {
		for _, i := range idxs {
			if !seen[i] {
				seen[i] = true
				candidates = append(candidates, i)
			}
		}
	}

	add(d.byLastName[last])
	if len(candidates) == 0 {
		if alt := d.byLastName[altLast]; len(alt) > 0 {
			add(alt)
			first = altFirst
		}
	}

	// compound surnames: "martin" vs "martin guyonnet"
	if last != "" {
		for _, key := range d.lastNames {
			if key != last && (strings.Contains(key, last) || strings.Contains(last, key)) {
				add(d.byLastName[key])
			}
		}
	}

	if len(candidates) == 0 {
		return RiderMatch{}, false
	}

	bestIdx, bestScore := -1, 0
	for _, i := range candidates {
		score := d.scoreCandidate(i, first, teamHint)
		if bestIdx < 0 || score > bestScore ||
			(score == bestScore && d.cyclists[i].ID < d.cyclists[bestIdx].ID) {
			bestIdx, bestScore = i, score
		}
	}
	if bestScore <= d.opts.RiderMinScore {
		return RiderMatch{}, false
	}

	c := d.cyclists[bestIdx]
	return RiderMatch{ID: c.ID, Display: c.DisplayName(), Score: bestScore, TeamID: c.TeamID}, true
}

func (d *Dataset) scoreCandidate(i int, first string, teamHint int) int {
	score := 0
	cFirst := d.firstNorm[i]
	switch {
	case first == "":
	case cFirst == first:
		score = scoreFirstExact
	case strings.Contains(first, cFirst) || strings.Contains(cFirst, first):
		score = scoreFirstPartial
	}
	if teamHint != 0 && d.cyclists[i].OnTeam(teamHint) {
		score += scoreTeamBonus
	}
	return score
}
