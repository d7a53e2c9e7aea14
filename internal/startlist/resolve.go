// file: internal/startlist/resolve.go
// version: 1.0.0
// guid: 0a6c3e81-5d2f-4b94-9e17-b8f4d2a6c053

package startlist

import (
	"fmt"
	"strings"

	"github.com/benjaminnaesen/PCM-CDB-Editor/internal/dataset"
	"github.com/benjaminnaesen/PCM-CDB-Editor/internal/logging"
	"github.com/benjaminnaesen/PCM-CDB-Editor/internal/matcher"
)

// DefaultPlaceholderBase is the first identifier handed to unresolved teams.
// It lies above the identifiers the game uses for real teams.
const DefaultPlaceholderBase = 1000

// ProgressFunc receives the cumulative number of processed riders.
type ProgressFunc func(processed, total int)

// RiderOutcome records how one scraped rider was resolved.
type RiderOutcome struct {
	Name        string   `json:"name" yaml:"name"`
	ID          int      `json:"id,omitempty" yaml:"id,omitempty"`
	Matched     bool     `json:"matched" yaml:"matched"`
	MatchedName string   `json:"matched_name,omitempty" yaml:"matched_name,omitempty"`
	Score       int      `json:"score,omitempty" yaml:"score,omitempty"`
	Suggestions []string `json:"suggestions,omitempty" yaml:"suggestions,omitempty"`
}

// TeamOutcome records how one scraped team and its riders were resolved.
// ID holds the placeholder identifier when Placeholder is set.
type TeamOutcome struct {
	Name        string         `json:"name" yaml:"name"`
	ID          int            `json:"id,omitempty" yaml:"id,omitempty"`
	Matched     bool           `json:"matched" yaml:"matched"`
	Placeholder bool           `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	MatchedName string         `json:"matched_name,omitempty" yaml:"matched_name,omitempty"`
	Score       float64        `json:"score,omitempty" yaml:"score,omitempty"`
	Suggestions []string       `json:"suggestions,omitempty" yaml:"suggestions,omitempty"`
	Riders      []RiderOutcome `json:"riders" yaml:"riders"`
}

// Resolution is the outcome of resolving a whole startlist.
type Resolution struct {
	Teams           []TeamOutcome
	UnmatchedTeams  []string
	UnmatchedRiders []string
}

// MatchedTeamIDs returns the distinct identifiers of resolved teams.
// Placeholder identifiers are not included.
func (r *Resolution) MatchedTeamIDs() []int {
	var ids []int
	seen := make(map[int]bool)
	for _, t := range r.Teams {
		if t.Matched && !seen[t.ID] {
			seen[t.ID] = true
			ids = append(ids, t.ID)
		}
	}
	return ids
}

// MatchedRiderIDs returns the distinct identifiers of resolved riders.
func (r *Resolution) MatchedRiderIDs() []int {
	var ids []int
	seen := make(map[int]bool)
	for _, t := range r.Teams {
		for _, rd := range t.Riders {
			if rd.Matched && !seen[rd.ID] {
				seen[rd.ID] = true
				ids = append(ids, rd.ID)
			}
		}
	}
	return ids
}

// RiderCount returns the number of scraped riders.
func (r *Resolution) RiderCount() int {
	n := 0
	for _, t := range r.Teams {
		n += len(t.Riders)
	}
	return n
}

// LogUnmatched emits one aggregate line for unmatched teams and one for
// unmatched riders, listing their names.
func (r *Resolution) LogUnmatched(log logging.LineFunc) {
	log = logging.OrDiscard(log)
	if len(r.UnmatchedTeams) > 0 {
		log(fmt.Sprintf("\n[!] %d team(s) not matched: %s",
			len(r.UnmatchedTeams), strings.Join(r.UnmatchedTeams, ", ")))
	}
	if len(r.UnmatchedRiders) > 0 {
		log(fmt.Sprintf("[!] %d rider(s) not matched: %s",
			len(r.UnmatchedRiders), strings.Join(r.UnmatchedRiders, ", ")))
	}
}

// Resolver matches every team and rider of a startlist against a dataset
// and logs each outcome.
type Resolver struct {
	// Dataset may be nil, in which case nothing resolves.
	Dataset *dataset.Dataset
	// Placeholders assigns sequential identifiers to unresolved teams.
	Placeholders    bool
	PlaceholderBase int
	// Suggestions is the number of close names attached to each miss.
	Suggestions int
	Log         logging.LineFunc
	Progress    ProgressFunc
}

// Resolve resolves sl in page order. Riders are matched with the resolved
// team as affiliation hint; placeholder identifiers are never used as hints.
func (r *Resolver) Resolve(sl *Startlist) *Resolution {
	log := logging.OrDiscard(r.Log)
	base := r.PlaceholderBase
	if base <= 0 {
		base = DefaultPlaceholderBase
	}
	next := base

	var teamNames, riderNames []string
	canSuggest := r.Suggestions > 0 && r.Dataset.Loaded()
	if canSuggest {
		teamNames = r.Dataset.TeamNames()
		riderNames = r.Dataset.CyclistNames()
	}

	res := &Resolution{}
	total := sl.RiderCount()
	processed := 0

	for _, team := range sl.Teams() {
		out := TeamOutcome{Name: team.Name}
		hint := 0

		if m, ok := r.match(team.Name); ok {
			out.ID, out.Matched, out.MatchedName, out.Score = m.ID, true, m.Name, m.Score
			hint = m.ID
			log(fmt.Sprintf("  [TEAM]  %s -> ID %d", team.Name, m.ID))
		} else {
			res.UnmatchedTeams = append(res.UnmatchedTeams, team.Name)
			if canSuggest {
				out.Suggestions = matcher.Suggest(team.Name, teamNames, r.Suggestions)
			}
			if r.Placeholders {
				out.ID, out.Placeholder = next, true
				next++
				log(fmt.Sprintf("  [TEAM]  %s -> NOT FOUND (using %d)", team.Name, out.ID))
			} else {
				log(fmt.Sprintf("  [TEAM]  %s -> NOT FOUND", team.Name))
			}
		}

		for _, name := range team.Riders {
			rider := RiderOutcome{Name: name}
			if m, ok := r.matchRider(name, hint); ok {
				rider.ID, rider.Matched, rider.MatchedName, rider.Score = m.ID, true, m.Display, m.Score
				log(fmt.Sprintf("    [RIDER] %s -> ID %d", name, m.ID))
			} else {
				res.UnmatchedRiders = append(res.UnmatchedRiders, name)
				if canSuggest {
					rider.Suggestions = matcher.Suggest(name, riderNames, r.Suggestions)
				}
				if r.Placeholders {
					log(fmt.Sprintf("    [RIDER] %s -> SKIPPED (not in database)", name))
				} else {
					log(fmt.Sprintf("    [RIDER] %s -> NOT FOUND", name))
				}
			}
			out.Riders = append(out.Riders, rider)

			processed++
			if r.Progress != nil {
				r.Progress(processed, total)
			}
		}

		res.Teams = append(res.Teams, out)
	}
	return res
}

func (r *Resolver) match(name string) (dataset.TeamMatch, bool) {
	if r.Dataset == nil {
		return dataset.TeamMatch{}, false
	}
	return r.Dataset.MatchTeam(name)
}

func (r *Resolver) matchRider(name string, hint int) (dataset.RiderMatch, bool) {
	if r.Dataset == nil {
		return dataset.RiderMatch{}, false
	}
	return r.Dataset.MatchRider(name, hint)
}
