// file: internal/dataset/dataset.go
// version: 1.0.0
// guid: 0e6a2f4d-8c1b-4b39-9f57-2d4c7e81a3b6

// Package dataset holds the in-memory reference teams and cyclists used to
// resolve scraped names to game database identifiers.
package dataset

import (
	"sort"

	"github.com/benjaminnaesen/PCM-CDB-Editor/internal/matcher"
	"github.com/benjaminnaesen/PCM-CDB-Editor/internal/models"
)

// Options tunes match acceptance.
type Options struct {
	// TeamThreshold is the minimum similarity a fuzzy team match needs.
	TeamThreshold float64
	// RiderMinScore must be exceeded by the best rider candidate.
	RiderMinScore int
}

// DefaultOptions returns the standard thresholds.
func DefaultOptions() Options {
	return Options{
		TeamThreshold: 0.5,
		RiderMinScore: 0,
	}
}

// teamKey is one normalized team name pointing at its team
type teamKey struct {
	norm string
	id   int
}

// Dataset is an immutable, indexed view of teams and cyclists. All indexes
// are built by New; nothing is modified afterwards, so a Dataset may be
// shared between goroutines.
type Dataset struct {
	opts     Options
	teams    []models.Team
	cyclists []models.Cyclist

	teamIndex map[string]int
	teamByID  map[int]models.Team
	teamKeys  []teamKey

	byLastName map[string][]int // normalized last name -> indexes into cyclists
	lastNames  []string         // sorted keys of byLastName
	firstNorm  []string         // normalized first name per cyclist
}

// New builds a dataset and its lookup indexes. Later teams sharing a
// normalized name overwrite earlier ones in the exact-name index.
func New(teams []models.Team, cyclists []models.Cyclist, opts Options) *Dataset {
	d := &Dataset{
		opts:       opts,
		teams:      teams,
		cyclists:   cyclists,
		teamIndex:  make(map[string]int),
		teamByID:   make(map[int]models.Team, len(teams)),
		byLastName: make(map[string][]int),
		firstNorm:  make([]string, len(cyclists)),
	}

	for _, t := range teams {
		d.teamByID[t.ID] = t
		names := []string{t.Name}
		if t.ShortName != nil {
			names = append(names, *t.ShortName)
		}
		for _, name := range names {
			norm := matcher.Normalize(name)
			if norm == "" {
				continue
			}
			d.teamIndex[norm] = t.ID
			d.teamKeys = append(d.teamKeys, teamKey{norm: norm, id: t.ID})
		}
	}

	for i, c := range cyclists {
		d.firstNorm[i] = matcher.Normalize(c.FirstName)
		last := matcher.Normalize(c.LastName)
		if last == "" {
			continue
		}
		d.byLastName[last] = append(d.byLastName[last], i)
	}
	d.lastNames = make([]string, 0, len(d.byLastName))
	for k := range d.byLastName {
		d.lastNames = append(d.lastNames, k)
	}
	sort.Strings(d.lastNames)

	return d
}

// Loaded reports whether both teams and cyclists are present. Partial data
// is not usable for matching.
func (d *Dataset) Loaded() bool {
	return d != nil && len(d.teams) > 0 && len(d.cyclists) > 0
}

// Teams returns the loaded teams.
func (d *Dataset) Teams() []models.Team {
	return d.teams
}

// Cyclists returns the loaded cyclists.
func (d *Dataset) Cyclists() []models.Cyclist {
	return d.cyclists
}

// Options returns the thresholds the dataset was built with.
func (d *Dataset) Options() Options {
	return d.opts
}

// Team looks up a team by identifier.
func (d *Dataset) Team(id int) (models.Team, bool) {
	t, ok := d.teamByID[id]
	return t, ok
}

// TeamNames returns every team name and short name, used for suggestions.
func (d *Dataset) TeamNames() []string {
	names := make([]string, 0, len(d.teams))
	for _, t := range d.teams {
		names = append(names, t.Name)
		if t.ShortName != nil {
			names = append(names, *t.ShortName)
		}
	}
	return names
}

// CyclistNames returns every cyclist display name, used for suggestions.
func (d *Dataset) CyclistNames() []string {
	names := make([]string, len(d.cyclists))
	for i, c := range d.cyclists {
		names[i] = c.DisplayName()
	}
	return names
}

// Summary describes what a dataset holds.
type Summary struct {
	Teams    int  `json:"teams" yaml:"teams"`
	Cyclists int  `json:"cyclists" yaml:"cyclists"`
	Free     int  `json:"free_cyclists" yaml:"free_cyclists"`
	Loaded   bool `json:"loaded" yaml:"loaded"`
}

// Summarize counts the dataset contents.
func (d *Dataset) Summarize() Summary {
	s := Summary{Teams: len(d.teams), Cyclists: len(d.cyclists), Loaded: d.Loaded()}
	for _, c := range d.cyclists {
		if c.TeamID == nil {
			s.Free++
		}
	}
	return s
}
