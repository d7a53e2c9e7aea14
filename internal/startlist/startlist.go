// file: internal/startlist/startlist.go
// version: 1.0.0
// guid: 8e2f4a61-c93b-4d07-b5e8-1a6c0d7f92b4

// Package startlist parses race startlist pages and turns them into game
// startlist files by resolving names against a reference dataset.
package startlist

// Team is one scraped team with its riders in page order.
type Team struct {
	Name   string   `json:"name" yaml:"name"`
	Riders []string `json:"riders" yaml:"riders"`
}

// Startlist is an ordered team -> riders mapping. Setting a team name that
// already exists replaces its riders but keeps its original position.
type Startlist struct {
	// Source names the parse strategy that produced the startlist.
	Source string

	teams []Team
	index map[string]int
}

// New returns an empty startlist.
func New() *Startlist {
	return &Startlist{index: make(map[string]int)}
}

// Set stores the riders of a team.
func (s *Startlist) Set(team string, riders []string) {
	if s.index == nil {
		s.index = make(map[string]int)
	}
	if i, ok := s.index[team]; ok {
		s.teams[i].Riders = riders
		return
	}
	s.index[team] = len(s.teams)
	s.teams = append(s.teams, Team{Name: team, Riders: riders})
}

// Riders returns the riders of a team.
func (s *Startlist) Riders(team string) ([]string, bool) {
	if s == nil {
		return nil, false
	}
	i, ok := s.index[team]
	if !ok {
		return nil, false
	}
	return s.teams[i].Riders, true
}

// Teams returns the teams in page order.
func (s *Startlist) Teams() []Team {
	if s == nil {
		return nil
	}
	return s.teams
}

// Len returns the number of teams.
func (s *Startlist) Len() int {
	if s == nil {
		return 0
	}
	return len(s.teams)
}

// RiderCount returns the number of riders across all teams.
func (s *Startlist) RiderCount() int {
	n := 0
	for _, t := range s.Teams() {
		n += len(t.Riders)
	}
	return n
}

// Empty reports whether the startlist holds no teams.
func (s *Startlist) Empty() bool {
	return s.Len() == 0
}
