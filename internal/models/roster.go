// file: internal/models/roster.go
// version: 1.0.0
// guid: c7f65c4b-41c9-4dc8-be0e-547e31475a37

package models

// Team represents a row of the game's team table
type Team struct {
	ID        int     `json:"id" db:"IDteam"`
	Name      string  `json:"name" db:"gene_sz_name"`
	ShortName *string `json:"short_name,omitempty" db:"gene_sz_shortname"`
}

// Cyclist represents a row of the game's cyclist table
type Cyclist struct {
	ID        int    `json:"id" db:"IDcyclist"`
	FirstName string `json:"first_name" db:"gene_sz_firstname"`
	LastName  string `json:"last_name" db:"gene_sz_lastname"`
	TeamID    *int   `json:"team_id,omitempty" db:"fkIDteam"`
}

// DisplayName returns "First Last" as stored in the database.
func (c Cyclist) DisplayName() string {
	return c.FirstName + " " + c.LastName
}

// OnTeam reports whether the cyclist is affiliated with teamID.
func (c Cyclist) OnTeam(teamID int) bool {
	return c.TeamID != nil && *c.TeamID == teamID
}

// StringPtr returns a pointer to s, or nil when s is empty.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int {
	return &v
}
