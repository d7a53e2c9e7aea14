// file: internal/startlist/report.go
// version: 1.0.0
// guid: 92e4b0c6-7f1d-4a58-b3e9-6c0a2d8f4e17

package startlist

import (
	"fmt"
	"time"

	"github.com/benjaminnaesen/PCM-CDB-Editor/internal/fileops"
	ulid "github.com/oklog/ulid/v2"
	"gopkg.in/yaml.v3"
)

// ReportSummary holds the match counts of a run.
type ReportSummary struct {
	Teams         int `yaml:"teams"`
	TeamsMatched  int `yaml:"teams_matched"`
	Riders        int `yaml:"riders"`
	RidersMatched int `yaml:"riders_matched"`
}

// Report is a machine-readable record of a resolution, including close
// names for everything that did not match.
type Report struct {
	RunID       string        `yaml:"run_id"`
	GeneratedAt time.Time     `yaml:"generated_at"`
	Input       string        `yaml:"input,omitempty"`
	Strategy    string        `yaml:"strategy,omitempty"`
	Output      string        `yaml:"output,omitempty"`
	Summary     ReportSummary `yaml:"summary"`
	Teams       []TeamOutcome `yaml:"teams"`
}

// NewReport builds a report for res.
func NewReport(sl *Startlist, res *Resolution, input, output string) *Report {
	rep := &Report{
		RunID:       ulid.Make().String(),
		GeneratedAt: time.Now().UTC(),
		Input:       input,
		Output:      output,
		Teams:       res.Teams,
	}
	if sl != nil {
		rep.Strategy = sl.Source
	}
	for _, t := range res.Teams {
		rep.Summary.Teams++
		if t.Matched {
			rep.Summary.TeamsMatched++
		}
		for _, r := range t.Riders {
			rep.Summary.Riders++
			if r.Matched {
				rep.Summary.RidersMatched++
			}
		}
	}
	return rep
}

// Marshal encodes the report as YAML.
func (r *Report) Marshal() ([]byte, error) {
	return yaml.Marshal(r)
}

// WriteFile writes the report as YAML to path.
func (r *Report) WriteFile(path string) error {
	data, err := r.Marshal()
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if err := fileops.WriteFileAtomic(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
