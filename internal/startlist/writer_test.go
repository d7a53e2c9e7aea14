// file: internal/startlist/writer_test.go
// version: 1.0.0
// guid: 71d0c4e9-8b2a-4f35-9c6e-0e5b3a7d2f18

package startlist

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/benjaminnaesen/PCM-CDB-Editor/internal/dataset"
	"github.com/benjaminnaesen/PCM-CDB-Editor/internal/logging"
	"github.com/benjaminnaesen/PCM-CDB-Editor/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func raceDataset() *dataset.Dataset {
	teams := []models.Team{
		{ID: 5, Name: "UAE Team Emirates", ShortName: models.StringPtr("UAD")},
		{ID: 7, Name: "Lidl - Trek", ShortName: models.StringPtr("LTK")},
		{ID: 10, Name: "Cofidis"},
	}
	rider := func(id int, first, last string, team int) models.Cyclist {
		return models.Cyclist{ID: id, FirstName: first, LastName: last, TeamID: models.IntPtr(team)}
	}
	cyclists := []models.Cyclist{
		rider(101, "Tadej", "Pogačar", 5),
		rider(102, "João", "Almeida", 5),
		rider(103, "Adam", "Yates", 5),
		rider(201, "Mads", "Pedersen", 7),
		rider(202, "Mattias", "Skjelmose", 7),
		rider(203, "Giulio", "Ciccone", 7),
		rider(301, "Guillaume", "Martin", 10),
	}
	return dataset.New(teams, cyclists, dataset.DefaultOptions())
}

func TestWriter_EndToEnd(t *testing.T) {
	sl := NewParser().Parse(pcsPage)
	require.NotNil(t, sl)

	rec := &logging.Recorder{}
	dest := filepath.Join(t.TempDir(), "startlist.xml")
	w := &Writer{Dataset: raceDataset(), Log: rec.Log}

	res, err := w.Write(sl, dest)
	require.NoError(t, err)

	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	want := "<startlist>\n" +
		"    <team id=\"5\">\n" +
		"        <cyclist id=\"101\" />\n" +
		"        <cyclist id=\"102\" />\n" +
		"        <cyclist id=\"103\" />\n" +
		"    </team>\n" +
		"    <team id=\"7\">\n" +
		"        <cyclist id=\"201\" />\n" +
		"        <cyclist id=\"202\" />\n" +
		"        <cyclist id=\"203\" />\n" +
		"    </team>\n" +
		"</startlist>\n"
	assert.Equal(t, want, string(got))

	assert.Empty(t, res.UnmatchedTeams)
	assert.Empty(t, res.UnmatchedRiders)
	assert.NotContains(t, rec.String(), "[!]")
	assert.Contains(t, rec.Lines(), "  [TEAM]  UAE Team Emirates -> ID 5")
	assert.Contains(t, rec.Lines(), "    [RIDER] Tadej POGAČAR -> ID 101")
	assert.Equal(t, []int{5, 7}, res.MatchedTeamIDs())
	assert.Len(t, res.MatchedRiderIDs(), 6)
}

func TestWriter_OmitsUnresolvedRiders(t *testing.T) {
	sl := New()
	sl.Set("Cofidis", []string{"Guillaume Martin", "Nobody Known"})

	rec := &logging.Recorder{}
	dest := filepath.Join(t.TempDir(), "out.xml")
	res, err := (&Writer{Dataset: raceDataset(), Log: rec.Log}).Write(sl, dest)
	require.NoError(t, err)

	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(got), "<cyclist "))
	assert.Contains(t, string(got), `<cyclist id="301" />`)

	assert.Equal(t, []string{"Nobody Known"}, res.UnmatchedRiders)
	assert.Equal(t, []string{
		"  [TEAM]  Cofidis -> ID 10",
		"    [RIDER] Guillaume Martin -> ID 301",
		"    [RIDER] Nobody Known -> SKIPPED (not in database)",
		"[!] 1 rider(s) not matched: Nobody Known",
	}, rec.Lines())
}

func TestWriter_PlaceholdersAreSequential(t *testing.T) {
	sl := New()
	sl.Set("Alpha Racing", []string{"Some One"})
	sl.Set("Beta Racing", []string{"Other One"})
	sl.Set("Gamma Racing", nil)

	rec := &logging.Recorder{}
	dest := filepath.Join(t.TempDir(), "out.xml")
	res, err := (&Writer{Log: rec.Log}).Write(sl, dest)
	require.NoError(t, err)

	var ids []int
	for _, team := range res.Teams {
		assert.True(t, team.Placeholder)
		assert.False(t, team.Matched)
		ids = append(ids, team.ID)
	}
	assert.Equal(t, []int{1000, 1001, 1002}, ids)
	assert.Empty(t, res.MatchedTeamIDs())

	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "<startlist>\n"+
		"    <team id=\"1000\">\n    </team>\n"+
		"    <team id=\"1001\">\n    </team>\n"+
		"    <team id=\"1002\">\n    </team>\n"+
		"</startlist>\n", string(got))

	lines := rec.Lines()
	assert.Contains(t, lines, "  [TEAM]  Alpha Racing -> NOT FOUND (using 1000)")
	assert.Contains(t, lines, "\n[!] 3 team(s) not matched: Alpha Racing, Beta Racing, Gamma Racing")
	assert.Contains(t, lines, "[!] 2 rider(s) not matched: Some One, Other One")
}

func TestWriter_CustomPlaceholderBase(t *testing.T) {
	sl := New()
	sl.Set("Nonexistent Riders", []string{"A B"})

	res, err := (&Writer{Dataset: raceDataset(), PlaceholderBase: 5000}).Write(sl, filepath.Join(t.TempDir(), "x.xml"))
	require.NoError(t, err)
	assert.Equal(t, 5000, res.Teams[0].ID)
}

func TestWriter_EmptyStartlist(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "never.xml")

	_, err := (&Writer{}).Write(nil, dest)
	assert.True(t, errors.Is(err, ErrEmptyStartlist))

	_, err = (&Writer{}).Write(New(), dest)
	assert.True(t, errors.Is(err, ErrEmptyStartlist))

	_, statErr := os.Stat(dest)
	assert.True(t, os.IsNotExist(statErr))
}

func TestWriter_Progress(t *testing.T) {
	sl := NewParser().Parse(pcsPage)
	require.NotNil(t, sl)

	var seen [][2]int
	w := &Writer{
		Dataset:  raceDataset(),
		Progress: func(done, total int) { seen = append(seen, [2]int{done, total}) },
	}
	_, err := w.Write(sl, filepath.Join(t.TempDir(), "p.xml"))
	require.NoError(t, err)

	require.Len(t, seen, 6)
	for i, p := range seen {
		assert.Equal(t, i+1, p[0])
		assert.Equal(t, 6, p[1])
	}
}

func TestWriter_DestinationError(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	sl := New()
	sl.Set("Cofidis", []string{"Guillaume Martin"})
	_, err := (&Writer{Dataset: raceDataset()}).Write(sl, filepath.Join(blocker, "out.xml"))
	assert.Error(t, err)
}

func TestResolver_WithoutPlaceholders(t *testing.T) {
	sl := New()
	sl.Set("Cofidis", []string{"Guillaume Martin"})
	sl.Set("Nonexistent Riders", []string{"Tadej Pogacr"})

	rec := &logging.Recorder{}
	r := &Resolver{Dataset: raceDataset(), Suggestions: 3, Log: rec.Log}
	res := r.Resolve(sl)

	assert.Equal(t, []int{10}, res.MatchedTeamIDs())
	assert.Equal(t, []int{301}, res.MatchedRiderIDs())
	assert.Equal(t, 2, res.RiderCount())
	assert.Equal(t, []string{
		"  [TEAM]  Cofidis -> ID 10",
		"    [RIDER] Guillaume Martin -> ID 301",
		"  [TEAM]  Nonexistent Riders -> NOT FOUND",
		"    [RIDER] Tadej Pogacr -> NOT FOUND",
	}, rec.Lines())

	miss := res.Teams[1]
	assert.Equal(t, 0, miss.ID)
	assert.False(t, miss.Placeholder)
	assert.Equal(t, []string{"Tadej Pogačar"}, miss.Riders[0].Suggestions)
}

func TestResolver_PlaceholderIsNotUsedAsHint(t *testing.T) {
	// a real team with the same identifier as the first placeholder
	teams := []models.Team{{ID: 1000, Name: "Thousand Team"}, {ID: 1, Name: "Other"}}
	cyclists := []models.Cyclist{
		{ID: 1, FirstName: "Jan", LastName: "Smit", TeamID: models.IntPtr(1)},
		{ID: 2, FirstName: "Jan", LastName: "Smit", TeamID: models.IntPtr(1000)},
	}
	ds := dataset.New(teams, cyclists, dataset.DefaultOptions())

	sl := New()
	sl.Set("Unrelated Squad", []string{"Jan Smit"})
	res := (&Resolver{Dataset: ds, Placeholders: true}).Resolve(sl)

	require.Len(t, res.Teams, 1)
	assert.Equal(t, 1000, res.Teams[0].ID)
	// without a hint the tie resolves to the lowest identifier
	assert.Equal(t, 1, res.Teams[0].Riders[0].ID)
}

func TestResolution_LogUnmatchedNilSink(t *testing.T) {
	res := &Resolution{UnmatchedTeams: []string{"x"}}
	res.LogUnmatched(nil)
}
