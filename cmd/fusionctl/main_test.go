package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/gironde-risk-etl/internal/config"
	"github.com/couchcryptid/gironde-risk-etl/internal/domain"
	"github.com/couchcryptid/gironde-risk-etl/internal/mockdata"
	"github.com/couchcryptid/gironde-risk-etl/internal/pipeline"
	"github.com/couchcryptid/gironde-risk-etl/internal/query"
)

func generate(t *testing.T) mockdata.Manifest {
	t.Helper()
	m, err := mockdata.Generate(t.TempDir(), mockdata.DefaultOptions())
	require.NoError(t, err)
	return m
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestSummary(t *testing.T) {
	m := generate(t)

	out, err := execute(t, "--data-dir", m.Dir, "--json", "summary")
	require.NoError(t, err)

	var s pipeline.Summary
	require.NoError(t, json.Unmarshal([]byte(out), &s))
	assert.True(t, s.Ready)
	assert.True(t, s.SpatialDone)
	assert.Equal(t, m.Municipalities, s.Facts.Municipalities)
	assert.Equal(t, m.FiresInWindow, s.Facts.FiresInWindow)
	assert.Len(t, s.Reports, 6)

	text, err := execute(t, "--data-dir", m.Dir, "summary")
	require.NoError(t, err)
	assert.Contains(t, text, "Municipalities:      36")
	assert.Contains(t, text, "social")
}

func TestSearch(t *testing.T) {
	m := generate(t)

	out, err := execute(t, "--data-dir", m.Dir, "--json", "search", "meri")
	require.NoError(t, err)
	var matches []query.Match
	require.NoError(t, json.Unmarshal([]byte(out), &matches))
	require.NotEmpty(t, matches)
	assert.Equal(t, query.Match{ID: "33001", Name: "Mérignac"}, matches[0])

	out, err = execute(t, "--data-dir", m.Dir, "search", "zz")
	require.NoError(t, err)
	assert.Equal(t, "No match.\n", out)
}

func TestRank(t *testing.T) {
	m := generate(t)

	out, err := execute(t, "--data-dir", m.Dir, "--json", "rank", "income", "--asc")
	require.NoError(t, err)
	var page query.RankPage
	require.NoError(t, json.Unmarshal([]byte(out), &page))
	assert.Equal(t, query.Income, page.Indicator)
	assert.Equal(t, 0, page.Page)
	assert.Equal(t, m.Municipalities, page.TotalItems)
	require.Len(t, page.Items, query.PageSize)
	for i := 1; i < len(page.Items); i++ {
		assert.LessOrEqual(t, page.Items[i-1].Value, page.Items[i].Value)
	}

	out, err = execute(t, "--data-dir", m.Dir, "--json", "rank", "income", "--page", "3")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &page))
	assert.Equal(t, 2, page.Page)
	assert.Len(t, page.Items, m.Municipalities-2*query.PageSize)

	_, err = execute(t, "--data-dir", m.Dir, "rank", "altitude")
	assert.ErrorContains(t, err, "unknown indicator")
}

func TestClay(t *testing.T) {
	m := generate(t)

	out, err := execute(t, "--data-dir", m.Dir, "--json", "clay")
	require.NoError(t, err)
	var v query.ClayView
	require.NoError(t, json.Unmarshal([]byte(out), &v))
	assert.Len(t, v.High, m.ClayHigh)
	assert.Len(t, v.Medium, m.ClayMedium)
	assert.Equal(t, m.Municipalities-m.ClayHigh-m.ClayMedium, v.LowCount)
}

func TestStation(t *testing.T) {
	m := generate(t)

	out, err := execute(t, "--data-dir", m.Dir, "--json", "station", "bordeaux")
	require.NoError(t, err)
	var v query.StationView
	require.NoError(t, json.Unmarshal([]byte(out), &v))
	assert.Equal(t, "Bordeaux", v.Station)
	assert.NotEmpty(t, v.Linked)
	assert.Contains(t, v.LatestLabel, " m (Moy/h)")
	assert.Len(t, v.Days, 3, "48 hourly readings ending at noon span three days")

	_, err = execute(t, "--data-dir", m.Dir, "station", "Langon")
	assert.ErrorContains(t, err, "unknown station")
}

func TestCorrelate(t *testing.T) {
	m := generate(t)

	out, err := execute(t, "--data-dir", m.Dir, "--json", "correlate")
	require.NoError(t, err)
	var c map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &c))
	assert.Equal(t, "strong_negative", c["conclusion"])
	assert.EqualValues(t, m.Municipalities-m.MaskedPoverty, c["n"])
	assert.Contains(t, c["equation"], "y = ")
}

func TestMunicipality(t *testing.T) {
	m := generate(t)

	out, err := execute(t, "--data-dir", m.Dir, "--json", "municipality", "33012")
	require.NoError(t, err)
	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &rec))
	assert.Equal(t, "33012", rec["insee"])
	assert.Equal(t, "Saint-Émilion", rec["name"])

	text, err := execute(t, "--data-dir", m.Dir, "municipality", "33012")
	require.NoError(t, err)
	assert.Contains(t, text, "Saint-Émilion (33012)")
	assert.Contains(t, text, "Clay risk:")

	_, err = execute(t, "--data-dir", m.Dir, "municipality", "99999")
	assert.ErrorContains(t, err, "no municipality")
}

func TestValidate(t *testing.T) {
	m := generate(t)

	_, err := execute(t, "--data-dir", m.Dir, "validate")
	require.NoError(t, err)

	_, err = execute(t, "--data-dir", t.TempDir(), "validate")
	assert.ErrorContains(t, err, "building fact table")
}

func TestFindStation(t *testing.T) {
	c := &cli{cfg: &config.Config{Stations: domain.DefaultStations}}

	s, err := c.findStation("AMBES")
	require.NoError(t, err)
	assert.Equal(t, "Ambès", s.Name)

	_, err = c.findStation("Langon")
	assert.ErrorContains(t, err, "known: Bordeaux, Ambès, Libourne")
}
