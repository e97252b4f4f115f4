package query

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/gironde-risk-etl/internal/domain"
)

// table is an in-memory Records already ordered by identifier.
type table []domain.Municipality

func (t table) All() []domain.Municipality { return t }

func muni(id, name string) domain.Municipality {
	return domain.NewMunicipality(id, name)
}

func withSocial(m domain.Municipality, rate, income *float64) domain.Municipality {
	m.Social = &domain.Social{PovertyRate: rate, MedianIncome: income}
	return m
}

func f(v float64) *float64 { return &v }

func TestSearch(t *testing.T) {
	records := table{
		muni("33001", "Abzac"),
		muni("33063", "Bordeaux"),
		muni("33069", "Le Bouscat"),
		muni("33394", "Saint-Émilion"),
		muni("33433", "Saint-Loubès"),
		muni("33522", "Soulac-sur-Mer"),
	}

	tests := []struct {
		name  string
		query string
		limit int
		want  []string
	}{
		{"prefix first", "bo", 0, []string{"33063", "33069"}},
		{"accents ignored", "EMIL", 0, []string{"33394"}},
		{"hyphen as space", "saint e", 0, []string{"33394"}},
		{"code prefix", "3306", 0, []string{"33063", "33069"}},
		{"limit", "33", 2, []string{"33001", "33063"}},
		{"too short", "b", 0, nil},
		{"punctuation only", "- '", 0, nil},
		{"no match", "paris", 0, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, m := range Search(records, tt.query, tt.limit) {
				got = append(got, m.ID)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSearch_PrefixBeforeContains(t *testing.T) {
	records := table{
		muni("33010", "Arsac"),
		muni("33020", "Sadirac"),
		muni("33030", "Sauternes"),
	}
	got := Search(records, "sa", 0)
	require.Len(t, got, 3)
	assert.Equal(t, []Match{{"33020", "Sadirac"}, {"33030", "Sauternes"}, {"33010", "Arsac"}}, got)
}

func TestSearch_DefaultLimit(t *testing.T) {
	var records table
	for i := range 20 {
		records = append(records, muni(fmt.Sprintf("330%02d", i), fmt.Sprintf("Saint %02d", i)))
	}
	assert.Len(t, Search(records, "saint", 0), DefaultSearchLimit)
}

func TestRank_Social(t *testing.T) {
	records := table{
		withSocial(muni("33001", "A"), f(12), f(21000)),
		withSocial(muni("33002", "B"), nil, f(19000)),
		withSocial(muni("33003", "C"), f(25.5), nil),
		muni("33004", "D"),
		withSocial(muni("33005", "E"), f(0), f(30000)),
		withSocial(muni("33006", "F"), f(12), f(18000)),
	}

	desc := Rank(records, Poverty, Descending, 0)
	assert.Equal(t, 5, desc.TotalItems)
	ids := itemIDs(desc.Items)
	assert.Equal(t, []string{"33003", "33001", "33006", "33002", "33004"}, ids)
	assert.Equal(t, "25.5%", desc.Items[0].Label)
	assert.Equal(t, NoValue, desc.Items[3].Label)
	assert.False(t, desc.Items[4].HasValue)

	asc := Rank(records, Income, Ascending, 0)
	assert.Equal(t, []string{"33006", "33002", "33001", "33005", "33003", "33004"}, itemIDs(asc.Items))
	assert.Equal(t, "18000 €", asc.Items[0].Label)
}

func TestRank_CountersAndPagination(t *testing.T) {
	var records table
	for i := range 40 {
		m := muni(fmt.Sprintf("33%03d", i), fmt.Sprintf("M%02d", i))
		m.Cavities = i % 10
		records = append(records, m)
	}

	// 4 of 40 have zero cavities.
	first := Rank(records, Cavities, Descending, 0)
	assert.Equal(t, 36, first.TotalItems)
	assert.Equal(t, 3, first.TotalPages)
	require.Len(t, first.Items, PageSize)
	assert.Equal(t, 9.0, first.Items[0].Value)
	assert.Equal(t, "33009", first.Items[0].ID)
	assert.Equal(t, "9", first.Items[0].Label)

	last := Rank(records, Cavities, Descending, 2)
	assert.Equal(t, 2, last.Page)
	assert.Len(t, last.Items, 6)
	assert.Equal(t, 1.0, last.Items[5].Value)

	outOfRange := Rank(records, Cavities, Descending, 7)
	assert.Equal(t, 0, outOfRange.Page)
	if diff := cmp.Diff(first, outOfRange); diff != "" {
		t.Errorf("out of range page should fall back to the first (-want +got):\n%s", diff)
	}

	empty := Rank(records, Movements, Descending, 0)
	assert.Equal(t, 0, empty.TotalItems)
	assert.Equal(t, 0, empty.TotalPages)
	assert.Empty(t, empty.Items)
}

func TestRank_Fire(t *testing.T) {
	w := domain.FireWindow{CurrentYear: 2024, Years: 10}
	a := muni("33001", "A")
	a.Fire.Add(2024, 3, w)
	b := muni("33002", "B")
	b.Fire.Add(2000, 9, w)
	c := muni("33003", "C")
	c.Fire.Add(2015, 5, w)

	page := Rank(table{a, b, c}, Fire, Descending, 0)
	assert.Equal(t, []string{"33003", "33001"}, itemIDs(page.Items))
}

func TestParseIndicator(t *testing.T) {
	ind, err := ParseIndicator(" Income ")
	require.NoError(t, err)
	assert.Equal(t, Income, ind)

	_, err = ParseIndicator("clay")
	assert.Error(t, err)
}

func TestClayBreakdown(t *testing.T) {
	high := func(id, name string) domain.Municipality {
		m := muni(id, name)
		m.ClayRisk = domain.RiskHigh
		return m
	}
	medium := func(id, name string) domain.Municipality {
		m := muni(id, name)
		m.ClayRisk = domain.RiskMedium
		return m
	}
	records := table{
		high("33001", "Saint-Loubès"),
		high("33002", "Écoyeux"),
		high("33003", "Artigues"),
		medium("33004", "Zèbre"),
		medium("33005", "église"),
		muni("33006", "Low"),
		muni("33007", "Lower"),
	}

	got := ClayBreakdown(records)
	want := ClayView{
		High:     []Match{{"33003", "Artigues"}, {"33002", "Écoyeux"}, {"33001", "Saint-Loubès"}},
		Medium:   []Match{{"33005", "église"}, {"33004", "Zèbre"}},
		LowCount: 2,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ClayBreakdown mismatch (-want +got):\n%s", diff)
	}
}

func TestStationReport(t *testing.T) {
	b := domain.NewSeriesBuilder("Bordeaux")
	day := func(d, h int) time.Time { return time.Date(2025, 12, d, h, 0, 0, 0, time.UTC) }
	b.Append(day(8, 1), 3.1)
	b.Append(day(8, 13), 4.6)
	b.Append(day(8, 23), 4.2)
	b.Append(day(9, 2), 2.9)
	b.Append(day(10, 5), 5.0)
	series := b.Build()

	link := func(m domain.Municipality, station string) domain.Municipality {
		m.Water = &domain.WaterLink{Station: station, LatestLabel: "4,01 m (Moy/h)", Series: series}
		return m
	}
	records := table{
		link(muni("33063", "Bordeaux"), "Bordeaux"),
		link(muni("33069", "Le Bouscat"), "Bordeaux"),
		link(muni("33004", "Ambarès"), "Bordeaux"),
		link(muni("33005", "Ambès"), "Ambès"),
		muni("33522", "Soulac-sur-Mer"),
	}

	got := StationReport(records, "Bordeaux", series)
	assert.Equal(t, "Bordeaux", got.Station)
	assert.Equal(t, "4,01 m (Moy/h)", got.LatestLabel)
	assert.Equal(t, []Match{{"33004", "Ambarès"}, {"33063", "Bordeaux"}, {"33069", "Le Bouscat"}}, got.Linked)
	assert.Equal(t, []DailyMax{
		{Date: day(8, 0), Label: "08/12", Max: 4.6},
		{Date: day(9, 0), Label: "09/12", Max: 2.9},
		{Date: day(10, 0), Label: "10/12", Max: 5.0},
	}, got.Days)

	none := StationReport(records, "Libourne", nil)
	assert.Empty(t, none.Linked)
	assert.Empty(t, none.Days)
}

func TestFireYearsAndSummary(t *testing.T) {
	w := domain.FireWindow{CurrentYear: 2024, Years: 10}
	a := muni("33001", "A")
	a.Fire.Add(2024, 2, w)
	a.Fire.Add(2012, 1, w)
	a.Cavities = 3
	a.ClayRisk = domain.RiskHigh
	a.HasCentroid = true
	b := withSocial(muni("33002", "B"), f(10), nil)
	b.Movements = 4
	b.Water = &domain.WaterLink{Station: "Bordeaux"}

	assert.Equal(t, []YearCount{{2012, 1}, {2024, 2}}, FireYears(a))
	assert.Empty(t, FireYears(b))

	got := Summarize(table{a, b})
	want := Summary{
		Municipalities: 2,
		WithCentroid:   1,
		WithSocial:     1,
		WithFire:       1,
		FiresInWindow:  2,
		ClayRisk:       map[string]int{"LOW": 1, "MEDIUM": 0, "HIGH": 1},
		WithWater:      1,
		Cavities:       3,
		Movements:      4,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Summarize mismatch (-want +got):\n%s", diff)
	}
}

func itemIDs(items []RankItem) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}
