package query

import "github.com/couchcryptid/gironde-risk-etl/internal/domain"

// YearCount is the number of fires in one year.
type YearCount struct {
	Year  int `json:"year"`
	Count int `json:"count"`
}

// FireYears returns the per-year fire counts of a record, oldest first.
func FireYears(m domain.Municipality) []YearCount {
	years := m.Fire.Years()
	out := make([]YearCount, 0, len(years))
	for _, y := range years {
		out = append(out, YearCount{Year: y, Count: m.Fire.Count(y)})
	}
	return out
}

// Summary counts how much of each dataset reached the fact table.
type Summary struct {
	Municipalities int            `json:"municipalities"`
	WithCentroid   int            `json:"with_centroid"`
	WithSocial     int            `json:"with_social"`
	WithFire       int            `json:"with_fire"`
	FiresInWindow  int            `json:"fires_in_window"`
	ClayRisk       map[string]int `json:"clay_risk"`
	WithWater      int            `json:"with_water"`
	Cavities       int            `json:"cavities"`
	Movements      int            `json:"movements"`
}

// Summarize aggregates the fact table.
func Summarize(r Records) Summary {
	s := Summary{ClayRisk: map[string]int{
		domain.RiskLow.String():    0,
		domain.RiskMedium.String(): 0,
		domain.RiskHigh.String():   0,
	}}
	for _, m := range r.All() {
		s.Municipalities++
		if m.HasCentroid {
			s.WithCentroid++
		}
		if m.Social != nil {
			s.WithSocial++
		}
		if m.Fire.Total() > 0 {
			s.WithFire++
		}
		s.FiresInWindow += m.Fire.TotalWindow()
		s.ClayRisk[m.ClayRisk.String()]++
		if m.Water != nil {
			s.WithWater++
		}
		s.Cavities += m.Cavities
		s.Movements += m.Movements
	}
	return s
}
