package query

import (
	"time"

	"github.com/couchcryptid/gironde-risk-etl/internal/domain"
)

// DailyMax is the highest reading of one calendar day.
type DailyMax struct {
	Date  time.Time `json:"date"`
	Label string    `json:"label"` // DD/MM
	Max   float64   `json:"max"`
}

// StationView is the report for one gauge.
type StationView struct {
	Station     string     `json:"station"`
	LatestLabel string     `json:"latest_label,omitempty"`
	Linked      []Match    `json:"linked"`
	Days        []DailyMax `json:"days"`
}

// StationReport lists the municipalities linked to station and the daily
// maxima of its series. series may be nil.
func StationReport(r Records, station string, series *domain.SensorTimeSeries) StationView {
	v := StationView{Station: station}
	for _, m := range r.All() {
		if m.Water == nil || m.Water.Station != station {
			continue
		}
		v.Linked = append(v.Linked, Match{ID: m.ID, Name: m.Name})
		v.LatestLabel = m.Water.LatestLabel
	}
	sortByName(v.Linked)
	v.Days = DailyMaxima(series)
	return v
}

// DailyMaxima reduces a series to one maximum per calendar day, oldest
// first.
func DailyMaxima(series *domain.SensorTimeSeries) []DailyMax {
	var out []DailyMax
	for _, r := range series.Readings() {
		y, m, d := r.At.Date()
		day := time.Date(y, m, d, 0, 0, 0, 0, r.At.Location())
		if n := len(out); n > 0 && out[n-1].Date.Equal(day) {
			if r.Value > out[n-1].Max {
				out[n-1].Max = r.Value
			}
			continue
		}
		out = append(out, DailyMax{Date: day, Label: day.Format("02/01"), Max: r.Value})
	}
	return out
}
