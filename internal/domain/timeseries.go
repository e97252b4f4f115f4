package domain

import (
	"encoding/json"
	"slices"
	"time"
)

// Reading is one gauge height sample.
type Reading struct {
	At    time.Time `json:"at"`
	Value float64   `json:"value"`
}

// SensorTimeSeries is the ordered reading history of one station. It is
// immutable once built and is shared by pointer between every municipality
// linked to the station.
type SensorTimeSeries struct {
	station  string
	readings []Reading
}

// SeriesBuilder accumulates readings for a single station. It is the only
// writer of a series; Build hands out the read-only result.
type SeriesBuilder struct {
	station  string
	readings []Reading
}

// NewSeriesBuilder starts a series for station.
func NewSeriesBuilder(station string) *SeriesBuilder {
	return &SeriesBuilder{station: station}
}

// Append adds a reading.
func (b *SeriesBuilder) Append(at time.Time, value float64) {
	b.readings = append(b.readings, Reading{At: at, Value: value})
}

// Len returns the number of readings appended so far.
func (b *SeriesBuilder) Len() int { return len(b.readings) }

// Build returns the series sorted chronologically. Readings sharing a
// timestamp keep their arrival order.
func (b *SeriesBuilder) Build() *SensorTimeSeries {
	readings := slices.Clone(b.readings)
	slices.SortStableFunc(readings, func(x, y Reading) int {
		return x.At.Compare(y.At)
	})
	return &SensorTimeSeries{station: b.station, readings: readings}
}

// Station returns the station name.
func (s *SensorTimeSeries) Station() string { return s.station }

// Len returns the number of readings.
func (s *SensorTimeSeries) Len() int {
	if s == nil {
		return 0
	}
	return len(s.readings)
}

// Readings returns a copy of every reading, oldest first.
func (s *SensorTimeSeries) Readings() []Reading {
	if s == nil {
		return nil
	}
	return slices.Clone(s.readings)
}

// Recent returns a copy of the last n readings, oldest first.
func (s *SensorTimeSeries) Recent(n int) []Reading {
	if s == nil || n <= 0 {
		return nil
	}
	start := max(len(s.readings)-n, 0)
	return slices.Clone(s.readings[start:])
}

// Last returns the most recent reading.
func (s *SensorTimeSeries) Last() (Reading, bool) {
	if s.Len() == 0 {
		return Reading{}, false
	}
	return s.readings[len(s.readings)-1], true
}

func (s *SensorTimeSeries) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Station  string    `json:"station"`
		Readings []Reading `json:"readings"`
	}{Station: s.station, Readings: s.readings})
}
