package domain

import (
	"encoding/json"
	"slices"
	"strconv"
)

// FireWindow configures the derived wildfire totals: the "current" year and
// the number of years looked back from it. The window is inclusive on both
// ends, so {CurrentYear: 2024, Years: 10} spans 2014 through 2024.
type FireWindow struct {
	CurrentYear int
	Years       int
}

// Start is the first year of the window.
func (w FireWindow) Start() int {
	return w.CurrentYear - w.Years
}

// Contains reports whether year falls inside the window.
func (w FireWindow) Contains(year int) bool {
	return year >= w.Start() && year <= w.CurrentYear
}

// FireHistory holds per-year wildfire counts for one municipality. The
// derived totals are never written directly: every change to the per-year
// map recomputes them from scratch.
type FireHistory struct {
	byYear       map[int]int
	window       FireWindow
	totalCurrent int
	totalWindow  int
}

// Add records n fires for year and recomputes the totals against w.
func (h *FireHistory) Add(year, n int, w FireWindow) {
	if n <= 0 {
		return
	}
	if h.byYear == nil {
		h.byYear = make(map[int]int)
	}
	h.byYear[year] += n
	h.Recompute(w)
}

// Recompute derives the current-year and window totals from the per-year map.
func (h *FireHistory) Recompute(w FireWindow) {
	h.window = w
	h.totalCurrent = 0
	h.totalWindow = 0
	for year, n := range h.byYear {
		if year == w.CurrentYear {
			h.totalCurrent += n
		}
		if w.Contains(year) {
			h.totalWindow += n
		}
	}
}

// Count returns the number of fires recorded for year.
func (h FireHistory) Count(year int) int {
	return h.byYear[year]
}

// Years returns the years with at least one fire, ascending.
func (h FireHistory) Years() []int {
	years := make([]int, 0, len(h.byYear))
	for y := range h.byYear {
		years = append(years, y)
	}
	slices.Sort(years)
	return years
}

// Total is the count over every recorded year.
func (h FireHistory) Total() int {
	total := 0
	for _, n := range h.byYear {
		total += n
	}
	return total
}

// TotalCurrentYear is the count for the window's current year.
func (h FireHistory) TotalCurrentYear() int { return h.totalCurrent }

// TotalWindow is the count over the whole window.
func (h FireHistory) TotalWindow() int { return h.totalWindow }

// Window returns the window the totals were last computed against.
func (h FireHistory) Window() FireWindow { return h.window }

func (h FireHistory) clone() FireHistory {
	out := h
	if h.byYear != nil {
		out.byYear = make(map[int]int, len(h.byYear))
		for y, n := range h.byYear {
			out.byYear[y] = n
		}
	}
	return out
}

type fireHistoryJSON struct {
	ByYear           map[string]int `json:"by_year"`
	TotalCurrentYear int            `json:"total_current_year"`
	TotalWindow      int            `json:"total_window"`
	WindowStart      int            `json:"window_start,omitempty"`
	WindowEnd        int            `json:"window_end,omitempty"`
}

func (h FireHistory) MarshalJSON() ([]byte, error) {
	out := fireHistoryJSON{
		ByYear:           make(map[string]int, len(h.byYear)),
		TotalCurrentYear: h.totalCurrent,
		TotalWindow:      h.totalWindow,
	}
	if h.window != (FireWindow{}) {
		out.WindowStart = h.window.Start()
		out.WindowEnd = h.window.CurrentYear
	}
	for y, n := range h.byYear {
		out.ByYear[strconv.Itoa(y)] = n
	}
	return json.Marshal(out)
}
