package query

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/couchcryptid/gironde-risk-etl/internal/domain"
)

// PageSize is the number of ranked items per page.
const PageSize = 15

// NoValue labels a municipality whose indicator is unknown.
const NoValue = "no value"

// Indicator is a rankable attribute.
type Indicator string

const (
	Poverty   Indicator = "poverty"
	Income    Indicator = "income"
	Fire      Indicator = "fire"
	Cavities  Indicator = "cavities"
	Movements Indicator = "movements"
)

// Indicators lists every rankable attribute.
var Indicators = []Indicator{Poverty, Income, Fire, Cavities, Movements}

// ParseIndicator validates an indicator name.
func ParseIndicator(s string) (Indicator, error) {
	ind := Indicator(strings.ToLower(strings.TrimSpace(s)))
	if slices.Contains(Indicators, ind) {
		return ind, nil
	}
	return "", fmt.Errorf("unknown indicator %q", s)
}

// Order is the ranking direction.
type Order int

const (
	Descending Order = iota
	Ascending
)

// RankItem is one row of a ranking.
type RankItem struct {
	ID       string  `json:"insee"`
	Name     string  `json:"name"`
	Value    float64 `json:"value"`
	HasValue bool    `json:"has_value"`
	Label    string  `json:"label"`
}

// RankPage is one page of a ranking. Page is zero-based.
type RankPage struct {
	Indicator  Indicator  `json:"indicator"`
	Page       int        `json:"page"`
	TotalPages int        `json:"total_pages"`
	TotalItems int        `json:"total_items"`
	Items      []RankItem `json:"items"`
}

// Rank orders municipalities by an indicator. Zero values are left out;
// municipalities without social data are kept at the end of social
// rankings. Equal values are ordered by identifier. A page outside the
// range falls back to the first page.
func Rank(r Records, ind Indicator, order Order, page int) RankPage {
	var items []RankItem
	for _, m := range r.All() {
		item, ok := rankItem(m, ind)
		if ok {
			items = append(items, item)
		}
	}

	slices.SortStableFunc(items, func(a, b RankItem) int {
		switch {
		case a.HasValue && !b.HasValue:
			return -1
		case !a.HasValue && b.HasValue:
			return 1
		}
		c := cmp.Compare(a.Value, b.Value)
		if order == Descending {
			c = -c
		}
		if c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	total := len(items)
	pages := (total + PageSize - 1) / PageSize
	if page < 0 || page >= pages {
		page = 0
	}
	start := min(page*PageSize, total)
	end := min(start+PageSize, total)

	return RankPage{
		Indicator:  ind,
		Page:       page,
		TotalPages: pages,
		TotalItems: total,
		Items:      items[start:end],
	}
}

func rankItem(m domain.Municipality, ind Indicator) (RankItem, bool) {
	item := RankItem{ID: m.ID, Name: m.Name}
	var v *float64
	switch ind {
	case Poverty, Income:
		if m.Social != nil {
			if ind == Poverty {
				v = m.Social.PovertyRate
			} else {
				v = m.Social.MedianIncome
			}
		}
		if v == nil {
			item.Label = NoValue
			return item, true
		}
	case Fire:
		f := float64(m.Fire.TotalWindow())
		v = &f
	case Cavities:
		f := float64(m.Cavities)
		v = &f
	case Movements:
		f := float64(m.Movements)
		v = &f
	default:
		return item, false
	}

	if *v <= 0 {
		return item, false
	}
	item.Value = *v
	item.HasValue = true
	item.Label = formatValue(ind, *v)
	return item, true
}

func formatValue(ind Indicator, v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	switch ind {
	case Poverty:
		return s + "%"
	case Income:
		return s + " €"
	default:
		return s
	}
}
