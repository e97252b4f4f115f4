package query

import "github.com/couchcryptid/gironde-risk-etl/internal/domain"

// ClayView groups municipalities by clay risk. Low-risk municipalities are
// only counted.
type ClayView struct {
	High     []Match `json:"high"`
	Medium   []Match `json:"medium"`
	LowCount int     `json:"low_count"`
}

// ClayBreakdown splits the fact table by clay risk level.
func ClayBreakdown(r Records) ClayView {
	var v ClayView
	for _, m := range r.All() {
		switch m.ClayRisk {
		case domain.RiskHigh:
			v.High = append(v.High, Match{ID: m.ID, Name: m.Name})
		case domain.RiskMedium:
			v.Medium = append(v.Medium, Match{ID: m.ID, Name: m.Name})
		default:
			v.LowCount++
		}
	}
	sortByName(v.High)
	sortByName(v.Medium)
	return v
}
