package domain

import (
	"fmt"
	"strings"
)

// RiskLevel is the clay shrink-swell exposure of a municipality, ordered
// LOW < MEDIUM < HIGH.
type RiskLevel int

const (
	RiskLow RiskLevel = iota
	RiskMedium
	RiskHigh
)

func (r RiskLevel) String() string {
	switch r {
	case RiskHigh:
		return "HIGH"
	case RiskMedium:
		return "MEDIUM"
	default:
		return "LOW"
	}
}

// Label returns the source vocabulary term for the level.
func (r RiskLevel) Label() string {
	switch r {
	case RiskHigh:
		return "FORT"
	case RiskMedium:
		return "MOYEN"
	default:
		return "FAIBLE"
	}
}

func (r RiskLevel) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *RiskLevel) UnmarshalText(b []byte) error {
	switch strings.ToUpper(string(b)) {
	case "HIGH":
		*r = RiskHigh
	case "MEDIUM":
		*r = RiskMedium
	case "LOW", "":
		*r = RiskLow
	default:
		return fmt.Errorf("unknown risk level %q", b)
	}
	return nil
}

// ParseRiskLevel maps the Géorisques vocabulary onto a RiskLevel.
// INCONNU, empty and unrecognized values are the FAIBLE baseline.
func ParseRiskLevel(raw string) RiskLevel {
	switch NormalizeName(raw) {
	case "FORT":
		return RiskHigh
	case "MOYEN":
		return RiskMedium
	default:
		return RiskLow
	}
}

// MergeRisk returns the more severe of two levels. HIGH absorbs everything,
// so repeated merges converge regardless of the order zones are seen in.
func MergeRisk(current, incoming RiskLevel) RiskLevel {
	if incoming > current {
		return incoming
	}
	return current
}
