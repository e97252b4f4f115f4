package stats

// Strength classifies a correlation coefficient.
type Strength string

const (
	StrongPositive   Strength = "strong_positive"
	WeakPositive     Strength = "weak_positive"
	NoCorrelation    Strength = "none"
	ModerateNegative Strength = "moderate_negative"
	StrongNegative   Strength = "strong_negative"
)

// Conclude maps r onto its strength band.
func Conclude(r float64) Strength {
	switch {
	case r > 0.7:
		return StrongPositive
	case r > 0.3:
		return WeakPositive
	case r > -0.3:
		return NoCorrelation
	case r > -0.7:
		return ModerateNegative
	default:
		return StrongNegative
	}
}

// Describe returns a one-line reading of the band for poverty against income.
func (s Strength) Describe() string {
	switch s {
	case StrongPositive:
		return "Strong positive correlation: higher poverty goes with higher income (anomaly?)."
	case WeakPositive:
		return "Weak positive correlation."
	case NoCorrelation:
		return "No significant correlation."
	case ModerateNegative:
		return "Moderate negative correlation: an inverse trend is visible."
	default:
		return "Strong negative correlation: the poorer the municipality, the lower its median income."
	}
}
