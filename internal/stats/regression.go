// Package stats fits the poverty/income regression over the fact table.
package stats

import (
	"fmt"
	"math"

	"github.com/couchcryptid/gironde-risk-etl/internal/domain"
)

// Point is one observation. Name labels the municipality it came from.
type Point struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Name string  `json:"name,omitempty"`
}

// Regression is an ordinary least squares fit y = Slope*x + Intercept.
type Regression struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
	R         float64 `json:"r"`
	RSquared  float64 `json:"r_squared"`
	MeanX     float64 `json:"mean_x"`
	MeanY     float64 `json:"mean_y"`
	MinX      float64 `json:"min_x"`
	MaxX      float64 `json:"max_x"`
	N         int     `json:"n"`
}

// FitLinearRegression fits points from the running sums of x, y, xy, x²
// and y². An empty input yields the zero Regression. When x or y has no
// spread the slope and correlation are 0 and the intercept is the mean of y.
func FitLinearRegression(points []Point) Regression {
	n := len(points)
	if n == 0 {
		return Regression{}
	}

	var sumX, sumY, sumXY, sumX2, sumY2 float64
	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, p := range points {
		sumX += p.X
		sumY += p.Y
		sumXY += p.X * p.Y
		sumX2 += p.X * p.X
		sumY2 += p.Y * p.Y
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}

	fn := float64(n)
	meanX := sumX / fn
	meanY := sumY / fn
	varX := sumX2/fn - meanX*meanX
	varY := sumY2/fn - meanY*meanY
	covXY := sumXY/fn - meanX*meanY

	reg := Regression{MeanX: meanX, MeanY: meanY, MinX: minX, MaxX: maxX, N: n}
	// Cancellation can leave a tiny residue instead of zero, so constant
	// columns are caught by their range.
	if minX == maxX || minY == maxY || varX <= 0 || varY <= 0 {
		reg.Intercept = meanY
		return reg
	}

	reg.Slope = covXY / varX
	reg.Intercept = meanY - reg.Slope*meanX
	reg.R = covXY / (math.Sqrt(varX) * math.Sqrt(varY))
	reg.R = math.Max(-1, math.Min(1, reg.R))
	reg.RSquared = reg.R * reg.R
	return reg
}

// Equation renders the fit as "y = 2.00x + 0.00".
func (r Regression) Equation() string {
	sign := "+"
	if r.Intercept < 0 {
		sign = "-"
	}
	return fmt.Sprintf("y = %.2fx %s %.2f", r.Slope, sign, math.Abs(r.Intercept))
}

// PovertyIncomePoints collects (poverty rate, median income) pairs from the
// records where both are known.
func PovertyIncomePoints(records []domain.Municipality) []Point {
	out := make([]Point, 0, len(records))
	for _, m := range records {
		if m.Social == nil || m.Social.PovertyRate == nil || m.Social.MedianIncome == nil {
			continue
		}
		x, y := *m.Social.PovertyRate, *m.Social.MedianIncome
		if !finite(x) || !finite(y) {
			continue
		}
		out = append(out, Point{X: x, Y: y, Name: m.Name})
	}
	return out
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
