package mesh

import (
	"math"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"
)

// DefaultConfidenceZ is the two-sided 95% normal critical value
const DefaultConfidenceZ = 1.96

// ZScore returns the two-sided normal critical value for a confidence level.
// Zero and 0.95 map to exactly 1.96.
func ZScore(level float64) float64 {
	if level == 0 || level == 0.95 {
		return DefaultConfidenceZ
	}
	return distuv.UnitNormal.Quantile(1 - (1-level)/2)
}

// Summarize returns the mean trial rate and the confidence half-width
// z * sigma / sqrt(n), where sigma is the population standard deviation.
func Summarize(rates []float64, z float64) (mean, halfWidth float64, err error) {
	if len(rates) == 0 {
		return 0, 0, ErrNoTrials
	}

	mean, err = stats.Mean(rates)
	if err != nil {
		return 0, 0, err
	}

	sd, err := stats.StandardDeviationPopulation(rates)
	if err != nil {
		return 0, 0, err
	}

	return mean, z * sd / math.Sqrt(float64(len(rates))), nil
}
