package profiling

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"

	"transportcore/domain/core"
)

// FitResult is a Pearson chi-squared test of observed counts against
// expected proportions
type FitResult struct {
	Statistic float64
	DoF       float64
	PValue    float64
	Expected  []float64
}

// Consistent reports whether the counts are consistent with the expected
// proportions at significance alpha
func (r FitResult) Consistent(alpha float64) bool {
	return r.PValue > alpha
}

// StrengthGoodnessOfFit tests how often each mixture member was selected
// against the members' strengths. Members with zero strength must never be
// selected and do not count toward the degrees of freedom.
func StrengthGoodnessOfFit(counts []int, strengths []float64) (FitResult, error) {
	if len(counts) != len(strengths) {
		return FitResult{}, fmt.Errorf("%w: %d counts, %d strengths", core.ErrWeightCount, len(counts), len(strengths))
	}
	total := 0
	for _, c := range counts {
		total += c
	}
	sum := floats.Sum(strengths)
	if total == 0 || sum <= 0 {
		return FitResult{}, core.NewConfigurationError("goodness of fit needs positive counts and strengths")
	}

	res := FitResult{Expected: make([]float64, len(counts))}
	cells := 0
	for i, c := range counts {
		exp := float64(total) * strengths[i] / sum
		res.Expected[i] = exp
		if exp == 0 {
			if c != 0 {
				return res, fmt.Errorf("%w: member %d has zero strength but was selected %d times",
					core.ErrNumericalInconsistency, i, c)
			}
			continue
		}
		d := float64(c) - exp
		res.Statistic += d * d / exp
		cells++
	}
	if cells < 2 {
		res.PValue = 1
		return res, nil
	}
	res.DoF = float64(cells - 1)
	res.PValue = distuv.ChiSquared{K: res.DoF}.Survival(res.Statistic)
	return res, nil
}
