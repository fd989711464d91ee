package mgxs

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"transportcore/domain/core"
	"transportcore/domain/numeric"
	"transportcore/domain/scatter"
)

// Validate checks a record for physically inconsistent data: non-finite or
// negative entries, total below absorption, and fission spectra that do not
// sum to one where there is production. All findings are joined into one
// error matching core.ErrNumericalInconsistency. Structural problems are
// reported as the dimension or configuration errors Combine would raise.
func Validate(x *XsData) error {
	return ValidateWithin(x, numeric.Default)
}

// ValidateWithin is Validate with an explicit tolerance
func ValidateWithin(x *XsData, tol numeric.Tolerance) error {
	if err := x.checkShape(); err != nil {
		return err
	}

	var errs []error
	nonNegative := func(name string, s [][]float64) {
		for a, row := range s {
			for i, v := range row {
				switch {
				case math.IsNaN(v) || math.IsInf(v, 0):
					errs = append(errs, core.NewInconsistencyError(name, a, i, "non-finite value"))
				case v < 0:
					errs = append(errs, core.NewInconsistencyError(name, a, i, fmt.Sprintf("negative value %g", v)))
				}
			}
		}
	}

	nonNegative("total", x.Total)
	nonNegative("absorption", x.Absorption)
	nonNegative("inverse-velocity", x.InverseVelocity)
	for a := range x.Total {
		for g := range x.Total[a] {
			if t, ab := x.Total[a][g], x.Absorption[a][g]; t < ab && !tol.Equal(t, ab) {
				errs = append(errs, core.NewInconsistencyError("total", a, g,
					fmt.Sprintf("total %g below absorption %g", t, ab)))
			}
		}
	}

	if x.hasFission() {
		nonNegative("nu-fission", x.NuFission)
		nonNegative("prompt-nu-fission", x.PromptNuFission)
		nonNegative("kappa-fission", x.KappaFission)
		nonNegative("fission", x.Fission)
		nonNegative("decay-rate", x.DecayRate)
		for a := range x.ChiPrompt {
			nonNegative("chi-prompt", x.ChiPrompt[a])
			nonNegative("delayed-nu-fission", x.DelayedNuFission[a])
			for g := range x.ChiPrompt[a] {
				if x.PromptNuFission[a][g] > 0 && !tol.Equal(floats.Sum(x.ChiPrompt[a][g]), 1) {
					errs = append(errs, core.NewInconsistencyError("chi-prompt", a, g, "spectrum does not sum to one"))
				}
				for d := 0; d < x.DelayedGroups; d++ {
					if x.DelayedNuFission[a][g][d] <= 0 {
						continue
					}
					sum := 0.0
					for gout := range x.ChiDelayed[a][g] {
						sum += x.ChiDelayed[a][g][gout][d]
					}
					if !tol.Equal(sum, 1) {
						errs = append(errs, core.NewInconsistencyError("chi-delayed", a, g,
							fmt.Sprintf("delayed group %d spectrum does not sum to one", d)))
					}
				}
			}
		}
	}

	for a, s := range x.Scatter {
		if err := scatter.Validate(s); err != nil {
			errs = append(errs, fmt.Errorf("scatter angle bin %d: %w", a, err))
		}
	}
	return errors.Join(errs...)
}
