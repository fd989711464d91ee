package mgxs

import (
	"transportcore/domain/numeric"
)

// Equiv reports whether two records hold the same data within the default
// tolerance. It is symmetric and never used for control flow in Combine.
func (x *XsData) Equiv(that *XsData) bool {
	return x.EquivWithin(that, numeric.Default)
}

// EquivWithin compares field by field, angle bin by angle bin, under tol.
// Scattering records are compared under the same tolerance.
func (x *XsData) EquivWithin(that *XsData, tol numeric.Tolerance) bool {
	if x == nil || that == nil {
		return x == that
	}
	if sameDims(x, that) != nil || x.Fissionable != that.Fissionable {
		return false
	}

	if !tol.Equal2(x.Total, that.Total) ||
		!tol.Equal2(x.Absorption, that.Absorption) ||
		!tol.Equal2(x.InverseVelocity, that.InverseVelocity) ||
		!tol.Equal2(x.NuFission, that.NuFission) ||
		!tol.Equal2(x.PromptNuFission, that.PromptNuFission) ||
		!tol.Equal2(x.KappaFission, that.KappaFission) ||
		!tol.Equal2(x.Fission, that.Fission) ||
		!tol.Equal2(x.DecayRate, that.DecayRate) ||
		!tol.Equal3(x.DelayedNuFission, that.DelayedNuFission) ||
		!tol.Equal3(x.ChiPrompt, that.ChiPrompt) {
		return false
	}
	if len(x.ChiDelayed) != len(that.ChiDelayed) {
		return false
	}
	for a := range x.ChiDelayed {
		if !tol.Equal3(x.ChiDelayed[a], that.ChiDelayed[a]) {
			return false
		}
	}

	if len(x.Scatter) != len(that.Scatter) {
		return false
	}
	for a := range x.Scatter {
		sa, sb := x.Scatter[a], that.Scatter[a]
		if sa == nil || sb == nil {
			if sa != sb {
				return false
			}
			continue
		}
		if !sa.EquivWithin(sb, tol) || !sb.EquivWithin(sa, tol) {
			return false
		}
	}
	return true
}
