package mgxs

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"transportcore/domain/core"
	"transportcore/domain/numeric"
	"transportcore/ports"
)

// Combine returns a new record holding the weighted sum of sources, angle bin
// by angle bin. Sources are not modified.
//
// Reaction rates (total, absorption, the fission family, decay rate and
// delayed nu-fission) are summed with weights. Inverse velocity is the
// weight-normalized average. Fission spectra are averaged with each source's
// weighted production as weight and renormalized per incoming group; a slice
// with no production anywhere stays zero. Scattering is combined by the
// scattering records themselves.
//
// The result is fissionable if any source is; non-fissionable sources
// contribute nothing to fission quantities. Sources must agree on groups,
// delayed groups and angle bins. Nothing is returned unless every check
// passes.
func Combine(sources []*XsData, weights []float64) (*XsData, error) {
	if len(sources) == 0 {
		return nil, core.ErrNoSources
	}
	if len(weights) != len(sources) {
		return nil, fmt.Errorf("%w: %d records, %d weights", core.ErrWeightCount, len(sources), len(weights))
	}
	for i, w := range weights {
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return nil, fmt.Errorf("%w: weight %d is %g", core.ErrInvalidWeight, i, w)
		}
	}

	ref := sources[0]
	if err := ref.checkShape(); err != nil {
		return nil, fmt.Errorf("record 0: %w", err)
	}
	fissionable := false
	for i, s := range sources {
		if i > 0 {
			if err := s.checkShape(); err != nil {
				return nil, fmt.Errorf("record %d: %w", i, err)
			}
			if err := sameDims(ref, s); err != nil {
				return nil, fmt.Errorf("record %d: %w", i, err)
			}
		}
		fissionable = fissionable || s.hasFission()
	}

	nA := ref.Angles()
	scatters := make([]ports.ScatteringRecord, nA)
	parts := make([]ports.ScatteringRecord, len(sources))
	for a := 0; a < nA; a++ {
		for i, s := range sources {
			parts[i] = s.Scatter[a]
		}
		combined, err := parts[0].Combine(parts, weights)
		if err != nil {
			return nil, fmt.Errorf("scatter angle bin %d: %w", a, err)
		}
		scatters[a] = combined
	}

	out := allocate(Dims{
		Groups:        ref.Groups,
		DelayedGroups: ref.DelayedGroups,
		Fissionable:   fissionable,
		NumPolar:      ref.NumPolar,
		NumAzimuthal:  ref.NumAzimuthal,
	})
	out.Scatter = scatters

	weightSum := floats.Sum(weights)
	for a := 0; a < nA; a++ {
		for i, s := range sources {
			w := weights[i]
			floats.AddScaled(out.Total[a], w, s.Total[a])
			floats.AddScaled(out.Absorption[a], w, s.Absorption[a])
			floats.AddScaled(out.InverseVelocity[a], w, s.InverseVelocity[a])
			if fissionable && s.hasFission() {
				addFission(out, s, a, w)
			}
		}
		if weightSum > 0 {
			floats.Scale(1/weightSum, out.InverseVelocity[a])
		}
		if fissionable {
			normalizeChi(out, a)
		}
	}
	return out, nil
}

// addFission accumulates one source's fission data for angle bin a. Spectra
// are accumulated unnormalized, weighted by production.
func addFission(out, s *XsData, a int, w float64) {
	floats.AddScaled(out.NuFission[a], w, s.NuFission[a])
	floats.AddScaled(out.PromptNuFission[a], w, s.PromptNuFission[a])
	floats.AddScaled(out.KappaFission[a], w, s.KappaFission[a])
	floats.AddScaled(out.Fission[a], w, s.Fission[a])
	floats.AddScaled(out.DecayRate[a], w, s.DecayRate[a])

	for gin := 0; gin < s.Groups; gin++ {
		floats.AddScaled(out.DelayedNuFission[a][gin], w, s.DelayedNuFission[a][gin])

		prompt := w * s.PromptNuFission[a][gin]
		if prompt != 0 {
			floats.AddScaled(out.ChiPrompt[a][gin], prompt, s.ChiPrompt[a][gin])
		}
		for d := 0; d < s.DelayedGroups; d++ {
			delayed := w * s.DelayedNuFission[a][gin][d]
			if delayed == 0 {
				continue
			}
			for gout := 0; gout < s.Groups; gout++ {
				out.ChiDelayed[a][gin][gout][d] += delayed * s.ChiDelayed[a][gin][gout][d]
			}
		}
	}
}

// normalizeChi rescales every spectrum slice of angle bin a to unit sum
func normalizeChi(x *XsData, a int) {
	col := make([]float64, x.Groups)
	for gin := 0; gin < x.Groups; gin++ {
		numeric.Normalize(x.ChiPrompt[a][gin])
		for d := 0; d < x.DelayedGroups; d++ {
			for gout := range col {
				col[gout] = x.ChiDelayed[a][gin][gout][d]
			}
			numeric.Normalize(col)
			for gout := range col {
				x.ChiDelayed[a][gin][gout][d] = col[gout]
			}
		}
	}
}

// sameDims reports a DimensionMismatch unless b has a's shape
func sameDims(a, b *XsData) error {
	switch {
	case a.Groups != b.Groups:
		return core.NewDimensionError("energy groups", a.Groups, b.Groups)
	case a.DelayedGroups != b.DelayedGroups:
		return core.NewDimensionError("delayed groups", a.DelayedGroups, b.DelayedGroups)
	case a.NumPolar != b.NumPolar:
		return core.NewDimensionError("polar bins", a.NumPolar, b.NumPolar)
	case a.NumAzimuthal != b.NumAzimuthal:
		return core.NewDimensionError("azimuthal bins", a.NumAzimuthal, b.NumAzimuthal)
	}
	return nil
}
