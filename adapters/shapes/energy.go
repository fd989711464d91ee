package shapes

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"

	"transportcore/domain/core"
	"transportcore/ports"
)

// Discrete samples from a set of energy lines
type Discrete struct {
	Energies []float64
	cdf      []float64
}

// NewDiscrete builds a line spectrum; probabilities need not be normalized
func NewDiscrete(energies, probabilities []float64) (*Discrete, error) {
	if len(energies) == 0 || len(energies) != len(probabilities) {
		return nil, core.NewConfigurationError("discrete spectrum needs matching energies and probabilities, got %d and %d",
			len(energies), len(probabilities))
	}
	for _, p := range probabilities {
		if p < 0 || math.IsNaN(p) || math.IsInf(p, 0) {
			return nil, core.NewConfigurationError("discrete probability %g is invalid", p)
		}
	}
	total := floats.Sum(probabilities)
	if total <= 0 {
		return nil, core.NewConfigurationError("discrete probabilities sum to %g", total)
	}
	cdf := make([]float64, len(probabilities))
	floats.CumSum(cdf, probabilities)
	floats.Scale(1/total, cdf)
	return &Discrete{Energies: append([]float64(nil), energies...), cdf: cdf}, nil
}

// Sample walks the normalized CDF with one draw
func (d *Discrete) Sample(stream ports.RandomStream) float64 {
	r := stream.Float64()
	for i, c := range d.cdf {
		if r < c {
			return d.Energies[i]
		}
	}
	return d.Energies[len(d.Energies)-1]
}

// Uniform samples energies uniformly in [Min, Max)
type Uniform struct {
	Min, Max float64
}

// NewUniform validates the bounds
func NewUniform(min, max float64) (Uniform, error) {
	if min < 0 || max <= min {
		return Uniform{}, core.NewConfigurationError("uniform energy bounds must satisfy 0 <= min < max, got %g, %g", min, max)
	}
	return Uniform{Min: min, Max: max}, nil
}

// Sample draws through distuv with the caller's stream as the source
func (u Uniform) Sample(stream ports.RandomStream) float64 {
	return distuv.Uniform{Min: u.Min, Max: u.Max, Src: stream}.Rand()
}

// Normal samples a Gaussian line truncated to positive energies
type Normal struct {
	Mean, StdDev float64
}

// NewNormal validates the parameters
func NewNormal(mean, stdDev float64) (Normal, error) {
	if mean <= 0 || stdDev < 0 {
		return Normal{}, core.NewConfigurationError("normal spectrum needs mean > 0 and stddev >= 0, got %g, %g", mean, stdDev)
	}
	return Normal{Mean: mean, StdDev: stdDev}, nil
}

// Sample redraws until the energy is positive
func (n Normal) Sample(stream ports.RandomStream) float64 {
	dist := distuv.Normal{Mu: n.Mean, Sigma: n.StdDev, Src: stream}
	for {
		if e := dist.Rand(); e > 0 {
			return e
		}
	}
}

// Maxwell is a Maxwellian fission spectrum with temperature Theta (eV)
type Maxwell struct {
	Theta float64
}

// NewMaxwell validates the temperature
func NewMaxwell(theta float64) (Maxwell, error) {
	if theta <= 0 {
		return Maxwell{}, core.NewConfigurationError("maxwell temperature must be positive, got %g", theta)
	}
	return Maxwell{Theta: theta}, nil
}

// Sample draws a Maxwellian energy from three uniform numbers
func (m Maxwell) Sample(stream ports.RandomStream) float64 {
	return maxwellDraw(m.Theta, stream)
}

func maxwellDraw(theta float64, stream ports.RandomStream) float64 {
	r1 := stream.Float64()
	r2 := stream.Float64()
	r3 := stream.Float64()
	c := math.Cos(math.Pi / 2 * r3)
	return -theta * (math.Log1p(-r1) + math.Log1p(-r2)*c*c)
}

// Watt is the energy-dependent fission spectrum a·exp(-E/a)·sinh(sqrt(bE))
type Watt struct {
	A, B float64
}

// NewWatt validates the parameters
func NewWatt(a, b float64) (Watt, error) {
	if a <= 0 || b < 0 {
		return Watt{}, core.NewConfigurationError("watt spectrum needs a > 0 and b >= 0, got %g, %g", a, b)
	}
	return Watt{A: a, B: b}, nil
}

// Sample draws a Maxwellian and shifts it
func (w Watt) Sample(stream ports.RandomStream) float64 {
	m := maxwellDraw(w.A, stream)
	return m + w.A*w.A*w.B/4 + (2*stream.Float64()-1)*math.Sqrt(w.A*w.A*w.B*m)
}

var (
	_ ports.EnergyShape = (*Discrete)(nil)
	_ ports.EnergyShape = Uniform{}
	_ ports.EnergyShape = Normal{}
	_ ports.EnergyShape = Maxwell{}
	_ ports.EnergyShape = Watt{}
)
