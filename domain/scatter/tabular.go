package scatter

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/integrate"

	"transportcore/domain/core"
	"transportcore/domain/numeric"
	"transportcore/ports"
)

// Tabular holds the angular distribution of each group transfer sampled on
// an equispaced μ grid spanning [-1, 1]
type Tabular struct {
	matrix
	mu []float64
}

// NewTabular allocates a zero tabular record with the given grid size
func NewTabular(groups, points int) *Tabular {
	mu := make([]float64, points)
	floats.Span(mu, -1, 1)
	return &Tabular{matrix: newMatrix(groups, points), mu: mu}
}

// Format returns ScatterTabular
func (t *Tabular) Format() ports.ScatterFormat { return ports.ScatterTabular }

// Order returns the point count minus one
func (t *Tabular) Order() int { return t.points - 1 }

// Mu returns a copy of the μ grid
func (t *Tabular) Mu() []float64 { return append([]float64(nil), t.mu...) }

func (t *Tabular) transfer(gin, gout int) float64 {
	return integrate.Trapezoidal(t.mu, t.dist[gin][gout])
}

// ScatterXS integrates each transfer over μ and sums over outgoing groups
func (t *Tabular) ScatterXS(gin int) float64 {
	sum := 0.0
	for gout := range t.dist[gin] {
		sum += t.transfer(gin, gout)
	}
	return sum
}

// Combine sums parts weighted by weights. Every part must be a tabular
// record on the receiver's grid.
func (t *Tabular) Combine(parts []ports.ScatteringRecord, weights []float64) (ports.ScatteringRecord, error) {
	if err := checkWeights(len(parts), weights); err != nil {
		return nil, err
	}
	mats := make([]*matrix, len(parts))
	for i, p := range parts {
		o, ok := p.(*Tabular)
		if !ok {
			return nil, fmt.Errorf("%w: part %d is %T, want Tabular", core.ErrDimensionMismatch, i, p)
		}
		if o.groups != t.groups {
			return nil, core.NewDimensionError("scattering groups", t.groups, o.groups)
		}
		if o.points != t.points {
			return nil, core.NewDimensionError("tabular points", t.points, o.points)
		}
		mats[i] = &o.matrix
	}

	out := NewTabular(t.groups, t.points)
	out.combine(mats, weights, func(p *matrix, gin, gout int) float64 {
		return integrate.Trapezoidal(out.mu, p.dist[gin][gout])
	})
	return out, nil
}

// Equiv reports whether other is a tabular record with the same data
func (t *Tabular) Equiv(other ports.ScatteringRecord) bool {
	return t.EquivWithin(other, numeric.Default)
}

func (t *Tabular) EquivWithin(other ports.ScatteringRecord, tol numeric.Tolerance) bool {
	o, ok := other.(*Tabular)
	return ok && t.equiv(&o.matrix, tol) && tol.EqualSlices(t.mu, o.mu)
}

// Validate reports non-finite values, negative transfers and negative
// multiplicity
func (t *Tabular) Validate() error {
	return t.validate("scatter", t.transfer)
}

var _ ports.ScatteringRecord = (*Tabular)(nil)
