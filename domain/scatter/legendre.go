package scatter

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/integrate"

	"transportcore/domain/core"
	"transportcore/domain/numeric"
	"transportcore/ports"
)

// Legendre holds scattering moments P0..PL per group transfer
type Legendre struct {
	matrix
}

// NewLegendre allocates a zero Legendre record of the given order
func NewLegendre(groups, order int) *Legendre {
	return &Legendre{matrix: newMatrix(groups, order+1)}
}

// Format returns ScatterLegendre
func (l *Legendre) Format() ports.ScatterFormat { return ports.ScatterLegendre }

// Order returns the highest Legendre moment kept
func (l *Legendre) Order() int { return l.points - 1 }

// ScatterXS sums the P0 moment over outgoing groups
func (l *Legendre) ScatterXS(gin int) float64 {
	sum := 0.0
	for gout := range l.dist[gin] {
		sum += l.dist[gin][gout][0]
	}
	return sum
}

func legendreP0(p *matrix, gin, gout int) float64 { return p.dist[gin][gout][0] }

// Combine sums parts weighted by weights. Every part must be a Legendre
// record with the receiver's group count and order.
func (l *Legendre) Combine(parts []ports.ScatteringRecord, weights []float64) (ports.ScatteringRecord, error) {
	if err := checkWeights(len(parts), weights); err != nil {
		return nil, err
	}
	mats := make([]*matrix, len(parts))
	for i, p := range parts {
		o, ok := p.(*Legendre)
		if !ok {
			return nil, fmt.Errorf("%w: part %d is %T, want Legendre", core.ErrDimensionMismatch, i, p)
		}
		if o.groups != l.groups {
			return nil, core.NewDimensionError("scattering groups", l.groups, o.groups)
		}
		if o.points != l.points {
			return nil, core.NewDimensionError("legendre order", l.Order(), o.Order())
		}
		mats[i] = &o.matrix
	}

	out := NewLegendre(l.groups, l.Order())
	out.combine(mats, weights, legendreP0)
	return out, nil
}

// Equiv reports whether other is a Legendre record with the same data
func (l *Legendre) Equiv(other ports.ScatteringRecord) bool {
	return l.EquivWithin(other, numeric.Default)
}

func (l *Legendre) EquivWithin(other ports.ScatteringRecord, tol numeric.Tolerance) bool {
	o, ok := other.(*Legendre)
	return ok && l.equiv(&o.matrix, tol)
}

// Validate reports non-finite moments, negative P0 and negative multiplicity
func (l *Legendre) Validate() error {
	return l.validate("scatter", func(gin, gout int) float64 { return l.dist[gin][gout][0] })
}

// ToTabular evaluates the expansion f(μ) = Σ (2l+1)/2 · M_l · P_l(μ) on an
// equispaced μ grid. Negative values are clipped and each transfer is
// rescaled so its integral over μ still equals M_0.
func (l *Legendre) ToTabular(points int) (*Tabular, error) {
	if points < 2 {
		return nil, core.NewConfigurationError("tabular conversion needs at least 2 points, got %d", points)
	}
	tab := NewTabular(l.groups, points)
	poly := make([]float64, l.points)
	for i, mu := range tab.mu {
		legendrePolys(mu, poly)
		for gin := range l.dist {
			for gout := range l.dist[gin] {
				f := 0.0
				for k, m := range l.dist[gin][gout] {
					f += float64(2*k+1) / 2 * m * poly[k]
				}
				tab.dist[gin][gout][i] = max(f, 0)
			}
		}
	}
	for gin := range tab.dist {
		for gout := range tab.dist[gin] {
			f := tab.dist[gin][gout]
			area := integrate.Trapezoidal(tab.mu, f)
			if area > 0 {
				floats.Scale(l.dist[gin][gout][0]/area, f)
			}
		}
	}
	tab.mult = numeric.Clone2(l.mult)
	return tab, nil
}

// legendrePolys fills p[k] = P_k(x) by the Bonnet recurrence
func legendrePolys(x float64, p []float64) {
	if len(p) == 0 {
		return
	}
	p[0] = 1
	if len(p) == 1 {
		return
	}
	p[1] = x
	for k := 2; k < len(p); k++ {
		p[k] = (float64(2*k-1)*x*p[k-1] - float64(k-1)*p[k-2]) / float64(k)
	}
}

var _ ports.ScatteringRecord = (*Legendre)(nil)
