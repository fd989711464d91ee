// Package scatter implements per-angle-bin scattering matrices in Legendre
// and tabular form. Both store a dense [gin][gout][k] matrix plus a
// [gin][gout] multiplicity matrix and combine linearly.
package scatter

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"transportcore/domain/core"
	"transportcore/domain/numeric"
	"transportcore/ports"
)

// DefaultTabularPoints is used when converting Legendre data to tabular form
// without an explicit point count
const DefaultTabularPoints = 33

// Options control how raw matrices become records
type Options struct {
	FinalFormat ports.ScatterFormat
	// MaxOrder truncates Legendre data; negative keeps every moment
	MaxOrder int
	// TabularPoints is the μ grid size for Legendre to tabular conversion
	TabularPoints int
}

// Data is a raw scattering matrix as read from a data store
type Data struct {
	Format       ports.ScatterFormat
	Matrix       [][][]float64 // [gin][gout][k]
	Multiplicity [][]float64   // [gin][gout], nil means 1
}

// matrix is the storage shared by both representations
type matrix struct {
	groups int
	points int
	dist   [][][]float64
	mult   [][]float64
}

func newMatrix(groups, points int) matrix {
	m := matrix{
		groups: groups,
		points: points,
		dist:   numeric.Zeros3(groups, groups, points),
		mult:   numeric.Zeros(groups, groups),
	}
	for _, row := range m.mult {
		for j := range row {
			row[j] = 1
		}
	}
	return m
}

// Groups returns the energy group count
func (m *matrix) Groups() int { return m.groups }

// Moment returns dist[gin][gout][k]
func (m *matrix) Moment(gin, gout, k int) float64 { return m.dist[gin][gout][k] }

// Multiplicity returns the outgoing-particle multiplicity for gin→gout
func (m *matrix) Multiplicity(gin, gout int) float64 { return m.mult[gin][gout] }

func (m *matrix) validate(name string, integral func(gin, gout int) float64) error {
	var errs []error
	for gin := range m.dist {
		for gout := range m.dist[gin] {
			if !numeric.Finite(m.dist[gin][gout]) {
				errs = append(errs, core.NewInconsistencyError(name, gin, gout, "non-finite scattering entry"))
				continue
			}
			if integral(gin, gout) < 0 {
				errs = append(errs, core.NewInconsistencyError(name, gin, gout, "negative scattering cross section"))
			}
			if mult := m.mult[gin][gout]; mult < 0 || math.IsNaN(mult) {
				errs = append(errs, core.NewInconsistencyError(name+" multiplicity", gin, gout, "negative multiplicity"))
			}
		}
	}
	return joinErrors(errs)
}

// combine forms the weighted sum of parts into m. Multiplicity is averaged
// with the scattering rate as weight. Where nothing scatters it is averaged
// with the external weights, and is 1 when those sum to zero.
func (m *matrix) combine(parts []*matrix, weights []float64, integral func(p *matrix, gin, gout int) float64) {
	for gin := 0; gin < m.groups; gin++ {
		for gout := 0; gout < m.groups; gout++ {
			dst := m.dist[gin][gout]
			num, den := 0.0, 0.0
			plain, wsum := 0.0, 0.0
			for i, p := range parts {
				floats.AddScaled(dst, weights[i], p.dist[gin][gout])
				rate := weights[i] * integral(p, gin, gout)
				num += rate * p.mult[gin][gout]
				den += rate
				plain += weights[i] * p.mult[gin][gout]
				wsum += weights[i]
			}
			switch {
			case den != 0:
				m.mult[gin][gout] = num / den
			case wsum != 0:
				m.mult[gin][gout] = plain / wsum
			default:
				m.mult[gin][gout] = 1
			}
		}
	}
}

func (m *matrix) equiv(o *matrix, tol numeric.Tolerance) bool {
	return m.groups == o.groups && m.points == o.points &&
		tol.Equal3(m.dist, o.dist) && tol.Equal2(m.mult, o.mult)
}

func checkWeights(n int, weights []float64) error {
	if n == 0 {
		return core.ErrNoSources
	}
	if len(weights) != n {
		return fmt.Errorf("%w: %d scattering records, %d weights", core.ErrWeightCount, n, len(weights))
	}
	for _, w := range weights {
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return fmt.Errorf("%w: %g", core.ErrInvalidWeight, w)
		}
	}
	return nil
}

// checkShape verifies a raw matrix is G×G×k with k ≥ 1 and returns k
func checkShape(d Data) (int, int, error) {
	groups := len(d.Matrix)
	if groups == 0 {
		return 0, 0, core.NewConfigurationError("empty scattering matrix")
	}
	points := -1
	for gin, row := range d.Matrix {
		if len(row) != groups {
			return 0, 0, core.NewDimensionError(fmt.Sprintf("scatter matrix row %d outgoing groups", gin), groups, len(row))
		}
		for _, cell := range row {
			if points < 0 {
				points = len(cell)
			}
			if len(cell) != points || points == 0 {
				return 0, 0, core.NewDimensionError("scatter matrix expansion length", points, len(cell))
			}
		}
	}
	if d.Multiplicity != nil {
		if len(d.Multiplicity) != groups {
			return 0, 0, core.NewDimensionError("multiplicity incoming groups", groups, len(d.Multiplicity))
		}
		for _, row := range d.Multiplicity {
			if len(row) != groups {
				return 0, 0, core.NewDimensionError("multiplicity outgoing groups", groups, len(row))
			}
		}
	}
	return groups, points, nil
}

// Build turns raw data into a record in the requested final format
func Build(d Data, opts Options) (ports.ScatteringRecord, error) {
	groups, points, err := checkShape(d)
	if err != nil {
		return nil, err
	}

	switch d.Format {
	case ports.ScatterLegendre:
		order := points - 1
		if opts.MaxOrder >= 0 && opts.MaxOrder < order {
			order = opts.MaxOrder
		}
		leg := NewLegendre(groups, order)
		for gin := range d.Matrix {
			for gout := range d.Matrix[gin] {
				copy(leg.dist[gin][gout], d.Matrix[gin][gout][:order+1])
			}
		}
		if d.Multiplicity != nil {
			leg.mult = numeric.Clone2(d.Multiplicity)
		}
		switch opts.FinalFormat {
		case ports.ScatterLegendre:
			return leg, nil
		case ports.ScatterTabular:
			n := opts.TabularPoints
			if n <= 0 {
				n = DefaultTabularPoints
			}
			return leg.ToTabular(n)
		}
		return nil, fmt.Errorf("%w: %v", core.ErrUnknownFormat, opts.FinalFormat)

	case ports.ScatterTabular:
		if opts.FinalFormat != ports.ScatterTabular {
			return nil, core.NewConfigurationError("tabular scattering data cannot be converted to %v", opts.FinalFormat)
		}
		if points < 2 {
			return nil, core.NewConfigurationError("tabular scattering needs at least 2 points, got %d", points)
		}
		tab := NewTabular(groups, points)
		for gin := range d.Matrix {
			for gout := range d.Matrix[gin] {
				copy(tab.dist[gin][gout], d.Matrix[gin][gout])
			}
		}
		if d.Multiplicity != nil {
			tab.mult = numeric.Clone2(d.Multiplicity)
		}
		return tab, nil
	}
	return nil, fmt.Errorf("%w: %v", core.ErrUnknownFormat, d.Format)
}

// NewEmpty returns a zero record of the given format. For tabular records
// order+1 is the point count.
func NewEmpty(format ports.ScatterFormat, groups, order int) (ports.ScatteringRecord, error) {
	if groups <= 0 || order < 0 {
		return nil, fmt.Errorf("%w: scattering groups=%d order=%d", core.ErrInvalidDimensions, groups, order)
	}
	switch format {
	case ports.ScatterLegendre:
		return NewLegendre(groups, order), nil
	case ports.ScatterTabular:
		if order < 1 {
			order = 1
		}
		return NewTabular(groups, order+1), nil
	}
	return nil, fmt.Errorf("%w: %v", core.ErrUnknownFormat, format)
}

// Validate checks a record for non-finite or negative data. Records from
// other implementations are accepted as-is.
func Validate(rec ports.ScatteringRecord) error {
	if v, ok := rec.(interface{ Validate() error }); ok {
		return v.Validate()
	}
	return nil
}

func joinErrors(errs []error) error {
	return errors.Join(errs...)
}
