package source

import (
	"math"

	"transportcore/domain/core"
	"transportcore/domain/particle"
	"transportcore/ports"
)

// DefaultStrength is the strength of a source definition that omits one
const DefaultStrength = 1.0

// Distribution is one external source: a particle type, a relative strength
// and the three shapes it samples from. It owns its shapes.
type Distribution struct {
	Particle particle.Type
	Strength float64
	Space    ports.SpatialShape
	Angle    ports.AngularShape
	Energy   ports.EnergyShape
}

// NewDistribution validates and builds a source distribution
func NewDistribution(p particle.Type, strength float64, space ports.SpatialShape, angle ports.AngularShape, energy ports.EnergyShape) (*Distribution, error) {
	if err := checkStrength(strength); err != nil {
		return nil, err
	}
	d := &Distribution{Particle: p, Strength: strength, Space: space, Angle: angle, Energy: energy}
	if err := d.check(); err != nil {
		return nil, err
	}
	return d, nil
}

func checkStrength(strength float64) error {
	if strength < 0 || math.IsNaN(strength) || math.IsInf(strength, 0) {
		return core.NewConfigurationError("source strength must be finite and non-negative, got %g", strength)
	}
	return nil
}

func (d *Distribution) check() error {
	switch {
	case d.Space == nil:
		return core.ErrShapeUnset
	case d.Angle == nil:
		return core.ErrShapeUnset
	case d.Energy == nil:
		return core.ErrShapeUnset
	}
	return nil
}

// Sample draws position, direction and energy, in that order, and returns a
// site of unit weight. Strength only affects selection within a mixture.
func (d *Distribution) Sample(stream ports.RandomStream) (particle.Site, error) {
	if err := d.check(); err != nil {
		return particle.Site{}, err
	}
	pos := d.Space.Sample(stream)
	dir := d.Angle.Sample(stream)
	e := d.Energy.Sample(stream)
	return particle.Site{
		Type:      d.Particle,
		Position:  pos,
		Direction: dir,
		Energy:    e,
		Weight:    1.0,
	}, nil
}

var _ ports.SourceSampler = (*Distribution)(nil)
