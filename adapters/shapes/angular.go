package shapes

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"transportcore/domain/core"
	"transportcore/ports"
)

// Isotropic samples directions uniformly on the unit sphere
type Isotropic struct{}

// Sample draws the polar cosine then the azimuth
func (Isotropic) Sample(stream ports.RandomStream) r3.Vec {
	mu := 2*stream.Float64() - 1
	phi := 2 * math.Pi * stream.Float64()
	s := math.Sqrt(math.Max(0, 1-mu*mu))
	return r3.Vec{X: mu, Y: s * math.Cos(phi), Z: s * math.Sin(phi)}
}

// Monodirectional emits every particle along one direction
type Monodirectional struct {
	Direction r3.Vec
}

// NewMonodirectional normalizes the reference direction
func NewMonodirectional(dir r3.Vec) (Monodirectional, error) {
	n := r3.Norm(dir)
	if n == 0 || math.IsNaN(n) || math.IsInf(n, 0) {
		return Monodirectional{}, core.NewConfigurationError("monodirectional reference direction %v has no length", dir)
	}
	return Monodirectional{Direction: r3.Scale(1/n, dir)}, nil
}

// Sample returns the reference direction without advancing the stream
func (m Monodirectional) Sample(ports.RandomStream) r3.Vec {
	return m.Direction
}

var (
	_ ports.AngularShape = Isotropic{}
	_ ports.AngularShape = Monodirectional{}
)
