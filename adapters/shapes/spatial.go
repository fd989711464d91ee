package shapes

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"transportcore/domain/core"
	"transportcore/ports"
)

// Point emits every particle from a single location
type Point struct {
	At r3.Vec
}

// Sample returns the fixed location without advancing the stream
func (p Point) Sample(ports.RandomStream) r3.Vec {
	return p.At
}

// Box samples uniformly inside an axis-aligned box
type Box struct {
	Lower, Upper r3.Vec
}

// NewBox validates the box corners
func NewBox(lower, upper r3.Vec) (Box, error) {
	if lower.X > upper.X || lower.Y > upper.Y || lower.Z > upper.Z {
		return Box{}, core.NewConfigurationError("box lower corner %v exceeds upper corner %v", lower, upper)
	}
	return Box{Lower: lower, Upper: upper}, nil
}

// Sample draws x, y, z in that order
func (b Box) Sample(stream ports.RandomStream) r3.Vec {
	return r3.Vec{
		X: b.Lower.X + (b.Upper.X-b.Lower.X)*stream.Float64(),
		Y: b.Lower.Y + (b.Upper.Y-b.Lower.Y)*stream.Float64(),
		Z: b.Lower.Z + (b.Upper.Z-b.Lower.Z)*stream.Float64(),
	}
}

// SphericalShell samples uniformly in volume between two radii
type SphericalShell struct {
	Center       r3.Vec
	Inner, Outer float64
}

// NewSphericalShell validates the radii
func NewSphericalShell(center r3.Vec, inner, outer float64) (SphericalShell, error) {
	if inner < 0 || outer < inner {
		return SphericalShell{}, core.NewConfigurationError("shell radii must satisfy 0 <= inner <= outer, got %g, %g", inner, outer)
	}
	return SphericalShell{Center: center, Inner: inner, Outer: outer}, nil
}

// Sample draws the radius by inverting the r^3 volume CDF, then a direction
func (s SphericalShell) Sample(stream ports.RandomStream) r3.Vec {
	ri3 := s.Inner * s.Inner * s.Inner
	ro3 := s.Outer * s.Outer * s.Outer
	r := math.Cbrt(ri3 + (ro3-ri3)*stream.Float64())
	u := Isotropic{}.Sample(stream)
	return r3.Add(s.Center, r3.Scale(r, u))
}

var (
	_ ports.SpatialShape = Point{}
	_ ports.SpatialShape = Box{}
	_ ports.SpatialShape = SphericalShell{}
)
