package ports

import "gonum.org/v1/gonum/spatial/r3"

// SpatialShape samples a starting position
type SpatialShape interface {
	Sample(stream RandomStream) r3.Vec
}

// AngularShape samples a unit starting direction
type AngularShape interface {
	Sample(stream RandomStream) r3.Vec
}

// EnergyShape samples a starting energy in eV
type EnergyShape interface {
	Sample(stream RandomStream) float64
}
