package particle

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"

	"transportcore/domain/core"
)

// Type selects which transport physics consumes a particle
type Type int

const (
	Neutron Type = iota
	Photon
	Electron
	Positron
)

var typeNames = map[Type]string{
	Neutron:  "neutron",
	Photon:   "photon",
	Electron: "electron",
	Positron: "positron",
}

// String returns the lowercase particle name
func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("particle(%d)", int(t))
}

// ParseType parses a particle name. The empty string parses as Neutron.
func ParseType(s string) (Type, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return Neutron, nil
	}
	for t, name := range typeNames {
		if name == s {
			return t, nil
		}
	}
	return Neutron, fmt.Errorf("%w: %q", core.ErrUnknownParticle, s)
}

// Site is a sampled particle state handed to the transport loop
type Site struct {
	Type      Type
	Position  r3.Vec
	Direction r3.Vec // unit vector
	Energy    float64
	Weight    float64
}
